package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tatianab/orb-cult/internal/adventure"
	"github.com/tatianab/orb-cult/internal/engine"
)

var (
	// errChatter is returned for ordinary text that does not invoke the orb.
	errChatter = errors.New("not an action")
	errUnknown = errors.New("unknown command")
)

const helpText = `Commands:
  /ritual                 draw an artifact (every 2h)
  /meditate               rest your mind (every 4h)
  /ask <question>         question the orb
  /adventure              begin a path; answer with the choice number
  /choose <node>          take a path by name
  /abandon                leave the current path
  /sacrifice [cultist]    duel a cultist, or offer yourself
  /profile [cultist]      inspect a record
  /prophecy [text]        record a prophecy, or let the orb speak
  /server                 the gathering's descent
  /quit
Say "orb" anywhere to invoke it.`

// session is who is playing and where.
type session struct {
	actor   string
	server  string
	choices []adventure.Choice
}

// parse turns a line of input into an action.
func (s session) parse(line string) (engine.Action, error) {
	line = strings.TrimSpace(line)
	a := engine.Action{ActorID: s.actor, ServerID: s.server}
	if !strings.HasPrefix(line, "/") {
		if n, err := strconv.Atoi(line); err == nil {
			return s.pick(a, n)
		}
		if strings.Contains(strings.ToLower(line), "orb") {
			a.Kind = engine.KindMention
			return a, nil
		}
		return a, errChatter
	}

	cmd, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(cmd) {
	case "ritual":
		a.Kind = engine.KindRitual
	case "meditate":
		a.Kind = engine.KindMeditate
	case "ask":
		if arg == "" {
			return a, fmt.Errorf("ask what? try /ask <question>")
		}
		a.Kind, a.Payload = engine.KindAsk, arg
	case "adventure", "start":
		a.Kind = engine.KindAdventureStart
	case "choose":
		if n, err := strconv.Atoi(arg); err == nil {
			return s.pick(a, n)
		}
		if arg == "" {
			return a, fmt.Errorf("choose which path? try /choose <node>")
		}
		a.Kind, a.Payload = engine.KindAdventureChoose, arg
	case "abandon":
		a.Kind = engine.KindAdventureAbandon
	case "sacrifice":
		a.Kind, a.TargetID = engine.KindSacrifice, arg
	case "profile":
		a.Kind, a.TargetID = engine.KindProfile, arg
	case "prophecy":
		a.Kind, a.Payload = engine.KindProphecy, arg
	case "server":
		a.Kind = engine.KindServer
	default:
		return a, fmt.Errorf("%w: /%s", errUnknown, cmd)
	}
	return a, nil
}

func (s session) pick(a engine.Action, n int) (engine.Action, error) {
	if n < 1 || n > len(s.choices) {
		if len(s.choices) == 0 {
			return a, fmt.Errorf("there is no path before you, try /adventure")
		}
		return a, fmt.Errorf("choose between 1 and %d", len(s.choices))
	}
	a.Kind = engine.KindAdventureChoose
	a.Payload = string(s.choices[n-1].ID)
	return a, nil
}
