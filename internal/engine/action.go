package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tatianab/orb-cult/internal/achievements"
	"github.com/tatianab/orb-cult/internal/adventure"
	"github.com/tatianab/orb-cult/internal/models"
	"github.com/tatianab/orb-cult/internal/rules"
)

// Kind names an action.
type Kind string

const (
	KindProfile          Kind = "profile"
	KindRitual           Kind = "ritual"
	KindMeditate         Kind = "meditate"
	KindAsk              Kind = "ask"
	KindMention          Kind = "mention"
	KindProphecy         Kind = "prophecy"
	KindServer           Kind = "server"
	KindAdventureStart   Kind = "adventure.start"
	KindAdventureChoose  Kind = "adventure.choose"
	KindAdventureAbandon Kind = "adventure.abandon"
	KindSacrifice        Kind = "sacrifice"
)

// Kinds lists every action kind.
var Kinds = []Kind{
	KindProfile, KindRitual, KindMeditate, KindAsk, KindMention, KindProphecy,
	KindServer, KindAdventureStart, KindAdventureChoose, KindAdventureAbandon,
	KindSacrifice,
}

// Status is the outcome class of a handled action.
type Status string

const (
	StatusOK              Status = "ok"
	StatusCooldown        Status = "cooldown"
	StatusIncoherent      Status = "incoherent"
	StatusNoActiveSession Status = "no_active_session"
	StatusSessionActive   Status = "session_active"
	StatusUnknownNode     Status = "unknown_node"
	StatusInvalidTarget   Status = "invalid_target"
	StatusDuplicate       Status = "duplicate"
	StatusContinue        Status = "continue"
	StatusCompleted       Status = "completed"
)

// ErrInvalidAction is returned for actions that cannot be dispatched at all.
var ErrInvalidAction = errors.New("engine: invalid action")

// Action is one user gesture delivered by a dispatcher.
type Action struct {
	// ID identifies the delivery. Actions repeating a recent ID are
	// reported as duplicates and not applied. Empty disables the check.
	ID       string `json:"id,omitempty"`
	Kind     Kind   `json:"kind"`
	ActorID  string `json:"actorId"`
	TargetID string `json:"targetId,omitempty"`
	ServerID string `json:"serverId,omitempty"`
	// Payload carries the question, prophecy text, or chosen node id.
	Payload string `json:"payload,omitempty"`
}

func (a *Action) normalize() {
	a.ID = strings.TrimSpace(a.ID)
	a.ActorID = strings.TrimSpace(a.ActorID)
	a.TargetID = strings.TrimSpace(a.TargetID)
	a.ServerID = strings.TrimSpace(a.ServerID)
	a.Payload = strings.TrimSpace(a.Payload)
}

// Validate reports whether the action carries what its kind needs.
func (a Action) Validate() error {
	if a.ActorID == "" {
		return fmt.Errorf("%w: actor id is required", ErrInvalidAction)
	}
	switch a.Kind {
	case KindProfile, KindRitual, KindMeditate, KindAsk, KindAdventureStart,
		KindAdventureAbandon, KindSacrifice:
	case KindMention, KindProphecy, KindServer:
		if a.ServerID == "" {
			return fmt.Errorf("%w: %s needs a server id", ErrInvalidAction, a.Kind)
		}
	case KindAdventureChoose:
		if a.Payload == "" {
			return fmt.Errorf("%w: %s needs a node id", ErrInvalidAction, a.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidAction, a.Kind)
	}
	return nil
}

// ProfileView is the part of a cultist profile a dispatcher displays.
type ProfileView struct {
	ID             string             `json:"id"`
	Sanity         int                `json:"sanity"`
	Favor          int                `json:"favor"`
	Artifacts      []models.Artifact  `json:"artifacts"`
	Achievements   []string           `json:"achievements"`
	Personality    models.Personality `json:"personality"`
	MadnessLevel   int                `json:"madnessLevel"`
	QuestionsAsked int                `json:"questionsAsked"`
	Encounters     int                `json:"encounters"`
	TotalMentions  int                `json:"totalMentions"`
	Sacrifices     int                `json:"sacrifices"`
	Kills          int                `json:"kills"`
	TimesKilled    int                `json:"timesKilled"`
	TimesMad       int                `json:"timesMad"`
	Incoherent     bool               `json:"incoherent"`

	RitualIn     time.Duration `json:"ritualIn"`
	MeditationIn time.Duration `json:"meditationIn"`
	// Node is the adventure node the cultist stands on, if any.
	Node adventure.NodeID `json:"node,omitempty"`
}

func (e *Engine) view(p *models.CultistProfile, now time.Time) ProfileView {
	c := p.Clone()
	ritualIn, _ := rules.Gate(c.LastRitualAt, now, e.ritualCooldown)
	meditationIn, _ := rules.Gate(c.LastMeditationAt, now, e.meditationCooldown)
	return ProfileView{
		ID:             c.ID,
		Sanity:         c.Sanity,
		Favor:          c.Favor,
		Artifacts:      c.Artifacts,
		Achievements:   c.Achievements,
		Personality:    c.Personality,
		MadnessLevel:   c.MadnessLevel,
		QuestionsAsked: c.QuestionsAsked,
		Encounters:     c.Encounters,
		TotalMentions:  c.TotalMentions,
		Sacrifices:     c.Sacrifices,
		Kills:          c.Kills,
		TimesKilled:    c.TimesKilled,
		TimesMad:       c.TimesMad,
		Incoherent:     rules.Incoherent(c),
		RitualIn:       ritualIn,
		MeditationIn:   meditationIn,
	}
}

// ServerView is the displayable part of a server profile.
type ServerView struct {
	ID            string            `json:"id"`
	TotalMentions int               `json:"totalMentions"`
	EventLevel    int               `json:"eventLevel"`
	ServerSanity  int               `json:"serverSanity"`
	Prophecies    []models.Prophecy `json:"prophecies"`
}

func serverView(s *models.ServerProfile) *ServerView {
	c := s.Clone()
	return &ServerView{
		ID:            c.ID,
		TotalMentions: c.TotalMentions,
		EventLevel:    c.EventLevel,
		ServerSanity:  c.ServerSanity,
		Prophecies:    c.Prophecies,
	}
}

// Result describes what an action did. It carries no presentation markup.
type Result struct {
	ActionID  string                `json:"actionId,omitempty"`
	Kind      Kind                  `json:"kind"`
	Status    Status                `json:"status"`
	Narrative string                `json:"narrative"`
	Profile   ProfileView           `json:"profile"`
	Target    *ProfileView          `json:"target,omitempty"`
	Server    *ServerView           `json:"server,omitempty"`
	Artifact  *models.Artifact      `json:"artifact,omitempty"`
	Unlocked  []achievements.Unlock `json:"unlocked,omitempty"`
	Node      adventure.NodeID      `json:"node,omitempty"`
	Choices   []adventure.Choice    `json:"choices,omitempty"`
	Remaining time.Duration         `json:"remaining,omitempty"`
	Elapsed   time.Duration         `json:"elapsed,omitempty"`
	Winner    string                `json:"winner,omitempty"`
	Encounter bool                  `json:"encounter,omitempty"`
}
