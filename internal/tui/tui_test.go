package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/tatianab/orb-cult/internal/achievements"
	"github.com/tatianab/orb-cult/internal/adventure"
	"github.com/tatianab/orb-cult/internal/chance"
	"github.com/tatianab/orb-cult/internal/engine"
	"github.com/tatianab/orb-cult/internal/models"
	"github.com/tatianab/orb-cult/internal/storage"
	"github.com/tatianab/orb-cult/internal/storage/memory"
)

func TestParse(t *testing.T) {
	s := session{actor: "u1", server: "g1", choices: []adventure.Choice{{ID: "well", Label: "the well"}, {ID: "door", Label: "the door"}}}
	base := engine.Action{ActorID: "u1", ServerID: "g1"}
	with := func(f func(a *engine.Action)) engine.Action {
		a := base
		f(&a)
		return a
	}

	tests := []struct {
		in   string
		want engine.Action
	}{
		{"/ritual", with(func(a *engine.Action) { a.Kind = engine.KindRitual })},
		{"/MEDITATE", with(func(a *engine.Action) { a.Kind = engine.KindMeditate })},
		{"/ask what do you want?", with(func(a *engine.Action) { a.Kind, a.Payload = engine.KindAsk, "what do you want?" })},
		{"/adventure", with(func(a *engine.Action) { a.Kind = engine.KindAdventureStart })},
		{"2", with(func(a *engine.Action) { a.Kind, a.Payload = engine.KindAdventureChoose, "door" })},
		{"/choose well", with(func(a *engine.Action) { a.Kind, a.Payload = engine.KindAdventureChoose, "well" })},
		{"/choose 1", with(func(a *engine.Action) { a.Kind, a.Payload = engine.KindAdventureChoose, "well" })},
		{"/abandon", with(func(a *engine.Action) { a.Kind = engine.KindAdventureAbandon })},
		{"/sacrifice", with(func(a *engine.Action) { a.Kind = engine.KindSacrifice })},
		{"/sacrifice bob", with(func(a *engine.Action) { a.Kind, a.TargetID = engine.KindSacrifice, "bob" })},
		{"/profile bob", with(func(a *engine.Action) { a.Kind, a.TargetID = engine.KindProfile, "bob" })},
		{"/prophecy the sky splits", with(func(a *engine.Action) { a.Kind, a.Payload = engine.KindProphecy, "the sky splits" })},
		{"/server", with(func(a *engine.Action) { a.Kind = engine.KindServer })},
		{"praise the ORB!", with(func(a *engine.Action) { a.Kind = engine.KindMention })},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := s.parse(tt.in)
			if err != nil {
				t.Fatalf("parse(%q): %v", tt.in, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parse(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	s := session{actor: "u1", server: "g1"}
	if _, err := s.parse("hello there"); !errors.Is(err, errChatter) {
		t.Errorf("Expected chatter, got %v", err)
	}
	if _, err := s.parse("/dance"); !errors.Is(err, errUnknown) {
		t.Errorf("Expected unknown command, got %v", err)
	}
	for _, in := range []string{"/ask", "/choose", "1", "/choose 3"} {
		if _, err := s.parse(in); err == nil {
			t.Errorf("Expected an error for %q", in)
		}
	}
}

func TestDescribe(t *testing.T) {
	res := engine.Result{
		Status:    engine.StatusCooldown,
		Narrative: "Not yet.",
		Remaining: 90 * time.Minute,
	}
	if got := describe(res); got != "Not yet. (ready in 1h30m0s)" {
		t.Errorf("Unexpected cooldown text %q", got)
	}

	res = engine.Result{
		Kind:      engine.KindRitual,
		Status:    engine.StatusOK,
		Narrative: "A relic.",
		Artifact:  &models.Artifact{Name: "Tooth", Tier: models.TierCommon},
		Profile:   engine.ProfileView{Sanity: 98, Favor: 15},
		Unlocked:  []achievements.Unlock{{Name: "Initiate", Reward: 10}},
	}
	got := describe(res)
	for _, want := range []string{"Sanity 98, favor 15.", "Achievement unlocked: Initiate (+10 favor)"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in %q", want, got)
		}
	}
}

func TestProfilePanel(t *testing.T) {
	got := profilePanel(engine.ProfileView{
		ID:          "u1",
		Sanity:      0,
		Incoherent:  true,
		Personality: models.PersonalityUnstable,
		Artifacts:   []models.Artifact{{Name: "Eye", Tier: models.TierEpic}},
		RitualIn:    time.Hour,
		Node:        "well",
	})
	for _, want := range []string{"u1", "INCOHERENT", "Eye [epic]", "Ritual: 1h0m0s", "Meditation: ready", "well"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in panel:\n%s", want, got)
		}
	}
}

func newTestModel(t *testing.T) model {
	t.Helper()
	eng, err := engine.New(storage.New(memory.New(), nil), engine.Options{Roller: chance.New(1)})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return NewModel(eng, "")
}

func typeLine(t *testing.T, m model, line string) (model, tea.Cmd) {
	t.Helper()
	for _, r := range line {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(model)
	}
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(model), cmd
}

func TestModelFlow(t *testing.T) {
	m := newTestModel(t)

	m, cmd := typeLine(t, m, "alice")
	if m.state != statePlaying || m.session.actor != "alice" {
		t.Fatalf("Expected to be playing as alice, got state %v actor %q", m.state, m.session.actor)
	}
	next, _ := m.Update(cmd())
	m = next.(model)
	if m.profile == nil || m.profile.Sanity != 100 {
		t.Fatalf("Expected alice's profile in the panel, got %+v", m.profile)
	}

	m, cmd = typeLine(t, m, "/adventure")
	if cmd == nil {
		t.Fatal("Expected an action to be sent")
	}
	next, _ = m.Update(cmd())
	m = next.(model)
	if len(m.session.choices) == 0 {
		t.Fatal("Expected adventure choices to be remembered")
	}

	m, cmd = typeLine(t, m, "/abandon")
	next, _ = m.Update(cmd())
	m = next.(model)
	if len(m.session.choices) != 0 {
		t.Errorf("Expected choices cleared after abandoning, got %v", m.session.choices)
	}

	m, cmd = typeLine(t, m, "just chatting")
	if cmd != nil {
		t.Error("Expected idle talk not to reach the engine")
	}
	if !strings.Contains(m.log, "ignores idle talk") {
		t.Errorf("Expected a notice in the log, got %q", m.log)
	}
}
