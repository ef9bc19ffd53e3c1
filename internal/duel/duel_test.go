package duel

import (
	"errors"
	"math"
	"testing"

	"github.com/tatianab/orb-cult/internal/achievements"
	"github.com/tatianab/orb-cult/internal/chance"
	"github.com/tatianab/orb-cult/internal/models"
)

func armed(id string, n int) *models.CultistProfile {
	p := models.NewCultistProfile(id)
	for i := 0; i < n; i++ {
		p.Artifacts = append(p.Artifacts, models.Artifact{Name: id + "-relic", Tier: models.TierRare})
	}
	p.Favor = 90
	p.Sanity = 60
	return p
}

func TestActorWins(t *testing.T) {
	a, b := armed("a", 2), armed("b", 3)
	b.Kills = 4
	b.MadnessLevel = 1
	b.Favor = 300
	b.Achievements = []string{"Initiate"}

	out, err := Resolve(&chance.Fixed{Floats: []float64{0.1}}, a, b, DefaultParams())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !out.ActorWon || out.WinnerID != "a" || out.LoserID != "b" || out.Transferred != 3 {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if len(a.Artifacts) != 5 || a.Artifacts[4].Name != "b-relic" {
		t.Errorf("winner artifacts = %v", a.Artifacts)
	}
	if a.Kills != 1 || a.Favor != 140 {
		t.Errorf("winner kills=%d favor=%d", a.Kills, a.Favor)
	}
	if len(b.Artifacts) != 0 || b.Sanity != 100 || b.Favor != 0 || len(b.Achievements) != 0 {
		t.Errorf("loser not reset: %+v", b)
	}
	if b.TimesKilled != 1 || b.Kills != 4 || b.MadnessLevel != 1 {
		t.Errorf("loser lifetime counters: killed=%d kills=%d madness=%d", b.TimesKilled, b.Kills, b.MadnessLevel)
	}
	if b.Personality != models.PersonalityNeutral {
		t.Errorf("Expected loser personality neutral after reset, got %s", b.Personality)
	}
}

func TestActorLoses(t *testing.T) {
	a, b := armed("a", 2), armed("b", 3)

	out, err := Resolve(&chance.Fixed{Floats: []float64{0.9}}, a, b, DefaultParams())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.ActorWon || out.WinnerID != "b" || out.Transferred != 0 {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if len(a.Artifacts) != 0 || a.TimesKilled != 1 {
		t.Errorf("actor not reset: %+v", a)
	}
	if len(b.Artifacts) != 3 || b.Kills != 0 || b.Favor != 110 || b.Sanity != 55 {
		t.Errorf("survivor = %+v", b)
	}
}

func TestSelfTarget(t *testing.T) {
	a := armed("a", 1)
	if _, err := Resolve(chance.New(1), a, a, DefaultParams()); !errors.Is(err, ErrSelfTarget) {
		t.Fatalf("expected ErrSelfTarget, got %v", err)
	}
}

func TestArtifactConservation(t *testing.T) {
	r := chance.New(11)
	for i := 0; i < 200; i++ {
		a, b := armed("a", i%4), armed("b", (i+1)%5)
		na, nb := len(a.Artifacts), len(b.Artifacts)
		out, err := Resolve(r, a, b, DefaultParams())
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		winner, loser, want := b, a, nb
		if out.ActorWon {
			winner, loser, want = a, b, na+nb
		}
		if len(winner.Artifacts) != want {
			t.Fatalf("round %d: winner has %d artifacts, want %d", i, len(winner.Artifacts), want)
		}
		if len(loser.Artifacts) != 0 {
			t.Fatalf("round %d: loser kept artifacts", i)
		}
	}
}

func TestWinRateConverges(t *testing.T) {
	r := chance.New(1000)
	wins := 0
	const rounds = 1000
	for i := 0; i < rounds; i++ {
		a, b := models.NewCultistProfile("a"), models.NewCultistProfile("b")
		out, err := Resolve(r, a, b, DefaultParams())
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if out.ActorWon {
			wins++
		}
	}
	rate := float64(wins) / rounds
	if math.Abs(rate-0.25) > 0.05 {
		t.Errorf("initiator win rate %.3f, want ~0.25", rate)
	}
}

func TestSelfOffer(t *testing.T) {
	p := armed("a", 3)
	p.Sacrifices = 1
	p.Kills = 2
	p.TimesKilled = 5
	p.MadnessLevel = 2
	p.TimesMad = 3
	p.Achievements = []string{"Initiate", "Witness"}

	SelfOffer(p, DefaultParams())

	if p.Sacrifices != 2 || p.Favor != 20 || p.Sanity != 100 || len(p.Artifacts) != 0 {
		t.Errorf("offering result: %+v", p)
	}
	if p.Kills != 2 || p.TimesKilled != 5 || p.MadnessLevel != 2 || p.TimesMad != 3 {
		t.Errorf("lifetime counters changed: %+v", p)
	}
	if len(p.Achievements) != 1 || p.Achievements[0] != achievements.Reborn {
		t.Errorf("achievements = %v, want only %s", p.Achievements, achievements.Reborn)
	}
	if p.Personality != models.PersonalityNeutral {
		t.Errorf("Expected personality neutral after offering, got %s", p.Personality)
	}
}
