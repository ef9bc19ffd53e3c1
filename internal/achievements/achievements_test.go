package achievements

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tatianab/orb-cult/internal/models"
)

func TestEvaluateIsIdempotent(t *testing.T) {
	e := NewEvaluator(nil)
	p := models.NewCultistProfile("u")
	p.Artifacts = []models.Artifact{{Name: "Tooth", Tier: models.TierCommon}}
	p.Encounters = 5

	first := e.Evaluate(p)
	want := []Unlock{{Name: "Initiate", Reward: 10}, {Name: "Witness", Reward: 20}}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Fatalf("first evaluation mismatch (-want +got):\n%s", diff)
	}
	favor := p.Favor

	if second := e.Evaluate(p); len(second) != 0 {
		t.Errorf("second evaluation unlocked %v", second)
	}
	if p.Favor != favor {
		t.Errorf("favor changed on re-evaluation: %d -> %d", favor, p.Favor)
	}
	if len(p.Achievements) != 2 {
		t.Errorf("achievements = %v", p.Achievements)
	}
}

func TestDevotedUnlocksOnThreshold(t *testing.T) {
	e := NewEvaluator(nil)
	p := models.NewCultistProfile("u")
	p.Favor = 499
	if got := e.Evaluate(p); len(got) != 0 {
		t.Fatalf("unexpected unlocks below threshold: %v", got)
	}
	p.Favor = 500
	got := e.Evaluate(p)
	if len(got) != 1 || got[0].Name != "Devoted" {
		t.Fatalf("expected Devoted, got %v", got)
	}
	if p.Favor != 525 {
		t.Errorf("favor = %d, want 525", p.Favor)
	}
}

func TestPenaltyReward(t *testing.T) {
	e := NewEvaluator(nil)
	p := models.NewCultistProfile("u")
	p.Artifacts = []models.Artifact{{Name: "Shard", Tier: models.TierCursed}}
	p.Favor = 0

	e.Evaluate(p)
	// Initiate +10, Cursed Bearer -25.
	if p.Favor != -15 {
		t.Errorf("favor = %d, want -15", p.Favor)
	}
}

func TestGrantOnce(t *testing.T) {
	p := models.NewCultistProfile("u")
	if !Grant(p, "Descent", 20) {
		t.Fatal("first grant should succeed")
	}
	if Grant(p, "Descent", 20) {
		t.Fatal("second grant should be refused")
	}
	if p.Favor != 20 {
		t.Errorf("favor = %d, want 20", p.Favor)
	}
}

func TestCustomRules(t *testing.T) {
	e := NewEvaluator([]Rule{{
		Name:      "Chatty",
		Reward:    1,
		Condition: func(p *models.CultistProfile) bool { return p.TotalMentions > 2 },
	}})
	p := models.NewCultistProfile("u")
	p.TotalMentions = 3
	if got := e.Evaluate(p); len(got) != 1 {
		t.Fatalf("expected custom rule to fire, got %v", got)
	}
	if len(e.Rules()) != 1 {
		t.Errorf("Rules() = %d rules", len(e.Rules()))
	}
}
