// Package achievements unlocks one-time rewards by scanning a cultist
// profile against a fixed set of declarative rules.
package achievements

import (
	"github.com/tatianab/orb-cult/internal/models"
	"github.com/tatianab/orb-cult/internal/rules"
)

// Reborn is the marker granted to every cultist who offers themselves.
const Reborn = "Reborn"

// Rule is a named condition with a favor reward applied once.
type Rule struct {
	Name        string
	Description string
	Reward      int
	Condition   func(p *models.CultistProfile) bool
}

// Unlock reports an achievement granted by a single evaluation.
type Unlock struct {
	Name   string `json:"name"`
	Reward int    `json:"reward"`
}

// DefaultRules is the rule set the engine evaluates.
var DefaultRules = []Rule{
	{
		Name:        "Initiate",
		Description: "Hold your first artifact.",
		Reward:      10,
		Condition:   func(p *models.CultistProfile) bool { return len(p.Artifacts) >= 1 },
	},
	{
		Name:        "Hoarder",
		Description: "Hold ten artifacts at once.",
		Reward:      50,
		Condition:   func(p *models.CultistProfile) bool { return len(p.Artifacts) >= 10 },
	},
	{
		Name:        "Devoted",
		Description: "Reach 500 favor.",
		Reward:      25,
		Condition:   func(p *models.CultistProfile) bool { return p.Favor >= 500 },
	},
	{
		Name:        "Curious Mind",
		Description: "Ask the orb ten questions.",
		Reward:      15,
		Condition:   func(p *models.CultistProfile) bool { return p.QuestionsAsked >= 10 },
	},
	{
		Name:        "Witness",
		Description: "Survive five encounters.",
		Reward:      20,
		Condition:   func(p *models.CultistProfile) bool { return p.Encounters >= 5 },
	},
	{
		Name:        "Touched by Madness",
		Description: "Lose your mind at least once.",
		Reward:      20,
		Condition:   func(p *models.CultistProfile) bool { return p.TimesMad >= 1 },
	},
	{
		Name:        "Cursed Bearer",
		Description: "Carry a cursed artifact.",
		Reward:      -25,
		Condition:   func(p *models.CultistProfile) bool { return p.Owns(models.TierCursed) },
	},
	{
		Name:        "Legend Keeper",
		Description: "Carry a legendary artifact.",
		Reward:      40,
		Condition:   func(p *models.CultistProfile) bool { return p.Owns(models.TierLegendary) },
	},
	{
		Name:        "Executioner",
		Description: "Win a sacrifice.",
		Reward:      30,
		Condition:   func(p *models.CultistProfile) bool { return p.Kills >= 1 },
	},
	{
		Name:        "Martyr",
		Description: "Offer yourself three times.",
		Reward:      0,
		Condition:   func(p *models.CultistProfile) bool { return p.Sacrifices >= 3 },
	},
}

// Evaluator applies a rule set.
type Evaluator struct {
	rules []Rule
}

// NewEvaluator returns an evaluator for rs. A nil rs uses DefaultRules.
func NewEvaluator(rs []Rule) *Evaluator {
	if rs == nil {
		rs = DefaultRules
	}
	return &Evaluator{rules: rs}
}

// Rules returns the evaluator's rule set.
func (e *Evaluator) Rules() []Rule {
	return e.rules
}

// Evaluate unlocks every rule whose condition holds and that p has not
// already unlocked. Rules are checked in order against the profile as it
// stands after earlier unlocks in the same pass.
func (e *Evaluator) Evaluate(p *models.CultistProfile) []Unlock {
	var unlocked []Unlock
	for _, r := range e.rules {
		if p.HasAchievement(r.Name) || !r.Condition(p) {
			continue
		}
		if Grant(p, r.Name, r.Reward) {
			unlocked = append(unlocked, Unlock{Name: r.Name, Reward: r.Reward})
		}
	}
	return unlocked
}

// Grant records name and applies reward, once. It reports whether the
// achievement was new.
func Grant(p *models.CultistProfile, name string, reward int) bool {
	if !p.AddAchievement(name) {
		return false
	}
	rules.AdjustFavor(p, reward)
	return true
}
