// Package duel resolves sacrifices: the two-party stake and the
// self-offering soft reset.
package duel

import (
	"errors"
	"slices"

	"github.com/tatianab/orb-cult/internal/achievements"
	"github.com/tatianab/orb-cult/internal/chance"
	"github.com/tatianab/orb-cult/internal/models"
	"github.com/tatianab/orb-cult/internal/rules"
)

// ErrSelfTarget is returned when a cultist tries to duel themselves.
var ErrSelfTarget = errors.New("duel: actor and target must differ")

// Params tunes the duel.
type Params struct {
	WinChance          float64
	WinnerBonus        int
	SurvivorBonus      int
	SurvivorSanityLoss int
	// OfferingBonus is the favor granted per lifetime sacrifice on rebirth.
	OfferingBonus int
}

// DefaultParams returns the standard stakes.
func DefaultParams() Params {
	return Params{
		WinChance:          0.25,
		WinnerBonus:        50,
		SurvivorBonus:      20,
		SurvivorSanityLoss: 5,
		OfferingBonus:      10,
	}
}

// Outcome reports who won a duel and what changed hands.
type Outcome struct {
	ActorWon    bool
	WinnerID    string
	LoserID     string
	Transferred int
}

// Resolve runs one duel between actor and target, mutating both. Exactly
// one side is reset.
func Resolve(r chance.Roller, actor, target *models.CultistProfile, params Params) (Outcome, error) {
	if actor.ID == target.ID {
		return Outcome{}, ErrSelfTarget
	}

	if chance.Chance(r, params.WinChance) {
		taken := slices.Clone(target.Artifacts)
		kill(target)
		actor.Artifacts = append(actor.Artifacts, taken...)
		actor.Kills++
		rules.AdjustFavor(actor, params.WinnerBonus)
		return Outcome{ActorWon: true, WinnerID: actor.ID, LoserID: target.ID, Transferred: len(taken)}, nil
	}

	kill(actor)
	rules.AdjustFavor(target, params.SurvivorBonus)
	rules.AdjustSanity(target, -params.SurvivorSanityLoss)
	return Outcome{WinnerID: target.ID, LoserID: actor.ID}, nil
}

func kill(p *models.CultistProfile) {
	p.Reset()
	p.TimesKilled++
	p.Refresh()
}

// SelfOffer sacrifices p to the orb. It always succeeds.
func SelfOffer(p *models.CultistProfile, params Params) {
	p.Sacrifices++
	p.Reset()
	p.Favor = p.Sacrifices * params.OfferingBonus
	p.AddAchievement(achievements.Reborn)
	p.Refresh()
}
