package rules

import (
	"time"

	"github.com/tatianab/orb-cult/internal/chance"
	"github.com/tatianab/orb-cult/internal/models"
)

// RitualOutcome describes what a ritual produced.
type RitualOutcome struct {
	Artifact models.Artifact
	Effect   TierEffect
}

// Ritual performs the artifact ritual: cooldown check, rarity draw, gain.
func Ritual(p *models.CultistProfile, r chance.Roller, now time.Time, cooldown time.Duration, th Thresholds) (RitualOutcome, error) {
	if remaining, ok := Gate(p.LastRitualAt, now, cooldown); !ok {
		return RitualOutcome{}, &CooldownError{Action: "ritual", Remaining: remaining}
	}
	tier := RollRarity(r, p.Favor, th)
	a := models.Artifact{Name: ArtifactName(r, tier), Tier: tier}
	ApplyArtifactGain(p, a)
	p.LastRitualAt = now
	return RitualOutcome{Artifact: a, Effect: EffectOf(tier)}, nil
}

// MeditationOutcome describes a meditation.
type MeditationOutcome struct {
	Backfired   bool
	SanityDelta int
	Eased       bool
}

// Meditate rests the mind. One in four meditations backfires.
func Meditate(p *models.CultistProfile, r chance.Roller, now time.Time, cooldown time.Duration) (MeditationOutcome, error) {
	if remaining, ok := Gate(p.LastMeditationAt, now, cooldown); !ok {
		return MeditationOutcome{}, &CooldownError{Action: "meditation", Remaining: remaining}
	}
	p.LastMeditationAt = now
	before := p.Sanity

	var out MeditationOutcome
	if chance.Chance(r, 0.25) {
		out.Backfired = true
		AdjustSanity(p, -chance.Between(r, 10, 30))
	} else {
		AdjustSanity(p, chance.Between(r, 5, 20))
		if before <= MeditationMidpoint && p.Sanity > MeditationMidpoint && p.MadnessLevel > 0 {
			p.MadnessLevel--
			out.Eased = true
			p.Refresh()
		}
	}
	out.SanityDelta = p.Sanity - before
	return out, nil
}

// EncounterOutcome describes a brush with something in the dark.
type EncounterOutcome struct {
	Happened   bool
	SanityLoss int
}

// Encounter rolls for an encounter when the orb is invoked.
func Encounter(p *models.CultistProfile, r chance.Roller) EncounterOutcome {
	if !chance.Chance(r, 0.2) {
		return EncounterOutcome{}
	}
	loss := chance.Between(r, 1, 10)
	p.Encounters++
	before := p.Sanity
	AdjustSanity(p, -loss)
	return EncounterOutcome{Happened: true, SanityLoss: before - p.Sanity}
}

// Question records a question put to the oracle. Gazing costs a little sanity.
func Question(p *models.CultistProfile) {
	p.QuestionsAsked++
	AdjustSanity(p, -1)
}
