// Package rules holds the resource and rarity model: cooldown gates,
// rarity draws, and the sanity and favor arithmetic every action shares.
//
// Functions here mutate the profile they are handed and nothing else;
// persistence and locking belong to the caller.
package rules

import (
	"fmt"
	"time"

	"github.com/tatianab/orb-cult/internal/models"
)

const (
	DefaultRitualCooldown     = 2 * time.Hour
	DefaultMeditationCooldown = 4 * time.Hour

	// MeditationMidpoint is the sanity a meditation must climb across, from
	// at or below to above, to ease madness by one step.
	MeditationMidpoint = 50
)

// TierEffect is the favor gained and sanity lost when an artifact of a tier
// is acquired.
type TierEffect struct {
	Favor      int
	SanityLoss int
}

var tierEffects = map[models.RarityTier]TierEffect{
	models.TierCommon:    {Favor: 5, SanityLoss: 2},
	models.TierRare:      {Favor: 15, SanityLoss: 5},
	models.TierEpic:      {Favor: 30, SanityLoss: 10},
	models.TierLegendary: {Favor: 60, SanityLoss: 20},
	models.TierCursed:    {Favor: -25, SanityLoss: 35},
}

// EffectOf returns the constants for tier.
func EffectOf(tier models.RarityTier) TierEffect {
	return tierEffects[tier]
}

// CooldownError is returned when an action is attempted before its
// cooldown has elapsed. No state is changed when it is returned.
type CooldownError struct {
	Action    string
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("%s on cooldown for %s", e.Action, e.Remaining.Round(time.Second))
}

// Gate checks a cooldown. It returns ok=false and the time left when
// now-last < cooldown. A zero last means never, which always passes.
func Gate(last, now time.Time, cooldown time.Duration) (remaining time.Duration, ok bool) {
	if last.IsZero() {
		return 0, true
	}
	elapsed := now.Sub(last)
	if elapsed < cooldown {
		return cooldown - elapsed, false
	}
	return 0, true
}

// AdjustSanity applies delta and clamps the result. Falling from above
// zero to zero drives the cultist mad: madness rises by one and the
// lifetime counter records it.
func AdjustSanity(p *models.CultistProfile, delta int) {
	before := p.Sanity
	p.Sanity = models.ClampSanity(p.Sanity + delta)
	if before > 0 && p.Sanity == 0 {
		p.MadnessLevel++
		p.TimesMad++
	}
	p.Refresh()
}

// AdjustFavor applies delta. Favor is unbounded and may go negative.
func AdjustFavor(p *models.CultistProfile, delta int) {
	p.Favor += delta
	p.Refresh()
}

// ApplyArtifactGain gives p an artifact and applies its tier's effects.
func ApplyArtifactGain(p *models.CultistProfile, a models.Artifact) {
	eff := EffectOf(a.Tier)
	p.Artifacts = append(p.Artifacts, a)
	AdjustFavor(p, eff.Favor)
	AdjustSanity(p, -eff.SanityLoss)
}

// Incoherent reports whether madness has taken the cultist.
func Incoherent(p *models.CultistProfile) bool {
	return p.Sanity == 0 || p.MadnessLevel >= models.MadnessCap
}
