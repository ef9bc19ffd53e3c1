package rules

import (
	"github.com/tatianab/orb-cult/internal/chance"
	"github.com/tatianab/orb-cult/internal/models"
)

var artifactNames = map[models.RarityTier][]string{
	models.TierCommon: {
		"Cracked Candle Stub", "Rusted Ritual Knife", "Bundle of Grave Moss",
		"Chipped Bone Die", "Waxen Finger",
	},
	models.TierRare: {
		"Bone Flute", "Mirror That Fogs From Within", "Jar of Whispering Ash",
		"Sigil-Carved Tooth",
	},
	models.TierEpic: {
		"Tome of the Drowned Choir", "Lantern of Cold Light", "Eye in Amber",
	},
	models.TierLegendary: {
		"Heart of the Sleeping Orb", "Crown of Nine Silences",
	},
	models.TierCursed: {
		"The Hollow Crown", "Shard That Counts Backwards", "Skin of the Unnamed",
	},
}

var incoherentLines = []string{
	"Th̷e orb... the orb is SINGING... can't you hear it...",
	"*giggles at the wall* it has so many teeth.",
	"WHO ASKED. WHO IS ASKING. the walls are asking.",
	"i counted the stars and there was one more than yesterday",
	"*scrawls the same sigil over and over*",
	"no no no the floor is breathing again",
}

var orbLines = []string{
	"The orb glows with mysterious energy!",
	"Behold, the ancient orb has been summoned!",
	"The orb whispers secrets of the cosmos...",
	"A shimmering orb appears before you!",
	"The orb pulses with otherworldly power!",
	"You have awakened the orb from its slumber...",
	"The orb's light pierces through the darkness!",
	"Legend speaks of this very orb!",
	"The orb hums with arcane magic!",
	"A mystical orb materializes in response to your call!",
}

// ArtifactName draws a name from tier's pool.
func ArtifactName(r chance.Roller, tier models.RarityTier) string {
	return chance.Pick(r, artifactNames[tier])
}

// IncoherentLine draws the reply given in place of any action once madness
// has taken hold.
func IncoherentLine(r chance.Roller) string {
	return chance.Pick(r, incoherentLines)
}

// OrbLine draws the reply to an invocation of the orb.
func OrbLine(r chance.Roller) string {
	return chance.Pick(r, orbLines)
}
