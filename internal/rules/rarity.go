package rules

import (
	"fmt"

	"github.com/tatianab/orb-cult/internal/chance"
	"github.com/tatianab/orb-cult/internal/models"
)

// Thresholds are the favor cut-points of the four rarity bands.
type Thresholds [4]int

// DefaultThresholds are the canonical band cut-points.
var DefaultThresholds = Thresholds{0, 50, 150, 300}

// Validate checks the cut-points are strictly ascending.
func (th Thresholds) Validate() error {
	for i := 1; i < len(th); i++ {
		if th[i] <= th[i-1] {
			return fmt.Errorf("rarity thresholds must ascend: %v", th)
		}
	}
	return nil
}

// band odds in percent, indexed by tier.
var bandOdds = [4][5]int{
	{80, 20, 0, 0, 0},
	{60, 30, 10, 0, 0},
	{45, 30, 18, 7, 0},
	{35, 28, 20, 12, 5},
}

// Band returns which of the four bands favor falls in. Favor below the
// second cut-point, negative favor included, is band zero.
func (th Thresholds) Band(favor int) int {
	band := 0
	for i := 1; i < len(th); i++ {
		if favor >= th[i] {
			band = i
		}
	}
	return band
}

// Odds returns the percent chance of each tier at favor.
func Odds(favor int, th Thresholds) map[models.RarityTier]int {
	row := bandOdds[th.Band(favor)]
	out := make(map[models.RarityTier]int, len(row))
	for i, pct := range row {
		if pct > 0 {
			out[models.RarityTier(i)] = pct
		}
	}
	return out
}

// RollRarity draws a tier for a cultist with the given favor.
func RollRarity(r chance.Roller, favor int, th Thresholds) models.RarityTier {
	row := bandOdds[th.Band(favor)]
	roll := r.Intn(100)
	acc := 0
	for i, pct := range row {
		acc += pct
		if roll < acc {
			return models.RarityTier(i)
		}
	}
	return models.TierCommon
}
