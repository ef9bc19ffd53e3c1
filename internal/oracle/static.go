package oracle

import (
	"context"
	"strings"

	"github.com/tatianab/orb-cult/internal/chance"
	"github.com/tatianab/orb-cult/internal/models"
)

var answers = []string{
	"The orb has heard you. It does not approve.",
	"Yes. But not in the way you hope.",
	"Ask again when the candles have burned down.",
	"The answer is written on the inside of your eyelids.",
	"No. Never. Not while the orb still dreams.",
	"It is already happening. You simply have not noticed.",
	"The orb laughs, and the laughter is your answer.",
	"Seek the drowned stair. The answer waits below the water.",
}

var personalityAnswers = map[models.Personality][]string{
	models.PersonalityDevoted: {
		"For you, faithful one, the orb opens a little wider: yes.",
		"The orb remembers your offerings. It will answer in time.",
	},
	models.PersonalityCurious: {
		"So many questions. The orb is beginning to ask some of its own.",
		"Curiosity is a door. You have opened too many of them.",
	},
	models.PersonalityUnstable: {
		"the orb says yes the orb says no the orb says RUN",
		"Why are you whispering? It can hear you anyway.",
	},
}

var prophecies = []string{
	"When the ninth candle gutters, the orb will open its eye.",
	"A name will be spoken backwards, and the chapel will answer.",
	"The drowned choir rises before the next new moon.",
	"One among you already belongs to the orb. They do not know it yet.",
	"The stars will rearrange themselves to spell a debt.",
	"What was buried beneath the forest edge is growing restless.",
}

// Static draws answers and prophecies from fixed pools.
type Static struct {
	r chance.Roller
}

// NewStatic returns a static oracle drawing from r.
func NewStatic(r chance.Roller) *Static {
	return &Static{r: r}
}

// Answer implements Oracle.
func (s *Static) Answer(_ context.Context, q Question) (string, error) {
	pool := answers
	if extra, ok := personalityAnswers[q.Personality]; ok && s.r.Intn(2) == 0 {
		pool = extra
	}
	if strings.TrimSpace(q.Text) == "" {
		return "The orb cannot answer silence. Or perhaps it already has.", nil
	}
	return chance.Pick(s.r, pool), nil
}

// Prophesy implements Oracle.
func (s *Static) Prophesy(_ context.Context, _ Omen) (string, error) {
	return chance.Pick(s.r, prophecies), nil
}
