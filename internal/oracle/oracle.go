// Package oracle produces the answers and prophecies the orb speaks. A
// Gemini-backed oracle is used when an API key is configured; a static
// pool of lines stands in otherwise and whenever Gemini fails.
package oracle

import (
	"context"
	"log/slog"

	"github.com/tatianab/orb-cult/internal/metrics"
	"github.com/tatianab/orb-cult/internal/models"
)

// Question is a devotee asking the orb something.
type Question struct {
	Text        string
	Personality models.Personality
	Sanity      int
	Favor       int
	Artifacts   []string
}

// Omen is what the orb knows about a server when it prophesies.
type Omen struct {
	ServerSanity  int
	EventLevel    int
	TotalMentions int
	Recent        []string
}

// Oracle answers questions and utters prophecies.
type Oracle interface {
	Answer(ctx context.Context, q Question) (string, error)
	Prophesy(ctx context.Context, o Omen) (string, error)
}

// QuestionFor builds the question a cultist asks.
func QuestionFor(p *models.CultistProfile, text string) Question {
	names := make([]string, 0, len(p.Artifacts))
	for _, a := range p.Artifacts {
		names = append(names, a.Name)
	}
	return Question{
		Text:        text,
		Personality: p.Personality,
		Sanity:      p.Sanity,
		Favor:       p.Favor,
		Artifacts:   names,
	}
}

// OmenFor builds the omen for a server, quoting its latest prophecies.
func OmenFor(s *models.ServerProfile) Omen {
	o := Omen{ServerSanity: s.ServerSanity, EventLevel: s.EventLevel, TotalMentions: s.TotalMentions}
	start := max(0, len(s.Prophecies)-3)
	for _, p := range s.Prophecies[start:] {
		o.Recent = append(o.Recent, p.Text)
	}
	return o
}

// Fallback asks Primary and, if it fails, Backup.
type Fallback struct {
	Primary Oracle
	Backup  Oracle
	Logger  *slog.Logger
}

// Answer implements Oracle.
func (f *Fallback) Answer(ctx context.Context, q Question) (string, error) {
	text, err := f.Primary.Answer(ctx, q)
	if err == nil {
		return text, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	f.warn("answer", err)
	return f.Backup.Answer(ctx, q)
}

// Prophesy implements Oracle.
func (f *Fallback) Prophesy(ctx context.Context, o Omen) (string, error) {
	text, err := f.Primary.Prophesy(ctx, o)
	if err == nil {
		return text, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	f.warn("prophecy", err)
	return f.Backup.Prophesy(ctx, o)
}

func (f *Fallback) warn(op string, err error) {
	metrics.OracleFallback()
	if f.Logger != nil {
		f.Logger.Warn("oracle unavailable, using static lines", "op", op, "error", err)
	}
}
