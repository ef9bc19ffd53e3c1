package storage

import (
	"time"

	"github.com/tatianab/orb-cult/internal/models"
)

// CultistPatch is a shallow merge into a cultist profile. Nil fields are
// left untouched.
type CultistPatch struct {
	Sanity           *int
	Favor            *int
	Artifacts        []models.Artifact
	QuestionsAsked   *int
	Encounters       *int
	TotalMentions    *int
	LastRitualAt     *time.Time
	LastMeditationAt *time.Time
	Achievements     []string
	MadnessLevel     *int
}

// Apply merges the patch into p. Sanity is clamped and the personality is
// recomputed.
func (c CultistPatch) Apply(p *models.CultistProfile) {
	if c.Sanity != nil {
		p.Sanity = models.ClampSanity(*c.Sanity)
	}
	if c.Favor != nil {
		p.Favor = *c.Favor
	}
	if c.Artifacts != nil {
		p.Artifacts = append([]models.Artifact{}, c.Artifacts...)
	}
	if c.QuestionsAsked != nil {
		p.QuestionsAsked = max(0, *c.QuestionsAsked)
	}
	if c.Encounters != nil {
		p.Encounters = max(0, *c.Encounters)
	}
	if c.TotalMentions != nil {
		p.TotalMentions = max(0, *c.TotalMentions)
	}
	if c.LastRitualAt != nil {
		p.LastRitualAt = *c.LastRitualAt
	}
	if c.LastMeditationAt != nil {
		p.LastMeditationAt = *c.LastMeditationAt
	}
	if c.Achievements != nil {
		p.Achievements = []string{}
		for _, a := range c.Achievements {
			p.AddAchievement(a)
		}
	}
	if c.MadnessLevel != nil {
		p.MadnessLevel = max(0, *c.MadnessLevel)
	}
	p.Refresh()
}

// ServerPatch is a shallow merge into a server profile.
type ServerPatch struct {
	TotalMentions *int
	EventLevel    *int
	ServerSanity  *int
}

// Apply merges the patch into s.
func (c ServerPatch) Apply(s *models.ServerProfile) {
	if c.TotalMentions != nil {
		s.TotalMentions = max(0, *c.TotalMentions)
	}
	if c.EventLevel != nil {
		s.EventLevel = max(0, *c.EventLevel)
	}
	if c.ServerSanity != nil {
		s.ServerSanity = models.ClampSanity(*c.ServerSanity)
	}
}
