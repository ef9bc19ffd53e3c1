package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	MinSanity = 0
	MaxSanity = 100

	// MadnessCap is the madness level at which a cultist stops making sense.
	MadnessCap = 3

	// UnstableSanity is the sanity below which a cultist derives as unstable.
	UnstableSanity = 30
)

// Personality is derived from a cultist's record; it is never set directly.
type Personality string

const (
	PersonalityNeutral  Personality = "neutral"
	PersonalityCurious  Personality = "curious"
	PersonalityDevoted  Personality = "devoted"
	PersonalityUnstable Personality = "unstable"
)

// RarityTier is the class of an artifact. Tiers are ordered from common to cursed.
type RarityTier int

const (
	TierCommon RarityTier = iota
	TierRare
	TierEpic
	TierLegendary
	TierCursed
)

// Tiers lists every tier in ascending order.
var Tiers = []RarityTier{TierCommon, TierRare, TierEpic, TierLegendary, TierCursed}

func (t RarityTier) String() string {
	switch t {
	case TierCommon:
		return "common"
	case TierRare:
		return "rare"
	case TierEpic:
		return "epic"
	case TierLegendary:
		return "legendary"
	case TierCursed:
		return "cursed"
	default:
		return "unknown"
	}
}

// ParseTier converts a tier name back into a RarityTier.
func ParseTier(s string) (RarityTier, error) {
	for _, t := range Tiers {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown rarity tier %q", s)
}

func (t RarityTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *RarityTier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Artifact is a relic owned by exactly one cultist.
type Artifact struct {
	Name string     `yaml:"name" json:"name"`
	Tier RarityTier `yaml:"tier" json:"tier"`
}

// CultistProfile is a user's persistent progression record.
type CultistProfile struct {
	Version int    `yaml:"version"`
	ID      string `yaml:"id"`

	Sanity    int        `yaml:"sanity"`
	Favor     int        `yaml:"favor"`
	Artifacts []Artifact `yaml:"artifacts"`

	QuestionsAsked int `yaml:"questions_asked"`
	Encounters     int `yaml:"encounters"`
	TotalMentions  int `yaml:"total_mentions"`

	LastRitualAt     time.Time `yaml:"last_ritual_at"`
	LastMeditationAt time.Time `yaml:"last_meditation_at"`

	Achievements []string    `yaml:"achievements"`
	Personality  Personality `yaml:"personality"`
	MadnessLevel int         `yaml:"madness_level"`

	// Lifetime counters survive resets.
	Sacrifices  int `yaml:"sacrifices"`
	Kills       int `yaml:"kills"`
	TimesKilled int `yaml:"times_killed"`
	TimesMad    int `yaml:"times_mad"`
}

// Prophecy is a line of doom recorded against a server.
type Prophecy struct {
	Text     string    `yaml:"text" json:"text"`
	At       time.Time `yaml:"at" json:"at"`
	AuthorID string    `yaml:"author_id" json:"authorId"`
}

// ServerProfile tracks a server's collective descent.
type ServerProfile struct {
	Version       int        `yaml:"version"`
	ID            string     `yaml:"id"`
	TotalMentions int        `yaml:"total_mentions"`
	EventLevel    int        `yaml:"event_level"`
	ServerSanity  int        `yaml:"server_sanity"`
	Prophecies    []Prophecy `yaml:"prophecies"`
}

// AdventureSession is a user's live position in the adventure graph.
type AdventureSession struct {
	Version     int       `yaml:"version"`
	ID          string    `yaml:"id"`
	UserID      string    `yaml:"user_id"`
	NodeID      string    `yaml:"node_id"`
	StartedAt   time.Time `yaml:"started_at"`
	SanityDelta int       `yaml:"sanity_delta"`
	FavorDelta  int       `yaml:"favor_delta"`
	Steps       int       `yaml:"steps"`
}

// NewCultistProfile returns the record a new user starts with.
func NewCultistProfile(id string) *CultistProfile {
	return &CultistProfile{
		Version:      SchemaVersion,
		ID:           id,
		Sanity:       MaxSanity,
		Artifacts:    []Artifact{},
		Achievements: []string{},
		Personality:  PersonalityNeutral,
	}
}

// NewServerProfile returns the record a new server starts with.
func NewServerProfile(id string) *ServerProfile {
	return &ServerProfile{
		Version:      SchemaVersion,
		ID:           id,
		ServerSanity: MaxSanity,
		Prophecies:   []Prophecy{},
	}
}

// Clone returns a deep copy of the profile.
func (p *CultistProfile) Clone() *CultistProfile {
	c := *p
	c.Artifacts = slices.Clone(p.Artifacts)
	c.Achievements = slices.Clone(p.Achievements)
	if c.Artifacts == nil {
		c.Artifacts = []Artifact{}
	}
	if c.Achievements == nil {
		c.Achievements = []string{}
	}
	return &c
}

// Clone returns a deep copy of the server profile.
func (s *ServerProfile) Clone() *ServerProfile {
	c := *s
	c.Prophecies = slices.Clone(s.Prophecies)
	if c.Prophecies == nil {
		c.Prophecies = []Prophecy{}
	}
	return &c
}

// HasAchievement reports whether name has been unlocked.
func (p *CultistProfile) HasAchievement(name string) bool {
	return slices.Contains(p.Achievements, name)
}

// AddAchievement records name and reports whether it was new.
func (p *CultistProfile) AddAchievement(name string) bool {
	if p.HasAchievement(name) {
		return false
	}
	p.Achievements = append(p.Achievements, name)
	return true
}

// Owns reports whether the cultist holds at least one artifact of tier.
func (p *CultistProfile) Owns(tier RarityTier) bool {
	for _, a := range p.Artifacts {
		if a.Tier == tier {
			return true
		}
	}
	return false
}

// Reset wipes the current life. Lifetime counters and madness history stay.
func (p *CultistProfile) Reset() {
	p.Sanity = MaxSanity
	p.Favor = 0
	p.Artifacts = []Artifact{}
	p.QuestionsAsked = 0
	p.Encounters = 0
	p.TotalMentions = 0
	p.LastRitualAt = time.Time{}
	p.LastMeditationAt = time.Time{}
	p.Achievements = []string{}
	p.Personality = PersonalityNeutral
}

// Refresh recomputes derived fields.
func (p *CultistProfile) Refresh() {
	p.Personality = DerivePersonality(p)
}

// DerivePersonality computes the personality a record implies. Only
// current-life fields count, so a reset profile derives as neutral.
func DerivePersonality(p *CultistProfile) Personality {
	switch {
	case p.Sanity < UnstableSanity:
		return PersonalityUnstable
	case p.Favor >= 200:
		return PersonalityDevoted
	case p.QuestionsAsked >= 10:
		return PersonalityCurious
	default:
		return PersonalityNeutral
	}
}

// ClampSanity bounds v to the legal sanity range.
func ClampSanity(v int) int {
	return max(MinSanity, min(MaxSanity, v))
}
