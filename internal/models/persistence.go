package models

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// SchemaVersion is stamped on every record written by this build.
const SchemaVersion = 2

// ErrEmptyRecord is returned when a stored record holds no data.
var ErrEmptyRecord = errors.New("models: empty record")

// EncodeCultist serializes a profile for storage.
func EncodeCultist(p *CultistProfile) ([]byte, error) {
	p.Version = SchemaVersion
	return yaml.Marshal(p)
}

// DecodeCultist parses a stored profile, filling defaults for fields the
// record predates. A record that cannot be parsed is an error, never a
// fresh profile.
func DecodeCultist(id string, data []byte) (*CultistProfile, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("cultist %s: %w", id, ErrEmptyRecord)
	}
	p := NewCultistProfile(id)
	p.Version = 0
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("decode cultist %s: %w", id, err)
	}
	migrateCultist(p)
	p.ID = id
	return p, nil
}

func migrateCultist(p *CultistProfile) {
	// v1 introduced the lifetime madness counter.
	if p.Version < 1 && p.TimesMad == 0 && p.MadnessLevel > 0 {
		p.TimesMad = p.MadnessLevel
	}
	// v2 stores tiers by name and drops negative counters left by old resets.
	if p.Version < 2 {
		p.QuestionsAsked = max(0, p.QuestionsAsked)
		p.Encounters = max(0, p.Encounters)
		p.TotalMentions = max(0, p.TotalMentions)
		p.MadnessLevel = max(0, p.MadnessLevel)
	}
	if p.Artifacts == nil {
		p.Artifacts = []Artifact{}
	}
	if p.Achievements == nil {
		p.Achievements = []string{}
	}
	p.Achievements = dedupe(p.Achievements)
	p.Sanity = ClampSanity(p.Sanity)
	p.Refresh()
	p.Version = SchemaVersion
}

// EncodeServer serializes a server profile for storage.
func EncodeServer(s *ServerProfile) ([]byte, error) {
	s.Version = SchemaVersion
	return yaml.Marshal(s)
}

// DecodeServer parses a stored server profile.
func DecodeServer(id string, data []byte) (*ServerProfile, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("server %s: %w", id, ErrEmptyRecord)
	}
	s := NewServerProfile(id)
	s.Version = 0
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("decode server %s: %w", id, err)
	}
	if s.Prophecies == nil {
		s.Prophecies = []Prophecy{}
	}
	s.ServerSanity = ClampSanity(s.ServerSanity)
	s.ID = id
	s.Version = SchemaVersion
	return s, nil
}

// EncodeSession serializes an adventure session for storage.
func EncodeSession(s *AdventureSession) ([]byte, error) {
	s.Version = SchemaVersion
	return yaml.Marshal(s)
}

// DecodeSession parses a stored adventure session.
func DecodeSession(userID string, data []byte) (*AdventureSession, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("session %s: %w", userID, ErrEmptyRecord)
	}
	var s AdventureSession
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", userID, err)
	}
	if s.NodeID == "" {
		return nil, fmt.Errorf("decode session %s: missing node id", userID)
	}
	s.UserID = userID
	s.Version = SchemaVersion
	return &s, nil
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
