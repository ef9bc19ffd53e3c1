package models

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestCultistProfileYAML(t *testing.T) {
	p := NewCultistProfile("u1")
	p.Favor = 42
	p.Sanity = 61
	p.Artifacts = []Artifact{{Name: "Bone Flute", Tier: TierRare}, {Name: "The Hollow Crown", Tier: TierCursed}}
	p.Achievements = []string{"Initiate"}
	p.LastRitualAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p.Kills = 2

	data, err := EncodeCultist(p)
	if err != nil {
		t.Fatalf("Failed to encode profile: %v", err)
	}

	p2, err := DecodeCultist("u1", data)
	if err != nil {
		t.Fatalf("Failed to decode profile: %v", err)
	}

	if diff := cmp.Diff(p, p2); diff != "" {
		t.Errorf("profile mismatch after round trip (-want +got):\n%s", diff)
	}
}

func TestDecodeCultistFillsDefaults(t *testing.T) {
	legacy := []byte("favor: 12\nmadness_level: 2\nachievements: [Initiate, Initiate]\n")

	p, err := DecodeCultist("old", legacy)
	if err != nil {
		t.Fatalf("Failed to decode legacy record: %v", err)
	}
	if p.Sanity != MaxSanity {
		t.Errorf("Expected default sanity %d, got %d", MaxSanity, p.Sanity)
	}
	if p.TimesMad != 2 {
		t.Errorf("Expected times_mad backfilled to 2, got %d", p.TimesMad)
	}
	if len(p.Achievements) != 1 {
		t.Errorf("Expected duplicate achievements collapsed, got %v", p.Achievements)
	}
	if p.Artifacts == nil {
		t.Error("Expected artifacts to be an empty slice, got nil")
	}
	if p.Personality != PersonalityNeutral {
		t.Errorf("Expected derived personality neutral, got %s", p.Personality)
	}
	if p.Version != SchemaVersion {
		t.Errorf("Expected version %d, got %d", SchemaVersion, p.Version)
	}
}

func TestDecodeCultistRejectsCorruptData(t *testing.T) {
	if _, err := DecodeCultist("x", []byte("sanity: [not, an, int")); err == nil {
		t.Fatal("Expected error for corrupt record")
	}
	if _, err := DecodeCultist("x", []byte("   ")); !errors.Is(err, ErrEmptyRecord) {
		t.Fatalf("Expected ErrEmptyRecord, got %v", err)
	}
}

func TestDecodeClampsSanity(t *testing.T) {
	p, err := DecodeCultist("x", []byte("sanity: 250\n"))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Sanity != MaxSanity {
		t.Errorf("Expected sanity clamped to %d, got %d", MaxSanity, p.Sanity)
	}
}

func TestResetPreservesLifetimeCounters(t *testing.T) {
	p := NewCultistProfile("u")
	p.Sanity = 3
	p.Favor = -40
	p.Artifacts = []Artifact{{Name: "Tooth", Tier: TierCommon}}
	p.Achievements = []string{"Initiate"}
	p.QuestionsAsked = 4
	p.MadnessLevel = 2
	p.Sacrifices = 1
	p.Kills = 5
	p.TimesKilled = 3
	p.TimesMad = 2

	p.Reset()

	if p.Sanity != MaxSanity || p.Favor != 0 || len(p.Artifacts) != 0 || len(p.Achievements) != 0 || p.QuestionsAsked != 0 {
		t.Errorf("Expected session fields reset, got %+v", p)
	}
	if p.MadnessLevel != 2 || p.Sacrifices != 1 || p.Kills != 5 || p.TimesKilled != 3 || p.TimesMad != 2 {
		t.Errorf("Expected lifetime counters preserved, got %+v", p)
	}
}

func TestDerivePersonality(t *testing.T) {
	tests := []struct {
		name string
		p    CultistProfile
		want Personality
	}{
		{"fresh", CultistProfile{Sanity: 100}, PersonalityNeutral},
		{"low sanity", CultistProfile{Sanity: 10, Favor: 900}, PersonalityUnstable},
		{"mad history", CultistProfile{Sanity: 90, MadnessLevel: 2}, PersonalityNeutral},
		{"unstable edge", CultistProfile{Sanity: 29, MadnessLevel: 0}, PersonalityUnstable},
		{"stable edge", CultistProfile{Sanity: 30, MadnessLevel: 3}, PersonalityNeutral},
		{"devoted", CultistProfile{Sanity: 80, Favor: 200}, PersonalityDevoted},
		{"curious", CultistProfile{Sanity: 80, QuestionsAsked: 12}, PersonalityCurious},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DerivePersonality(&tt.p); got != tt.want {
				t.Errorf("DerivePersonality() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestServerProfileDecode(t *testing.T) {
	s := NewServerProfile("g1")
	s.TotalMentions = 30
	s.Prophecies = append(s.Prophecies, Prophecy{Text: "The orb wakes", AuthorID: "u1", At: time.Unix(100, 0).UTC()})

	data, err := EncodeServer(s)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeServer("g1", data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(s, got); diff != "" {
		t.Errorf("server mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTier(t *testing.T) {
	for _, tier := range Tiers {
		got, err := ParseTier(tier.String())
		if err != nil || got != tier {
			t.Errorf("ParseTier(%q) = %v, %v", tier.String(), got, err)
		}
	}
	if _, err := ParseTier("mythic"); err == nil {
		t.Error("Expected error for unknown tier")
	}
}
