package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/tatianab/orb-cult/internal/rules"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Storage != StorageYAML {
		t.Errorf("Expected default storage %q, got %q", StorageYAML, cfg.Storage)
	}
	if cfg.Port != 3000 {
		t.Errorf("Expected port 3000, got %d", cfg.Port)
	}
	if cfg.RitualCooldown != 2*time.Hour || cfg.MeditationCooldown != 4*time.Hour {
		t.Errorf("unexpected cooldowns %v / %v", cfg.RitualCooldown, cfg.MeditationCooldown)
	}
	th, err := cfg.Thresholds()
	if err != nil {
		t.Fatalf("Thresholds: %v", err)
	}
	if th != rules.DefaultThresholds {
		t.Errorf("Expected default thresholds, got %v", th)
	}
	if cfg.OracleEnabled() {
		t.Error("Expected oracle disabled without an API key")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("CULT_STORAGE", "sqlite")
	t.Setenv("CULT_SAVE_DIR", "/tmp/cult")
	t.Setenv("CULT_RARITY_THRESHOLDS", "0,10,20,30")
	t.Setenv("CULT_RITUAL_COOLDOWN", "1m")
	t.Setenv("CULT_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.StoragePath() != "/tmp/cult/cult.db" {
		t.Errorf("unexpected storage path %q", cfg.StoragePath())
	}
	th, _ := cfg.Thresholds()
	if th != (rules.Thresholds{0, 10, 20, 30}) {
		t.Errorf("unexpected thresholds %v", th)
	}
	if cfg.RitualCooldown != time.Minute {
		t.Errorf("Expected 1m ritual cooldown, got %v", cfg.RitualCooldown)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("Expected debug level, got %v", cfg.Level())
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown storage", map[string]string{"CULT_STORAGE": "floppy"}},
		{"descending thresholds", map[string]string{"CULT_RARITY_THRESHOLDS": "0,150,50,300"}},
		{"short thresholds", map[string]string{"CULT_RARITY_THRESHOLDS": "0,50"}},
		{"bad level", map[string]string{"CULT_LOG_LEVEL": "loud"}},
		{"bad format", map[string]string{"CULT_LOG_FORMAT": "xml"}},
		{"bad port", map[string]string{"PORT": "70000"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestLoadConfigParseError(t *testing.T) {
	t.Setenv("PORT", "not-a-port")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("Expected parse error")
	}
}
