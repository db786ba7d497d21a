package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := Default()
	cfg.Commentary.MinSecondsBetweenLines = -1
	cfg.Commentary.QueueCapacity = 0
	cfg.Commentators = cfg.Commentators[:1]

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation to fail")
	}
	for _, want := range []string{
		"commentator.toml::commentary.min_seconds_between_lines must be >= 0",
		"commentator.toml::commentary.queue_capacity must be > 0",
		"commentator.toml::commentators must define at least two profiles",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected error to mention %q, got %v", want, err)
		}
	}
}

func TestValidateRejectsDuplicateIDs(t *testing.T) {
	cfg := Default()
	cfg.Commentators[1].ID = cfg.Commentators[0].ID

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "is duplicated") {
		t.Fatalf("expected duplicate id rejection, got %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("expected defaults for empty dir, got %v", err)
	}
	if len(cfg.Commentators) != 2 {
		t.Fatalf("expected two default commentators, got %d", len(cfg.Commentators))
	}
	if cfg.Commentators[0].Name != "George" {
		t.Fatalf("expected default persona George, got %q", cfg.Commentators[0].Name)
	}
	if cfg.Commentary.QueueCapacity != 16 {
		t.Fatalf("expected default queue capacity 16, got %d", cfg.Commentary.QueueCapacity)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[commentary]
min_seconds_between_lines = 4.0
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}
	if cfg.Commentary.MinSecondsBetweenLines != 4.0 {
		t.Fatalf("expected cooldown override 4.0, got %v", cfg.Commentary.MinSecondsBetweenLines)
	}
	if cfg.Commentary.QueueCapacity != 16 {
		t.Fatalf("expected default queue capacity to survive partial file, got %d", cfg.Commentary.QueueCapacity)
	}
	if len(cfg.Commentators) != 2 {
		t.Fatalf("expected default commentators to survive partial file, got %d", len(cfg.Commentators))
	}
}

func TestLoadAppliesProfileDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[[commentators]]
id = "left"
name = "Lefty"

[[commentators]]
id = "right"
name = "Righty"
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}
	profile := cfg.Commentators[0]
	if profile.StyleInstruction != DefaultStyleInstruction {
		t.Fatalf("expected default style instruction, got %q", profile.StyleInstruction)
	}
	if profile.StyleLength != "short" {
		t.Fatalf("expected default style length short, got %q", profile.StyleLength)
	}
	if profile.CharacterID != "left" {
		t.Fatalf("expected character id to default to id, got %q", profile.CharacterID)
	}
	if !profile.ProfanityOn() {
		t.Fatal("expected profanity filter to default on")
	}
	if profile.SubtitleColor == (Color{}) {
		t.Fatal("expected default subtitle color to be applied")
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[commentary]
queue_capacity = -3
`)

	if _, err := Load(dir); err == nil {
		t.Fatal("expected invalid config to be rejected")
	}
}

func writeConfig(t *testing.T, dir, contents string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "commentator.toml"), []byte(contents), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}
