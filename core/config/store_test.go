package config

import (
	"context"
	"testing"
)

func TestStoreReloadKeepsPriorValuesOnInvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[commentary]
min_seconds_between_lines = 3.0
`)

	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("expected store to start, got %v", err)
	}
	if got := store.Config().Commentary.MinSecondsBetweenLines; got != 3.0 {
		t.Fatalf("expected initial cooldown 3.0, got %v", got)
	}

	writeConfig(t, dir, `
[commentary]
queue_capacity = -1
`)
	store.reload(context.Background())

	if got := store.Config().Commentary.MinSecondsBetweenLines; got != 3.0 {
		t.Fatalf("expected prior config to survive invalid reload, got cooldown %v", got)
	}
}

func TestStoreReloadNotifiesSubscribers(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[commentary]
min_seconds_between_lines = 3.0
`)

	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("expected store to start, got %v", err)
	}

	var received *Config
	store.Subscribe(func(cfg *Config) { received = cfg })

	writeConfig(t, dir, `
[commentary]
min_seconds_between_lines = 5.0
`)
	store.reload(context.Background())

	if received == nil {
		t.Fatal("expected subscriber to be notified")
	}
	if got := received.Commentary.MinSecondsBetweenLines; got != 5.0 {
		t.Fatalf("expected subscriber to see cooldown 5.0, got %v", got)
	}

	// Subscribers get their own copy; mutating it must not touch the store.
	received.Commentary.QueueCapacity = 1
	if got := store.Config().Commentary.QueueCapacity; got != 16 {
		t.Fatalf("expected store config to be isolated from subscriber copy, got %d", got)
	}
}

func TestStoreStartupFailsOnInvalidFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[commentary]
queue_capacity = 0
`)

	if _, err := NewStore(dir); err == nil {
		t.Fatal("expected startup to fail on invalid config")
	}
}
