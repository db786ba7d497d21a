package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jinzhu/copier"
)

const reloadDebounce = 250 * time.Millisecond

// Store holds the active configuration and keeps it fresh from disk.
// Readers get immutable snapshots; a failed reload leaves the active
// configuration untouched.
type Store struct {
	dir     string
	current atomic.Pointer[Config]

	mu          sync.Mutex
	subscribers []func(*Config)
}

// NewStore loads the initial configuration from dir. Startup fails on an
// invalid file; only reloads fall back to prior values.
func NewStore(dir string) (*Store, error) {
	cfg, err := Load(dir)
	if err != nil {
		return nil, err
	}

	store := &Store{dir: dir}
	store.current.Store(cfg)
	return store, nil
}

// Config returns the active configuration. The returned value is shared;
// treat it as read-only. Use Snapshot for a mutable copy.
func (s *Store) Config() *Config {
	return s.current.Load()
}

// Snapshot returns a deep copy of the active configuration.
func (s *Store) Snapshot() (*Config, error) {
	snapshot := &Config{}
	if err := copier.CopyWithOption(snapshot, s.current.Load(), copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("failed to copy configuration: %w", err)
	}
	return snapshot, nil
}

// Subscribe registers a callback invoked with a deep copy of the new
// configuration after every successful reload.
func (s *Store) Subscribe(fn func(*Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Watch blocks watching the config directory for changes until ctx is done.
// Reloads are debounced; an invalid or unreadable file keeps the prior
// configuration active.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors and deploy tooling replace
	// the file by rename, which would orphan a file watch.
	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("failed to watch config dir: %w", err)
	}

	var debounce *time.Timer
	reloads := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !s.isConfigFile(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				select {
				case reloads <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.WarnContext(ctx, "config watcher error", "error", err)
		case <-reloads:
			s.reload(ctx)
		}
	}
}

func (s *Store) isConfigFile(path string) bool {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) == configName
}

func (s *Store) reload(ctx context.Context) {
	cfg, err := Load(s.dir)
	if err != nil {
		logger.WarnContext(ctx, "config reload rejected, keeping prior values", "error", err)
		return
	}

	s.current.Store(cfg)
	logger.InfoContext(ctx, "config reloaded")

	s.mu.Lock()
	subscribers := make([]func(*Config), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	for _, subscriber := range subscribers {
		snapshot, err := s.Snapshot()
		if err != nil {
			logger.WarnContext(ctx, "failed to snapshot config for subscriber", "error", err)
			continue
		}
		subscriber(snapshot)
	}
}
