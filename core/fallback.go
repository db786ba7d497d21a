package commentary

import (
	"github.com/castwerk/booth-core/core/config"
	"github.com/castwerk/booth-core/core/telemetry"
)

// lastResortLine keeps the booth audible even when the config ships with
// every fallback pool empty.
const lastResortLine = "What a play!"

// fallbackBank serves canned lines when narration cannot. Pick never
// fails: a per-kind pool first, the shared pool next, a compiled-in line
// last. Each pool rotates through its lines so repeated failures do not
// repeat the same canned text.
type fallbackBank struct {
	defaultPool []string
	kindPools   map[string][]string
	cursors     map[string]int
}

func newFallbackBank(cfg config.FallbackConfig) *fallbackBank {
	bank := &fallbackBank{cursors: make(map[string]int)}
	bank.applyConfig(cfg)
	return bank
}

func (b *fallbackBank) pick(kind telemetry.Kind) string {
	if pool := b.kindPools[string(kind)]; len(pool) > 0 {
		return b.take(string(kind), pool)
	}
	if len(b.defaultPool) > 0 {
		return b.take("", b.defaultPool)
	}
	return lastResortLine
}

func (b *fallbackBank) take(key string, pool []string) string {
	cursor := b.cursors[key]
	line := pool[cursor%len(pool)]
	b.cursors[key] = cursor + 1
	return line
}

func (b *fallbackBank) applyConfig(cfg config.FallbackConfig) {
	b.defaultPool = cfg.Lines
	b.kindPools = cfg.Kinds
}

func (b *fallbackBank) resetCursors() {
	b.cursors = make(map[string]int)
}
