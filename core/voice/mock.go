package voice

import (
	"context"
	"sync"
	"time"

	"github.com/castwerk/booth-core/core/audio"
)

// Mock is a scripted Synthesizer for tests and offline simulation. It
// fabricates a deterministic payload sized from the text so duration
// estimates stay plausible.
type Mock struct {
	// Err, when set, fails every call.
	Err error
	// Delay is slept (context-aware) before responding.
	Delay time.Duration

	mu    sync.Mutex
	calls int
}

func (m *Mock) Synthesize(ctx context.Context, req Request) (*Clip, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.Delay):
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}

	encoding := req.Encoding
	if encoding.IsZero() {
		encoding = audio.DefaultEncodingInfo()
	}

	// Roughly 60ms of audio per character reads as a plausible speech rate.
	samples := len(req.Text) * encoding.SampleRate * 60 / 1000
	return &Clip{Audio: make([]byte, samples*encoding.Format.ByteSize()), Encoding: encoding}, nil
}

// Calls reports how many synthesis requests were attempted.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
