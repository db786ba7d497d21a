package chat

import (
	"context"
	"sync"
	"time"
)

// Mock is a scripted Completer for tests and offline simulation.
type Mock struct {
	// Response is returned for every call unless Script is non-empty.
	Response Response
	// Script is consumed one entry per call; the last entry repeats once the
	// script runs out.
	Script []Response
	// Err, when set, fails every call.
	Err error
	// Delay is slept (context-aware) before responding.
	Delay time.Duration

	mu       sync.Mutex
	calls    int
	requests []Request
}

func (m *Mock) Complete(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.calls++
	idx := m.calls - 1
	m.requests = append(m.requests, req)
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

	if len(m.Script) > 0 {
		if idx >= len(m.Script) {
			idx = len(m.Script) - 1
		}
		response := m.Script[idx]
		return &response, nil
	}
	response := m.Response
	return &response, nil
}

// Calls reports how many completions were attempted.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the most recent request, or a zero request when none
// were made.
func (m *Mock) LastRequest() Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return Request{}
	}
	return m.requests[len(m.requests)-1]
}
