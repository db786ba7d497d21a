package commentary

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/castwerk/booth-core/core/chat"
	"github.com/castwerk/booth-core/core/telemetry"
)

// TurnState tracks a turn through its lifecycle. Transitions only move
// forward and a terminal state is final; racing writers settle it with a
// single compare-and-swap winner.
type TurnState int32

const (
	TurnDispatched TurnState = iota
	TurnAwaitingChat
	TurnAwaitingAudio
	TurnCompleted
	TurnFailedFallback
	TurnCancelled
)

func (s TurnState) String() string {
	switch s {
	case TurnDispatched:
		return "dispatched"
	case TurnAwaitingChat:
		return "awaiting_chat"
	case TurnAwaitingAudio:
		return "awaiting_audio"
	case TurnCompleted:
		return "completed"
	case TurnFailedFallback:
		return "failed_fallback"
	case TurnCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state admits no further transitions.
func (s TurnState) Terminal() bool {
	switch s {
	case TurnCompleted, TurnFailedFallback, TurnCancelled:
		return true
	default:
		return false
	}
}

// Turn is one slot of commentary handed to a persona: a single event, a
// built prompt, a sequence number and a deadline. The scheduler creates it,
// the narration worker drives it, and whichever side reaches a terminal
// state first owns the outcome.
type Turn struct {
	ID           string
	Seq          uint64
	PersonaID    string
	Event        telemetry.Event
	Merges       int
	Prompt       chat.Request
	Voice        string
	DispatchedAt time.Time
	Deadline     time.Time

	state    atomic.Int32
	attempts atomic.Int32
	cancel   context.CancelFunc
}

func (t *Turn) State() TurnState {
	return TurnState(t.state.Load())
}

// Attempts reports how many upstream API attempts the turn has consumed
// across both stages.
func (t *Turn) Attempts() int {
	return int(t.attempts.Load())
}

// advance moves the turn from one in-flight state to the next. It fails if
// another writer got there first, which the worker treats as a preemption.
func (t *Turn) advance(from, to TurnState) bool {
	return t.state.CompareAndSwap(int32(from), int32(to))
}

// finalize moves the turn into a terminal state from whatever in-flight
// state it is in. Exactly one caller wins; everyone else sees false and
// must leave the outcome alone.
func (t *Turn) finalize(to TurnState) bool {
	for {
		current := t.state.Load()
		if TurnState(current).Terminal() {
			return false
		}
		if t.state.CompareAndSwap(current, int32(to)) {
			return true
		}
	}
}

// Cancel finalizes the turn as cancelled and interrupts its worker. It
// reports false when the turn already resolved on its own.
func (t *Turn) Cancel() bool {
	won := t.finalize(TurnCancelled)
	if t.cancel != nil {
		t.cancel()
	}
	return won
}

// Expired reports whether the turn has outlived its deadline.
func (t *Turn) Expired(now time.Time) bool {
	return now.After(t.Deadline)
}
