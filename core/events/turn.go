package events

import "github.com/castwerk/booth-core/core/telemetry"

const (
	// KindTurnDispatched identifies assignment of a queued event to a persona.
	KindTurnDispatched Kind = "turn.dispatched"
	// KindTurnCompleted identifies successful narration of a turn.
	KindTurnCompleted Kind = "turn.completed"
	// KindTurnFailed identifies a turn resolved by a fallback line.
	KindTurnFailed Kind = "turn.failed"
	// KindTurnCancelled identifies a turn abandoned without output.
	KindTurnCancelled Kind = "turn.cancelled"
)

// TurnDispatched marks a queued event leaving the queue with a sequence
// number and a speaking persona.
type TurnDispatched struct {
	Base
	Seq       uint64
	PersonaID string
	Event     telemetry.Event
}

// NewTurnDispatched creates a turn dispatched event.
func NewTurnDispatched(seq uint64, personaID string, event telemetry.Event) TurnDispatched {
	return TurnDispatched{Base: NewBase(KindTurnDispatched), Seq: seq, PersonaID: personaID, Event: event}
}

// TurnCompleted marks a turn whose narration pipeline produced a line.
type TurnCompleted struct {
	Base
	Seq       uint64
	PersonaID string
}

// NewTurnCompleted creates a turn completed event.
func NewTurnCompleted(seq uint64, personaID string) TurnCompleted {
	return TurnCompleted{Base: NewBase(KindTurnCompleted), Seq: seq, PersonaID: personaID}
}

// TurnFailed marks a turn the pipeline gave up on.
type TurnFailed struct {
	Base
	Seq       uint64
	PersonaID string
}

// NewTurnFailed creates a turn failed event.
func NewTurnFailed(seq uint64, personaID string) TurnFailed {
	return TurnFailed{Base: NewBase(KindTurnFailed), Seq: seq, PersonaID: personaID}
}

// TurnCancelled marks a turn abandoned without output. Forced reports
// scheduler-initiated cancellation of a stuck turn, as opposed to slot
// preemption by a newer dispatch.
type TurnCancelled struct {
	Base
	Seq       uint64
	PersonaID string
	Forced    bool
}

// NewTurnCancelled creates a turn cancelled event.
func NewTurnCancelled(seq uint64, personaID string, forced bool) TurnCancelled {
	return TurnCancelled{Base: NewBase(KindTurnCancelled), Seq: seq, PersonaID: personaID, Forced: forced}
}
