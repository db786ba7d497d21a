package events

import "github.com/castwerk/booth-core/core/telemetry"

const (
	// KindGameplayAccepted identifies a telemetry event queued for commentary.
	KindGameplayAccepted Kind = "gameplay.accepted"
	// KindGameplayMerged identifies a telemetry event folded into a pending entry.
	KindGameplayMerged Kind = "gameplay.merged"
	// KindGameplayDropped identifies a discarded telemetry event.
	KindGameplayDropped Kind = "gameplay.dropped"
)

// DropReason explains why intake discarded an event.
type DropReason string

const (
	// DropDuplicate marks an event arriving inside the dedup window of an
	// already dispatched moment.
	DropDuplicate DropReason = "duplicate"
	// DropShed marks an event rejected because the queue was full and the
	// event did not outrank the lowest pending entry.
	DropShed DropReason = "shed"
	// DropStale marks a queued event swept out because its moment passed
	// before a turn slot opened.
	DropStale DropReason = "stale"
)

// GameplayAccepted reports a telemetry event entering the commentary queue.
type GameplayAccepted struct {
	Base
	Event    telemetry.Event
	Priority int
}

// NewGameplayAccepted creates a gameplay accepted event.
func NewGameplayAccepted(event telemetry.Event, priority int) GameplayAccepted {
	return GameplayAccepted{Base: NewBase(KindGameplayAccepted), Event: event, Priority: priority}
}

// GameplayMerged reports a telemetry event deduplicated into a pending entry.
type GameplayMerged struct {
	Base
	Event    telemetry.Event
	Upgraded bool
}

// NewGameplayMerged creates a gameplay merged event.
func NewGameplayMerged(event telemetry.Event, upgraded bool) GameplayMerged {
	return GameplayMerged{Base: NewBase(KindGameplayMerged), Event: event, Upgraded: upgraded}
}

// GameplayDropped reports a discarded telemetry event.
type GameplayDropped struct {
	Base
	Event  telemetry.Event
	Reason DropReason
}

// NewGameplayDropped creates a gameplay dropped event.
func NewGameplayDropped(event telemetry.Event, reason DropReason) GameplayDropped {
	return GameplayDropped{Base: NewBase(KindGameplayDropped), Event: event, Reason: reason}
}
