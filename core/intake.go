package commentary

import (
	"time"

	"github.com/castwerk/booth-core/core/events"
	"github.com/castwerk/booth-core/core/telemetry"
)

// recentEventLimit caps how much short-term memory the booth keeps for
// prompt color. Older moments stop being worth mentioning.
const recentEventLimit = 8

// intakeOutcome describes what happened to a submitted event so the booth
// can publish it without holding the lock.
type intakeOutcome struct {
	accepted *QueuedEvent
	merged   *QueuedEvent
	upgraded bool
	evicted  *QueuedEvent
	dropped  events.DropReason
}

// intake is the admission filter in front of the queue. It folds duplicate
// moments into one pending entry, suppresses echoes of moments already
// handed to a commentator, and remembers a short tail of recent play for
// prompt building.
type intake struct {
	queue      *commentaryQueue
	priorities map[string]int
	window     time.Duration

	dispatched map[string]time.Time
	recent     []telemetry.Event
}

func newIntake(queue *commentaryQueue, priorities map[string]int, window time.Duration) *intake {
	return &intake{
		queue:      queue,
		priorities: priorities,
		window:     window,
		dispatched: make(map[string]time.Time),
	}
}

// submit runs one event through admission. Exactly one of the outcome's
// accepted/merged/dropped fields is set.
func (in *intake) submit(event telemetry.Event, now time.Time) intakeOutcome {
	key := event.DedupKey()

	if target := in.queue.byKey(key); target != nil && now.Sub(target.Event.Timestamp) <= in.window {
		upgraded := event.Magnitude > target.Event.Magnitude
		if upgraded {
			target.Event = event
			target.Priority = priorityFor(event, in.priorities)
		} else {
			target.Event.Timestamp = event.Timestamp
		}
		target.Merges++
		return intakeOutcome{merged: target, upgraded: upgraded}
	}

	if last, ok := in.dispatched[key]; ok && now.Sub(last) <= in.window {
		return intakeOutcome{dropped: events.DropDuplicate}
	}

	entry := &QueuedEvent{
		Event:       event,
		Priority:    priorityFor(event, in.priorities),
		EnqueueTime: now,
	}
	evicted, ok := in.queue.insert(entry)
	if !ok {
		return intakeOutcome{dropped: events.DropShed}
	}
	in.remember(event)
	return intakeOutcome{accepted: entry, evicted: evicted}
}

// markDispatched records that a moment was just handed to a commentator so
// near-identical echoes inside the dedup window get dropped instead of
// queued again.
func (in *intake) markDispatched(key string, now time.Time) {
	in.dispatched[key] = now
	if len(in.dispatched) > 4*recentEventLimit {
		in.compactDispatched(now)
	}
}

func (in *intake) compactDispatched(now time.Time) {
	for key, last := range in.dispatched {
		if now.Sub(last) > in.window {
			delete(in.dispatched, key)
		}
	}
}

func (in *intake) remember(event telemetry.Event) {
	in.recent = append(in.recent, event)
	if len(in.recent) > recentEventLimit {
		in.recent = in.recent[len(in.recent)-recentEventLimit:]
	}
}

// recentOthers returns recent moments other than the one being narrated,
// newest first, capped at limit.
func (in *intake) recentOthers(exclude telemetry.Event, limit int) []telemetry.Event {
	if limit <= 0 {
		return nil
	}
	var others []telemetry.Event
	for i := len(in.recent) - 1; i >= 0 && len(others) < limit; i-- {
		candidate := in.recent[i]
		if candidate.Kind == exclude.Kind && candidate.Timestamp.Equal(exclude.Timestamp) {
			continue
		}
		others = append(others, candidate)
	}
	return others
}

func (in *intake) reset() {
	in.dispatched = make(map[string]time.Time)
	in.recent = nil
}

func (in *intake) applyConfig(priorities map[string]int, window time.Duration) {
	in.priorities = priorities
	in.window = window
}
