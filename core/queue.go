package commentary

import (
	"time"

	"github.com/castwerk/booth-core/core/config"
	"github.com/castwerk/booth-core/core/telemetry"
)

// QueuedEvent is one pending moment of gameplay waiting for a commentary
// slot. Merges counts how many duplicate events were folded into it while
// it waited.
type QueuedEvent struct {
	Event       telemetry.Event
	Priority    int
	EnqueueTime time.Time
	Merges      int
}

// commentaryQueue is the bounded holding pen between intake and the
// scheduler. Capacity is small on purpose: commentary that waits too long
// is commentary about the wrong moment.
//
// Ordering is by priority descending, then enqueue time ascending. With at
// most a few dozen entries a linear scan beats maintaining a heap.
type commentaryQueue struct {
	entries  []*QueuedEvent
	capacity int
}

func newCommentaryQueue(capacity int) *commentaryQueue {
	return &commentaryQueue{capacity: capacity}
}

func (q *commentaryQueue) len() int {
	return len(q.entries)
}

// byKey returns the pending entry with the given dedup key, if any.
func (q *commentaryQueue) byKey(key string) *QueuedEvent {
	for _, entry := range q.entries {
		if entry.Event.DedupKey() == key {
			return entry
		}
	}
	return nil
}

// insert adds an entry, evicting the lowest-priority/oldest entry when the
// queue is full and the newcomer outranks it. It returns the evicted entry
// (nil if none) and whether the newcomer was admitted.
func (q *commentaryQueue) insert(entry *QueuedEvent) (*QueuedEvent, bool) {
	if len(q.entries) < q.capacity {
		q.entries = append(q.entries, entry)
		return nil, true
	}
	victim := q.evictable()
	if victim < 0 || entry.Priority <= q.entries[victim].Priority {
		return nil, false
	}
	evicted := q.entries[victim]
	q.entries[victim] = entry
	return evicted, true
}

// evictable picks the index of the entry that goes first under pressure:
// lowest priority, oldest among ties.
func (q *commentaryQueue) evictable() int {
	victim := -1
	for i, entry := range q.entries {
		if victim < 0 {
			victim = i
			continue
		}
		current := q.entries[victim]
		if entry.Priority < current.Priority ||
			(entry.Priority == current.Priority && entry.EnqueueTime.Before(current.EnqueueTime)) {
			victim = i
		}
	}
	return victim
}

// next picks the index of the entry the scheduler should take: highest
// priority, oldest among ties.
func (q *commentaryQueue) next() int {
	best := -1
	for i, entry := range q.entries {
		if best < 0 {
			best = i
			continue
		}
		current := q.entries[best]
		if entry.Priority > current.Priority ||
			(entry.Priority == current.Priority && entry.EnqueueTime.Before(current.EnqueueTime)) {
			best = i
		}
	}
	return best
}

func (q *commentaryQueue) peek() *QueuedEvent {
	i := q.next()
	if i < 0 {
		return nil
	}
	return q.entries[i]
}

func (q *commentaryQueue) pop() *QueuedEvent {
	i := q.next()
	if i < 0 {
		return nil
	}
	entry := q.entries[i]
	q.remove(i)
	return entry
}

func (q *commentaryQueue) remove(i int) {
	q.entries = append(q.entries[:i], q.entries[i+1:]...)
}

func (q *commentaryQueue) clear() []*QueuedEvent {
	removed := q.entries
	q.entries = nil
	return removed
}

// removeStale drops entries whose moment has passed. Staleness is judged
// against the event's own timestamp, which merges keep fresh.
func (q *commentaryQueue) removeStale(maxAge time.Duration, now time.Time) []*QueuedEvent {
	var removed []*QueuedEvent
	kept := q.entries[:0]
	for _, entry := range q.entries {
		if now.Sub(entry.Event.Timestamp) > maxAge {
			removed = append(removed, entry)
			continue
		}
		kept = append(kept, entry)
	}
	q.entries = kept
	return removed
}

// setCapacity resizes the queue, shedding lowest-priority entries when
// shrinking below the current length.
func (q *commentaryQueue) setCapacity(capacity int) []*QueuedEvent {
	q.capacity = capacity
	var shed []*QueuedEvent
	for len(q.entries) > q.capacity {
		victim := q.evictable()
		if victim < 0 {
			break
		}
		shed = append(shed, q.entries[victim])
		q.remove(victim)
	}
	return shed
}

func priorityFor(event telemetry.Event, priorities map[string]int) int {
	if priority, ok := priorities[event.PriorityKey()]; ok {
		return priority
	}
	if priority, ok := priorities[string(event.Kind)]; ok {
		return priority
	}
	return config.DefaultPriority
}
