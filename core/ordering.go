package commentary

import (
	"time"
)

// orderingBuffer releases resolved turns strictly by sequence number.
// Results for later sequences wait until every earlier sequence has either
// released a line or been voided. A hold deadline arms whenever something
// is waiting; if the blocking sequence does not resolve in time the booth
// force-fails it rather than letting one wedged turn gate the stream.
type orderingBuffer struct {
	next   uint64
	held   map[uint64]*narrationResult
	voided map[uint64]bool

	holdTimeout  time.Duration
	holdDeadline time.Time
}

func newOrderingBuffer(start uint64, holdTimeout time.Duration) *orderingBuffer {
	return &orderingBuffer{
		next:        start,
		held:        make(map[uint64]*narrationResult),
		voided:      make(map[uint64]bool),
		holdTimeout: holdTimeout,
	}
}

// release hands in a resolved result and returns everything now
// deliverable, in order. Results for already-passed sequences are dropped.
func (b *orderingBuffer) release(result *narrationResult, now time.Time) []*narrationResult {
	if result.seq < b.next || b.voided[result.seq] {
		return b.flush(now)
	}
	b.held[result.seq] = result
	return b.flush(now)
}

// void marks a sequence as resolved-without-output, such as a cancelled
// turn. Voided sequences are skipped over instead of waited on.
func (b *orderingBuffer) void(seq uint64, now time.Time) []*narrationResult {
	if seq < b.next {
		return nil
	}
	delete(b.held, seq)
	b.voided[seq] = true
	return b.flush(now)
}

func (b *orderingBuffer) flush(now time.Time) []*narrationResult {
	var out []*narrationResult
	for {
		if b.voided[b.next] {
			delete(b.voided, b.next)
			b.next++
			continue
		}
		if result, ok := b.held[b.next]; ok {
			delete(b.held, b.next)
			out = append(out, result)
			b.next++
			continue
		}
		break
	}
	b.rearm(now)
	return out
}

// rearm keeps the hold deadline armed exactly while something later is
// waiting on the blocking sequence.
func (b *orderingBuffer) rearm(now time.Time) {
	if len(b.held) == 0 {
		b.holdDeadline = time.Time{}
		return
	}
	if b.holdDeadline.IsZero() {
		b.holdDeadline = now.Add(b.holdTimeout)
	}
}

// expired reports the blocking sequence once the hold deadline passes. The
// caller resolves that sequence (fallback or void), which re-arms the
// deadline for the next blocker if any.
func (b *orderingBuffer) expired(now time.Time) (uint64, bool) {
	if b.holdDeadline.IsZero() || now.Before(b.holdDeadline) {
		return 0, false
	}
	b.holdDeadline = time.Time{}
	return b.next, true
}

func (b *orderingBuffer) pending() int {
	return len(b.held)
}

func (b *orderingBuffer) setHoldTimeout(holdTimeout time.Duration) {
	b.holdTimeout = holdTimeout
}
