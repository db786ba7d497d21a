package commentary

import (
	"fmt"
	"testing"
	"time"
)

func orderedResult(seq uint64) *narrationResult {
	return &narrationResult{seq: seq, text: fmt.Sprintf("line %d", seq)}
}

func TestOrderingReleasesInSequence(t *testing.T) {
	b := newOrderingBuffer(1, 18*time.Second)
	now := time.Now()

	released := b.release(orderedResult(1), now)
	if len(released) != 1 || released[0].seq != 1 {
		t.Fatalf("expected sequence 1 released immediately, got %+v", released)
	}
	released = b.release(orderedResult(2), now)
	if len(released) != 1 || released[0].seq != 2 {
		t.Fatalf("expected sequence 2 released immediately, got %+v", released)
	}
}

func TestOrderingHoldsOutOfOrderResults(t *testing.T) {
	b := newOrderingBuffer(1, 18*time.Second)
	now := time.Now()

	if released := b.release(orderedResult(3), now); len(released) != 0 {
		t.Fatalf("expected sequence 3 to wait, got %d released", len(released))
	}
	if released := b.release(orderedResult(2), now); len(released) != 0 {
		t.Fatalf("expected sequence 2 to wait, got %d released", len(released))
	}
	released := b.release(orderedResult(1), now)
	if len(released) != 3 {
		t.Fatalf("expected all three to release, got %d", len(released))
	}
	for i, result := range released {
		if result.seq != uint64(i+1) {
			t.Fatalf("expected release order 1,2,3, got seq %d at index %d", result.seq, i)
		}
	}
}

func TestOrderingVoidSkipsSequence(t *testing.T) {
	b := newOrderingBuffer(1, 18*time.Second)
	now := time.Now()

	if released := b.release(orderedResult(2), now); len(released) != 0 {
		t.Fatal("expected sequence 2 held behind 1")
	}
	released := b.void(1, now)
	if len(released) != 1 || released[0].seq != 2 {
		t.Fatalf("expected void of 1 to unblock 2, got %+v", released)
	}
}

func TestOrderingIgnoresPassedAndVoidedSequences(t *testing.T) {
	b := newOrderingBuffer(1, 18*time.Second)
	now := time.Now()

	b.void(2, now)
	released := b.release(orderedResult(1), now)
	if len(released) != 1 || released[0].seq != 1 {
		t.Fatalf("expected only sequence 1 released, got %+v", released)
	}

	// Sequence 2 was voided and skipped; a late result for it is dropped.
	if released := b.release(orderedResult(2), now); len(released) != 0 {
		t.Fatalf("expected late result for voided sequence dropped, got %+v", released)
	}
	released = b.release(orderedResult(3), now)
	if len(released) != 1 || released[0].seq != 3 {
		t.Fatalf("expected sequence 3 released, got %+v", released)
	}
}

func TestOrderingHoldDeadlineFiresOnBlockedSequence(t *testing.T) {
	b := newOrderingBuffer(3, 10*time.Second)
	now := time.Now()

	b.release(orderedResult(4), now)
	if _, ok := b.expired(now.Add(9 * time.Second)); ok {
		t.Fatal("expected the hold deadline not to fire early")
	}
	seq, ok := b.expired(now.Add(11 * time.Second))
	if !ok || seq != 3 {
		t.Fatalf("expected blocking sequence 3 reported, got %d ok=%v", seq, ok)
	}

	// The caller resolves the blocker with a substitute; both flow out.
	released := b.release(orderedResult(3), now.Add(11*time.Second))
	if len(released) != 2 || released[0].seq != 3 || released[1].seq != 4 {
		t.Fatalf("expected release order 3,4, got %+v", released)
	}
}

func TestOrderingHoldDeadlineDisarmsWhenDrained(t *testing.T) {
	b := newOrderingBuffer(1, time.Second)
	now := time.Now()

	b.release(orderedResult(2), now)
	b.release(orderedResult(1), now.Add(100*time.Millisecond))
	if b.pending() != 0 {
		t.Fatalf("expected buffer drained, got %d pending", b.pending())
	}
	if _, ok := b.expired(now.Add(time.Hour)); ok {
		t.Fatal("expected no expiry after the buffer drained")
	}
}

func TestOrderingRearmsForNextBlocker(t *testing.T) {
	b := newOrderingBuffer(1, time.Second)
	now := time.Now()

	b.release(orderedResult(2), now)
	seq, ok := b.expired(now.Add(2 * time.Second))
	if !ok || seq != 1 {
		t.Fatalf("expected sequence 1 forced, got %d ok=%v", seq, ok)
	}
	b.void(1, now.Add(2*time.Second))

	// A fresh blocker arms a fresh deadline.
	b.release(orderedResult(4), now.Add(2*time.Second))
	if _, ok := b.expired(now.Add(2500 * time.Millisecond)); ok {
		t.Fatal("expected the new deadline not to fire early")
	}
	seq, ok = b.expired(now.Add(3100 * time.Millisecond))
	if !ok || seq != 3 {
		t.Fatalf("expected sequence 3 forced next, got %d ok=%v", seq, ok)
	}
}
