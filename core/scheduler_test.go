package commentary

import (
	"fmt"
	"testing"
	"time"

	"github.com/castwerk/booth-core/core/config"
	"github.com/castwerk/booth-core/core/telemetry"
)

func testPersonas() (map[string]*Commentator, [2]string) {
	cfg := config.Default()
	a := newCommentator(cfg.Commentators[0])
	b := newCommentator(cfg.Commentators[1])
	return map[string]*Commentator{a.ID: a, b.ID: b}, [2]string{a.ID, b.ID}
}

func fillQueue(q *commentaryQueue, n int, at time.Time) {
	for i := 0; i < n; i++ {
		kill := telemetry.Kill(fmt.Sprintf("goon-%d", i))
		kill.Timestamp = at
		q.insert(&QueuedEvent{Event: kill, Priority: 30, EnqueueTime: at})
	}
}

func TestSchedulerAlternatesPersonas(t *testing.T) {
	personas, order := testPersonas()
	s := newTurnScheduler(personas, order, 0)
	q := newCommentaryQueue(8)
	now := time.Now()
	fillQueue(q, 4, now)

	var speakers []string
	for i := 0; i < 4; i++ {
		plan := s.tryDispatch(q, now.Add(time.Duration(i)*time.Second))
		if plan == nil {
			t.Fatalf("expected dispatch %d", i)
		}
		if plan.Seq != uint64(i+1) {
			t.Fatalf("expected sequence %d, got %d", i+1, plan.Seq)
		}
		speakers = append(speakers, plan.Persona.ID)
	}
	want := []string{order[0], order[1], order[0], order[1]}
	for i := range want {
		if speakers[i] != want[i] {
			t.Fatalf("expected strict alternation %v, got %v", want, speakers)
		}
	}
}

func TestSchedulerRespectsCooldown(t *testing.T) {
	personas, order := testPersonas()
	s := newTurnScheduler(personas, order, 2*time.Second)
	q := newCommentaryQueue(8)
	now := time.Now()
	fillQueue(q, 3, now)

	if s.tryDispatch(q, now) == nil {
		t.Fatal("expected first dispatch immediately")
	}
	if s.tryDispatch(q, now.Add(time.Second)) != nil {
		t.Fatal("expected cooldown to block the second dispatch")
	}
	if s.tryDispatch(q, now.Add(2*time.Second)) == nil {
		t.Fatal("expected dispatch once the cooldown elapsed")
	}
}

func TestSchedulerWaitsForDuePersonaSlot(t *testing.T) {
	personas, order := testPersonas()
	s := newTurnScheduler(personas, order, 0)
	q := newCommentaryQueue(8)
	now := time.Now()
	fillQueue(q, 3, now)

	first := s.tryDispatch(q, now)
	if first == nil || first.Persona.ID != order[0] {
		t.Fatalf("expected the first slot for %s, got %+v", order[0], first)
	}

	busy := &Turn{Seq: first.Seq, PersonaID: order[1], Deadline: now.Add(time.Minute)}
	personas[order[1]].active = busy
	if plan := s.tryDispatch(q, now.Add(time.Second)); plan != nil {
		t.Fatalf("expected no dispatch while the due persona is busy, got %+v", plan)
	}

	personas[order[1]].active = nil
	plan := s.tryDispatch(q, now.Add(2*time.Second))
	if plan == nil || plan.Persona.ID != order[1] {
		t.Fatalf("expected the slot to stay with %s, got %+v", order[1], plan)
	}
}

func TestSchedulerEmptyQueue(t *testing.T) {
	personas, order := testPersonas()
	s := newTurnScheduler(personas, order, 0)
	q := newCommentaryQueue(8)

	if plan := s.tryDispatch(q, time.Now()); plan != nil {
		t.Fatalf("expected no dispatch from an empty queue, got %+v", plan)
	}
}

func TestSchedulerDetectsStuckTurn(t *testing.T) {
	personas, order := testPersonas()
	s := newTurnScheduler(personas, order, 0)
	now := time.Now()

	turn := &Turn{Seq: 1, PersonaID: order[0], Deadline: now.Add(18 * time.Second)}
	personas[order[0]].active = turn

	if got := s.stuck(now.Add(17 * time.Second)); got != nil {
		t.Fatalf("expected no stuck turn before the deadline, got %+v", got)
	}
	if got := s.stuck(now.Add(19 * time.Second)); got != turn {
		t.Fatalf("expected the expired turn reported stuck, got %+v", got)
	}
}

func TestSchedulerStuckOnlyChecksDuePersona(t *testing.T) {
	personas, order := testPersonas()
	s := newTurnScheduler(personas, order, 0)
	q := newCommentaryQueue(8)
	now := time.Now()
	fillQueue(q, 2, now)

	// First dispatch moves the slot to the second persona.
	plan := s.tryDispatch(q, now)
	expired := &Turn{Seq: plan.Seq, PersonaID: order[0], Deadline: now.Add(-time.Second)}
	personas[order[0]].active = expired

	if got := s.stuck(now); got != nil {
		t.Fatalf("expected no stuck report for the off-slot persona, got %+v", got)
	}
}
