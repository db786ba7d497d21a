package commentary

import (
	"time"
)

// dispatchPlan is the scheduler's decision for one tick: which pending
// event goes to which persona under which sequence number.
type dispatchPlan struct {
	Entry   *QueuedEvent
	Persona *Commentator
	Seq     uint64
}

// turnScheduler decides when the next line starts and who speaks it. The
// two personas strictly alternate: a slot belongs to one of them and the
// slot only advances when a turn is actually dispatched, so a persona
// whose turn failed still cedes the floor to the other.
type turnScheduler struct {
	commentators map[string]*Commentator
	order        [2]string
	nextIdx      int

	cooldown       time.Duration
	lastDispatchAt time.Time

	seq uint64
}

func newTurnScheduler(commentators map[string]*Commentator, order [2]string, cooldown time.Duration) *turnScheduler {
	return &turnScheduler{
		commentators: commentators,
		order:        order,
		cooldown:     cooldown,
		seq:          1,
	}
}

func (s *turnScheduler) due() *Commentator {
	return s.commentators[s.order[s.nextIdx]]
}

// nextSeq is the sequence number the next dispatched turn will carry.
func (s *turnScheduler) nextSeq() uint64 {
	return s.seq
}

// stuck returns the due persona's active turn when it has outlived its
// deadline. The booth cancels it before this tick's dispatch check so a
// wedged upstream call cannot freeze the rotation.
func (s *turnScheduler) stuck(now time.Time) *Turn {
	active := s.due().active
	if active != nil && active.Expired(now) {
		return active
	}
	return nil
}

// tryDispatch checks the three gates in order: pending work, a free slot
// for the due persona, and an elapsed global cooldown. All three pass or
// nothing happens this tick.
func (s *turnScheduler) tryDispatch(queue *commentaryQueue, now time.Time) *dispatchPlan {
	if queue.len() == 0 {
		return nil
	}
	persona := s.due()
	if persona.active != nil {
		return nil
	}
	if !s.lastDispatchAt.IsZero() && now.Sub(s.lastDispatchAt) < s.cooldown {
		return nil
	}

	entry := queue.pop()
	if entry == nil {
		return nil
	}
	plan := &dispatchPlan{Entry: entry, Persona: persona, Seq: s.seq}
	s.seq++
	s.nextIdx = (s.nextIdx + 1) % len(s.order)
	s.lastDispatchAt = now
	return plan
}

func (s *turnScheduler) applyConfig(cooldown time.Duration) {
	s.cooldown = cooldown
}
