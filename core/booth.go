// Package commentary orchestrates a two-persona commentary booth over live
// gameplay telemetry. Events are deduplicated and queued, a scheduler hands
// them to alternating personas, narration runs against the upstream chat
// and speech APIs off the hot path, and finished lines come back to the
// host in strict sequence order with canned fallbacks covering every
// failure.
package commentary

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/castwerk/booth-core/core/config"
	"github.com/castwerk/booth-core/core/events"
	"github.com/castwerk/booth-core/core/telemetry"
)

// ErrClosed is returned by GoLive on a booth that has been closed.
var ErrClosed = errors.New("booth is closed")

// Booth is the facade the game talks to. Submit and Tick are cheap,
// non-blocking and safe to call from the frame loop; all upstream API work
// happens on worker goroutines. Callbacks fire outside the booth lock.
type Booth struct {
	mu           sync.Mutex
	cfg          *config.Config
	intake       *intake
	queue        *commentaryQueue
	scheduler    *turnScheduler
	commentators map[string]*Commentator
	narrator     *narrationClient
	ordering     *orderingBuffer
	fallback     *fallbackBank
	turnsBySeq   map[uint64]*Turn
	run          RunContext

	callbacks boothCallbacks

	baseCtx    context.Context
	baseCancel context.CancelFunc
	done       chan struct{}
	closeOnce  sync.Once
	closed     atomic.Bool
}

// tickDeliveries collects everything a pass under the lock wants to hand
// to the host, so callbacks run after the lock is released.
type tickDeliveries struct {
	events    []events.Event
	subtitles []SubtitleLine
	audio     []AudioClip
}

// New builds a booth from a validated config. The first two commentator
// profiles become the speaking personas, in listed order.
func New(cfg *config.Config, opts ...Option) (*Booth, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create booth: %w", err)
	}

	var options boothOptions
	for _, opt := range opts {
		opt(&options)
	}

	commentators := make(map[string]*Commentator, 2)
	var order [2]string
	for i, profile := range cfg.Commentators[:2] {
		persona := newCommentator(profile)
		commentators[persona.ID] = persona
		order[i] = persona.ID
	}

	baseCtx, baseCancel := context.WithCancel(context.Background())
	queue := newCommentaryQueue(cfg.Commentary.QueueCapacity)
	b := &Booth{
		cfg:          cfg,
		queue:        queue,
		intake:       newIntake(queue, cfg.Priorities, cfg.Commentary.DedupWindow()),
		commentators: commentators,
		scheduler:    newTurnScheduler(commentators, order, cfg.Commentary.Cooldown()),
		narrator:     newNarrationClient(options.completer, options.synthesizer, cfg.Commentary),
		fallback:     newFallbackBank(cfg.Fallback),
		turnsBySeq:   make(map[uint64]*Turn),
		callbacks:    boothCallbacks{}.defaults().with(options.callbacks),
		baseCtx:      baseCtx,
		baseCancel:   baseCancel,
		done:         make(chan struct{}),
	}
	b.ordering = newOrderingBuffer(b.scheduler.nextSeq(), cfg.Commentary.HoldTimeout())
	return b, nil
}

// Submit offers one gameplay moment to the booth. It never blocks and
// never fails: events that do not make the cut are reported through the
// event callback and forgotten.
func (b *Booth) Submit(event telemetry.Event) {
	if b.closed.Load() {
		return
	}
	now := time.Now()
	var out tickDeliveries

	b.mu.Lock()
	outcome := b.intake.submit(event, now)
	b.mu.Unlock()

	switch {
	case outcome.merged != nil:
		out.events = append(out.events, events.NewGameplayMerged(event, outcome.upgraded))
	case outcome.accepted != nil:
		out.events = append(out.events, events.NewGameplayAccepted(event, outcome.accepted.Priority))
		if outcome.evicted != nil {
			out.events = append(out.events, events.NewGameplayDropped(outcome.evicted.Event, events.DropShed))
		}
	default:
		out.events = append(out.events, events.NewGameplayDropped(event, outcome.dropped))
	}
	b.deliver(&out)
}

// Tick advances the booth: finished narrations settle, expired holds and
// stuck turns resolve, stale queue entries drop, and at most one new turn
// dispatches. Hosts either call this from their frame loop or let GoLive
// drive it.
func (b *Booth) Tick(now time.Time) {
	if b.closed.Load() {
		return
	}
	var out tickDeliveries

	b.mu.Lock()
	b.drainOutcomes(now, &out)
	b.resolveExpiredHold(now, &out)
	b.sweepStale(now, &out)
	if stuck := b.scheduler.stuck(now); stuck != nil {
		b.cancelTurn(stuck, true, now, &out)
	}
	if plan := b.scheduler.tryDispatch(b.queue, now); plan != nil {
		b.startTurn(plan, now, &out)
	}
	b.mu.Unlock()

	b.deliver(&out)
}

// GoLive drives the booth with an internal ticker until the context ends
// or the booth closes.
func (b *Booth) GoLive(ctx context.Context, opts ...LiveOption) error {
	if b.closed.Load() {
		return ErrClosed
	}
	options := defaultLiveOptions()
	for _, opt := range opts {
		opt(&options)
	}

	ticker := time.NewTicker(options.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-b.done:
			return nil
		case now := <-ticker.C:
			b.Tick(now)
		}
	}
}

// UpdateRunContext replaces the run state folded into future prompts.
func (b *Booth) UpdateRunContext(run RunContext) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.run = run
}

// Stats is a point-in-time snapshot of booth internals for debug overlays.
type Stats struct {
	QueueDepth  int
	NextPersona string
	InFlight    int
}

func (b *Booth) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	inFlight := 0
	for _, id := range b.scheduler.order {
		if b.commentators[id].active != nil {
			inFlight++
		}
	}
	return Stats{
		QueueDepth:  b.queue.len(),
		NextPersona: b.scheduler.due().ID,
		InFlight:    inFlight,
	}
}

// ApplyConfig swaps in a validated config on the live booth. Persona
// membership is fixed at construction; profiles update for matching IDs
// and in-flight turns finish under the policy they started with.
func (b *Booth) ApplyConfig(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("failed to apply config: config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("failed to apply config: %w", err)
	}
	var out tickDeliveries

	b.mu.Lock()
	b.cfg = cfg
	b.intake.applyConfig(cfg.Priorities, cfg.Commentary.DedupWindow())
	for _, entry := range b.queue.setCapacity(cfg.Commentary.QueueCapacity) {
		out.events = append(out.events, events.NewGameplayDropped(entry.Event, events.DropShed))
	}
	b.scheduler.applyConfig(cfg.Commentary.Cooldown())
	b.narrator.applyConfig(cfg.Commentary)
	b.ordering.setHoldTimeout(cfg.Commentary.HoldTimeout())
	b.fallback.applyConfig(cfg.Fallback)
	for _, profile := range cfg.Commentators {
		if persona, ok := b.commentators[profile.ID]; ok {
			persona.applyProfile(profile)
		}
	}
	b.mu.Unlock()

	b.deliver(&out)
	return nil
}

// ResetRun ends the current run: pending and in-flight commentary is
// abandoned, personas get fresh sessions, and sequence numbers continue
// from where they were so they are never reused.
func (b *Booth) ResetRun() {
	now := time.Now()
	var out tickDeliveries

	b.mu.Lock()
	for _, id := range b.scheduler.order {
		persona := b.commentators[id]
		if persona.active != nil {
			b.cancelTurn(persona.active, false, now, &out)
		}
		persona.resetSession()
	}
	for _, entry := range b.queue.clear() {
		out.events = append(out.events, events.NewGameplayDropped(entry.Event, events.DropStale))
	}
	b.intake.reset()
	b.ordering = newOrderingBuffer(b.scheduler.nextSeq(), b.cfg.Commentary.HoldTimeout())
	b.fallback.resetCursors()
	b.turnsBySeq = make(map[uint64]*Turn)
	b.run = RunContext{}
	b.mu.Unlock()

	b.deliver(&out)
}

// Close shuts the booth down. In-flight workers are interrupted and their
// results discarded. Close is idempotent.
func (b *Booth) Close() error {
	b.closeOnce.Do(func() {
		b.closed.Store(true)
		close(b.done)
		b.baseCancel()
		b.narrator.close()
	})
	return nil
}

// drainOutcomes settles every finished narration waiting on the channel.
func (b *Booth) drainOutcomes(now time.Time, out *tickDeliveries) {
	for {
		select {
		case outcome := <-b.narrator.results:
			b.settleOutcome(outcome, now, out)
		default:
			return
		}
	}
}

func (b *Booth) settleOutcome(outcome *turnOutcome, now time.Time, out *tickDeliveries) {
	turn := outcome.turn
	b.clearSlot(turn)
	persona := b.commentators[turn.PersonaID]
	if persona == nil {
		return
	}

	if outcome.err != nil {
		logger.WarnContext(b.baseCtx, "turn failed, serving fallback line",
			"seq", turn.Seq, "persona", turn.PersonaID, "attempts", turn.Attempts(), "error", outcome.err)
		out.events = append(out.events, events.NewTurnFailed(turn.Seq, turn.PersonaID))
		b.releaseFallback(turn, persona, now, out)
		return
	}

	out.events = append(out.events, events.NewTurnCompleted(turn.Seq, turn.PersonaID))
	result := &narrationResult{
		seq:         turn.Seq,
		personaID:   persona.ID,
		personaName: persona.Profile.Name,
		text:        outcome.response.Line,
		emotion:     outcome.response.Emotion,
		clip:        outcome.clip,
		color:       persona.Profile.SubtitleColor,
	}
	b.releaseResults(b.ordering.release(result, now), out)
}

// resolveExpiredHold force-fails the turn blocking the ordering buffer
// once results behind it have waited out the hold timeout.
func (b *Booth) resolveExpiredHold(now time.Time, out *tickDeliveries) {
	seq, ok := b.ordering.expired(now)
	if !ok {
		return
	}
	turn := b.turnsBySeq[seq]
	if turn == nil {
		b.releaseResults(b.ordering.void(seq, now), out)
		return
	}
	logger.WarnContext(b.baseCtx, "line held too long, forcing fallback",
		"seq", seq, "persona", turn.PersonaID)
	won := turn.finalize(TurnFailedFallback)
	if turn.cancel != nil {
		turn.cancel()
	}
	b.clearSlot(turn)
	if !won {
		// The worker resolved first; its outcome is already on the channel
		// and will release the sequence on the next drain.
		return
	}
	out.events = append(out.events, events.NewTurnFailed(seq, turn.PersonaID))
	b.releaseFallback(turn, b.commentators[turn.PersonaID], now, out)
}

func (b *Booth) sweepStale(now time.Time, out *tickDeliveries) {
	for _, entry := range b.queue.removeStale(b.cfg.Commentary.StaleTurnTimeout(), now) {
		out.events = append(out.events, events.NewGameplayDropped(entry.Event, events.DropStale))
	}
}

// cancelTurn abandons a turn without output: its sequence becomes a hole
// the ordering buffer skips over.
func (b *Booth) cancelTurn(turn *Turn, forced bool, now time.Time, out *tickDeliveries) {
	won := turn.Cancel()
	b.clearSlot(turn)
	if !won {
		return
	}
	out.events = append(out.events, events.NewTurnCancelled(turn.Seq, turn.PersonaID, forced))
	delete(b.turnsBySeq, turn.Seq)
	b.releaseResults(b.ordering.void(turn.Seq, now), out)
}

func (b *Booth) startTurn(plan *dispatchPlan, now time.Time, out *tickDeliveries) {
	persona := plan.Persona
	if persona.active != nil {
		b.cancelTurn(persona.active, true, now, out)
	}
	partner := b.partnerOf(persona)

	turn := &Turn{
		ID:           uuid.NewString(),
		Seq:          plan.Seq,
		PersonaID:    persona.ID,
		Event:        plan.Entry.Event,
		Merges:       plan.Entry.Merges,
		Voice:        persona.Profile.Voice,
		DispatchedAt: now,
		Deadline:     now.Add(b.cfg.Commentary.StaleTurnTimeout()),
	}
	recent := b.intake.recentOthers(plan.Entry.Event, recentEventLimit)
	turn.Prompt = buildPrompt(plan.Entry, persona, partner, b.run, recent, b.cfg.Commentary.MaxEventsPerBatch)

	b.intake.markDispatched(plan.Entry.Event.DedupKey(), now)
	b.turnsBySeq[turn.Seq] = turn
	persona.active = turn

	ctx, cancel := context.WithDeadline(b.baseCtx, turn.Deadline)
	turn.cancel = cancel
	b.narrator.dispatch(ctx, turn)

	metricTurnsDispatched.Add(b.baseCtx, 1)
	out.events = append(out.events, events.NewTurnDispatched(turn.Seq, persona.ID, plan.Entry.Event))
}

func (b *Booth) releaseFallback(turn *Turn, persona *Commentator, now time.Time, out *tickDeliveries) {
	metricFallbacksServed.Add(b.baseCtx, 1)
	result := &narrationResult{
		seq:         turn.Seq,
		personaID:   turn.PersonaID,
		personaName: persona.Profile.Name,
		text:        b.fallback.pick(turn.Event.Kind),
		color:       persona.Profile.SubtitleColor,
		fallback:    true,
	}
	b.releaseResults(b.ordering.release(result, now), out)
}

// releaseResults records and stages everything the ordering buffer just
// let through.
func (b *Booth) releaseResults(released []*narrationResult, out *tickDeliveries) {
	for _, result := range released {
		delete(b.turnsBySeq, result.seq)
		if persona := b.commentators[result.personaID]; persona != nil {
			persona.LastLine = result.text
			persona.LinesSpoken++
		}
		metricLinesReleased.Add(b.baseCtx, 1)
		out.events = append(out.events, events.NewLineReleased(result.seq, result.personaID, result.text, result.fallback))
		out.subtitles = append(out.subtitles, SubtitleLine{
			Seq:         result.seq,
			PersonaID:   result.personaID,
			PersonaName: result.personaName,
			Text:        result.text,
			Emotion:     result.emotion,
			Color:       result.color,
			Fallback:    result.fallback,
		})
		if result.clip != nil {
			out.audio = append(out.audio, AudioClip{
				Seq:       result.seq,
				PersonaID: result.personaID,
				Clip:      result.clip,
				Gain:      b.cfg.Commentary.NarrationVolume,
				Duration:  result.clip.Duration(),
			})
		}
	}
}

func (b *Booth) partnerOf(persona *Commentator) *Commentator {
	for _, id := range b.scheduler.order {
		if id != persona.ID {
			return b.commentators[id]
		}
	}
	return persona
}

func (b *Booth) clearSlot(turn *Turn) {
	if persona := b.commentators[turn.PersonaID]; persona != nil && persona.active == turn {
		persona.active = nil
	}
}

func (b *Booth) deliver(out *tickDeliveries) {
	for _, line := range out.subtitles {
		b.callbacks.onSubtitle(line)
	}
	for _, clip := range out.audio {
		b.callbacks.onAudio(clip)
	}
	for _, event := range out.events {
		b.callbacks.onEvent(event)
	}
}
