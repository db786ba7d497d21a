package commentary

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/castwerk/booth-core/core/audio"
	"github.com/castwerk/booth-core/core/chat"
	"github.com/castwerk/booth-core/core/config"
	"github.com/castwerk/booth-core/core/voice"
)

const (
	// resultBuffer sizes the outcome channel so workers finishing between
	// ticks never block the upstream callbacks they run under.
	resultBuffer = 16

	// requestBurst lets both personas clear the limiter back to back.
	requestBurst = 2
)

var errNarrationDisabled = errors.New("narration disabled: no chat completer configured")

// narrationSettings is the retry policy snapshot a worker runs under.
// Workers load it once at dispatch so a mid-flight config reload cannot
// tear a policy in half.
type narrationSettings struct {
	maxAttempts   int
	backoff       time.Duration
	chatTimeout   time.Duration
	speechTimeout time.Duration
}

// turnOutcome is what a worker hands back: either a response (with an
// optional clip) or the error that exhausted the turn.
type turnOutcome struct {
	turn     *Turn
	response *chat.Response
	clip     *voice.Clip
	err      error
}

// narrationClient turns dispatched turns into spoken lines. Each turn gets
// its own worker goroutine running the two upstream stages, chat first and
// speech second, under per-attempt timeouts and the turn's overall
// deadline. Workers never touch booth state: outcomes come back over a
// buffered channel that the tick loop drains.
type narrationClient struct {
	chat     chat.Completer
	voice    voice.Synthesizer
	encoding audio.EncodingInfo
	limiter  *rate.Limiter
	settings atomic.Pointer[narrationSettings]

	results chan *turnOutcome
	closed  chan struct{}
}

func newNarrationClient(completer chat.Completer, synthesizer voice.Synthesizer, cfg config.CommentaryConfig) *narrationClient {
	n := &narrationClient{
		chat:     completer,
		voice:    synthesizer,
		encoding: audio.DefaultEncodingInfo(),
		limiter:  rate.NewLimiter(requestRate(cfg.RequestsPerMinute), requestBurst),
		results:  make(chan *turnOutcome, resultBuffer),
		closed:   make(chan struct{}),
	}
	n.applyConfig(cfg)
	return n
}

// dispatch starts the worker for a turn and returns immediately.
func (n *narrationClient) dispatch(ctx context.Context, turn *Turn) {
	go n.work(ctx, turn)
}

func (n *narrationClient) work(ctx context.Context, turn *Turn) {
	outcome := &turnOutcome{turn: turn}
	func() {
		defer func() {
			if r := recover(); r != nil {
				outcome.err = fmt.Errorf("narration worker panicked: %v", r)
			}
		}()
		outcome.response, outcome.clip, outcome.err = n.narrate(ctx, turn)
	}()

	final := TurnCompleted
	if outcome.err != nil {
		final = TurnFailedFallback
	}
	if !turn.finalize(final) {
		// Cancelled from outside; the canceller resolved the sequence.
		return
	}
	select {
	case n.results <- outcome:
	case <-n.closed:
	}
}

func (n *narrationClient) narrate(ctx context.Context, turn *Turn) (*chat.Response, *voice.Clip, error) {
	ctx, span := tracer.Start(ctx, "narrate turn", trace.WithAttributes(
		attribute.Int64("turn.seq", int64(turn.Seq)),
		attribute.String("turn.persona", turn.PersonaID),
	))
	defer span.End()

	if n.chat == nil {
		return nil, nil, errNarrationDisabled
	}

	if !turn.advance(TurnDispatched, TurnAwaitingChat) {
		return nil, nil, context.Canceled
	}
	response, err := n.completeChat(ctx, turn)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error", "failed to complete chat"))
		return nil, nil, fmt.Errorf("failed to complete chat for turn %d: %w", turn.Seq, err)
	}

	if n.voice == nil {
		return response, nil, nil
	}
	if !turn.advance(TurnAwaitingChat, TurnAwaitingAudio) {
		return nil, nil, context.Canceled
	}
	clip, err := n.synthesize(ctx, turn, response)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error", "failed to synthesize speech"))
		return nil, nil, fmt.Errorf("failed to synthesize speech for turn %d: %w", turn.Seq, err)
	}
	return response, clip, nil
}

func (n *narrationClient) completeChat(ctx context.Context, turn *Turn) (*chat.Response, error) {
	settings := n.settings.Load()
	var lastErr error
	for attempt := 1; attempt <= settings.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepBackoff(ctx, settings.backoff, attempt-1); err != nil {
				return nil, err
			}
		}
		turn.attempts.Add(1)
		if err := n.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("failed to clear rate limit: %w", err)
		}
		attemptCtx, cancel := context.WithTimeout(ctx, settings.chatTimeout)
		response, err := n.chat.Complete(attemptCtx, turn.Prompt)
		cancel()
		if err == nil {
			return response, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			// Turn deadline passed or the turn was preempted; no more tries.
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("gave up after %d attempts: %w", settings.maxAttempts, lastErr)
}

func (n *narrationClient) synthesize(ctx context.Context, turn *Turn, response *chat.Response) (*voice.Clip, error) {
	settings := n.settings.Load()
	request := voice.Request{
		Text:     response.Line,
		Voice:    turn.Voice,
		Emotion:  response.Emotion,
		Encoding: n.encoding,
	}
	var lastErr error
	for attempt := 1; attempt <= settings.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepBackoff(ctx, settings.backoff, attempt-1); err != nil {
				return nil, err
			}
		}
		turn.attempts.Add(1)
		if err := n.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("failed to clear rate limit: %w", err)
		}
		attemptCtx, cancel := context.WithTimeout(ctx, settings.speechTimeout)
		clip, err := n.voice.Synthesize(attemptCtx, request)
		cancel()
		if err == nil {
			return clip, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("gave up after %d attempts: %w", settings.maxAttempts, lastErr)
}

func (n *narrationClient) applyConfig(cfg config.CommentaryConfig) {
	n.settings.Store(&narrationSettings{
		maxAttempts:   cfg.APIMaxRetries + 1,
		backoff:       cfg.RetryBackoff(),
		chatTimeout:   cfg.ChatTimeout(),
		speechTimeout: cfg.SpeechTimeout(),
	})
	n.limiter.SetLimit(requestRate(cfg.RequestsPerMinute))
}

func (n *narrationClient) close() {
	close(n.closed)
}

// sleepBackoff waits base*2^(retry-1) or until the turn context ends.
func sleepBackoff(ctx context.Context, base time.Duration, retry int) error {
	delay := base << (retry - 1)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func requestRate(perMinute int) rate.Limit {
	if perMinute <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(perMinute) / 60.0)
}
