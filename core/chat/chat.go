// Package chat defines the chat-completion boundary of the booth.
//
// A [Completer] takes one fully assembled request and returns one generated
// commentary line. Providers live in subpackages; the booth never depends on
// a concrete provider. Requests are self-contained so retries can resend them
// unchanged.
package chat

import (
	"context"
	"errors"
)

// ErrNoChoices marks a provider response that contained no usable completion.
var ErrNoChoices = errors.New("no completion choices returned")

// Request carries everything a provider needs for one completion call.
type Request struct {
	// SessionID identifies the speaking persona's conversation for the
	// lifetime of a run. Providers forward it for attribution/continuity;
	// the request itself already carries all conversational context.
	SessionID string

	// Instructions is the system prompt assembled from the persona profile.
	Instructions string

	// Prompt is the user-facing payload: factual event summary, run context
	// and cross-persona memory.
	Prompt string

	// Emotions lists the persona's allowed emotion labels. Providers with
	// structured output pick one; others ignore it.
	Emotions []string
}

// Response is one generated commentary line.
type Response struct {
	Line string

	// Emotion is the label picked from Request.Emotions, or empty when the
	// provider does not support structured output.
	Emotion string
}

// Completer executes chat completions. Implementations must honor context
// cancellation and deadlines, and must be safe for concurrent use by the two
// persona pipelines.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}
