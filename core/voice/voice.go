// Package voice defines the speech-synthesis boundary of the booth.
//
// A [Synthesizer] turns one finished commentary line into one audio clip.
// Synthesis happens per line, not streamed per token: the booth only speaks
// lines that already cleared the chat stage, and a clip either arrives whole
// within its deadline or the attempt fails.
package voice

import (
	"context"
	"errors"
	"time"

	"github.com/castwerk/booth-core/core/audio"
)

// ErrEmptyAudio marks a synthesis response that produced no usable payload.
var ErrEmptyAudio = errors.New("synthesis returned no audio")

// Request carries one line to synthesize.
type Request struct {
	Text string

	// Voice is the provider's voice/model identifier. Empty selects the
	// provider default.
	Voice string

	// Emotion is an optional delivery hint from the chat stage. Providers
	// without emotion control ignore it.
	Emotion string

	// Encoding requests a wire format. Zero value selects the provider
	// default.
	Encoding audio.EncodingInfo
}

// Clip is one synthesized line of narration.
type Clip struct {
	Audio    []byte
	Encoding audio.EncodingInfo
}

// Duration estimates the clip's playback time from its encoding.
func (c *Clip) Duration() time.Duration {
	if c == nil {
		return 0
	}
	return c.Encoding.Duration(len(c.Audio))
}

// Synthesizer executes speech synthesis. Implementations must honor context
// cancellation and deadlines, and must be safe for concurrent use by the two
// persona pipelines.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (*Clip, error)
}
