package commentary

import (
	"time"

	"github.com/castwerk/booth-core/core/chat"
	"github.com/castwerk/booth-core/core/events"
	"github.com/castwerk/booth-core/core/voice"
)

const defaultTickInterval = 50 * time.Millisecond

// Option configures a Booth at construction.
type Option func(*boothOptions)

type boothOptions struct {
	completer   chat.Completer
	synthesizer voice.Synthesizer
	callbacks   boothCallbacks
}

// WithChatCompleter wires the upstream chat backend. Without one the booth
// runs offline and every turn resolves to a fallback line.
func WithChatCompleter(completer chat.Completer) Option {
	return func(o *boothOptions) {
		o.completer = completer
	}
}

// WithSpeechSynthesizer wires the voice backend. Without one the booth is
// subtitle-only.
func WithSpeechSynthesizer(synthesizer voice.Synthesizer) Option {
	return func(o *boothOptions) {
		o.synthesizer = synthesizer
	}
}

// WithSubtitleCallback registers the handler for released lines. Lines
// arrive in strict sequence order.
func WithSubtitleCallback(callback func(SubtitleLine)) Option {
	return func(o *boothOptions) {
		o.callbacks.onSubtitle = callback
	}
}

// WithAudioCallback registers the handler for synthesized voice clips.
func WithAudioCallback(callback func(AudioClip)) Option {
	return func(o *boothOptions) {
		o.callbacks.onAudio = callback
	}
}

// WithEventCallback registers the handler for booth lifecycle events.
func WithEventCallback(callback func(events.Event)) Option {
	return func(o *boothOptions) {
		o.callbacks.onEvent = callback
	}
}

// boothCallbacks holds the host-facing hooks. They are invoked outside the
// booth lock, so a handler may call back into the booth.
type boothCallbacks struct {
	onSubtitle func(SubtitleLine)
	onAudio    func(AudioClip)
	onEvent    func(events.Event)
}

func (c boothCallbacks) defaults() boothCallbacks {
	return boothCallbacks{
		onSubtitle: func(SubtitleLine) {},
		onAudio:    func(AudioClip) {},
		onEvent:    func(events.Event) {},
	}
}

func (c boothCallbacks) with(overrides boothCallbacks) boothCallbacks {
	if overrides.onSubtitle != nil {
		c.onSubtitle = overrides.onSubtitle
	}
	if overrides.onAudio != nil {
		c.onAudio = overrides.onAudio
	}
	if overrides.onEvent != nil {
		c.onEvent = overrides.onEvent
	}
	return c
}

// LiveOption configures the GoLive loop.
type LiveOption func(*liveOptions)

type liveOptions struct {
	tickInterval time.Duration
}

func defaultLiveOptions() liveOptions {
	return liveOptions{tickInterval: defaultTickInterval}
}

// WithTickInterval overrides how often the live loop ticks the booth.
func WithTickInterval(interval time.Duration) LiveOption {
	return func(o *liveOptions) {
		if interval > 0 {
			o.tickInterval = interval
		}
	}
}
