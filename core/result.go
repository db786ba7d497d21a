package commentary

import (
	"time"

	"github.com/castwerk/booth-core/core/config"
	"github.com/castwerk/booth-core/core/voice"
)

// SubtitleLine is a single finished line of commentary, delivered to the
// host in strict sequence order.
type SubtitleLine struct {
	Seq         uint64
	PersonaID   string
	PersonaName string
	Text        string
	Emotion     string
	Color       config.Color
	Fallback    bool
}

// AudioClip is the synthesized voice for a released line. Duration is
// estimated from the payload size and is meant as a ducking hint for the
// host's mixer, not as an exact playback length.
type AudioClip struct {
	Seq       uint64
	PersonaID string
	Clip      *voice.Clip
	Gain      float64
	Duration  time.Duration
}

// narrationResult is a resolved turn waiting for in-order release.
type narrationResult struct {
	seq         uint64
	personaID   string
	personaName string
	text        string
	emotion     string
	clip        *voice.Clip
	color       config.Color
	fallback    bool
}
