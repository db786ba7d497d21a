// Package config loads, validates and hot-reloads the booth's commentator
// configuration.
//
// Configuration lives in a commentator.toml inside a config directory.
// Durations are written as float seconds. A missing file yields the built-in
// defaults; an invalid file is rejected whole, and on hot reload the prior
// values stay active.
package config

import (
	"time"
)

// Config is the full contents of commentator.toml.
type Config struct {
	Commentary   CommentaryConfig     `mapstructure:"commentary"`
	Commentators []CommentatorProfile `mapstructure:"commentators"`
	Priorities   map[string]int       `mapstructure:"priorities"`
	Thresholds   Thresholds           `mapstructure:"thresholds"`
	Fallback     FallbackConfig       `mapstructure:"fallback"`
}

// CommentaryConfig tunes the scheduling and narration pipeline.
type CommentaryConfig struct {
	// MinSecondsBetweenLines is the global dispatch cooldown.
	MinSecondsBetweenLines float64 `mapstructure:"min_seconds_between_lines"`
	// DedupWindowSeconds is the intake merge window per dedup key.
	DedupWindowSeconds float64 `mapstructure:"dedup_window_seconds"`
	// QueueCapacity bounds the commentary queue.
	QueueCapacity int `mapstructure:"queue_capacity"`
	// MaxEventsPerBatch caps how many recent events fold into one prompt.
	MaxEventsPerBatch int `mapstructure:"max_events_per_batch"`
	// APIMaxRetries is the number of retries after the first attempt,
	// applied per pipeline stage.
	APIMaxRetries int `mapstructure:"api_max_retries"`
	// APIRetryBackoffSeconds is the exponential backoff base between
	// attempts.
	APIRetryBackoffSeconds float64 `mapstructure:"api_retry_backoff_seconds"`
	// APIChatTimeoutSeconds bounds one chat completion attempt.
	APIChatTimeoutSeconds float64 `mapstructure:"api_chat_timeout_seconds"`
	// APISpeechTimeoutSeconds bounds one speech synthesis attempt.
	APISpeechTimeoutSeconds float64 `mapstructure:"api_speech_timeout_seconds"`
	// APIStaleRequestTimeoutSeconds is the overall turn deadline; past it a
	// turn is stuck and gets cancelled rather than narrate ancient history.
	APIStaleRequestTimeoutSeconds float64 `mapstructure:"api_stale_request_timeout_seconds"`
	// HoldTimeoutSeconds bounds how long an out-of-order result may wait for
	// a lower sequence number before that turn is forced to fallback.
	HoldTimeoutSeconds float64 `mapstructure:"hold_timeout_seconds"`
	// RequestsPerMinute is the client-side rate limit across both personas.
	RequestsPerMinute int `mapstructure:"requests_per_minute"`
	// NarrationVolume is the gain hint forwarded to the audio sink.
	NarrationVolume float64 `mapstructure:"narration_volume"`
}

func (c CommentaryConfig) Cooldown() time.Duration {
	return secondsToDuration(c.MinSecondsBetweenLines)
}

func (c CommentaryConfig) DedupWindow() time.Duration {
	return secondsToDuration(c.DedupWindowSeconds)
}

func (c CommentaryConfig) RetryBackoff() time.Duration {
	return secondsToDuration(c.APIRetryBackoffSeconds)
}

func (c CommentaryConfig) ChatTimeout() time.Duration {
	return secondsToDuration(c.APIChatTimeoutSeconds)
}

func (c CommentaryConfig) SpeechTimeout() time.Duration {
	return secondsToDuration(c.APISpeechTimeoutSeconds)
}

func (c CommentaryConfig) StaleTurnTimeout() time.Duration {
	return secondsToDuration(c.APIStaleRequestTimeoutSeconds)
}

func (c CommentaryConfig) HoldTimeout() time.Duration {
	return secondsToDuration(c.HoldTimeoutSeconds)
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// CommentatorProfile is one persona's style and voice.
type CommentatorProfile struct {
	ID string `mapstructure:"id"`
	// Name is the on-screen display name.
	Name string `mapstructure:"name"`
	// CharacterID identifies the persona towards the external API; session
	// ids are derived from it.
	CharacterID string `mapstructure:"character_id"`
	// StyleInstruction is the base system instruction for this persona.
	StyleInstruction string `mapstructure:"style_instruction"`
	// StyleTone colors the delivery ("analytical", "hyped").
	StyleTone string `mapstructure:"style_tone"`
	// StyleLength is one of short, medium, long.
	StyleLength string `mapstructure:"style_length"`
	// Emotions is the allowed emotion label set for structured output.
	Emotions []string `mapstructure:"emotions"`
	// ProfanityFilter, when nil, defaults to on.
	ProfanityFilter *bool `mapstructure:"profanity_filter"`
	// SubtitleColor is linear RGB in [0,1].
	SubtitleColor Color `mapstructure:"subtitle_color"`
	// Voice is the synthesis voice/model identifier.
	Voice string `mapstructure:"voice"`
}

// ProfanityOn reports whether the profanity filter applies.
func (p CommentatorProfile) ProfanityOn() bool {
	return p.ProfanityFilter == nil || *p.ProfanityFilter
}

// Color is a linear RGB triple with components in [0,1].
type Color [3]float64

// Thresholds is the telemetry-side notability table. The booth does not
// consume it; it lives here so the game's telemetry and the booth share one
// config file, as validated values.
type Thresholds struct {
	AirtimeBigJump          float64 `mapstructure:"airtime_big_jump"`
	AirtimeHugeJump         float64 `mapstructure:"airtime_huge_jump"`
	WheelieLong             float64 `mapstructure:"wheelie_long"`
	FlipCount               int     `mapstructure:"flip_count"`
	SpeedTier1              float64 `mapstructure:"speed_tier_1"`
	SpeedTier2              float64 `mapstructure:"speed_tier_2"`
	NearDeathHealthFraction float64 `mapstructure:"near_death_health_fraction"`
}

// FallbackConfig holds the canned line pools.
type FallbackConfig struct {
	// Lines is the default pool, used for kinds without a curated pool.
	Lines []string `mapstructure:"lines"`
	// Kinds maps an event kind name to its curated pool.
	Kinds map[string][]string `mapstructure:"kinds"`
}
