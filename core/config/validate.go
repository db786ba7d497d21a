package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalidConfig marks a configuration rejected by validation.
var ErrInvalidConfig = errors.New("invalid configuration")

const validationPrefix = "commentator.toml::"

var validStyleLengths = []string{"short", "medium", "long"}

// Validate checks the whole configuration and returns one error joining every
// problem found, or nil. A config is accepted or rejected whole.
func (c *Config) Validate() error {
	var problems []string

	report := func(format string, args ...any) {
		problems = append(problems, validationPrefix+fmt.Sprintf(format, args...))
	}

	commentary := c.Commentary
	if commentary.MinSecondsBetweenLines < 0 {
		report("commentary.min_seconds_between_lines must be >= 0")
	}
	if commentary.DedupWindowSeconds < 0 {
		report("commentary.dedup_window_seconds must be >= 0")
	}
	if commentary.QueueCapacity <= 0 {
		report("commentary.queue_capacity must be > 0")
	}
	if commentary.MaxEventsPerBatch <= 0 {
		report("commentary.max_events_per_batch must be > 0")
	}
	if commentary.APIMaxRetries < 0 {
		report("commentary.api_max_retries must be >= 0")
	}
	if commentary.APIRetryBackoffSeconds < 0 {
		report("commentary.api_retry_backoff_seconds must be >= 0")
	}
	if commentary.APIChatTimeoutSeconds <= 0 {
		report("commentary.api_chat_timeout_seconds must be > 0")
	}
	if commentary.APISpeechTimeoutSeconds <= 0 {
		report("commentary.api_speech_timeout_seconds must be > 0")
	}
	if commentary.APIStaleRequestTimeoutSeconds <= 0 {
		report("commentary.api_stale_request_timeout_seconds must be > 0")
	}
	if commentary.HoldTimeoutSeconds <= 0 {
		report("commentary.hold_timeout_seconds must be > 0")
	}
	if commentary.RequestsPerMinute <= 0 {
		report("commentary.requests_per_minute must be > 0")
	}
	if commentary.NarrationVolume < 0 || commentary.NarrationVolume > 2 {
		report("commentary.narration_volume must be between 0 and 2")
	}

	if len(c.Commentators) < 2 {
		report("commentators must define at least two profiles")
	}
	seenIDs := map[string]bool{}
	for i, profile := range c.Commentators {
		field := fmt.Sprintf("commentators[%d]", i)
		if profile.ID == "" {
			report("%s.id must not be empty", field)
		} else if seenIDs[profile.ID] {
			report("%s.id %q is duplicated", field, profile.ID)
		}
		seenIDs[profile.ID] = true

		if profile.Name == "" {
			report("%s.name must not be empty", field)
		}
		if !slices.Contains(validStyleLengths, profile.StyleLength) {
			report("%s.style_length must be one of short, medium, long", field)
		}
		for _, component := range profile.SubtitleColor {
			if component < 0 || component > 1 {
				report("%s.subtitle_color components must be between 0 and 1", field)
				break
			}
		}
	}

	for key, priority := range c.Priorities {
		if priority < 0 {
			report("priorities.%s must be >= 0", key)
		}
	}

	thresholds := c.Thresholds
	if thresholds.AirtimeBigJump < 0 {
		report("thresholds.airtime_big_jump must be >= 0")
	}
	if thresholds.AirtimeHugeJump < thresholds.AirtimeBigJump {
		report("thresholds.airtime_huge_jump must be >= thresholds.airtime_big_jump")
	}
	if thresholds.WheelieLong < 0 {
		report("thresholds.wheelie_long must be >= 0")
	}
	if thresholds.FlipCount < 1 {
		report("thresholds.flip_count must be >= 1")
	}
	if thresholds.SpeedTier1 < 0 {
		report("thresholds.speed_tier_1 must be >= 0")
	}
	if thresholds.SpeedTier2 < thresholds.SpeedTier1 {
		report("thresholds.speed_tier_2 must be >= thresholds.speed_tier_1")
	}
	if thresholds.NearDeathHealthFraction < 0 || thresholds.NearDeathHealthFraction > 1 {
		report("thresholds.near_death_health_fraction must be between 0 and 1")
	}

	if len(c.Fallback.Lines) == 0 {
		report("fallback.lines must not be empty")
	}
	for kind, pool := range c.Fallback.Kinds {
		if len(pool) == 0 {
			report("fallback.kinds.%s must not be empty", kind)
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w:\n  %s", ErrInvalidConfig, strings.Join(problems, "\n  "))
	}
	return nil
}
