package config

import "github.com/castwerk/booth-core/internal/utils"

// DefaultStyleInstruction is applied to profiles that do not set their own.
const DefaultStyleInstruction = "Return exactly one short colorful commentary line with playful banter grounded in the game events."

// Default returns the built-in configuration: two commentators and a full
// tuning table. Loading merges the file's contents over these values.
func Default() *Config {
	return &Config{
		Commentary: CommentaryConfig{
			MinSecondsBetweenLines:        2.5,
			DedupWindowSeconds:            2.0,
			QueueCapacity:                 16,
			MaxEventsPerBatch:             4,
			APIMaxRetries:                 1,
			APIRetryBackoffSeconds:        0.75,
			APIChatTimeoutSeconds:         6.0,
			APISpeechTimeoutSeconds:       8.0,
			APIStaleRequestTimeoutSeconds: 18.0,
			HoldTimeoutSeconds:            18.0,
			RequestsPerMinute:             30,
			NarrationVolume:               1.0,
		},
		Commentators: []CommentatorProfile{
			{
				ID:               "commentator_a",
				Name:             "George",
				CharacterID:      "commentator_a",
				StyleInstruction: DefaultStyleInstruction,
				StyleTone:        "analytical",
				StyleLength:      "short",
				Emotions:         []string{"Neutral", "Concerned", "Pleased", "Confident"},
				ProfanityFilter:  utils.Ptr(true),
				SubtitleColor:    Color{0.55, 0.85, 1.00},
				Voice:            "aura-orion-en",
			},
			{
				ID:               "commentator_b",
				Name:             "jerry",
				CharacterID:      "commentator_b",
				StyleInstruction: DefaultStyleInstruction,
				StyleTone:        "hyped",
				StyleLength:      "short",
				Emotions:         []string{"Happy", "Amazed", "Curious", "Impressed", "Confident"},
				ProfanityFilter:  utils.Ptr(true),
				SubtitleColor:    Color{1.00, 0.78, 0.40},
				Voice:            "aura-asteria-en",
			},
		},
		Priorities: map[string]int{
			"boss_killed":    100,
			"near_death":     80,
			"crash":          70,
			"bomb_hit":       65,
			"jump.huge":      60,
			"flip":           45,
			"jump.big":       40,
			"wheelie":        35,
			"kill":           30,
			"crowd_pressure": 20,
			"speed_tier":     10,
		},
		Thresholds: Thresholds{
			AirtimeBigJump:          0.9,
			AirtimeHugeJump:         1.6,
			WheelieLong:             2.0,
			FlipCount:               1,
			SpeedTier1:              30.0,
			SpeedTier2:              45.0,
			NearDeathHealthFraction: 0.25,
		},
		Fallback: FallbackConfig{
			Lines: []string{
				"What a moment!",
				"Unbelievable scenes out there.",
				"I don't even have words for that one.",
				"This run keeps delivering.",
				"You love to see it.",
			},
			Kinds: map[string][]string{
				"boss_killed": {
					"Down goes the big one!",
					"And that is how you close out a boss fight.",
				},
				"crash": {
					"Oh, that one hurt.",
					"Right into the pavement.",
				},
				"near_death": {
					"That was way too close.",
					"Living on the edge of the health bar.",
				},
				"kill": {
					"Another one bites the dust.",
					"Clean takedown.",
				},
				"jump": {
					"Look at that airtime!",
					"Sticking the landing like it's nothing.",
				},
			},
		},
	}
}

// DefaultPriority is used for kinds missing from the priority table.
const DefaultPriority = 25
