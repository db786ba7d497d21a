package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

const configName = "commentator"

// Load reads commentator.toml from dir, merges it over the built-in defaults
// and validates the result. A missing file yields the defaults.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType("toml")
	v.AddConfigPath(dir)

	cfg := Default()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read commentator.toml: %w", err)
		}
	} else {
		if v.IsSet("commentators") {
			// A roster in the file replaces the default roster wholesale;
			// decoding merges slices per index otherwise.
			cfg.Commentators = nil
		}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode commentator.toml: %w", err)
		}
	}

	applyProfileDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyProfileDefaults fills per-profile fields the file left unset, matching
// the per-field defaults a profile gets when it is omitted entirely.
func applyProfileDefaults(cfg *Config) {
	for i := range cfg.Commentators {
		profile := &cfg.Commentators[i]
		if profile.CharacterID == "" {
			profile.CharacterID = profile.ID
		}
		if profile.StyleInstruction == "" {
			profile.StyleInstruction = DefaultStyleInstruction
		}
		if profile.StyleLength == "" {
			profile.StyleLength = "short"
		}
		if profile.SubtitleColor == (Color{}) {
			profile.SubtitleColor = Color{0.9, 0.9, 0.9}
		}
	}
}
