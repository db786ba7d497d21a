package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env carries process-level settings that never belong in commentator.toml:
// credentials and deployment switches.
type Env struct {
	GroqAPIKey     string `env:"GROQ_API_KEY"`
	OpenAIAPIKey   string `env:"OPENAI_API_KEY"`
	DeepgramAPIKey string `env:"DEEPGRAM_API_KEY"`
	ConfigDir      string `env:"BOOTH_CONFIG_DIR" envDefault:"."`
	// Offline keeps narration off the network even when a live run is
	// requested; the simulated backends serve instead.
	Offline      bool   `env:"BOOTH_OFFLINE"`
	ChatProvider string `env:"BOOTH_CHAT_PROVIDER" envDefault:"groq"`
	ChatModel    string `env:"BOOTH_CHAT_MODEL"`
}

// LoadEnv parses the environment overrides.
func LoadEnv() (Env, error) {
	environment, err := env.ParseAs[Env]()
	if err != nil {
		return Env{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return environment, nil
}
