package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/castwerk/booth-core/core/chat"
	"github.com/castwerk/booth-core/core/chat/groq"
	openaichat "github.com/castwerk/booth-core/core/chat/openai"
	"github.com/castwerk/booth-core/core/config"
	"github.com/castwerk/booth-core/core/voice"
	"github.com/castwerk/booth-core/core/voice/deepgram"
)

// buildBackends picks the narration backends: simulated ones by default,
// the real providers with --live.
func buildBackends(environment config.Env, logger *log.Logger) (chat.Completer, voice.Synthesizer, error) {
	if !live || environment.Offline {
		if live && environment.Offline {
			logger.Warn("BOOTH_OFFLINE is set, ignoring --live")
		}
		rng := rand.New(rand.NewSource(seedOrClock()))
		logger.Info("using simulated narration backends", "seed", seed, "failure_rate", failureRate)
		return newSimCompleter(rng, failureRate), &voice.Mock{Delay: 350 * time.Millisecond}, nil
	}

	var completer chat.Completer
	switch environment.ChatProvider {
	case "groq", "":
		if environment.GroqAPIKey == "" {
			return nil, nil, fmt.Errorf("--live requires GROQ_API_KEY")
		}
		var opts []groq.Option
		if environment.ChatModel != "" {
			opts = append(opts, groq.WithModel(environment.ChatModel))
		}
		completer = groq.New(environment.GroqAPIKey, opts...)
	case "openai":
		if environment.OpenAIAPIKey == "" {
			return nil, nil, fmt.Errorf("--live with the openai provider requires OPENAI_API_KEY")
		}
		var opts []openaichat.Option
		if environment.ChatModel != "" {
			opts = append(opts, openaichat.WithModel(environment.ChatModel))
		}
		completer = openaichat.New(environment.OpenAIAPIKey, opts...)
	default:
		return nil, nil, fmt.Errorf("unknown chat provider %q", environment.ChatProvider)
	}

	synthesizer, err := deepgram.New(deepgram.WithAPIKey(environment.DeepgramAPIKey))
	if err != nil {
		logger.Warn("voice synthesis disabled, running subtitle-only", "error", err)
		return completer, nil, nil
	}
	return completer, synthesizer, nil
}

func seedOrClock() int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}
