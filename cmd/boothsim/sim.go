package main

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/castwerk/booth-core/core/chat"
)

const (
	simMinLatency = 300 * time.Millisecond
	simMaxLatency = 2500 * time.Millisecond
)

var errSimOutage = errors.New("simulated narration outage")

// simThemes maps a phrase from the factual prompt to canned reactions, so
// simulated lines loosely track what actually happened.
var simThemes = map[string][]string{
	"jump": {
		"That gap was measured in postcodes!",
		"Air traffic control wants a word with him.",
		"He was up there long enough to file a flight plan.",
	},
	"wheelie": {
		"Front wheel's purely decorative at this point.",
		"That balance is criminal, somebody check his inner ear.",
	},
	"flip": {
		"The horizon is a suggestion to this man.",
		"Rotation for days, and he still found the landing.",
	},
	"took down": {
		"Another one off the board, clinical work.",
		"He barely looked at that guy. Ice cold.",
	},
	"boss": {
		"THE BIG ONE GOES DOWN! Someone call the record keepers!",
		"Months from now they'll ask where you were for this.",
	},
	"wiped out": {
		"Oh that's a medical bill, not a mistake.",
		"The ground had opinions about that plan.",
	},
	"speed": {
		"The scenery has given up keeping pace.",
		"That's not a speed, that's a dare.",
	},
	"survived": {
		"He's running on fumes and pure nerve.",
		"One health bar pixel left and he's still grinning.",
	},
	"crowd": {
		"They're everywhere, this is about to get loud.",
		"Somebody sold tickets to a mugging.",
	},
	"bomb": {
		"That blast rearranged the schedule.",
		"He caught the whole fireworks budget at once.",
	},
}

var simGenericLines = []string{
	"What a sequence this run is turning into!",
	"I genuinely don't know how he keeps doing this.",
	"Somebody clip that, right now.",
}

// simCompleter fakes the upstream chat API with realistic latency and a
// configurable failure rate.
type simCompleter struct {
	mu          sync.Mutex
	rng         *rand.Rand
	failureRate float64
}

func newSimCompleter(rng *rand.Rand, failureRate float64) *simCompleter {
	return &simCompleter{rng: rng, failureRate: failureRate}
}

func (s *simCompleter) Complete(ctx context.Context, request chat.Request) (*chat.Response, error) {
	delay, fail, response := s.plan(request)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(delay):
	}
	if fail {
		return nil, errSimOutage
	}
	return response, nil
}

func (s *simCompleter) plan(request chat.Request) (time.Duration, bool, *chat.Response) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delay := simMinLatency + time.Duration(s.rng.Int63n(int64(simMaxLatency-simMinLatency)))
	fail := s.rng.Float64() < s.failureRate

	line := simGenericLines[s.rng.Intn(len(simGenericLines))]
	for phrase, pool := range simThemes {
		if strings.Contains(request.Prompt, phrase) {
			line = pool[s.rng.Intn(len(pool))]
			break
		}
	}
	emotion := ""
	if len(request.Emotions) > 0 {
		emotion = request.Emotions[s.rng.Intn(len(request.Emotions))]
	}
	return delay, fail, &chat.Response{Line: line, Emotion: emotion}
}
