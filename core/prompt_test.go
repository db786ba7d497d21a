package commentary

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/castwerk/booth-core/core/config"
	"github.com/castwerk/booth-core/core/telemetry"
	"github.com/castwerk/booth-core/internal/utils"
)

func promptFixture() (*QueuedEvent, *Commentator, *Commentator) {
	cfg := config.Default()
	speaker := newCommentator(cfg.Commentators[0])
	partner := newCommentator(cfg.Commentators[1])
	event := telemetry.BossKilled()
	event.Timestamp = time.Unix(100, 0)
	return &QueuedEvent{Event: event, Priority: 100}, speaker, partner
}

func TestBuildPromptIsDeterministic(t *testing.T) {
	entry, speaker, partner := promptFixture()
	run := RunContext{Segment: "Canyon Gauntlet", ScoreStreak: 12, HealthFrac: 0.54}
	kill := telemetry.Kill("goon")
	kill.Timestamp = time.Unix(90, 0)
	recent := []telemetry.Event{kill}

	first := buildPrompt(entry, speaker, partner, run, recent, 4)
	second := buildPrompt(entry, speaker, partner, run, recent, 4)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical requests, got\n%+v\n%+v", first, second)
	}
}

func TestBuildPromptCarriesSessionAndEmotions(t *testing.T) {
	entry, speaker, partner := promptFixture()

	request := buildPrompt(entry, speaker, partner, RunContext{}, nil, 4)
	if request.SessionID != speaker.SessionID {
		t.Fatalf("expected session %q, got %q", speaker.SessionID, request.SessionID)
	}
	if !reflect.DeepEqual(request.Emotions, speaker.Profile.Emotions) {
		t.Fatalf("expected the speaker's emotion set, got %v", request.Emotions)
	}
	if !strings.Contains(request.Instructions, speaker.Profile.Name) {
		t.Fatal("expected the instructions to name the speaker")
	}
	if !strings.Contains(request.Instructions, partner.Profile.Name) {
		t.Fatal("expected the instructions to name the co-commentator")
	}
}

func TestBuildPromptFirstLineSentinel(t *testing.T) {
	entry, speaker, partner := promptFixture()

	request := buildPrompt(entry, speaker, partner, RunContext{}, nil, 4)
	if !strings.Contains(request.Prompt, "first line of the run") {
		t.Fatalf("expected the first-line sentinel, got %q", request.Prompt)
	}
	if strings.Contains(request.Prompt, "You previously said") {
		t.Fatal("expected no self-quote before the speaker has spoken")
	}
}

func TestBuildPromptQuotesPriorLines(t *testing.T) {
	entry, speaker, partner := promptFixture()
	partner.LastLine = "Bold strategy!"
	speaker.LastLine = "He sticks the landing."

	request := buildPrompt(entry, speaker, partner, RunContext{}, nil, 4)
	if !strings.Contains(request.Prompt, partner.Profile.Name+" said last: \"Bold strategy!\"") {
		t.Fatalf("expected the partner's line quoted, got %q", request.Prompt)
	}
	if !strings.Contains(request.Prompt, "You previously said: \"He sticks the landing.\"") {
		t.Fatalf("expected the speaker's own line quoted, got %q", request.Prompt)
	}
	if strings.Contains(request.Prompt, "first line of the run") {
		t.Fatal("expected no first-line sentinel once the partner has spoken")
	}
}

func TestBuildPromptMentionsMerges(t *testing.T) {
	entry, speaker, partner := promptFixture()
	entry.Merges = 2

	request := buildPrompt(entry, speaker, partner, RunContext{}, nil, 4)
	if !strings.Contains(request.Prompt, "3 of those back to back") {
		t.Fatalf("expected the merge count surfaced, got %q", request.Prompt)
	}
}

func TestBuildPromptCapsRecentDigest(t *testing.T) {
	entry, speaker, partner := promptFixture()
	var recent []telemetry.Event
	for i := 0; i < 6; i++ {
		recent = append(recent, telemetry.Crash())
	}

	request := buildPrompt(entry, speaker, partner, RunContext{}, recent, 4)
	for _, line := range strings.Split(request.Prompt, "\n") {
		if !strings.HasPrefix(line, "Also in recent play:") {
			continue
		}
		if got := strings.Count(line, ";") + 1; got > 3 {
			t.Fatalf("expected at most 3 digest entries, got %d in %q", got, line)
		}
		return
	}
	t.Fatal("expected a recent-play digest line")
}

func TestBuildPromptIncludesRunContext(t *testing.T) {
	entry, speaker, partner := promptFixture()
	run := RunContext{Segment: "Canyon Gauntlet", ScoreStreak: 12, HealthFrac: 0.54}

	request := buildPrompt(entry, speaker, partner, run, nil, 4)
	for _, want := range []string{"Canyon Gauntlet", "Score streak: 12", "Health: 54%"} {
		if !strings.Contains(request.Prompt, want) {
			t.Fatalf("expected %q in the prompt, got %q", want, request.Prompt)
		}
	}
}

func TestInstructionsRespectProfanityFilter(t *testing.T) {
	cfg := config.Default()
	clean := cfg.Commentators[0]
	salty := cfg.Commentators[1]
	salty.ProfanityFilter = utils.Ptr(false)

	instructions := buildInstructions(clean, salty)
	if !strings.Contains(instructions, "family-friendly") {
		t.Fatal("expected the filtered persona to stay family-friendly")
	}
	instructions = buildInstructions(salty, clean)
	if !strings.Contains(instructions, "profanity is allowed") {
		t.Fatal("expected the unfiltered persona to allow profanity")
	}
}

func TestSummarizeEvents(t *testing.T) {
	nearDeath := telemetry.NearDeath(0.07)

	tests := []struct {
		name  string
		event telemetry.Event
		want  string
	}{
		{"big jump", telemetry.Jump(telemetry.BucketBig), "The player made a big jump."},
		{"huge jump", telemetry.Jump(telemetry.BucketHuge), "The player made a huge jump."},
		{"wheelie", telemetry.WheelieLong(), "The player held a long wheelie."},
		{"single flip", telemetry.Flip(1), "The player landed a flip."},
		{"triple flip", telemetry.Flip(3), "The player landed 3 flips in one air."},
		{"kill", telemetry.Kill("sniper"), "The player took down a sniper."},
		{"anonymous kill", telemetry.Kill(""), "The player took down an enemy."},
		{"boss", telemetry.BossKilled(), "The player just killed the boss."},
		{"crash", telemetry.Crash(), "The player just wiped out hard."},
		{"top speed", telemetry.SpeedTier(2), "The player hit a blistering top speed."},
		{"near death", nearDeath, "The player barely survived, down to 7% health."},
		{"crowd", telemetry.CrowdPressure(), "A crowd of enemies is closing in on the player."},
		{"bomb", telemetry.BombHit(), "The player got caught by a bomb blast."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := summarize(tt.event); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
