package commentary

import (
	"fmt"
	"testing"
	"time"

	"github.com/castwerk/booth-core/core/config"
	"github.com/castwerk/booth-core/core/events"
	"github.com/castwerk/booth-core/core/telemetry"
)

func newTestIntake(capacity int, window time.Duration) (*intake, *commentaryQueue) {
	queue := newCommentaryQueue(capacity)
	return newIntake(queue, config.Default().Priorities, window), queue
}

func TestIntakeMergesRapidDuplicates(t *testing.T) {
	in, queue := newTestIntake(16, 2*time.Second)
	now := time.Now()

	first := telemetry.Kill("goon")
	first.Timestamp = now
	if outcome := in.submit(first, now); outcome.accepted == nil {
		t.Fatalf("expected first kill accepted, got %+v", outcome)
	}

	second := telemetry.Kill("goon")
	second.Timestamp = now.Add(50 * time.Millisecond)
	outcome := in.submit(second, now.Add(50*time.Millisecond))
	if outcome.merged == nil {
		t.Fatalf("expected second kill merged, got %+v", outcome)
	}
	if outcome.upgraded {
		t.Fatal("expected no upgrade for equal magnitude")
	}
	if queue.len() != 1 {
		t.Fatalf("expected one pending entry, got %d", queue.len())
	}
	entry := queue.peek()
	if entry.Merges != 1 {
		t.Fatalf("expected merge count 1, got %d", entry.Merges)
	}
	if !entry.Event.Timestamp.Equal(second.Timestamp) {
		t.Fatalf("expected merged entry to carry the later timestamp, got %v", entry.Event.Timestamp)
	}
}

func TestIntakeMergeUpgradesOnHigherMagnitude(t *testing.T) {
	in, queue := newTestIntake(16, 2*time.Second)
	now := time.Now()

	big := telemetry.Jump(telemetry.BucketBig)
	big.Timestamp = now
	in.submit(big, now)

	huge := telemetry.Jump(telemetry.BucketHuge)
	huge.Timestamp = now.Add(100 * time.Millisecond)
	outcome := in.submit(huge, now.Add(100*time.Millisecond))
	if outcome.merged == nil || !outcome.upgraded {
		t.Fatalf("expected upgrading merge, got %+v", outcome)
	}
	entry := queue.peek()
	if entry.Event.Magnitude != telemetry.BucketHuge {
		t.Fatalf("expected the huge variant retained, got magnitude %d", entry.Event.Magnitude)
	}
	if entry.Priority != 60 {
		t.Fatalf("expected priority recomputed to 60, got %d", entry.Priority)
	}
}

func TestIntakeMergeKeepsHigherMagnitudeVariant(t *testing.T) {
	in, queue := newTestIntake(16, 2*time.Second)
	now := time.Now()

	huge := telemetry.Jump(telemetry.BucketHuge)
	huge.Timestamp = now
	in.submit(huge, now)

	big := telemetry.Jump(telemetry.BucketBig)
	big.Timestamp = now.Add(100 * time.Millisecond)
	outcome := in.submit(big, now.Add(100*time.Millisecond))
	if outcome.merged == nil || outcome.upgraded {
		t.Fatalf("expected non-upgrading merge, got %+v", outcome)
	}
	entry := queue.peek()
	if entry.Event.Magnitude != telemetry.BucketHuge {
		t.Fatalf("expected the huge variant retained, got magnitude %d", entry.Event.Magnitude)
	}
	if !entry.Event.Timestamp.Equal(big.Timestamp) {
		t.Fatal("expected the timestamp refreshed by the merge")
	}
}

func TestIntakeSeparateKeysDoNotMerge(t *testing.T) {
	in, queue := newTestIntake(16, 2*time.Second)
	now := time.Now()

	goon := telemetry.Kill("goon")
	goon.Timestamp = now
	sniper := telemetry.Kill("sniper")
	sniper.Timestamp = now
	in.submit(goon, now)
	if outcome := in.submit(sniper, now); outcome.accepted == nil {
		t.Fatalf("expected kill of a different enemy type accepted, got %+v", outcome)
	}
	if queue.len() != 2 {
		t.Fatalf("expected two pending entries, got %d", queue.len())
	}
}

func TestIntakeDropsEchoOfDispatchedMoment(t *testing.T) {
	in, queue := newTestIntake(16, 2*time.Second)
	now := time.Now()

	kill := telemetry.Kill("goon")
	kill.Timestamp = now
	in.submit(kill, now)
	entry := queue.pop()
	in.markDispatched(entry.Event.DedupKey(), now)

	echo := telemetry.Kill("goon")
	echo.Timestamp = now.Add(time.Second)
	outcome := in.submit(echo, now.Add(time.Second))
	if outcome.dropped != events.DropDuplicate {
		t.Fatalf("expected duplicate drop inside the window, got %+v", outcome)
	}

	later := telemetry.Kill("goon")
	later.Timestamp = now.Add(3 * time.Second)
	if outcome := in.submit(later, now.Add(3*time.Second)); outcome.accepted == nil {
		t.Fatalf("expected kill accepted after the window, got %+v", outcome)
	}
}

func TestIntakeShedsWhenFullOfHigher(t *testing.T) {
	in, _ := newTestIntake(1, 2*time.Second)
	now := time.Now()

	boss := telemetry.BossKilled()
	boss.Timestamp = now
	in.submit(boss, now)

	tier := telemetry.SpeedTier(1)
	tier.Timestamp = now
	if outcome := in.submit(tier, now); outcome.dropped != events.DropShed {
		t.Fatalf("expected shed drop, got %+v", outcome)
	}
}

func TestIntakeReportsEviction(t *testing.T) {
	in, _ := newTestIntake(1, 2*time.Second)
	now := time.Now()

	tier := telemetry.SpeedTier(1)
	tier.Timestamp = now
	in.submit(tier, now)

	boss := telemetry.BossKilled()
	boss.Timestamp = now
	outcome := in.submit(boss, now)
	if outcome.accepted == nil {
		t.Fatalf("expected boss kill accepted, got %+v", outcome)
	}
	if outcome.evicted == nil || outcome.evicted.Event.Kind != telemetry.KindSpeedTier {
		t.Fatalf("expected the speed tier entry evicted, got %+v", outcome.evicted)
	}
}

func TestIntakeRecentRingIsBounded(t *testing.T) {
	in, _ := newTestIntake(64, time.Millisecond)
	now := time.Now()

	for i := 0; i < recentEventLimit+4; i++ {
		kill := telemetry.Kill(fmt.Sprintf("goon-%d", i))
		kill.Timestamp = now.Add(time.Duration(i) * time.Second)
		in.submit(kill, kill.Timestamp)
	}
	if len(in.recent) != recentEventLimit {
		t.Fatalf("expected recent ring capped at %d, got %d", recentEventLimit, len(in.recent))
	}
}

func TestIntakeRecentOthersExcludesNarratedEvent(t *testing.T) {
	in, _ := newTestIntake(64, time.Millisecond)
	now := time.Now()

	crash := telemetry.Crash()
	crash.Timestamp = now
	kill := telemetry.Kill("goon")
	kill.Timestamp = now.Add(time.Second)
	boss := telemetry.BossKilled()
	boss.Timestamp = now.Add(2 * time.Second)
	in.submit(crash, crash.Timestamp)
	in.submit(kill, kill.Timestamp)
	in.submit(boss, boss.Timestamp)

	others := in.recentOthers(boss, 4)
	if len(others) != 2 {
		t.Fatalf("expected two other events, got %d", len(others))
	}
	if others[0].Kind != telemetry.KindKill || others[1].Kind != telemetry.KindCrash {
		t.Fatalf("expected newest-first order kill,crash, got %v,%v", others[0].Kind, others[1].Kind)
	}
}
