// Package telemetry defines the gameplay event contract between the game's
// telemetry side and the commentary booth.
//
// The game decides what counts as a notable moment (airtime thresholds, kill
// detection, speed tiers) and emits one immutable Event per moment. The booth
// only consumes them: deduplication, prioritization and scheduling happen on
// the booth side, keyed off [Event.DedupKey] and [Event.PriorityKey].
package telemetry

import (
	"fmt"
	"time"
)

// Kind identifies the family of gameplay moment an Event describes.
type Kind string

const (
	KindJump          Kind = "jump"
	KindWheelie       Kind = "wheelie"
	KindFlip          Kind = "flip"
	KindKill          Kind = "kill"
	KindBossKilled    Kind = "boss_killed"
	KindCrash         Kind = "crash"
	KindSpeedTier     Kind = "speed_tier"
	KindNearDeath     Kind = "near_death"
	KindCrowdPressure Kind = "crowd_pressure"
	KindBombHit       Kind = "bomb_hit"
)

// Magnitude buckets for jumps.
const (
	BucketBig  = 1
	BucketHuge = 2
)

// Event is a single notable gameplay moment. Created by the game's telemetry,
// consumed exactly once by the booth's intake. Fields are never mutated after
// construction.
type Event struct {
	Kind Kind

	// Magnitude is an ordinal used when merging near-duplicate moments: a
	// pending event is upgraded only by a strictly greater magnitude. Jumps
	// use the bucket constants, flips their count, speed its tier, near-death
	// its severity. Zero for kinds without a magnitude.
	Magnitude int

	// EnemyType qualifies kill events ("goon", "sniper", ...). Empty
	// otherwise.
	EnemyType string

	// HealthFrac is the remaining health fraction for near-death events.
	HealthFrac float64

	Timestamp time.Time
}

func Jump(bucket int) Event {
	return Event{Kind: KindJump, Magnitude: bucket, Timestamp: time.Now()}
}

func WheelieLong() Event {
	return Event{Kind: KindWheelie, Timestamp: time.Now()}
}

func Flip(count int) Event {
	return Event{Kind: KindFlip, Magnitude: count, Timestamp: time.Now()}
}

func Kill(enemyType string) Event {
	return Event{Kind: KindKill, EnemyType: enemyType, Timestamp: time.Now()}
}

func BossKilled() Event {
	return Event{Kind: KindBossKilled, Timestamp: time.Now()}
}

func Crash() Event {
	return Event{Kind: KindCrash, Timestamp: time.Now()}
}

func SpeedTier(tier int) Event {
	return Event{Kind: KindSpeedTier, Magnitude: tier, Timestamp: time.Now()}
}

// NearDeath reports the player dropping to a critical health fraction.
// Severity bumps one bucket below 10% so a close call can supersede a pending
// milder one.
func NearDeath(healthFrac float64) Event {
	severity := 1
	if healthFrac < 0.1 {
		severity = 2
	}
	return Event{Kind: KindNearDeath, Magnitude: severity, HealthFrac: healthFrac, Timestamp: time.Now()}
}

func CrowdPressure() Event {
	return Event{Kind: KindCrowdPressure, Timestamp: time.Now()}
}

func BombHit() Event {
	return Event{Kind: KindBombHit, Timestamp: time.Now()}
}

// DedupKey identifies the moment an event describes, excluding magnitude, so
// that a bigger variant of the same moment merges into a pending smaller one
// instead of queueing twice. Kills are qualified by enemy type; all other
// kinds collapse onto their kind name.
func (e Event) DedupKey() string {
	if e.Kind == KindKill && e.EnemyType != "" {
		return string(KindKill) + "/" + e.EnemyType
	}
	return string(e.Kind)
}

// PriorityKey is the lookup key into the priority table. Jumps are split by
// bucket since a huge jump outranks a big one.
func (e Event) PriorityKey() string {
	if e.Kind == KindJump {
		if e.Magnitude >= BucketHuge {
			return "jump.huge"
		}
		return "jump.big"
	}
	return string(e.Kind)
}

func (e Event) String() string {
	switch e.Kind {
	case KindJump:
		if e.Magnitude >= BucketHuge {
			return "jump(huge)"
		}
		return "jump(big)"
	case KindFlip:
		return fmt.Sprintf("flip(%d)", e.Magnitude)
	case KindKill:
		return fmt.Sprintf("kill(%s)", e.EnemyType)
	case KindSpeedTier:
		return fmt.Sprintf("speed_tier(%d)", e.Magnitude)
	case KindNearDeath:
		return fmt.Sprintf("near_death(%.2f)", e.HealthFrac)
	}
	return string(e.Kind)
}
