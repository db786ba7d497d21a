package events

import (
	"testing"

	"github.com/castwerk/booth-core/core/telemetry"
)

func TestConstructorsEmitExpectedKinds(t *testing.T) {
	crash := telemetry.Crash()

	testCases := []struct {
		name     string
		event    Event
		expected Kind
	}{
		{name: "gameplay accepted", event: NewGameplayAccepted(crash, 70), expected: KindGameplayAccepted},
		{name: "gameplay merged", event: NewGameplayMerged(crash, true), expected: KindGameplayMerged},
		{name: "gameplay dropped", event: NewGameplayDropped(crash, DropShed), expected: KindGameplayDropped},
		{name: "turn dispatched", event: NewTurnDispatched(1, "commentator_a", crash), expected: KindTurnDispatched},
		{name: "turn completed", event: NewTurnCompleted(1, "commentator_a"), expected: KindTurnCompleted},
		{name: "turn failed", event: NewTurnFailed(1, "commentator_a"), expected: KindTurnFailed},
		{name: "turn cancelled", event: NewTurnCancelled(1, "commentator_a", false), expected: KindTurnCancelled},
		{name: "line released", event: NewLineReleased(1, "commentator_a", "line", false), expected: KindLineReleased},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.event.Kind(); got != testCase.expected {
				t.Fatalf("expected kind %q, got %q", testCase.expected, got)
			}
		})
	}
}

func TestBaseStampsTimestamps(t *testing.T) {
	if NewTurnFailed(3, "commentator_b").Timestamp().IsZero() {
		t.Fatal("expected event constructor to stamp the event")
	}
}
