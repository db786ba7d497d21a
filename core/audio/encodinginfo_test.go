package audio

import (
	"testing"
	"time"
)

func TestDurationLinear16(t *testing.T) {
	encoding := EncodingInfo{SampleRate: 16000, Format: EncodingLinear16}

	// One second of 16kHz 16-bit audio is 32000 bytes.
	if got := encoding.Duration(32000); got != time.Second {
		t.Fatalf("expected 1s, got %v", got)
	}
	if got := encoding.Duration(16000); got != 500*time.Millisecond {
		t.Fatalf("expected 500ms, got %v", got)
	}
}

func TestDurationZeroOnUnknownEncoding(t *testing.T) {
	if got := (EncodingInfo{}).Duration(32000); got != 0 {
		t.Fatalf("expected 0 duration for zero encoding, got %v", got)
	}
	if got := DefaultEncodingInfo().Duration(0); got != 0 {
		t.Fatalf("expected 0 duration for empty payload, got %v", got)
	}
}
