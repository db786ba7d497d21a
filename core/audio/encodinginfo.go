package audio

import "time"

const (
	DefaultSampleRate = 16000
	DefaultFormat     = "linear16"
)

func DefaultEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: DefaultSampleRate, Format: encodingFormat(DefaultFormat)}
}

type EncodingInfo struct {
	SampleRate int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

// Duration estimates playback time for a raw payload of the given byte
// length. Returns 0 when the encoding is unknown or incomplete.
func (e EncodingInfo) Duration(payloadLen int) time.Duration {
	byteSize := e.Format.ByteSize()
	if byteSize <= 0 || e.SampleRate <= 0 || payloadLen <= 0 {
		return 0
	}
	samples := payloadLen / byteSize
	return time.Duration(samples) * time.Second / time.Duration(e.SampleRate)
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingMulaw, EncodingALaw:
		return 1
	case EncodingLinear16:
		return 2
	}
	return -1
}

const (
	EncodingMulaw    encodingFormat = "mulaw"
	EncodingALaw     encodingFormat = "alaw"
	EncodingLinear16 encodingFormat = "linear16"
)
