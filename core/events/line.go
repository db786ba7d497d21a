package events

// KindLineReleased identifies ordered delivery of a commentary line.
const KindLineReleased Kind = "line.released"

// LineReleased marks a narration line clearing the ordering buffer. Released
// sequence numbers are strictly increasing for the lifetime of a run.
type LineReleased struct {
	Base
	Seq       uint64
	PersonaID string
	Text      string
	Fallback  bool
}

// NewLineReleased creates a line released event.
func NewLineReleased(seq uint64, personaID string, text string, fallback bool) LineReleased {
	return LineReleased{Base: NewBase(KindLineReleased), Seq: seq, PersonaID: personaID, Text: text, Fallback: fallback}
}
