// Package events defines the typed booth observation contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - gameplay.*
//   - turn.*
//   - line.*
//
// gameplay events report intake decisions:
//
//   - GameplayAccepted (gameplay.accepted): a telemetry event was queued for
//     commentary, with its assigned priority.
//   - GameplayMerged (gameplay.merged): a telemetry event was folded into a
//     pending queue entry with the same dedup key; Upgraded reports whether
//     the entry's magnitude grew.
//   - GameplayDropped (gameplay.dropped): a telemetry event was discarded,
//     with the shedding reason.
//
// turn events track the narration lifecycle:
//
//   - TurnDispatched (turn.dispatched): a queued event was assigned a
//     sequence number and a persona.
//   - TurnCompleted (turn.completed): the narration pipeline produced a line
//     for the turn.
//   - TurnFailed (turn.failed): the pipeline gave up on the turn; a fallback
//     line substitutes for it.
//   - TurnCancelled (turn.cancelled): the turn was abandoned without output;
//     Forced marks scheduler-initiated cancellation of a stuck turn.
//
// line events mark ordered delivery:
//
//   - LineReleased (line.released): a narration line cleared the ordering
//     buffer and was handed to the subtitle/audio consumers. Released
//     sequence numbers are strictly increasing.
package events
