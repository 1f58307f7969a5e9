// Package audit records authorization decisions and authentication
// outcomes as an immutable trail.
//
// Events flow through a Recorder. The DBRecorder persists to PostgreSQL
// for querying and retention; the LogRecorder emits each event as a
// structured log line for shipping to a SIEM. MultiRecorder fans out to
// both, and AsyncRecorder decouples recording from the request path so a
// slow sink never delays a decision.
//
// Recording is best-effort: a failed write is logged and counted, never
// surfaced to the caller. The decision itself is the source of truth;
// the trail is evidence, not enforcement.
package audit
