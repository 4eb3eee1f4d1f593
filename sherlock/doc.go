// Package sherlock implements the append-only, monotonically-indexed,
// in-memory publish/subscribe log that a yoda Store is built on top of
// (spec.md §4.1–4.2). Entries published to a Log are broadcast in
// order to every live Subscription and are replayable from index 0 at
// any time.
package sherlock
