// Package yoda implements an event-sourced, in-memory, typed
// key/value and matrix store layered atop the append-only
// publish/subscribe log in package sherlock (spec.md §1). Declare one
// or more entry families with Dictionary/Matrix StoreOptions, open a
// Store with NewStore, and read or write them through Transaction
// closures: every write a closure performs is published to the Log
// before the closure returns, and the Store's single worker goroutine
// is the only thing ever allowed to mutate the in-memory indexes.
package yoda
