package yoda

import (
	"net/url"
	"time"
)

// The interfaces below are the contracts this core relies on from its
// external collaborators (spec.md §6). The core never implements an
// HTTP server or a wire serializer, and its only Clock is the trivial
// systemClock default below: those are
// explicitly out of scope per spec.md §1 ("the HTTP server and
// routing", "JSON/binary serialization of entries", "the
// chunked-response transport"). Keeping only the interfaces here lets
// ExposeViaHTTP accept whatever concrete HTTP server a caller already
// runs, without this module importing a routing framework itself.

// Serializer round-trips Entry values to and from bytes, preserving
// the polymorphic Tag discriminator when an Entry type is a sum of
// variants (spec.md §6, §9).
type Serializer interface {
	Marshal(e Entry) ([]byte, error)
	Unmarshal(tag Tag, data []byte) (Entry, error)
}

// RequestHandle is a scoped handle to one in-flight HTTP request whose
// response lifetime a Subscription must be bound to (spec.md §6, §9
// — the dashboard.cc pitfall of a chunked response and its
// subscription needing to stay alive together).
type RequestHandle interface {
	// Write appends record to the response body as given; the stream
	// handler passes each serialized record with its trailing newline
	// already attached. It reports an error once the client has gone
	// away, at which point the caller should Detach its Subscription.
	Write(record []byte) error
	// Done is closed when the request handle's underlying connection
	// is no longer usable.
	Done() <-chan struct{}
	// Query returns this request's URL query parameters, e.g. the
	// "cap=N"/"n=N" replay selectors spec.md §6 names for the stream
	// endpoint. Store.ExposeViaHTTP's optsFor callback is the intended
	// caller; see ReplayOptionsFromQuery.
	Query() url.Values
}

// HTTPServer registers path handlers capable of streaming a live
// Subscription to a client (spec.md §6).
type HTTPServer interface {
	HandleFunc(path string, fn func(RequestHandle))
	ListenAndServe(addr string) error
}

// Clock supplies the current time for timestamping entries whose
// timestamp field is opaque to the store (spec.md §6).
type Clock interface {
	Now() time.Time
}

// systemClock is the default Clock, used unless a caller supplies its
// own (e.g. a fake clock in tests).
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }
