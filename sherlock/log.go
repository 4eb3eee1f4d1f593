package sherlock

import "sync"

// Log is an append-only, strictly increasing, dense sequence of
// entries of type E (invariant I1 in spec.md). It is safe to call
// Publish and Subscribe concurrently from any goroutine: a single
// mutex serializes appends and, in the same critical section,
// broadcasts each newly published entry to every live subscriber's
// bounded channel.
type Log[E any] struct {
	mu      sync.Mutex
	entries []E
	subs    map[*Subscription[E]]struct{}
}

// New constructs an empty Log.
func New[E any]() *Log[E] {
	return &Log[E]{subs: make(map[*Subscription[E]]struct{})}
}

// Publish appends a copy of entry and returns its assigned monotonic
// index. Every live subscriber's channel receives the entry before
// Publish returns to the caller, so Publish may block on a full
// per-subscriber buffer (backpressure, spec.md §5) rather than drop
// the entry or deliver it out of order.
func (l *Log[E]) Publish(entry E) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := int64(len(l.entries))
	l.entries = append(l.entries, entry)
	total := int64(len(l.entries))

	for s := range l.subs {
		s.deliverLive(delivery[E]{entry: entry, index: idx, total: total})
	}
	return idx, nil
}

// Count returns the number of entries published so far.
func (l *Log[E]) Count() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return int64(len(l.entries))
}

// Subscribe registers handler and immediately begins replaying the log
// from index 0, then continues delivering live entries as they are
// published — unless a SubscribeOption narrows that behavior (see
// WithReplayCap, WithReplayTail).
func (l *Log[E]) Subscribe(handler Handler[E], opts ...SubscribeOption) *Subscription[E] {
	options := subscribeOptions{bufferSize: defaultBufferSize}
	for _, opt := range opts {
		opt(&options)
	}

	l.mu.Lock()
	var snapshot []E
	var terminateAfterReplay bool
	switch {
	case options.capN > 0:
		n := options.capN
		if n > len(l.entries) {
			n = len(l.entries)
		}
		snapshot = append(snapshot, l.entries[:n]...)
		terminateAfterReplay = true
	case options.tailN > 0:
		n := options.tailN
		if n > len(l.entries) {
			n = len(l.entries)
		}
		snapshot = append(snapshot, l.entries[len(l.entries)-n:]...)
		terminateAfterReplay = true
	default:
		snapshot = append(snapshot, l.entries...)
	}

	sub := newSubscription(l, handler, options.bufferSize, terminateAfterReplay)
	if !terminateAfterReplay {
		l.subs[sub] = struct{}{}
	}
	l.mu.Unlock()

	sub.start(snapshot)
	return sub
}

// unregister removes sub from the broadcast set. Detach is idempotent,
// so unregister tolerates being called on an already-removed sub.
func (l *Log[E]) unregister(sub *Subscription[E]) {
	l.mu.Lock()
	delete(l.subs, sub)
	l.mu.Unlock()
}

const defaultBufferSize = 64

type subscribeOptions struct {
	capN       int
	tailN      int
	bufferSize int
}

// SubscribeOption configures a Log.Subscribe call.
type SubscribeOption func(*subscribeOptions)

// WithReplayCap limits delivery to the first n entries present at
// subscribe time, then terminates the subscription (no live tail).
// Mirrors the `cap=N` query parameter named in spec.md §6.
func WithReplayCap(n int) SubscribeOption {
	return func(o *subscribeOptions) { o.capN = n }
}

// WithReplayTail limits delivery to the last n entries present at
// subscribe time, then terminates the subscription (no live tail).
// Mirrors the `n=N` query parameter named in spec.md §6.
func WithReplayTail(n int) SubscribeOption {
	return func(o *subscribeOptions) { o.tailN = n }
}

// WithBufferSize overrides the bounded per-subscriber delivery
// channel's capacity (default 64).
func WithBufferSize(n int) SubscribeOption {
	return func(o *subscribeOptions) { o.bufferSize = n }
}
