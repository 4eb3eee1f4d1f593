// Package mailbox implements the single-consumer bounded command queue
// that drives a yoda Store's writer/indexer worker (spec.md §4.3). The
// queue is deliberately non-dropping: a full mailbox makes Send block
// rather than discard a command, because dropping a command would
// break the replay property (P2) just as surely as dropping a log
// broadcast would.
package mailbox

import "context"

// Mailbox is a single-producer-many-callers / single-consumer queue of
// messages of type T. Submission order among callers is preserved;
// command execution by the single consumer is strictly serial.
type Mailbox[T any] struct {
	ch chan T
}

// New constructs a Mailbox with the given bounded capacity. A capacity
// of 0 makes every Send block until a consumer is ready to Receive.
func New[T any](capacity int) *Mailbox[T] {
	return &Mailbox[T]{ch: make(chan T, capacity)}
}

// Send enqueues msg, blocking if the mailbox is full (backpressure)
// until space is available or the context is cancelled. Calling Send
// after Close panics.
func (m *Mailbox[T]) Send(ctx context.Context, msg T) error {
	select {
	case m.ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive returns the channel the single consumer reads from.
func (m *Mailbox[T]) Receive() <-chan T {
	return m.ch
}

// Close closes the underlying channel. Close must only be called once,
// after all producers have stopped sending.
func (m *Mailbox[T]) Close() {
	close(m.ch)
}
