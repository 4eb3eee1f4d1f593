package sherlock

import "sync"

// HandlerResult tells the Log's delivery loop whether to keep
// delivering entries to a Subscription's handler.
type HandlerResult int

const (
	// Continue keeps the subscription delivering further entries.
	Continue HandlerResult = iota
	// StopDelivery terminates the subscription after the current call.
	StopDelivery
)

// Handler receives entries delivered by a Subscription, in log order,
// plus a final Terminate notification once the subscription ends
// (spec.md §4.1).
type Handler[E any] interface {
	// OnEntry is called once per delivered entry. total is the number
	// of entries known to the Log at the moment this one was emitted.
	OnEntry(entry E, index int64, total int64) HandlerResult
	// OnTerminate is called exactly once, after the last OnEntry call,
	// regardless of why the subscription ended.
	OnTerminate()
}

// State is a Subscription's position in its lifecycle (spec.md §4.7).
type State int

const (
	Attached State = iota
	Replaying
	Tailing
	Terminated
)

type delivery[E any] struct {
	entry E
	index int64
	total int64
}

// Subscription is a scoped live listener attached to a Log (spec.md
// §4.2). It owns its own delivery goroutine; Detach releases the
// subscription and blocks until any in-flight handler call returns.
type Subscription[E any] struct {
	log     *Log[E]
	handler Handler[E]

	ch                   chan delivery[E]
	detachRequested      chan struct{}
	runDone              chan struct{}
	detachOnce           sync.Once
	terminateAfterReplay bool

	mu           sync.Mutex
	state        State
	caughtUp     bool
	caughtUpOnce sync.Once
	caughtUpCh   chan struct{}
}

func newSubscription[E any](log *Log[E], handler Handler[E], bufferSize int, terminateAfterReplay bool) *Subscription[E] {
	return &Subscription[E]{
		log:                  log,
		handler:              handler,
		ch:                   make(chan delivery[E], bufferSize),
		detachRequested:      make(chan struct{}),
		runDone:              make(chan struct{}),
		caughtUpCh:           make(chan struct{}),
		terminateAfterReplay: terminateAfterReplay,
	}
}

// deliverLive is called by Log.Publish, holding the Log's append
// lock, to hand a freshly published entry to this subscription's
// bounded channel. It blocks if the channel is full, which is the
// backpressure spec.md §5 requires instead of dropping entries.
func (s *Subscription[E]) deliverLive(d delivery[E]) {
	select {
	case s.ch <- d:
	case <-s.detachRequested:
		// Subscription is gone; nothing to deliver to.
	}
}

func (s *Subscription[E]) start(snapshot []E) {
	s.setState(Replaying)
	go s.run(snapshot)
}

func (s *Subscription[E]) run(snapshot []E) {
	defer s.finish()

	total := int64(len(snapshot))
	for i, entry := range snapshot {
		idx := int64(i)
		if s.deliverOne(entry, idx, total) == StopDelivery {
			return
		}
		if idx+1 == total {
			s.markCaughtUp()
		}
	}
	if total == 0 {
		s.markCaughtUp()
	}

	if s.terminateAfterReplay {
		return
	}

	s.setState(Tailing)
	for {
		select {
		case d, ok := <-s.ch:
			if !ok {
				return
			}
			res := s.deliverOne(d.entry, d.index, d.total)
			if d.index+1 == d.total {
				s.markCaughtUp()
			}
			if res == StopDelivery {
				return
			}
		case <-s.detachRequested:
			return
		}
	}
}

func (s *Subscription[E]) deliverOne(entry E, index, total int64) HandlerResult {
	return s.handler.OnEntry(entry, index, total)
}

func (s *Subscription[E]) markCaughtUp() {
	s.mu.Lock()
	s.caughtUp = true
	s.mu.Unlock()
	s.caughtUpOnce.Do(func() { close(s.caughtUpCh) })
}

func (s *Subscription[E]) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Subscription[E]) finish() {
	s.setState(Terminated)
	s.log.unregister(s)
	s.handler.OnTerminate()
	close(s.runDone)
}

// CaughtUp reports whether the subscription has replayed every entry
// that was known to the Log at the moment it attached.
func (s *Subscription[E]) CaughtUp() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caughtUp
}

// CaughtUpChan returns a channel that is closed the first time the
// subscription's Replaying->Tailing transition occurs (spec.md §4.7),
// including the zero-entry case where replay has nothing to deliver.
func (s *Subscription[E]) CaughtUpChan() <-chan struct{} {
	return s.caughtUpCh
}

// State returns the subscription's current lifecycle state.
func (s *Subscription[E]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Detach releases the subscription. It is idempotent and blocks until
// the handler's in-flight call, if any, returns and OnTerminate has
// been invoked.
func (s *Subscription[E]) Detach() {
	s.detachOnce.Do(func() {
		close(s.detachRequested)
	})
	<-s.runDone
}
