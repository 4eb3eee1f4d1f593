package yoda

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sharedcode/yoda/mailbox"
	"github.com/sharedcode/yoda/sherlock"
	"golang.org/x/sync/errgroup"
)

// LifecycleState is a Store's position in its one-way state machine
// (spec.md §4.7): Constructed -> Running -> Draining -> Stopped.
type LifecycleState int

const (
	Constructed LifecycleState = iota
	Running
	Draining
	Stopped
)

// command is the message the mailbox carries (spec.md §4.3). §9
// collapses ApplyFunction/Call/Transaction into one Transaction
// primitive, and Get/Add are expressed as one-line Transaction
// closures by the family wrappers in api.go rather than as separate
// mailbox message kinds; the only other kind left is the rebuild
// Subscription's Entry(entry, index) message, carried by the
// isStream/streamEntry/streamIndex fields below.
type command struct {
	// run is invoked on the worker goroutine with exclusive access to
	// the Container. It returns the error (if any) the issuing
	// Transaction should resolve with.
	run func(tx *Tx) error
	// streamIndex/streamEntry are set alongside run when this command
	// was produced by the rebuild Subscription to apply a log entry
	// (spec.md §4.3, the "Entry(entry, index)" message kind).
	streamEntry Entry
	streamIndex int64
	isStream    bool
}

// Store is the single authoritative in-memory container rebuilt from
// one sherlock.Log, exposing indexed lookup, iteration, and
// transactional read/write closures over the families declared at
// construction (spec.md §2, §3). A Store is created with NewStore and
// must be closed with Close.
type Store struct {
	log      *sherlock.Log[Entry]
	mbox     *mailbox.Mailbox[command]
	families map[Tag]binding
	clock    Clock

	id      string
	eg      *errgroup.Group
	sub     *sherlock.Subscription[Entry]
	catchUp chan struct{}

	mu      sync.Mutex
	state   LifecycleState
	closeMu sync.RWMutex
}

// newSessionID returns a random id for one Store's worker session,
// retrying a handful of times on the vanishingly rare chance
// uuid.NewRandom can't read enough entropy.
func newSessionID() string {
	var err error
	for i := 0; i < 10; i++ {
		var id uuid.UUID
		if id, err = uuid.NewRandom(); err == nil {
			return id.String()
		}
		time.Sleep(time.Millisecond)
	}
	panic(fmt.Errorf("yoda: could not generate a session id: %w", err))
}

// NewStore constructs a Store, opens its Log, starts the single
// writer/indexer worker, and attaches the rebuild Subscription that
// drives index rebuild from index 0 (spec.md §3's Lifecycle).
// Transactions may begin immediately; reads issued before catch-up see
// whatever indexes have been populated so far (WaitCatchUp blocks
// until full replay has completed).
func NewStore(opts ...StoreOption) *Store {
	cfg := defaultStoreConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Store{
		log:      sherlock.New[Entry](),
		mbox:     mailbox.New[command](cfg.mailboxCapacity),
		families: make(map[Tag]binding),
		clock:    cfg.clock,
		id:       newSessionID(),
		catchUp:  make(chan struct{}),
		state:    Constructed,
	}
	for _, declare := range cfg.declare {
		declare(s)
	}

	eg, _ := errgroup.WithContext(context.Background())
	s.eg = eg
	s.setState(Running)

	s.eg.Go(func() error {
		s.runWorker()
		return nil
	})

	s.sub = s.log.Subscribe(&rebuildHandler{store: s}, sherlock.WithBufferSize(cfg.subscriberBuffer))
	s.eg.Go(func() error {
		<-s.sub.CaughtUpChan()
		s.markCaughtUp()
		return nil
	})

	slog.Info("yoda store started", "store_id", s.id)
	return s
}

// Clock returns the Clock collaborator this Store was configured with
// (spec.md §6), for user Entry constructors that need to timestamp a
// new value opaquely to the store.
func (s *Store) Clock() Clock { return s.clock }

// State reports the Store's current lifecycle state.
func (s *Store) State() LifecycleState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) setState(st LifecycleState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// WaitCatchUp blocks until the rebuild Subscription has replayed every
// entry the Log held at the moment this Store was constructed, or
// until ctx is done (spec.md §3, "the catch-up flag allows callers to
// wait for full replay").
func (s *Store) WaitCatchUp(ctx context.Context) error {
	select {
	case <-s.catchUp:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Transaction submits f for serial execution by the Store's single
// worker against a Container view (spec.md §4.5). f may freely mix
// reads and writes via the Accessor/Mutator obtained from a
// DictFamily or MatrixFamily through tx; every write f performs is
// published to the Log before the returned Future is resolved.
// Transaction itself returns as soon as f is enqueued. The Future
// is resolved with f's return value, or with f's error.
//
// Once the Store has entered Draining or Stopped (spec.md §4.7, §7),
// Transaction never reaches the mailbox: it resolves the Future with
// ErrStoreTerminated directly, so a Close racing concurrent callers
// never panics them with a send on a closed channel.
func Transaction[T any](ctx context.Context, s *Store, f func(tx *Tx) (T, error)) Future[T] {
	future, resolve := newFuture[T]()
	cmd := command{
		run: func(tx *Tx) error {
			val, err := f(tx)
			resolve <- futureResult[T]{val: val, err: err}
			return err
		},
	}

	s.closeMu.RLock()
	defer s.closeMu.RUnlock()

	if st := s.State(); st == Draining || st == Stopped {
		var zero T
		resolve <- futureResult[T]{val: zero, err: ErrStoreTerminated}
		return future
	}

	if err := s.mbox.Send(ctx, cmd); err != nil {
		var zero T
		resolve <- futureResult[T]{val: zero, err: err}
	}
	return future
}

// ApplyFunction submits f for serial, read-only execution against the
// Container (spec.md §4.3's ApplyFunction kind, collapsed per §9's
// "read-only a hint, not a separate type" into a Transaction[struct{}]
// whose closure performs no writes).
func ApplyFunction(ctx context.Context, s *Store, f func(tx *Tx)) error {
	_, err := Transaction(ctx, s, func(tx *Tx) (struct{}, error) {
		f(tx)
		return struct{}{}, nil
	}).Wait(ctx)
	return err
}

// Subscribe attaches a new live Subscription to the Store's Log,
// replaying from index 0 and then tailing live entries (spec.md §4.1).
// The caller owns the returned Subscription and must Detach it.
func (s *Store) Subscribe(handler sherlock.Handler[Entry], opts ...sherlock.SubscribeOption) *sherlock.Subscription[Entry] {
	return s.log.Subscribe(handler, opts...)
}

// ExposeViaHTTP delegates a "stream" endpoint at path to srv, attaching
// one Subscription per incoming request and forwarding each delivered
// entry through ser and req (spec.md §6). The core never implements
// an HTTPServer itself; srv, ser, and the per-request RequestHandle are
// supplied by the caller.
//
// optsFor is invoked once per request with that request's handle, so a
// caller can inspect its query string (RequestHandle.Query) and pick
// per-request replay behavior — spec.md §6's "cap=N"/"n=N" stream
// parameters resolve to sherlock.WithReplayCap/WithReplayTail here,
// since a single opts slice captured once at registration could never
// differ between two concurrent requests. optsFor may be nil, which
// subscribes every request with the Log's default (full replay then
// tail).
func (s *Store) ExposeViaHTTP(srv HTTPServer, path string, ser Serializer, optsFor func(req RequestHandle) []sherlock.SubscribeOption) {
	srv.HandleFunc(path, func(req RequestHandle) {
		var opts []sherlock.SubscribeOption
		if optsFor != nil {
			opts = optsFor(req)
		}
		h := &httpStreamHandler{req: req, ser: ser}
		sub := s.log.Subscribe(h, opts...)
		<-req.Done()
		sub.Detach()
	})
}

// ReplayOptionsFromQuery translates the "cap=N"/"n=N" stream query
// parameters spec.md §6 names into the matching sherlock
// SubscribeOptions. It is meant to be called from an optsFor function
// passed to ExposeViaHTTP, e.g.:
//
//	store.ExposeViaHTTP(srv, "/stream", ser, func(req yoda.RequestHandle) []sherlock.SubscribeOption {
//		return yoda.ReplayOptionsFromQuery(req.Query())
//	})
//
// cap=N takes precedence if both are present; an invalid or missing
// value of either parameter is ignored rather than rejected, leaving
// replay behavior at the Log's default.
func ReplayOptionsFromQuery(q url.Values) []sherlock.SubscribeOption {
	if v := q.Get("cap"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return []sherlock.SubscribeOption{sherlock.WithReplayCap(n)}
		}
	}
	if v := q.Get("n"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return []sherlock.SubscribeOption{sherlock.WithReplayTail(n)}
		}
	}
	return nil
}

// httpStreamHandler adapts a sherlock.Handler to the RequestHandle
// collaborator of spec.md §6: one serialized record per delivered
// entry, followed by a newline.
type httpStreamHandler struct {
	req RequestHandle
	ser Serializer
}

func (h *httpStreamHandler) OnEntry(entry Entry, index int64, total int64) sherlock.HandlerResult {
	data, err := h.ser.Marshal(entry)
	if err != nil {
		slog.Error("yoda: failed to marshal entry for HTTP stream", "error", err)
		return sherlock.StopDelivery
	}
	data = append(data, '\n')
	if err := h.req.Write(data); err != nil {
		return sherlock.StopDelivery
	}
	return sherlock.Continue
}

func (h *httpStreamHandler) OnTerminate() {}

// rebuildHandler drives the Store's authoritative Container from the
// Log, the "container-apply handler" of spec.md §2's rebuild data
// flow. It is the only Subscription the Store attaches to itself.
type rebuildHandler struct {
	store *Store
}

func (h *rebuildHandler) OnEntry(entry Entry, index int64, total int64) sherlock.HandlerResult {
	done := make(chan struct{})
	cmd := command{isStream: true, streamEntry: entry, streamIndex: index}
	// done lets this handler block until the worker has applied the
	// entry, so replay stays strictly ordered with respect to readers.
	cmd.run = func(tx *Tx) error {
		defer close(done)
		return tx.store.applyStream(cmd.streamIndex, cmd.streamEntry)
	}
	if err := h.store.mbox.Send(context.Background(), cmd); err != nil {
		return sherlock.StopDelivery
	}
	<-done
	return sherlock.Continue
}

func (h *rebuildHandler) OnTerminate() {}

func (s *Store) markCaughtUp() {
	select {
	case <-s.catchUp:
	default:
		close(s.catchUp)
	}
}

func (s *Store) applyStream(index int64, e Entry) error {
	b, ok := s.families[e.Tag()]
	if !ok {
		return fmt.Errorf("yoda: entry tagged %q arrived from the log but was never declared on this store", e.Tag())
	}
	return b.applyStream(index, e)
}

// runWorker is the single dedicated goroutine that owns the Container
// (spec.md §5): it is the sole mutator, dequeuing commands from the
// mailbox strictly in order and running each to completion before the
// next.
func (s *Store) runWorker() {
	tx := &Tx{store: s}
	for cmd := range s.mbox.Receive() {
		if cmd.isStream {
			if err := cmd.run(tx); err != nil {
				slog.Warn("yoda: dropping unroutable stream entry", "error", err)
			}
			continue
		}
		_ = cmd.run(tx)
	}
	slog.Info("yoda store worker drained", "store_id", s.id)
}

// Close stops accepting new transactions, drains the mailbox of
// already-submitted commands, and detaches the rebuild Subscription
// (spec.md §3, "the store shuts down when dropped"). The Log itself is
// not closed, and Subscriptions attached through Subscribe are not
// detached by Close; their owners still Detach them.
// Close must be called exactly once.
//
// Close takes closeMu's write lock across the Draining transition and
// the mailbox close itself (spec.md §4.7: Draining means "no new
// accepts"). Transaction holds closeMu for a read lock while it is
// mid-Send, so Close can't close the mailbox out from under a Send
// already in flight, and any Transaction that arrives after Close has
// the write lock sees Draining and never reaches the mailbox at all.
func (s *Store) Close() {
	s.closeMu.Lock()
	s.setState(Draining)
	s.sub.Detach()
	s.mbox.Close()
	s.closeMu.Unlock()

	_ = s.eg.Wait()
	s.setState(Stopped)
	slog.Info("yoda store stopped", "store_id", s.id)
}
