package yoda_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sharedcode/yoda"
	"github.com/sharedcode/yoda/sherlock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rateEntry is the dictionary-family fixture used across scenarios S1-S3,
// S5-S6 (spec.md §8): key=int, value=float64.
type rateEntry struct {
	K       int
	V       float64
	Deleted bool
}

func (e rateEntry) Tag() yoda.Tag   { return "rate" }
func (e rateEntry) Tombstone() bool { return e.Deleted }
func (e rateEntry) Key() int        { return e.K }

// cellEntry is the matrix-family fixture used for scenario S4: row is an
// unsigned integer (size_t in the original), col is a string, value is
// an int.
type cellEntry struct {
	Row uint64
	Col string
	V   int
}

func (e cellEntry) Tag() yoda.Tag          { return "cell" }
func (e cellEntry) Tombstone() bool        { return false }
func (e cellEntry) Cell() (uint64, string) { return e.Row, e.Col }

func newDictStore(t *testing.T) (*yoda.Store, *yoda.DictFamily[int, rateEntry]) {
	t.Helper()
	var rates *yoda.DictFamily[int, rateEntry]
	s := yoda.NewStore(yoda.Dictionary[int, rateEntry]("rate", &rates))
	t.Cleanup(s.Close)
	return s, rates
}

// TestScenario_S1S2S3 covers spec.md §8 scenarios S1-S3: Add, Insert
// (the `<<` operator), and ordered iteration over a dictionary family.
func TestScenario_S1S2S3(t *testing.T) {
	ctx := context.Background()
	s, rates := newDictStore(t)

	require.NoError(t, rates.Add(ctx, s, rateEntry{K: 2, V: 0.5}))
	require.NoError(t, rates.Add(ctx, s, rateEntry{K: 3, V: 0.33}))
	require.NoError(t, rates.Add(ctx, s, rateEntry{K: 4, V: 0.25}))

	v, err := rates.Get(ctx, s, 2)
	require.NoError(t, err)
	assert.Equal(t, 0.5, v.V)

	v, err = rates.Get(ctx, s, 3)
	require.NoError(t, err)
	assert.Equal(t, 0.33, v.V)

	v, err = rates.Get(ctx, s, 4)
	require.NoError(t, err)
	assert.Equal(t, 0.25, v.V)

	_, err = rates.Get(ctx, s, 5)
	assert.True(t, yoda.IsKeyNotFound(err), "Get(5) err = %v; want KeyNotFoundError", err)

	// S2: Insert (<<) three fresh keys, then a colliding Insert must fail
	// and must not disturb the existing slot.
	require.NoError(t, rates.Insert(ctx, s, rateEntry{K: 5, V: 0.20}))
	require.NoError(t, rates.Insert(ctx, s, rateEntry{K: 6, V: 0.17}))
	require.NoError(t, rates.Insert(ctx, s, rateEntry{K: 7, V: 0.76}))

	err = rates.Insert(ctx, s, rateEntry{K: 5, V: 1.1})
	assert.True(t, yoda.IsKeyAlreadyExists(err), "Insert(5, 1.1) err = %v; want KeyAlreadyExistsError", err)

	v, err = rates.Get(ctx, s, 5)
	require.NoError(t, err)
	assert.Equal(t, 0.20, v.V, "a failed Insert must leave the existing slot untouched")

	// S3: iteration order matches insertion order; size is 6.
	var gotKeys []int
	err = yoda.ApplyFunction(ctx, s, func(tx *yoda.Tx) {
		rates.Accessor(tx).Range(func(key int, _ rateEntry) bool {
			gotKeys = append(gotKeys, key)
			return true
		})
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4, 5, 6, 7}, gotKeys)

	err = yoda.ApplyFunction(ctx, s, func(tx *yoda.Tx) {
		assert.Equal(t, 6, rates.Accessor(tx).Size())
	})
	require.NoError(t, err)
}

// TestScenario_S4 covers spec.md §8 scenario S4: a matrix family with
// forward and transposed views kept consistent, and Insert collision
// detection on cells.
func TestScenario_S4(t *testing.T) {
	ctx := context.Background()
	var cells *yoda.MatrixFamily[uint64, string, cellEntry]
	s := yoda.NewStore(yoda.Matrix[uint64, string, cellEntry]("cell", &cells))
	t.Cleanup(s.Close)

	require.NoError(t, cells.Add(ctx, s, cellEntry{Row: 5, Col: "x", V: -1}))
	require.NoError(t, cells.Add(ctx, s, cellEntry{Row: 5, Col: "y", V: 15}))
	require.NoError(t, cells.Add(ctx, s, cellEntry{Row: 1, Col: "x", V: -9}))
	require.NoError(t, cells.Add(ctx, s, cellEntry{Row: 42, Col: "the_answer", V: 1}))

	v, err := cells.Get(ctx, s, 5, "x")
	require.NoError(t, err)
	assert.Equal(t, -1, v.V)

	v, err = cells.Get(ctx, s, 5, "y")
	require.NoError(t, err)
	assert.Equal(t, 15, v.V)

	v, err = cells.Get(ctx, s, 1, "x")
	require.NoError(t, err)
	assert.Equal(t, -9, v.V)

	v, err = cells.Get(ctx, s, 42, "the_answer")
	require.NoError(t, err)
	assert.Equal(t, 1, v.V)

	err = cells.Insert(ctx, s, cellEntry{Row: 5, Col: "y", V: 8})
	assert.True(t, yoda.IsCellAlreadyExists(err))

	var rows []uint64
	var sum int
	err = yoda.ApplyFunction(ctx, s, func(tx *yoda.Tx) {
		acc := cells.Accessor(tx)
		acc.Range(func(r uint64, _ string, _ cellEntry) bool {
			for _, seen := range rows {
				if seen == r {
					return true
				}
			}
			rows = append(rows, r)
			return true
		})

		for _, r := range []uint64{1, 5, 42} {
			col, err := acc.Row(r)
			require.NoError(t, err)
			col.Range(func(_ string, e cellEntry) bool {
				sum += e.V
				return true
			})
		}
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []uint64{1, 5, 42}, rows)
	assert.Equal(t, -1+15+-9+1, sum)

	// Transposed view must agree with the forward view: column "x",
	// row 5 holds the -1 stored at (5, "x").
	err = yoda.ApplyFunction(ctx, s, func(tx *yoda.Tx) {
		acc := cells.Accessor(tx)
		col, err := acc.Col("x")
		require.NoError(t, err)
		got, err := col.Get(5)
		require.NoError(t, err)
		assert.Equal(t, -1, got.V)
	})
	require.NoError(t, err)
}

// cappedHandler implements sherlock.Handler[yoda.Entry], stopping
// delivery after the first n entries (spec.md §8 S5's "listener capped
// at 6 deliveries").
type cappedHandler struct {
	remaining int
	got       []rateEntry
	terminate chan struct{}
}

func (h *cappedHandler) OnEntry(entry yoda.Entry, index int64, total int64) sherlock.HandlerResult {
	h.got = append(h.got, entry.(rateEntry))
	h.remaining--
	if h.remaining <= 0 {
		return sherlock.StopDelivery
	}
	return sherlock.Continue
}

func (h *cappedHandler) OnTerminate() { close(h.terminate) }

// TestScenario_S5 covers spec.md §8 scenario S5.
func TestScenario_S5(t *testing.T) {
	ctx := context.Background()
	s, rates := newDictStore(t)

	for _, e := range []rateEntry{
		{K: 2, V: 0.5}, {K: 3, V: 0.33}, {K: 4, V: 0.25},
		{K: 5, V: 0.20}, {K: 6, V: 0.17}, {K: 7, V: 0.76},
	} {
		require.NoError(t, rates.Add(ctx, s, e))
	}

	h := &cappedHandler{remaining: 6, terminate: make(chan struct{})}
	s.Subscribe(h)

	select {
	case <-h.terminate:
	case <-time.After(5 * time.Second):
		t.Fatal("subscription never terminated")
	}

	var got []string
	for _, e := range h.got {
		got = append(got, fmt.Sprintf("%d=%.2f", e.K, e.V))
	}
	want := []string{"2=0.50", "3=0.33", "4=0.25", "5=0.20", "6=0.17", "7=0.76"}
	assert.Equal(t, want, got)
}

// TestScenario_S6 covers spec.md §8 scenario S6: replaying one store's
// log into a second, independent store must reproduce identical Get
// results entry-for-entry (invariants I6, P4).
func TestScenario_S6(t *testing.T) {
	ctx := context.Background()
	s1, rates1 := newDictStore(t)
	s2, rates2 := newDictStore(t)

	for _, e := range []rateEntry{
		{K: 2, V: 0.5}, {K: 3, V: 0.33}, {K: 4, V: 0.25},
	} {
		require.NoError(t, rates1.Add(ctx, s1, e))
	}

	forward := &forwardingHandler{ctx: ctx, store2: s2, rates2: rates2}
	sub := s1.Subscribe(forward)
	defer sub.Detach()

	// s2's own catch-up covers only s2's log at construction; the
	// forwarded Adds are done once the forwarding subscription has
	// replayed s1's log, since each OnEntry awaits its Add.
	select {
	case <-sub.CaughtUpChan():
	case <-time.After(5 * time.Second):
		t.Fatal("forwarding subscription never caught up")
	}
	require.NoError(t, s2.WaitCatchUp(timeoutCtx(t)))

	for _, key := range []int{2, 3, 4} {
		want, err := rates1.Get(ctx, s1, key)
		require.NoError(t, err)
		got, err := rates2.Get(ctx, s2, key)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

type forwardingHandler struct {
	ctx    context.Context
	store2 *yoda.Store
	rates2 *yoda.DictFamily[int, rateEntry]
}

func (h *forwardingHandler) OnEntry(entry yoda.Entry, index int64, total int64) sherlock.HandlerResult {
	re := entry.(rateEntry)
	if err := h.rates2.Add(h.ctx, h.store2, re); err != nil {
		return sherlock.StopDelivery
	}
	return sherlock.Continue
}

func (h *forwardingHandler) OnTerminate() {}

func timeoutCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestTransaction_AddThenGetIsImmediatelyConsistent covers property P3:
// Add then Get on the same key, both issued by the same caller with Add
// awaited, always observes the added entry regardless of whether the
// store's own rebuild subscription has processed the corresponding
// stream callback yet.
func TestTransaction_AddThenGetIsImmediatelyConsistent(t *testing.T) {
	ctx := context.Background()
	s, rates := newDictStore(t)

	require.NoError(t, rates.Add(ctx, s, rateEntry{K: 1, V: 9.9}))
	v, err := rates.Get(ctx, s, 1)
	require.NoError(t, err)
	assert.Equal(t, 9.9, v.V)
}

// TestClose_RejectsNewTransactionsWithErrStoreTerminated checks that
// transactions submitted after Close resolve with ErrStoreTerminated,
// rather than a panic on a closed mailbox.
func TestClose_RejectsNewTransactionsWithErrStoreTerminated(t *testing.T) {
	ctx := context.Background()
	var rates *yoda.DictFamily[int, rateEntry]
	s := yoda.NewStore(yoda.Dictionary[int, rateEntry]("rate", &rates))

	require.NoError(t, rates.Add(ctx, s, rateEntry{K: 1, V: 1}))
	s.Close()

	err := rates.Add(ctx, s, rateEntry{K: 2, V: 2})
	assert.ErrorIs(t, err, yoda.ErrStoreTerminated)

	err = yoda.ApplyFunction(ctx, s, func(tx *yoda.Tx) {
		t.Fatal("f must not run once the store has terminated")
	})
	assert.ErrorIs(t, err, yoda.ErrStoreTerminated)
}

// TestDelete covers the Delete feature supplement recorded in
// SPEC_FULL.md §C.2: a tombstone entry published by Mutator.Delete
// inside a transaction removes the slot, so a later Get fails with
// KeyNotFoundError.
func TestDelete(t *testing.T) {
	ctx := context.Background()
	s, rates := newDictStore(t)

	require.NoError(t, rates.Add(ctx, s, rateEntry{K: 1, V: 1}))

	err := yoda.ApplyFunction(ctx, s, func(tx *yoda.Tx) {
		require.NoError(t, rates.Mutator(tx).Delete(1, rateEntry{K: 1, Deleted: true}))
	})
	require.NoError(t, err)

	_, err = rates.Get(ctx, s, 1)
	assert.True(t, yoda.IsKeyNotFound(err), "Get after Delete err = %v; want KeyNotFoundError", err)
}
