package yoda

import "context"

// This file collects the family-scoped convenience wrappers spec.md
// §6 names as the Store's exposed programmatic API: Add/AsyncAdd,
// Get/AsyncGet, and their callback variants. Each is a one-line
// Transaction closure over the Accessor/Mutator a DictFamily or
// MatrixFamily already exposes (tx.go); nothing here bypasses the
// single-writer serialization Transaction provides.

// Add overwrites (or creates) the slot for entry's key and blocks
// until the write has been published and indexed.
func (f *DictFamily[K, E]) Add(ctx context.Context, s *Store, entry E) error {
	_, err := f.AsyncAdd(ctx, s, entry).Wait(ctx)
	return err
}

// AsyncAdd is the non-blocking form of Add.
func (f *DictFamily[K, E]) AsyncAdd(ctx context.Context, s *Store, entry E) Future[struct{}] {
	return Transaction(ctx, s, func(tx *Tx) (struct{}, error) {
		return struct{}{}, f.Mutator(tx).Add(entry)
	})
}

// Insert is the `<<` operator equivalent: it fails with
// KeyAlreadyExistsError if key already has a stored entry.
func (f *DictFamily[K, E]) Insert(ctx context.Context, s *Store, entry E) error {
	_, err := f.AsyncInsert(ctx, s, entry).Wait(ctx)
	return err
}

// AsyncInsert is the non-blocking form of Insert.
func (f *DictFamily[K, E]) AsyncInsert(ctx context.Context, s *Store, entry E) Future[struct{}] {
	return Transaction(ctx, s, func(tx *Tx) (struct{}, error) {
		return struct{}{}, f.Mutator(tx).Insert(entry)
	})
}

// Get blocks for the entry stored at key, failing with
// KeyNotFoundError if no entry is stored there.
func (f *DictFamily[K, E]) Get(ctx context.Context, s *Store, key K) (E, error) {
	return f.AsyncGet(ctx, s, key).Wait(ctx)
}

// AsyncGet is the non-blocking form of Get.
func (f *DictFamily[K, E]) AsyncGet(ctx context.Context, s *Store, key K) Future[E] {
	return Transaction(ctx, s, func(tx *Tx) (E, error) {
		return f.Accessor(tx).Get(key)
	})
}

// OnGet resolves key using exactly one of onSuccess or onFailure,
// invoked on a dedicated goroutine once the Transaction settles. It
// is the callback-style alternative to Get/AsyncGet's throwing and
// Future-based contracts (spec.md §6, §7's "callbacks are exclusive").
func (f *DictFamily[K, E]) OnGet(ctx context.Context, s *Store, key K, onSuccess func(E), onFailure func(error)) {
	future := f.AsyncGet(ctx, s, key)
	go func() {
		val, err := future.Wait(ctx)
		if err != nil {
			if onFailure != nil {
				onFailure(err)
			}
			return
		}
		if onSuccess != nil {
			onSuccess(val)
		}
	}()
}

// Add overwrites (or creates) the slot for entry's (row, col) cell and
// blocks until the write has been published and indexed.
func (f *MatrixFamily[R, C, E]) Add(ctx context.Context, s *Store, entry E) error {
	_, err := f.AsyncAdd(ctx, s, entry).Wait(ctx)
	return err
}

// AsyncAdd is the non-blocking form of Add.
func (f *MatrixFamily[R, C, E]) AsyncAdd(ctx context.Context, s *Store, entry E) Future[struct{}] {
	return Transaction(ctx, s, func(tx *Tx) (struct{}, error) {
		return struct{}{}, f.Mutator(tx).Add(entry)
	})
}

// Insert is the `<<` operator equivalent: it fails with
// CellAlreadyExistsError if the (row, col) cell already has a stored
// entry.
func (f *MatrixFamily[R, C, E]) Insert(ctx context.Context, s *Store, entry E) error {
	_, err := f.AsyncInsert(ctx, s, entry).Wait(ctx)
	return err
}

// AsyncInsert is the non-blocking form of Insert.
func (f *MatrixFamily[R, C, E]) AsyncInsert(ctx context.Context, s *Store, entry E) Future[struct{}] {
	return Transaction(ctx, s, func(tx *Tx) (struct{}, error) {
		return struct{}{}, f.Mutator(tx).Insert(entry)
	})
}

// Get blocks for the entry stored at (row, col), failing with
// CellNotFoundError if no entry is stored there.
func (f *MatrixFamily[R, C, E]) Get(ctx context.Context, s *Store, row R, col C) (E, error) {
	return f.AsyncGet(ctx, s, row, col).Wait(ctx)
}

// AsyncGet is the non-blocking form of Get.
func (f *MatrixFamily[R, C, E]) AsyncGet(ctx context.Context, s *Store, row R, col C) Future[E] {
	return Transaction(ctx, s, func(tx *Tx) (E, error) {
		return f.Accessor(tx).Get(row, col)
	})
}

// OnGet resolves (row, col) using exactly one of onSuccess or
// onFailure, invoked on a dedicated goroutine once the Transaction
// settles.
func (f *MatrixFamily[R, C, E]) OnGet(ctx context.Context, s *Store, row R, col C, onSuccess func(E), onFailure func(error)) {
	future := f.AsyncGet(ctx, s, row, col)
	go func() {
		val, err := future.Wait(ctx)
		if err != nil {
			if onFailure != nil {
				onFailure(err)
			}
			return
		}
		if onSuccess != nil {
			onSuccess(val)
		}
	}()
}
