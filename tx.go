package yoda

import (
	"fmt"

	"github.com/sharedcode/yoda/container"
)

// Tx is the container-view handle a Transaction closure receives
// (spec.md §4.5). It exists only for the duration of one closure
// invocation on the worker goroutine; a closure must not retain it.
type Tx struct {
	store *Store
}

func (tx *Tx) publish(e Entry) (int64, error) {
	return tx.store.log.Publish(e)
}

// DictFamily is the compile-time declaration binding one KeyedEntry
// type to a Dictionary family (spec.md §3). Obtain Accessor/Mutator
// handles from it inside a Transaction closure.
type DictFamily[K comparable, E KeyedEntry[K]] struct {
	tag Tag
}

func (f *DictFamily[K, E]) resolve(tx *Tx) *dictBinding[K, E] {
	raw, ok := tx.store.families[f.tag]
	if !ok {
		panic(fmt.Sprintf("yoda: dictionary family %q was never declared on this store", f.tag))
	}
	b, ok := raw.(*dictBinding[K, E])
	if !ok {
		panic(fmt.Sprintf("yoda: family %q is not a dictionary of this entry type", f.tag))
	}
	return b
}

// Accessor returns the read-only capability handle for this family.
func (f *DictFamily[K, E]) Accessor(tx *Tx) container.DictAccessor[K, E] {
	return container.NewDictAccessor(f.resolve(tx).dict)
}

// Mutator returns the read-write capability handle for this family.
func (f *DictFamily[K, E]) Mutator(tx *Tx) container.DictMutator[K, E] {
	b := f.resolve(tx)
	return container.NewDictMutator(b.dict,
		func(e E) K { return e.Key() },
		func(e E) (int64, error) { return tx.publish(e) })
}

// MatrixFamily is the compile-time declaration binding one CellEntry
// type to a Matrix family (spec.md §3). Obtain Accessor/Mutator
// handles from it inside a Transaction closure.
type MatrixFamily[R comparable, C comparable, E CellEntry[R, C]] struct {
	tag Tag
}

func (f *MatrixFamily[R, C, E]) resolve(tx *Tx) *matrixBinding[R, C, E] {
	raw, ok := tx.store.families[f.tag]
	if !ok {
		panic(fmt.Sprintf("yoda: matrix family %q was never declared on this store", f.tag))
	}
	b, ok := raw.(*matrixBinding[R, C, E])
	if !ok {
		panic(fmt.Sprintf("yoda: family %q is not a matrix of this entry type", f.tag))
	}
	return b
}

// Accessor returns the read-only capability handle for this family.
func (f *MatrixFamily[R, C, E]) Accessor(tx *Tx) container.MatrixAccessor[R, C, E] {
	return container.NewMatrixAccessor(f.resolve(tx).matrix)
}

// Mutator returns the read-write capability handle for this family.
func (f *MatrixFamily[R, C, E]) Mutator(tx *Tx) container.MatrixMutator[R, C, E] {
	b := f.resolve(tx)
	return container.NewMatrixMutator(b.matrix,
		func(e E) (R, C) { return e.Cell() },
		func(e E) (int64, error) { return tx.publish(e) })
}
