package yoda

import (
	"fmt"

	"github.com/sharedcode/yoda/container"
)

// binding is the type-erased handle a Store keeps per declared family
// so that entries arriving from the rebuild Subscription — typed only
// as the Entry interface — can be routed to the right Dictionary or
// Matrix and applied with the strict-greater-index rule (spec.md §4.4,
// §9's "model entries as a tagged sum per store").
type binding interface {
	tag() Tag
	applyStream(index int64, e Entry) error
}

type dictBinding[K comparable, E KeyedEntry[K]] struct {
	t    Tag
	dict *container.Dictionary[K, E]
}

func (b *dictBinding[K, E]) tag() Tag { return b.t }

func (b *dictBinding[K, E]) applyStream(index int64, e Entry) error {
	typed, ok := e.(E)
	if !ok {
		return fmt.Errorf("yoda: entry tagged %q does not match the declared dictionary entry type", b.t)
	}
	if typed.Tombstone() {
		b.dict.RemoveIfNewer(typed.Key(), index)
		return nil
	}
	b.dict.ApplyIfNewer(typed.Key(), index, typed)
	return nil
}

type matrixBinding[R comparable, C comparable, E CellEntry[R, C]] struct {
	t      Tag
	matrix *container.Matrix[R, C, E]
}

func (b *matrixBinding[R, C, E]) tag() Tag { return b.t }

func (b *matrixBinding[R, C, E]) applyStream(index int64, e Entry) error {
	typed, ok := e.(E)
	if !ok {
		return fmt.Errorf("yoda: entry tagged %q does not match the declared matrix entry type", b.t)
	}
	row, col := typed.Cell()
	if typed.Tombstone() {
		b.matrix.RemoveIfNewer(row, col, index)
		return nil
	}
	b.matrix.ApplyIfNewer(row, col, index, typed)
	return nil
}
