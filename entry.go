package yoda

// Tag discriminates the declared entry families sharing one Store's
// Log, the way a tagged-sum wire format needs an explicit
// discriminator (spec.md §9, design note on polymorphic entries).
type Tag string

// Entry is implemented by every user-declared record published to a
// Store. Tag identifies which declared family an entry belongs to;
// Tombstone marks an entry as a deletion marker for its key/cell
// rather than a value to store (the Delete feature supplement in
// SPEC_FULL.md §C.2).
type Entry interface {
	Tag() Tag
	Tombstone() bool
}

// KeyedEntry is the contract a dictionary-family entry type must
// satisfy: it can report the key it is stored under (spec.md §4.6).
type KeyedEntry[K comparable] interface {
	Entry
	Key() K
}

// CellEntry is the contract a matrix-family entry type must satisfy:
// it can report the (row, col) cell it is stored under (spec.md §4.6).
type CellEntry[R comparable, C comparable] interface {
	Entry
	Cell() (R, C)
}
