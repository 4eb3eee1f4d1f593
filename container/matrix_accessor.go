package container

// MatrixAccessor is the read-only capability handle for a Matrix
// family, obtained inside a transaction closure (spec.md §4.4).
type MatrixAccessor[R comparable, C comparable, E any] struct {
	matrix *Matrix[R, C, E]
}

// NewMatrixAccessor wraps matrix in a read-only Accessor.
func NewMatrixAccessor[R comparable, C comparable, E any](matrix *Matrix[R, C, E]) MatrixAccessor[R, C, E] {
	return MatrixAccessor[R, C, E]{matrix: matrix}
}

func (a MatrixAccessor[R, C, E]) Exists(row R, col C) bool           { return a.matrix.Exists(row, col) }
func (a MatrixAccessor[R, C, E]) TryGet(row R, col C) EntryWrapper[E] { return a.matrix.TryGet(row, col) }
func (a MatrixAccessor[R, C, E]) Get(row R, col C) (E, error)        { return a.matrix.Get(row, col) }
func (a MatrixAccessor[R, C, E]) Size() int                          { return a.matrix.Size() }
func (a MatrixAccessor[R, C, E]) Row(row R) (RowView[R, C, E], error) { return a.matrix.Row(row) }
func (a MatrixAccessor[R, C, E]) Col(col C) (ColView[R, C, E], error) { return a.matrix.Col(col) }

// Range iterates stored entries in cell-insertion order.
func (a MatrixAccessor[R, C, E]) Range(fn func(row R, col C, entry E) bool) {
	a.matrix.Range(func(_ int64, r R, c C, e E) bool { return fn(r, c, e) })
}

// MatrixMutator is the read-write capability handle for a Matrix
// family. It publishes through log before updating the index, exactly
// as spec.md §4.4 describes, by delegating to the publish closure
// supplied at construction.
type MatrixMutator[R comparable, C comparable, E any] struct {
	MatrixAccessor[R, C, E]
	cellOf  func(E) (R, C)
	publish func(E) (int64, error)
}

// NewMatrixMutator wraps matrix in a read-write Mutator. cellOf
// extracts the (row, col) cell from an entry; publish appends the
// entry to the log and returns its assigned index.
func NewMatrixMutator[R comparable, C comparable, E any](matrix *Matrix[R, C, E], cellOf func(E) (R, C), publish func(E) (int64, error)) MatrixMutator[R, C, E] {
	return MatrixMutator[R, C, E]{MatrixAccessor: NewMatrixAccessor(matrix), cellOf: cellOf, publish: publish}
}

// Add publishes entry and overwrites any existing slot for its cell.
func (m MatrixMutator[R, C, E]) Add(entry E) error {
	idx, err := m.publish(entry)
	if err != nil {
		return err
	}
	row, col := m.cellOf(entry)
	m.matrix.ApplyIfNewer(row, col, idx, entry)
	return nil
}

// Insert is the `<<` operator equivalent: it fails with
// CellAlreadyExistsError if the cell exists at the moment of the call,
// otherwise behaves like Add.
func (m MatrixMutator[R, C, E]) Insert(entry E) error {
	row, col := m.cellOf(entry)
	if m.matrix.Exists(row, col) {
		return &CellAlreadyExistsError[E]{Entry: entry}
	}
	return m.Add(entry)
}

// Delete publishes tombstone and removes the cell at (row, col).
func (m MatrixMutator[R, C, E]) Delete(row R, col C, tombstone E) error {
	idx, err := m.publish(tombstone)
	if err != nil {
		return err
	}
	m.matrix.RemoveIfNewer(row, col, idx)
	return nil
}
