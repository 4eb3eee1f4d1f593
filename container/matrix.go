package container

// matrixSlot is the arena-owned storage unit for one matrix cell. The
// arena index that holds a matrixSlot is its stable handle: forward
// and transposed views hold handles, never pointers, so replacing a
// cell's content never invalidates a view (spec.md §9's arena + handle
// rewrite of the original's raw cross-pointers).
type matrixSlot[E any] struct {
	index int64
	entry E
}

type cellKey[R, C comparable] struct {
	row R
	col C
}

// Matrix is the (row, col) -> entry family index, with forward
// (row -> col -> entry) and transposed (col -> row -> entry) views kept
// mutually consistent through a shared arena of handles (spec.md §4.4,
// invariant I3).
type Matrix[R comparable, C comparable, E any] struct {
	arena      []*matrixSlot[E]
	cells      map[cellKey[R, C]]int
	forward    map[R]map[C]int
	transposed map[C]map[R]int
	order      []cellKey[R, C]
}

// NewMatrix constructs an empty Matrix.
func NewMatrix[R comparable, C comparable, E any]() *Matrix[R, C, E] {
	return &Matrix[R, C, E]{
		cells:      make(map[cellKey[R, C]]int),
		forward:    make(map[R]map[C]int),
		transposed: make(map[C]map[R]int),
	}
}

// Exists reports whether (row, col) currently has a stored entry.
func (m *Matrix[R, C, E]) Exists(row R, col C) bool {
	_, ok := m.cells[cellKey[R, C]{row: row, col: col}]
	return ok
}

// TryGet is the non-throwing lookup: it never fails, returning an
// absent EntryWrapper when the cell has no stored entry.
func (m *Matrix[R, C, E]) TryGet(row R, col C) EntryWrapper[E] {
	h, ok := m.cells[cellKey[R, C]{row: row, col: col}]
	if !ok {
		return EntryWrapper[E]{}
	}
	return EntryWrapper[E]{entry: m.arena[h].entry, present: true}
}

// Get is the throwing lookup: it fails with CellNotFoundError when the
// cell has no stored entry.
func (m *Matrix[R, C, E]) Get(row R, col C) (E, error) {
	h, ok := m.cells[cellKey[R, C]{row: row, col: col}]
	if !ok {
		var zero E
		return zero, &CellNotFoundError[R, C]{Row: row, Col: col}
	}
	return m.arena[h].entry, nil
}

// ApplyIfNewer stores entry at (row, col) if index exceeds the cell's
// current index (or the cell does not yet exist), and reports whether
// the store took effect. Forward, transposed, and the owning arena
// slot are updated atomically with respect to any reader, since a
// replacement is either a single arena slot write (existing handle) or
// three map insertions performed before the call returns (new handle).
func (m *Matrix[R, C, E]) ApplyIfNewer(row R, col C, index int64, entry E) bool {
	key := cellKey[R, C]{row: row, col: col}
	if h, ok := m.cells[key]; ok {
		if index <= m.arena[h].index {
			return false
		}
		m.arena[h] = &matrixSlot[E]{index: index, entry: entry}
		return true
	}

	h := len(m.arena)
	m.arena = append(m.arena, &matrixSlot[E]{index: index, entry: entry})
	m.cells[key] = h
	if m.forward[row] == nil {
		m.forward[row] = make(map[C]int)
	}
	m.forward[row][col] = h
	if m.transposed[col] == nil {
		m.transposed[col] = make(map[R]int)
	}
	m.transposed[col][row] = h
	m.order = append(m.order, key)
	return true
}

// RemoveIfNewer deletes the cell at (row, col) if index exceeds the
// cell's current index, and reports whether the removal took effect.
func (m *Matrix[R, C, E]) RemoveIfNewer(row R, col C, index int64) bool {
	key := cellKey[R, C]{row: row, col: col}
	h, ok := m.cells[key]
	if !ok {
		return false
	}
	if index <= m.arena[h].index {
		return false
	}
	m.arena[h] = nil
	delete(m.cells, key)
	delete(m.forward[row], col)
	if len(m.forward[row]) == 0 {
		delete(m.forward, row)
	}
	delete(m.transposed[col], row)
	if len(m.transposed[col]) == 0 {
		delete(m.transposed, col)
	}
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// Size returns the number of cells currently holding an entry.
func (m *Matrix[R, C, E]) Size() int {
	return len(m.cells)
}

// Range iterates stored entries in cell-insertion order, invoking
// fn(index, row, col, entry) for each until fn returns false.
func (m *Matrix[R, C, E]) Range(fn func(index int64, row R, col C, entry E) bool) {
	for _, key := range m.order {
		h, ok := m.cells[key]
		if !ok {
			continue
		}
		s := m.arena[h]
		if !fn(s.index, key.row, key.col, s.entry) {
			return
		}
	}
}

// Row returns a view over all entries sharing row, or a SubscriptError
// if no cell exists for that row.
func (m *Matrix[R, C, E]) Row(row R) (RowView[R, C, E], error) {
	cols, ok := m.forward[row]
	if !ok {
		return RowView[R, C, E]{}, &SubscriptError[R]{Key: row}
	}
	return RowView[R, C, E]{m: m, row: row, cols: cols}, nil
}

// Col returns a view over all entries sharing col, or a SubscriptError
// if no cell exists for that column.
func (m *Matrix[R, C, E]) Col(col C) (ColView[R, C, E], error) {
	rows, ok := m.transposed[col]
	if !ok {
		return ColView[R, C, E]{}, &SubscriptError[C]{Key: col}
	}
	return ColView[R, C, E]{m: m, col: col, rows: rows}, nil
}

// RowView is a forward-view accessor over one row's entries.
type RowView[R comparable, C comparable, E any] struct {
	m    *Matrix[R, C, E]
	row  R
	cols map[C]int
}

// Get subscripts into the row by column, failing with SubscriptError
// if that column has no entry in this row.
func (v RowView[R, C, E]) Get(col C) (E, error) {
	h, ok := v.cols[col]
	if !ok {
		var zero E
		return zero, &SubscriptError[C]{Key: col}
	}
	return v.m.arena[h].entry, nil
}

// Size returns the number of columns populated for this row.
func (v RowView[R, C, E]) Size() int { return len(v.cols) }

// Range iterates this row's entries, invoking fn(col, entry) for each
// until fn returns false.
func (v RowView[R, C, E]) Range(fn func(col C, entry E) bool) {
	for c, h := range v.cols {
		if !fn(c, v.m.arena[h].entry) {
			return
		}
	}
}

// ColView is a transposed-view accessor over one column's entries.
type ColView[R comparable, C comparable, E any] struct {
	m    *Matrix[R, C, E]
	col  C
	rows map[R]int
}

// Get subscripts into the column by row, failing with SubscriptError
// if that row has no entry in this column.
func (v ColView[R, C, E]) Get(row R) (E, error) {
	h, ok := v.rows[row]
	if !ok {
		var zero E
		return zero, &SubscriptError[R]{Key: row}
	}
	return v.m.arena[h].entry, nil
}

// Size returns the number of rows populated for this column.
func (v ColView[R, C, E]) Size() int { return len(v.rows) }

// Range iterates this column's entries, invoking fn(row, entry) for
// each until fn returns false.
func (v ColView[R, C, E]) Range(fn func(row R, entry E) bool) {
	for r, h := range v.rows {
		if !fn(r, v.m.arena[h].entry) {
			return
		}
	}
}
