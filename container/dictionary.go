package container

// slot is the indexed storage unit for one dictionary key: the entry
// last accepted for that key, tagged with the log index that produced
// it (invariant I2 in spec.md).
type slot[E any] struct {
	index int64
	entry E
}

// Dictionary is the key -> entry family index (spec.md §4.4). It is a
// bare leaf data structure with no internal locking: callers (the
// transaction engine) are responsible for ensuring it is only ever
// touched by one goroutine at a time.
type Dictionary[K comparable, E any] struct {
	slots map[K]*slot[E]
	order []K
}

// NewDictionary constructs an empty Dictionary.
func NewDictionary[K comparable, E any]() *Dictionary[K, E] {
	return &Dictionary[K, E]{slots: make(map[K]*slot[E])}
}

// Exists reports whether key currently has a stored entry.
func (d *Dictionary[K, E]) Exists(key K) bool {
	_, ok := d.slots[key]
	return ok
}

// TryGet is the non-throwing lookup: it never fails, returning an
// absent EntryWrapper when key has no stored entry.
func (d *Dictionary[K, E]) TryGet(key K) EntryWrapper[E] {
	s, ok := d.slots[key]
	if !ok {
		return EntryWrapper[E]{}
	}
	return EntryWrapper[E]{entry: s.entry, present: true}
}

// Get is the throwing lookup: it fails with KeyNotFoundError when key
// has no stored entry.
func (d *Dictionary[K, E]) Get(key K) (E, error) {
	s, ok := d.slots[key]
	if !ok {
		var zero E
		return zero, &KeyNotFoundError[K]{Key: key}
	}
	return s.entry, nil
}

// ApplyIfNewer stores entry at key if index exceeds the slot's current
// index (or the slot does not yet exist), and reports whether the
// store took effect. This is the single rule that makes both the
// transaction engine's eager local update and the rebuild
// subscription's stream callback safe to apply in either order
// (spec.md §4.4, invariant I2).
func (d *Dictionary[K, E]) ApplyIfNewer(key K, index int64, entry E) bool {
	if s, ok := d.slots[key]; ok {
		if index <= s.index {
			return false
		}
	} else {
		d.order = append(d.order, key)
	}
	d.slots[key] = &slot[E]{index: index, entry: entry}
	return true
}

// RemoveIfNewer deletes the slot at key if index exceeds the slot's
// current index, and reports whether the removal took effect. Used
// when a tombstone entry is applied, either eagerly or from the log.
func (d *Dictionary[K, E]) RemoveIfNewer(key K, index int64) bool {
	s, ok := d.slots[key]
	if !ok {
		return false
	}
	if index <= s.index {
		return false
	}
	delete(d.slots, key)
	for i, k := range d.order {
		if k == key {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true
}

// Size returns the number of keys currently holding an entry.
func (d *Dictionary[K, E]) Size() int {
	return len(d.slots)
}

// Range iterates stored entries in the order their keys were first
// inserted, invoking fn(index, key, entry) for each until fn returns
// false.
func (d *Dictionary[K, E]) Range(fn func(index int64, key K, entry E) bool) {
	for _, k := range d.order {
		s, ok := d.slots[k]
		if !ok {
			continue
		}
		if !fn(s.index, k, s.entry) {
			return
		}
	}
}
