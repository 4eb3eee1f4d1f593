package container

// DictAccessor is the read-only capability handle for a Dictionary
// family, obtained inside a transaction closure (spec.md §4.4).
type DictAccessor[K comparable, E any] struct {
	dict *Dictionary[K, E]
}

// NewDictAccessor wraps dict in a read-only Accessor.
func NewDictAccessor[K comparable, E any](dict *Dictionary[K, E]) DictAccessor[K, E] {
	return DictAccessor[K, E]{dict: dict}
}

func (a DictAccessor[K, E]) Exists(key K) bool         { return a.dict.Exists(key) }
func (a DictAccessor[K, E]) TryGet(key K) EntryWrapper[E] { return a.dict.TryGet(key) }
func (a DictAccessor[K, E]) Get(key K) (E, error)      { return a.dict.Get(key) }
func (a DictAccessor[K, E]) Size() int                 { return a.dict.Size() }

// Range iterates stored entries in key-insertion order.
func (a DictAccessor[K, E]) Range(fn func(key K, entry E) bool) {
	a.dict.Range(func(_ int64, k K, e E) bool { return fn(k, e) })
}

// DictMutator is the read-write capability handle for a Dictionary
// family. It publishes through log before updating the index, exactly
// as spec.md §4.4 describes, by delegating to the publish closure
// supplied at construction.
type DictMutator[K comparable, E any] struct {
	DictAccessor[K, E]
	keyOf   func(E) K
	publish func(E) (int64, error)
}

// NewDictMutator wraps dict in a read-write Mutator. keyOf extracts the
// dictionary key from an entry; publish appends the entry to the log
// and returns its assigned index.
func NewDictMutator[K comparable, E any](dict *Dictionary[K, E], keyOf func(E) K, publish func(E) (int64, error)) DictMutator[K, E] {
	return DictMutator[K, E]{DictAccessor: NewDictAccessor(dict), keyOf: keyOf, publish: publish}
}

// Add publishes entry and overwrites any existing slot for its key.
func (m DictMutator[K, E]) Add(entry E) error {
	idx, err := m.publish(entry)
	if err != nil {
		return err
	}
	m.dict.ApplyIfNewer(m.keyOf(entry), idx, entry)
	return nil
}

// Insert is the `<<` operator equivalent: it fails with
// KeyAlreadyExistsError if the key's slot exists at the moment of the
// call, otherwise behaves like Add.
func (m DictMutator[K, E]) Insert(entry E) error {
	key := m.keyOf(entry)
	if m.dict.Exists(key) {
		return &KeyAlreadyExistsError[E]{Entry: entry}
	}
	return m.Add(entry)
}

// Delete publishes tombstone and removes the slot for key.
func (m DictMutator[K, E]) Delete(key K, tombstone E) error {
	idx, err := m.publish(tombstone)
	if err != nil {
		return err
	}
	m.dict.RemoveIfNewer(key, idx)
	return nil
}
