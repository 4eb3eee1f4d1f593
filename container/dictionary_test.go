package container

import "testing"

type rateEntry struct {
	key   int
	value float64
}

func keyOfRate(e rateEntry) int { return e.key }

func TestDictionary_ApplyIfNewerAndGet(t *testing.T) {
	d := NewDictionary[int, rateEntry]()

	if d.Exists(2) {
		t.Fatalf("expected key 2 to be absent before any apply")
	}
	if !d.ApplyIfNewer(2, 0, rateEntry{key: 2, value: 0.5}) {
		t.Fatalf("first apply for a fresh key must take effect")
	}
	if !d.ApplyIfNewer(3, 1, rateEntry{key: 3, value: 0.33}) {
		t.Fatalf("first apply for a fresh key must take effect")
	}
	if !d.ApplyIfNewer(4, 2, rateEntry{key: 4, value: 0.25}) {
		t.Fatalf("first apply for a fresh key must take effect")
	}

	v, err := d.Get(2)
	if err != nil || v.value != 0.5 {
		t.Fatalf("Get(2) = %v, %v; want 0.5, nil", v, err)
	}
	if _, err := d.Get(5); !IsKeyNotFound(err) {
		t.Fatalf("Get(5) err = %v; want KeyNotFoundError", err)
	}
}

func TestDictionary_ApplyIfNewerRejectsStaleIndex(t *testing.T) {
	d := NewDictionary[int, rateEntry]()
	d.ApplyIfNewer(1, 5, rateEntry{key: 1, value: 1})

	if d.ApplyIfNewer(1, 5, rateEntry{key: 1, value: 2}) {
		t.Fatalf("apply with an equal index must be a no-op (I2)")
	}
	if d.ApplyIfNewer(1, 3, rateEntry{key: 1, value: 3}) {
		t.Fatalf("apply with a lesser index must be a no-op (I2)")
	}
	v, _ := d.Get(1)
	if v.value != 1 {
		t.Fatalf("stale applies must not overwrite the slot, got %v", v)
	}
	if !d.ApplyIfNewer(1, 6, rateEntry{key: 1, value: 4}) {
		t.Fatalf("apply with a greater index must take effect")
	}
	v, _ = d.Get(1)
	if v.value != 4 {
		t.Fatalf("stored value after a newer apply = %v; want 4", v)
	}
}

func TestDictionary_TryGetNeverFails(t *testing.T) {
	d := NewDictionary[int, rateEntry]()
	w := d.TryGet(1)
	if w.Present() {
		t.Fatalf("TryGet on an absent key must report absent")
	}
	if _, err := w.Entry(); err != ErrNonexistentEntryAccessed {
		t.Fatalf("Entry() on an absent wrapper err = %v; want ErrNonexistentEntryAccessed", err)
	}

	d.ApplyIfNewer(1, 0, rateEntry{key: 1, value: 9})
	w = d.TryGet(1)
	if !w.Present() {
		t.Fatalf("TryGet on an existing key must report present")
	}
	v, err := w.Entry()
	if err != nil || v.value != 9 {
		t.Fatalf("Entry() = %v, %v; want 9, nil", v, err)
	}
}

func TestDictionary_RangeIsInsertionOrdered(t *testing.T) {
	d := NewDictionary[int, rateEntry]()
	order := []int{2, 3, 4, 5, 6, 7}
	for i, k := range order {
		d.ApplyIfNewer(k, int64(i), rateEntry{key: k, value: float64(k)})
	}
	if d.Size() != len(order) {
		t.Fatalf("Size() = %d; want %d", d.Size(), len(order))
	}

	var seen []int
	d.Range(func(index int64, key int, entry rateEntry) bool {
		seen = append(seen, key)
		return true
	})
	if len(seen) != len(order) {
		t.Fatalf("Range visited %d keys; want %d", len(seen), len(order))
	}
	for i := range order {
		if seen[i] != order[i] {
			t.Fatalf("Range order = %v; want %v", seen, order)
		}
	}
}

func TestDictMutator_AddAndInsert(t *testing.T) {
	d := NewDictionary[int, rateEntry]()
	var nextIndex int64
	publish := func(e rateEntry) (int64, error) {
		idx := nextIndex
		nextIndex++
		return idx, nil
	}
	m := NewDictMutator(d, keyOfRate, publish)

	if err := m.Insert(rateEntry{key: 5, value: 0.20}); err != nil {
		t.Fatalf("Insert of a fresh key failed: %v", err)
	}
	if err := m.Insert(rateEntry{key: 6, value: 0.17}); err != nil {
		t.Fatalf("Insert of a fresh key failed: %v", err)
	}
	if err := m.Insert(rateEntry{key: 7, value: 0.76}); err != nil {
		t.Fatalf("Insert of a fresh key failed: %v", err)
	}

	err := m.Insert(rateEntry{key: 5, value: 1.1})
	if !IsKeyAlreadyExists(err) {
		t.Fatalf("Insert of a colliding key err = %v; want KeyAlreadyExistsError", err)
	}
	v, _ := d.Get(5)
	if v.value != 0.20 {
		t.Fatalf("value after a rejected Insert = %v; want unchanged 0.20", v)
	}

	if err := m.Add(rateEntry{key: 5, value: 9.9}); err != nil {
		t.Fatalf("Add must always overwrite: %v", err)
	}
	v, _ = d.Get(5)
	if v.value != 9.9 {
		t.Fatalf("value after Add overwrite = %v; want 9.9", v)
	}
}

func TestDictMutator_Delete(t *testing.T) {
	d := NewDictionary[int, rateEntry]()
	var nextIndex int64
	publish := func(e rateEntry) (int64, error) {
		idx := nextIndex
		nextIndex++
		return idx, nil
	}
	m := NewDictMutator(d, keyOfRate, publish)
	if err := m.Add(rateEntry{key: 1, value: 1}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := m.Delete(1, rateEntry{key: 1}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if d.Exists(1) {
		t.Fatalf("key must not exist after Delete")
	}
}
