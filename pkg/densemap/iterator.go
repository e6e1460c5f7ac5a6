package densemap

// Range calls fn for every live entry in dense-store order (not probe
// order). Range stops early if fn returns false. Mutating the map from
// within fn is not supported: erase can move the tail entry into the
// slot Range is currently visiting, silently skipping or repeating it.
func (m *Map[K, V]) Range(fn func(key K, val V) bool) {
	for i := range m.entries.items {
		e := &m.entries.items[i]
		if !fn(e.key, e.val) {
			return
		}
	}
}

// Iterator is a stateful cursor over a Map's entries, for callers that
// prefer a Next/Key/Value loop over a Range callback.
type Iterator[K comparable, V any] struct {
	m   *Map[K, V]
	pos int
}

// Iter returns a new Iterator positioned before the first entry.
func (m *Map[K, V]) Iter() *Iterator[K, V] {
	return &Iterator[K, V]{m: m, pos: -1}
}

// Next advances the cursor and reports whether an entry is available.
func (it *Iterator[K, V]) Next() bool {
	it.pos++
	return it.pos < it.m.entries.len()
}

// Key returns the current entry's key. Valid only after a Next that
// returned true.
func (it *Iterator[K, V]) Key() K {
	return it.m.entries.items[it.pos].key
}

// Value returns the current entry's value. Valid only after a Next that
// returned true.
func (it *Iterator[K, V]) Value() V {
	return it.m.entries.items[it.pos].val
}
