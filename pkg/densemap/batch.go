package densemap

// BatchInsert inserts every (key, val) pair in order, reserving capacity
// up front so a run of inserts triggers at most one resize instead of
// one per crossed load-factor threshold.
func (m *Map[K, V]) BatchInsert(keys []K, vals []V) {
	m.ensureInit()
	m.Reserve(m.size + len(keys))
	for i, k := range keys {
		m.Set(k, vals[i])
	}
}

// BatchFind looks up every key and returns parallel found slices.
func (m *Map[K, V]) BatchFind(keys []K) (vals []V, found []bool) {
	vals = make([]V, len(keys))
	found = make([]bool, len(keys))
	for i, k := range keys {
		vals[i], found[i] = m.Get(k)
	}
	return vals, found
}

// BatchContains reports, for each key, whether it is present.
func (m *Map[K, V]) BatchContains(keys []K) []bool {
	out := make([]bool, len(keys))
	for i, k := range keys {
		out[i] = m.Contains(k)
	}
	return out
}
