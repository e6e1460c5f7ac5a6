// Package densemap implements a single-threaded, open-addressed hash map
// using Robin-Hood linear probing over a fingerprinted metadata array and
// a separate, densely-packed entry store. It is not safe for concurrent
// use; see package sharded for a partitioned variant that is.
package densemap

import (
	"fmt"

	"github.com/hashkit/densehash/pkg/hash"
)

// Map is a closed-hashing hash table over K comparable, V any, with the
// entry payload split out of the bucket metadata so a bucket word never
// needs to grow past a single uint64 regardless of V's size.
type Map[K comparable, V any] struct {
	provider hash.Provider[K]
	buckets  []bucketWord
	mask     uint64
	entries  entryStore[K, V]
	size     int
	minCap   int // never shrink below this, set at construction/Reserve
}

// New returns an empty Map using provider for hashing, starting with
// InitialCapacity buckets.
func New[K comparable, V any](provider hash.Provider[K]) *Map[K, V] {
	return NewSized[K, V](InitialCapacity, provider)
}

// NewSized behaves like New but starts with size buckets, rounded up to a
// power of two no smaller than InitialCapacity. Since Set keeps the load
// at or under MaxLoadFactor, that capacity holds MaxLoadFactor times as
// many entries before the first resize; Reserve sizes by entry count.
func NewSized[K comparable, V any](size int, provider hash.Provider[K]) *Map[K, V] {
	cap := alignCapacity(size)
	return &Map[K, V]{
		provider: provider,
		buckets:  make([]bucketWord, cap),
		mask:     uint64(cap - 1),
		minCap:   cap,
	}
}

func (m *Map[K, V]) ensureInit() {
	if len(m.buckets) == 0 {
		if m.minCap == 0 {
			m.minCap = InitialCapacity
		}
		m.buckets = make([]bucketWord, m.minCap)
		m.mask = uint64(m.minCap - 1)
	}
}

// resize rebuilds the table at newCap, reinserting every live entry from
// the dense entry store. This both grows capacity and, as a side effect
// of reinsertion, recomputes every bucket's distance from scratch. m is
// left untouched until the new table is fully built, so a panic partway
// through (allocation failure building next) leaves m in its
// pre-operation state.
func (m *Map[K, V]) resize(newCap int) {
	if newCap < InitialCapacity {
		newCap = InitialCapacity
	}
	next := m.buildResized(newCap)
	*m = *next
}

func (m *Map[K, V]) buildResized(newCap int) (next *Map[K, V]) {
	defer func() {
		if r := recover(); r != nil {
			panic(fmt.Errorf("%w: %v", ErrAllocationFailure, r))
		}
	}()
	next = &Map[K, V]{
		provider: m.provider,
		buckets:  make([]bucketWord, newCap),
		mask:     uint64(newCap - 1),
		minCap:   m.minCap,
	}
	next.entries.items = make([]entry[K, V], 0, len(m.entries.items))
	for i := range m.entries.items {
		e := m.entries.items[i]
		h := m.provider.Hash(e.key)
		fp := m.provider.Fingerprint(h)
		next.insertFresh(h, fp, e.key, e.val)
	}
	return next
}

// insertFresh places a key known not to already be present anywhere in
// the table (used only during resize, where duplicates are impossible by
// construction). It never returns "existed".
func (m *Map[K, V]) insertFresh(h uint64, fp uint8, key K, val V) {
	i := h & m.mask
	dist := 0
	idx := m.entries.append(entry[K, V]{key, val})
	m.size++
	carriedFP := fp
	carriedIdx := idx
	for {
		b := m.buckets[i]
		if b.state() != stateOccupied {
			m.buckets[i] = packBucket(carriedFP, uint8(dist), stateOccupied, carriedIdx)
			return
		}
		if int(b.distance()) < dist {
			oldFP, oldIdx, oldDist := b.fingerprint(), b.entryIndex(), b.distance()
			m.buckets[i] = packBucket(carriedFP, uint8(dist), stateOccupied, carriedIdx)
			carriedFP, carriedIdx, dist = oldFP, oldIdx, int(oldDist)
		}
		i = (i + 1) & m.mask
		dist++
	}
}

// Set inserts key/val, returning the previous value and true if key was
// already present (in which case the stored value is updated in place),
// or the zero value and false if key is new.
func (m *Map[K, V]) Set(key K, val V) (V, bool) {
	m.ensureInit()
	if m.size >= maxAddressableEntries {
		panic(ErrCapacityExhausted)
	}
	if m.size+1 > int(float64(len(m.buckets))*MaxLoadFactor) {
		m.resize(len(m.buckets) * 2)
	}
	h := m.provider.Hash(key)
	fp := m.provider.Fingerprint(h)
	return m.insertInternal(h, fp, key, val)
}

func (m *Map[K, V]) insertInternal(h uint64, fp uint8, key K, val V) (V, bool) {
	var zero V
	i := h & m.mask
	dist := 0
	materialized := false
	carriedFP := fp
	carriedIdx := -1

	for {
		b := m.buckets[i]
		if b.state() != stateOccupied {
			idx := carriedIdx
			if !materialized {
				idx = m.entries.append(entry[K, V]{key, val})
				m.size++
			}
			m.buckets[i] = packBucket(carriedFP, uint8(dist), stateOccupied, idx)
			return zero, false
		}
		if !materialized && b.fingerprint() == carriedFP {
			e := m.entries.at(b.entryIndex())
			if e.key == key {
				old := e.val
				e.val = val
				return old, true
			}
		}
		if int(b.distance()) < dist {
			if !materialized {
				carriedIdx = m.entries.append(entry[K, V]{key, val})
				m.size++
				materialized = true
			}
			oldFP, oldIdx, oldDist := b.fingerprint(), b.entryIndex(), b.distance()
			m.buckets[i] = packBucket(carriedFP, uint8(dist), stateOccupied, carriedIdx)
			carriedFP, carriedIdx, dist = oldFP, oldIdx, int(oldDist)
		}
		i = (i + 1) & m.mask
		dist++
		if dist >= MaxDistance {
			if !materialized {
				m.entries.append(entry[K, V]{key, val})
				m.size++
			}
			m.resize(len(m.buckets) * 2)
			return zero, false
		}
	}
}

// Get returns the value for key and whether it was found.
func (m *Map[K, V]) Get(key K) (V, bool) {
	var zero V
	if len(m.buckets) == 0 {
		return zero, false
	}
	h := m.provider.Hash(key)
	fp := m.provider.Fingerprint(h)
	i := h & m.mask
	dist := 0
	for {
		b := m.buckets[i]
		if b.state() == stateEmpty {
			return zero, false
		}
		if b.state() == stateOccupied && b.fingerprint() == fp {
			e := m.entries.at(b.entryIndex())
			if e.key == key {
				return e.val, true
			}
		}
		i = (i + 1) & m.mask
		dist++
		if dist > len(m.buckets) {
			return zero, false
		}
	}
}

// Find is an alias for Get.
func (m *Map[K, V]) Find(key K) (V, bool) { return m.Get(key) }

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Count returns 1 if key is present, 0 otherwise, mirroring the
// C++-style associative-container contract this map's operation set
// follows.
func (m *Map[K, V]) Count(key K) int {
	if m.Contains(key) {
		return 1
	}
	return 0
}

// At returns the value for key or ErrKeyNotFound if absent.
func (m *Map[K, V]) At(key K) (V, error) {
	v, ok := m.Get(key)
	if !ok {
		return v, keyNotFoundError(key)
	}
	return v, nil
}

// Index returns a pointer to the value at key, inserting the zero value
// first if key is absent. Go has no reference-returning
// analogue of C++'s operator[]; Index instead performs the miss-inserts-
// zero-value semantics and returns a pointer into the live entry store so
// callers can mutate in place without a second lookup.
func (m *Map[K, V]) Index(key K) *V {
	m.ensureInit()
	if idx := m.findIndex(key); idx >= 0 {
		return &m.entries.items[idx].val
	}
	var zero V
	m.Set(key, zero)
	idx := m.findIndex(key)
	return &m.entries.items[idx].val
}

// findIndex returns key's position in the entry store, or -1 if absent.
func (m *Map[K, V]) findIndex(key K) int {
	h := m.provider.Hash(key)
	fp := m.provider.Fingerprint(h)
	i := h & m.mask
	for {
		b := m.buckets[i]
		if b.state() == stateOccupied && b.fingerprint() == fp {
			if m.entries.at(b.entryIndex()).key == key {
				return b.entryIndex()
			}
		}
		if b.state() == stateEmpty {
			return -1
		}
		i = (i + 1) & m.mask
	}
}

// Emplace behaves like Set; it exists for callers migrating from a
// construct-in-place API that distinguishes emplace from a plain insert.
// Go's value semantics make Set and Emplace identical here.
func (m *Map[K, V]) Emplace(key K, val V) (V, bool) {
	return m.Set(key, val)
}

// Insert is an alias for Set.
func (m *Map[K, V]) Insert(key K, val V) (V, bool) { return m.Set(key, val) }

// TryEmplace inserts build's result under key only if key is absent, without
// mutating the stored value on a hit. build is called at most once, and
// only when key is not already present, so a caller can defer
// constructing an expensive value until an insert is actually needed.
func (m *Map[K, V]) TryEmplace(key K, build func() V) (V, bool) {
	if v, ok := m.Get(key); ok {
		return v, false
	}
	v := build()
	m.Set(key, v)
	return v, true
}

// Erase removes key, returning the removed value and whether it was
// present. It compacts the entry store by moving the tail entry into the
// vacated slot, then reclaims the metadata slot via backward-shift
// deletion so no tombstone is ever left at rest.
func (m *Map[K, V]) Erase(key K) (V, bool) {
	var zero V
	if len(m.buckets) == 0 {
		return zero, false
	}
	h := m.provider.Hash(key)
	fp := m.provider.Fingerprint(h)
	i := h & m.mask
	dist := 0
	for {
		b := m.buckets[i]
		if b.state() == stateEmpty {
			return zero, false
		}
		if b.state() == stateOccupied && b.fingerprint() == fp {
			e := m.entries.at(b.entryIndex())
			if e.key == key {
				removed := e.val
				m.deleteAt(i)
				return removed, true
			}
		}
		i = (i + 1) & m.mask
		dist++
		if dist > len(m.buckets) {
			return zero, false
		}
	}
}

// Del is an alias for Erase.
func (m *Map[K, V]) Del(key K) (V, bool) { return m.Erase(key) }

// deleteAt removes the occupant of bucket i: it swap-removes the entry
// from the dense store (fixing up whichever bucket pointed at the moved
// tail), then backward-shifts every subsequent bucket in the probe chain
// with nonzero distance one slot earlier, the standard tombstone-free
// Robin-Hood deletion strategy.
func (m *Map[K, V]) deleteAt(i uint64) {
	removedIdx := m.buckets[i].entryIndex()
	movedKey, moved := m.entries.swapRemove(removedIdx)
	if moved {
		m.fixupIndex(len(m.entries.items), removedIdx, movedKey)
	}
	m.buckets[i] = emptyBucket
	for {
		pi := i
		i = (i + 1) & m.mask
		next := m.buckets[i]
		if next.state() != stateOccupied || next.distance() == 0 {
			break
		}
		m.buckets[pi] = next.withDistance(next.distance() - 1)
		m.buckets[i] = emptyBucket
	}
	m.size--
}

// fixupIndex rewrites the one OCCUPIED bucket whose entry_index pointed
// at the old tail position (oldTailIdx) to point at its new position
// (newIdx) instead, after swapRemove moved that entry. It finds that
// bucket by walking the moved key's probe chain from its home slot, so no
// reverse index from entry position back to bucket is kept.
func (m *Map[K, V]) fixupIndex(oldTailIdx, newIdx int, key K) {
	h := m.provider.Hash(key)
	fp := m.provider.Fingerprint(h)
	i := h & m.mask
	for {
		b := m.buckets[i]
		if b.state() == stateEmpty {
			return
		}
		if b.state() == stateOccupied && b.fingerprint() == fp && b.entryIndex() == oldTailIdx {
			m.buckets[i] = packBucket(fp, b.distance(), stateOccupied, newIdx)
			return
		}
		i = (i + 1) & m.mask
	}
}

// Len returns the number of live entries.
func (m *Map[K, V]) Len() int { return m.size }

// Size is an alias for Len.
func (m *Map[K, V]) Size() int { return m.size }

// IsEmpty reports whether the map has no entries.
func (m *Map[K, V]) IsEmpty() bool { return m.size == 0 }

// Clear empties the map, resetting it to the capacity floor set by
// NewSized or Reserve (at least InitialCapacity) and invalidating every previously
// returned Index pointer.
func (m *Map[K, V]) Clear() {
	cap := m.minCap
	if cap < InitialCapacity {
		cap = InitialCapacity
	}
	m.buckets = make([]bucketWord, cap)
	m.mask = uint64(cap - 1)
	m.entries.reset()
	m.size = 0
}

// Reserve grows (never shrinks) the table to at least n/MaxLoadFactor
// buckets so that n entries fit without a resize, and raises the floor
// Clear returns to.
func (m *Map[K, V]) Reserve(n int) {
	target := alignCapacity(int(float64(n) / MaxLoadFactor))
	if target > m.minCap {
		m.minCap = target
	}
	if target > len(m.buckets) {
		m.resize(target)
	}
}

// LoadFactor returns size/capacity, the ratio Set bounds at MaxLoadFactor.
func (m *Map[K, V]) LoadFactor() float64 {
	if len(m.buckets) == 0 {
		return 0
	}
	return float64(m.size) / float64(len(m.buckets))
}

// Capacity returns the current bucket count.
func (m *Map[K, V]) Capacity() int { return len(m.buckets) }

// MaxProbeDistance scans the metadata array and returns the largest
// recorded probe distance, a diagnostic for how far a lookup might have
// to walk before failing.
func (m *Map[K, V]) MaxProbeDistance() uint8 {
	var max uint8
	for _, b := range m.buckets {
		if b.state() == stateOccupied && b.distance() > max {
			max = b.distance()
		}
	}
	return max
}

// VerifyInvariants recomputes every live entry's hash and confirms its
// bucket's recorded distance matches the entry's true distance from its
// home slot. It exists to catch a Provider that hashes equal keys
// unequally before that inconsistency silently corrupts the table.
func (m *Map[K, V]) VerifyInvariants() error {
	for idx := range m.entries.items {
		e := &m.entries.items[idx]
		h := m.provider.Hash(e.key)
		fp := m.provider.Fingerprint(h)
		home := h & m.mask
		i := home
		dist := uint8(0)
		for {
			b := m.buckets[i]
			if b.state() == stateOccupied && b.entryIndex() == idx {
				if b.fingerprint() != fp || b.distance() != dist {
					return invariantError(e.key)
				}
				break
			}
			if b.state() == stateEmpty {
				return invariantError(e.key)
			}
			i = (i + 1) & m.mask
			dist++
		}
	}
	return nil
}
