// Package sharded implements a partitioned, lock-lite concurrent variant
// of densemap's Robin-Hood table. Each partition is an independent
// Robin-Hood table addressed by CAS'd metadata words and guarded by a
// resize gate (a sync.RWMutex taken shared for normal traffic, exclusive
// only while growing).
package sharded

import (
	"math/bits"
	"sync/atomic"

	"github.com/hashkit/densehash/pkg/hash"
)

// Map is a concurrent, partitioned Robin-Hood hash table safe for use by
// multiple goroutines without external locking.
type Map[K comparable, V any] struct {
	provider      hash.Provider[K]
	partitions    []*partition[K, V]
	partitionMask uint64
	partitionBits uint
	size          atomic.Int64
}

// New returns a Map with DefaultPartitions partitions.
func New[K comparable, V any](provider hash.Provider[K]) *Map[K, V] {
	return NewSized[K, V](DefaultPartitions, InitialPartitionCapacity, provider)
}

// NewSized returns a Map with partitionCount partitions (rounded up to a
// power of two, minimum 1), each starting with partitionCap buckets
// (rounded up to a power of two, minimum InitialPartitionCapacity). A
// partition grows once its live count reaches MaxLoadFactor of that.
func NewSized[K comparable, V any](partitionCount, partitionCap int, provider hash.Provider[K]) *Map[K, V] {
	pc := alignPow2(partitionCount)
	cap := alignPow2(partitionCap)
	if cap < InitialPartitionCapacity {
		cap = InitialPartitionCapacity
	}
	m := &Map[K, V]{
		provider:      provider,
		partitions:    make([]*partition[K, V], pc),
		partitionMask: uint64(pc - 1),
		partitionBits: uint(bits.TrailingZeros(uint(pc))),
	}
	for i := range m.partitions {
		m.partitions[i] = newPartition[K, V](cap)
	}
	return m
}

// route splits a full 64-bit hash into a partition index and the
// narrower hash used for intra-partition probing. The two ranges must
// not share bits, otherwise a partition collision would also collapse
// the probe sequence within it.
func (m *Map[K, V]) route(h uint64) (*partition[K, V], uint64) {
	idx := h & m.partitionMask
	intra := h >> m.partitionBits
	return m.partitions[idx], intra
}

// Insert inserts or updates key, returning the previous value and true
// on update, or the zero value and false on fresh insert.
func (m *Map[K, V]) Insert(key K, val V) (V, bool) {
	h := m.provider.Hash(key)
	fp := m.provider.Fingerprint(h)
	p, intra := m.route(h)
	for {
		if p.loadFactor() >= MaxLoadFactor {
			m.growPartition(p)
			continue
		}
		p.gate.RLock()
		prev, existed, ok := p.tryInsert(intra, fp, key, val)
		p.gate.RUnlock()
		if ok {
			if !existed {
				m.size.Add(1)
			}
			return prev, existed
		}
		m.growPartition(p)
	}
}

// Set is an alias for Insert.
func (m *Map[K, V]) Set(key K, val V) (V, bool) { return m.Insert(key, val) }

// Get looks up key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	h := m.provider.Hash(key)
	fp := m.provider.Fingerprint(h)
	p, intra := m.route(h)
	p.gate.RLock()
	defer p.gate.RUnlock()
	return p.tryLookup(intra, fp, key)
}

// Find is an alias for Get.
func (m *Map[K, V]) Find(key K) (V, bool) { return m.Get(key) }

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Erase removes key, returning the removed value and whether it was
// present.
func (m *Map[K, V]) Erase(key K) (V, bool) {
	h := m.provider.Hash(key)
	fp := m.provider.Fingerprint(h)
	p, intra := m.route(h)
	p.gate.RLock()
	defer p.gate.RUnlock()
	v, ok := p.tryErase(intra, fp, key)
	if ok {
		m.size.Add(-1)
	}
	return v, ok
}

// Del is an alias for Erase.
func (m *Map[K, V]) Del(key K) (V, bool) { return m.Erase(key) }

// Len returns the total live count across every partition, read from a
// single global counter. It is not a snapshot: inserts and erases still
// in flight on other goroutines may or may not be reflected.
func (m *Map[K, V]) Len() int {
	return int(m.size.Load())
}

// Size is an alias for Len.
func (m *Map[K, V]) Size() int { return m.Len() }

// PartitionCount returns the number of partitions the Map routes across.
func (m *Map[K, V]) PartitionCount() int { return len(m.partitions) }

// growPartition doubles p's capacity, coalescing concurrent callers that
// observe the same full partition into a single resize via singleflight.
func (m *Map[K, V]) growPartition(p *partition[K, V]) {
	p.resizeOnce.Do("resize", func() (interface{}, error) {
		p.gate.Lock()
		defer p.gate.Unlock()
		newCap := len(p.buckets) * 2
		fresh := newPartition[K, V](newCap)
		tail := int(p.tail.Load())
		if tail > len(p.entries) {
			tail = len(p.entries)
		}
		for i := 0; i < tail; i++ {
			e := &p.entries[i]
			if !e.valid.Load() {
				continue
			}
			key := e.key
			val := *e.val.Load()
			h := m.provider.Hash(key)
			fp := m.provider.Fingerprint(h)
			_, intra := m.route(h)
			fresh.insertFresh(intra, fp, key, val)
		}
		p.buckets = fresh.buckets
		p.mask = fresh.mask
		p.entries = fresh.entries
		p.tail.Store(fresh.tail.Load())
		p.size.Store(fresh.size.Load())
		return nil, nil
	})
}

// insertFresh places a key known to be absent from the partition (used
// only during resize reinsertion, where duplicates cannot occur).
func (p *partition[K, V]) insertFresh(h uint64, fp uint8, key K, val V) {
	idx, _ := p.claim()
	p.entries[idx].key = key
	v := val
	p.entries[idx].val.Store(&v)
	p.entries[idx].valid.Store(true)
	p.size.Add(1)

	i := h & p.mask
	dist := uint8(0)
	carriedFP := fp
	carriedIdx := idx
	for {
		old := p.buckets[i].Load()
		if wordState(old) != stateOccupied {
			p.buckets[i].Store(packBucket(carriedFP, dist, stateOccupied, carriedIdx))
			return
		}
		if wordDistance(old) < dist {
			p.buckets[i].Store(packBucket(carriedFP, dist, stateOccupied, carriedIdx))
			carriedFP, carriedIdx, dist = wordFingerprint(old), wordEntryIndex(old), wordDistance(old)
		}
		i = (i + 1) & p.mask
		dist++
	}
}
