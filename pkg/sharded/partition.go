package sharded

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// slot is one position in a partition's dense entry store. key is
// written once, before the slot's owning bucket is published via CAS,
// and never mutated again; readers only ever observe it after an
// acquire load of that bucket word, so the plain field read is safe per
// the happens-before edge the CAS/load pair establishes. val is boxed
// behind an atomic.Pointer so an update-in-place never tears under a
// concurrent reader.
type slot[K comparable, V any] struct {
	key   K
	val   atomic.Pointer[V]
	valid atomic.Bool
}

// partition is one independently-locked, independently-resized shard of
// a Map. Normal operations take the shared (read) side of gate and
// publish through CAS; only a resize takes the exclusive side.
type partition[K comparable, V any] struct {
	gate    sync.RWMutex
	buckets []atomic.Uint64
	mask    uint64
	entries []slot[K, V]
	tail    atomic.Int64
	size    atomic.Int64

	resizeOnce singleflight.Group
}

func newPartition[K comparable, V any](capacity int) *partition[K, V] {
	return &partition[K, V]{
		buckets: make([]atomic.Uint64, capacity),
		mask:    uint64(capacity - 1),
		entries: make([]slot[K, V], capacity),
	}
}

// claim reserves the next free entry slot. It returns ok=false once the
// partition's fixed capacity window is exhausted, signaling the caller
// to resize rather than grow the store itself.
func (p *partition[K, V]) claim() (idx int, ok bool) {
	i := p.tail.Add(1) - 1
	if int(i) >= len(p.entries) {
		return 0, false
	}
	return int(i), true
}

// tryInsert attempts one insert-or-update pass under the caller-held
// shared gate. ok is false when the partition is out of probe room or
// entry-store room and a resize is required before retrying.
func (p *partition[K, V]) tryInsert(h uint64, fp uint8, key K, val V) (prev V, existed bool, ok bool) {
	var zero V
	i := h & p.mask
	dist := uint8(0)
	carriedFP := fp
	carriedHasIdx := false
	carriedIdx := 0
	newIdx := -1 // entry claimed for key by a Robin-Hood swap, if any

	for {
		old := p.buckets[i].Load()
		st := wordState(old)

		// A tombstone never terminates the chain: the key we're inserting
		// may still live further along, displaced here before this slot
		// was vacated. Reusing it now would risk shadowing that later
		// duplicate, so it's only ever walked past, never claimed; actual
		// space reclamation happens at resize.
		if st == stateTombstone {
			i = (i + 1) & p.mask
			dist++
			if dist >= MaxDistance {
				if newIdx >= 0 {
					p.entries[newIdx].valid.Store(false)
				}
				return zero, false, false
			}
			continue
		}

		if st == stateEmpty {
			idx := carriedIdx
			freshClaim := false
			if !carriedHasIdx {
				var claimOK bool
				idx, claimOK = p.claim()
				if !claimOK {
					return zero, false, false
				}
				p.entries[idx].key = key
				v := val
				p.entries[idx].val.Store(&v)
				p.entries[idx].valid.Store(true)
				freshClaim = true
			}
			neu := packBucket(carriedFP, dist, stateOccupied, idx)
			if p.buckets[i].CompareAndSwap(old, neu) {
				p.size.Add(1)
				return zero, false, true
			}
			if freshClaim {
				// The slot was taken before this claim ever got
				// published, so no bucket anywhere references it. Undo
				// the claim rather than abandon it: a later resize
				// reinserts every valid entry with no duplicate check,
				// so an orphaned valid entry would resurface as a
				// second live bucket for the same key.
				p.entries[idx].valid.Store(false)
			}
			// lost the race for this slot; re-evaluate it fresh.
			continue
		}

		if !carriedHasIdx && wordFingerprint(old) == fp {
			e := &p.entries[wordEntryIndex(old)]
			if e.valid.Load() && e.key == key {
				oldVal := e.val.Swap(&val)
				return *oldVal, true, true
			}
		}

		if wordDistance(old) < dist {
			if !carriedHasIdx {
				idx, claimOK := p.claim()
				if !claimOK {
					return zero, false, false
				}
				p.entries[idx].key = key
				v := val
				p.entries[idx].val.Store(&v)
				p.entries[idx].valid.Store(true)
				carriedIdx = idx
				carriedHasIdx = true
				newIdx = idx
			}
			neu := packBucket(carriedFP, dist, stateOccupied, carriedIdx)
			if !p.buckets[i].CompareAndSwap(old, neu) {
				continue // slot changed underneath us; re-evaluate it
			}
			carriedFP = wordFingerprint(old)
			carriedIdx = wordEntryIndex(old)
			dist = wordDistance(old)
		}

		i = (i + 1) & p.mask
		dist++
		if dist >= MaxDistance {
			// Giving up: the caller resizes (which rebuilds from every
			// valid entry) and retries, so key's own claimed entry is
			// withdrawn here or the retry would find it as a duplicate.
			if newIdx >= 0 {
				p.entries[newIdx].valid.Store(false)
			}
			return zero, false, false
		}
	}
}

// tryLookup probes for key under the caller-held shared gate.
func (p *partition[K, V]) tryLookup(h uint64, fp uint8, key K) (V, bool) {
	var zero V
	i := h & p.mask
	dist := 0
	for {
		old := p.buckets[i].Load()
		st := wordState(old)
		if st == stateEmpty {
			return zero, false
		}
		if st == stateOccupied && wordFingerprint(old) == fp {
			e := &p.entries[wordEntryIndex(old)]
			if e.valid.Load() && e.key == key {
				return *e.val.Load(), true
			}
		}
		i = (i + 1) & p.mask
		dist++
		if dist > len(p.buckets) {
			return zero, false
		}
	}
}

// tryErase removes key under the caller-held shared gate. The validity
// bit is cleared first, which is the true linearization point: every
// lookup and tryInsert duplicate-check already gates on it, so the key
// is unfindable from that instant on regardless of what happens to the
// bucket word next. The TOMBSTONE CAS that follows is best-effort
// housekeeping, not load-bearing for correctness. If a concurrent
// insert's Robin-Hood swap relocates this bucket first, the CAS fails,
// but the erase has already taken effect, so it still counts as
// removed=true rather than falling through to a spurious not-found. No
// compaction happens here; dead entries are reclaimed by resize.
func (p *partition[K, V]) tryErase(h uint64, fp uint8, key K) (V, bool) {
	var zero V
	i := h & p.mask
	dist := 0
	for {
		old := p.buckets[i].Load()
		st := wordState(old)
		if st == stateEmpty {
			return zero, false
		}
		if st == stateOccupied && wordFingerprint(old) == fp {
			idx := wordEntryIndex(old)
			e := &p.entries[idx]
			if e.valid.Load() && e.key == key {
				removed := *e.val.Load()
				e.valid.Store(false)
				tomb := packBucket(wordFingerprint(old), wordDistance(old), stateTombstone, idx)
				p.buckets[i].CompareAndSwap(old, tomb)
				p.size.Add(-1)
				return removed, true
			}
		}
		i = (i + 1) & p.mask
		dist++
		if dist > len(p.buckets) {
			return zero, false
		}
	}
}

// snapshotLen returns the partition's current live count.
func (p *partition[K, V]) snapshotLen() int {
	return int(p.size.Load())
}

// loadFactor is an approximate, unsynchronized read of size/capacity,
// suitable for the resize trigger check and diagnostics only.
func (p *partition[K, V]) loadFactor() float64 {
	return float64(p.size.Load()) / float64(len(p.buckets))
}
