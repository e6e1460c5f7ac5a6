package sharded

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/errgroup"
)

// Range visits every live entry across every partition. It takes each
// partition's shared gate in turn, so a long-running fn delays that
// partition's writers but never the whole table. Entries inserted or
// erased mid-traversal may or may not be observed.
func (m *Map[K, V]) Range(fn func(key K, val V) bool) {
	for _, p := range m.partitions {
		if !p.rangeOnce(fn) {
			return
		}
	}
}

func (p *partition[K, V]) rangeOnce(fn func(key K, val V) bool) bool {
	p.gate.RLock()
	defer p.gate.RUnlock()
	tail := int(p.tail.Load())
	if tail > len(p.entries) {
		tail = len(p.entries)
	}
	for i := 0; i < tail; i++ {
		e := &p.entries[i]
		if !e.valid.Load() {
			continue
		}
		if !fn(e.key, *e.val.Load()) {
			return false
		}
	}
	return true
}

// batchPoolSize bounds the goroutine pool batch operations fan work out
// across; it is independent of GOMAXPROCS since the work here is mostly
// CAS contention and memory traffic, not CPU-bound computation.
const batchPoolSize = 64

// runPooled submits len(n) units of work to a bounded ants pool and
// blocks until every one has actually run (not merely been accepted),
// propagating the first submission error encountered via errgroup.
func runPooled(n int, work func(i int)) error {
	pool, err := ants.NewPool(batchPoolSize)
	if err != nil {
		return err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	g, _ := errgroup.WithContext(context.Background())
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		g.Go(func() error {
			return pool.Submit(func() {
				defer wg.Done()
				work(i)
			})
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	wg.Wait()
	return nil
}

// BatchInsert inserts every (key, val) pair concurrently across a bounded
// worker pool, fanning out over partitions so independent keys do not
// serialize behind a single gate.
func (m *Map[K, V]) BatchInsert(keys []K, vals []V) error {
	return runPooled(len(keys), func(i int) { m.Insert(keys[i], vals[i]) })
}

// BatchLookup looks up every key concurrently, returning results in
// input order. No atomicity spans the batch; a concurrent writer may be
// observed by some lookups and not others.
func (m *Map[K, V]) BatchLookup(keys []K) ([]V, []bool, error) {
	vals := make([]V, len(keys))
	found := make([]bool, len(keys))
	err := runPooled(len(keys), func(i int) {
		vals[i], found[i] = m.Get(keys[i])
	})
	if err != nil {
		return nil, nil, err
	}
	return vals, found, nil
}

// BatchContains reports, for each key, whether it is present.
func (m *Map[K, V]) BatchContains(keys []K) ([]bool, error) {
	_, found, err := m.BatchLookup(keys)
	return found, err
}
