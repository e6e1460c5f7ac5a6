package sharded

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashkit/densehash/pkg/hash"
)

func Test_Map_SetGet(t *testing.T) {
	m := New[int, int](hash.IntKeyProvider())
	for i := 0; i < 2000; i++ {
		m.Set(i, i*i)
	}
	require.Equal(t, 2000, m.Len())
	for i := 0; i < 2000; i++ {
		v, ok := m.Get(i)
		require.True(t, ok)
		assert.Equal(t, i*i, v)
	}
}

func Test_Map_UpdateExisting(t *testing.T) {
	m := New[string, int](hash.NewStringProvider())
	m.Set("k", 1)
	prev, existed := m.Set("k", 2)
	assert.True(t, existed)
	assert.Equal(t, 1, prev)
	v, _ := m.Get("k")
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, m.Len())
}

func Test_Map_Erase(t *testing.T) {
	m := New[string, int](hash.NewStringProvider())
	m.Set("k", 1)
	v, ok := m.Erase("k")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.False(t, m.Contains("k"))
	assert.Equal(t, 0, m.Len())
}

func Test_Map_At(t *testing.T) {
	m := New[string, int](hash.NewStringProvider())
	m.Set("k", 7)
	v, err := m.At("k")
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	_, err = m.At("missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func Test_Map_ConcurrentInsert(t *testing.T) {
	m := New[int, int](hash.IntKeyProvider())
	const workers = 8
	const perWorker = 4000
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		w := w
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				key := w*perWorker + i
				m.Set(key, key*2)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, workers*perWorker, m.Len())
	for w := 0; w < workers; w++ {
		for i := 0; i < perWorker; i++ {
			key := w*perWorker + i
			v, ok := m.Get(key)
			require.True(t, ok)
			assert.Equal(t, key*2, v)
		}
	}
}

func Test_Map_ConcurrentInsertSameKeysConverges(t *testing.T) {
	m := New[string, int](hash.NewStringProvider())
	const workers = 8
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		w := w
		go func() {
			defer wg.Done()
			m.Set("shared", w)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, m.Len())
	v, ok := m.Get("shared")
	assert.True(t, ok)
	assert.GreaterOrEqual(t, v, 0)
	assert.Less(t, v, workers)
}

func Test_Map_Range(t *testing.T) {
	m := New[int, int](hash.IntKeyProvider())
	for i := 0; i < 500; i++ {
		m.Set(i, i)
	}
	seen := make(map[int]bool)
	m.Range(func(k, v int) bool {
		seen[k] = true
		return true
	})
	assert.Equal(t, 500, len(seen))
}

func Test_Map_BatchInsertAndLookup(t *testing.T) {
	m := New[int, string](hash.IntKeyProvider())
	keys := make([]int, 3000)
	vals := make([]string, 3000)
	for i := range keys {
		keys[i] = i
		vals[i] = fmt.Sprintf("v%d", i)
	}
	require.NoError(t, m.BatchInsert(keys, vals))
	assert.Equal(t, 3000, m.Len())

	got, found, err := m.BatchLookup(keys)
	require.NoError(t, err)
	for i := range keys {
		assert.True(t, found[i])
		assert.Equal(t, vals[i], got[i])
	}
}

func Test_Map_ResizeUnderLoad(t *testing.T) {
	m := NewSized[int, int](4, 4, hash.IntKeyProvider())
	for i := 0; i < 50000; i++ {
		m.Set(i, i)
	}
	require.Equal(t, 50000, m.Len())
	for i := 0; i < 50000; i++ {
		v, ok := m.Get(i)
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
}

func Test_Map_ConcurrentInsertAndEraseSizeConsistency(t *testing.T) {
	m := New[int, int](hash.IntKeyProvider())
	const workers = 8
	const perWorker = 2000
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		w := w
		go func() {
			defer wg.Done()
			base := w * perWorker
			for i := 0; i < perWorker; i++ {
				m.Set(base+i, base+i)
			}
			for i := 0; i < perWorker; i += 2 {
				m.Erase(base + i)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, workers*perWorker/2, m.Len())
	for w := 0; w < workers; w++ {
		base := w * perWorker
		for i := 0; i < perWorker; i++ {
			v, ok := m.Get(base + i)
			if i%2 == 0 {
				assert.False(t, ok)
			} else {
				require.True(t, ok)
				assert.Equal(t, base+i, v)
			}
		}
	}
}

// Test_Map_TombstoneChurnNeverDuplicatesAKey stresses a single, small
// partition with heavy insert/erase churn so tombstones accumulate on
// probe chains between resizes, then confirms every live key still
// appears exactly once and every erased key is absent, catching a
// tombstone reuse that would shadow a duplicate further down the chain.
func Test_Map_TombstoneChurnNeverDuplicatesAKey(t *testing.T) {
	m := NewSized[int, int](1, 8, hash.IntKeyProvider())
	present := make(map[int]int)
	r := rand.New(rand.NewSource(7))
	const keySpace = 40
	for round := 0; round < 5000; round++ {
		key := r.Intn(keySpace)
		if _, ok := present[key]; ok {
			_, erased := m.Erase(key)
			require.True(t, erased)
			delete(present, key)
		} else {
			val := round
			_, existed := m.Insert(key, val)
			require.False(t, existed)
			present[key] = val
		}
	}
	assert.Equal(t, len(present), m.Len())
	for key, val := range present {
		v, ok := m.Get(key)
		require.True(t, ok, "key %d should be present", key)
		assert.Equal(t, val, v)
	}
	for key := 0; key < keySpace; key++ {
		if _, ok := present[key]; !ok {
			_, ok := m.Get(key)
			assert.False(t, ok, "key %d should be absent", key)
		}
	}
	seen := make(map[int]bool)
	m.Range(func(k, v int) bool {
		require.False(t, seen[k], "key %d observed twice during Range", k)
		seen[k] = true
		return true
	})
	assert.Equal(t, len(present), len(seen))
}

func Test_BytesMap_SetBitGetBit(t *testing.T) {
	m := NewBytesMap(hash.NewStringProvider())
	ok := m.SetBit("flags", 3, 1)
	assert.True(t, ok)
	bit, ok := m.GetBit("flags", 3)
	assert.True(t, ok)
	assert.Equal(t, uint(1), bit)

	bit, ok = m.GetBit("flags", 4)
	assert.True(t, ok)
	assert.Equal(t, uint(0), bit)

	m.SetBit("flags", 3, 0)
	bit, _ = m.GetBit("flags", 3)
	assert.Equal(t, uint(0), bit)
}

func Test_BytesMap_SetUintGetUint(t *testing.T) {
	m := NewBytesMap(hash.NewStringProvider())
	_, ok := m.SetUint("counter", 42)
	assert.True(t, ok)
	v, ok := m.GetUint("counter")
	assert.True(t, ok)
	assert.Equal(t, uint64(42), v)
}
