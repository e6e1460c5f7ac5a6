package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_StringProvider_Deterministic(t *testing.T) {
	p := NewStringProvider()
	h1 := p.Hash("reproducibility")
	h2 := p.Hash("reproducibility")
	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, p.Hash("eruct"))
}

func Test_BytesProvider_Deterministic(t *testing.T) {
	p := NewBytesProvider()
	h1 := p.Hash([]byte("payload"))
	h2 := p.Hash([]byte("payload"))
	assert.Equal(t, h1, h2)
}

func Test_IntKeyProvider_DistinctKeysDiffer(t *testing.T) {
	p := IntKeyProvider()
	seen := make(map[uint64]bool)
	for i := 0; i < 1000; i++ {
		seen[p.Hash(i)] = true
	}
	assert.Equal(t, 1000, len(seen))
}

func Test_Uint64Provider_Int64Provider_AgreeOnBitPattern(t *testing.T) {
	up := Uint64Provider()
	ip := Int64Provider()
	assert.Equal(t, up.Hash(42), ip.Hash(42))
}

func Test_Fingerprint_NeverZero(t *testing.T) {
	p := NewStringProvider()
	for _, w := range []string{"a", "b", "c", "reproducibility", "eruct", ""} {
		fp := p.Fingerprint(p.Hash(w))
		assert.NotEqual(t, uint8(0), fp)
	}
}

func Test_StrongProvider_SaltChangesDigest(t *testing.T) {
	a := NewStrongProvider([]byte("key-a"))
	b := NewStrongProvider([]byte("key-b"))
	assert.NotEqual(t, a.Hash([]byte("same")), b.Hash([]byte("same")))
	assert.Equal(t, a.Hash([]byte("same")), a.Hash([]byte("same")))
}

func Test_BatchHash64_MatchesScalar(t *testing.T) {
	p := NewStringProvider()
	keys := []string{"reproducibility", "eruct", "acids"}
	got := BatchHash64[string](p, keys)
	for i, k := range keys {
		assert.Equal(t, p.Hash(k), got[i])
	}
}

func Test_Remix_ClearsZeroFingerprint(t *testing.T) {
	h := Remix(0xFFFFFFFFFFFFFF00)
	assert.NotEqual(t, uint8(0), uint8(h))
}
