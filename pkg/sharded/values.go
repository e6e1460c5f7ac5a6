package sharded

import (
	"encoding/binary"

	"github.com/hashkit/densehash/pkg/hash"
)

// BytesMap wraps a string-keyed, []byte-valued Map with bit- and
// integer-addressed convenience operations. They live here rather than
// on Map itself because Go cannot attach methods to one instantiation
// (Map[string, []byte]) of a generic type declared elsewhere.
type BytesMap struct {
	*Map[string, []byte]
}

// NewBytesMap returns an empty BytesMap.
func NewBytesMap(provider hash.Provider[string]) *BytesMap {
	return &BytesMap{New[string, []byte](provider)}
}

// SetBit sets (bit=1) or clears (bit=0) the idx'th bit of the value
// stored at key, growing the stored []byte if idx falls past its current
// length. It reports false for any bit value other than 0 or 1.
func (m *BytesMap) SetBit(key string, idx uint, bit uint) bool {
	if bit != 0 && bit != 1 {
		return false
	}
	cur, _ := m.Get(key)
	byteIdx := idx / 8
	if need := int(byteIdx) + 1; len(cur) < need {
		grown := make([]byte, need)
		copy(grown, cur)
		cur = grown
	} else {
		cur = append([]byte(nil), cur...)
	}
	mask := byte(1) << (idx % 8)
	if bit == 1 {
		cur[byteIdx] |= mask
	} else {
		cur[byteIdx] &^= mask
	}
	m.Set(key, cur)
	return true
}

// GetBit reads the idx'th bit of the value stored at key. The second
// return is false if key is absent or idx is out of range.
func (m *BytesMap) GetBit(key string, idx uint) (uint, bool) {
	cur, ok := m.Get(key)
	byteIdx := idx / 8
	if !ok || int(byteIdx) >= len(cur) {
		return 0, false
	}
	if cur[byteIdx]&(byte(1)<<(idx%8)) != 0 {
		return 1, true
	}
	return 0, true
}

// SetUint stores num as a little-endian uint64 at key, returning the
// stored value.
func (m *BytesMap) SetUint(key string, num uint64) (uint64, bool) {
	val := make([]byte, 8)
	binary.LittleEndian.PutUint64(val, num)
	m.Set(key, val)
	return num, true
}

// GetUint reads the little-endian uint64 stored at key.
func (m *BytesMap) GetUint(key string) (uint64, bool) {
	cur, ok := m.Get(key)
	if !ok || len(cur) < 8 {
		return 0, false
	}
	return binary.LittleEndian.Uint64(cur), true
}
