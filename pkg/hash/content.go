package hash

import "github.com/cespare/xxhash/v2"

// StringProvider hashes string keys by content rather than by pointer or
// header, backed by xxhash for a fast, well-distributed 64-bit digest.
type StringProvider struct{}

func (StringProvider) Hash(k string) uint64 {
	return xxhash.Sum64String(k)
}

func (StringProvider) Fingerprint(h uint64) uint8 {
	return fingerprintOf(h)
}

// BytesProvider is StringProvider's []byte counterpart, for tables keyed
// on raw byte slices.
type BytesProvider struct{}

func (BytesProvider) Hash(k []byte) uint64 {
	return xxhash.Sum64(k)
}

func (BytesProvider) Fingerprint(h uint64) uint8 {
	return fingerprintOf(h)
}

// NewStringProvider and NewBytesProvider exist alongside the bare struct
// literals so call sites can use the constructor style consistently with
// the other providers in this package.
func NewStringProvider() StringProvider { return StringProvider{} }
func NewBytesProvider() BytesProvider   { return BytesProvider{} }
