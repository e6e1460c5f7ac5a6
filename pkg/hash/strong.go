package hash

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// StrongProvider trades the speed of the default mixers for the
// diffusion guarantees of a cryptographic hash. It exists for callers
// storing keys from an untrusted source who care about resistance to
// crafted-collision denial-of-service more than raw throughput; the core
// table is agnostic to which Provider it is handed.
type StrongProvider struct {
	key [16]byte // salts the digest so table contents aren't guessable from the binary alone
}

// NewStrongProvider builds a StrongProvider salted with the given key.
// A nil or short key is zero-padded.
func NewStrongProvider(key []byte) *StrongProvider {
	var p StrongProvider
	copy(p.key[:], key)
	return &p
}

func (p *StrongProvider) Hash(k []byte) uint64 {
	h, _ := blake2b.New(8, p.key[:])
	h.Write(k)
	return binary.LittleEndian.Uint64(h.Sum(nil))
}

func (p *StrongProvider) Fingerprint(h uint64) uint8 {
	return fingerprintOf(h)
}
