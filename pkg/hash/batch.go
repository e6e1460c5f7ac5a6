package hash

// BatchHash64 hashes every key in ks with p, in order. It is a scalar
// loop calling p.Hash once per key; a vectorized bulk-hash pass would be
// a behavioral accelerator only and would return the same values.
func BatchHash64[K any](p Provider[K], ks []K) []uint64 {
	out := make([]uint64, len(ks))
	for i, k := range ks {
		out[i] = p.Hash(k)
	}
	return out
}
