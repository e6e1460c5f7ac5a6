package densemap

// bucketState is the 2-bit occupancy tag packed into every metadata word.
type bucketState uint8

const (
	stateEmpty     bucketState = 0
	stateOccupied  bucketState = 1
	stateTombstone bucketState = 2
)

// bucketWord packs a metadata slot into a single uint64: fingerprint in
// the top 8 bits, probe distance in the next 8, occupancy state in the
// next 2, and the dense entry-store index in the low 46 bits. The
// single-threaded table only needs the packing to keep this file
// source-compatible with the sharded table's atomic word of the same
// shape, since the single-threaded variant has no atomicity requirement
// of its own.
type bucketWord uint64

const (
	entryIndexBits = 46
	entryIndexMask = uint64(1)<<entryIndexBits - 1
	stateBits      = 2
	stateMask      = uint64(1)<<stateBits - 1
	distanceBits   = 8
	distanceMask   = uint64(1)<<distanceBits - 1
	fpBits         = 8

	stateShift    = entryIndexBits
	distanceShift = stateShift + stateBits
	fpShift       = distanceShift + distanceBits
)

func packBucket(fp uint8, distance uint8, state bucketState, entryIndex int) bucketWord {
	return bucketWord(
		uint64(fp)<<fpShift |
			uint64(distance)<<distanceShift |
			(uint64(state)&stateMask)<<stateShift |
			uint64(entryIndex)&entryIndexMask,
	)
}

func (b bucketWord) fingerprint() uint8 {
	return uint8(uint64(b) >> fpShift)
}

func (b bucketWord) distance() uint8 {
	return uint8((uint64(b) >> distanceShift) & distanceMask)
}

func (b bucketWord) state() bucketState {
	return bucketState((uint64(b) >> stateShift) & stateMask)
}

func (b bucketWord) entryIndex() int {
	return int(uint64(b) & entryIndexMask)
}

func (b bucketWord) withDistance(d uint8) bucketWord {
	return packBucket(b.fingerprint(), d, b.state(), b.entryIndex())
}

var emptyBucket = bucketWord(0)
