package densemap

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Bitmap returns a compact bitmap of occupied bucket positions, useful
// for visualizing probe clustering without materializing a []bool the
// size of the bucket array.
func (m *Map[K, V]) Bitmap() *roaring.Bitmap {
	bm := roaring.New()
	for i, b := range m.buckets {
		if b.state() == stateOccupied {
			bm.Add(uint32(i))
		}
	}
	return bm
}

// Density reports occupied-bucket count over total capacity. LoadFactor
// reports the same ratio computed directly from the live count.
func (m *Map[K, V]) Density() float64 {
	if len(m.buckets) == 0 {
		return 0
	}
	return float64(m.Bitmap().GetCardinality()) / float64(len(m.buckets))
}
