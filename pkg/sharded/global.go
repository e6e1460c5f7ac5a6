package sharded

const (
	// DefaultPartitions is the partition count a Map uses absent an
	// explicit NewSized call. Must be a power of two so routing can mask
	// instead of mod.
	DefaultPartitions = 64
	// InitialPartitionCapacity is the bucket count a fresh partition
	// starts with.
	InitialPartitionCapacity = 16
	// MaxLoadFactor bounds size/capacity within a partition, mirroring
	// densemap's.
	MaxLoadFactor = 0.75
	// MaxDistance bounds a probe walk before forcing a resize, mirroring
	// densemap's.
	MaxDistance = 255
)

func alignPow2(n int) int {
	v := 1
	for v < n {
		v *= 2
	}
	return v
}
