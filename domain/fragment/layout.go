package fragment

// Range is the byte range one fragment covers in its source.
type Range struct {
	Ordinal int
	Offset  int64
	Length  int64
}

// Layout holds the chunk boundaries for a source of a given size.
//
// A source whose size is an exact multiple of the chunk size produces
// size/chunkSize fragments; no fragment is ever zero bytes long. An empty
// source produces no fragments.
type Layout struct {
	size      int64
	chunkSize int64
	ranges    []Range
}

// NewLayout computes the fragment ranges for size bytes cut into chunkSize pieces.
func NewLayout(size, chunkSize int64) (Layout, error) {
	if chunkSize <= 0 {
		return Layout{}, NewValidationError("chunk size", "must be greater than zero", nil)
	}
	if size < 0 {
		return Layout{}, NewValidationError("source size", "must not be negative", nil)
	}

	full := size / chunkSize
	remainder := size % chunkSize
	total := full
	if remainder > 0 {
		total++
	}

	ranges := make([]Range, 0, total)
	for i := int64(0); i < full; i++ {
		ranges = append(ranges, Range{Ordinal: int(i) + 1, Offset: i * chunkSize, Length: chunkSize})
	}
	if remainder > 0 {
		ranges = append(ranges, Range{Ordinal: int(full) + 1, Offset: full * chunkSize, Length: remainder})
	}

	return Layout{size: size, chunkSize: chunkSize, ranges: ranges}, nil
}

// Size returns the source size in bytes.
func (l Layout) Size() int64 { return l.size }

// ChunkSize returns the maximum fragment length.
func (l Layout) ChunkSize() int64 { return l.chunkSize }

// Total returns the number of fragments.
func (l Layout) Total() int { return len(l.ranges) }

// Ranges returns the fragment ranges in ordinal order.
func (l Layout) Ranges() []Range {
	out := make([]Range, len(l.ranges))
	copy(out, l.ranges)
	return out
}
