// Package container implements container data structures.
package container

const (
	// segmentBits determines the size of each segment.
	// 10 bits = 1024 items per segment.
	segmentBits = 10
	segmentSize = 1 << segmentBits
	segmentMask = segmentSize - 1
)

// SegmentedArray is an append-only array split into fixed-size segments.
// Growing never moves existing items, so pointers returned by Ptr stay valid
// until Reset.
//
// SegmentedArray is not safe for concurrent use.
type SegmentedArray[T any] struct {
	segments []*Segment[T]
	length   int
}

// Segment is a fixed-size array of items.
type Segment[T any] struct {
	items [segmentSize]T
}

// NewSegmentedArray creates a new SegmentedArray with room for capacity
// items before the segment table has to grow.
func NewSegmentedArray[T any](capacity int) *SegmentedArray[T] {
	n := (capacity + segmentSize - 1) >> segmentBits
	return &SegmentedArray[T]{
		segments: make([]*Segment[T], 0, n),
	}
}

// Len returns the number of items appended so far.
func (sa *SegmentedArray[T]) Len() int {
	return sa.length
}

// Append stores value at the next index and returns that index.
func (sa *SegmentedArray[T]) Append(value T) uint32 {
	index := sa.length
	segIdx := index >> segmentBits
	if segIdx == len(sa.segments) {
		sa.segments = append(sa.segments, &Segment[T]{})
	}
	sa.segments[segIdx].items[index&segmentMask] = value
	sa.length++
	return uint32(index)
}

// Get returns the item at the given index.
// Returns zero value if index is out of bounds.
func (sa *SegmentedArray[T]) Get(index uint32) (T, bool) {
	p := sa.Ptr(index)
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

// Ptr returns a stable pointer to the item at index, or nil if index is
// out of bounds.
func (sa *SegmentedArray[T]) Ptr(index uint32) *T {
	if int(index) >= sa.length {
		return nil
	}
	return &sa.segments[index>>segmentBits].items[index&segmentMask]
}

// Set overwrites the item at index. It reports false if index is out of bounds.
func (sa *SegmentedArray[T]) Set(index uint32, value T) bool {
	p := sa.Ptr(index)
	if p == nil {
		return false
	}
	*p = value
	return true
}

// Reset drops all items. Previously returned pointers must not be used.
func (sa *SegmentedArray[T]) Reset() {
	clear(sa.segments)
	sa.segments = sa.segments[:0]
	sa.length = 0
}
