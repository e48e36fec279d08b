// Package bitmap wraps Roaring bitmaps for sets of arena slot indexes.
//
// The arena keeps its live slots in a Bitmap and the container's invariant
// checker builds one Bitmap per index to compare against it.
package bitmap

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// Bitmap implements a 32-bit Roaring Bitmap.
// It wraps the official roaring implementation.
type Bitmap struct {
	rb *roaring.Bitmap
}

// New creates a new empty bitmap.
func New() *Bitmap {
	return &Bitmap{
		rb: roaring.New(),
	}
}

// Add adds a slot index to the bitmap.
func (b *Bitmap) Add(id uint32) {
	b.rb.Add(id)
}

// CheckedAdd adds id and reports whether it was absent before.
func (b *Bitmap) CheckedAdd(id uint32) bool {
	return b.rb.CheckedAdd(id)
}

// Remove removes a slot index from the bitmap.
func (b *Bitmap) Remove(id uint32) {
	b.rb.Remove(id)
}

// Contains checks if a slot index is in the bitmap.
func (b *Bitmap) Contains(id uint32) bool {
	return b.rb.Contains(id)
}

// Cardinality returns the number of elements in the bitmap.
func (b *Bitmap) Cardinality() uint64 {
	return b.rb.GetCardinality()
}

// Equals reports whether both bitmaps hold the same values.
func (b *Bitmap) Equals(other *Bitmap) bool {
	return b.rb.Equals(other.rb)
}

// Clone returns a deep copy of the bitmap.
func (b *Bitmap) Clone() *Bitmap {
	return &Bitmap{
		rb: b.rb.Clone(),
	}
}

// AndNot removes every value of other from b.
func (b *Bitmap) AndNot(other *Bitmap) {
	b.rb.AndNot(other.rb)
}

// Values iterates the bitmap in ascending order.
func (b *Bitmap) Values() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		it := b.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// Clear removes all elements from the bitmap.
func (b *Bitmap) Clear() {
	b.rb.Clear()
}
