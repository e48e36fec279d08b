package arena

import (
	"errors"
	"fmt"
	"iter"

	"github.com/hupe1980/polyindex/internal/bitmap"
	"github.com/hupe1980/polyindex/internal/container"
)

var (
	// ErrStaleRef is returned when a Ref does not address a live slot of
	// the same generation.
	ErrStaleRef = errors.New("arena: stale ref")
	// ErrInvalidSlot is returned when a slot cannot be freed or unlinked
	// because its link count does not allow it.
	ErrInvalidSlot = errors.New("arena: invalid slot")
)

// Ref represents a safe reference to an arena slot.
// It includes the generation ID to detect stale references.
// The zero Ref never addresses a live slot.
type Ref struct {
	Index uint32
	Gen   uint32
}

// IsZero reports whether r is the zero Ref.
func (r Ref) IsZero() bool {
	return r.Gen == 0
}

func (r Ref) String() string {
	return fmt.Sprintf("%d@%d", r.Index, r.Gen)
}

type slot[T any] struct {
	value T
	gen   uint32
	links uint32
	live  bool
}

// Stats tracks arena slot usage.
type Stats struct {
	Live    int // Current: live slots
	Free    int // Current: slots waiting for reuse
	Retired int // Current: slots whose generation counter is exhausted
	Slots   int // Historical: slots ever created
}

// Arena owns record values and hands out generational Refs.
type Arena[T any] struct {
	slots   *container.SegmentedArray[slot[T]]
	free    []uint32
	live    *bitmap.Bitmap
	count   int
	retired int
}

// New creates an Arena sized for capacity records.
func New[T any](capacity int) *Arena[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Arena[T]{
		slots: container.NewSegmentedArray[slot[T]](capacity),
		live:  bitmap.New(),
	}
}

// Allocate stores v in a fresh or recycled slot.
func (a *Arena[T]) Allocate(v T) Ref {
	var ref Ref
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]

		s := a.slots.Ptr(idx)
		s.value = v
		s.links = 0
		s.live = true
		ref = Ref{Index: idx, Gen: s.gen}
	} else {
		idx := a.slots.Append(slot[T]{value: v, gen: 1, live: true})
		ref = Ref{Index: idx, Gen: 1}
	}

	a.live.Add(ref.Index)
	a.count++
	return ref
}

func (a *Arena[T]) lookup(ref Ref) (*slot[T], error) {
	s := a.slots.Ptr(ref.Index)
	if s == nil || !s.live || s.gen != ref.Gen || ref.Gen == 0 {
		return nil, fmt.Errorf("%w: %s", ErrStaleRef, ref)
	}
	return s, nil
}

// Contains reports whether ref addresses a live slot.
func (a *Arena[T]) Contains(ref Ref) bool {
	_, err := a.lookup(ref)
	return err == nil
}

// Get returns a pointer to the stored value. The pointer stays valid until
// the slot is freed.
func (a *Arena[T]) Get(ref Ref) (*T, error) {
	s, err := a.lookup(ref)
	if err != nil {
		return nil, err
	}
	return &s.value, nil
}

// Set overwrites the stored value in place.
func (a *Arena[T]) Set(ref Ref, v T) error {
	s, err := a.lookup(ref)
	if err != nil {
		return err
	}
	s.value = v
	return nil
}

// Link records that one more index references the slot.
func (a *Arena[T]) Link(ref Ref) error {
	s, err := a.lookup(ref)
	if err != nil {
		return err
	}
	s.links++
	return nil
}

// Unlink records that an index dropped its reference to the slot.
func (a *Arena[T]) Unlink(ref Ref) error {
	s, err := a.lookup(ref)
	if err != nil {
		return err
	}
	if s.links == 0 {
		return fmt.Errorf("%w: %s has no links", ErrInvalidSlot, ref)
	}
	s.links--
	return nil
}

// Links returns the number of index references held on the slot.
func (a *Arena[T]) Links(ref Ref) (int, error) {
	s, err := a.lookup(ref)
	if err != nil {
		return 0, err
	}
	return int(s.links), nil
}

// Free releases the slot. It fails with ErrInvalidSlot while any index
// still links the slot.
//
// A slot whose generation counter would wrap is retired instead of being
// recycled, so a Ref can never match two different records.
func (a *Arena[T]) Free(ref Ref) error {
	s, err := a.lookup(ref)
	if err != nil {
		return err
	}
	if s.links != 0 {
		return fmt.Errorf("%w: %s still has %d links", ErrInvalidSlot, ref, s.links)
	}

	var zero T
	s.value = zero
	s.live = false
	s.gen++

	if s.gen == 0 {
		a.retired++
	} else {
		a.free = append(a.free, ref.Index)
	}

	a.live.Remove(ref.Index)
	a.count--
	return nil
}

// Len returns the number of live slots.
func (a *Arena[T]) Len() int {
	return a.count
}

// Live returns a copy of the set of live slot indexes.
func (a *Arena[T]) Live() *bitmap.Bitmap {
	return a.live.Clone()
}

// All iterates live slots in slot-index order.
func (a *Arena[T]) All() iter.Seq2[Ref, *T] {
	return func(yield func(Ref, *T) bool) {
		for idx := range a.live.Values() {
			s := a.slots.Ptr(idx)
			if !yield(Ref{Index: idx, Gen: s.gen}, &s.value) {
				return
			}
		}
	}
}

// Stats returns a snapshot of slot usage.
func (a *Arena[T]) Stats() Stats {
	return Stats{
		Live:    a.count,
		Free:    len(a.free),
		Retired: a.retired,
		Slots:   a.slots.Len(),
	}
}

// Reset frees every live slot regardless of link counts. Slots keep their
// storage and generation history, so Refs issued before Reset are stale.
func (a *Arena[T]) Reset() {
	var zero T
	for idx := range a.live.Values() {
		s := a.slots.Ptr(idx)
		s.value = zero
		s.links = 0
		s.live = false
		s.gen++
		if s.gen == 0 {
			a.retired++
			continue
		}
		a.free = append(a.free, idx)
	}
	a.live.Clear()
	a.count = 0
}
