// Package sequence implements a positional index over arena slots.
//
// The index is a dense slice of refs plus a table mapping a slot index to
// its position:
//
//	Append     O(1) amortized
//	At         O(1)
//	Position   O(1)
//	Remove     O(n) (later entries shift down by one)
//	Relocate   O(n)
package sequence

import (
	"errors"
	"fmt"
	"iter"

	"github.com/hupe1980/polyindex/internal/arena"
)

var (
	// ErrNotFound is returned when a ref is not part of the sequence.
	ErrNotFound = errors.New("sequence: ref not found")
	// ErrPosition is returned for positions outside [0, Len).
	ErrPosition = errors.New("sequence: position out of range")
)

const absent = -1

// List is a positional index. It is not safe for concurrent use.
type List struct {
	refs []arena.Ref
	// pos[slotIndex] is the position of the slot, or absent.
	pos []int
}

// New creates a List with room for capacity refs.
func New(capacity int) *List {
	if capacity < 0 {
		capacity = 0
	}
	return &List{
		refs: make([]arena.Ref, 0, capacity),
		pos:  make([]int, 0, capacity),
	}
}

// Len returns the number of refs.
func (l *List) Len() int {
	return len(l.refs)
}

// Append places ref at the end.
func (l *List) Append(ref arena.Ref) error {
	if _, ok := l.Position(ref); ok {
		return fmt.Errorf("sequence: ref %s already present", ref)
	}
	for int(ref.Index) >= len(l.pos) {
		l.pos = append(l.pos, absent)
	}
	l.pos[ref.Index] = len(l.refs)
	l.refs = append(l.refs, ref)
	return nil
}

// Position returns the position of ref.
func (l *List) Position(ref arena.Ref) (int, bool) {
	if int(ref.Index) >= len(l.pos) {
		return 0, false
	}
	p := l.pos[ref.Index]
	if p == absent || l.refs[p] != ref {
		return 0, false
	}
	return p, true
}

// At returns the ref at position i.
func (l *List) At(i int) (arena.Ref, bool) {
	if i < 0 || i >= len(l.refs) {
		return arena.Ref{}, false
	}
	return l.refs[i], true
}

// Remove deletes ref and shifts every later ref down by one position.
func (l *List) Remove(ref arena.Ref) error {
	p, ok := l.Position(ref)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, ref)
	}

	copy(l.refs[p:], l.refs[p+1:])
	l.refs[len(l.refs)-1] = arena.Ref{}
	l.refs = l.refs[:len(l.refs)-1]

	l.pos[ref.Index] = absent
	l.renumber(p, len(l.refs))
	return nil
}

// Relocate moves ref to position to. Entries in between shift by one to
// make room; the relative order of every other ref is preserved.
func (l *List) Relocate(ref arena.Ref, to int) error {
	from, ok := l.Position(ref)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if to < 0 || to >= len(l.refs) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrPosition, to, len(l.refs))
	}

	switch {
	case to < from:
		copy(l.refs[to+1:from+1], l.refs[to:from])
		l.refs[to] = ref
		l.renumber(to, from+1)
	case to > from:
		copy(l.refs[from:to], l.refs[from+1:to+1])
		l.refs[to] = ref
		l.renumber(from, to+1)
	}
	return nil
}

func (l *List) renumber(from, to int) {
	for i := from; i < to; i++ {
		l.pos[l.refs[i].Index] = i
	}
}

// All iterates refs in positional order.
func (l *List) All() iter.Seq[arena.Ref] {
	return func(yield func(arena.Ref) bool) {
		for _, ref := range l.refs {
			if !yield(ref) {
				return
			}
		}
	}
}

// Clear removes every ref.
func (l *List) Clear() {
	clear(l.refs)
	l.refs = l.refs[:0]
	for i := range l.pos {
		l.pos[i] = absent
	}
}
