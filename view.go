package polyindex

import (
	"fmt"
	"iter"

	"github.com/hupe1980/polyindex/internal/ordered"
)

// Bound is one end of a key range for OrderedView.Range. The zero Bound is
// unbounded.
type Bound[K any] = ordered.Bound[K]

// Unbounded returns an open range end.
func Unbounded[K any]() Bound[K] { return ordered.Unbounded[K]() }

// Inclusive returns a range end that admits key itself.
func Inclusive[K any](key K) Bound[K] { return ordered.Inclusive(key) }

// Exclusive returns a range end that stops short of key.
func Exclusive[K any](key K) Bound[K] { return ordered.Exclusive(key) }

// lookupIndex resolves name to the index at that position.
func lookupIndex[T any](c *Container[T], name string) (index[T], error) {
	i, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIndex, name)
	}
	return c.indexes[i], nil
}

// records turns a ref sequence into (ref, record) pairs.
func (c *Container[T]) records(refs iter.Seq[Ref]) iter.Seq2[Ref, T] {
	return func(yield func(Ref, T) bool) {
		for ref := range refs {
			rec, err := c.arena.Get(ref)
			if err != nil {
				fault("iterate", "", ref, err)
			}
			if !yield(ref, *rec) {
				return
			}
		}
	}
}

// =============================================================================
// Ordered views
// =============================================================================

// OrderedView gives typed access to an ordered index.
//
// Iterators read the live container. Mutating the container while an
// iterator is running is not supported; collect refs first, as Erase does.
type OrderedView[T, K any] struct {
	c  *Container[T]
	ix *orderedIndex[T, K]
}

// OrderedBy returns a view of the ordered index called name, whose keys
// must have type K.
//
//	byAge, err := polyindex.OrderedBy[int](c, "age")
func OrderedBy[K, T any](c *Container[T], name string) (*OrderedView[T, K], error) {
	ix, err := lookupIndex(c, name)
	if err != nil {
		return nil, err
	}
	oi, ok := ix.(*orderedIndex[T, K])
	if !ok {
		return nil, &IndexKindError{
			Index: name,
			Want:  fmt.Sprintf("an ordered index on %s", typeName[K]()),
			Got:   ix.kind().String(),
		}
	}
	return &OrderedView[T, K]{c: c, ix: oi}, nil
}

// Name returns the index name.
func (v *OrderedView[T, K]) Name() string { return v.ix.name() }

// Unique reports whether the index rejects equal keys.
func (v *OrderedView[T, K]) Unique() bool { return v.ix.spec.unique }

// Len returns the number of entries, which equals the container size.
func (v *OrderedView[T, K]) Len() int { return v.ix.len() }

// Find iterates the records whose key equals key. Equal keys of a
// non-unique index come in insertion order.
func (v *OrderedView[T, K]) Find(key K) iter.Seq2[Ref, T] {
	return v.c.records(v.ix.tree.Find(key))
}

// FindOne returns the first record whose key equals key.
func (v *OrderedView[T, K]) FindOne(key K) (Ref, T, bool) {
	ref, ok := v.ix.tree.First(key)
	if !ok {
		var zero T
		return Ref{}, zero, false
	}
	rec, _ := v.c.Get(ref)
	return ref, rec, true
}

// Get returns the first record whose key equals key, or ErrNotFound.
func (v *OrderedView[T, K]) Get(key K) (T, error) {
	_, rec, ok := v.FindOne(key)
	if !ok {
		return rec, fmt.Errorf("%w: key %v in index %q", ErrNotFound, key, v.ix.name())
	}
	return rec, nil
}

// Count returns the number of records whose key equals key.
func (v *OrderedView[T, K]) Count(key K) int { return v.ix.tree.Count(key) }

// Contains reports whether any record has key.
func (v *OrderedView[T, K]) Contains(key K) bool { return v.ix.tree.Contains(key) }

// Range iterates the records with keys between lo and hi in ascending key
// order. The sequence is lazy and may be ranged over more than once.
func (v *OrderedView[T, K]) Range(lo, hi Bound[K]) iter.Seq2[Ref, T] {
	return v.c.records(refsOf(v.ix.tree.Range(lo, hi)))
}

// Between iterates the records with lo <= key < hi in ascending key order.
func (v *OrderedView[T, K]) Between(lo, hi K) iter.Seq2[Ref, T] {
	return v.Range(Inclusive(lo), Exclusive(hi))
}

// Ascend iterates every record in ascending key order.
func (v *OrderedView[T, K]) Ascend() iter.Seq2[Ref, T] {
	return v.c.records(refsOf(v.ix.tree.Ascend()))
}

// Descend iterates every record in descending key order.
func (v *OrderedView[T, K]) Descend() iter.Seq2[Ref, T] {
	return v.c.records(refsOf(v.ix.tree.Descend()))
}

// Min returns the record with the smallest key.
func (v *OrderedView[T, K]) Min() (Ref, T, bool) {
	_, ref, ok := v.ix.tree.Min()
	return v.at(ref, ok)
}

// Max returns the record with the largest key. For a non-unique index it is
// the most recently indexed of the records sharing that key.
func (v *OrderedView[T, K]) Max() (Ref, T, bool) {
	_, ref, ok := v.ix.tree.Max()
	return v.at(ref, ok)
}

func (v *OrderedView[T, K]) at(ref Ref, ok bool) (Ref, T, bool) {
	if !ok {
		var zero T
		return Ref{}, zero, false
	}
	rec, _ := v.c.Get(ref)
	return ref, rec, true
}

// Erase removes every record whose key equals key from the container and
// returns how many were removed. It returns ErrNotFound when none match.
func (v *OrderedView[T, K]) Erase(key K) (int, error) {
	var refs []Ref
	for ref := range v.ix.tree.Find(key) {
		refs = append(refs, ref)
	}
	if len(refs) == 0 {
		return 0, fmt.Errorf("%w: key %v in index %q", ErrNotFound, key, v.ix.name())
	}
	for n, ref := range refs {
		if err := v.c.Erase(ref); err != nil {
			return n, err
		}
	}
	return len(refs), nil
}

func refsOf[K any](seq iter.Seq2[K, Ref]) iter.Seq[Ref] {
	return func(yield func(Ref) bool) {
		for _, ref := range seq {
			if !yield(ref) {
				return
			}
		}
	}
}

// =============================================================================
// Hashed views
// =============================================================================

// HashedView gives typed access to a hashed unique index.
type HashedView[T any, K comparable] struct {
	c  *Container[T]
	ix *hashedIndex[T, K]
}

// HashedBy returns a view of the hashed index called name, whose keys must
// have type K.
//
//	byEmail, err := polyindex.HashedBy[string](c, "email")
func HashedBy[K comparable, T any](c *Container[T], name string) (*HashedView[T, K], error) {
	ix, err := lookupIndex(c, name)
	if err != nil {
		return nil, err
	}
	hi, ok := ix.(*hashedIndex[T, K])
	if !ok {
		return nil, &IndexKindError{
			Index: name,
			Want:  fmt.Sprintf("a hashed index on %s", typeName[K]()),
			Got:   ix.kind().String(),
		}
	}
	return &HashedView[T, K]{c: c, ix: hi}, nil
}

// Name returns the index name.
func (v *HashedView[T, K]) Name() string { return v.ix.name() }

// Len returns the number of entries.
func (v *HashedView[T, K]) Len() int { return v.ix.len() }

// Find returns the record holding key.
func (v *HashedView[T, K]) Find(key K) (Ref, T, bool) {
	ref, ok := v.ix.table.Find(key)
	if !ok {
		var zero T
		return Ref{}, zero, false
	}
	rec, _ := v.c.Get(ref)
	return ref, rec, true
}

// Get returns the record holding key, or ErrNotFound.
func (v *HashedView[T, K]) Get(key K) (T, error) {
	_, rec, ok := v.Find(key)
	if !ok {
		return rec, fmt.Errorf("%w: key %v in index %q", ErrNotFound, key, v.ix.name())
	}
	return rec, nil
}

// Contains reports whether a record holds key.
func (v *HashedView[T, K]) Contains(key K) bool {
	_, ok := v.ix.table.Find(key)
	return ok
}

// All iterates every record in table order, which is unspecified and
// changes when the table grows or reseeds.
func (v *HashedView[T, K]) All() iter.Seq2[Ref, T] {
	return v.c.records(refsOf(v.ix.table.All()))
}

// HashedStats describes the table behind a hashed index.
type HashedStats struct {
	Len      int
	Capacity int    // Number of slots
	Seed     uint64 // Current hash seed
	Reseeds  int    // Reseeds since the index was created
	MaxProbe int    // Longest distance of an entry from its home slot
}

// Stats returns the current table shape. The seed changes on reseeding.
func (v *HashedView[T, K]) Stats() HashedStats {
	st := v.ix.table.Stats()
	return HashedStats{
		Len:      st.Len,
		Capacity: st.Capacity,
		Seed:     v.ix.table.Seed(),
		Reseeds:  st.Reseeds,
		MaxProbe: st.MaxProbe,
	}
}

// Erase removes the record holding key from the container.
func (v *HashedView[T, K]) Erase(key K) error {
	ref, ok := v.ix.table.Find(key)
	if !ok {
		return fmt.Errorf("%w: key %v in index %q", ErrNotFound, key, v.ix.name())
	}
	return v.c.Erase(ref)
}

// =============================================================================
// Sequenced views
// =============================================================================

// SequencedView gives positional access to a sequenced index.
type SequencedView[T any] struct {
	c  *Container[T]
	ix *sequencedIndex[T]
}

// SequencedBy returns a view of the sequenced index called name.
func SequencedBy[T any](c *Container[T], name string) (*SequencedView[T], error) {
	ix, err := lookupIndex(c, name)
	if err != nil {
		return nil, err
	}
	si, ok := ix.(*sequencedIndex[T])
	if !ok {
		return nil, &IndexKindError{Index: name, Want: KindSequenced.String(), Got: ix.kind().String()}
	}
	return &SequencedView[T]{c: c, ix: si}, nil
}

// Name returns the index name.
func (v *SequencedView[T]) Name() string { return v.ix.name() }

// Len returns the number of positions.
func (v *SequencedView[T]) Len() int { return v.ix.len() }

// At returns the ref at position i.
func (v *SequencedView[T]) At(i int) (Ref, error) {
	ref, ok := v.ix.list.At(i)
	if !ok {
		return Ref{}, fmt.Errorf("%w: %d not in [0, %d)", ErrPosition, i, v.ix.len())
	}
	return ref, nil
}

// Get returns the record at position i.
func (v *SequencedView[T]) Get(i int) (T, error) {
	ref, err := v.At(i)
	if err != nil {
		var zero T
		return zero, err
	}
	return v.c.Get(ref)
}

// All iterates the records in positional order.
func (v *SequencedView[T]) All() iter.Seq2[Ref, T] {
	return v.c.records(v.ix.list.All())
}

// Position returns the position of ref.
func (v *SequencedView[T]) Position(ref Ref) (int, error) {
	p, ok := v.ix.list.Position(ref)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return p, nil
}

// Relocate moves ref to position to; records in between shift by one.
func (v *SequencedView[T]) Relocate(ref Ref, to int) error {
	return translateError(v.ix.list.Relocate(ref, to))
}
