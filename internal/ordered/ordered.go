// Package ordered implements sorted key -> slot indexes on top of a B-tree.
//
// A unique Index holds at most one entry per key. A non-unique Index orders
// equal keys by an insertion stamp, so duplicates iterate in the order they
// were inserted.
package ordered

import (
	"errors"
	"fmt"
	"iter"

	"github.com/google/btree"
	"github.com/hupe1980/polyindex/internal/arena"
)

// DefaultDegree is the B-tree degree used when none is configured.
const DefaultDegree = 32

var (
	// ErrDuplicateKey is returned by Insert on a unique index when an equal
	// key is already present.
	ErrDuplicateKey = errors.New("ordered: duplicate key")
	// ErrNotFound is returned by Erase when the (key, ref) entry is absent.
	ErrNotFound = errors.New("ordered: entry not found")
)

type item[K any] struct {
	key K
	seq uint64
	ref arena.Ref
}

// Index is a sorted mapping from key to one or many refs.
//
// Index is not safe for concurrent use. Iterators must not outlive a write.
type Index[K any] struct {
	tree    *btree.BTreeG[item[K]]
	compare func(a, b K) int
	unique  bool

	// seqs holds the insertion stamp of every entry of a non-unique index.
	seqs    map[arena.Ref]uint64
	nextSeq uint64
}

// New creates an ordered index. degree <= 1 selects DefaultDegree.
func New[K any](compare func(a, b K) int, unique bool, degree int) *Index[K] {
	if degree <= 1 {
		degree = DefaultDegree
	}

	idx := &Index[K]{
		compare: compare,
		unique:  unique,
		nextSeq: 1,
	}

	var less btree.LessFunc[item[K]]
	if unique {
		less = func(a, b item[K]) bool {
			return compare(a.key, b.key) < 0
		}
	} else {
		idx.seqs = make(map[arena.Ref]uint64)
		less = func(a, b item[K]) bool {
			if c := compare(a.key, b.key); c != 0 {
				return c < 0
			}
			return a.seq < b.seq
		}
	}

	idx.tree = btree.NewG(degree, less)
	return idx
}

// Unique reports whether the index rejects equal keys.
func (idx *Index[K]) Unique() bool {
	return idx.unique
}

// Len returns the number of entries.
func (idx *Index[K]) Len() int {
	return idx.tree.Len()
}

// Insert adds (key, ref). On a unique index an equal key fails with
// ErrDuplicateKey, returns the ref already holding the key and leaves the
// index unchanged. On a non-unique index Insert always succeeds and places
// the entry after every existing equal key.
func (idx *Index[K]) Insert(key K, ref arena.Ref) (arena.Ref, error) {
	if idx.unique {
		if existing, ok := idx.tree.Get(item[K]{key: key}); ok {
			return existing.ref, ErrDuplicateKey
		}
		idx.tree.ReplaceOrInsert(item[K]{key: key, ref: ref})
		return arena.Ref{}, nil
	}

	if _, ok := idx.seqs[ref]; ok {
		// One entry per ref; a second one would break the erase contract.
		return ref, fmt.Errorf("ordered: ref %s already indexed", ref)
	}

	seq := idx.nextSeq
	idx.nextSeq++
	idx.seqs[ref] = seq
	idx.tree.ReplaceOrInsert(item[K]{key: key, seq: seq, ref: ref})
	return arena.Ref{}, nil
}

// Erase removes exactly the (key, ref) entry.
func (idx *Index[K]) Erase(key K, ref arena.Ref) error {
	if idx.unique {
		existing, ok := idx.tree.Get(item[K]{key: key})
		if !ok || existing.ref != ref {
			return fmt.Errorf("%w: ref %s", ErrNotFound, ref)
		}
		idx.tree.Delete(existing)
		return nil
	}

	seq, ok := idx.seqs[ref]
	if !ok {
		return fmt.Errorf("%w: ref %s", ErrNotFound, ref)
	}
	if _, ok := idx.tree.Delete(item[K]{key: key, seq: seq}); !ok {
		return fmt.Errorf("%w: ref %s is indexed under a different key", ErrNotFound, ref)
	}
	delete(idx.seqs, ref)
	return nil
}

// First returns the first ref stored under key.
func (idx *Index[K]) First(key K) (arena.Ref, bool) {
	for ref := range idx.Find(key) {
		return ref, true
	}
	return arena.Ref{}, false
}

// Find iterates every ref stored under key, in insertion order for a
// non-unique index. The sequence is empty when key is absent.
func (idx *Index[K]) Find(key K) iter.Seq[arena.Ref] {
	return func(yield func(arena.Ref) bool) {
		if idx.unique {
			if it, ok := idx.tree.Get(item[K]{key: key}); ok {
				yield(it.ref)
			}
			return
		}
		// seq 0 is never assigned, so the pivot sorts before every equal key.
		idx.tree.AscendGreaterOrEqual(item[K]{key: key}, func(it item[K]) bool {
			if idx.compare(it.key, key) != 0 {
				return false
			}
			return yield(it.ref)
		})
	}
}

// Count returns the number of entries stored under key.
func (idx *Index[K]) Count(key K) int {
	n := 0
	for range idx.Find(key) {
		n++
	}
	return n
}

// Contains reports whether any entry is stored under key.
func (idx *Index[K]) Contains(key K) bool {
	_, ok := idx.First(key)
	return ok
}

// Range iterates entries with lo <= key < hi (as refined by the bounds) in
// ascending key order. The sequence is lazy and can be ranged over again.
func (idx *Index[K]) Range(lo, hi Bound[K]) iter.Seq2[K, arena.Ref] {
	return func(yield func(K, arena.Ref) bool) {
		visit := func(it item[K]) bool {
			if lo.kind == boundExclusive && idx.compare(it.key, lo.key) == 0 {
				return true
			}
			if !hi.admitsFromBelow(it.key, idx.compare) {
				return false
			}
			return yield(it.key, it.ref)
		}

		if lo.kind == boundNone {
			idx.tree.Ascend(visit)
			return
		}
		idx.tree.AscendGreaterOrEqual(item[K]{key: lo.key}, visit)
	}
}

// Ascend iterates every entry in ascending key order.
func (idx *Index[K]) Ascend() iter.Seq2[K, arena.Ref] {
	return idx.Range(Unbounded[K](), Unbounded[K]())
}

// Descend iterates every entry in descending key order. Equal keys of a
// non-unique index come out newest first.
func (idx *Index[K]) Descend() iter.Seq2[K, arena.Ref] {
	return func(yield func(K, arena.Ref) bool) {
		idx.tree.Descend(func(it item[K]) bool {
			return yield(it.key, it.ref)
		})
	}
}

// Min returns the smallest entry.
func (idx *Index[K]) Min() (K, arena.Ref, bool) {
	it, ok := idx.tree.Min()
	return it.key, it.ref, ok
}

// Max returns the largest entry.
func (idx *Index[K]) Max() (K, arena.Ref, bool) {
	it, ok := idx.tree.Max()
	return it.key, it.ref, ok
}

// Clear removes every entry.
func (idx *Index[K]) Clear() {
	idx.tree.Clear(false)
	if idx.seqs != nil {
		clear(idx.seqs)
	}
	idx.nextSeq = 1
}
