// Package hashed implements a unique key -> slot hash table.
//
// The table uses open addressing with linear probing and backward-shift
// deletion, so erased entries leave no tombstones behind.
//
// # Adversarial keys
//
// Every table hashes with its own seed. When an insert has to probe further
// than ProbeLimit while the table is less than half full, the key set is
// clustering far beyond what a uniform hash would produce; the table picks a
// new seed and rehashes. The number of reseeds between two growths is capped
// so a hasher that ignores its seed cannot make inserts quadratic.
package hashed

import (
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"

	"github.com/hupe1980/polyindex/internal/arena"
)

const (
	// DefaultMaxLoad is the load factor at which the table doubles.
	DefaultMaxLoad = 0.75
	// ProbeLimit is the probe distance that triggers a reseed on a sparse table.
	ProbeLimit = 32

	minCapacity   = 8
	reseedsPerEra = 2
)

var (
	// ErrDuplicateKey is returned by Insert when an equal key is present.
	ErrDuplicateKey = errors.New("hashed: duplicate key")
	// ErrNotFound is returned by Erase when the (key, ref) entry is absent.
	ErrNotFound = errors.New("hashed: entry not found")
)

// HashFunc hashes key under seed.
type HashFunc[K comparable] func(seed uint64, key K) uint64

// Options configures a Table.
type Options struct {
	// Capacity is the number of keys the table holds before its first growth.
	Capacity int
	// MaxLoad is the growth threshold in (0, 1). Zero selects DefaultMaxLoad.
	MaxLoad float64
	// Seed fixes the initial hash seed and makes reseeding deterministic.
	// Zero draws a random seed.
	Seed uint64
}

// Stats describes the table shape.
type Stats struct {
	Len      int
	Capacity int
	Reseeds  int
	MaxProbe int
}

type entry[K comparable] struct {
	hash uint64
	key  K
	ref  arena.Ref
	used bool
}

// Table is a unique hash index from key to ref.
//
// Table is not safe for concurrent use.
type Table[K comparable] struct {
	entries []entry[K]
	mask    uint64
	count   int
	growAt  int
	maxLoad float64

	hash         HashFunc[K]
	seed         uint64
	reseeds      int
	reseedBudget int
}

// New creates a Table using hash.
func New[K comparable](hash HashFunc[K], opts Options) *Table[K] {
	if opts.MaxLoad <= 0 || opts.MaxLoad >= 1 {
		opts.MaxLoad = DefaultMaxLoad
	}
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	t := &Table[K]{
		hash:         hash,
		seed:         seed,
		maxLoad:      opts.MaxLoad,
		reseedBudget: reseedsPerEra,
	}
	t.init(capacityFor(opts.Capacity, opts.MaxLoad))
	return t
}

func capacityFor(n int, maxLoad float64) int {
	want := int(float64(n)/maxLoad) + 1
	c := minCapacity
	for c < want {
		c <<= 1
	}
	return c
}

func (t *Table[K]) init(capacity int) {
	t.entries = make([]entry[K], capacity)
	t.mask = uint64(capacity - 1)
	t.growAt = int(float64(capacity) * t.maxLoad)
	t.count = 0
}

// Len returns the number of keys.
func (t *Table[K]) Len() int {
	return t.count
}

// Seed returns the current hash seed.
func (t *Table[K]) Seed() uint64 {
	return t.seed
}

// Insert adds key -> ref. An equal key fails with ErrDuplicateKey, returns
// the ref holding it and leaves the table unchanged.
func (t *Table[K]) Insert(key K, ref arena.Ref) (arena.Ref, error) {
	h := t.hash(t.seed, key)
	if existing, ok := t.lookup(h, key); ok {
		return t.entries[existing].ref, ErrDuplicateKey
	}

	if t.count+1 > t.growAt {
		t.resize(len(t.entries)<<1, false)
		t.reseedBudget = reseedsPerEra
	}

	dist := t.place(entry[K]{hash: h, key: key, ref: ref, used: true})
	t.count++

	if dist > ProbeLimit && t.count*2 < len(t.entries) && t.reseedBudget > 0 {
		t.reseedBudget--
		t.resize(len(t.entries), true)
	}
	return arena.Ref{}, nil
}

// place stores e in the first free slot of its probe run and returns the
// probe distance. The key must be absent.
func (t *Table[K]) place(e entry[K]) int {
	i := e.hash & t.mask
	dist := 0
	for t.entries[i].used {
		i = (i + 1) & t.mask
		dist++
	}
	t.entries[i] = e
	return dist
}

func (t *Table[K]) lookup(h uint64, key K) (uint64, bool) {
	i := h & t.mask
	for {
		e := &t.entries[i]
		if !e.used {
			return 0, false
		}
		if e.hash == h && e.key == key {
			return i, true
		}
		i = (i + 1) & t.mask
	}
}

// resize rebuilds the table with capacity slots. With reseed the table
// switches to a new seed and recomputes every hash.
func (t *Table[K]) resize(capacity int, reseed bool) {
	old := t.entries
	t.init(capacity)

	if reseed {
		t.seed = nextSeed(t.seed)
		t.reseeds++
	}

	for _, e := range old {
		if !e.used {
			continue
		}
		if reseed {
			e.hash = t.hash(t.seed, e.key)
		}
		t.place(e)
		t.count++
	}
}

// nextSeed derives a fresh seed with a splitmix64 step.
func nextSeed(seed uint64) uint64 {
	z := seed + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Find returns the ref stored under key.
func (t *Table[K]) Find(key K) (arena.Ref, bool) {
	i, ok := t.lookup(t.hash(t.seed, key), key)
	if !ok {
		return arena.Ref{}, false
	}
	return t.entries[i].ref, true
}

// Erase removes key if it maps to ref.
func (t *Table[K]) Erase(key K, ref arena.Ref) error {
	i, ok := t.lookup(t.hash(t.seed, key), key)
	if !ok {
		return fmt.Errorf("%w: ref %s", ErrNotFound, ref)
	}
	if t.entries[i].ref != ref {
		return fmt.Errorf("%w: key belongs to ref %s, not %s", ErrNotFound, t.entries[i].ref, ref)
	}

	// Backward-shift deletion: pull later members of the probe run into the
	// hole unless their home slot lies cyclically in (hole, j].
	hole := i
	j := i
	for {
		j = (j + 1) & t.mask
		e := t.entries[j]
		if !e.used {
			break
		}
		home := e.hash & t.mask
		var stays bool
		if hole <= j {
			stays = hole < home && home <= j
		} else {
			stays = hole < home || home <= j
		}
		if stays {
			continue
		}
		t.entries[hole] = e
		hole = j
	}
	t.entries[hole] = entry[K]{}
	t.count--
	return nil
}

// All iterates every (key, ref) pair in table order.
func (t *Table[K]) All() iter.Seq2[K, arena.Ref] {
	return func(yield func(K, arena.Ref) bool) {
		for i := range t.entries {
			e := &t.entries[i]
			if e.used && !yield(e.key, e.ref) {
				return
			}
		}
	}
}

// Clear removes every key and keeps the current capacity.
func (t *Table[K]) Clear() {
	clear(t.entries)
	t.count = 0
}

// Stats returns the table shape, including the longest probe run.
func (t *Table[K]) Stats() Stats {
	maxProbe := 0
	for i, e := range t.entries {
		if !e.used {
			continue
		}
		d := int((uint64(i) - e.hash&t.mask) & t.mask)
		if d > maxProbe {
			maxProbe = d
		}
	}
	return Stats{
		Len:      t.count,
		Capacity: len(t.entries),
		Reseeds:  t.reseeds,
		MaxProbe: maxProbe,
	}
}
