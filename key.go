package polyindex

import (
	"encoding/binary"
	"hash/maphash"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/exp/constraints"
)

// Hasher hashes key under seed. A good Hasher changes its output for every
// seed; hashed indexes rely on that to recover from clustered key sets.
type Hasher[K comparable] func(seed uint64, key K) uint64

// StringHasher hashes strings with seeded xxHash64.
func StringHasher(seed uint64, key string) uint64 {
	var d xxhash.Digest
	d.ResetWithSeed(seed)
	_, _ = d.WriteString(key)
	return d.Sum64()
}

// IntHasher hashes integer keys with seeded xxHash64 over their
// little-endian encoding.
func IntHasher[K constraints.Integer](seed uint64, key K) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(key))

	var d xxhash.Digest
	d.ResetWithSeed(seed)
	_, _ = d.Write(buf[:])
	return d.Sum64()
}

// processSeed keys ComparableHasher; it differs per process.
var processSeed = maphash.MakeSeed()

// ComparableHasher hashes any comparable key. It is the default Hasher of
// HashedUnique.
func ComparableHasher[K comparable](seed uint64, key K) uint64 {
	return mix64(maphash.Comparable(processSeed, key) ^ seed)
}

// mix64 is the splitmix64 finalizer.
func mix64(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Pair is a two-field composite key.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Composite builds a Pair extractor from two field extractors.
//
//	byNameCity := polyindex.OrderedNonUnique("name_city",
//	    polyindex.Composite(func(p Person) string { return p.Name }, func(p Person) string { return p.City }),
//	    polyindex.ComparePair(strings.Compare, strings.Compare))
func Composite[T, A, B any](first func(T) A, second func(T) B) func(T) Pair[A, B] {
	return func(v T) Pair[A, B] {
		return Pair[A, B]{First: first(v), Second: second(v)}
	}
}

// ComparePair orders pairs lexicographically: by First, then by Second.
func ComparePair[A, B any](first func(a, b A) int, second func(a, b B) int) func(x, y Pair[A, B]) int {
	return func(x, y Pair[A, B]) int {
		if c := first(x.First, y.First); c != 0 {
			return c
		}
		return second(x.Second, y.Second)
	}
}

// PairHasher combines two hashers into a Hasher for Pair keys.
func PairHasher[A, B comparable](first Hasher[A], second Hasher[B]) Hasher[Pair[A, B]] {
	return func(seed uint64, key Pair[A, B]) uint64 {
		h := first(seed, key.First)
		return second(mix64(h^seed), key.Second) ^ h
	}
}
