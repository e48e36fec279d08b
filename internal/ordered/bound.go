package ordered

type boundKind uint8

const (
	boundNone boundKind = iota
	boundInclusive
	boundExclusive
)

// Bound is one end of a key range. The zero Bound is unbounded.
type Bound[K any] struct {
	key  K
	kind boundKind
}

// Unbounded returns an open range end.
func Unbounded[K any]() Bound[K] {
	return Bound[K]{}
}

// Inclusive returns a range end that admits key itself.
func Inclusive[K any](key K) Bound[K] {
	return Bound[K]{key: key, kind: boundInclusive}
}

// Exclusive returns a range end that stops short of key.
func Exclusive[K any](key K) Bound[K] {
	return Bound[K]{key: key, kind: boundExclusive}
}

// Key returns the bound key and false for an unbounded end.
func (b Bound[K]) Key() (K, bool) {
	return b.key, b.kind != boundNone
}

// IsInclusive reports whether the bound admits its own key.
func (b Bound[K]) IsInclusive() bool {
	return b.kind == boundInclusive
}

// admitsFromBelow reports whether key lies under b used as an upper bound.
func (b Bound[K]) admitsFromBelow(key K, compare func(a, b K) int) bool {
	switch b.kind {
	case boundInclusive:
		return compare(key, b.key) <= 0
	case boundExclusive:
		return compare(key, b.key) < 0
	default:
		return true
	}
}
