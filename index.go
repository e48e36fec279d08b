package polyindex

import (
	"errors"
	"fmt"
	"iter"
	"reflect"

	"github.com/hupe1980/polyindex/internal/hashed"
	"github.com/hupe1980/polyindex/internal/ordered"
	"github.com/hupe1980/polyindex/internal/sequence"
)

// Kind enumerates the supported index kinds.
type Kind uint8

const (
	// KindOrderedUnique is a sorted index that rejects equal keys.
	KindOrderedUnique Kind = iota + 1
	// KindOrderedNonUnique is a sorted index that keeps equal keys in insertion order.
	KindOrderedNonUnique
	// KindHashedUnique is a hash index that rejects equal keys.
	KindHashedUnique
	// KindSequenced keeps records in a positional order.
	KindSequenced
)

func (k Kind) String() string {
	switch k {
	case KindOrderedUnique:
		return "ordered_unique"
	case KindOrderedNonUnique:
		return "ordered_non_unique"
	case KindHashedUnique:
		return "hashed_unique"
	case KindSequenced:
		return "sequenced"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Unique reports whether indexes of this kind reject equal keys.
func (k Kind) Unique() bool {
	return k == KindOrderedUnique || k == KindHashedUnique
}

// IndexSpec describes one index of a container: its name, kind, key
// extractor and comparison or hash function. Build specs with
// OrderedUnique, OrderedNonUnique, HashedUnique and Sequenced.
type IndexSpec[T any] interface {
	Name() string
	Kind() Kind
	build(o *options) (index[T], error)
}

// IndexInfo describes a configured index.
type IndexInfo struct {
	Name string
	Kind Kind
	Len  int
}

// index is the coordinator's view of one configured index. Sequenced
// indexes ignore the record arguments and never report a key change.
type index[T any] interface {
	name() string
	kind() Kind
	insert(rec *T, ref Ref) error
	// admit returns the error insert would return for rec without changing
	// the index.
	admit(rec *T) error
	erase(rec *T, ref Ref) error
	keyChanged(old, updated *T) bool
	len() int
	refs() iter.Seq[Ref]
	clear()
	// verify checks every entry against the record it points at.
	verify(get func(Ref) (*T, error)) error
}

func typeName[K any]() string {
	return reflect.TypeFor[K]().String()
}

// =============================================================================
// Ordered indexes
// =============================================================================

type orderedSpec[T, K any] struct {
	name    string
	unique  bool
	key     func(T) K
	compare func(a, b K) int
}

// OrderedUnique describes a sorted index on key that rejects equal keys.
//
//	byID := polyindex.OrderedUnique("id", func(p Person) int { return p.ID }, cmp.Compare[int])
func OrderedUnique[T, K any](name string, key func(T) K, compare func(a, b K) int) IndexSpec[T] {
	return &orderedSpec[T, K]{name: name, unique: true, key: key, compare: compare}
}

// OrderedNonUnique describes a sorted index on key that admits equal keys.
// Records sharing a key iterate in the order their current key was indexed.
func OrderedNonUnique[T, K any](name string, key func(T) K, compare func(a, b K) int) IndexSpec[T] {
	return &orderedSpec[T, K]{name: name, key: key, compare: compare}
}

func (s *orderedSpec[T, K]) Name() string { return s.name }

func (s *orderedSpec[T, K]) Kind() Kind {
	if s.unique {
		return KindOrderedUnique
	}
	return KindOrderedNonUnique
}

func (s *orderedSpec[T, K]) build(o *options) (index[T], error) {
	if s.key == nil || s.compare == nil {
		return nil, fmt.Errorf("%w: index %q needs a key extractor and a comparator", ErrInvalidIndexSpec, s.name)
	}
	return &orderedIndex[T, K]{
		spec: s,
		tree: ordered.New(s.compare, s.unique, o.btreeDegree),
	}, nil
}

type orderedIndex[T, K any] struct {
	spec *orderedSpec[T, K]
	tree *ordered.Index[K]
}

func (x *orderedIndex[T, K]) name() string { return x.spec.name }
func (x *orderedIndex[T, K]) kind() Kind   { return x.spec.Kind() }
func (x *orderedIndex[T, K]) len() int     { return x.tree.Len() }
func (x *orderedIndex[T, K]) clear()       { x.tree.Clear() }

func (x *orderedIndex[T, K]) insert(rec *T, ref Ref) error {
	k := x.spec.key(*rec)
	existing, err := x.tree.Insert(k, ref)
	if errors.Is(err, ordered.ErrDuplicateKey) {
		return &DuplicateKeyError{Index: x.spec.name, Key: k, Existing: existing}
	}
	return err
}

func (x *orderedIndex[T, K]) admit(rec *T) error {
	if !x.spec.unique {
		return nil
	}
	k := x.spec.key(*rec)
	if existing, ok := x.tree.First(k); ok {
		return &DuplicateKeyError{Index: x.spec.name, Key: k, Existing: existing}
	}
	return nil
}

func (x *orderedIndex[T, K]) erase(rec *T, ref Ref) error {
	return x.tree.Erase(x.spec.key(*rec), ref)
}

func (x *orderedIndex[T, K]) keyChanged(old, updated *T) bool {
	return x.spec.compare(x.spec.key(*old), x.spec.key(*updated)) != 0
}

func (x *orderedIndex[T, K]) refs() iter.Seq[Ref] {
	return func(yield func(Ref) bool) {
		for _, ref := range x.tree.Ascend() {
			if !yield(ref) {
				return
			}
		}
	}
}

func (x *orderedIndex[T, K]) verify(get func(Ref) (*T, error)) error {
	var (
		prev    K
		hasPrev bool
	)
	for k, ref := range x.tree.Ascend() {
		rec, err := get(ref)
		if err != nil {
			return fmt.Errorf("entry %v: %w", k, err)
		}
		if x.spec.compare(k, x.spec.key(*rec)) != 0 {
			return fmt.Errorf("entry %v of %s does not match the record key %v", k, ref, x.spec.key(*rec))
		}
		if hasPrev {
			c := x.spec.compare(prev, k)
			if c > 0 || (c == 0 && x.spec.unique) {
				return fmt.Errorf("entries %v and %v out of order", prev, k)
			}
		}
		prev, hasPrev = k, true
	}
	return nil
}

// =============================================================================
// Hashed index
// =============================================================================

type hashedSpec[T any, K comparable] struct {
	name   string
	key    func(T) K
	hasher Hasher[K]
}

// HashedUnique describes a hash index on key that rejects equal keys.
// A nil hasher selects ComparableHasher.
//
//	byEmail := polyindex.HashedUnique("email", func(p Person) string { return p.Email }, polyindex.StringHasher)
func HashedUnique[T any, K comparable](name string, key func(T) K, hasher Hasher[K]) IndexSpec[T] {
	return &hashedSpec[T, K]{name: name, key: key, hasher: hasher}
}

func (s *hashedSpec[T, K]) Name() string { return s.name }
func (s *hashedSpec[T, K]) Kind() Kind   { return KindHashedUnique }

func (s *hashedSpec[T, K]) build(o *options) (index[T], error) {
	if s.key == nil {
		return nil, fmt.Errorf("%w: index %q needs a key extractor", ErrInvalidIndexSpec, s.name)
	}
	h := s.hasher
	if h == nil {
		h = ComparableHasher[K]
	}
	return &hashedIndex[T, K]{
		spec: s,
		table: hashed.New(hashed.HashFunc[K](h), hashed.Options{
			Capacity: o.capacity,
			MaxLoad:  o.hashLoadFactor,
			Seed:     o.hashSeed,
		}),
	}, nil
}

type hashedIndex[T any, K comparable] struct {
	spec  *hashedSpec[T, K]
	table *hashed.Table[K]
}

func (x *hashedIndex[T, K]) name() string { return x.spec.name }
func (x *hashedIndex[T, K]) kind() Kind   { return KindHashedUnique }
func (x *hashedIndex[T, K]) len() int     { return x.table.Len() }
func (x *hashedIndex[T, K]) clear()       { x.table.Clear() }

// validKey rejects keys that no lookup could find again.
func (x *hashedIndex[T, K]) validKey(k K) error {
	if k != k {
		return fmt.Errorf("%w: index %q cannot hold %v", ErrInvalidKey, x.spec.name, k)
	}
	return nil
}

func (x *hashedIndex[T, K]) insert(rec *T, ref Ref) error {
	k := x.spec.key(*rec)
	if err := x.validKey(k); err != nil {
		return err
	}
	existing, err := x.table.Insert(k, ref)
	if errors.Is(err, hashed.ErrDuplicateKey) {
		return &DuplicateKeyError{Index: x.spec.name, Key: k, Existing: existing}
	}
	return err
}

func (x *hashedIndex[T, K]) admit(rec *T) error {
	k := x.spec.key(*rec)
	if err := x.validKey(k); err != nil {
		return err
	}
	if existing, ok := x.table.Find(k); ok {
		return &DuplicateKeyError{Index: x.spec.name, Key: k, Existing: existing}
	}
	return nil
}

func (x *hashedIndex[T, K]) erase(rec *T, ref Ref) error {
	return x.table.Erase(x.spec.key(*rec), ref)
}

func (x *hashedIndex[T, K]) keyChanged(old, updated *T) bool {
	return x.spec.key(*old) != x.spec.key(*updated)
}

func (x *hashedIndex[T, K]) refs() iter.Seq[Ref] {
	return func(yield func(Ref) bool) {
		for _, ref := range x.table.All() {
			if !yield(ref) {
				return
			}
		}
	}
}

func (x *hashedIndex[T, K]) verify(get func(Ref) (*T, error)) error {
	for k, ref := range x.table.All() {
		rec, err := get(ref)
		if err != nil {
			return fmt.Errorf("entry %v: %w", k, err)
		}
		if x.spec.key(*rec) != k {
			return fmt.Errorf("entry %v of %s does not match the record key %v", k, ref, x.spec.key(*rec))
		}
		if got, ok := x.table.Find(k); !ok || got != ref {
			return fmt.Errorf("entry %v of %s is unreachable by lookup", k, ref)
		}
	}
	return nil
}

// =============================================================================
// Sequenced index
// =============================================================================

type sequencedSpec[T any] struct {
	name string
}

// Sequenced describes a positional index. Records are appended on insert
// and keep their position across Modify and Replace; only Relocate on a
// SequencedView moves them.
func Sequenced[T any](name string) IndexSpec[T] {
	return &sequencedSpec[T]{name: name}
}

func (s *sequencedSpec[T]) Name() string { return s.name }
func (s *sequencedSpec[T]) Kind() Kind   { return KindSequenced }

func (s *sequencedSpec[T]) build(o *options) (index[T], error) {
	return &sequencedIndex[T]{label: s.name, list: sequence.New(o.capacity)}, nil
}

type sequencedIndex[T any] struct {
	label string
	list  *sequence.List
}

func (x *sequencedIndex[T]) name() string               { return x.label }
func (x *sequencedIndex[T]) kind() Kind                 { return KindSequenced }
func (x *sequencedIndex[T]) len() int                   { return x.list.Len() }
func (x *sequencedIndex[T]) clear()                     { x.list.Clear() }
func (x *sequencedIndex[T]) insert(_ *T, ref Ref) error { return x.list.Append(ref) }
func (x *sequencedIndex[T]) admit(_ *T) error            { return nil }
func (x *sequencedIndex[T]) erase(_ *T, ref Ref) error  { return x.list.Remove(ref) }
func (x *sequencedIndex[T]) keyChanged(_, _ *T) bool    { return false }
func (x *sequencedIndex[T]) refs() iter.Seq[Ref]        { return x.list.All() }

func (x *sequencedIndex[T]) verify(get func(Ref) (*T, error)) error {
	i := 0
	for ref := range x.list.All() {
		if _, err := get(ref); err != nil {
			return fmt.Errorf("position %d: %w", i, err)
		}
		if p, ok := x.list.Position(ref); !ok || p != i {
			return fmt.Errorf("position %d holds %s but the position table says %d", i, ref, p)
		}
		i++
	}
	return nil
}
