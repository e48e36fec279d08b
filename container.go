package polyindex

import (
	"fmt"
	"iter"
	"time"

	"github.com/hupe1980/polyindex/internal/arena"
	"github.com/hupe1980/polyindex/internal/bitmap"
)

// Ref is a stable handle to one record of a Container. It stays valid until
// the record is erased; afterwards every operation reports ErrNotFound for
// it, even when its slot has been reused by another record.
type Ref = arena.Ref

// ModifyOutcome reports what Modify did to its record.
type ModifyOutcome uint8

const (
	// OutcomeUpdated means the record holds the mutated value and every
	// index reflects its new keys.
	OutcomeUpdated ModifyOutcome = iota
	// OutcomeErased means the mutated value collided on a unique index and
	// the record was removed from the container.
	OutcomeErased
	// OutcomeRolledBack means the mutated value collided, the rollback
	// function restored a non-colliding value and the record was kept.
	OutcomeRolledBack
	// OutcomeNotFound means the Ref did not address a live record.
	OutcomeNotFound
)

func (o ModifyOutcome) String() string {
	switch o {
	case OutcomeUpdated:
		return "updated"
	case OutcomeErased:
		return "erased"
	case OutcomeRolledBack:
		return "rolled_back"
	case OutcomeNotFound:
		return "not_found"
	default:
		return fmt.Sprintf("ModifyOutcome(%d)", uint8(o))
	}
}

// Container is a collection of records reachable through several indexes
// at once. It is the only mutator of its indexes and keeps them consistent:
// every live record has exactly one entry in every index, unique indexes
// never hold equal keys, and no index refers to an erased record.
//
// Container is not safe for concurrent use. Wrap it in Locked to share it
// between goroutines.
type Container[T any] struct {
	arena   *arena.Arena[T]
	indexes []index[T]
	byName  map[string]int

	// Index positions by role, each in declaration order.
	unique    []int
	keyed     []int
	sequenced []int

	changed []bool // scratch for rekey

	logger  *Logger
	metrics MetricsCollector
}

// New creates a Container with the given indexes. Unique indexes are
// checked in the order they appear in specs.
func New[T any](specs []IndexSpec[T], optFns ...Option) (*Container[T], error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: at least one index is required", ErrInvalidIndexSpec)
	}

	c := &Container[T]{
		arena:   arena.New[T](opts.capacity),
		indexes: make([]index[T], 0, len(specs)),
		byName:  make(map[string]int, len(specs)),
		changed: make([]bool, len(specs)),
		logger:  opts.logger,
		metrics: opts.metricsCollector,
	}
	if c.logger == nil {
		c.logger = NoopLogger()
	}

	for i, spec := range specs {
		if spec == nil {
			return nil, fmt.Errorf("%w: spec %d is nil", ErrInvalidIndexSpec, i)
		}
		name := spec.Name()
		if name == "" {
			return nil, fmt.Errorf("%w: spec %d has no name", ErrInvalidIndexSpec, i)
		}
		if _, dup := c.byName[name]; dup {
			return nil, fmt.Errorf("%w: index name %q used twice", ErrInvalidIndexSpec, name)
		}

		ix, err := spec.build(&opts)
		if err != nil {
			return nil, err
		}

		c.byName[name] = i
		c.indexes = append(c.indexes, ix)

		switch kind := ix.kind(); {
		case kind == KindSequenced:
			c.sequenced = append(c.sequenced, i)
		case kind.Unique():
			c.unique = append(c.unique, i)
			c.keyed = append(c.keyed, i)
		default:
			c.keyed = append(c.keyed, i)
		}
	}

	return c, nil
}

func (c *Container[T]) start() time.Time {
	if c.metrics == nil {
		return time.Time{}
	}
	return time.Now()
}

// Len returns the number of records.
func (c *Container[T]) Len() int {
	return c.arena.Len()
}

// Contains reports whether ref addresses a live record.
func (c *Container[T]) Contains(ref Ref) bool {
	return c.arena.Contains(ref)
}

// Get returns a copy of the record at ref.
func (c *Container[T]) Get(ref Ref) (T, error) {
	rec, err := c.arena.Get(ref)
	if err != nil {
		var zero T
		return zero, translateError(err)
	}
	return *rec, nil
}

// All iterates every record in slot order. Slot order is unrelated to key
// or insertion order; use a view for a defined order.
func (c *Container[T]) All() iter.Seq2[Ref, T] {
	return func(yield func(Ref, T) bool) {
		for ref, rec := range c.arena.All() {
			if !yield(ref, *rec) {
				return
			}
		}
	}
}

// Indexes describes the configured indexes in declaration order.
func (c *Container[T]) Indexes() []IndexInfo {
	infos := make([]IndexInfo, len(c.indexes))
	for i, ix := range c.indexes {
		infos[i] = IndexInfo{Name: ix.name(), Kind: ix.kind(), Len: ix.len()}
	}
	return infos
}

// Insert adds v and returns its Ref.
//
// Every unique index is asked first, in declaration order. If one of them
// already holds an equal key, Insert returns a *DuplicateKeyError from the
// first such index and the container is left exactly as it was. A hashed
// index rejects a key that is not equal to itself with ErrInvalidKey. Otherwise
// v is stored, indexed by every keyed index and appended to every
// sequenced index.
func (c *Container[T]) Insert(v T) (Ref, error) {
	t0 := c.start()
	ref, err := c.insert(v)
	c.logger.LogInsert(ref, err)
	if c.metrics != nil {
		c.metrics.RecordInsert(time.Since(t0), err)
	}
	return ref, err
}

func (c *Container[T]) insert(v T) (Ref, error) {
	for _, i := range c.unique {
		if err := c.indexes[i].admit(&v); err != nil {
			return Ref{}, err
		}
	}

	ref := c.arena.Allocate(v)
	rec, _ := c.arena.Get(ref)
	for _, i := range c.keyed {
		c.attach("insert", i, rec, ref)
	}
	for _, i := range c.sequenced {
		c.attach("insert", i, rec, ref)
	}

	return ref, nil
}

// Erase removes the record at ref from every index and frees its slot.
// It returns ErrNotFound if ref does not address a live record.
func (c *Container[T]) Erase(ref Ref) error {
	t0 := c.start()
	err := c.erase(ref)
	c.logger.LogErase(ref, err)
	if c.metrics != nil {
		c.metrics.RecordErase(time.Since(t0), err)
	}
	return err
}

func (c *Container[T]) erase(ref Ref) error {
	rec, err := c.arena.Get(ref)
	if err != nil {
		return translateError(err)
	}
	for i := range c.indexes {
		c.detach("erase", i, rec, ref)
	}
	c.free("erase", ref)
	return nil
}

// Modify applies mutate to a copy of the record at ref and reindexes it.
//
// IMPORTANT: Modify is not a "nothing happens on failure" operation. If the
// mutated record collides with another record on any unique index, the
// record is ERASED: Modify returns OutcomeErased together with a
// *DuplicateKeyError, and ref is no longer valid. A key a hashed index
// cannot hold (ErrInvalidKey) erases the record the same way. The container cannot
// restore the previous keys because mutate is not assumed to be
// invertible. Callers that need the record to survive a collision should
// snapshot it with Get and re-insert it, supply an inverse through
// ModifyWithRollback, or use Replace.
//
// Indexes whose key is unchanged by mutate are not touched, and sequenced
// indexes keep the record at its position. A Ref that does not address a
// live record yields OutcomeNotFound and ErrNotFound.
func (c *Container[T]) Modify(ref Ref, mutate func(*T)) (ModifyOutcome, error) {
	return c.ModifyWithRollback(ref, mutate, nil)
}

// ModifyWithRollback behaves like Modify, except that on a collision it
// applies rollback to the mutated copy and tries to index the result. If
// that succeeds the record is kept with the rolled-back value and the
// outcome is OutcomeRolledBack; the returned error still describes the
// collision. If the rolled-back value collides too, the record is erased.
//
// A rollback that restores the original keys leaves every index as it was.
// Keys it leaves changed are reindexed like a successful Modify. A nil
// rollback makes ModifyWithRollback identical to Modify.
func (c *Container[T]) ModifyWithRollback(ref Ref, mutate, rollback func(*T)) (ModifyOutcome, error) {
	t0 := c.start()
	outcome, err := c.modify(ref, mutate, rollback)
	c.logger.LogModify(ref, outcome, err)
	if c.metrics != nil {
		c.metrics.RecordModify(time.Since(t0), outcome)
	}
	return outcome, err
}

func (c *Container[T]) modify(ref Ref, mutate, rollback func(*T)) (ModifyOutcome, error) {
	rec, err := c.arena.Get(ref)
	if err != nil {
		return OutcomeNotFound, translateError(err)
	}

	updated := *rec
	mutate(&updated)

	err = c.rekey(ref, rec, &updated)
	if err == nil {
		c.commit("modify", ref, updated)
		return OutcomeUpdated, nil
	}

	// ref is still indexed under the keys of rec.
	if rollback != nil {
		restored := updated
		rollback(&restored)
		if c.rekey(ref, rec, &restored) == nil {
			c.commit("modify", ref, restored)
			return OutcomeRolledBack, err
		}
	}

	for i := range c.indexes {
		c.detach("modify", i, rec, ref)
	}
	c.free("modify", ref)
	return OutcomeErased, err
}

// Replace stores v at ref and reindexes it. Unlike Modify, a collision
// leaves the record and every index unchanged and Replace returns the
// *DuplicateKeyError.
func (c *Container[T]) Replace(ref Ref, v T) error {
	t0 := c.start()
	err := c.replace(ref, v)
	c.logger.LogReplace(ref, err)
	if c.metrics != nil {
		c.metrics.RecordReplace(time.Since(t0), err)
	}
	return err
}

func (c *Container[T]) replace(ref Ref, v T) error {
	rec, err := c.arena.Get(ref)
	if err != nil {
		return translateError(err)
	}
	if err := c.rekey(ref, rec, &v); err != nil {
		return err
	}
	c.commit("replace", ref, v)
	return nil
}

// rekey moves ref from the keys of old to the keys of updated in every
// keyed index whose key differs. The changed keys are admitted by every
// unique index before any index is touched, so on a collision rekey
// returns the error and ref keeps all of its entries.
func (c *Container[T]) rekey(ref Ref, old, updated *T) error {
	changed := c.changed
	for _, i := range c.keyed {
		changed[i] = c.indexes[i].keyChanged(old, updated)
	}

	for _, i := range c.unique {
		if !changed[i] {
			continue
		}
		if err := c.indexes[i].admit(updated); err != nil {
			return err
		}
	}

	for _, i := range c.keyed {
		if changed[i] {
			c.detach("rekey", i, old, ref)
			c.attach("rekey", i, updated, ref)
		}
	}
	return nil
}

// commit stores v as the value of ref once every index holds its keys.
func (c *Container[T]) commit(op string, ref Ref, v T) {
	if err := c.arena.Set(ref, v); err != nil {
		fault(op, "", ref, err)
	}
}

// attach adds ref to index i and counts the link in the arena. The key
// must have been admitted.
func (c *Container[T]) attach(op string, i int, rec *T, ref Ref) {
	if err := c.indexes[i].insert(rec, ref); err != nil {
		fault(op, c.indexes[i].name(), ref, err)
	}
	if err := c.arena.Link(ref); err != nil {
		fault(op, c.indexes[i].name(), ref, err)
	}
}

// detach removes ref from index i. The entry must exist.
func (c *Container[T]) detach(op string, i int, rec *T, ref Ref) {
	if err := c.indexes[i].erase(rec, ref); err != nil {
		fault(op, c.indexes[i].name(), ref, err)
	}
	if err := c.arena.Unlink(ref); err != nil {
		fault(op, c.indexes[i].name(), ref, err)
	}
}

func (c *Container[T]) free(op string, ref Ref) {
	if err := c.arena.Free(ref); err != nil {
		fault(op, "", ref, err)
	}
}

// Clear removes every record. Refs issued before Clear become stale.
func (c *Container[T]) Clear() {
	n := c.arena.Len()
	for _, ix := range c.indexes {
		ix.clear()
	}
	c.arena.Reset()
	c.logger.LogClear(n)
}

// Check verifies the container invariants:
//
//   - every live record has exactly one entry in every index
//   - every entry's key equals the key extracted from its record
//   - unique indexes hold no equal keys and ordered indexes are sorted
//   - sequenced indexes enumerate exactly the live records
//   - no index refers to an erased record
//
// Check walks every index and is meant for tests and debugging.
func (c *Container[T]) Check() error {
	live := c.arena.Live()
	get := func(ref Ref) (*T, error) {
		return c.arena.Get(ref)
	}

	for _, ix := range c.indexes {
		seen := bitmap.New()
		n := 0
		for ref := range ix.refs() {
			n++
			if !c.arena.Contains(ref) {
				return fmt.Errorf("%w: index %q refers to erased %s", ErrInconsistent, ix.name(), ref)
			}
			if !seen.CheckedAdd(ref.Index) {
				return fmt.Errorf("%w: index %q refers to %s twice", ErrInconsistent, ix.name(), ref)
			}
		}
		if n != ix.len() {
			return fmt.Errorf("%w: index %q reports %d entries but holds %d", ErrInconsistent, ix.name(), ix.len(), n)
		}
		if !seen.Equals(live) {
			missing := live.Clone()
			missing.AndNot(seen)
			return fmt.Errorf("%w: index %q misses %d live records", ErrInconsistent, ix.name(), missing.Cardinality())
		}
		if err := ix.verify(get); err != nil {
			return fmt.Errorf("%w: index %q: %w", ErrInconsistent, ix.name(), err)
		}
	}

	for ref := range c.arena.All() {
		links, err := c.arena.Links(ref)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInconsistent, err)
		}
		if links != len(c.indexes) {
			return fmt.Errorf("%w: %s has %d index links, want %d", ErrInconsistent, ref, links, len(c.indexes))
		}
	}
	return nil
}
