// Package polyindex provides an in-memory container whose records are
// reachable through several indexes at once.
//
// A Container stores each record once, in an arena slot addressed by a Ref,
// and keeps any number of indexes over it in step: ordered unique, ordered
// non-unique, hashed unique and sequenced (positional). Every insert, erase
// and modify updates all of them or, on failure, none of them.
//
// # Quick Start
//
//	type Person struct {
//	    ID    int
//	    Email string
//	    Age   int
//	}
//
//	c, _ := polyindex.New([]polyindex.IndexSpec[Person]{
//	    polyindex.OrderedUnique("id", func(p Person) int { return p.ID }, cmp.Compare[int]),
//	    polyindex.HashedUnique("email", func(p Person) string { return p.Email }, polyindex.StringHasher),
//	    polyindex.OrderedNonUnique("age", func(p Person) int { return p.Age }, cmp.Compare[int]),
//	    polyindex.Sequenced[Person]("arrival"),
//	})
//
//	ref, err := c.Insert(Person{ID: 1, Email: "ada@example.com", Age: 36})
//	if errors.Is(err, polyindex.ErrDuplicateKey) {
//	    // rejected; the container is unchanged
//	}
//
//	byAge, _ := polyindex.OrderedBy[int](c, "age")
//	for ref, p := range byAge.Between(25, 35) {
//	    fmt.Println(ref, p.ID)
//	}
//
// # Insert
//
// Unique indexes are consulted first, in the order they were declared, and
// none of them is changed until all of them accept the record. A collision
// makes Insert return a *DuplicateKeyError naming the index, the key and the
// record holding it. Nothing is touched; in particular no arena slot is
// consumed and no hash table grows.
//
// Hashed indexes reject keys that are not equal to themselves, such as a
// float NaN, with ErrInvalidKey.
//
// # Modify Erases On Collision
//
// Modify applies a mutator to a record and reindexes it. If the mutated
// record collides with another record on a unique index, the record is
// ERASED, not restored:
//
//	outcome, err := c.Modify(ref, func(p *Person) { p.ID = 2 })
//	if outcome == polyindex.OutcomeErased {
//	    // err is a *DuplicateKeyError and ref is no longer valid
//	}
//
// The container cannot undo an arbitrary mutator. To keep the record, use
// ModifyWithRollback with an inverse mutator, or Replace, which knows the
// previous value and restores it on collision.
//
// # Refs
//
// A Ref stays valid until its record is erased. Slots are reused, but every
// reuse bumps the slot generation, so a stale Ref is reported as ErrNotFound
// instead of silently addressing a newer record.
//
// # Concurrency
//
// A Container is not safe for concurrent use. Locked wraps one with a
// read-write lock:
//
//	shared := polyindex.NewLocked(c)
//	_ = shared.View(func(c *polyindex.Container[Person]) error {
//	    byID, err := polyindex.OrderedBy[int](c, "id")
//	    ...
//	})
//
// # Observability
//
// WithLogger attaches a slog-based Logger and WithMetricsCollector a
// MetricsCollector; package promcollector exports the metrics to
// Prometheus. Check verifies the container invariants and is meant for
// tests.
package polyindex
