// Package arena provides generational slot storage for container records.
//
// Every stored value lives in a slot addressed by a Ref. A Ref carries the
// slot generation, which is bumped when the slot is freed. A Ref kept past
// its record's lifetime is therefore detected as stale instead of silently
// aliasing whatever record reuses the slot.
//
// # Features
//
//   - O(1) Allocate, Get, Set and Free
//   - Stable record addresses (segmented storage, no reallocation on growth)
//   - LIFO reuse of freed slots
//   - Per-slot link counts so a slot still referenced by an index cannot be freed
//   - Roaring bitmap of live slots for invariant checks
//
// # Concurrency
//
// Arena is not safe for concurrent use. The owning container serializes access.
package arena
