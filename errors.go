package polyindex

import (
	"errors"
	"fmt"

	"github.com/hupe1980/polyindex/internal/arena"
	"github.com/hupe1980/polyindex/internal/hashed"
	"github.com/hupe1980/polyindex/internal/ordered"
	"github.com/hupe1980/polyindex/internal/sequence"
)

var (
	// ErrDuplicateKey is returned when a unique index already holds an equal key.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidKey is returned when a hashed index is given a key that is not
	// equal to itself, such as a float NaN.
	ErrInvalidKey = errors.New("invalid key")

	// ErrNotFound is returned when a Ref, key or position resolves to no record.
	ErrNotFound = errors.New("not found")

	// ErrUnknownIndex is returned by the view accessors for an unconfigured name.
	ErrUnknownIndex = errors.New("unknown index")

	// ErrInvalidIndexSpec is returned by New for an unusable index list.
	ErrInvalidIndexSpec = errors.New("invalid index spec")

	// ErrPosition is returned for a sequence position outside [0, Len).
	ErrPosition = errors.New("position out of range")

	// ErrInconsistent is returned by Check when an invariant is broken.
	ErrInconsistent = errors.New("inconsistent container")
)

// DuplicateKeyError reports which unique index rejected a record.
//
// It matches ErrDuplicateKey via errors.Is.
type DuplicateKeyError struct {
	Index    string // Name of the rejecting index
	Key      any    // The colliding key
	Existing Ref    // The record already holding Key
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %v in index %q (held by %s)", e.Key, e.Index, e.Existing)
}

// Is reports whether target is ErrDuplicateKey.
func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// IndexKindError is returned when a view accessor names an index of another
// kind or key type than requested.
type IndexKindError struct {
	Index string
	Want  string
	Got   string
}

func (e *IndexKindError) Error() string {
	return fmt.Sprintf("index %q is %s, not %s", e.Index, e.Got, e.Want)
}

// InconsistencyError signals a broken container invariant. It is a
// programming error inside the container and is raised with panic, never
// returned.
type InconsistencyError struct {
	Op    string
	Index string
	Ref   Ref
	cause error
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("polyindex: internal inconsistency during %s on index %q for %s: %v", e.Op, e.Index, e.Ref, e.cause)
}

func (e *InconsistencyError) Unwrap() error { return e.cause }

func fault(op, index string, ref Ref, cause error) {
	panic(&InconsistencyError{Op: op, Index: index, Ref: ref, cause: cause})
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Not found unification.
	if errors.Is(err, arena.ErrStaleRef) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	if errors.Is(err, ordered.ErrNotFound) || errors.Is(err, hashed.ErrNotFound) || errors.Is(err, sequence.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	if errors.Is(err, sequence.ErrPosition) {
		return fmt.Errorf("%w: %w", ErrPosition, err)
	}

	return err
}
