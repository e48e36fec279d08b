package benchmark_test

import (
	"testing"

	"github.com/hupe1980/polyindex"
	"github.com/hupe1980/polyindex/testutil"
)

const (
	benchSeed   = 4711
	lookupCount = 100
)

var (
	sizesInsert = []int{100, 1_000, 10_000}
	sizesLookup = []int{1_000, 10_000}
)

// ageRanges are the inclusive [min, max] age windows of the range workload.
var ageRanges = [][2]int{{20, 30}, {30, 40}, {40, 50}, {50, 60}, {60, 70}}

type Person = testutil.Person

// populate builds the standard six-index container over persons.
func populate(tb testing.TB, persons []Person) *polyindex.Container[Person] {
	tb.Helper()

	c, err := testutil.PopulateContainer(persons, polyindex.WithHashSeed(benchSeed))
	if err != nil {
		tb.Fatal(err)
	}
	return c
}

var sink int
