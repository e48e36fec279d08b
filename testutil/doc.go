// Package testutil provides testing utilities for polyindex.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random source, the Person record used throughout
// the test suite and benchmarks, and the standard set of Person indexes.
//
// # Random Numbers
//
//	rng := testutil.NewRNG(seed)
//	id := rng.Intn(size)
//	hot := rng.Zipf(size, 1.2) // skewed key choice
//
// # Person Workload
//
//	persons := testutil.GeneratePersons(10_000)
//	c, _ := polyindex.New(testutil.PersonIndexes())
//	for _, p := range persons {
//	    _, _ = c.Insert(p)
//	}
package testutil
