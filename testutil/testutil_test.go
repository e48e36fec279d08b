package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePersons(t *testing.T) {
	persons := GeneratePersons(120)
	require.Len(t, persons, 120)

	assert.Equal(t, Person{ID: 0, Name: "John", Email: "John0@example.com", Age: 20, City: "New York"}, persons[0])
	assert.Equal(t, Person{ID: 61, Name: "Mary", Email: "Mary61@example.com", Age: 21, City: "London"}, persons[61])

	emails := make(map[string]struct{}, len(persons))
	for i, p := range persons {
		assert.Equal(t, i, p.ID)
		assert.GreaterOrEqual(t, p.Age, 20)
		assert.LessOrEqual(t, p.Age, 79)
		emails[p.Email] = struct{}{}
	}
	assert.Len(t, emails, len(persons))
}

func TestPopulateContainer(t *testing.T) {
	c, err := PopulateContainer(GeneratePersons(50))
	require.NoError(t, err)

	assert.Equal(t, 50, c.Len())
	assert.Len(t, c.Indexes(), 6)
	require.NoError(t, c.Check())
}

func TestZipf(t *testing.T) {
	rng := NewRNG(4711)

	counts := make([]int, 10)
	for _, v := range rng.ZipfInts(2000, 10, 1.2) {
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 10)
		counts[v]++
	}
	assert.Greater(t, counts[0], counts[9])
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	a := rng.Ints(5, 100)

	rng.Reset()
	b := rng.Ints(5, 100)

	assert.Equal(t, a, b)
	assert.Equal(t, int64(4711), rng.Seed())
}
