package polyindex_test

import (
	"cmp"
	"fmt"
	"testing"

	"github.com/hupe1980/polyindex"
	"github.com/hupe1980/polyindex/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewLookup(t *testing.T) {
	c, _ := newPersons(t, testutil.GeneratePersons(3))

	_, err := polyindex.OrderedBy[int](c, "missing")
	assert.ErrorIs(t, err, polyindex.ErrUnknownIndex)
	_, err = polyindex.HashedBy[string](c, "missing")
	assert.ErrorIs(t, err, polyindex.ErrUnknownIndex)
	_, err = polyindex.SequencedBy(c, "missing")
	assert.ErrorIs(t, err, polyindex.ErrUnknownIndex)

	var kindErr *polyindex.IndexKindError

	_, err = polyindex.OrderedBy[string](c, testutil.IndexID)
	require.ErrorAs(t, err, &kindErr)
	assert.Equal(t, "id", kindErr.Index)
	assert.Contains(t, kindErr.Want, "string")

	_, err = polyindex.OrderedBy[string](c, testutil.IndexEmail)
	require.ErrorAs(t, err, &kindErr)
	assert.Equal(t, "hashed_unique", kindErr.Got)

	_, err = polyindex.HashedBy[int](c, testutil.IndexEmail)
	assert.ErrorAs(t, err, &kindErr)
	_, err = polyindex.HashedBy[int](c, testutil.IndexID)
	assert.ErrorAs(t, err, &kindErr)
	_, err = polyindex.SequencedBy(c, testutil.IndexAge)
	assert.ErrorAs(t, err, &kindErr)

	byID, err := polyindex.OrderedBy[int](c, testutil.IndexID)
	require.NoError(t, err)
	assert.Equal(t, "id", byID.Name())
	assert.True(t, byID.Unique())
	assert.Equal(t, 3, byID.Len())

	byAge, err := polyindex.OrderedBy[int](c, testutil.IndexAge)
	require.NoError(t, err)
	assert.False(t, byAge.Unique())
}

func TestOrderedViewRange(t *testing.T) {
	c, err := polyindex.New(testutil.PersonIndexes())
	require.NoError(t, err)
	for i, age := range []int{40, 20, 35, 25, 30} {
		_, err := c.Insert(Person{ID: i, Email: fmt.Sprint(i), Age: age})
		require.NoError(t, err)
	}

	byAge, err := polyindex.OrderedBy[int](c, testutil.IndexAge)
	require.NoError(t, err)

	ages := func(v *polyindex.OrderedView[Person, int], lo, hi polyindex.Bound[int]) []int {
		var out []int
		for _, p := range v.Range(lo, hi) {
			out = append(out, p.Age)
		}
		return out
	}

	tests := []struct {
		name   string
		lo, hi polyindex.Bound[int]
		want   []int
	}{
		{"HalfOpen", polyindex.Inclusive(25), polyindex.Exclusive(35), []int{25, 30}},
		{"Closed", polyindex.Inclusive(25), polyindex.Inclusive(35), []int{25, 30, 35}},
		{"OpenLow", polyindex.Exclusive(25), polyindex.Unbounded[int](), []int{30, 35, 40}},
		{"OpenHigh", polyindex.Unbounded[int](), polyindex.Exclusive(30), []int{20, 25}},
		{"All", polyindex.Unbounded[int](), polyindex.Unbounded[int](), []int{20, 25, 30, 35, 40}},
		{"Empty", polyindex.Inclusive(31), polyindex.Exclusive(35), nil},
		{"Inverted", polyindex.Inclusive(35), polyindex.Exclusive(25), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ages(byAge, tt.lo, tt.hi))
		})
	}

	t.Run("Between", func(t *testing.T) {
		var got []int
		for _, p := range byAge.Between(25, 35) {
			got = append(got, p.Age)
		}
		assert.Equal(t, []int{25, 30}, got)
	})

	t.Run("Restartable", func(t *testing.T) {
		seq := byAge.Between(20, 40)
		first := ids(seq)
		assert.Equal(t, first, ids(seq))
		assert.Len(t, first, 4)
	})

	t.Run("EarlyBreak", func(t *testing.T) {
		n := 0
		for range byAge.Ascend() {
			n++
			if n == 2 {
				break
			}
		}
		assert.Equal(t, 2, n)
	})

	t.Run("Descend", func(t *testing.T) {
		var got []int
		for _, p := range byAge.Descend() {
			got = append(got, p.Age)
		}
		assert.Equal(t, []int{40, 35, 30, 25, 20}, got)
	})

	t.Run("MinMax", func(t *testing.T) {
		_, lo, ok := byAge.Min()
		require.True(t, ok)
		assert.Equal(t, 20, lo.Age)
		_, hi, ok := byAge.Max()
		require.True(t, ok)
		assert.Equal(t, 40, hi.Age)
	})
}

func TestOrderedViewNonUnique(t *testing.T) {
	persons := testutil.GeneratePersons(30)
	c, refs := newPersons(t, persons)

	byName, err := polyindex.OrderedBy[string](c, testutil.IndexName)
	require.NoError(t, err)

	assert.Equal(t, 3, byName.Count("John"))
	assert.True(t, byName.Contains("Mary"))
	assert.Equal(t, []int{0, 10, 20}, ids(byName.Find("John")))

	ref, p, ok := byName.FindOne("Steve")
	require.True(t, ok)
	assert.Equal(t, refs[2], ref)
	assert.Equal(t, 2, p.ID)

	_, err = byName.Get("Nobody")
	assert.ErrorIs(t, err, polyindex.ErrNotFound)

	n, err := byName.Erase("John")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 27, c.Len())
	assert.False(t, byName.Contains("John"))

	_, err = byName.Erase("John")
	assert.ErrorIs(t, err, polyindex.ErrNotFound)
	require.NoError(t, c.Check())
}

func TestHashedView(t *testing.T) {
	persons := testutil.GeneratePersons(50)
	c, refs := newPersons(t, persons)

	byEmail, err := polyindex.HashedBy[string](c, testutil.IndexEmail)
	require.NoError(t, err)
	assert.Equal(t, "email", byEmail.Name())
	assert.Equal(t, 50, byEmail.Len())

	p, err := byEmail.Get(persons[7].Email)
	require.NoError(t, err)
	assert.Equal(t, persons[7], p)

	_, err = byEmail.Get("nobody@example.com")
	assert.ErrorIs(t, err, polyindex.ErrNotFound)

	seen := map[int]bool{}
	for _, p := range byEmail.All() {
		seen[p.ID] = true
	}
	assert.Len(t, seen, 50)

	require.NoError(t, byEmail.Erase(persons[7].Email))
	assert.False(t, c.Contains(refs[7]))
	assert.ErrorIs(t, byEmail.Erase(persons[7].Email), polyindex.ErrNotFound)
	require.NoError(t, c.Check())
}

type entry struct {
	Key   string
	Value int
}

func TestHashedIndexConstantHasher(t *testing.T) {
	c, err := polyindex.New([]polyindex.IndexSpec[entry]{
		polyindex.HashedUnique("key", func(e entry) string { return e.Key }, func(uint64, string) uint64 { return 42 }),
		polyindex.OrderedNonUnique("value", func(e entry) int { return e.Value }, cmp.Compare[int]),
	})
	require.NoError(t, err)

	refs := make([]polyindex.Ref, 200)
	for i := range refs {
		refs[i], err = c.Insert(entry{Key: fmt.Sprintf("k%d", i), Value: i % 7})
		require.NoError(t, err)
	}
	_, err = c.Insert(entry{Key: "k17"})
	require.ErrorIs(t, err, polyindex.ErrDuplicateKey)

	byKey, err := polyindex.HashedBy[string](c, "key")
	require.NoError(t, err)
	for i := range refs {
		ref, e, ok := byKey.Find(fmt.Sprintf("k%d", i))
		require.True(t, ok)
		assert.Equal(t, refs[i], ref)
		assert.Equal(t, i%7, e.Value)
	}

	for i := 0; i < len(refs); i += 2 {
		require.NoError(t, c.Erase(refs[i]))
	}
	for i := range refs {
		assert.Equal(t, i%2 == 1, byKey.Contains(fmt.Sprintf("k%d", i)), "k%d", i)
	}

	// Every key shares one home slot, so some entry sits far from it.
	st := byKey.Stats()
	assert.Equal(t, 100, st.Len)
	assert.Greater(t, st.MaxProbe, 0)
	require.NoError(t, c.Check())
}

func TestHashLoadFactor(t *testing.T) {
	tests := []struct {
		name         string
		loadFactor   float64
		wantCapacity int
	}{
		{"Half", 0.5, 16},
		{"Dense", 0.9, 8},
		{"ZeroSelectsDefault", 0, 8},
		{"NegativeSelectsDefault", -0.25, 8},
		{"OneSelectsDefault", 1, 8},
		{"AboveOneSelectsDefault", 1.5, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := polyindex.New([]polyindex.IndexSpec[entry]{
				polyindex.HashedUnique("key", func(e entry) string { return e.Key }, polyindex.StringHasher),
			}, polyindex.WithHashSeed(4711), polyindex.WithHashLoadFactor(tt.loadFactor))
			require.NoError(t, err)

			// Five keys fit eight slots unless the table grows above half load.
			for i := range 5 {
				_, err := c.Insert(entry{Key: fmt.Sprintf("k%d", i), Value: i})
				require.NoError(t, err)
			}

			byKey, err := polyindex.HashedBy[string](c, "key")
			require.NoError(t, err)
			st := byKey.Stats()
			assert.Equal(t, 5, st.Len)
			assert.Equal(t, tt.wantCapacity, st.Capacity)
			assert.Equal(t, uint64(4711), st.Seed)
			assert.Zero(t, st.Reseeds)
		})
	}
}

func TestDefaultHasher(t *testing.T) {
	type key struct {
		A int
		B string
	}
	type rec struct {
		K key
	}

	c, err := polyindex.New([]polyindex.IndexSpec[rec]{
		polyindex.HashedUnique[rec, key]("k", func(r rec) key { return r.K }, nil),
	})
	require.NoError(t, err)

	for i := range 100 {
		_, err := c.Insert(rec{K: key{A: i, B: "x"}})
		require.NoError(t, err)
	}
	_, err = c.Insert(rec{K: key{A: 5, B: "x"}})
	assert.ErrorIs(t, err, polyindex.ErrDuplicateKey)

	byK, err := polyindex.HashedBy[key](c, "k")
	require.NoError(t, err)
	assert.True(t, byK.Contains(key{A: 99, B: "x"}))
	assert.False(t, byK.Contains(key{A: 99, B: "y"}))
}
