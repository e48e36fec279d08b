package ordered

import (
	"cmp"
	"iter"
	"slices"
	"testing"

	"github.com/hupe1980/polyindex/internal/arena"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ref(i uint32) arena.Ref {
	return arena.Ref{Index: i, Gen: 1}
}

func collectKeys[K any](seq iter.Seq2[K, arena.Ref]) []K {
	var keys []K
	for k := range seq {
		keys = append(keys, k)
	}
	return keys
}

func TestIndex_Unique(t *testing.T) {
	idx := New(cmp.Compare[int], true, 0)
	assert.True(t, idx.Unique())

	_, err := idx.Insert(10, ref(1))
	require.NoError(t, err)
	_, err = idx.Insert(5, ref(2))
	require.NoError(t, err)

	existing, err := idx.Insert(10, ref(3))
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Equal(t, ref(1), existing)
	assert.Equal(t, 2, idx.Len(), "failed insert must leave the index unchanged")

	got, ok := idx.First(10)
	require.True(t, ok)
	assert.Equal(t, ref(1), got)
	assert.Equal(t, 1, idx.Count(10))
	assert.False(t, idx.Contains(7))

	assert.ErrorIs(t, idx.Erase(10, ref(9)), ErrNotFound)
	require.NoError(t, idx.Erase(10, ref(1)))
	assert.ErrorIs(t, idx.Erase(10, ref(1)), ErrNotFound)
	assert.Equal(t, 1, idx.Len())
}

func TestIndex_NonUniqueInsertionOrder(t *testing.T) {
	idx := New(cmp.Compare[string], false, 4)

	for i, name := range []string{"mary", "john", "mary", "anne", "mary"} {
		_, err := idx.Insert(name, ref(uint32(i)))
		require.NoError(t, err)
	}

	assert.Equal(t, []arena.Ref{ref(0), ref(2), ref(4)}, slices.Collect(idx.Find("mary")))
	assert.Equal(t, 3, idx.Count("mary"))
	assert.Empty(t, slices.Collect(idx.Find("zoe")))

	require.NoError(t, idx.Erase("mary", ref(2)))
	assert.Equal(t, []arena.Ref{ref(0), ref(4)}, slices.Collect(idx.Find("mary")))

	// Re-inserting lands after existing equal keys.
	_, err := idx.Insert("mary", ref(2))
	require.NoError(t, err)
	assert.Equal(t, []arena.Ref{ref(0), ref(4), ref(2)}, slices.Collect(idx.Find("mary")))

	assert.ErrorIs(t, idx.Erase("john", ref(0)), ErrNotFound, "ref 0 is stored under mary")
	assert.Equal(t, []string{"anne", "john", "mary", "mary", "mary"}, collectKeys(idx.Ascend()))
}

func TestIndex_NonUniqueRejectsSecondEntryForRef(t *testing.T) {
	idx := New(cmp.Compare[int], false, 0)
	_, err := idx.Insert(1, ref(1))
	require.NoError(t, err)
	_, err = idx.Insert(2, ref(1))
	assert.Error(t, err)
	assert.Equal(t, 1, idx.Len())
}

func TestIndex_Range(t *testing.T) {
	idx := New(cmp.Compare[int], false, 0)
	for i, age := range []int{40, 20, 35, 25, 30, 30} {
		_, err := idx.Insert(age, ref(uint32(i)))
		require.NoError(t, err)
	}

	tests := []struct {
		name string
		lo   Bound[int]
		hi   Bound[int]
		want []int
	}{
		{"half open", Inclusive(25), Exclusive(35), []int{25, 30, 30}},
		{"closed", Inclusive(25), Inclusive(35), []int{25, 30, 30, 35}},
		{"open", Exclusive(25), Exclusive(35), []int{30, 30}},
		{"no lower", Unbounded[int](), Exclusive(30), []int{20, 25}},
		{"no upper", Exclusive(30), Unbounded[int](), []int{35, 40}},
		{"everything", Unbounded[int](), Unbounded[int](), []int{20, 25, 30, 30, 35, 40}},
		{"empty", Inclusive(36), Exclusive(40), nil},
		{"inverted", Inclusive(40), Exclusive(20), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, collectKeys(idx.Range(tt.lo, tt.hi)))
		})
	}
}

func TestIndex_RangeIsRestartable(t *testing.T) {
	idx := New(cmp.Compare[int], true, 0)
	for i := 0; i < 10; i++ {
		_, err := idx.Insert(i, ref(uint32(i)))
		require.NoError(t, err)
	}

	seq := idx.Range(Inclusive(3), Exclusive(6))
	first := collectKeys(seq)
	second := collectKeys(seq)
	assert.Equal(t, []int{3, 4, 5}, first)
	assert.Equal(t, first, second)

	// Early termination.
	var got []int
	for k := range seq {
		got = append(got, k)
		break
	}
	assert.Equal(t, []int{3}, got)
}

func TestIndex_MinMaxDescendClear(t *testing.T) {
	idx := New(cmp.Compare[int], false, 0)
	_, _, ok := idx.Min()
	assert.False(t, ok)

	for i, k := range []int{3, 1, 2, 3} {
		_, err := idx.Insert(k, ref(uint32(i)))
		require.NoError(t, err)
	}

	k, r, ok := idx.Min()
	require.True(t, ok)
	assert.Equal(t, 1, k)
	assert.Equal(t, ref(1), r)

	k, r, ok = idx.Max()
	require.True(t, ok)
	assert.Equal(t, 3, k)
	assert.Equal(t, ref(3), r, "newest duplicate sorts last")

	assert.Equal(t, []int{3, 3, 2, 1}, collectKeys(idx.Descend()))

	idx.Clear()
	assert.Equal(t, 0, idx.Len())
	_, err := idx.Insert(3, ref(0))
	require.NoError(t, err, "clear must forget refs")
}

func TestBound(t *testing.T) {
	k, ok := Unbounded[int]().Key()
	assert.False(t, ok)
	assert.Zero(t, k)

	k, ok = Inclusive(4).Key()
	assert.True(t, ok)
	assert.Equal(t, 4, k)
	assert.True(t, Inclusive(4).IsInclusive())
	assert.False(t, Exclusive(4).IsInclusive())
}
