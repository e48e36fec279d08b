package polyindex

import (
	"cmp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashers(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		assert.Equal(t, StringHasher(1, "ada"), StringHasher(1, "ada"))
		assert.NotEqual(t, StringHasher(1, "ada"), StringHasher(2, "ada"))
		assert.NotEqual(t, StringHasher(1, "ada"), StringHasher(1, "bob"))
	})

	t.Run("Int", func(t *testing.T) {
		assert.Equal(t, IntHasher(7, 42), IntHasher(7, 42))
		assert.NotEqual(t, IntHasher(7, 42), IntHasher(8, 42))
		assert.NotEqual(t, IntHasher[int32](7, -1), IntHasher[int32](7, 1))
	})

	t.Run("Comparable", func(t *testing.T) {
		type key struct {
			A int
			B string
		}
		k := key{A: 1, B: "x"}
		assert.Equal(t, ComparableHasher(3, k), ComparableHasher(3, k))
		assert.NotEqual(t, ComparableHasher(3, k), ComparableHasher(4, k))
	})

	t.Run("Pair", func(t *testing.T) {
		h := PairHasher(StringHasher, IntHasher[int])
		a := Pair[string, int]{First: "a", Second: 1}
		b := Pair[string, int]{First: "a", Second: 2}

		assert.Equal(t, h(5, a), h(5, a))
		assert.NotEqual(t, h(5, a), h(5, b))
		assert.NotEqual(t, h(5, a), h(6, a))
	})
}

func TestComposite(t *testing.T) {
	type rec struct {
		Name string
		Age  int
	}

	key := Composite(func(r rec) string { return r.Name }, func(r rec) int { return r.Age })
	compare := ComparePair(strings.Compare, cmp.Compare[int])

	assert.Equal(t, Pair[string, int]{First: "ada", Second: 36}, key(rec{Name: "ada", Age: 36}))
	assert.Negative(t, compare(key(rec{"ada", 36}), key(rec{"bob", 1})))
	assert.Negative(t, compare(key(rec{"ada", 1}), key(rec{"ada", 36})))
	assert.Zero(t, compare(key(rec{"ada", 36}), key(rec{"ada", 36})))
}
