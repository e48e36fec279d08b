package testutil

import (
	"cmp"
	"strconv"
	"strings"

	"github.com/hupe1980/polyindex"
)

// Person is the record used by the test suite and the benchmarks.
type Person struct {
	ID    int
	Name  string
	Email string
	Age   int
	City  string
}

var (
	names  = []string{"John", "Mary", "Steve", "Jane", "Michael", "Sarah", "Robert", "Emily", "William", "Olivia"}
	cities = []string{"New York", "London", "Paris", "Tokyo", "Berlin", "Sydney", "Moscow", "Beijing", "Mumbai", "Rio"}
)

// Index names used by PersonIndexes.
const (
	IndexID       = "id"
	IndexEmail    = "email"
	IndexName     = "name"
	IndexAge      = "age"
	IndexCity     = "city"
	IndexNameCity = "name_city"
	IndexArrival  = "arrival"
)

// GeneratePersons returns count deterministic persons. Person i has ID i,
// Name names[i%10], Email "<name><i>@example.com", Age 20+i%60 and
// City cities[i%10]. IDs and emails are unique.
func GeneratePersons(count int) []Person {
	persons := make([]Person, count)
	for i := range persons {
		name := names[i%len(names)]
		persons[i] = Person{
			ID:    i,
			Name:  name,
			Email: name + strconv.Itoa(i) + "@example.com",
			Age:   20 + i%60,
			City:  cities[i%len(cities)],
		}
	}
	return persons
}

// PersonIndexes returns the standard six indexes over Person:
//
//	id       ordered unique
//	email    hashed unique
//	name     ordered non-unique
//	age      ordered non-unique
//	city     ordered non-unique
//	arrival  sequenced
func PersonIndexes() []polyindex.IndexSpec[Person] {
	return []polyindex.IndexSpec[Person]{
		polyindex.OrderedUnique(IndexID, func(p Person) int { return p.ID }, cmp.Compare[int]),
		polyindex.HashedUnique(IndexEmail, func(p Person) string { return p.Email }, polyindex.StringHasher),
		polyindex.OrderedNonUnique(IndexName, func(p Person) string { return p.Name }, strings.Compare),
		polyindex.OrderedNonUnique(IndexAge, func(p Person) int { return p.Age }, cmp.Compare[int]),
		polyindex.OrderedNonUnique(IndexCity, func(p Person) string { return p.City }, strings.Compare),
		polyindex.Sequenced[Person](IndexArrival),
	}
}

// NameCityIndex is a composite (name, city) index, the extra index of the
// separate-containers baseline.
func NameCityIndex() polyindex.IndexSpec[Person] {
	return polyindex.OrderedNonUnique(IndexNameCity,
		polyindex.Composite(func(p Person) string { return p.Name }, func(p Person) string { return p.City }),
		polyindex.ComparePair(strings.Compare, strings.Compare))
}

// PopulateContainer builds a container with PersonIndexes and inserts
// persons in order.
func PopulateContainer(persons []Person, opts ...polyindex.Option) (*polyindex.Container[Person], error) {
	opts = append([]polyindex.Option{polyindex.WithCapacity(len(persons))}, opts...)
	c, err := polyindex.New(PersonIndexes(), opts...)
	if err != nil {
		return nil, err
	}
	for _, p := range persons {
		if _, err := c.Insert(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}
