package ot

import (
	"iter"

	"github.com/emirpasic/gods/v2/sets/treeset"
)

// uinteger constrains the element types usable in an IntSet. Layout
// structures index by uint16 (glyphs, feature indices) or uint32
// (byte offsets, tags).
type uinteger interface {
	~uint16 | ~uint32
}

// IntSet is an ordered set of unsigned integers. It is used for
// visited-offset bookkeeping, feature-index filters and closure result
// sets. Iteration order is always ascending.
//
// The zero value is not usable; create instances with NewIntSet.
type IntSet[T uinteger] struct {
	set *treeset.Set[T]
}

// NewIntSet creates an IntSet holding the given values.
func NewIntSet[T uinteger](values ...T) *IntSet[T] {
	s := &IntSet[T]{
		set: treeset.NewWith[T](func(x, y T) int {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}),
	}
	s.set.Add(values...)
	return s
}

// Add inserts values into the set.
func (s *IntSet[T]) Add(values ...T) {
	s.set.Add(values...)
}

// Contains reports membership of v.
func (s *IntSet[T]) Contains(v T) bool {
	if s == nil {
		return false
	}
	return s.set.Contains(v)
}

// Len returns the number of members.
func (s *IntSet[T]) Len() int {
	if s == nil {
		return 0
	}
	return s.set.Size()
}

// IsEmpty reports whether the set has no members.
func (s *IntSet[T]) IsEmpty() bool {
	return s.Len() == 0
}

// Values returns all members in ascending order.
func (s *IntSet[T]) Values() []T {
	if s == nil {
		return nil
	}
	return s.set.Values()
}

// Range iterates members in ascending order.
func (s *IntSet[T]) Range() iter.Seq[T] {
	return func(yield func(T) bool) {
		if s == nil {
			return
		}
		it := s.set.Iterator()
		for it.Next() {
			if !yield(it.Value()) {
				return
			}
		}
	}
}

// AddAll inserts all members of other, i.e. forms the union in place.
func (s *IntSet[T]) AddAll(other *IntSet[T]) {
	if other == nil {
		return
	}
	it := other.set.Iterator()
	for it.Next() {
		s.set.Add(it.Value())
	}
}

// Union returns a new set holding the members of both sets.
func (s *IntSet[T]) Union(other *IntSet[T]) *IntSet[T] {
	u := NewIntSet[T]()
	u.AddAll(s)
	u.AddAll(other)
	return u
}

// Equal reports whether both sets hold exactly the same members.
func (s *IntSet[T]) Equal(other *IntSet[T]) bool {
	if s.Len() != other.Len() {
		return false
	}
	a, b := s.Values(), other.Values()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
