package ot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntSetBasics(t *testing.T) {
	s := NewIntSet[uint16](7, 3, 3, 5)
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains(3))
	assert.False(t, s.Contains(4))
	assert.Equal(t, []uint16{3, 5, 7}, s.Values())
	s.Add(4)
	assert.Equal(t, []uint16{3, 4, 5, 7}, s.Values())
}

func TestIntSetUnion(t *testing.T) {
	a := NewIntSet[uint16](1, 2)
	b := NewIntSet[uint16](2, 3)
	u := a.Union(b)
	assert.Equal(t, []uint16{1, 2, 3}, u.Values())
	a.AddAll(b)
	assert.True(t, a.Equal(u))
}

func TestIntSetRange(t *testing.T) {
	s := NewIntSet[uint32](100, 2, 50)
	var got []uint32
	for v := range s.Range() {
		got = append(got, v)
	}
	assert.Equal(t, []uint32{2, 50, 100}, got)
}

func TestIntSetNilSafety(t *testing.T) {
	var s *IntSet[uint16]
	assert.Equal(t, 0, s.Len())
	assert.True(t, s.IsEmpty())
	assert.False(t, s.Contains(1))
	assert.Nil(t, s.Values())
	for range s.Range() {
		t.Fatal("range over nil set must not yield")
	}
}
