// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package split implements bipartitions (splits)
// of a set of taxa.
//
// A split is stored as the set of taxon indices
// of one of its sides.
// A split and its complement
// are the same split,
// so a split is usually stored in a canonical form:
// the side that does not contain
// a reference taxon.
// In rooted trees,
// the root is the reference,
// so the canonical side is the clade
// defined by a node.
package split

import (
	"cmp"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// A Split is one side of a bipartition
// of a set of taxa.
type Split struct {
	b *bitset.BitSet
}

// New returns a split with the indicated taxon indices.
func New(members ...int) Split {
	b := &bitset.BitSet{}
	for _, m := range members {
		b.Set(uint(m))
	}
	return Split{b: b}
}

func (s Split) bits() *bitset.BitSet {
	if s.b == nil {
		return &bitset.BitSet{}
	}
	return s.b
}

// Count returns the number of taxa in the split side.
func (s Split) Count() int {
	return int(s.bits().Count())
}

// Has returns true if the taxon index is in the split side.
func (s Split) Has(i int) bool {
	if i < 0 {
		return false
	}
	return s.bits().Test(uint(i))
}

// Members returns the taxon indices of the split side,
// in increasing order.
func (s Split) Members() []int {
	b := s.bits()
	m := make([]int, 0, b.Count())
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		m = append(m, int(i))
	}
	return m
}

// Key returns a string that identifies the split side.
func (s Split) Key() string {
	var sb strings.Builder
	for i, m := range s.Members() {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(m))
	}
	return sb.String()
}

// Compare compares two splits by its bit pattern
// (the lexicographic order of its members).
func (s Split) Compare(o Split) int {
	a := s.Members()
	b := o.Members()
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := cmp.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

// Equal returns true if both split sides
// have the same taxa.
func (s Split) Equal(o Split) bool {
	return s.bits().Count() == o.bits().Count() && s.IsSubset(o)
}

// IsSubset returns true if s is a subset of o.
func (s Split) IsSubset(o Split) bool {
	return s.bits().DifferenceCardinality(o.bits()) == 0
}

// Disjoint returns true if s and o do not share any taxon.
func (s Split) Disjoint(o Split) bool {
	return s.bits().IntersectionCardinality(o.bits()) == 0
}

// Complement returns the other side of the split
// in a universe of n taxa.
func (s Split) Complement(n int) Split {
	b := &bitset.BitSet{}
	src := s.bits()
	for i := 0; i < n; i++ {
		if !src.Test(uint(i)) {
			b.Set(uint(i))
		}
	}
	return Split{b: b}
}

// Canonical returns the side of the split
// that does not contains the reference taxon,
// in a universe of n taxa.
func (s Split) Canonical(ref, n int) Split {
	if !s.Has(ref) {
		return s
	}
	return s.Complement(n)
}

// Trivial returns true if the split
// does not define an internal branch
// in a universe of n taxa,
// i.e.,
// one of its sides has less than two taxa.
func (s Split) Trivial(n int) bool {
	c := s.Count()
	return c < 2 || n-c < 2
}

// Compatible returns true if two splits
// can be found in the same tree,
// in a universe of n taxa.
//
// Two splits are compatible
// if at least one of the four intersections
// between its sides is empty.
func Compatible(a, b Split, n int) bool {
	ab, bb := a.bits(), b.bits()
	if ab.IntersectionCardinality(bb) == 0 {
		return true
	}
	if ab.DifferenceCardinality(bb) == 0 {
		return true
	}
	if bb.DifferenceCardinality(ab) == 0 {
		return true
	}
	return int(ab.UnionCardinality(bb)) >= n
}

// Format returns the split side
// using the names of the taxa.
func (s Split) Format(names []string) string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, m := range s.Members() {
		if i > 0 {
			sb.WriteByte(',')
		}
		if m < len(names) {
			sb.WriteString(names[m])
			continue
		}
		sb.WriteString(strconv.Itoa(m))
	}
	sb.WriteByte('}')
	return sb.String()
}

// String implements the fmt.Stringer interface.
func (s Split) String() string {
	return s.Format(nil)
}
