// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import (
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/js-arias/timetree"
)

// A Source is a forward-only sequence of trees.
// Next returns io.EOF when there are no more trees.
type Source interface {
	Next() (*Tree, error)
}

// A Lener is a Source that knows in advance
// the number of trees in the sequence.
type Lener interface {
	Len() int
}

// SliceSource is a Source for a slice of trees.
type SliceSource struct {
	trees []*Tree
	next  int
}

// NewSliceSource returns a Source that reads trees
// from a slice.
func NewSliceSource(trees []*Tree) *SliceSource {
	return &SliceSource{trees: trees}
}

// Next returns the next tree of the slice.
func (s *SliceSource) Next() (*Tree, error) {
	if s.next >= len(s.trees) {
		return nil, io.EOF
	}
	t := s.trees[s.next]
	s.next++
	return t, nil
}

// Len returns the number of trees in the slice.
func (s *SliceSource) Len() int {
	return len(s.trees)
}

// CollectionSource is a Source
// that reads the trees of a time tree collection.
// Trees are converted only when requested.
type CollectionSource struct {
	c     *timetree.Collection
	names []string
	next  int
}

// NewCollectionSource returns a Source
// that reads the trees of a collection
// ordered by name.
// Numbers inside names are compared by value,
// so "mcmc.2" comes before "mcmc.10".
func NewCollectionSource(c *timetree.Collection) *CollectionSource {
	names := c.Names()
	SortNames(names)
	return &CollectionSource{
		c:     c,
		names: names,
	}
}

// Next returns the next tree of the collection.
func (s *CollectionSource) Next() (*Tree, error) {
	for s.next < len(s.names) {
		tt := s.c.Tree(s.names[s.next])
		s.next++
		if tt == nil {
			continue
		}
		return FromTimeTree(tt), nil
	}
	return nil, io.EOF
}

// Len returns the number of trees in the collection.
func (s *CollectionSource) Len() int {
	return len(s.names)
}

// SortNames sorts a list of tree names
// in the order used by a CollectionSource.
func SortNames(names []string) {
	slices.SortStableFunc(names, naturalCompare)
}

// naturalCompare compares two strings
// reading runs of digits as numbers.
func naturalCompare(a, b string) int {
	for a != "" && b != "" {
		da, ra := digitPrefix(a)
		db, rb := digitPrefix(b)
		if da == "" || db == "" {
			if a[0] != b[0] {
				return strings.Compare(a[:1], b[:1])
			}
			a, b = a[1:], b[1:]
			continue
		}
		na, errA := strconv.ParseUint(da, 10, 64)
		nb, errB := strconv.ParseUint(db, 10, 64)
		if errA != nil || errB != nil {
			// too large for a number
			if c := strings.Compare(da, db); c != 0 {
				return c
			}
		} else if na != nb {
			if na < nb {
				return -1
			}
			return 1
		}
		if c := strings.Compare(da, db); c != 0 {
			// same value with different zero padding
			return c
		}
		a, b = ra, rb
	}
	return strings.Compare(a, b)
}

func digitPrefix(s string) (digits, rest string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i], s[i:]
}
