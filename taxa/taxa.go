// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package taxa implements a registry of taxon names.
//
// The registry assigns to each taxon name
// a stable index,
// in the order in which the names are first seen.
package taxa

import (
	"slices"
	"strings"
)

// A Set is a registry of taxon names.
type Set struct {
	names []string
	index map[string]int
}

// New creates a new empty registry.
func New() *Set {
	return &Set{
		index: make(map[string]int),
	}
}

// Register adds one or more names to the registry.
// Names already in the registry keep their index.
func (s *Set) Register(names ...string) {
	for _, n := range names {
		n = canon(n)
		if n == "" {
			continue
		}
		if _, ok := s.index[n]; ok {
			continue
		}
		s.index[n] = len(s.names)
		s.names = append(s.names, n)
	}
}

// Index returns the index of a taxon name.
func (s *Set) Index(name string) (int, bool) {
	i, ok := s.index[canon(name)]
	return i, ok
}

// Name returns the name of the taxon with the given index.
func (s *Set) Name(i int) string {
	if i < 0 || i >= len(s.names) {
		return ""
	}
	return s.names[i]
}

// Names returns the names in the registry
// ordered by its index.
func (s *Set) Names() []string {
	return slices.Clone(s.names)
}

// Len returns the number of taxa in the registry.
func (s *Set) Len() int {
	return len(s.names)
}

func canon(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
