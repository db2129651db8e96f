// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package consensus

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/js-arias/phycons/split"
	"github.com/js-arias/phycons/tree"
)

// Name is the name of the consensus tree.
const Name = "consensus"

type clade struct {
	s   split.Split
	rec *Record
	id  int
	age float64
}

// Build returns a consensus tree
// from a set of accepted
// (pairwise compatible)
// splits.
//
// Each split becomes an internal node,
// whose parent is the smallest split
// that contains it.
// Unrooted trees are rooted at the taxon 0.
// Each taxon is attached to the smallest split
// that contains it,
// or to the root.
// Branch lengths are the summary value of the split.
// If the trees are clock-like,
// the summary value is the age of the node,
// and branch lengths are calculated from the ages,
// so all terminals are aligned at age 0.
func Build(tab *Table, accepted []*Record, p Param) (*tree.Tree, error) {
	n := tab.Taxa().Len()

	// in unrooted trees,
	// splits are reoriented to the side without the taxon 0,
	// so they are either nested or disjoint.
	var clades []*clade
	seen := make(map[string]bool, len(accepted))
	for _, r := range accepted {
		s := r.Split
		if p.Clock {
			if c := s.Count(); c < 2 || c >= n {
				continue
			}
		} else {
			s = s.Canonical(0, n)
			if s.Trivial(n) {
				continue
			}
		}
		k := s.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		clades = append(clades, &clade{s: s, rec: r})
	}
	slices.SortStableFunc(clades, func(a, b *clade) int {
		if c := cmp.Compare(b.s.Count(), a.s.Count()); c != 0 {
			return c
		}
		return a.s.Compare(b.s)
	})

	t := tree.New(Name)
	var rootAge float64
	if p.Clock && tab.RootAge() != nil {
		rootAge = tab.RootAge().Value()
	}

	names := tab.Taxa().Names()
	for i, c := range clades {
		parent := -1
		for j := i - 1; j >= 0; j-- {
			o := clades[j]
			if c.s.IsSubset(o.s) {
				if parent < 0 {
					parent = j
				}
				continue
			}
			if !c.s.Disjoint(o.s) {
				conflict := fmt.Sprintf("splits %s and %s are in conflict", c.s.Format(names), o.s.Format(names))
				return nil, fmt.Errorf("%w: %s: try a threshold lower than %.3f", ErrDiscordant, conflict, p.Threshold)
			}
		}

		pID, pAge := t.Root(), rootAge
		if parent >= 0 {
			pID, pAge = clades[parent].id, clades[parent].age
		}

		length := c.rec.Values.Value()
		if p.Clock {
			c.age = min(length, pAge)
			length = pAge - c.age
		}
		id, err := t.Add(pID, length, "")
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDiscordant, err)
		}
		t.SetSupport(id, float64(c.rec.Count)/float64(tab.Trees()))
		c.id = id
	}

	for tx, name := range names {
		pID, pAge := t.Root(), rootAge
		for j := len(clades) - 1; j >= 0; j-- {
			if clades[j].s.Has(tx) {
				pID, pAge = clades[j].id, clades[j].age
				break
			}
		}

		length := pAge
		if !p.Clock {
			length = 0
			if tc := tab.Term(tx); tc != nil {
				length = tc.Value()
			}
		}
		if _, err := t.Add(pID, length, name); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDiscordant, err)
		}
	}
	return t, nil
}
