// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package split

import (
	"github.com/js-arias/phycons/taxa"
	"github.com/js-arias/phycons/tree"
)

// An Observation is a split found in a tree,
// with its associated value.
// The value is the branch length,
// or the age of the node,
// for clock-like trees.
type Observation struct {
	Split Split
	Value float64
}

// A Term is the value of the terminal branch of a taxon.
type Term struct {
	Taxon int
	Value float64
}

// A Sample is the set of observations
// extracted from a single tree.
type Sample struct {
	// Splits are the non-trivial splits of the tree,
	// each split is found only once.
	Splits []Observation

	// Terms are the values of the terminal branches.
	Terms []Term

	// RootAge is the age of the root of the tree.
	RootAge float64
}

// Extract returns the splits of a tree.
//
// The terminals of the tree are added to the taxon registry.
// Trees with less than four terminals
// do not have any usable split.
//
// If clock is false,
// the tree is treated as unrooted,
// and each split is stored as the side
// that does not contain the taxon
// with the lowest index found in the tree.
// The value of each split is its branch length.
// If the root has two descendants,
// both descendant branches define the same split,
// so they are reported as a single split
// whose length is the sum of both branches.
// The same is true when one of the descendants
// is a terminal:
// its terminal value includes the length
// of its sister branch.
//
// If clock is true,
// the tree is treated as rooted:
// the root is taken as an additional taxon,
// so each split is stored as the side
// that does not contain the root
// (i.e., the clade below the node).
// The value of each split is the age of the node.
func Extract(t *tree.Tree, reg *taxa.Set, clock bool) Sample {
	pre := t.PreOrder()
	for _, id := range pre {
		if tax := t.Taxon(id); tax != "" {
			reg.Register(tax)
		}
	}

	ages := t.Ages()
	sides := make([]Split, len(pre))
	var s Sample
	s.RootAge = ages[t.Root()]

	// a bifurcating root makes a single unrooted edge
	rootEdge := make(map[int]float64)
	if ch := t.Children(t.Root()); !clock && len(ch) == 2 {
		rootEdge[ch[0]] = t.Len(ch[1])
		rootEdge[ch[1]] = t.Len(ch[0])
	}

	post := t.PostOrder()
	for _, id := range post {
		if tax := t.Taxon(id); tax != "" {
			idx, _ := reg.Index(tax)
			sides[id] = New(idx)
			if id == t.Root() {
				continue
			}
			v := t.Len(id) + rootEdge[id]
			if clock {
				v = ages[id]
			}
			s.Terms = append(s.Terms, Term{Taxon: idx, Value: v})
			continue
		}
		side := New()
		for _, c := range t.Children(id) {
			side = side.union(sides[c])
		}
		sides[id] = side
	}

	all := sides[t.Root()]
	n := all.Count()
	if n < 4 {
		return s
	}
	ref := all.Members()[0]

	seen := make(map[string]int)
	for _, id := range post {
		if t.IsRoot(id) || t.Taxon(id) != "" {
			continue
		}
		side := sides[id]
		if clock {
			if c := side.Count(); c < 2 || c >= n {
				continue
			}
			k := side.Key()
			if _, ok := seen[k]; ok {
				// a node with a single descendant
				continue
			}
			seen[k] = len(s.Splits)
			s.Splits = append(s.Splits, Observation{Split: side, Value: ages[id]})
			continue
		}

		if side.Trivial(n) {
			continue
		}
		canon := side
		if side.Has(ref) {
			canon = all.difference(side)
		}
		k := canon.Key()
		if j, ok := seen[k]; ok {
			s.Splits[j].Value += t.Len(id)
			continue
		}
		seen[k] = len(s.Splits)
		s.Splits = append(s.Splits, Observation{Split: canon, Value: t.Len(id)})
	}
	return s
}

func (s Split) union(o Split) Split {
	return Split{b: s.bits().Union(o.bits())}
}

func (s Split) difference(o Split) Split {
	return Split{b: s.bits().Difference(o.bits())}
}
