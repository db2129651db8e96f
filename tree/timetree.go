// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import (
	"fmt"
	"math"

	"github.com/js-arias/timetree"
)

// MillionYears is the number of years
// of a branch length unit
// when trees are converted from (or to) time trees.
const MillionYears = 1_000_000

// FromTimeTree returns a tree from a time calibrated tree.
// Branch lengths are in million years.
func FromTimeTree(tt *timetree.Tree) *Tree {
	t := New(tt.Name())
	copyTimeNode(t, tt, tt.Root(), t.Root())
	return t
}

func copyTimeNode(t *Tree, tt *timetree.Tree, src, dst int) {
	age := tt.Age(src)
	for _, c := range tt.Children(src) {
		length := float64(age-tt.Age(c)) / MillionYears
		if length < 0 {
			length = 0
		}
		taxon := ""
		if tt.IsTerm(c) {
			taxon = tt.Taxon(c)
		}
		id, err := t.Add(dst, length, taxon)
		if err != nil {
			// time trees have valid lengths
			// and unique taxon names
			panic(err)
		}
		copyTimeNode(t, tt, c, id)
	}
}

// ToTimeTree returns a time calibrated tree.
// Branch lengths are interpreted as million years,
// and the age of the root
// is the largest distance from the root to any terminal.
func ToTimeTree(t *Tree) (*timetree.Tree, error) {
	depth := make([]int64, len(t.nodes))
	var rootAge int64
	for _, id := range t.PreOrder() {
		n := t.nodes[id]
		if n.parent >= 0 {
			depth[id] = depth[n.parent] + int64(math.Round(n.length*MillionYears))
		}
		if depth[id] > rootAge {
			rootAge = depth[id]
		}
	}

	tt := timetree.New(t.name, rootAge)
	ids := make([]int, len(t.nodes))
	ids[t.Root()] = tt.Root()
	for _, id := range t.PreOrder() {
		n := t.nodes[id]
		if n.parent < 0 {
			continue
		}
		brLen := depth[id] - depth[n.parent]
		nID, err := tt.Add(ids[n.parent], brLen, n.taxon)
		if err != nil {
			return nil, fmt.Errorf("tree %q: node %d: %v", t.name, id, err)
		}
		ids[id] = nID
	}
	return tt, nil
}

// PreOrder returns the IDs of the nodes
// in pre-order
// (i.e., parents always before their children).
func (t *Tree) PreOrder() []int {
	ids := make([]int, 0, len(t.nodes))
	stack := []int{0}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		ids = append(ids, id)
		ch := t.nodes[id].children
		for i := len(ch) - 1; i >= 0; i-- {
			stack = append(stack, ch[i])
		}
	}
	return ids
}
