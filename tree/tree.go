// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package tree implements phylogenetic trees
// stored as an arena of nodes.
//
// Each node is identified by an integer ID,
// the root is always the node 0,
// and each node stores the ID of its parent
// and the IDs of its children.
// Branch lengths are stored as float64 values,
// without any assumed unit.
package tree

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// A Tree is a phylogenetic tree.
type Tree struct {
	name  string
	nodes []*node
	taxa  map[string]int
}

type node struct {
	id       int
	parent   int
	children []int

	length  float64
	taxon   string
	support float64
}

// New creates a new tree with a given name.
// The tree has a single node,
// the root.
func New(name string) *Tree {
	t := &Tree{
		name: strings.Join(strings.Fields(name), " "),
		taxa: make(map[string]int),
	}
	t.nodes = append(t.nodes, &node{
		id:      0,
		parent:  -1,
		support: math.NaN(),
	})
	return t
}

// Add adds a new node as a child of the indicated parent,
// with the indicated branch length.
// If taxon is not empty,
// the node will be a terminal
// with that taxon name.
// It returns the ID of the new node.
func (t *Tree) Add(parent int, length float64, taxon string) (int, error) {
	p, ok := t.node(parent)
	if !ok {
		return -1, fmt.Errorf("tree %q: parent node %d not found", t.name, parent)
	}
	if p.taxon != "" {
		return -1, fmt.Errorf("tree %q: parent node %d is a terminal [%s]", t.name, parent, p.taxon)
	}
	if length < 0 || math.IsNaN(length) || math.IsInf(length, 0) {
		return -1, fmt.Errorf("tree %q: invalid branch length %v", t.name, length)
	}

	taxon = strings.Join(strings.Fields(taxon), " ")
	if taxon != "" {
		if _, dup := t.taxa[taxon]; dup {
			return -1, fmt.Errorf("tree %q: taxon %q already in tree", t.name, taxon)
		}
	}

	n := &node{
		id:      len(t.nodes),
		parent:  parent,
		length:  length,
		taxon:   taxon,
		support: math.NaN(),
	}
	t.nodes = append(t.nodes, n)
	p.children = append(p.children, n.id)
	if taxon != "" {
		t.taxa[taxon] = n.id
	}
	return n.id, nil
}

func (t *Tree) node(id int) (*node, bool) {
	if id < 0 || id >= len(t.nodes) {
		return nil, false
	}
	return t.nodes[id], true
}

// Name returns the name of the tree.
func (t *Tree) Name() string {
	return t.name
}

// SetName sets the name of the tree.
func (t *Tree) SetName(name string) {
	t.name = strings.Join(strings.Fields(name), " ")
}

// Root returns the ID of the root node.
func (t *Tree) Root() int {
	return 0
}

// IsRoot returns true if the node is the root.
func (t *Tree) IsRoot(id int) bool {
	return id == 0
}

// Parent returns the ID of the parent of a node.
// It returns -1 for the root,
// or an invalid node.
func (t *Tree) Parent(id int) int {
	n, ok := t.node(id)
	if !ok {
		return -1
	}
	return n.parent
}

// Children returns the IDs of the children of a node.
func (t *Tree) Children(id int) []int {
	n, ok := t.node(id)
	if !ok {
		return nil
	}
	return slices.Clone(n.children)
}

// IsTerm returns true if the node is a terminal.
func (t *Tree) IsTerm(id int) bool {
	n, ok := t.node(id)
	if !ok {
		return false
	}
	return len(n.children) == 0
}

// Len returns the length of the branch
// that ends at the indicated node.
func (t *Tree) Len(id int) float64 {
	n, ok := t.node(id)
	if !ok {
		return 0
	}
	return n.length
}

// Taxon returns the taxon name of a node.
// Internal nodes return an empty string.
func (t *Tree) Taxon(id int) string {
	n, ok := t.node(id)
	if !ok {
		return ""
	}
	return n.taxon
}

// SetTaxon changes the taxon name of a terminal node.
func (t *Tree) SetTaxon(id int, taxon string) error {
	n, ok := t.node(id)
	if !ok {
		return fmt.Errorf("tree %q: node %d not found", t.name, id)
	}
	if len(n.children) > 0 {
		return fmt.Errorf("tree %q: node %d is not a terminal", t.name, id)
	}
	taxon = strings.Join(strings.Fields(taxon), " ")
	if taxon == "" {
		return fmt.Errorf("tree %q: empty taxon name for node %d", t.name, id)
	}
	if taxon == n.taxon {
		return nil
	}
	if _, dup := t.taxa[taxon]; dup {
		return fmt.Errorf("tree %q: taxon %q already in tree", t.name, taxon)
	}
	if n.taxon != "" {
		delete(t.taxa, n.taxon)
	}
	n.taxon = taxon
	t.taxa[taxon] = id
	return nil
}

// TaxNode returns the ID of the node
// that contains the indicated taxon.
func (t *Tree) TaxNode(name string) (int, bool) {
	id, ok := t.taxa[strings.Join(strings.Fields(name), " ")]
	return id, ok
}

// Nodes returns the IDs of all the nodes of the tree.
func (t *Tree) Nodes() []int {
	ids := make([]int, len(t.nodes))
	for i := range ids {
		ids[i] = i
	}
	return ids
}

// Terms returns the taxon names of the terminals,
// sorted alphabetically.
func (t *Tree) Terms() []string {
	terms := make([]string, 0, len(t.taxa))
	for tax := range t.taxa {
		terms = append(terms, tax)
	}
	slices.Sort(terms)
	return terms
}

// Support returns the support of the node,
// as the proportion of trees that have it.
// It returns NaN if the support is undefined.
func (t *Tree) Support(id int) float64 {
	n, ok := t.node(id)
	if !ok {
		return math.NaN()
	}
	return n.support
}

// SetSupport sets the support value of a node.
func (t *Tree) SetSupport(id int, s float64) {
	n, ok := t.node(id)
	if !ok {
		return
	}
	n.support = s
}

// Depth returns the distance from the root to a node.
func (t *Tree) Depth(id int) float64 {
	var d float64
	for n, ok := t.node(id); ok && n.parent >= 0; n, ok = t.node(n.parent) {
		d += n.length
	}
	return d
}

// Age returns the distance between a node
// and its most recent descendant terminal.
// For terminals the age is always 0.
func (t *Tree) Age(id int) float64 {
	n, ok := t.node(id)
	if !ok {
		return 0
	}
	var age float64
	for _, c := range n.children {
		if a := t.Age(c) + t.nodes[c].length; a > age {
			age = a
		}
	}
	return age
}

// Ages returns the age of each node
// indexed by its ID.
func (t *Tree) Ages() []float64 {
	ages := make([]float64, len(t.nodes))
	for _, id := range t.PostOrder() {
		n := t.nodes[id]
		for _, c := range n.children {
			if a := ages[c] + t.nodes[c].length; a > ages[id] {
				ages[id] = a
			}
		}
	}
	return ages
}

// PostOrder returns the IDs of the nodes
// in post-order
// (i.e., children always before their parents).
func (t *Tree) PostOrder() []int {
	ids := make([]int, 0, len(t.nodes))
	stack := []int{0}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		ids = append(ids, id)
		stack = append(stack, t.nodes[id].children...)
	}
	slices.Reverse(ids)
	return ids
}

// Clone returns a deep copy of the tree.
func (t *Tree) Clone() *Tree {
	nt := &Tree{
		name:  t.name,
		nodes: make([]*node, len(t.nodes)),
		taxa:  make(map[string]int, len(t.taxa)),
	}
	for i, n := range t.nodes {
		nn := *n
		nn.children = slices.Clone(n.children)
		nt.nodes[i] = &nn
	}
	for tax, id := range t.taxa {
		nt.taxa[tax] = id
	}
	return nt
}
