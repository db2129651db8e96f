// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package consensus

import (
	"cmp"
	"slices"

	"github.com/js-arias/phycons/split"
	"github.com/js-arias/phycons/taxa"
	"github.com/js-arias/phycons/tree"
)

// A Record is a split found in a sample of trees.
type Record struct {
	Split split.Split

	// Count is the number of trees with the split.
	Count int

	// Values collected for the split.
	Values *Collector
}

// A Table is the frequency table of the splits
// found in a sample of trees.
type Table struct {
	p     Param
	reg   *taxa.Set
	recs  map[string]*Record
	terms []*Collector
	root  *Collector

	trees int
	first *tree.Tree
	seed  uint64
}

// NewTable creates a new empty frequency table.
func NewTable(p Param) *Table {
	return &Table{
		p:    p,
		reg:  taxa.New(),
		recs: make(map[string]*Record),
	}
}

func (tab *Table) collector() *Collector {
	tab.seed++
	return newCollector(tab.p.Lengths, MaxValues, tab.seed)
}

// Add adds the splits of a tree to the table.
func (tab *Table) Add(t *tree.Tree) {
	if tab.first == nil {
		tab.first = t
		tab.root = tab.collector()
	}
	tab.trees++

	s := split.Extract(t, tab.reg, tab.p.Clock)
	tab.root.Add(s.RootAge)
	for _, tm := range s.Terms {
		for len(tab.terms) <= tm.Taxon {
			tab.terms = append(tab.terms, nil)
		}
		if tab.terms[tm.Taxon] == nil {
			tab.terms[tm.Taxon] = tab.collector()
		}
		tab.terms[tm.Taxon].Add(tm.Value)
	}

	for _, o := range s.Splits {
		k := o.Split.Key()
		r, ok := tab.recs[k]
		if !ok {
			r = &Record{
				Split:  o.Split,
				Values: tab.collector(),
			}
			tab.recs[k] = r
		}
		r.Count++
		r.Values.Add(o.Value)
	}
}

// Trees returns the number of trees added to the table.
func (tab *Table) Trees() int {
	return tab.trees
}

// First returns the first tree added to the table.
func (tab *Table) First() *tree.Tree {
	return tab.first
}

// Len returns the number of distinct splits in the table.
func (tab *Table) Len() int {
	return len(tab.recs)
}

// Taxa returns the taxon registry used by the table.
func (tab *Table) Taxa() *taxa.Set {
	return tab.reg
}

// Records returns the records of the table,
// sorted by decreasing frequency.
// Ties are sorted by the bit pattern of the split.
func (tab *Table) Records() []*Record {
	recs := make([]*Record, 0, len(tab.recs))
	for _, r := range tab.recs {
		recs = append(recs, r)
	}
	SortRecords(recs)
	return recs
}

// Record returns the record of a split.
func (tab *Table) Record(s split.Split) (*Record, bool) {
	r, ok := tab.recs[s.Key()]
	return r, ok
}

// Term returns the collector
// for the terminal branch of a taxon.
func (tab *Table) Term(taxon int) *Collector {
	if taxon < 0 || taxon >= len(tab.terms) {
		return nil
	}
	return tab.terms[taxon]
}

// RootAge returns the collector for the age of the root.
func (tab *Table) RootAge() *Collector {
	return tab.root
}

// SortRecords sorts records by decreasing frequency,
// and ties by the bit pattern of the split.
func SortRecords(recs []*Record) {
	slices.SortStableFunc(recs, func(a, b *Record) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return a.Split.Compare(b.Split)
	})
}
