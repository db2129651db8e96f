// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package split_test

import (
	"reflect"
	"testing"

	"github.com/js-arias/phycons/split"
	"github.com/js-arias/phycons/taxa"
	"github.com/js-arias/phycons/tree"
)

func TestExtractRootSplit(t *testing.T) {
	tr, err := tree.Parse("test", "((A:1,B:1):2,(C:2,D:2):1);")
	if err != nil {
		t.Fatalf("unable to parse tree: %v", err)
	}

	reg := taxa.New()
	s := split.Extract(tr, reg, false)
	if want := []string{"A", "B", "C", "D"}; !reflect.DeepEqual(reg.Names(), want) {
		t.Errorf("taxa: got %v, want %v", reg.Names(), want)
	}
	if len(s.Splits) != 1 {
		t.Fatalf("splits: got %d, want %d", len(s.Splits), 1)
	}
	o := s.Splits[0]
	if want := []int{2, 3}; !reflect.DeepEqual(o.Split.Members(), want) {
		t.Errorf("split: got %v, want %v", o.Split.Members(), want)
	}
	if o.Value != 3 {
		t.Errorf("length: got %.3f, want %.3f", o.Value, 3.0)
	}
	if s.RootAge != 3 {
		t.Errorf("root age: got %.3f, want %.3f", s.RootAge, 3.0)
	}
	terms := map[int]float64{0: 1, 1: 1, 2: 2, 3: 2}
	if len(s.Terms) != len(terms) {
		t.Errorf("terms: got %d, want %d", len(s.Terms), len(terms))
	}
	for _, tm := range s.Terms {
		if tm.Value != terms[tm.Taxon] {
			t.Errorf("term %d: got %.3f, want %.3f", tm.Taxon, tm.Value, terms[tm.Taxon])
		}
	}

	// clock-like trees are rooted
	s = split.Extract(tr, reg, true)
	got := make(map[string]float64)
	for _, o := range s.Splits {
		got[o.Split.Format(reg.Names())] = o.Value
	}
	want := map[string]float64{
		"{A,B}": 1,
		"{C,D}": 2,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("clock: splits: got %v, want %v", got, want)
	}
	for _, tm := range s.Terms {
		if tm.Value != 0 {
			t.Errorf("clock: term %d: got %.3f, want %.3f", tm.Taxon, tm.Value, 0.0)
		}
	}
}

func TestExtract(t *testing.T) {
	tr, err := tree.Parse("test", "(((A:1,B:1):1,C:2):1,(D:1,E:1):2);")
	if err != nil {
		t.Fatalf("unable to parse tree: %v", err)
	}

	reg := taxa.New()
	s := split.Extract(tr, reg, false)
	got := make(map[string]float64)
	for _, o := range s.Splits {
		got[o.Split.Format(reg.Names())] = o.Value
	}
	want := map[string]float64{
		"{C,D,E}": 1,
		"{D,E}":   3,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splits: got %v, want %v", got, want)
	}
}

func TestExtractRootTerm(t *testing.T) {
	tr, err := tree.Parse("test", "(((A:1,B:1):1,C:2):1,D:3);")
	if err != nil {
		t.Fatalf("unable to parse tree: %v", err)
	}

	reg := taxa.New()
	s := split.Extract(tr, reg, false)
	got := make(map[string]float64)
	for _, o := range s.Splits {
		got[o.Split.Format(reg.Names())] = o.Value
	}
	if want := map[string]float64{"{C,D}": 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("splits: got %v, want %v", got, want)
	}

	// D is the sister of the root edge
	terms := map[string]float64{"A": 1, "B": 1, "C": 2, "D": 4}
	names := reg.Names()
	for _, tm := range s.Terms {
		if w := terms[names[tm.Taxon]]; tm.Value != w {
			t.Errorf("term %s: got %.3f, want %.3f", names[tm.Taxon], tm.Value, w)
		}
	}

	// in clock-like trees terminal values are ages
	s = split.Extract(tr, reg, true)
	for _, tm := range s.Terms {
		if tm.Value != 0 {
			t.Errorf("clock: term %s: got %.3f, want %.3f", names[tm.Taxon], tm.Value, 0.0)
		}
	}
}

func TestExtractSmallTree(t *testing.T) {
	tr, err := tree.Parse("test", "((A:1,B:1):1,C:2);")
	if err != nil {
		t.Fatalf("unable to parse tree: %v", err)
	}
	reg := taxa.New()
	s := split.Extract(tr, reg, false)
	if len(s.Splits) != 0 {
		t.Errorf("splits: got %d, want %d", len(s.Splits), 0)
	}
	if len(s.Terms) != 3 {
		t.Errorf("terms: got %d, want %d", len(s.Terms), 3)
	}
}

func TestExtractMissingTaxa(t *testing.T) {
	reg := taxa.New()
	reg.Register("A", "B", "C", "D", "E")

	// taxon A (index 0) is not in the tree,
	// so the reference is B.
	tr, err := tree.Parse("test", "((B,C),(D,E));")
	if err != nil {
		t.Fatalf("unable to parse tree: %v", err)
	}
	s := split.Extract(tr, reg, false)
	if len(s.Splits) != 1 {
		t.Fatalf("splits: got %d, want %d", len(s.Splits), 1)
	}
	if f := s.Splits[0].Split.Format(reg.Names()); f != "{D,E}" {
		t.Errorf("split: got %s, want %s", f, "{D,E}")
	}
}
