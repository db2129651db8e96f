// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package consensus_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"reflect"
	"strconv"
	"testing"

	"github.com/js-arias/phycons/consensus"
	"github.com/js-arias/phycons/split"
	"github.com/js-arias/phycons/taxa"
	"github.com/js-arias/phycons/tree"
)

func TestMajorityRule(t *testing.T) {
	trees := parseTrees(t,
		"((A:1,B:1):1,(C:1,D:1):1);",
		"((A:1,B:1):1,(C:1,D:1):1);",
		"((A:1,B:1):1,(C:1,D:1):1);",
		"((A:1,C:1):1,(B:1,D:1):1);",
	)

	p := consensus.DefaultParam()
	ct, err := consensus.Compute(context.Background(), tree.NewSliceSource(trees), p, nil)
	if err != nil {
		t.Fatalf("unable to compute consensus: %v", err)
	}

	names := []string{"A", "B", "C", "D"}
	got := splitSet(ct, names, false)
	want := map[string]float64{
		"{C,D}": 2,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splits: got %v, want %v", got, want)
	}

	cd := ct.Parent(taxNode(t, ct, "C"))
	if s := ct.Support(cd); s != 0.75 {
		t.Errorf("support: got %.3f, want %.3f", s, 0.75)
	}
}

func TestStrictIdentical(t *testing.T) {
	const newick = "(((A:1,B:2):0.5,C:3):1,(D:1.5,E:0.25):2,F:4);"
	var trees []*tree.Tree
	for i := 0; i < 10; i++ {
		trees = append(trees, parseTrees(t, newick)...)
	}

	for _, agg := range []consensus.Aggregation{consensus.Mean, consensus.Median} {
		p := consensus.DefaultParam()
		p.Threshold = 1
		p.Lengths = agg
		ct, err := consensus.Compute(context.Background(), tree.NewSliceSource(trees), p, nil)
		if err != nil {
			t.Fatalf("%s: unable to compute consensus: %v", agg, err)
		}

		names := []string{"A", "B", "C", "D", "E", "F"}
		if got, want := splitSet(ct, names, false), splitSet(trees[0], names, false); !reflect.DeepEqual(got, want) {
			t.Errorf("%s: splits: got %v, want %v", agg, got, want)
		}
		for _, tax := range names {
			got := ct.Len(taxNode(t, ct, tax))
			want := trees[0].Len(taxNode(t, trees[0], tax))
			if got != want {
				t.Errorf("%s: taxon %q: length: got %v, want %v", agg, tax, got, want)
			}
		}
	}
}

func TestStrictOutgroupRoot(t *testing.T) {
	const newick = "((((A:1,B:1):1,C:2):1,D:3):1,E:4);"
	var trees []*tree.Tree
	for i := 0; i < 10; i++ {
		trees = append(trees, parseTrees(t, newick)...)
	}

	names := []string{"A", "B", "C", "D", "E"}
	for _, agg := range []consensus.Aggregation{consensus.Mean, consensus.Median} {
		p := consensus.DefaultParam()
		p.Threshold = 1
		p.Lengths = agg
		ct, err := consensus.Compute(context.Background(), tree.NewSliceSource(trees), p, nil)
		if err != nil {
			t.Fatalf("%s: unable to compute consensus: %v", agg, err)
		}
		if got, want := splitSet(ct, names, false), splitSet(trees[0], names, false); !reflect.DeepEqual(got, want) {
			t.Errorf("%s: splits: got %v, want %v", agg, got, want)
		}
		for i, a := range names {
			for _, b := range names[i+1:] {
				got := tipDistance(t, ct, a, b)
				want := tipDistance(t, trees[0], a, b)
				if !near(got, want) {
					t.Errorf("%s: distance %s-%s: got %v, want %v", agg, a, b, got, want)
				}
			}
		}
	}
}

func TestUnanimousSplit(t *testing.T) {
	rnd := rand.New(rand.NewPCG(7, 8))
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	var trees []*tree.Tree
	for i := 0; i < 25; i++ {
		trees = append(trees, parseTrees(t, randomTree(rnd, names, true))...)
	}

	// the side without A of the split {A,B}
	const ab = "{C,D,E,F,G,H}"
	for _, th := range []float64{0, 0.5, 1} {
		p := consensus.DefaultParam()
		p.Threshold = th
		ct, err := consensus.Compute(context.Background(), tree.NewSliceSource(trees), p, nil)
		if err != nil {
			t.Fatalf("threshold %.3f: unable to compute consensus: %v", th, err)
		}
		if _, ok := splitSet(ct, names, false)[ab]; !ok {
			t.Errorf("threshold %.3f: split %s not found", th, ab)
		}
	}
}

func TestMedianEven(t *testing.T) {
	trees := parseTrees(t,
		"(((A:1,B:1):1,C:1):1,D:1,E:1);",
		"(((A:1,B:1):3,C:1):1,D:1,E:1);",
	)
	p := consensus.DefaultParam()
	p.Threshold = 1
	p.Lengths = consensus.Median
	ct, err := consensus.Compute(context.Background(), tree.NewSliceSource(trees), p, nil)
	if err != nil {
		t.Fatalf("unable to compute consensus: %v", err)
	}

	names := []string{"A", "B", "C", "D", "E"}
	got := splitSet(ct, names, false)
	if v, ok := got["{C,D,E}"]; !ok || v != 2 {
		t.Errorf("split {C,D,E}: got %v, want %v", v, 2.0)
	}
}

func TestClockIdentical(t *testing.T) {
	const newick = "(((A:1,B:1):1,C:2):1,(D:2,E:2):1);"
	var trees []*tree.Tree
	for i := 0; i < 10; i++ {
		trees = append(trees, parseTrees(t, newick)...)
	}

	p := consensus.DefaultParam()
	p.Threshold = 1
	p.Clock = true
	ct, err := consensus.Compute(context.Background(), tree.NewSliceSource(trees), p, nil)
	if err != nil {
		t.Fatalf("unable to compute consensus: %v", err)
	}

	var w bytes.Buffer
	if err := ct.Newick(&w); err != nil {
		t.Fatalf("unable to write tree: %v", err)
	}
	want := "(((A:1,B:1)1:1,C:2)1:1,(D:2,E:2)1:1);\n"
	if got := w.String(); got != want {
		t.Errorf("consensus: got %q, want %q", got, want)
	}
}

func TestClockAligned(t *testing.T) {
	rnd := rand.New(rand.NewPCG(7, 11))
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	var trees []*tree.Tree
	for i := 0; i < 50; i++ {
		trees = append(trees, parseTrees(t, randomTree(rnd, names, true))...)
	}

	for _, th := range []float64{0, 0.5, 1} {
		p := consensus.DefaultParam()
		p.Clock = true
		p.Threshold = th
		ct, err := consensus.Compute(context.Background(), tree.NewSliceSource(trees), p, nil)
		if err != nil {
			t.Fatalf("threshold %.3f: unable to compute consensus: %v", th, err)
		}
		want := ct.Age(ct.Root())
		for _, tax := range names {
			if d := ct.Depth(taxNode(t, ct, tax)); !near(d, want) {
				t.Errorf("threshold %.3f: taxon %q: depth: got %.6f, want %.6f", th, tax, d, want)
			}
		}

		// the clade {A,B} is found in all trees
		reg := taxa.New()
		reg.Register(names...)
		found := false
		for _, o := range split.Extract(ct, reg, true).Splits {
			if o.Split.Format(names) == "{A,B}" {
				found = true
			}
		}
		if !found {
			t.Errorf("threshold %.3f: clade {A,B} not found", th)
		}
	}
}

func TestSingleTree(t *testing.T) {
	trees := parseTrees(t, "((A:1,B:1):1,(C:1,D:1):1,E:2);")
	for _, th := range []float64{0, 0.5, 1} {
		p := consensus.DefaultParam()
		p.Threshold = th
		ct, err := consensus.Compute(context.Background(), tree.NewSliceSource(trees), p, nil)
		if err != nil {
			t.Fatalf("threshold %.3f: unable to compute consensus: %v", th, err)
		}
		if ct != trees[0] {
			t.Errorf("threshold %.3f: expecting the input tree", th)
		}
	}
}

func TestSmallTrees(t *testing.T) {
	trees := parseTrees(t,
		"((A:1,B:1):1,C:2);",
		"((A:1,C:1):1,B:2);",
	)
	ct, err := consensus.Compute(context.Background(), tree.NewSliceSource(trees), consensus.DefaultParam(), nil)
	if err != nil {
		t.Fatalf("unable to compute consensus: %v", err)
	}
	if ct != trees[0] {
		t.Errorf("expecting the first input tree")
	}
}

func TestStar(t *testing.T) {
	trees := parseTrees(t,
		"((A:1,B:1):1,(C:1,D:1):1);",
		"((A:1,C:1):1,(B:1,D:1):1);",
		"((A:1,D:1):1,(B:1,C:1):1);",
	)
	ct, err := consensus.Compute(context.Background(), tree.NewSliceSource(trees), consensus.DefaultParam(), nil)
	if err != nil {
		t.Fatalf("unable to compute consensus: %v", err)
	}
	testStar(t, "majority", ct, []string{"A", "B", "C", "D"})

	// without internal branches
	trees = parseTrees(t,
		"(A:1,B:1,C:1,D:1,E:1);",
		"(A:1,B:1,C:1,D:1,E:1);",
	)
	p := consensus.DefaultParam()
	p.Threshold = 0
	ct, err = consensus.Compute(context.Background(), tree.NewSliceSource(trees), p, nil)
	if err != nil {
		t.Fatalf("unable to compute consensus: %v", err)
	}
	testStar(t, "no splits", ct, []string{"A", "B", "C", "D", "E"})
}

func testStar(t testing.TB, name string, ct *tree.Tree, names []string) {
	t.Helper()

	if got := ct.Terms(); !reflect.DeepEqual(got, names) {
		t.Errorf("%s: terms: got %v, want %v", name, got, names)
	}
	if got := len(ct.Children(ct.Root())); got != len(names) {
		t.Errorf("%s: root children: got %d, want %d", name, got, len(names))
	}
	for _, c := range ct.Children(ct.Root()) {
		if !ct.IsTerm(c) {
			t.Errorf("%s: node %d: expecting a terminal", name, c)
		}
	}
}

func TestThresholdMonotonicity(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 2))
	names := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I"}
	var trees []*tree.Tree
	for i := 0; i < 40; i++ {
		trees = append(trees, parseTrees(t, randomTree(rnd, names, i%2 == 0))...)
	}

	var prev map[string]float64
	for i := 0; i <= 10; i++ {
		p := consensus.DefaultParam()
		p.Threshold = float64(i) / 10
		ct, err := consensus.Compute(context.Background(), tree.NewSliceSource(trees), p, nil)
		if err != nil {
			t.Fatalf("threshold %.3f: unable to compute consensus: %v", p.Threshold, err)
		}
		got := splitSet(ct, names, false)
		if prev != nil {
			for s := range got {
				if _, ok := prev[s]; !ok {
					t.Errorf("threshold %.3f: split %s not found at a lower threshold", p.Threshold, s)
				}
			}
		}
		prev = got
	}
}

func TestIdempotence(t *testing.T) {
	rnd := rand.New(rand.NewPCG(3, 4))
	names := []string{"A", "B", "C", "D", "E", "F", "G"}
	var trees []*tree.Tree
	for i := 0; i < 30; i++ {
		trees = append(trees, parseTrees(t, randomTree(rnd, names, false))...)
	}

	for _, clock := range []bool{false, true} {
		p := consensus.DefaultParam()
		p.Threshold = 0
		p.Lengths = consensus.Median
		p.Clock = clock

		var out []string
		for i := 0; i < 2; i++ {
			ct, err := consensus.Compute(context.Background(), tree.NewSliceSource(trees), p, nil)
			if err != nil {
				t.Fatalf("clock %v: unable to compute consensus: %v", clock, err)
			}
			var w bytes.Buffer
			if err := ct.Newick(&w); err != nil {
				t.Fatalf("clock %v: unable to write tree: %v", clock, err)
			}
			out = append(out, w.String())
		}
		if out[0] != out[1] {
			t.Errorf("clock %v: different results:\n%s\n%s", clock, out[0], out[1])
		}
	}
}

func TestSampling(t *testing.T) {
	sampled := "((A:1,B:1):1,(C:1,D:1):1,E:2);"
	other := "((A:1,C:1):1,(B:1,D:1):1,E:2);"

	// trees 2, 5, 8 are sampled
	var ls []string
	for i := 0; i < 12; i++ {
		s := other
		if i == 2 || i == 5 || i == 8 {
			s = sampled
		}
		ls = append(ls, s)
	}
	trees := parseTrees(t, ls...)

	p := consensus.DefaultParam()
	p.Threshold = 1
	p.Skip = 2
	p.Every = 3
	p.Until = 10

	var prog []float64
	ct, err := consensus.Compute(context.Background(), tree.NewSliceSource(trees), p, func(v float64) {
		prog = append(prog, v)
	})
	if err != nil {
		t.Fatalf("unable to compute consensus: %v", err)
	}
	names := []string{"A", "B", "C", "D", "E"}
	if got, want := splitSet(ct, names, false), splitSet(trees[2], names, false); !reflect.DeepEqual(got, want) {
		t.Errorf("splits: got %v, want %v", got, want)
	}

	if len(prog) == 0 {
		t.Fatalf("progress: not reported")
	}
	for i := 1; i < len(prog); i++ {
		if prog[i] < prog[i-1] {
			t.Errorf("progress: value %.3f after %.3f", prog[i], prog[i-1])
		}
	}
	if last := prog[len(prog)-1]; last != 1 {
		t.Errorf("progress: last value %.3f, want %.3f", last, 1.0)
	}
	if prog[0] > 0.5 {
		t.Errorf("progress: first value %.3f, want <= %.3f", prog[0], 0.5)
	}
}

func TestSelectTree(t *testing.T) {
	trees := parseTrees(t,
		"((A,B),(C,D));",
		"((A,C),(B,D));",
		"((A,D),(B,C));",
	)
	p := consensus.DefaultParam()
	p.Consensus = false
	p.Tree = 2
	ct, err := consensus.Compute(context.Background(), tree.NewSliceSource(trees), p, nil)
	if err != nil {
		t.Fatalf("unable to select tree: %v", err)
	}
	if ct != trees[2] {
		t.Errorf("select: got tree %q, want %q", ct.Name(), trees[2].Name())
	}

	p.Tree = 3
	if _, err := consensus.Compute(context.Background(), tree.NewSliceSource(trees), p, nil); !errors.Is(err, consensus.ErrTreeIndex) {
		t.Errorf("select: got error %v, want %v", err, consensus.ErrTreeIndex)
	}
}

func TestComputeErrors(t *testing.T) {
	trees := parseTrees(t,
		"((A,B),(C,D));",
		"((A,C),(B,D));",
	)

	p := consensus.DefaultParam()
	p.Threshold = 1.5
	if _, err := consensus.Compute(context.Background(), tree.NewSliceSource(trees), p, nil); !errors.Is(err, consensus.ErrParam) {
		t.Errorf("threshold: got error %v, want %v", err, consensus.ErrParam)
	}

	p = consensus.DefaultParam()
	p.Skip = 5
	if _, err := consensus.Compute(context.Background(), tree.NewSliceSource(trees), p, nil); !errors.Is(err, consensus.ErrParam) {
		t.Errorf("skip: got error %v, want %v", err, consensus.ErrParam)
	}

	if _, err := consensus.Compute(context.Background(), tree.NewSliceSource(nil), consensus.DefaultParam(), nil); !errors.Is(err, consensus.ErrNoTrees) {
		t.Errorf("empty: got error %v, want %v", err, consensus.ErrNoTrees)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := consensus.Compute(ctx, tree.NewSliceSource(trees), consensus.DefaultParam(), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("cancel: got error %v, want %v", err, context.Canceled)
	}
}

func TestMismatchedTaxa(t *testing.T) {
	trees := parseTrees(t,
		"((A:1,B:1):1,(C:1,D:1):1,E:2);",
		"((A:1,B:1):1,(C:1,D:1):1,E:2);",
		"((B:1,F:1):1,(C:1,D:1):1,E:2);",
	)
	ct, err := consensus.Compute(context.Background(), tree.NewSliceSource(trees), consensus.DefaultParam(), nil)
	if err != nil {
		t.Fatalf("unable to compute consensus: %v", err)
	}
	if want := []string{"A", "B", "C", "D", "E", "F"}; !reflect.DeepEqual(ct.Terms(), want) {
		t.Errorf("terms: got %v, want %v", ct.Terms(), want)
	}

	// C and D are sister in all trees
	c := ct.Parent(taxNode(t, ct, "C"))
	d := ct.Parent(taxNode(t, ct, "D"))
	if c != d || ct.IsRoot(c) {
		t.Errorf("expecting C and D as a clade")
	}
}

func TestProgressUnknownSize(t *testing.T) {
	trees := parseTrees(t,
		"((A,B),(C,D),E);",
		"((A,B),(C,E),D);",
	)
	var prog []float64
	_, err := consensus.Compute(context.Background(), &streamSource{trees: trees}, consensus.DefaultParam(), func(v float64) {
		prog = append(prog, v)
	})
	if err != nil {
		t.Fatalf("unable to compute consensus: %v", err)
	}
	if len(prog) == 0 || prog[len(prog)-1] != 1 {
		t.Errorf("progress: got %v", prog)
	}
}

// A streamSource is a source without a known size.
type streamSource struct {
	trees []*tree.Tree
}

func (s *streamSource) Next() (*tree.Tree, error) {
	if len(s.trees) == 0 {
		return nil, io.EOF
	}
	t := s.trees[0]
	s.trees = s.trees[1:]
	return t, nil
}

func parseTrees(t testing.TB, ls ...string) []*tree.Tree {
	t.Helper()

	trees := make([]*tree.Tree, 0, len(ls))
	for i, s := range ls {
		tr, err := tree.Parse(fmt.Sprintf("tree-%d", i), s)
		if err != nil {
			t.Fatalf("unable to parse tree %q: %v", s, err)
		}
		trees = append(trees, tr)
	}
	return trees
}

// SplitSet returns the splits of a tree
// and its values.
func splitSet(tr *tree.Tree, names []string, clock bool) map[string]float64 {
	reg := taxa.New()
	reg.Register(names...)
	s := split.Extract(tr, reg, clock)

	set := make(map[string]float64, len(s.Splits))
	for _, o := range s.Splits {
		set[o.Split.Format(names)] = o.Value
	}
	return set
}

func taxNode(t testing.TB, tr *tree.Tree, name string) int {
	t.Helper()

	id, ok := tr.TaxNode(name)
	if !ok {
		t.Fatalf("tree %q: taxon %q not found", tr.Name(), name)
	}
	return id
}

// TipDistance returns the path length
// between two terminals.
func tipDistance(t testing.TB, tr *tree.Tree, a, b string) float64 {
	t.Helper()

	anc := make(map[int]bool)
	for id := taxNode(t, tr, a); id >= 0; id = tr.Parent(id) {
		anc[id] = true
	}
	lca := taxNode(t, tr, b)
	for !anc[lca] {
		lca = tr.Parent(lca)
	}
	return tr.Depth(taxNode(t, tr, a)) + tr.Depth(taxNode(t, tr, b)) - 2*tr.Depth(lca)
}

func near(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}

// RandomTree returns a random ultrametric tree
// in Newick format.
// If ab is true,
// the first two taxa are always sister.
func randomTree(rnd *rand.Rand, names []string, ab bool) string {
	type sub struct {
		s string
		h float64
	}
	join := func(a, b sub, h float64) sub {
		la := strconv.FormatFloat(h-a.h, 'g', -1, 64)
		lb := strconv.FormatFloat(h-b.h, 'g', -1, 64)
		return sub{s: "(" + a.s + ":" + la + "," + b.s + ":" + lb + ")", h: h}
	}

	subs := make([]sub, 0, len(names))
	for _, n := range names {
		subs = append(subs, sub{s: n})
	}
	if ab {
		j := join(subs[0], subs[1], 0.5+rnd.Float64())
		subs = append([]sub{j}, subs[2:]...)
	}
	for len(subs) > 1 {
		i := rnd.IntN(len(subs))
		j := rnd.IntN(len(subs) - 1)
		if j >= i {
			j++
		}
		a, b := subs[i], subs[j]
		n := join(a, b, max(a.h, b.h)+0.5+rnd.Float64())

		next := make([]sub, 0, len(subs)-1)
		for k, s := range subs {
			if k == i || k == j {
				continue
			}
			next = append(next, s)
		}
		subs = append(next, n)
	}
	return subs[0].s + ";"
}
