// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package consensus implements the calculation
// of consensus trees
// from a sample of phylogenetic trees.
//
// The consensus is built from the splits
// (bipartitions)
// found in the trees:
// splits are counted in a frequency table,
// then sorted by decreasing frequency,
// and a split is accepted
// only if it is compatible
// with all the previously accepted splits.
// With a threshold of 0.5
// the result is the majority-rule consensus,
// and with a threshold of 1,
// the strict consensus.
package consensus

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/js-arias/phycons/tree"
)

// Weight of the aggregation phase
// in the reported progress.
const aggWeight = 0.5

// Weight of the resolution phase
// in the reported progress,
// the remaining is used by the build phase.
const resWeight = 0.4

// Compute calculates a consensus tree
// from a sample of trees.
//
// The source is read only once,
// and trees are used as they are read.
// The context is checked after each tree,
// so the computation can be cancelled.
//
// If defined,
// progress is called with non-decreasing values
// between 0 and 1.
//
// If the sample has a single tree,
// or its trees have less than four taxa,
// the first tree of the sample is returned unchanged.
// If p.Consensus is false,
// the tree with index p.Tree is returned.
func Compute(ctx context.Context, src tree.Source, p Param, progress func(float64)) (*tree.Tree, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	pr := newReporter(progress)

	if !p.Consensus {
		t, err := selectTree(ctx, src, p.Tree)
		if err != nil {
			return nil, err
		}
		pr.report(1)
		return t, nil
	}

	tab, err := aggregate(ctx, src, p, pr)
	if err != nil {
		return nil, err
	}
	if tab.Trees() == 1 || tab.Taxa().Len() < 4 {
		pr.report(1)
		return tab.First(), nil
	}

	accepted, err := Resolve(ctx, tab.Records(), p.Threshold, tab.Trees(), p.universe(tab.Taxa().Len()), func(f float64) {
		pr.report(aggWeight + resWeight*f)
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t, err := Build(tab, accepted, p)
	if err != nil {
		return nil, err
	}
	pr.report(1)
	return t, nil
}

// Splits returns the frequency table
// of the splits found in a sample of trees.
func Splits(ctx context.Context, src tree.Source, p Param, progress func(float64)) (*Table, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	pr := newReporter(progress)

	tab, err := aggregate(ctx, src, p, pr)
	if err != nil {
		return nil, err
	}
	pr.report(1)
	return tab, nil
}

func aggregate(ctx context.Context, src tree.Source, p Param, pr *reporter) (*Table, error) {
	total := 0
	if l, ok := src.(tree.Lener); ok {
		n := l.Len()
		if n > 0 && p.Skip >= n {
			return nil, fmt.Errorf("%w: skip %d: sample has only %d trees", ErrParam, p.Skip, n)
		}
		total = p.sampleSize(n)
	}

	tab := NewTable(p)
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if p.Until > 0 && i >= p.Until {
			break
		}

		t, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("while reading tree %d: %w", i, err)
		}
		if !p.Sampled(i) {
			continue
		}
		tab.Add(t)
		if total > 0 {
			pr.report(aggWeight * float64(tab.Trees()) / float64(total))
		}
	}

	if tab.Trees() == 0 {
		return nil, ErrNoTrees
	}
	pr.report(aggWeight)
	return tab, nil
}

func selectTree(ctx context.Context, src tree.Source, idx int) (*tree.Tree, error) {
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t, err := src.Next()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: tree %d: sample has only %d trees", ErrTreeIndex, idx, i)
		}
		if err != nil {
			return nil, fmt.Errorf("while reading tree %d: %w", i, err)
		}
		if i == idx {
			return t, nil
		}
	}
}

// A reporter reports the progress of a computation,
// ensuring that values are non-decreasing.
type reporter struct {
	fn   func(float64)
	last float64
}

func newReporter(fn func(float64)) *reporter {
	return &reporter{fn: fn, last: -1}
}

func (r *reporter) report(v float64) {
	if r.fn == nil {
		return
	}
	v = max(0, min(v, 1))
	if v <= r.last {
		return
	}
	r.last = v
	r.fn(v)
}
