// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package consensus

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Aggregation is the function used to summarize
// the branch lengths
// (or node ages)
// of a split.
type Aggregation int

// Valid aggregation functions.
const (
	Mean Aggregation = iota
	Median
)

// String implements the fmt.Stringer interface.
func (a Aggregation) String() string {
	switch a {
	case Mean:
		return "mean"
	case Median:
		return "median"
	}
	return fmt.Sprintf("aggregation(%d)", int(a))
}

// ParseAggregation returns an aggregation function
// from its name.
func ParseAggregation(s string) (Aggregation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mean":
		return Mean, nil
	case "median":
		return Median, nil
	}
	return Mean, fmt.Errorf("%w: unknown branch length function %q", ErrParam, s)
}

// Param is the set of parameters
// of a consensus computation.
type Param struct {
	// If Consensus is false,
	// no consensus is calculated,
	// and the tree at index Tree is returned.
	Consensus bool
	Tree      int

	// Clock is true if the trees are treated as clock-like,
	// so node ages are summarized
	// instead of branch lengths.
	Clock bool

	// Lengths is the function used to summarize
	// branch lengths (or node ages).
	Lengths Aggregation

	// Threshold is the minimum proportion of trees
	// in which a split must be found
	// to be included in the consensus.
	Threshold float64

	// Skip is the number of trees skipped
	// at the start of the sample.
	Skip int

	// Every is the sampling interval:
	// after skipped trees,
	// only one of each Every trees is used.
	Every int

	// Until is the index
	// (exclusive)
	// of the last tree used.
	// If zero,
	// all trees are used.
	Until int
}

// Errors returned by a consensus computation.
var (
	// ErrParam is returned for invalid parameters.
	ErrParam = errors.New("invalid parameter")

	// ErrNoTrees is returned when the sample has no trees.
	ErrNoTrees = errors.New("no trees in sample")

	// ErrTreeIndex is returned when a selected tree
	// is not in the sample.
	ErrTreeIndex = errors.New("tree index out of range")

	// ErrDiscordant is returned when the consensus tree
	// cannot be build from the accepted splits.
	ErrDiscordant = errors.New("unable to build consensus tree")
)

// DefaultParam returns the default parameters:
// a majority-rule consensus
// using the mean of the branch lengths
// of all trees in the sample.
func DefaultParam() Param {
	return Param{
		Consensus: true,
		Lengths:   Mean,
		Threshold: 0.5,
		Every:     1,
	}
}

// Validate returns an error if any parameter is invalid.
func (p Param) Validate() error {
	if p.Tree < 0 {
		return fmt.Errorf("%w: tree index %d: must be a non-negative value", ErrParam, p.Tree)
	}
	switch p.Lengths {
	case Mean, Median:
	default:
		return fmt.Errorf("%w: unknown branch length function %d", ErrParam, int(p.Lengths))
	}
	if math.IsNaN(p.Threshold) || p.Threshold < 0 || p.Threshold > 1 {
		return fmt.Errorf("%w: threshold %v: must be between 0 and 1", ErrParam, p.Threshold)
	}
	if p.Skip < 0 {
		return fmt.Errorf("%w: skip %d: must be a non-negative value", ErrParam, p.Skip)
	}
	if p.Every < 1 {
		return fmt.Errorf("%w: every %d: must be greater than 0", ErrParam, p.Every)
	}
	if p.Until < 0 {
		return fmt.Errorf("%w: until %d: must be a non-negative value", ErrParam, p.Until)
	}
	if p.Until > 0 && p.Until <= p.Skip {
		return fmt.Errorf("%w: until %d: must be greater than skip (%d)", ErrParam, p.Until, p.Skip)
	}
	return nil
}

// Sampled returns true if the tree
// with the indicated index
// is used in the consensus.
func (p Param) Sampled(i int) bool {
	if i < p.Skip {
		return false
	}
	if p.Until > 0 && i >= p.Until {
		return false
	}
	every := p.Every
	if every < 1 {
		every = 1
	}
	return (i-p.Skip)%every == 0
}

// sampleSize returns the number of trees used
// from a sample of n trees.
func (p Param) sampleSize(n int) int {
	if p.Until > 0 && p.Until < n {
		n = p.Until
	}
	if n <= p.Skip {
		return 0
	}
	every := p.Every
	if every < 1 {
		every = 1
	}
	return (n-p.Skip-1)/every + 1
}

// universe returns the size of the universe of taxa
// used to test split compatibility.
// Clock-like trees are rooted,
// so the root is counted as a taxon.
func (p Param) universe(n int) int {
	if p.Clock {
		return n + 1
	}
	return n
}
