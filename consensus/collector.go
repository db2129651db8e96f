// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package consensus

import (
	"math"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// MaxValues is the maximum number of values
// stored by a collector
// when using the median.
// Beyond that number,
// values are reservoir sampled.
const MaxValues = 10_000

// A Collector collects the values
// (branch lengths or ages)
// of a split.
type Collector struct {
	agg Aggregation
	max int

	n    int
	mean float64

	vals []float64
	rnd  *rand.Rand
}

func newCollector(agg Aggregation, max int, seed uint64) *Collector {
	c := &Collector{
		agg: agg,
		max: max,
	}
	if agg == Median {
		c.rnd = rand.New(rand.NewPCG(seed, 0x9e3779b97f4a7c15))
	}
	return c
}

// Add adds a value to the collector.
func (c *Collector) Add(v float64) {
	c.n++
	c.mean += (v - c.mean) / float64(c.n)
	if c.agg != Median {
		return
	}

	if len(c.vals) < c.max {
		c.vals = append(c.vals, v)
		return
	}
	// reservoir sampling
	if j := c.rnd.IntN(c.n); j < c.max {
		c.vals[j] = v
	}
}

// N returns the number of values added to the collector.
func (c *Collector) N() int {
	return c.n
}

// Mean returns the mean of the values.
func (c *Collector) Mean() float64 {
	return c.mean
}

// Median returns the median of the values.
// If the collector only stores the running mean,
// it returns the mean.
func (c *Collector) Median() float64 {
	if len(c.vals) == 0 {
		return c.Mean()
	}
	v := slices.Clone(c.vals)
	slices.Sort(v)
	return median(v)
}

// median returns the median of a sorted slice.
// With an even number of values
// it is the average of the two middle values.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	// the empirical quantile is the lower middle value
	m := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	if n%2 == 0 {
		return (m + sorted[n/2]) / 2
	}
	return m
}

// Value returns the summary value
// using the aggregation function of the collector.
func (c *Collector) Value() float64 {
	if c.agg == Median {
		return c.Median()
	}
	return c.Mean()
}

// Values returns the stored values.
// Values are only stored when the aggregation function
// is the median.
func (c *Collector) Values() []float64 {
	return slices.Clone(c.vals)
}
