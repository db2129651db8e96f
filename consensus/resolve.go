// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package consensus

import (
	"context"

	"github.com/js-arias/phycons/split"
)

// checkEvery is the number of candidate splits
// evaluated between checks of the context.
const checkEvery = 64

// Resolve returns the accepted splits,
// in the order in which they were accepted.
//
// Records found in a proportion of the total trees
// smaller than the threshold are discarded.
// The remaining records are sorted by decreasing frequency,
// and a split is accepted only if it is compatible
// with all the previously accepted splits.
// A rejected split is never reconsidered.
//
// The universe of taxa has n taxa.
// If defined,
// progress is called with the proportion
// of evaluated records.
func Resolve(ctx context.Context, recs []*Record, threshold float64, total, n int, progress func(float64)) ([]*Record, error) {
	if total <= 0 {
		return nil, nil
	}

	cand := make([]*Record, 0, len(recs))
	for _, r := range recs {
		if float64(r.Count)/float64(total) < threshold {
			continue
		}
		cand = append(cand, r)
	}
	SortRecords(cand)

	var accepted []*Record
	for i, r := range cand {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if progress != nil {
				progress(float64(i) / float64(len(cand)))
			}
		}
		if compatibleWith(r.Split, accepted, n) {
			accepted = append(accepted, r)
		}
	}
	if progress != nil {
		progress(1)
	}
	return accepted, nil
}

func compatibleWith(s split.Split, accepted []*Record, n int) bool {
	for _, a := range accepted {
		if !split.Compatible(s, a.Split, n) {
			return false
		}
	}
	return true
}
