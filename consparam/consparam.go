// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package consparam implements reading and writing
// of the parameters for a consensus tree.
package consparam

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/js-arias/phycons/consensus"
)

// Param is a keyword to identify
// the type of parameter in a consensus parameter file.
type Param string

// Valid parameters
const (
	// Clock indicates if the trees are clock-like.
	Clock Param = "clock"

	// Consensus indicates if a consensus is calculated.
	// If false,
	// a single tree is selected.
	Consensus Param = "consensus"

	// Every is the sampling interval.
	Every Param = "every"

	// Lengths is the function used to summarize
	// the branch lengths.
	Lengths Param = "lengths"

	// Skip is the number of trees skipped
	// at the start of the sample.
	Skip Param = "skip"

	// Threshold is the minimum frequency
	// of a split in the consensus.
	Threshold Param = "threshold"

	// Tree is the index of the selected tree.
	Tree Param = "tree"

	// Until is the index of the last tree
	// (exclusive)
	// used in the sample.
	Until Param = "until"
)

// CP represents a collection of consensus parameters.
type CP struct {
	name string // file name
	p    consensus.Param
}

// New creates a new parameter collection
// with the default values.
func New(name string) *CP {
	return &CP{
		name: name,
		p:    consensus.DefaultParam(),
	}
}

var header = []string{
	"parameter",
	"value",
}

// Read reads a consensus parameter file from a TSV file.
//
// The TSV must contains the following fields:
//
//   - parameter, the name of the parameter
//   - value, the value of the parameter
//
// Here is an example file:
//
//	# phycons consensus parameters
//	parameter	value
//	consensus	true
//	clock	false
//	lengths	mean
//	threshold	0.5
//	skip	1000
//	every	10
//
// Missing parameters take the default values.
func Read(name string) (*CP, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tsv := csv.NewReader(f)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return nil, fmt.Errorf("on file %q: header: %v", name, err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		h = strings.ToLower(h)
		fields[h] = i
	}
	for _, h := range header {
		if _, ok := fields[h]; !ok {
			return nil, fmt.Errorf("on file %q: expecting field %q", name, h)
		}
	}

	cp := New(name)
	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return nil, fmt.Errorf("on file %q: on row %d: %v", name, ln, err)
		}

		f := "parameter"
		p := Param(strings.ToLower(strings.TrimSpace(row[fields[f]])))

		f = "value"
		v := strings.TrimSpace(row[fields[f]])
		if err := cp.set(p, v); err != nil {
			return nil, fmt.Errorf("on file %q: on row %d, field %q: %v", name, ln, f, err)
		}
	}
	if err := cp.p.Validate(); err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return cp, nil
}

func (cp *CP) set(p Param, v string) error {
	switch p {
	case Clock:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		cp.p.Clock = b
	case Consensus:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		cp.p.Consensus = b
	case Every:
		e, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		return cp.SetEvery(e)
	case Lengths:
		return cp.SetLengths(v)
	case Skip:
		s, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		return cp.SetSkip(s)
	case Threshold:
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		return cp.SetThreshold(t)
	case Tree:
		t, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		return cp.SetTree(t)
	case Until:
		u, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		return cp.SetUntil(u)
	}
	return nil
}

// Name returns the file name of a parameter collection.
func (cp *CP) Name() string {
	return cp.name
}

// Param returns the consensus parameters.
func (cp *CP) Param() consensus.Param {
	return cp.p
}

// SetClock sets the trees as clock-like.
func (cp *CP) SetClock(clock bool) {
	cp.p.Clock = clock
}

// SetConsensus sets if a consensus is calculated.
func (cp *CP) SetConsensus(cons bool) {
	cp.p.Consensus = cons
}

// SetEvery sets the sampling interval.
func (cp *CP) SetEvery(e int) error {
	if e < 1 {
		return fmt.Errorf("invalid every value: %d", e)
	}
	cp.p.Every = e
	return nil
}

// SetLengths sets the function used to summarize
// branch lengths.
func (cp *CP) SetLengths(fn string) error {
	a, err := consensus.ParseAggregation(fn)
	if err != nil {
		return err
	}
	cp.p.Lengths = a
	return nil
}

// SetName sets the name of a parameter collection.
func (cp *CP) SetName(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	cp.name = name
}

// SetSkip sets the number of skipped trees.
func (cp *CP) SetSkip(s int) error {
	if s < 0 {
		return fmt.Errorf("invalid skip value: %d", s)
	}
	cp.p.Skip = s
	return nil
}

// SetThreshold sets the minimum frequency of a split.
func (cp *CP) SetThreshold(t float64) error {
	if t < 0 || t > 1 {
		return fmt.Errorf("invalid threshold value: %.6f", t)
	}
	cp.p.Threshold = t
	return nil
}

// SetTree sets the index of the selected tree.
func (cp *CP) SetTree(t int) error {
	if t < 0 {
		return fmt.Errorf("invalid tree index: %d", t)
	}
	cp.p.Tree = t
	return nil
}

// SetUntil sets the index of the last tree
// (exclusive)
// in the sample.
// Zero means all trees.
func (cp *CP) SetUntil(u int) error {
	if u < 0 {
		return fmt.Errorf("invalid until value: %d", u)
	}
	cp.p.Until = u
	return nil
}

// Write writes a parameter collection into a file.
func (cp *CP) Write() (err error) {
	if err := cp.p.Validate(); err != nil {
		return fmt.Errorf("on file %q: %v", cp.name, err)
	}

	f, err := os.Create(cp.name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	bw := bufio.NewWriter(f)
	fmt.Fprintf(bw, "# phycons consensus parameters\n")
	fmt.Fprintf(bw, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(bw)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("on file %q: while writing header: %v", cp.name, err)
	}

	rows := [][]string{
		{string(Consensus), strconv.FormatBool(cp.p.Consensus)},
		{string(Tree), strconv.Itoa(cp.p.Tree)},
		{string(Clock), strconv.FormatBool(cp.p.Clock)},
		{string(Lengths), cp.p.Lengths.String()},
		{string(Threshold), strconv.FormatFloat(cp.p.Threshold, 'f', -1, 64)},
		{string(Skip), strconv.Itoa(cp.p.Skip)},
		{string(Every), strconv.Itoa(cp.p.Every)},
		{string(Until), strconv.Itoa(cp.p.Until)},
	}
	for _, row := range rows {
		if err := tsv.Write(row); err != nil {
			return fmt.Errorf("on file %q: %v", cp.name, err)
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", cp.name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", cp.name, err)
	}
	return nil
}
