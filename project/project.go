// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package project implements reading and writing
// of PhyCons project files.
//
// A PhyCons project is a tab-delimited file (TSV)
// with two columns:
// the dataset keyword,
// and the path of the file that stores it.
package project

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"
)

// Dataset is a keyword to identify
// the type of a dataset file in a project.
type Dataset string

// Valid dataset types.
const (
	// Trees is the sample of phylogenetic trees.
	Trees Dataset = "trees"

	// Params is the file with the parameters
	// of the consensus.
	Params Dataset = "params"

	// Consensus is the file for the consensus tree,
	// or the tree selected from the sample.
	Consensus Dataset = "consensus"
)

// datasets is the list of known datasets,
// in the order used in project files.
var datasets = []Dataset{
	Trees,
	Params,
	Consensus,
}

// Valid returns true if the dataset is a known dataset.
func (d Dataset) Valid() bool {
	return slices.Contains(datasets, d)
}

// A Project represents a collection of paths
// for particular datasets.
type Project struct {
	name  string
	paths map[Dataset]string
}

// New creates a new empty project.
func New() *Project {
	return &Project{paths: make(map[Dataset]string)}
}

var header = []string{
	"dataset",
	"path",
}

// Read reads a project file.
// Unknown or repeated datasets are an error.
func Read(name string) (*Project, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p := New()
	p.name = name
	if err := p.decode(f); err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return p, nil
}

func (p *Project) decode(r io.Reader) error {
	tsv := csv.NewReader(r)
	tsv.Comma = '\t'
	tsv.Comment = '#'

	head, err := tsv.Read()
	if err != nil {
		return fmt.Errorf("header: %v", err)
	}
	fields := make(map[string]int, len(head))
	for i, h := range head {
		fields[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, h := range header {
		if _, ok := fields[h]; !ok {
			return fmt.Errorf("expecting field %q", h)
		}
	}

	for {
		row, err := tsv.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		ln, _ := tsv.FieldPos(0)
		if err != nil {
			return fmt.Errorf("on row %d: %v", ln, err)
		}

		set := Dataset(strings.ToLower(strings.TrimSpace(row[fields["dataset"]])))
		if !set.Valid() {
			return fmt.Errorf("on row %d: unknown dataset %q, expecting one of %v", ln, set, datasets)
		}
		if _, dup := p.paths[set]; dup {
			return fmt.Errorf("on row %d: dataset %q already defined", ln, set)
		}
		path := strings.TrimSpace(row[fields["path"]])
		if path == "" {
			continue
		}
		p.paths[set] = path
	}
}

// Add sets the path of a dataset,
// and returns the previous path.
// An empty path removes the dataset from the project.
func (p *Project) Add(set Dataset, path string) string {
	prev := p.paths[set]
	if path == "" {
		delete(p.paths, set)
	} else {
		p.paths[set] = path
	}
	return prev
}

// Path returns the path of the given dataset.
func (p *Project) Path(set Dataset) string {
	return p.paths[set]
}

// Sets returns the datasets defined on a project,
// in the order used in project files.
func (p *Project) Sets() []Dataset {
	var sets []Dataset
	for _, s := range datasets {
		if _, ok := p.paths[s]; ok {
			sets = append(sets, s)
		}
	}
	return sets
}

// Name returns the project file name.
func (p *Project) Name() string {
	return p.name
}

// SetName sets the project file name.
func (p *Project) SetName(name string) {
	p.name = name
}

// Write writes a project into its file.
func (p *Project) Write() (err error) {
	f, err := os.Create(p.name)
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
	if err := p.encode(bw); err != nil {
		return fmt.Errorf("on file %q: %v", p.name, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("on file %q: while writing data: %v", p.name, err)
	}
	return nil
}

func (p *Project) encode(w io.Writer) error {
	fmt.Fprintf(w, "# phycons project files\n")
	fmt.Fprintf(w, "# data save on: %s\n", time.Now().Format(time.RFC3339))
	tsv := csv.NewWriter(w)
	tsv.Comma = '\t'
	tsv.UseCRLF = true

	if err := tsv.Write(header); err != nil {
		return fmt.Errorf("while writing header: %v", err)
	}
	for _, s := range p.Sets() {
		if err := tsv.Write([]string{string(s), p.paths[s]}); err != nil {
			return err
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	return nil
}
