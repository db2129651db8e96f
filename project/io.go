// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package project

import (
	"errors"
	"fmt"
	"os"

	"github.com/js-arias/phycons/consparam"
	"github.com/js-arias/timetree"
)

// Consensus reads the consensus tree collection
// as defined in a project.
// If the collection is not defined,
// or the file does not exist,
// it returns an empty collection.
func (p *Project) Consensus() (*timetree.Collection, error) {
	name := p.Path(Consensus)
	if name == "" {
		return timetree.NewCollection(), nil
	}
	c, err := readCollection(name)
	if errors.Is(err, os.ErrNotExist) {
		return timetree.NewCollection(), nil
	}
	return c, err
}

// Params reads the consensus parameters
// as defined in a project.
// If no parameter file is defined,
// it returns the default parameters.
func (p *Project) Params() (*consparam.CP, error) {
	name := p.Path(Params)
	if name == "" {
		return consparam.New("cons-params.tab"), nil
	}
	return consparam.Read(name)
}

// Trees reads a tree collection file
// as defined in a project.
func (p *Project) Trees() (*timetree.Collection, error) {
	name := p.Path(Trees)
	if name == "" {
		return nil, fmt.Errorf("trees not defined in project %q", p.name)
	}
	return readCollection(name)
}

func readCollection(name string) (*timetree.Collection, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := timetree.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("while reading file %q: %v", name, err)
	}
	return c, nil
}
