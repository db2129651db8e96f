// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package sim implements a command to simulate
// a sample of phylogenetic trees.
package sim

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"

	"github.com/js-arias/command"
	"github.com/js-arias/phycons/project"
	"github.com/js-arias/phycons/tree"
	"github.com/js-arias/timetree"
	"github.com/js-arias/timetree/simulate"
)

var Command = &command.Command{
	Usage: `sim [-f|--file <tree-file>] [--name <name>]
	[--trees <number>] [--terms <number>] [--age <value>]
	<project-file>`,
	Short: "simulate a sample of trees",
	Long: `
Command sim creates a sample of random trees with the same terminals, and adds
the trees to a PhyCons project. The simulated sample can be used to test the
consensus parameters.

The argument of the command is the name of the project file. If no project
file exists, a new project will be created.

By default, 100 trees will be created. Use the flag --trees to define a
different number of trees.

By default, each tree will have 20 terminals. Use the flag --terms to define
a different number. The terminals are named "taxon-1", "taxon-2", and so on,
and they are assigned at random to the terminals of each tree.

By default, the age of the root is 10 million years. Use the flag --age to
define a different age (in million years).

Trees will be simulated using a Yule process, with the speciation rate defined
as spRate = (ln(terms) - ln(2)) / rootAge.

By default the trees will be named "sim-<number>". Use the flag --name to
define a different prefix for the tree names.

By default the trees will be stored in the tree file currently defined for the
project. If the project does not have a tree file, a new one will be created
with the name 'trees.tab'. A different tree file name can be defined using the
flag --file, or -f.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var treeFile string
var prefix string
var numTrees int
var numTerms int
var rootAge float64

func setFlags(c *command.Command) {
	c.Flags().StringVar(&treeFile, "file", "", "")
	c.Flags().StringVar(&treeFile, "f", "", "")
	c.Flags().StringVar(&prefix, "name", "sim", "")
	c.Flags().IntVar(&numTrees, "trees", 100, "")
	c.Flags().IntVar(&numTerms, "terms", 20, "")
	c.Flags().Float64Var(&rootAge, "age", 10, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	if numTrees < 1 {
		return c.UsageError(fmt.Sprintf("invalid number of trees: %d", numTrees))
	}
	if numTerms < 4 {
		return c.UsageError(fmt.Sprintf("invalid number of terminals: %d", numTerms))
	}
	if rootAge <= 0 {
		return c.UsageError(fmt.Sprintf("invalid root age: %.6f", rootAge))
	}

	p, err := openProject(args[0])
	if err != nil {
		return err
	}

	tc := timetree.NewCollection()
	if tf := p.Path(project.Trees); tf != "" {
		tc, err = p.Trees()
		if err != nil {
			return err
		}
	}

	root := int64(rootAge * tree.MillionYears)
	spRate := (math.Log(float64(numTerms)) - math.Log(2)) / rootAge
	for i := 0; i < numTrees; i++ {
		name := fmt.Sprintf("%s-%d", prefix, i)
		tt, err := yule(name, spRate, root)
		if err != nil {
			return err
		}
		if err := tc.Add(tt); err != nil {
			return fmt.Errorf("when adding tree %q: %v", name, err)
		}
	}

	if treeFile == "" {
		treeFile = p.Path(project.Trees)
		if treeFile == "" {
			treeFile = "trees.tab"
		}
	}
	if err := writeTrees(tc); err != nil {
		return err
	}
	p.Add(project.Trees, treeFile)
	if err := p.Write(); err != nil {
		return err
	}
	return nil
}

// Yule simulates a tree
// with the indicated number of terminals,
// and assigns the terminal names at random.
func yule(name string, spRate float64, root int64) (*timetree.Tree, error) {
	var t *tree.Tree
	for {
		tt, ok := simulate.Yule(name, spRate, root, numTerms)
		if !ok {
			return nil, fmt.Errorf("while simulating tree %q: less than two terminals", name)
		}
		if len(tt.Terms()) == numTerms {
			t = tree.FromTimeTree(tt)
			break
		}
	}

	var terms []int
	for _, id := range t.Nodes() {
		if t.IsTerm(id) {
			terms = append(terms, id)
		}
	}

	// temporary names to avoid collisions
	for i, id := range terms {
		if err := t.SetTaxon(id, fmt.Sprintf("tmp:%d", i)); err != nil {
			return nil, err
		}
	}
	for i, j := range rand.Perm(len(terms)) {
		if err := t.SetTaxon(terms[j], fmt.Sprintf("taxon-%d", i+1)); err != nil {
			return nil, err
		}
	}

	tt, err := tree.ToTimeTree(t)
	if err != nil {
		return nil, fmt.Errorf("while simulating tree %q: %v", name, err)
	}
	return tt, nil
}

func openProject(name string) (*project.Project, error) {
	p, err := project.Read(name)
	if errors.Is(err, os.ErrNotExist) {
		p := project.New()
		p.SetName(name)
		return p, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open project %q: %v", name, err)
	}
	return p, nil
}

func writeTrees(tc *timetree.Collection) (err error) {
	f, err := os.Create(treeFile)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if e != nil && err == nil {
			err = e
		}
	}()

	if err := tc.TSV(f); err != nil {
		return fmt.Errorf("while writing to %q: %v", treeFile, err)
	}
	return nil
}
