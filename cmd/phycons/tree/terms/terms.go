// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package terms implements a command to print
// the list of the terminals in the trees of a PhyCons project.
package terms

import (
	"fmt"

	"github.com/js-arias/command"
	"github.com/js-arias/phycons/project"
	"github.com/js-arias/timetree"
	"golang.org/x/exp/slices"
)

var Command = &command.Command{
	Usage: "terms [--tree <tree-name>] [--count] <project-file>",
	Short: "print a list of tree terminals",
	Long: `
Command terms reads the trees from a PhyCons project and prints the name of
the terminals in the standard output.

The argument of the command is the name of the project file.

By default all terminals will be printed. If the flag --tree is set, only the
terminals of the indicated tree will be printed.

If the flag --count is set, the number of trees in which each terminal is
found will be printed after the terminal name. Terminals that are not found in
all trees reduce the resolution of a consensus tree.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var treeName string
var countFlag bool

func setFlags(c *command.Command) {
	c.Flags().StringVar(&treeName, "tree", "", "")
	c.Flags().BoolVar(&countFlag, "count", false, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	tc, err := p.Trees()
	if err != nil {
		return err
	}

	terms := termCount(tc)
	ls := make([]string, 0, len(terms))
	for tax := range terms {
		ls = append(ls, tax)
	}
	slices.Sort(ls)
	for _, term := range ls {
		if countFlag {
			fmt.Fprintf(c.Stdout(), "%s\t%d\n", term, terms[term])
			continue
		}
		fmt.Fprintf(c.Stdout(), "%s\n", term)
	}
	return nil
}

func termCount(c *timetree.Collection) map[string]int {
	var ls []string
	if treeName != "" {
		ls = append(ls, treeName)
	} else {
		ls = c.Names()
	}

	terms := make(map[string]int)
	for _, tn := range ls {
		t := c.Tree(tn)
		if t == nil {
			continue
		}
		for _, tax := range t.Terms() {
			terms[tax]++
		}
	}
	return terms
}
