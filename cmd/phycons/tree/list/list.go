// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package list implements a command to print
// the list of trees in a PhyCons project.
package list

import (
	"fmt"

	"github.com/js-arias/command"
	"github.com/js-arias/phycons/project"
	"github.com/js-arias/phycons/tree"
	"github.com/js-arias/timetree"
)

var Command = &command.Command{
	Usage: "list [--consensus] [--count] <project-file>",
	Short: "print a list of the trees in a project",
	Long: `
Command list reads the trees from a PhyCons project and prints the tree names
in the standard output.

The argument of the command is the name of the project file.

By default, the trees of the tree sample are printed. If the flag --consensus
is set, the trees stored in the consensus file are printed.

Trees are printed in the order used to read them for a consensus, so the
position of a name in the list (starting at 0) is the index expected by the
--tree flag of the command 'cons'.

If the flag --count is set, only the number of trees will be printed.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var consFlag bool
var countFlag bool

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&consFlag, "consensus", false, "")
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

	var tc *timetree.Collection
	if consFlag {
		tc, err = p.Consensus()
	} else {
		tc, err = p.Trees()
	}
	if err != nil {
		return err
	}

	ls := tc.Names()
	tree.SortNames(ls)
	if countFlag {
		fmt.Fprintf(c.Stdout(), "%d\n", len(ls))
		return nil
	}
	for _, t := range ls {
		fmt.Fprintf(c.Stdout(), "%s\n", t)
	}
	return nil
}
