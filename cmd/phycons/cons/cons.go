// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package cons implements a command to build
// a consensus tree
// from the trees of a PhyCons project.
package cons

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/js-arias/command"
	"github.com/js-arias/phycons/consensus"
	"github.com/js-arias/phycons/consparam"
	"github.com/js-arias/phycons/project"
	"github.com/js-arias/phycons/tree"
	"github.com/js-arias/timetree"
	"github.com/schollz/progressbar/v3"
)

var Command = &command.Command{
	Usage: `cons [--params <file>]
	[--clock] [--lengths <function>] [--threshold <value>]
	[--skip <number>] [--every <number>] [--until <number>]
	[--tree <index>] [--name <tree-name>]
	[--format <format>] [-o|--output <file>] [--quiet]
	<project-file>`,
	Short: "build a consensus tree",
	Long: `
Command cons reads the trees of a PhyCons project and builds a consensus tree.

The argument of the command is the name of the project file.

The consensus is built from the splits (the bipartitions of the terminals
defined by each internal branch) found in the trees. Splits are sorted by its
frequency in the sample, and a split is accepted only if it is compatible
with all the previously accepted splits, and if it is found in a proportion
of trees equal or larger than the threshold. By default the threshold is 0.5
(i.e., the majority-rule consensus). Use the flag --threshold to define a
different value. A threshold of 1 produces the strict consensus.

By default, the branch lengths of the consensus are the mean of the branch
lengths of each split. Use the flag --lengths with "median" to use the median.
If the flag --clock is set, the trees are treated as rooted and clock-like, so
the ages of the nodes are summarized, and all terminals of the consensus will
be aligned at the present.

The flags --skip, --every, and --until are used to sample the trees. The flag
--skip defines the number of trees discarded at the start of the sample
(e.g., the burn-in). The flag --every defines the sampling interval: only one
of each 'every' trees will be used. The flag --until defines the index of the
first tree that will not be used.

If the flag --tree is set, no consensus will be calculated, and the tree with
the indicated index (starting from 0) will be used instead.

By default, the parameters are read from the parameters file of the project
(or the default values are used if no file is defined). Use the flag --params
to read a different parameter file. Flags always override the values of the
parameter file.

By default, the resulting tree will be stored in the consensus file of the
project, with the name "consensus". Use the flag --name to define a different
name. If the project does not have a consensus file, a new one will be created
with the name 'consensus.tab'. Use the flag --output, or -o, to define a
different file. The consensus file uses the tab-delimited format of trees. If
the flag --format is set to "newick", the tree will be written in newick
format, with the split frequencies as node labels; in this case the project
is not modified, and if no output file is defined, the tree will be printed
in the standard output.

While the consensus is calculated, a progress bar is printed in the standard
error. Use the flag --quiet to remove the progress bar.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var clockFlag bool
var quietFlag bool
var threshold float64
var skipFlag int
var everyFlag int
var untilFlag int
var treeIndex int
var lengthsFlag string
var paramFile string
var treeName string
var format string
var output string

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&clockFlag, "clock", false, "")
	c.Flags().BoolVar(&quietFlag, "quiet", false, "")
	c.Flags().Float64Var(&threshold, "threshold", -1, "")
	c.Flags().IntVar(&skipFlag, "skip", -1, "")
	c.Flags().IntVar(&everyFlag, "every", -1, "")
	c.Flags().IntVar(&untilFlag, "until", -1, "")
	c.Flags().IntVar(&treeIndex, "tree", -1, "")
	c.Flags().StringVar(&lengthsFlag, "lengths", "", "")
	c.Flags().StringVar(&paramFile, "params", "", "")
	c.Flags().StringVar(&treeName, "name", consensus.Name, "")
	c.Flags().StringVar(&format, "format", "tsv", "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}
	switch format {
	case "tsv", "newick":
	default:
		return c.UsageError(fmt.Sprintf("unknown format %q", format))
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	param, err := readParams(p)
	if err != nil {
		return err
	}
	if err := param.Validate(); err != nil {
		return c.UsageError(err.Error())
	}

	tc, err := p.Trees()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	prog, done := progress(c.Stderr(), "consensus")
	t, err := consensus.Compute(ctx, tree.NewCollectionSource(tc), param, prog)
	done()
	if errors.Is(err, consensus.ErrNoTrees) {
		return fmt.Errorf("project %q: %v", args[0], err)
	}
	if err != nil {
		return err
	}

	if !param.Consensus || t.Name() != consensus.Name {
		fmt.Fprintf(c.Stderr(), "WARNING: using tree %q\n", t.Name())
	}
	t.SetName(treeName)

	if format == "newick" {
		return writeNewick(c.Stdout(), t)
	}
	return writeConsensus(p, t)
}

func readParams(p *project.Project) (consensus.Param, error) {
	var cp *consparam.CP
	var err error
	if paramFile != "" {
		cp, err = consparam.Read(paramFile)
	} else {
		cp, err = p.Params()
	}
	if err != nil {
		return consensus.Param{}, err
	}

	param := cp.Param()
	if clockFlag {
		param.Clock = true
	}
	if lengthsFlag != "" {
		a, err := consensus.ParseAggregation(lengthsFlag)
		if err != nil {
			return consensus.Param{}, err
		}
		param.Lengths = a
	}
	if threshold >= 0 {
		param.Threshold = threshold
	}
	if skipFlag >= 0 {
		param.Skip = skipFlag
	}
	if everyFlag >= 0 {
		param.Every = everyFlag
	}
	if untilFlag >= 0 {
		param.Until = untilFlag
	}
	if treeIndex >= 0 {
		param.Consensus = false
		param.Tree = treeIndex
	}
	return param, nil
}

// Progress returns a function
// that draws a progress bar.
func progress(w io.Writer, desc string) (func(float64), func()) {
	if quietFlag {
		return nil, func() {}
	}

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
	)
	fn := func(v float64) {
		bar.Set(int(v * 100))
	}
	done := func() {
		bar.Finish()
	}
	return fn, done
}

func writeNewick(w io.Writer, t *tree.Tree) (err error) {
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer func() {
			e := f.Close()
			if e != nil && err == nil {
				err = e
			}
		}()
		w = f
	}

	if err := t.Newick(w); err != nil {
		return fmt.Errorf("while writing tree %q: %v", t.Name(), err)
	}
	return nil
}

func writeConsensus(p *project.Project, t *tree.Tree) error {
	tt, err := tree.ToTimeTree(t)
	if err != nil {
		return fmt.Errorf("tree %q: %v", t.Name(), err)
	}

	prev, err := p.Consensus()
	if err != nil {
		return err
	}
	tc := timetree.NewCollection()
	for _, n := range prev.Names() {
		if n == tt.Name() {
			continue
		}
		if err := tc.Add(prev.Tree(n)); err != nil {
			return err
		}
	}
	if err := tc.Add(tt); err != nil {
		return err
	}

	name := output
	if name == "" {
		name = p.Path(project.Consensus)
		if name == "" {
			name = "consensus.tab"
		}
	}
	if err := writeTrees(name, tc); err != nil {
		return err
	}

	p.Add(project.Consensus, name)
	if err := p.Write(); err != nil {
		return err
	}
	return nil
}

func writeTrees(name string, tc *timetree.Collection) (err error) {
	f, err := os.Create(name)
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
		return fmt.Errorf("while writing to %q: %v", name, err)
	}
	return nil
}
