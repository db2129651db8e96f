// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package param implements a command to manage
// the parameters of a consensus tree.
package param

import (
	"fmt"
	"io"
	"strconv"

	"github.com/js-arias/command"
	"github.com/js-arias/phycons/consparam"
	"github.com/js-arias/phycons/project"
)

var Command = &command.Command{
	Usage: `param [--add <param-file>] [--file <file-name>]
	[--consensus <bool>] [--tree <index>] [--clock <bool>]
	[--lengths <function>] [--threshold <value>]
	[--skip <number>] [--every <number>] [--until <number>]
	<project-file>`,
	Short: "manage consensus parameters",
	Long: `
Command param manages the parameters used to build a consensus tree for a
PhyCons project.

The argument of the command is the name of the project file.

By default, the command will print the currently defined parameters.

If the flag --add is defined, it will use the indicated file for the
consensus parameters.

By default, any change on the parameters will be stored in the current
parameters file. If the project does not have a parameters file, a new file
called 'cons-params.tab' will be created. Use the flag --file to define a new
parameters file.

The flag --consensus, with "true" or "false", defines if a consensus is
calculated. If false, the tree with the index defined by the flag --tree will
be used instead. Setting the flag --tree also sets the consensus to false.

The flag --clock, with "true" or "false", defines if the trees are treated
as clock-like trees.

The flag --lengths sets the function used to summarize the branch lengths.
Valid values are "mean" (the default) and "median".

The flag --threshold sets the minimum frequency of the splits accepted in the
consensus. By default it is 0.5 (the majority-rule consensus).

The flags --skip, --every, and --until, define the sample of trees used for
the consensus. See 'phycons help cons' for details.

See 'phycons help parameters' for a description of the parameters file.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var addFile string
var paramFile string
var consFlag string
var clockFlag string
var lengthsFlag string
var threshold float64
var treeIndex int
var skipFlag int
var everyFlag int
var untilFlag int

func setFlags(c *command.Command) {
	c.Flags().StringVar(&addFile, "add", "", "")
	c.Flags().StringVar(&paramFile, "file", "", "")
	c.Flags().StringVar(&consFlag, "consensus", "", "")
	c.Flags().StringVar(&clockFlag, "clock", "", "")
	c.Flags().StringVar(&lengthsFlag, "lengths", "", "")
	c.Flags().Float64Var(&threshold, "threshold", -1, "")
	c.Flags().IntVar(&treeIndex, "tree", -1, "")
	c.Flags().IntVar(&skipFlag, "skip", -1, "")
	c.Flags().IntVar(&everyFlag, "every", -1, "")
	c.Flags().IntVar(&untilFlag, "until", -1, "")
}

func run(c *command.Command, args []string) error {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}

	if addFile != "" {
		if _, err := consparam.Read(addFile); err != nil {
			return err
		}
		p.Add(project.Params, addFile)
		if err := p.Write(); err != nil {
			return err
		}
		return nil
	}

	cp, err := p.Params()
	if err != nil {
		return err
	}
	if paramFile != "" {
		cp.SetName(paramFile)
	}

	ed, err := setParams(cp)
	if err != nil {
		return err
	}
	if p.Path(project.Params) != cp.Name() && (ed || paramFile != "") {
		if err := cp.Write(); err != nil {
			return err
		}
		p.Add(project.Params, cp.Name())
		if err := p.Write(); err != nil {
			return err
		}
		return nil
	}
	if ed {
		if err := cp.Write(); err != nil {
			return err
		}
		return nil
	}

	printParams(c.Stdout(), cp)
	return nil
}

func setParams(cp *consparam.CP) (bool, error) {
	ed := false
	if consFlag != "" {
		v, err := strconv.ParseBool(consFlag)
		if err != nil {
			return false, fmt.Errorf("flag --consensus: %v", err)
		}
		cp.SetConsensus(v)
		ed = true
	}
	if treeIndex >= 0 {
		if err := cp.SetTree(treeIndex); err != nil {
			return false, err
		}
		cp.SetConsensus(false)
		ed = true
	}
	if clockFlag != "" {
		v, err := strconv.ParseBool(clockFlag)
		if err != nil {
			return false, fmt.Errorf("flag --clock: %v", err)
		}
		cp.SetClock(v)
		ed = true
	}
	if lengthsFlag != "" {
		if err := cp.SetLengths(lengthsFlag); err != nil {
			return false, err
		}
		ed = true
	}
	if threshold >= 0 {
		if err := cp.SetThreshold(threshold); err != nil {
			return false, err
		}
		ed = true
	}
	if skipFlag >= 0 {
		if err := cp.SetSkip(skipFlag); err != nil {
			return false, err
		}
		ed = true
	}
	if everyFlag >= 0 {
		if err := cp.SetEvery(everyFlag); err != nil {
			return false, err
		}
		ed = true
	}
	if untilFlag >= 0 {
		if err := cp.SetUntil(untilFlag); err != nil {
			return false, err
		}
		ed = true
	}
	return ed, nil
}

func printParams(w io.Writer, cp *consparam.CP) {
	p := cp.Param()
	fmt.Fprintf(w, "file:      %s\n", cp.Name())
	if !p.Consensus {
		fmt.Fprintf(w, "tree:      %d\n", p.Tree)
		return
	}
	fmt.Fprintf(w, "clock:     %v\n", p.Clock)
	fmt.Fprintf(w, "lengths:   %s\n", p.Lengths)
	fmt.Fprintf(w, "threshold: %.3f\n", p.Threshold)
	fmt.Fprintf(w, "skip:      %d\n", p.Skip)
	fmt.Fprintf(w, "every:     %d\n", p.Every)
	if p.Until > 0 {
		fmt.Fprintf(w, "until:     %d\n", p.Until)
	}
}
