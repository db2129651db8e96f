// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package splits implements a command to print
// the frequency of the splits
// found in the trees of a PhyCons project.
package splits

import (
	"context"
	"encoding/csv"
	"fmt"
	"image/color"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/js-arias/command"
	"github.com/js-arias/phycons/consensus"
	"github.com/js-arias/phycons/project"
	"github.com/js-arias/phycons/tree"
	"github.com/schollz/progressbar/v3"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var Command = &command.Command{
	Usage: `splits [--clock] [--threshold <value>]
	[--skip <number>] [--every <number>] [--until <number>]
	[-o|--output <file>] [--plot <file>] [--quiet]
	<project-file>`,
	Short: "print the frequency of the splits",
	Long: `
Command splits reads the trees of a PhyCons project and prints the frequency
of the splits (the bipartitions of the terminals defined by each internal
branch) found in the trees.

The argument of the command is the name of the project file.

The output is a tab-delimited table with the following columns:

	- split      the terminals in one side of the split
	- count      the number of trees with the split
	- frequency  the proportion of trees with the split
	- mean       the mean of the branch lengths
	- median     the median of the branch lengths
	- sd         the standard deviation of the branch lengths

Splits are sorted by decreasing frequency. If the trees are unrooted, the side
of the split printed is the one that does not contain the first terminal of
the first tree. If the flag --clock is set, the trees are treated as rooted
and clock-like, so each split is a clade and the values are the ages of the
nodes.

By default all splits are printed. Use the flag --threshold to print only the
splits with a frequency equal or larger than the given value.

The flags --skip, --every, and --until are used to sample the trees, as in the
command 'phycons cons'. By default, the values of the parameters file of the
project are used.

By default the table is printed in the standard output. Use the flag --output,
or -o, to define an output file.

If the flag --plot is defined, a plot with the frequency of each split, sorted
by decreasing frequency, will be written in the indicated file. The format of
the plot is defined by the file extension (e.g., ".png" or ".svg").

While the trees are read, a progress bar is printed in the standard error.
Use the flag --quiet to remove the progress bar.
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
var output string
var plotFile string

func setFlags(c *command.Command) {
	c.Flags().BoolVar(&clockFlag, "clock", false, "")
	c.Flags().BoolVar(&quietFlag, "quiet", false, "")
	c.Flags().Float64Var(&threshold, "threshold", 0, "")
	c.Flags().IntVar(&skipFlag, "skip", -1, "")
	c.Flags().IntVar(&everyFlag, "every", -1, "")
	c.Flags().IntVar(&untilFlag, "until", -1, "")
	c.Flags().StringVar(&output, "output", "", "")
	c.Flags().StringVar(&output, "o", "", "")
	c.Flags().StringVar(&plotFile, "plot", "", "")
}

func run(c *command.Command, args []string) (err error) {
	if len(args) < 1 {
		return c.UsageError("expecting project file")
	}

	p, err := project.Read(args[0])
	if err != nil {
		return err
	}
	cp, err := p.Params()
	if err != nil {
		return err
	}
	param := cp.Param()
	param.Consensus = true
	param.Lengths = consensus.Median
	param.Clock = param.Clock || clockFlag
	if skipFlag >= 0 {
		param.Skip = skipFlag
	}
	if everyFlag >= 0 {
		param.Every = everyFlag
	}
	if untilFlag >= 0 {
		param.Until = untilFlag
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

	var prog func(float64)
	var bar *progressbar.ProgressBar
	if !quietFlag {
		bar = progressbar.NewOptions(100,
			progressbar.OptionSetWriter(c.Stderr()),
			progressbar.OptionSetDescription("splits"),
			progressbar.OptionClearOnFinish(),
		)
		prog = func(v float64) {
			bar.Set(int(v * 100))
		}
	}
	tab, err := consensus.Splits(ctx, tree.NewCollectionSource(tc), param, prog)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	var recs []*consensus.Record
	for _, r := range tab.Records() {
		if float64(r.Count)/float64(tab.Trees()) < threshold {
			continue
		}
		recs = append(recs, r)
	}

	w := c.Stdout()
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
	if err := writeSplits(w, args[0], tab, recs); err != nil {
		return err
	}

	if plotFile != "" && len(recs) > 0 {
		if err := makePlot(tab.Trees(), recs); err != nil {
			return err
		}
	}
	return nil
}

func writeSplits(w io.Writer, p string, tab *consensus.Table, recs []*consensus.Record) error {
	fmt.Fprintf(w, "# split frequencies of project %q\n", p)
	fmt.Fprintf(w, "# trees: %d\n", tab.Trees())
	fmt.Fprintf(w, "# date: %s\n", time.Now().Format(time.RFC3339))

	tsv := csv.NewWriter(w)
	tsv.Comma = '\t'
	tsv.UseCRLF = true
	if err := tsv.Write([]string{"split", "count", "frequency", "mean", "median", "sd"}); err != nil {
		return err
	}

	names := tab.Taxa().Names()
	total := float64(tab.Trees())
	for _, r := range recs {
		vals := r.Values.Values()
		mean := r.Values.Mean()
		_, sd := stat.MeanStdDev(vals, nil)
		if len(vals) < 2 {
			sd = 0
		}
		med := r.Values.Median()

		row := []string{
			r.Split.Format(names),
			strconv.Itoa(r.Count),
			strconv.FormatFloat(float64(r.Count)/total, 'f', 6, 64),
			strconv.FormatFloat(mean, 'f', 6, 64),
			strconv.FormatFloat(med, 'f', 6, 64),
			strconv.FormatFloat(sd, 'f', 6, 64),
		}
		if err := tsv.Write(row); err != nil {
			return err
		}
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("while writing data: %v", err)
	}
	return nil
}

func makePlot(trees int, recs []*consensus.Record) error {
	p := plot.New()
	p.X.Label.Text = "split"
	p.Y.Label.Text = "frequency"
	p.Y.Min = 0
	p.Y.Max = 1

	xys := make(plotter.XYs, 0, len(recs))
	for i, r := range recs {
		xys = append(xys, plotter.XY{
			X: float64(i + 1),
			Y: float64(r.Count) / float64(trees),
		})
	}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return fmt.Errorf("while building plot: %v", err)
	}
	line.Color = color.Gray{0}
	p.Add(line)

	half := plotter.NewFunction(func(float64) float64 { return 0.5 })
	half.Color = color.Gray{160}
	half.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(half)

	if err := p.Save(5*vg.Inch, 3*vg.Inch, plotFile); err != nil {
		return fmt.Errorf("while writing plot %q: %v", plotFile, err)
	}
	return nil
}
