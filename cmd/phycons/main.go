// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// PhyCons is a tool to build consensus trees
// from samples of phylogenetic trees.
package main

import (
	"github.com/js-arias/command"
	"github.com/js-arias/phycons/cmd/phycons/cons"
	"github.com/js-arias/phycons/cmd/phycons/param"
	"github.com/js-arias/phycons/cmd/phycons/sim"
	"github.com/js-arias/phycons/cmd/phycons/splits"
	"github.com/js-arias/phycons/cmd/phycons/tree"
)

var app = &command.Command{
	Usage: "phycons <command> [<argument>...]",
	Short: "a tool to build consensus trees",
}

func init() {
	app.Add(cons.Command)
	app.Add(param.Command)
	app.Add(sim.Command)
	app.Add(splits.Command)
	app.Add(tree.Command)
}

func main() {
	app.Main()
}
