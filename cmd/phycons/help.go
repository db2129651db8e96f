// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package main

import "github.com/js-arias/command"

func init() {
	app.Add(paramFilesGuide)
	app.Add(projectsGuide)
	app.Add(treeFilesGuide)
}

var paramFilesGuide = &command.Command{
	Usage: "parameters",
	Short: "about consensus parameter files",
	Long: `
The parameters used to build a consensus tree are stored in a parameter file.
The recommended way to edit or view this file is by using the command
'phycons param'.

A parameter file is a tab-delimited file with the following fields:

	- parameter  the name of the parameter
	- value      the value of the parameter

Here is an example file:

	# phycons consensus parameters
	parameter	value
	consensus	true
	tree	0
	clock	false
	lengths	mean
	threshold	0.5
	skip	1000
	every	10
	until	0

The valid parameters are:

- consensus. If false, no consensus is calculated, and a single tree of the
  sample is selected. By default it is true.
- tree. The index of the selected tree, starting from 0. Only used if
  consensus is false.
- clock. If true, the trees are treated as rooted and clock-like: node ages
  are summarized instead of branch lengths, and all terminals of the
  consensus will be aligned at the present. By default it is false.
- lengths. The function used to summarize branch lengths (or node ages). It
  can be "mean" or "median". By default it is "mean".
- threshold. The minimum proportion of trees in which a split must be found
  to be included in the consensus. A threshold of 0.5 is the majority-rule
  consensus (the default), and a threshold of 1 the strict consensus.
- skip. The number of trees discarded at the start of the sample (e.g., the
  burn-in of an MCMC sample).
- every. Only one of each 'every' trees is used.
- until. The index of the first tree that will not be used. If 0, all the
  trees will be used.
	`,
}

var projectsGuide = &command.Command{
	Usage: "projects",
	Short: "about project files",
	Long: `
PhyCons reads and writes several files. To reduce the burden of keeping track
of many files, a single project file is used to hold the reference of all
files required in the analysis. This guide explains the structure of the file,
but most of the time, the best and most secure way to edit or view this file
is by using phycons commands.

A project file is a tab-delimited file with the following fields:

	- dataset  for the kind of file
	- path     for the path of the file

Here is an example file:

	# phycons project files
	dataset	path
	trees	trees.tab
	params	cons-params.tab
	consensus	consensus.tab

The valid file types are:

- Tree samples. Defined by the dataset keyword "trees". This file contains
  the sample of trees in the form of a tab-delimited file. The recommended way
  to add trees is by using the command 'phycons tree add'.
- Consensus parameters. Defined by the dataset keyword "params". This file
  contains the parameters used to build the consensus. The recommended way to
  edit the parameters is by using the command 'phycons param'.
- Consensus trees. Defined by the dataset keyword "consensus". This file
  contains the consensus trees in the form of a tab-delimited file. The
  recommended way to create it is by using the command 'phycons cons'.

Any other dataset keyword, or a keyword defined twice, is an error.

Trees of a file are read in the order of their names, with numbers inside
the names compared by value (e.g., "mcmc.2" before "mcmc.10").
	`,
}

var treeFilesGuide = &command.Command{
	Usage: "tree-files",
	Short: "about tree files",
	Long: `
In PhyCons, trees are stored as tab-delimited files, and the branch lengths
are stored as node ages in years. A tree file has the following fields:

	- tree     the name of the tree
	- node     the ID of the node
	- parent   the ID of the parent node (-1 for the root)
	- age      the age of the node (in years)
	- taxon    the taxonomic name of the node

Here is an example file:

	# consensus tree
	tree	node	parent	age	taxon
	consensus	0	-1	3000000
	consensus	1	0	2000000
	consensus	2	1	0	Acer saccharinum
	consensus	3	1	0	Aesculus hippocastanum
	consensus	4	0	0	Alnus glutinosa

Trees in parenthetical (newick) format can be imported with the command
'phycons tree add --newick', and consensus trees can be exported in newick
format with the command 'phycons cons --format newick'.
	`,
}
