// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Newick writes a tree in Newick (parenthetical) format.
// Node support values,
// if defined,
// are written as internal node labels.
func (t *Tree) Newick(w io.Writer) error {
	bw := bufio.NewWriter(w)
	t.newick(bw, t.Root())
	fmt.Fprintf(bw, ";\n")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("tree %q: while writing newick: %v", t.name, err)
	}
	return nil
}

func (t *Tree) newick(w *bufio.Writer, id int) {
	n := t.nodes[id]
	if len(n.children) > 0 {
		w.WriteByte('(')
		for i, c := range n.children {
			if i > 0 {
				w.WriteByte(',')
			}
			t.newick(w, c)
		}
		w.WriteByte(')')
		if !math.IsNaN(n.support) {
			w.WriteString(strconv.FormatFloat(n.support, 'f', -1, 64))
		}
	}
	if n.taxon != "" {
		w.WriteString(quote(n.taxon))
	}
	if n.parent >= 0 {
		w.WriteByte(':')
		w.WriteString(strconv.FormatFloat(n.length, 'f', -1, 64))
	}
}

// Quote returns a valid Newick label.
func quote(name string) string {
	if !strings.ContainsAny(name, " ()[]':;,") {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}
