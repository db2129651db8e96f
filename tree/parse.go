// Copyright © 2024 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package tree

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/evolbioinfo/gotree/io/newick"
	gotree "github.com/evolbioinfo/gotree/tree"
)

// Parse reads a tree in Newick format
// from a string.
// Numerical labels of internal nodes
// are read as support values.
// Comments
// (text between square brackets)
// are ignored.
// Underscores in taxon names are read as spaces.
func Parse(name, s string) (*Tree, error) {
	ls, rest, err := splitNewick(strings.NewReader(s))
	if err != nil {
		return nil, fmt.Errorf("tree %q: %v", name, err)
	}
	if len(ls) == 0 || strings.TrimSpace(rest) != "" {
		return nil, fmt.Errorf("tree %q: expecting ';' at the end of the tree", name)
	}
	if len(ls) > 1 {
		return nil, fmt.Errorf("tree %q: found %d trees, want 1", name, len(ls))
	}
	return parseOne(name, ls[0])
}

// ReadNewick reads one or more trees in Newick format.
// Each tree must end with a semicolon,
// and will be named using the indicated name
// and its position in the input,
// starting at 0.
func ReadNewick(r io.Reader, name string) ([]*Tree, error) {
	ls, rest, err := splitNewick(r)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rest) != "" {
		return nil, fmt.Errorf("tree %d: unexpected end of input", len(ls))
	}

	trees := make([]*Tree, 0, len(ls))
	for i, s := range ls {
		t, err := parseOne(fmt.Sprintf("%s.%d", name, i), s)
		if err != nil {
			return nil, err
		}
		trees = append(trees, t)
	}
	return trees, nil
}

func parseOne(name, s string) (*Tree, error) {
	gt, err := newick.NewParser(strings.NewReader(s)).Parse()
	if err != nil {
		return nil, fmt.Errorf("tree %q: %v", name, err)
	}
	t := New(name)
	if err := fromGoTree(t, t.Root(), gt.Root(), nil); err != nil {
		return nil, fmt.Errorf("tree %q: %v", name, err)
	}
	return t, nil
}

// fromGoTree copies the descendants of a gotree node
// into the node id.
func fromGoTree(t *Tree, id int, n, prev *gotree.Node) error {
	edges := n.Edges()
	for i, c := range n.Neigh() {
		if c == prev {
			continue
		}
		e := edges[i]
		l := e.Length()
		if l == gotree.NIL_LENGTH {
			l = 0
		}
		if l < 0 || math.IsNaN(l) {
			return fmt.Errorf("invalid branch length %v", l)
		}

		if c.Tip() {
			tax := taxonName(c.Name())
			if tax == "" {
				return errors.New("expecting terminal name")
			}
			if _, err := t.Add(id, l, tax); err != nil {
				return err
			}
			continue
		}

		cID, err := t.Add(id, l, "")
		if err != nil {
			return err
		}
		if s := e.Support(); s != gotree.NIL_SUPPORT {
			t.SetSupport(cID, s)
		} else if v, err := strconv.ParseFloat(c.Name(), 64); err == nil {
			t.SetSupport(cID, v)
		}
		if err := fromGoTree(t, cID, c, n); err != nil {
			return err
		}
	}
	return nil
}

func taxonName(s string) string {
	if len(s) > 1 && s[0] == '\'' && s[len(s)-1] == '\'' {
		s = strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}
	s = strings.ReplaceAll(s, "_", " ")
	return strings.Join(strings.Fields(s), " ")
}

// splitNewick splits an input into trees.
// Comments are removed,
// and semicolons inside quoted labels
// or inside unbalanced parenthesis
// do not end a tree.
// It returns the trees
// and any text after the last tree.
func splitNewick(r io.Reader) (trees []string, rest string, err error) {
	br := bufio.NewReader(r)
	var sb strings.Builder
	var quoted bool
	var comment, depth int
	for {
		c, _, err := br.ReadRune()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, "", err
		}

		switch {
		case comment > 0:
			if c == '[' {
				comment++
			} else if c == ']' {
				comment--
			}
			continue
		case quoted:
			if c == '\'' {
				quoted = false
			}
		case c == '\'':
			quoted = true
		case c == '[':
			comment++
			continue
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return nil, "", fmt.Errorf("tree %d: unbalanced parenthesis", len(trees))
			}
		case c == ';' && depth == 0:
			sb.WriteRune(c)
			trees = append(trees, sb.String())
			sb.Reset()
			continue
		}
		sb.WriteRune(c)
	}
	if quoted {
		return nil, "", fmt.Errorf("tree %d: unterminated quoted label", len(trees))
	}
	return trees, sb.String(), nil
}
