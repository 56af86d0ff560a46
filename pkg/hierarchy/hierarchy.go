// Package hierarchy computes category levels from parent chains.
//
// Build is pure: it copies its input, walks every parent chain with a
// per-walk visited set, and reports loops and absent parents as warnings
// instead of failing.
package hierarchy

import (
	"sort"
	"strings"

	"github.com/5sensprod/possync/pkg/errors"
	"github.com/5sensprod/possync/pkg/records"
)

// Result holds annotated copies of the input categories.
type Result struct {
	Categories []*records.Category
	Warnings   []*errors.ReferenceError

	// Changed lists ids whose computed level differs from the stored one.
	Changed []string

	byID    map[string]*records.Category
	cyclic  map[string]bool
	flagged map[string]bool
}

// Build annotates a copy of every category with its level.
func Build(categories []*records.Category) *Result {
	r := &Result{
		Categories: make([]*records.Category, 0, len(categories)),
		byID:       make(map[string]*records.Category, len(categories)),
		cyclic:     make(map[string]bool),
		flagged:    make(map[string]bool),
	}
	for _, c := range categories {
		if c == nil {
			continue
		}
		cp := c.Clone()
		r.Categories = append(r.Categories, cp)
		if _, dup := r.byID[cp.ID]; !dup && cp.ID != "" {
			r.byID[cp.ID] = cp
		}
	}

	missingSeen := make(map[string]bool)
	for _, c := range r.Categories {
		level, warn := r.walk(c)
		if warn != nil {
			switch warn.Kind {
			case errors.RefCircular:
				r.Warnings = append(r.Warnings, warn)
				r.flagged[c.ID] = true
			case errors.RefMissing:
				if !missingSeen[warn.ID] {
					missingSeen[warn.ID] = true
					r.Warnings = append(r.Warnings, warn)
				}
			}
		}
		if level != c.Level || !c.HasLevel() {
			r.Changed = append(r.Changed, c.ID)
		}
		c.SetLevel(level)
	}
	return r
}

// walk counts hops from c to a root. A loop yields level 0 and a circular
// warning; an absent parent stops the walk with a missing_parent warning
// naming the category that holds the dangling parent_id.
func (r *Result) walk(c *records.Category) (int, *errors.ReferenceError) {
	visited := map[string]bool{c.ID: true}
	chain := []string{c.ID}
	level := 0
	cur := c
	for cur.ParentID != "" {
		parent, ok := r.byID[cur.ParentID]
		if !ok {
			return level, errors.NewReferenceError(errors.RefMissing, "category", cur.ID, "parent_id", cur.ParentID)
		}
		chain = append(chain, parent.ID)
		if visited[parent.ID] {
			r.markCycle(chain)
			err := errors.NewReferenceError(errors.RefCircular, "category", c.ID, "parent_id", c.ParentID)
			err.Chain = chain
			return 0, err
		}
		visited[parent.ID] = true
		level++
		cur = parent
	}
	return level, nil
}

// markCycle records the ids that sit on the loop itself, which is the
// tail of chain starting at the first occurrence of its last id.
func (r *Result) markCycle(chain []string) {
	last := chain[len(chain)-1]
	for i, id := range chain[:len(chain)-1] {
		if id == last {
			for _, member := range chain[i : len(chain)-1] {
				r.cyclic[member] = true
			}
			return
		}
	}
}

// Circular returns the number of categories whose walk hit a loop.
func (r *Result) Circular() int {
	return len(r.flagged)
}

// MissingParents returns the number of categories with an absent parent.
func (r *Result) MissingParents() int {
	n := 0
	for _, w := range r.Warnings {
		if w.Kind == errors.RefMissing {
			n++
		}
	}
	return n
}

// Get returns the annotated category with id.
func (r *Result) Get(id string) (*records.Category, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// Node is a category with its children.
type Node struct {
	Category *records.Category
	Children []*Node
}

// Tree arranges categories for display. Roots are categories without a
// resolvable parent plus the members of any loop. Siblings are ordered by
// name, then id.
func (r *Result) Tree() []*Node {
	nodes := make(map[*records.Category]*Node, len(r.Categories))
	for _, c := range r.Categories {
		nodes[c] = &Node{Category: c}
	}

	var roots []*Node
	for _, c := range r.Categories {
		n := nodes[c]
		parent, ok := r.byID[c.ParentID]
		if c.IsRoot() || !ok || r.cyclic[c.ID] || r.byID[c.ID] != c {
			roots = append(roots, n)
			continue
		}
		p := nodes[parent]
		p.Children = append(p.Children, n)
	}

	sortNodes(roots)
	return roots
}

func sortNodes(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i].Category, nodes[j].Category
		an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if an != bn {
			return an < bn
		}
		return a.ID < b.ID
	})
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}

// Path returns category names from the outermost reachable ancestor down
// to id. It stops at an absent parent or when the chain loops.
func (r *Result) Path(id string) []string {
	c, ok := r.byID[id]
	if !ok {
		return nil
	}
	seen := map[string]bool{}
	var names []string
	for c != nil && !seen[c.ID] {
		seen[c.ID] = true
		names = append(names, c.Name)
		if c.ParentID == "" {
			break
		}
		c = r.byID[c.ParentID]
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names
}

// Walk visits the tree depth first.
func Walk(nodes []*Node, fn func(n *Node, depth int)) {
	var visit func(ns []*Node, depth int)
	visit = func(ns []*Node, depth int) {
		for _, n := range ns {
			fn(n, depth)
			visit(n.Children, depth+1)
		}
	}
	visit(nodes, 0)
}
