package audit

import "strings"

// PathSeparator splits hierarchical classification labels such as
// "Assets > Current Assets > Cash".
const PathSeparator = ">"

// TreeNode is one classification level. Nodes reference each other by index
// into Tree.Nodes; Parent is -1 for roots.
type TreeNode struct {
	Label    string
	Path     string
	Depth    int
	Parent   int
	Children []int
	Accounts []int // indexes into the accounts slice passed to BuildTree
	Totals   GroupTotals
}

// Tree is an arena of classification nodes.
type Tree struct {
	Nodes []TreeNode
	Roots []int
}

// BuildTree arranges accounts under their hierarchical classification labels.
// Every node's totals include all accounts beneath it.
func BuildTree(accounts []TrialBalanceAccount) *Tree {
	t := &Tree{}
	byPath := make(map[string]int)

	for ai, a := range accounts {
		parts := splitPath(a.ClassificationLabel())
		parent := -1
		path := ""
		for depth, part := range parts {
			if path == "" {
				path = part
			} else {
				path = path + " " + PathSeparator + " " + part
			}
			ni, ok := byPath[path]
			if !ok {
				ni = len(t.Nodes)
				t.Nodes = append(t.Nodes, TreeNode{Label: part, Path: path, Depth: depth, Parent: parent})
				byPath[path] = ni
				if parent < 0 {
					t.Roots = append(t.Roots, ni)
				} else {
					t.Nodes[parent].Children = append(t.Nodes[parent].Children, ni)
				}
			}
			t.Nodes[ni].Totals.add(a)
			parent = ni
		}
		t.Nodes[parent].Accounts = append(t.Nodes[parent].Accounts, ai)
	}
	return t
}

// Walk visits nodes depth-first in insertion order. Returning false from fn
// skips the node's children.
func (t *Tree) Walk(fn func(i int, n *TreeNode) bool) {
	stack := make([]int, 0, len(t.Roots))
	for i := len(t.Roots) - 1; i >= 0; i-- {
		stack = append(stack, t.Roots[i])
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.Nodes[i]
		if !fn(i, n) {
			continue
		}
		for c := len(n.Children) - 1; c >= 0; c-- {
			stack = append(stack, n.Children[c])
		}
	}
}

// Ancestors returns the indexes from i's parent up to its root.
func (t *Tree) Ancestors(i int) []int {
	var out []int
	for p := t.Nodes[i].Parent; p >= 0; p = t.Nodes[p].Parent {
		out = append(out, p)
	}
	return out
}

func splitPath(label string) []string {
	var parts []string
	for _, p := range strings.Split(label, PathSeparator) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		parts = []string{Unclassified}
	}
	return parts
}
