package catalog

import (
	"slices"
	"strings"
)

// Node is a category with links to its children.
type Node struct {
	Category
	Children []*Node `json:"children,omitempty"`
}

// Tree is the category hierarchy derived from ParentID links.
type Tree struct {
	roots    []*Node
	nodeByID map[int]*Node
}

// BuildTree constructs the hierarchy from a flat category list.
// Categories whose parent is 0 or missing from the list become roots.
// Siblings are ordered by catalog position.
func BuildTree(categories []Category) *Tree {
	tree := &Tree{
		nodeByID: make(map[int]*Node, len(categories)),
	}

	// First pass: one node per id, later duplicates win
	var order []int
	for _, c := range categories {
		if node, exists := tree.nodeByID[c.ID]; exists {
			node.Category = c
			continue
		}
		tree.nodeByID[c.ID] = &Node{Category: c}
		order = append(order, c.ID)
	}

	// Second pass: link children to parents, in catalog order
	for _, id := range order {
		node := tree.nodeByID[id]
		parent, exists := tree.nodeByID[node.ParentID]
		if node.ParentID == 0 || !exists || parent == node {
			tree.roots = append(tree.roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	byPosition := func(a, b *Node) int { return a.CatalogPosition - b.CatalogPosition }
	slices.SortStableFunc(tree.roots, byPosition)
	for _, node := range tree.nodeByID {
		slices.SortStableFunc(node.Children, byPosition)
	}

	return tree
}

// Roots returns the top-level categories.
func (t *Tree) Roots() []*Node {
	return t.roots
}

// Node returns the node for a category id, or nil.
func (t *Tree) Node(id int) *Node {
	return t.nodeByID[id]
}

// Children returns the direct children of a category.
func (t *Tree) Children(id int) []*Node {
	node, exists := t.nodeByID[id]
	if !exists {
		return nil
	}
	return node.Children
}

// IsLeaf reports whether a category has no children.
// Unknown categories are treated as leaves.
func (t *Tree) IsLeaf(id int) bool {
	node, exists := t.nodeByID[id]
	if !exists {
		return true
	}
	return len(node.Children) == 0
}

// Path returns the categories from the root down to id, or nil when id is unknown.
func (t *Tree) Path(id int) []Category {
	var path []Category
	seen := make(map[int]bool)
	for node := t.nodeByID[id]; node != nil && !seen[node.ID]; node = t.nodeByID[node.ParentID] {
		seen[node.ID] = true
		path = append(path, node.Category)
		if node.ParentID == 0 {
			break
		}
	}
	slices.Reverse(path)
	return path
}

// PathString renders Path as a breadcrumb, e.g. "Home & living > Drinkware > Mugs".
func (t *Tree) PathString(id int) string {
	path := t.Path(id)
	titles := make([]string, len(path))
	for i, c := range path {
		titles[i] = c.Title
	}
	return strings.Join(titles, " > ")
}
