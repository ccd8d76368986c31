// Package tree turns a flat, parent-referencing list of categories into a
// sorted forest and derives the views built on top of it: search pruning,
// flattened parent selectors, parent candidates, selection and expansion.
//
// Everything here is a pure function over in-memory slices. Forests are
// rebuilt wholesale on every reload and nodes are never mutated after Build
// returns, so results may be shared freely between goroutines.
package tree

import "github.com/singladno/marinaobuv-sub001/internal/model"

// Node is the nested, in-memory form of a category record.
// Children are owned by the node; a node never appears in two trees.
type Node struct {
	ID                 string  `json:"id" yaml:"id"`
	ParentID           string  `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	Name               string  `json:"name" yaml:"name"`
	Slug               string  `json:"slug" yaml:"slug"`
	URLPath            string  `json:"urlPath" yaml:"urlPath"`
	Sort               int     `json:"sort" yaml:"sort"`
	IsActive           bool    `json:"isActive" yaml:"isActive"`
	DirectProductCount int     `json:"directProductCount" yaml:"directProductCount"`
	TotalProductCount  int     `json:"totalProductCount" yaml:"totalProductCount"`
	Icon               string  `json:"icon,omitempty" yaml:"icon,omitempty"`
	Depth              int     `json:"depth" yaml:"depth"`
	Children           []*Node `json:"children" yaml:"children"`
}

func newNode(c *model.Category) *Node {
	n := &Node{
		ID:                 c.ID,
		ParentID:           c.Parent(),
		Name:               c.Name,
		Slug:               c.Slug,
		URLPath:            c.URLPath,
		Sort:               c.SortOrder,
		IsActive:           c.IsActive,
		DirectProductCount: c.DirectProductCount,
		TotalProductCount:  c.TotalProductCount,
		Children:           make([]*Node, 0),
	}
	if c.Icon != nil {
		n.Icon = *c.Icon
	}
	return n
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Count returns the number of nodes reachable from the forest.
func Count(forest []*Node) int {
	total := 0
	Walk(forest, func(*Node, int) bool {
		total++
		return true
	})
	return total
}

// Walk visits every node in pre-order. Returning false from fn skips the
// node's children.
func Walk(forest []*Node, fn func(n *Node, depth int) bool) {
	var visit func(nodes []*Node, depth int)
	visit = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			if fn(n, depth) {
				visit(n.Children, depth+1)
			}
		}
	}
	visit(forest, 0)
}

// Find returns the node with the given id, or nil.
func Find(forest []*Node, id string) *Node {
	path := PathTo(forest, id)
	if len(path) == 0 {
		return nil
	}
	return path[len(path)-1]
}

// PathTo returns the chain of nodes from a root down to the node with the
// given id, inclusive. It returns nil when the id is not in the forest.
func PathTo(forest []*Node, id string) []*Node {
	if id == "" {
		return nil
	}
	var stack []*Node
	var search func(nodes []*Node) bool
	search = func(nodes []*Node) bool {
		for _, n := range nodes {
			stack = append(stack, n)
			if n.ID == id || search(n.Children) {
				return true
			}
			stack = stack[:len(stack)-1]
		}
		return false
	}
	if !search(forest) {
		return nil
	}
	return stack
}
