package tree

import (
	"slices"

	"github.com/singladno/marinaobuv-sub001/internal/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Builder converts flat category records into a sorted forest. Sibling order
// uses the collation rules of its language tag.
type Builder struct {
	tag language.Tag
}

// NewBuilder returns a Builder that sorts names for the given locale.
func NewBuilder(tag language.Tag) *Builder {
	return &Builder{tag: tag}
}

var defaultBuilder = NewBuilder(language.Und)

// Build converts records using the root collation. See (*Builder).Build.
func Build(records []model.Category) []*Node {
	return defaultBuilder.Build(records)
}

// Build converts records into a forest.
//
// Every distinct record id yields exactly one node. A record is attached to
// its parent only when the parent id resolves to another record in the
// input; orphans and self-references become roots. Records that reach each
// other only through a longer cycle (A->B->A) would otherwise be unreachable,
// so the cycle is cut at the member that comes first in the input and that
// member becomes a root. Build never fails.
func (b *Builder) Build(records []model.Category) []*Node {
	if len(records) == 0 {
		return []*Node{}
	}

	nodes := make(map[string]*Node, len(records))
	order := make([]string, 0, len(records))
	position := make(map[string]int, len(records))
	for i := range records {
		id := records[i].ID
		if _, seen := nodes[id]; !seen {
			order = append(order, id)
			position[id] = len(order) - 1
		}
		nodes[id] = newNode(&records[i])
	}

	parents := make(map[string]string, len(order))
	for _, id := range order {
		p := nodes[id].ParentID
		if p == "" || p == id {
			continue
		}
		if _, ok := nodes[p]; ok {
			parents[id] = p
		}
	}
	breakCycles(order, position, parents)

	roots := make([]*Node, 0)
	for _, id := range order {
		n := nodes[id]
		if p, ok := parents[id]; ok {
			nodes[p].Children = append(nodes[p].Children, n)
			continue
		}
		roots = append(roots, n)
	}

	c := collate.New(b.tag)
	b.sortLevel(c, roots, 0)
	return roots
}

func (b *Builder) sortLevel(c *collate.Collator, nodes []*Node, depth int) {
	slices.SortFunc(nodes, func(x, y *Node) int {
		if r := c.CompareString(x.Name, y.Name); r != 0 {
			return r
		}
		if x.Sort != y.Sort {
			return x.Sort - y.Sort
		}
		switch {
		case x.ID < y.ID:
			return -1
		case x.ID > y.ID:
			return 1
		}
		return 0
	})
	for _, n := range nodes {
		n.Depth = depth
		b.sortLevel(c, n.Children, depth+1)
	}
}

// breakCycles removes one parent link from every cycle in parents so that
// each id reaches a root. The removed link belongs to the cycle member with
// the lowest input position.
func breakCycles(order []string, position map[string]int, parents map[string]string) {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, len(order))
	for _, start := range order {
		if state[start] != unvisited {
			continue
		}
		var path []string
		id := start
		for {
			if state[id] == done {
				break
			}
			if state[id] == inProgress {
				cut := id
				for i := len(path) - 1; i >= 0 && path[i] != id; i-- {
					if position[path[i]] < position[cut] {
						cut = path[i]
					}
				}
				delete(parents, cut)
				break
			}
			state[id] = inProgress
			path = append(path, id)
			p, ok := parents[id]
			if !ok {
				break
			}
			id = p
		}
		for _, v := range path {
			state[v] = done
		}
	}
}
