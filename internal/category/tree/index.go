package tree

import (
	"slices"
	"strings"

	"github.com/singladno/marinaobuv-sub001/internal/model"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Index is a read-only lookup over one fetch of the flat category list.
// Build it once per fetch and pass it to whoever needs to resolve ids.
type Index struct {
	records  []model.Category
	byID     map[string]int
	children map[string][]string
}

// NewIndex indexes records by id. For duplicate ids the last record wins.
func NewIndex(records []model.Category) *Index {
	idx := &Index{
		records:  records,
		byID:     make(map[string]int, len(records)),
		children: make(map[string][]string),
	}
	for i := range records {
		idx.byID[records[i].ID] = i
	}
	for id, i := range idx.byID {
		if p := idx.parentOf(i); p != "" {
			idx.children[p] = append(idx.children[p], id)
		}
	}
	for p := range idx.children {
		slices.Sort(idx.children[p])
	}
	return idx
}

// parentOf resolves the declared parent of records[i], ignoring dangling
// and self references.
func (idx *Index) parentOf(i int) string {
	r := &idx.records[i]
	p := r.Parent()
	if p == "" || p == r.ID {
		return ""
	}
	if _, ok := idx.byID[p]; !ok {
		return ""
	}
	return p
}

func (idx *Index) Len() int {
	return len(idx.byID)
}

func (idx *Index) Has(id string) bool {
	_, ok := idx.byID[id]
	return ok
}

func (idx *Index) Get(id string) (model.Category, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return model.Category{}, false
	}
	return idx.records[i], true
}

// Name resolves an id to its display name, "" when unknown.
func (idx *Index) Name(id string) string {
	if c, ok := idx.Get(id); ok {
		return c.Name
	}
	return ""
}

// Parent returns the resolved parent id, "" for roots and orphans.
func (idx *Index) Parent(id string) string {
	i, ok := idx.byID[id]
	if !ok {
		return ""
	}
	return idx.parentOf(i)
}

// ChildrenOf returns the ids whose resolved parent is id, sorted.
func (idx *Index) ChildrenOf(id string) []string {
	return idx.children[id]
}

// Ancestors returns the parent chain of id, nearest first. The walk stops
// if it revisits an id, so malformed cycles terminate.
func (idx *Index) Ancestors(id string) []string {
	var chain []string
	seen := map[string]bool{id: true}
	for p := idx.Parent(id); p != "" && !seen[p]; p = idx.Parent(p) {
		seen[p] = true
		chain = append(chain, p)
	}
	return chain
}

// Descendants returns every id below id, breadth first.
func (idx *Index) Descendants(id string) []string {
	var out []string
	seen := map[string]bool{id: true}
	queue := append([]string(nil), idx.children[id]...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true
		out = append(out, next)
		queue = append(queue, idx.children[next]...)
	}
	return out
}

// WouldCreateCycle reports whether making parentID the parent of id closes
// a loop: either parentID is id itself or it lies inside id's subtree.
func (idx *Index) WouldCreateCycle(id, parentID string) bool {
	if parentID == "" {
		return false
	}
	if parentID == id {
		return true
	}
	for _, a := range idx.Ancestors(parentID) {
		if a == id {
			return true
		}
	}
	return false
}

// URLPath joins the slugs from the root down to id with "/".
func (idx *Index) URLPath(id string) string {
	c, ok := idx.Get(id)
	if !ok {
		return ""
	}
	ancestors := idx.Ancestors(id)
	parts := make([]string, 0, len(ancestors)+1)
	for i := len(ancestors) - 1; i >= 0; i-- {
		a, _ := idx.Get(ancestors[i])
		parts = append(parts, a.Slug)
	}
	parts = append(parts, c.Slug)
	return strings.Join(parts, "/")
}

// Cycles reports groups of ids whose parent links form a loop longer than a
// self reference. Each group and the list of groups are sorted.
func (idx *Index) Cycles() [][]string {
	ids := make([]string, 0, len(idx.byID))
	for id := range idx.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	num := make(map[string]int64, len(ids))

	g := simple.NewDirectedGraph()
	for i, id := range ids {
		num[id] = int64(i)
		g.AddNode(simple.Node(i))
	}
	for _, id := range ids {
		if p := idx.Parent(id); p != "" {
			g.SetEdge(g.NewEdge(simple.Node(num[id]), simple.Node(num[p])))
		}
	}

	var cycles [][]string
	for _, component := range topo.TarjanSCC(g) {
		if len(component) < 2 {
			continue
		}
		group := make([]string, 0, len(component))
		for _, n := range component {
			group = append(group, ids[n.ID()])
		}
		slices.Sort(group)
		cycles = append(cycles, group)
	}
	slices.SortFunc(cycles, func(a, b []string) int {
		return strings.Compare(a[0], b[0])
	})
	return cycles
}

// RollupCounts returns, per id, the direct product count plus the direct
// counts of every descendant. Descendants follow the forest Build returns,
// so records on a cycle are counted below the member the cycle is cut at.
func (idx *Index) RollupCounts() map[string]int {
	children := make(map[string][]string)
	for id, p := range idx.treeParents() {
		children[p] = append(children[p], id)
	}

	totals := make(map[string]int, len(idx.byID))
	var total func(id string) int
	total = func(id string) int {
		if t, ok := totals[id]; ok {
			return t
		}
		c, _ := idx.Get(id)
		t := c.DirectProductCount
		for _, child := range children[id] {
			t += total(child)
		}
		totals[id] = t
		return t
	}
	for id := range idx.byID {
		total(id)
	}
	return totals
}

// treeParents returns the parent links Build attaches: dangling and self
// references dropped, and every cycle cut at its earliest member.
func (idx *Index) treeParents() map[string]string {
	order := make([]string, 0, len(idx.byID))
	position := make(map[string]int, len(idx.byID))
	for i := range idx.records {
		id := idx.records[i].ID
		if _, seen := position[id]; !seen {
			position[id] = len(order)
			order = append(order, id)
		}
	}
	parents := make(map[string]string, len(order))
	for _, id := range order {
		if p := idx.parentOf(idx.byID[id]); p != "" {
			parents[id] = p
		}
	}
	breakCycles(order, position, parents)
	return parents
}

// WithTotals returns a copy of records with TotalProductCount filled in.
func WithTotals(records []model.Category) []model.Category {
	totals := NewIndex(records).RollupCounts()
	out := make([]model.Category, len(records))
	for i, r := range records {
		r.TotalProductCount = totals[r.ID]
		out[i] = r
	}
	return out
}
