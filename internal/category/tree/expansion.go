package tree

import "strings"

// DefaultExpandDepth is the depth below which nodes start expanded.
const DefaultExpandDepth = 2

// ExpansionOptions are the inputs of the expansion rules.
type ExpansionOptions struct {
	Term       string
	SelectedID string
	// Depth is the default-expanded threshold; zero means DefaultExpandDepth.
	Depth int
}

func (o ExpansionOptions) depth() int {
	if o.Depth <= 0 {
		return DefaultExpandDepth
	}
	return o.Depth
}

// Expansion computes the expanded flag of every node in the forest.
// A node is expanded when its depth is below the threshold, when a search
// term is active, or when it is an ancestor of the selected node.
func Expansion(forest []*Node, opts ExpansionOptions) map[string]bool {
	searching := strings.TrimSpace(opts.Term) != ""
	forced := ancestorSet(forest, opts.SelectedID)
	threshold := opts.depth()

	state := make(map[string]bool)
	Walk(forest, func(n *Node, depth int) bool {
		state[n.ID] = searching || forced[n.ID] || depth < threshold
		return true
	})
	return state
}

func ancestorSet(forest []*Node, id string) map[string]bool {
	path := PathTo(forest, id)
	set := make(map[string]bool, len(path))
	for i := 0; i < len(path)-1; i++ {
		set[path[i].ID] = true
	}
	return set
}

// ExpansionState layers user toggles over the expansion rules. A toggle
// holds until the next event that forces expansion: a new non-empty search
// term clears every toggle, a new selection clears toggles on its ancestors.
type ExpansionState struct {
	opts    ExpansionOptions
	toggles map[string]bool
}

// NewExpansionState returns a state with the given default depth threshold.
func NewExpansionState(depth int) *ExpansionState {
	return &ExpansionState{
		opts:    ExpansionOptions{Depth: depth},
		toggles: make(map[string]bool),
	}
}

// Toggle records an explicit expand or collapse by the user.
func (s *ExpansionState) Toggle(id string, expanded bool) {
	s.toggles[id] = expanded
}

// SetSearch updates the active search term.
func (s *ExpansionState) SetSearch(term string) {
	prev := normalizeTerm(s.opts.Term)
	next := normalizeTerm(term)
	s.opts.Term = term
	if next != "" && next != prev {
		clear(s.toggles)
	}
}

// Select updates the selected node. Toggles on its ancestor path are
// dropped so the selection becomes visible.
func (s *ExpansionState) Select(forest []*Node, id string) {
	if id == s.opts.SelectedID {
		return
	}
	s.opts.SelectedID = id
	for ancestor := range ancestorSet(forest, id) {
		delete(s.toggles, ancestor)
	}
}

// Resolve returns the effective expanded flag for every node in forest.
// Toggles for ids no longer in the forest are ignored.
func (s *ExpansionState) Resolve(forest []*Node) map[string]bool {
	state := Expansion(forest, s.opts)
	for id, expanded := range s.toggles {
		if _, ok := state[id]; ok {
			state[id] = expanded
		}
	}
	return state
}
