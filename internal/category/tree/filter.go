package tree

import "strings"

// Filter prunes the forest to nodes whose name or URL path contains term,
// case-insensitively, plus every ancestor of such a node. A blank term
// returns forest itself, not a copy.
func Filter(forest []*Node, term string) []*Node {
	needle := normalizeTerm(term)
	if needle == "" {
		return forest
	}
	return FilterFunc(forest, func(n *Node) bool {
		return Matches(n, needle)
	})
}

// Matches reports whether the node matches an already normalized needle.
func Matches(n *Node, needle string) bool {
	return strings.Contains(strings.ToLower(n.Name), needle) ||
		strings.Contains(strings.ToLower(n.URLPath), needle)
}

// FilterFunc keeps nodes for which match returns true together with their
// ancestor chains. Kept nodes are fresh copies whose children are replaced
// by the filtered children; the input forest is not modified.
func FilterFunc(forest []*Node, match func(*Node) bool) []*Node {
	kept := make([]*Node, 0)
	for _, n := range forest {
		children := FilterFunc(n.Children, match)
		if !match(n) && len(children) == 0 {
			continue
		}
		clone := *n
		clone.Children = children
		kept = append(kept, &clone)
	}
	return kept
}

// FilterIDs keeps the nodes whose ids are in ids, with their ancestors.
func FilterIDs(forest []*Node, ids map[string]bool) []*Node {
	return FilterFunc(forest, func(n *Node) bool {
		return ids[n.ID]
	})
}

func normalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Span locates a match inside a name, in runes.
type Span struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// Split cuts name around the span.
func (s Span) Split(name string) (before, match, after string) {
	r := []rune(name)
	end := s.Start + s.Length
	if s.Start < 0 || end > len(r) || s.Length < 0 {
		return name, "", ""
	}
	return string(r[:s.Start]), string(r[s.Start:end]), string(r[end:])
}

// Highlight finds the first case-insensitive occurrence of needle in name.
// It is independent of Filter: a node kept only as an ancestor has no span.
func Highlight(name, needle string) (Span, bool) {
	n := []rune(normalizeTerm(needle))
	if len(n) == 0 {
		return Span{}, false
	}
	// strings.ToLower maps rune for rune, so offsets line up with name.
	h := []rune(strings.ToLower(name))
	for i := 0; i+len(n) <= len(h); i++ {
		if runesEqual(h[i:i+len(n)], n) {
			return Span{Start: i, Length: len(n)}, true
		}
	}
	return Span{}, false
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
