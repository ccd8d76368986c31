package tree

// Entry is one row of a flattened forest, as used by indented parent
// selectors.
type Entry struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Path  string `json:"path" yaml:"path"`
	Depth int    `json:"depth" yaml:"depth"`
}

// Flatten lists the forest in pre-order, parents before children. When
// excludeID is set, that node and its whole subtree are left out.
func Flatten(forest []*Node, excludeID string) []Entry {
	entries := make([]Entry, 0)
	Walk(forest, func(n *Node, depth int) bool {
		if excludeID != "" && n.ID == excludeID {
			return false
		}
		entries = append(entries, Entry{
			ID:    n.ID,
			Name:  n.Name,
			Path:  n.URLPath,
			Depth: depth,
		})
		return true
	})
	return entries
}
