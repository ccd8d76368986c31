package tree

import (
	"fmt"
	"strings"

	"github.com/singladno/marinaobuv-sub001/internal/model"
)

// ParentMode decides which records are offered as the new parent of a
// category being edited.
type ParentMode int

const (
	// ParentsExcludeSelf drops only the edited record. Descendants stay
	// selectable, so picking one creates a cycle.
	ParentsExcludeSelf ParentMode = iota
	// ParentsExcludeSubtree drops the edited record and all its descendants.
	ParentsExcludeSubtree
)

func (m ParentMode) String() string {
	switch m {
	case ParentsExcludeSelf:
		return "self"
	case ParentsExcludeSubtree:
		return "subtree"
	}
	return fmt.Sprintf("ParentMode(%d)", int(m))
}

// ParseParentMode accepts "self" or "subtree".
func ParseParentMode(s string) (ParentMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "self":
		return ParentsExcludeSelf, nil
	case "subtree", "":
		return ParentsExcludeSubtree, nil
	}
	return 0, fmt.Errorf("unknown parent mode %q", s)
}

// ValidParents returns the records that may become the parent of editingID,
// in input order. An empty editingID means a new category, for which every
// record is a candidate.
func ValidParents(records []model.Category, editingID string, mode ParentMode) []model.Category {
	if editingID == "" {
		return append(make([]model.Category, 0, len(records)), records...)
	}

	excluded := map[string]bool{editingID: true}
	if mode == ParentsExcludeSubtree {
		for _, id := range NewIndex(records).Descendants(editingID) {
			excluded[id] = true
		}
	}

	candidates := make([]model.Category, 0, len(records))
	for _, r := range records {
		if !excluded[r.ID] {
			candidates = append(candidates, r)
		}
	}
	return candidates
}
