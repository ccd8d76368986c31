package tree

import "github.com/singladno/marinaobuv-sub001/internal/model"

// ReconcileSelection returns the id to treat as selected after a reload:
// previousID when it is still present, otherwise the first root of the
// rebuilt forest, otherwise "".
func ReconcileSelection(previousID string, records []model.Category) string {
	if contains(records, previousID) {
		return previousID
	}
	return firstRoot(Build(records))
}

func reconcileForest(previousID string, records []model.Category, forest []*Node) string {
	if contains(records, previousID) {
		return previousID
	}
	return firstRoot(forest)
}

func contains(records []model.Category, id string) bool {
	if id == "" {
		return false
	}
	for i := range records {
		if records[i].ID == id {
			return true
		}
	}
	return false
}

func firstRoot(forest []*Node) string {
	if len(forest) == 0 {
		return ""
	}
	return forest[0].ID
}

// Selection tracks the selected category across reloads of the flat list.
type Selection struct {
	builder    *Builder
	selectedID string
}

// NewSelection returns an empty selection. A nil builder uses root collation.
func NewSelection(b *Builder) *Selection {
	if b == nil {
		b = defaultBuilder
	}
	return &Selection{builder: b}
}

// SelectedID returns the current selection, "" when nothing is selected.
func (s *Selection) SelectedID() string {
	return s.selectedID
}

// Select sets the selection without validating it. The next Reload checks it.
func (s *Selection) Select(id string) {
	s.selectedID = id
}

// Reload rebuilds the forest from records and revalidates the selection.
func (s *Selection) Reload(records []model.Category) []*Node {
	forest := s.builder.Build(records)
	s.selectedID = reconcileForest(s.selectedID, records, forest)
	return forest
}
