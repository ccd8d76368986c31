package tree

import (
	"testing"

	"github.com/singladno/marinaobuv-sub001/internal/model"
	"github.com/stretchr/testify/assert"
)

func deepRecords() []model.Category {
	return []model.Category{
		cat("r", "", "Root"),
		cat("c1", "r", "Child"),
		cat("g1", "c1", "Grandchild"),
		cat("gg1", "g1", "Great"),
		cat("other", "", "Other"),
	}
}

func TestExpansionDefaults(t *testing.T) {
	state := Expansion(Build(deepRecords()), ExpansionOptions{})
	assert.True(t, state["r"])
	assert.True(t, state["c1"])
	assert.False(t, state["g1"])
	assert.False(t, state["gg1"])
	assert.True(t, state["other"])
}

func TestExpansionSearchForcesAll(t *testing.T) {
	state := Expansion(Build(deepRecords()), ExpansionOptions{Term: "great"})
	for id, expanded := range state {
		assert.True(t, expanded, id)
	}
}

func TestExpansionSelectionForcesAncestors(t *testing.T) {
	state := Expansion(Build(deepRecords()), ExpansionOptions{SelectedID: "gg1"})
	assert.True(t, state["g1"])
	assert.False(t, state["gg1"])
}

func TestExpansionCustomDepth(t *testing.T) {
	state := Expansion(Build(deepRecords()), ExpansionOptions{Depth: 1})
	assert.True(t, state["r"])
	assert.False(t, state["c1"])
}

func TestExpansionStateToggleUntilForced(t *testing.T) {
	forest := Build(deepRecords())
	s := NewExpansionState(0)

	s.Toggle("r", false)
	s.Toggle("g1", true)
	state := s.Resolve(forest)
	assert.False(t, state["r"])
	assert.True(t, state["g1"])

	// A new search re-forces expansion and discards toggles.
	s.SetSearch("child")
	state = s.Resolve(forest)
	assert.True(t, state["r"])

	// Collapsing during the same search sticks.
	s.Toggle("r", false)
	s.SetSearch(" CHILD ")
	assert.False(t, s.Resolve(forest)["r"])

	// Clearing the search keeps toggles but drops the forcing.
	s.SetSearch("")
	state = s.Resolve(forest)
	assert.False(t, state["r"])
	assert.False(t, state["g1"])
}

func TestExpansionStateSelectClearsAncestorToggles(t *testing.T) {
	forest := Build(deepRecords())
	s := NewExpansionState(0)
	s.Toggle("c1", false)
	s.Toggle("other", false)

	s.Select(forest, "g1")
	state := s.Resolve(forest)
	assert.True(t, state["c1"])
	assert.False(t, state["other"])
}

func TestExpansionStateIgnoresStaleToggles(t *testing.T) {
	s := NewExpansionState(0)
	s.Toggle("gone", true)
	state := s.Resolve(Build(deepRecords()))
	_, ok := state["gone"]
	assert.False(t, ok)
}
