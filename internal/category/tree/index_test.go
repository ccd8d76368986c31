package tree

import (
	"testing"

	"github.com/singladno/marinaobuv-sub001/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexLookup(t *testing.T) {
	idx := NewIndex(deepRecords())

	assert.Equal(t, 5, idx.Len())
	assert.True(t, idx.Has("g1"))
	assert.False(t, idx.Has("nope"))
	assert.Equal(t, "Grandchild", idx.Name("g1"))
	assert.Equal(t, "", idx.Name("nope"))
	assert.Equal(t, "c1", idx.Parent("g1"))
	assert.Equal(t, []string{"c1"}, idx.ChildrenOf("r"))
	assert.Equal(t, []string{"g1", "c1", "r"}, idx.Ancestors("gg1"))
	assert.Equal(t, []string{"c1", "g1", "gg1"}, idx.Descendants("r"))
	assert.Empty(t, idx.Descendants("gg1"))
}

func TestIndexURLPath(t *testing.T) {
	idx := NewIndex(deepRecords())
	assert.Equal(t, "r/c1/g1", idx.URLPath("g1"))
	assert.Equal(t, "other", idx.URLPath("other"))
	assert.Equal(t, "", idx.URLPath("nope"))
}

func TestIndexWouldCreateCycle(t *testing.T) {
	idx := NewIndex(deepRecords())
	assert.True(t, idx.WouldCreateCycle("r", "r"))
	assert.True(t, idx.WouldCreateCycle("r", "gg1"))
	assert.True(t, idx.WouldCreateCycle("c1", "g1"))
	assert.False(t, idx.WouldCreateCycle("g1", "other"))
	assert.False(t, idx.WouldCreateCycle("g1", "r"))
	assert.False(t, idx.WouldCreateCycle("g1", ""))
}

func TestIndexCycles(t *testing.T) {
	records := []model.Category{
		cat("a", "b", "A"),
		cat("b", "c", "B"),
		cat("c", "a", "C"),
		cat("d", "d", "Self"),
		cat("e", "", "Root"),
		cat("x", "y", "X"),
		cat("y", "x", "Y"),
	}
	idx := NewIndex(records)
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"x", "y"}}, idx.Cycles())
	assert.Empty(t, NewIndex(deepRecords()).Cycles())

	// Walks terminate even on malformed input.
	assert.Len(t, idx.Ancestors("a"), 2)
	assert.Len(t, idx.Descendants("a"), 2)
}

func TestRollupCounts(t *testing.T) {
	records := deepRecords()
	for i := range records {
		records[i].DirectProductCount = i + 1
	}
	withTotals := WithTotals(records)

	totals := map[string]int{}
	for _, r := range withTotals {
		totals[r.ID] = r.TotalProductCount
	}
	assert.Equal(t, 1+2+3+4, totals["r"])
	assert.Equal(t, 2+3+4, totals["c1"])
	assert.Equal(t, 4, totals["gg1"])
	assert.Equal(t, 5, totals["other"])
	// The input is left alone.
	require.Zero(t, records[0].TotalProductCount)
}

func TestRollupCountsOnCycleFollowBuild(t *testing.T) {
	records := []model.Category{cat("A", "B", "Alpha"), cat("B", "A", "Beta"), cat("C", "B", "Gamma")}
	records[0].DirectProductCount = 1
	records[1].DirectProductCount = 2
	records[2].DirectProductCount = 4

	// Map iteration order must not leak into the totals.
	for range 50 {
		totals := NewIndex(records).RollupCounts()
		require.Equal(t, map[string]int{"A": 7, "B": 6, "C": 4}, totals)
	}

	forest := Build(WithTotals(records))
	require.Len(t, forest, 1)
	assert.Equal(t, "A", forest[0].ID)
	assert.Equal(t, 7, forest[0].TotalProductCount)
	assert.Equal(t, 6, Find(forest, "B").TotalProductCount)
}
