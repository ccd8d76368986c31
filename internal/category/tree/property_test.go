package tree

import (
	"fmt"
	"testing"

	"github.com/singladno/marinaobuv-sub001/internal/model"
	"pgregory.net/rapid"
)

// genRecords draws flat lists with unique ids and arbitrary parent links:
// roots, dangling parents, self references and cycles all occur.
func genRecords(t *rapid.T) []model.Category {
	n := rapid.IntRange(0, 40).Draw(t, "n")
	records := make([]model.Category, n)
	for i := range records {
		id := fmt.Sprintf("c%d", i)
		c := model.Category{
			Name:    rapid.StringMatching(`[a-zA-Z ]{0,8}`).Draw(t, "name"),
			Slug:    id,
			URLPath: rapid.StringMatching(`[a-z/]{0,10}`).Draw(t, "path"),
		}
		c.ID = id
		switch kind := rapid.IntRange(0, 3).Draw(t, "kind"); {
		case kind == 1:
			c.ParentID = ptr("missing")
		case kind >= 2 && n > 0:
			c.ParentID = ptr(fmt.Sprintf("c%d", rapid.IntRange(0, n-1).Draw(t, "parent")))
		}
		records[i] = c
	}
	return records
}

func TestPropertyNodeConservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		records := genRecords(t)
		if got := len(Flatten(Build(records), "")); got != len(records) {
			t.Fatalf("flatten(build(L)) has %d entries, want %d", got, len(records))
		}
	})
}

func TestPropertyEmptyFilterIsIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		forest := Build(genRecords(t))
		got := Filter(forest, rapid.SampledFrom([]string{"", " ", "\t\n"}).Draw(t, "blank"))
		if len(got) != len(forest) {
			t.Fatalf("got %d roots, want %d", len(got), len(forest))
		}
		for i := range forest {
			if got[i] != forest[i] {
				t.Fatalf("root %d is a different node", i)
			}
		}
	})
}

func TestPropertyAncestorPreservation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		forest := Build(genRecords(t))
		term := rapid.StringMatching(`[a-z]{1,2}`).Draw(t, "term")
		filtered := Filter(forest, term)
		needle := normalizeTerm(term)

		// Every match survives with its full original ancestor chain.
		Walk(forest, func(n *Node, _ int) bool {
			if !Matches(n, needle) {
				return true
			}
			want := PathTo(forest, n.ID)
			got := PathTo(filtered, n.ID)
			if len(got) != len(want) {
				t.Fatalf("path to %s: got %d nodes, want %d", n.ID, len(got), len(want))
			}
			for i := range want {
				if got[i].ID != want[i].ID {
					t.Fatalf("path to %s differs at %d: %s vs %s", n.ID, i, got[i].ID, want[i].ID)
				}
			}
			return true
		})

		// Nothing survives without a match somewhere in its own subtree.
		Walk(filtered, func(n *Node, _ int) bool {
			if len(Filter([]*Node{Find(forest, n.ID)}, term)) == 0 {
				t.Fatalf("%s kept without a match below it", n.ID)
			}
			return true
		})
	})
}

func TestPropertySelfExclusion(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		records := genRecords(t)
		if len(records) == 0 {
			return
		}
		editing := records[rapid.IntRange(0, len(records)-1).Draw(t, "editing")].ID
		mode := rapid.SampledFrom([]ParentMode{ParentsExcludeSelf, ParentsExcludeSubtree}).Draw(t, "mode")
		for _, r := range ValidParents(records, editing, mode) {
			if r.ID == editing {
				t.Fatalf("%s offered as its own parent", editing)
			}
		}
	})
}

func TestPropertySubtreeExclusionSizing(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		records := genRecords(t)
		if len(records) == 0 {
			return
		}
		editing := records[rapid.IntRange(0, len(records)-1).Draw(t, "editing")].ID
		descendants := len(NewIndex(records).Descendants(editing))

		self := len(Flatten(Build(ValidParents(records, editing, ParentsExcludeSelf)), ""))
		if self != len(records)-1 {
			t.Fatalf("self mode: got %d, want %d", self, len(records)-1)
		}
		subtree := len(Flatten(Build(ValidParents(records, editing, ParentsExcludeSubtree)), ""))
		if subtree != len(records)-1-descendants {
			t.Fatalf("subtree mode: got %d, want %d", subtree, len(records)-1-descendants)
		}
	})
}

func TestPropertyFlattenExcludeRemovesSubtree(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		records := genRecords(t)
		if len(records) == 0 {
			return
		}
		forest := Build(records)
		id := records[rapid.IntRange(0, len(records)-1).Draw(t, "exclude")].ID
		size := Count([]*Node{Find(forest, id)})
		if got := len(Flatten(forest, id)); got != len(records)-size {
			t.Fatalf("got %d entries, want %d", got, len(records)-size)
		}
	})
}

func TestPropertyOrphansAreRoots(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		records := genRecords(t)
		forest := Build(records)
		roots := make(map[string]bool, len(forest))
		for _, n := range forest {
			roots[n.ID] = true
		}
		for _, r := range records {
			if r.ParentID != nil && *r.ParentID == "missing" && !roots[r.ID] {
				t.Fatalf("orphan %s is not a root", r.ID)
			}
		}
	})
}

func TestPropertyReconcileSelection(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		records := genRecords(t)
		prev := rapid.SampledFrom([]string{"", "c0", "c3", "gone"}).Draw(t, "previous")
		got := ReconcileSelection(prev, records)
		idx := NewIndex(records)
		switch {
		case idx.Has(prev):
			if got != prev {
				t.Fatalf("kept selection %q replaced by %q", prev, got)
			}
		case len(records) == 0:
			if got != "" {
				t.Fatalf("empty list selected %q", got)
			}
		default:
			if got != Build(records)[0].ID {
				t.Fatalf("fallback %q is not the first root", got)
			}
		}
	})
}
