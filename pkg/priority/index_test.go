// ABOUTME: Tests for the department priority index
// ABOUTME: Verifies ordering, removal, re-prioritization and the JSON pair format

package priority

import (
	"encoding/json"
	"errors"
	"math/rand"
	"reflect"
	"sort"
	"testing"
)

func TestListOrdersByPriority(t *testing.T) {
	idx := New()
	idx.Add(5, "X")
	idx.Add(2, "Y")

	want := []Entry{{2, "Y"}, {5, "X"}}
	if got := idx.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestTiesBrokenByName(t *testing.T) {
	idx := New()
	idx.Add(3, "Sales")
	idx.Add(3, "Audit")
	idx.Add(1, "Zeta")
	idx.Add(3, "Marketing")

	want := []Entry{{1, "Zeta"}, {3, "Audit"}, {3, "Marketing"}, {3, "Sales"}}
	if got := idx.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestListSortedForAnyInsertionOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 20; round++ {
		idx := New()
		var entries []Entry
		for i := 0; i < 50; i++ {
			e := Entry{Priority: rng.Intn(10), Name: string(rune('a'+i%26)) + string(rune('A'+i/26))}
			entries = append(entries, e)
		}
		rng.Shuffle(len(entries), func(i, j int) { entries[i], entries[j] = entries[j], entries[i] })
		for _, e := range entries {
			if err := idx.Add(e.Priority, e.Name); err != nil {
				t.Fatalf("Failed to add %v: %v", e, err)
			}
		}

		got := idx.List()
		if !sort.SliceIsSorted(got, func(i, j int) bool { return got[i].Less(got[j]) }) {
			t.Fatalf("List not sorted: %v", got)
		}
		if len(got) != len(entries) {
			t.Fatalf("Expected %d entries, got %d", len(entries), len(got))
		}
	}
}

func TestDuplicateRejected(t *testing.T) {
	idx := New()
	idx.Add(1, "HR")
	if err := idx.Add(4, "HR"); !errors.Is(err, ErrDuplicateEntry) {
		t.Fatalf("Expected ErrDuplicateEntry, got %v", err)
	}
	if p, _ := idx.Get("HR"); p != 1 {
		t.Errorf("Expected priority 1 kept, got %d", p)
	}
}

func TestRemove(t *testing.T) {
	idx := New()
	for i, name := range []string{"A", "B", "C", "D"} {
		idx.Add(i, name)
	}

	if !idx.Remove("B") {
		t.Fatalf("Expected B to be removed")
	}
	if idx.Remove("B") {
		t.Errorf("Second remove of B should be a no-op")
	}
	if idx.Remove("missing") {
		t.Errorf("Remove of missing name should be a no-op")
	}

	want := []Entry{{0, "A"}, {2, "C"}, {3, "D"}}
	if got := idx.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestSetPriority(t *testing.T) {
	idx := New()
	idx.Add(1, "A")
	idx.Add(2, "B")

	idx.SetPriority("A", 10)
	idx.SetPriority("C", 0)

	want := []Entry{{0, "C"}, {2, "B"}, {10, "A"}}
	if got := idx.List(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if top, ok := idx.Peek(); !ok || top != (Entry{0, "C"}) {
		t.Errorf("Expected peek {0 C}, got %v", top)
	}
}

func TestRename(t *testing.T) {
	idx := New()
	idx.Add(4, "Finance")
	idx.Add(2, "HR")

	if err := idx.Rename("Finance", "Treasury"); err != nil {
		t.Fatalf("Failed to rename: %v", err)
	}
	if _, ok := idx.Get("Finance"); ok {
		t.Errorf("Old name still indexed")
	}
	if p, ok := idx.Get("Treasury"); !ok || p != 4 {
		t.Errorf("Expected Treasury at 4, got %d (%v)", p, ok)
	}
	if err := idx.Rename("Treasury", "HR"); !errors.Is(err, ErrDuplicateEntry) {
		t.Errorf("Expected ErrDuplicateEntry, got %v", err)
	}
	if err := idx.Rename("missing", "Other"); err != nil {
		t.Errorf("Rename of missing name should be a no-op, got %v", err)
	}
}

func TestPeekEmpty(t *testing.T) {
	if _, ok := New().Peek(); ok {
		t.Errorf("Expected empty peek")
	}
}

func TestEntryJSONPair(t *testing.T) {
	raw, err := json.Marshal([]Entry{{2, "Y"}, {5, "X"}})
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if string(raw) != `[[2,"Y"],[5,"X"]]` {
		t.Errorf("Unexpected encoding %s", raw)
	}

	var decoded []Entry
	if err := json.Unmarshal([]byte(`[[1, "Head Office"], [13, "Manufacturing"]]`), &decoded); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	want := []Entry{{1, "Head Office"}, {13, "Manufacturing"}}
	if !reflect.DeepEqual(decoded, want) {
		t.Errorf("Expected %v, got %v", want, decoded)
	}

	var bad Entry
	if err := json.Unmarshal([]byte(`[1]`), &bad); err == nil {
		t.Errorf("Expected error for short pair")
	}
	if err := json.Unmarshal([]byte(`["x", "y"]`), &bad); err == nil {
		t.Errorf("Expected error for non-numeric priority")
	}
}

func BenchmarkAddRemove(b *testing.B) {
	idx := New()
	names := make([]string, 1024)
	for i := range names {
		names[i] = string(rune('a'+i%26)) + string(rune(i))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		name := names[i%len(names)]
		if !idx.Remove(name) {
			idx.Add(i%100, name)
		}
	}
}
