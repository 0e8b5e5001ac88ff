// ABOUTME: Tests for the file and SQLite state backends
// ABOUTME: Verifies round trips, empty state handling and the on-disk JSON shape

package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/nainya/orgchart/pkg/hierarchy"
	"github.com/nainya/orgchart/pkg/priority"
)

func sampleState() *State {
	return &State{
		Hierarchy: &hierarchy.Snapshot{
			Department: hierarchy.Department{Name: "Head Office", Head: "R. Singh", Employees: 120, Budget: 1500000, Perf: 9.2},
			Children: []*hierarchy.Snapshot{
				{
					Department: hierarchy.Department{Name: "Finance", Head: "S. Patel", Employees: 18, Budget: 250000, Perf: 8.4},
					Children:   []*hierarchy.Snapshot{},
				},
			},
		},
		Heap: []priority.Entry{{Priority: 1, Name: "Head Office"}, {Priority: 2, Name: "Finance"}},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	s := NewFileStore(fs, "/data/orgchart.json")

	if _, err := s.Load(ctx); !errors.Is(err, ErrNoState) {
		t.Fatalf("Expected ErrNoState, got %v", err)
	}

	want := sampleState()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Round trip mismatch:\n got %+v\nwant %+v", got, want)
	}

	if exists, _ := afero.Exists(fs, "/data/orgchart.json.tmp"); exists {
		t.Errorf("Temp file left behind")
	}
}

func TestFileStoreJSONShape(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	s := NewFileStore(fs, "state.json")

	if err := s.Save(ctx, &State{}); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	raw, _ := afero.ReadFile(fs, "state.json")

	var generic map[string]json.RawMessage
	if err := json.Unmarshal(raw, &generic); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if string(generic["hierarchy"]) != "{}" {
		t.Errorf("Expected empty hierarchy {}, got %s", generic["hierarchy"])
	}
	if string(generic["heap"]) != "[]" {
		t.Errorf("Expected empty heap [], got %s", generic["heap"])
	}

	loaded, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if !loaded.Hierarchy.IsEmpty() || len(loaded.Heap) != 0 {
		t.Errorf("Expected empty state, got %+v", loaded)
	}
}

func TestFileStoreReadsLegacyDocument(t *testing.T) {
	ctx := context.Background()
	fs := afero.NewMemMapFs()
	doc := `{
  "hierarchy": {"name": "Head Office", "head": "R. Singh", "employees": 120, "budget": 1500000, "perf": 9.2,
    "children": [{"name": "HR", "head": "M. Khan", "employees": 10, "budget": 150000, "perf": 8.1, "children": []}]},
  "heap": [[1, "Head Office"], [3, "HR"]]
}`
	afero.WriteFile(fs, "data.json", []byte(doc), 0o644)

	st, err := NewFileStore(fs, "data.json").Load(ctx)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if st.Hierarchy.Name != "Head Office" || len(st.Hierarchy.Children) != 1 {
		t.Errorf("Unexpected hierarchy %+v", st.Hierarchy)
	}
	if len(st.Heap) != 2 || st.Heap[1] != (priority.Entry{Priority: 3, Name: "HR"}) {
		t.Errorf("Unexpected heap %v", st.Heap)
	}
}

func TestFileStoreCorruptDocument(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "data.json", []byte(`{"hierarchy": [`), 0o644)

	_, err := NewFileStore(fs, "data.json").Load(context.Background())
	if err == nil || errors.Is(err, ErrNoState) {
		t.Errorf("Expected decode error, got %v", err)
	}
}

func TestFileStoreCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewFileStore(afero.NewMemMapFs(), "data.json")
	if err := s.Save(ctx, sampleState()); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "orgchart.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("Failed to open: %v", err)
	}
	defer s.Close()

	if _, err := s.Load(ctx); !errors.Is(err, ErrNoState) {
		t.Fatalf("Expected ErrNoState, got %v", err)
	}

	want := sampleState()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	// second save exercises the upsert path
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Failed to save again: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Round trip mismatch:\n got %+v\nwant %+v", got, want)
	}

	var parent string
	var prio int
	err = s.db.QueryRowContext(ctx,
		`SELECT parent, priority FROM departments WHERE name = ?`, "Finance").Scan(&parent, &prio)
	if err != nil {
		t.Fatalf("Failed to query projection: %v", err)
	}
	if parent != "Head Office" || prio != 2 {
		t.Errorf("Expected Finance under Head Office at 2, got %q at %d", parent, prio)
	}

	var count int
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM departments`).Scan(&count)
	if count != 2 {
		t.Errorf("Expected 2 projected departments, got %d", count)
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "orgchart.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("Failed to open: %v", err)
	}
	if err := s.Save(ctx, sampleState()); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	s.Close()

	reopened, err := Open(DriverSQLite, path)
	if err != nil {
		t.Fatalf("Failed to reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if got.Hierarchy.Name != "Head Office" {
		t.Errorf("Unexpected root %q", got.Hierarchy.Name)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open("etcd", "x")
	if err == nil || !strings.Contains(err.Error(), "unknown driver") {
		t.Errorf("Expected unknown driver error, got %v", err)
	}
}
