// ABOUTME: Persisted state shared by every storage backend
// ABOUTME: Holds the nested hierarchy and the sorted priority pairs

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nainya/orgchart/pkg/hierarchy"
	"github.com/nainya/orgchart/pkg/priority"
)

// ErrNoState indicates that nothing has been persisted yet
var ErrNoState = errors.New("store: no persisted state")

// Driver names accepted by Open
const (
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// State is the full persisted image: {"hierarchy": {...}, "heap": [[p, name], ...]}
type State struct {
	Hierarchy *hierarchy.Snapshot `json:"hierarchy"`
	Heap      []priority.Entry    `json:"heap"`
}

// MarshalJSON writes an empty hierarchy as {} and an empty heap as []
func (s State) MarshalJSON() ([]byte, error) {
	var h any = struct{}{}
	if !s.Hierarchy.IsEmpty() {
		h = s.Hierarchy
	}
	heap := s.Heap
	if heap == nil {
		heap = []priority.Entry{}
	}
	return json.Marshal(struct {
		Hierarchy any              `json:"hierarchy"`
		Heap      []priority.Entry `json:"heap"`
	}{h, heap})
}

// Store loads and saves the full state
type Store interface {
	// Load returns ErrNoState when nothing has been saved
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, state *State) error
	Close() error
}

// Open creates the backend named by driver
func Open(driver, path string) (Store, error) {
	switch driver {
	case DriverFile, "":
		return NewFileStore(nil, path), nil
	case DriverSQLite:
		return OpenSQLite(path)
	}
	return nil, fmt.Errorf("store: unknown driver %q", driver)
}

func decodeState(data []byte) (*State, error) {
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &st, nil
}
