// ABOUTME: Priority index over department names backed by a binary min-heap
// ABOUTME: Orders (priority, name) pairs ascending, ties broken by name

package priority

import (
	"container/heap"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// DefaultPriority is assigned to departments added without an explicit priority
const DefaultPriority = 999

// ErrDuplicateEntry indicates an add for a name already present in the index
var ErrDuplicateEntry = errors.New("priority: duplicate entry")

// Entry is one (priority, name) pair
type Entry struct {
	Priority int
	Name     string
}

// Less orders entries by priority, then by name
func (e Entry) Less(o Entry) bool {
	if e.Priority != o.Priority {
		return e.Priority < o.Priority
	}
	return e.Name < o.Name
}

// MarshalJSON encodes the entry as a [priority, name] pair
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.Priority, e.Name})
}

// UnmarshalJSON decodes a [priority, name] pair
func (e *Entry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("priority entry: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("priority entry: expected 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.Priority); err != nil {
		return fmt.Errorf("priority entry priority: %w", err)
	}
	if err := json.Unmarshal(pair[1], &e.Name); err != nil {
		return fmt.Errorf("priority entry name: %w", err)
	}
	return nil
}

type item struct {
	Entry
	index int
}

// entryHeap implements heap.Interface and keeps each item's slot current
type entryHeap []*item

func (h entryHeap) Len() int           { return len(h) }
func (h entryHeap) Less(i, j int) bool { return h[i].Entry.Less(h[j].Entry) }

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *entryHeap) Push(x any) {
	it := x.(*item)
	it.index = len(*h)
	*h = append(*h, it)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*h = old[:n-1]
	return it
}

// Index maps department names to priorities. It is not safe for concurrent
// use.
type Index struct {
	heap   entryHeap
	byName map[string]*item
}

// New creates an empty index
func New() *Index {
	return &Index{byName: make(map[string]*item)}
}

// Len returns the number of entries
func (x *Index) Len() int {
	return len(x.heap)
}

// Add inserts a pair. A name may appear at most once.
func (x *Index) Add(priority int, name string) error {
	if _, ok := x.byName[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateEntry, name)
	}
	it := &item{Entry: Entry{Priority: priority, Name: name}}
	heap.Push(&x.heap, it)
	x.byName[name] = it
	return nil
}

// Remove deletes the entry for name and reports whether one existed
func (x *Index) Remove(name string) bool {
	it, ok := x.byName[name]
	if !ok {
		return false
	}
	heap.Remove(&x.heap, it.index)
	delete(x.byName, name)
	return true
}

// SetPriority replaces the priority of name, inserting it if absent
func (x *Index) SetPriority(name string, priority int) {
	if it, ok := x.byName[name]; ok {
		it.Priority = priority
		heap.Fix(&x.heap, it.index)
		return
	}
	_ = x.Add(priority, name)
}

// Rename moves the entry for oldName to newName, keeping its priority
func (x *Index) Rename(oldName, newName string) error {
	if oldName == newName {
		return nil
	}
	it, ok := x.byName[oldName]
	if !ok {
		return nil
	}
	if _, taken := x.byName[newName]; taken {
		return fmt.Errorf("%w: %q", ErrDuplicateEntry, newName)
	}
	delete(x.byName, oldName)
	it.Name = newName
	x.byName[newName] = it
	heap.Fix(&x.heap, it.index)
	return nil
}

// Get returns the priority of name
func (x *Index) Get(name string) (int, bool) {
	it, ok := x.byName[name]
	if !ok {
		return 0, false
	}
	return it.Priority, true
}

// Peek returns the lowest (priority, name) pair without removing it
func (x *Index) Peek() (Entry, bool) {
	if len(x.heap) == 0 {
		return Entry{}, false
	}
	return x.heap[0].Entry, true
}

// List returns every entry sorted by priority, ties broken by name
func (x *Index) List() []Entry {
	out := make([]Entry, len(x.heap))
	for i, it := range x.heap {
		out[i] = it.Entry
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
