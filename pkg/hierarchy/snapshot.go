package hierarchy

import "fmt"

// Serialize returns the nested view of the whole tree, depth-first from the
// root. It returns nil when the tree has no root.
func (t *Tree) Serialize() *Snapshot {
	if t.root == noNode {
		return nil
	}
	return t.snapshot(t.root)
}

// Subtree returns the nested view rooted at name
func (t *Tree) Subtree(name string) (*Snapshot, error) {
	h, ok := t.names[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return t.snapshot(h), nil
}

func (t *Tree) snapshot(h Handle) *Snapshot {
	n := t.arena[h]
	s := &Snapshot{
		Department: n.dept,
		Children:   make([]*Snapshot, 0, len(n.children)),
	}
	for _, c := range n.children {
		s.Children = append(s.Children, t.snapshot(c))
	}
	return s
}

// Flatten returns one record per department in insertion order
func (t *Tree) Flatten() []Department {
	out := make([]Department, 0, t.live)
	for _, n := range t.arena {
		if n != nil {
			out = append(out, n.dept)
		}
	}
	return out
}

// IsEmpty reports whether the snapshot carries no department, which is how
// an empty hierarchy round-trips through persisted state.
func (s *Snapshot) IsEmpty() bool {
	return s == nil || (s.Name == "" && len(s.Children) == 0)
}

// Restore rebuilds a tree by replaying Add depth-first over a snapshot,
// root first and then each child under its parent's name.
func Restore(s *Snapshot) (*Tree, error) {
	t := New()
	if s.IsEmpty() {
		return t, nil
	}
	if err := t.restore(s, ""); err != nil {
		return nil, fmt.Errorf("restore hierarchy: %w", err)
	}
	return t, nil
}

func (t *Tree) restore(s *Snapshot, parent string) error {
	if err := t.Add(s.Department, parent); err != nil {
		return err
	}
	for _, c := range s.Children {
		if c == nil {
			continue
		}
		if err := t.restore(c, s.Name); err != nil {
			return err
		}
	}
	return nil
}
