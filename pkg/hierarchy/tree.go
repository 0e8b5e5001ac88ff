// ABOUTME: Arena-backed department tree addressed by unique name
// ABOUTME: Parent links are handles, so rename is a key remap and detach is O(children)

package hierarchy

import "fmt"

// compactThreshold is the minimum arena size before dead slots are reclaimed
const compactThreshold = 64

type node struct {
	dept     Department
	parent   Handle
	children []Handle
}

// Tree is the department hierarchy. It is not safe for concurrent use;
// callers serialize mutations and keep reads from overlapping them.
type Tree struct {
	// nil entries are deleted slots
	arena []*node
	names map[string]Handle
	root  Handle
	live  int
}

// New creates an empty tree
func New() *Tree {
	return &Tree{
		names: make(map[string]Handle),
		root:  noNode,
	}
}

// Len returns the number of departments in the tree
func (t *Tree) Len() int {
	return t.live
}

// Root returns the name of the root department
func (t *Tree) Root() (string, bool) {
	if t.root == noNode {
		return "", false
	}
	return t.arena[t.root].dept.Name, true
}

// Has reports whether a department with this name exists
func (t *Tree) Has(name string) bool {
	_, ok := t.names[name]
	return ok
}

// Get returns the attribute record of a department
func (t *Tree) Get(name string) (Department, bool) {
	h, ok := t.names[name]
	if !ok {
		return Department{}, false
	}
	return t.arena[h].dept, true
}

// Add inserts a new leaf department. An empty parent makes the department
// the root, which is only allowed while the tree has no root.
func (t *Tree) Add(dept Department, parent string) error {
	if err := dept.validate(); err != nil {
		return err
	}
	if t.Has(dept.Name) {
		return fmt.Errorf("%w: %q", ErrAlreadyExists, dept.Name)
	}

	if parent == "" {
		if t.root != noNode {
			return fmt.Errorf("%w: cannot add %q without a parent", ErrRootExists, dept.Name)
		}
		t.root = t.alloc(dept, noNode)
		return nil
	}

	p, ok := t.names[parent]
	if !ok {
		return fmt.Errorf("%w: %q (adding %q)", ErrParentNotFound, parent, dept.Name)
	}
	h := t.alloc(dept, p)
	t.arena[p].children = append(t.arena[p].children, h)
	return nil
}

// Delete removes a department and its entire subtree. The removed names are
// returned in breadth-first order, starting with name itself.
func (t *Tree) Delete(name string) ([]string, error) {
	h, ok := t.names[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	t.detach(h)
	if t.root == h {
		t.root = noNode
	}

	var removed []string
	queue := []Handle{h}
	for i := 0; i < len(queue); i++ {
		cur := queue[i]
		n := t.arena[cur]
		queue = append(queue, n.children...)

		removed = append(removed, n.dept.Name)
		delete(t.names, n.dept.Name)
		t.arena[cur] = nil
		t.live--
	}

	t.maybeCompact()
	return removed, nil
}

// Edit applies a partial update to a department. Every precondition is
// checked before anything changes, so a failed edit leaves the tree intact.
func (t *Tree) Edit(name string, patch Patch) error {
	h, ok := t.names[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	finalName := name
	if patch.NewName != nil && *patch.NewName != "" && *patch.NewName != name {
		if err := validName(*patch.NewName); err != nil {
			return err
		}
		if t.Has(*patch.NewName) {
			return fmt.Errorf("%w: cannot rename %q to %q", ErrNameConflict, name, *patch.NewName)
		}
		finalName = *patch.NewName
	}
	if patch.Employees != nil && *patch.Employees < 0 {
		return fieldError("employees", "must not be negative")
	}
	if patch.Budget != nil && *patch.Budget < 0 {
		return fieldError("budget", "must not be negative")
	}

	move, target, err := t.planReparent(h, name, finalName, patch.Parent)
	if err != nil {
		return err
	}

	n := t.arena[h]
	if patch.Head != nil {
		n.dept.Head = *patch.Head
	}
	if patch.Employees != nil {
		n.dept.Employees = *patch.Employees
	}
	if patch.Budget != nil {
		n.dept.Budget = *patch.Budget
	}
	if patch.Perf != nil {
		n.dept.Perf = *patch.Perf
	}

	if finalName != name {
		delete(t.names, name)
		t.names[finalName] = h
		n.dept.Name = finalName
	}

	if move {
		t.detach(h)
		if target == noNode {
			t.root = h
		} else {
			n.parent = target
			t.arena[target].children = append(t.arena[target].children, h)
		}
	}
	return nil
}

// planReparent resolves the requested parent against the name table as it
// will look after the rename. target is noNode when h should become root.
func (t *Tree) planReparent(h Handle, oldName, newName string, parent *string) (move bool, target Handle, err error) {
	if parent == nil {
		return false, noNode, nil
	}

	if *parent == "" {
		switch {
		case t.root == h:
			return false, noNode, nil
		case t.root != noNode:
			return false, noNode, fmt.Errorf("%w: cannot detach %q from its parent", ErrRootExists, oldName)
		}
		return true, noNode, nil
	}

	switch {
	case *parent == newName:
		target = h
	case *parent == oldName:
		// the old name is released by the rename
		return false, noNode, fmt.Errorf("%w: %q", ErrParentNotFound, *parent)
	default:
		p, ok := t.names[*parent]
		if !ok {
			return false, noNode, fmt.Errorf("%w: %q", ErrParentNotFound, *parent)
		}
		target = p
	}

	if target == h || t.isAncestor(h, target) {
		return false, noNode, fmt.Errorf("%w: %q is within the subtree of %q", ErrCycle, *parent, oldName)
	}
	return true, target, nil
}

// isAncestor reports whether a is a proper ancestor of b
func (t *Tree) isAncestor(a, b Handle) bool {
	for cur := t.arena[b].parent; cur != noNode; cur = t.arena[cur].parent {
		if cur == a {
			return true
		}
	}
	return false
}

// Children returns the names of a department's direct children in order
func (t *Tree) Children(name string) ([]string, error) {
	h, ok := t.names[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	out := make([]string, 0, len(t.arena[h].children))
	for _, c := range t.arena[h].children {
		out = append(out, t.arena[c].dept.Name)
	}
	return out, nil
}

// Parent returns the name of a department's parent; ok is false for the root
func (t *Tree) Parent(name string) (parent string, ok bool, err error) {
	h, found := t.names[name]
	if !found {
		return "", false, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	p := t.arena[h].parent
	if p == noNode {
		return "", false, nil
	}
	return t.arena[p].dept.Name, true, nil
}

// Path returns the ancestor chain from the root down to name, inclusive
func (t *Tree) Path(name string) ([]string, error) {
	h, ok := t.names[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	var path []string
	for cur := h; cur != noNode; cur = t.arena[cur].parent {
		path = append(path, t.arena[cur].dept.Name)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// Depth returns the number of levels in the tree (0 when empty)
func (t *Tree) Depth() int {
	if t.root == noNode {
		return 0
	}
	depth := 0
	level := []Handle{t.root}
	for len(level) > 0 {
		depth++
		var next []Handle
		for _, h := range level {
			next = append(next, t.arena[h].children...)
		}
		level = next
	}
	return depth
}

func (t *Tree) alloc(dept Department, parent Handle) Handle {
	h := Handle(len(t.arena))
	t.arena = append(t.arena, &node{dept: dept, parent: parent})
	t.names[dept.Name] = h
	t.live++
	return h
}

// detach unlinks h from its parent, preserving sibling order
func (t *Tree) detach(h Handle) {
	n := t.arena[h]
	if n.parent == noNode {
		return
	}
	p := t.arena[n.parent]
	for i, c := range p.children {
		if c == h {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = noNode
}

// maybeCompact drops deleted slots once they outnumber live ones.
// Surviving nodes keep their relative order, so Flatten stays stable.
func (t *Tree) maybeCompact() {
	if len(t.arena) < compactThreshold || t.live*2 >= len(t.arena) {
		return
	}

	remap := make([]Handle, len(t.arena))
	arena := make([]*node, 0, t.live)
	for h, n := range t.arena {
		if n == nil {
			remap[h] = noNode
			continue
		}
		remap[h] = Handle(len(arena))
		arena = append(arena, n)
	}

	for h, n := range arena {
		if n.parent != noNode {
			n.parent = remap[n.parent]
		}
		for i, c := range n.children {
			n.children[i] = remap[c]
		}
		t.names[n.dept.Name] = Handle(h)
	}
	if t.root != noNode {
		t.root = remap[t.root]
	}
	t.arena = arena
}
