// ABOUTME: Coordination layer keeping the hierarchy and priority index in sync
// ABOUTME: Serializes mutations and persists the full state after each one

package orgchart

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nainya/orgchart/internal/logger"
	"github.com/nainya/orgchart/internal/metrics"
	"github.com/nainya/orgchart/pkg/hierarchy"
	"github.com/nainya/orgchart/pkg/priority"
	"github.com/nainya/orgchart/pkg/store"
)

var (
	// ErrPersist wraps a failure to save state after an in-memory mutation
	// succeeded. The mutation stays applied in memory.
	ErrPersist = errors.New("orgchart: persist state")

	// ErrNotReady indicates a call before Open completed
	ErrNotReady = errors.New("orgchart: service not opened")
)

// Service owns the hierarchy, the priority index and their backing store.
// Mutations hold the write lock across {mutate, persist}; reads share the
// read lock, so a reader never observes a half-applied mutation.
type Service struct {
	mu    sync.RWMutex
	tree  *hierarchy.Tree
	index *priority.Index
	ready bool

	store   store.Store
	driver  string
	log     *logger.Logger
	metrics *metrics.Metrics
}

// NewService creates a service over st. Call Open before use.
func NewService(st store.Store, driver string, log *logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	if m == nil {
		m = metrics.NewMetrics()
	}
	return &Service{
		tree:    hierarchy.New(),
		index:   priority.New(),
		store:   st,
		driver:  driver,
		log:     log,
		metrics: m,
	}
}

// Open loads persisted state, or seeds the reference organization when none
// exists, and reconciles the priority index against the hierarchy.
func (s *Service) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stlog := s.log.StoreLogger(s.driver)
	start := time.Now()
	state, err := s.store.Load(ctx)
	s.recordStore("load", start, err)

	switch {
	case errors.Is(err, store.ErrNoState):
		stlog.Info("No persisted state, seeding reference organization").Send()
		if err := s.seed(); err != nil {
			return err
		}
		if err := s.persist(ctx); err != nil {
			return err
		}
		s.ready = true
		return nil
	case err != nil:
		stlog.LogStoreOperation("load", time.Since(start), 0, err)
		return fmt.Errorf("load state: %w", err)
	}

	tree, err := hierarchy.Restore(state.Hierarchy)
	if err != nil {
		return err
	}
	s.tree = tree
	s.index = s.reconcile(state.Heap)
	s.ready = true
	s.updateGauges()

	stlog.LogStoreOperation("load", time.Since(start), s.tree.Len(), nil)
	return nil
}

// Ready reports whether Open has completed
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Close releases the backing store
func (s *Service) Close() error {
	return s.store.Close()
}

func (s *Service) seed() error {
	tree := hierarchy.New()
	index := priority.New()
	for _, r := range seedRecords {
		if err := tree.Add(r.dept, r.parent); err != nil {
			return fmt.Errorf("seed %q: %w", r.dept.Name, err)
		}
		if err := index.Add(r.priority, r.dept.Name); err != nil {
			return fmt.Errorf("seed %q: %w", r.dept.Name, err)
		}
	}
	s.tree = tree
	s.index = index
	return nil
}

// reconcile rebuilds the index from persisted pairs so that it holds exactly
// one entry per department. Stale names are dropped, duplicates keep their
// lowest priority, and departments without an entry get the default.
func (s *Service) reconcile(entries []priority.Entry) *priority.Index {
	tlog := s.log.TreeLogger()
	sorted := append([]priority.Entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	index := priority.New()
	for _, e := range sorted {
		if !s.tree.Has(e.Name) {
			tlog.Warn("Dropping priority entry for unknown department").
				Str("department", e.Name).Int("priority", e.Priority).Send()
			continue
		}
		if err := index.Add(e.Priority, e.Name); err != nil {
			tlog.Warn("Dropping duplicate priority entry").
				Str("department", e.Name).Int("priority", e.Priority).Send()
		}
	}

	for _, d := range s.tree.Flatten() {
		if _, ok := index.Get(d.Name); !ok {
			tlog.Warn("Department has no priority, assigning default").
				Str("department", d.Name).Int("priority", priority.DefaultPriority).Send()
			_ = index.Add(priority.DefaultPriority, d.Name)
		}
	}
	return index
}

// AddDepartment inserts a department and its priority, then persists
func (s *Service) AddDepartment(ctx context.Context, req AddRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return ErrNotReady
	}

	name := req.Department.Name
	if err := s.tree.Add(req.Department, req.Parent); err != nil {
		return s.mutationFailed("add", name, err)
	}

	prio := priority.DefaultPriority
	if req.Priority != nil {
		prio = *req.Priority
	}
	if err := s.index.Add(prio, name); err != nil {
		// the index is reconciled on load, so this means it drifted
		s.log.TreeLogger().Error("Priority index out of sync on add").Err(err).Send()
	}

	return s.mutationDone(ctx, "add", name)
}

// EditDepartment applies a partial update, mirroring a rename and any new
// priority into the index, then persists
func (s *Service) EditDepartment(ctx context.Context, req EditRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return ErrNotReady
	}

	if err := s.tree.Edit(req.Name, req.Patch); err != nil {
		return s.mutationFailed("edit", req.Name, err)
	}

	final := req.Name
	if p := req.Patch.NewName; p != nil && *p != "" && *p != req.Name {
		final = *p
		if err := s.index.Rename(req.Name, final); err != nil {
			// the index is reconciled on load, so this means it drifted
			s.log.TreeLogger().Error("Priority index out of sync on rename").Err(err).Send()
		}
	}
	if req.Priority != nil {
		s.index.SetPriority(final, *req.Priority)
	}

	return s.mutationDone(ctx, "edit", final)
}

// DeleteDepartment removes a department with its subtree from both
// structures and returns the removed names
func (s *Service) DeleteDepartment(ctx context.Context, name string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil, ErrNotReady
	}

	removed, err := s.tree.Delete(name)
	if err != nil {
		return nil, s.mutationFailed("delete", name, err)
	}
	for _, n := range removed {
		s.index.Remove(n)
	}

	return removed, s.mutationDone(ctx, "delete", name)
}

func (s *Service) mutationFailed(op, name string, err error) error {
	s.metrics.RecordMutation(op, "rejected")
	s.log.TreeLogger().LogMutation(op, name, err)
	return err
}

func (s *Service) mutationDone(ctx context.Context, op, name string) error {
	s.log.TreeLogger().LogMutation(op, name, nil)
	if err := s.persist(ctx); err != nil {
		s.metrics.RecordMutation(op, "persist_failed")
		return err
	}
	s.metrics.RecordMutation(op, "success")
	return nil
}

// persist writes the full state. Caller holds the write lock.
func (s *Service) persist(ctx context.Context) error {
	state := &store.State{
		Hierarchy: s.tree.Serialize(),
		Heap:      s.index.List(),
	}

	start := time.Now()
	err := s.store.Save(ctx, state)
	s.recordStore("save", start, err)
	s.log.StoreLogger(s.driver).LogStoreOperation("save", time.Since(start), s.tree.Len(), err)
	s.updateGauges()

	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (s *Service) recordStore(op string, start time.Time, err error) {
	status := "success"
	if err != nil && !errors.Is(err, store.ErrNoState) {
		status = "error"
	}
	s.metrics.RecordStoreOperation(op, status, time.Since(start))
}

func (s *Service) updateGauges() {
	s.metrics.UpdateHierarchyStats(s.tree.Len(), s.index.Len(), s.tree.Depth())
}

// Hierarchy returns the nested tree, or nil when it is empty
func (s *Service) Hierarchy() *hierarchy.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Serialize()
}

// Subtree returns the nested view rooted at name
func (s *Service) Subtree(name string) (*hierarchy.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Subtree(name)
}

// Heap returns every (priority, name) pair in ascending order
func (s *Service) Heap() []priority.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.List()
}

// Meta returns the flat department listing
func (s *Service) Meta() []hierarchy.Department {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Flatten()
}

// Department returns one department with its parent, path, children and priority
func (s *Service) Department(name string) (*DepartmentDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dept, ok := s.tree.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", hierarchy.ErrNotFound, name)
	}
	parent, _, err := s.tree.Parent(name)
	if err != nil {
		return nil, err
	}
	path, err := s.tree.Path(name)
	if err != nil {
		return nil, err
	}
	children, err := s.tree.Children(name)
	if err != nil {
		return nil, err
	}
	prio, has := s.index.Get(name)

	return &DepartmentDetail{
		Department:  dept,
		Parent:      parent,
		Path:        path,
		Children:    children,
		Priority:    prio,
		HasPriority: has,
	}, nil
}
