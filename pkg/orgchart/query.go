// ABOUTME: Read-side projections over the hierarchy: fuzzy search and statistics
// ABOUTME: Uses sahilm/fuzzy for ranking and gonum for the numeric summary

package orgchart

import (
	"strings"

	"github.com/sahilm/fuzzy"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/nainya/orgchart/pkg/hierarchy"
)

// Search returns departments whose name or head fuzzily match query, best
// match first. An empty query returns every department in listing order.
// A limit of zero or less means no limit.
func (s *Service) Search(query string, limit int) []hierarchy.Department {
	s.mu.RLock()
	depts := s.tree.Flatten()
	s.mu.RUnlock()

	s.metrics.SearchQueriesTotal.Inc()

	query = strings.TrimSpace(query)
	var out []hierarchy.Department
	if query == "" {
		out = depts
	} else {
		haystack := make([]string, len(depts))
		for i, d := range depts {
			haystack[i] = d.Name + " " + d.Head
		}
		for _, m := range fuzzy.Find(query, haystack) {
			out = append(out, depts[m.Index])
		}
	}

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	s.log.Debug("Department search").Str("query", query).Int("matches", len(out)).Send()
	return out
}

// Stats projects the flat listing into parallel arrays and summarizes it
func (s *Service) Stats() Stats {
	s.mu.RLock()
	depts := s.tree.Flatten()
	depth := s.tree.Depth()
	s.mu.RUnlock()

	st := Stats{
		Names:     make([]string, len(depts)),
		Employees: make([]int, len(depts)),
		Budgets:   make([]float64, len(depts)),
		Perf:      make([]float64, len(depts)),
	}
	for i, d := range depts {
		st.Names[i] = d.Name
		st.Employees[i] = d.Employees
		st.Budgets[i] = d.Budget
		st.Perf[i] = d.Perf
		st.Summary.TotalEmployees += d.Employees
	}
	st.Summary.Departments = len(depts)
	st.Summary.Depth = depth

	if len(depts) == 0 {
		return st
	}

	st.Summary.TotalBudget = floats.Sum(st.Budgets)
	st.Summary.MinPerf = floats.Min(st.Perf)
	st.Summary.MaxPerf = floats.Max(st.Perf)
	if len(depts) < 2 {
		st.Summary.MeanPerf = st.Perf[0]
		return st
	}
	st.Summary.MeanPerf, st.Summary.StdDevPerf = stat.MeanStdDev(st.Perf, nil)
	return st
}
