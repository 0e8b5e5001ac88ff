// ABOUTME: Request and response shapes of the orgchart coordination layer
// ABOUTME: Mirrors the add/edit/delete/read operations exposed to transports

package orgchart

import "github.com/nainya/orgchart/pkg/hierarchy"

// AddRequest creates a department. A nil Priority uses priority.DefaultPriority.
type AddRequest struct {
	Department hierarchy.Department
	Parent     string
	Priority   *int
}

// EditRequest updates a department. A non-nil Priority re-prioritizes it
// under its final name.
type EditRequest struct {
	Name     string
	Patch    hierarchy.Patch
	Priority *int
}

// DepartmentDetail is a single department with its position and priority
type DepartmentDetail struct {
	hierarchy.Department
	Parent      string   `json:"parent"`
	Path        []string `json:"path"`
	Children    []string `json:"children"`
	Priority    int      `json:"priority"`
	HasPriority bool     `json:"has_priority"`
}

// Stats is the flat listing projected into parallel arrays, plus a summary
type Stats struct {
	Names     []string  `json:"names"`
	Employees []int     `json:"employees"`
	Budgets   []float64 `json:"budgets"`
	Perf      []float64 `json:"perf"`
	Summary   Summary   `json:"summary"`
}

// Summary aggregates the hierarchy
type Summary struct {
	Departments    int     `json:"departments"`
	TotalEmployees int     `json:"total_employees"`
	TotalBudget    float64 `json:"total_budget"`
	MeanPerf       float64 `json:"mean_perf"`
	StdDevPerf     float64 `json:"stddev_perf"`
	MinPerf        float64 `json:"min_perf"`
	MaxPerf        float64 `json:"max_perf"`
	Depth          int     `json:"depth"`
}
