// ABOUTME: Reference organization loaded when no state has been persisted
// ABOUTME: Thirteen departments with their parents and priorities

package orgchart

import "github.com/nainya/orgchart/pkg/hierarchy"

type seedRecord struct {
	dept     hierarchy.Department
	parent   string
	priority int
}

// seedRecords is the reference organization used when no state is persisted.
// Parents precede their children.
var seedRecords = []seedRecord{
	{hierarchy.Department{Name: "Head Office", Head: "R. Singh", Employees: 120, Budget: 1500000, Perf: 9.2}, "", 1},
	{hierarchy.Department{Name: "Finance", Head: "S. Patel", Employees: 18, Budget: 250000, Perf: 8.4}, "Head Office", 2},
	{hierarchy.Department{Name: "Accounts Payable", Head: "G. Rao", Employees: 6, Budget: 60000, Perf: 7.8}, "Finance", 5},
	{hierarchy.Department{Name: "Accounts Receivable", Head: "N. Iyer", Employees: 6, Budget: 70000, Perf: 8.0}, "Finance", 6},
	{hierarchy.Department{Name: "HR", Head: "M. Khan", Employees: 10, Budget: 150000, Perf: 8.1}, "Head Office", 3},
	{hierarchy.Department{Name: "Recruitment", Head: "A. Verma", Employees: 4, Budget: 40000, Perf: 7.5}, "HR", 7},
	{hierarchy.Department{Name: "Employee Relations", Head: "L. Das", Employees: 6, Budget: 50000, Perf: 8.2}, "HR", 8},
	{hierarchy.Department{Name: "Engineering", Head: "K. Mehta", Employees: 60, Budget: 900000, Perf: 9.0}, "Head Office", 4},
	{hierarchy.Department{Name: "Software", Head: "D. Rao", Employees: 35, Budget: 600000, Perf: 9.3}, "Engineering", 9},
	{hierarchy.Department{Name: "AI Team", Head: "P. Sharma", Employees: 12, Budget: 300000, Perf: 9.6}, "Software", 11},
	{hierarchy.Department{Name: "Testing", Head: "R. Nair", Employees: 8, Budget: 80000, Perf: 8.7}, "Software", 12},
	{hierarchy.Department{Name: "Hardware", Head: "T. Bose", Employees: 25, Budget: 300000, Perf: 8.8}, "Engineering", 10},
	{hierarchy.Department{Name: "Manufacturing", Head: "V. Gupta", Employees: 20, Budget: 250000, Perf: 8.5}, "Hardware", 13},
}
