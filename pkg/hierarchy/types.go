// ABOUTME: Department data model for the organizational hierarchy
// ABOUTME: Defines the public record, edit patch and nested snapshot shapes

package hierarchy

import (
	"fmt"
	"strings"
)

// Department is the attribute record of one node in the hierarchy
type Department struct {
	Name      string  `json:"name"`
	Head      string  `json:"head"`
	Employees int     `json:"employees"`
	Budget    float64 `json:"budget"`
	Perf      float64 `json:"perf"`
}

// Patch describes a partial update. Nil fields are left untouched.
type Patch struct {
	NewName   *string
	Head      *string
	Employees *int
	Budget    *float64
	Perf      *float64

	// Parent reparents the node when non-nil. An empty string asks for the
	// node to become root.
	Parent *string
}

// Snapshot is the nested, depth-first projection of a subtree
type Snapshot struct {
	Department
	Children []*Snapshot `json:"children"`
}

// Handle addresses a node slot in the tree arena
type Handle int

const noNode Handle = -1

// validName rejects names that lookups by a trimmed name could never reach
func validName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fieldError("name", "must not be empty")
	}
	if name != strings.TrimSpace(name) {
		return fieldError("name", fmt.Sprintf("must not have surrounding whitespace: %q", name))
	}
	return nil
}

func (d Department) validate() error {
	if err := validName(d.Name); err != nil {
		return err
	}
	if d.Employees < 0 {
		return fieldError("employees", "must not be negative")
	}
	if d.Budget < 0 {
		return fieldError("budget", "must not be negative")
	}
	return nil
}
