// Package hierarchy implements the department tree: a name-addressed arena of
// nodes supporting insert, cascading delete, edit, rename and reparent.
package hierarchy

import "errors"

var (
	// ErrAlreadyExists indicates an add with a name that is already taken
	ErrAlreadyExists = errors.New("hierarchy: department already exists")

	// ErrNotFound indicates an edit or delete of an unknown department
	ErrNotFound = errors.New("hierarchy: department not found")

	// ErrNameConflict indicates a rename onto an existing department name
	ErrNameConflict = errors.New("hierarchy: name conflict")

	// ErrValidation indicates a malformed field value
	ErrValidation = errors.New("hierarchy: validation failed")

	// ErrCycle indicates a reparent that would make a node its own ancestor
	ErrCycle = errors.New("hierarchy: reparent would create a cycle")

	// ErrParentNotFound indicates a parent name that does not resolve
	ErrParentNotFound = errors.New("hierarchy: parent not found")

	// ErrRootExists indicates a parentless attach while a root is present
	ErrRootExists = errors.New("hierarchy: root already exists")
)
