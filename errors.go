package bastion

import (
	"errors"
	"fmt"
)

var (
	// ErrAccessDenied is returned when an authorization check fails.
	ErrAccessDenied = errors.New("bastion: access denied")

	// ErrNotReady is returned by a Source whose backing data has not
	// loaded yet. Checks translate it into DecisionIndeterminate.
	ErrNotReady = errors.New("bastion: data source not ready")

	// ErrRoleNotFound is returned when a role cannot be found.
	ErrRoleNotFound = errors.New("bastion: role not found")

	// ErrPermissionNotFound is returned when a permission cannot be found.
	ErrPermissionNotFound = errors.New("bastion: permission not found")

	// ErrAssignmentNotFound is returned when an assignment cannot be found.
	ErrAssignmentNotFound = errors.New("bastion: assignment not found")

	// ErrGrantNotFound is returned when a direct grant cannot be found.
	ErrGrantNotFound = errors.New("bastion: grant not found")

	// ErrResourceTypeNotFound is returned when a resource type cannot be found.
	ErrResourceTypeNotFound = errors.New("bastion: resource type not found")

	// ErrAuditEventNotFound is returned when an audit event cannot be found.
	ErrAuditEventNotFound = errors.New("bastion: audit event not found")

	// ErrSystemRoleImmutable is returned when trying to modify a system role.
	ErrSystemRoleImmutable = errors.New("bastion: system role cannot be modified")

	// ErrSystemPermissionImmutable is returned when trying to modify a system permission.
	ErrSystemPermissionImmutable = errors.New("bastion: system permission cannot be modified")

	// ErrDuplicateAssignment is returned when a role is already assigned to a user.
	ErrDuplicateAssignment = errors.New("bastion: role already assigned to user")

	// ErrDuplicateGrant is returned when a user already has a grant row
	// for a permission name.
	ErrDuplicateGrant = errors.New("bastion: grant already exists for user and permission")

	// ErrCyclicRoleInheritance is returned when role inheritance would create a cycle.
	ErrCyclicRoleInheritance = errors.New("bastion: cyclic role inheritance detected")

	// ErrHierarchyDepthExceeded is returned when the role parent chain
	// exceeds the configured depth limit.
	ErrHierarchyDepthExceeded = errors.New("bastion: role hierarchy depth exceeded")

	// ErrDataIntegrity is the sentinel wrapped by DataIntegrityError.
	ErrDataIntegrity = errors.New("bastion: data integrity violation")

	// ErrActionNotAllowed is returned when a permission names an action
	// or scope its resource type does not declare.
	ErrActionNotAllowed = errors.New("bastion: action or scope not allowed for resource type")
)

// DataIntegrityError reports contradictory rows for a single user, such
// as two direct grant rows for the same permission name. Resolution
// aborts: guessing between a grant and a deny is not safe.
type DataIntegrityError struct {
	UserID         string
	PermissionName string
	Detail         string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("bastion: data integrity violation for user %s on %q: %s",
		e.UserID, e.PermissionName, e.Detail)
}

func (e *DataIntegrityError) Unwrap() error { return ErrDataIntegrity }
