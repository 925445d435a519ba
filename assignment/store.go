package assignment

import (
	"context"
	"time"

	"github.com/credlane/bastion/id"
)

// Store defines persistence operations for role assignments.
type Store interface {
	// CreateAssignment persists a new assignment.
	CreateAssignment(ctx context.Context, a *Assignment) error

	// GetAssignment retrieves an assignment by ID.
	GetAssignment(ctx context.Context, assignmentID id.AssignmentID) (*Assignment, error)

	// DeleteAssignment removes an assignment by ID.
	DeleteAssignment(ctx context.Context, assignmentID id.AssignmentID) error

	// DeleteAssignmentByUserRole removes the assignment linking a user to a role.
	DeleteAssignmentByUserRole(ctx context.Context, tenantID, userID string, roleID id.RoleID) error

	// ListAssignments returns assignments matching the filter.
	ListAssignments(ctx context.Context, filter *ListFilter) ([]*Assignment, error)

	// CountAssignments returns the number of assignments matching the filter.
	CountAssignments(ctx context.Context, filter *ListFilter) (int64, error)

	// ListRolesForUser returns role IDs assigned to a user, excluding expired
	// assignments.
	ListRolesForUser(ctx context.Context, tenantID, userID string) ([]id.RoleID, error)

	// ListUsersForRole returns user IDs holding a role.
	ListUsersForRole(ctx context.Context, roleID id.RoleID) ([]string, error)

	// DeleteExpiredAssignments removes assignments whose expiry precedes
	// now. Returns the number removed.
	DeleteExpiredAssignments(ctx context.Context, now time.Time) (int64, error)

	// DeleteAssignmentsByUser removes all assignments for a user.
	DeleteAssignmentsByUser(ctx context.Context, tenantID, userID string) error

	// DeleteAssignmentsByTenant removes all assignments for a tenant.
	DeleteAssignmentsByTenant(ctx context.Context, tenantID string) error
}
