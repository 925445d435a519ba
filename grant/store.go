package grant

import (
	"context"

	"github.com/credlane/bastion/id"
)

// Store defines persistence operations for direct grants.
//
// At most one grant row may exist per (tenant, user, permission name).
// CreateGrant must fail with a duplicate error when a row already exists;
// callers that want to flip is_granted use UpsertGrant instead.
type Store interface {
	// CreateGrant persists a new grant.
	CreateGrant(ctx context.Context, g *Grant) error

	// UpsertGrant creates the grant or updates the existing row for the
	// same (tenant, user, permission name).
	UpsertGrant(ctx context.Context, g *Grant) error

	// GetGrant retrieves a grant by ID.
	GetGrant(ctx context.Context, grantID id.GrantID) (*Grant, error)

	// GetGrantByName retrieves the grant for a user and permission name.
	GetGrantByName(ctx context.Context, tenantID, userID, permissionName string) (*Grant, error)

	// DeleteGrant removes a grant by ID.
	DeleteGrant(ctx context.Context, grantID id.GrantID) error

	// ListGrantsForUser returns all grants for a user. The result may
	// contain duplicate permission names if the underlying data is
	// corrupt; the resolver treats that as a data integrity failure.
	ListGrantsForUser(ctx context.Context, tenantID, userID string) ([]*Grant, error)

	// ListGrants returns grants matching the filter.
	ListGrants(ctx context.Context, filter *ListFilter) ([]*Grant, error)

	// CountGrants returns the number of grants matching the filter.
	CountGrants(ctx context.Context, filter *ListFilter) (int64, error)

	// DeleteGrantsByUser removes all grants for a user.
	DeleteGrantsByUser(ctx context.Context, tenantID, userID string) error

	// DeleteGrantsByTenant removes all grants for a tenant.
	DeleteGrantsByTenant(ctx context.Context, tenantID string) error
}
