package bastion

import "context"

// Cache stores per-user resolutions between checks. Staleness is
// caller-owned: administrative mutations must invalidate the affected
// user or tenant.
type Cache interface {
	// Get returns a cached resolution, if available.
	Get(ctx context.Context, tenantID, userID string) (*Resolution, bool)

	// Set stores a resolution in the cache.
	Set(ctx context.Context, tenantID, userID string, res *Resolution)

	// InvalidateUser removes the cached resolution for one user.
	InvalidateUser(ctx context.Context, tenantID, userID string)

	// InvalidateTenant removes all cached resolutions for a tenant.
	InvalidateTenant(ctx context.Context, tenantID string)
}
