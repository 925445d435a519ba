package bastion

import (
	"context"
	"fmt"

	"github.com/credlane/bastion/grant"
	"github.com/credlane/bastion/permission"
	"github.com/credlane/bastion/store"
)

// Source supplies the resolver's three inputs for a tenant. The engine
// reads through a Source so that callers can swap the backing store for
// a snapshot, a remote cache, or a not-yet-loaded placeholder.
//
// A Source whose data has not loaded yet must return ErrNotReady; the
// engine turns that into DecisionIndeterminate rather than a deny.
type Source interface {
	// Catalog returns the tenant's permission catalog.
	Catalog(ctx context.Context, tenantID string) (*Catalog, error)

	// UserRoles returns the user's roles with attached permission names.
	UserRoles(ctx context.Context, tenantID, userID string) ([]RoleGrants, error)

	// UserGrants returns the user's direct grants.
	UserGrants(ctx context.Context, tenantID, userID string) ([]*grant.Grant, error)
}

// storeSource reads resolver inputs from the composite store.
type storeSource struct {
	store  store.Store
	config Config
}

var _ Source = (*storeSource)(nil)

func newStoreSource(s store.Store, cfg Config) *storeSource {
	return &storeSource{store: s, config: cfg}
}

func (s *storeSource) Catalog(ctx context.Context, tenantID string) (*Catalog, error) {
	perms, err := s.store.ListPermissions(ctx, &permission.ListFilter{TenantID: tenantID})
	if err != nil {
		return nil, fmt.Errorf("bastion: load catalog: %w", err)
	}
	return NewCatalog(perms), nil
}

func (s *storeSource) UserRoles(ctx context.Context, tenantID, userID string) ([]RoleGrants, error) {
	roleIDs, err := s.store.ListRolesForUser(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("bastion: list user roles: %w", err)
	}

	roles := make([]*rolePair, 0, len(roleIDs))
	for _, rid := range roleIDs {
		r, err := s.store.GetRole(ctx, rid)
		if err != nil {
			return nil, fmt.Errorf("bastion: load role %s: %w", rid, err)
		}
		roles = append(roles, &rolePair{role: r})
	}

	if s.config.InheritParentRoles {
		roles, err = s.expandParents(ctx, roles)
		if err != nil {
			return nil, err
		}
	}

	out := make([]RoleGrants, 0, len(roles))
	for _, rp := range roles {
		perms, err := s.store.ListPermissionsByRole(ctx, rp.role.ID)
		if err != nil {
			return nil, fmt.Errorf("bastion: list role permissions: %w", err)
		}
		names := make([]string, 0, len(perms))
		for _, p := range perms {
			names = append(names, p.Name)
		}
		out = append(out, RoleGrants{Role: rp.role, Permissions: names})
	}
	return out, nil
}

func (s *storeSource) UserGrants(ctx context.Context, tenantID, userID string) ([]*grant.Grant, error) {
	grants, err := s.store.ListGrantsForUser(ctx, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("bastion: list user grants: %w", err)
	}
	return grants, nil
}
