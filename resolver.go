package bastion

import (
	"github.com/credlane/bastion/grant"
	"github.com/credlane/bastion/id"
	"github.com/credlane/bastion/permission"
	"github.com/credlane/bastion/role"
)

// Catalog is an immutable index of the permission catalog for one
// resolution pass. It holds active and inactive entries; the resolver
// excludes inactive ones itself so that skips can be told apart from
// unknown references.
type Catalog struct {
	byName map[string]*permission.Permission
}

// NewCatalog indexes the given permissions by name. Later duplicates of
// a name are ignored; permission names are globally unique upstream.
func NewCatalog(perms []*permission.Permission) *Catalog {
	c := &Catalog{byName: make(map[string]*permission.Permission, len(perms))}
	for _, p := range perms {
		if _, ok := c.byName[p.Name]; !ok {
			c.byName[p.Name] = p
		}
	}
	return c
}

// Get returns the catalog entry for a permission name.
func (c *Catalog) Get(name string) (*permission.Permission, bool) {
	p, ok := c.byName[name]
	return p, ok
}

// Lookup returns the entry for (resource, action, scope).
func (c *Catalog) Lookup(resource, action string, scope permission.Scope) (*permission.Permission, bool) {
	return c.Get(permission.FormatName(resource, action, scope))
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int { return len(c.byName) }

// RoleGrants pairs a role with the permission names attached to it.
type RoleGrants struct {
	Role        *role.Role `json:"role"`
	Permissions []string   `json:"permissions"`
}

// EffectivePermission is one entry of a user's resolved permission set.
type EffectivePermission struct {
	Permission *permission.Permission `json:"permission"`
	Source     GrantSource            `json:"source"`
	RoleID     id.RoleID              `json:"role_id,omitempty"`
	RoleName   string                 `json:"role_name,omitempty"`
}

// SkippedRef records a reference the resolver excluded and why. Unknown
// or inactive references are recoverable: catalog and role data may be
// eventually consistent, so the resolver logs and moves on.
type SkippedRef struct {
	PermissionName string `json:"permission_name"`
	Origin         string `json:"origin"` // role slug or "direct"
	Reason         string `json:"reason"`
}

// Resolution is the effective permission set of one user.
type Resolution struct {
	UserID      string                         `json:"user_id"`
	Roles       []string                       `json:"roles,omitempty"` // active role slugs, input order
	Permissions map[string]EffectivePermission `json:"permissions"`
	Denied      map[string]struct{}            `json:"-"`
	Skipped     []SkippedRef                   `json:"skipped,omitempty"`
}

// HasRole reports whether the user holds an active role with the slug.
func (r *Resolution) HasRole(slug string) bool {
	for _, s := range r.Roles {
		if s == slug {
			return true
		}
	}
	return false
}

// Has reports whether the permission name is in the effective set.
func (r *Resolution) Has(name string) bool {
	_, ok := r.Permissions[name]
	return ok
}

// Get returns the effective entry for a permission name.
func (r *Resolution) Get(name string) (EffectivePermission, bool) {
	ep, ok := r.Permissions[name]
	return ep, ok
}

// ExplicitlyDenied reports whether a direct deny grant excluded the name.
func (r *Resolution) ExplicitlyDenied(name string) bool {
	_, ok := r.Denied[name]
	return ok
}

// Resolve computes the effective permission set for one user from three
// inputs: the user's roles (with attached permission names), the user's
// direct grants, and the permission catalog. It is pure and
// deterministic: same inputs, same output, no side effects.
//
// Rules, in order:
//
//  1. Inactive roles contribute nothing. Inactive permissions are
//     excluded wherever referenced.
//  2. Role-derived entries use first-encountered-wins attribution: when
//     two roles attach the same permission, the first role in the input
//     order is recorded as the source.
//  3. Direct grants are authoritative for the names they cover. A grant
//     with IsGranted=true adds the permission with SourceDirect even if
//     no role carries it; IsGranted=false removes it no matter how many
//     roles grant it.
//  4. Two direct grant rows for the same permission name are a data
//     integrity violation and abort resolution with DataIntegrityError.
//  5. References to names absent from the catalog are skipped, recorded
//     in Skipped, and never fail the resolution.
func Resolve(userID string, roles []RoleGrants, grants []*grant.Grant, catalog *Catalog) (*Resolution, error) {
	res := &Resolution{
		UserID:      userID,
		Permissions: make(map[string]EffectivePermission),
		Denied:      make(map[string]struct{}),
	}

	for _, rg := range roles {
		if rg.Role == nil || !rg.Role.IsActive {
			continue
		}
		res.Roles = append(res.Roles, rg.Role.Slug)
		for _, name := range rg.Permissions {
			p, ok := catalog.Get(name)
			if !ok {
				res.Skipped = append(res.Skipped, SkippedRef{
					PermissionName: name,
					Origin:         rg.Role.Slug,
					Reason:         "unknown permission reference",
				})
				continue
			}
			if !p.IsActive {
				res.Skipped = append(res.Skipped, SkippedRef{
					PermissionName: name,
					Origin:         rg.Role.Slug,
					Reason:         "permission inactive",
				})
				continue
			}
			if _, exists := res.Permissions[name]; exists {
				continue // first role wins
			}
			res.Permissions[name] = EffectivePermission{
				Permission: p,
				Source:     SourceRole,
				RoleID:     rg.Role.ID,
				RoleName:   rg.Role.Name,
			}
		}
	}

	seen := make(map[string]struct{}, len(grants))
	for _, g := range grants {
		if _, dup := seen[g.PermissionName]; dup {
			return nil, &DataIntegrityError{
				UserID:         userID,
				PermissionName: g.PermissionName,
				Detail:         "multiple direct grant rows",
			}
		}
		seen[g.PermissionName] = struct{}{}

		p, ok := catalog.Get(g.PermissionName)
		if !ok {
			res.Skipped = append(res.Skipped, SkippedRef{
				PermissionName: g.PermissionName,
				Origin:         "direct",
				Reason:         "unknown permission reference",
			})
			continue
		}

		if !p.IsActive {
			res.Skipped = append(res.Skipped, SkippedRef{
				PermissionName: g.PermissionName,
				Origin:         "direct",
				Reason:         "permission inactive",
			})
			continue
		}
		if !g.IsGranted {
			// Explicit deny overrides any role-derived entry.
			delete(res.Permissions, g.PermissionName)
			res.Denied[g.PermissionName] = struct{}{}
			continue
		}
		res.Permissions[g.PermissionName] = EffectivePermission{
			Permission: p,
			Source:     SourceDirect,
		}
	}

	return res, nil
}
