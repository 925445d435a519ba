// Package memory provides an in-memory implementation of the composite
// store. It is intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/credlane/bastion/assignment"
	"github.com/credlane/bastion/audit"
	"github.com/credlane/bastion/grant"
	"github.com/credlane/bastion/id"
	"github.com/credlane/bastion/permission"
	"github.com/credlane/bastion/resourcetype"
	"github.com/credlane/bastion/role"
	"github.com/credlane/bastion/store"
)

// Compile-time interface checks.
var (
	_ role.Store         = (*Store)(nil)
	_ permission.Store   = (*Store)(nil)
	_ assignment.Store   = (*Store)(nil)
	_ grant.Store        = (*Store)(nil)
	_ resourcetype.Store = (*Store)(nil)
	_ audit.Store        = (*Store)(nil)
)

// Store is a thread-safe in-memory store for all entities.
type Store struct {
	mu sync.RWMutex

	roles           map[string]*role.Role
	permissions     map[string]*permission.Permission
	rolePermissions map[string][]string // roleID -> permIDs, attach order
	assignments     map[string]*assignment.Assignment
	grants          map[string]*grant.Grant
	resourceTypes   map[string]*resourcetype.ResourceType
	auditEvents     map[string]*audit.Event
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		roles:           make(map[string]*role.Role),
		permissions:     make(map[string]*permission.Permission),
		rolePermissions: make(map[string][]string),
		assignments:     make(map[string]*assignment.Assignment),
		grants:          make(map[string]*grant.Grant),
		resourceTypes:   make(map[string]*resourcetype.ResourceType),
		auditEvents:     make(map[string]*audit.Event),
	}
}

// Migrate is a no-op for the memory store.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping is a no-op for the memory store.
func (s *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (s *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Role Store
// ──────────────────────────────────────────────────

func (s *Store) CreateRole(_ context.Context, r *role.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[r.ID.String()] = copyRole(r)
	return nil
}

func (s *Store) GetRole(_ context.Context, roleID id.RoleID) (*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[roleID.String()]
	if !ok {
		return nil, fmt.Errorf("role %s: %w", roleID, errNotFound)
	}
	return copyRole(r), nil
}

func (s *Store) GetRoleBySlug(_ context.Context, tenantID, slug string) (*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.roles {
		if r.TenantID == tenantID && r.Slug == slug {
			return copyRole(r), nil
		}
	}
	return nil, fmt.Errorf("role slug %q: %w", slug, errNotFound)
}

func (s *Store) UpdateRole(_ context.Context, r *role.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[r.ID.String()]; !ok {
		return fmt.Errorf("role %s: %w", r.ID, errNotFound)
	}
	s.roles[r.ID.String()] = copyRole(r)
	return nil
}

func (s *Store) DeleteRole(_ context.Context, roleID id.RoleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.roles, roleID.String())
	delete(s.rolePermissions, roleID.String())
	return nil
}

func (s *Store) ListRoles(_ context.Context, filter *role.ListFilter) ([]*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*role.Role, 0, len(s.roles))
	for _, r := range s.roles {
		if filter != nil {
			if filter.TenantID != "" && r.TenantID != filter.TenantID {
				continue
			}
			if filter.IsSystem != nil && r.IsSystem != *filter.IsSystem {
				continue
			}
			if filter.IsDefault != nil && r.IsDefault != *filter.IsDefault {
				continue
			}
			if filter.IsActive != nil && r.IsActive != *filter.IsActive {
				continue
			}
			if filter.ParentID != nil && (r.ParentID == nil || r.ParentID.String() != filter.ParentID.String()) {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(filter.Search)) {
				continue
			}
		}
		result = append(result, copyRole(r))
	}
	return applyPagination(result, paginationOpts(filter)), nil
}

func (s *Store) CountRoles(ctx context.Context, filter *role.ListFilter) (int64, error) {
	list, err := s.ListRoles(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) ListRolePermissions(_ context.Context, roleID id.RoleID) ([]id.PermissionID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	perms, ok := s.rolePermissions[roleID.String()]
	if !ok {
		return nil, nil
	}
	result := make([]id.PermissionID, 0, len(perms))
	for _, pid := range perms {
		parsed, err := id.ParsePermissionID(pid)
		if err == nil {
			result = append(result, parsed)
		}
	}
	return result, nil
}

func (s *Store) AttachPermission(_ context.Context, roleID id.RoleID, permID id.PermissionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rk := roleID.String()
	pk := permID.String()
	for _, existing := range s.rolePermissions[rk] {
		if existing == pk {
			return nil
		}
	}
	s.rolePermissions[rk] = append(s.rolePermissions[rk], pk)
	return nil
}

func (s *Store) DetachPermission(_ context.Context, roleID id.RoleID, permID id.PermissionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rk := roleID.String()
	pk := permID.String()
	perms := s.rolePermissions[rk]
	for i, existing := range perms {
		if existing == pk {
			s.rolePermissions[rk] = append(perms[:i], perms[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) SetRolePermissions(_ context.Context, roleID id.RoleID, permIDs []id.PermissionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	perms := make([]string, 0, len(permIDs))
	for _, pid := range permIDs {
		perms = append(perms, pid.String())
	}
	s.rolePermissions[roleID.String()] = perms
	return nil
}

func (s *Store) ListChildRoles(_ context.Context, parentID id.RoleID) ([]*role.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*role.Role
	pid := parentID.String()
	for _, r := range s.roles {
		if r.ParentID != nil && r.ParentID.String() == pid {
			result = append(result, copyRole(r))
		}
	}
	return result, nil
}

func (s *Store) DeleteRolesByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, r := range s.roles {
		if r.TenantID == tenantID {
			delete(s.roles, k)
			delete(s.rolePermissions, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Permission Store
// ──────────────────────────────────────────────────

func (s *Store) CreatePermission(_ context.Context, p *permission.Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.permissions[p.ID.String()] = copyPermission(p)
	return nil
}

func (s *Store) GetPermission(_ context.Context, permID id.PermissionID) (*permission.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.permissions[permID.String()]
	if !ok {
		return nil, fmt.Errorf("permission %s: %w", permID, errNotFound)
	}
	return copyPermission(p), nil
}

func (s *Store) GetPermissionByName(_ context.Context, tenantID, name string) (*permission.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.permissions {
		if p.TenantID == tenantID && p.Name == name {
			return copyPermission(p), nil
		}
	}
	return nil, fmt.Errorf("permission %q: %w", name, errNotFound)
}

func (s *Store) UpdatePermission(_ context.Context, p *permission.Permission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.permissions[p.ID.String()]; !ok {
		return fmt.Errorf("permission %s: %w", p.ID, errNotFound)
	}
	s.permissions[p.ID.String()] = copyPermission(p)
	return nil
}

func (s *Store) DeletePermission(_ context.Context, permID id.PermissionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.permissions, permID.String())
	// Remove from role-permission mappings.
	pk := permID.String()
	for rk, perms := range s.rolePermissions {
		for i, existing := range perms {
			if existing == pk {
				s.rolePermissions[rk] = append(perms[:i], perms[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (s *Store) ListPermissions(_ context.Context, filter *permission.ListFilter) ([]*permission.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*permission.Permission, 0, len(s.permissions))
	for _, p := range s.permissions {
		if filter != nil {
			if filter.TenantID != "" && p.TenantID != filter.TenantID {
				continue
			}
			if filter.Resource != "" && p.Resource != filter.Resource {
				continue
			}
			if filter.Action != "" && p.Action != filter.Action {
				continue
			}
			if filter.Scope != "" && p.Scope != filter.Scope {
				continue
			}
			if filter.IsSystem != nil && p.IsSystem != *filter.IsSystem {
				continue
			}
			if filter.IsActive != nil && p.IsActive != *filter.IsActive {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Search)) {
				continue
			}
		}
		result = append(result, copyPermission(p))
	}
	return applyPagination(result, paginationOptsPerm(filter)), nil
}

func (s *Store) CountPermissions(ctx context.Context, filter *permission.ListFilter) (int64, error) {
	list, err := s.ListPermissions(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) ListPermissionsByRole(_ context.Context, roleID id.RoleID) ([]*permission.Permission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	perms, ok := s.rolePermissions[roleID.String()]
	if !ok {
		return nil, nil
	}
	var result []*permission.Permission
	for _, pid := range perms {
		if p, ok := s.permissions[pid]; ok {
			result = append(result, copyPermission(p))
		}
	}
	return result, nil
}

func (s *Store) DeletePermissionsByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, p := range s.permissions {
		if p.TenantID == tenantID {
			delete(s.permissions, k)
			for rk, perms := range s.rolePermissions {
				for i, existing := range perms {
					if existing == k {
						s.rolePermissions[rk] = append(perms[:i], perms[i+1:]...)
						break
					}
				}
			}
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Assignment Store
// ──────────────────────────────────────────────────

func (s *Store) CreateAssignment(_ context.Context, a *assignment.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[a.ID.String()] = copyAssignment(a)
	return nil
}

func (s *Store) GetAssignment(_ context.Context, assID id.AssignmentID) (*assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[assID.String()]
	if !ok {
		return nil, fmt.Errorf("assignment %s: %w", assID, errNotFound)
	}
	return copyAssignment(a), nil
}

func (s *Store) DeleteAssignment(_ context.Context, assID id.AssignmentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assignments, assID.String())
	return nil
}

func (s *Store) DeleteAssignmentByUserRole(_ context.Context, tenantID, userID string, roleID id.RoleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rid := roleID.String()
	for k, a := range s.assignments {
		if a.TenantID == tenantID && a.UserID == userID && a.RoleID.String() == rid {
			delete(s.assignments, k)
			return nil
		}
	}
	return fmt.Errorf("assignment for user %s role %s: %w", userID, rid, errNotFound)
}

func (s *Store) ListAssignments(_ context.Context, filter *assignment.ListFilter) ([]*assignment.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*assignment.Assignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		if filter != nil {
			if filter.TenantID != "" && a.TenantID != filter.TenantID {
				continue
			}
			if filter.UserID != "" && a.UserID != filter.UserID {
				continue
			}
			if !filter.RoleID.IsNil() && a.RoleID.String() != filter.RoleID.String() {
				continue
			}
		}
		result = append(result, copyAssignment(a))
	}
	return applyPagination(result, paginationOptsAssign(filter)), nil
}

func (s *Store) CountAssignments(ctx context.Context, filter *assignment.ListFilter) (int64, error) {
	list, err := s.ListAssignments(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) ListRolesForUser(_ context.Context, tenantID, userID string) ([]id.RoleID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := time.Now()
	var matched []*assignment.Assignment
	for _, a := range s.assignments {
		if a.TenantID == tenantID && a.UserID == userID && !a.Expired(now) {
			matched = append(matched, a)
		}
	}
	// Creation order, matching the SQL and Mongo backends. Role
	// attribution in resolution is first-encountered-wins, so the
	// order handed to the resolver must not flap between calls.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})
	result := make([]id.RoleID, 0, len(matched))
	for _, a := range matched {
		result = append(result, a.RoleID)
	}
	return result, nil
}

func (s *Store) ListUsersForRole(_ context.Context, roleID id.RoleID) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rid := roleID.String()
	seen := make(map[string]struct{})
	var result []string
	for _, a := range s.assignments {
		if a.RoleID.String() == rid {
			if _, dup := seen[a.UserID]; dup {
				continue
			}
			seen[a.UserID] = struct{}{}
			result = append(result, a.UserID)
		}
	}
	return result, nil
}

func (s *Store) DeleteExpiredAssignments(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for k, a := range s.assignments {
		if a.ExpiresAt != nil && a.ExpiresAt.Before(now) {
			delete(s.assignments, k)
			count++
		}
	}
	return count, nil
}

func (s *Store) DeleteAssignmentsByUser(_ context.Context, tenantID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, a := range s.assignments {
		if a.TenantID == tenantID && a.UserID == userID {
			delete(s.assignments, k)
		}
	}
	return nil
}

func (s *Store) DeleteAssignmentsByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, a := range s.assignments {
		if a.TenantID == tenantID {
			delete(s.assignments, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Grant Store
// ──────────────────────────────────────────────────

func (s *Store) CreateGrant(_ context.Context, g *grant.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.grants {
		if existing.TenantID == g.TenantID && existing.UserID == g.UserID && existing.PermissionName == g.PermissionName {
			return fmt.Errorf("grant %s for user %s: %w", g.PermissionName, g.UserID, errDuplicate)
		}
	}
	s.grants[g.ID.String()] = copyGrant(g)
	return nil
}

func (s *Store) UpsertGrant(_ context.Context, g *grant.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, existing := range s.grants {
		if existing.TenantID == g.TenantID && existing.UserID == g.UserID && existing.PermissionName == g.PermissionName {
			updated := copyGrant(g)
			updated.ID = existing.ID
			updated.CreatedAt = existing.CreatedAt
			s.grants[k] = updated
			return nil
		}
	}
	s.grants[g.ID.String()] = copyGrant(g)
	return nil
}

func (s *Store) GetGrant(_ context.Context, grantID id.GrantID) (*grant.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.grants[grantID.String()]
	if !ok {
		return nil, fmt.Errorf("grant %s: %w", grantID, errNotFound)
	}
	return copyGrant(g), nil
}

func (s *Store) GetGrantByName(_ context.Context, tenantID, userID, permissionName string) (*grant.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.grants {
		if g.TenantID == tenantID && g.UserID == userID && g.PermissionName == permissionName {
			return copyGrant(g), nil
		}
	}
	return nil, fmt.Errorf("grant %q for user %s: %w", permissionName, userID, errNotFound)
}

func (s *Store) DeleteGrant(_ context.Context, grantID id.GrantID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grants, grantID.String())
	return nil
}

func (s *Store) ListGrantsForUser(_ context.Context, tenantID, userID string) ([]*grant.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*grant.Grant
	for _, g := range s.grants {
		if g.TenantID == tenantID && g.UserID == userID {
			result = append(result, copyGrant(g))
		}
	}
	return result, nil
}

func (s *Store) ListGrants(_ context.Context, filter *grant.ListFilter) ([]*grant.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*grant.Grant, 0, len(s.grants))
	for _, g := range s.grants {
		if filter != nil {
			if filter.TenantID != "" && g.TenantID != filter.TenantID {
				continue
			}
			if filter.UserID != "" && g.UserID != filter.UserID {
				continue
			}
			if filter.PermissionName != "" && g.PermissionName != filter.PermissionName {
				continue
			}
			if filter.IsGranted != nil && g.IsGranted != *filter.IsGranted {
				continue
			}
		}
		result = append(result, copyGrant(g))
	}
	return applyPagination(result, paginationOptsGrant(filter)), nil
}

func (s *Store) CountGrants(ctx context.Context, filter *grant.ListFilter) (int64, error) {
	list, err := s.ListGrants(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) DeleteGrantsByUser(_ context.Context, tenantID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, g := range s.grants {
		if g.TenantID == tenantID && g.UserID == userID {
			delete(s.grants, k)
		}
	}
	return nil
}

func (s *Store) DeleteGrantsByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, g := range s.grants {
		if g.TenantID == tenantID {
			delete(s.grants, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Resource Type Store
// ──────────────────────────────────────────────────

func (s *Store) CreateResourceType(_ context.Context, rt *resourcetype.ResourceType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resourceTypes[rt.ID.String()] = copyResourceType(rt)
	return nil
}

func (s *Store) GetResourceType(_ context.Context, rtID id.ResourceTypeID) (*resourcetype.ResourceType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rt, ok := s.resourceTypes[rtID.String()]
	if !ok {
		return nil, fmt.Errorf("resource type %s: %w", rtID, errNotFound)
	}
	return copyResourceType(rt), nil
}

func (s *Store) GetResourceTypeByName(_ context.Context, tenantID, name string) (*resourcetype.ResourceType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rt := range s.resourceTypes {
		if rt.TenantID == tenantID && rt.Name == name {
			return copyResourceType(rt), nil
		}
	}
	return nil, fmt.Errorf("resource type %q: %w", name, errNotFound)
}

func (s *Store) UpdateResourceType(_ context.Context, rt *resourcetype.ResourceType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.resourceTypes[rt.ID.String()]; !ok {
		return fmt.Errorf("resource type %s: %w", rt.ID, errNotFound)
	}
	s.resourceTypes[rt.ID.String()] = copyResourceType(rt)
	return nil
}

func (s *Store) DeleteResourceType(_ context.Context, rtID id.ResourceTypeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.resourceTypes, rtID.String())
	return nil
}

func (s *Store) ListResourceTypes(_ context.Context, filter *resourcetype.ListFilter) ([]*resourcetype.ResourceType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*resourcetype.ResourceType, 0, len(s.resourceTypes))
	for _, rt := range s.resourceTypes {
		if filter != nil {
			if filter.TenantID != "" && rt.TenantID != filter.TenantID {
				continue
			}
			if filter.IsSystem != nil && rt.IsSystem != *filter.IsSystem {
				continue
			}
			if filter.Search != "" && !strings.Contains(strings.ToLower(rt.Name), strings.ToLower(filter.Search)) {
				continue
			}
		}
		result = append(result, copyResourceType(rt))
	}
	return applyPagination(result, paginationOptsRT(filter)), nil
}

func (s *Store) CountResourceTypes(ctx context.Context, filter *resourcetype.ListFilter) (int64, error) {
	list, err := s.ListResourceTypes(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) DeleteResourceTypesByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, rt := range s.resourceTypes {
		if rt.TenantID == tenantID {
			delete(s.resourceTypes, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Audit Store
// ──────────────────────────────────────────────────

func (s *Store) CreateAuditEvent(_ context.Context, e *audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auditEvents[e.ID.String()] = copyAuditEvent(e)
	return nil
}

func (s *Store) GetAuditEvent(_ context.Context, eventID id.AuditEventID) (*audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.auditEvents[eventID.String()]
	if !ok {
		return nil, fmt.Errorf("audit event %s: %w", eventID, errNotFound)
	}
	return copyAuditEvent(e), nil
}

func (s *Store) ListAuditEvents(_ context.Context, filter *audit.QueryFilter) ([]*audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*audit.Event, 0, len(s.auditEvents))
	for _, e := range s.auditEvents {
		if filter != nil {
			if filter.TenantID != "" && e.TenantID != filter.TenantID {
				continue
			}
			if filter.Action != "" && e.Action != filter.Action {
				continue
			}
			if filter.ActorID != "" && e.ActorID != filter.ActorID {
				continue
			}
			if filter.TargetUserID != "" && e.TargetUserID != filter.TargetUserID {
				continue
			}
			if filter.Permission != "" && e.Permission != filter.Permission {
				continue
			}
			if filter.Decision != "" && e.Decision != filter.Decision {
				continue
			}
			if filter.After != nil && e.CreatedAt.Before(*filter.After) {
				continue
			}
			if filter.Before != nil && e.CreatedAt.After(*filter.Before) {
				continue
			}
		}
		result = append(result, copyAuditEvent(e))
	}
	return applyPagination(result, paginationOptsAudit(filter)), nil
}

func (s *Store) CountAuditEvents(ctx context.Context, filter *audit.QueryFilter) (int64, error) {
	list, err := s.ListAuditEvents(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (s *Store) PurgeAuditEvents(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for k, e := range s.auditEvents {
		if e.CreatedAt.Before(before) {
			delete(s.auditEvents, k)
			count++
		}
	}
	return count, nil
}

func (s *Store) DeleteAuditEventsByTenant(_ context.Context, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.auditEvents {
		if e.TenantID == tenantID {
			delete(s.auditEvents, k)
		}
	}
	return nil
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

var (
	errNotFound  = store.ErrNotFound
	errDuplicate = store.ErrDuplicate
)

func copyRole(r *role.Role) *role.Role {
	c := *r
	return &c
}

func copyPermission(p *permission.Permission) *permission.Permission {
	c := *p
	return &c
}

func copyAssignment(a *assignment.Assignment) *assignment.Assignment {
	c := *a
	return &c
}

func copyGrant(g *grant.Grant) *grant.Grant {
	c := *g
	return &c
}

func copyResourceType(rt *resourcetype.ResourceType) *resourcetype.ResourceType {
	c := *rt
	if rt.Actions != nil {
		c.Actions = make([]string, len(rt.Actions))
		copy(c.Actions, rt.Actions)
	}
	if rt.Scopes != nil {
		c.Scopes = make([]permission.Scope, len(rt.Scopes))
		copy(c.Scopes, rt.Scopes)
	}
	return &c
}

func copyAuditEvent(e *audit.Event) *audit.Event {
	c := *e
	return &c
}

// Pagination helpers for each entity type.
type pagOpts struct{ limit, offset int }

func applyPagination[T any](items []*T, p pagOpts) []*T {
	if p.offset > 0 && p.offset < len(items) {
		items = items[p.offset:]
	} else if p.offset >= len(items) && p.offset > 0 {
		return nil
	}
	if p.limit > 0 && p.limit < len(items) {
		items = items[:p.limit]
	}
	return items
}

func paginationOpts(f *role.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func paginationOptsPerm(f *permission.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func paginationOptsAssign(f *assignment.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func paginationOptsGrant(f *grant.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func paginationOptsRT(f *resourcetype.ListFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}

func paginationOptsAudit(f *audit.QueryFilter) pagOpts {
	if f == nil {
		return pagOpts{}
	}
	return pagOpts{limit: f.Limit, offset: f.Offset}
}
