package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/credlane/bastion/assignment"
	"github.com/credlane/bastion/audit"
	"github.com/credlane/bastion/grant"
	"github.com/credlane/bastion/id"
	"github.com/credlane/bastion/permission"
	"github.com/credlane/bastion/resourcetype"
	"github.com/credlane/bastion/role"
)

// ──────────────────────────────────────────────────
// Role model
// ──────────────────────────────────────────────────

type roleModel struct {
	grove.BaseModel `grove:"table:bastion_roles"`
	ID              string         `grove:"id,pk"           bson:"_id"`
	TenantID        string         `grove:"tenant_id"       bson:"tenant_id"`
	AppID           string         `grove:"app_id"          bson:"app_id"`
	Name            string         `grove:"name"            bson:"name"`
	Description     string         `grove:"description"     bson:"description"`
	Slug            string         `grove:"slug"            bson:"slug"`
	Level           int            `grove:"level"           bson:"level"`
	ParentID        *string        `grove:"parent_id"       bson:"parent_id,omitempty"`
	IsSystem        bool           `grove:"is_system"       bson:"is_system"`
	IsDefault       bool           `grove:"is_default"      bson:"is_default"`
	IsActive        bool           `grove:"is_active"       bson:"is_active"`
	Metadata        map[string]any `grove:"metadata"        bson:"metadata,omitempty"`
	CreatedAt       time.Time      `grove:"created_at"      bson:"created_at"`
	UpdatedAt       time.Time      `grove:"updated_at"      bson:"updated_at"`
}

func roleToModel(r *role.Role) *roleModel {
	m := &roleModel{
		ID:          r.ID.String(),
		TenantID:    r.TenantID,
		AppID:       r.AppID,
		Name:        r.Name,
		Description: r.Description,
		Slug:        r.Slug,
		Level:       r.Level,
		IsSystem:    r.IsSystem,
		IsDefault:   r.IsDefault,
		IsActive:    r.IsActive,
		Metadata:    r.Metadata,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.ParentID != nil {
		s := r.ParentID.String()
		m.ParentID = &s
	}
	return m
}

func roleFromModel(m *roleModel) *role.Role {
	rid, _ := id.ParseRoleID(m.ID) //nolint:errcheck // stored IDs are always valid
	r := &role.Role{
		ID:          rid,
		TenantID:    m.TenantID,
		AppID:       m.AppID,
		Name:        m.Name,
		Description: m.Description,
		Slug:        m.Slug,
		Level:       m.Level,
		IsSystem:    m.IsSystem,
		IsDefault:   m.IsDefault,
		IsActive:    m.IsActive,
		Metadata:    m.Metadata,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.ParentID != nil {
		pid, err := id.ParseRoleID(*m.ParentID)
		if err == nil {
			r.ParentID = &pid
		}
	}
	return r
}

// ──────────────────────────────────────────────────
// Permission model
// ──────────────────────────────────────────────────

type permissionModel struct {
	grove.BaseModel `grove:"table:bastion_permissions"`
	ID              string         `grove:"id,pk"       bson:"_id"`
	TenantID        string         `grove:"tenant_id"   bson:"tenant_id"`
	AppID           string         `grove:"app_id"      bson:"app_id"`
	Name            string         `grove:"name"        bson:"name"`
	Description     string         `grove:"description" bson:"description"`
	Resource        string         `grove:"resource"    bson:"resource"`
	Action          string         `grove:"action"      bson:"action"`
	Scope           string         `grove:"scope"       bson:"scope"`
	Conditions      map[string]any `grove:"conditions"  bson:"conditions,omitempty"`
	IsSystem        bool           `grove:"is_system"   bson:"is_system"`
	IsActive        bool           `grove:"is_active"   bson:"is_active"`
	CreatedAt       time.Time      `grove:"created_at"  bson:"created_at"`
	UpdatedAt       time.Time      `grove:"updated_at"  bson:"updated_at"`
}

func permissionToModel(p *permission.Permission) *permissionModel {
	return &permissionModel{
		ID:          p.ID.String(),
		TenantID:    p.TenantID,
		AppID:       p.AppID,
		Name:        p.Name,
		Description: p.Description,
		Resource:    p.Resource,
		Action:      p.Action,
		Scope:       string(p.Scope),
		Conditions:  p.Conditions,
		IsSystem:    p.IsSystem,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func permissionFromModel(m *permissionModel) *permission.Permission {
	pid, _ := id.ParsePermissionID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &permission.Permission{
		ID:          pid,
		TenantID:    m.TenantID,
		AppID:       m.AppID,
		Name:        m.Name,
		Description: m.Description,
		Resource:    m.Resource,
		Action:      m.Action,
		Scope:       permission.Scope(m.Scope),
		Conditions:  m.Conditions,
		IsSystem:    m.IsSystem,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Role-Permission junction model
// ──────────────────────────────────────────────────

type rolePermissionModel struct {
	grove.BaseModel `grove:"table:bastion_role_permissions"`
	RoleID          string `grove:"role_id"       bson:"role_id"`
	PermissionID    string `grove:"permission_id" bson:"permission_id"`
}

// ──────────────────────────────────────────────────
// Assignment model
// ──────────────────────────────────────────────────

type assignmentModel struct {
	grove.BaseModel `grove:"table:bastion_assignments"`
	ID              string     `grove:"id,pk"      bson:"_id"`
	TenantID        string     `grove:"tenant_id"  bson:"tenant_id"`
	AppID           string     `grove:"app_id"     bson:"app_id"`
	RoleID          string     `grove:"role_id"    bson:"role_id"`
	UserID          string     `grove:"user_id"    bson:"user_id"`
	GrantedBy       string     `grove:"granted_by" bson:"granted_by"`
	ExpiresAt       *time.Time `grove:"expires_at" bson:"expires_at,omitempty"`
	CreatedAt       time.Time  `grove:"created_at" bson:"created_at"`
}

func assignmentToModel(a *assignment.Assignment) *assignmentModel {
	return &assignmentModel{
		ID:        a.ID.String(),
		TenantID:  a.TenantID,
		AppID:     a.AppID,
		RoleID:    a.RoleID.String(),
		UserID:    a.UserID,
		GrantedBy: a.GrantedBy,
		ExpiresAt: a.ExpiresAt,
		CreatedAt: a.CreatedAt,
	}
}

func assignmentFromModel(m *assignmentModel) *assignment.Assignment {
	aid, _ := id.ParseAssignmentID(m.ID) //nolint:errcheck // stored IDs are always valid
	rid, _ := id.ParseRoleID(m.RoleID)   //nolint:errcheck // stored IDs are always valid
	return &assignment.Assignment{
		ID:        aid,
		TenantID:  m.TenantID,
		AppID:     m.AppID,
		RoleID:    rid,
		UserID:    m.UserID,
		GrantedBy: m.GrantedBy,
		ExpiresAt: m.ExpiresAt,
		CreatedAt: m.CreatedAt,
	}
}

// ──────────────────────────────────────────────────
// Grant model
// ──────────────────────────────────────────────────

type grantModel struct {
	grove.BaseModel `grove:"table:bastion_grants"`
	ID              string    `grove:"id,pk"           bson:"_id"`
	TenantID        string    `grove:"tenant_id"       bson:"tenant_id"`
	AppID           string    `grove:"app_id"          bson:"app_id"`
	UserID          string    `grove:"user_id"         bson:"user_id"`
	PermissionName  string    `grove:"permission_name" bson:"permission_name"`
	IsGranted       bool      `grove:"is_granted"      bson:"is_granted"`
	GrantedBy       string    `grove:"granted_by"      bson:"granted_by"`
	Reason          string    `grove:"reason"          bson:"reason"`
	CreatedAt       time.Time `grove:"created_at"      bson:"created_at"`
	UpdatedAt       time.Time `grove:"updated_at"      bson:"updated_at"`
}

func grantToModel(g *grant.Grant) *grantModel {
	return &grantModel{
		ID:             g.ID.String(),
		TenantID:       g.TenantID,
		AppID:          g.AppID,
		UserID:         g.UserID,
		PermissionName: g.PermissionName,
		IsGranted:      g.IsGranted,
		GrantedBy:      g.GrantedBy,
		Reason:         g.Reason,
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
	}
}

func grantFromModel(m *grantModel) *grant.Grant {
	gid, _ := id.ParseGrantID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &grant.Grant{
		ID:             gid,
		TenantID:       m.TenantID,
		AppID:          m.AppID,
		UserID:         m.UserID,
		PermissionName: m.PermissionName,
		IsGranted:      m.IsGranted,
		GrantedBy:      m.GrantedBy,
		Reason:         m.Reason,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Resource type model
// ──────────────────────────────────────────────────

type resourceTypeModel struct {
	grove.BaseModel `grove:"table:bastion_resource_types"`
	ID              string         `grove:"id,pk"       bson:"_id"`
	TenantID        string         `grove:"tenant_id"   bson:"tenant_id"`
	AppID           string         `grove:"app_id"      bson:"app_id"`
	Name            string         `grove:"name"        bson:"name"`
	Description     string         `grove:"description" bson:"description"`
	Actions         []string       `grove:"actions"     bson:"actions,omitempty"`
	Scopes          []string       `grove:"scopes"      bson:"scopes,omitempty"`
	IsSystem        bool           `grove:"is_system"   bson:"is_system"`
	Metadata        map[string]any `grove:"metadata"    bson:"metadata,omitempty"`
	CreatedAt       time.Time      `grove:"created_at"  bson:"created_at"`
	UpdatedAt       time.Time      `grove:"updated_at"  bson:"updated_at"`
}

func resourceTypeToModel(rt *resourcetype.ResourceType) *resourceTypeModel {
	scopes := make([]string, len(rt.Scopes))
	for i, sc := range rt.Scopes {
		scopes[i] = string(sc)
	}
	return &resourceTypeModel{
		ID:          rt.ID.String(),
		TenantID:    rt.TenantID,
		AppID:       rt.AppID,
		Name:        rt.Name,
		Description: rt.Description,
		Actions:     rt.Actions,
		Scopes:      scopes,
		IsSystem:    rt.IsSystem,
		Metadata:    rt.Metadata,
		CreatedAt:   rt.CreatedAt,
		UpdatedAt:   rt.UpdatedAt,
	}
}

func resourceTypeFromModel(m *resourceTypeModel) *resourcetype.ResourceType {
	rtID, _ := id.ParseResourceTypeID(m.ID) //nolint:errcheck // stored IDs are always valid
	scopes := make([]permission.Scope, len(m.Scopes))
	for i, sc := range m.Scopes {
		scopes[i] = permission.Scope(sc)
	}
	return &resourcetype.ResourceType{
		ID:          rtID,
		TenantID:    m.TenantID,
		AppID:       m.AppID,
		Name:        m.Name,
		Description: m.Description,
		Actions:     m.Actions,
		Scopes:      scopes,
		IsSystem:    m.IsSystem,
		Metadata:    m.Metadata,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ──────────────────────────────────────────────────
// Audit event model
// ──────────────────────────────────────────────────

type auditEventModel struct {
	grove.BaseModel `grove:"table:bastion_audit_events"`
	ID              string         `grove:"id,pk"          bson:"_id"`
	TenantID        string         `grove:"tenant_id"      bson:"tenant_id"`
	AppID           string         `grove:"app_id"         bson:"app_id"`
	Action          string         `grove:"action"         bson:"action"`
	ActorID         string         `grove:"actor_id"       bson:"actor_id"`
	TargetUserID    string         `grove:"target_user_id" bson:"target_user_id"`
	Permission      string         `grove:"permission"     bson:"permission"`
	Decision        string         `grove:"decision"       bson:"decision"`
	Reason          string         `grove:"reason"         bson:"reason"`
	EvalTimeNs      int64          `grove:"eval_time_ns"   bson:"eval_time_ns"`
	RequestIP       string         `grove:"request_ip"     bson:"request_ip"`
	Metadata        map[string]any `grove:"metadata"       bson:"metadata,omitempty"`
	CreatedAt       time.Time      `grove:"created_at"     bson:"created_at"`
}

func auditEventToModel(e *audit.Event) *auditEventModel {
	return &auditEventModel{
		ID:           e.ID.String(),
		TenantID:     e.TenantID,
		AppID:        e.AppID,
		Action:       e.Action,
		ActorID:      e.ActorID,
		TargetUserID: e.TargetUserID,
		Permission:   e.Permission,
		Decision:     e.Decision,
		Reason:       e.Reason,
		EvalTimeNs:   e.EvalTimeNs,
		RequestIP:    e.RequestIP,
		Metadata:     e.Metadata,
		CreatedAt:    e.CreatedAt,
	}
}

func auditEventFromModel(m *auditEventModel) *audit.Event {
	eid, _ := id.ParseAuditEventID(m.ID) //nolint:errcheck // stored IDs are always valid
	return &audit.Event{
		ID:           eid,
		TenantID:     m.TenantID,
		AppID:        m.AppID,
		Action:       m.Action,
		ActorID:      m.ActorID,
		TargetUserID: m.TargetUserID,
		Permission:   m.Permission,
		Decision:     m.Decision,
		Reason:       m.Reason,
		EvalTimeNs:   m.EvalTimeNs,
		RequestIP:    m.RequestIP,
		Metadata:     m.Metadata,
		CreatedAt:    m.CreatedAt,
	}
}
