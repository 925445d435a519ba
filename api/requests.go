package api

// ──────────────────────────────────────────────────
// Check requests
// ──────────────────────────────────────────────────

// CheckRequest is the request body for an authorization check.
type CheckRequest struct {
	UserID   string `json:"user_id" description:"User identifier"`
	Resource string `json:"resource" description:"Resource type name"`
	Action   string `json:"action" description:"Action name"`
	Scope    string `json:"scope,omitempty" description:"Exact scope (global, department, branch, team, own); empty accepts any scope"`
}

// BatchCheckRequest contains multiple checks.
type BatchCheckRequest struct {
	Checks []CheckRequest `json:"checks" description:"List of authorization checks"`
}

// ResolveUserRequest is the path parameter for resolving a user.
type ResolveUserRequest struct {
	UserID string `path:"userId" description:"User ID"`
}

// ──────────────────────────────────────────────────
// Matrix requests
// ──────────────────────────────────────────────────

// BuildMatrixRequest is the body for building a permission matrix.
type BuildMatrixRequest struct {
	UserIDs     []string `json:"user_ids" description:"Users to include as matrix rows"`
	Permissions []string `json:"permissions,omitempty" description:"Permission names for the columns; all active permissions when empty"`
}

// ──────────────────────────────────────────────────
// Role requests
// ──────────────────────────────────────────────────

// CreateRoleRequest is the body for creating a role.
type CreateRoleRequest struct {
	Name        string         `json:"name" description:"Role name"`
	Slug        string         `json:"slug" description:"URL-safe slug"`
	Description string         `json:"description,omitempty" description:"Human-readable description"`
	Level       int            `json:"level,omitempty" description:"Display ordering (higher = more authority)"`
	ParentID    string         `json:"parent_id,omitempty" description:"Parent role ID for inheritance"`
	IsSystem    bool           `json:"is_system,omitempty" description:"System role flag"`
	IsDefault   bool           `json:"is_default,omitempty" description:"Default role flag"`
	Metadata    map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// UpdateRoleRequest is the body for updating a role.
type UpdateRoleRequest struct {
	Name        string         `json:"name,omitempty" description:"Role name"`
	Description string         `json:"description,omitempty" description:"Human-readable description"`
	Level       *int           `json:"level,omitempty" description:"Display ordering"`
	IsDefault   *bool          `json:"is_default,omitempty" description:"Default role flag"`
	IsActive    *bool          `json:"is_active,omitempty" description:"Active flag; inactive roles contribute nothing"`
	Metadata    map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// GetRoleRequest is the path parameter for getting a role.
type GetRoleRequest struct {
	RoleID string `path:"roleId" description:"Role ID"`
}

// ListRolesRequest holds query parameters for listing roles.
type ListRolesRequest struct {
	Search string `query:"search" description:"Search by name"`
	Limit  int    `query:"limit" description:"Maximum results (default: 50)"`
	Offset int    `query:"offset" description:"Results to skip"`
}

// AttachPermissionRequest is the body for attaching a permission to a role.
type AttachPermissionRequest struct {
	PermissionID string `json:"permission_id" description:"Permission ID to attach"`
}

// SetRolePermissionsRequest replaces a role's full permission set.
type SetRolePermissionsRequest struct {
	PermissionIDs []string `json:"permission_ids" description:"Complete permission ID list for the role"`
}

// ──────────────────────────────────────────────────
// Permission requests
// ──────────────────────────────────────────────────

// CreatePermissionRequest is the body for creating a permission.
type CreatePermissionRequest struct {
	Resource    string         `json:"resource" description:"Resource type name"`
	Action      string         `json:"action" description:"Action name"`
	Scope       string         `json:"scope" description:"Scope (global, department, branch, team, own)"`
	Description string         `json:"description,omitempty" description:"Human-readable description"`
	IsSystem    bool           `json:"is_system,omitempty" description:"System permission flag"`
	Conditions  map[string]any `json:"conditions,omitempty" description:"Opaque conditions evaluated by the caller"`
}

// UpdatePermissionRequest is the body for updating a permission.
type UpdatePermissionRequest struct {
	Description string         `json:"description,omitempty" description:"Human-readable description"`
	IsActive    *bool          `json:"is_active,omitempty" description:"Active flag; inactive permissions never resolve"`
	Conditions  map[string]any `json:"conditions,omitempty" description:"Opaque conditions"`
}

// GetPermissionRequest is the path parameter for getting a permission.
type GetPermissionRequest struct {
	PermissionID string `path:"permissionId" description:"Permission ID"`
}

// ListPermissionsRequest holds query parameters.
type ListPermissionsRequest struct {
	Resource string `query:"resource" description:"Filter by resource type"`
	Action   string `query:"action" description:"Filter by action"`
	Scope    string `query:"scope" description:"Filter by scope"`
	Search   string `query:"search" description:"Search by name"`
	Limit    int    `query:"limit" description:"Maximum results"`
	Offset   int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Assignment requests
// ──────────────────────────────────────────────────

// AssignRoleRequest is the body for assigning a role to a user.
type AssignRoleRequest struct {
	RoleID    string `json:"role_id" description:"Role ID to assign"`
	UserID    string `json:"user_id" description:"User identifier"`
	GrantedBy string `json:"granted_by,omitempty" description:"Actor who granted the role"`
	ExpiresAt string `json:"expires_at,omitempty" description:"Expiration time (RFC3339)"`
}

// UnassignRoleRequest is the body for removing a role from a user.
type UnassignRoleRequest struct {
	RoleID string `json:"role_id" description:"Role ID to remove"`
	UserID string `json:"user_id" description:"User identifier"`
}

// GetAssignmentRequest is the path parameter for getting an assignment.
type GetAssignmentRequest struct {
	AssignmentID string `path:"assignmentId" description:"Assignment ID"`
}

// ListAssignmentsRequest holds query parameters.
type ListAssignmentsRequest struct {
	UserID string `query:"user_id" description:"Filter by user ID"`
	RoleID string `query:"role_id" description:"Filter by role ID"`
	Limit  int    `query:"limit" description:"Maximum results"`
	Offset int    `query:"offset" description:"Results to skip"`
}

// ListUserRolesRequest gets roles for a user.
type ListUserRolesRequest struct {
	UserID string `path:"userId" description:"User ID"`
}

// ──────────────────────────────────────────────────
// Grant requests
// ──────────────────────────────────────────────────

// CreateGrantRequest is the body for creating a direct grant.
type CreateGrantRequest struct {
	UserID         string `json:"user_id" description:"User identifier"`
	PermissionName string `json:"permission_name" description:"Canonical permission name (resource.action.scope)"`
	IsGranted      bool   `json:"is_granted" description:"true grants, false explicitly denies"`
	GrantedBy      string `json:"granted_by,omitempty" description:"Actor who issued the grant"`
	Reason         string `json:"reason,omitempty" description:"Why the grant exists"`
}

// UpsertGrantRequest replaces any existing grant row for the same user
// and permission name.
type UpsertGrantRequest = CreateGrantRequest

// GetGrantRequest is the path parameter for getting a grant.
type GetGrantRequest struct {
	GrantID string `path:"grantId" description:"Grant ID"`
}

// ListGrantsRequest holds query parameters.
type ListGrantsRequest struct {
	UserID         string `query:"user_id" description:"Filter by user ID"`
	PermissionName string `query:"permission_name" description:"Filter by permission name"`
	IsGranted      *bool  `query:"is_granted" description:"Filter by grant polarity"`
	Limit          int    `query:"limit" description:"Maximum results"`
	Offset         int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Resource type requests
// ──────────────────────────────────────────────────

// CreateResourceTypeRequest is the body for creating a resource type.
type CreateResourceTypeRequest struct {
	Name        string         `json:"name" description:"Resource type name"`
	Description string         `json:"description,omitempty" description:"Human-readable description"`
	Actions     []string       `json:"actions,omitempty" description:"Permitted actions (empty = any)"`
	Scopes      []string       `json:"scopes,omitempty" description:"Permitted scopes (empty = any)"`
	Metadata    map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// UpdateResourceTypeRequest is the body for updating a resource type.
type UpdateResourceTypeRequest struct {
	Description string         `json:"description,omitempty" description:"Human-readable description"`
	Actions     []string       `json:"actions,omitempty" description:"Permitted actions"`
	Scopes      []string       `json:"scopes,omitempty" description:"Permitted scopes"`
	Metadata    map[string]any `json:"metadata,omitempty" description:"Custom metadata"`
}

// GetResourceTypeRequest is the path parameter for getting a resource type.
type GetResourceTypeRequest struct {
	ResourceTypeID string `path:"resourceTypeId" description:"Resource type ID"`
}

// ListResourceTypesRequest holds query parameters.
type ListResourceTypesRequest struct {
	Search string `query:"search" description:"Search by name"`
	Limit  int    `query:"limit" description:"Maximum results"`
	Offset int    `query:"offset" description:"Results to skip"`
}

// ──────────────────────────────────────────────────
// Audit requests
// ──────────────────────────────────────────────────

// ListAuditEventsRequest holds query parameters for the audit trail.
type ListAuditEventsRequest struct {
	Action       string `query:"action" description:"Filter by audit action"`
	ActorID      string `query:"actor_id" description:"Filter by acting user"`
	TargetUserID string `query:"target_user_id" description:"Filter by affected user"`
	Permission   string `query:"permission" description:"Filter by permission name"`
	Decision     string `query:"decision" description:"Filter by decision"`
	After        string `query:"after" description:"Only events at or after this time (RFC3339)"`
	Before       string `query:"before" description:"Only events at or before this time (RFC3339)"`
	Limit        int    `query:"limit" description:"Maximum results"`
	Offset       int    `query:"offset" description:"Results to skip"`
}

// GetAuditEventRequest is the path parameter for getting an audit event.
type GetAuditEventRequest struct {
	EventID string `path:"eventId" description:"Audit event ID"`
}

// PurgeAuditEventsRequest removes events older than a cutoff.
type PurgeAuditEventsRequest struct {
	Before string `json:"before" description:"Delete events created before this time (RFC3339)"`
}
