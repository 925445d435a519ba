// Package audit defines the authorization audit Event entity.
package audit

import (
	"time"

	"github.com/credlane/bastion/id"
)

// Event is a single audit record: either an authorization check decision
// or an administrative mutation (role created, grant revoked, ...).
type Event struct {
	ID           id.AuditEventID `json:"id" db:"id"`
	TenantID     string          `json:"tenant_id" db:"tenant_id"`
	AppID        string          `json:"app_id" db:"app_id"`
	Action       string          `json:"action" db:"action"`
	ActorID      string          `json:"actor_id,omitempty" db:"actor_id"`
	TargetUserID string          `json:"target_user_id,omitempty" db:"target_user_id"`
	Permission   string          `json:"permission,omitempty" db:"permission"`
	Decision     string          `json:"decision,omitempty" db:"decision"`
	Reason       string          `json:"reason,omitempty" db:"reason"`
	EvalTimeNs   int64           `json:"eval_time_ns,omitempty" db:"eval_time_ns"`
	RequestIP    string          `json:"request_ip,omitempty" db:"request_ip"`
	Metadata     map[string]any  `json:"metadata,omitempty" db:"metadata"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// Actions recorded for administrative mutations.
const (
	ActionCheck          = "check"
	ActionRoleCreated    = "role.created"
	ActionRoleUpdated    = "role.updated"
	ActionRoleDeleted    = "role.deleted"
	ActionPermCreated    = "permission.created"
	ActionPermUpdated    = "permission.updated"
	ActionPermDeleted    = "permission.deleted"
	ActionRoleAssigned   = "role.assigned"
	ActionRoleUnassigned = "role.unassigned"
	ActionGrantCreated   = "grant.created"
	ActionGrantRevoked   = "grant.revoked"
)

// QueryFilter contains filters for querying audit events.
type QueryFilter struct {
	TenantID     string     `json:"tenant_id,omitempty"`
	Action       string     `json:"action,omitempty"`
	ActorID      string     `json:"actor_id,omitempty"`
	TargetUserID string     `json:"target_user_id,omitempty"`
	Permission   string     `json:"permission,omitempty"`
	Decision     string     `json:"decision,omitempty"`
	After        *time.Time `json:"after,omitempty"`
	Before       *time.Time `json:"before,omitempty"`
	Limit        int        `json:"limit,omitempty"`
	Offset       int        `json:"offset,omitempty"`
}
