// Package permission defines the Permission entity, its canonical naming
// scheme, and its store interface.
package permission

import (
	"time"

	"github.com/credlane/bastion/id"
)

// Permission represents a specific action allowed on a resource type at a
// given scope. The canonical name is "resource.action.scope", e.g.
// "application.approve.department".
type Permission struct {
	ID          id.PermissionID `json:"id" db:"id"`
	TenantID    string          `json:"tenant_id" db:"tenant_id"`
	AppID       string          `json:"app_id" db:"app_id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description,omitempty" db:"description"`
	Resource    string          `json:"resource" db:"resource"`
	Action      string          `json:"action" db:"action"`
	Scope       Scope           `json:"scope" db:"scope"`
	// Conditions carries opaque key-value constraints evaluated by the
	// consuming application layer, never by the resolver.
	Conditions map[string]any `json:"conditions,omitempty" db:"conditions"`
	IsSystem   bool           `json:"is_system" db:"is_system"`
	IsActive   bool           `json:"is_active" db:"is_active"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}

// ListFilter contains filters for listing permissions.
type ListFilter struct {
	TenantID string `json:"tenant_id,omitempty"`
	Resource string `json:"resource,omitempty"`
	Action   string `json:"action,omitempty"`
	Scope    Scope  `json:"scope,omitempty"`
	IsSystem *bool  `json:"is_system,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
	Search   string `json:"search,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}
