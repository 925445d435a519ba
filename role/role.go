// Package role defines the Role entity and its store interface.
package role

import (
	"time"

	"github.com/credlane/bastion/id"
)

// Role represents a named bundle of permissions that can be assigned to
// users. Level orders roles for display (higher = more authority); it does
// not imply permission inheritance. ParentID records the hierarchy; parent
// permissions are only folded in when the engine is explicitly configured
// to inherit them.
type Role struct {
	ID          id.RoleID      `json:"id" db:"id"`
	TenantID    string         `json:"tenant_id" db:"tenant_id"`
	AppID       string         `json:"app_id" db:"app_id"`
	Name        string         `json:"name" db:"name"`
	Description string         `json:"description,omitempty" db:"description"`
	Slug        string         `json:"slug" db:"slug"`
	Level       int            `json:"level" db:"level"`
	ParentID    *id.RoleID     `json:"parent_id,omitempty" db:"parent_id"`
	IsSystem    bool           `json:"is_system" db:"is_system"`
	IsDefault   bool           `json:"is_default" db:"is_default"`
	IsActive    bool           `json:"is_active" db:"is_active"`
	Metadata    map[string]any `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// ListFilter contains filters for listing roles.
type ListFilter struct {
	TenantID  string     `json:"tenant_id,omitempty"`
	IsSystem  *bool      `json:"is_system,omitempty"`
	IsDefault *bool      `json:"is_default,omitempty"`
	IsActive  *bool      `json:"is_active,omitempty"`
	ParentID  *id.RoleID `json:"parent_id,omitempty"`
	Search    string     `json:"search,omitempty"`
	Limit     int        `json:"limit,omitempty"`
	Offset    int        `json:"offset,omitempty"`
}
