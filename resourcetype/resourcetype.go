// Package resourcetype defines the ResourceType catalog entity.
package resourcetype

import (
	"slices"
	"time"

	"github.com/credlane/bastion/id"
	"github.com/credlane/bastion/permission"
)

// ResourceType declares a resource kind and the actions and scopes valid
// for it. Permission creation validates against the registered type when
// one exists for the permission's resource.
type ResourceType struct {
	ID          id.ResourceTypeID  `json:"id" db:"id"`
	TenantID    string             `json:"tenant_id" db:"tenant_id"`
	AppID       string             `json:"app_id" db:"app_id"`
	Name        string             `json:"name" db:"name"`
	Description string             `json:"description,omitempty" db:"description"`
	Actions     []string           `json:"actions" db:"-"`
	Scopes      []permission.Scope `json:"scopes" db:"-"`
	IsSystem    bool               `json:"is_system" db:"is_system"`
	Metadata    map[string]any     `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" db:"updated_at"`
}

// Allows reports whether the given action and scope are valid for this
// resource type. An empty Actions or Scopes list permits anything.
func (rt *ResourceType) Allows(action string, scope permission.Scope) bool {
	if len(rt.Actions) > 0 && !slices.Contains(rt.Actions, action) {
		return false
	}
	if len(rt.Scopes) > 0 && !slices.Contains(rt.Scopes, scope) {
		return false
	}
	return true
}

// ListFilter contains filters for listing resource types.
type ListFilter struct {
	TenantID string `json:"tenant_id,omitempty"`
	IsSystem *bool  `json:"is_system,omitempty"`
	Search   string `json:"search,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}
