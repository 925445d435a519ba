package assignment

import (
	"time"

	"github.com/credlane/bastion/id"
)

// Assignment links a user to a role within a tenant.
type Assignment struct {
	ID        id.AssignmentID `json:"id"`
	TenantID  string          `json:"tenant_id"`
	AppID     string          `json:"app_id,omitempty"`
	RoleID    id.RoleID       `json:"role_id"`
	UserID    string          `json:"user_id"`
	GrantedBy string          `json:"granted_by,omitempty"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Expired reports whether the assignment has an expiry in the past.
func (a *Assignment) Expired(now time.Time) bool {
	return a.ExpiresAt != nil && a.ExpiresAt.Before(now)
}

// ListFilter narrows assignment listings.
type ListFilter struct {
	TenantID string    `json:"tenant_id,omitempty"`
	RoleID   id.RoleID `json:"role_id,omitempty"`
	UserID   string    `json:"user_id,omitempty"`
	Limit    int       `json:"limit,omitempty"`
	Offset   int       `json:"offset,omitempty"`
}
