package grant

import (
	"time"

	"github.com/credlane/bastion/id"
)

// Grant is a direct per-user permission override. A grant with
// IsGranted=false is an explicit deny and wins over any role-derived
// permission of the same name.
type Grant struct {
	ID             id.GrantID `json:"id"`
	TenantID       string     `json:"tenant_id"`
	AppID          string     `json:"app_id,omitempty"`
	UserID         string     `json:"user_id"`
	PermissionName string     `json:"permission_name"`
	IsGranted      bool       `json:"is_granted"`
	GrantedBy      string     `json:"granted_by,omitempty"`
	Reason         string     `json:"reason,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ListFilter narrows grant listings.
type ListFilter struct {
	TenantID       string `json:"tenant_id,omitempty"`
	UserID         string `json:"user_id,omitempty"`
	PermissionName string `json:"permission_name,omitempty"`
	IsGranted      *bool  `json:"is_granted,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	Offset         int    `json:"offset,omitempty"`
}
