package bastion

import "time"

// Config holds configuration for the engine.
type Config struct {
	// BypassRole is the role slug whose holders skip all checks.
	// Defaults to "admin". Empty disables bypass.
	BypassRole string `json:"bypass_role,omitempty"`

	// InheritParentRoles expands each assigned role's parent chain
	// before resolution. Defaults to false: assigned roles only.
	InheritParentRoles bool `json:"inherit_parent_roles,omitempty"`

	// MaxHierarchyDepth caps the role parent chain walk when
	// InheritParentRoles is on. Defaults to 10.
	MaxHierarchyDepth int `json:"max_hierarchy_depth,omitempty"`

	// CacheTTL is the time-to-live for cached per-user resolutions.
	// Zero means no caching.
	CacheTTL time.Duration `json:"cache_ttl,omitempty"`

	// MatrixWorkers bounds concurrent resolver calls during matrix
	// builds. Defaults to 8.
	MatrixWorkers int `json:"matrix_workers,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BypassRole:        "admin",
		MaxHierarchyDepth: 10,
		MatrixWorkers:     8,
	}
}

func (c Config) hierarchyDepth() int {
	if c.MaxHierarchyDepth > 0 {
		return c.MaxHierarchyDepth
	}
	return 10
}

func (c Config) matrixWorkers() int {
	if c.MatrixWorkers > 0 {
		return c.MatrixWorkers
	}
	return 8
}
