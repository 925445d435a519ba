package extension

// Config holds the Bastion extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.bastion" or "bastion" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// BypassRole is the role slug whose holders skip all checks
	// (default: "admin"). Empty disables bypass.
	BypassRole string `json:"bypass_role" mapstructure:"bypass_role" yaml:"bypass_role"`

	// InheritParentRoles folds each assigned role's parent chain into
	// resolution.
	InheritParentRoles bool `json:"inherit_parent_roles" mapstructure:"inherit_parent_roles" yaml:"inherit_parent_roles"`

	// MaxHierarchyDepth caps the role parent chain walk (default: 10).
	MaxHierarchyDepth int `json:"max_hierarchy_depth" mapstructure:"max_hierarchy_depth" yaml:"max_hierarchy_depth"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		BypassRole:        "admin",
		MaxHierarchyDepth: 10,
	}
}
