package resourcetype

import "github.com/credlane/bastion/permission"

// Standard actions shared by most built-in resource types.
var (
	crudActions   = []string{"create", "read", "update", "delete"}
	allScopes     = permission.ScopesByBreadth
	globalOwnOnly = []permission.Scope{permission.ScopeGlobal, permission.ScopeOwn}
)

// Builtin returns the system resource types every tenant starts with:
// the loan-workflow platform's core entities and their action vocabulary.
// Callers get fresh copies; mutating the result does not affect later calls.
func Builtin() []*ResourceType {
	defs := []struct {
		name        string
		description string
		actions     []string
		scopes      []permission.Scope
	}{
		{"user", "Platform user accounts", append(crudActions, "activate", "deactivate"), allScopes},
		{"employee", "Employee records and profiles", append(crudActions, "export"), allScopes},
		{"application", "Loan and credit applications", append(crudActions, "approve", "reject", "assign", "export"), allScopes},
		{"department", "Organizational departments", crudActions, []permission.Scope{permission.ScopeGlobal, permission.ScopeDepartment}},
		{"branch", "Branch offices", crudActions, []permission.Scope{permission.ScopeGlobal, permission.ScopeDepartment, permission.ScopeBranch}},
		{"position", "Job positions and titles", crudActions, []permission.Scope{permission.ScopeGlobal, permission.ScopeDepartment}},
		{"file", "Uploaded file attachments", append(crudActions, "download"), allScopes},
		{"folder", "File folders", crudActions, allScopes},
		{"analytics", "Reports and dashboards", []string{"read", "export"}, allScopes},
		{"notification", "User notifications", []string{"create", "read", "delete"}, globalOwnOnly},
		{"audit", "Audit trail events", []string{"read", "export", "purge"}, []permission.Scope{permission.ScopeGlobal}},
		{"system", "System configuration", []string{"read", "update", "delete", "manage"}, []permission.Scope{permission.ScopeGlobal}},
		{"role", "RBAC roles", append(crudActions, "assign", "unassign"), []permission.Scope{permission.ScopeGlobal}},
		{"permission", "RBAC permissions", append(crudActions, "grant", "revoke"), []permission.Scope{permission.ScopeGlobal}},
	}

	out := make([]*ResourceType, 0, len(defs))
	for _, d := range defs {
		out = append(out, &ResourceType{
			Name:        d.name,
			Description: d.description,
			Actions:     append([]string(nil), d.actions...),
			Scopes:      append([]permission.Scope(nil), d.scopes...),
			IsSystem:    true,
		})
	}
	return out
}
