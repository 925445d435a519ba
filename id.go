package bastion

import (
	"github.com/credlane/bastion/id"
	"github.com/credlane/bastion/permission"
)

// ID is the primary identifier type for all entities.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix

// Scope is the breadth of a permission's applicability.
type Scope = permission.Scope

// Scope constants re-exported for call-site convenience.
const (
	ScopeGlobal     = permission.ScopeGlobal
	ScopeDepartment = permission.ScopeDepartment
	ScopeBranch     = permission.ScopeBranch
	ScopeTeam       = permission.ScopeTeam
	ScopeOwn        = permission.ScopeOwn
)
