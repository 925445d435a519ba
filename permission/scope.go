package permission

import "fmt"

// Scope is the breadth of a permission's applicability. Broader scopes
// subsume narrower ones for unscoped checks: global > department > branch >
// team > own.
type Scope string

// Known scopes, broadest first.
const (
	ScopeGlobal     Scope = "global"
	ScopeDepartment Scope = "department"
	ScopeBranch     Scope = "branch"
	ScopeTeam       Scope = "team"
	ScopeOwn        Scope = "own"
)

// ScopesByBreadth lists all scopes ordered broadest to narrowest. The order
// is the fixed precedence used when a check omits an explicit scope.
var ScopesByBreadth = []Scope{
	ScopeGlobal,
	ScopeDepartment,
	ScopeBranch,
	ScopeTeam,
	ScopeOwn,
}

var scopeRank = map[Scope]int{
	ScopeGlobal:     5,
	ScopeDepartment: 4,
	ScopeBranch:     3,
	ScopeTeam:       2,
	ScopeOwn:        1,
}

// Valid reports whether s is one of the known scopes.
func (s Scope) Valid() bool {
	_, ok := scopeRank[s]
	return ok
}

// Rank returns the breadth rank of the scope (higher = broader).
// Unknown scopes rank 0.
func (s Scope) Rank() int {
	return scopeRank[s]
}

// Broader reports whether s is strictly broader than other.
func (s Scope) Broader(other Scope) bool {
	return s.Rank() > other.Rank()
}

// ParseScope validates a scope string.
func ParseScope(s string) (Scope, error) {
	sc := Scope(s)
	if !sc.Valid() {
		return "", fmt.Errorf("permission: unknown scope %q", s)
	}
	return sc, nil
}
