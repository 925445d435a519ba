// Package bastion provides effective-permission evaluation for
// tenant-scoped RBAC: roles, per-user direct grants with deny overrides,
// and a scope hierarchy (global > department > branch > team > own).
//
// The heart of the package is a pure resolver that combines a user's
// roles, direct grants, and the permission catalog into an effective
// permission set, and an Engine that answers point queries (Can) and
// batch queries (BuildMatrix) on top of it. It is tenant-scoped by
// default via forge.Scope and runs standalone with WithTenant.
//
//	eng, err := bastion.NewEngine(
//	    bastion.WithStore(memStore),
//	)
//	result, err := eng.Check(ctx, &bastion.CheckRequest{
//	    UserID:   "user_123",
//	    Resource: "application",
//	    Action:   "approve",
//	})
package bastion

import "github.com/credlane/bastion/permission"

// CheckRequest is the input to an authorization check.
type CheckRequest struct {
	UserID   string `json:"user_id"`
	Resource string `json:"resource"`
	Action   string `json:"action"`

	// Scope, when set, requires a permission at exactly this scope.
	// When empty, any scope satisfies the check and broader scopes are
	// preferred.
	Scope permission.Scope `json:"scope,omitempty"`
}

// CheckResult is the outcome of an authorization check.
type CheckResult struct {
	Allowed    bool        `json:"allowed"`
	Decision   Decision    `json:"decision"`
	Reason     string      `json:"reason,omitempty"`
	Permission string      `json:"permission,omitempty"`
	Source     GrantSource `json:"source,omitempty"`
	RoleName   string      `json:"role_name,omitempty"`
	EvalTimeNs int64       `json:"eval_time_ns"`
}

// Decision is the authorization outcome.
type Decision string

const (
	// DecisionAllow means the request is permitted.
	DecisionAllow Decision = "allow"

	// DecisionBypass means the user holds the bypass role and all
	// checks short-circuit to allowed.
	DecisionBypass Decision = "bypass"

	// DecisionDenyExplicit means a direct deny grant excluded the
	// permission.
	DecisionDenyExplicit Decision = "deny_explicit"

	// DecisionDenyNoGrant means nothing grants the required permission.
	DecisionDenyNoGrant Decision = "deny_no_grant"

	// DecisionIndeterminate means the data source is not ready; the
	// check fails closed but callers must treat this as "not yet
	// known", never as "denied".
	DecisionIndeterminate Decision = "indeterminate"
)

// GrantSource identifies where an effective permission came from.
type GrantSource string

const (
	// SourceRole means a role attached the permission.
	SourceRole GrantSource = "role"

	// SourceDirect means a per-user direct grant attached it.
	SourceDirect GrantSource = "direct"

	// SourceBypass means the bypass role short-circuited the check.
	SourceBypass GrantSource = "bypass"
)
