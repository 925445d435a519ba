package bastion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/credlane/bastion/permission"
	"github.com/credlane/bastion/plugin"
	"github.com/credlane/bastion/store"
)

// Engine answers authorization queries. It resolves per-user effective
// permission sets through a Source, consults them for point checks, and
// fires extension hooks around the hot path.
type Engine struct {
	store   store.Store
	source  Source
	cache   Cache
	plugins *plugin.Registry
	logger  *slog.Logger
	config  Config
}

// NewEngine creates a new engine with the given options.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger: slog.Default(),
		config: DefaultConfig(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.source == nil {
		if e.store == nil {
			return nil, errors.New("bastion: store or source is required")
		}
		e.source = newStoreSource(e.store, e.config)
	}
	return e, nil
}

// Store returns the underlying composite store (nil with a custom Source).
func (e *Engine) Store() store.Store { return e.store }

// Plugins returns the plugin registry (may be nil).
func (e *Engine) Plugins() *plugin.Registry { return e.plugins }

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.config }

// Start performs any startup initialization.
func (e *Engine) Start(_ context.Context) error { return nil }

// Stop performs graceful shutdown.
func (e *Engine) Stop(ctx context.Context) error {
	if e.plugins != nil {
		e.plugins.EmitShutdown(ctx)
	}
	return nil
}

// Check performs an authorization check. This is the hot path.
//
// A Source that is not ready yields DecisionIndeterminate with
// Allowed=false: fail closed, but let callers tell "not yet known" apart
// from "denied". Data integrity failures surface as errors, never as
// denials.
func (e *Engine) Check(ctx context.Context, req *CheckRequest) (*CheckResult, error) {
	start := time.Now()
	scope := scopeFromContext(ctx)

	if e.plugins != nil {
		e.plugins.EmitBeforeCheck(ctx, req)
	}

	res, err := e.resolution(ctx, scope.tenantID, req.UserID)
	if err != nil {
		if errors.Is(err, ErrNotReady) {
			return e.finish(ctx, req, &CheckResult{
				Decision: DecisionIndeterminate,
				Reason:   "permission data not loaded",
			}, start), nil
		}
		return nil, err
	}

	result := e.decide(res, req)
	return e.finish(ctx, req, result, start), nil
}

func (e *Engine) finish(ctx context.Context, req *CheckRequest, result *CheckResult, start time.Time) *CheckResult {
	result.EvalTimeNs = time.Since(start).Nanoseconds()
	if e.plugins != nil {
		e.plugins.EmitAfterCheck(ctx, req, result)
	}
	return result
}

// decide consults a resolved permission set for one request.
func (e *Engine) decide(res *Resolution, req *CheckRequest) *CheckResult {
	if e.config.BypassRole != "" && res.HasRole(e.config.BypassRole) {
		return &CheckResult{
			Allowed:  true,
			Decision: DecisionBypass,
			Source:   SourceBypass,
			RoleName: e.config.BypassRole,
		}
	}

	if req.Scope != "" {
		name := permission.FormatName(req.Resource, req.Action, req.Scope)
		if ep, ok := res.Get(name); ok {
			return allowResult(name, ep)
		}
		if res.ExplicitlyDenied(name) {
			return &CheckResult{
				Decision:   DecisionDenyExplicit,
				Reason:     "permission explicitly denied",
				Permission: name,
			}
		}
		return &CheckResult{
			Decision:   DecisionDenyNoGrant,
			Reason:     "no grant for permission",
			Permission: name,
		}
	}

	// No explicit scope: any held scope satisfies the check, broadest
	// first, since a broader grant implies the narrower ones.
	var denied string
	for _, sc := range permission.ScopesByBreadth {
		name := permission.FormatName(req.Resource, req.Action, sc)
		if ep, ok := res.Get(name); ok {
			return allowResult(name, ep)
		}
		if denied == "" && res.ExplicitlyDenied(name) {
			denied = name
		}
	}
	if denied != "" {
		return &CheckResult{
			Decision:   DecisionDenyExplicit,
			Reason:     "permission explicitly denied",
			Permission: denied,
		}
	}
	return &CheckResult{
		Decision: DecisionDenyNoGrant,
		Reason:   "no grant for " + req.Resource + "." + req.Action + " at any scope",
	}
}

func allowResult(name string, ep EffectivePermission) *CheckResult {
	return &CheckResult{
		Allowed:    true,
		Decision:   DecisionAllow,
		Permission: name,
		Source:     ep.Source,
		RoleName:   ep.RoleName,
	}
}

// Can is a shorthand authorization check with no explicit scope.
func (e *Engine) Can(ctx context.Context, userID, resource, action string) (bool, error) {
	return e.CanScope(ctx, userID, resource, action, "")
}

// CanScope is a shorthand authorization check at an exact scope.
func (e *Engine) CanScope(ctx context.Context, userID, resource, action string, scope permission.Scope) (bool, error) {
	result, err := e.Check(ctx, &CheckRequest{
		UserID:   userID,
		Resource: resource,
		Action:   action,
		Scope:    scope,
	})
	if err != nil {
		return false, err
	}
	return result.Allowed, nil
}

// Enforce returns an error if the authorization check is denied.
// Indeterminate checks fail with an error wrapping ErrNotReady.
func (e *Engine) Enforce(ctx context.Context, req *CheckRequest) error {
	result, err := e.Check(ctx, req)
	if err != nil {
		return fmt.Errorf("bastion check: %w", err)
	}
	if result.Decision == DecisionIndeterminate {
		return fmt.Errorf("%w: check indeterminate", ErrNotReady)
	}
	if !result.Allowed {
		return fmt.Errorf("%w: %s: %s", ErrAccessDenied, result.Decision, result.Reason)
	}
	return nil
}

// ResolveUser returns the user's effective permission set.
func (e *Engine) ResolveUser(ctx context.Context, userID string) (*Resolution, error) {
	scope := scopeFromContext(ctx)
	return e.resolution(ctx, scope.tenantID, userID)
}

// InvalidateUser drops the cached resolution for one user. Call after
// any mutation that affects the user's roles or grants.
func (e *Engine) InvalidateUser(ctx context.Context, userID string) {
	if e.cache != nil {
		scope := scopeFromContext(ctx)
		e.cache.InvalidateUser(ctx, scope.tenantID, userID)
	}
}

// InvalidateTenant drops all cached resolutions for the current tenant.
// Call after catalog or role mutations.
func (e *Engine) InvalidateTenant(ctx context.Context) {
	if e.cache != nil {
		scope := scopeFromContext(ctx)
		e.cache.InvalidateTenant(ctx, scope.tenantID)
	}
}

func (e *Engine) resolution(ctx context.Context, tenantID, userID string) (*Resolution, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(ctx, tenantID, userID); ok {
			return cached, nil
		}
	}

	catalog, err := e.source.Catalog(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	roles, err := e.source.UserRoles(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	grants, err := e.source.UserGrants(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	res, err := Resolve(userID, roles, grants, catalog)
	if err != nil {
		return nil, err
	}
	for _, sk := range res.Skipped {
		e.logger.Warn("skipped permission reference",
			slog.String("user_id", userID),
			slog.String("permission", sk.PermissionName),
			slog.String("origin", sk.Origin),
			slog.String("reason", sk.Reason),
		)
	}

	if e.cache != nil {
		e.cache.Set(ctx, tenantID, userID, res)
	}
	return res, nil
}
