package bastion

import (
	"context"

	"github.com/xraph/forge"
)

type contextKey int

const (
	ctxKeyAppID contextKey = iota
	ctxKeyTenantID
	ctxKeyActorID
)

// WithTenant returns a context with the given app and tenant IDs.
// Use this for standalone mode (without Forge).
func WithTenant(ctx context.Context, appID, tenantID string) context.Context {
	ctx = context.WithValue(ctx, ctxKeyAppID, appID)
	ctx = context.WithValue(ctx, ctxKeyTenantID, tenantID)
	return ctx
}

// WithActor returns a context carrying the acting user's ID for audit
// attribution of administrative mutations.
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ctxKeyActorID, actorID)
}

// ActorFromContext returns the acting user's ID, if set.
func ActorFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyActorID).(string)
	return v
}

// TenantScope returns the app and tenant IDs in effect for the request:
// the forge.Scope when one is attached, otherwise whatever WithTenant
// set. Both are empty in unscoped standalone use.
func TenantScope(ctx context.Context) (appID, tenantID string) {
	s := scopeFromContext(ctx)
	return s.appID, s.tenantID
}

func appIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyAppID).(string)
	return v
}

func tenantIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyTenantID).(string)
	return v
}

type tenantScope struct {
	appID    string
	tenantID string
}

// scopeFromContext extracts tenant scope from forge.Scope or standalone
// context. Falls back to explicit tenant if Forge scope is not set.
func scopeFromContext(ctx context.Context) tenantScope {
	s, ok := forge.ScopeFrom(ctx)
	if ok {
		return tenantScope{
			appID:    s.AppID(),
			tenantID: s.OrgID(),
		}
	}
	return tenantScope{
		appID:    appIDFromContext(ctx),
		tenantID: tenantIDFromContext(ctx),
	}
}
