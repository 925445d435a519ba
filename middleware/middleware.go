// Package middleware provides HTTP authorization middleware for Bastion.
package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/xraph/forge"

	"github.com/credlane/bastion"
	"github.com/credlane/bastion/permission"
)

// Require enforces authorization. It resolves the user from the request
// context (Authsome user > anonymous) and checks whether the user can
// perform the given action on the resource at any scope.
//
// An indeterminate decision answers 503 rather than 403: the
// authorization data is not loaded yet and the client should retry, not
// conclude it lacks access.
func Require(eng *bastion.Engine, resource, action string) forge.Middleware {
	return check(eng, resource, action, "")
}

// RequireScope is Require with an exact scope: only a permission at
// precisely that scope satisfies the check.
func RequireScope(eng *bastion.Engine, resource, action string, scope permission.Scope) forge.Middleware {
	return check(eng, resource, action, scope)
}

func check(eng *bastion.Engine, resource, action string, scope permission.Scope) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			result, err := eng.Check(ctx.Context(), &bastion.CheckRequest{
				UserID:   resolveUser(ctx),
				Resource: resource,
				Action:   action,
				Scope:    scope,
			})
			if err != nil {
				return err
			}
			if result.Decision == bastion.DecisionIndeterminate {
				return unavailableResponse(ctx)
			}
			if !result.Allowed {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireAny allows the request if ANY of the checks pass. Checks run in
// order against the same user; when every check comes back indeterminate
// the answer is 503.
func RequireAny(eng *bastion.Engine, checks ...bastion.CheckRequest) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			userID := resolveUser(ctx)
			indeterminate := len(checks) > 0
			for i := range checks {
				c := checks[i]
				c.UserID = userID
				result, err := eng.Check(ctx.Context(), &c)
				if err != nil {
					return err
				}
				if result.Allowed {
					return next(ctx)
				}
				if result.Decision != bastion.DecisionIndeterminate {
					indeterminate = false
				}
			}
			if indeterminate {
				return unavailableResponse(ctx)
			}
			return denyResponse(ctx)
		}
	}
}

// RequireAll allows the request only if ALL checks pass.
func RequireAll(eng *bastion.Engine, checks ...bastion.CheckRequest) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			userID := resolveUser(ctx)
			for i := range checks {
				c := checks[i]
				c.UserID = userID
				result, err := eng.Check(ctx.Context(), &c)
				if err != nil {
					return err
				}
				if result.Decision == bastion.DecisionIndeterminate {
					return unavailableResponse(ctx)
				}
				if !result.Allowed {
					return denyResponse(ctx)
				}
			}
			return next(ctx)
		}
	}
}

// resolveUser extracts the user ID from context.
// Priority: Forge user ID (from Authsome) → anonymous.
func resolveUser(ctx forge.Context) string {
	if userID := forge.UserIDFromContext(ctx.Context()); userID != "" {
		return userID
	}
	return "anonymous"
}

func denyResponse(ctx forge.Context) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(http.StatusForbidden)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": "access denied"})
}

func unavailableResponse(ctx forge.Context) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(http.StatusServiceUnavailable)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": "authorization data not ready"})
}
