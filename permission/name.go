package permission

import (
	"fmt"
	"strings"
)

// FormatName builds the canonical permission name "resource.action.scope".
// Inputs are lowered; no validation is performed.
func FormatName(resource, action string, scope Scope) string {
	return strings.ToLower(resource) + "." + strings.ToLower(action) + "." + string(scope)
}

// ParseName splits a canonical permission name into its parts.
// The scope is always the last dot-separated segment, the resource the
// first; actions may themselves contain dots (e.g. "view_all" does not, but
// the format tolerates it by splitting on the outermost segments).
func ParseName(name string) (resource, action string, scope Scope, err error) {
	parts := strings.Split(name, ".")
	if len(parts) < 3 {
		return "", "", "", fmt.Errorf("permission: name %q must have resource.action.scope form", name)
	}
	resource = parts[0]
	scopePart := parts[len(parts)-1]
	action = strings.Join(parts[1:len(parts)-1], ".")

	scope, err = ParseScope(scopePart)
	if err != nil {
		return "", "", "", fmt.Errorf("permission: name %q: %w", name, err)
	}
	if resource == "" || action == "" {
		return "", "", "", fmt.Errorf("permission: name %q has an empty segment", name)
	}
	return resource, action, scope, nil
}

// Validate checks the data shape of a permission: non-empty resource and
// action in the allowed character set, a known scope, and a Name consistent
// with the parts.
func Validate(p *Permission) error {
	if p.Resource == "" {
		return fmt.Errorf("permission: resource is required")
	}
	if p.Action == "" {
		return fmt.Errorf("permission: action is required")
	}
	if !p.Scope.Valid() {
		return fmt.Errorf("permission: unknown scope %q", p.Scope)
	}
	if !validSegment(p.Resource) {
		return fmt.Errorf("permission: resource %q has invalid characters", p.Resource)
	}
	if !validSegment(p.Action) {
		return fmt.Errorf("permission: action %q has invalid characters", p.Action)
	}
	if want := FormatName(p.Resource, p.Action, p.Scope); p.Name != want {
		return fmt.Errorf("permission: name %q does not match parts (want %q)", p.Name, want)
	}
	return nil
}

// validSegment allows lowercase alphanumerics, underscore, and hyphen.
func validSegment(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return false
		}
	}
	return s != ""
}
