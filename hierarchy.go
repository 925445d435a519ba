package bastion

import (
	"context"
	"fmt"

	"github.com/credlane/bastion/role"
)

type rolePair struct {
	role *role.Role
}

// ValidateHierarchy walks the parent chain of a role about to be written
// and rejects chains that loop back to the role or exceed the configured
// depth. Call it before persisting a role whose ParentID is set.
func (e *Engine) ValidateHierarchy(ctx context.Context, r *role.Role) error {
	if r.ParentID == nil {
		return nil
	}
	maxDepth := e.config.hierarchyDepth()
	chain := map[string]struct{}{r.ID.String(): {}}
	currentID := *r.ParentID
	for depth := 0; ; depth++ {
		if depth >= maxDepth {
			return fmt.Errorf("%w: role %s", ErrHierarchyDepthExceeded, r.Slug)
		}
		key := currentID.String()
		if _, ok := chain[key]; ok {
			return fmt.Errorf("%w: role %s", ErrCyclicRoleInheritance, r.Slug)
		}
		chain[key] = struct{}{}

		parent, err := e.store.GetRole(ctx, currentID)
		if err != nil {
			return fmt.Errorf("bastion: load parent role %s: %w", key, err)
		}
		if parent.ParentID == nil {
			return nil
		}
		currentID = *parent.ParentID
	}
}

// expandParents appends each assigned role's parent chain, preserving
// input order so that the assigned role is always encountered before its
// ancestors. Each role appears once; a cycle in any chain aborts.
func (s *storeSource) expandParents(ctx context.Context, roles []*rolePair) ([]*rolePair, error) {
	maxDepth := s.config.hierarchyDepth()
	seen := make(map[string]struct{}, len(roles))
	out := make([]*rolePair, 0, len(roles)*2)

	for _, rp := range roles {
		key := rp.role.ID.String()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, rp)
	}

	for _, rp := range roles {
		current := rp.role
		chain := map[string]struct{}{current.ID.String(): {}}
		for depth := 0; current.ParentID != nil; depth++ {
			if depth >= maxDepth {
				return nil, fmt.Errorf("%w: role %s", ErrHierarchyDepthExceeded, rp.role.Slug)
			}
			parentKey := current.ParentID.String()
			if _, ok := chain[parentKey]; ok {
				return nil, fmt.Errorf("%w: role %s", ErrCyclicRoleInheritance, rp.role.Slug)
			}
			chain[parentKey] = struct{}{}

			parent, err := s.store.GetRole(ctx, *current.ParentID)
			if err != nil {
				return nil, fmt.Errorf("bastion: load parent role %s: %w", parentKey, err)
			}
			if _, ok := seen[parentKey]; !ok {
				seen[parentKey] = struct{}{}
				out = append(out, &rolePair{role: parent})
			}
			current = parent
		}
	}

	return out, nil
}
