package api

import (
	"errors"

	"github.com/xraph/forge"

	"github.com/credlane/bastion"
	"github.com/credlane/bastion/store"
)

// mapError maps domain errors to Forge HTTP errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return forge.NotFound(err.Error())
	}
	if errors.Is(err, bastion.ErrSystemRoleImmutable) || errors.Is(err, bastion.ErrSystemPermissionImmutable) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, bastion.ErrDuplicateAssignment) || errors.Is(err, bastion.ErrDuplicateGrant) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, bastion.ErrCyclicRoleInheritance) || errors.Is(err, bastion.ErrHierarchyDepthExceeded) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, bastion.ErrActionNotAllowed) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, bastion.ErrAccessDenied) {
		return forge.Forbidden(err.Error())
	}
	if errors.Is(err, store.ErrDuplicate) {
		return forge.BadRequest(err.Error())
	}
	// ErrNotReady and ErrDataIntegrity surface as-is: they are server
	// conditions, not client mistakes.
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound) ||
		errors.Is(err, bastion.ErrRoleNotFound) ||
		errors.Is(err, bastion.ErrPermissionNotFound) ||
		errors.Is(err, bastion.ErrAssignmentNotFound) ||
		errors.Is(err, bastion.ErrGrantNotFound) ||
		errors.Is(err, bastion.ErrResourceTypeNotFound) ||
		errors.Is(err, bastion.ErrAuditEventNotFound)
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
