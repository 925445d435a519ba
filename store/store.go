// Package store defines the aggregate persistence interface. Each subsystem
// (role, permission, assignment, grant, resourcetype, audit) defines its own
// store interface. The composite Store composes them all.
// Backends: Postgres, SQLite, Mongo, and Memory.
package store

import (
	"context"
	"errors"

	"github.com/credlane/bastion/assignment"
	"github.com/credlane/bastion/audit"
	"github.com/credlane/bastion/grant"
	"github.com/credlane/bastion/permission"
	"github.com/credlane/bastion/resourcetype"
	"github.com/credlane/bastion/role"
)

var (
	// ErrNotFound is wrapped by every backend when an entity does not
	// exist. Callers match it with errors.Is and translate to the
	// entity-specific sentinel at the boundary that knows which entity
	// was asked for.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is wrapped by every backend when a uniqueness
	// constraint rejects a write.
	ErrDuplicate = errors.New("already exists")
)

// Store is the aggregate persistence interface.
// Each subsystem store is a composable interface; a single backend
// (postgres, sqlite, mongo, memory) implements all of them.
type Store interface {
	role.Store
	permission.Store
	assignment.Store
	grant.Store
	resourcetype.Store
	audit.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
