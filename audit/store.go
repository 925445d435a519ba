package audit

import (
	"context"
	"time"

	"github.com/credlane/bastion/id"
)

// Recorder receives audit events. The engine writes through a Recorder so
// that deployments can route events to the configured store, an external
// sink, or both.
type Recorder interface {
	// Record persists a single audit event. Implementations must not
	// block the caller longer than necessary; failures are logged, not
	// surfaced to the authorization path.
	Record(ctx context.Context, e *Event) error
}

// Store defines persistence operations for audit events.
type Store interface {
	// CreateAuditEvent persists a new audit event.
	CreateAuditEvent(ctx context.Context, e *Event) error

	// GetAuditEvent retrieves an audit event by ID.
	GetAuditEvent(ctx context.Context, eventID id.AuditEventID) (*Event, error)

	// ListAuditEvents returns audit events matching the filter.
	ListAuditEvents(ctx context.Context, filter *QueryFilter) ([]*Event, error)

	// CountAuditEvents returns the number of events matching the filter.
	CountAuditEvents(ctx context.Context, filter *QueryFilter) (int64, error)

	// PurgeAuditEvents removes audit events older than the given time.
	PurgeAuditEvents(ctx context.Context, before time.Time) (int64, error)

	// DeleteAuditEventsByTenant removes all audit events for a tenant.
	DeleteAuditEventsByTenant(ctx context.Context, tenantID string) error
}
