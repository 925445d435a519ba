package plugin

import (
	"context"
	"log/slog"

	"github.com/credlane/bastion/assignment"
	"github.com/credlane/bastion/audit"
	"github.com/credlane/bastion/grant"
	"github.com/credlane/bastion/permission"
	"github.com/credlane/bastion/role"
)

// Auditor converts administrative lifecycle events into audit events.
// The evaluation path never writes audit records itself; only mutations
// of roles, permissions, assignments, and grants are recorded.
type Auditor struct {
	recorder audit.Recorder
	logger   *slog.Logger

	// ActorFrom extracts the acting user's ID from the request context.
	// Wire this to bastion.ActorFromContext.
	ActorFrom func(ctx context.Context) string
}

var (
	_ Plugin            = (*Auditor)(nil)
	_ RoleCreated       = (*Auditor)(nil)
	_ RoleUpdated       = (*Auditor)(nil)
	_ PermissionCreated = (*Auditor)(nil)
	_ PermissionUpdated = (*Auditor)(nil)
	_ RoleAssigned      = (*Auditor)(nil)
	_ RoleUnassigned    = (*Auditor)(nil)
	_ GrantCreated      = (*Auditor)(nil)
	_ GrantRevoked      = (*Auditor)(nil)
)

// NewAuditor creates the audit plugin writing through the recorder.
func NewAuditor(recorder audit.Recorder, logger *slog.Logger) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{recorder: recorder, logger: logger}
}

// Name returns the plugin name.
func (a *Auditor) Name() string { return "auditor" }

func (a *Auditor) record(ctx context.Context, e *audit.Event) error {
	if a.ActorFrom != nil && e.ActorID == "" {
		e.ActorID = a.ActorFrom(ctx)
	}
	if err := a.recorder.Record(ctx, e); err != nil {
		a.logger.Warn("audit record failed",
			slog.String("action", e.Action),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// OnRoleCreated records a role.created event.
func (a *Auditor) OnRoleCreated(ctx context.Context, r *role.Role) error {
	return a.record(ctx, &audit.Event{
		TenantID: r.TenantID,
		AppID:    r.AppID,
		Action:   audit.ActionRoleCreated,
		Metadata: map[string]any{"role_id": r.ID.String(), "slug": r.Slug},
	})
}

// OnRoleUpdated records a role.updated event.
func (a *Auditor) OnRoleUpdated(ctx context.Context, r *role.Role) error {
	return a.record(ctx, &audit.Event{
		TenantID: r.TenantID,
		AppID:    r.AppID,
		Action:   audit.ActionRoleUpdated,
		Metadata: map[string]any{"role_id": r.ID.String(), "slug": r.Slug},
	})
}

// OnPermissionCreated records a permission.created event.
func (a *Auditor) OnPermissionCreated(ctx context.Context, p *permission.Permission) error {
	return a.record(ctx, &audit.Event{
		TenantID:   p.TenantID,
		AppID:      p.AppID,
		Action:     audit.ActionPermCreated,
		Permission: p.Name,
	})
}

// OnPermissionUpdated records a permission.updated event.
func (a *Auditor) OnPermissionUpdated(ctx context.Context, p *permission.Permission) error {
	return a.record(ctx, &audit.Event{
		TenantID:   p.TenantID,
		AppID:      p.AppID,
		Action:     audit.ActionPermUpdated,
		Permission: p.Name,
	})
}

// OnRoleAssigned records a role.assigned event.
func (a *Auditor) OnRoleAssigned(ctx context.Context, asn *assignment.Assignment) error {
	return a.record(ctx, &audit.Event{
		TenantID:     asn.TenantID,
		AppID:        asn.AppID,
		Action:       audit.ActionRoleAssigned,
		ActorID:      asn.GrantedBy,
		TargetUserID: asn.UserID,
		Metadata:     map[string]any{"role_id": asn.RoleID.String()},
	})
}

// OnRoleUnassigned records a role.unassigned event.
func (a *Auditor) OnRoleUnassigned(ctx context.Context, asn *assignment.Assignment) error {
	return a.record(ctx, &audit.Event{
		TenantID:     asn.TenantID,
		AppID:        asn.AppID,
		Action:       audit.ActionRoleUnassigned,
		TargetUserID: asn.UserID,
		Metadata:     map[string]any{"role_id": asn.RoleID.String()},
	})
}

// OnGrantCreated records a grant.created event.
func (a *Auditor) OnGrantCreated(ctx context.Context, g *grant.Grant) error {
	return a.record(ctx, &audit.Event{
		TenantID:     g.TenantID,
		AppID:        g.AppID,
		Action:       audit.ActionGrantCreated,
		ActorID:      g.GrantedBy,
		TargetUserID: g.UserID,
		Permission:   g.PermissionName,
		Metadata:     map[string]any{"is_granted": g.IsGranted, "reason": g.Reason},
	})
}

// OnGrantRevoked records a grant.revoked event.
func (a *Auditor) OnGrantRevoked(ctx context.Context, g *grant.Grant) error {
	return a.record(ctx, &audit.Event{
		TenantID:     g.TenantID,
		AppID:        g.AppID,
		Action:       audit.ActionGrantRevoked,
		TargetUserID: g.UserID,
		Permission:   g.PermissionName,
	})
}
