package bastion

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/credlane/bastion/assignment"
	"github.com/credlane/bastion/grant"
	"github.com/credlane/bastion/id"
	"github.com/credlane/bastion/permission"
	"github.com/credlane/bastion/role"
	"github.com/credlane/bastion/store/memory"
)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *memory.Store) {
	t.Helper()
	s := memory.New()
	eng, err := NewEngine(append([]Option{WithStore(s)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return eng, s
}

func seedRole(t *testing.T, ctx context.Context, s *memory.Store, name, slug string) *role.Role {
	t.Helper()
	r := testRole(name, slug)
	if err := s.CreateRole(ctx, r); err != nil {
		t.Fatal(err)
	}
	return r
}

func seedPerm(t *testing.T, ctx context.Context, s *memory.Store, resource, action string, scope permission.Scope) *permission.Permission {
	t.Helper()
	p := testPerm(resource, action, scope)
	if err := s.CreatePermission(ctx, p); err != nil {
		t.Fatal(err)
	}
	return p
}

func seedAssignment(t *testing.T, ctx context.Context, s *memory.Store, roleID id.RoleID, userID string) {
	t.Helper()
	err := s.CreateAssignment(ctx, &assignment.Assignment{
		ID:       id.NewAssignmentID(),
		TenantID: "t1",
		RoleID:   roleID,
		UserID:   userID,
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestNewEngine_RequiresStore(t *testing.T) {
	_, err := NewEngine()
	if err == nil {
		t.Fatal("expected error when store and source are nil")
	}
}

func TestCheckFlow(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, s := newTestEngine(t)

	officer := seedRole(t, ctx, s, "Loan Officer", "loan-officer")
	read := seedPerm(t, ctx, s, "application", "read", permission.ScopeBranch)
	if err := s.AttachPermission(ctx, officer.ID, read.ID); err != nil {
		t.Fatal(err)
	}
	seedAssignment(t, ctx, s, officer.ID, "u1")

	result, err := eng.Check(ctx, &CheckRequest{UserID: "u1", Resource: "application", Action: "read"})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed || result.Decision != DecisionAllow {
		t.Fatalf("expected allow, got %+v", result)
	}
	if result.Source != SourceRole || result.RoleName != "Loan Officer" {
		t.Fatalf("unexpected attribution: %+v", result)
	}
	if result.Permission != read.Name {
		t.Fatalf("expected %s, got %s", read.Name, result.Permission)
	}
	if result.EvalTimeNs < 0 {
		t.Fatalf("eval time must be non-negative, got %d", result.EvalTimeNs)
	}
}

func TestCheckDefaultDeny(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, _ := newTestEngine(t)

	result, err := eng.Check(ctx, &CheckRequest{UserID: "nobody", Resource: "application", Action: "approve"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed || result.Decision != DecisionDenyNoGrant {
		t.Fatalf("expected deny_no_grant, got %+v", result)
	}
}

func TestCheckBypassRole(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, s := newTestEngine(t)

	admin := seedRole(t, ctx, s, "Administrator", "admin")
	seedAssignment(t, ctx, s, admin.ID, "root")

	// No permission exists at all, yet the bypass role allows anything.
	result, err := eng.Check(ctx, &CheckRequest{UserID: "root", Resource: "system", Action: "manage"})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Allowed || result.Decision != DecisionBypass || result.Source != SourceBypass {
		t.Fatalf("expected bypass, got %+v", result)
	}
}

func TestCheckBypassDisabled(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	cfg := DefaultConfig()
	cfg.BypassRole = ""
	eng, s := newTestEngine(t, WithConfig(cfg))

	admin := seedRole(t, ctx, s, "Administrator", "admin")
	seedAssignment(t, ctx, s, admin.ID, "root")

	result, err := eng.Check(ctx, &CheckRequest{UserID: "root", Resource: "system", Action: "manage"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed {
		t.Fatal("bypass disabled, check must fall through to normal resolution")
	}
}

func TestCheckScopeSemantics(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, s := newTestEngine(t)

	manager := seedRole(t, ctx, s, "Branch Manager", "branch-manager")
	global := seedPerm(t, ctx, s, "analytics", "read", permission.ScopeGlobal)
	if err := s.AttachPermission(ctx, manager.ID, global.ID); err != nil {
		t.Fatal(err)
	}
	seedAssignment(t, ctx, s, manager.ID, "u1")

	// Unscoped: any held scope satisfies.
	allowed, err := eng.Can(ctx, "u1", "analytics", "read")
	if err != nil {
		t.Fatal(err)
	}
	if !allowed {
		t.Fatal("global grant must satisfy an unscoped check")
	}

	// Explicit scope requires an exact match; holding global does not
	// answer a check pinned to own.
	allowed, err = eng.CanScope(ctx, "u1", "analytics", "read", permission.ScopeOwn)
	if err != nil {
		t.Fatal(err)
	}
	if allowed {
		t.Fatal("explicit own-scope check must not match a global grant")
	}

	allowed, err = eng.CanScope(ctx, "u1", "analytics", "read", permission.ScopeGlobal)
	if err != nil {
		t.Fatal(err)
	}
	if !allowed {
		t.Fatal("explicit global-scope check should match the global grant")
	}
}

func TestCheckBroadestScopeWins(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, s := newTestEngine(t)

	r := seedRole(t, ctx, s, "Mixed", "mixed")
	own := seedPerm(t, ctx, s, "application", "read", permission.ScopeOwn)
	dept := seedPerm(t, ctx, s, "application", "read", permission.ScopeDepartment)
	for _, p := range []id.PermissionID{own.ID, dept.ID} {
		if err := s.AttachPermission(ctx, r.ID, p); err != nil {
			t.Fatal(err)
		}
	}
	seedAssignment(t, ctx, s, r.ID, "u1")

	result, err := eng.Check(ctx, &CheckRequest{UserID: "u1", Resource: "application", Action: "read"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Permission != dept.Name {
		t.Fatalf("expected broadest held scope %s, got %s", dept.Name, result.Permission)
	}
}

func TestCheckExplicitDeny(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, s := newTestEngine(t)

	underwriter := seedRole(t, ctx, s, "Underwriter", "underwriter")
	approve := seedPerm(t, ctx, s, "application", "approve", permission.ScopeDepartment)
	if err := s.AttachPermission(ctx, underwriter.ID, approve.ID); err != nil {
		t.Fatal(err)
	}
	seedAssignment(t, ctx, s, underwriter.ID, "u1")

	err := s.CreateGrant(ctx, &grant.Grant{
		ID: id.NewGrantID(), TenantID: "t1", UserID: "u1",
		PermissionName: approve.Name, IsGranted: false,
	})
	if err != nil {
		t.Fatal(err)
	}

	result, err := eng.Check(ctx, &CheckRequest{UserID: "u1", Resource: "application", Action: "approve"})
	if err != nil {
		t.Fatal(err)
	}
	if result.Allowed || result.Decision != DecisionDenyExplicit {
		t.Fatalf("expected deny_explicit, got %+v", result)
	}
	if result.Permission != approve.Name {
		t.Fatalf("denied permission should be named, got %+v", result)
	}
}

func TestCheckExpiredAssignmentIgnored(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, s := newTestEngine(t)

	officer := seedRole(t, ctx, s, "Officer", "officer")
	read := seedPerm(t, ctx, s, "application", "read", permission.ScopeBranch)
	if err := s.AttachPermission(ctx, officer.ID, read.ID); err != nil {
		t.Fatal(err)
	}

	past := time.Now().Add(-time.Hour)
	err := s.CreateAssignment(ctx, &assignment.Assignment{
		ID: id.NewAssignmentID(), TenantID: "t1",
		RoleID: officer.ID, UserID: "u1", ExpiresAt: &past,
	})
	if err != nil {
		t.Fatal(err)
	}

	allowed, err := eng.Can(ctx, "u1", "application", "read")
	if err != nil {
		t.Fatal(err)
	}
	if allowed {
		t.Fatal("expired assignment must not grant permissions")
	}
}

// notReadySource simulates a backing store that has not loaded yet.
type notReadySource struct{}

func (notReadySource) Catalog(context.Context, string) (*Catalog, error) {
	return nil, ErrNotReady
}

func (notReadySource) UserRoles(context.Context, string, string) ([]RoleGrants, error) {
	return nil, ErrNotReady
}

func (notReadySource) UserGrants(context.Context, string, string) ([]*grant.Grant, error) {
	return nil, ErrNotReady
}

func TestCheckIndeterminate(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, err := NewEngine(WithSource(notReadySource{}))
	if err != nil {
		t.Fatal(err)
	}

	result, err := eng.Check(ctx, &CheckRequest{UserID: "u1", Resource: "application", Action: "read"})
	if err != nil {
		t.Fatalf("not-ready source must not surface as an error: %v", err)
	}
	if result.Allowed {
		t.Fatal("indeterminate must fail closed")
	}
	if result.Decision != DecisionIndeterminate {
		t.Fatalf("expected indeterminate, got %s", result.Decision)
	}
	if result.Decision == DecisionDenyNoGrant || result.Decision == DecisionDenyExplicit {
		t.Fatal("indeterminate must be distinguishable from a deny")
	}
}

func TestEnforce(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, s := newTestEngine(t)

	officer := seedRole(t, ctx, s, "Officer", "officer")
	read := seedPerm(t, ctx, s, "application", "read", permission.ScopeBranch)
	if err := s.AttachPermission(ctx, officer.ID, read.ID); err != nil {
		t.Fatal(err)
	}
	seedAssignment(t, ctx, s, officer.ID, "u1")

	if err := eng.Enforce(ctx, &CheckRequest{UserID: "u1", Resource: "application", Action: "read"}); err != nil {
		t.Fatalf("expected enforce to pass: %v", err)
	}

	err := eng.Enforce(ctx, &CheckRequest{UserID: "u1", Resource: "application", Action: "delete"})
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

func TestEnforceIndeterminate(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, err := NewEngine(WithSource(notReadySource{}))
	if err != nil {
		t.Fatal(err)
	}

	err = eng.Enforce(ctx, &CheckRequest{UserID: "u1", Resource: "application", Action: "read"})
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if errors.Is(err, ErrAccessDenied) {
		t.Fatal("indeterminate enforce must not look like a deny")
	}
}

func TestInheritParentRoles(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	cfg := DefaultConfig()
	cfg.InheritParentRoles = true
	eng, s := newTestEngine(t, WithConfig(cfg))

	viewer := seedRole(t, ctx, s, "Viewer", "viewer")
	editor := testRole("Editor", "editor")
	editor.ParentID = &viewer.ID
	if err := s.CreateRole(ctx, editor); err != nil {
		t.Fatal(err)
	}

	read := seedPerm(t, ctx, s, "document", "read", permission.ScopeTeam)
	write := seedPerm(t, ctx, s, "document", "update", permission.ScopeTeam)
	if err := s.AttachPermission(ctx, viewer.ID, read.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.AttachPermission(ctx, editor.ID, write.ID); err != nil {
		t.Fatal(err)
	}
	seedAssignment(t, ctx, s, editor.ID, "u1")

	for _, action := range []string{"read", "update"} {
		allowed, err := eng.Can(ctx, "u1", "document", action)
		if err != nil {
			t.Fatal(err)
		}
		if !allowed {
			t.Fatalf("expected %s via inheritance", action)
		}
	}
}

func TestInheritanceOffByDefault(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, s := newTestEngine(t)

	viewer := seedRole(t, ctx, s, "Viewer", "viewer")
	editor := testRole("Editor", "editor")
	editor.ParentID = &viewer.ID
	if err := s.CreateRole(ctx, editor); err != nil {
		t.Fatal(err)
	}

	read := seedPerm(t, ctx, s, "document", "read", permission.ScopeTeam)
	if err := s.AttachPermission(ctx, viewer.ID, read.ID); err != nil {
		t.Fatal(err)
	}
	seedAssignment(t, ctx, s, editor.ID, "u1")

	allowed, err := eng.Can(ctx, "u1", "document", "read")
	if err != nil {
		t.Fatal(err)
	}
	if allowed {
		t.Fatal("parent permissions must not apply when inheritance is off")
	}
}

func TestInheritanceCycleDetected(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	cfg := DefaultConfig()
	cfg.InheritParentRoles = true
	eng, s := newTestEngine(t, WithConfig(cfg))

	a := seedRole(t, ctx, s, "A", "a")
	b := testRole("B", "b")
	b.ParentID = &a.ID
	if err := s.CreateRole(ctx, b); err != nil {
		t.Fatal(err)
	}
	a.ParentID = &b.ID
	if err := s.UpdateRole(ctx, a); err != nil {
		t.Fatal(err)
	}
	seedAssignment(t, ctx, s, a.ID, "u1")

	_, err := eng.Check(ctx, &CheckRequest{UserID: "u1", Resource: "application", Action: "read"})
	if !errors.Is(err, ErrCyclicRoleInheritance) {
		t.Fatalf("expected ErrCyclicRoleInheritance, got %v", err)
	}
}

func TestValidateHierarchy(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, s := newTestEngine(t)

	a := seedRole(t, ctx, s, "A", "a")
	b := testRole("B", "b")
	b.ParentID = &a.ID
	if err := s.CreateRole(ctx, b); err != nil {
		t.Fatal(err)
	}

	// Reparenting a under b would close the loop.
	a.ParentID = &b.ID
	if err := eng.ValidateHierarchy(ctx, a); !errors.Is(err, ErrCyclicRoleInheritance) {
		t.Fatalf("expected cycle rejection, got %v", err)
	}

	c := testRole("C", "c")
	c.ParentID = &b.ID
	if err := eng.ValidateHierarchy(ctx, c); err != nil {
		t.Fatalf("valid chain rejected: %v", err)
	}
}

func TestResolveUser(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")
	eng, s := newTestEngine(t)

	officer := seedRole(t, ctx, s, "Officer", "officer")
	read := seedPerm(t, ctx, s, "application", "read", permission.ScopeBranch)
	if err := s.AttachPermission(ctx, officer.ID, read.ID); err != nil {
		t.Fatal(err)
	}
	seedAssignment(t, ctx, s, officer.ID, "u1")

	res, err := eng.ResolveUser(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if res.UserID != "u1" || !res.Has(read.Name) {
		t.Fatalf("unexpected resolution: %+v", res)
	}
}
