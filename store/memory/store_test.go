package memory

import (
	"context"
	"testing"
	"time"

	"github.com/credlane/bastion/assignment"
	"github.com/credlane/bastion/audit"
	"github.com/credlane/bastion/grant"
	"github.com/credlane/bastion/id"
	"github.com/credlane/bastion/permission"
	"github.com/credlane/bastion/resourcetype"
	"github.com/credlane/bastion/role"
)

func newRole(tenantID, slug string) *role.Role {
	now := time.Now()
	return &role.Role{
		ID:        id.NewRoleID(),
		TenantID:  tenantID,
		Name:      slug,
		Slug:      slug,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func newPermission(tenantID, resource, action string, scope permission.Scope) *permission.Permission {
	now := time.Now()
	return &permission.Permission{
		ID:        id.NewPermissionID(),
		TenantID:  tenantID,
		Name:      permission.FormatName(resource, action, scope),
		Resource:  resource,
		Action:    action,
		Scope:     scope,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRoleCRUD(t *testing.T) {
	s := New()
	ctx := context.Background()

	r := newRole("t1", "teller")
	if err := s.CreateRole(ctx, r); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetRole(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Slug != "teller" {
		t.Fatalf("Slug = %q, want teller", got.Slug)
	}

	bySlug, err := s.GetRoleBySlug(ctx, "t1", "teller")
	if err != nil {
		t.Fatal(err)
	}
	if bySlug.ID != r.ID {
		t.Fatal("GetRoleBySlug returned wrong role")
	}

	got.Description = "handles counter operations"
	if err := s.UpdateRole(ctx, got); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteRole(ctx, r.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetRole(ctx, r.ID); err == nil {
		t.Fatal("expected not found after delete")
	}
}

func TestGetRoleCopies(t *testing.T) {
	s := New()
	ctx := context.Background()

	r := newRole("t1", "teller")
	if err := s.CreateRole(ctx, r); err != nil {
		t.Fatal(err)
	}

	got, _ := s.GetRole(ctx, r.ID)
	got.Name = "mutated"

	fresh, _ := s.GetRole(ctx, r.ID)
	if fresh.Name == "mutated" {
		t.Fatal("store must return copies, not shared pointers")
	}
}

func TestListRolesFilters(t *testing.T) {
	s := New()
	ctx := context.Background()

	active := newRole("t1", "teller")
	inactive := newRole("t1", "retired")
	inactive.IsActive = false
	other := newRole("t2", "teller")
	for _, r := range []*role.Role{active, inactive, other} {
		if err := s.CreateRole(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	yes := true
	list, err := s.ListRoles(ctx, &role.ListFilter{TenantID: "t1", IsActive: &yes})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Slug != "teller" {
		t.Fatalf("filtered list = %v", list)
	}

	n, err := s.CountRoles(ctx, &role.ListFilter{TenantID: "t1"})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("CountRoles = %d, want 2", n)
	}
}

func TestRolePermissionAttachment(t *testing.T) {
	s := New()
	ctx := context.Background()

	r := newRole("t1", "teller")
	p1 := newPermission("t1", "account", "read", permission.ScopeBranch)
	p2 := newPermission("t1", "account", "update", permission.ScopeBranch)
	if err := s.CreateRole(ctx, r); err != nil {
		t.Fatal(err)
	}
	for _, p := range []*permission.Permission{p1, p2} {
		if err := s.CreatePermission(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.AttachPermission(ctx, r.ID, p1.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.AttachPermission(ctx, r.ID, p2.ID); err != nil {
		t.Fatal(err)
	}
	// Re-attaching is idempotent.
	if err := s.AttachPermission(ctx, r.ID, p1.ID); err != nil {
		t.Fatal(err)
	}

	perms, err := s.ListPermissionsByRole(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(perms) != 2 {
		t.Fatalf("perms = %d, want 2", len(perms))
	}
	// Attach order is preserved.
	if perms[0].Name != p1.Name || perms[1].Name != p2.Name {
		t.Fatalf("order = %s, %s", perms[0].Name, perms[1].Name)
	}

	if err := s.DetachPermission(ctx, r.ID, p1.ID); err != nil {
		t.Fatal(err)
	}
	perms, _ = s.ListPermissionsByRole(ctx, r.ID)
	if len(perms) != 1 || perms[0].Name != p2.Name {
		t.Fatalf("after detach: %v", perms)
	}

	// Deleting a permission removes it from role mappings.
	if err := s.DeletePermission(ctx, p2.ID); err != nil {
		t.Fatal(err)
	}
	perms, _ = s.ListPermissionsByRole(ctx, r.ID)
	if len(perms) != 0 {
		t.Fatalf("after permission delete: %v", perms)
	}
}

func TestAssignmentsExcludeExpired(t *testing.T) {
	s := New()
	ctx := context.Background()

	r := newRole("t1", "teller")
	if err := s.CreateRole(ctx, r); err != nil {
		t.Fatal(err)
	}

	past := time.Now().Add(-time.Hour)
	expired := &assignment.Assignment{
		ID:        id.NewAssignmentID(),
		TenantID:  "t1",
		RoleID:    r.ID,
		UserID:    "u1",
		ExpiresAt: &past,
		CreatedAt: time.Now(),
	}
	live := &assignment.Assignment{
		ID:        id.NewAssignmentID(),
		TenantID:  "t1",
		RoleID:    r.ID,
		UserID:    "u2",
		CreatedAt: time.Now(),
	}
	for _, a := range []*assignment.Assignment{expired, live} {
		if err := s.CreateAssignment(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	roles, err := s.ListRolesForUser(ctx, "t1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(roles) != 0 {
		t.Fatal("expired assignment should not list")
	}

	roles, _ = s.ListRolesForUser(ctx, "t1", "u2")
	if len(roles) != 1 {
		t.Fatalf("roles for u2 = %d, want 1", len(roles))
	}

	n, err := s.DeleteExpiredAssignments(ctx, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("purged = %d, want 1", n)
	}
}

func TestListRolesForUserCreationOrder(t *testing.T) {
	s := New()
	ctx := context.Background()

	base := time.Now()
	want := make([]id.RoleID, 0, 8)
	for i := 0; i < 8; i++ {
		r := newRole("t1", "role-"+string(rune('a'+i)))
		if err := s.CreateRole(ctx, r); err != nil {
			t.Fatal(err)
		}
		a := &assignment.Assignment{
			ID:        id.NewAssignmentID(),
			TenantID:  "t1",
			RoleID:    r.ID,
			UserID:    "u1",
			CreatedAt: base.Add(time.Duration(i) * time.Millisecond),
		}
		if err := s.CreateAssignment(ctx, a); err != nil {
			t.Fatal(err)
		}
		want = append(want, r.ID)
	}

	// First-encountered-wins attribution depends on a stable role order,
	// so every call must return assignments in creation order.
	for run := 0; run < 20; run++ {
		got, err := s.ListRolesForUser(ctx, "t1", "u1")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(want) {
			t.Fatalf("run %d: roles = %d, want %d", run, len(got), len(want))
		}
		for i := range want {
			if got[i].String() != want[i].String() {
				t.Fatalf("run %d: role order differs at index %d: %s vs %s", run, i, got[i], want[i])
			}
		}
	}
}

func TestDeleteAssignmentByUserRole(t *testing.T) {
	s := New()
	ctx := context.Background()

	r := newRole("t1", "teller")
	a := &assignment.Assignment{
		ID:       id.NewAssignmentID(),
		TenantID: "t1",
		RoleID:   r.ID,
		UserID:   "u1",
	}
	if err := s.CreateAssignment(ctx, a); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteAssignmentByUserRole(ctx, "t1", "u1", r.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteAssignmentByUserRole(ctx, "t1", "u1", r.ID); err == nil {
		t.Fatal("second delete should report not found")
	}
}

func TestGrantUniqueness(t *testing.T) {
	s := New()
	ctx := context.Background()

	g := &grant.Grant{
		ID:             id.NewGrantID(),
		TenantID:       "t1",
		UserID:         "u1",
		PermissionName: "account.read.branch",
		IsGranted:      true,
	}
	if err := s.CreateGrant(ctx, g); err != nil {
		t.Fatal(err)
	}

	dup := &grant.Grant{
		ID:             id.NewGrantID(),
		TenantID:       "t1",
		UserID:         "u1",
		PermissionName: "account.read.branch",
		IsGranted:      false,
	}
	if err := s.CreateGrant(ctx, dup); err == nil {
		t.Fatal("duplicate grant must be rejected")
	}

	// Upsert flips the flag on the existing row instead.
	if err := s.UpsertGrant(ctx, dup); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetGrantByName(ctx, "t1", "u1", "account.read.branch")
	if err != nil {
		t.Fatal(err)
	}
	if got.IsGranted {
		t.Fatal("upsert should have flipped is_granted to false")
	}
	if got.ID != g.ID {
		t.Fatal("upsert must keep the original row ID")
	}

	grants, _ := s.ListGrantsForUser(ctx, "t1", "u1")
	if len(grants) != 1 {
		t.Fatalf("grants = %d, want 1", len(grants))
	}
}

func TestResourceTypeCRUD(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, rt := range resourcetype.Builtin() {
		rt.ID = id.NewResourceTypeID()
		rt.TenantID = "t1"
		if err := s.CreateResourceType(ctx, rt); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.GetResourceTypeByName(ctx, "t1", "application")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Allows("approve", permission.ScopeBranch) {
		t.Fatal("application should allow approve at branch scope")
	}
	if got.Allows("purge", permission.ScopeBranch) {
		t.Fatal("application should not allow purge")
	}

	n, err := s.CountResourceTypes(ctx, &resourcetype.ListFilter{TenantID: "t1"})
	if err != nil {
		t.Fatal(err)
	}
	if n != 14 {
		t.Fatalf("builtin types = %d, want 14", n)
	}
}

func TestAuditEventsQueryAndPurge(t *testing.T) {
	s := New()
	ctx := context.Background()

	old := &audit.Event{
		ID:        id.NewAuditEventID(),
		TenantID:  "t1",
		Action:    audit.ActionGrantCreated,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	recent := &audit.Event{
		ID:           id.NewAuditEventID(),
		TenantID:     "t1",
		Action:       audit.ActionRoleAssigned,
		TargetUserID: "u1",
		CreatedAt:    time.Now(),
	}
	for _, e := range []*audit.Event{old, recent} {
		if err := s.CreateAuditEvent(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.ListAuditEvents(ctx, &audit.QueryFilter{TenantID: "t1", TargetUserID: "u1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Action != audit.ActionRoleAssigned {
		t.Fatalf("filtered events = %v", list)
	}

	n, err := s.PurgeAuditEvents(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("purged = %d, want 1", n)
	}
}

func TestPagination(t *testing.T) {
	s := New()
	ctx := context.Background()

	for _, slug := range []string{"a", "b", "c", "d", "e"} {
		if err := s.CreateRole(ctx, newRole("t1", slug)); err != nil {
			t.Fatal(err)
		}
	}

	page, err := s.ListRoles(ctx, &role.ListFilter{TenantID: "t1", Limit: 2, Offset: 0})
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 {
		t.Fatalf("page = %d, want 2", len(page))
	}

	tail, _ := s.ListRoles(ctx, &role.ListFilter{TenantID: "t1", Limit: 10, Offset: 4})
	if len(tail) != 1 {
		t.Fatalf("tail = %d, want 1", len(tail))
	}

	empty, _ := s.ListRoles(ctx, &role.ListFilter{TenantID: "t1", Offset: 10})
	if len(empty) != 0 {
		t.Fatalf("past-the-end offset should be empty, got %d", len(empty))
	}
}
