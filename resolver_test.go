package bastion

import (
	"errors"
	"reflect"
	"testing"

	"github.com/credlane/bastion/grant"
	"github.com/credlane/bastion/id"
	"github.com/credlane/bastion/permission"
	"github.com/credlane/bastion/role"
)

func testPerm(resource, action string, scope permission.Scope) *permission.Permission {
	return &permission.Permission{
		ID:       id.NewPermissionID(),
		TenantID: "t1",
		Name:     permission.FormatName(resource, action, scope),
		Resource: resource,
		Action:   action,
		Scope:    scope,
		IsActive: true,
	}
}

func testRole(name, slug string) *role.Role {
	return &role.Role{
		ID:       id.NewRoleID(),
		TenantID: "t1",
		Name:     name,
		Slug:     slug,
		IsActive: true,
	}
}

func testGrant(userID, name string, granted bool) *grant.Grant {
	return &grant.Grant{
		ID:             id.NewGrantID(),
		TenantID:       "t1",
		UserID:         userID,
		PermissionName: name,
		IsGranted:      granted,
	}
}

func TestResolveRolePermissions(t *testing.T) {
	read := testPerm("application", "read", permission.ScopeBranch)
	approve := testPerm("application", "approve", permission.ScopeBranch)
	catalog := NewCatalog([]*permission.Permission{read, approve})

	officer := testRole("Loan Officer", "loan-officer")
	res, err := Resolve("u1", []RoleGrants{
		{Role: officer, Permissions: []string{read.Name, approve.Name}},
	}, nil, catalog)
	if err != nil {
		t.Fatal(err)
	}

	if !res.Has(read.Name) || !res.Has(approve.Name) {
		t.Fatalf("expected both permissions, got %v", res.Permissions)
	}
	ep, _ := res.Get(read.Name)
	if ep.Source != SourceRole || ep.RoleName != "Loan Officer" {
		t.Fatalf("unexpected attribution: %+v", ep)
	}
	if !res.HasRole("loan-officer") {
		t.Fatal("expected loan-officer in active roles")
	}
}

func TestResolveDenyOverridesGrant(t *testing.T) {
	approve := testPerm("application", "approve", permission.ScopeDepartment)
	catalog := NewCatalog([]*permission.Permission{approve})

	underwriter := testRole("Underwriter", "underwriter")
	res, err := Resolve("u1",
		[]RoleGrants{{Role: underwriter, Permissions: []string{approve.Name}}},
		[]*grant.Grant{testGrant("u1", approve.Name, false)},
		catalog,
	)
	if err != nil {
		t.Fatal(err)
	}

	if res.Has(approve.Name) {
		t.Fatal("explicit deny should remove role-derived permission")
	}
	if !res.ExplicitlyDenied(approve.Name) {
		t.Fatal("deny should be recorded")
	}
}

func TestResolveDirectGrantWithoutRole(t *testing.T) {
	export := testPerm("analytics", "export", permission.ScopeGlobal)
	catalog := NewCatalog([]*permission.Permission{export})

	res, err := Resolve("u1", nil, []*grant.Grant{testGrant("u1", export.Name, true)}, catalog)
	if err != nil {
		t.Fatal(err)
	}

	ep, ok := res.Get(export.Name)
	if !ok {
		t.Fatal("direct grant should add the permission")
	}
	if ep.Source != SourceDirect {
		t.Fatalf("expected direct source, got %s", ep.Source)
	}
}

func TestResolveFirstRoleWins(t *testing.T) {
	read := testPerm("application", "read", permission.ScopeBranch)
	catalog := NewCatalog([]*permission.Permission{read})

	first := testRole("First", "first")
	second := testRole("Second", "second")
	res, err := Resolve("u1", []RoleGrants{
		{Role: first, Permissions: []string{read.Name}},
		{Role: second, Permissions: []string{read.Name}},
	}, nil, catalog)
	if err != nil {
		t.Fatal(err)
	}

	ep, _ := res.Get(read.Name)
	if ep.RoleName != "First" {
		t.Fatalf("expected first role to win attribution, got %s", ep.RoleName)
	}
}

func TestResolveInactiveRoleContributesNothing(t *testing.T) {
	read := testPerm("application", "read", permission.ScopeBranch)
	catalog := NewCatalog([]*permission.Permission{read})

	inactive := testRole("Disabled", "disabled")
	inactive.IsActive = false
	res, err := Resolve("u1", []RoleGrants{
		{Role: inactive, Permissions: []string{read.Name}},
	}, nil, catalog)
	if err != nil {
		t.Fatal(err)
	}

	if res.Has(read.Name) {
		t.Fatal("inactive role should contribute nothing")
	}
	if res.HasRole("disabled") {
		t.Fatal("inactive role should not appear in Roles")
	}
}

func TestResolveInactivePermissionSkipped(t *testing.T) {
	read := testPerm("application", "read", permission.ScopeBranch)
	read.IsActive = false
	catalog := NewCatalog([]*permission.Permission{read})

	officer := testRole("Officer", "officer")
	res, err := Resolve("u1", []RoleGrants{
		{Role: officer, Permissions: []string{read.Name}},
	}, nil, catalog)
	if err != nil {
		t.Fatal(err)
	}

	if res.Has(read.Name) {
		t.Fatal("inactive permission should be excluded")
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Origin != "officer" {
		t.Fatalf("expected one skipped ref from officer, got %v", res.Skipped)
	}
}

func TestResolveDenyOfInactivePermissionIgnored(t *testing.T) {
	read := testPerm("application", "read", permission.ScopeBranch)
	read.IsActive = false
	catalog := NewCatalog([]*permission.Permission{read})

	res, err := Resolve("u1", nil,
		[]*grant.Grant{testGrant("u1", read.Name, false)},
		catalog,
	)
	if err != nil {
		t.Fatal(err)
	}

	// Direct records referencing inactive permissions are ignored
	// outright: no denied entry, just a skipped ref.
	if res.ExplicitlyDenied(read.Name) {
		t.Fatal("deny of an inactive permission should not register")
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Origin != "direct" || res.Skipped[0].Reason != "permission inactive" {
		t.Fatalf("expected one inactive skip from direct, got %v", res.Skipped)
	}
}

func TestResolveUnknownReferenceSkipped(t *testing.T) {
	catalog := NewCatalog(nil)

	officer := testRole("Officer", "officer")
	res, err := Resolve("u1",
		[]RoleGrants{{Role: officer, Permissions: []string{"application.read.branch"}}},
		[]*grant.Grant{testGrant("u1", "ghost.read.global", true)},
		catalog,
	)
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Permissions) != 0 {
		t.Fatalf("nothing should resolve, got %v", res.Permissions)
	}
	if len(res.Skipped) != 2 {
		t.Fatalf("expected two skipped refs, got %v", res.Skipped)
	}
	if res.Skipped[1].Origin != "direct" {
		t.Fatalf("direct skipped ref should carry origin direct, got %q", res.Skipped[1].Origin)
	}
}

func TestResolveDuplicateGrantRowsFail(t *testing.T) {
	approve := testPerm("application", "approve", permission.ScopeBranch)
	catalog := NewCatalog([]*permission.Permission{approve})

	_, err := Resolve("u1", nil, []*grant.Grant{
		testGrant("u1", approve.Name, true),
		testGrant("u1", approve.Name, false),
	}, catalog)
	if err == nil {
		t.Fatal("duplicate grant rows must abort resolution")
	}
	if !errors.Is(err, ErrDataIntegrity) {
		t.Fatalf("expected ErrDataIntegrity, got %v", err)
	}
	var die *DataIntegrityError
	if !errors.As(err, &die) {
		t.Fatalf("expected *DataIntegrityError, got %T", err)
	}
	if die.UserID != "u1" || die.PermissionName != approve.Name {
		t.Fatalf("unexpected error detail: %+v", die)
	}
}

func TestResolveDeterministic(t *testing.T) {
	read := testPerm("application", "read", permission.ScopeBranch)
	approve := testPerm("application", "approve", permission.ScopeBranch)
	catalog := NewCatalog([]*permission.Permission{read, approve})

	roles := []RoleGrants{
		{Role: testRole("Officer", "officer"), Permissions: []string{read.Name, approve.Name}},
	}
	grants := []*grant.Grant{testGrant("u1", approve.Name, false)}

	first, err := Resolve("u1", roles, grants, catalog)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Resolve("u1", roles, grants, catalog)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatal("resolution must be deterministic for identical inputs")
	}
}
