package bastion

import (
	"context"
	"sync"
	"testing"

	"github.com/credlane/bastion/grant"
	"github.com/credlane/bastion/permission"
)

// fixtureSource serves canned resolver inputs and counts per-user reads.
type fixtureSource struct {
	catalog *Catalog
	roles   map[string][]RoleGrants
	grants  map[string][]*grant.Grant

	mu        sync.Mutex
	roleReads map[string]int
}

func newFixtureSource(catalog *Catalog) *fixtureSource {
	return &fixtureSource{
		catalog:   catalog,
		roles:     make(map[string][]RoleGrants),
		grants:    make(map[string][]*grant.Grant),
		roleReads: make(map[string]int),
	}
}

func (f *fixtureSource) Catalog(context.Context, string) (*Catalog, error) {
	return f.catalog, nil
}

func (f *fixtureSource) UserRoles(_ context.Context, _, userID string) ([]RoleGrants, error) {
	f.mu.Lock()
	f.roleReads[userID]++
	f.mu.Unlock()
	return f.roles[userID], nil
}

func (f *fixtureSource) UserGrants(_ context.Context, _, userID string) ([]*grant.Grant, error) {
	return f.grants[userID], nil
}

func TestBuildMatrix(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")

	read := testPerm("application", "read", permission.ScopeBranch)
	approve := testPerm("application", "approve", permission.ScopeBranch)
	src := newFixtureSource(NewCatalog([]*permission.Permission{read, approve}))

	officer := testRole("Officer", "officer")
	src.roles["alice"] = []RoleGrants{{Role: officer, Permissions: []string{read.Name, approve.Name}}}
	src.roles["bob"] = []RoleGrants{{Role: officer, Permissions: []string{read.Name, approve.Name}}}
	src.grants["bob"] = []*grant.Grant{testGrant("bob", approve.Name, false)}

	eng, err := NewEngine(WithSource(src))
	if err != nil {
		t.Fatal(err)
	}

	m, err := eng.BuildMatrix(ctx, []string{"alice", "bob", "carol"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(m.Permissions) != 2 {
		t.Fatalf("expected 2 catalog columns, got %v", m.Permissions)
	}
	if m.Cell("alice", read.Name) != CellGranted || m.Cell("alice", approve.Name) != CellGranted {
		t.Fatalf("unexpected alice row: %v", m.Cells["alice"])
	}
	if m.Cell("bob", approve.Name) != CellDenied {
		t.Fatal("bob's explicit deny should show as denied")
	}
	if m.Cell("bob", read.Name) != CellGranted {
		t.Fatal("bob keeps read despite the approve deny")
	}
	if m.Cell("carol", read.Name) != CellNone {
		t.Fatal("carol has nothing")
	}
	if len(m.Failed) != 0 {
		t.Fatalf("no user should fail, got %v", m.Failed)
	}
}

func TestBuildMatrixPermissionSubset(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")

	read := testPerm("application", "read", permission.ScopeBranch)
	approve := testPerm("application", "approve", permission.ScopeBranch)
	src := newFixtureSource(NewCatalog([]*permission.Permission{read, approve}))
	src.roles["alice"] = []RoleGrants{{Role: testRole("Officer", "officer"), Permissions: []string{read.Name, approve.Name}}}

	eng, err := NewEngine(WithSource(src))
	if err != nil {
		t.Fatal(err)
	}

	m, err := eng.BuildMatrix(ctx, []string{"alice"}, []string{approve.Name})
	if err != nil {
		t.Fatal(err)
	}

	if len(m.Permissions) != 1 || m.Permissions[0] != approve.Name {
		t.Fatalf("expected the requested column only, got %v", m.Permissions)
	}
	if m.Cell("alice", approve.Name) != CellGranted {
		t.Fatal("requested column should resolve as granted")
	}
	if _, ok := m.Cells["alice"][read.Name]; ok {
		t.Fatal("row must not carry cells outside the requested columns")
	}
}

func TestBuildMatrixCellsMatchCheck(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")

	read := testPerm("application", "read", permission.ScopeBranch)
	src := newFixtureSource(NewCatalog([]*permission.Permission{read}))
	src.roles["alice"] = []RoleGrants{{Role: testRole("Officer", "officer"), Permissions: []string{read.Name}}}

	eng, err := NewEngine(WithSource(src))
	if err != nil {
		t.Fatal(err)
	}

	m, err := eng.BuildMatrix(ctx, []string{"alice", "bob"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	for _, user := range []string{"alice", "bob"} {
		allowed, err := eng.CanScope(ctx, user, "application", "read", permission.ScopeBranch)
		if err != nil {
			t.Fatal(err)
		}
		granted := m.Cell(user, read.Name) == CellGranted
		if allowed != granted {
			t.Fatalf("matrix cell and check disagree for %s: check=%v cell=%v", user, allowed, granted)
		}
	}
}

func TestBuildMatrixIsolatesFailures(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")

	read := testPerm("application", "read", permission.ScopeBranch)
	src := newFixtureSource(NewCatalog([]*permission.Permission{read}))
	src.roles["good"] = []RoleGrants{{Role: testRole("Officer", "officer"), Permissions: []string{read.Name}}}
	// Two grant rows for the same permission: a data integrity violation.
	src.grants["corrupt"] = []*grant.Grant{
		testGrant("corrupt", read.Name, true),
		testGrant("corrupt", read.Name, false),
	}

	eng, err := NewEngine(WithSource(src))
	if err != nil {
		t.Fatal(err)
	}

	m, err := eng.BuildMatrix(ctx, []string{"good", "corrupt"}, nil)
	if err != nil {
		t.Fatal(err)
	}

	if m.Cell("good", read.Name) != CellGranted {
		t.Fatal("healthy user must still resolve")
	}
	if _, failed := m.Failed["corrupt"]; !failed {
		t.Fatalf("corrupt user should land in Failed, got %v", m.Failed)
	}
	if _, ok := m.Cells["corrupt"]; ok {
		t.Fatal("failed user must not get a row")
	}
}

func TestBuildMatrixResolvesEachUserOnce(t *testing.T) {
	ctx := WithTenant(context.Background(), "app1", "t1")

	perms := make([]*permission.Permission, 0, 20)
	names := make([]string, 0, 20)
	for _, action := range []string{"create", "read", "update", "delete"} {
		for _, scope := range permission.ScopesByBreadth {
			p := testPerm("application", action, scope)
			perms = append(perms, p)
			names = append(names, p.Name)
		}
	}
	src := newFixtureSource(NewCatalog(perms))
	officer := testRole("Officer", "officer")
	for _, user := range []string{"u1", "u2", "u3"} {
		src.roles[user] = []RoleGrants{{Role: officer, Permissions: names}}
	}

	eng, err := NewEngine(WithSource(src))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := eng.BuildMatrix(ctx, []string{"u1", "u2", "u3"}, nil); err != nil {
		t.Fatal(err)
	}

	// One resolver pass per user regardless of catalog width.
	for user, reads := range src.roleReads {
		if reads != 1 {
			t.Fatalf("user %s resolved %d times, want 1", user, reads)
		}
	}
	if len(src.roleReads) != 3 {
		t.Fatalf("expected 3 users resolved, got %d", len(src.roleReads))
	}
}
