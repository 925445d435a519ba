package permission

import "testing"

func TestFormatName(t *testing.T) {
	got := FormatName("Application", "Approve", ScopeDepartment)
	if got != "application.approve.department" {
		t.Errorf("expected application.approve.department, got %q", got)
	}
}

func TestParseName(t *testing.T) {
	resource, action, scope, err := ParseName("file.upload.own")
	if err != nil {
		t.Fatal(err)
	}
	if resource != "file" || action != "upload" || scope != ScopeOwn {
		t.Errorf("unexpected parts: %s %s %s", resource, action, scope)
	}
}

func TestParseNameRejectsUnknownScope(t *testing.T) {
	_, _, _, err := ParseName("file.upload.everywhere")
	if err == nil {
		t.Fatal("expected error for unknown scope")
	}
}

func TestParseNameRejectsShortNames(t *testing.T) {
	for _, name := range []string{"", "read", "file.read"} {
		if _, _, _, err := ParseName(name); err == nil {
			t.Errorf("expected error for %q", name)
		}
	}
}

func TestValidate(t *testing.T) {
	p := &Permission{
		Name:     "application.view_all.global",
		Resource: "application",
		Action:   "view_all",
		Scope:    ScopeGlobal,
	}
	if err := Validate(p); err != nil {
		t.Fatalf("expected valid permission, got %v", err)
	}

	p.Name = "application.view_all.branch"
	if err := Validate(p); err == nil {
		t.Fatal("expected name/parts mismatch error")
	}

	p = &Permission{Name: "User.read.own", Resource: "User", Action: "read", Scope: ScopeOwn}
	if err := Validate(p); err == nil {
		t.Fatal("expected error for uppercase resource")
	}
}

func TestScopeOrdering(t *testing.T) {
	if !ScopeGlobal.Broader(ScopeOwn) {
		t.Error("global should be broader than own")
	}
	if ScopeOwn.Broader(ScopeBranch) {
		t.Error("own should not be broader than branch")
	}
	if ScopesByBreadth[0] != ScopeGlobal || ScopesByBreadth[len(ScopesByBreadth)-1] != ScopeOwn {
		t.Error("precedence order must run global..own")
	}

	prev := ScopesByBreadth[0].Rank() + 1
	for _, s := range ScopesByBreadth {
		if s.Rank() >= prev {
			t.Errorf("scope %s out of order", s)
		}
		prev = s.Rank()
	}
}

func TestParseScope(t *testing.T) {
	if _, err := ParseScope("branch"); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseScope("planet"); err == nil {
		t.Fatal("expected error for unknown scope")
	}
}
