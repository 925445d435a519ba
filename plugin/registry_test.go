package plugin

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/credlane/bastion/grant"
	"github.com/credlane/bastion/role"
)

type recordingPlugin struct {
	name         string
	checks       int
	rolesCreated int
	grantsMade   int
	shutdowns    int
	err          error
}

func (p *recordingPlugin) Name() string { return p.name }

func (p *recordingPlugin) OnBeforeCheck(_ context.Context, _ any) error {
	p.checks++
	return p.err
}

func (p *recordingPlugin) OnRoleCreated(_ context.Context, _ *role.Role) error {
	p.rolesCreated++
	return p.err
}

func (p *recordingPlugin) OnGrantCreated(_ context.Context, _ *grant.Grant) error {
	p.grantsMade++
	return p.err
}

func (p *recordingPlugin) OnShutdown(_ context.Context) error {
	p.shutdowns++
	return p.err
}

func TestRegistryDispatchesToImplementedHooks(t *testing.T) {
	reg := NewRegistry(slog.Default())
	p := &recordingPlugin{name: "rec"}
	reg.Register(p)

	ctx := context.Background()
	reg.EmitBeforeCheck(ctx, nil)
	reg.EmitRoleCreated(ctx, &role.Role{Name: "Teller"})
	reg.EmitGrantCreated(ctx, &grant.Grant{PermissionName: "account.read.branch"})
	reg.EmitShutdown(ctx)

	// Hooks the plugin does not implement must be safe to emit.
	reg.EmitAfterCheck(ctx, nil, nil)
	reg.EmitRoleUpdated(ctx, &role.Role{})

	if p.checks != 1 {
		t.Fatalf("checks = %d, want 1", p.checks)
	}
	if p.rolesCreated != 1 {
		t.Fatalf("rolesCreated = %d, want 1", p.rolesCreated)
	}
	if p.grantsMade != 1 {
		t.Fatalf("grantsMade = %d, want 1", p.grantsMade)
	}
	if p.shutdowns != 1 {
		t.Fatalf("shutdowns = %d, want 1", p.shutdowns)
	}
}

func TestRegistryHookErrorsDoNotStopDispatch(t *testing.T) {
	reg := NewRegistry(slog.Default())
	failing := &recordingPlugin{name: "failing", err: errors.New("boom")}
	healthy := &recordingPlugin{name: "healthy"}
	reg.Register(failing)
	reg.Register(healthy)

	reg.EmitBeforeCheck(context.Background(), nil)

	if failing.checks != 1 || healthy.checks != 1 {
		t.Fatalf("both plugins should run: failing=%d healthy=%d", failing.checks, healthy.checks)
	}
}

func TestRegistryOrder(t *testing.T) {
	reg := NewRegistry(slog.Default())
	a := &recordingPlugin{name: "a"}
	b := &recordingPlugin{name: "b"}
	reg.Register(a)
	reg.Register(b)

	if got := len(reg.Plugins()); got != 2 {
		t.Fatalf("Plugins() = %d, want 2", got)
	}
	if reg.Plugins()[0].Name() != "a" || reg.Plugins()[1].Name() != "b" {
		t.Fatal("plugins not in registration order")
	}
}
