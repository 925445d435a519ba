package cache

import (
	"context"
	"testing"
	"time"

	"github.com/credlane/bastion"
)

func res(userID string) *bastion.Resolution {
	return &bastion.Resolution{
		UserID:      userID,
		Permissions: map[string]bastion.EffectivePermission{},
	}
}

func TestMemoryGetSet(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	if _, ok := c.Get(ctx, "t1", "u1"); ok {
		t.Fatal("empty cache should miss")
	}

	c.Set(ctx, "t1", "u1", res("u1"))
	got, ok := c.Get(ctx, "t1", "u1")
	if !ok {
		t.Fatal("expected hit")
	}
	if got.UserID != "u1" {
		t.Fatalf("UserID = %q, want u1", got.UserID)
	}

	// Tenants do not share entries.
	if _, ok := c.Get(ctx, "t2", "u1"); ok {
		t.Fatal("different tenant should miss")
	}
}

func TestMemoryTTLExpiry(t *testing.T) {
	c := NewMemory(WithTTL(10 * time.Millisecond))
	ctx := context.Background()

	c.Set(ctx, "t1", "u1", res("u1"))
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get(ctx, "t1", "u1"); ok {
		t.Fatal("expired entry should miss")
	}
}

func TestMemoryInvalidateUser(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	c.Set(ctx, "t1", "u1", res("u1"))
	c.Set(ctx, "t1", "u2", res("u2"))

	c.InvalidateUser(ctx, "t1", "u1")

	if _, ok := c.Get(ctx, "t1", "u1"); ok {
		t.Fatal("invalidated user should miss")
	}
	if _, ok := c.Get(ctx, "t1", "u2"); !ok {
		t.Fatal("other user should still hit")
	}
}

func TestMemoryInvalidateTenant(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	c.Set(ctx, "t1", "u1", res("u1"))
	c.Set(ctx, "t1", "u2", res("u2"))
	c.Set(ctx, "t2", "u1", res("u1"))

	c.InvalidateTenant(ctx, "t1")

	if _, ok := c.Get(ctx, "t1", "u1"); ok {
		t.Fatal("t1 entries should be gone")
	}
	if _, ok := c.Get(ctx, "t1", "u2"); ok {
		t.Fatal("t1 entries should be gone")
	}
	if _, ok := c.Get(ctx, "t2", "u1"); !ok {
		t.Fatal("t2 entry should survive")
	}
}

func TestMemoryMaxSizeEviction(t *testing.T) {
	c := NewMemory(WithMaxSize(2))
	ctx := context.Background()

	c.Set(ctx, "t1", "u1", res("u1"))
	c.Set(ctx, "t1", "u2", res("u2"))
	c.Set(ctx, "t1", "u3", res("u3"))

	hits := 0
	for _, u := range []string{"u1", "u2", "u3"} {
		if _, ok := c.Get(ctx, "t1", u); ok {
			hits++
		}
	}
	if hits > 2 {
		t.Fatalf("hits = %d, capacity is 2", hits)
	}
}
