package store

import (
	"context"
	"testing"
)

func TestMemoryActiveOrderID(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, err := m.LoadActiveOrderID(ctx, "u1"); err != ErrNotFound {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
	if err := m.SaveActiveOrderID(ctx, "u1", 42); err != nil {
		t.Fatalf("save: %v", err)
	}
	id, err := m.LoadActiveOrderID(ctx, "u1")
	if err != nil || id != 42 {
		t.Fatalf("load = %d, %v", id, err)
	}
	// scopes are independent
	if _, err := m.LoadActiveOrderID(ctx, "u2"); err != ErrNotFound {
		t.Fatalf("scope leak: %v", err)
	}
	if err := m.ClearActiveOrderID(ctx, "u1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := m.LoadActiveOrderID(ctx, "u1"); err != ErrNotFound {
		t.Fatalf("got %v after clear, want ErrNotFound", err)
	}
	// clearing again is a no-op, not an error
	if err := m.ClearActiveOrderID(ctx, "u1"); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}
