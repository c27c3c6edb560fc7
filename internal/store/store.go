package store

import (
	"context"
	"errors"
)

// Store persists which order id a session is tracking. Failures are
// non-fatal to the caller: in-memory state stays the source of truth.
type Store interface {
	// LoadActiveOrderID returns the stored order id for the scope, or
	// ErrNotFound when none is stored.
	LoadActiveOrderID(ctx context.Context, scope string) (int64, error)
	// SaveActiveOrderID stores the order id for the scope.
	SaveActiveOrderID(ctx context.Context, scope string, orderID int64) error
	// ClearActiveOrderID removes any stored order id for the scope.
	ClearActiveOrderID(ctx context.Context, scope string) error
}

var ErrNotFound = errors.New("not found")
