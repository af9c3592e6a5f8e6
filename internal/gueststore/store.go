// Package gueststore persists anonymous cart snapshots, one named slot
// per guest id, with read-whole/write-whole semantics and last-write-wins.
package gueststore

import (
	"context"

	"cartsync/internal/domain"
)

// Store is the guest cart persistence contract. Read never fails: a
// missing or malformed snapshot yields an empty cart. Write is
// best-effort; callers treat a failure as non-fatal for the session.
type Store interface {
	Read(ctx context.Context, guestID string) []domain.CartLine
	Write(ctx context.Context, guestID string, lines []domain.CartLine) error
}
