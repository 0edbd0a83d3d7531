package inventory

import (
	"context"

	"freshsave/internal/core/result"
)

// Repository persists items. Implementations never panic or return bare
// errors across this boundary: every outcome is a Result.
//
// GetItem distinguishes the two empty outcomes: a missing document is
// Success(nil), an unreachable or failing store is a Failure.
type Repository interface {
	// AddItem persists a new item and returns the store-assigned ID.
	// The item's own ID is ignored.
	AddItem(ctx context.Context, item Item) result.Result[string]

	GetItem(ctx context.Context, itemID string) result.Result[*Item]

	// UpdateItem replaces every field of the item identified by item.ID.
	UpdateItem(ctx context.Context, item Item) result.Result[result.Unit]

	DeleteItem(ctx context.Context, itemID string) result.Result[result.Unit]

	// GetAllItems returns the whole collection, unordered.
	GetAllItems(ctx context.Context) result.Result[[]Item]

	// GetExpiringSoonItems returns items whose expiry date lies in
	// (now, now + window], evaluated at call time.
	GetExpiringSoonItems(ctx context.Context) result.Result[[]Item]
}
