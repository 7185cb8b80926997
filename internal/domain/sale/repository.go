package sale

import (
	"context"

	"botica/internal/core/id"
)

// Repository defines storage operations for persisted sales.
type Repository interface {
	// ExistsByID is the idempotency probe for offline reconciliation.
	ExistsByID(ctx context.Context, saleID id.ID) (bool, error)

	// Create inserts a sale with its line items. Returns apperror
	// Duplicate when the id already exists (concurrent resubmission).
	Create(ctx context.Context, s Sale, items []Item) error

	// GetByID returns a sale with its items or apperror NotFound.
	GetByID(ctx context.Context, saleID id.ID) (Sale, []Item, error)
}
