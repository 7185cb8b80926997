package product

import (
	"context"

	"botica/internal/core/id"
	"botica/internal/core/types"
)

// Repository defines product catalog operations used by the stock subsystem.
type Repository interface {
	// GetByID returns a product or apperror NotFound.
	GetByID(ctx context.Context, productID id.ID) (Product, error)

	// GetForUpdate returns the product with a row lock. Must be called
	// inside a transaction; this is the serialization point for the
	// read-check-write sequence on CurrentStock.
	GetForUpdate(ctx context.Context, productID id.ID) (Product, error)

	// UpdateStock sets the new on-hand quantity. Paired with exactly one
	// ledger movement in the same transaction.
	UpdateStock(ctx context.Context, productID id.ID, newStock types.Quantity) error

	// ListBelowMinimum returns active products whose stock fell below
	// their minimum (replenishment report).
	ListBelowMinimum(ctx context.Context) ([]Product, error)

	// Create inserts a product (used by seeding and receiving flows).
	Create(ctx context.Context, p Product) error
}
