package lot

import (
	"context"
	"time"

	"botica/internal/core/id"
	"botica/internal/core/types"
)

// Repository defines storage operations for the lot catalog.
type Repository interface {
	// GetByID returns a lot or apperror NotFound.
	GetByID(ctx context.Context, lotID id.ID) (Lot, error)

	// GetEligibleByProduct returns lots that are active, have available
	// quantity and are not expired at the given time, in FEFO order.
	GetEligibleByProduct(ctx context.Context, productID id.ID, now time.Time) ([]Lot, error)

	// GetEligibleByProductForUpdate is GetEligibleByProduct with row
	// locks. Must be called inside a transaction before consuming.
	GetEligibleByProductForUpdate(ctx context.Context, productID id.ID, now time.Time) ([]Lot, error)

	// FindActiveByNumberForUpdate locates an active lot by its natural key
	// (product + lot number) with a row lock. Returns (nil, nil) when no
	// such lot exists.
	FindActiveByNumberForUpdate(ctx context.Context, productID id.ID, lotNumber string) (*Lot, error)

	// Create inserts a new lot.
	Create(ctx context.Context, l Lot) error

	// AddQuantity merges a received quantity into an existing lot and
	// refreshes the unit cost.
	AddQuantity(ctx context.Context, lotID id.ID, quantity types.Quantity, unitCost types.Money) error

	// ConsumeQuantity decrements available quantity. Fails without
	// mutating when the decrement would cut into reserved units.
	ConsumeQuantity(ctx context.Context, lotID id.ID, quantity types.Quantity) error
}
