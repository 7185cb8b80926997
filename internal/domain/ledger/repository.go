package ledger

import (
	"context"
	"time"

	"botica/internal/core/id"
	"botica/internal/core/types"
)

// Repository defines storage operations for the stock ledger.
// The ledger is append-only: there are no update or delete operations.
type Repository interface {
	// CreateMovement appends a single movement.
	CreateMovement(ctx context.Context, m StockMovement) error

	// CreateMovements batch appends movements (used when one sale
	// produces several exit movements).
	CreateMovements(ctx context.Context, movements []StockMovement) error

	// GetByProduct returns movement history for a product, newest first.
	GetByProduct(ctx context.Context, productID id.ID, filter MovementFilter) ([]StockMovement, error)

	// SumSignedQuantities replays all movements for a product and returns
	// the signed total. Equals the product's CurrentStock when the ledger
	// and catalog are consistent.
	SumSignedQuantities(ctx context.Context, productID id.ID) (types.Quantity, error)
}

// MovementFilter narrows movement history queries.
type MovementFilter struct {
	Kind     *MovementKind
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}
