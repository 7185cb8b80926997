// Package ledger provides the append-only stock ledger.
// Every change to a product's on-hand quantity is justified by exactly one
// immutable StockMovement; replaying all movements for a product reproduces
// its current stock.
package ledger

import (
	"fmt"
	"time"

	"botica/internal/core/id"
	"botica/internal/core/types"
)

// MovementKind is the closed set of ledger entry types.
type MovementKind string

const (
	// KindEntry records goods received from purchasing.
	KindEntry MovementKind = "entry"
	// KindExit records goods dispensed through a sale.
	KindExit MovementKind = "exit"
	// KindAdjustment records a manual inventory correction.
	KindAdjustment MovementKind = "adjustment"
	// KindLoss records breakage, theft or other shrinkage.
	KindLoss MovementKind = "loss"
	// KindExpiration records write-off of expired lots.
	KindExpiration MovementKind = "expiration"
)

// Kinds lists every movement kind. Used to build exhaustive SQL
// expressions from the same mapping Direction uses.
func Kinds() []MovementKind {
	return []MovementKind{KindEntry, KindExit, KindAdjustment, KindLoss, KindExpiration}
}

// Direction is the sign a movement applies to CurrentStock.
type Direction int

const (
	DirectionIn  Direction = 1
	DirectionOut Direction = -1
)

// Direction maps each kind to its stock effect. This is the single place
// that knows the sign of a kind; adding a kind forces updating this switch.
//
// Adjustment is additive-only, matching current product behavior. A signed
// adjustment variant needs product-owner confirmation first.
func (k MovementKind) Direction() (Direction, error) {
	switch k {
	case KindEntry, KindAdjustment:
		return DirectionIn, nil
	case KindExit, KindLoss, KindExpiration:
		return DirectionOut, nil
	default:
		return 0, fmt.Errorf("unknown movement kind %q", k)
	}
}

// Valid reports whether k is a known movement kind.
func (k MovementKind) Valid() bool {
	_, err := k.Direction()
	return err == nil
}

// StockMovement is an immutable ledger entry. Movements are never updated
// or deleted; corrections are recorded as new movements.
type StockMovement struct {
	ID        id.ID          `db:"id" json:"id"`
	ProductID id.ID          `db:"product_id" json:"productId"`
	Kind      MovementKind   `db:"kind" json:"kind"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"` // always positive; sign implied by Kind
	Reason    string         `db:"reason" json:"reason"`

	// RelatedSaleID ties exit movements to the sale that caused them.
	RelatedSaleID *id.ID `db:"related_sale_id" json:"relatedSaleId,omitempty"`

	ActorID   string    `db:"actor_id" json:"actorId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewStockMovement creates a movement with a fresh UUIDv7 id.
func NewStockMovement(productID id.ID, kind MovementKind, quantity types.Quantity, reason, actorID string, relatedSaleID *id.ID) StockMovement {
	return StockMovement{
		ID:            id.New(),
		ProductID:     productID,
		Kind:          kind,
		Quantity:      quantity,
		Reason:        reason,
		RelatedSaleID: relatedSaleID,
		ActorID:       actorID,
		CreatedAt:     time.Now().UTC(),
	}
}

// SignedQuantity returns the quantity with the sign implied by Kind.
func (m *StockMovement) SignedQuantity() types.Quantity {
	dir, err := m.Kind.Direction()
	if err != nil {
		return 0
	}
	return types.Quantity(dir) * m.Quantity
}
