// Package lot provides the lot catalog and FEFO allocation.
// A lot is a traceable physical batch of a product sharing manufacture and
// expiry dates; regulation requires selling soonest-to-expire lots first.
package lot

import (
	"time"

	"botica/internal/core/id"
	"botica/internal/core/types"
)

// Lot is a physical batch of a product.
// Invariant: CurrentQuantity >= ReservedQuantity >= 0. CurrentQuantity
// decreases only through sale/loss/expiration allocations and increases
// only through receiving.
type Lot struct {
	ID              id.ID          `db:"id" json:"id"`
	ProductID       id.ID          `db:"product_id" json:"productId"`
	LotNumber       string         `db:"lot_number" json:"lotNumber"`
	ManufactureDate time.Time      `db:"manufacture_date" json:"manufactureDate"`
	ExpiryDate      time.Time      `db:"expiry_date" json:"expiryDate"`
	InitialQuantity types.Quantity `db:"initial_quantity" json:"initialQuantity"`
	CurrentQuantity types.Quantity `db:"current_quantity" json:"currentQuantity"`

	// ReservedQuantity holds units committed to open orders; they are on
	// hand but not available for allocation.
	ReservedQuantity types.Quantity `db:"reserved_quantity" json:"reservedQuantity"`

	UnitCost  types.Money `db:"unit_cost" json:"unitCost"`
	Active    bool        `db:"active" json:"active"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time   `db:"updated_at" json:"updatedAt"`
}

// Available returns the quantity free for allocation.
func (l *Lot) Available() types.Quantity {
	return l.CurrentQuantity - l.ReservedQuantity
}

// Eligible reports whether the lot may be allocated at the given time.
func (l *Lot) Eligible(now time.Time) bool {
	return l.Active && l.Available().IsPositive() && l.ExpiryDate.After(now)
}
