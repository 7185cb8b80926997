// Package product provides the product catalog view used by the stock subsystem.
// The catalog itself (pricing, categories, suppliers) is owned elsewhere; the
// ledger only reads and writes the stock-related fields.
package product

import (
	"time"

	"botica/internal/core/id"
	"botica/internal/core/types"
)

// Product is the catalog entry as seen by the stock subsystem.
// CurrentStock is the single authoritative on-hand quantity; every change
// to it goes through the ledger inside a transaction.
type Product struct {
	ID           id.ID           `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	CurrentStock types.Quantity  `db:"current_stock" json:"currentStock"`
	MinimumStock types.Quantity  `db:"minimum_stock" json:"minimumStock"`
	MaximumStock *types.Quantity `db:"maximum_stock" json:"maximumStock,omitempty"`

	// LotMandatory marks controlled/perishable products whose sales must
	// carry explicit lot choices instead of automatic FEFO allocation.
	LotMandatory bool `db:"lot_mandatory" json:"lotMandatory"`

	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// BelowMinimum reports whether the product needs replenishment.
func (p *Product) BelowMinimum() bool {
	return p.CurrentStock < p.MinimumStock
}
