// Package sale provides persisted sales and the sale application flow
// shared by the synchronous POS path and offline reconciliation.
package sale

import (
	"time"

	"botica/internal/core/id"
	"botica/internal/core/types"
)

// Sale is a completed, persisted sale. For offline-originated sales the ID
// is the client-generated record id, which makes resubmission detectable.
type Sale struct {
	ID         id.ID       `db:"id" json:"id"`
	ClientID   *id.ID      `db:"client_id" json:"clientId,omitempty"`
	ActorID    string      `db:"actor_id" json:"actorId"`
	TotalValue types.Money `db:"total_value" json:"totalValue"`

	// ClientTimestamp is when the sale happened on the terminal; nil for
	// synchronous sales, where CreatedAt is authoritative.
	ClientTimestamp *time.Time `db:"client_timestamp" json:"clientTimestamp,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Item is a sale line.
type Item struct {
	ID                   id.ID          `db:"id" json:"id"`
	SaleID               id.ID          `db:"sale_id" json:"saleId"`
	ProductID            id.ID          `db:"product_id" json:"productId"`
	ProductName          string         `db:"product_name" json:"productName"`
	Quantity             types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice            types.Money    `db:"unit_price" json:"unitPrice"`
	Subtotal             types.Money    `db:"subtotal" json:"subtotal"`
	RequiresPrescription bool           `db:"requires_prescription" json:"requiresPrescription"`

	// LotID is set when the line consumed an explicitly chosen lot.
	LotID *id.ID `db:"lot_id" json:"lotId,omitempty"`
}
