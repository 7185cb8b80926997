// Package offline provides the client-side offline sale record and its
// tamper-evident integrity digest. The recorder runs on the disconnected
// point of sale; the server uses the same code to verify submitted batches.
package offline

import (
	"time"

	"botica/internal/core/apperror"
	"botica/internal/core/id"
	"botica/internal/core/types"
)

// Item is one line of an offline sale.
type Item struct {
	ProductID            id.ID          `json:"productId"`
	ProductName          string         `json:"productName"`
	Quantity             types.Quantity `json:"quantity"`
	UnitPrice            types.Money    `json:"unitPrice"`
	Subtotal             types.Money    `json:"subtotal"`
	RequiresPrescription bool           `json:"requiresPrescription"`

	// LotID carries the explicit lot choice for lot-mandatory products.
	LotID *id.ID `json:"lotId,omitempty"`
}

// SaleRecord is a sale captured while disconnected, not yet persisted
// server-side. The client-generated ID doubles as the idempotency key.
type SaleRecord struct {
	ID              id.ID       `json:"id"`
	Items           []Item      `json:"items"`
	TotalValue      types.Money `json:"totalValue"`
	ClientID        *id.ID      `json:"clientId,omitempty"`
	ActorID         string      `json:"actorId"`
	ClientTimestamp time.Time   `json:"clientTimestamp"`
	IntegrityDigest string      `json:"integrityDigest"`
}

// ItemInput is the recorder's per-line input; subtotals are computed.
type ItemInput struct {
	ProductID            id.ID
	ProductName          string
	Quantity             types.Quantity
	UnitPrice            types.Money
	RequiresPrescription bool
	LotID                *id.ID
}

// Recorder builds offline sale records.
type Recorder struct {
	now func() time.Time
}

// NewRecorder creates a recorder using wall-clock time.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// NewRecorderAt creates a recorder with a fixed clock, for tests.
func NewRecorderAt(now func() time.Time) *Recorder {
	return &Recorder{now: now}
}

// Build assembles a sale record: per-item subtotal (quantity x unit price),
// total value, client timestamp, fresh id and integrity digest.
func (r *Recorder) Build(items []ItemInput, actorID string, clientID *id.ID) (SaleRecord, error) {
	if len(items) == 0 {
		return SaleRecord{}, apperror.NewValidation("sale must have at least one item")
	}
	if actorID == "" {
		return SaleRecord{}, apperror.NewValidation("actor is required")
	}

	record := SaleRecord{
		ID:              id.New(),
		Items:           make([]Item, 0, len(items)),
		TotalValue:      types.ZeroMoney(),
		ClientID:        clientID,
		ActorID:         actorID,
		ClientTimestamp: r.now().UTC().Truncate(time.Second),
	}

	for _, in := range items {
		if !in.Quantity.IsPositive() {
			return SaleRecord{}, apperror.NewValidation("item quantity must be positive").
				WithDetail("product_id", in.ProductID.String())
		}

		subtotal := in.UnitPrice.Mul(in.Quantity.Decimal())
		record.Items = append(record.Items, Item{
			ProductID:            in.ProductID,
			ProductName:          in.ProductName,
			Quantity:             in.Quantity,
			UnitPrice:            in.UnitPrice,
			Subtotal:             subtotal,
			RequiresPrescription: in.RequiresPrescription,
			LotID:                in.LotID,
		})
		record.TotalValue = record.TotalValue.Add(subtotal)
	}

	record.IntegrityDigest = ComputeDigest(record)
	return record, nil
}

// VerifyIntegrity recomputes the digest and compares it with the stored one.
func (r SaleRecord) VerifyIntegrity() bool {
	return r.IntegrityDigest != "" && r.IntegrityDigest == ComputeDigest(r)
}
