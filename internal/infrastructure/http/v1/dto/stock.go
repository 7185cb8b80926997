// Package dto defines HTTP request/response shapes for API v1.
package dto

import (
	"time"

	"botica/internal/core/types"
	"botica/internal/domain/ledger"
	"botica/internal/domain/product"
)

// ApplyMovementRequest is the body of POST /v1/stock/movements.
// The actor comes from the X-Actor-Id header, not the body.
type ApplyMovementRequest struct {
	ProductID     string `json:"productId" binding:"required"`
	Kind          string `json:"kind" binding:"required"`
	Quantity      int64  `json:"quantity" binding:"required"`
	Reason        string `json:"reason" binding:"required"`
	RelatedSaleID string `json:"relatedSaleId,omitempty"`
}

// MovementResponse is one ledger entry.
type MovementResponse struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"productId"`
	Kind          string    `json:"kind"`
	Quantity      int64     `json:"quantity"`
	Reason        string    `json:"reason"`
	RelatedSaleID string    `json:"relatedSaleId,omitempty"`
	ActorID       string    `json:"actorId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// FromMovement converts a domain movement.
func FromMovement(m ledger.StockMovement) MovementResponse {
	resp := MovementResponse{
		ID:        m.ID.String(),
		ProductID: m.ProductID.String(),
		Kind:      string(m.Kind),
		Quantity:  m.Quantity.Int64(),
		Reason:    m.Reason,
		ActorID:   m.ActorID,
		CreatedAt: m.CreatedAt,
	}
	if m.RelatedSaleID != nil {
		resp.RelatedSaleID = m.RelatedSaleID.String()
	}
	return resp
}

// MovementListResponse wraps a movement history page.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
}

// BalanceCheckResponse reports catalog stock versus replayed ledger stock.
type BalanceCheckResponse struct {
	ProductID    string `json:"productId"`
	CurrentStock int64  `json:"currentStock"`
	LedgerStock  int64  `json:"ledgerStock"`
	Consistent   bool   `json:"consistent"`
}

// FromBalanceCheck converts a domain balance check.
func FromBalanceCheck(c ledger.BalanceCheck) BalanceCheckResponse {
	return BalanceCheckResponse{
		ProductID:    c.ProductID.String(),
		CurrentStock: c.CurrentStock.Int64(),
		LedgerStock:  c.LedgerStock.Int64(),
		Consistent:   c.Consistent,
	}
}

// ProductResponse is the stock view of a product.
type ProductResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CurrentStock int64  `json:"currentStock"`
	MinimumStock int64  `json:"minimumStock"`
	MaximumStock *int64 `json:"maximumStock,omitempty"`
	LotMandatory bool   `json:"lotMandatory"`
}

// FromProduct converts a domain product.
func FromProduct(p product.Product) ProductResponse {
	resp := ProductResponse{
		ID:           p.ID.String(),
		Name:         p.Name,
		CurrentStock: p.CurrentStock.Int64(),
		MinimumStock: p.MinimumStock.Int64(),
		LotMandatory: p.LotMandatory,
	}
	if p.MaximumStock != nil {
		v := p.MaximumStock.Int64()
		resp.MaximumStock = &v
	}
	return resp
}

// LowStockResponse lists products below their minimum stock.
type LowStockResponse struct {
	Items []ProductResponse `json:"items"`
}

// Quantity converts a raw request quantity.
func Quantity(v int64) types.Quantity {
	return types.Quantity(v)
}
