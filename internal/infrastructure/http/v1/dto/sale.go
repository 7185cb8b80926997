package dto

import (
	"time"

	"botica/internal/core/types"
	"botica/internal/domain/sale"
)

// SaleItemRequest is one requested line of a POS sale.
type SaleItemRequest struct {
	ProductID            string      `json:"productId" binding:"required"`
	ProductName          string      `json:"productName" binding:"required"`
	Quantity             int64       `json:"quantity" binding:"required"`
	UnitPrice            types.Money `json:"unitPrice" binding:"required"`
	RequiresPrescription bool        `json:"requiresPrescription"`
	LotID                string      `json:"lotId,omitempty"`
}

// RegisterSaleRequest is the body of POST /v1/sales (connected POS path).
type RegisterSaleRequest struct {
	Items    []SaleItemRequest `json:"items" binding:"required"`
	ClientID string            `json:"clientId,omitempty"`
}

// SaleItemResponse is one persisted sale line.
type SaleItemResponse struct {
	ID                   string      `json:"id"`
	ProductID            string      `json:"productId"`
	ProductName          string      `json:"productName"`
	Quantity             int64       `json:"quantity"`
	UnitPrice            types.Money `json:"unitPrice"`
	Subtotal             types.Money `json:"subtotal"`
	RequiresPrescription bool        `json:"requiresPrescription"`
	LotID                string      `json:"lotId,omitempty"`
}

// SaleResponse is a persisted sale with its items.
type SaleResponse struct {
	ID              string             `json:"id"`
	ClientID        string             `json:"clientId,omitempty"`
	ActorID         string             `json:"actorId"`
	TotalValue      types.Money        `json:"totalValue"`
	ClientTimestamp *time.Time         `json:"clientTimestamp,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	Items           []SaleItemResponse `json:"items"`
}

// FromSale converts a domain sale with items.
func FromSale(s sale.Sale, items []sale.Item) SaleResponse {
	resp := SaleResponse{
		ID:              s.ID.String(),
		ActorID:         s.ActorID,
		TotalValue:      s.TotalValue,
		ClientTimestamp: s.ClientTimestamp,
		CreatedAt:       s.CreatedAt,
		Items:           make([]SaleItemResponse, 0, len(items)),
	}
	if s.ClientID != nil {
		resp.ClientID = s.ClientID.String()
	}
	for _, it := range items {
		item := SaleItemResponse{
			ID:                   it.ID.String(),
			ProductID:            it.ProductID.String(),
			ProductName:          it.ProductName,
			Quantity:             it.Quantity.Int64(),
			UnitPrice:            it.UnitPrice,
			Subtotal:             it.Subtotal,
			RequiresPrescription: it.RequiresPrescription,
		}
		if it.LotID != nil {
			item.LotID = it.LotID.String()
		}
		resp.Items = append(resp.Items, item)
	}
	return resp
}
