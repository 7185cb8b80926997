package dto

import (
	"time"

	"botica/internal/core/types"
	"botica/internal/domain/lot"
)

// ReceiveLotRequest is the body of POST /v1/lots.
type ReceiveLotRequest struct {
	ProductID       string      `json:"productId" binding:"required"`
	LotNumber       string      `json:"lotNumber" binding:"required"`
	ManufactureDate time.Time   `json:"manufactureDate" binding:"required"`
	ExpiryDate      time.Time   `json:"expiryDate" binding:"required"`
	Quantity        int64       `json:"quantity" binding:"required"`
	UnitCost        types.Money `json:"unitCost"`
}

// LotResponse is the API view of a lot.
type LotResponse struct {
	ID               string      `json:"id"`
	ProductID        string      `json:"productId"`
	LotNumber        string      `json:"lotNumber"`
	ManufactureDate  time.Time   `json:"manufactureDate"`
	ExpiryDate       time.Time   `json:"expiryDate"`
	InitialQuantity  int64       `json:"initialQuantity"`
	CurrentQuantity  int64       `json:"currentQuantity"`
	ReservedQuantity int64       `json:"reservedQuantity"`
	Available        int64       `json:"available"`
	UnitCost         types.Money `json:"unitCost"`
	Active           bool        `json:"active"`
}

// FromLot converts a domain lot.
func FromLot(l lot.Lot) LotResponse {
	return LotResponse{
		ID:               l.ID.String(),
		ProductID:        l.ProductID.String(),
		LotNumber:        l.LotNumber,
		ManufactureDate:  l.ManufactureDate,
		ExpiryDate:       l.ExpiryDate,
		InitialQuantity:  l.InitialQuantity.Int64(),
		CurrentQuantity:  l.CurrentQuantity.Int64(),
		ReservedQuantity: l.ReservedQuantity.Int64(),
		Available:        l.Available().Int64(),
		UnitCost:         l.UnitCost,
		Active:           l.Active,
	}
}

// LotListResponse wraps the eligible lots of a product, FEFO-ordered.
type LotListResponse struct {
	Items []LotResponse `json:"items"`
}

// AllocateRequest is the body of POST /v1/lots/allocate.
type AllocateRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required"`
}

// AllocationResponse is one slice of a plan.
type AllocationResponse struct {
	LotID     string `json:"lotId"`
	LotNumber string `json:"lotNumber"`
	Quantity  int64  `json:"quantity"`
}

// PlanResponse is an advisory FEFO plan.
type PlanResponse struct {
	ProductID   string               `json:"productId"`
	Allocations []AllocationResponse `json:"allocations"`
	Allocated   int64                `json:"allocated"`
	Shortfall   int64                `json:"shortfall"`
	Complete    bool                 `json:"complete"`
}

// FromPlan converts a domain plan.
func FromPlan(p lot.Plan) PlanResponse {
	resp := PlanResponse{
		ProductID:   p.ProductID.String(),
		Allocations: make([]AllocationResponse, 0, len(p.Allocations)),
		Allocated:   p.Allocated.Int64(),
		Shortfall:   p.Shortfall.Int64(),
		Complete:    p.Complete(),
	}
	for _, a := range p.Allocations {
		resp.Allocations = append(resp.Allocations, AllocationResponse{
			LotID:     a.LotID.String(),
			LotNumber: a.LotNumber,
			Quantity:  a.Quantity.Int64(),
		})
	}
	return resp
}
