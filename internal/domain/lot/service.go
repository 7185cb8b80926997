package lot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"botica/internal/core/apperror"
	"botica/internal/core/id"
	"botica/internal/core/tx"
	"botica/internal/core/types"
	"botica/pkg/logger"
)

// Service provides lot catalog operations.
type Service struct {
	lots      Repository
	txManager tx.Manager
	now       func() time.Time
}

// NewService creates a new lot service.
func NewService(lots Repository, txManager tx.Manager) *Service {
	return &Service{
		lots:      lots,
		txManager: txManager,
		now:       time.Now,
	}
}

// ReceiveInput describes a received batch from purchasing.
type ReceiveInput struct {
	ProductID       id.ID
	LotNumber       string
	ManufactureDate time.Time
	ExpiryDate      time.Time
	Quantity        types.Quantity
	UnitCost        types.Money
}

// Receive creates or merges a lot by its (product, lot number) natural key.
// An existing active lot gains the received quantity and takes the new unit
// cost; otherwise a new lot is inserted. The caller is expected to pair this
// with the corresponding entry movement; running inside the caller's
// transaction keeps the two consistent.
func (s *Service) Receive(ctx context.Context, in ReceiveInput) (Lot, error) {
	if id.IsNil(in.ProductID) {
		return Lot{}, apperror.NewValidation("product is required")
	}
	if strings.TrimSpace(in.LotNumber) == "" {
		return Lot{}, apperror.NewValidation("lot number is required")
	}
	if !in.Quantity.IsPositive() {
		return Lot{}, apperror.NewValidation("quantity must be positive")
	}
	if !in.ExpiryDate.After(in.ManufactureDate) {
		return Lot{}, apperror.NewValidation("expiry date must be after manufacture date")
	}

	var result Lot
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.lots.FindActiveByNumberForUpdate(ctx, in.ProductID, in.LotNumber)
		if err != nil {
			return fmt.Errorf("find lot: %w", err)
		}

		if existing != nil {
			if err := s.lots.AddQuantity(ctx, existing.ID, in.Quantity, in.UnitCost); err != nil {
				return fmt.Errorf("merge lot: %w", err)
			}
			result = *existing
			result.CurrentQuantity += in.Quantity
			result.InitialQuantity += in.Quantity
			result.UnitCost = in.UnitCost
			return nil
		}

		now := s.now().UTC()
		result = Lot{
			ID:              id.New(),
			ProductID:       in.ProductID,
			LotNumber:       in.LotNumber,
			ManufactureDate: in.ManufactureDate,
			ExpiryDate:      in.ExpiryDate,
			InitialQuantity: in.Quantity,
			CurrentQuantity: in.Quantity,
			UnitCost:        in.UnitCost,
			Active:          true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.lots.Create(ctx, result); err != nil {
			return fmt.Errorf("create lot: %w", err)
		}
		return nil
	})
	if err != nil {
		return Lot{}, err
	}

	logger.Info(ctx, "lot received",
		"lot_id", result.ID,
		"product_id", in.ProductID,
		"lot_number", in.LotNumber,
		"quantity", in.Quantity,
	)

	return result, nil
}

// EligibleLots returns the lots a FEFO allocation would draw from, in order.
func (s *Service) EligibleLots(ctx context.Context, productID id.ID) ([]Lot, error) {
	return s.lots.GetEligibleByProduct(ctx, productID, s.now().UTC())
}

// PlanAllocation builds a FEFO plan without mutating lot state.
func (s *Service) PlanAllocation(ctx context.Context, productID id.ID, desired types.Quantity) (Plan, error) {
	lots, err := s.lots.GetEligibleByProduct(ctx, productID, s.now().UTC())
	if err != nil {
		return Plan{}, fmt.Errorf("load lots: %w", err)
	}
	return Allocate(productID, lots, desired, s.now().UTC())
}

// AllocateAndConsume plans a FEFO allocation over row-locked lots and
// consumes it. Must run inside a transaction; an incomplete plan aborts
// without consuming anything.
func (s *Service) AllocateAndConsume(ctx context.Context, productID id.ID, desired types.Quantity) (Plan, error) {
	now := s.now().UTC()

	lots, err := s.lots.GetEligibleByProductForUpdate(ctx, productID, now)
	if err != nil {
		return Plan{}, fmt.Errorf("lock lots: %w", err)
	}

	plan, err := Allocate(productID, lots, desired, now)
	if err != nil {
		return Plan{}, err
	}

	if !plan.Complete() {
		return Plan{}, apperror.NewInsufficientStock(
			productID.String(),
			desired.Int64(),
			plan.Allocated.Int64(),
		).WithDetail("scope", "lots")
	}

	for _, a := range plan.Allocations {
		if err := s.lots.ConsumeQuantity(ctx, a.LotID, a.Quantity); err != nil {
			return Plan{}, fmt.Errorf("consume lot %s: %w", a.LotID, err)
		}
	}

	return plan, nil
}

// ConsumeExplicit consumes a caller-chosen lot (lot-mandatory sale flows).
// The lot must belong to the product being sold; otherwise the ledger would
// decrement one product while another product's lot is drained.
func (s *Service) ConsumeExplicit(ctx context.Context, productID, lotID id.ID, quantity types.Quantity) error {
	if !quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive")
	}

	l, err := s.lots.GetByID(ctx, lotID)
	if err != nil {
		return err
	}
	if l.ProductID != productID {
		return apperror.NewValidation("lot does not belong to product").
			WithDetail("lot_id", lotID.String()).
			WithDetail("product_id", productID.String())
	}
	if !l.Eligible(s.now().UTC()) {
		return apperror.NewBusinessRule(apperror.CodeNoLotsAvailable, "lot is not eligible for sale").
			WithDetail("lot_id", lotID.String())
	}
	if l.Available() < quantity {
		return apperror.NewInsufficientStock(l.ProductID.String(), quantity.Int64(), l.Available().Int64()).
			WithDetail("lot_id", lotID.String())
	}

	return s.lots.ConsumeQuantity(ctx, lotID, quantity)
}
