package sale

import (
	"context"
	"fmt"
	"time"

	"botica/internal/core/apperror"
	"botica/internal/core/id"
	"botica/internal/core/tx"
	"botica/internal/core/types"
	"botica/internal/domain/ledger"
	"botica/internal/domain/lot"
	"botica/internal/domain/product"
	"botica/pkg/logger"
)

// Service persists sales and applies their stock effects.
type Service struct {
	sales     Repository
	products  product.Repository
	ledger    *ledger.Service
	lots      *lot.Service
	txManager tx.Manager
}

// NewService creates a new sale service.
func NewService(sales Repository, products product.Repository, ledgerSvc *ledger.Service, lots *lot.Service, txManager tx.Manager) *Service {
	return &Service{
		sales:     sales,
		products:  products,
		ledger:    ledgerSvc,
		lots:      lots,
		txManager: txManager,
	}
}

// ItemInput is one requested sale line.
type ItemInput struct {
	ProductID            id.ID
	ProductName          string
	Quantity             types.Quantity
	UnitPrice            types.Money
	RequiresPrescription bool
	LotID                *id.ID
}

// RegisterInput describes a synchronous (connected) POS sale.
type RegisterInput struct {
	Items    []ItemInput
	ActorID  string
	ClientID *id.ID
}

// Register handles the connected POS path: it builds the sale and applies it
// in one transaction. Insufficient stock rejects the whole sale.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Sale, []Item, error) {
	if len(in.Items) == 0 {
		return Sale{}, nil, apperror.NewValidation("sale must have at least one item")
	}
	if in.ActorID == "" {
		return Sale{}, nil, apperror.NewValidation("actor is required")
	}

	sl := Sale{
		ID:         id.New(),
		ClientID:   in.ClientID,
		ActorID:    in.ActorID,
		TotalValue: types.ZeroMoney(),
		CreatedAt:  time.Now().UTC(),
	}

	items := make([]Item, 0, len(in.Items))
	for _, it := range in.Items {
		if !it.Quantity.IsPositive() {
			return Sale{}, nil, apperror.NewValidation("item quantity must be positive").
				WithDetail("product_id", it.ProductID.String())
		}
		subtotal := it.UnitPrice.Mul(it.Quantity.Decimal())
		items = append(items, Item{
			ID:                   id.New(),
			SaleID:               sl.ID,
			ProductID:            it.ProductID,
			ProductName:          it.ProductName,
			Quantity:             it.Quantity,
			UnitPrice:            it.UnitPrice,
			Subtotal:             subtotal,
			RequiresPrescription: it.RequiresPrescription,
			LotID:                it.LotID,
		})
		sl.TotalValue = sl.TotalValue.Add(subtotal)
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.Apply(ctx, sl, items, "counter sale")
	})
	if err != nil {
		return Sale{}, nil, err
	}

	logger.Info(ctx, "sale registered",
		"sale_id", sl.ID,
		"items", len(items),
		"total", sl.TotalValue,
	)

	return sl, items, nil
}

// Apply persists the sale and records its stock effects. Must run inside a
// transaction: the sale, its items, every exit movement, the product stock
// updates and the lot consumption commit together or not at all.
//
// Lot handling per line: lot-mandatory products must carry an explicit lot
// choice; other products get an automatic FEFO allocation. A product without
// any tracked lots is sold on the ledger quantity alone.
func (s *Service) Apply(ctx context.Context, sl Sale, items []Item, reason string) error {
	if err := s.sales.Create(ctx, sl, items); err != nil {
		return err
	}

	inputs := make([]ledger.MovementInput, 0, len(items))
	for _, it := range items {
		p, err := s.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return err
		}

		if err := s.consumeLots(ctx, p, it); err != nil {
			return err
		}

		inputs = append(inputs, ledger.MovementInput{
			ProductID:     it.ProductID,
			Kind:          ledger.KindExit,
			Quantity:      it.Quantity,
			Reason:        reason,
			ActorID:       sl.ActorID,
			RelatedSaleID: &sl.ID,
		})
	}

	if _, err := s.ledger.ApplyMovements(ctx, inputs); err != nil {
		return err
	}

	return nil
}

func (s *Service) consumeLots(ctx context.Context, p product.Product, it Item) error {
	if p.LotMandatory {
		if it.LotID == nil {
			return apperror.NewValidation("lot is required for this product").
				WithDetail("product_id", p.ID.String())
		}
		return s.lots.ConsumeExplicit(ctx, p.ID, *it.LotID, it.Quantity)
	}

	_, err := s.lots.AllocateAndConsume(ctx, p.ID, it.Quantity)
	if apperror.IsNoLotsAvailable(err) {
		// Product is not lot-tracked; the ledger quantity is authoritative.
		return nil
	}
	return err
}

// GetByID returns a persisted sale with items.
func (s *Service) GetByID(ctx context.Context, saleID id.ID) (Sale, []Item, error) {
	sl, items, err := s.sales.GetByID(ctx, saleID)
	if err != nil {
		return Sale{}, nil, fmt.Errorf("get sale: %w", err)
	}
	return sl, items, nil
}
