package ledger

import (
	"context"
	"fmt"

	"botica/internal/core/apperror"
	"botica/internal/core/id"
	"botica/internal/core/tx"
	"botica/internal/core/types"
	"botica/internal/domain/product"
	"botica/pkg/logger"
)

// Service applies movements to the ledger.
// It is the only writer of Product.CurrentStock: the stock update and the
// movement append happen in one transaction, so no intermediate state is
// observable by a concurrent reader.
type Service struct {
	movements Repository
	products  product.Repository
	txManager tx.Manager
}

// NewService creates a new ledger service.
func NewService(movements Repository, products product.Repository, txManager tx.Manager) *Service {
	return &Service{
		movements: movements,
		products:  products,
		txManager: txManager,
	}
}

// ApplyMovement validates and atomically applies a movement.
//
// For outbound kinds (exit, loss, expiration) the sufficiency check runs
// against the row-locked product inside the transaction, so two concurrent
// callers cannot both observe pre-decrement stock and both succeed.
func (s *Service) ApplyMovement(ctx context.Context, in MovementInput) (StockMovement, error) {
	if errs := ValidateMovement(in); len(errs) > 0 {
		return StockMovement{}, apperror.NewValidation("invalid movement").
			WithDetail("violations", errs)
	}

	dir, err := in.Kind.Direction()
	if err != nil {
		return StockMovement{}, apperror.NewValidation(err.Error())
	}

	var created StockMovement
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.products.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}

		if dir == DirectionOut && p.CurrentStock < in.Quantity {
			return apperror.NewInsufficientStock(
				p.ID.String(),
				in.Quantity.Int64(),
				p.CurrentStock.Int64(),
			)
		}

		newStock := p.CurrentStock + types.Quantity(dir)*in.Quantity
		if err := s.products.UpdateStock(ctx, p.ID, newStock); err != nil {
			return fmt.Errorf("update stock: %w", err)
		}

		m := NewStockMovement(in.ProductID, in.Kind, in.Quantity, in.Reason, in.ActorID, in.RelatedSaleID)
		if err := s.movements.CreateMovement(ctx, m); err != nil {
			return fmt.Errorf("append movement: %w", err)
		}

		created = m
		return nil
	})
	if err != nil {
		return StockMovement{}, err
	}

	logger.Info(ctx, "stock movement applied",
		"movement_id", created.ID,
		"product_id", created.ProductID,
		"kind", created.Kind,
		"quantity", created.Quantity,
	)

	return created, nil
}

// ApplyMovements validates and atomically applies a group of movements,
// appending them with a single batch insert. One sale produces an exit
// movement per line; any failing input aborts the whole group.
func (s *Service) ApplyMovements(ctx context.Context, inputs []MovementInput) ([]StockMovement, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	for _, in := range inputs {
		if errs := ValidateMovement(in); len(errs) > 0 {
			return nil, apperror.NewValidation("invalid movement").
				WithDetail("violations", errs)
		}
	}

	var created []StockMovement
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		created = created[:0]

		for _, in := range inputs {
			dir, err := in.Kind.Direction()
			if err != nil {
				return apperror.NewValidation(err.Error())
			}

			p, err := s.products.GetForUpdate(ctx, in.ProductID)
			if err != nil {
				return err
			}

			if dir == DirectionOut && p.CurrentStock < in.Quantity {
				return apperror.NewInsufficientStock(
					p.ID.String(),
					in.Quantity.Int64(),
					p.CurrentStock.Int64(),
				)
			}

			newStock := p.CurrentStock + types.Quantity(dir)*in.Quantity
			if err := s.products.UpdateStock(ctx, p.ID, newStock); err != nil {
				return fmt.Errorf("update stock: %w", err)
			}

			created = append(created, NewStockMovement(in.ProductID, in.Kind, in.Quantity, in.Reason, in.ActorID, in.RelatedSaleID))
		}

		if err := s.movements.CreateMovements(ctx, created); err != nil {
			return fmt.Errorf("append movements: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock movements applied", "count", len(created))
	return created, nil
}

// MovementHistory returns the movement history for a product.
func (s *Service) MovementHistory(ctx context.Context, productID id.ID, filter MovementFilter) ([]StockMovement, error) {
	return s.movements.GetByProduct(ctx, productID, filter)
}

// BalanceCheck compares the catalog's current stock with the value obtained
// by replaying the ledger.
type BalanceCheck struct {
	ProductID    id.ID          `json:"productId"`
	CurrentStock types.Quantity `json:"currentStock"`
	LedgerStock  types.Quantity `json:"ledgerStock"`
	Consistent   bool           `json:"consistent"`
}

// CheckBalance replays the ledger for a product and reports whether the
// result matches the catalog quantity.
func (s *Service) CheckBalance(ctx context.Context, productID id.ID) (BalanceCheck, error) {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return BalanceCheck{}, err
	}

	replayed, err := s.movements.SumSignedQuantities(ctx, productID)
	if err != nil {
		return BalanceCheck{}, fmt.Errorf("replay ledger: %w", err)
	}

	check := BalanceCheck{
		ProductID:    productID,
		CurrentStock: p.CurrentStock,
		LedgerStock:  replayed,
		Consistent:   p.CurrentStock == replayed,
	}

	if !check.Consistent {
		logger.Warn(ctx, "ledger balance mismatch",
			"product_id", productID,
			"current_stock", p.CurrentStock,
			"ledger_stock", replayed,
		)
	}

	return check, nil
}

// LowStockProducts returns active products below their minimum stock.
func (s *Service) LowStockProducts(ctx context.Context) ([]product.Product, error) {
	return s.products.ListBelowMinimum(ctx)
}
