package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"botica/internal/core/apperror"
	"botica/internal/core/id"
	"botica/internal/domain/sale"
)

const (
	salesTable     = "sales"
	saleItemsTable = "sale_items"
)

var (
	saleColumns = []string{
		"id", "client_id", "actor_id", "total_value", "client_timestamp", "created_at",
	}
	saleItemColumns = []string{
		"id", "sale_id", "product_id", "product_name", "quantity",
		"unit_price", "subtotal", "requires_prescription", "lot_id",
	}
)

// Compile-time check that SaleRepo implements sale.Repository.
var _ sale.Repository = (*SaleRepo)(nil)

// SaleRepo implements sale.Repository on PostgreSQL.
type SaleRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txManager *TxManager) *SaleRepo {
	return &SaleRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// ExistsByID is the idempotency probe for offline reconciliation.
func (r *SaleRepo) ExistsByID(ctx context.Context, saleID id.ID) (bool, error) {
	var exists bool
	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM sales WHERE id = $1)", saleID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check sale exists: %w", err)
	}

	return exists, nil
}

// Create inserts a sale with its line items.
// The sale id carries a unique constraint, so a concurrent resubmission of
// the same offline record surfaces as apperror Duplicate.
func (r *SaleRepo) Create(ctx context.Context, s sale.Sale, items []sale.Item) error {
	q := r.builder.Insert(salesTable).
		Columns(saleColumns...).
		Values(s.ID, s.ClientID, s.ActorID, s.TotalValue, s.ClientTimestamp, s.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("sale", "id", s.ID.String())
		}
		return fmt.Errorf("insert sale: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	if r.txManager.GetTx(ctx) != nil {
		inserter := NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(items))
		for _, it := range items {
			rows = append(rows, []any{
				it.ID, it.SaleID, it.ProductID, it.ProductName, it.Quantity.Int64(),
				it.UnitPrice, it.Subtotal, it.RequiresPrescription, it.LotID,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, saleItemsTable, saleItemColumns, rows); err != nil {
			return fmt.Errorf("copy sale items: %w", err)
		}
		return nil
	}

	iq := r.builder.Insert(saleItemsTable).Columns(saleItemColumns...)
	for _, it := range items {
		iq = iq.Values(
			it.ID, it.SaleID, it.ProductID, it.ProductName, it.Quantity.Int64(),
			it.UnitPrice, it.Subtotal, it.RequiresPrescription, it.LotID,
		)
	}

	sql, args, err = iq.ToSql()
	if err != nil {
		return fmt.Errorf("build items insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale items: %w", err)
	}

	return nil
}

// GetByID returns a sale with its items or apperror NotFound.
func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (sale.Sale, []sale.Item, error) {
	q := r.builder.Select(saleColumns...).
		From(salesTable).
		Where(squirrel.Eq{"id": saleID})

	sql, args, err := q.ToSql()
	if err != nil {
		return sale.Sale{}, nil, fmt.Errorf("build query: %w", err)
	}

	var s sale.Sale
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sale.Sale{}, nil, apperror.NewNotFound("sale", saleID)
		}
		return sale.Sale{}, nil, fmt.Errorf("select sale: %w", err)
	}

	iq := r.builder.Select(saleItemColumns...).
		From(saleItemsTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("id")

	sql, args, err = iq.ToSql()
	if err != nil {
		return sale.Sale{}, nil, fmt.Errorf("build items query: %w", err)
	}

	var items []sale.Item
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return sale.Sale{}, nil, fmt.Errorf("select sale items: %w", err)
	}

	return s, items, nil
}
