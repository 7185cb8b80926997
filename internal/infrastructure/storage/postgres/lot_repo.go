package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"botica/internal/core/apperror"
	"botica/internal/core/id"
	"botica/internal/core/types"
	"botica/internal/domain/lot"
)

const lotsTable = "lots"

var lotColumns = []string{
	"id", "product_id", "lot_number", "manufacture_date", "expiry_date",
	"initial_quantity", "current_quantity", "reserved_quantity",
	"unit_cost", "active", "created_at", "updated_at",
}

// Compile-time check that LotRepo implements lot.Repository.
var _ lot.Repository = (*LotRepo)(nil)

// LotRepo implements lot.Repository on PostgreSQL.
type LotRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewLotRepo creates a new lot repository.
func NewLotRepo(txManager *TxManager) *LotRepo {
	return &LotRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByID returns a lot or apperror NotFound.
func (r *LotRepo) GetByID(ctx context.Context, lotID id.ID) (lot.Lot, error) {
	q := r.builder.Select(lotColumns...).
		From(lotsTable).
		Where(squirrel.Eq{"id": lotID})

	sql, args, err := q.ToSql()
	if err != nil {
		return lot.Lot{}, fmt.Errorf("build query: %w", err)
	}

	var l lot.Lot
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &l, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return lot.Lot{}, apperror.NewNotFound("lot", lotID)
		}
		return lot.Lot{}, fmt.Errorf("select lot: %w", err)
	}

	return l, nil
}

// GetEligibleByProduct returns allocatable lots in FEFO order.
func (r *LotRepo) GetEligibleByProduct(ctx context.Context, productID id.ID, now time.Time) ([]lot.Lot, error) {
	return r.eligible(ctx, productID, now, false)
}

// GetEligibleByProductForUpdate returns allocatable lots in FEFO order with row locks.
func (r *LotRepo) GetEligibleByProductForUpdate(ctx context.Context, productID id.ID, now time.Time) ([]lot.Lot, error) {
	return r.eligible(ctx, productID, now, true)
}

func (r *LotRepo) eligible(ctx context.Context, productID id.ID, now time.Time, forUpdate bool) ([]lot.Lot, error) {
	q := r.builder.Select(lotColumns...).
		From(lotsTable).
		Where(squirrel.Eq{"product_id": productID, "active": true}).
		Where(squirrel.Expr("current_quantity - reserved_quantity > 0")).
		Where(squirrel.Gt{"expiry_date": now}).
		OrderBy("expiry_date", "manufacture_date")

	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lots []lot.Lot
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lots, sql, args...); err != nil {
		return nil, fmt.Errorf("select lots: %w", err)
	}

	return lots, nil
}

// FindActiveByNumberForUpdate locates an active lot by natural key with a row lock.
func (r *LotRepo) FindActiveByNumberForUpdate(ctx context.Context, productID id.ID, lotNumber string) (*lot.Lot, error) {
	q := r.builder.Select(lotColumns...).
		From(lotsTable).
		Where(squirrel.Eq{"product_id": productID, "lot_number": lotNumber, "active": true}).
		Suffix("FOR UPDATE")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var l lot.Lot
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &l, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select lot: %w", err)
	}

	return &l, nil
}

// Create inserts a new lot.
func (r *LotRepo) Create(ctx context.Context, l lot.Lot) error {
	q := r.builder.Insert(lotsTable).
		Columns(lotColumns...).
		Values(
			l.ID, l.ProductID, l.LotNumber, l.ManufactureDate, l.ExpiryDate,
			l.InitialQuantity.Int64(), l.CurrentQuantity.Int64(), l.ReservedQuantity.Int64(),
			l.UnitCost, l.Active, l.CreatedAt, l.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("lot", "lot_number", l.LotNumber)
		}
		return fmt.Errorf("insert lot: %w", err)
	}

	return nil
}

// AddQuantity merges a received quantity into an existing lot.
func (r *LotRepo) AddQuantity(ctx context.Context, lotID id.ID, quantity types.Quantity, unitCost types.Money) error {
	q := r.builder.Update(lotsTable).
		Set("current_quantity", squirrel.Expr("current_quantity + ?", quantity.Int64())).
		Set("initial_quantity", squirrel.Expr("initial_quantity + ?", quantity.Int64())).
		Set("unit_cost", unitCost).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": lotID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("merge lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("lot", lotID)
	}

	return nil
}

// ConsumeQuantity decrements available quantity. The guard in the WHERE
// clause keeps current_quantity >= reserved_quantity even under concurrent
// writers; zero rows affected means the lot no longer has the units.
func (r *LotRepo) ConsumeQuantity(ctx context.Context, lotID id.ID, quantity types.Quantity) error {
	q := r.builder.Update(lotsTable).
		Set("current_quantity", squirrel.Expr("current_quantity - ?", quantity.Int64())).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": lotID}).
		Where(squirrel.Expr("current_quantity - reserved_quantity >= ?", quantity.Int64()))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("consume lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewBusinessRule(apperror.CodeInsufficientStock, "lot has insufficient available quantity").
			WithDetail("lot_id", lotID.String()).
			WithDetail("requested", quantity.Int64())
	}

	return nil
}
