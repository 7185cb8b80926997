package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"botica/internal/core/id"
	"botica/internal/core/types"
	"botica/internal/domain/ledger"
)

const stockMovementsTable = "stock_movements"

var movementColumns = []string{
	"id", "product_id", "kind", "quantity", "reason",
	"related_sale_id", "actor_id", "created_at",
}

// Compile-time check that MovementRepo implements ledger.Repository.
var _ ledger.Repository = (*MovementRepo)(nil)

// MovementRepo implements ledger.Repository on PostgreSQL.
// The table is append-only: the repo exposes no update or delete.
type MovementRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewMovementRepo creates a new stock movement repository.
func NewMovementRepo(txManager *TxManager) *MovementRepo {
	return &MovementRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateMovement appends a single movement.
func (r *MovementRepo) CreateMovement(ctx context.Context, m ledger.StockMovement) error {
	q := r.builder.Insert(stockMovementsTable).
		Columns(movementColumns...).
		Values(
			m.ID, m.ProductID, m.Kind, m.Quantity.Int64(), m.Reason,
			m.RelatedSaleID, m.ActorID, m.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}

	return nil
}

// CreateMovements batch appends movements.
func (r *MovementRepo) CreateMovements(ctx context.Context, movements []ledger.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	// Fast path: COPY when inside a transaction.
	if r.txManager.GetTx(ctx) != nil {
		inserter := NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, []any{
				m.ID, m.ProductID, m.Kind, m.Quantity.Int64(), m.Reason,
				m.RelatedSaleID, m.ActorID, m.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, stockMovementsTable, movementColumns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(stockMovementsTable).Columns(movementColumns...)
	for _, m := range movements {
		q = q.Values(
			m.ID, m.ProductID, m.Kind, m.Quantity.Int64(), m.Reason,
			m.RelatedSaleID, m.ActorID, m.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}

	return nil
}

// GetByProduct returns movement history for a product, newest first.
func (r *MovementRepo) GetByProduct(ctx context.Context, productID id.ID, filter ledger.MovementFilter) ([]ledger.StockMovement, error) {
	q := r.buildHistoryQuery(productID, filter)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []ledger.StockMovement
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}

	return movements, nil
}

func (r *MovementRepo) buildHistoryQuery(productID id.ID, filter ledger.MovementFilter) squirrel.SelectBuilder {
	q := r.builder.Select(movementColumns...).
		From(stockMovementsTable).
		Where(squirrel.Eq{"product_id": productID})

	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": *filter.Kind})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}

	q = q.OrderBy("created_at DESC", "id DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	return q
}

// SumSignedQuantities replays the ledger for a product.
func (r *MovementRepo) SumSignedQuantities(ctx context.Context, productID id.ID) (types.Quantity, error) {
	sql := fmt.Sprintf(`
		SELECT COALESCE(SUM(%s), 0)
		FROM stock_movements
		WHERE product_id = $1
	`, signedQuantityExpr())

	var total int64
	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, productID).Scan(&total)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("replay movements: %w", err)
	}

	return types.Quantity(total), nil
}

// signedQuantityExpr builds the CASE expression applying each kind's sign.
// Generated from ledger.MovementKind.Direction so the kind-to-sign mapping
// lives in exactly one place.
func signedQuantityExpr() string {
	var b strings.Builder
	b.WriteString("CASE kind")
	for _, k := range ledger.Kinds() {
		dir, err := k.Direction()
		if err != nil {
			continue
		}
		if dir == ledger.DirectionIn {
			fmt.Fprintf(&b, " WHEN '%s' THEN quantity", k)
		} else {
			fmt.Fprintf(&b, " WHEN '%s' THEN -quantity", k)
		}
	}
	b.WriteString(" ELSE 0 END")
	return b.String()
}
