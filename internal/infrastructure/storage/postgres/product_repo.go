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
	"botica/internal/core/types"
	"botica/internal/domain/product"
)

const productsTable = "products"

var productColumns = []string{
	"id", "name", "current_stock", "minimum_stock", "maximum_stock",
	"lot_mandatory", "active", "created_at", "updated_at",
}

// Compile-time check that ProductRepo implements product.Repository.
var _ product.Repository = (*ProductRepo)(nil)

// ProductRepo implements product.Repository on PostgreSQL.
type ProductRepo struct {
	txManager *TxManager
	builder   squirrel.StatementBuilderType
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *TxManager) *ProductRepo {
	return &ProductRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByID returns a product or apperror NotFound.
func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (product.Product, error) {
	return r.getOne(ctx, productID, false)
}

// GetForUpdate returns the product with a row lock.
func (r *ProductRepo) GetForUpdate(ctx context.Context, productID id.ID) (product.Product, error) {
	return r.getOne(ctx, productID, true)
}

func (r *ProductRepo) getOne(ctx context.Context, productID id.ID, forUpdate bool) (product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"id": productID})

	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return product.Product{}, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return product.Product{}, apperror.NewNotFound("product", productID)
		}
		return product.Product{}, fmt.Errorf("select product: %w", err)
	}

	return p, nil
}

// UpdateStock sets the new on-hand quantity.
func (r *ProductRepo) UpdateStock(ctx context.Context, productID id.ID, newStock types.Quantity) error {
	q := r.builder.Update(productsTable).
		Set("current_stock", newStock.Int64()).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID)
	}

	return nil
}

// ListBelowMinimum returns active products below their minimum stock.
func (r *ProductRepo) ListBelowMinimum(ctx context.Context) ([]product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"active": true}).
		Where(squirrel.Expr("current_stock < minimum_stock")).
		OrderBy("name")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var products []product.Product
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &products, sql, args...); err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}

	return products, nil
}

// Create inserts a product.
func (r *ProductRepo) Create(ctx context.Context, p product.Product) error {
	var maxStock *int64
	if p.MaximumStock != nil {
		v := p.MaximumStock.Int64()
		maxStock = &v
	}

	q := r.builder.Insert(productsTable).
		Columns(productColumns...).
		Values(
			p.ID, p.Name, p.CurrentStock.Int64(), p.MinimumStock.Int64(), maxStock,
			p.LotMandatory, p.Active, p.CreatedAt, p.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate("product", "id", p.ID.String())
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}
