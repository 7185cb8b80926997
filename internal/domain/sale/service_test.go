package sale

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botica/internal/core/apperror"
	"botica/internal/core/id"
	"botica/internal/core/types"
	"botica/internal/domain/ledger"
	"botica/internal/domain/lot"
	"botica/internal/domain/product"
)

type passthroughTxManager struct{}

func (passthroughTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeSaleRepo struct {
	sales map[id.ID][]Item
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{sales: make(map[id.ID][]Item)}
}

func (r *fakeSaleRepo) ExistsByID(_ context.Context, saleID id.ID) (bool, error) {
	_, ok := r.sales[saleID]
	return ok, nil
}

func (r *fakeSaleRepo) Create(_ context.Context, s Sale, items []Item) error {
	if _, ok := r.sales[s.ID]; ok {
		return apperror.NewDuplicate("sale", "id", s.ID.String())
	}
	r.sales[s.ID] = items
	return nil
}

func (r *fakeSaleRepo) GetByID(_ context.Context, saleID id.ID) (Sale, []Item, error) {
	items, ok := r.sales[saleID]
	if !ok {
		return Sale{}, nil, apperror.NewNotFound("sale", saleID.String())
	}
	return Sale{ID: saleID}, items, nil
}

type fakeProductRepo struct {
	products map[id.ID]product.Product
}

func (r *fakeProductRepo) GetByID(_ context.Context, productID id.ID) (product.Product, error) {
	p, ok := r.products[productID]
	if !ok {
		return product.Product{}, apperror.NewNotFound("product", productID.String())
	}
	return p, nil
}

func (r *fakeProductRepo) GetForUpdate(ctx context.Context, productID id.ID) (product.Product, error) {
	return r.GetByID(ctx, productID)
}

func (r *fakeProductRepo) UpdateStock(_ context.Context, productID id.ID, newStock types.Quantity) error {
	p := r.products[productID]
	p.CurrentStock = newStock
	r.products[productID] = p
	return nil
}

func (r *fakeProductRepo) ListBelowMinimum(_ context.Context) ([]product.Product, error) {
	return nil, nil
}

func (r *fakeProductRepo) Create(_ context.Context, p product.Product) error {
	r.products[p.ID] = p
	return nil
}

type fakeMovementRepo struct {
	movements []ledger.StockMovement
}

func (r *fakeMovementRepo) CreateMovement(_ context.Context, m ledger.StockMovement) error {
	r.movements = append(r.movements, m)
	return nil
}

func (r *fakeMovementRepo) CreateMovements(_ context.Context, ms []ledger.StockMovement) error {
	r.movements = append(r.movements, ms...)
	return nil
}

func (r *fakeMovementRepo) GetByProduct(_ context.Context, _ id.ID, _ ledger.MovementFilter) ([]ledger.StockMovement, error) {
	return nil, nil
}

func (r *fakeMovementRepo) SumSignedQuantities(_ context.Context, _ id.ID) (types.Quantity, error) {
	return 0, nil
}

type fakeLotRepo struct {
	lots map[id.ID]lot.Lot
}

func (r fakeLotRepo) GetByID(_ context.Context, lotID id.ID) (lot.Lot, error) {
	l, ok := r.lots[lotID]
	if !ok {
		return lot.Lot{}, apperror.NewNotFound("lot", lotID.String())
	}
	return l, nil
}

func (fakeLotRepo) GetEligibleByProduct(_ context.Context, _ id.ID, _ time.Time) ([]lot.Lot, error) {
	return nil, nil
}

func (fakeLotRepo) GetEligibleByProductForUpdate(_ context.Context, _ id.ID, _ time.Time) ([]lot.Lot, error) {
	return nil, nil
}

func (fakeLotRepo) FindActiveByNumberForUpdate(_ context.Context, _ id.ID, _ string) (*lot.Lot, error) {
	return nil, nil
}

func (fakeLotRepo) Create(_ context.Context, _ lot.Lot) error { return nil }

func (fakeLotRepo) AddQuantity(_ context.Context, _ id.ID, _ types.Quantity, _ types.Money) error {
	return nil
}

func (r fakeLotRepo) ConsumeQuantity(_ context.Context, lotID id.ID, quantity types.Quantity) error {
	l, ok := r.lots[lotID]
	if !ok {
		return apperror.NewNotFound("lot", lotID.String())
	}
	l.CurrentQuantity -= quantity
	r.lots[lotID] = l
	return nil
}

func newTestService(products ...product.Product) (*Service, *fakeSaleRepo, *fakeProductRepo) {
	txManager := passthroughTxManager{}
	saleRepo := newFakeSaleRepo()
	productRepo := &fakeProductRepo{products: make(map[id.ID]product.Product)}
	for _, p := range products {
		productRepo.products[p.ID] = p
	}

	ledgerService := ledger.NewService(&fakeMovementRepo{}, productRepo, txManager)
	lotService := lot.NewService(fakeLotRepo{}, txManager)
	svc := NewService(saleRepo, productRepo, ledgerService, lotService, txManager)

	return svc, saleRepo, productRepo
}

func testProduct(stock types.Quantity) product.Product {
	return product.Product{
		ID:           id.New(),
		Name:         "Paracetamol 500mg x10",
		CurrentStock: stock,
		Active:       true,
	}
}

func TestRegister_ComputesTotalsAndDecrementsStock(t *testing.T) {
	ctx := context.Background()
	a := testProduct(100)
	b := testProduct(50)
	svc, _, productRepo := newTestService(a, b)

	registered, items, err := svc.Register(ctx, RegisterInput{
		ActorID: "user-1",
		Items: []ItemInput{
			{ProductID: a.ID, ProductName: a.Name, Quantity: 2, UnitPrice: types.MustMoney("1.50")},
			{ProductID: b.ID, ProductName: b.Name, Quantity: 1, UnitPrice: types.MustMoney("4.80")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "7.80", registered.TotalValue.StringFixed(2))
	require.Len(t, items, 2)
	assert.Equal(t, "3.00", items[0].Subtotal.StringFixed(2))
	assert.Equal(t, registered.ID, items[0].SaleID)
	assert.Nil(t, registered.ClientTimestamp)

	gotA, err := productRepo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(98), gotA.CurrentStock)

	gotB, err := productRepo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(49), gotB.CurrentStock)
}

func TestRegister_Rejections(t *testing.T) {
	ctx := context.Background()
	p := testProduct(100)
	svc, saleRepo, _ := newTestService(p)

	_, _, err := svc.Register(ctx, RegisterInput{ActorID: "user-1"})
	require.Error(t, err)

	_, _, err = svc.Register(ctx, RegisterInput{
		Items: []ItemInput{{ProductID: p.ID, ProductName: p.Name, Quantity: 1, UnitPrice: types.MustMoney("1.00")}},
	})
	require.Error(t, err)

	_, _, err = svc.Register(ctx, RegisterInput{
		ActorID: "user-1",
		Items:   []ItemInput{{ProductID: p.ID, ProductName: p.Name, Quantity: 0, UnitPrice: types.MustMoney("1.00")}},
	})
	require.Error(t, err)

	assert.Empty(t, saleRepo.sales)
}

func TestRegister_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	p := testProduct(5)
	svc, _, _ := newTestService(p)

	_, _, err := svc.Register(ctx, RegisterInput{
		ActorID: "user-1",
		Items:   []ItemInput{{ProductID: p.ID, ProductName: p.Name, Quantity: 10, UnitPrice: types.MustMoney("1.00")}},
	})
	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestApply_ExplicitLotOfWrongProductRejected(t *testing.T) {
	ctx := context.Background()
	sold := testProduct(100)
	sold.LotMandatory = true
	other := testProduct(50)

	foreign := lot.Lot{
		ID:              id.New(),
		ProductID:       other.ID,
		LotNumber:       "AMOX-2026-01",
		ManufactureDate: time.Now().AddDate(0, -2, 0),
		ExpiryDate:      time.Now().AddDate(1, 0, 0),
		InitialQuantity: 10,
		CurrentQuantity: 10,
		Active:          true,
	}

	txManager := passthroughTxManager{}
	saleRepo := newFakeSaleRepo()
	productRepo := &fakeProductRepo{products: map[id.ID]product.Product{sold.ID: sold, other.ID: other}}
	lotRepo := fakeLotRepo{lots: map[id.ID]lot.Lot{foreign.ID: foreign}}

	ledgerService := ledger.NewService(&fakeMovementRepo{}, productRepo, txManager)
	lotService := lot.NewService(lotRepo, txManager)
	svc := NewService(saleRepo, productRepo, ledgerService, lotService, txManager)

	lotID := foreign.ID
	_, _, err := svc.Register(ctx, RegisterInput{
		ActorID: "user-1",
		Items: []ItemInput{{
			ProductID:   sold.ID,
			ProductName: sold.Name,
			Quantity:    3,
			UnitPrice:   types.MustMoney("2.00"),
			LotID:       &lotID,
		}},
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)

	// Neither the sold product's stock nor the foreign lot moved.
	got, err := productRepo.GetByID(ctx, sold.ID)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(100), got.CurrentStock)
	assert.Equal(t, types.Quantity(10), lotRepo.lots[foreign.ID].CurrentQuantity)
}

func TestApply_LotMandatoryRequiresExplicitLot(t *testing.T) {
	ctx := context.Background()
	p := testProduct(100)
	p.LotMandatory = true
	svc, _, _ := newTestService(p)

	_, _, err := svc.Register(ctx, RegisterInput{
		ActorID: "user-1",
		Items:   []ItemInput{{ProductID: p.ID, ProductName: p.Name, Quantity: 1, UnitPrice: types.MustMoney("1.00")}},
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}
