package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botica/internal/core/apperror"
	"botica/internal/core/id"
	"botica/internal/core/types"
	"botica/internal/domain/product"
)

// passthroughTxManager runs the function directly; the in-memory fakes below
// have no transactional behavior to coordinate.
type passthroughTxManager struct{}

func (passthroughTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeProductRepo struct {
	products map[id.ID]product.Product
}

func newFakeProductRepo(products ...product.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[id.ID]product.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
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
	p, ok := r.products[productID]
	if !ok {
		return apperror.NewNotFound("product", productID.String())
	}
	p.CurrentStock = newStock
	r.products[productID] = p
	return nil
}

func (r *fakeProductRepo) ListBelowMinimum(_ context.Context) ([]product.Product, error) {
	var out []product.Product
	for _, p := range r.products {
		if p.Active && p.BelowMinimum() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) Create(_ context.Context, p product.Product) error {
	r.products[p.ID] = p
	return nil
}

type fakeMovementRepo struct {
	movements []StockMovement
}

func (r *fakeMovementRepo) CreateMovement(_ context.Context, m StockMovement) error {
	r.movements = append(r.movements, m)
	return nil
}

func (r *fakeMovementRepo) CreateMovements(_ context.Context, movements []StockMovement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *fakeMovementRepo) GetByProduct(_ context.Context, productID id.ID, _ MovementFilter) ([]StockMovement, error) {
	var out []StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) SumSignedQuantities(_ context.Context, productID id.ID) (types.Quantity, error) {
	var sum types.Quantity
	for _, m := range r.movements {
		if m.ProductID == productID {
			sum += m.SignedQuantity()
		}
	}
	return sum, nil
}

func newTestService(products ...product.Product) (*Service, *fakeProductRepo, *fakeMovementRepo) {
	productRepo := newFakeProductRepo(products...)
	movementRepo := &fakeMovementRepo{}
	return NewService(movementRepo, productRepo, passthroughTxManager{}), productRepo, movementRepo
}

func testProduct(stock types.Quantity) product.Product {
	return product.Product{
		ID:           id.New(),
		Name:         "Paracetamol 500mg x10",
		CurrentStock: stock,
		MinimumStock: 20,
		Active:       true,
	}
}

func TestApplyMovement_ExitDecrementsStock(t *testing.T) {
	ctx := context.Background()
	p := testProduct(100)
	svc, productRepo, movementRepo := newTestService(p)

	m, err := svc.ApplyMovement(ctx, MovementInput{
		ProductID: p.ID,
		Kind:      KindExit,
		Quantity:  30,
		Reason:    "counter sale",
		ActorID:   "user-1",
	})
	require.NoError(t, err)

	assert.Equal(t, KindExit, m.Kind)
	assert.Equal(t, types.Quantity(30), m.Quantity)

	got, err := productRepo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(70), got.CurrentStock)
	assert.Len(t, movementRepo.movements, 1)
}

func TestApplyMovement_EntryIncrementsStock(t *testing.T) {
	ctx := context.Background()
	p := testProduct(10)
	svc, productRepo, _ := newTestService(p)

	_, err := svc.ApplyMovement(ctx, MovementInput{
		ProductID: p.ID,
		Kind:      KindEntry,
		Quantity:  50,
		Reason:    "purchase order 42",
		ActorID:   "user-1",
	})
	require.NoError(t, err)

	got, err := productRepo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(60), got.CurrentStock)
}

func TestApplyMovement_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	p := testProduct(70)
	svc, productRepo, movementRepo := newTestService(p)

	_, err := svc.ApplyMovement(ctx, MovementInput{
		ProductID: p.ID,
		Kind:      KindExit,
		Quantity:  80,
		Reason:    "counter sale",
		ActorID:   "user-1",
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// Nothing applied: stock untouched, no ledger entry.
	got, err := productRepo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(70), got.CurrentStock)
	assert.Empty(t, movementRepo.movements)
}

func TestApplyMovement_ExactStockAllowed(t *testing.T) {
	ctx := context.Background()
	p := testProduct(25)
	svc, productRepo, _ := newTestService(p)

	_, err := svc.ApplyMovement(ctx, MovementInput{
		ProductID: p.ID,
		Kind:      KindExit,
		Quantity:  25,
		Reason:    "counter sale",
		ActorID:   "user-1",
	})
	require.NoError(t, err)

	got, err := productRepo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(0), got.CurrentStock)
}

func TestApplyMovement_ValidationRejected(t *testing.T) {
	ctx := context.Background()
	p := testProduct(100)
	svc, _, movementRepo := newTestService(p)

	_, err := svc.ApplyMovement(ctx, MovementInput{
		ProductID: p.ID,
		Kind:      "transfer",
		Quantity:  -1,
		Reason:    "x",
		ActorID:   "",
	})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Empty(t, movementRepo.movements)
}

func TestApplyMovement_UnknownProduct(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	_, err := svc.ApplyMovement(ctx, MovementInput{
		ProductID: id.New(),
		Kind:      KindEntry,
		Quantity:  10,
		Reason:    "initial load",
		ActorID:   "user-1",
	})
	assert.True(t, apperror.IsNotFound(err))
}

func TestApplyMovements_BatchAppliesAll(t *testing.T) {
	ctx := context.Background()
	a := testProduct(100)
	b := testProduct(50)
	svc, productRepo, movementRepo := newTestService(a, b)

	saleID := id.New()
	created, err := svc.ApplyMovements(ctx, []MovementInput{
		{ProductID: a.ID, Kind: KindExit, Quantity: 30, Reason: "counter sale", ActorID: "user-1", RelatedSaleID: &saleID},
		{ProductID: b.ID, Kind: KindExit, Quantity: 10, Reason: "counter sale", ActorID: "user-1", RelatedSaleID: &saleID},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	gotA, err := productRepo.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(70), gotA.CurrentStock)

	gotB, err := productRepo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, types.Quantity(40), gotB.CurrentStock)

	assert.Len(t, movementRepo.movements, 2)
}

func TestApplyMovements_FailingInputAppendsNothing(t *testing.T) {
	ctx := context.Background()
	a := testProduct(100)
	b := testProduct(5)
	svc, _, movementRepo := newTestService(a, b)

	_, err := svc.ApplyMovements(ctx, []MovementInput{
		{ProductID: a.ID, Kind: KindExit, Quantity: 30, Reason: "counter sale", ActorID: "user-1"},
		{ProductID: b.ID, Kind: KindExit, Quantity: 10, Reason: "counter sale", ActorID: "user-1"},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	// The group aborts before any ledger append.
	assert.Empty(t, movementRepo.movements)
}

func TestApplyMovements_Empty(t *testing.T) {
	svc, _, movementRepo := newTestService()

	created, err := svc.ApplyMovements(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, created)
	assert.Empty(t, movementRepo.movements)
}

func TestCheckBalance_ReplayMatchesCatalog(t *testing.T) {
	ctx := context.Background()
	p := testProduct(0)
	svc, _, _ := newTestService(p)

	apply := func(kind MovementKind, qty types.Quantity, reason string) {
		_, err := svc.ApplyMovement(ctx, MovementInput{
			ProductID: p.ID,
			Kind:      kind,
			Quantity:  qty,
			Reason:    reason,
			ActorID:   "user-1",
		})
		require.NoError(t, err)
	}

	apply(KindEntry, 100, "initial load")
	apply(KindExit, 30, "counter sale")
	apply(KindAdjustment, 5, "recount surplus")
	apply(KindLoss, 2, "broken blister")
	apply(KindExpiration, 3, "expired lot write-off")

	check, err := svc.CheckBalance(ctx, p.ID)
	require.NoError(t, err)

	assert.Equal(t, types.Quantity(70), check.CurrentStock)
	assert.Equal(t, types.Quantity(70), check.LedgerStock)
	assert.True(t, check.Consistent)
}

func TestCheckBalance_DetectsMismatch(t *testing.T) {
	ctx := context.Background()
	p := testProduct(50) // catalog says 50, ledger is empty
	svc, _, _ := newTestService(p)

	check, err := svc.CheckBalance(ctx, p.ID)
	require.NoError(t, err)

	assert.False(t, check.Consistent)
	assert.Equal(t, types.Quantity(50), check.CurrentStock)
	assert.Equal(t, types.Quantity(0), check.LedgerStock)
}

func TestLowStockProducts(t *testing.T) {
	ctx := context.Background()
	low := testProduct(5)
	ok := testProduct(100)
	svc, _, _ := newTestService(low, ok)

	products, err := svc.LowStockProducts(ctx)
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, low.ID, products[0].ID)
}
