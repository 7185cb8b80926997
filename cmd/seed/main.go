// Package main provides a CLI tool for creating the schema and seeding the
// database with demo data.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"botica/internal/core/id"
	"botica/internal/core/types"
	"botica/internal/domain/ledger"
	"botica/internal/domain/lot"
	"botica/internal/domain/product"
	"botica/internal/infrastructure/storage/postgres"
	"botica/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
    id            UUID PRIMARY KEY,
    name          TEXT NOT NULL,
    current_stock BIGINT NOT NULL DEFAULT 0,
    minimum_stock BIGINT NOT NULL DEFAULT 0,
    maximum_stock BIGINT,
    lot_mandatory BOOLEAN NOT NULL DEFAULT FALSE,
    active        BOOLEAN NOT NULL DEFAULT TRUE,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT products_stock_non_negative CHECK (current_stock >= 0)
);

CREATE TABLE IF NOT EXISTS stock_movements (
    id              UUID PRIMARY KEY,
    product_id      UUID NOT NULL REFERENCES products(id),
    kind            TEXT NOT NULL,
    quantity        BIGINT NOT NULL,
    reason          TEXT NOT NULL,
    related_sale_id UUID,
    actor_id        TEXT NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT stock_movements_quantity_positive CHECK (quantity > 0)
);

CREATE INDEX IF NOT EXISTS idx_stock_movements_product
    ON stock_movements (product_id, created_at DESC);

CREATE TABLE IF NOT EXISTS lots (
    id                UUID PRIMARY KEY,
    product_id        UUID NOT NULL REFERENCES products(id),
    lot_number        TEXT NOT NULL,
    manufacture_date  TIMESTAMPTZ NOT NULL,
    expiry_date       TIMESTAMPTZ NOT NULL,
    initial_quantity  BIGINT NOT NULL,
    current_quantity  BIGINT NOT NULL,
    reserved_quantity BIGINT NOT NULL DEFAULT 0,
    unit_cost         NUMERIC(12,2) NOT NULL DEFAULT 0,
    active            BOOLEAN NOT NULL DEFAULT TRUE,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT lots_quantities CHECK (current_quantity >= reserved_quantity AND reserved_quantity >= 0)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_lots_product_number_active
    ON lots (product_id, lot_number) WHERE active;

CREATE INDEX IF NOT EXISTS idx_lots_fefo
    ON lots (product_id, expiry_date, manufacture_date) WHERE active;

CREATE TABLE IF NOT EXISTS sales (
    id               UUID PRIMARY KEY,
    client_id        UUID,
    actor_id         TEXT NOT NULL,
    total_value      NUMERIC(12,2) NOT NULL,
    client_timestamp TIMESTAMPTZ,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sale_items (
    id                    UUID PRIMARY KEY,
    sale_id               UUID NOT NULL REFERENCES sales(id),
    product_id            UUID NOT NULL REFERENCES products(id),
    product_name          TEXT NOT NULL,
    quantity              BIGINT NOT NULL,
    unit_price            NUMERIC(12,2) NOT NULL,
    subtotal              NUMERIC(12,2) NOT NULL,
    requires_prescription BOOLEAN NOT NULL DEFAULT FALSE,
    lot_id                UUID
);

CREATE INDEX IF NOT EXISTS idx_sale_items_sale ON sale_items (sale_id);
`

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if _, err := pool.Exec(ctx, schema); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}
	log.Info("schema applied")

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoData(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
		log.Info("demo data seeded")
	}
}

// seedDemoData loads a small pharmacy catalog with lots and opening stock,
// going through the services so the ledger stays consistent with the catalog.
func seedDemoData(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	txManager := postgres.NewTxManager(pool)
	productRepo := postgres.NewProductRepo(txManager)
	movementRepo := postgres.NewMovementRepo(txManager)
	lotRepo := postgres.NewLotRepo(txManager)
	ledgerService := ledger.NewService(movementRepo, productRepo, txManager)
	lotService := lot.NewService(lotRepo, txManager)

	now := time.Now().UTC()

	demo := []struct {
		name         string
		minimum      int64
		lotMandatory bool
		lots         []struct {
			number   string
			months   int
			quantity int64
			cost     string
		}
	}{
		{
			name:    "Paracetamol 500mg x10",
			minimum: 20,
			lots: []struct {
				number   string
				months   int
				quantity int64
				cost     string
			}{
				{"PARA-2026-01", 10, 100, "1.50"},
				{"PARA-2026-02", 16, 150, "1.45"},
			},
		},
		{
			name:         "Amoxicillin 500mg x12",
			minimum:      10,
			lotMandatory: true,
			lots: []struct {
				number   string
				months   int
				quantity int64
				cost     string
			}{
				{"AMOX-2026-01", 8, 60, "4.80"},
			},
		},
		{
			name:    "Alcohol 96% 250ml",
			minimum: 15,
		},
	}

	for _, d := range demo {
		p := product.Product{
			ID:           id.New(),
			Name:         d.name,
			MinimumStock: types.Quantity(d.minimum),
			LotMandatory: d.lotMandatory,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := productRepo.Create(ctx, p); err != nil {
			return fmt.Errorf("create product %s: %w", d.name, err)
		}

		for _, l := range d.lots {
			if _, err := lotService.Receive(ctx, lot.ReceiveInput{
				ProductID:       p.ID,
				LotNumber:       l.number,
				ManufactureDate: now.AddDate(0, -1, 0),
				ExpiryDate:      now.AddDate(0, l.months, 0),
				Quantity:        types.Quantity(l.quantity),
				UnitCost:        types.MustMoney(l.cost),
			}); err != nil {
				return fmt.Errorf("receive lot %s: %w", l.number, err)
			}

			if _, err := ledgerService.ApplyMovement(ctx, ledger.MovementInput{
				ProductID: p.ID,
				Kind:      ledger.KindEntry,
				Quantity:  types.Quantity(l.quantity),
				Reason:    "initial load " + l.number,
				ActorID:   "seed",
			}); err != nil {
				return fmt.Errorf("opening movement for %s: %w", l.number, err)
			}
		}

		log.Infow("product seeded", "product_id", p.ID, "name", d.name)
	}

	return nil
}
