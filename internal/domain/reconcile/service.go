package reconcile

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"botica/internal/core/apperror"
	"botica/internal/core/id"
	"botica/internal/core/tx"
	"botica/internal/domain/offline"
	"botica/internal/domain/sale"
	"botica/pkg/logger"
)

var tracer = otel.Tracer("botica/reconcile")

// Service is the sync entry point for offline sale batches.
//
// Records are processed independently and sequentially; one record's failure
// never aborts the batch, and the outcome list is ordered like the input.
// Concurrency across batches is handled entirely by the per-record
// transaction: the stock sufficiency check runs against row-locked products
// inside the same transaction that decrements them.
type Service struct {
	sales     sale.Repository
	applier   *sale.Service
	txManager tx.Manager
}

// NewService creates a new reconciliation service.
func NewService(sales sale.Repository, applier *sale.Service, txManager tx.Manager) *Service {
	return &Service{
		sales:     sales,
		applier:   applier,
		txManager: txManager,
	}
}

// Reconcile applies a batch of offline sale records.
//
// Per record: integrity check, then idempotency check against persisted
// sales, then atomic application (sale + items + exit movements + lot
// consumption). Classification follows the caller's remedy:
//   - synced: applied, client discards the record
//   - conflict: duplicate id or insufficient stock; a sale that happened in
//     the physical world but cannot be applied, needs operator review
//   - error: malformed record or infrastructure failure; retry after
//     correction or on the next connectivity window
func (s *Service) Reconcile(ctx context.Context, records []offline.SaleRecord) BatchOutcome {
	ctx, span := tracer.Start(ctx, "reconcile.batch",
		trace.WithAttributes(attribute.Int("batch.size", len(records))))
	defer span.End()

	var outcome BatchOutcome

	for _, rec := range records {
		status, message := s.reconcileOne(ctx, rec)
		outcome.add(rec.ID, status, message)
	}

	logger.Info(ctx, "offline batch reconciled",
		"processed", outcome.Processed,
		"succeeded", outcome.Succeeded,
		"conflicts", outcome.Conflicts,
		"errors", outcome.Errors,
	)

	span.SetAttributes(
		attribute.Int("batch.succeeded", outcome.Succeeded),
		attribute.Int("batch.conflicts", outcome.Conflicts),
		attribute.Int("batch.errors", outcome.Errors),
	)

	return outcome
}

func (s *Service) reconcileOne(ctx context.Context, rec offline.SaleRecord) (Status, string) {
	// Well-formedness: reject before touching any state.
	if len(rec.Items) == 0 || !rec.VerifyIntegrity() {
		return StatusError, "integrity validation failed"
	}

	exists, err := s.sales.ExistsByID(ctx, rec.ID)
	if err != nil {
		logger.Error(ctx, "idempotency probe failed", "record_id", rec.ID, "error", err)
		return StatusError, "connection failure"
	}
	if exists {
		return StatusConflict, "sale already exists on server"
	}

	sl, items := materialize(rec)
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.applier.Apply(ctx, sl, items, "offline sale sync")
	})
	if err != nil {
		return classify(ctx, rec, err)
	}

	return StatusSynced, ""
}

// classify maps an application error to a record outcome. Insufficient stock
// is a conflict, not an error: the offline/online state diverged, which is
// an expected condition, not a defect.
func classify(ctx context.Context, rec offline.SaleRecord, err error) (Status, string) {
	switch {
	case apperror.IsInsufficientStock(err):
		detail := ""
		if appErr, ok := apperror.AsAppError(err); ok {
			detail = fmt.Sprintf(" (requested %v, available %v)",
				appErr.Details["requested"], appErr.Details["available"])
		}
		return StatusConflict, "insufficient stock" + detail

	case apperror.IsNoLotsAvailable(err):
		return StatusConflict, "no eligible lots available"

	case apperror.IsDuplicate(err):
		// Lost the race against a concurrent resubmission; same as the
		// idempotency probe firing.
		return StatusConflict, "sale already exists on server"

	case apperror.IsAppError(err):
		appErr, _ := apperror.AsAppError(err)
		return StatusError, appErr.Message

	default:
		// Infrastructure failure: log the cause, return a sanitized message.
		logger.Error(ctx, "reconciliation transaction failed",
			"record_id", rec.ID,
			"error", err,
		)
		return StatusError, "transaction failure"
	}
}

// materialize converts an offline record into the persisted sale shape,
// preserving the client-generated id as the sale id.
func materialize(rec offline.SaleRecord) (sale.Sale, []sale.Item) {
	ts := rec.ClientTimestamp
	sl := sale.Sale{
		ID:              rec.ID,
		ClientID:        rec.ClientID,
		ActorID:         rec.ActorID,
		TotalValue:      rec.TotalValue,
		ClientTimestamp: &ts,
		CreatedAt:       time.Now().UTC(),
	}

	items := make([]sale.Item, 0, len(rec.Items))
	for _, it := range rec.Items {
		items = append(items, sale.Item{
			ID:                   id.New(),
			SaleID:               rec.ID,
			ProductID:            it.ProductID,
			ProductName:          it.ProductName,
			Quantity:             it.Quantity,
			UnitPrice:            it.UnitPrice,
			Subtotal:             it.Subtotal,
			RequiresPrescription: it.RequiresPrescription,
			LotID:                it.LotID,
		})
	}

	return sl, items
}
