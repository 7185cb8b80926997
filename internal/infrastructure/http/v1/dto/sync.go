package dto

import (
	"botica/internal/domain/offline"
)

// SyncSalesRequest is the body of POST /v1/sync/sales: the batch of offline
// sale records a reconnected client wants applied. Records carry their own
// client-generated ids and integrity digests.
type SyncSalesRequest struct {
	Records []offline.SaleRecord `json:"records" binding:"required"`
}
