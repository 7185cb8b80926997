// Package reconcile applies batches of offline sale records against the
// authoritative stock state.
package reconcile

import (
	"botica/internal/core/id"
)

// Status is the fate of one submitted record.
type Status string

const (
	// StatusSynced means the record was fully applied; the client may
	// discard it.
	StatusSynced Status = "synced"
	// StatusConflict means the record cannot be cleanly applied to the
	// current state (duplicate id, insufficient stock at reconcile time)
	// and needs operator review, not an automatic retry.
	StatusConflict Status = "conflict"
	// StatusError means a defect or transient failure; the client retries
	// on the next connectivity window.
	StatusError Status = "error"
)

// RecordOutcome correlates one record with its result.
type RecordOutcome struct {
	RecordID id.ID  `json:"recordId"`
	Status   Status `json:"status"`
	Message  string `json:"message,omitempty"`
}

// BatchOutcome aggregates the per-record outcomes, in submission order.
type BatchOutcome struct {
	Processed int             `json:"processed"`
	Succeeded int             `json:"succeeded"`
	Conflicts int             `json:"conflicts"`
	Errors    int             `json:"errors"`
	Details   []RecordOutcome `json:"details"`
}

func (b *BatchOutcome) add(recordID id.ID, status Status, message string) {
	b.Processed++
	switch status {
	case StatusSynced:
		b.Succeeded++
	case StatusConflict:
		b.Conflicts++
	case StatusError:
		b.Errors++
	}
	b.Details = append(b.Details, RecordOutcome{
		RecordID: recordID,
		Status:   status,
		Message:  message,
	})
}
