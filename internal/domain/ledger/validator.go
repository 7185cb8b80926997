package ledger

import (
	"fmt"
	"strings"

	"botica/internal/core/id"
	"botica/internal/core/types"
)

// MinReasonLength is the shortest accepted movement reason.
const MinReasonLength = 3

// MovementInput is a proposed ledger movement before validation.
type MovementInput struct {
	ProductID     id.ID
	Kind          MovementKind
	Quantity      types.Quantity
	Reason        string
	ActorID       string
	RelatedSaleID *id.ID
}

// ValidationError describes a single rule violation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateMovement checks a proposed movement against the business rules.
// It is a pure function with no I/O and returns every violation rather than
// stopping at the first, so callers can report all problems at once.
//
// Stock sufficiency is deliberately not checked here: it depends on current
// state and belongs inside the ledger transaction.
func ValidateMovement(in MovementInput) []ValidationError {
	var errs []ValidationError

	if id.IsNil(in.ProductID) {
		errs = append(errs, ValidationError{Field: "productId", Message: "product is required"})
	}

	if !in.Kind.Valid() {
		errs = append(errs, ValidationError{Field: "kind", Message: fmt.Sprintf("unknown movement kind %q", in.Kind)})
	}

	if !in.Quantity.IsPositive() {
		errs = append(errs, ValidationError{Field: "quantity", Message: "quantity must be positive"})
	}

	if len(strings.TrimSpace(in.Reason)) < MinReasonLength {
		errs = append(errs, ValidationError{Field: "reason", Message: fmt.Sprintf("reason must be at least %d characters", MinReasonLength)})
	}

	if strings.TrimSpace(in.ActorID) == "" {
		errs = append(errs, ValidationError{Field: "actorId", Message: "actor is required"})
	}

	return errs
}
