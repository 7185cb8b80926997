package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"botica/internal/core/id"
)

func validInput() MovementInput {
	return MovementInput{
		ProductID: id.New(),
		Kind:      KindEntry,
		Quantity:  10,
		Reason:    "initial load",
		ActorID:   "user-1",
	}
}

func TestValidateMovement_Valid(t *testing.T) {
	assert.Empty(t, ValidateMovement(validInput()))
}

func TestValidateMovement_SingleViolations(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*MovementInput)
		wantField string
	}{
		{
			name:      "nil product",
			mutate:    func(in *MovementInput) { in.ProductID = id.Nil() },
			wantField: "productId",
		},
		{
			name:      "unknown kind",
			mutate:    func(in *MovementInput) { in.Kind = "transfer" },
			wantField: "kind",
		},
		{
			name:      "zero quantity",
			mutate:    func(in *MovementInput) { in.Quantity = 0 },
			wantField: "quantity",
		},
		{
			name:      "negative quantity",
			mutate:    func(in *MovementInput) { in.Quantity = -5 },
			wantField: "quantity",
		},
		{
			name:      "short reason",
			mutate:    func(in *MovementInput) { in.Reason = "ok" },
			wantField: "reason",
		},
		{
			name:      "whitespace-padded short reason",
			mutate:    func(in *MovementInput) { in.Reason = "  ab   " },
			wantField: "reason",
		},
		{
			name:      "missing actor",
			mutate:    func(in *MovementInput) { in.ActorID = "   " },
			wantField: "actorId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			errs := ValidateMovement(in)
			assert.Len(t, errs, 1)
			assert.Equal(t, tt.wantField, errs[0].Field)
		})
	}
}

func TestValidateMovement_CollectsAllViolations(t *testing.T) {
	// A fully broken input reports every violation at once, not just the
	// first one encountered.
	errs := ValidateMovement(MovementInput{})

	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}

	assert.ElementsMatch(t, []string{"productId", "kind", "quantity", "reason", "actorId"}, fields)
}

func TestValidationError_Error(t *testing.T) {
	e := ValidationError{Field: "quantity", Message: "quantity must be positive"}
	assert.Equal(t, "quantity: quantity must be positive", e.Error())
}
