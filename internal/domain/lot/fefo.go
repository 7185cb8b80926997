package lot

import (
	"sort"
	"time"

	"botica/internal/core/apperror"
	"botica/internal/core/id"
	"botica/internal/core/types"
)

// Allocation is one slice of an allocation plan: take Quantity units from LotID.
type Allocation struct {
	LotID     id.ID          `json:"lotId"`
	LotNumber string         `json:"lotNumber"`
	Quantity  types.Quantity `json:"quantity"`
}

// Plan is an ordered FEFO allocation plan. It is advisory only: nothing is
// reserved or consumed until the caller commits it inside a transaction.
type Plan struct {
	ProductID   id.ID          `json:"productId"`
	Allocations []Allocation   `json:"allocations"`
	Allocated   types.Quantity `json:"allocated"`

	// Shortfall is the quantity that could not be covered by eligible
	// lots. Sale paths must reject incomplete plans before committing
	// movements; under-allocation never silently shorts a sale.
	Shortfall types.Quantity `json:"shortfall"`
}

// Complete reports whether the plan fully covers the desired quantity.
func (p Plan) Complete() bool {
	return p.Shortfall.IsZero()
}

// Allocate builds a FEFO plan over the given lots without mutating them.
//
// Eligible lots are ordered by expiry date ascending, with manufacture date
// breaking ties (oldest manufactured first), and consumed greedily. If the
// eligible lots cannot cover the desired quantity the partial plan is still
// returned with Shortfall set; the caller decides whether to proceed.
// Returns NoLotsAvailable when no lot is eligible at all.
func Allocate(productID id.ID, lots []Lot, desired types.Quantity, now time.Time) (Plan, error) {
	plan := Plan{ProductID: productID, Shortfall: desired}

	if !desired.IsPositive() {
		return plan, apperror.NewValidation("desired quantity must be positive")
	}

	eligible := make([]Lot, 0, len(lots))
	for _, l := range lots {
		if l.Eligible(now) {
			eligible = append(eligible, l)
		}
	}

	if len(eligible) == 0 {
		return plan, apperror.NewNoLotsAvailable(productID.String())
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if !eligible[i].ExpiryDate.Equal(eligible[j].ExpiryDate) {
			return eligible[i].ExpiryDate.Before(eligible[j].ExpiryDate)
		}
		return eligible[i].ManufactureDate.Before(eligible[j].ManufactureDate)
	})

	remaining := desired
	for _, l := range eligible {
		if remaining.IsZero() {
			break
		}

		take := l.Available().Min(remaining)
		plan.Allocations = append(plan.Allocations, Allocation{
			LotID:     l.ID,
			LotNumber: l.LotNumber,
			Quantity:  take,
		})
		plan.Allocated += take
		remaining -= take
	}

	plan.Shortfall = remaining
	return plan, nil
}
