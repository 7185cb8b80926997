// Package types provides common type aliases and utilities.
package types

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// NewMoneyFromString creates a Money value from a string.
// This is the preferred constructor for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ZeroMoney returns the zero Money value.
func ZeroMoney() Money {
	return decimal.Zero
}

// Quantity is a whole-unit stock count. Pharmacy stock is dispensed in
// unit packs, so no fractional scale is needed; the value maps directly
// to a BIGINT column.
type Quantity int64

func (q Quantity) Int64() int64 { return int64(q) }

// Decimal converts the quantity for money arithmetic.
func (q Quantity) Decimal() decimal.Decimal { return decimal.NewFromInt(int64(q)) }

func (q Quantity) IsZero() bool { return q == 0 }

func (q Quantity) IsPositive() bool { return q > 0 }

func (q Quantity) IsNegative() bool { return q < 0 }

func (q Quantity) Neg() Quantity { return -q }

func (q Quantity) String() string {
	return strconv.FormatInt(int64(q), 10)
}

// Min returns the smaller of two quantities.
func (q Quantity) Min(other Quantity) Quantity {
	if other < q {
		return other
	}
	return q
}
