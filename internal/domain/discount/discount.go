// Package discount issues, validates and consumes single-use percentage
// discount codes.
package discount

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/failure"
)

const (
	// DefaultPrefix is prepended to every issued code.
	DefaultPrefix = "UNIBLOX"
	// DefaultPercent is the discount granted by every issued code.
	DefaultPercent = 10
)

// ErrInvalidCode is returned when a code is unknown or already used.
var ErrInvalidCode = failure.New(failure.Discount, "invalid or already used discount code")

var hundred = decimal.NewFromInt(100)

// Code is an issued discount code. Only Used ever changes after issuance, and
// only from false to true.
type Code struct {
	ID        int64
	Code      string
	Percent   decimal.Decimal
	Used      bool
	CreatedAt time.Time
}

// Amount returns subtotal × percent / 100 at full precision. percent is
// clamped to [0, 100] so the amount never exceeds the subtotal in magnitude.
// Rounding is left to the presentation boundary.
func Amount(subtotal, percent decimal.Decimal) decimal.Decimal {
	switch {
	case percent.IsNegative():
		percent = decimal.Zero
	case percent.GreaterThan(hundred):
		percent = hundred
	}
	return subtotal.Mul(percent).Div(hundred)
}
