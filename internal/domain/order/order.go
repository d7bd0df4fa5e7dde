package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a completed checkout. Orders are immutable once appended
// to a Ledger.
type Order struct {
	Seq             int64
	ID              string
	UserID          string
	Items           []Item
	Subtotal        decimal.Decimal
	DiscountCode    string
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	Total           decimal.Decimal
	CreatedAt       time.Time
}

// Item is a purchased line, copied from the cart at checkout.
type Item struct {
	ProductID int64
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

// ItemCount returns the number of distinct lines.
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// Quantity returns the total number of units across all lines.
func (o *Order) Quantity() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// HasDiscount reports whether a discount code was applied.
func (o *Order) HasDiscount() bool {
	return o.DiscountCode != ""
}

// cloneOrder returns o with its own copy of the items slice.
func cloneOrder(o Order) Order {
	items := make([]Item, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}
