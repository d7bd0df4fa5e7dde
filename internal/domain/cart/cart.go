// Package cart implements the per-user staging area of pending purchase lines.
//
// Store is not safe for concurrent use. Callers that share a Store across
// goroutines must serialize access; shop.Service does so with a single lock.
package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/failure"
)

// MaxQuantity is the largest quantity a single cart line may hold. It keeps
// line totals and ledger-wide quantity sums far from integer overflow.
const MaxQuantity = 10_000

// Sentinel errors for cart mutation.
var (
	ErrMissingField    = failure.New(failure.Validation, "missing required fields: userId, productId, quantity")
	ErrInvalidQuantity = failure.New(failure.Validation, "quantity must be at least 1")
	ErrMissingUserID   = failure.New(failure.Validation, "missing required field: userId")
	ErrQuantityLimit   = failure.New(failure.Validation, "quantity per product must not exceed 10000")
)

// Item is a cart line. Price is snapshotted from the catalog when the line is
// first added.
type Item struct {
	ProductID int64
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

// LineTotal returns price × quantity.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is a user's staging area. Items are unique by ProductID and kept in
// insertion order.
type Cart struct {
	UserID    string
	Items     []Item
	CreatedAt time.Time
}

// Clone returns a deep copy of the cart.
func (c *Cart) Clone() Cart {
	out := Cart{
		UserID:    c.UserID,
		Items:     make([]Item, len(c.Items)),
		CreatedAt: c.CreatedAt,
	}
	copy(out.Items, c.Items)
	return out
}

// ItemCount returns the number of distinct lines.
func (c *Cart) ItemCount() int {
	return len(c.Items)
}

// Total returns Σ(price × quantity) over the items.
func Total(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.LineTotal())
	}
	return sum
}

// Total returns Σ(price × quantity) over the cart items.
func (c *Cart) Total() decimal.Decimal {
	return Total(c.Items)
}

// indexOf returns the position of the line for productID, or -1.
func (c *Cart) indexOf(productID int64) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}
