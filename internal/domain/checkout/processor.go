// Package checkout converts a user's cart into an immutable order, applying
// at most one discount code and issuing a new code every Nth order.
package checkout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/discount"
	"github.com/xenking/storefront/internal/domain/failure"
	"github.com/xenking/storefront/internal/domain/order"
)

// DefaultNthOrder is the default discount issuance interval.
const DefaultNthOrder = 3

// Sentinel errors for checkout and code issuance.
var (
	ErrMissingUserID   = failure.New(failure.Validation, "missing required field: userId")
	ErrCartEmpty       = failure.New(failure.State, "cart is empty")
	ErrConditionNotMet = failure.New(failure.State, "discount code generation condition not met")
)

// Result is the outcome of a successful checkout.
type Result struct {
	Order order.Order
	// NewCode is the code issued because this order crossed a multiple of the
	// issuance interval. It is advisory and not applied to any cart.
	NewCode string
}

// Processor runs checkouts against a cart store, a discount registry and an
// order ledger. It holds no lock; the caller must serialize calls together
// with any other access to the same components.
type Processor struct {
	carts    *cart.Store
	codes    *discount.Registry
	orders   *order.Ledger
	nthOrder int
	now      func() time.Time
}

// NewProcessor creates a Processor. A non-positive nthOrder falls back to
// DefaultNthOrder.
func NewProcessor(carts *cart.Store, codes *discount.Registry, orders *order.Ledger, nthOrder int) *Processor {
	if nthOrder < 1 {
		nthOrder = DefaultNthOrder
	}
	return &Processor{
		carts:    carts,
		codes:    codes,
		orders:   orders,
		nthOrder: nthOrder,
		now:      time.Now,
	}
}

// NthOrder returns the issuance interval.
func (p *Processor) NthOrder() int {
	return p.nthOrder
}

// Checkout places an order for the user's cart. code may be empty.
//
// Every check runs before the first mutation: a rejected checkout leaves the
// cart, the ledger and the registry exactly as they were.
func (p *Processor) Checkout(userID, code string) (*Result, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	c := p.carts.Lookup(userID)
	if len(c.Items) == 0 {
		return nil, ErrCartEmpty
	}

	percent := decimal.Zero
	if code != "" {
		if !p.codes.IsValid(code) {
			return nil, discount.ErrInvalidCode
		}
		details, _ := p.codes.Details(code)
		percent = details.Percent
	}

	subtotal := cart.Total(c.Items)
	amount := discount.Amount(subtotal, percent)

	items := make([]order.Item, len(c.Items))
	for i, item := range c.Items {
		items[i] = order.Item{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	placed := p.orders.Append(order.Order{
		UserID:          userID,
		Items:           items,
		Subtotal:        subtotal,
		DiscountCode:    code,
		DiscountPercent: percent,
		DiscountAmount:  amount,
		Total:           subtotal.Sub(amount),
		CreatedAt:       p.now(),
	})

	if code != "" {
		p.codes.MarkUsed(code)
	}

	newCode, _ := p.codes.TriggerCheck(p.orders.Count(), p.nthOrder)

	p.carts.Clear(userID)

	return &Result{Order: placed, NewCode: newCode}, nil
}

// ForceGenerate issues a code on demand, but only while the current order
// count is a positive multiple of the issuance interval. It never places an
// order.
func (p *Processor) ForceGenerate() (string, error) {
	if !discount.ShouldTrigger(p.orders.Count(), p.nthOrder) {
		return "", ErrConditionNotMet
	}
	return p.codes.Generate(), nil
}
