// Package stats derives sales figures from the order ledger and the discount
// registry. Figures are recomputed on every call and never cached.
package stats

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/discount"
	"github.com/xenking/storefront/internal/domain/order"
)

// Stats is a point-in-time summary of sales activity.
type Stats struct {
	TotalOrders         int
	TotalItemsPurchased int
	TotalPurchaseAmount decimal.Decimal
	TotalDiscountAmount decimal.Decimal
	DiscountCodes       CodeCounts
}

// CodeCounts summarizes the discount registry.
type CodeCounts struct {
	Total     int
	Available int
}

// Compute aggregates the current contents of orders and codes.
func Compute(orders *order.Ledger, codes *discount.Registry) Stats {
	s := Stats{
		TotalOrders:         orders.Count(),
		TotalPurchaseAmount: decimal.Zero,
		TotalDiscountAmount: decimal.Zero,
		DiscountCodes: CodeCounts{
			Total:     codes.Len(),
			Available: codes.Available(),
		},
	}
	orders.Each(func(o *order.Order) {
		s.TotalItemsPurchased += o.Quantity()
		s.TotalPurchaseAmount = s.TotalPurchaseAmount.Add(o.Total)
		s.TotalDiscountAmount = s.TotalDiscountAmount.Add(o.DiscountAmount)
	})
	return s
}
