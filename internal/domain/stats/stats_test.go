package stats

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/xenking/storefront/internal/domain/discount"
	"github.com/xenking/storefront/internal/domain/order"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(order.NewLedger(), discount.NewRegistry("", decimal.Zero))

	assert.Equal(t, 0, s.TotalOrders)
	assert.Equal(t, 0, s.TotalItemsPurchased)
	assert.Equal(t, "0.00", s.TotalPurchaseAmount.StringFixed(2))
	assert.Equal(t, "0.00", s.TotalDiscountAmount.StringFixed(2))
	assert.Equal(t, CodeCounts{}, s.DiscountCodes)
}

func TestCompute(t *testing.T) {
	ledger := order.NewLedger()
	codes := discount.NewRegistry("", decimal.Zero)

	ledger.Append(order.Order{
		Items:    []order.Item{{ProductID: 1, Price: d("999.99"), Quantity: 2}},
		Subtotal: d("1999.98"),
		Total:    d("1999.98"),
	})
	ledger.Append(order.Order{
		Items:          []order.Item{{ProductID: 2, Price: d("29.99"), Quantity: 1}, {ProductID: 3, Price: d("79.99"), Quantity: 3}},
		Subtotal:       d("269.96"),
		DiscountCode:   "UNIBLOX-0001",
		DiscountAmount: d("26.996"),
		Total:          d("242.964"),
	})

	used := codes.Generate()
	codes.Generate()
	codes.MarkUsed(used)

	s := Compute(ledger, codes)

	assert.Equal(t, 2, s.TotalOrders)
	assert.Equal(t, 6, s.TotalItemsPurchased)
	assert.Equal(t, "2242.94", s.TotalPurchaseAmount.StringFixed(2))
	assert.Equal(t, "27.00", s.TotalDiscountAmount.StringFixed(2))
	assert.Equal(t, CodeCounts{Total: 2, Available: 1}, s.DiscountCodes)
}

func TestCompute_ReflectsLaterChanges(t *testing.T) {
	ledger := order.NewLedger()
	codes := discount.NewRegistry("", decimal.Zero)

	before := Compute(ledger, codes)
	ledger.Append(order.Order{Items: []order.Item{{Quantity: 4}}, Total: d("10")})
	after := Compute(ledger, codes)

	assert.Equal(t, 0, before.TotalOrders)
	assert.Equal(t, 1, after.TotalOrders)
	assert.Equal(t, 4, after.TotalItemsPurchased)
}
