// Package shop owns the process-wide shop state and exposes it through a
// Service that is safe for concurrent use.
package shop

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/checkout"
	"github.com/xenking/storefront/internal/domain/discount"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/stats"
)

// Rules configures discount issuance.
type Rules struct {
	// NthOrder issues a code every time the global order count reaches a
	// multiple of it.
	NthOrder int
	// CodePrefix precedes the zero-padded code sequence.
	CodePrefix string
	// Percent is the discount every issued code grants.
	Percent decimal.Decimal
}

// Store groups the mutable shop components. It is not safe for concurrent
// use on its own.
type Store struct {
	Catalog  product.Catalog
	Carts    *cart.Store
	Codes    *discount.Registry
	Orders   *order.Ledger
	Checkout *checkout.Processor
}

// NewStore creates an empty Store over catalog.
func NewStore(catalog product.Catalog, rules Rules) *Store {
	s := &Store{
		Catalog: catalog,
		Carts:   cart.NewStore(catalog),
		Codes:   discount.NewRegistry(rules.CodePrefix, rules.Percent),
		Orders:  order.NewLedger(),
	}
	s.Checkout = checkout.NewProcessor(s.Carts, s.Codes, s.Orders, rules.NthOrder)
	return s
}

// Stats aggregates the ledger and the registry.
func (s *Store) Stats() stats.Stats {
	return stats.Compute(s.Orders, s.Codes)
}

// Reset drops every cart, order and code and restarts all sequences.
// The catalog is left as is.
func (s *Store) Reset() {
	s.Carts.Reset()
	s.Codes.Reset()
	s.Orders.Reset()
}
