package order

import (
	"fmt"
)

// Ledger is the append-only history of completed orders. It has no update or
// delete operation. Ledger is not safe for concurrent use; shop.Service
// serializes access.
type Ledger struct {
	seq    int64
	orders []Order
}

// NewLedger returns an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// FormatID renders an order sequence number as an order id.
func FormatID(seq int64) string {
	return fmt.Sprintf("ORDER-%06d", seq)
}

// Append assigns the next sequence number and id to o, stores a deep copy and
// returns it. Sequence numbers start at 1 and strictly increase.
func (l *Ledger) Append(o Order) Order {
	l.seq++
	o.Seq = l.seq
	o.ID = FormatID(l.seq)
	o = cloneOrder(o)
	l.orders = append(l.orders, o)
	return cloneOrder(o)
}

// Count returns the number of orders placed.
func (l *Ledger) Count() int {
	return len(l.orders)
}

// All returns deep copies of every order in placement order.
func (l *Ledger) All() []Order {
	out := make([]Order, len(l.orders))
	for i, o := range l.orders {
		out[i] = cloneOrder(o)
	}
	return out
}

// Each calls fn for every order in placement order without copying. fn must
// not retain or modify the order.
func (l *Ledger) Each(fn func(o *Order)) {
	for i := range l.orders {
		fn(&l.orders[i])
	}
}

// Reset drops every order and restarts the sequence.
func (l *Ledger) Reset() {
	l.seq = 0
	l.orders = nil
}
