// Package events carries shop domain events over an in-process watermill
// pub/sub. Payloads are JSON encoded with jx.
package events

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// Topics.
const (
	TopicOrderPlaced = "shop.order.placed"
	TopicCodeIssued  = "shop.discount_code.issued"
)

// OrderPlaced is published after an order is appended to the ledger.
type OrderPlaced struct {
	OrderID      string
	UserID       string
	ItemCount    int
	Quantity     int
	Total        decimal.Decimal
	DiscountCode string
	CreatedAt    time.Time
}

// Encode writes e as a JSON object.
func (e OrderPlaced) Encode(enc *jx.Encoder) {
	enc.ObjStart()
	enc.FieldStart("orderId")
	enc.Str(e.OrderID)
	enc.FieldStart("userId")
	enc.Str(e.UserID)
	enc.FieldStart("itemCount")
	enc.Int(e.ItemCount)
	enc.FieldStart("quantity")
	enc.Int(e.Quantity)
	enc.FieldStart("total")
	enc.Str(e.Total.StringFixed(2))
	if e.DiscountCode != "" {
		enc.FieldStart("discountCode")
		enc.Str(e.DiscountCode)
	}
	enc.FieldStart("createdAt")
	enc.Str(e.CreatedAt.UTC().Format(time.RFC3339Nano))
	enc.ObjEnd()
}

// Decode reads e from a JSON object. Unknown fields are skipped.
func (e *OrderPlaced) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "orderId":
			e.OrderID, err = d.Str()
		case "userId":
			e.UserID, err = d.Str()
		case "itemCount":
			e.ItemCount, err = d.Int()
		case "quantity":
			e.Quantity, err = d.Int()
		case "total":
			var s string
			if s, err = d.Str(); err == nil {
				e.Total, err = decimal.NewFromString(s)
			}
		case "discountCode":
			e.DiscountCode, err = d.Str()
		case "createdAt":
			var s string
			if s, err = d.Str(); err == nil {
				e.CreatedAt, err = time.Parse(time.RFC3339Nano, s)
			}
		default:
			err = d.Skip()
		}
		return errors.Wrapf(err, "decode %q", key)
	})
}

// CodeIssued is published after the registry issues a discount code.
type CodeIssued struct {
	Code       string
	OrderCount int
	// Forced is true for codes issued by an administrator rather than by
	// the checkout trigger.
	Forced bool
}

// Encode writes e as a JSON object.
func (e CodeIssued) Encode(enc *jx.Encoder) {
	enc.ObjStart()
	enc.FieldStart("code")
	enc.Str(e.Code)
	enc.FieldStart("orderCount")
	enc.Int(e.OrderCount)
	enc.FieldStart("forced")
	enc.Bool(e.Forced)
	enc.ObjEnd()
}

// Decode reads e from a JSON object. Unknown fields are skipped.
func (e *CodeIssued) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "code":
			e.Code, err = d.Str()
		case "orderCount":
			e.OrderCount, err = d.Int()
		case "forced":
			e.Forced, err = d.Bool()
		default:
			err = d.Skip()
		}
		return errors.Wrapf(err, "decode %q", key)
	})
}
