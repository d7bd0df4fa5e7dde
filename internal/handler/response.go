package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/discount"
	"github.com/xenking/storefront/internal/domain/failure"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/stats"
)

// Kinds reported by the transport itself.
const (
	kindNotFound     = string(failure.NotFound)
	kindUnauthorized = "UnauthorizedError"
	kindInternal     = "InternalError"
)

// encoder adds shop value encoders to jx.Encoder.
type encoder struct {
	jx.Encoder
}

func (e *encoder) money(d decimal.Decimal) {
	e.Str(d.StringFixed(2))
}

func (e *encoder) timestamp(t time.Time) {
	e.Str(t.UTC().Format(time.RFC3339Nano))
}

func (e *encoder) product(p product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("price")
	e.Raw([]byte(p.Price.String()))
	e.ObjEnd()
}

func (e *encoder) cartItem(item cart.Item) {
	e.ObjStart()
	e.FieldStart("productId")
	e.Int64(item.ProductID)
	e.FieldStart("name")
	e.Str(item.Name)
	e.FieldStart("price")
	e.money(item.Price)
	e.FieldStart("quantity")
	e.Int(item.Quantity)
	e.FieldStart("lineTotal")
	e.money(item.LineTotal())
	e.ObjEnd()
}

func (e *encoder) cart(c cart.Cart) {
	e.ObjStart()
	e.FieldStart("userId")
	e.Str(c.UserID)
	e.FieldStart("items")
	e.ArrStart()
	for _, item := range c.Items {
		e.cartItem(item)
	}
	e.ArrEnd()
	e.FieldStart("itemCount")
	e.Int(c.ItemCount())
	e.FieldStart("total")
	e.money(c.Total())
	e.ObjEnd()
}

func (e *encoder) optStr(s string) {
	if s == "" {
		e.Null()
		return
	}
	e.Str(s)
}

// orderSummary writes the checkout view of an order.
func (e *encoder) orderSummary(o *order.Order) {
	e.ObjStart()
	e.FieldStart("orderId")
	e.Str(o.ID)
	e.FieldStart("userId")
	e.Str(o.UserID)
	e.FieldStart("itemCount")
	e.Int(o.ItemCount())
	e.FieldStart("subtotal")
	e.money(o.Subtotal)
	e.FieldStart("discountCode")
	e.optStr(o.DiscountCode)
	e.FieldStart("discountAmount")
	e.money(o.DiscountAmount)
	e.FieldStart("total")
	e.money(o.Total)
	e.FieldStart("createdAt")
	e.timestamp(o.CreatedAt)
	e.ObjEnd()
}

// order writes the full admin view of an order.
func (e *encoder) order(o *order.Order) {
	e.ObjStart()
	e.FieldStart("orderId")
	e.Str(o.ID)
	e.FieldStart("userId")
	e.Str(o.UserID)
	e.FieldStart("items")
	e.ArrStart()
	for _, item := range o.Items {
		e.cartItem(cart.Item(item))
	}
	e.ArrEnd()
	e.FieldStart("itemCount")
	e.Int(o.ItemCount())
	e.FieldStart("subtotal")
	e.money(o.Subtotal)
	e.FieldStart("discountCode")
	e.optStr(o.DiscountCode)
	e.FieldStart("discountPercent")
	e.Raw([]byte(o.DiscountPercent.String()))
	e.FieldStart("discountAmount")
	e.money(o.DiscountAmount)
	e.FieldStart("total")
	e.money(o.Total)
	e.FieldStart("createdAt")
	e.timestamp(o.CreatedAt)
	e.ObjEnd()
}

func (e *encoder) code(c discount.Code) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(c.ID)
	e.FieldStart("code")
	e.Str(c.Code)
	e.FieldStart("discountPercent")
	e.Raw([]byte(c.Percent.String()))
	e.FieldStart("isUsed")
	e.Bool(c.Used)
	e.FieldStart("createdAt")
	e.timestamp(c.CreatedAt)
	e.ObjEnd()
}

func (e *encoder) stats(s stats.Stats) {
	e.ObjStart()
	e.FieldStart("totalOrders")
	e.Int(s.TotalOrders)
	e.FieldStart("totalItemsPurchased")
	e.Int(s.TotalItemsPurchased)
	e.FieldStart("totalPurchaseAmount")
	e.money(s.TotalPurchaseAmount)
	e.FieldStart("totalDiscountAmount")
	e.money(s.TotalDiscountAmount)
	e.FieldStart("discountCodes")
	e.ObjStart()
	e.FieldStart("total")
	e.Int(s.DiscountCodes.Total)
	e.FieldStart("available")
	e.Int(s.DiscountCodes.Available)
	e.ObjEnd()
	e.ObjEnd()
}

// writeData writes a success envelope. message is omitted when empty.
func writeData(w http.ResponseWriter, status int, message string, data func(e *encoder)) {
	var e encoder
	e.ObjStart()
	e.FieldStart("success")
	e.Bool(true)
	if message != "" {
		e.FieldStart("message")
		e.Str(message)
	}
	e.FieldStart("data")
	if data == nil {
		e.Null()
	} else {
		data(&e)
	}
	e.ObjEnd()
	write(w, status, e.Bytes())
}

// writeFailure writes an error envelope.
func writeFailure(w http.ResponseWriter, status int, kind, msg string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("success")
	e.Bool(false)
	e.FieldStart("error")
	e.Str(msg)
	e.FieldStart("kind")
	e.Str(kind)
	e.ObjEnd()
	write(w, status, e.Bytes())
}

func write(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError maps err to a status by its failure kind. Errors without a kind
// are logged and reported as 500 without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var k failure.Kinded
	if !errors.As(err, &k) {
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, kindInternal, "internal server error")
		return
	}
	writeFailure(w, statusOf(k.FailureKind()), string(k.FailureKind()), k.Error())
}

func statusOf(kind failure.Kind) int {
	switch kind {
	case failure.NotFound:
		return http.StatusNotFound
	case failure.Validation, failure.State, failure.Discount:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
