// Package handler exposes the shop over HTTP. Every response is a JSON
// envelope: {"success":true,"data":...} or
// {"success":false,"error":"...","kind":"..."}.
package handler

import (
	"context"
	"net/http"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/checkout"
	"github.com/xenking/storefront/internal/domain/discount"
	"github.com/xenking/storefront/internal/domain/order"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/shop"
	"github.com/xenking/storefront/internal/domain/stats"
)

// Service is the shop API the handlers delegate to.
type Service interface {
	ListProducts(ctx context.Context) []product.Product
	AddToCart(ctx context.Context, userID string, productID int64, quantity int) (*shop.AddResult, error)
	GetCart(ctx context.Context, userID string) (cart.Cart, error)
	ClearCart(ctx context.Context, userID string) error
	Checkout(ctx context.Context, userID, code string) (*checkout.Result, error)
	GenerateDiscountCode(ctx context.Context) (string, error)
	ListDiscountCodes(ctx context.Context) []discount.Code
	Stats(ctx context.Context) stats.Stats
	ListOrders(ctx context.Context) []order.Order
}

var _ Service = (*shop.Service)(nil)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

// Handler serves the shop API.
type Handler struct {
	svc   Service
	admin *AdminAuth
}

// New creates a Handler. A nil admin leaves admin routes open.
func New(svc Service, admin *AdminAuth) *Handler {
	return &Handler{svc: svc, admin: admin}
}

// Register adds the API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.ListProducts)

	mux.HandleFunc("POST /api/cart/{userId}/add", h.AddToCart)
	mux.HandleFunc("GET /api/cart/{userId}", h.GetCart)
	mux.HandleFunc("DELETE /api/cart/{userId}/clear", h.ClearCart)

	mux.HandleFunc("POST /api/checkout", h.Checkout)

	mux.Handle("POST /api/admin/discount-codes/generate", h.admin.Require(http.HandlerFunc(h.GenerateDiscountCode)))
	mux.Handle("GET /api/admin/discount-codes", h.admin.Require(http.HandlerFunc(h.ListDiscountCodes)))
	mux.Handle("GET /api/admin/stats", h.admin.Require(http.HandlerFunc(h.Stats)))
	mux.Handle("GET /api/admin/orders", h.admin.Require(http.HandlerFunc(h.ListOrders)))

	mux.HandleFunc("/api/", h.notFound)
}

// ListProducts serves GET /api/products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := h.svc.ListProducts(r.Context())
	writeData(w, http.StatusOK, "", func(e *encoder) {
		e.ArrStart()
		for _, p := range products {
			e.product(p)
		}
		e.ArrEnd()
	})
}

func (h *Handler) notFound(w http.ResponseWriter, _ *http.Request) {
	writeFailure(w, http.StatusNotFound, kindNotFound, "route not found")
}
