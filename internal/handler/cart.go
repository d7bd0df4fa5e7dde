package handler

import (
	"net/http"
)

// AddToCart serves POST /api/cart/{userId}/add.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAdd(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.svc.AddToCart(r.Context(), r.PathValue("userId"), req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, res.Message, func(e *encoder) {
		e.cart(res.Cart)
	})
}

// GetCart serves GET /api/cart/{userId}.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetCart(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", func(e *encoder) {
		e.cart(c)
	})
}

// ClearCart serves DELETE /api/cart/{userId}/clear.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearCart(r.Context(), r.PathValue("userId")); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Cart cleared", nil)
}
