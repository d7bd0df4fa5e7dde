package handler

import (
	"net/http"
)

// Checkout serves POST /api/checkout. A code issued by this order is returned
// as data.newDiscountCode, null otherwise.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCheckout(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.svc.Checkout(r.Context(), req.UserID, req.DiscountCode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Order placed successfully", func(e *encoder) {
		e.ObjStart()
		e.FieldStart("order")
		e.orderSummary(&res.Order)
		e.FieldStart("newDiscountCode")
		e.optStr(res.NewCode)
		e.ObjEnd()
	})
}

// ListOrders serves GET /api/admin/orders.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders := h.svc.ListOrders(r.Context())
	writeData(w, http.StatusOK, "", func(e *encoder) {
		e.ArrStart()
		for i := range orders {
			e.order(&orders[i])
		}
		e.ArrEnd()
	})
}
