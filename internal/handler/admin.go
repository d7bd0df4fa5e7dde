package handler

import (
	"net/http"
)

// GenerateDiscountCode serves POST /api/admin/discount-codes/generate.
func (h *Handler) GenerateDiscountCode(w http.ResponseWriter, r *http.Request) {
	code, err := h.svc.GenerateDiscountCode(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "Discount code generated", func(e *encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Str(code)
		e.ObjEnd()
	})
}

// ListDiscountCodes serves GET /api/admin/discount-codes.
func (h *Handler) ListDiscountCodes(w http.ResponseWriter, r *http.Request) {
	codes := h.svc.ListDiscountCodes(r.Context())
	writeData(w, http.StatusOK, "", func(e *encoder) {
		e.ArrStart()
		for _, c := range codes {
			e.code(c)
		}
		e.ArrEnd()
	})
}

// Stats serves GET /api/admin/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	s := h.svc.Stats(r.Context())
	writeData(w, http.StatusOK, "", func(e *encoder) {
		e.stats(s)
	})
}
