package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-pos/internal/common"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// List handles GET /products. Supports q, barcode, page, and limit.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "catalog service not configured", nil)
		return
	}
	q := r.URL.Query()
	if barcode := q.Get("barcode"); barcode != "" {
		out, err := h.Svc.GetByBarcode(r.Context(), barcode)
		if err != nil {
			common.RenderError(w, err)
			return
		}
		common.JSON(w, http.StatusOK, map[string]any{"data": out})
		return
	}
	page, perPage := common.ParsePagination(r, 20)
	views, total, err := h.Svc.List(r.Context(), ListParams{
		Search: q.Get("q"),
		Page:   page,
		Limit:  perPage,
	})
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": views,
		"pagination": common.Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalItems: int(total),
		},
	})
}

// Get handles GET /products/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "catalog service not configured", nil)
		return
	}
	out, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}
