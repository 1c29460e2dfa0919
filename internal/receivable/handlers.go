package receivable

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Ledger is the surface of Service the handlers need. Tests substitute a fake.
type Ledger interface {
	List(ctx context.Context, filter ListFilter, p common.Pagination) ([]View, int64, error)
	Get(ctx context.Context, id string) (Detail, error)
	ApplyPayment(ctx context.Context, id string, in PaymentInput) (PaymentResult, error)
}

type Handler struct {
	Svc      Ledger
	Validate *validator.Validate
}

func NewHandler(svc Ledger) *Handler {
	return &Handler{Svc: svc, Validate: validator.New()}
}

// List handles GET /receivables. Status, member, and search filters are all
// optional; without them the full ledger is paged newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "receivable service not configured", nil)
		return
	}
	q := r.URL.Query()
	filter := ListFilter{
		Status:   q.Get("status"),
		MemberID: q.Get("memberId"),
		Search:   q.Get("q"),
	}
	page, perPage := common.ParsePagination(r, 20)
	p := common.Pagination{Page: page, PerPage: perPage}
	views, total, err := h.Svc.List(r.Context(), filter, p)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	p.TotalItems = int(total)
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       views,
		"pagination": p,
	})
}

// Get handles GET /receivables/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "receivable service not configured", nil)
		return
	}
	out, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

// Pay handles POST /receivables/{id}/payments.
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "receivable service not configured", nil)
		return
	}
	actorID, ok := common.ActorID(r.Context())
	if !ok || actorID == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "actor identity required", nil)
		return
	}
	var payload PaymentInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid payload", nil)
		return
	}
	if err := h.Validate.Struct(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, err.Error(), nil)
		return
	}
	payload.CashierID = actorID
	out, err := h.Svc.ApplyPayment(r.Context(), chi.URLParam(r, "id"), payload)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": out})
}
