package settlement

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/pricing"
)

// Settler is the surface of Service the handlers need. Tests substitute a fake.
type Settler interface {
	Settle(ctx context.Context, in Input) (Result, error)
	Preview(ctx context.Context, in PreviewInput) (pricing.Calculation, error)
	GetSale(ctx context.Context, id string) (SaleView, error)
}

type Handler struct {
	Svc      Settler
	Validate *validator.Validate
}

func NewHandler(svc Settler) *Handler {
	return &Handler{Svc: svc, Validate: validator.New()}
}

// Settle handles POST /sales.
func (h *Handler) Settle(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "settlement service not configured", nil)
		return
	}
	actorID, ok := common.ActorID(r.Context())
	if !ok || actorID == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "actor identity required", nil)
		return
	}
	var payload Input
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid payload", nil)
		return
	}
	if err := h.Validate.Struct(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, err.Error(), nil)
		return
	}
	payload.CashierID = actorID
	out, err := h.Svc.Settle(r.Context(), payload)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": out})
}

// Preview handles POST /sales/preview. The response is advisory; nothing is
// locked or persisted and the numbers can differ by the time the sale settles.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "settlement service not configured", nil)
		return
	}
	var payload PreviewInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid payload", nil)
		return
	}
	if err := h.Validate.Struct(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, err.Error(), nil)
		return
	}
	out, err := h.Svc.Preview(r.Context(), payload)
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

// GetSale handles GET /sales/{id}.
func (h *Handler) GetSale(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, common.CodeInternal, "settlement service not configured", nil)
		return
	}
	out, err := h.Svc.GetSale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}
