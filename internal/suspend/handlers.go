package suspend

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-pos/internal/common"
)

type suspendPayload struct {
	Label              string  `json:"label"`
	Lines              []Line  `json:"lines" validate:"required,min=1,dive"`
	MemberID           *string `json:"memberId" validate:"omitempty,uuid4"`
	AdditionalDiscount int64   `json:"additionalDiscount" validate:"min=0"`
}

type Handler struct {
	Store    *Store
	Validate *validator.Validate
}

func NewHandler(store *Store) *Handler {
	return &Handler{Store: store, Validate: validator.New()}
}

// Suspend handles POST /suspended.
func (h *Handler) Suspend(w http.ResponseWriter, r *http.Request) {
	actorID, ok := common.ActorID(r.Context())
	if !ok || actorID == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "actor identity required", nil)
		return
	}
	var payload suspendPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, "invalid payload", nil)
		return
	}
	if err := h.Validate.Struct(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeValidation, err.Error(), nil)
		return
	}
	snap, err := h.Store.Suspend(r.Context(), Snapshot{
		Label:              payload.Label,
		Lines:              payload.Lines,
		MemberID:           payload.MemberID,
		AdditionalDiscount: payload.AdditionalDiscount,
		SuspendedBy:        actorID,
	})
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": snap})
}

// List handles GET /suspended.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.Store.List(r.Context())
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": out})
}

// Claim handles POST /suspended/{code}/claim. The snapshot is removed on the
// way out; claiming twice returns NOT_FOUND.
func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	actorID, ok := common.ActorID(r.Context())
	if !ok || actorID == "" {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "actor identity required", nil)
		return
	}
	snap, err := h.Store.Claim(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		common.RenderError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": snap})
}
