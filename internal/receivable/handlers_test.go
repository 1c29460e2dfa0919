package receivable_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/receivable"
)

type fakeLedger struct {
	listFilter receivable.ListFilter
	listOut    []receivable.View
	listTotal  int64
	listErr    error

	getOut receivable.Detail
	getErr error

	payID  string
	payIn  receivable.PaymentInput
	payOut receivable.PaymentResult
	payErr error
}

func (f *fakeLedger) List(_ context.Context, filter receivable.ListFilter, _ common.Pagination) ([]receivable.View, int64, error) {
	f.listFilter = filter
	return f.listOut, f.listTotal, f.listErr
}

func (f *fakeLedger) Get(_ context.Context, _ string) (receivable.Detail, error) {
	return f.getOut, f.getErr
}

func (f *fakeLedger) ApplyPayment(_ context.Context, id string, in receivable.PaymentInput) (receivable.PaymentResult, error) {
	f.payID = id
	f.payIn = in
	return f.payOut, f.payErr
}

func withActor(req *http.Request, id string) *http.Request {
	return req.WithContext(common.WithActorID(req.Context(), id))
}

func router(h *receivable.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/api/v1/receivables", h.List)
	r.Get("/api/v1/receivables/{id}", h.Get)
	r.Post("/api/v1/receivables/{id}/payments", h.Pay)
	return r
}

func TestListPassesFilters(t *testing.T) {
	fake := &fakeLedger{
		listOut:   []receivable.View{{ID: "r1", AmountDue: 40750, AmountPaid: 10000, RemainingAmount: 30750, Status: "PARTIALLY_PAID"}},
		listTotal: 1,
	}
	r := router(receivable.NewHandler(fake))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/receivables?status=PARTIALLY_PAID&q=andi&page=2&limit=10", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "PARTIALLY_PAID", fake.listFilter.Status)
	require.Equal(t, "andi", fake.listFilter.Search)

	var out struct {
		Data       []receivable.View `json:"data"`
		Pagination common.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Data, 1)
	require.Equal(t, int64(30750), out.Data[0].RemainingAmount)
	require.Equal(t, 2, out.Pagination.Page)
	require.Equal(t, 10, out.Pagination.PerPage)
	require.Equal(t, 1, out.Pagination.TotalItems)
}

func TestGetNotFound(t *testing.T) {
	r := router(receivable.NewHandler(&fakeLedger{getErr: common.NotFoundError("receivable not found")}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/receivables/missing", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPayRequiresActor(t *testing.T) {
	r := router(receivable.NewHandler(&fakeLedger{}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/receivables/r1/payments", strings.NewReader(`{"amount": 100, "paymentMethod": "CASH"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPayHappyPath(t *testing.T) {
	fake := &fakeLedger{
		payOut: receivable.PaymentResult{
			Receivable:      receivable.View{ID: "r1", AmountDue: 40750, AmountPaid: 40750, Status: "PAID"},
			RemainingAmount: 0,
		},
	}
	r := router(receivable.NewHandler(fake))

	body := `{"amount": 30750, "paymentMethod": "TRANSFER"}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/receivables/r1/payments", strings.NewReader(body)), "cashier-2")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "r1", fake.payID)
	require.Equal(t, int64(30750), fake.payIn.Amount)
	require.Equal(t, "cashier-2", fake.payIn.CashierID)

	var out struct {
		Data receivable.PaymentResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, "PAID", out.Data.Receivable.Status)
	require.Equal(t, int64(0), out.Data.RemainingAmount)
}

func TestPayRejectsInvalidPayload(t *testing.T) {
	r := router(receivable.NewHandler(&fakeLedger{}))

	cases := []struct {
		name string
		body string
	}{
		{"zero amount", `{"amount": 0, "paymentMethod": "CASH"}`},
		{"negative amount", `{"amount": -5, "paymentMethod": "CASH"}`},
		{"bad method", `{"amount": 100, "paymentMethod": "IOU"}`},
		{"malformed", `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/receivables/r1/payments", strings.NewReader(tc.body)), "cashier-2")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestPayOverpaymentSurfacesMaxAcceptable(t *testing.T) {
	fake := &fakeLedger{
		payErr: common.ValidationError("payment of 50000 exceeds remaining balance of 30750", map[string]int64{"maxAcceptable": 30750}),
	}
	r := router(receivable.NewHandler(fake))

	body := `{"amount": 50000, "paymentMethod": "CASH"}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/receivables/r1/payments", strings.NewReader(body)), "cashier-2")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var out struct {
		Error struct {
			Code    string           `json:"code"`
			Details map[string]int64 `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, common.CodeValidation, out.Error.Code)
	require.Equal(t, int64(30750), out.Error.Details["maxAcceptable"])
}
