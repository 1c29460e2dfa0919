package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-pos/internal/catalog"
	"github.com/noah-isme/backend-pos/internal/db"
)

type fakeQueries struct {
	products map[string]db.Product
	tiers    map[string][]db.PriceTier
}

func newFakeQueries(t *testing.T) (*fakeQueries, db.Product) {
	t.Helper()
	id := db.FromUUID(uuid.New())
	product := db.Product{
		ID:        id,
		SKU:       "BRS-5KG",
		Name:      "Beras Premium 5kg",
		BasePrice: 78000,
		Stock:     40,
		Barcode:   pgtype.Text{String: "8991234567890", Valid: true},
		Active:    true,
	}
	f := &fakeQueries{
		products: map[string]db.Product{db.UUIDString(id): product},
		tiers: map[string][]db.PriceTier{
			db.UUIDString(id): {
				{ProductID: id, MinQty: 1, UnitPrice: 78000},
				{ProductID: id, MinQty: 10, UnitPrice: 74000},
			},
		},
	}
	return f, product
}

func (f *fakeQueries) GetProduct(_ context.Context, id pgtype.UUID) (db.Product, error) {
	p, ok := f.products[db.UUIDString(id)]
	if !ok {
		return db.Product{}, pgx.ErrNoRows
	}
	return p, nil
}

func (f *fakeQueries) GetProductByBarcode(_ context.Context, barcode string) (db.Product, error) {
	for _, p := range f.products {
		if p.Barcode.Valid && p.Barcode.String == barcode {
			return p, nil
		}
	}
	return db.Product{}, pgx.ErrNoRows
}

func (f *fakeQueries) ListProducts(_ context.Context, _ db.ListProductsParams) ([]db.Product, error) {
	out := make([]db.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeQueries) CountProducts(_ context.Context, _ string) (int64, error) {
	return int64(len(f.products)), nil
}

func (f *fakeQueries) ListPriceTiers(_ context.Context, productID pgtype.UUID) ([]db.PriceTier, error) {
	return f.tiers[db.UUIDString(productID)], nil
}

func newHandler(t *testing.T) (*catalog.Handler, db.Product) {
	t.Helper()
	queries, product := newFakeQueries(t)
	svc, err := catalog.NewService(catalog.ServiceConfig{Queries: queries})
	require.NoError(t, err)
	return catalog.NewHandler(svc), product
}

func TestProductsList(t *testing.T) {
	h, product := newHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?limit=10", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Data       []catalog.ProductView `json:"data"`
		Pagination struct {
			TotalItems int `json:"total_items"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Data, 1)
	require.Equal(t, product.Name, out.Data[0].Name)
	require.Equal(t, 1, out.Pagination.TotalItems)
}

func TestProductDetailIncludesTiers(t *testing.T) {
	h, product := newHandler(t)

	r := chi.NewRouter()
	r.Get("/api/v1/products/{id}", h.Get)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+db.UUIDString(product.ID), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Data catalog.ProductView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Data.Tiers, 2)
	require.Equal(t, int64(74000), out.Data.Tiers[1].UnitPrice)
}

func TestProductDetailNotFound(t *testing.T) {
	h, _ := newHandler(t)

	r := chi.NewRouter()
	r.Get("/api/v1/products/{id}", h.Get)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductLookupByBarcode(t *testing.T) {
	h, product := newHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?barcode=8991234567890", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Data catalog.ProductView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, product.SKU, out.Data.SKU)

	missing := httptest.NewRequest(http.MethodGet, "/api/v1/products?barcode=000", nil)
	mrec := httptest.NewRecorder()
	h.List(mrec, missing)
	require.Equal(t, http.StatusNotFound, mrec.Code)
}
