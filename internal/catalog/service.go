package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
)

type queryProvider interface {
	GetProduct(ctx context.Context, id pgtype.UUID) (db.Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (db.Product, error)
	ListProducts(ctx context.Context, arg db.ListProductsParams) ([]db.Product, error)
	CountProducts(ctx context.Context, search string) (int64, error)
	ListPriceTiers(ctx context.Context, productID pgtype.UUID) ([]db.PriceTier, error)
}

// Service serves product lookups for the register. Detail payloads are cached
// briefly; the register hits the same handful of products all day.
type Service struct {
	queries      queryProvider
	cache        *Cache
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries      queryProvider
	Cache        *Cache
	DefaultLimit int
	MaxLimit     int
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("catalog: queries are required")
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 20
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 100
	}
	return &Service{
		queries:      cfg.Queries,
		cache:        cfg.Cache,
		defaultLimit: cfg.DefaultLimit,
		maxLimit:     cfg.MaxLimit,
	}, nil
}

// TierView is one published quantity break.
type TierView struct {
	MinQty    int   `json:"minQty"`
	UnitPrice int64 `json:"unitPrice"`
}

// ProductView is the register-facing product payload.
type ProductView struct {
	ID        string     `json:"id"`
	SKU       string     `json:"sku"`
	Name      string     `json:"name"`
	BasePrice int64      `json:"basePrice"`
	Stock     int        `json:"stock"`
	Barcode   *string    `json:"barcode,omitempty"`
	Active    bool       `json:"active"`
	Tiers     []TierView `json:"tiers"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ListParams captures product listing filters.
type ListParams struct {
	Search string
	Page   int
	Limit  int
}

// List returns a page of products without tier detail.
func (s *Service) List(ctx context.Context, p ListParams) ([]ProductView, int64, error) {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = s.defaultLimit
	}
	if p.Limit > s.maxLimit {
		p.Limit = s.maxLimit
	}
	rows, err := s.queries.ListProducts(ctx, db.ListProductsParams{
		Search: p.Search,
		Limit:  int32(p.Limit),
		Offset: int32((p.Page - 1) * p.Limit),
	})
	if err != nil {
		return nil, 0, err
	}
	total, err := s.queries.CountProducts(ctx, p.Search)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ProductView, 0, len(rows))
	for _, row := range rows {
		out = append(out, productView(row, nil))
	}
	return out, total, nil
}

// Get returns one product with its quantity breaks, cached.
func (s *Service) Get(ctx context.Context, id string) (ProductView, error) {
	pid, err := db.ToUUID(id)
	if err != nil {
		return ProductView{}, common.ValidationError("invalid product id", nil)
	}
	cacheKey := ProductKey(id)
	var cached ProductView
	if ok, err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && ok {
		return cached, nil
	}
	product, err := s.queries.GetProduct(ctx, pid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProductView{}, common.NotFoundError("product not found")
		}
		return ProductView{}, err
	}
	tiers, err := s.queries.ListPriceTiers(ctx, product.ID)
	if err != nil {
		return ProductView{}, err
	}
	view := productView(product, tiers)
	_ = s.cache.SetJSON(ctx, cacheKey, view)
	return view, nil
}

// GetByBarcode resolves a scanned barcode to a product with tiers. Barcode
// lookups skip the cache; a scan is already a point read.
func (s *Service) GetByBarcode(ctx context.Context, barcode string) (ProductView, error) {
	if barcode == "" {
		return ProductView{}, common.ValidationError("barcode required", nil)
	}
	product, err := s.queries.GetProductByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProductView{}, common.NotFoundError("product not found")
		}
		return ProductView{}, err
	}
	tiers, err := s.queries.ListPriceTiers(ctx, product.ID)
	if err != nil {
		return ProductView{}, err
	}
	return productView(product, tiers), nil
}

func productView(p db.Product, tiers []db.PriceTier) ProductView {
	view := ProductView{
		ID:        db.UUIDString(p.ID),
		SKU:       p.SKU,
		Name:      p.Name,
		BasePrice: p.BasePrice,
		Stock:     int(p.Stock),
		Active:    p.Active,
		Tiers:     make([]TierView, 0, len(tiers)),
		UpdatedAt: p.UpdatedAt.Time,
	}
	if p.Barcode.Valid {
		view.Barcode = &p.Barcode.String
	}
	for _, t := range tiers {
		view.Tiers = append(view.Tiers, TierView{MinQty: int(t.MinQty), UnitPrice: t.UnitPrice})
	}
	return view
}
