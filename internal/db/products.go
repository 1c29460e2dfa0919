package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const productColumns = `id, sku, name, base_price, stock, barcode, active, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.BasePrice, &p.Stock, &p.Barcode, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// GetProduct fetches an active product by id.
func (q *Queries) GetProduct(ctx context.Context, id pgtype.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 AND active`, id)
	return scanProduct(row)
}

// GetProductByBarcode fetches an active product by barcode.
func (q *Queries) GetProductByBarcode(ctx context.Context, barcode string) (Product, error) {
	row := q.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE barcode = $1 AND active`, barcode)
	return scanProduct(row)
}

// GetProductForUpdate locks the product row for the duration of the transaction.
func (q *Queries) GetProductForUpdate(ctx context.Context, id pgtype.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 AND active FOR UPDATE`, id)
	return scanProduct(row)
}

// ListProductsParams filters the paginated product listing.
type ListProductsParams struct {
	Search string
	Limit  int32
	Offset int32
}

// ListProducts returns active products filtered by a name/sku search term.
func (q *Queries) ListProducts(ctx context.Context, arg ListProductsParams) ([]Product, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE active AND ($1 = '' OR name ILIKE '%' || $1 || '%' OR sku ILIKE '%' || $1 || '%')
		ORDER BY name
		LIMIT $2 OFFSET $3`, arg.Search, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountProducts counts active products matching the search term.
func (q *Queries) CountProducts(ctx context.Context, search string) (int64, error) {
	var total int64
	err := q.db.QueryRow(ctx, `
		SELECT count(*) FROM products
		WHERE active AND ($1 = '' OR name ILIKE '%' || $1 || '%' OR sku ILIKE '%' || $1 || '%')`, search).Scan(&total)
	return total, err
}

// ListPriceTiers returns a product's tiers ordered by min quantity.
func (q *Queries) ListPriceTiers(ctx context.Context, productID pgtype.UUID) ([]PriceTier, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, product_id, min_qty, unit_price FROM price_tiers
		WHERE product_id = $1 ORDER BY min_qty`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PriceTier
	for rows.Next() {
		var t PriceTier
		if err := rows.Scan(&t.ID, &t.ProductID, &t.MinQty, &t.UnitPrice); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DecrementStockParams identifies the product and quantity to deduct.
type DecrementStockParams struct {
	ID  pgtype.UUID
	Qty int32
}

// DecrementStock deducts sold quantity from the locked product row.
func (q *Queries) DecrementStock(ctx context.Context, arg DecrementStockParams) error {
	_, err := q.db.Exec(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1`, arg.ID, arg.Qty)
	return err
}
