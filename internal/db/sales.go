package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const saleColumns = `id, invoice_no, member_id, cashier_id, attendant_id, sub_total, item_discount,
	member_discount, additional_discount, tax, grand_total, payment_method, amount_tendered,
	change, status, created_at`

func scanSale(row interface{ Scan(...any) error }) (Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.InvoiceNo, &s.MemberID, &s.CashierID, &s.AttendantID, &s.SubTotal,
		&s.ItemDiscount, &s.MemberDiscount, &s.AdditionalDiscount, &s.Tax, &s.GrandTotal,
		&s.PaymentMethod, &s.AmountTendered, &s.Change, &s.Status, &s.CreatedAt)
	return s, err
}

// CreateSaleParams carries a fully computed sale header.
type CreateSaleParams struct {
	InvoiceNo          string
	MemberID           pgtype.UUID
	CashierID          string
	AttendantID        pgtype.Text
	SubTotal           int64
	ItemDiscount       int64
	MemberDiscount     int64
	AdditionalDiscount int64
	Tax                int64
	GrandTotal         int64
	PaymentMethod      string
	AmountTendered     int64
	Change             int64
	Status             string
}

// CreateSale inserts a sale header and returns the stored row.
func (q *Queries) CreateSale(ctx context.Context, arg CreateSaleParams) (Sale, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO sales (invoice_no, member_id, cashier_id, attendant_id, sub_total, item_discount,
			member_discount, additional_discount, tax, grand_total, payment_method, amount_tendered,
			change, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+saleColumns,
		arg.InvoiceNo, arg.MemberID, arg.CashierID, arg.AttendantID, arg.SubTotal, arg.ItemDiscount,
		arg.MemberDiscount, arg.AdditionalDiscount, arg.Tax, arg.GrandTotal, arg.PaymentMethod,
		arg.AmountTendered, arg.Change, arg.Status)
	return scanSale(row)
}

// CreateSaleLineParams carries one immutable sale line snapshot.
type CreateSaleLineParams struct {
	SaleID       pgtype.UUID
	ProductID    pgtype.UUID
	Name         string
	Qty          int32
	BasePrice    int64
	UnitPrice    int64
	ItemDiscount int64
	LineSubtotal int64
	Note         pgtype.Text
}

// CreateSaleLine inserts one line of a sale.
func (q *Queries) CreateSaleLine(ctx context.Context, arg CreateSaleLineParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO sale_lines (sale_id, product_id, name, qty, base_price, unit_price, item_discount, line_subtotal, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		arg.SaleID, arg.ProductID, arg.Name, arg.Qty, arg.BasePrice, arg.UnitPrice,
		arg.ItemDiscount, arg.LineSubtotal, arg.Note)
	return err
}

// GetSale fetches a sale header by id.
func (q *Queries) GetSale(ctx context.Context, id pgtype.UUID) (Sale, error) {
	row := q.db.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
	return scanSale(row)
}

// ListSaleLines returns the line snapshots of a sale.
func (q *Queries) ListSaleLines(ctx context.Context, saleID pgtype.UUID) ([]SaleLine, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, sale_id, product_id, name, qty, base_price, unit_price, item_discount, line_subtotal, note
		FROM sale_lines WHERE sale_id = $1 ORDER BY id`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []SaleLine
	for rows.Next() {
		var l SaleLine
		if err := rows.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.Name, &l.Qty, &l.BasePrice,
			&l.UnitPrice, &l.ItemDiscount, &l.LineSubtotal, &l.Note); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// MarkSalePaid transitions a sale to PAID. Driven only by its receivable.
func (q *Queries) MarkSalePaid(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, `UPDATE sales SET status = 'PAID' WHERE id = $1`, id)
	return err
}
