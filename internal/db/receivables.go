package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

const receivableColumns = `id, sale_id, member_id, amount_due, amount_paid, status, created_at, updated_at`

func scanReceivable(row interface{ Scan(...any) error }) (Receivable, error) {
	var r Receivable
	err := row.Scan(&r.ID, &r.SaleID, &r.MemberID, &r.AmountDue, &r.AmountPaid, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

// CreateReceivableParams carries the initial ledger state of a receivable.
type CreateReceivableParams struct {
	SaleID     pgtype.UUID
	MemberID   pgtype.UUID
	AmountDue  int64
	AmountPaid int64
	Status     string
}

// CreateReceivable inserts a receivable row.
func (q *Queries) CreateReceivable(ctx context.Context, arg CreateReceivableParams) (Receivable, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO receivables (sale_id, member_id, amount_due, amount_paid, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+receivableColumns,
		arg.SaleID, arg.MemberID, arg.AmountDue, arg.AmountPaid, arg.Status)
	return scanReceivable(row)
}

// GetReceivable fetches a receivable by id.
func (q *Queries) GetReceivable(ctx context.Context, id pgtype.UUID) (Receivable, error) {
	row := q.db.QueryRow(ctx, `SELECT `+receivableColumns+` FROM receivables WHERE id = $1`, id)
	return scanReceivable(row)
}

// GetReceivableForUpdate locks the receivable row so the read-check-write of
// a payment is one serialized unit.
func (q *Queries) GetReceivableForUpdate(ctx context.Context, id pgtype.UUID) (Receivable, error) {
	row := q.db.QueryRow(ctx, `SELECT `+receivableColumns+` FROM receivables WHERE id = $1 FOR UPDATE`, id)
	return scanReceivable(row)
}

// UpdateReceivableProgressParams carries the recomputed ledger state.
type UpdateReceivableProgressParams struct {
	ID         pgtype.UUID
	AmountPaid int64
	Status     string
}

// UpdateReceivableProgress persists a new amount-paid/status pair.
func (q *Queries) UpdateReceivableProgress(ctx context.Context, arg UpdateReceivableProgressParams) (Receivable, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE receivables SET amount_paid = $2, status = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+receivableColumns, arg.ID, arg.AmountPaid, arg.Status)
	return scanReceivable(row)
}

// ListReceivablesParams filters the receivable listing.
type ListReceivablesParams struct {
	Status   string
	MemberID pgtype.UUID
	Search   string
	Limit    int32
	Offset   int32
}

func receivableFilter(arg ListReceivablesParams) (string, []any) {
	conds := []string{"1=1"}
	args := []any{}
	n := 0
	if arg.Status != "" {
		n++
		conds = append(conds, fmt.Sprintf("r.status = $%d", n))
		args = append(args, arg.Status)
	}
	if arg.MemberID.Valid {
		n++
		conds = append(conds, fmt.Sprintf("r.member_id = $%d", n))
		args = append(args, arg.MemberID)
	}
	if arg.Search != "" {
		n++
		conds = append(conds, fmt.Sprintf("(m.name ILIKE '%%' || $%d || '%%' OR m.code ILIKE '%%' || $%d || '%%' OR s.invoice_no ILIKE '%%' || $%d || '%%')", n, n, n))
		args = append(args, arg.Search)
	}
	return strings.Join(conds, " AND "), args
}

// ListReceivables returns receivables joined with member and invoice data.
func (q *Queries) ListReceivables(ctx context.Context, arg ListReceivablesParams) ([]ReceivableListRow, error) {
	where, args := receivableFilter(arg)
	sql := fmt.Sprintf(`
		SELECT r.id, r.sale_id, r.member_id, r.amount_due, r.amount_paid, r.status, r.created_at, r.updated_at,
			m.code, m.name, s.invoice_no
		FROM receivables r
		JOIN members m ON m.id = r.member_id
		JOIN sales s ON s.id = r.sale_id
		WHERE %s
		ORDER BY r.created_at DESC, r.id
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)
	args = append(args, arg.Limit, arg.Offset)

	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ReceivableListRow
	for rows.Next() {
		var r ReceivableListRow
		if err := rows.Scan(&r.ID, &r.SaleID, &r.MemberID, &r.AmountDue, &r.AmountPaid, &r.Status,
			&r.CreatedAt, &r.UpdatedAt, &r.MemberCode, &r.MemberName, &r.InvoiceNo); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountReceivables counts receivables matching the same filters as ListReceivables.
func (q *Queries) CountReceivables(ctx context.Context, arg ListReceivablesParams) (int64, error) {
	where, args := receivableFilter(arg)
	sql := fmt.Sprintf(`
		SELECT count(*)
		FROM receivables r
		JOIN members m ON m.id = r.member_id
		JOIN sales s ON s.id = r.sale_id
		WHERE %s`, where)
	var total int64
	err := q.db.QueryRow(ctx, sql, args...).Scan(&total)
	return total, err
}

// CreateReceivablePaymentParams journals one accepted payment.
type CreateReceivablePaymentParams struct {
	ReceivableID  pgtype.UUID
	Amount        int64
	PaymentMethod string
	CashierID     string
}

// CreateReceivablePayment records a payment in the journal.
func (q *Queries) CreateReceivablePayment(ctx context.Context, arg CreateReceivablePaymentParams) (ReceivablePayment, error) {
	var p ReceivablePayment
	err := q.db.QueryRow(ctx, `
		INSERT INTO receivable_payments (receivable_id, amount, payment_method, cashier_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, receivable_id, amount, payment_method, cashier_id, created_at`,
		arg.ReceivableID, arg.Amount, arg.PaymentMethod, arg.CashierID).
		Scan(&p.ID, &p.ReceivableID, &p.Amount, &p.PaymentMethod, &p.CashierID, &p.CreatedAt)
	return p, err
}

// ListReceivablePayments returns a receivable's payment history, oldest first.
func (q *Queries) ListReceivablePayments(ctx context.Context, receivableID pgtype.UUID) ([]ReceivablePayment, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, receivable_id, amount, payment_method, cashier_id, created_at
		FROM receivable_payments WHERE receivable_id = $1 ORDER BY created_at, id`, receivableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ReceivablePayment
	for rows.Next() {
		var p ReceivablePayment
		if err := rows.Scan(&p.ID, &p.ReceivableID, &p.Amount, &p.PaymentMethod, &p.CashierID, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
