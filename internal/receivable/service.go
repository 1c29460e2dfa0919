package receivable

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
	"github.com/noah-isme/backend-pos/internal/obs"
)

// View is the API shape of a receivable with member context.
type View struct {
	ID              string    `json:"id"`
	SaleID          string    `json:"saleId"`
	InvoiceNo       string    `json:"invoiceNo,omitempty"`
	MemberID        string    `json:"memberId"`
	MemberCode      string    `json:"memberCode,omitempty"`
	MemberName      string    `json:"memberName,omitempty"`
	AmountDue       int64     `json:"amountDue"`
	AmountPaid      int64     `json:"amountPaid"`
	RemainingAmount int64     `json:"remainingAmount"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// PaymentView is one journaled payment.
type PaymentView struct {
	ID            string    `json:"id"`
	Amount        int64     `json:"amount"`
	PaymentMethod string    `json:"paymentMethod"`
	CashierID     string    `json:"cashierId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Detail bundles a receivable with its payment history.
type Detail struct {
	Receivable View          `json:"receivable"`
	Payments   []PaymentView `json:"payments"`
}

// PaymentInput is a request to pay down a receivable.
type PaymentInput struct {
	Amount        int64  `json:"amount" validate:"required,min=1"`
	PaymentMethod string `json:"paymentMethod" validate:"required,oneof=CASH TRANSFER QRIS DEBIT"`
	CashierID     string `json:"-"`
}

// PaymentResult returns the updated ledger state after a payment.
type PaymentResult struct {
	Receivable      View  `json:"receivable"`
	RemainingAmount int64 `json:"remainingAmount"`
}

// ListFilter narrows the receivable listing.
type ListFilter struct {
	Status   string
	MemberID string
	Search   string
}

// Service owns the receivable ledger. Payments run under a row lock so two
// cashiers collecting the same debt cannot overshoot the balance together.
type Service struct {
	Q      *db.Queries
	Pool   *pgxpool.Pool
	Logger zerolog.Logger
}

// List returns open and settled receivables, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter, p common.Pagination) ([]View, int64, error) {
	if s == nil || s.Q == nil {
		return nil, 0, errors.New("receivable service not configured")
	}
	if filter.Status != "" {
		switch filter.Status {
		case db.ReceivableStatusUnpaid, db.ReceivableStatusPartiallyPaid, db.ReceivableStatusPaid:
		default:
			return nil, 0, common.ValidationError("unknown receivable status", nil)
		}
	}
	var memberID pgtype.UUID
	if filter.MemberID != "" {
		id, err := db.ToUUID(filter.MemberID)
		if err != nil {
			return nil, 0, common.ValidationError("invalid member id", nil)
		}
		memberID = id
	}
	params := db.ListReceivablesParams{
		Status:   filter.Status,
		MemberID: memberID,
		Search:   filter.Search,
		Limit:    int32(p.PerPage),
		Offset:   int32((p.Page - 1) * p.PerPage),
	}
	rows, err := s.Q.ListReceivables(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Q.CountReceivables(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	views := make([]View, 0, len(rows))
	for _, row := range rows {
		v := view(row.Receivable)
		v.MemberCode = row.MemberCode
		v.MemberName = row.MemberName
		v.InvoiceNo = row.InvoiceNo
		views = append(views, v)
	}
	return views, total, nil
}

// Get returns one receivable with its full payment history.
func (s *Service) Get(ctx context.Context, id string) (Detail, error) {
	if s == nil || s.Q == nil {
		return Detail{}, errors.New("receivable service not configured")
	}
	rid, err := db.ToUUID(id)
	if err != nil {
		return Detail{}, common.ValidationError("invalid receivable id", nil)
	}
	rec, err := s.Q.GetReceivable(ctx, rid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Detail{}, common.NotFoundError("receivable not found")
		}
		return Detail{}, err
	}
	payments, err := s.Q.ListReceivablePayments(ctx, rec.ID)
	if err != nil {
		return Detail{}, err
	}
	out := Detail{Receivable: view(rec), Payments: make([]PaymentView, 0, len(payments))}
	for _, p := range payments {
		out.Payments = append(out.Payments, PaymentView{
			ID:            db.UUIDString(p.ID),
			Amount:        p.Amount,
			PaymentMethod: p.PaymentMethod,
			CashierID:     p.CashierID,
			CreatedAt:     p.CreatedAt.Time,
		})
	}
	return out, nil
}

// ApplyPayment validates and records a payment against a receivable. The row
// stays locked until commit; the balance check, the journal entry, the status
// transition, and the sale flip all land or none do.
func (s *Service) ApplyPayment(ctx context.Context, id string, in PaymentInput) (PaymentResult, error) {
	if s == nil || s.Q == nil || s.Pool == nil {
		return PaymentResult{}, errors.New("receivable service not configured")
	}
	rid, err := db.ToUUID(id)
	if err != nil {
		return PaymentResult{}, common.ValidationError("invalid receivable id", nil)
	}
	if in.CashierID == "" {
		return PaymentResult{}, common.ValidationError("cashier id required", nil)
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return PaymentResult{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	qtx := s.Q.WithTx(tx)

	rec, err := qtx.GetReceivableForUpdate(ctx, rid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PaymentResult{}, common.NotFoundError("receivable not found")
		}
		return PaymentResult{}, translateTxError(err)
	}

	if err := ValidatePayment(in.Amount, rec.AmountPaid, rec.AmountDue); err != nil {
		obs.ReceivablePaymentTotal.WithLabelValues("rejected").Inc()
		return PaymentResult{}, err
	}

	if _, err := qtx.CreateReceivablePayment(ctx, db.CreateReceivablePaymentParams{
		ReceivableID:  rec.ID,
		Amount:        in.Amount,
		PaymentMethod: in.PaymentMethod,
		CashierID:     in.CashierID,
	}); err != nil {
		return PaymentResult{}, translateTxError(err)
	}

	newPaid := rec.AmountPaid + in.Amount
	newStatus := NextStatus(newPaid, rec.AmountDue)
	updated, err := qtx.UpdateReceivableProgress(ctx, db.UpdateReceivableProgressParams{
		ID:         rec.ID,
		AmountPaid: newPaid,
		Status:     newStatus,
	})
	if err != nil {
		return PaymentResult{}, translateTxError(err)
	}

	if newStatus == db.ReceivableStatusPaid {
		if err := qtx.MarkSalePaid(ctx, rec.SaleID); err != nil {
			return PaymentResult{}, translateTxError(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return PaymentResult{}, translateTxError(err)
	}

	obs.ReceivablePaymentTotal.WithLabelValues("accepted").Inc()
	s.Logger.Info().
		Str("receivable_id", db.UUIDString(rec.ID)).
		Int64("amount", in.Amount).
		Str("status", newStatus).
		Msg("receivable payment recorded")

	v := view(updated)
	return PaymentResult{Receivable: v, RemainingAmount: v.RemainingAmount}, nil
}

func view(rec db.Receivable) View {
	return View{
		ID:              db.UUIDString(rec.ID),
		SaleID:          db.UUIDString(rec.SaleID),
		MemberID:        db.UUIDString(rec.MemberID),
		AmountDue:       rec.AmountDue,
		AmountPaid:      rec.AmountPaid,
		RemainingAmount: rec.AmountDue - rec.AmountPaid,
		Status:          rec.Status,
		CreatedAt:       rec.CreatedAt.Time,
		UpdatedAt:       rec.UpdatedAt.Time,
	}
}

func translateTxError(err error) error {
	if err == nil || common.IsAppError(err) {
		return err
	}
	if db.IsRetryableTxError(err) {
		return common.ConflictError("payment lost a row race, retry the operation", err)
	}
	return err
}
