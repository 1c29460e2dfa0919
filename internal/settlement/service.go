package settlement

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/pricing"
)

// ErrMemberRequired is returned when an under-tendered sale has no member.
// Walk-in customers cannot carry debt.
var ErrMemberRequired = errors.New("a registered member is required to settle as receivable")

// ErrEmptyCart is returned when settlement is attempted with no lines.
var ErrEmptyCart = errors.New("cart is empty")

// InputLine is one submitted cart line. Prices are never taken from the
// client; only product identity and quantity are.
// maxLineQty bounds a single line's quantity, merged duplicates included.
// Anything beyond it is a typo or a hostile payload, not a sale.
const maxLineQty = 1_000_000

type InputLine struct {
	ProductID string `json:"productId" validate:"required,uuid4"`
	Qty       int    `json:"qty" validate:"required,min=1,max=1000000"`
	Note      string `json:"note"`
}

// Input is a settlement request.
type Input struct {
	Lines              []InputLine `json:"lines" validate:"required,min=1,dive"`
	MemberID           *string     `json:"memberId" validate:"omitempty,uuid4"`
	AdditionalDiscount int64       `json:"additionalDiscount" validate:"min=0"`
	PaymentMethod      string      `json:"paymentMethod" validate:"required,oneof=CASH TRANSFER QRIS DEBIT"`
	AmountTendered     int64       `json:"amountTendered" validate:"min=0"`
	CashierID          string      `json:"-"`
	AttendantID        *string     `json:"attendantId" validate:"omitempty"`
}

// PreviewInput is the advisory calculation request.
type PreviewInput struct {
	Lines              []InputLine `json:"lines" validate:"required,min=1,dive"`
	MemberID           *string     `json:"memberId" validate:"omitempty,uuid4"`
	AdditionalDiscount int64       `json:"additionalDiscount" validate:"min=0"`
}

// SaleView is the API shape of a persisted sale.
type SaleView struct {
	ID                 string     `json:"id"`
	InvoiceNo          string     `json:"invoiceNo"`
	MemberID           *string    `json:"memberId,omitempty"`
	CashierID          string     `json:"cashierId"`
	AttendantID        *string    `json:"attendantId,omitempty"`
	SubTotal           int64      `json:"subTotal"`
	ItemDiscount       int64      `json:"itemDiscount"`
	MemberDiscount     int64      `json:"memberDiscount"`
	AdditionalDiscount int64      `json:"additionalDiscount"`
	Tax                int64      `json:"tax"`
	GrandTotal         int64      `json:"grandTotal"`
	PaymentMethod      string     `json:"paymentMethod"`
	AmountTendered     int64      `json:"amountTendered"`
	Change             int64      `json:"change"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"createdAt"`
	Lines              []LineView `json:"lines,omitempty"`
}

// LineView is the API shape of one sale line.
type LineView struct {
	ProductID    string `json:"productId"`
	Name         string `json:"name"`
	Qty          int    `json:"qty"`
	BasePrice    int64  `json:"basePrice"`
	UnitPrice    int64  `json:"unitPrice"`
	ItemDiscount int64  `json:"itemDiscount"`
	LineSubtotal int64  `json:"lineSubtotal"`
	Note         string `json:"note,omitempty"`
}

// ReceivableView is the API shape of a receivable.
type ReceivableView struct {
	ID         string `json:"id"`
	SaleID     string `json:"saleId"`
	MemberID   string `json:"memberId"`
	AmountDue  int64  `json:"amountDue"`
	AmountPaid int64  `json:"amountPaid"`
	Status     string `json:"status"`
}

// Result is the full settlement response.
type Result struct {
	Outcome     Outcome             `json:"outcome"`
	Sale        SaleView            `json:"sale"`
	Receivable  *ReceivableView     `json:"receivable,omitempty"`
	Change      int64               `json:"change"`
	Calculation pricing.Calculation `json:"calculation"`
}

// CacheInvalidator evicts cached product payloads after a stock mutation.
type CacheInvalidator interface {
	InvalidateProduct(ctx context.Context, productID string)
}

// Service recomputes a submitted cart server-side and persists the sale,
// its lines, the stock deduction, and any receivable as one transaction.
type Service struct {
	Q      *db.Queries
	Pool   *pgxpool.Pool
	TaxBps int
	Cache  CacheInvalidator
	Logger zerolog.Logger
	Now    func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Preview runs the compositor over current catalog data without locking or
// persisting anything. The result is advisory only.
func (s *Service) Preview(ctx context.Context, in PreviewInput) (pricing.Calculation, error) {
	if s == nil || s.Q == nil {
		return pricing.Calculation{}, errors.New("settlement service not configured")
	}
	if len(in.Lines) == 0 {
		return pricing.Calculation{}, common.ValidationError(ErrEmptyCart.Error(), nil)
	}
	memberPercent, _, err := s.resolveMember(ctx, s.Q, in.MemberID)
	if err != nil {
		return pricing.Calculation{}, err
	}
	lines, _, err := s.loadLines(ctx, s.Q, in.Lines, false)
	if err != nil {
		return pricing.Calculation{}, err
	}
	return pricing.Compose(lines, memberPercent, in.AdditionalDiscount, s.TaxBps), nil
}

// Settle finalizes a cart into a persisted sale. The client-computed total
// never enters this path; everything is recomputed from locked product rows.
func (s *Service) Settle(ctx context.Context, in Input) (Result, error) {
	if s == nil || s.Q == nil || s.Pool == nil {
		return Result{}, errors.New("settlement service not configured")
	}
	if len(in.Lines) == 0 {
		return Result{}, common.ValidationError(ErrEmptyCart.Error(), nil)
	}
	if in.AmountTendered < 0 {
		return Result{}, common.ValidationError("amount tendered must not be negative", nil)
	}
	if in.CashierID == "" {
		return Result{}, common.ValidationError("cashier id required", nil)
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	qtx := s.Q.WithTx(tx)

	memberPercent, member, err := s.resolveMember(ctx, qtx, in.MemberID)
	if err != nil {
		return Result{}, err
	}

	lines, _, err := s.loadLines(ctx, qtx, in.Lines, true)
	if err != nil {
		return Result{}, translateTxError(err)
	}

	calc := pricing.Compose(lines, memberPercent, in.AdditionalDiscount, s.TaxBps)
	if calc.DiscountClamped {
		obs.DiscountClampTotal.Inc()
		s.Logger.Warn().
			Int64("requested", in.AdditionalDiscount).
			Int64("applied", calc.AdditionalDiscount).
			Msg("additional discount clamped to subtotal")
	}

	decision := Decide(calc.GrandTotal, in.AmountTendered)
	if decision.Outcome == OutcomeReceivable && member == nil {
		return Result{}, common.ValidationError(ErrMemberRequired.Error(), nil)
	}

	status := db.SaleStatusPaid
	if decision.Outcome == OutcomeReceivable {
		status = db.SaleStatusUnpaid
	}
	var memberID pgtype.UUID
	if member != nil {
		memberID = member.ID
	}
	var attendant pgtype.Text
	if in.AttendantID != nil && *in.AttendantID != "" {
		attendant = pgtype.Text{String: *in.AttendantID, Valid: true}
	}

	sale, err := qtx.CreateSale(ctx, db.CreateSaleParams{
		InvoiceNo:          s.invoiceNo(),
		MemberID:           memberID,
		CashierID:          in.CashierID,
		AttendantID:        attendant,
		SubTotal:           calc.SubTotal,
		ItemDiscount:       calc.ItemDiscount,
		MemberDiscount:     calc.MemberDiscount,
		AdditionalDiscount: calc.AdditionalDiscount,
		Tax:                calc.Tax,
		GrandTotal:         calc.GrandTotal,
		PaymentMethod:      in.PaymentMethod,
		AmountTendered:     in.AmountTendered,
		Change:             decision.Change,
		Status:             status,
	})
	if err != nil {
		return Result{}, translateTxError(err)
	}

	for _, item := range calc.Items {
		var note pgtype.Text
		if item.Note != "" {
			note = pgtype.Text{String: item.Note, Valid: true}
		}
		if err := qtx.CreateSaleLine(ctx, db.CreateSaleLineParams{
			SaleID:       sale.ID,
			ProductID:    db.FromUUID(item.ProductID),
			Name:         item.Name,
			Qty:          int32(item.Qty),
			BasePrice:    item.BasePrice,
			UnitPrice:    item.UnitPrice,
			ItemDiscount: item.ItemDiscount,
			LineSubtotal: item.LineSubtotal,
			Note:         note,
		}); err != nil {
			return Result{}, translateTxError(err)
		}
		if err := qtx.DecrementStock(ctx, db.DecrementStockParams{
			ID:  db.FromUUID(item.ProductID),
			Qty: int32(item.Qty),
		}); err != nil {
			return Result{}, translateTxError(err)
		}
	}

	var receivable *ReceivableView
	if decision.Outcome == OutcomeReceivable {
		recStatus := db.ReceivableStatusUnpaid
		if in.AmountTendered > 0 {
			recStatus = db.ReceivableStatusPartiallyPaid
		}
		rec, err := qtx.CreateReceivable(ctx, db.CreateReceivableParams{
			SaleID:     sale.ID,
			MemberID:   memberID,
			AmountDue:  calc.GrandTotal,
			AmountPaid: in.AmountTendered,
			Status:     recStatus,
		})
		if err != nil {
			return Result{}, translateTxError(err)
		}
		receivable = &ReceivableView{
			ID:         db.UUIDString(rec.ID),
			SaleID:     db.UUIDString(rec.SaleID),
			MemberID:   db.UUIDString(rec.MemberID),
			AmountDue:  rec.AmountDue,
			AmountPaid: rec.AmountPaid,
			Status:     rec.Status,
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Result{}, translateTxError(err)
	}

	if s.Cache != nil {
		for _, item := range calc.Items {
			s.Cache.InvalidateProduct(ctx, item.ProductID.String())
		}
	}

	obs.SettlementTotal.WithLabelValues(string(decision.Outcome), in.PaymentMethod).Inc()
	s.Logger.Info().
		Str("sale_id", db.UUIDString(sale.ID)).
		Str("invoice_no", sale.InvoiceNo).
		Str("outcome", string(decision.Outcome)).
		Int64("grand_total", calc.GrandTotal).
		Int64("tendered", in.AmountTendered).
		Msg("sale settled")

	return Result{
		Outcome:     decision.Outcome,
		Sale:        saleView(sale, calc.Items),
		Receivable:  receivable,
		Change:      decision.Change,
		Calculation: calc,
	}, nil
}

// GetSale loads a sale with its line snapshots.
func (s *Service) GetSale(ctx context.Context, id string) (SaleView, error) {
	sid, err := db.ToUUID(id)
	if err != nil {
		return SaleView{}, common.ValidationError("invalid sale id", nil)
	}
	sale, err := s.Q.GetSale(ctx, sid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return SaleView{}, common.NotFoundError("sale not found")
		}
		return SaleView{}, err
	}
	rows, err := s.Q.ListSaleLines(ctx, sale.ID)
	if err != nil {
		return SaleView{}, err
	}
	view := saleView(sale, nil)
	view.Lines = make([]LineView, 0, len(rows))
	for _, ln := range rows {
		view.Lines = append(view.Lines, LineView{
			ProductID:    db.UUIDString(ln.ProductID),
			Name:         ln.Name,
			Qty:          int(ln.Qty),
			BasePrice:    ln.BasePrice,
			UnitPrice:    ln.UnitPrice,
			ItemDiscount: ln.ItemDiscount,
			LineSubtotal: ln.LineSubtotal,
			Note:         ln.Note.String,
		})
	}
	return view, nil
}

type storeQueries interface {
	GetMember(ctx context.Context, id pgtype.UUID) (db.Member, error)
	GetProduct(ctx context.Context, id pgtype.UUID) (db.Product, error)
	GetProductForUpdate(ctx context.Context, id pgtype.UUID) (db.Product, error)
	ListPriceTiers(ctx context.Context, productID pgtype.UUID) ([]db.PriceTier, error)
}

func (s *Service) resolveMember(ctx context.Context, q storeQueries, memberID *string) (int, *db.Member, error) {
	if memberID == nil || *memberID == "" {
		return 0, nil, nil
	}
	mid, err := db.ToUUID(*memberID)
	if err != nil {
		return 0, nil, common.ValidationError("invalid member id", nil)
	}
	member, err := q.GetMember(ctx, mid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil, common.NotFoundError("member not found")
		}
		return 0, nil, err
	}
	return int(member.DiscountPercent), &member, nil
}

type shortLine struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// loadLines resolves submitted lines against the catalog. With lock=true the
// product rows stay locked until commit; stock shortage is then fatal. Lines
// are processed in product-id order so two settlements touching the same
// products lock rows in the same sequence.
func (s *Service) loadLines(ctx context.Context, q storeQueries, in []InputLine, lock bool) ([]pricing.Line, []db.Product, error) {
	merged := make(map[string]InputLine, len(in))
	for _, ln := range in {
		if ln.Qty < 1 {
			return nil, nil, common.ValidationError(fmt.Sprintf("quantity for product %s must be positive", ln.ProductID), nil)
		}
		if prev, ok := merged[ln.ProductID]; ok {
			prev.Qty += ln.Qty
			merged[ln.ProductID] = prev
			continue
		}
		merged[ln.ProductID] = ln
	}
	for id, ln := range merged {
		if ln.Qty > maxLineQty {
			return nil, nil, common.ValidationError(fmt.Sprintf("quantity for product %s exceeds the per-line maximum of %d", id, maxLineQty), nil)
		}
	}
	ids := make([]string, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var (
		lines    []pricing.Line
		products []db.Product
		short    []shortLine
	)
	for _, id := range ids {
		ln := merged[id]
		pid, err := db.ToUUID(ln.ProductID)
		if err != nil {
			return nil, nil, common.ValidationError(fmt.Sprintf("invalid product id %q", ln.ProductID), nil)
		}
		var product db.Product
		if lock {
			product, err = q.GetProductForUpdate(ctx, pid)
		} else {
			product, err = q.GetProduct(ctx, pid)
		}
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, nil, common.NotFoundError(fmt.Sprintf("product %s not found", ln.ProductID))
			}
			return nil, nil, err
		}
		if lock && ln.Qty > int(product.Stock) {
			short = append(short, shortLine{
				ProductID: ln.ProductID,
				Name:      product.Name,
				Requested: ln.Qty,
				Available: int(product.Stock),
			})
			continue
		}
		tiers, err := q.ListPriceTiers(ctx, pid)
		if err != nil {
			return nil, nil, err
		}
		priceTiers := make([]pricing.Tier, 0, len(tiers))
		for _, t := range tiers {
			priceTiers = append(priceTiers, pricing.Tier{MinQty: int(t.MinQty), UnitPrice: t.UnitPrice})
		}
		lines = append(lines, pricing.Line{
			ProductID: db.UUIDValue(product.ID),
			Name:      product.Name,
			BasePrice: product.BasePrice,
			Tiers:     priceTiers,
			Qty:       ln.Qty,
			Note:      ln.Note,
		})
		products = append(products, product)
	}
	if len(short) > 0 {
		return nil, nil, common.InsufficientStockError("insufficient stock", short)
	}
	return lines, products, nil
}

// invoiceNo mints a timestamped invoice number. Five random bytes keep the
// within-second collision odds negligible across a fleet of tills; the
// remaining UNIQUE race surfaces as a retryable conflict in translateTxError.
func (s *Service) invoiceNo() string {
	buf := make([]byte, 5)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("POS-%s-%s", s.now().Format("20060102150405"), hex.EncodeToString(buf))
}

func saleView(sale db.Sale, items []pricing.CalcLine) SaleView {
	view := SaleView{
		ID:                 db.UUIDString(sale.ID),
		InvoiceNo:          sale.InvoiceNo,
		CashierID:          sale.CashierID,
		SubTotal:           sale.SubTotal,
		ItemDiscount:       sale.ItemDiscount,
		MemberDiscount:     sale.MemberDiscount,
		AdditionalDiscount: sale.AdditionalDiscount,
		Tax:                sale.Tax,
		GrandTotal:         sale.GrandTotal,
		PaymentMethod:      sale.PaymentMethod,
		AmountTendered:     sale.AmountTendered,
		Change:             sale.Change,
		Status:             sale.Status,
		CreatedAt:          sale.CreatedAt.Time,
	}
	if sale.MemberID.Valid {
		id := db.UUIDString(sale.MemberID)
		view.MemberID = &id
	}
	if sale.AttendantID.Valid {
		view.AttendantID = &sale.AttendantID.String
	}
	for _, item := range items {
		view.Lines = append(view.Lines, LineView{
			ProductID:    item.ProductID.String(),
			Name:         item.Name,
			Qty:          item.Qty,
			BasePrice:    item.BasePrice,
			UnitPrice:    item.UnitPrice,
			ItemDiscount: item.ItemDiscount,
			LineSubtotal: item.LineSubtotal,
			Note:         item.Note,
		})
	}
	return view
}

func translateTxError(err error) error {
	if err == nil {
		return nil
	}
	if common.IsAppError(err) {
		return err
	}
	if db.IsRetryableTxError(err) {
		return common.ConflictError("settlement lost a row race, retry the operation", err)
	}
	if db.IsUniqueViolation(err, "sales_invoice_no_key") {
		// Two tills minted the same invoice number in the same second.
		// The statement aborted the transaction, so retry the whole
		// settlement rather than the insert.
		return common.ConflictError("invoice number collision, retry the operation", err)
	}
	return err
}
