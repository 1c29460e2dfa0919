package db

import "github.com/jackc/pgx/v5/pgtype"

// Sale status values. A sale is UNPAID exactly while its receivable is open.
const (
	SaleStatusPaid   = "PAID"
	SaleStatusUnpaid = "UNPAID"
)

// Receivable status values; PAID is terminal.
const (
	ReceivableStatusUnpaid        = "UNPAID"
	ReceivableStatusPartiallyPaid = "PARTIALLY_PAID"
	ReceivableStatusPaid          = "PAID"
)

type Product struct {
	ID        pgtype.UUID
	SKU       string
	Name      string
	BasePrice int64
	Stock     int32
	Barcode   pgtype.Text
	Active    bool
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type PriceTier struct {
	ID        pgtype.UUID
	ProductID pgtype.UUID
	MinQty    int32
	UnitPrice int64
}

type Member struct {
	ID              pgtype.UUID
	Code            string
	Name            string
	DiscountPercent int32
	Active          bool
	CreatedAt       pgtype.Timestamptz
}

type Sale struct {
	ID                 pgtype.UUID
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
	CreatedAt          pgtype.Timestamptz
}

type SaleLine struct {
	ID           pgtype.UUID
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

type Receivable struct {
	ID         pgtype.UUID
	SaleID     pgtype.UUID
	MemberID   pgtype.UUID
	AmountDue  int64
	AmountPaid int64
	Status     string
	CreatedAt  pgtype.Timestamptz
	UpdatedAt  pgtype.Timestamptz
}

// ReceivableListRow joins a receivable with its member and sale invoice for listings.
type ReceivableListRow struct {
	Receivable
	MemberCode string
	MemberName string
	InvoiceNo  string
}

type ReceivablePayment struct {
	ID            pgtype.UUID
	ReceivableID  pgtype.UUID
	Amount        int64
	PaymentMethod string
	CashierID     string
	CreatedAt     pgtype.Timestamptz
}
