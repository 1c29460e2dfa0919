package receivable

import (
	"fmt"

	"github.com/noah-isme/backend-pos/internal/common"
	"github.com/noah-isme/backend-pos/internal/db"
)

// NextStatus derives the receivable status from its balance. Status is never
// stored independently of the amounts it summarizes.
func NextStatus(amountPaid, amountDue int64) string {
	switch {
	case amountPaid >= amountDue:
		return db.ReceivableStatusPaid
	case amountPaid > 0:
		return db.ReceivableStatusPartiallyPaid
	default:
		return db.ReceivableStatusUnpaid
	}
}

// ValidatePayment checks a proposed payment against the open balance. The
// remainder is reported back so the client can correct an overpayment without
// a second round trip.
func ValidatePayment(amount, amountPaid, amountDue int64) error {
	if amount <= 0 {
		return common.ValidationError("payment amount must be positive", nil)
	}
	remaining := amountDue - amountPaid
	if remaining <= 0 {
		return common.ValidationError("receivable is already settled", nil)
	}
	if amount > remaining {
		return common.ValidationError(
			fmt.Sprintf("payment of %d exceeds remaining balance of %d", amount, remaining),
			map[string]int64{"maxAcceptable": remaining},
		)
	}
	return nil
}
