package settlement

import "github.com/noah-isme/backend-pos/internal/pricing"

// Outcome of a settlement attempt.
type Outcome string

const (
	// OutcomePaid means the tendered amount covered the grand total.
	OutcomePaid Outcome = "PAID"
	// OutcomeReceivable means the sale was persisted as member debt.
	OutcomeReceivable Outcome = "RECEIVABLE"
)

// Decision is the pure payment outcome for a given total and tender.
type Decision struct {
	Outcome Outcome
	Change  pricing.Money
	Owed    pricing.Money
}

// Decide resolves the payment outcome. Tendering exactly the grand total is
// PAID with zero change; one unit short is a receivable for the full total.
func Decide(grandTotal, amountTendered pricing.Money) Decision {
	if amountTendered >= grandTotal {
		return Decision{Outcome: OutcomePaid, Change: amountTendered - grandTotal}
	}
	return Decision{Outcome: OutcomeReceivable, Owed: grandTotal - amountTendered}
}
