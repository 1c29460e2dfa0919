package pricing

import "github.com/google/uuid"

// Line describes a cart line entering the compositor.
type Line struct {
	ProductID uuid.UUID
	Name      string
	BasePrice Money
	Tiers     []Tier
	Qty       int
	Note      string
}

// CalcLine is a priced line inside a Calculation snapshot.
type CalcLine struct {
	ProductID    uuid.UUID `json:"productId"`
	Name         string    `json:"name"`
	Qty          int       `json:"qty"`
	BasePrice    Money     `json:"basePrice"`
	UnitPrice    Money     `json:"unitPrice"`
	ItemDiscount Money     `json:"itemDiscount"`
	LineSubtotal Money     `json:"lineSubtotal"`
	Note         string    `json:"note,omitempty"`
}

// Calculation aggregates the full pricing breakdown for a cart. It is
// recomputed wholesale on every cart mutation and never patched in place.
type Calculation struct {
	Items              []CalcLine `json:"items"`
	SubTotal           Money      `json:"subTotal"`
	ItemDiscount       Money      `json:"itemDiscount"`
	MemberDiscount     Money      `json:"memberDiscount"`
	AdditionalDiscount Money      `json:"additionalDiscount"`
	Tax                Money      `json:"tax"`
	GrandTotal         Money      `json:"grandTotal"`
	DiscountClamped    bool       `json:"discountClamped,omitempty"`
}

// Compose prices every line and stacks the three discount sources in their
// fixed order: tier discounts per line, then the member percentage on the
// tier-discounted subtotal, then the flat additional discount. The member
// percentage never sees the pre-tier base total, and the additional discount
// does not shrink the member discount base.
func Compose(lines []Line, memberPercent int, additionalDiscount Money, taxBps int) Calculation {
	if memberPercent < 0 {
		memberPercent = 0
	}
	if memberPercent > 100 {
		memberPercent = 100
	}

	calc := Calculation{Items: make([]CalcLine, 0, len(lines))}
	for _, ln := range lines {
		qty := ln.Qty
		if qty < 1 {
			continue
		}
		base := ResolveUnitPrice(ln.Tiers, ln.BasePrice, 1)
		unit := ResolveUnitPrice(ln.Tiers, ln.BasePrice, qty)
		itemDiscount := (base - unit) * Money(qty)
		if itemDiscount < 0 {
			itemDiscount = 0
		}
		lineSubtotal := unit * Money(qty)
		calc.Items = append(calc.Items, CalcLine{
			ProductID:    ln.ProductID,
			Name:         ln.Name,
			Qty:          qty,
			BasePrice:    base,
			UnitPrice:    unit,
			ItemDiscount: itemDiscount,
			LineSubtotal: lineSubtotal,
			Note:         ln.Note,
		})
		calc.SubTotal += lineSubtotal
		calc.ItemDiscount += itemDiscount
	}

	calc.MemberDiscount = calc.SubTotal * Money(memberPercent) / 100

	if additionalDiscount < 0 {
		additionalDiscount = 0
	}
	if additionalDiscount > calc.SubTotal {
		additionalDiscount = calc.SubTotal
		calc.DiscountClamped = true
	}
	calc.AdditionalDiscount = additionalDiscount

	taxable := calc.SubTotal - calc.MemberDiscount - calc.AdditionalDiscount
	if taxable < 0 {
		taxable = 0
	}
	if taxBps > 0 {
		calc.Tax = taxable * Money(taxBps) / 10000
	}

	total := calc.SubTotal - calc.MemberDiscount - calc.AdditionalDiscount + calc.Tax
	if total < 0 {
		total = 0
	}
	calc.GrandTotal = total
	return calc
}
