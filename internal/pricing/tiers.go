package pricing

import "sort"

// Money represents a monetary value stored in minor units.
type Money = int64

// Tier is a quantity threshold price for a product. The tier with the
// largest MinQty not exceeding the purchased quantity applies.
type Tier struct {
	MinQty    int   `json:"minQty"`
	UnitPrice Money `json:"unitPrice"`
}

// ResolveUnitPrice maps a quantity to the applicable unit price. Tiers may
// arrive in any order. When no tier qualifies the smallest tier applies, and
// when the product has no tiers at all the base price is used. The function
// is pure; callers invoke it twice per line, once at qty=1 for the reference
// price and once at the purchased quantity.
func ResolveUnitPrice(tiers []Tier, basePrice Money, qty int) Money {
	if len(tiers) == 0 {
		return basePrice
	}
	if qty < 1 {
		qty = 1
	}
	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinQty < sorted[j].MinQty })

	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].MinQty <= qty {
			return sorted[i].UnitPrice
		}
	}
	return sorted[0].UnitPrice
}
