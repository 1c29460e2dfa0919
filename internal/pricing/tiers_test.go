package pricing

import "testing"

func TestResolveUnitPriceTierSelection(t *testing.T) {
	tiers := []Tier{
		{MinQty: 1, UnitPrice: 1000},
		{MinQty: 5, UnitPrice: 900},
		{MinQty: 10, UnitPrice: 800},
	}
	cases := []struct {
		qty  int
		want Money
	}{
		{1, 1000},
		{4, 1000},
		{5, 900},
		{7, 900},
		{10, 800},
		{20, 800},
	}
	for _, tc := range cases {
		if got := ResolveUnitPrice(tiers, 1200, tc.qty); got != tc.want {
			t.Fatalf("qty %d: expected %d, got %d", tc.qty, tc.want, got)
		}
	}
}

func TestResolveUnitPriceUnorderedInput(t *testing.T) {
	tiers := []Tier{
		{MinQty: 10, UnitPrice: 800},
		{MinQty: 1, UnitPrice: 1000},
		{MinQty: 5, UnitPrice: 900},
	}
	if got := ResolveUnitPrice(tiers, 1200, 7); got != 900 {
		t.Fatalf("expected 900, got %d", got)
	}
}

func TestResolveUnitPriceBelowSmallestTier(t *testing.T) {
	tiers := []Tier{
		{MinQty: 3, UnitPrice: 950},
		{MinQty: 6, UnitPrice: 850},
	}
	if got := ResolveUnitPrice(tiers, 1200, 2); got != 950 {
		t.Fatalf("expected smallest tier price 950, got %d", got)
	}
}

func TestResolveUnitPriceNoTiers(t *testing.T) {
	if got := ResolveUnitPrice(nil, 750, 4); got != 750 {
		t.Fatalf("expected base price 750, got %d", got)
	}
}

func TestResolveUnitPriceDoesNotMutateInput(t *testing.T) {
	tiers := []Tier{
		{MinQty: 10, UnitPrice: 800},
		{MinQty: 1, UnitPrice: 1000},
	}
	_ = ResolveUnitPrice(tiers, 0, 12)
	if tiers[0].MinQty != 10 || tiers[1].MinQty != 1 {
		t.Fatalf("input slice was reordered: %+v", tiers)
	}
}
