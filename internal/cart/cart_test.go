package cart

import (
	"testing"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-pos/internal/pricing"
)

func testLine(stock, qty int) Line {
	return Line{
		ProductID:    uuid.New(),
		Name:         "soap",
		BasePrice:    2000,
		StockCeiling: stock,
		Qty:          qty,
	}
}

func TestEmptyCartHasNoCalculation(t *testing.T) {
	c := New(0)
	snap := c.Snapshot()
	if !snap.Empty {
		t.Fatal("expected empty snapshot")
	}
}

func TestAddLineProducesCalculation(t *testing.T) {
	c := New(0)
	if err := c.AddLine(testLine(10, 2)); err != nil {
		t.Fatalf("add line: %v", err)
	}
	snap := c.Snapshot()
	if snap.Empty {
		t.Fatal("expected populated snapshot")
	}
	if snap.Calculation.SubTotal != 4000 {
		t.Fatalf("expected subtotal 4000, got %d", snap.Calculation.SubTotal)
	}
}

func TestQuantityClampedToStockCeiling(t *testing.T) {
	c := New(0)
	ln := testLine(5, 3)
	if err := c.AddLine(ln); err != nil {
		t.Fatalf("add line: %v", err)
	}
	if err := c.UpdateQty(ln.ProductID, 9); err != nil {
		t.Fatalf("update qty: %v", err)
	}
	snap := c.Snapshot()
	if got := snap.Calculation.Items[0].Qty; got != 5 {
		t.Fatalf("expected qty clamped to 5, got %d", got)
	}
	if len(snap.Warnings) != 1 {
		t.Fatalf("expected 1 clamp warning, got %d", len(snap.Warnings))
	}
}

func TestAddExistingLineAccumulatesAndClamps(t *testing.T) {
	c := New(0)
	ln := testLine(4, 3)
	if err := c.AddLine(ln); err != nil {
		t.Fatalf("add line: %v", err)
	}
	ln.Qty = 3
	if err := c.AddLine(ln); err != nil {
		t.Fatalf("re-add line: %v", err)
	}
	snap := c.Snapshot()
	if got := snap.Calculation.Items[0].Qty; got != 4 {
		t.Fatalf("expected accumulated qty clamped to 4, got %d", got)
	}
	if len(snap.Warnings) == 0 {
		t.Fatal("expected a clamp warning")
	}
}

func TestRemoveLastLineEmptiesCart(t *testing.T) {
	c := New(0)
	ln := testLine(10, 1)
	if err := c.AddLine(ln); err != nil {
		t.Fatalf("add line: %v", err)
	}
	if err := c.RemoveLine(ln.ProductID); err != nil {
		t.Fatalf("remove line: %v", err)
	}
	if snap := c.Snapshot(); !snap.Empty {
		t.Fatal("expected empty snapshot after removing last line")
	}
}

func TestRemoveUnknownLine(t *testing.T) {
	c := New(0)
	if err := c.RemoveLine(uuid.New()); err != ErrLineNotFound {
		t.Fatalf("expected ErrLineNotFound, got %v", err)
	}
}

func TestQuantityChangeShiftsTierForWholeCart(t *testing.T) {
	c := New(0)
	ln := Line{
		ProductID:    uuid.New(),
		Name:         "rice",
		Tiers:        []pricing.Tier{{MinQty: 1, UnitPrice: 10000}, {MinQty: 3, UnitPrice: 9000}},
		StockCeiling: 50,
		Qty:          2,
	}
	if err := c.AddLine(ln); err != nil {
		t.Fatalf("add line: %v", err)
	}
	c.SetMemberPercent(10)
	before := c.Snapshot().Calculation
	if before.SubTotal != 20000 || before.MemberDiscount != 2000 {
		t.Fatalf("unexpected pre-change calc: %+v", before)
	}

	if err := c.UpdateQty(ln.ProductID, 3); err != nil {
		t.Fatalf("update qty: %v", err)
	}
	after := c.Snapshot().Calculation
	if after.SubTotal != 27000 {
		t.Fatalf("expected tier shift to 9000/unit, got subtotal %d", after.SubTotal)
	}
	if after.MemberDiscount != 2700 {
		t.Fatalf("expected member discount recomputed to 2700, got %d", after.MemberDiscount)
	}
}

func TestOutOfStockLineRejected(t *testing.T) {
	c := New(0)
	if err := c.AddLine(testLine(0, 1)); err == nil {
		t.Fatal("expected error for zero stock ceiling")
	}
}
