package cart

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-pos/internal/obs"
	"github.com/noah-isme/backend-pos/internal/pricing"
)

// ErrLineNotFound indicates the referenced product is not in the cart.
var ErrLineNotFound = errors.New("cart line not found")

// Line is a mutable cart entry owned by exactly one Cart.
type Line struct {
	ProductID    uuid.UUID
	Name         string
	BasePrice    pricing.Money
	Tiers        []pricing.Tier
	StockCeiling int
	Qty          int
	Note         string
}

// Warning surfaces a clamp that was applied instead of failing the mutation.
type Warning struct {
	ProductID uuid.UUID `json:"productId"`
	Message   string    `json:"message"`
}

// Snapshot is the read-only view of a cart after a mutation.
type Snapshot struct {
	Empty       bool                `json:"empty"`
	Calculation pricing.Calculation `json:"calculation"`
	Warnings    []Warning           `json:"warnings,omitempty"`
}

// Cart aggregates the line items of one in-progress sale. Every mutation
// re-runs the compositor and replaces the whole calculation; incremental
// updates are not possible because a quantity change can shift the tier of
// its own line and the member-discount base of all lines.
type Cart struct {
	mu                 sync.Mutex
	lines              []Line
	memberPercent      int
	additionalDiscount pricing.Money
	taxBps             int
	calc               *pricing.Calculation
	warnings           []Warning
}

// New constructs an empty cart.
func New(taxBps int) *Cart {
	return &Cart{taxBps: taxBps}
}

// AddLine inserts a line or, when the product is already present, raises its
// quantity. Quantities clamp to [1, stock ceiling]; the clamp is reported as
// a warning, never an error, so the attendant keeps the line.
func (c *Cart) AddLine(ln Line) error {
	if ln.ProductID == uuid.Nil {
		return errors.New("product id required")
	}
	if ln.StockCeiling < 1 {
		return fmt.Errorf("product %s is out of stock", ln.Name)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ProductID == ln.ProductID {
			c.lines[i].Qty = c.clampQty(ln.ProductID, c.lines[i].Qty+ln.Qty, c.lines[i].StockCeiling)
			if ln.Note != "" {
				c.lines[i].Note = ln.Note
			}
			c.recalculate()
			return nil
		}
	}
	ln.Qty = c.clampQty(ln.ProductID, ln.Qty, ln.StockCeiling)
	c.lines = append(c.lines, ln)
	c.recalculate()
	return nil
}

// UpdateQty sets the quantity for a product, clamped to the stock ceiling.
func (c *Cart) UpdateQty(productID uuid.UUID, qty int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Qty = c.clampQty(productID, qty, c.lines[i].StockCeiling)
			c.recalculate()
			return nil
		}
	}
	return ErrLineNotFound
}

// RemoveLine drops a product from the cart.
func (c *Cart) RemoveLine(productID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			c.recalculate()
			return nil
		}
	}
	return ErrLineNotFound
}

// SetMemberPercent applies the member's discount percentage to the cart.
func (c *Cart) SetMemberPercent(percent int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memberPercent = percent
	c.recalculate()
}

// SetAdditionalDiscount applies the flat additional discount amount.
func (c *Cart) SetAdditionalDiscount(amount pricing.Money) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.additionalDiscount = amount
	c.recalculate()
}

// Lines returns a copy of the current cart lines.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Snapshot returns the current calculation state. The warnings accumulated
// since the previous snapshot are drained.
func (c *Cart) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{Empty: c.calc == nil}
	if c.calc != nil {
		snap.Calculation = *c.calc
	}
	if len(c.warnings) > 0 {
		snap.Warnings = c.warnings
		c.warnings = nil
	}
	return snap
}

// clampQty bounds qty to [1, ceiling] recording a warning when the ceiling bit.
func (c *Cart) clampQty(productID uuid.UUID, qty, ceiling int) int {
	if qty < 1 {
		qty = 1
	}
	if ceiling > 0 && qty > ceiling {
		obs.CartClampTotal.Inc()
		c.warnings = append(c.warnings, Warning{
			ProductID: productID,
			Message:   fmt.Sprintf("quantity clamped to available stock %d", ceiling),
		})
		return ceiling
	}
	return qty
}

// recalculate rebuilds the whole calculation. Caller holds the lock.
func (c *Cart) recalculate() {
	if len(c.lines) == 0 {
		c.calc = nil
		return
	}
	lines := make([]pricing.Line, 0, len(c.lines))
	for _, ln := range c.lines {
		lines = append(lines, pricing.Line{
			ProductID: ln.ProductID,
			Name:      ln.Name,
			BasePrice: ln.BasePrice,
			Tiers:     ln.Tiers,
			Qty:       ln.Qty,
			Note:      ln.Note,
		})
	}
	calc := pricing.Compose(lines, c.memberPercent, c.additionalDiscount, c.taxBps)
	c.calc = &calc
}
