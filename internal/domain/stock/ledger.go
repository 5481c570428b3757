package stock

import (
	"fmt"
	"sort"
	"time"

	"invoicely/internal/core/apperror"
	"invoicely/internal/core/id"
	"invoicely/internal/core/types"
)

// Ledger is the ordered movement history of one product.
// Entries are only ever appended; callers receive copies.
// A Ledger is not safe for concurrent use.
type Ledger struct {
	productID id.Ref
	movements []Movement
}

// NewLedger creates an empty ledger for a product.
func NewLedger(productID id.Ref) *Ledger {
	return &Ledger{productID: productID}
}

// LoadLedger rebuilds a ledger from backend history, oldest first.
// It fails on the first movement that does not continue the running balance.
func LoadLedger(productID id.Ref, history []Movement) (*Ledger, error) {
	sorted := make([]Movement, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	l := NewLedger(productID)
	for _, m := range sorted {
		if err := l.Append(m); err != nil {
			return l, err
		}
	}
	return l, nil
}

// ProductID returns the product the ledger belongs to.
func (l *Ledger) ProductID() id.Ref { return l.productID }

// Len returns the number of movements.
func (l *Ledger) Len() int { return len(l.movements) }

// Current returns the stock after the most recent movement, or zero when empty.
func (l *Ledger) Current() types.Quantity {
	if len(l.movements) == 0 {
		return 0
	}
	return l.movements[len(l.movements)-1].StockAfter
}

// Movements returns a copy of the history, oldest first.
func (l *Ledger) Movements() []Movement {
	out := make([]Movement, len(l.movements))
	copy(out, l.movements)
	return out
}

// Last returns the most recent movement.
func (l *Ledger) Last() (Movement, bool) {
	if len(l.movements) == 0 {
		return Movement{}, false
	}
	return l.movements[len(l.movements)-1], true
}

// Append adds m after checking it belongs to this product, starts at the current
// balance and obeys StockAfter = StockBefore + SignedQuantity.
func (l *Ledger) Append(m Movement) error {
	if m.ProductID != l.productID {
		return apperror.NewValidation("movement belongs to another product").
			WithDetail("product", l.productID.String()).
			WithDetail("movement_product", m.ProductID.String())
	}
	if !m.Type.IsValid() {
		return apperror.NewValidation(fmt.Sprintf("movement %d: unknown type %q", len(l.movements)+1, m.Type))
	}
	if len(l.movements) > 0 && m.StockBefore != l.Current() {
		return apperror.NewConflict("movement does not continue the running balance").
			WithDetail("index", len(l.movements)).
			WithDetail("expected_before", l.Current().String()).
			WithDetail("stock_before", m.StockBefore.String())
	}
	if !m.IsConsistent() {
		return apperror.NewConflict("movement arithmetic does not match its type").
			WithDetail("index", len(l.movements)).
			WithDetail("movement_type", string(m.Type)).
			WithDetail("stock_before", m.StockBefore.String()).
			WithDetail("stock_after", m.StockAfter.String())
	}

	l.movements = append(l.movements, m)
	return nil
}

// Record applies req to the current balance and appends the resulting movement.
func (l *Ledger) Record(req AdjustmentRequest, at time.Time) (Movement, error) {
	if req.ProductID.IsZero() {
		req.ProductID = l.productID
	}
	adj, err := Adjust(l.Current(), req, at)
	if err != nil {
		return Movement{}, err
	}
	if err := l.Append(adj.Movement); err != nil {
		return Movement{}, err
	}
	return adj.Movement, nil
}
