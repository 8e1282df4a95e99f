package accounting

import (
	"sort"

	"github.com/google/uuid"
)

// DiscountAllocation is one line item's share of a document-level discount
type DiscountAllocation struct {
	LineItemID uuid.UUID
	Position   int
	Amount     int64
}

// AllocateDocumentDiscount distributes a document-level discount across
// line items in proportion to their subtotals. Every item except the
// last gets its rounded proportional share; the last item by position
// absorbs whatever remains, so the allocated sum always equals the
// discount exactly. The remainder must never be recomputed per item.
//
// Iteration order is the persisted Position, not display order, so the
// allocation is deterministic under reordering. A zero subtotal sum
// yields no allocations.
func AllocateDocumentDiscount(items []LineItem, totalDiscount int64) []DiscountAllocation {
	if len(items) == 0 || totalDiscount == 0 {
		return nil
	}

	ordered := make([]*LineItem, len(items))
	for i := range items {
		ordered[i] = &items[i]
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	var subtotalSum int64
	for _, item := range ordered {
		subtotalSum += item.Subtotal.Amount()
	}
	if subtotalSum == 0 {
		return nil
	}

	allocations := make([]DiscountAllocation, 0, len(ordered))
	remaining := totalDiscount
	for i, item := range ordered {
		var allocated int64
		if i == len(ordered)-1 {
			allocated = remaining
		} else {
			allocated = roundedShare(item.Subtotal.Amount(), subtotalSum, totalDiscount)
			remaining -= allocated
		}
		allocations = append(allocations, DiscountAllocation{
			LineItemID: item.ID,
			Position:   item.Position,
			Amount:     allocated,
		})
	}

	return allocations
}

// roundedShare computes round(subtotal / subtotalSum * total) in integer
// arithmetic, half away from zero.
func roundedShare(subtotal, subtotalSum, total int64) int64 {
	n := subtotal * total
	half := subtotalSum / 2
	if (n < 0) != (subtotalSum < 0) {
		return (n - half) / subtotalSum
	}
	return (n + half) / subtotalSum
}
