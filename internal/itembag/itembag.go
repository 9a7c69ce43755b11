// Package itembag derives the itemized list a payment request carries from an
// order: line items plus non-included adjustments, reconciled against the
// order total.
package itembag

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jmauzyk/commerce-omnipay/internal/commerce"
	"github.com/jmauzyk/commerce-omnipay/internal/currency"
	"github.com/jmauzyk/commerce-omnipay/internal/diag"
)

// Item is one entry of the item bag.
type Item struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// Builder produces item bags. Mismatch diagnostics go to the configured sink.
type Builder struct {
	sink diag.Sink
}

// NewBuilder creates a Builder. A nil sink discards diagnostics.
func NewBuilder(sink diag.Sink) *Builder {
	if sink == nil {
		sink = diag.Discard{}
	}
	return &Builder{sink: sink}
}

// Build returns the ordered item list for an order. Zero-rounded-price line
// items and adjustments are skipped (providers reject zero-amount lines), as
// are included adjustments, which are already folded into unit prices.
//
// The summed item total is compared against the order's rounded total price;
// a mismatch is reported as a diagnostic and the list is returned anyway.
// Some providers tolerate informational drift, others reject silently, and
// blocking checkout for cross-currency rounding differences would be worse
// than either. An empty order yields an empty list.
func (b *Builder) Build(ctx context.Context, order *commerce.Order) []Item {
	var items []Item

	priceCheck := decimal.Zero
	count := -1

	for _, line := range order.LineItems {
		price := currency.Round(line.SalePrice, order.Currency)
		if price == 0 {
			continue
		}
		count++

		description := line.Snapshot
		if description == "" {
			if line.Purchasable != nil {
				description = line.Purchasable.Description()
			} else {
				description = fmt.Sprintf("Item ID %d", line.ID)
			}
		}
		if description == "" {
			description = fmt.Sprintf("Item %d", count)
		}

		items = append(items, Item{
			Name:        description,
			Description: description,
			Quantity:    line.Qty,
			Price:       price,
		})

		priceCheck = priceCheck.Add(
			decimal.NewFromInt(int64(line.Qty)).Mul(decimal.NewFromFloat(line.SalePrice)))
	}

	count = -1

	for _, adj := range order.Adjustments {
		price := currency.Round(adj.Amount, order.Currency)
		if adj.Included || price == 0 {
			continue
		}
		count++

		name := adj.Name
		if name == "" {
			name = fmt.Sprintf("%s %d", adj.Type, count)
		}
		description := adj.Description
		if description == "" {
			description = fmt.Sprintf("%s %d", adj.Type, count)
		}

		items = append(items, Item{
			Name:        name,
			Description: description,
			Quantity:    1,
			Price:       price,
		})

		priceCheck = priceCheck.Add(decimal.NewFromFloat(adj.Amount))
	}

	itemTotal := currency.RoundDecimal(priceCheck, order.Currency)
	orderTotal := currency.RoundDecimal(decimal.NewFromFloat(order.TotalPrice), order.Currency)

	if !itemTotal.Equal(orderTotal) {
		it, _ := itemTotal.Float64()
		ot, _ := orderTotal.Float64()
		b.sink.Report(ctx, diag.Diagnostic{
			Kind:       diag.KindReconciliationMismatch,
			OrderID:    order.ID,
			Currency:   order.Currency,
			OrderTotal: ot,
			ItemTotal:  it,
			Message:    "item bag total does not equal the order total; some payment gateways will complain",
		})
	}

	return items
}
