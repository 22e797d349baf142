package booking

import (
	"math"

	"github.com/aerostay/bookflow/internal/domain"
)

// Quote derives payment totals from the ledger and a tax rate (a decimal
// fraction, e.g. 0.06 for 6%). It is a pure function of its inputs and is
// recomputed after every ledger mutation; nothing is cached.
func Quote(l *Ledger, taxRate float64) domain.PaymentInfo {
	var subtotal int64
	for _, item := range l.Items() {
		subtotal += item.UnitPriceCents * int64(item.Quantity)
	}

	tax := roundHalfUp(float64(subtotal) * taxRate)

	return domain.PaymentInfo{
		SubtotalCents: subtotal,
		TaxCents:      tax,
		TotalCents:    subtotal + tax,
	}
}

// LineTotalCents is the extended price of a single ledger entry.
func LineTotalCents(item domain.LineItem) int64 {
	return item.UnitPriceCents * int64(item.Quantity)
}

// roundHalfUp rounds to the nearest cent, halves away from zero, which is
// the usual convention for currency display.
func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5))
}
