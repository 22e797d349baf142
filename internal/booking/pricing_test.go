package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aerostay/bookflow/internal/domain"
)

func TestQuote(t *testing.T) {
	t.Run("reference totals at 6% tax", func(t *testing.T) {
		// Two singles at RM155 and one queen at RM185 for the same stay.
		l := NewLedger(
			domain.LineItem{RoomTypeID: "Female Single", UnitPriceCents: 15500, Quantity: 2},
			domain.LineItem{RoomTypeID: "Queen", UnitPriceCents: 18500, Quantity: 1},
		)

		info := Quote(l, 0.06)

		assert.Equal(t, int64(49500), info.SubtotalCents)
		assert.Equal(t, int64(2970), info.TaxCents)
		assert.Equal(t, int64(52470), info.TotalCents)
	})

	t.Run("empty ledger quotes zero", func(t *testing.T) {
		info := Quote(NewLedger(), 0.06)

		assert.Zero(t, info.SubtotalCents)
		assert.Zero(t, info.TaxCents)
		assert.Zero(t, info.TotalCents)
	})

	t.Run("tax rounds half up to cents", func(t *testing.T) {
		// 101 * 0.065 = 6.565 -> 657 cents, not 656.
		l := NewLedger(domain.LineItem{RoomTypeID: "x", UnitPriceCents: 10100, Quantity: 1})

		info := Quote(l, 0.065)

		assert.Equal(t, int64(657), info.TaxCents)
		assert.Equal(t, int64(10757), info.TotalCents)
	})

	t.Run("subtotal tracks every mutation", func(t *testing.T) {
		l := NewLedger()
		item := domain.LineItem{RoomTypeID: "Queen", UnitPriceCents: 18500, Quantity: 1}

		l.Add(item)
		assert.Equal(t, int64(18500), Quote(l, 0).SubtotalCents)

		l.Add(item)
		assert.Equal(t, int64(37000), Quote(l, 0).SubtotalCents)

		l.Remove(item.RoomTypeID)
		assert.Equal(t, int64(18500), Quote(l, 0).SubtotalCents)
	})
}

func TestLineTotalCents(t *testing.T) {
	item := domain.LineItem{UnitPriceCents: 15500, Quantity: 3}
	assert.Equal(t, int64(46500), LineTotalCents(item))
}
