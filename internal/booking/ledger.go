package booking

import "github.com/aerostay/bookflow/internal/domain"

// Ledger is the in-memory collection of selected room-type line items.
// Entries are keyed by room type (at most one per room type) and keep
// insertion order. No entry ever holds a quantity below 1.
type Ledger struct {
	items []domain.LineItem
}

func NewLedger(items ...domain.LineItem) *Ledger {
	l := &Ledger{}
	l.items = append(l.items, items...)
	return l
}

func (l *Ledger) indexOf(roomTypeID string) int {
	for i := range l.items {
		if l.items[i].RoomTypeID == roomTypeID {
			return i
		}
	}
	return -1
}

// Add inserts the item, or increments the quantity of an existing entry
// for the same room type by the incoming quantity. Incoming quantities
// below 1 are treated as 1.
func (l *Ledger) Add(item domain.LineItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	if i := l.indexOf(item.RoomTypeID); i >= 0 {
		l.items[i].Quantity += item.Quantity
		return
	}

	l.items = append(l.items, item)
}

// AddClamped behaves like Add but never lets the resulting quantity exceed
// available. It reports whether the ledger changed: an add against an
// entry already at the availability ceiling is rejected outright.
func (l *Ledger) AddClamped(item domain.LineItem, available int) bool {
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	if i := l.indexOf(item.RoomTypeID); i >= 0 {
		q := l.items[i].Quantity + item.Quantity
		if q > available {
			q = available
		}
		if q <= l.items[i].Quantity {
			return false
		}
		l.items[i].Quantity = q
		return true
	}

	if available < 1 {
		return false
	}
	if item.Quantity > available {
		item.Quantity = available
	}
	l.items = append(l.items, item)
	return true
}

// Remove decrements the entry for roomTypeID by one and deletes it when
// the quantity would reach zero. Removing an absent room type is a no-op.
func (l *Ledger) Remove(roomTypeID string) {
	i := l.indexOf(roomTypeID)
	if i < 0 {
		return
	}

	if l.items[i].Quantity > 1 {
		l.items[i].Quantity--
		return
	}

	l.items = append(l.items[:i], l.items[i+1:]...)
}

// QuantityOf returns the chosen quantity for roomTypeID, or 0.
func (l *Ledger) QuantityOf(roomTypeID string) int {
	if i := l.indexOf(roomTypeID); i >= 0 {
		return l.items[i].Quantity
	}
	return 0
}

// TotalRoomCount is the sum of quantities across all entries.
func (l *Ledger) TotalRoomCount() int {
	var n int
	for i := range l.items {
		n += l.items[i].Quantity
	}
	return n
}

func (l *Ledger) Len() int { return len(l.items) }

// Items returns a copy of the entries in insertion order.
func (l *Ledger) Items() []domain.LineItem {
	out := make([]domain.LineItem, len(l.items))
	copy(out, l.items)
	return out
}
