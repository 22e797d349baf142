package domain

import (
	"time"

	"github.com/google/uuid"
)

// Stage is one step of the booking wizard.
type Stage string

const (
	StageLocation      Stage = "location"
	StageSchedule      Stage = "schedule"
	StageRoomSelection Stage = "room_selection"
	StageSummary       Stage = "summary"
	StagePayment       Stage = "payment"
)

// Location is a hotel outlet. Immutable for the lifetime of a booking
// session once selected.
type Location struct {
	ID         int64
	Name       string
	Area       string
	Address    string
	Phone      string
	LotID      int64
	Facilities []string
}

// Schedule carries the chosen check-in time and stay duration. Zero values
// mean "not chosen yet".
type Schedule struct {
	CheckIn       *time.Time
	DurationHours int
	Promotion     string
}

func (s Schedule) Complete() bool {
	return s.CheckIn != nil && s.DurationHours > 0
}

// RoomType is one fetched catalog entry. Read-only per fetch.
type RoomType struct {
	ID             string
	Name           string
	Zone           string
	BedType        string
	Capacity       string
	MaxPax         int
	PriceCents     int64
	AvailableCount int
}

// LineItem is one room type's chosen quantity within a session.
type LineItem struct {
	RoomTypeID     string
	Name           string
	DurationHours  int
	UnitPriceCents int64
	Quantity       int
	BedType        string
	Capacity       string
	Zone           string
}

// PaymentInfo is derived from the ledger and never stored on its own.
type PaymentInfo struct {
	SubtotalCents int64
	TaxCents      int64
	TotalCents    int64
}

// Session is the canonical booking-flow state: the selected outlet, the
// schedule and the room-selection ledger, plus the last committed room
// catalog snapshot.
//
// CatalogRev increments whenever location or schedule changes; RoomsRev
// records the revision a committed Rooms snapshot was fetched for. The
// snapshot is current only while the two match. A fetch that completes
// for an older revision is discarded.
type Session struct {
	ID       uuid.UUID
	Stage    Stage
	Location *Location
	Schedule Schedule
	Items    []LineItem

	Rooms      []RoomType
	CatalogRev int64
	RoomsRev   int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CatalogCurrent reports whether the committed room snapshot reflects the
// session's current location and schedule.
func (s *Session) CatalogCurrent() bool {
	return s.Rooms != nil && s.RoomsRev == s.CatalogRev
}
