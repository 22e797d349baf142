package httpgin

import (
	"time"

	"github.com/aerostay/bookflow/internal/booking"
	"github.com/aerostay/bookflow/internal/domain"
	"github.com/aerostay/bookflow/internal/service/session"
)

type SetLocationRequest struct {
	LocationID int64 `json:"location_id" binding:"required"`
}

type SetScheduleRequest struct {
	CheckInDatetime int64  `json:"check_in_datetime" binding:"required"` // epoch seconds
	DurationHours   int    `json:"duration_hours" binding:"required,gt=0"`
	Promotion       string `json:"promotion"`
}

type AddRoomRequest struct {
	RoomTypeID string `json:"room_type_id" binding:"required"`
	Quantity   int    `json:"quantity"`
}

type BackRequest struct {
	Stage string `json:"stage" binding:"required"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type LocationResponse struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Area       string   `json:"area"`
	Address    string   `json:"address"`
	Phone      string   `json:"phone,omitempty"`
	Facilities []string `json:"facilities,omitempty"`
}

type ScheduleResponse struct {
	CheckIn       *time.Time `json:"check_in,omitempty"`
	DurationHours int        `json:"duration_hours,omitempty"`
	Promotion     string     `json:"promotion,omitempty"`
}

type LineItemResponse struct {
	RoomTypeID    string  `json:"room_type_id"`
	Name          string  `json:"name"`
	DurationHours int     `json:"duration_hours"`
	UnitPrice     float64 `json:"unit_price"`
	Quantity      int     `json:"quantity"`
	BedType       string  `json:"bed_type"`
	Capacity      string  `json:"capacity"`
	Zone          string  `json:"zone,omitempty"`
}

type PaymentInfoResponse struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
}

type SessionResponse struct {
	SessionID  string              `json:"session_id"`
	Stage      string              `json:"stage"`
	Location   *LocationResponse   `json:"location,omitempty"`
	Schedule   ScheduleResponse    `json:"schedule"`
	Items      []LineItemResponse  `json:"items"`
	RoomCount  int                 `json:"room_count"`
	Payment    PaymentInfoResponse `json:"payment"`
	CatalogHot bool                `json:"catalog_current"`
}

type RoomTypeResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Zone           string  `json:"zone,omitempty"`
	BedType        string  `json:"bed_type"`
	Capacity       string  `json:"capacity"`
	Price          float64 `json:"price"`
	AvailableCount int     `json:"available_count"`
	Selected       int     `json:"selected"`
	StayFeature    string  `json:"stay_feature,omitempty"`
}

type RoomListResponse struct {
	Rooms []RoomTypeResponse `json:"rooms"`
}

type SummaryLineResponse struct {
	LineItemResponse
	LineTotal   float64 `json:"line_total"`
	StayFeature string  `json:"stay_feature,omitempty"`
}

type SummaryResponse struct {
	SessionID  string                `json:"session_id"`
	Location   *LocationResponse     `json:"location,omitempty"`
	Schedule   ScheduleResponse      `json:"schedule"`
	Lines      []SummaryLineResponse `json:"lines"`
	RoomCount  int                   `json:"room_count"`
	Subtotal   float64               `json:"subtotal"`
	TaxPercent string                `json:"tax_percent"`
	Tax        float64               `json:"tax"`
	Total      float64               `json:"total"`
	Promotion  string                `json:"promotion,omitempty"`
}

func toMoney(cents int64) float64 {
	return float64(cents) / 100
}

func toLocationResponse(loc *domain.Location) *LocationResponse {
	if loc == nil {
		return nil
	}
	return &LocationResponse{
		ID:         loc.ID,
		Name:       loc.Name,
		Area:       loc.Area,
		Address:    loc.Address,
		Phone:      loc.Phone,
		Facilities: loc.Facilities,
	}
}

func toScheduleResponse(s domain.Schedule) ScheduleResponse {
	return ScheduleResponse{
		CheckIn:       s.CheckIn,
		DurationHours: s.DurationHours,
		Promotion:     s.Promotion,
	}
}

func toLineItemResponse(item domain.LineItem) LineItemResponse {
	return LineItemResponse{
		RoomTypeID:    item.RoomTypeID,
		Name:          item.Name,
		DurationHours: item.DurationHours,
		UnitPrice:     toMoney(item.UnitPriceCents),
		Quantity:      item.Quantity,
		BedType:       item.BedType,
		Capacity:      item.Capacity,
		Zone:          item.Zone,
	}
}

func toSessionResponse(sess *domain.Session, info domain.PaymentInfo) SessionResponse {
	items := make([]LineItemResponse, 0, len(sess.Items))
	count := 0
	for _, item := range sess.Items {
		items = append(items, toLineItemResponse(item))
		count += item.Quantity
	}

	return SessionResponse{
		SessionID: sess.ID.String(),
		Stage:     string(sess.Stage),
		Location:  toLocationResponse(sess.Location),
		Schedule:  toScheduleResponse(sess.Schedule),
		Items:     items,
		RoomCount: count,
		Payment: PaymentInfoResponse{
			Subtotal: toMoney(info.SubtotalCents),
			Tax:      toMoney(info.TaxCents),
			Total:    toMoney(info.TotalCents),
		},
		CatalogHot: sess.CatalogCurrent(),
	}
}

func toRoomListResponse(sess *domain.Session) RoomListResponse {
	ledger := booking.NewLedger(sess.Items...)
	feature := booking.MatchStayFeature(sess.Schedule.DurationHours)

	rooms := make([]RoomTypeResponse, 0, len(sess.Rooms))
	for _, r := range sess.Rooms {
		rooms = append(rooms, RoomTypeResponse{
			ID:             r.ID,
			Name:           r.Name,
			Zone:           r.Zone,
			BedType:        r.BedType,
			Capacity:       r.Capacity,
			Price:          toMoney(r.PriceCents),
			AvailableCount: r.AvailableCount,
			Selected:       ledger.QuantityOf(r.ID),
			StayFeature:    string(feature),
		})
	}

	return RoomListResponse{Rooms: rooms}
}

func toSummaryResponse(sum *session.Summary, taxPercent string) SummaryResponse {
	lines := make([]SummaryLineResponse, 0, len(sum.Lines))
	count := 0
	for _, l := range sum.Lines {
		lines = append(lines, SummaryLineResponse{
			LineItemResponse: toLineItemResponse(l.LineItem),
			LineTotal:        toMoney(l.LineTotalCents),
			StayFeature:      string(l.Feature),
		})
		count += l.Quantity
	}

	return SummaryResponse{
		SessionID:  sum.Session.ID.String(),
		Location:   toLocationResponse(sum.Session.Location),
		Schedule:   toScheduleResponse(sum.Session.Schedule),
		Lines:      lines,
		RoomCount:  count,
		Subtotal:   toMoney(sum.Payment.SubtotalCents),
		TaxPercent: taxPercent,
		Tax:        toMoney(sum.Payment.TaxCents),
		Total:      toMoney(sum.Payment.TotalCents),
		Promotion:  sum.Session.Schedule.Promotion,
	}
}
