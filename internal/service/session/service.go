package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aerostay/bookflow/internal/booking"
	"github.com/aerostay/bookflow/internal/domain"
	"github.com/aerostay/bookflow/internal/repository"
)

type Config struct {
	// TaxRate is a decimal fraction, e.g. 0.06 for 6% service tax.
	TaxRate float64
}

type sessionStore interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	Save(ctx context.Context, sess *domain.Session) error
}

type roomLister interface {
	ListRooms(ctx context.Context, lotID int64, checkIn time.Time, durationHours int) ([]domain.RoomType, error)
}

type locationGetter interface {
	Get(ctx context.Context, id int64) (*domain.Location, error)
}

type checkoutPublisher interface {
	PublishCheckoutStarted(ctx context.Context, sessionID string, totalCents int64) error
}

type limiter interface {
	Allow(ctx context.Context, key string) (bool, int64, time.Duration, error)
}

// Service owns booking sessions for their whole lifetime: the selected
// outlet, the schedule, the room-selection ledger and the stage of the
// wizard. Payment totals are derived fresh on every read and never stored.
type Service struct {
	store     sessionStore
	rooms     roomLister
	locations locationGetter
	pubsub    checkoutPublisher
	limiter   limiter
	cfg       Config
}

func New(
	store sessionStore,
	rooms roomLister,
	locations locationGetter,
	pubsub checkoutPublisher,
	limiter limiter,
	cfg Config,
) *Service {
	if cfg.TaxRate <= 0 {
		cfg.TaxRate = 0.06
	}

	return &Service{
		store:     store,
		rooms:     rooms,
		locations: locations,
		pubsub:    pubsub,
		limiter:   limiter,
		cfg:       cfg,
	}
}

// Create opens a fresh booking session at the location stage.
func (s *Service) Create(ctx context.Context) (*domain.Session, error) {
	const op = "service.session.Create"

	now := time.Now().UTC()
	sess := &domain.Session{
		ID:        uuid.New(),
		Stage:     domain.StageLocation,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return sess, nil
}

// Get loads a session together with its derived payment info.
//
// Returns session.ErrSessionNotFound when the session is unknown or
// expired.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Session, domain.PaymentInfo, error) {
	const op = "service.session.Get"

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, domain.PaymentInfo{}, fmt.Errorf("%s:%w", op, err)
	}

	return sess, s.quote(sess), nil
}

// SetLocation selects the outlet for the session. Changing the outlet
// supersedes any fetched room catalog.
func (s *Service) SetLocation(ctx context.Context, id uuid.UUID, locationID int64) (*domain.Session, error) {
	const op = "service.session.SetLocation"

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	loc, err := s.locations.Get(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	sess.Location = loc
	s.supersedeCatalog(sess)

	if err := s.save(ctx, sess); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return sess, nil
}

// SetSchedule sets check-in time, stay duration and an optional promotion
// code. Changing the schedule supersedes any fetched room catalog.
func (s *Service) SetSchedule(
	ctx context.Context,
	id uuid.UUID,
	checkIn time.Time,
	durationHours int,
	promotion string,
) (*domain.Session, error) {
	const op = "service.session.SetSchedule"

	if checkIn.IsZero() || durationHours <= 0 {
		return nil, fmt.Errorf("%s:%w", op, ErrInvalidSchedule)
	}

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	checkIn = checkIn.UTC()
	sess.Schedule = domain.Schedule{
		CheckIn:       &checkIn,
		DurationHours: durationHours,
		Promotion:     promotion,
	}
	s.supersedeCatalog(sess)

	if err := s.save(ctx, sess); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return sess, nil
}

// FetchRooms pulls the room catalog for the session's current location and
// schedule and commits it to the session. A fetch that completes after the
// inputs changed is discarded: the committed snapshot always reflects the
// newest inputs.
//
// rlKey scopes rate limiting (usually the client IP); empty disables it.
func (s *Service) FetchRooms(ctx context.Context, id uuid.UUID, rlKey string) (*domain.Session, error) {
	const op = "service.session.FetchRooms"

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if sess.Location == nil {
		return nil, fmt.Errorf("%s:%w", op, ErrLocationNotSet)
	}

	if !sess.Schedule.Complete() {
		return nil, fmt.Errorf("%s:%w", op, ErrScheduleNotSet)
	}

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s:%w, retry in %s", op, ErrRateLimited, retry)
		}
	}

	rev := sess.CatalogRev

	rooms, err := s.rooms.ListRooms(ctx, sess.Location.LotID, *sess.Schedule.CheckIn, sess.Schedule.DurationHours)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	// The session may have moved on while the fetch was in flight; a
	// response for superseded inputs must not overwrite the newer state.
	cur, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if cur.CatalogRev != rev {
		return nil, fmt.Errorf("%s:%w", op, ErrFetchSuperseded)
	}

	cur.Rooms = rooms
	cur.RoomsRev = rev

	if err := s.save(ctx, cur); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return cur, nil
}

// AddRoom adds quantity of a room type from the committed catalog snapshot
// to the ledger, clamped by the snapshot's availability.
//
// Returns:
//   - session.ErrCatalogStale when no snapshot matches the current inputs
//     (a fetch is outstanding or the inputs changed).
//   - session.ErrRoomTypeUnknown when the room type is not in the snapshot.
//   - session.ErrNoAvailability when the ledger already holds every
//     available room of that type.
func (s *Service) AddRoom(ctx context.Context, id uuid.UUID, roomTypeID string, quantity int) (*domain.Session, domain.PaymentInfo, error) {
	const op = "service.session.AddRoom"

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, domain.PaymentInfo{}, fmt.Errorf("%s:%w", op, err)
	}

	if !sess.CatalogCurrent() {
		return nil, domain.PaymentInfo{}, fmt.Errorf("%s:%w", op, ErrCatalogStale)
	}

	var room *domain.RoomType
	for i := range sess.Rooms {
		if sess.Rooms[i].ID == roomTypeID {
			room = &sess.Rooms[i]
			break
		}
	}
	if room == nil {
		return nil, domain.PaymentInfo{}, fmt.Errorf("%s:%w", op, ErrRoomTypeUnknown)
	}

	ledger := booking.NewLedger(sess.Items...)
	item := domain.LineItem{
		RoomTypeID:     room.ID,
		Name:           room.Name,
		DurationHours:  sess.Schedule.DurationHours,
		UnitPriceCents: room.PriceCents,
		Quantity:       quantity,
		BedType:        room.BedType,
		Capacity:       room.Capacity,
		Zone:           room.Zone,
	}

	if !ledger.AddClamped(item, room.AvailableCount) {
		return nil, domain.PaymentInfo{}, fmt.Errorf("%s:%w", op, ErrNoAvailability)
	}

	sess.Items = ledger.Items()

	if err := s.save(ctx, sess); err != nil {
		return nil, domain.PaymentInfo{}, fmt.Errorf("%s:%w", op, err)
	}

	return sess, s.quote(sess), nil
}

// RemoveRoom decrements a room type's quantity by one, dropping the line
// item at zero. Removing an absent room type is a no-op.
func (s *Service) RemoveRoom(ctx context.Context, id uuid.UUID, roomTypeID string) (*domain.Session, domain.PaymentInfo, error) {
	const op = "service.session.RemoveRoom"

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, domain.PaymentInfo{}, fmt.Errorf("%s:%w", op, err)
	}

	ledger := booking.NewLedger(sess.Items...)
	ledger.Remove(roomTypeID)
	sess.Items = ledger.Items()

	if err := s.save(ctx, sess); err != nil {
		return nil, domain.PaymentInfo{}, fmt.Errorf("%s:%w", op, err)
	}

	return sess, s.quote(sess), nil
}

// Advance moves the session forward one stage, enforcing the stage guards.
// Entering the payment stage announces the checkout to the payment
// collaborator.
func (s *Service) Advance(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	const op = "service.session.Advance"

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := booking.Advance(sess); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := s.save(ctx, sess); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if sess.Stage == domain.StagePayment && s.pubsub != nil {
		info := s.quote(sess)
		_ = s.pubsub.PublishCheckoutStarted(ctx, sess.ID.String(), info.TotalCents)
	}

	return sess, nil
}

// Back jumps to an earlier stage without clearing any entered state.
func (s *Service) Back(ctx context.Context, id uuid.UUID, target domain.Stage) (*domain.Session, error) {
	const op = "service.session.Back"

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := booking.JumpBack(sess, target); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := s.save(ctx, sess); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return sess, nil
}

// SummaryLine is one ledger entry extended for the summary page.
type SummaryLine struct {
	domain.LineItem
	LineTotalCents int64
	Feature        booking.StayFeature
}

// Summary bundles everything the summary stage renders.
type Summary struct {
	Session *domain.Session
	Lines   []SummaryLine
	Payment domain.PaymentInfo
	TaxRate float64
}

// Summarize builds the summary view: ledger lines with extended prices and
// stay-feature icons, plus the subtotal / tax / total breakdown.
func (s *Service) Summarize(ctx context.Context, id uuid.UUID) (*Summary, error) {
	const op = "service.session.Summarize"

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	lines := make([]SummaryLine, 0, len(sess.Items))
	for _, item := range sess.Items {
		lines = append(lines, SummaryLine{
			LineItem:       item,
			LineTotalCents: booking.LineTotalCents(item),
			Feature:        booking.MatchStayFeature(item.DurationHours),
		})
	}

	return &Summary{
		Session: sess,
		Lines:   lines,
		Payment: s.quote(sess),
		TaxRate: s.cfg.TaxRate,
	}, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return sess, nil
}

func (s *Service) save(ctx context.Context, sess *domain.Session) error {
	sess.UpdatedAt = time.Now().UTC()
	return s.store.Save(ctx, sess)
}

// supersedeCatalog marks any committed room snapshot as stale. The next
// committed fetch must carry the new revision.
func (s *Service) supersedeCatalog(sess *domain.Session) {
	sess.CatalogRev++
	sess.Rooms = nil
	sess.RoomsRev = 0
}

func (s *Service) quote(sess *domain.Session) domain.PaymentInfo {
	return booking.Quote(booking.NewLedger(sess.Items...), s.cfg.TaxRate)
}

// TaxRate exposes the configured tax fraction for display purposes.
func (s *Service) TaxRate() float64 { return s.cfg.TaxRate }
