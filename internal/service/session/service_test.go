package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerostay/bookflow/internal/domain"
	"github.com/aerostay/bookflow/internal/repository"
)

// memStore keeps sessions in a map, deep-copied through JSON the same way
// the Redis store round-trips them.
type memStore struct {
	sessions map[uuid.UUID][]byte
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[uuid.UUID][]byte)}
}

func (m *memStore) Get(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	b, ok := m.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	var sess domain.Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (m *memStore) Save(_ context.Context, sess *domain.Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	m.sessions[sess.ID] = b
	return nil
}

type fakeLister struct {
	// fn runs per call; lets a test mutate state mid-fetch to emulate a
	// response arriving after the inputs changed.
	fn func(lotID int64, checkIn time.Time, durationHours int) ([]domain.RoomType, error)
}

func (f *fakeLister) ListRooms(_ context.Context, lotID int64, checkIn time.Time, durationHours int) ([]domain.RoomType, error) {
	return f.fn(lotID, checkIn, durationHours)
}

type fakeLocations struct{ locs map[int64]*domain.Location }

func (f *fakeLocations) Get(_ context.Context, id int64) (*domain.Location, error) {
	loc, ok := f.locs[id]
	if !ok {
		return nil, errors.New("location not found")
	}
	cp := *loc
	return &cp, nil
}

type fakePublisher struct {
	published  []string
	totalCents []int64
}

func (f *fakePublisher) PublishCheckoutStarted(_ context.Context, sessionID string, totalCents int64) error {
	f.published = append(f.published, sessionID)
	f.totalCents = append(f.totalCents, totalCents)
	return nil
}

var airside = &domain.Location{
	ID:    1,
	Name:  "Airside",
	Area:  "KLIA2",
	LotID: 7,
}

func roomsFor(duration int) []domain.RoomType {
	return []domain.RoomType{
		{
			ID:             "Female Single",
			Name:           "Female Single",
			Zone:           "Female-Only Zone",
			BedType:        "Single Bed",
			Capacity:       "1 Adult",
			MaxPax:         1,
			PriceCents:     15500,
			AvailableCount: 4,
		},
		{
			ID:             "Queen",
			Name:           "Queen",
			BedType:        "Queen Bed",
			Capacity:       "2 Adult",
			MaxPax:         2,
			PriceCents:     18500,
			AvailableCount: 2,
		},
	}
}

func newTestService(store *memStore, lister *fakeLister, pub *fakePublisher) *Service {
	return New(
		store,
		lister,
		&fakeLocations{locs: map[int64]*domain.Location{1: airside}},
		pub,
		nil,
		Config{TaxRate: 0.06},
	)
}

// readySession walks a fresh session up to a committed room catalog.
func readySession(t *testing.T, svc *Service) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	sess, err := svc.Create(ctx)
	require.NoError(t, err)

	_, err = svc.SetLocation(ctx, sess.ID, 1)
	require.NoError(t, err)

	checkIn := time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)
	_, err = svc.SetSchedule(ctx, sess.ID, checkIn, 6, "")
	require.NoError(t, err)

	_, err = svc.FetchRooms(ctx, sess.ID, "")
	require.NoError(t, err)

	return sess.ID
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	lister := &fakeLister{fn: func(_ int64, _ time.Time, d int) ([]domain.RoomType, error) {
		return roomsFor(d), nil
	}}
	svc := newTestService(store, lister, &fakePublisher{})

	id := readySession(t, svc)

	sess, info, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StageLocation, sess.Stage)
	assert.True(t, sess.CatalogCurrent())
	assert.Zero(t, info.TotalCents)

	t.Run("add clamps against availability", func(t *testing.T) {
		_, _, err := svc.AddRoom(ctx, id, "Queen", 1)
		require.NoError(t, err)
		_, info, err := svc.AddRoom(ctx, id, "Queen", 1)
		require.NoError(t, err)
		assert.Equal(t, int64(37000), info.SubtotalCents)

		// Queen has availableCount=2: a third add must be rejected and
		// leave the quantity untouched.
		_, _, err = svc.AddRoom(ctx, id, "Queen", 1)
		require.ErrorIs(t, err, ErrNoAvailability)

		sess, _, err := svc.Get(ctx, id)
		require.NoError(t, err)
		require.Len(t, sess.Items, 1)
		assert.Equal(t, 2, sess.Items[0].Quantity)
	})

	t.Run("remove decrements and deletes", func(t *testing.T) {
		_, info, err := svc.RemoveRoom(ctx, id, "Queen")
		require.NoError(t, err)
		assert.Equal(t, int64(18500), info.SubtotalCents)

		_, info, err = svc.RemoveRoom(ctx, id, "Queen")
		require.NoError(t, err)
		assert.Zero(t, info.SubtotalCents)

		sess, _, err := svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, sess.Items)
	})

	t.Run("unknown room type is rejected", func(t *testing.T) {
		_, _, err := svc.AddRoom(ctx, id, "Penthouse", 1)
		assert.ErrorIs(t, err, ErrRoomTypeUnknown)
	})
}

func TestFetchSupersession(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	s1Rooms := []domain.RoomType{{ID: "S1 Room", Name: "S1 Room", PriceCents: 100, AvailableCount: 1}}
	s2Rooms := []domain.RoomType{{ID: "S2 Room", Name: "S2 Room", PriceCents: 200, AvailableCount: 1}}

	var svc *Service
	var id uuid.UUID
	firstCall := true

	lister := &fakeLister{}
	lister.fn = func(_ int64, _ time.Time, d int) ([]domain.RoomType, error) {
		if !firstCall {
			return s2Rooms, nil
		}
		firstCall = false

		// While the first fetch is "in flight", the guest changes the
		// schedule and the fetch for the new inputs completes first.
		checkIn := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
		_, err := svc.SetSchedule(ctx, id, checkIn, 12, "")
		if err != nil {
			return nil, err
		}
		if _, err := svc.FetchRooms(ctx, id, ""); err != nil {
			return nil, err
		}

		return s1Rooms, nil
	}

	svc = newTestService(store, lister, &fakePublisher{})

	sess, err := svc.Create(ctx)
	require.NoError(t, err)
	id = sess.ID

	_, err = svc.SetLocation(ctx, id, 1)
	require.NoError(t, err)

	checkIn := time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)
	_, err = svc.SetSchedule(ctx, id, checkIn, 6, "")
	require.NoError(t, err)

	// The stale response resolves last and must be discarded.
	_, err = svc.FetchRooms(ctx, id, "")
	require.ErrorIs(t, err, ErrFetchSuperseded)

	got, _, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, got.CatalogCurrent())
	require.Len(t, got.Rooms, 1)
	assert.Equal(t, "S2 Room", got.Rooms[0].ID, "newer fetch result must win")
}

func TestCatalogStaleBlocksAdds(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	lister := &fakeLister{fn: func(_ int64, _ time.Time, d int) ([]domain.RoomType, error) {
		return roomsFor(d), nil
	}}
	svc := newTestService(store, lister, &fakePublisher{})

	id := readySession(t, svc)

	// Changing the schedule supersedes the snapshot; adds must be blocked
	// until a fresh fetch commits.
	checkIn := time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)
	_, err := svc.SetSchedule(ctx, id, checkIn, 3, "")
	require.NoError(t, err)

	_, _, err = svc.AddRoom(ctx, id, "Queen", 1)
	require.ErrorIs(t, err, ErrCatalogStale)

	_, err = svc.FetchRooms(ctx, id, "")
	require.NoError(t, err)

	_, _, err = svc.AddRoom(ctx, id, "Queen", 1)
	assert.NoError(t, err)
}

func TestAdvancePublishesCheckout(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	lister := &fakeLister{fn: func(_ int64, _ time.Time, d int) ([]domain.RoomType, error) {
		return roomsFor(d), nil
	}}
	pub := &fakePublisher{}
	svc := newTestService(store, lister, pub)

	id := readySession(t, svc)

	_, _, err := svc.AddRoom(ctx, id, "Female Single", 2)
	require.NoError(t, err)
	_, _, err = svc.AddRoom(ctx, id, "Queen", 1)
	require.NoError(t, err)

	// location -> schedule -> room_selection -> summary -> payment
	for i := 0; i < 4; i++ {
		_, err = svc.Advance(ctx, id)
		require.NoError(t, err, "advance %d", i)
	}

	sess, info, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.StagePayment, sess.Stage)
	assert.Equal(t, int64(52470), info.TotalCents)

	require.Len(t, pub.published, 1)
	assert.Equal(t, id.String(), pub.published[0])
	assert.Equal(t, int64(52470), pub.totalCents[0])
}

func TestAdvanceGuards(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	lister := &fakeLister{fn: func(_ int64, _ time.Time, d int) ([]domain.RoomType, error) {
		return roomsFor(d), nil
	}}
	svc := newTestService(store, lister, &fakePublisher{})

	sess, err := svc.Create(ctx)
	require.NoError(t, err)

	_, err = svc.Advance(ctx, sess.ID)
	require.Error(t, err, "cannot leave location stage without an outlet")

	_, err = svc.SetLocation(ctx, sess.ID, 1)
	require.NoError(t, err)
	_, err = svc.Advance(ctx, sess.ID)
	require.NoError(t, err)

	// duration unset blocks the schedule stage
	_, err = svc.Advance(ctx, sess.ID)
	require.Error(t, err)
}

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	lister := &fakeLister{fn: func(_ int64, _ time.Time, d int) ([]domain.RoomType, error) {
		return roomsFor(d), nil
	}}
	svc := newTestService(store, lister, &fakePublisher{})

	id := readySession(t, svc)

	_, _, err := svc.AddRoom(ctx, id, "Female Single", 2)
	require.NoError(t, err)
	_, _, err = svc.AddRoom(ctx, id, "Queen", 1)
	require.NoError(t, err)

	sum, err := svc.Summarize(ctx, id)
	require.NoError(t, err)

	require.Len(t, sum.Lines, 2)
	assert.Equal(t, int64(31000), sum.Lines[0].LineTotalCents)
	assert.Equal(t, int64(18500), sum.Lines[1].LineTotalCents)
	assert.Equal(t, "6h", string(sum.Lines[0].Feature))

	assert.Equal(t, int64(49500), sum.Payment.SubtotalCents)
	assert.Equal(t, int64(2970), sum.Payment.TaxCents)
	assert.Equal(t, int64(52470), sum.Payment.TotalCents)
	assert.InDelta(t, 0.06, sum.TaxRate, 1e-9)
}

func TestSessionNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemStore(), &fakeLister{fn: func(int64, time.Time, int) ([]domain.RoomType, error) {
		return nil, nil
	}}, &fakePublisher{})

	_, _, err := svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestFetchErrorsPassThrough(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	fetchErr := fmt.Errorf("availability request failed: connection refused")
	lister := &fakeLister{fn: func(int64, time.Time, int) ([]domain.RoomType, error) {
		return nil, fetchErr
	}}
	svc := newTestService(store, lister, &fakePublisher{})

	sess, err := svc.Create(ctx)
	require.NoError(t, err)

	_, err = svc.FetchRooms(ctx, sess.ID, "")
	require.ErrorIs(t, err, ErrLocationNotSet)

	_, err = svc.SetLocation(ctx, sess.ID, 1)
	require.NoError(t, err)
	_, err = svc.FetchRooms(ctx, sess.ID, "")
	require.ErrorIs(t, err, ErrScheduleNotSet)

	checkIn := time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)
	_, err = svc.SetSchedule(ctx, sess.ID, checkIn, 6, "")
	require.NoError(t, err)

	_, err = svc.FetchRooms(ctx, sess.ID, "")
	require.ErrorIs(t, err, fetchErr)

	// no partial data: the session keeps no snapshot after a failed fetch
	got, _, err := svc.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.False(t, got.CatalogCurrent())
}