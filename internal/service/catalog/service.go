package catalog

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/aerostay/bookflow/internal/booking"
	apicatalog "github.com/aerostay/bookflow/internal/catalog"
	"github.com/aerostay/bookflow/internal/domain"
	redisx "github.com/aerostay/bookflow/internal/redis"
	redisrepo "github.com/aerostay/bookflow/internal/repository/redis"
)

type Config struct {
	// CacheTTL bounds how stale a served inventory snapshot can be.
	CacheTTL time.Duration
}

type fetcher interface {
	ListForBooking(ctx context.Context, lotID int64, checkIn time.Time, durationHours int) ([]apicatalog.Room, error)
}

// Service fetches the room catalog for a lot and schedule, converting raw
// availability rows into display-ready room types (bed type and capacity
// derived from the occupancy count).
type Service struct {
	fetcher fetcher
	cache   *redisrepo.Cache
	cfg     Config
}

func New(fetcher fetcher, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Second
	}

	return &Service{
		fetcher: fetcher,
		cache:   cache,
		cfg:     cfg,
	}
}

// ListRooms returns the available room types for the given lot, check-in
// time and duration.
//
// Returns catalog.ErrUnavailable when the upstream fetch fails for any
// reason (network, non-2xx, malformed payload). No partial data is served.
func (s *Service) ListRooms(
	ctx context.Context,
	lotID int64,
	checkIn time.Time,
	durationHours int,
) ([]domain.RoomType, error) {
	const op = "service.catalog.ListRooms"

	load := func(ctx context.Context) ([]domain.RoomType, error) {
		rooms, err := s.fetcher.ListForBooking(ctx, lotID, checkIn, durationHours)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}

		out := make([]domain.RoomType, 0, len(rooms))
		for _, r := range rooms {
			out = append(out, convertRoom(r))
		}

		return out, nil
	}

	if s.cache == nil {
		rooms, err := load(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		return rooms, nil
	}

	key := redisx.KeyCatalog(lotID, checkIn.Unix(), durationHours)

	rooms, err := redisrepo.GetOrSetJSON(ctx, s.cache, key, s.cfg.CacheTTL, load)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return rooms, nil
}

func convertRoom(r apicatalog.Room) domain.RoomType {
	maxPax := int(r.MaxPax)

	return domain.RoomType{
		ID:             r.RoomTypeName,
		Name:           r.RoomTypeName,
		Zone:           r.RoomZoneNames,
		BedType:        booking.PredictBedType(maxPax),
		Capacity:       booking.CapacityLabel(maxPax),
		MaxPax:         maxPax,
		PriceCents:     toCents(r.Price),
		AvailableCount: r.AvailableCount,
	}
}

func toCents(price float64) int64 {
	return int64(math.Round(price * 100))
}
