package locations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aerostay/bookflow/internal/domain"
	redisx "github.com/aerostay/bookflow/internal/redis"
	"github.com/aerostay/bookflow/internal/repository"
	redisrepo "github.com/aerostay/bookflow/internal/repository/redis"
)

type Config struct {
	CacheTTL time.Duration
}

type repo interface {
	List(ctx context.Context) ([]domain.Location, error)
	Get(ctx context.Context, id int64) (*domain.Location, error)
}

// Service serves the outlet directory. The directory changes rarely, so
// reads go through the cache with a generous TTL.
type Service struct {
	repo  repo
	cache *redisrepo.Cache
	cfg   Config
}

func New(repo repo, cache *redisrepo.Cache, cfg Config) *Service {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	return &Service{
		repo:  repo,
		cache: cache,
		cfg:   cfg,
	}
}

// List returns every outlet.
func (s *Service) List(ctx context.Context) ([]domain.Location, error) {
	const op = "service.locations.List"

	if s.cache == nil {
		out, err := s.repo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		return out, nil
	}

	out, err := redisrepo.GetOrSetJSON(ctx, s.cache, redisx.KeyLocations(), s.cfg.CacheTTL, s.repo.List)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// Get retrieves one outlet by ID. The outlet row also carries the lot
// identifier the availability API keys on.
//
// Returns locations.ErrLocationNotFound when the outlet does not exist.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Location, error) {
	const op = "service.locations.Get"

	load := func(ctx context.Context) (*domain.Location, error) {
		loc, err := s.repo.Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrLocationNotFound
			}
			return nil, err
		}
		return loc, nil
	}

	if s.cache == nil {
		loc, err := load(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		return loc, nil
	}

	loc, err := redisrepo.GetOrSetJSON(ctx, s.cache, redisx.KeyLocation(id), s.cfg.CacheTTL, load)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return loc, nil
}
