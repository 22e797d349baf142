package service

import (
	apicatalog "github.com/aerostay/bookflow/internal/catalog"
	redisx "github.com/aerostay/bookflow/internal/redis"
	postgresrepo "github.com/aerostay/bookflow/internal/repository/postgres"
	redisrepo "github.com/aerostay/bookflow/internal/repository/redis"
	"github.com/aerostay/bookflow/internal/service/catalog"
	"github.com/aerostay/bookflow/internal/service/locations"
	"github.com/aerostay/bookflow/internal/service/session"
)

type Services struct {
	Sessions  *session.Service
	Catalog   *catalog.Service
	Locations *locations.Service
}

type Config struct {
	Session   session.Config
	Catalog   catalog.Config
	Locations locations.Config
}

func NewServices(
	store *postgresrepo.Store,
	cache *redisrepo.Cache,
	sessions *redisrepo.SessionStore,
	pubsub *redisx.CheckoutPubSub,
	limiter *redisrepo.SlidingWindowLimiter,
	client *apicatalog.Client,
	cfg Config,
) *Services {
	catalogSvc := catalog.New(client, cache, cfg.Catalog)
	locationsSvc := locations.New(store.Locations(), cache, cfg.Locations)

	sessionsSvc := session.New(sessions, catalogSvc, locationsSvc, pubsub, nil, cfg.Session)
	if limiter != nil {
		sessionsSvc = session.New(sessions, catalogSvc, locationsSvc, pubsub, limiter, cfg.Session)
	}

	return &Services{
		Sessions:  sessionsSvc,
		Catalog:   catalogSvc,
		Locations: locationsSvc,
	}
}
