package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/aerostay/bookflow/internal/domain"
	redisx "github.com/aerostay/bookflow/internal/redis"
	"github.com/aerostay/bookflow/internal/repository"
)

// SessionStore keeps booking sessions as JSON blobs with a sliding TTL:
// every save refreshes the expiry, so a session dies only after the guest
// walks away for the full TTL.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}

	return &SessionStore{rdb: rdb, ttl: ttl}
}

// Get loads a session by ID.
//
// Returns repository.ErrNotFound when the session does not exist or has
// expired.
func (s *SessionStore) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	const op = "redis.SessionStore.Get"

	v, err := s.rdb.Get(ctx, redisx.KeySession(id.String())).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	var sess domain.Session
	if err := json.Unmarshal([]byte(v), &sess); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return &sess, nil
}

// Save writes the session and refreshes its TTL.
func (s *SessionStore) Save(ctx context.Context, sess *domain.Session) error {
	const op = "redis.SessionStore.Save"

	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := s.rdb.Set(ctx, redisx.KeySession(sess.ID.String()), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// Delete removes a session. Missing keys are not an error.
func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "redis.SessionStore.Delete"

	if err := s.rdb.Del(ctx, redisx.KeySession(id.String())).Err(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}
