package sessionsvc

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/masomo-web/core"
)

// RedisStore keeps the session token server side. The browser only holds an opaque session id.
type RedisStore struct {
	client *redis.Client
	name   string
	ttl    time.Duration
	secure bool
}

var _ core.SessionStore = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, conf *core.Config) *RedisStore {
	ttl := conf.Session.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{
		client: client,
		name:   conf.Session.CookieName,
		ttl:    ttl,
		secure: conf.Session.Secure,
	}
}

func (s *RedisStore) Token(r *http.Request) (string, error) {
	cookie, err := r.Cookie(s.name)
	if err != nil || cookie.Value == "" {
		return "", nil
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return "", nil
	}
	token, err := s.client.Get(r.Context(), redisKey(cookie.Value)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "loading session")
	}
	return token, nil
}

// SetToken stores token under a new session id, replacing the current session if any.
func (s *RedisStore) SetToken(w http.ResponseWriter, r *http.Request, token string, persistent bool) error {
	ctx := r.Context()
	if err := s.delete(ctx, r); err != nil {
		return err
	}
	id := uuid.NewString()
	if err := s.client.Set(ctx, redisKey(id), token, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "saving session")
	}
	http.SetCookie(w, newCookie(s.name, id, s.ttl, s.secure, persistent))
	return nil
}

func (s *RedisStore) Clear(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, expiredCookie(s.name, s.secure))
	return s.delete(r.Context(), r)
}

func (s *RedisStore) delete(ctx context.Context, r *http.Request) error {
	cookie, err := r.Cookie(s.name)
	if err != nil || cookie.Value == "" {
		return nil
	}
	if err := s.client.Del(ctx, redisKey(cookie.Value)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return errors.Wrap(err, "deleting session")
	}
	return nil
}

func redisKey(id string) string {
	return "session:" + id
}
