package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	errx "github.com/OnePunchManz/sumi-backend/internal/core/error"
	logx "github.com/OnePunchManz/sumi-backend/pkg/logger"
)

// RedisStore keeps sessions as JSON values with a sliding TTL.
type RedisStore struct {
	rdb redis.Cmdable
	ttl time.Duration
	now func() time.Time
}

func NewRedisStore(rdb redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl, now: time.Now}
}

func (s *RedisStore) sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func (s *RedisStore) Create(ctx context.Context) (*Session, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: s.now(),
	}
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("get session: %w", errx.ErrSessionNotFound)
	}

	key := s.sessionKey(id)
	raw, err := s.rdb.GetEx(ctx, key, s.ttl).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("get session %s: %w", id, errx.ErrSessionNotFound)
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load session from redis")
		return nil, errx.WrapRedis(err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", id, err)
	}

	if sess.User.Expired(s.now()) {
		logx.Info().Str("session_id", id).Str("user", sess.User.Name).Msg("guest session expired")
		if err := s.Destroy(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("get session %s: %w", id, errx.ErrSessionNotFound)
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	sess.ExpiresAt = s.now().Add(s.ttl)
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	key := s.sessionKey(sess.ID)
	if err := s.rdb.Set(ctx, key, b, s.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save session to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	key := s.sessionKey(id)
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete session from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
