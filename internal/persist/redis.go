package persist

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Domenick1991/bookingflow/config"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const sessionIndexKey = "flow:sessions"

// RedisStore is the default persistence adapter. Snapshots are JSON values
// with the draft TTL; the session index is a set.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

func NewRedisStore(cfg config.RedisConfig, ttl time.Duration, log *logrus.Logger) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		ttl:    ttl,
		log:    log,
	}
}

func (s *RedisStore) Snapshot(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, payload, s.ttl).Err()
}

func (s *RedisStore) Restore(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		// Corrupt snapshots are treated as absent so a session can still
		// resume; the corruption itself must stay observable.
		s.log.WithFields(logrus.Fields{"key": key, "error": err}).Warn("discarding corrupt snapshot")
		return false, nil
	}
	return true, nil
}

func (s *RedisStore) Clear(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *RedisStore) AddSession(ctx context.Context, sessionID string) error {
	return s.client.SAdd(ctx, sessionIndexKey, sessionID).Err()
}

func (s *RedisStore) RemoveSession(ctx context.Context, sessionID string) error {
	return s.client.SRem(ctx, sessionIndexKey, sessionID).Err()
}

func (s *RedisStore) Sessions(ctx context.Context) ([]string, error) {
	return s.client.SMembers(ctx, sessionIndexKey).Result()
}

var _ Store = (*RedisStore)(nil)
