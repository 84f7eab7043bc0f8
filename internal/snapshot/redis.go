package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/finwise/finwise-backend/internal/pkg/logger"
)

const opTimeout = 5 * time.Second

type redisStore struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

// NewRedisStore connects to REDIS_ADDR and namespaces all keys under
// REDIS_SNAPSHOT_PREFIX (default "session").
func NewRedisStore(log *logger.Logger) (Store, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	prefix := strings.TrimSpace(os.Getenv("REDIS_SNAPSHOT_PREFIX"))
	if prefix == "" {
		prefix = "session"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: opTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &redisStore{
		log:    log.With("service", "RedisSnapshotStore"),
		rdb:    rdb,
		prefix: prefix,
	}, nil
}

func (s *redisStore) key(k string) string {
	return s.prefix + ":" + k
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	raw, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot get: %w", err)
	}
	return raw, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := s.rdb.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("snapshot set: %w", err)
	}
	return nil
}

func (s *redisStore) Remove(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("snapshot remove: %w", err)
	}
	return nil
}
