package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/opsdeck/opsdeck-backend-go/internal/config"
	apperrors "github.com/opsdeck/opsdeck-backend-go/pkg/errors"
)

// incrWithTTL increments and sets the expiry in one script so a crash between
// the two commands cannot leave a counter that never expires.
var incrWithTTL = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// Redis is the production Store.
type Redis struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewRedis(cfg config.RedisConfig, logger *logrus.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	}).Info("Redis store initialized")

	return &Redis{client: client, logger: logger}, nil
}

func (r *Redis) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := incrWithTTL.Run(ctx, r.client, []string{key}, ttl.Milliseconds()).Int64()
	if err != nil {
		return 0, apperrors.Wrap(503, "redis increment failed", apperrors.ErrStoreUnavailable)
	}
	return count, nil
}

func (r *Redis) SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, apperrors.Wrap(503, "redis setnx failed", apperrors.ErrStoreUnavailable)
	}
	return ok, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
