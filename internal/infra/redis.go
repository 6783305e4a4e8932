package infra

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects and pings once so a bad address fails at startup
// instead of on the first command.
func NewRedisClient(ctx context.Context, cfg RedisConfig, loggerFactory *LoggerFactory) (*redis.Client, error) {
	logger := loggerFactory.Create("RedisClient").Sugar()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		OnConnect: func(ctx context.Context, cn *redis.Conn) error {
			logger.Infof("redis connected to host[%v] db[%v]", cfg.Addr, cfg.DB)
			return nil
		},
	})

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(err, "redis: ping %s", cfg.Addr)
	}
	return rdb, nil
}
