package cutoff

import (
	"context"

	"github.com/pkg/errors"

	"github.com/jose-valero/game-queue-bot/internal/infra"
	"github.com/jose-valero/game-queue-bot/pkg/config"
)

// Open builds the backend selected by cfg.CutoffStore.
func Open(ctx context.Context, cfg *config.Config, loggerFactory *infra.LoggerFactory) (Store, error) {
	logger := loggerFactory.Create("CutoffStore")

	switch cfg.CutoffStore {
	case config.StoreMemory:
		logger.Warn("cutoffs are kept in memory and lost on restart")
		return NewMemoryStore(), nil
	case config.StoreFile:
		return OpenFileStore(cfg.CutoffFile, logger)
	case config.StoreRedis:
		client, err := infra.NewRedisClient(ctx, infra.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, loggerFactory)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client), nil
	case config.StoreSQLite:
		db, err := infra.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		s, err := NewSQLiteStore(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return s, nil
	}
	return nil, errors.Errorf("cutoff: unknown store %q", cfg.CutoffStore)
}
