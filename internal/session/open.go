package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/albapepper/scoracle-fans/internal/config"
	"github.com/albapepper/scoracle-fans/internal/db"
)

// Open builds the store selected by cfg.SessionBackend. The returned func
// releases the backend's connections.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, func(), error) {
	switch cfg.SessionBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := NewRedis(client, cfg.SessionTTL)
		if err := store.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, err
		}
		logger.Info("Session store connected", "backend", store.Backend(), "addr", cfg.RedisAddr)
		return store, func() { client.Close() }, nil

	case config.BackendPostgres:
		pool, err := db.New(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		logger.Info("Session store connected",
			"backend", config.BackendPostgres,
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)
		return NewPostgres(pool, cfg.SessionTTL), pool.Close, nil

	default:
		store := NewMemory(cfg.SessionTTL)
		logger.Info("Session store ready", "backend", store.Backend(), "ttl", cfg.SessionTTL)
		return store, func() {}, nil
	}
}
