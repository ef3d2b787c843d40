package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/storage"
	"github.com/codeGROOVE-dev/retry"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	gcsadapter "landmarket/internal/adapter/gcs"
	"landmarket/internal/adapter/memory"
	"landmarket/internal/adapter/postgres"
	redisadapter "landmarket/internal/adapter/redis"
	sqliteadapter "landmarket/internal/adapter/sqlite"
	"landmarket/internal/config"
	"landmarket/internal/config/configs"
	"landmarket/internal/core/port"
	"landmarket/internal/db"
)

// openStore builds the configured LedgerStore. Drivers that receive change
// notifications from other processes get a listener goroutine tied to ctx.
// The returned func releases the driver's resources.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (port.LedgerStore, func(), error) {
	switch cfg.Store.Driver {
	case configs.DriverMemory:
		return memory.NewLedgerStore(), func() {}, nil

	case configs.DriverSQLite:
		store, err := sqliteadapter.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil

	case configs.DriverPostgres:
		if cfg.Psql.RunMigrations {
			if err := db.Migrate(cfg.Psql.Addr.String()); err != nil {
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info("migrations applied successfully")
		}
		pool, err := db.NewPostgresPool(ctx, cfg.Psql)
		if err != nil {
			return nil, nil, fmt.Errorf("database connection: %w", err)
		}
		store := postgres.NewLedgerStore(pool, cfg.Psql.ListenChannel, logger)
		go keepListening(ctx, "postgres", store.Listen, logger)
		return store, pool.Close, nil

	case configs.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis connection: %w", err)
		}
		store := redisadapter.NewLedgerStore(client, cfg.Redis.Prefix, cfg.Redis.Channel, logger)
		go keepListening(ctx, "redis", store.Listen, logger)
		return store, func() { _ = client.Close() }, nil

	case configs.DriverGCS:
		var opts []option.ClientOption
		if cfg.Store.GCSEndpoint != "" {
			opts = append(opts, option.WithEndpoint(cfg.Store.GCSEndpoint), option.WithoutAuthentication())
		}
		client, err := storage.NewClient(ctx, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("gcs client: %w", err)
		}
		store := gcsadapter.NewLedgerStore(client, cfg.Store.GCSBucket, cfg.Store.GCSPrefix, logger)
		return store, func() { _ = client.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// keepListening runs listen until ctx is done, reconnecting with backoff
// whenever it fails.
func keepListening(ctx context.Context, name string, listen func(context.Context) error, logger *slog.Logger) {
	err := retry.Do(
		func() error { return listen(ctx) },
		retry.Context(ctx),
		retry.Attempts(0),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(30*time.Second),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("change listener failed, reconnecting",
				slog.String("driver", name),
				slog.Uint64("attempt", uint64(n)),
				slog.Any("error", err),
			)
		}),
	)
	if err != nil && ctx.Err() == nil {
		logger.Error("change listener gave up", slog.String("driver", name), slog.Any("error", err))
	}
}
