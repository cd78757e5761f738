package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/musicclouds/web/config"
	"github.com/musicclouds/web/internal/adapters/localstore"
	redisadapter "github.com/musicclouds/web/internal/adapters/redis"
	"github.com/musicclouds/web/internal/data"
	"github.com/musicclouds/web/internal/ports"
	"github.com/redis/go-redis/v9"
)

// Infrastructure holds the connections opened for the configured credential store.
type Infrastructure struct {
	DB    *sql.DB
	Redis redis.UniversalClient
}

// Close releases whatever connections were opened.
func (i *Infrastructure) Close() error {
	if i == nil {
		return nil
	}
	var errs []error
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if i.DB != nil {
		if err := i.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

// StoreDeps lets callers and tests inject ready-made connections.
type StoreDeps struct {
	DB     *sql.DB
	Redis  redis.UniversalClient
	Logger *slog.Logger
}

// NewCredentialStores returns the per-visitor credential store factory chosen by
// cfg.Credentials.Store. Connections missing from deps are opened here and
// returned in Infrastructure so the caller can close them.
//
//nolint:ireturn // the store backend is chosen at runtime.
func NewCredentialStores(
	ctx context.Context,
	cfg *config.AppConfig,
	deps StoreDeps,
) (ports.CredentialStoreFactory, *Infrastructure, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	infra := &Infrastructure{}

	switch cfg.Credentials.Store {
	case config.StoreMemory:
		logger.WarnContext(ctx, "credentials kept in process memory; sessions are lost on restart")
		return localstore.NewMemoryFactory(), infra, nil

	case config.StorePostgres:
		db := deps.DB
		if db == nil {
			var err error
			if db, err = ConnectDB(ctx, cfg.Postgres, logger); err != nil {
				return nil, nil, fmt.Errorf("connect db: %w", err)
			}
			infra.DB = db
		}
		if cfg.Postgres.RunMigrationsOnStart {
			if err := RunMigrations(ctx, db, logger); err != nil {
				return nil, nil, errors.Join(err, infra.Close())
			}
		} else {
			logger.InfoContext(ctx, "skipping database migrations on startup", "reason", "disabled via config")
		}
		return data.NewCredentialRepo(db), infra, nil

	case config.StoreRedis, "":
		client := deps.Redis
		if client == nil {
			var err error
			if client, err = ConnectRedis(ctx, cfg.Redis, logger); err != nil {
				return nil, nil, fmt.Errorf("connect redis: %w", err)
			}
			infra.Redis = client
		}
		return redisadapter.NewCredentialStore(client, redisadapter.CredentialStoreOptions{
			Prefix: cfg.Credentials.RedisPrefix,
			TTL:    cfg.Credentials.TTL,
		}), infra, nil

	default:
		return nil, nil, fmt.Errorf("unsupported credential store %q", cfg.Credentials.Store)
	}
}
