// Package bootstrap opens the storage backend and cache selected by config.
// Both binaries share it.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"lightbnb/internal/adapters/localcache"
	"lightbnb/internal/adapters/observability"
	redisad "lightbnb/internal/adapters/redis"
	"lightbnb/internal/domain"
	"lightbnb/internal/shared"
	mysqlrepo "lightbnb/internal/storage/mysql"
	"lightbnb/internal/storage/postgres"
)

// Repositories connects to db_driver, applies migrations when enabled and
// returns the repositories with a close func.
func Repositories(ctx context.Context, cfg shared.Config, log zerolog.Logger) (domain.Repositories, func(), error) {
	switch cfg.DBDriver {
	case "mysql":
		dsn := mysqlrepo.DSN(cfg)
		db, err := mysqlrepo.Open(ctx, dsn, cfg.DBMaxConns)
		if err != nil {
			return domain.Repositories{}, nil, fmt.Errorf("open mysql: %w", err)
		}
		if cfg.Migrate {
			if err := mysqlrepo.Migrate(ctx, db); err != nil {
				_ = db.Close()
				return domain.Repositories{}, nil, fmt.Errorf("migrate mysql: %w", err)
			}
		}
		log.Info().Str("driver", "mysql").Msg("database connection ok")
		return mysqlrepo.NewRepositories(db, cfg.EmailMode()), func() { _ = db.Close() }, nil

	default:
		dsn := postgres.DSN(cfg)
		if cfg.Migrate {
			if err := postgres.Migrate(ctx, dsn, log); err != nil {
				return domain.Repositories{}, nil, fmt.Errorf("migrate postgres: %w", err)
			}
		}
		pool, err := postgres.Open(ctx, dsn, cfg.DBMaxConns, log, observability.IsDev(cfg.AppEnv))
		if err != nil {
			return domain.Repositories{}, nil, fmt.Errorf("open postgres: %w", err)
		}
		log.Info().Str("driver", "postgres").Msg("database connection ok")
		return postgres.NewRepositories(pool, cfg.EmailMode()), pool.Close, nil
	}
}

// Cache returns Redis when redis_addr is set and answering, otherwise the
// in-process cache.
func Cache(ctx context.Context, cfg shared.Config, log zerolog.Logger) (domain.Cache, func()) {
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		err := rc.Ping(pctx)
		if err == nil {
			log.Info().Str("addr", cfg.RedisAddr).Msg("redis cache ok")
			return rc, func() { _ = rc.Close() }
		}
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, using local cache")
		_ = rc.Close()
	}
	lc := localcache.New(1000)
	return lc, lc.Stop
}
