// Package postgres implements the LightBnB repositories on PostgreSQL
// through a shared pgx connection pool.
package postgres

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"

	"lightbnb/internal/adapters/observability"
	"lightbnb/internal/shared"
)

// DBTX is the subset of pgxpool.Pool the repositories use.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const pingTimeout = 10 * time.Second

// DSN builds a postgres:// URL from the db_* config keys.
func DSN(cfg shared.Config) string {
	hostPort := net.JoinHostPort(cfg.DBHost, strconv.Itoa(cfg.DBPort))
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.DBUser, cfg.DBPassword),
		Host:   hostPort,
		Path:   "/" + cfg.DBName,
	}
	if cfg.DBSSLMode != "" {
		u.RawQuery = "sslmode=" + url.QueryEscape(cfg.DBSSLMode)
	}
	return u.String()
}

// Open creates the process-wide pool and verifies it with a ping. Every
// statement is timed into Prometheus; in dev, statements are also logged.
func Open(ctx context.Context, dsn string, maxConns int, logger zerolog.Logger, dev bool) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx pool config: %w", err)
	}
	if maxConns > 0 {
		pc.MaxConns = int32(maxConns)
	}

	tracers := []pgx.QueryTracer{metricsTracer{}}
	if dev {
		tracers = append(tracers, &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(logger.With().Str("component", "pgx").Logger()),
			LogLevel: traceLevel(logger.GetLevel()),
		})
	}
	pc.ConnConfig.Tracer = multiTracer(tracers)

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func traceLevel(l zerolog.Level) tracelog.LogLevel {
	switch l {
	case zerolog.TraceLevel:
		return tracelog.LogLevelTrace
	case zerolog.DebugLevel:
		return tracelog.LogLevelDebug
	case zerolog.InfoLevel:
		return tracelog.LogLevelInfo
	case zerolog.WarnLevel:
		return tracelog.LogLevelWarn
	case zerolog.ErrorLevel:
		return tracelog.LogLevelError
	}
	return tracelog.LogLevelNone
}

// pgx holds a single tracer per connection config; multiTracer fans out.
type multiTracer []pgx.QueryTracer

func (mt multiTracer) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	for _, t := range mt {
		ctx = t.TraceQueryStart(ctx, conn, data)
	}
	return ctx
}

func (mt multiTracer) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	for _, t := range mt {
		t.TraceQueryEnd(ctx, conn, data)
	}
}

type queryStartKey struct{}

type metricsTracer struct{}

func (metricsTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, _ pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, time.Now())
}

func (metricsTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	observability.ObserveQuery("postgres", data.Err, time.Since(start))
}
