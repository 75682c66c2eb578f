// Package mysql implements the LightBnB repositories on MySQL 8 through
// database/sql.
package mysql

import (
	"context"
	"database/sql"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"lightbnb/internal/adapters/observability"
	"lightbnb/internal/shared"
)

// DSN builds a go-sql-driver DSN from the db_* config keys unless mysql_dsn is set.
func DSN(cfg shared.Config) string {
	if cfg.MySQLDSN != "" {
		return cfg.MySQLDSN
	}
	mc := mysql.NewConfig()
	mc.User = cfg.DBUser
	mc.Passwd = cfg.DBPassword
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.DBHost, strconv.Itoa(cfg.DBPort))
	mc.DBName = cfg.DBName
	mc.ParseTime = true // DATE -> time.Time
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// Open connects to MySQL, tunes the pool and verifies the connection.
func Open(ctx context.Context, dsn string, maxConns int) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
		db.SetMaxIdleConns(maxConns)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// instrumented times every statement into the query metrics.
type instrumented struct{ db DBTX }

func (i instrumented) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := i.db.ExecContext(ctx, query, args...)
	observability.ObserveQuery("mysql", err, time.Since(start))
	return res, err
}

func (i instrumented) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := i.db.QueryContext(ctx, query, args...)
	observability.ObserveQuery("mysql", err, time.Since(start))
	return rows, err
}

func (i instrumented) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := i.db.QueryRowContext(ctx, query, args...)
	observability.ObserveQuery("mysql", row.Err(), time.Since(start))
	return row
}
