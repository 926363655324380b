package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"
)

// Pool is the shared connection pool. It is created once by the
// bootstrapper, handed to the request handlers and closed at shutdown.
// Callers beyond the size limit wait for a free connection.
type Pool struct {
	SQL *sql.DB
	Bun *bun.DB
}

func newPool(sqlDB *sql.DB, d dialect, size int) *Pool {
	sqlDB.SetMaxOpenConns(size)
	sqlDB.SetMaxIdleConns(size)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	return &Pool{SQL: sqlDB, Bun: bun.NewDB(sqlDB, d.bunDialect())}
}

// Ping checks that a connection can be obtained and used.
func (p *Pool) Ping(ctx context.Context) error {
	return p.SQL.PingContext(ctx)
}

// Close releases every connection. Safe on a nil pool.
func (p *Pool) Close() error {
	if p == nil || p.Bun == nil {
		return nil
	}
	return p.Bun.Close()
}
