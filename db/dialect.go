package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "modernc.org/sqlite"             // registers "sqlite"

	"Portfolio/config"
)

// execQuerier is satisfied by *sql.DB and *sql.Conn.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// dialect hides the engine specific parts of bootstrapping.
type dialect interface {
	driverName() string
	// adminDSN connects to the server without selecting the target database.
	adminDSN(c config.DB) string
	// dsn connects to the target database.
	dsn(c config.DB) string
	// batchDSN is used for the schema file and must accept several
	// statements in one Exec.
	batchDSN(c config.DB) string
	createDatabase(ctx context.Context, q execQuerier, name string) error
	useDatabase(ctx context.Context, q execQuerier, name string) error
	tableExists(ctx context.Context, q execQuerier, database, table string) (bool, error)
	lock(ctx context.Context, conn *sql.Conn, name string) (release func(), err error)
	bunDialect() schema.Dialect
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "mysql":
		return mysqlDialect{}, nil
	case "postgres":
		return postgresDialect{}, nil
	case "sqlite":
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// lockTimeoutSeconds bounds how long an instance waits for another one to
// finish seeding.
const lockTimeoutSeconds = 60

// --- MySQL ---

type mysqlDialect struct{}

func (mysqlDialect) driverName() string { return "mysql" }

func (d mysqlDialect) mysqlConfig(c config.DB) *mysql.Config {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	port := c.Port
	if port == 0 {
		port = 3306
	}
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(port))
	return mc
}

func (d mysqlDialect) adminDSN(c config.DB) string { return d.mysqlConfig(c).FormatDSN() }

func (d mysqlDialect) dsn(c config.DB) string {
	mc := d.mysqlConfig(c)
	mc.DBName = c.Database
	return mc.FormatDSN()
}

func (d mysqlDialect) batchDSN(c config.DB) string {
	mc := d.mysqlConfig(c)
	mc.MultiStatements = true
	return mc.FormatDSN()
}

func quoteMySQLIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (mysqlDialect) createDatabase(ctx context.Context, q execQuerier, name string) error {
	_, err := q.ExecContext(ctx, "CREATE DATABASE IF NOT EXISTS "+quoteMySQLIdent(name))
	return err
}

func (mysqlDialect) useDatabase(ctx context.Context, q execQuerier, name string) error {
	_, err := q.ExecContext(ctx, "USE "+quoteMySQLIdent(name))
	return err
}

func (mysqlDialect) tableExists(ctx context.Context, q execQuerier, database, table string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = ? AND table_name = ?",
		database, table).Scan(&n)
	return n > 0, err
}

func (mysqlDialect) lock(ctx context.Context, conn *sql.Conn, name string) (func(), error) {
	var got sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", name, lockTimeoutSeconds).Scan(&got); err != nil {
		return nil, err
	}
	if !got.Valid || got.Int64 != 1 {
		return nil, fmt.Errorf("timed out waiting for lock %q", name)
	}
	return func() {
		var released sql.NullInt64
		_ = conn.QueryRowContext(context.Background(), "SELECT RELEASE_LOCK(?)", name).Scan(&released)
	}, nil
}

func (mysqlDialect) bunDialect() schema.Dialect { return mysqldialect.New() }

// --- Postgres ---

type postgresDialect struct{}

func (postgresDialect) driverName() string { return "pgx" }

func (postgresDialect) url(c config.DB, database string) string {
	port := c.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(port)),
		Path:     "/" + database,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Postgres always connects to some database; the maintenance database
// plays the administrative role.
func (d postgresDialect) adminDSN(c config.DB) string { return d.url(c, "postgres") }
func (d postgresDialect) dsn(c config.DB) string      { return d.url(c, c.Database) }

// Statements without arguments go through the simple protocol, which
// accepts several statements at once.
func (d postgresDialect) batchDSN(c config.DB) string { return d.url(c, c.Database) }

func quotePgIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (postgresDialect) createDatabase(ctx context.Context, q execQuerier, name string) error {
	var exists bool
	if err := q.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", name).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return nil
	}
	if _, err := q.ExecContext(ctx, "CREATE DATABASE "+quotePgIdent(name)); err != nil && !isDuplicateDatabase(err) {
		return err
	}
	return nil
}

// The batch connection is already scoped to the target database.
func (postgresDialect) useDatabase(context.Context, execQuerier, string) error { return nil }

func (postgresDialect) tableExists(ctx context.Context, q execQuerier, database, table string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM information_schema.tables WHERE table_catalog = $1 AND table_schema = current_schema() AND table_name = $2",
		database, table).Scan(&n)
	return n > 0, err
}

func (postgresDialect) lock(ctx context.Context, conn *sql.Conn, name string) (func(), error) {
	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock(hashtext($1))", name); err != nil {
		return nil, err
	}
	return func() {
		_, _ = conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock(hashtext($1))", name)
	}, nil
}

func (postgresDialect) bunDialect() schema.Dialect { return pgdialect.New() }

// --- SQLite ---

// sqliteDialect treats the database name as a file path. There is no
// server, so "creating the database" is opening the file.
type sqliteDialect struct{}

func (sqliteDialect) driverName() string { return "sqlite" }

func (sqliteDialect) dsn(c config.DB) string {
	return "file:" + c.Database + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

func (d sqliteDialect) adminDSN(c config.DB) string { return d.dsn(c) }
func (d sqliteDialect) batchDSN(c config.DB) string { return d.dsn(c) }

func (sqliteDialect) createDatabase(context.Context, execQuerier, string) error { return nil }
func (sqliteDialect) useDatabase(context.Context, execQuerier, string) error    { return nil }

func (sqliteDialect) tableExists(ctx context.Context, q execQuerier, _, table string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return n > 0, err
}

// File locking already serialises writers.
func (sqliteDialect) lock(context.Context, *sql.Conn, string) (func(), error) {
	return func() {}, nil
}

func (sqliteDialect) bunDialect() schema.Dialect { return sqlitedialect.New() }
