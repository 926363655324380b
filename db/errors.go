package db

import (
	"errors"
	"strconv"
	"syscall"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDatabaseUnavailable means the server never accepted an
	// administrative connection within the configured attempts.
	ErrDatabaseUnavailable = errors.New("database unavailable")
	// ErrSchemaApplication means the bundled schema file could not be read
	// or executed.
	ErrSchemaApplication = errors.New("schema application failed")
	// ErrAttemptsExhausted is returned by Retry when every attempt failed.
	ErrAttemptsExhausted = errors.New("attempts exhausted")
)

// ErrorCode returns a short code for a driver error: the MySQL error number,
// the Postgres SQLSTATE or the socket errno name. Anything else falls back
// to the error message.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return strconv.Itoa(int(myErr.Number))
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return "ECONNREFUSED"
	case errors.Is(err, syscall.ECONNRESET):
		return "ECONNRESET"
	case errors.Is(err, syscall.ETIMEDOUT):
		return "ETIMEDOUT"
	case errors.Is(err, syscall.EHOSTUNREACH):
		return "EHOSTUNREACH"
	}
	return err.Error()
}

// pgDuplicateDatabase is SQLSTATE duplicate_database.
const pgDuplicateDatabase = "42P04"

func isDuplicateDatabase(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgDuplicateDatabase
}
