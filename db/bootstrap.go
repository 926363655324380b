package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"Portfolio/config"
	"Portfolio/logger"
)

// Bootstrapper brings the database to a usable state before the service
// starts: it waits for the server, creates the database, applies the
// schema file when the tables are missing and seeds an empty projects
// table. Running it again against a ready database changes nothing.
type Bootstrapper struct {
	cfg        config.DB
	schemaPath string
	dialect    dialect
	// open allows tests to override how connections are opened.
	open func(driverName, dsn string) (*sql.DB, error)
}

// NewBootstrapper validates the driver and returns a Bootstrapper for it.
func NewBootstrapper(cfg config.DB, schemaPath string) (*Bootstrapper, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	return &Bootstrapper{cfg: cfg, schemaPath: schemaPath, dialect: d, open: sql.Open}, nil
}

// EnsureReady returns a pool on a fully initialised database, or an error
// that must abort startup: ErrDatabaseUnavailable when the server never
// answered, ErrSchemaApplication when the schema file failed, or the
// wrapped driver error of any later step.
func (b *Bootstrapper) EnsureReady(ctx context.Context) (*Pool, error) {
	admin, err := b.connectAdmin(ctx)
	if err != nil {
		return nil, err
	}
	logger.Infof("Connected to %s server (admin). Ensuring database %s exists...", b.cfg.Driver, b.cfg.Database)
	err = b.dialect.createDatabase(ctx, admin, b.cfg.Database)
	_ = admin.Close()
	if err != nil {
		logger.Errorf("create database %s: %s", b.cfg.Database, ErrorCode(err))
		return nil, fmt.Errorf("create database %s: %w", b.cfg.Database, err)
	}

	pool, err := b.openPool(ctx)
	if err != nil {
		return nil, err
	}
	if err := b.withLock(ctx, pool, func() error { return b.ApplySeedsIfNeeded(ctx, pool) }); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return pool, nil
}

// connectAdmin opens and pings a server-level connection, retrying with a
// fixed delay until it works or the attempts run out.
func (b *Bootstrapper) connectAdmin(ctx context.Context) (*sql.DB, error) {
	var admin *sql.DB
	err := Retry(ctx, b.cfg.MaxAttempts, b.cfg.RetryDelay, func(attempt int) error {
		conn, err := b.open(b.dialect.driverName(), b.dialect.adminDSN(b.cfg))
		if err == nil {
			if err = conn.PingContext(ctx); err != nil {
				_ = conn.Close()
			}
		}
		if err != nil {
			logger.Warnf("%s not ready (attempt %d/%d): %s", b.cfg.Driver, attempt, b.cfg.MaxAttempts, ErrorCode(err))
			return err
		}
		admin = conn
		return nil
	})
	if err != nil {
		logger.Errorf("%s did not become ready in time", b.cfg.Driver)
		return nil, fmt.Errorf("%w: %w", ErrDatabaseUnavailable, err)
	}
	return admin, nil
}

func (b *Bootstrapper) openPool(ctx context.Context) (*Pool, error) {
	sqlDB, err := b.open(b.dialect.driverName(), b.dialect.dsn(b.cfg))
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	pool := newPool(sqlDB, b.dialect, b.cfg.PoolSize)
	if err := pool.Ping(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping pool: %w", err)
	}
	logger.Debugf("pool opened for %s (max %d connections)", b.cfg.Database, b.cfg.PoolSize)
	return pool, nil
}

// ApplySeedsIfNeeded applies the schema file when the projects table is
// missing and inserts the seed rows when it exists but is empty. Errors are
// logged and returned without retrying.
func (b *Bootstrapper) ApplySeedsIfNeeded(ctx context.Context, pool *Pool) error {
	if err := b.applySeedsIfNeeded(ctx, pool); err != nil {
		logger.Warnf("applySeedsIfNeeded encountered an error: %v", err)
		return err
	}
	return nil
}

func (b *Bootstrapper) applySeedsIfNeeded(ctx context.Context, pool *Pool) error {
	exists, err := b.dialect.tableExists(ctx, pool.SQL, b.cfg.Database, "projects")
	if err != nil {
		return fmt.Errorf("check projects table: %w", err)
	}

	if !exists {
		logger.Infof("projects table does not exist: applying %s", b.schemaPath)
		if err := b.applySchema(ctx); err != nil {
			return err
		}
		logger.Infof("%s applied successfully", b.schemaPath)
		return nil
	}

	n, err := pool.CountProjects(ctx)
	if err != nil {
		return fmt.Errorf("count projects: %w", err)
	}
	if n != 0 {
		logger.Infof("projects table exists and has data; no seed needed")
		return nil
	}
	logger.Infof("projects table present but empty - inserting seed rows")
	if err := pool.InsertProjects(ctx, SeedProjects()); err != nil {
		return fmt.Errorf("insert seed rows: %w", err)
	}
	logger.Infof("Seed rows inserted")
	return nil
}

// applySchema runs the whole schema file as one batch on a dedicated
// multi-statement connection.
func (b *Bootstrapper) applySchema(ctx context.Context) error {
	script, err := os.ReadFile(b.schemaPath)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrSchemaApplication, b.schemaPath, err)
	}

	batch, err := b.open(b.dialect.driverName(), b.dialect.batchDSN(b.cfg))
	if err != nil {
		return fmt.Errorf("%w: open batch connection: %w", ErrSchemaApplication, err)
	}
	defer batch.Close()

	// USE only sticks to one session, so pin a single connection.
	conn, err := batch.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: batch connection: %w", ErrSchemaApplication, err)
	}
	defer conn.Close()

	if err := b.dialect.createDatabase(ctx, conn, b.cfg.Database); err != nil {
		return fmt.Errorf("%w: create database: %w", ErrSchemaApplication, err)
	}
	if err := b.dialect.useDatabase(ctx, conn, b.cfg.Database); err != nil {
		return fmt.Errorf("%w: select database: %w", ErrSchemaApplication, err)
	}
	if _, err := conn.ExecContext(ctx, string(script)); err != nil {
		return fmt.Errorf("%w: execute %s: %w", ErrSchemaApplication, b.schemaPath, err)
	}
	return nil
}

// withLock runs fn under a server-wide advisory lock when enabled, so that
// several instances starting together do not both apply the schema or seed.
func (b *Bootstrapper) withLock(ctx context.Context, pool *Pool, fn func() error) error {
	if !b.cfg.AdvisoryLock {
		return fn()
	}
	conn, err := pool.SQL.Conn(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap lock connection: %w", err)
	}
	defer conn.Close()

	name := "portfolio_bootstrap:" + b.cfg.Database
	release, err := b.dialect.lock(ctx, conn, name)
	if err != nil {
		return fmt.Errorf("acquire bootstrap lock: %w", err)
	}
	defer release()
	logger.Debugf("holding bootstrap lock %s", name)
	return fn()
}
