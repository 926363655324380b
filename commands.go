package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"Portfolio/config"
	"Portfolio/db"
	"Portfolio/handlers"
	"Portfolio/logger"
)

const shutdownTimeout = 10 * time.Second

type listenFunc func(network, address string) (net.Listener, error)

func newRootCmd() *cobra.Command {
	var cfgFile string

	load := func() (*config.Config, error) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		logger.Init(cfg.Log, cfg.LogLevel)
		return cfg, nil
	}

	root := &cobra.Command{
		Use:   "portfolio",
		Short: "Portfolio website backend",
		Long: `Serves the portfolio site. On startup it waits for the database server,
creates the database, applies the schema when the tables are missing and
seeds an empty projects table, then starts listening.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, net.Listen)
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is "+config.DefaultFile+" when present)")

	root.AddCommand(&cobra.Command{
		Use:   "bootstrap",
		Short: "Prepare the database and exit without serving",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			pool, err := ensureDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "database %s is ready\n", cfg.DB.Database)
			return nil
		},
	})

	return root
}

func ensureDatabase(ctx context.Context, cfg *config.Config) (*db.Pool, error) {
	b, err := db.NewBootstrapper(cfg.DB, cfg.SchemaPath)
	if err != nil {
		return nil, err
	}
	pool, err := b.EnsureReady(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return pool, nil
}

// serve bootstraps the database and only then binds the listener. It
// returns when ctx is cancelled and the server has drained, or on the
// first fatal error.
func serve(ctx context.Context, cfg *config.Config, listen listenFunc) error {
	pool, err := ensureDatabase(ctx, cfg)
	if err != nil {
		logger.Errorf("%v", err)
		return err
	}
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warnf("close pool: %v", err)
		}
	}()

	h, err := handlers.New(pool, cfg.TemplatesDir, cfg.PublicDir)
	if err != nil {
		return err
	}

	ln, err := listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr(), err)
	}
	srv := &http.Server{
		Handler:           h.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Server listening on %s", ln.Addr())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Infof("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
