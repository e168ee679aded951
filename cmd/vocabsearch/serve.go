package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vocabsearch/internal/config"
	"github.com/kailas-cloud/vocabsearch/internal/db"
	dbBadger "github.com/kailas-cloud/vocabsearch/internal/db/badger"
	dbRedis "github.com/kailas-cloud/vocabsearch/internal/db/redis"
	"github.com/kailas-cloud/vocabsearch/internal/index/tag"
	"github.com/kailas-cloud/vocabsearch/internal/loader"
	logpkg "github.com/kailas-cloud/vocabsearch/internal/logger"
	"github.com/kailas-cloud/vocabsearch/internal/metrics"
	selectionrepo "github.com/kailas-cloud/vocabsearch/internal/repository/selection"
	chiTransport "github.com/kailas-cloud/vocabsearch/internal/transport/chi"
	"github.com/kailas-cloud/vocabsearch/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/vocabsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/vocabsearch/internal/usecase/search"
	selectionuc "github.com/kailas-cloud/vocabsearch/internal/usecase/selection"
	"github.com/kailas-cloud/vocabsearch/internal/version"
)

func serveCommand(c *cli.Context) error {
	env := c.String("env")

	var (
		cfg config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := cfg.Logging.Level
	if l := c.String("log-level"); l != "" {
		level = l
	}
	logger, err := logpkg.NewLogger(env, level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting vocabsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("source", cfg.Index.Source),
		zap.String("facet_mode", cfg.Index.FacetMode),
	)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Storage.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("storage not ready: %w", err)
	}
	logger.Info("Connected to storage")

	metrics.RegisterEngineMetrics()

	selections := selectionuc.New(selectionrepo.New(store, cfg.Selection.Namespace), logger)
	if err := selections.Preload(ctx, cfg.Selection.Keys); err != nil {
		return fmt.Errorf("preload selections: %w", err)
	}

	ldr, err := loader.New(cfg.Index.Source,
		loader.WithFormat(loader.Format(cfg.Index.Format)),
		loader.WithTimeout(time.Duration(cfg.Index.FetchTimeoutSec)*time.Second),
		loader.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("create loader: %w", err)
	}

	idxCfg := indexConfig(cfg.Index)
	filters := catalog.New(nil, idxCfg.Locale)
	search := searchuc.New(searchuc.Options{
		Index:     idxCfg,
		FacetMode: tag.Mode(cfg.Index.FacetMode),
	}, ldr, logger, filters)

	// A failed first build leaves the API up; /health reports the index and
	// POST /index/rebuild retries.
	if n, err := search.Rebuild(ctx); err != nil {
		logger.Error("Initial index build failed", zap.Error(err))
	} else {
		logger.Info("Index ready", zap.Int("documents", n))
	}

	server := chiTransport.NewServer(
		search,
		filters,
		selections,
		healthuc.New(store, search),
		logger,
		chiTransport.Options{
			DefaultPageSize: cfg.Index.DefaultPageSize,
			MaxPageSize:     cfg.Index.MaxPageSize,
			APIKeys:         cfg.Auth.APIKeys,
		},
	)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// openStore creates the selection store for the configured driver.
// Redis and Valkey share one rueidis-based implementation.
func openStore(cfg config.StorageConfig, logger *zap.Logger) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverRedis, config.DriverValkey:
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
	case config.DriverBadger:
		return dbBadger.Open(dbBadger.Config{
			Path:     cfg.Path,
			InMemory: cfg.InMemory,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
