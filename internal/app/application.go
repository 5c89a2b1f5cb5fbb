package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"railnet.dev/railnet/internal/appconf"
	"railnet.dev/railnet/internal/cache"
	"railnet.dev/railnet/internal/catalog"
	"railnet.dev/railnet/internal/engine"
	"railnet.dev/railnet/internal/logging"
	"railnet.dev/railnet/internal/routing"
)

// CacheFileName is the SQLite file holding the disk cache tier inside Cache.Dir.
const CacheFileName = "railnet-cache.db"

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware.
type Application struct {
	Config  appconf.Config
	Logger  *slog.Logger
	Catalog *catalog.Manager
	Cache   *cache.Tiered
	Engine  *engine.Engine
}

// New loads the dataset, opens the cache and wires the engine.
func New(ctx context.Context, cfg appconf.Config, logger *slog.Logger) (*Application, error) {
	logger = logging.OrDiscard(logger)

	manager, err := catalog.NewManager(ctx, catalog.NewLoader(cfg.Dataset.Dir, cfg.Dataset.KeyStations, logger))
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}

	c, err := cache.New(CacheConfig(cfg, logger))
	if err != nil {
		manager.Shutdown()
		return nil, err
	}

	return &Application{
		Config:  cfg,
		Logger:  logger,
		Catalog: manager,
		Cache:   c,
		Engine:  engine.New(manager, c, SearchOptions(cfg), logger),
	}, nil
}

// Start begins periodic dataset reloads and cache cleanup.
func (app *Application) Start() {
	app.Catalog.Start(app.Config.Dataset.ReloadInterval)
	app.Cache.Start(app.Config.Cache.CleanupInterval)
}

// Shutdown stops background work and closes the disk cache.
func (app *Application) Shutdown() {
	app.Catalog.Shutdown()
	app.Cache.Shutdown()
}

// SearchOptions maps the search section of the configuration onto routing limits.
func SearchOptions(cfg appconf.Config) routing.Options {
	opts := routing.DefaultOptions()
	opts.MaxChanges = cfg.Search.MaxChanges
	opts.MaxRoutes = cfg.Search.MaxRoutes
	opts.Timeout = cfg.Search.Timeout
	opts.MaxIterations = cfg.Search.MaxIterations
	return opts
}

// CacheConfig maps the cache section of the configuration onto tier sizes.
// The disk tier is only enabled when a cache directory is configured.
func CacheConfig(cfg appconf.Config, logger *slog.Logger) cache.Config {
	cc := cache.DefaultConfig()
	cc.L1Size = cfg.Cache.L1Size
	cc.L2Size = cfg.Cache.L2Size
	cc.DiskMaxBytes = cfg.Cache.DiskMaxBytes
	cc.Logger = logger
	if cfg.Cache.Dir != "" {
		if err := os.MkdirAll(cfg.Cache.Dir, 0o755); err != nil {
			logging.LogError(logger, "Failed to create cache directory, disk cache disabled", err,
				slog.String("dir", cfg.Cache.Dir))
			return cc
		}
		cc.DiskPath = filepath.Join(cfg.Cache.Dir, CacheFileName)
	}
	return cc
}
