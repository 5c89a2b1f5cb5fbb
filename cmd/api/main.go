package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"railnet.dev/railnet/internal/app"
	"railnet.dev/railnet/internal/appconf"
	"railnet.dev/railnet/internal/logging"
	"railnet.dev/railnet/internal/restapi"
)

// flags holds the command-line settings. Non-zero values override the
// configuration file and environment.
type flags struct {
	configPath  string
	envFile     string
	port        int
	env         string
	dataDir     string
	cacheDir    string
	keyStations string
}

func parseFlags(args []string, output io.Writer) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("railnet-api", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&f.configPath, "config", "", "Path to a YAML configuration file")
	fs.StringVar(&f.envFile, "env-file", ".env", "Path to a .env file; ignored when missing")
	fs.IntVar(&f.port, "port", 0, "API server port")
	fs.StringVar(&f.env, "env", "", "Environment (development|test|production)")
	fs.StringVar(&f.dataDir, "data-dir", "", "Directory holding railway_lines_index.json")
	fs.StringVar(&f.cacheDir, "cache-dir", "", "Directory for the disk cache tier")
	fs.StringVar(&f.keyStations, "key-stations", "", "Comma separated stations that must be present after loading")

	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}
	return f, nil
}

// buildConfig layers flags over the file and environment configuration.
func buildConfig(f flags) (appconf.Config, error) {
	if err := appconf.LoadDotEnv(f.envFile); err != nil {
		return appconf.Config{}, fmt.Errorf("loading %s: %w", f.envFile, err)
	}

	cfg, err := appconf.Load(f.configPath)
	if err != nil {
		return appconf.Config{}, err
	}

	if f.port != 0 {
		cfg.Server.Port = f.port
	}
	if f.env != "" {
		cfg.Env = appconf.EnvFlagToEnvironment(f.env).String()
	}
	if f.dataDir != "" {
		cfg.Dataset.Dir = f.dataDir
	}
	if f.cacheDir != "" {
		cfg.Cache.Dir = f.cacheDir
	}
	if f.keyStations != "" {
		cfg.Dataset.KeyStations = nil
		for _, s := range strings.Split(f.keyStations, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.Dataset.KeyStations = append(cfg.Dataset.KeyStations, s)
			}
		}
	}

	if err := appconf.Validate(cfg); err != nil {
		return appconf.Config{}, err
	}
	return cfg, nil
}

func main() {
	f, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}

	cfg, err := buildConfig(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.NewLogger(os.Stdout, logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logging.LogError(logger, "server stopped", err)
		os.Exit(1)
	}
}

func run(cfg appconf.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Shutdown()
	application.Start()

	report := application.Catalog.Catalog().Report()
	logging.LogOperation(logger, "dataset_loaded",
		slog.Int("lines", report.LinesLoaded),
		slog.Int("stations", report.StationsLoaded),
		slog.Int("skipped_lines", len(report.SkippedLines)),
		slog.Duration("duration", report.Duration))

	api := restapi.NewRestAPI(application)
	defer api.Shutdown()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.Handler(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.Search.Timeout + 5*time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "env", cfg.Environment().String())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
