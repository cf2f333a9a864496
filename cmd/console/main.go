package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"console.busfleet.org/internal/appconf"
	"console.busfleet.org/internal/logging"
)

func main() {
	var (
		env        string
		apiKeys    string
		pollSec    float64
		staleSec   float64
		configFile string
	)

	cfg := appconf.Config{}

	flag.IntVar(&cfg.Port, "port", 4000, "Console server port")
	flag.StringVar(&env, "env", "development", "Environment (development|staging|production)")
	flag.StringVar(&cfg.UpstreamBaseURL, "upstream-url", "http://localhost:8080", "Base URL of the fleet backend")
	flag.Float64Var(&pollSec, "poll-interval", 30, "Active-bus poll interval in seconds")
	flag.Float64Var(&staleSec, "stale-threshold", 120, "Age in seconds after which the snapshot counts as stale")
	flag.IntVar(&cfg.RateLimit, "rate-limit", 100, "Requests per second per API key")
	flag.StringVar(&apiKeys, "api-keys", "test", "Comma Separated API Keys (test, etc)")
	flag.StringVar(&cfg.HistoryDBPath, "history-db", "console_history.db", "Path to the SQLite history database (empty disables history)")
	flag.StringVar(&cfg.GTFSStaticPath, "gtfs-static", "", "Optional GTFS static zip used as a routes fallback")
	flag.StringVar(&configFile, "config", "", "Optional YAML config file; file values override flags")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Enable debug logging")
	flag.Parse()

	cfg.Env = appconf.EnvFromString(env)
	cfg.ApiKeys = ParseAPIKeys(apiKeys)
	cfg.PollInterval = time.Duration(pollSec * float64(time.Second))
	cfg.StaleThreshold = time.Duration(staleSec * float64(time.Second))

	if err := appconf.LoadFile(configFile, &cfg); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	coreApp, err := BuildApplication(cfg)
	if err != nil {
		slog.Error("failed to build application", "error", err)
		os.Exit(1)
	}
	logger := coreApp.Logger

	pollCtx, cancelPolling := context.WithCancel(context.Background())
	coreApp.Poller.Start(pollCtx)

	srv, api := CreateServer(coreApp, cfg)

	shutdownErr := make(chan error, 1)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		sig := <-quit

		logger.Info("shutting down", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		shutdownErr <- srv.Shutdown(ctx)
	}()

	logger.Info("starting console", "addr", srv.Addr, "env", cfg.Env.String(), "upstream", cfg.UpstreamBaseURL)

	err = srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	if err := <-shutdownErr; err != nil {
		logger.Error("shutdown did not complete cleanly", "error", err)
	}

	cancelPolling()
	coreApp.Poller.Stop()
	coreApp.Search.Stop()
	api.Shutdown()
	if coreApp.History != nil {
		logging.SafeCloseWithLogging(coreApp.History, logger, "close_history_store")
	}

	logger.Info("stopped")
}
