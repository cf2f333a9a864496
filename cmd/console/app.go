package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"console.busfleet.org/internal/app"
	"console.busfleet.org/internal/appconf"
	"console.busfleet.org/internal/clock"
	"console.busfleet.org/internal/debounce"
	"console.busfleet.org/internal/fleetapi"
	"console.busfleet.org/internal/history"
	"console.busfleet.org/internal/logging"
	"console.busfleet.org/internal/metrics"
	"console.busfleet.org/internal/notify"
	"console.busfleet.org/internal/poller"
	"console.busfleet.org/internal/reference"
	"console.busfleet.org/internal/restapi"
	"console.busfleet.org/internal/view"
	"console.busfleet.org/internal/webui"
)

// ParseAPIKeys splits a comma-separated key list from a flag value.
func ParseAPIKeys(raw string) []string {
	keys := appconf.SplitAPIKeys(raw)
	if keys == nil {
		return []string{}
	}
	return keys
}

// BuildApplication wires every console dependency from configuration:
// the upstream client, the poller, notifications, reference data, the
// optional history store, and metrics.
func BuildApplication(cfg appconf.Config) (*app.Application, error) {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := logging.NewStructuredLogger(os.Stdout, level)

	clk := clock.RealClock{}
	m := metrics.New()
	notifier := notify.New(clk)

	client := fleetapi.NewClient(cfg.UpstreamBaseURL, logger)

	var store *history.Store
	if cfg.HistoryDBPath != "" {
		var err error
		store, err = history.Open(cfg.HistoryDBPath)
		if err != nil {
			return nil, fmt.Errorf("opening history store: %w", err)
		}
	}

	p := poller.New(client, clk, logger, poller.Config{
		Interval: cfg.PollInterval,
	})
	p.WithMetrics(m)
	p.WithNotifier(notifier)
	if store != nil {
		p.WithRecorder(store)
	}

	ref := reference.NewProvider(client, clk, logger, 5*time.Minute)
	if cfg.GTFSStaticPath != "" {
		if err := ref.LoadGTFSFallback(cfg.GTFSStaticPath); err != nil {
			logging.LogError(logger, "failed to load GTFS fallback feed", err,
				slog.String("path", cfg.GTFSStaticPath))
		}
	}

	return &app.Application{
		Config:      cfg,
		Logger:      logger,
		FleetClient: client,
		Poller:      p,
		Notifier:    notifier,
		Reference:   ref,
		History:     store,
		Camera:      &view.Camera{},
		Search:      app.NewSearchBox(debounce.DefaultWindow),
		Clock:       clk,
		Metrics:     m,
	}, nil
}

// CreateServer assembles the HTTP server: console API and web UI on one
// mux, wrapped in the shared middleware stack.
func CreateServer(coreApp *app.Application, cfg appconf.Config) (*http.Server, *restapi.RestAPI) {
	api := restapi.NewRestAPI(coreApp)

	mux := http.NewServeMux()
	api.SetRoutes(mux)
	webui.NewWebUI(coreApp).SetRoutes(mux)

	var handler http.Handler = mux
	handler = api.RateLimitHandler()(handler)
	handler = restapi.MetricsHandler(coreApp.Metrics)(handler)
	handler = restapi.NewRequestLoggingMiddleware(coreApp.Logger)(handler)
	handler = restapi.RequestIDMiddleware(handler)
	handler = restapi.CompressionMiddleware(handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(coreApp.Logger.Handler(), slog.LevelError),
	}

	return srv, api
}
