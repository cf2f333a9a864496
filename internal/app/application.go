package app

import (
	"log/slog"

	"console.busfleet.org/internal/appconf"
	"console.busfleet.org/internal/clock"
	"console.busfleet.org/internal/fleetapi"
	"console.busfleet.org/internal/history"
	"console.busfleet.org/internal/metrics"
	"console.busfleet.org/internal/notify"
	"console.busfleet.org/internal/poller"
	"console.busfleet.org/internal/reference"
	"console.busfleet.org/internal/view"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware. Everything a handler touches hangs off this struct so
// tests can assemble one with fakes.
type Application struct {
	Config      appconf.Config
	Logger      *slog.Logger
	FleetClient *fleetapi.Client
	Poller      *poller.Poller
	Notifier    *notify.Broadcaster
	Reference   *reference.Provider
	History     *history.Store
	Camera      *view.Camera
	Search      *SearchBox
	Clock       clock.Clock
	Metrics     *metrics.Metrics
}
