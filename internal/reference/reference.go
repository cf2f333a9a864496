// Package reference supplies the route and company lists behind the
// console's filter dropdowns. Values come from the fleet backend with a
// short TTL cache; when the backend is unreachable, a previously cached
// copy or a published GTFS static feed on disk keeps the dropdowns
// populated.
package reference

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/OneBusAway/go-gtfs"

	"console.busfleet.org/internal/clock"
	"console.busfleet.org/internal/logging"
	"console.busfleet.org/internal/models"
)

// DefaultTTL is how long fetched reference data is served from cache.
const DefaultTTL = 5 * time.Minute

// Source is the slice of the fleet backend the provider depends on.
// *fleetapi.Client satisfies it.
type Source interface {
	FetchRoutes(ctx context.Context) ([]models.Route, error)
	FetchCompanies(ctx context.Context) ([]models.Company, error)
}

// Provider caches reference data. Safe for concurrent use.
type Provider struct {
	source   Source
	clock    clock.Clock
	logger   *slog.Logger
	ttl      time.Duration
	fallback *gtfsFallback

	mu          sync.Mutex
	routes      []models.Route
	routesAt    time.Time
	companies   []models.Company
	companiesAt time.Time
}

type gtfsFallback struct {
	routes    []models.Route
	companies []models.Company
}

// NewProvider creates a provider over source. A nil clock falls back to
// system time; a non-positive ttl falls back to DefaultTTL.
func NewProvider(source Source, clk clock.Clock, logger *slog.Logger, ttl time.Duration) *Provider {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Provider{
		source: source,
		clock:  clk,
		logger: logger.With(slog.String("component", "reference")),
		ttl:    ttl,
	}
}

// LoadGTFSFallback parses a GTFS static feed from disk and keeps its
// routes and agencies as a last-resort source for the dropdowns.
func (p *Provider) LoadGTFSFallback(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading GTFS feed: %w", err)
	}

	static, err := gtfs.ParseStatic(data, gtfs.ParseStaticOptions{})
	if err != nil {
		return fmt.Errorf("parsing GTFS feed: %w", err)
	}

	fallback := &gtfsFallback{}
	for _, route := range static.Routes {
		name := route.LongName
		if name == "" {
			name = route.ShortName
		}
		converted := models.Route{
			ID:        route.Id,
			Name:      name,
			ShortName: route.ShortName,
			Color:     route.Color,
		}
		if route.Agency != nil {
			converted.CompanyID = route.Agency.Id
		}
		fallback.routes = append(fallback.routes, converted)
	}
	for _, agency := range static.Agencies {
		fallback.companies = append(fallback.companies, models.Company{
			ID:   agency.Id,
			Name: agency.Name,
		})
	}

	p.mu.Lock()
	p.fallback = fallback
	p.mu.Unlock()

	logging.LogOperation(p.logger, "gtfs_fallback_loaded",
		slog.Int("routes", len(fallback.routes)),
		slog.Int("companies", len(fallback.companies)))
	return nil
}

// Routes returns the route list for the filter dropdown.
func (p *Provider) Routes(ctx context.Context) ([]models.Route, error) {
	p.mu.Lock()
	if p.routes != nil && p.clock.Now().Sub(p.routesAt) < p.ttl {
		cached := append([]models.Route(nil), p.routes...)
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	routes, err := p.source.FetchRoutes(ctx)
	if err == nil {
		p.mu.Lock()
		p.routes = routes
		p.routesAt = p.clock.Now()
		cached := append([]models.Route(nil), routes...)
		p.mu.Unlock()
		return cached, nil
	}

	logging.LogError(p.logger, "route fetch failed, serving fallback", err)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.routes != nil {
		return append([]models.Route(nil), p.routes...), nil
	}
	if p.fallback != nil {
		return append([]models.Route(nil), p.fallback.routes...), nil
	}
	return nil, err
}

// Companies returns the operator list for the company selector.
func (p *Provider) Companies(ctx context.Context) ([]models.Company, error) {
	p.mu.Lock()
	if p.companies != nil && p.clock.Now().Sub(p.companiesAt) < p.ttl {
		cached := append([]models.Company(nil), p.companies...)
		p.mu.Unlock()
		return cached, nil
	}
	p.mu.Unlock()

	companies, err := p.source.FetchCompanies(ctx)
	if err == nil {
		p.mu.Lock()
		p.companies = companies
		p.companiesAt = p.clock.Now()
		cached := append([]models.Company(nil), companies...)
		p.mu.Unlock()
		return cached, nil
	}

	logging.LogError(p.logger, "company fetch failed, serving fallback", err)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.companies != nil {
		return append([]models.Company(nil), p.companies...), nil
	}
	if p.fallback != nil {
		return append([]models.Company(nil), p.fallback.companies...), nil
	}
	return nil, err
}
