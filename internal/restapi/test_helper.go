// test_helper.go contains shared fixtures for handler tests: a console
// application wired with a scripted upstream and deterministic clock.
package restapi

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"console.busfleet.org/internal/app"
	"console.busfleet.org/internal/appconf"
	"console.busfleet.org/internal/clock"
	"console.busfleet.org/internal/history"
	"console.busfleet.org/internal/models"
	"console.busfleet.org/internal/notify"
	"console.busfleet.org/internal/poller"
	"console.busfleet.org/internal/reference"
	"console.busfleet.org/internal/view"
)

// scriptedFetcher returns canned bus sets and records the params of
// every fetch.
type scriptedFetcher struct {
	mu     sync.Mutex
	buses  []models.ActiveBus
	err    error
	params []url.Values
}

func (f *scriptedFetcher) FetchActiveBuses(ctx context.Context, params url.Values) ([]models.ActiveBus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cloned := url.Values{}
	for k, v := range params {
		cloned[k] = append([]string(nil), v...)
	}
	f.params = append(f.params, cloned)
	if f.err != nil {
		return nil, f.err
	}
	return f.buses, nil
}

func (f *scriptedFetcher) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.params)
}

// scriptedReference serves fixed dropdown data.
type scriptedReference struct {
	routes    []models.Route
	companies []models.Company
}

func (s *scriptedReference) FetchRoutes(ctx context.Context) ([]models.Route, error) {
	return s.routes, nil
}

func (s *scriptedReference) FetchCompanies(ctx context.Context) ([]models.Company, error) {
	return s.companies, nil
}

type testEnv struct {
	api     *RestAPI
	fetcher *scriptedFetcher
	clock   *clock.MockClock
	cancel  context.CancelFunc
}

func testBuses() []models.ActiveBus {
	return []models.ActiveBus{
		{
			ID:              "B001",
			Vehicle:         models.VehicleRef{ID: "v-1", Number: "42", Capacity: 50, CompanyID: "c-1"},
			Route:           models.RouteRef{ID: "r-12", Name: "Downtown Express"},
			CurrentLocation: models.LatLng{Lat: 47.60, Lng: -122.33},
			Status:          models.StatusOnRoute,
			PassengerCount:  23,
		},
		{
			ID:              "B002",
			Vehicle:         models.VehicleRef{ID: "v-2", Number: "17", Capacity: 40, CompanyID: "c-2"},
			Route:           models.RouteRef{ID: "r-5", Name: "Harbor Loop"},
			CurrentLocation: models.LatLng{Lat: 48.75, Lng: -122.48},
			Status:          models.StatusDelayed,
			PassengerCount:  31,
		},
	}
}

// newTestEnv builds a RestAPI around a started poller and waits for the
// first load to land.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mc := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	fetcher := &scriptedFetcher{buses: testBuses()}

	p := poller.New(fetcher, mc, nil, poller.Config{
		Interval:     time.Hour, // interval ticks play no part in these tests
		FetchTimeout: time.Second,
	})

	notifier := notify.New(mc)
	p.WithNotifier(notifier)

	store, err := history.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	t.Cleanup(p.Stop)
	t.Cleanup(cancel)

	p.Refresh()
	require.Eventually(t, func() bool {
		return p.Snapshot().State == poller.StateReady
	}, 2*time.Second, 5*time.Millisecond)

	source := &scriptedReference{
		routes:    []models.Route{{ID: "r-12", Name: "Downtown Express"}},
		companies: []models.Company{{ID: "c-1", Name: "Metro West"}},
	}

	application := &app.Application{
		Config: appconf.Config{
			Env:            appconf.Development,
			RateLimit:      1000,
			ApiKeys:        []string{"test"},
			StaleThreshold: 2 * time.Minute,
		},
		Poller:    p,
		Notifier:  notifier,
		Reference: reference.NewProvider(source, mc, nil, time.Minute),
		History:   store,
		Camera:    &view.Camera{},
		Search:    app.NewSearchBox(25 * time.Millisecond),
		Clock:     mc,
	}

	api := NewRestAPI(application)
	t.Cleanup(api.Shutdown)

	return &testEnv{api: api, fetcher: fetcher, clock: mc, cancel: cancel}
}

func (env *testEnv) serve() http.Handler {
	mux := http.NewServeMux()
	env.api.SetRoutes(mux)
	return mux
}
