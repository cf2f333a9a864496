package reference

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"console.busfleet.org/internal/clock"
	"console.busfleet.org/internal/models"
)

// fakeSource scripts the upstream reference endpoints.
type fakeSource struct {
	routeCalls   int
	companyCalls int
	routes       []models.Route
	companies    []models.Company
	err          error
}

func (f *fakeSource) FetchRoutes(ctx context.Context) ([]models.Route, error) {
	f.routeCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.routes, nil
}

func (f *fakeSource) FetchCompanies(ctx context.Context) ([]models.Company, error) {
	f.companyCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.companies, nil
}

func newTestProvider(source Source) (*Provider, *clock.MockClock) {
	mc := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return NewProvider(source, mc, nil, time.Minute), mc
}

func TestRoutesFetchesAndCaches(t *testing.T) {
	source := &fakeSource{routes: []models.Route{{ID: "r-1", Name: "Downtown"}}}
	p, _ := newTestProvider(source)

	first, err := p.Routes(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := p.Routes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, source.routeCalls, "second read must hit the cache")
}

func TestRoutesCacheExpires(t *testing.T) {
	source := &fakeSource{routes: []models.Route{{ID: "r-1", Name: "Downtown"}}}
	p, mc := newTestProvider(source)

	_, err := p.Routes(context.Background())
	require.NoError(t, err)

	mc.Advance(2 * time.Minute)

	_, err = p.Routes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, source.routeCalls)
}

func TestRoutesServesStaleCacheOnFetchFailure(t *testing.T) {
	source := &fakeSource{routes: []models.Route{{ID: "r-1", Name: "Downtown"}}}
	p, mc := newTestProvider(source)

	_, err := p.Routes(context.Background())
	require.NoError(t, err)

	mc.Advance(2 * time.Minute)
	source.err = errors.New("upstream down")

	routes, err := p.Routes(context.Background())
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "Downtown", routes[0].Name)
}

func TestRoutesServesGTFSFallbackWhenNothingCached(t *testing.T) {
	source := &fakeSource{err: errors.New("upstream down")}
	p, _ := newTestProvider(source)
	p.fallback = &gtfsFallback{
		routes: []models.Route{{ID: "gtfs-r-1", Name: "Harbor Loop"}},
	}

	routes, err := p.Routes(context.Background())
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "Harbor Loop", routes[0].Name)
}

func TestRoutesErrorWithoutAnyFallback(t *testing.T) {
	source := &fakeSource{err: errors.New("upstream down")}
	p, _ := newTestProvider(source)

	_, err := p.Routes(context.Background())
	assert.Error(t, err)
}

func TestCompaniesFetchesAndCaches(t *testing.T) {
	source := &fakeSource{companies: []models.Company{{ID: "c-1", Name: "Metro West"}}}
	p, _ := newTestProvider(source)

	first, err := p.Companies(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	_, err = p.Companies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, source.companyCalls)
}

func TestCompaniesServesGTFSFallback(t *testing.T) {
	source := &fakeSource{err: errors.New("upstream down")}
	p, _ := newTestProvider(source)
	p.fallback = &gtfsFallback{
		companies: []models.Company{{ID: "agency-1", Name: "City Transit"}},
	}

	companies, err := p.Companies(context.Background())
	require.NoError(t, err)
	require.Len(t, companies, 1)
	assert.Equal(t, "City Transit", companies[0].Name)
}

func TestLoadGTFSFallbackMissingFile(t *testing.T) {
	p, _ := newTestProvider(&fakeSource{})

	assert.Error(t, p.LoadGTFSFallback(filepath.Join(t.TempDir(), "absent.zip")))
}

func TestLoadGTFSFallbackRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.zip")
	require.NoError(t, os.WriteFile(path, []byte("not a zip archive"), 0o644))

	p, _ := newTestProvider(&fakeSource{})

	assert.Error(t, p.LoadGTFSFallback(path))
}
