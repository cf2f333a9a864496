package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-polyline"

	"console.busfleet.org/internal/models"
	"console.busfleet.org/internal/poller"
)

func bus(id, number, route string, lat, lng float64) models.ActiveBus {
	return models.ActiveBus{
		ID:              id,
		Vehicle:         models.VehicleRef{ID: "v-" + id, Number: number, Capacity: 40},
		Route:           models.RouteRef{ID: "r-" + id, Name: route},
		CurrentLocation: models.LatLng{Lat: lat, Lng: lng},
		Status:          models.StatusOnRoute,
		PassengerCount:  10,
	}
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeMap, ParseMode("map"))
	assert.Equal(t, ModeList, ParseMode("list"))
	assert.Equal(t, ModeList, ParseMode(""))
	assert.Equal(t, ModeList, ParseMode("satellite"))
}

func TestBuildListPhases(t *testing.T) {
	cases := []struct {
		name    string
		snap    poller.Snapshot
		buses   []models.ActiveBus
		phase   Phase
		refresh bool
	}{
		{
			name:  "first load",
			snap:  poller.Snapshot{State: poller.StateLoading},
			phase: PhaseLoading,
		},
		{
			name:  "first load failed",
			snap:  poller.Snapshot{State: poller.StateFailed, Err: "timeout"},
			phase: PhaseEmptyError,
		},
		{
			name:  "filters removed everything",
			snap:  poller.Snapshot{State: poller.StateReady},
			phase: PhaseEmptyFiltered,
		},
		{
			name:  "populated",
			snap:  poller.Snapshot{State: poller.StateReady},
			buses: []models.ActiveBus{bus("1", "101", "Downtown", 47.6, -122.3)},
			phase: PhasePopulated,
		},
		{
			name:    "background refresh keeps content",
			snap:    poller.Snapshot{State: poller.StateRefreshing},
			buses:   []models.ActiveBus{bus("1", "101", "Downtown", 47.6, -122.3)},
			phase:   PhasePopulated,
			refresh: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lv := BuildList(tc.snap, tc.buses)
			assert.Equal(t, tc.phase, lv.Phase)
			assert.Equal(t, tc.refresh, lv.Refreshing)
		})
	}
}

func TestBuildListCarriesErrorFromStaleSnapshot(t *testing.T) {
	snap := poller.Snapshot{
		State: poller.StateReady,
		Err:   "upstream 502",
	}
	lv := BuildList(snap, []models.ActiveBus{bus("1", "101", "Downtown", 47.6, -122.3)})

	assert.Equal(t, PhasePopulated, lv.Phase, "stale data stays visible")
	assert.Equal(t, "upstream 502", lv.Error)
}

func TestBuildListOrdersRows(t *testing.T) {
	buses := []models.ActiveBus{
		bus("1", "202", "Harbor", 0, 0),
		bus("2", "105", "Downtown", 0, 0),
		bus("3", "101", "Harbor", 0, 0),
	}
	lv := BuildList(poller.Snapshot{State: poller.StateReady}, buses)

	require.Len(t, lv.Rows, 3)
	assert.Equal(t, "105", lv.Rows[0].VehicleNumber)
	assert.Equal(t, "101", lv.Rows[1].VehicleNumber)
	assert.Equal(t, "202", lv.Rows[2].VehicleNumber)
}

func TestBuildListOccupancy(t *testing.T) {
	full := bus("1", "101", "Downtown", 0, 0)
	full.PassengerCount = 30

	unknown := bus("2", "102", "Downtown", 0, 0)
	unknown.Vehicle.Capacity = 0

	lv := BuildList(poller.Snapshot{State: poller.StateReady}, []models.ActiveBus{full, unknown})

	require.Len(t, lv.Rows, 2)
	assert.Equal(t, 75, lv.Rows[0].OccupancyPct)
	assert.Equal(t, 0, lv.Rows[1].OccupancyPct)
}

func TestIndexWithin(t *testing.T) {
	buses := []models.ActiveBus{
		bus("1", "101", "Downtown", 47.60, -122.33),
		bus("2", "102", "Downtown", 47.61, -122.34),
		bus("3", "103", "Harbor", 48.75, -122.48),
	}
	ix := NewIndex(buses)

	inView := ix.Within(Viewport{MinLat: 47.5, MinLng: -122.4, MaxLat: 47.7, MaxLng: -122.2})
	require.Len(t, inView, 2)
	assert.Equal(t, "1", inView[0].ID)
	assert.Equal(t, "2", inView[1].ID)
}

func TestIndexZeroViewportReturnsAll(t *testing.T) {
	buses := []models.ActiveBus{
		bus("1", "101", "Downtown", 47.60, -122.33),
		bus("2", "102", "Harbor", 48.75, -122.48),
	}
	assert.Len(t, NewIndex(buses).Within(Viewport{}), 2)
}

func TestCentroidAndBounds(t *testing.T) {
	buses := []models.ActiveBus{
		bus("1", "101", "Downtown", 47.0, -122.0),
		bus("2", "102", "Downtown", 49.0, -120.0),
	}

	center := Centroid(buses)
	assert.InDelta(t, 48.0, center.Lat, 1e-9)
	assert.InDelta(t, -121.0, center.Lng, 1e-9)

	vp, ok := BoundsOf(buses)
	require.True(t, ok)
	assert.Equal(t, Viewport{MinLat: 47.0, MinLng: -122.0, MaxLat: 49.0, MaxLng: -120.0}, vp)

	_, ok = BoundsOf(nil)
	assert.False(t, ok)
}

func TestEncodeTrailRoundTrip(t *testing.T) {
	points := []models.LatLng{
		{Lat: 47.6062, Lng: -122.3321},
		{Lat: 47.6092, Lng: -122.3350},
		{Lat: 47.6120, Lng: -122.3380},
	}
	encoded := EncodeTrail(points)
	require.NotEmpty(t, encoded)

	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	require.NoError(t, err)
	require.Len(t, coords, 3)
	assert.InDelta(t, points[0].Lat, coords[0][0], 1e-4)
	assert.InDelta(t, points[0].Lng, coords[0][1], 1e-4)
}

func TestEncodeTrailTooShort(t *testing.T) {
	assert.Empty(t, EncodeTrail(nil))
	assert.Empty(t, EncodeTrail([]models.LatLng{{Lat: 47.6, Lng: -122.3}}))
}

func TestCameraSuppression(t *testing.T) {
	var cam Camera
	assert.True(t, cam.AutoCenter())

	cam.UserGesture()
	assert.False(t, cam.AutoCenter(), "gesture suppresses recentering")

	cam.UserGesture()
	assert.False(t, cam.AutoCenter())

	cam.Recenter()
	assert.True(t, cam.AutoCenter())
}

type mapTrails map[string][]models.LatLng

func (m mapTrails) Trail(busID string) []models.LatLng { return m[busID] }

func TestBuildMap(t *testing.T) {
	buses := []models.ActiveBus{
		bus("1", "101", "Downtown", 47.60, -122.33),
		bus("2", "102", "Harbor", 48.75, -122.48),
	}
	trails := mapTrails{
		"1": {{Lat: 47.59, Lng: -122.32}, {Lat: 47.60, Lng: -122.33}},
	}
	var cam Camera

	mv := BuildMap(poller.Snapshot{State: poller.StateReady, LastUpdated: time.Now()}, buses, Viewport{}, &cam, trails)

	assert.Equal(t, PhasePopulated, mv.Phase)
	require.Len(t, mv.Markers, 2)
	assert.NotEmpty(t, mv.Markers[0].Trail)
	assert.Greater(t, mv.Markers[0].TrailMeters, 0.0)
	assert.Empty(t, mv.Markers[1].Trail, "single sighting has no trail yet")
	assert.Equal(t, 2, mv.Total)
	assert.True(t, mv.AutoCenter)
	assert.InDelta(t, 48.175, mv.Center.Lat, 1e-9)
}

func TestBuildMapViewportNarrowsMarkersOnly(t *testing.T) {
	buses := []models.ActiveBus{
		bus("1", "101", "Downtown", 47.60, -122.33),
		bus("2", "102", "Harbor", 48.75, -122.48),
	}
	vp := Viewport{MinLat: 47.5, MinLng: -122.4, MaxLat: 47.7, MaxLng: -122.2}

	mv := BuildMap(poller.Snapshot{State: poller.StateReady}, buses, vp, nil, nil)

	require.Len(t, mv.Markers, 1)
	assert.Equal(t, "1", mv.Markers[0].BusID)
	assert.Equal(t, 2, mv.Total, "bounds and count describe the full filtered set")

	bounds, ok := BoundsOf(buses)
	require.True(t, ok)
	assert.Equal(t, bounds, mv.Bounds)
}
