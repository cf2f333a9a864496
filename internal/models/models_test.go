package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"console.busfleet.org/internal/clock"
)

func TestParseBusStatus(t *testing.T) {
	tests := []struct {
		raw      string
		expected BusStatus
		ok       bool
	}{
		{"on_route", StatusOnRoute, true},
		{"at_stop", StatusAtStop, true},
		{"delayed", StatusDelayed, true},
		{"", "", false},
		{"parked", "", false},
		{"ON_ROUTE", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			status, ok := ParseBusStatus(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, status)
		})
	}
}

func TestBusStatusLabel(t *testing.T) {
	assert.Equal(t, "On Route", StatusOnRoute.Label())
	assert.Equal(t, "At Stop", StatusAtStop.Label())
	assert.Equal(t, "Delayed", StatusDelayed.Label())
}

func TestActiveBusJSONShape(t *testing.T) {
	raw := `{
		"id": "active-1",
		"vehicle": {"id": "v-1", "number": "B001", "capacity": 44, "companyId": "c-1"},
		"route": {"id": "r-1", "name": "Downtown"},
		"currentLocation": {"lat": 47.6097, "lng": -122.3331},
		"status": "on_route",
		"passengerCount": 23,
		"estimatedArrival": "2025-06-01T12:34:00Z",
		"lastUpdated": "2025-06-01T12:30:00Z"
	}`

	var bus ActiveBus
	require.NoError(t, json.Unmarshal([]byte(raw), &bus))

	assert.Equal(t, "active-1", bus.ID)
	assert.Equal(t, "B001", bus.Vehicle.Number)
	assert.Equal(t, "Downtown", bus.Route.Name)
	assert.Equal(t, StatusOnRoute, bus.Status)
	assert.Equal(t, 23, bus.PassengerCount)
	assert.InDelta(t, 47.6097, bus.CurrentLocation.Lat, 0.0001)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC), bus.LastUpdated)
}

func TestNewOKResponse(t *testing.T) {
	c := clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	resp := NewOKResponse(map[string]string{"hello": "world"}, c)

	assert.Equal(t, 200, resp.Code)
	assert.Equal(t, "OK", resp.Text)
	assert.Equal(t, 2, resp.Version)
	assert.Equal(t, c.NowUnixMilli(), resp.CurrentTime)
}

func TestResponseCurrentTimeNilClockFallsBack(t *testing.T) {
	before := time.Now().UnixMilli()
	millis := ResponseCurrentTime(nil)
	assert.GreaterOrEqual(t, millis, before)
}
