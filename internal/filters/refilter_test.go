package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"console.busfleet.org/internal/models"
)

func fixtureBuses() []models.ActiveBus {
	return []models.ActiveBus{
		{
			ID:      "active-1",
			Vehicle: models.VehicleRef{ID: "v-1", Number: "B001", CompanyID: "c-1"},
			Route:   models.RouteRef{ID: "r-1", Name: "Downtown"},
			Status:  models.StatusOnRoute,
		},
		{
			ID:      "active-2",
			Vehicle: models.VehicleRef{ID: "v-2", Number: "B002", CompanyID: "c-2"},
			Route:   models.RouteRef{ID: "r-2", Name: "Airport"},
			Status:  models.StatusDelayed,
		},
	}
}

func TestApplyStatusDimension(t *testing.T) {
	result := Apply(fixtureBuses(), FilterState{Status: models.StatusDelayed})

	require.Len(t, result, 1)
	assert.Equal(t, "B002", result[0].Vehicle.Number)
}

func TestApplySearchIsCaseInsensitive(t *testing.T) {
	result := Apply(fixtureBuses(), FilterState{Search: "b001"})

	require.Len(t, result, 1)
	assert.Equal(t, "B001", result[0].Vehicle.Number)
}

func TestApplySearchMatchesRouteName(t *testing.T) {
	result := Apply(fixtureBuses(), FilterState{Search: "airPORT"})

	require.Len(t, result, 1)
	assert.Equal(t, "B002", result[0].Vehicle.Number)
}

func TestApplyRouteDimension(t *testing.T) {
	result := Apply(fixtureBuses(), FilterState{RouteID: "r-1"})

	require.Len(t, result, 1)
	assert.Equal(t, "active-1", result[0].ID)
}

func TestApplyCompanyDimension(t *testing.T) {
	result := Apply(fixtureBuses(), FilterState{CompanyID: "c-2"})

	require.Len(t, result, 1)
	assert.Equal(t, "active-2", result[0].ID)
}

func TestApplyDimensionsCombineWithAND(t *testing.T) {
	result := Apply(fixtureBuses(), FilterState{
		Search: "b00",
		Status: models.StatusOnRoute,
	})

	require.Len(t, result, 1)
	assert.Equal(t, "B001", result[0].Vehicle.Number)

	assert.Empty(t, Apply(fixtureBuses(), FilterState{
		RouteID: "r-1",
		Status:  models.StatusDelayed,
	}))
}

func TestApplyZeroFilterReturnsAll(t *testing.T) {
	buses := fixtureBuses()
	result := Apply(buses, FilterState{})

	assert.Equal(t, buses, result)
}

func TestApplyIsIdempotent(t *testing.T) {
	f := FilterState{Status: models.StatusDelayed}
	buses := fixtureBuses()

	first := Apply(buses, f)
	second := Apply(buses, f)

	assert.Equal(t, first, second)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	buses := fixtureBuses()
	original := fixtureBuses()

	result := Apply(buses, FilterState{Status: models.StatusDelayed})
	require.Len(t, result, 1)
	result[0].Vehicle.Number = "mutated"

	assert.Equal(t, original, buses)
}

func TestApplyEmptyInput(t *testing.T) {
	assert.Empty(t, Apply(nil, FilterState{Search: "b001"}))
}
