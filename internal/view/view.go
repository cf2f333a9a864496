// Package view builds the render models for the console's two display
// modes. Both modes consume the same filtered bus set and the current
// poll snapshot; the package decides which content phase to show and
// shapes the data for the templates and the JSON API.
package view

import (
	"sort"
	"time"

	"console.busfleet.org/internal/models"
	"console.busfleet.org/internal/poller"
)

// Mode selects how the filtered set is presented. It is per-request UI
// state and is deliberately kept out of the shareable filter params.
type Mode string

const (
	ModeList Mode = "list"
	ModeMap  Mode = "map"
)

// ParseMode maps a raw query value onto a Mode, defaulting to list.
func ParseMode(raw string) Mode {
	if Mode(raw) == ModeMap {
		return ModeMap
	}
	return ModeList
}

// Phase is the content state a view renders. Refreshing is not a phase:
// a background refresh keeps the previous content visible and only adds
// an indicator, so it is carried as a separate flag on the view.
type Phase string

const (
	// PhaseLoading covers the first load, before any data or error.
	PhaseLoading Phase = "loading"
	// PhaseEmptyFiltered means the last poll succeeded but the active
	// filters removed every bus.
	PhaseEmptyFiltered Phase = "empty_filtered"
	// PhaseEmptyError means there is nothing to show because fetching
	// failed before any data arrived.
	PhaseEmptyError Phase = "empty_error"
	PhasePopulated  Phase = "populated"
)

func phaseFor(snap poller.Snapshot, visible int) Phase {
	switch snap.State {
	case poller.StateIdle, poller.StateLoading:
		return PhaseLoading
	case poller.StateFailed:
		return PhaseEmptyError
	}
	if visible == 0 {
		return PhaseEmptyFiltered
	}
	return PhasePopulated
}

// ListRow is one bus in the list rendering.
type ListRow struct {
	BusID         string           `json:"busId"`
	VehicleNumber string           `json:"vehicleNumber"`
	RouteName     string           `json:"routeName"`
	Status        models.BusStatus `json:"status"`
	StatusLabel   string           `json:"statusLabel"`
	Passengers    int              `json:"passengers"`
	Capacity      int              `json:"capacity"`
	// OccupancyPct is 0 when capacity is unknown.
	OccupancyPct     int       `json:"occupancyPct"`
	EstimatedArrival time.Time `json:"estimatedArrival"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

// ListView is the full render model for list mode.
type ListView struct {
	Phase       Phase     `json:"phase"`
	Refreshing  bool      `json:"refreshing"`
	Error       string    `json:"error,omitempty"`
	Rows        []ListRow `json:"rows"`
	Total       int       `json:"total"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// BuildList shapes the filtered set for list rendering. Rows are
// ordered by route name then vehicle number so consecutive polls render
// stably even though the backend replaces the set wholesale.
func BuildList(snap poller.Snapshot, buses []models.ActiveBus) ListView {
	rows := make([]ListRow, 0, len(buses))
	for _, bus := range buses {
		row := ListRow{
			BusID:            bus.ID,
			VehicleNumber:    bus.Vehicle.Number,
			RouteName:        bus.Route.Name,
			Status:           bus.Status,
			StatusLabel:      bus.Status.Label(),
			Passengers:       bus.PassengerCount,
			Capacity:         bus.Vehicle.Capacity,
			EstimatedArrival: bus.EstimatedArrival,
			LastUpdated:      bus.LastUpdated,
		}
		if bus.Vehicle.Capacity > 0 {
			row.OccupancyPct = bus.PassengerCount * 100 / bus.Vehicle.Capacity
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].RouteName != rows[j].RouteName {
			return rows[i].RouteName < rows[j].RouteName
		}
		return rows[i].VehicleNumber < rows[j].VehicleNumber
	})
	return ListView{
		Phase:       phaseFor(snap, len(rows)),
		Refreshing:  snap.State == poller.StateRefreshing,
		Error:       snap.Err,
		Rows:        rows,
		Total:       len(rows),
		LastUpdated: snap.LastUpdated,
	}
}
