package filters

import (
	"strings"

	"console.busfleet.org/internal/models"
)

// Apply narrows the last fetched full set by the current filter without a
// network round-trip, so filter changes feel instant while the same
// dimensions are also sent to the backend on the next poll.
//
// Apply is pure: it never mutates the input and returns a fresh slice on
// every call. All dimensions combine with AND. Search matches the vehicle
// number or the route name, case-insensitively; a bus passes if either
// matches.
func Apply(buses []models.ActiveBus, f FilterState) []models.ActiveBus {
	result := make([]models.ActiveBus, 0, len(buses))
	needle := strings.ToLower(f.Search)

	for _, bus := range buses {
		if needle != "" && !matchesSearch(bus, needle) {
			continue
		}
		if f.RouteID != "" && bus.Route.ID != f.RouteID {
			continue
		}
		if f.CompanyID != "" && bus.Vehicle.CompanyID != f.CompanyID {
			continue
		}
		if f.Status != "" && bus.Status != f.Status {
			continue
		}
		result = append(result, bus)
	}

	return result
}

func matchesSearch(bus models.ActiveBus, needle string) bool {
	return strings.Contains(strings.ToLower(bus.Vehicle.Number), needle) ||
		strings.Contains(strings.ToLower(bus.Route.Name), needle)
}
