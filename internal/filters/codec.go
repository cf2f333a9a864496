// Package filters implements the shareable filter state of the active-bus
// console: a bidirectional codec between a structured filter value and URL
// query parameters, plus the synchronous in-memory re-filter applied to
// the last polled snapshot.
package filters

import (
	"net/url"

	"console.busfleet.org/internal/models"
)

// Query parameter names understood by the codec. The URL is the single
// source of truth for filter state; FilterState is a derived value.
const (
	ParamSearch    = "search"
	ParamRouteID   = "routeId"
	ParamCompanyID = "companyId"
	ParamStatus    = "status"
)

// FilterState captures one filter per dimension. Empty fields mean "no
// constraint on this dimension"; dimensions combine with logical AND.
// FilterState values are replaced wholesale, never mutated in place.
type FilterState struct {
	Search    string
	RouteID   string
	CompanyID string
	Status    models.BusStatus
}

// IsZero reports whether no dimension is constrained.
func (f FilterState) IsZero() bool {
	return f == FilterState{}
}

// Decode reads the known filter keys from query parameters. An invalid
// status value is dropped silently; Decode never fails.
func Decode(values url.Values) FilterState {
	f := FilterState{
		Search:    values.Get(ParamSearch),
		RouteID:   values.Get(ParamRouteID),
		CompanyID: values.Get(ParamCompanyID),
	}
	if status, ok := models.ParseBusStatus(values.Get(ParamStatus)); ok {
		f.Status = status
	}
	return f
}

// Encode emits only the constrained dimensions, so that absent keys and
// empty values round-trip identically.
func Encode(f FilterState) url.Values {
	values := url.Values{}
	if f.Search != "" {
		values.Set(ParamSearch, f.Search)
	}
	if f.RouteID != "" {
		values.Set(ParamRouteID, f.RouteID)
	}
	if f.CompanyID != "" {
		values.Set(ParamCompanyID, f.CompanyID)
	}
	if f.Status != "" {
		values.Set(ParamStatus, string(f.Status))
	}
	return values
}

// ServerParams returns the subset of the filter sent to the fleet backend
// on each poll. The backend contract accepts routeId, companyId and
// status; free-text search is applied locally only.
func ServerParams(f FilterState) url.Values {
	values := url.Values{}
	if f.RouteID != "" {
		values.Set(ParamRouteID, f.RouteID)
	}
	if f.CompanyID != "" {
		values.Set(ParamCompanyID, f.CompanyID)
	}
	if f.Status != "" {
		values.Set(ParamStatus, string(f.Status))
	}
	return values
}
