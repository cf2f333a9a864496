package models

import "time"

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// VehicleRef points at the static vehicle record behind an active bus.
type VehicleRef struct {
	ID        string `json:"id"`
	Number    string `json:"number"`
	Capacity  int    `json:"capacity"`
	CompanyID string `json:"companyId,omitempty"`
}

// RouteRef points at the route an active bus is assigned to.
type RouteRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ActiveBus represents one vehicle currently in service on a route, as
// returned by the fleet backend. The full set is replaced wholesale on
// every successful poll; no identity is preserved across polls.
//
// PassengerCount <= Vehicle.Capacity is expected but not enforced here;
// the backend owns that invariant.
type ActiveBus struct {
	ID               string    `json:"id"`
	Vehicle          VehicleRef `json:"vehicle"`
	Route            RouteRef  `json:"route"`
	CurrentLocation  LatLng    `json:"currentLocation"`
	Status           BusStatus `json:"status"`
	PassengerCount   int       `json:"passengerCount"`
	EstimatedArrival time.Time `json:"estimatedArrival"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

// Route is the route metadata used to populate the filter dropdown.
type Route struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName,omitempty"`
	CompanyID string `json:"companyId,omitempty"`
	Color     string `json:"color,omitempty"`
}

// Company is an operator a vehicle belongs to.
type Company struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
