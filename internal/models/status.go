package models

// BusStatus is the closed set of states a bus in service can report.
type BusStatus string

const (
	StatusOnRoute BusStatus = "on_route"
	StatusAtStop  BusStatus = "at_stop"
	StatusDelayed BusStatus = "delayed"
)

// ParseBusStatus validates a raw status value against the closed enum.
// Unknown values return false rather than an error so callers can drop
// them silently.
func ParseBusStatus(raw string) (BusStatus, bool) {
	switch BusStatus(raw) {
	case StatusOnRoute, StatusAtStop, StatusDelayed:
		return BusStatus(raw), true
	default:
		return "", false
	}
}

// Label returns a human-readable form for view rendering.
func (s BusStatus) Label() string {
	switch s {
	case StatusOnRoute:
		return "On Route"
	case StatusAtStop:
		return "At Stop"
	case StatusDelayed:
		return "Delayed"
	default:
		return string(s)
	}
}
