package view

import (
	"sync"

	"github.com/tidwall/rtree"
	"github.com/twpayne/go-polyline"

	"console.busfleet.org/internal/models"
	"console.busfleet.org/internal/poller"
	"console.busfleet.org/internal/utils"
)

// Viewport is a lat/lng bounding box. A zero viewport means "no
// narrowing": every bus is in view.
type Viewport struct {
	MinLat float64 `json:"minLat"`
	MinLng float64 `json:"minLng"`
	MaxLat float64 `json:"maxLat"`
	MaxLng float64 `json:"maxLng"`
}

// IsZero reports whether the viewport carries no bounds at all.
func (v Viewport) IsZero() bool {
	return v.MinLat == 0 && v.MinLng == 0 && v.MaxLat == 0 && v.MaxLng == 0
}

// Index narrows a bus set to a viewport via an in-memory R-tree. It is
// rebuilt from each snapshot; buses carry no identity across polls so
// there is nothing to update incrementally.
type Index struct {
	tree  rtree.RTreeG[int]
	buses []models.ActiveBus
}

// NewIndex builds a point index over the given set.
func NewIndex(buses []models.ActiveBus) *Index {
	ix := &Index{buses: buses}
	for i, bus := range buses {
		pt := [2]float64{bus.CurrentLocation.Lng, bus.CurrentLocation.Lat}
		ix.tree.Insert(pt, pt, i)
	}
	return ix
}

// Within returns the buses inside the viewport, in input order. A zero
// viewport returns the whole set.
func (ix *Index) Within(vp Viewport) []models.ActiveBus {
	if vp.IsZero() {
		return ix.buses
	}
	var hits []int
	ix.tree.Search(
		[2]float64{vp.MinLng, vp.MinLat},
		[2]float64{vp.MaxLng, vp.MaxLat},
		func(min, max [2]float64, i int) bool {
			hits = append(hits, i)
			return true
		},
	)
	// Search order is spatial; restore input order for stable rendering.
	inView := make(map[int]bool, len(hits))
	for _, i := range hits {
		inView[i] = true
	}
	out := make([]models.ActiveBus, 0, len(hits))
	for i, bus := range ix.buses {
		if inView[i] {
			out = append(out, bus)
		}
	}
	return out
}

// Centroid is the arithmetic mean position of the set. The zero value
// is returned for an empty set; callers gate on bus count first.
func Centroid(buses []models.ActiveBus) models.LatLng {
	if len(buses) == 0 {
		return models.LatLng{}
	}
	var lat, lng float64
	for _, bus := range buses {
		lat += bus.CurrentLocation.Lat
		lng += bus.CurrentLocation.Lng
	}
	n := float64(len(buses))
	return models.LatLng{Lat: lat / n, Lng: lng / n}
}

// BoundsOf returns the bounding box of the set, and false when the set
// is empty.
func BoundsOf(buses []models.ActiveBus) (Viewport, bool) {
	if len(buses) == 0 {
		return Viewport{}, false
	}
	vp := Viewport{
		MinLat: buses[0].CurrentLocation.Lat,
		MaxLat: buses[0].CurrentLocation.Lat,
		MinLng: buses[0].CurrentLocation.Lng,
		MaxLng: buses[0].CurrentLocation.Lng,
	}
	for _, bus := range buses[1:] {
		loc := bus.CurrentLocation
		if loc.Lat < vp.MinLat {
			vp.MinLat = loc.Lat
		}
		if loc.Lat > vp.MaxLat {
			vp.MaxLat = loc.Lat
		}
		if loc.Lng < vp.MinLng {
			vp.MinLng = loc.Lng
		}
		if loc.Lng > vp.MaxLng {
			vp.MaxLng = loc.Lng
		}
	}
	return vp, true
}

// EncodeTrail encodes a position history as a Google polyline. Empty
// and single-point histories encode to an empty string; a one-point
// trail draws nothing useful.
func EncodeTrail(points []models.LatLng) string {
	if len(points) < 2 {
		return ""
	}
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Lat, p.Lng}
	}
	return string(polyline.EncodeCoords(coords))
}

func trailMeters(points []models.LatLng) float64 {
	if len(points) < 2 {
		return 0
	}
	pairs := make([][2]float64, len(points))
	for i, p := range points {
		pairs[i] = [2]float64{p.Lat, p.Lng}
	}
	return utils.PathMeters(pairs)
}

// Camera tracks whether the map should keep recentering itself on new
// data. The first user-initiated pan or zoom suppresses auto-centering
// until an explicit recenter request.
type Camera struct {
	mu        sync.Mutex
	userMoved bool
}

// UserGesture records a user-initiated pan or zoom.
func (c *Camera) UserGesture() {
	c.mu.Lock()
	c.userMoved = true
	c.mu.Unlock()
}

// Recenter re-enables auto-centering.
func (c *Camera) Recenter() {
	c.mu.Lock()
	c.userMoved = false
	c.mu.Unlock()
}

// AutoCenter reports whether the map may recenter on the next render.
func (c *Camera) AutoCenter() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.userMoved
}

// Marker is one bus on the map.
type Marker struct {
	BusID         string           `json:"busId"`
	VehicleNumber string           `json:"vehicleNumber"`
	RouteName     string           `json:"routeName"`
	Status        models.BusStatus `json:"status"`
	StatusLabel   string           `json:"statusLabel"`
	Position      models.LatLng    `json:"position"`
	// Trail is the bus's recent path as an encoded polyline, empty when
	// fewer than two positions have been seen.
	Trail string `json:"trail,omitempty"`
	// TrailMeters is the distance covered along the trail.
	TrailMeters float64 `json:"trailMeters,omitempty"`
}

// MapView is the full render model for map mode.
type MapView struct {
	Phase      Phase         `json:"phase"`
	Refreshing bool          `json:"refreshing"`
	Error      string        `json:"error,omitempty"`
	Markers    []Marker      `json:"markers"`
	Total      int           `json:"total"`
	Center     models.LatLng `json:"center"`
	Bounds     Viewport      `json:"bounds"`
	AutoCenter bool          `json:"autoCenter"`
}

// TrailSource resolves a bus's recent position history.
type TrailSource interface {
	Trail(busID string) []models.LatLng
}

// BuildMap shapes the filtered set for map rendering. The viewport
// narrows which buses become markers; center and bounds always describe
// the full filtered set so a recenter shows everything.
func BuildMap(snap poller.Snapshot, buses []models.ActiveBus, vp Viewport, cam *Camera, trails TrailSource) MapView {
	visible := NewIndex(buses).Within(vp)
	markers := make([]Marker, 0, len(visible))
	for _, bus := range visible {
		marker := Marker{
			BusID:         bus.ID,
			VehicleNumber: bus.Vehicle.Number,
			RouteName:     bus.Route.Name,
			Status:        bus.Status,
			StatusLabel:   bus.Status.Label(),
			Position:      bus.CurrentLocation,
		}
		if trails != nil {
			trail := trails.Trail(bus.ID)
			marker.Trail = EncodeTrail(trail)
			marker.TrailMeters = trailMeters(trail)
		}
		markers = append(markers, marker)
	}
	bounds, _ := BoundsOf(buses)
	mv := MapView{
		Phase:      phaseFor(snap, len(buses)),
		Refreshing: snap.State == poller.StateRefreshing,
		Error:      snap.Err,
		Markers:    markers,
		Total:      len(buses),
		Center:     Centroid(buses),
		Bounds:     bounds,
	}
	if cam != nil {
		mv.AutoCenter = cam.AutoCenter()
	}
	return mv
}
