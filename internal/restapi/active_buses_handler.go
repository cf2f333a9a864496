package restapi

import (
	"net/http"
	"strconv"
	"time"

	"console.busfleet.org/internal/filters"
	"console.busfleet.org/internal/models"
	"console.busfleet.org/internal/view"
)

// activeBusesData is the payload for the active-buses endpoint. It
// carries the poll state alongside the rendered view so a failed
// background refresh shows up as a banner over stale data instead of a
// blank screen.
type activeBusesData struct {
	PollState   string              `json:"pollState"`
	Stale       bool                `json:"stale"`
	Error       string              `json:"error,omitempty"`
	Retryable   bool                `json:"retryable,omitempty"`
	LastUpdated time.Time           `json:"lastUpdated"`
	Filters     filters.FilterState `json:"filters"`
	Mode        view.Mode           `json:"mode"`
	List        *view.ListView      `json:"list,omitempty"`
	Map         *view.MapView       `json:"map,omitempty"`
}

func (api *RestAPI) activeBusesHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	state := filters.Decode(query)
	mode := view.ParseMode(query.Get("view"))

	// A changed filter narrows the server-side poll too; unchanged
	// params leave the poll cycle alone.
	api.Poller.UpdateFilters(filters.ServerParams(state))

	snap := api.Poller.Snapshot()
	visible := filters.Apply(snap.Buses, state)

	data := activeBusesData{
		PollState:   snap.State.String(),
		Stale:       snap.Stale(api.Clock.Now(), api.Config.StaleThreshold),
		Retryable:   snap.Retryable,
		LastUpdated: snap.LastUpdated,
		Filters:     state,
		Error:       snap.Err,
		Mode:        mode,
	}

	switch mode {
	case view.ModeMap:
		vp, fieldErrors := parseViewport(query)
		if len(fieldErrors) > 0 {
			api.validationErrorResponse(w, r, fieldErrors)
			return
		}
		mv := view.BuildMap(snap, visible, vp, api.Camera, api.Poller)
		data.Map = &mv
	default:
		lv := view.BuildList(snap, visible)
		data.List = &lv
	}

	api.sendResponse(w, r, models.NewOKResponse(data, api.Clock))
}

// parseViewport reads the optional map bounds from the query. All four
// values must be present together; a partial box is a validation error.
func parseViewport(query map[string][]string) (view.Viewport, map[string][]string) {
	keys := []string{"minLat", "minLng", "maxLat", "maxLng"}
	raw := make(map[string]string, len(keys))
	present := 0
	for _, key := range keys {
		if vals, ok := query[key]; ok && len(vals) > 0 && vals[0] != "" {
			raw[key] = vals[0]
			present++
		}
	}
	if present == 0 {
		return view.Viewport{}, nil
	}

	fieldErrors := make(map[string][]string)
	if present < len(keys) {
		for _, key := range keys {
			if _, ok := raw[key]; !ok {
				fieldErrors[key] = []string{"all four viewport bounds are required"}
			}
		}
		return view.Viewport{}, fieldErrors
	}

	parsed := make(map[string]float64, len(keys))
	for _, key := range keys {
		value, err := strconv.ParseFloat(raw[key], 64)
		if err != nil {
			fieldErrors[key] = []string{"must be a decimal degree value"}
			continue
		}
		parsed[key] = value
	}
	if len(fieldErrors) > 0 {
		return view.Viewport{}, fieldErrors
	}

	return view.Viewport{
		MinLat: parsed["minLat"],
		MinLng: parsed["minLng"],
		MaxLat: parsed["maxLat"],
		MaxLng: parsed["maxLng"],
	}, nil
}
