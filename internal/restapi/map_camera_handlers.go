package restapi

import (
	"net/http"

	"console.busfleet.org/internal/models"
)

type cameraStatus struct {
	AutoCenter bool `json:"autoCenter"`
}

// mapGestureHandler records a user pan or zoom. The first gesture stops
// the map from recentering itself on every poll.
func (api *RestAPI) mapGestureHandler(w http.ResponseWriter, r *http.Request) {
	api.Camera.UserGesture()
	api.sendResponse(w, r, models.NewOKResponse(cameraStatus{AutoCenter: api.Camera.AutoCenter()}, api.Clock))
}

// mapRecenterHandler re-enables auto-centering after a user gesture.
func (api *RestAPI) mapRecenterHandler(w http.ResponseWriter, r *http.Request) {
	api.Camera.Recenter()
	api.sendResponse(w, r, models.NewOKResponse(cameraStatus{AutoCenter: api.Camera.AutoCenter()}, api.Clock))
}
