package restapi

import (
	"net/http"

	"console.busfleet.org/internal/models"
)

type pollingStatus struct {
	Paused    bool   `json:"paused"`
	PollState string `json:"pollState"`
}

func (api *RestAPI) pollingStatusData() pollingStatus {
	return pollingStatus{
		Paused:    api.Poller.IsPaused(),
		PollState: api.Poller.Snapshot().State.String(),
	}
}

// refreshHandler triggers an immediate poll. This is the retry path
// after a failed first load and the "refresh now" button otherwise.
func (api *RestAPI) refreshHandler(w http.ResponseWriter, r *http.Request) {
	api.Poller.Refresh()
	api.sendResponse(w, r, models.NewOKResponse(api.pollingStatusData(), api.Clock))
}

// pauseHandler stops the poll timer. Manual refreshes keep working
// while paused.
func (api *RestAPI) pauseHandler(w http.ResponseWriter, r *http.Request) {
	api.Poller.Pause()
	api.sendResponse(w, r, models.NewOKResponse(api.pollingStatusData(), api.Clock))
}

// resumeHandler restarts the poll timer from a full interval.
func (api *RestAPI) resumeHandler(w http.ResponseWriter, r *http.Request) {
	api.Poller.Resume()
	api.sendResponse(w, r, models.NewOKResponse(api.pollingStatusData(), api.Clock))
}
