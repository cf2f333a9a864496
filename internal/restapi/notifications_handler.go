package restapi

import (
	"net/http"

	"console.busfleet.org/internal/models"
	"console.busfleet.org/internal/notify"
)

// notificationsHandler lists notifications that have not yet expired or
// been dismissed, in the order they were shown.
func (api *RestAPI) notificationsHandler(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Notifications []notify.Notification `json:"notifications"`
	}{Notifications: api.Notifier.Active()}

	api.sendResponse(w, r, models.NewOKResponse(data, api.Clock))
}

// dismissNotificationHandler hides one notification by id. Dismissing
// an unknown or already-expired id succeeds; the end state is the same.
func (api *RestAPI) dismissNotificationHandler(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		api.validationErrorResponse(w, r, map[string][]string{
			"id": {"notification id is required"},
		})
		return
	}

	api.Notifier.Hide(id)
	api.sendResponse(w, r, models.NewOKResponse(nil, api.Clock))
}

func (api *RestAPI) clearNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	api.Notifier.ClearAll()
	api.sendResponse(w, r, models.NewOKResponse(nil, api.Clock))
}
