package restapi

import (
	"net/http"
	"strconv"

	"console.busfleet.org/internal/history"
	"console.busfleet.org/internal/models"
)

// historyHandler serves the recent-refreshes panel: poll outcomes and
// admin actions from the local audit store, newest first.
func (api *RestAPI) historyHandler(w http.ResponseWriter, r *http.Request) {
	if api.History == nil {
		api.sendNotFound(w, r)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			api.validationErrorResponse(w, r, map[string][]string{
				"limit": {"must be a positive integer"},
			})
			return
		}
		limit = parsed
	}

	refreshes, err := api.History.RecentRefreshes(r.Context(), limit)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	actions, err := api.History.RecentAdminActions(r.Context(), limit)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	data := struct {
		Refreshes    []history.RefreshEvent `json:"refreshes"`
		AdminActions []history.AdminAction  `json:"adminActions"`
	}{Refreshes: refreshes, AdminActions: actions}

	api.sendResponse(w, r, models.NewOKResponse(data, api.Clock))
}
