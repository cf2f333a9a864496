package restapi

import (
	"net/http"

	"console.busfleet.org/internal/logging"
	"console.busfleet.org/internal/models"
	"console.busfleet.org/internal/notify"
)

// adminClearHandler asks the upstream backend to drop its caches, then
// forces a fresh poll so the console reflects the reset. The action is
// recorded in the local audit store.
func (api *RestAPI) adminClearHandler(w http.ResponseWriter, r *http.Request) {
	if err := api.FleetClient.ClearCache(r.Context()); err != nil {
		logging.LogError(api.Logger, "upstream cache clear failed", err)
		api.Notifier.Show("Cache clear failed: "+err.Error(), notify.TypeError)
		api.sendError(w, r, http.StatusBadGateway, "upstream cache clear failed")
		return
	}

	if api.History != nil {
		requestID := GetRequestID(r.Context())
		if err := api.History.RecordAdminAction(r.Context(), api.Clock.Now(), "clear_cache", requestID); err != nil {
			logging.LogError(api.Logger, "failed to record admin action", err)
		}
	}

	api.Notifier.Show("Upstream cache cleared", notify.TypeSuccess)
	api.Poller.Refresh()

	api.sendResponse(w, r, models.NewOKResponse(nil, api.Clock))
}
