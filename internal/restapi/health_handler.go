package restapi

import (
	"encoding/json"
	"net/http"

	"console.busfleet.org/internal/logging"
)

// HealthResponse represents the JSON response from the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// healthHandler reports liveness and readiness. The console stays
// healthy while holding stale data; only a missing poller or a broken
// audit store makes it unavailable.
func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if api.Application == nil || api.Poller == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(HealthResponse{
			Status: "unavailable",
			Detail: "poller not initialized",
		})
		return
	}

	if api.History != nil && api.History.DB != nil {
		if err := api.History.DB.PingContext(r.Context()); err != nil {
			logging.LogError(api.Logger, "history DB ping failed", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(HealthResponse{
				Status: "unavailable",
				Detail: "history database connection failed",
			})
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{
		Status: "ok",
	})
}
