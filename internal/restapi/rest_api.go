package restapi

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"console.busfleet.org/internal/app"
)

type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

// NewRestAPI creates a new RestAPI instance with initialized rate limiter
func NewRestAPI(application *app.Application) *RestAPI {
	return &RestAPI{
		Application: application,
		rateLimiter: NewRateLimitMiddleware(application.Config.RateLimit, time.Second, application.Config.ApiKeys, application.Clock),
	}
}

// RateLimitHandler exposes the per-key rate limiting middleware for the
// composition root to wrap around the full mux.
func (api *RestAPI) RateLimitHandler() func(http.Handler) http.Handler {
	return api.rateLimiter.Handler()
}

// Shutdown releases resources held by the API surface.
func (api *RestAPI) Shutdown() {
	if api.rateLimiter != nil {
		api.rateLimiter.Stop()
	}
}

// referenceCacheSeconds controls browser caching for the dropdown data
// endpoints. Routes and companies change rarely relative to bus
// positions.
const referenceCacheSeconds = 300

func (api *RestAPI) SetRoutes(mux *http.ServeMux) {
	mux.Handle("GET /api/active-buses.json", http.HandlerFunc(api.activeBusesHandler))
	mux.Handle("GET /api/routes.json", CacheControlMiddleware(referenceCacheSeconds, http.HandlerFunc(api.routesHandler)))
	mux.Handle("GET /api/companies.json", CacheControlMiddleware(referenceCacheSeconds, http.HandlerFunc(api.companiesHandler)))

	mux.Handle("POST /api/refresh.json", requireAPIKey(api, api.refreshHandler))
	mux.Handle("POST /api/polling/pause.json", requireAPIKey(api, api.pauseHandler))
	mux.Handle("POST /api/polling/resume.json", requireAPIKey(api, api.resumeHandler))

	mux.Handle("GET /api/notifications.json", http.HandlerFunc(api.notificationsHandler))
	mux.Handle("POST /api/notifications/dismiss.json", http.HandlerFunc(api.dismissNotificationHandler))
	mux.Handle("POST /api/notifications/clear.json", http.HandlerFunc(api.clearNotificationsHandler))

	mux.Handle("POST /api/search.json", http.HandlerFunc(api.searchInputHandler))
	mux.Handle("GET /api/search.json", http.HandlerFunc(api.searchStateHandler))

	mux.Handle("POST /api/map/gesture.json", http.HandlerFunc(api.mapGestureHandler))
	mux.Handle("POST /api/map/recenter.json", http.HandlerFunc(api.mapRecenterHandler))

	mux.Handle("POST /api/admin/clear.json", requireAPIKey(api, api.adminClearHandler))
	mux.Handle("GET /api/history.json", http.HandlerFunc(api.historyHandler))

	mux.Handle("GET /healthz", http.HandlerFunc(api.healthHandler))
	if api.Metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(api.Metrics.Registry, promhttp.HandlerOpts{}))
	}
}

// requireAPIKey gates mutating endpoints behind the configured keys.
func requireAPIKey(api *RestAPI, handler http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.sendUnauthorized(w, r)
			return
		}
		handler(w, r)
	})
}
