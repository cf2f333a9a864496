// Package webui serves the server-rendered console pages: the
// operator-facing active-bus list and map, plus a development-only
// debug dump of internal state.
package webui

import (
	"net/http"

	"console.busfleet.org/internal/app"
)

type WebUI struct {
	*app.Application
}

func NewWebUI(application *app.Application) *WebUI {
	return &WebUI{Application: application}
}

func (webUI *WebUI) SetRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /console/active-buses", webUI.consoleHandler)
	mux.HandleFunc("GET /console/debug", webUI.debugIndexHandler)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/console/active-buses", http.StatusFound)
	})
}
