package webui

import (
	"embed"
	"html/template"
	"net/http"

	"console.busfleet.org/internal/filters"
	"console.busfleet.org/internal/logging"
	"console.busfleet.org/internal/notify"
	"console.busfleet.org/internal/view"
)

//go:embed templates/console.html templates/debug_index.html
var templateFS embed.FS

var consoleTemplate = template.Must(template.ParseFS(templateFS, "templates/console.html"))

// consolePage is everything the console template renders: the active
// filters (so the form round-trips), the chosen mode, and the view
// model for that mode.
type consolePage struct {
	Title         string
	Mode          view.Mode
	Filters       filters.FilterState
	Query         string
	List          *view.ListView
	Map           *view.MapView
	Notifications []notify.Notification
}

// consoleHandler renders the active-bus console. The same query
// parameters drive both the JSON endpoint and this page, so a rendered
// URL is shareable and restores the exact filter state.
func (webUI *WebUI) consoleHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	state := filters.Decode(query)
	mode := view.ParseMode(query.Get("view"))

	webUI.Poller.UpdateFilters(filters.ServerParams(state))

	snap := webUI.Poller.Snapshot()
	visible := filters.Apply(snap.Buses, state)

	page := consolePage{
		Title:         "Active Buses",
		Mode:          mode,
		Filters:       state,
		Query:         canonicalQuery(state),
		Notifications: webUI.Notifier.Active(),
	}

	switch mode {
	case view.ModeMap:
		mv := view.BuildMap(snap, visible, view.Viewport{}, webUI.Camera, webUI.Poller)
		page.Map = &mv
	default:
		lv := view.BuildList(snap, visible)
		page.List = &lv
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := consoleTemplate.Execute(w, page); err != nil {
		logging.LogError(webUI.Logger, "failed to render console page", err)
	}
}

// canonicalQuery is the shareable query string for the current filter
// state, used to build mode-toggle links.
func canonicalQuery(state filters.FilterState) string {
	encoded := filters.Encode(state)
	if len(encoded) == 0 {
		return ""
	}
	return "&" + encoded.Encode()
}
