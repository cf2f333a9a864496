package webui

import (
	"html/template"
	"log/slog"
	"net/http"

	"github.com/davecgh/go-spew/spew"

	"console.busfleet.org/internal/appconf"
)

type debugData struct {
	Title string
	Pre   string
}

func writeDebugData(w http.ResponseWriter, title string, data interface{}) {
	content := spew.Sdump(data)
	w.Header().Set("Content-Type", "text/html")
	tmpl, err := template.ParseFS(templateFS, "templates/debug_index.html")
	if err != nil {
		slog.Error("failed to parse debug template", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	dataStruct := debugData{
		Title: title,
		Pre:   content,
	}

	err = tmpl.Execute(w, dataStruct)
	if err != nil {
		slog.Error("failed to execute debug template", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	if webUI.Config.Env == appconf.Production {
		http.NotFound(w, r)
		return
	}
	dataType := r.URL.Query().Get("dataType")

	var data interface{}
	var title string

	switch dataType {
	case "snapshot":
		data = webUI.Poller.Snapshot()
		title = "Poller - Snapshot"
	case "notifications":
		data = webUI.Notifier.Active()
		title = "Notifications - Active"
	case "config":
		data = webUI.Config
		title = "Console - Config"
	case "history":
		if webUI.History == nil {
			data = map[string]string{"error": "history store not configured"}
			title = "History - Recent Refreshes"
			break
		}
		refreshes, err := webUI.History.RecentRefreshes(r.Context(), 50)
		if err != nil {
			data = map[string]string{"error": err.Error()}
		} else {
			data = refreshes
		}
		title = "History - Recent Refreshes"
	default:
		data = map[string]string{
			"error": "Please use one of the following: snapshot, notifications, config, history.",
		}
		title = "Choose a data type"
	}

	writeDebugData(w, title, data)
}
