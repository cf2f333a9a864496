package restapi

import (
	"net/http"

	"console.busfleet.org/internal/models"
)

type searchState struct {
	// Buffer reflects every keystroke immediately.
	Buffer string `json:"buffer"`
	// Committed is the debounced value that belongs in the shareable
	// URL; it trails the buffer by one quiet window while typing.
	Committed string `json:"committed"`
}

func (api *RestAPI) searchStateData() searchState {
	return searchState{
		Buffer:    api.Search.Buffer(),
		Committed: api.Search.Committed(),
	}
}

// searchInputHandler receives typed search input. Each call buffers the
// value; the commit happens once the typing goes quiet. submit=true
// commits immediately (enter key, field blur).
func (api *RestAPI) searchInputHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	value := query.Get("q")

	if query.Get("submit") == "true" {
		api.Search.Submit(value)
	} else {
		api.Search.Type(value)
	}

	api.sendResponse(w, r, models.NewOKResponse(api.searchStateData(), api.Clock))
}

// searchStateHandler reports the buffer and the committed term so the
// front end can sync its URL after the debounce window closes.
func (api *RestAPI) searchStateHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewOKResponse(api.searchStateData(), api.Clock))
}
