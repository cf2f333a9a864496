package restapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"console.busfleet.org/internal/notify"
)

func TestNotificationsList(t *testing.T) {
	env := newTestEnv(t)
	handler := env.serve()

	env.api.Notifier.Show("Route updated", notify.TypeSuccess)
	env.api.Notifier.Show("Fetch failed", notify.TypeError)

	code, body := getJSON(t, handler, "/api/notifications.json")
	assert.Equal(t, http.StatusOK, code)

	data := body["data"].(map[string]any)
	items := data["notifications"].([]any)
	require.Len(t, items, 2)

	first := items[0].(map[string]any)
	assert.Equal(t, "Route updated", first["message"])
	assert.Equal(t, "success", first["type"])
}

func TestNotificationDismiss(t *testing.T) {
	env := newTestEnv(t)
	handler := env.serve()

	id := env.api.Notifier.Show("Route updated", notify.TypeSuccess)

	code, _ := postJSON(t, handler, "/api/notifications/dismiss.json?id="+id)
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, env.api.Notifier.Active())

	// Dismissing again is a no-op, not an error.
	code, _ = postJSON(t, handler, "/api/notifications/dismiss.json?id="+id)
	assert.Equal(t, http.StatusOK, code)
}

func TestNotificationDismissRequiresID(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/notifications/dismiss.json", nil)
	w := httptest.NewRecorder()
	env.serve().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotificationsClearAll(t *testing.T) {
	env := newTestEnv(t)
	handler := env.serve()

	env.api.Notifier.Show("one", notify.TypeInfo)
	env.api.Notifier.Show("two", notify.TypeWarning)

	code, _ := postJSON(t, handler, "/api/notifications/clear.json")
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, env.api.Notifier.Active())
}
