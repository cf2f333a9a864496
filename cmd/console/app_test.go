package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"console.busfleet.org/internal/appconf"
)

func TestParseAPIKeys(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Single key",
			input:    "test-key",
			expected: []string{"test-key"},
		},
		{
			name:     "Multiple keys",
			input:    "key1,key2,key3",
			expected: []string{"key1", "key2", "key3"},
		},
		{
			name:     "Keys with spaces",
			input:    " key1 , key2 , key3 ",
			expected: []string{"key1", "key2", "key3"},
		},
		{
			name:     "Empty string",
			input:    "",
			expected: []string{},
		},
		{
			name:     "Keys with mixed whitespace",
			input:    "key1,  key2  ,   key3",
			expected: []string{"key1", "key2", "key3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseAPIKeys(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func testConfig() appconf.Config {
	return appconf.Config{
		Port:            4000,
		Env:             appconf.Development,
		UpstreamBaseURL: "http://localhost:9999",
		PollInterval:    time.Hour,
		StaleThreshold:  2 * time.Minute,
		RateLimit:       100,
		ApiKeys:         []string{"test"},
		HistoryDBPath:   ":memory:",
	}
}

func TestBuildApplication(t *testing.T) {
	coreApp, err := BuildApplication(testConfig())

	require.NoError(t, err, "BuildApplication should not return an error")
	assert.NotNil(t, coreApp, "Application should not be nil")
	assert.NotNil(t, coreApp.Logger, "Logger should be initialized")
	assert.NotNil(t, coreApp.Poller, "Poller should be initialized")
	assert.NotNil(t, coreApp.Notifier, "Notifier should be initialized")
	assert.NotNil(t, coreApp.Reference, "Reference provider should be initialized")
	assert.NotNil(t, coreApp.History, "History store should be initialized")
	assert.NotNil(t, coreApp.Metrics, "Metrics should be initialized")
	assert.Equal(t, testConfig(), coreApp.Config, "Config should match input")

	require.NoError(t, coreApp.History.Close())
}

func TestBuildApplicationWithoutHistory(t *testing.T) {
	cfg := testConfig()
	cfg.HistoryDBPath = ""

	coreApp, err := BuildApplication(cfg)

	require.NoError(t, err)
	assert.Nil(t, coreApp.History, "empty path disables the history store")
}

func TestCreateServer(t *testing.T) {
	cfg := testConfig()
	cfg.Port = 8080

	coreApp, err := BuildApplication(cfg)
	require.NoError(t, err, "BuildApplication should not fail")
	defer func() { _ = coreApp.History.Close() }()

	srv, api := CreateServer(coreApp, cfg)
	defer api.Shutdown()

	assert.NotNil(t, srv, "Server should not be nil")
	assert.Equal(t, ":8080", srv.Addr, "Server address should match port")
	assert.NotNil(t, srv.Handler, "Server handler should be set")
	assert.Equal(t, time.Minute, srv.IdleTimeout, "IdleTimeout should be 1 minute")
	assert.Equal(t, 5*time.Second, srv.ReadTimeout, "ReadTimeout should be 5 seconds")
	assert.Equal(t, 10*time.Second, srv.WriteTimeout, "WriteTimeout should be 10 seconds")
}

func TestCreateServerHandlerResponds(t *testing.T) {
	cfg := testConfig()

	coreApp, err := BuildApplication(cfg)
	require.NoError(t, err, "BuildApplication should not fail")
	defer func() { _ = coreApp.History.Close() }()

	srv, api := CreateServer(coreApp, cfg)
	defer api.Shutdown()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.Handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, "health endpoint should respond through the full middleware stack")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"), "request ID middleware should be active")
}
