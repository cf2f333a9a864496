package appconf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvFromString(t *testing.T) {
	tests := []struct {
		input    string
		expected Environment
	}{
		{"production", Production},
		{"prod", Production},
		{"PRODUCTION", Production},
		{" staging ", Staging},
		{"development", Development},
		{"", Development},
		{"garbage", Development},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, EnvFromString(tt.input))
		})
	}
}

func TestEnvironmentString(t *testing.T) {
	assert.Equal(t, "production", Production.String())
	assert.Equal(t, "staging", Staging.String())
	assert.Equal(t, "development", Development.String())
}

func TestSplitAPIKeys(t *testing.T) {
	assert.Equal(t, []string{"alpha", "beta"}, SplitAPIKeys("alpha, beta"))
	assert.Equal(t, []string{"solo"}, SplitAPIKeys("solo"))
	assert.Nil(t, SplitAPIKeys(" , ,"))
}

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "console.yml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadFileMergesOverFlags(t *testing.T) {
	path := writeConfigFile(t, `
env: production
port: 9090
upstreamBaseURL: https://fleet.example.com/api
pollIntervalSec: 15
rateLimit: 50
apiKeys: "ops-key, admin-key"
`)

	cfg := Config{
		Env:          Development,
		Port:         4000,
		PollInterval: 30 * time.Second,
		RateLimit:    100,
	}
	require.NoError(t, LoadFile(path, &cfg))

	assert.Equal(t, Production, cfg.Env)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "https://fleet.example.com/api", cfg.UpstreamBaseURL)
	assert.Equal(t, 15*time.Second, cfg.PollInterval)
	assert.Equal(t, 50, cfg.RateLimit)
	assert.Equal(t, []string{"ops-key", "admin-key"}, cfg.ApiKeys)
}

func TestLoadFileKeepsUnsetFields(t *testing.T) {
	path := writeConfigFile(t, `port: 9090`)

	cfg := Config{
		Port:         4000,
		PollInterval: 30 * time.Second,
	}
	require.NoError(t, LoadFile(path, &cfg))

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
}

func TestLoadFileRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"bad env", `env: sandbox`},
		{"bad port", `port: -1`},
		{"bad url", `upstreamBaseURL: not-a-url`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.contents)
			var cfg Config
			assert.Error(t, LoadFile(path, &cfg))
		})
	}
}

func TestLoadFileEmptyPathIsNoOp(t *testing.T) {
	cfg := Config{Port: 4000}
	require.NoError(t, LoadFile("", &cfg))
	assert.Equal(t, 4000, cfg.Port)
}

func TestLoadFileMissingFile(t *testing.T) {
	var cfg Config
	assert.Error(t, LoadFile(filepath.Join(t.TempDir(), "absent.yml"), &cfg))
}
