package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertus-andito/fake-news-detection/internal/core/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.Services.BaseURL)
	assert.Equal(t, model.MatchExact, cfg.MatchMode())
	assert.Equal(t, BackendHTTP, cfg.Graph.Backend)
	assert.Equal(t, 3*time.Second, cfg.Updates.PollInterval.Duration)
	assert.Equal(t, 200, cfg.Updates.MaxPolls)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[services]
base_url = "http://kg.internal:5000"
timeout = "5s"
requests_per_second = 2.5

[factcheck]
match_mode = "non-exact"

[graph]
backend = "bolt"

[memgraph]
uri = "bolt://graph:7687"
user = "memgraph"

[updates]
poll_interval = "250ms"
max_polls = 10
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://kg.internal:5000", cfg.Services.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Services.Timeout.Duration)
	assert.Equal(t, 2.5, cfg.Services.RequestsPerSecond)
	assert.Equal(t, model.MatchNonExact, cfg.MatchMode())
	assert.Equal(t, BackendBolt, cfg.Graph.Backend)
	assert.Equal(t, "bolt://graph:7687", cfg.Memgraph.URI)
	assert.Equal(t, 250*time.Millisecond, cfg.Updates.PollInterval.Duration)
	assert.Equal(t, 10, cfg.Updates.MaxPolls)
	// untouched sections keep their defaults
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("KGV_BASE_URL", "http://override:9000")
	t.Setenv("KGV_MATCH_MODE", "transitive")
	t.Setenv("PORT", "9999")

	cfg, err := Load(writeConfig(t, "[services]\nbase_url = \"http://file:5000\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "http://override:9000", cfg.Services.BaseURL)
	assert.Equal(t, model.MatchNonExact, cfg.MatchMode())
	assert.Equal(t, "9999", cfg.Server.Port)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad match mode", "[factcheck]\nmatch_mode = \"fuzzy\"\n"},
		{"bad backend", "[graph]\nbackend = \"sqlite\"\n"},
		{"bad duration", "[updates]\npoll_interval = \"soon\"\n"},
		{"zero interval", "[updates]\npoll_interval = \"0s\"\n"},
		{"malformed", "[services\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
