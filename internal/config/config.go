package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/albertus-andito/fake-news-detection/internal/core/model"
)

// Duration reads TOML strings such as "3s" or "1m30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type ServicesConfig struct {
	BaseURL           string   `toml:"base_url"`
	Timeout           Duration `toml:"timeout"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
}

type FactCheckConfig struct {
	MatchMode string `toml:"match_mode"`
}

type GraphConfig struct {
	Backend string `toml:"backend"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type UpdatesConfig struct {
	PollInterval Duration `toml:"poll_interval"`
	MaxPolls     int      `toml:"max_polls"`
}

type ServerConfig struct {
	Port string `toml:"port"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

type Config struct {
	Services  ServicesConfig  `toml:"services"`
	FactCheck FactCheckConfig `toml:"factcheck"`
	Graph     GraphConfig     `toml:"graph"`
	Memgraph  MemgraphConfig  `toml:"memgraph"`
	Updates   UpdatesConfig   `toml:"updates"`
	Server    ServerConfig    `toml:"server"`
	Logging   LoggingConfig   `toml:"logging"`
}

const (
	BackendHTTP = "http"
	BackendBolt = "bolt"
)

func Default() *Config {
	return &Config{
		Services: ServicesConfig{
			BaseURL:           "http://localhost:5000",
			Timeout:           Duration{30 * time.Second},
			RequestsPerSecond: 10,
		},
		FactCheck: FactCheckConfig{MatchMode: string(model.MatchExact)},
		Graph:     GraphConfig{Backend: BackendHTTP},
		Memgraph: MemgraphConfig{
			URI: "bolt://localhost:7687",
		},
		Updates: UpdatesConfig{
			PollInterval: Duration{3 * time.Second},
			MaxPolls:     200,
		},
		Server:  ServerConfig{Port: "8080"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the TOML file at path over the defaults. An empty path skips
// the file. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		key string
		dst *string
	}{
		{"KGV_BASE_URL", &c.Services.BaseURL},
		{"KGV_MATCH_MODE", &c.FactCheck.MatchMode},
		{"KGV_GRAPH_BACKEND", &c.Graph.Backend},
		{"MEMGRAPH_URI", &c.Memgraph.URI},
		{"MEMGRAPH_USER", &c.Memgraph.User},
		{"MEMGRAPH_PASSWORD", &c.Memgraph.Password},
		{"KGV_LOG_LEVEL", &c.Logging.Level},
		{"PORT", &c.Server.Port},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.key); ok && v != "" {
			*o.dst = v
		}
	}
}

func (c *Config) Validate() error {
	if c.Services.BaseURL == "" {
		return fmt.Errorf("services.base_url is required")
	}
	if _, err := model.ParseMatchMode(c.FactCheck.MatchMode); err != nil {
		return fmt.Errorf("factcheck.match_mode: %w", err)
	}
	switch strings.ToLower(c.Graph.Backend) {
	case BackendHTTP, BackendBolt:
	default:
		return fmt.Errorf("unsupported graph backend: %s", c.Graph.Backend)
	}
	if c.Updates.PollInterval.Duration <= 0 {
		return fmt.Errorf("updates.poll_interval must be positive")
	}
	if c.Updates.MaxPolls < 0 {
		return fmt.Errorf("updates.max_polls must not be negative")
	}
	return nil
}

// MatchMode returns the validated matching mode.
func (c *Config) MatchMode() model.MatchMode {
	mode, err := model.ParseMatchMode(c.FactCheck.MatchMode)
	if err != nil {
		return model.MatchExact
	}
	return mode
}
