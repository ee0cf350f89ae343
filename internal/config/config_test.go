package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/jobrunner/sphaera/internal/domain"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Address() != "0.0.0.0:8080" {
		t.Errorf("Address() = %q", cfg.Server.Address())
	}
	if cfg.Engine.GlobeFrame != "CRS:84" {
		t.Errorf("GlobeFrame = %q, want CRS:84", cfg.Engine.GlobeFrame)
	}
	if cfg.Engine.Projection != "" {
		t.Errorf("Projection = %q, want none", cfg.Engine.Projection)
	}
	if cfg.Sync.Interval != 5*time.Minute {
		t.Errorf("Sync.Interval = %v", cfg.Sync.Interval)
	}
	if !cfg.Watcher.Enabled || cfg.Watcher.Debounce != 500*time.Millisecond {
		t.Errorf("Watcher = %+v", cfg.Watcher)
	}
	if cfg.Storage.Type != "local" || cfg.Storage.HTTP.IndexFile != "index.txt" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Server.CORS.Enabled() {
		t.Error("CORS should be disabled by default")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "sphaera.yaml")
	content := `
server:
  port: 9000
  cors:
    allowed_origins: ["https://sky.example.org"]
engine:
  globe_frame: Equatorial
  projection: Aitoff
storage:
  type: http
  http:
    base_url: https://data.example.org
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SPHAERA_METRICS_PORT", "9191")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9000 || !cfg.Server.CORS.Enabled() {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Engine.GlobeFrame != "Equatorial" || cfg.Engine.Projection != "Aitoff" {
		t.Errorf("Engine = %+v", cfg.Engine)
	}
	if cfg.Storage.HTTP.BaseURL != "https://data.example.org" {
		t.Errorf("BaseURL = %q", cfg.Storage.HTTP.BaseURL)
	}
	if cfg.Metrics.Port != 9191 {
		t.Errorf("Metrics.Port = %d, want 9191 from environment", cfg.Metrics.Port)
	}
}

func validConfig() Config {
	return Config{
		Server:  ServerConfig{Port: 8080},
		Engine:  EngineConfig{GlobeFrame: "CRS:84", Pole: "north"},
		Storage: StorageConfig{Type: "local", LocalPath: "./data"},
		Metrics: MetricsConfig{Enabled: true, Port: 9090},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "bad port", modify: func(c *Config) { c.Server.Port = 0 }, field: "server.port"},
		{name: "bad metrics port", modify: func(c *Config) { c.Metrics.Port = 70000 }, field: "metrics.port"},
		{name: "metrics disabled ignores port", modify: func(c *Config) { c.Metrics = MetricsConfig{} }},
		{name: "unknown globe frame", modify: func(c *Config) { c.Engine.GlobeFrame = "Venus" }, field: "engine.globe_frame"},
		{name: "legacy globe frame", modify: func(c *Config) { c.Engine.GlobeFrame = "EPSG:4326" }},
		{name: "unknown dataset frame", modify: func(c *Config) { c.Engine.DatasetFrame = "Venus" }, field: "engine.dataset_frame"},
		{name: "unknown pole", modify: func(c *Config) { c.Engine.Pole = "east" }, field: "engine.pole"},
		{name: "negative sync", modify: func(c *Config) { c.Sync.Interval = -time.Second }, field: "sync.interval"},
		{name: "tls without domains", modify: func(c *Config) { c.TLS = TLSConfig{Enabled: true, Email: "a@b.c"} }, field: "tls.domains"},
		{name: "tls without email", modify: func(c *Config) { c.TLS = TLSConfig{Enabled: true, Domains: []string{"x"}} }, field: "tls.email"},
		{name: "s3 without bucket", modify: func(c *Config) { c.Storage.Type = "s3" }, field: "storage.s3.bucket"},
		{
			name:   "s3 without region",
			modify: func(c *Config) { c.Storage = StorageConfig{Type: "s3", S3: S3Config{Bucket: "b"}} },
			field:  "storage.s3.region",
		},
		{name: "azure without account", modify: func(c *Config) {
			c.Storage = StorageConfig{Type: "azure", Azure: AzureConfig{Container: "c"}}
		}, field: "storage.azure"},
		{name: "http without url", modify: func(c *Config) { c.Storage.Type = "http" }, field: "storage.http.base_url"},
		{name: "unknown storage", modify: func(c *Config) { c.Storage.Type = "ftp" }, field: "storage.type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)
			err := cfg.Validate()

			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			var cfgErr *domain.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() error = %v, want ConfigError", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.field)
			}
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Error("ConfigError should unwrap to ErrInvalidInput")
			}
		})
	}
}
