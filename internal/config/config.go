// Package config provides configuration management using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jobrunner/sphaera/internal/domain"
)

// EnvPrefix prefixes every environment variable, e.g. SPHAERA_SERVER_PORT.
const EnvPrefix = "SPHAERA"

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Storage StorageConfig `mapstructure:"storage"`
	Sync    SyncConfig    `mapstructure:"sync"`
	Watcher WatcherConfig `mapstructure:"watcher"`
	TLS     TLSConfig     `mapstructure:"tls"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"` // e.g., ["https://example.com", "*.sub.domain.tld"]
}

// Enabled returns true if CORS is configured with at least one allowed origin.
func (c *CORSConfig) Enabled() bool {
	return len(c.AllowedOrigins) > 0
}

// EngineConfig selects the globe frame datasets are folded into and the
// defaults applied to requests.
type EngineConfig struct {
	GlobeFrame   string  `mapstructure:"globe_frame"`
	Projection   string  `mapstructure:"projection"` // empty = unprojected
	Lambda0      float64 `mapstructure:"lambda0"`    // Mercator central meridian (degrees)
	Pole         string  `mapstructure:"pole"`       // Azimuth pole: north, south
	DatasetFrame string  `mapstructure:"dataset_frame"`
	QueryLimit   int     `mapstructure:"query_limit"`
}

// StorageConfig holds dataset storage configuration.
type StorageConfig struct {
	Type      string      `mapstructure:"type"` // s3, azure, http, local
	LocalPath string      `mapstructure:"local_path"`
	S3        S3Config    `mapstructure:"s3"`
	Azure     AzureConfig `mapstructure:"azure"`
	HTTP      HTTPConfig  `mapstructure:"http"`
}

// S3Config holds AWS S3 configuration.
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Prefix          string `mapstructure:"prefix"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// AzureConfig holds Azure Blob Storage configuration.
type AzureConfig struct {
	Container        string `mapstructure:"container"`
	AccountName      string `mapstructure:"account_name"`
	AccountKey       string `mapstructure:"account_key"`
	ConnectionString string `mapstructure:"connection_string"`
	Prefix           string `mapstructure:"prefix"`
}

// HTTPConfig holds HTTP dataset source configuration.
type HTTPConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	IndexFile string        `mapstructure:"index_file"` // default: index.txt
	Timeout   time.Duration `mapstructure:"timeout"`
	Username  string        `mapstructure:"username"`
	Password  string        `mapstructure:"password"`
}

// SyncConfig holds periodic storage synchronization settings.
type SyncConfig struct {
	Interval time.Duration `mapstructure:"interval"` // 0 disables scheduled syncs
}

// WatcherConfig holds hot-reload settings for local storage.
type WatcherConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// TLSConfig holds TLS/CertMagic configuration.
type TLSConfig struct {
	Enabled  bool      `mapstructure:"enabled"`
	Domains  []string  `mapstructure:"domains"`
	Email    string    `mapstructure:"email"`
	CacheDir string    `mapstructure:"cache_dir"`
	Staging  bool      `mapstructure:"staging"` // Use Let's Encrypt staging
	DNS      DNSConfig `mapstructure:"dns"`
}

// DNSConfig holds Azure DNS settings for DNS-01 challenges.
type DNSConfig struct {
	SubscriptionID    string `mapstructure:"subscription_id"`
	ResourceGroupName string `mapstructure:"resource_group_name"`
	ClientID          string `mapstructure:"client_id"`
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, text
}

// Defaults sets the default configuration values.
func Defaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("server.cors.allowed_origins", []string{})

	// Engine defaults
	viper.SetDefault("engine.globe_frame", string(domain.FrameWGS84))
	viper.SetDefault("engine.projection", "")
	viper.SetDefault("engine.lambda0", 0.0)
	viper.SetDefault("engine.pole", "north")
	viper.SetDefault("engine.dataset_frame", string(domain.FrameWGS84))
	viper.SetDefault("engine.query_limit", 1000)

	// Storage defaults
	viper.SetDefault("storage.type", "local")
	viper.SetDefault("storage.local_path", "./data")
	viper.SetDefault("storage.http.index_file", "index.txt")
	viper.SetDefault("storage.http.timeout", 5*time.Minute)

	viper.SetDefault("sync.interval", 5*time.Minute)

	viper.SetDefault("watcher.enabled", true)
	viper.SetDefault("watcher.debounce", 500*time.Millisecond)

	// TLS defaults
	viper.SetDefault("tls.enabled", false)
	viper.SetDefault("tls.cache_dir", "./.certmagic")
	viper.SetDefault("tls.staging", false)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.port", 9090)
	viper.SetDefault("metrics.path", "/metrics")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}

// Load loads configuration from environment and config file.
func Load(configPath string) (*Config, error) {
	Defaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/sphaera")
	}

	// the config file is optional
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &domain.ConfigError{Field: "server.port", Message: fmt.Sprintf("invalid port %d", c.Server.Port)}
	}
	if c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		return &domain.ConfigError{Field: "metrics.port", Message: fmt.Sprintf("invalid port %d", c.Metrics.Port)}
	}

	if err := c.Engine.validate(); err != nil {
		return err
	}

	if c.TLS.Enabled {
		if len(c.TLS.Domains) == 0 {
			return &domain.ConfigError{Field: "tls.domains", Message: "TLS enabled but no domains specified"}
		}
		if c.TLS.Email == "" {
			return &domain.ConfigError{Field: "tls.email", Message: "TLS enabled but no email specified"}
		}
	}

	if c.Sync.Interval < 0 {
		return &domain.ConfigError{Field: "sync.interval", Message: "must not be negative"}
	}

	return c.Storage.validate()
}

func (e *EngineConfig) validate() error {
	if !domain.IsKnownFrame(domain.FrameID(e.GlobeFrame)) {
		return &domain.ConfigError{Field: "engine.globe_frame", Message: fmt.Sprintf("unknown frame %q", e.GlobeFrame)}
	}
	if e.DatasetFrame != "" && !domain.IsKnownFrame(domain.FrameID(e.DatasetFrame)) {
		return &domain.ConfigError{Field: "engine.dataset_frame", Message: fmt.Sprintf("unknown frame %q", e.DatasetFrame)}
	}
	switch strings.ToLower(e.Pole) {
	case "", "north", "south":
	default:
		return &domain.ConfigError{Field: "engine.pole", Message: fmt.Sprintf("unknown pole %q", e.Pole)}
	}
	if e.QueryLimit < 0 {
		return &domain.ConfigError{Field: "engine.query_limit", Message: "must not be negative"}
	}
	return nil
}

func (s *StorageConfig) validate() error {
	switch s.Type {
	case "local":
		if s.LocalPath == "" {
			return &domain.ConfigError{Field: "storage.local_path", Message: "local storage path is required"}
		}
	case "s3":
		if s.S3.Bucket == "" {
			return &domain.ConfigError{Field: "storage.s3.bucket", Message: "S3 bucket is required"}
		}
		if s.S3.Region == "" {
			return &domain.ConfigError{Field: "storage.s3.region", Message: "S3 region is required"}
		}
	case "azure":
		if s.Azure.Container == "" {
			return &domain.ConfigError{Field: "storage.azure.container", Message: "azure container is required"}
		}
		if s.Azure.AccountName == "" && s.Azure.ConnectionString == "" {
			return &domain.ConfigError{Field: "storage.azure", Message: "azure account name or connection string is required"}
		}
	case "http":
		if s.HTTP.BaseURL == "" {
			return &domain.ConfigError{Field: "storage.http.base_url", Message: "HTTP base URL is required"}
		}
	default:
		return &domain.ConfigError{Field: "storage.type", Message: fmt.Sprintf("unknown storage type %q", s.Type)}
	}
	return nil
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
