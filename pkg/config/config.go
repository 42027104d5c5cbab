// Package config loads the application configuration from an optional
// YAML file, layers SIGVIS_* environment variables over it, and
// validates the result. A .env file in the working directory is picked
// up before the environment is read.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/softloud/sig-vis/pkg/validation"
)

// Duration decodes YAML values like "30s" or "5m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the root configuration for every binary.
type Config struct {
	Env     string        `yaml:"env"`
	Server  ServerConfig  `yaml:"server"`
	Dataset DatasetConfig `yaml:"dataset"`
	Render  RenderConfig  `yaml:"render"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host            string   `yaml:"host"`
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// Addr returns the host:port pair the server binds to.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatasetConfig selects and configures the table provider.
type DatasetConfig struct {
	Provider    string           `yaml:"provider"`
	Template    string           `yaml:"template"`
	EdgePath    string           `yaml:"edge_path"`
	NodePath    string           `yaml:"node_path"`
	Aggregation string           `yaml:"aggregation"`
	Cache       CacheConfig      `yaml:"cache"`
	Sheet       SheetSettings    `yaml:"sheet"`
	S3          S3Settings       `yaml:"s3"`
	Postgres    PostgresSettings `yaml:"postgres"`
}

// CacheConfig controls the memo and snapshot layer around the provider.
type CacheConfig struct {
	Enabled      bool     `yaml:"enabled"`
	TTL          Duration `yaml:"ttl"`
	SnapshotPath string   `yaml:"snapshot_path"`
}

// SheetSettings configures the spreadsheet provider.
type SheetSettings struct {
	SpreadsheetID  string `yaml:"spreadsheet_id"`
	EdgesRange     string `yaml:"edges_range"`
	NodesRange     string `yaml:"nodes_range"`
	Endpoint       string `yaml:"endpoint"`
	AccountEmail   string `yaml:"account_email"`
	PrivateKeyPath string `yaml:"private_key_path"`
}

// S3Settings configures the object store provider.
type S3Settings struct {
	Region       string `yaml:"region"`
	Bucket       string `yaml:"bucket"`
	EdgeKey      string `yaml:"edge_key"`
	NodeKey      string `yaml:"node_key"`
	Endpoint     string `yaml:"endpoint"`
	AccessKey    string `yaml:"access_key"`
	SecretKey    string `yaml:"secret_key"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// PostgresSettings configures the relational provider.
type PostgresSettings struct {
	URL       string `yaml:"url"`
	EdgeQuery string `yaml:"edge_query"`
	NodeQuery string `yaml:"node_query"`
}

// RenderConfig holds the default diagram options.
type RenderConfig struct {
	Layout string `yaml:"layout"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Seed   int64  `yaml:"seed"`
	Title  string `yaml:"title"`
}

// LogConfig holds the logging settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when nothing else is given:
// the bundled research-pipeline template rendered with a force layout.
func Default() *Config {
	return &Config{
		Env: "local",
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     Duration(15 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Dataset: DatasetConfig{
			Provider:    ProviderTemplate,
			Template:    "research-pipeline",
			Aggregation: "none",
			Cache: CacheConfig{
				Enabled:      false,
				TTL:          Duration(5 * time.Minute),
				SnapshotPath: "sigvis-snapshot.dat",
			},
		},
		Render: RenderConfig{
			Layout: "force",
			Width:  960,
			Height: 640,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file
// and the environment, in that order, then validates it. An empty path
// skips the file layer.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Env = firstNonEmpty(envTrim("SIGVIS_ENV"), c.Env)
	c.Server.Host = firstNonEmpty(envTrim("SIGVIS_HOST"), c.Server.Host)
	if port := envTrim("SIGVIS_PORT"); port != "" {
		if p, err := strconv.Atoi(strings.TrimPrefix(port, ":")); err == nil {
			c.Server.Port = p
		}
	}

	c.Dataset.Provider = firstNonEmpty(envTrim("SIGVIS_PROVIDER"), c.Dataset.Provider)
	c.Dataset.Template = firstNonEmpty(envTrim("SIGVIS_TEMPLATE"), c.Dataset.Template)
	c.Dataset.EdgePath = firstNonEmpty(envTrim("SIGVIS_EDGE_PATH"), c.Dataset.EdgePath)
	c.Dataset.NodePath = firstNonEmpty(envTrim("SIGVIS_NODE_PATH"), c.Dataset.NodePath)
	c.Dataset.Aggregation = firstNonEmpty(envTrim("SIGVIS_AGGREGATION"), c.Dataset.Aggregation)
	c.Dataset.Cache.SnapshotPath = firstNonEmpty(envTrim("SIGVIS_SNAPSHOT_PATH"), c.Dataset.Cache.SnapshotPath)
	if raw := envTrim("SIGVIS_CACHE"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			c.Dataset.Cache.Enabled = v
		}
	}

	c.Dataset.Sheet.SpreadsheetID = firstNonEmpty(envTrim("SIGVIS_SHEET_ID"), c.Dataset.Sheet.SpreadsheetID)
	c.Dataset.Sheet.EdgesRange = firstNonEmpty(envTrim("SIGVIS_SHEET_EDGES_RANGE"), c.Dataset.Sheet.EdgesRange)
	c.Dataset.Sheet.NodesRange = firstNonEmpty(envTrim("SIGVIS_SHEET_NODES_RANGE"), c.Dataset.Sheet.NodesRange)
	c.Dataset.Sheet.AccountEmail = firstNonEmpty(envTrim("SIGVIS_SHEET_ACCOUNT"), c.Dataset.Sheet.AccountEmail)
	c.Dataset.Sheet.PrivateKeyPath = firstNonEmpty(envTrim("SIGVIS_SHEET_KEY_FILE"), c.Dataset.Sheet.PrivateKeyPath)

	c.Dataset.S3.Region = firstNonEmpty(envTrim("SIGVIS_S3_REGION"), c.Dataset.S3.Region)
	c.Dataset.S3.Bucket = firstNonEmpty(envTrim("SIGVIS_S3_BUCKET"), c.Dataset.S3.Bucket)
	c.Dataset.S3.Endpoint = firstNonEmpty(envTrim("SIGVIS_S3_ENDPOINT"), c.Dataset.S3.Endpoint)
	c.Dataset.S3.AccessKey = firstNonEmpty(envTrim("SIGVIS_S3_ACCESS_KEY"), c.Dataset.S3.AccessKey)
	c.Dataset.S3.SecretKey = firstNonEmpty(envTrim("SIGVIS_S3_SECRET_KEY"), c.Dataset.S3.SecretKey)

	c.Dataset.Postgres.URL = firstNonEmpty(envTrim("SIGVIS_DATABASE_URL"), c.Dataset.Postgres.URL)

	c.Render.Layout = firstNonEmpty(envTrim("SIGVIS_LAYOUT"), c.Render.Layout)
	c.Log.Level = firstNonEmpty(envTrim("SIGVIS_LOG_LEVEL"), c.Log.Level)
}

func (c *Config) normalize() {
	c.Env = validation.DefaultOr(c.Env, "local")
	c.Server.Host = validation.DefaultOr(c.Server.Host, "0.0.0.0")
	c.Server.Port = validation.DefaultOrInt(c.Server.Port, 8080)
	c.Server.ReadTimeout = Duration(validation.DefaultOrDuration(c.Server.ReadTimeout.Std(), 15*time.Second))
	c.Server.WriteTimeout = Duration(validation.DefaultOrDuration(c.Server.WriteTimeout.Std(), 30*time.Second))
	c.Server.ShutdownTimeout = Duration(validation.DefaultOrDuration(c.Server.ShutdownTimeout.Std(), 10*time.Second))
	c.Dataset.Cache.TTL = Duration(validation.DefaultOrDuration(c.Dataset.Cache.TTL.Std(), 5*time.Minute))
	c.Render.Layout = validation.DefaultOr(c.Render.Layout, "force")
	c.Render.Width = validation.DefaultOrInt(c.Render.Width, 960)
	c.Render.Height = validation.DefaultOrInt(c.Render.Height, 640)
	c.Log.Level = validation.DefaultOr(c.Log.Level, "info")
}

// Validate checks the configuration for contradictions. Provider
// settings are only required for the provider actually selected.
func (c *Config) Validate() error {
	return validation.NewConfigValidator("Config").
		OneOf("Env", c.Env, []string{"local", "production"}).
		RangeInt("Server.Port", c.Server.Port, 1, 65535).
		MinDuration("Server.ShutdownTimeout", c.Server.ShutdownTimeout.Std(), time.Second).
		OneOf("Dataset.Provider", c.Dataset.Provider, ProviderNames()).
		OneOf("Dataset.Aggregation", c.Dataset.Aggregation, []string{"none", "by-category"}).
		OneOf("Render.Layout", c.Render.Layout, []string{"force", "circular", "hierarchical"}).
		Custom("Render", func() error {
			return validation.ValidateCanvas(c.Render.Width, c.Render.Height)
		}).
		OneOf("Log.Level", c.Log.Level, []string{"debug", "info", "warn", "error"}).
		When(c.Dataset.Provider == ProviderTemplate, func(v *validation.ConfigValidator) {
			v.Custom("Dataset.Template", func() error {
				return validation.ValidateTemplateName(c.Dataset.Template)
			})
		}).
		When(c.Dataset.Provider == ProviderFile, func(v *validation.ConfigValidator) {
			v.Required("Dataset.EdgePath", c.Dataset.EdgePath).
				Required("Dataset.NodePath", c.Dataset.NodePath)
		}).
		When(c.Dataset.Provider == ProviderSheet, func(v *validation.ConfigValidator) {
			v.Required("Dataset.Sheet.SpreadsheetID", c.Dataset.Sheet.SpreadsheetID).
				Required("Dataset.Sheet.AccountEmail", c.Dataset.Sheet.AccountEmail).
				Required("Dataset.Sheet.PrivateKeyPath", c.Dataset.Sheet.PrivateKeyPath)
		}).
		When(c.Dataset.Provider == ProviderS3, func(v *validation.ConfigValidator) {
			v.Required("Dataset.S3.Bucket", c.Dataset.S3.Bucket).
				Required("Dataset.S3.Region", c.Dataset.S3.Region)
		}).
		When(c.Dataset.Provider == ProviderPostgres, func(v *validation.ConfigValidator) {
			v.Required("Dataset.Postgres.URL", c.Dataset.Postgres.URL)
		}).
		When(c.Dataset.Cache.Enabled, func(v *validation.ConfigValidator) {
			v.MinDuration("Dataset.Cache.TTL", c.Dataset.Cache.TTL.Std(), time.Second)
		}).
		Validate()
}

func envTrim(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
