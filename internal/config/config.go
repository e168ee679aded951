package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Config holds the vocabsearch configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
	Storage   StorageConfig   `yaml:"storage"`
	Selection SelectionConfig `yaml:"selection"`
	Index     IndexConfig     `yaml:"index"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// Storage drivers.
const (
	DriverBadger = "badger"
	DriverRedis  = "redis"
	DriverValkey = "valkey"
)

// StorageConfig selects where selection state is persisted.
type StorageConfig struct {
	Driver           string   `yaml:"driver"` // badger, redis, valkey (default: badger)
	Path             string   `yaml:"path"`   // badger directory
	InMemory         bool     `yaml:"in_memory"`
	Addrs            []string `yaml:"addrs"` // redis/valkey
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SelectionConfig holds selection state settings.
type SelectionConfig struct {
	Namespace string   `yaml:"namespace"`
	Keys      []string `yaml:"keys"` // preloaded at startup
}

// IndexConfig holds dataset, indexing and pagination settings.
type IndexConfig struct {
	Source           string   `yaml:"source"` // file path or http(s) URL
	Format           string   `yaml:"format"` // json, jsonl, yaml; empty = detect
	FetchTimeoutSec  int      `yaml:"fetch_timeout_sec"`
	SearchableFields []string `yaml:"searchable_fields"`
	// FacetMode "any" matches documents carrying any selected value. "all_keys"
	// requires a match under every selected key; it narrows results compared to "any".
	FacetMode       string `yaml:"facet_mode"`
	Charset         string `yaml:"charset"` // default, simple
	DefaultPageSize int    `yaml:"default_page_size"`
	MaxPageSize     int    `yaml:"max_page_size"`
	BuildWorkers    int    `yaml:"build_workers"`
	Locale          string `yaml:"locale"`
}

// LocaleTag returns the parsed index locale.
func (c IndexConfig) LocaleTag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.German
	}
	return tag
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit YAML file.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverBadger
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "data/selections"
	}
	if c.Storage.ReadinessTimeout <= 0 {
		c.Storage.ReadinessTimeout = 10
	}
	if c.Selection.Namespace == "" {
		c.Selection.Namespace = "vocabsearch"
	}
	if len(c.Selection.Keys) == 0 {
		c.Selection.Keys = []string{"favorites"}
	}
	if c.Index.FetchTimeoutSec <= 0 {
		c.Index.FetchTimeoutSec = 30
	}
	if len(c.Index.SearchableFields) == 0 {
		c.Index.SearchableFields = []string{"title", "description"}
	}
	if c.Index.FacetMode == "" {
		c.Index.FacetMode = "any"
	}
	if c.Index.Charset == "" {
		c.Index.Charset = "default"
	}
	if c.Index.DefaultPageSize <= 0 {
		c.Index.DefaultPageSize = 20
	}
	if c.Index.MaxPageSize <= 0 {
		c.Index.MaxPageSize = 100
	}
	if c.Index.BuildWorkers <= 0 {
		c.Index.BuildWorkers = runtime.NumCPU()
	}
	if c.Index.Locale == "" {
		c.Index.Locale = "de"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Storage.Driver {
	case DriverBadger:
	case DriverRedis, DriverValkey:
		if len(c.Storage.Addrs) == 0 {
			return fmt.Errorf("storage.addrs is required for driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("storage.driver must be \"badger\", \"redis\" or \"valkey\", got %q", c.Storage.Driver)
	}
	if c.Index.Source == "" {
		return fmt.Errorf("index.source is required")
	}
	switch c.Index.Format {
	case "", "json", "jsonl", "yaml":
	default:
		return fmt.Errorf("index.format must be \"json\", \"jsonl\" or \"yaml\", got %q", c.Index.Format)
	}
	switch c.Index.FacetMode {
	case "any", "all_keys":
	default:
		return fmt.Errorf("index.facet_mode must be \"any\" or \"all_keys\", got %q", c.Index.FacetMode)
	}
	switch c.Index.Charset {
	case "default", "simple":
	default:
		return fmt.Errorf("index.charset must be \"default\" or \"simple\", got %q", c.Index.Charset)
	}
	for _, f := range c.Index.SearchableFields {
		if f != "title" && f != "description" {
			return fmt.Errorf("index.searchable_fields: %q is not a text field", f)
		}
	}
	if c.Index.DefaultPageSize > c.Index.MaxPageSize {
		return fmt.Errorf("index.default_page_size (%d) exceeds index.max_page_size (%d)",
			c.Index.DefaultPageSize, c.Index.MaxPageSize)
	}
	if _, err := language.Parse(c.Index.Locale); err != nil {
		return fmt.Errorf("index.locale %q: %w", c.Index.Locale, err)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
