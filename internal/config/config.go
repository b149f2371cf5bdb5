package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the fomoscore API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Vault    VaultConfig    `yaml:"vault"`
	Auth     AuthConfig     `yaml:"auth"`
	Session  SessionConfig  `yaml:"session"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds session-store connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// VaultConfig holds settings for the outbound data-vault API client.
type VaultConfig struct {
	BaseURL           string   `yaml:"base_url"`
	TimeoutSec        int      `yaml:"timeout_sec"`
	PageSize          int      `yaml:"page_size"`
	MaxPages          int      `yaml:"max_pages"`
	SearchTerm        string   `yaml:"search_term"`
	SourceApplication string   `yaml:"source_application"`
	ProbePaths        []string `yaml:"probe_paths"`
}

// AuthConfig holds service API keys and vault authorization-URL settings.
type AuthConfig struct {
	APIKeys     []string `yaml:"api_keys"`
	AuthBaseURL string   `yaml:"auth_base_url"`
	AppDID      string   `yaml:"app_did"`
	RedirectURL string   `yaml:"redirect_url"`
	Scopes      []string `yaml:"scopes"`
}

// SessionConfig holds session credential-store settings.
type SessionConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
	TTLHours  int    `yaml:"ttl_hours"`
}

// ScoringConfig holds keyword-scan settings.
type ScoringConfig struct {
	Keywords []string `yaml:"keywords"`
	// MessagesOnly restricts the keyword scan to the message collection.
	MessagesOnly bool `yaml:"messages_only"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

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
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Vault.BaseURL == "" {
		c.Vault.BaseURL = "https://api.verida.ai/api/rest/v1"
	}
	if c.Vault.TimeoutSec <= 0 {
		c.Vault.TimeoutSec = 10
	}
	if c.Vault.PageSize <= 0 {
		c.Vault.PageSize = 100
	}
	if c.Vault.MaxPages <= 0 {
		c.Vault.MaxPages = 50
	}
	if c.Vault.SearchTerm == "" {
		c.Vault.SearchTerm = "telegram"
	}
	if c.Vault.SourceApplication == "" {
		c.Vault.SourceApplication = "https://telegram.com"
	}
	if len(c.Vault.ProbePaths) == 0 {
		c.Vault.ProbePaths = []string{"/auth/info", "/connections/profiles"}
	}
	if c.Auth.AuthBaseURL == "" {
		c.Auth.AuthBaseURL = "https://app.verida.ai"
	}
	if len(c.Auth.Scopes) == 0 {
		c.Auth.Scopes = []string{
			"api:ds-query",
			"api:ds-get-by-id",
			"api:db-query",
			"api:search-universal",
			"ds:r:social-chat-group",
			"ds:r:social-chat-message",
		}
	}
	if c.Session.KeyPrefix == "" {
		c.Session.KeyPrefix = "fomoscore:session:"
	}
	if c.Session.TTLHours <= 0 {
		c.Session.TTLHours = 24
	}
	if len(c.Scoring.Keywords) == 0 {
		c.Scoring.Keywords = []string{"cluster", "protocol", "ai"}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if !strings.HasPrefix(c.Vault.BaseURL, "http://") && !strings.HasPrefix(c.Vault.BaseURL, "https://") {
		return fmt.Errorf("vault.base_url must be an http(s) URL, got %q", c.Vault.BaseURL)
	}
	for _, p := range c.Vault.ProbePaths {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("vault.probe_paths entries must start with '/', got %q", p)
		}
	}
	for _, kw := range c.Scoring.Keywords {
		if strings.TrimSpace(kw) == "" {
			return fmt.Errorf("scoring.keywords must not contain empty entries")
		}
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
