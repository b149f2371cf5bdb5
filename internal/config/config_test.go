package config

import "testing"

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingDatabaseAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_BadVaultBaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.Vault.BaseURL = "api.verida.ai"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-http vault base URL")
	}
}

func TestValidate_BadProbePath(t *testing.T) {
	cfg := validConfig()
	cfg.Vault.ProbePaths = []string{"auth/info"}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for probe path without leading slash")
	}
}

func TestValidate_EmptyKeyword(t *testing.T) {
	cfg := validConfig()
	cfg.Scoring.Keywords = []string{"ai", "  "}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for blank keyword")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Vault.BaseURL != "https://api.verida.ai/api/rest/v1" {
		t.Errorf("unexpected vault base URL: %q", cfg.Vault.BaseURL)
	}
	if cfg.Vault.TimeoutSec != 10 {
		t.Errorf("expected vault timeout 10s, got %d", cfg.Vault.TimeoutSec)
	}
	if cfg.Vault.PageSize != 100 {
		t.Errorf("expected PageSize=100, got %d", cfg.Vault.PageSize)
	}
	if cfg.Vault.MaxPages != 50 {
		t.Errorf("expected MaxPages=50, got %d", cfg.Vault.MaxPages)
	}
	if cfg.Vault.SearchTerm != "telegram" {
		t.Errorf("expected search term 'telegram', got %q", cfg.Vault.SearchTerm)
	}
	if cfg.Vault.SourceApplication != "https://telegram.com" {
		t.Errorf("unexpected source application: %q", cfg.Vault.SourceApplication)
	}
	if len(cfg.Vault.ProbePaths) == 0 {
		t.Error("expected default probe paths")
	}
	if cfg.Session.KeyPrefix != "fomoscore:session:" {
		t.Errorf("unexpected session key prefix: %q", cfg.Session.KeyPrefix)
	}
	if cfg.Session.TTLHours != 24 {
		t.Errorf("expected session TTL 24h, got %d", cfg.Session.TTLHours)
	}
	if len(cfg.Scoring.Keywords) != 3 {
		t.Errorf("expected 3 default keywords, got %v", cfg.Scoring.Keywords)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{ReadTimeoutSec: 5, WriteTimeoutSec: 60, ShutdownSec: 5},
		Vault: VaultConfig{
			BaseURL:  "http://localhost:9090/api/rest/v1",
			PageSize: 25,
			MaxPages: 10,
		},
		Session: SessionConfig{KeyPrefix: "custom:", TTLHours: 2},
		Scoring: ScoringConfig{Keywords: []string{"defi", "crypto", "web3"}},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 5 {
		t.Errorf("expected ReadTimeoutSec=5, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Vault.BaseURL != "http://localhost:9090/api/rest/v1" {
		t.Errorf("base URL overridden: %q", cfg.Vault.BaseURL)
	}
	if cfg.Vault.PageSize != 25 || cfg.Vault.MaxPages != 10 {
		t.Errorf("pagination overridden: %d/%d", cfg.Vault.PageSize, cfg.Vault.MaxPages)
	}
	if cfg.Session.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Session.KeyPrefix)
	}
	if len(cfg.Scoring.Keywords) != 3 || cfg.Scoring.Keywords[0] != "defi" {
		t.Errorf("keywords overridden: %v", cfg.Scoring.Keywords)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FOMO_TEST_ADDR", "redis:6379")

	out := string(expandEnvVars([]byte("addr: ${FOMO_TEST_ADDR}\nkey: ${FOMO_TEST_MISSING:-fallback}")))
	if out != "addr: redis:6379\nkey: fallback" {
		t.Errorf("unexpected expansion: %q", out)
	}
}
