package config

import (
	"strings"
	"testing"
)

func TestLoad_PoolSizingFromEnv(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "50")
	t.Setenv("DB_MIN_CONNS", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBMaxConns != 50 || cfg.DBMinConns != 5 {
		t.Fatalf("expected pool sizing 5-50, got %d-%d", cfg.DBMinConns, cfg.DBMaxConns)
	}
}

func TestLoad_PoolSizingDefaults(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "")
	t.Setenv("DB_MIN_CONNS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBMaxConns != 20 || cfg.DBMinConns != 2 {
		t.Fatalf("expected default pool sizing 2-20, got %d-%d", cfg.DBMinConns, cfg.DBMaxConns)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "dbhost",
		DBPort:     5433,
		DBName:     "prices",
		DBUser:     "svc",
		DBPassword: "pw",
	}
	want := "postgres://svc:pw@dbhost:5433/prices?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Fatalf("DSN = %q, want %q", got, want)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
		want string
	}{
		{"zero page size", func(c *Config) { c.PageSize = 0 }, "PAGE_SIZE"},
		{"bad port", func(c *Config) { c.Port = 0 }, "PORT"},
		{"inverted pool range", func(c *Config) { c.DBMinConns = 30 }, "DB_MIN_CONNS"},
		{"zero max conns", func(c *Config) { c.DBMaxConns = 0 }, "DB_MIN_CONNS"},
	}

	for _, tc := range cases {
		cfg := &Config{Port: 8000, PageSize: 10, DBMaxConns: 20, DBMinConns: 2}
		tc.mut(cfg)
		err := cfg.Validate()
		if err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
		if !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: error %q does not mention %s", tc.name, err, tc.want)
		}
	}
}
