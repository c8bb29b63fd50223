package config

import (
	"os"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/test")
	os.Setenv("JWT_SECRET", "test-secret")
	t.Cleanup(func() {
		os.Unsetenv("MYSQL_DSN")
		os.Unsetenv("JWT_SECRET")
	})
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.MySQL.DSN == "" {
		t.Error("MySQL DSN should not be empty")
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("Expected HTTPAddr :8080, got %s", cfg.HTTPAddr)
	}

	if cfg.IsProduction() {
		t.Error("Default env should not be production")
	}

	if cfg.Reaper.IntervalSec != 600 {
		t.Errorf("Expected reaper interval 600, got %d", cfg.Reaper.IntervalSec)
	}

	if cfg.Reaper.StaleAfterMin != 30 {
		t.Errorf("Expected stale threshold 30, got %d", cfg.Reaper.StaleAfterMin)
	}
}

func TestLoad_MissingMySQLDSN(t *testing.T) {
	os.Unsetenv("MYSQL_DSN")
	os.Setenv("JWT_SECRET", "test-secret")
	defer os.Unsetenv("JWT_SECRET")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when MYSQL_DSN is missing")
	}
}

func TestLoad_ProductionRequiresPayUCredentials(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("APP_ENV", "production")
	defer os.Unsetenv("APP_ENV")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when PAYU_KEY/PAYU_SALT missing in production")
	}

	os.Setenv("PAYU_KEY", "gtKFFx")
	os.Setenv("PAYU_SALT", "eCwWELxi")
	defer func() {
		os.Unsetenv("PAYU_KEY")
		os.Unsetenv("PAYU_SALT")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("Expected production mode")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("REDIS_ADDR", "redis.example.com:6379")
	os.Setenv("REDIS_DB", "5")
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("DOMAIN_DENYLIST", "localhost, 127.0.0.1 ,internal.test")

	defer func() {
		os.Unsetenv("REDIS_ADDR")
		os.Unsetenv("REDIS_DB")
		os.Unsetenv("HTTP_ADDR")
		os.Unsetenv("DOMAIN_DENYLIST")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Redis.Addr != "redis.example.com:6379" {
		t.Errorf("Expected custom Redis addr, got %s", cfg.Redis.Addr)
	}

	if cfg.Redis.DB != 5 {
		t.Errorf("Expected Redis DB 5, got %d", cfg.Redis.DB)
	}

	if cfg.HTTPAddr != ":9090" {
		t.Errorf("Expected HTTPAddr :9090, got %s", cfg.HTTPAddr)
	}

	if len(cfg.Domains.Denylist) != 3 {
		t.Errorf("Expected 3 denylist entries, got %d", len(cfg.Domains.Denylist))
	}
	if cfg.Domains.Denylist[2] != "internal.test" {
		t.Errorf("Expected trimmed denylist entry, got %q", cfg.Domains.Denylist[2])
	}
}
