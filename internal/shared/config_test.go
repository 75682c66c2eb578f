package shared_test

import (
	"strings"
	"testing"
	"time"

	"lightbnb/internal/domain"
	"lightbnb/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := shared.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.DBDriver != "postgres" || c.DBUser != "vagrant" || c.DBName != "lightbnb" || c.DBPort != 5432 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.EmailMode() != domain.EmailExact {
		t.Fatalf("default email match should be exact")
	}
	if c.CacheTTL() != time.Minute {
		t.Fatalf("cache ttl: %v", c.CacheTTL())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LIGHTBNB_DB_DRIVER", "mysql")
	t.Setenv("LIGHTBNB_DB_PORT", "3306")
	t.Setenv("LIGHTBNB_EMAIL_MATCH", "insensitive")
	t.Setenv("LIGHTBNB_SEED_WORKERS", "9")
	t.Setenv("LIGHTBNB_MIGRATE", "false")

	c, err := shared.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.DBDriver != "mysql" || c.DBPort != 3306 || c.SeedWorkers != 9 || c.Migrate {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if c.EmailMode() != domain.EmailCaseInsensitive {
		t.Fatalf("email match override not applied")
	}
	if c.DBUser != "vagrant" {
		t.Fatalf("unset keys should keep defaults, got %q", c.DBUser)
	}
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("LIGHTBNB_DB_DRIVER", "sqlite")
	_, err := shared.Load()
	if err == nil || !strings.Contains(err.Error(), "validate config") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoad_MySQLDefaultPort(t *testing.T) {
	t.Setenv("LIGHTBNB_DB_DRIVER", "mysql")

	c, err := shared.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.DBPort != 3306 {
		t.Fatalf("mysql without db_port should use 3306, got %d", c.DBPort)
	}
}

func TestLoad_RejectsZeroCacheTTL(t *testing.T) {
	t.Setenv("LIGHTBNB_CACHE_TTL_SECONDS", "0")
	_, err := shared.Load()
	if err == nil || !strings.Contains(err.Error(), "CacheTTLSeconds") {
		t.Fatalf("expected cache ttl validation error, got %v", err)
	}
}
