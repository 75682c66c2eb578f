package shared

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload" // load .env before reading the environment
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"lightbnb/internal/domain"
)

// EnvPrefix namespaces every environment variable read by Load,
// e.g. LIGHTBNB_DB_HOST -> db_host.
const EnvPrefix = "LIGHTBNB_"

type Config struct {
	AppEnv   string `koanf:"app_env" validate:"required"`
	HTTPAddr string `koanf:"http_addr" validate:"required"`
	// MetricsAddr serves /metrics on its own listener; used by the seeder.
	MetricsAddr string `koanf:"metrics_addr"`

	DBDriver   string `koanf:"db_driver" validate:"oneof=postgres mysql"`
	DBHost     string `koanf:"db_host" validate:"required"`
	DBPort     int    `koanf:"db_port" validate:"gt=0"`
	DBUser     string `koanf:"db_user" validate:"required"`
	DBPassword string `koanf:"db_password"`
	DBName     string `koanf:"db_name" validate:"required"`
	DBSSLMode  string `koanf:"db_sslmode"`
	DBMaxConns int    `koanf:"db_max_conns" validate:"gt=0"`
	MySQLDSN   string `koanf:"mysql_dsn"` // overrides the db_* fields for mysql when set
	Migrate    bool   `koanf:"migrate"`

	EmailMatch string `koanf:"email_match" validate:"oneof=exact insensitive"`

	RedisAddr       string `koanf:"redis_addr"` // empty disables redis, the in-process cache is used
	RedisPass       string `koanf:"redis_password"`
	RedisDB         int    `koanf:"redis_db"`
	CacheTTLSeconds int    `koanf:"cache_ttl_seconds" validate:"gt=0"`

	SeedFile    string `koanf:"seed_file"`
	SeedWorkers int    `koanf:"seed_workers" validate:"gt=0"`
	SeedRPS     int    `koanf:"seed_rps" validate:"gt=0"`
}

func defaults() Config {
	return Config{
		AppEnv:          "prod",
		HTTPAddr:        ":8080",
		DBDriver:        "postgres",
		DBHost:          "localhost",
		DBPort:          5432,
		DBUser:          "vagrant",
		DBPassword:      "123",
		DBName:          "lightbnb",
		DBSSLMode:       "disable",
		DBMaxConns:      10,
		Migrate:         true,
		EmailMatch:      "exact",
		CacheTTLSeconds: 60,
		SeedFile:        "fixtures/lightbnb.json",
		SeedWorkers:     4,
		SeedRPS:         50,
	}
}

// Load starts from built-in defaults and overlays LIGHTBNB_* environment variables.
func Load() (Config, error) {
	k := koanf.New(".")
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	c := defaults()
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.DBDriver == "mysql" && !k.Exists("db_port") {
		c.DBPort = 3306
	}
	if err := validator.New().Struct(c); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c Config) CacheTTL() time.Duration { return time.Duration(c.CacheTTLSeconds) * time.Second }

func (c Config) EmailMode() domain.EmailMatch { return domain.ParseEmailMatch(c.EmailMatch) }
