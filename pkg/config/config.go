package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "GOBACKS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	EnvAppEnv       = "GOBACKS_APP_ENV"
	EnvPort         = "GOBACKS_APP_PORT"
	EnvLogLevel     = "GOBACKS_LOG_LEVEL"
	EnvLogFormat    = "GOBACKS_LOG_FORMAT"
	EnvDBDriver     = "GOBACKS_DB_DRIVER"
	EnvDBDSN        = "GOBACKS_DB_DSN"
	EnvDBPath       = "GOBACKS_DB_PATH"
	EnvRedisURL     = "GOBACKS_REDIS_URL"
	EnvAutoMigrate  = "GOBACKS_AUTO_MIGRATE"
	EnvIdempotency  = "GOBACKS_IDEMPOTENCY_TTL"
	EnvDatabaseURL  = "DATABASE_URL"
	EnvXDGStateHome = "XDG_STATE_HOME"

	sqliteURLPrefix = "sqlite:"
	stateDirName    = "gobacks"
	sqliteFileName  = "db.sqlite3"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Idempotency  IdempotencyConfig
	FeatureFlags FeatureFlagsConfig
}

// Load reads the configuration from the environment and resolves the database target.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureTarget(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GOBACKS_APP_ENV" default:"dev"`
	Port         string `envconfig:"GOBACKS_APP_PORT" default:"8001"`
	LogLevel     string `envconfig:"GOBACKS_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"GOBACKS_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"GOBACKS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Driver string `envconfig:"GOBACKS_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"GOBACKS_DB_DSN"`
	Path   string `envconfig:"GOBACKS_DB_PATH"`

	BusyTimeout     time.Duration `envconfig:"GOBACKS_DB_BUSY_TIMEOUT" default:"5s"`
	MaxOpenConns    int           `envconfig:"GOBACKS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GOBACKS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GOBACKS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GOBACKS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the configured driver is SQLite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

// IsPostgres reports whether the configured driver is Postgres.
func (db DBConfig) IsPostgres() bool {
	return strings.EqualFold(db.Driver, DriverPostgres)
}

// WithPath overrides the SQLite database path. An empty path keeps the current target.
func (db *DBConfig) WithPath(path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	db.Path = path
	db.DSN = ""
}

type RedisConfig struct {
	URL          string        `envconfig:"GOBACKS_REDIS_URL"`
	Address      string        `envconfig:"GOBACKS_REDIS_ADDR"`
	Password     string        `envconfig:"GOBACKS_REDIS_PASSWORD"`
	DB           int           `envconfig:"GOBACKS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GOBACKS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GOBACKS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GOBACKS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GOBACKS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GOBACKS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != "" || r.Address != ""
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"GOBACKS_IDEMPOTENCY_TTL" default:"24h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GOBACKS_AUTO_MIGRATE" default:"true"`
}

func (db *DBConfig) ensureTarget() error {
	switch {
	case db.IsPostgres():
		if db.DSN == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvDBDSN, EnvDBDriver, DriverPostgres)
		}
		return nil
	case db.IsSQLite():
		if db.DSN != "" || db.Path != "" {
			return nil
		}
		path, err := defaultSQLitePath()
		if err != nil {
			return err
		}
		db.Path = path
		return nil
	default:
		return fmt.Errorf("unsupported %s %q (expected %s or %s)", EnvDBDriver, db.Driver, DriverSQLite, DriverPostgres)
	}
}

func defaultSQLitePath() (string, error) {
	if raw := strings.TrimSpace(os.Getenv(EnvDatabaseURL)); raw != "" {
		return strings.TrimPrefix(raw, sqliteURLPrefix), nil
	}
	if state := os.Getenv(EnvXDGStateHome); state != "" {
		return filepath.Join(state, stateDirName, sqliteFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not resolve database path: %w", err)
	}
	return filepath.Join(home, ".local", "state", stateDirName, sqliteFileName), nil
}
