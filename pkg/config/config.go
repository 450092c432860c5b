package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Reservation  ReservationConfig
	Sweeper      SweeperConfig
	Returns      ReturnsConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HARDLINE_APP_ENV" required:"true"`
	Port         string `envconfig:"HARDLINE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"HARDLINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HARDLINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"HARDLINE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"HARDLINE_DB_DSN"`
	Driver string `envconfig:"HARDLINE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HARDLINE_DB_HOST"`
	LegacyPort     int    `envconfig:"HARDLINE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HARDLINE_DB_USER"`
	LegacyPassword string `envconfig:"HARDLINE_DB_PASSWORD"`
	LegacyName     string `envconfig:"HARDLINE_DB_NAME"`
	LegacySSLMode  string `envconfig:"HARDLINE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HARDLINE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HARDLINE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HARDLINE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HARDLINE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HARDLINE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"HARDLINE_REDIS_ADDR"`
	Password     string        `envconfig:"HARDLINE_REDIS_PASSWORD"`
	DB           int           `envconfig:"HARDLINE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HARDLINE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HARDLINE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HARDLINE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HARDLINE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HARDLINE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type ReservationConfig struct {
	DefaultTTLMinutes int `envconfig:"HARDLINE_RESERVATION_TTL_MINUTES" default:"15"`
}

// DefaultTTL returns the reservation hold duration.
func (r ReservationConfig) DefaultTTL() time.Duration {
	if r.DefaultTTLMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(r.DefaultTTLMinutes) * time.Minute
}

type SweeperConfig struct {
	Interval  time.Duration `envconfig:"HARDLINE_SWEEPER_INTERVAL" default:"60s"`
	LockTTL   time.Duration `envconfig:"HARDLINE_SWEEPER_LOCK_TTL" default:"55s"`
	BatchSize int           `envconfig:"HARDLINE_SWEEPER_BATCH_SIZE" default:"200"`
}

type ReturnsConfig struct {
	WindowDays int `envconfig:"HARDLINE_RETURNS_WINDOW_DAYS" default:"30"`
}

// Window returns the post-delivery period during which returns are accepted.
func (r ReturnsConfig) Window() time.Duration {
	if r.WindowDays <= 0 {
		return 30 * 24 * time.Hour
	}
	return time.Duration(r.WindowDays) * 24 * time.Hour
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"HARDLINE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"HARDLINE_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
