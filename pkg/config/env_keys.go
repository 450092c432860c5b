package config

// EnvPrefix is passed to envconfig; individual keys carry the full
// prefixed name in their struct tags.
const EnvPrefix = "hardline"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "HARDLINE_APP_ENV"
	EnvPort     = "HARDLINE_APP_PORT"
	EnvLogLevel = "HARDLINE_LOG_LEVEL"

	EnvDBDSN  = "HARDLINE_DB_DSN"
	EnvDBHost = "HARDLINE_DB_HOST"
	EnvDBUser = "HARDLINE_DB_USER"
	EnvDBName = "HARDLINE_DB_NAME"

	EnvRedisURL = "HARDLINE_REDIS_URL"

	EnvReservationTTLMinutes = "HARDLINE_RESERVATION_TTL_MINUTES"
	EnvSweeperInterval       = "HARDLINE_SWEEPER_INTERVAL"
	EnvReturnsWindowDays     = "HARDLINE_RETURNS_WINDOW_DAYS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
