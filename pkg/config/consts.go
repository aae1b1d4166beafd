package config

// EnvPrefix scopes every environment variable read by Load.
const EnvPrefix = "STOCKYARD"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "STOCKYARD_APP_ENV"
	EnvPort     = "STOCKYARD_APP_PORT"
	EnvRedisURL = "STOCKYARD_REDIS_URL"

	EnvDBDSN  = "STOCKYARD_DB_DSN"
	EnvDBHost = "STOCKYARD_DB_HOST"
	EnvDBUser = "STOCKYARD_DB_USER"
	EnvDBName = "STOCKYARD_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
