package config

// EnvPrefix is consumed by envconfig for any field without an explicit
// envconfig tag; the tags below spell the full names out for grep-ability.
const EnvPrefix = "GYMSTACK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "GYMSTACK_APP_ENV"
	EnvPort       = "GYMSTACK_APP_PORT"
	EnvDBDSN      = "GYMSTACK_DB_DSN"
	EnvDBHost     = "GYMSTACK_DB_HOST"
	EnvDBUser     = "GYMSTACK_DB_USER"
	EnvDBName     = "GYMSTACK_DB_NAME"
	EnvRedisURL   = "GYMSTACK_REDIS_URL"
	EnvJWTSecret  = "GYMSTACK_JWT_SECRET"
	EnvJWTIssuer  = "GYMSTACK_JWT_ISSUER"
	EnvJWTExpMins = "GYMSTACK_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
