package config

const (
	EnvPrefix = "STAYBOOK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvAppEnv          = "STAYBOOK_APP_ENV"
	EnvPort            = "STAYBOOK_APP_PORT"
	EnvDBDSN           = "STAYBOOK_DB_DSN"
	EnvDBHost          = "STAYBOOK_DB_HOST"
	EnvDBUser          = "STAYBOOK_DB_USER"
	EnvDBName          = "STAYBOOK_DB_NAME"
	EnvDBPassword      = "STAYBOOK_DB_PASSWORD"
	EnvRedisURL        = "STAYBOOK_REDIS_URL"
	EnvJWTSecret       = "STAYBOOK_JWT_SECRET"
	EnvJWTIssuer       = "STAYBOOK_JWT_ISSUER"
	EnvUseSQLite       = "STAYBOOK_USE_SQLITE"
	EnvCheckoutTaxRate = "STAYBOOK_CHECKOUT_TAX_RATE"
	EnvCartRetries     = "STAYBOOK_CART_WRITE_RETRIES"
	EnvCORSOrigins     = "STAYBOOK_CORS_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
