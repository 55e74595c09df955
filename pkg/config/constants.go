package config

// EnvPrefix namespaces every environment variable read by envconfig.
const EnvPrefix = "ORDERDRAFT"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "ORDERDRAFT_APP_ENV"
	EnvPort       = "ORDERDRAFT_APP_PORT"
	EnvDBDSN      = "ORDERDRAFT_DB_DSN"
	EnvDBHost     = "ORDERDRAFT_DB_HOST"
	EnvDBUser     = "ORDERDRAFT_DB_USER"
	EnvDBName     = "ORDERDRAFT_DB_NAME"
	EnvRedisURL   = "ORDERDRAFT_REDIS_URL"
	EnvJWTSecret  = "ORDERDRAFT_JWT_SECRET"
	EnvJWTIssuer  = "ORDERDRAFT_JWT_ISSUER"
	EnvERPBaseURL = "ORDERDRAFT_ERP_BASE_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
