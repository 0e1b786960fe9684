package config

// EnvPrefix is handed to envconfig; every field carries an explicit key so the
// prefix only matters for untagged fields.
const EnvPrefix = "AUTOYARD"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "AUTOYARD_APP_ENV"
	EnvPort     = "AUTOYARD_APP_PORT"
	EnvDBDSN    = "AUTOYARD_DB_DSN"
	EnvDBDriver = "AUTOYARD_DB_DRIVER"
	EnvDBHost   = "AUTOYARD_DB_HOST"
	EnvDBUser   = "AUTOYARD_DB_USER"
	EnvDBName   = "AUTOYARD_DB_NAME"

	EnvRedisURL = "AUTOYARD_REDIS_URL"

	EnvAuthTokenSecret = "AUTOYARD_AUTH_TOKEN_SECRET"
	EnvAuthTokenIssuer = "AUTOYARD_AUTH_TOKEN_ISSUER"
	EnvBootstrapAdmins = "AUTOYARD_BOOTSTRAP_ADMIN_IDS"

	EnvGeminiAPIKey  = "AUTOYARD_GEMINI_API_KEY"
	EnvGCPProjectID  = "AUTOYARD_GCP_PROJECT_ID"
	EnvStorageBucket = "AUTOYARD_STORAGE_BUCKET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
