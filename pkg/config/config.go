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
	DB           DBConfig
	Redis        RedisConfig
	Auth         AuthConfig
	Identity     IdentityConfig
	Gemini       GeminiConfig
	GCP          GCPConfig
	Storage      StorageConfig
	Cache        CacheConfig
	RateLimit    RateLimitConfig
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
	Env          string `envconfig:"AUTOYARD_APP_ENV" required:"true"`
	Port         string `envconfig:"AUTOYARD_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"AUTOYARD_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AUTOYARD_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"AUTOYARD_LOG_FORMAT" default:"json"`

	CORSOrigins      []string `envconfig:"AUTOYARD_CORS_ORIGINS" default:"http://localhost:3000"`
	MaxUploadBytes   int64    `envconfig:"AUTOYARD_MAX_UPLOAD_BYTES" default:"10485760"`
	MaxJSONBodyBytes int64    `envconfig:"AUTOYARD_MAX_JSON_BODY_BYTES" default:"52428800"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"AUTOYARD_DB_DSN"`
	Driver string `envconfig:"AUTOYARD_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"AUTOYARD_DB_HOST"`
	LegacyPort     int    `envconfig:"AUTOYARD_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"AUTOYARD_DB_USER"`
	LegacyPassword string `envconfig:"AUTOYARD_DB_PASSWORD"`
	LegacyName     string `envconfig:"AUTOYARD_DB_NAME"`
	LegacySSLMode  string `envconfig:"AUTOYARD_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"AUTOYARD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"AUTOYARD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AUTOYARD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AUTOYARD_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the local sqlite driver was selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"AUTOYARD_REDIS_URL"`
	Address      string        `envconfig:"AUTOYARD_REDIS_ADDR"`
	Password     string        `envconfig:"AUTOYARD_REDIS_PASSWORD"`
	DB           int           `envconfig:"AUTOYARD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"AUTOYARD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"AUTOYARD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"AUTOYARD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AUTOYARD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AUTOYARD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// AuthConfig describes how identity-provider session tokens are verified.
type AuthConfig struct {
	TokenSecret       string   `envconfig:"AUTOYARD_AUTH_TOKEN_SECRET" required:"true"`
	TokenIssuer       string   `envconfig:"AUTOYARD_AUTH_TOKEN_ISSUER" required:"true"`
	TokenAudience     string   `envconfig:"AUTOYARD_AUTH_TOKEN_AUDIENCE"`
	BootstrapAdminIDs []string `envconfig:"AUTOYARD_BOOTSTRAP_ADMIN_IDS"`
}

// IsBootstrapAdmin reports whether the external id is seeded as an administrator.
func (a AuthConfig) IsBootstrapAdmin(externalID string) bool {
	id := strings.TrimSpace(externalID)
	if id == "" {
		return false
	}
	for _, candidate := range a.BootstrapAdminIDs {
		if strings.TrimSpace(candidate) == id {
			return true
		}
	}
	return false
}

type IdentityConfig struct {
	APIBaseURL string        `envconfig:"AUTOYARD_IDENTITY_API_URL" default:"https://api.clerk.com/v1"`
	SecretKey  string        `envconfig:"AUTOYARD_IDENTITY_SECRET_KEY"`
	Timeout    time.Duration `envconfig:"AUTOYARD_IDENTITY_TIMEOUT" default:"5s"`
}

type GeminiConfig struct {
	APIKey  string        `envconfig:"AUTOYARD_GEMINI_API_KEY"`
	Model   string        `envconfig:"AUTOYARD_GEMINI_MODEL" default:"gemini-1.5-flash"`
	Timeout time.Duration `envconfig:"AUTOYARD_GEMINI_TIMEOUT" default:"30s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"AUTOYARD_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"AUTOYARD_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"AUTOYARD_GOOGLE_APPLICATION_CREDENTIALS"`
}

type StorageConfig struct {
	BucketName    string `envconfig:"AUTOYARD_STORAGE_BUCKET" default:"cars-images"`
	PublicBaseURL string `envconfig:"AUTOYARD_STORAGE_PUBLIC_BASE_URL" default:"https://storage.googleapis.com"`
}

type CacheConfig struct {
	SavedCarsTTL      time.Duration `envconfig:"AUTOYARD_CACHE_SAVED_CARS_TTL" default:"10m"`
	AdminInventoryTTL time.Duration `envconfig:"AUTOYARD_CACHE_ADMIN_INVENTORY_TTL" default:"5m"`
	AIExtractionTTL   time.Duration `envconfig:"AUTOYARD_CACHE_AI_TTL" default:"24h"`
}

type RateLimitConfig struct {
	AIExtractWindow  time.Duration `envconfig:"AUTOYARD_RATE_LIMIT_AI_WINDOW" default:"1m"`
	AIExtractLimit   int           `envconfig:"AUTOYARD_RATE_LIMIT_AI_LIMIT" default:"10"`
	ImageSearchLimit int           `envconfig:"AUTOYARD_RATE_LIMIT_IMAGE_SEARCH_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"AUTOYARD_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		return fmt.Errorf("%s is required for the sqlite driver", EnvDBDSN)
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
