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
	JWT          JWTConfig
	ERP          ERPConfig
	Lookup       LookupConfig
	Barcode      BarcodeConfig
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
	Env          string `envconfig:"ORDERDRAFT_APP_ENV" required:"true"`
	Port         string `envconfig:"ORDERDRAFT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ORDERDRAFT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ORDERDRAFT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ORDERDRAFT_DB_DSN"`
	Driver string `envconfig:"ORDERDRAFT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ORDERDRAFT_DB_HOST"`
	LegacyPort     int    `envconfig:"ORDERDRAFT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ORDERDRAFT_DB_USER"`
	LegacyPassword string `envconfig:"ORDERDRAFT_DB_PASSWORD"`
	LegacyName     string `envconfig:"ORDERDRAFT_DB_NAME"`
	LegacySSLMode  string `envconfig:"ORDERDRAFT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ORDERDRAFT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ORDERDRAFT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ORDERDRAFT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ORDERDRAFT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ORDERDRAFT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ORDERDRAFT_REDIS_ADDR"`
	Password     string        `envconfig:"ORDERDRAFT_REDIS_PASSWORD"`
	DB           int           `envconfig:"ORDERDRAFT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ORDERDRAFT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ORDERDRAFT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ORDERDRAFT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ORDERDRAFT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ORDERDRAFT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret string `envconfig:"ORDERDRAFT_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"ORDERDRAFT_JWT_ISSUER" required:"true"`
}

// ERPConfig points at the upstream ERP REST API that owns pricing, stock and
// document persistence.
type ERPConfig struct {
	BaseURL        string        `envconfig:"ORDERDRAFT_ERP_BASE_URL" required:"true"`
	RequestTimeout time.Duration `envconfig:"ORDERDRAFT_ERP_REQUEST_TIMEOUT" default:"15s"`
	SearchPageSize int           `envconfig:"ORDERDRAFT_ERP_SEARCH_PAGE_SIZE" default:"20"`
}

type LookupConfig struct {
	DebounceWindow time.Duration `envconfig:"ORDERDRAFT_LOOKUP_DEBOUNCE_WINDOW" default:"400ms"`
	SearchCacheTTL time.Duration `envconfig:"ORDERDRAFT_LOOKUP_SEARCH_CACHE_TTL" default:"3m"`
	ReferenceTTL   time.Duration `envconfig:"ORDERDRAFT_LOOKUP_REFERENCE_CACHE_TTL" default:"12h"`
}

type BarcodeConfig struct {
	Cooldown time.Duration `envconfig:"ORDERDRAFT_BARCODE_COOLDOWN" default:"2s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ORDERDRAFT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ORDERDRAFT_AUTO_MIGRATE" default:"false"`
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
