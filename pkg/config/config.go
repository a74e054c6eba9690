package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Cart         CartConfig
	Checkout     CheckoutConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if _, err := cfg.Checkout.Rate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"STAYBOOK_APP_ENV" required:"true"`
	Port         string   `envconfig:"STAYBOOK_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"STAYBOOK_LOG_LEVEL" default:"info"`
	LogFormat    string   `envconfig:"STAYBOOK_LOG_FORMAT" default:"json"`
	LogWarnStack bool     `envconfig:"STAYBOOK_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"STAYBOOK_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STAYBOOK_DB_DSN"`
	Driver string `envconfig:"STAYBOOK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STAYBOOK_DB_HOST"`
	LegacyPort     int    `envconfig:"STAYBOOK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STAYBOOK_DB_USER"`
	LegacyPassword string `envconfig:"STAYBOOK_DB_PASSWORD"`
	LegacyName     string `envconfig:"STAYBOOK_DB_NAME"`
	LegacySSLMode  string `envconfig:"STAYBOOK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STAYBOOK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STAYBOOK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STAYBOOK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STAYBOOK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STAYBOOK_REDIS_URL"`
	Address      string        `envconfig:"STAYBOOK_REDIS_ADDR"`
	Password     string        `envconfig:"STAYBOOK_REDIS_PASSWORD"`
	DB           int           `envconfig:"STAYBOOK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STAYBOOK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STAYBOOK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STAYBOOK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STAYBOOK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STAYBOOK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"STAYBOOK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STAYBOOK_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STAYBOOK_JWT_EXPIRATION_MINUTES" default:"60"`
}

// CartConfig tunes the cart snapshot write queue and in-memory cart cache.
type CartConfig struct {
	SnapshotKey  string        `envconfig:"STAYBOOK_CART_SNAPSHOT_KEY" default:"cart"`
	WriteRetries int           `envconfig:"STAYBOOK_CART_WRITE_RETRIES" default:"3"`
	WriteBackoff time.Duration `envconfig:"STAYBOOK_CART_WRITE_BACKOFF" default:"100ms"`
	BacklogWarn  int           `envconfig:"STAYBOOK_CART_BACKLOG_WARN" default:"256"`
	IdleTTL      time.Duration `envconfig:"STAYBOOK_CART_IDLE_TTL" default:"30m"`
}

type CheckoutConfig struct {
	GuardTTL time.Duration `envconfig:"STAYBOOK_CHECKOUT_GUARD_TTL" default:"2m"`
	TaxRate  string        `envconfig:"STAYBOOK_CHECKOUT_TAX_RATE" default:"0.10"`
}

// Rate parses the configured tax rate.
func (c CheckoutConfig) Rate() (decimal.Decimal, error) {
	raw := strings.TrimSpace(c.TaxRate)
	if raw == "" {
		return decimal.Zero, nil
	}
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", EnvCheckoutTaxRate, c.TaxRate, err)
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s must not be negative", EnvCheckoutTaxRate)
	}
	return rate, nil
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STAYBOOK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STAYBOOK_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DriverSQLite
		if db.DSN == "" {
			db.DSN = "file:staybook.db?cache=shared"
		}
		return nil
	}
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
