package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	// EnvPrefix scopes every environment variable read by Load.
	EnvPrefix = "ghee"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "GHEE_APP_ENV"
	EnvPort   = "GHEE_APP_PORT"
	EnvDBDSN  = "GHEE_DB_DSN"
	EnvDBHost = "GHEE_DB_HOST"
	EnvDBUser = "GHEE_DB_USER"
	EnvDBName = "GHEE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Pricing       PricingConfig
	Razorpay      RazorpayConfig
	Checkout      CheckoutConfig
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
	Env          string `envconfig:"GHEE_APP_ENV" required:"true"`
	Port         string `envconfig:"GHEE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GHEE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GHEE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"GHEE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"GHEE_DB_DSN"`
	Driver string `envconfig:"GHEE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GHEE_DB_HOST"`
	LegacyPort     int    `envconfig:"GHEE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GHEE_DB_USER"`
	LegacyPassword string `envconfig:"GHEE_DB_PASSWORD"`
	LegacyName     string `envconfig:"GHEE_DB_NAME"`
	LegacySSLMode  string `envconfig:"GHEE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GHEE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GHEE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GHEE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GHEE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GHEE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GHEE_REDIS_ADDR"`
	Password     string        `envconfig:"GHEE_REDIS_PASSWORD"`
	DB           int           `envconfig:"GHEE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GHEE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GHEE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GHEE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GHEE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GHEE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"GHEE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"GHEE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"GHEE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"GHEE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GHEE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GHEE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GHEE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GHEE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GHEE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"GHEE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"GHEE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"GHEE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"GHEE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"GHEE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"GHEE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GHEE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GHEE_AUTO_MIGRATE" default:"false"`
}

// PricingConfig carries the shipping rules applied to every cart summary.
// Amounts are whole rupees, matching the storefront's display granularity.
type PricingConfig struct {
	FreeShippingThreshold decimal.Decimal `envconfig:"GHEE_FREE_SHIPPING_THRESHOLD" default:"500"`
	FlatShippingFee       decimal.Decimal `envconfig:"GHEE_FLAT_SHIPPING_FEE" default:"50"`
}

type RazorpayConfig struct {
	KeyID     string        `envconfig:"GHEE_RAZORPAY_KEY_ID"`
	KeySecret string        `envconfig:"GHEE_RAZORPAY_KEY_SECRET"`
	BaseURL   string        `envconfig:"GHEE_RAZORPAY_BASE_URL"`
	Timeout   time.Duration `envconfig:"GHEE_RAZORPAY_TIMEOUT" default:"10s"`
}

type CheckoutConfig struct {
	// PendingPaymentTTL bounds how long an order may sit awaiting an online
	// payment confirmation before the cron worker expires it.
	PendingPaymentTTL time.Duration `envconfig:"GHEE_CHECKOUT_PENDING_PAYMENT_TTL" default:"24h"`
	CronInterval      time.Duration `envconfig:"GHEE_CHECKOUT_CRON_INTERVAL" default:"1h"`
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
