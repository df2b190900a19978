package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Pricing      PricingConfig
	Promo        PromoConfig
	Checkout     CheckoutConfig
	Stripe       StripeConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env           string `envconfig:"FRESHFOLD_APP_ENV" required:"true" validate:"required"`
	Port          string `envconfig:"FRESHFOLD_APP_PORT" required:"true" validate:"required"`
	LogLevel      string `envconfig:"FRESHFOLD_LOG_LEVEL" default:"info"`
	LogWarnStack  bool   `envconfig:"FRESHFOLD_LOG_WARN_STACK" default:"false"`
	PublicBaseURL string `envconfig:"FRESHFOLD_PUBLIC_BASE_URL" default:"http://localhost:3000"`
	AdminSecret   string `envconfig:"FRESHFOLD_ADMIN_SECRET"`
	CORSOrigins   string `envconfig:"FRESHFOLD_CORS_ORIGINS" default:"*"`
	MetricsAddr   string `envconfig:"FRESHFOLD_METRICS_ADDR" default:":9090"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(a.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

type ServiceConfig struct {
	Kind string `envconfig:"FRESHFOLD_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"FRESHFOLD_DB_DSN"`
	Driver string `envconfig:"FRESHFOLD_DB_DRIVER" default:"postgres" validate:"oneof=postgres sqlite"`

	LegacyHost     string `envconfig:"FRESHFOLD_DB_HOST"`
	LegacyPort     int    `envconfig:"FRESHFOLD_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FRESHFOLD_DB_USER"`
	LegacyPassword string `envconfig:"FRESHFOLD_DB_PASSWORD"`
	LegacyName     string `envconfig:"FRESHFOLD_DB_NAME"`
	LegacySSLMode  string `envconfig:"FRESHFOLD_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FRESHFOLD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FRESHFOLD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FRESHFOLD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FRESHFOLD_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FRESHFOLD_REDIS_URL" required:"true" validate:"required"`
	Address      string        `envconfig:"FRESHFOLD_REDIS_ADDR"`
	Password     string        `envconfig:"FRESHFOLD_REDIS_PASSWORD"`
	DB           int           `envconfig:"FRESHFOLD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FRESHFOLD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FRESHFOLD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FRESHFOLD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FRESHFOLD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FRESHFOLD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"FRESHFOLD_JWT_SECRET" required:"true" validate:"required"`
	Issuer                 string `envconfig:"FRESHFOLD_JWT_ISSUER" required:"true" validate:"required"`
	ExpirationMinutes      int    `envconfig:"FRESHFOLD_JWT_EXPIRATION_MINUTES" required:"true" validate:"gt=0"`
	RefreshTokenTTLMinutes int    `envconfig:"FRESHFOLD_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FRESHFOLD_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FRESHFOLD_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FRESHFOLD_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FRESHFOLD_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FRESHFOLD_ARGON_KEY_LEN" default:"32"`
}

// RateLimitConfig holds fixed-window limits for the abuse-prone public
// endpoints. A zero limit disables that dimension.
type RateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"FRESHFOLD_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"FRESHFOLD_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"FRESHFOLD_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"FRESHFOLD_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"FRESHFOLD_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"FRESHFOLD_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
	GuestWriteWindow   time.Duration `envconfig:"FRESHFOLD_RATE_LIMIT_GUEST_WRITE_WINDOW" default:"10m"`
	GuestWriteIPLimit  int           `envconfig:"FRESHFOLD_RATE_LIMIT_GUEST_WRITE_IP_LIMIT" default:"30"`
	PromoWindow        time.Duration `envconfig:"FRESHFOLD_RATE_LIMIT_PROMO_WINDOW" default:"1m"`
	PromoIPLimit       int           `envconfig:"FRESHFOLD_RATE_LIMIT_PROMO_IP_LIMIT" default:"30"`
}

type FeatureFlagsConfig struct {
	UseSQLite      bool `envconfig:"FRESHFOLD_USE_SQLITE" default:"false"`
	AutoMigrate    bool `envconfig:"FRESHFOLD_AUTO_MIGRATE" default:"false"`
	MetricsEnabled bool `envconfig:"FRESHFOLD_METRICS_ENABLED" default:"true"`
	TrackingQRCode bool `envconfig:"FRESHFOLD_TRACKING_QR_CODE" default:"true"`
}

// PricingConfig holds the constants shared by every pricing call site.
type PricingConfig struct {
	OneOffRatePerKg float64 `envconfig:"FRESHFOLD_PRICING_ONE_OFF_RATE_PER_KG" default:"5.99" validate:"gt=0"`
	GSTRate         float64 `envconfig:"FRESHFOLD_PRICING_GST_RATE" default:"0.10" validate:"gte=0,lt=1"`
	DefaultWeightKg float64 `envconfig:"FRESHFOLD_PRICING_DEFAULT_WEIGHT_KG" default:"5" validate:"gt=0"`
	Currency        string  `envconfig:"FRESHFOLD_PRICING_CURRENCY" default:"aud" validate:"len=3"`
}

// PromoConfig seeds promo codes on startup, formatted CODE:type:value:maxUses.
type PromoConfig struct {
	Seed []string `envconfig:"FRESHFOLD_PROMO_SEED"`
}

type CheckoutConfig struct {
	StatusPollAttempts int           `envconfig:"FRESHFOLD_CHECKOUT_STATUS_POLL_ATTEMPTS" default:"5"`
	StatusPollInterval time.Duration `envconfig:"FRESHFOLD_CHECKOUT_STATUS_POLL_INTERVAL" default:"2s"`
	ReconcileGrace     time.Duration `envconfig:"FRESHFOLD_CHECKOUT_RECONCILE_GRACE" default:"10m"`
	ReconcileBatchSize int           `envconfig:"FRESHFOLD_CHECKOUT_RECONCILE_BATCH_SIZE" default:"50"`
}

type StripeConfig struct {
	APIKey string `envconfig:"FRESHFOLD_STRIPE_API_KEY"`
	Secret string `envconfig:"FRESHFOLD_STRIPE_SECRET"`
	Env    string `envconfig:"FRESHFOLD_STRIPE_ENV" default:"test"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type GCPConfig struct {
	ProjectID              string `envconfig:"FRESHFOLD_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"FRESHFOLD_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"FRESHFOLD_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic string `envconfig:"FRESHFOLD_PUBSUB_DOMAIN_TOPIC" default:"freshfold-domain-events"`
	DLQTopic    string `envconfig:"FRESHFOLD_PUBSUB_DLQ_TOPIC" default:"freshfold-domain-events-dlq"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"FRESHFOLD_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"FRESHFOLD_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"FRESHFOLD_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"FRESHFOLD_OUTBOX_RETENTION_DAYS" default:"30"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"FRESHFOLD_CRON_INTERVAL" default:"5m"`
	LockTTL  time.Duration `envconfig:"FRESHFOLD_CRON_LOCK_TTL" default:"4m"`
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
