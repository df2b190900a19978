package config

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv                 = "FRESHFOLD_APP_ENV"
	EnvPort                   = "FRESHFOLD_APP_PORT"
	EnvAdminSecret            = "FRESHFOLD_ADMIN_SECRET"
	EnvDBDSN                  = "FRESHFOLD_DB_DSN"
	EnvDBHost                 = "FRESHFOLD_DB_HOST"
	EnvDBUser                 = "FRESHFOLD_DB_USER"
	EnvDBName                 = "FRESHFOLD_DB_NAME"
	EnvDBPassword             = "FRESHFOLD_DB_PASSWORD"
	EnvRedisURL               = "FRESHFOLD_REDIS_URL"
	EnvJWTSecret              = "FRESHFOLD_JWT_SECRET"
	EnvJWTIssuer              = "FRESHFOLD_JWT_ISSUER"
	EnvJWTExpMins             = "FRESHFOLD_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "FRESHFOLD_REFRESH_TOKEN_TTL_MINUTES"
	EnvPricingRate            = "FRESHFOLD_PRICING_ONE_OFF_RATE_PER_KG"
	EnvPricingGST             = "FRESHFOLD_PRICING_GST_RATE"
	EnvPromoSeed              = "FRESHFOLD_PROMO_SEED"
	EnvStripeSecret           = "FRESHFOLD_STRIPE_SECRET"
	EnvGCPProjectID           = "FRESHFOLD_GCP_PROJECT_ID"
	EnvPubSubDomainTopic      = "FRESHFOLD_PUBSUB_DOMAIN_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)
