package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"dealflow/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB        *gorm.DB
	AppConfig Config
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type OAuthConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri"`
}

// SourceConfig holds the endpoint for one external listing source
type SourceConfig struct {
	BaseURL string `json:"base_url"`
	APIKey  string `json:"-"`
}

type Config struct {
	Environment    string      `json:"environment"`
	Google         OAuthConfig `json:"google"`
	EncryptionKey  string      `json:"-"`
	ServerPort     string      `json:"server_port"`
	DBHost         string      `json:"db_host"`
	DBPort         string      `json:"db_port"`
	DBUser         string      `json:"db_user"`
	DBPassword     string      `json:"-"`
	DBName         string      `json:"db_name"`
	DBSSLMode      string      `json:"db_ssl_mode"`
	DBMaxIdleConns int         `json:"db_max_idle_conns"`
	DBMaxOpenConns int         `json:"db_max_open_conns"`

	StripeSecretKey      string `json:"stripe_secret_key"`
	StripePublishableKey string `json:"stripe_publishable_key"`
	StripeWebhookSecret  string `json:"stripe_webhook_secret"`
	CheckoutSuccessURL   string `json:"checkout_success_url"`
	CheckoutCancelURL    string `json:"checkout_cancel_url"`

	SentryDSN string `json:"-"`

	// Listing sources
	MLSSource        SourceConfig `json:"mls_source"`
	FSBOSource       SourceConfig `json:"fsbo_source"`
	AuctionSource    SourceConfig `json:"auction_source"`
	WholesaleSource  SourceConfig `json:"wholesale_source"`
	ScraperAttempts  int          `json:"scraper_attempts"`
	ScraperRetryWait time.Duration `json:"scraper_retry_wait"`

	// Property enrichment provider
	EnrichmentBaseURL  string        `json:"enrichment_base_url"`
	EnrichmentAPIKey   string        `json:"-"`
	EnrichmentCacheTTL time.Duration `json:"enrichment_cache_ttl"`

	RateLimitSearch int         `json:"rate_limit_search"`
	Redis           RedisConfig `json:"redis"`

	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUsername string `json:"smtp_username"`
	SMTPPassword string `json:"-"`
	FromEmail    string `json:"from_email"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
}

func LoadConfig() error {
	AppConfig = Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Google: OAuthConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("GOOGLE_REDIRECT_URI", ""),
		},
		EncryptionKey:  getEnv("ENCRYPTION_KEY", ""),
		ServerPort:     getEnv("SERVER_PORT", "5000"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "dealflow"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),

		StripeSecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
		StripePublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
		StripeWebhookSecret:  getEnv("STRIPE_WEBHOOK_SECRET", ""),
		CheckoutSuccessURL:   getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/billing/success"),
		CheckoutCancelURL:    getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/billing"),

		SentryDSN: getEnv("SENTRY_DSN", ""),

		MLSSource: SourceConfig{
			BaseURL: getEnv("MLS_SOURCE_URL", "https://api.mls-feeds.example.com"),
			APIKey:  getEnv("MLS_SOURCE_API_KEY", ""),
		},
		FSBOSource: SourceConfig{
			BaseURL: getEnv("FSBO_SOURCE_URL", "https://api.fsbo-listings.example.com"),
			APIKey:  getEnv("FSBO_SOURCE_API_KEY", ""),
		},
		AuctionSource: SourceConfig{
			BaseURL: getEnv("AUCTION_SOURCE_URL", "https://api.auction-data.example.com"),
			APIKey:  getEnv("AUCTION_SOURCE_API_KEY", ""),
		},
		WholesaleSource: SourceConfig{
			BaseURL: getEnv("WHOLESALE_SOURCE_URL", "https://api.wholesale-deals.example.com"),
			APIKey:  getEnv("WHOLESALE_SOURCE_API_KEY", ""),
		},
		ScraperAttempts:  getEnvAsInt("SCRAPER_RETRY_ATTEMPTS", 3),
		ScraperRetryWait: time.Duration(getEnvAsInt("SCRAPER_RETRY_WAIT_MS", 500)) * time.Millisecond,

		EnrichmentBaseURL:  getEnv("ENRICHMENT_BASE_URL", "https://api.property-data.example.com"),
		EnrichmentAPIKey:   getEnv("ENRICHMENT_API_KEY", ""),
		EnrichmentCacheTTL: time.Duration(getEnvAsInt("ENRICHMENT_CACHE_TTL_HOURS", 24)) * time.Hour,

		RateLimitSearch: getEnvAsInt("RATE_LIMIT_SEARCH", 10),
		Redis: RedisConfig{
			Enabled:  getEnv("REDIS_ENABLED", "false") == "true",
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("FROM_EMAIL", "alerts@dealflow.app"),
	}

	// Validate required configurations
	if AppConfig.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if AppConfig.EncryptionKey == "" {
		return fmt.Errorf("ENCRYPTION_KEY is required")
	}
	if AppConfig.StripeSecretKey == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY is required for payment processing")
	}
	if AppConfig.Environment == "production" {
		if AppConfig.Google.ClientID == "" || AppConfig.Google.ClientSecret == "" {
			return fmt.Errorf("Google OAuth credentials are required in production")
		}
	}

	// A hole in the quota table must fail the boot, not a request
	if err := models.ValidateQuotas(); err != nil {
		return fmt.Errorf("invalid quota configuration: %w", err)
	}

	logConfig()
	return nil
}

func ConnectDB() error {
	log.Println("Attempting to connect to database...")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBUser,
		AppConfig.DBPassword,
		AppConfig.DBName,
		AppConfig.DBSSLMode,
	)
	log.Println("Using connection string:", maskPassword(dsn))

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(AppConfig.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(AppConfig.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	log.Println("Successfully connected to the database")
	log.Println("Starting database migration...")
	if err := migrateDB(DB); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}
	log.Println("Database migration completed")
	return nil
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var value int
	_, err := fmt.Sscanf(valueStr, "%d", &value)
	if err != nil {
		return fallback
	}
	return value
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig() {
	log.Println("Loaded configuration:")
	log.Printf("Environment: %s", AppConfig.Environment)
	log.Printf("Server Port: %s", AppConfig.ServerPort)
	log.Printf("Database: %s@%s:%s/%s",
		AppConfig.DBUser,
		AppConfig.DBHost,
		AppConfig.DBPort,
		AppConfig.DBName)
	log.Printf("Listing sources: mls(%t), fsbo(%t), auction(%t), wholesale(%t)",
		AppConfig.MLSSource.APIKey != "",
		AppConfig.FSBOSource.APIKey != "",
		AppConfig.AuctionSource.APIKey != "",
		AppConfig.WholesaleSource.APIKey != "")
	log.Printf("Redis cache enabled: %t", AppConfig.Redis.Enabled)
}

func migrateDB(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Plan{},
		&models.UsageRecord{},
		&models.CrmLead{},
		&models.OfferLetter{},
		&models.SavedSearch{},
	); err != nil {
		return err
	}

	return models.CreateDefaultPlans(db)
}
