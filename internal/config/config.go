package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pipemetric/insight-api/internal/secrets"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Warehouse WarehouseConfig
	Dataset   DatasetConfig
	Analytics AnalyticsConfig
	Secrets   SecretsConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

// DatabaseConfig configures the dataset store. The default driver is an
// in-memory SQLite database populated from the dataset source at startup;
// postgres is available for deployments that keep the dataset loaded.
type DatabaseConfig struct {
	Driver          string `validate:"oneof=sqlite postgres"`
	DSN             string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// WarehouseConfig configures the optional read-only MS SQL Server source for
// monthly revenue targets kept in the ERP. When disabled, targets come from
// the seeded targets.json.
type WarehouseConfig struct {
	// Enabled controls whether the warehouse connection is attempted
	Enabled bool
	// URL is the connection URL in format host:port/database
	URL string
	// User is the database username
	User string
	// Password is the database password
	Password string
	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int
	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int
	// ConnMaxLifetime is the maximum connection reuse time (seconds)
	ConnMaxLifetime int
	// QueryTimeout is the default query timeout (seconds)
	QueryTimeout int
	// SyncEnabled turns on the periodic target refresh job
	SyncEnabled bool
	// SyncCron is the cron expression for the refresh job
	SyncCron string
}

// DatasetConfig configures where the seed JSON files are fetched from
type DatasetConfig struct {
	// Mode is "local" (directory) or "azure" (blob container)
	Mode string `validate:"oneof=local azure"`
	// LocalPath is the directory holding the five dataset JSON files
	LocalPath string
	// CloudConnectionString is the Azure Storage connection string
	CloudConnectionString string
	// CloudContainer is the blob container holding the dataset files
	CloudContainer string
}

// AnalyticsConfig holds the engine's tunable thresholds and the simulated
// "today" that anchors every quarter computation. It is passed into each
// service at construction so tests can vary the as-of date per case.
type AnalyticsConfig struct {
	// AsOfDate is the anchor date for all quarter arithmetic, "YYYY-MM-DD"
	AsOfDate string `validate:"required,datetime=2006-01-02"`
	// StaleDays flags open deals with no activity in this many days
	StaleDays int `validate:"gt=0"`
	// LowActivityThreshold is the minimum 30-day activity count for an
	// account with open deals
	LowActivityThreshold int `validate:"gte=0"`
	// UnderperformingWinRateThreshold is the fraction of the team average
	// win rate below which a rep is flagged (e.g. 0.8)
	UnderperformingWinRateThreshold float64 `validate:"gt=0,lte=1"`
}

// AsOf returns the parsed as-of date at UTC midnight. Validate guarantees
// the format, so the parse cannot fail afterwards.
func (a *AnalyticsConfig) AsOf() time.Time {
	t, _ := time.ParseInLocation("2006-01-02", a.AsOfDate, time.UTC)
	return t
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment",
	// "vault", or "auto" (environment in development, vault otherwise)
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout   int
	WriteTimeout  int
	EnableSwagger bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	ReferrerPolicy        string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	WhitelistIPs      []string
	WhitelistPaths    []string
}

// ConnectionString builds the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (w *WarehouseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(w.ConnMaxLifetime) * time.Second
}

// QueryTimeoutDuration returns query timeout as duration
func (w *WarehouseConfig) QueryTimeoutDuration() time.Duration {
	return time.Duration(w.QueryTimeout) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

var validate = validator.New()

// Load loads configuration from file and environment variables.
// Secrets are not resolved here; use LoadWithSecrets for that.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// The as-of date is the one setting operators change most often
	if asOf := v.GetString("INSIGHT_AS_OF_DATE"); asOf != "" {
		cfg.Analytics.AsOfDate = asOf
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the structural constraints on the configuration,
// most importantly the analytics thresholds and the as-of date format.
func (c *Config) Validate() error {
	if err := validate.Struct(&c.Analytics); err != nil {
		return fmt.Errorf("invalid analytics config: %w", err)
	}
	if err := validate.Struct(&c.Database); err != nil {
		return fmt.Errorf("invalid database config: %w", err)
	}
	if err := validate.Struct(&c.Dataset); err != nil {
		return fmt.Errorf("invalid dataset config: %w", err)
	}
	return nil
}

// LoadWithSecrets loads configuration and resolves database and warehouse
// credentials from the configured secret source. In development the source
// is environment variables; in staging/production it is Azure Key Vault.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider: %w", err)
	}

	logger.Info("Loading secrets from Azure Key Vault",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	if host, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-HOST", "DATABASE_HOST"); err == nil && host != "" {
		cfg.Database.Host = host
	}
	if user, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-USER", "DATABASE_USER"); err == nil && user != "" {
		cfg.Database.User = user
	}
	if password, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-PASSWORD", "DATABASE_PASSWORD"); err == nil && password != "" {
		cfg.Database.Password = password
	}

	if connStr, err := provider.GetSecretOrEnv(ctx, "dataset-connection-string", "DATASET_CLOUDCONNECTIONSTRING"); err == nil && connStr != "" {
		cfg.Dataset.CloudConnectionString = connStr
	}

	if cfg.Warehouse.Enabled {
		if url, err := provider.GetSecretOrEnv(ctx, "WAREHOUSE-URL", "WAREHOUSE_URL"); err == nil && url != "" {
			cfg.Warehouse.URL = url
		}
		if user, err := provider.GetSecretOrEnv(ctx, "WAREHOUSE-USERNAME", "WAREHOUSE_USER"); err == nil && user != "" {
			cfg.Warehouse.User = user
		}
		if password, err := provider.GetSecretOrEnv(ctx, "WAREHOUSE-PASSWORD", "WAREHOUSE_PASSWORD"); err == nil && password != "" {
			cfg.Warehouse.Password = password
		}
	}

	logger.Info("Secrets loaded from vault successfully")
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Pipemetric Insight API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	// Database defaults: in-memory sqlite mirrors the read-only dataset
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "insight")
	v.SetDefault("database.user", "insight_user")
	v.SetDefault("database.password", "insight_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)

	// Warehouse defaults (MS SQL Server - optional, read-only)
	v.SetDefault("warehouse.enabled", false)
	v.SetDefault("warehouse.maxOpenConns", 10)
	v.SetDefault("warehouse.maxIdleConns", 2)
	v.SetDefault("warehouse.connMaxLifetime", 300)
	v.SetDefault("warehouse.queryTimeout", 30)
	v.SetDefault("warehouse.syncEnabled", false)
	v.SetDefault("warehouse.syncCron", "@every 6h")

	// Dataset defaults
	v.SetDefault("dataset.mode", "local")
	v.SetDefault("dataset.localPath", "./data")
	v.SetDefault("dataset.cloudContainer", "sales-dataset")

	// Analytics defaults: Q1 2025 as the simulated quarter
	v.SetDefault("analytics.asOfDate", "2025-02-10")
	v.SetDefault("analytics.staleDays", 30)
	v.SetDefault("analytics.lowActivityThreshold", 2)
	v.SetDefault("analytics.underperformingWinRateThreshold", 0.8)

	// Secrets defaults
	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.enableSwagger", true)

	// CORS defaults
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"X-Request-ID"})
	v.SetDefault("cors.allowCredentials", false)
	v.SetDefault("cors.maxAge", 300)

	// Security header defaults
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 120)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready"})
}
