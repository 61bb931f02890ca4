package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/straye-as/estimator/internal/domain"
	"github.com/straye-as/estimator/internal/secrets"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Storage    StorageConfig
	Secrets    SecretsConfig
	Logging    LoggingConfig
	Estimation EstimationConfig
	Jobs       JobsConfig
}

type AppConfig struct {
	Name        string
	Environment string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	// AutoMigrate runs gorm auto-migration on startup (development only)
	AutoMigrate bool
}

// StorageConfig controls where archived estimate reports are written
type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	// "auto" uses environment in development, vault in staging/production
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

// EstimationConfig holds defaults applied to newly imported estimates
type EstimationConfig struct {
	// DefaultProfitMargin is used when an imported project omits its margin
	DefaultProfitMargin float64
	// DefaultPhaseNames seed waves that carry a duration but no phase names
	DefaultPhaseNames []string
	// Logistics overrides the built-in logistics rate defaults
	Logistics LogisticsDefaults
}

// JobsConfig controls the scheduled report archive
type JobsConfig struct {
	ArchiveEnabled bool
	// ArchiveCron accepts 5 or 6 field expressions and descriptors such as @daily
	ArchiveCron     string
	ArchiveTimeout  int // seconds
	ArchiveStatuses []string
}

// ArchiveTimeoutDuration returns the archive job timeout as duration
func (j *JobsConfig) ArchiveTimeoutDuration() time.Duration {
	return time.Duration(j.ArchiveTimeout) * time.Second
}

// ArchiveProjectStatuses converts the configured statuses, dropping unknown ones
func (j *JobsConfig) ArchiveProjectStatuses() []domain.ProjectStatus {
	statuses := make([]domain.ProjectStatus, 0, len(j.ArchiveStatuses))
	for _, s := range j.ArchiveStatuses {
		if status := domain.ProjectStatus(strings.TrimSpace(s)); status.IsValid() {
			statuses = append(statuses, status)
		}
	}
	return statuses
}

// LogisticsDefaults mirrors domain.LogisticsConfig for viper unmarshalling
type LogisticsDefaults struct {
	PerDiemDaily          float64
	PerDiemDays           float64
	AccommodationDaily    float64
	AccommodationDays     float64
	LocalConveyanceDaily  float64
	LocalConveyanceDays   float64
	FlightCostPerTrip     float64
	VisaMedicalPerTrip    float64
	NumTrips              float64
	ContingencyPercentage float64
}

// LogisticsConfig converts the configured defaults to the domain type
func (l LogisticsDefaults) LogisticsConfig() domain.LogisticsConfig {
	return domain.LogisticsConfig{
		PerDiemDaily:          l.PerDiemDaily,
		PerDiemDays:           l.PerDiemDays,
		AccommodationDaily:    l.AccommodationDaily,
		AccommodationDays:     l.AccommodationDays,
		LocalConveyanceDaily:  l.LocalConveyanceDaily,
		LocalConveyanceDays:   l.LocalConveyanceDays,
		FlightCostPerTrip:     l.FlightCostPerTrip,
		VisaMedicalPerTrip:    l.VisaMedicalPerTrip,
		NumTrips:              l.NumTrips,
		ContingencyPercentage: l.ContingencyPercentage,
	}
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// Load loads configuration from file and environment variables
// This is a basic load that doesn't fetch secrets from vault
// Use LoadWithSecrets for full secret resolution
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

	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves the database password and
// storage connection string from the configured secret source.
// Environment variables always override vault values.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SecretSource(cfg.Secrets.Source),
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider: %w", err)
	}

	if !provider.IsVaultEnabled() {
		logger.Info("Using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if host, err := provider.GetSecretOrEnv(ctx, "ESTIMATOR-DB-HOST", "DATABASE_HOST"); err == nil && host != "" {
		cfg.Database.Host = host
	}
	if user, err := provider.GetSecretOrEnv(ctx, "ESTIMATOR-DB-USER", "DATABASE_USER"); err == nil && user != "" {
		cfg.Database.User = user
	}
	if password, err := provider.GetSecretOrEnv(ctx, "ESTIMATOR-DB-PASSWORD", "DATABASE_PASSWORD"); err == nil && password != "" {
		cfg.Database.Password = password
	}
	// Azure PostgreSQL requires "require"
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}
	if connStr, err := provider.GetSecretOrEnv(ctx, "storage-connection-string", "STORAGE_CLOUDCONNECTIONSTRING"); err == nil && connStr != "" {
		cfg.Storage.CloudConnectionString = connStr
	}

	logger.Info("Secrets loaded from vault successfully",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Straye Estimator")
	v.SetDefault("app.environment", "development")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "estimator")
	v.SetDefault("database.user", "estimator_user")
	v.SetDefault("database.password", "estimator_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 10)
	v.SetDefault("database.maxIdleConns", 2)
	v.SetDefault("database.connMaxLifetime", 300)
	v.SetDefault("database.autoMigrate", false)

	// Secrets defaults
	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300) // 5 minutes

	// Storage defaults
	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.cloudContainer", "estimates")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Jobs defaults
	v.SetDefault("jobs.archiveEnabled", false)
	v.SetDefault("jobs.archiveCron", "0 2 * * *")
	v.SetDefault("jobs.archiveTimeout", 600)
	v.SetDefault("jobs.archiveStatuses", []string{"approved"})

	// Estimation defaults
	v.SetDefault("estimation.defaultProfitMargin", 15.0)
	v.SetDefault("estimation.defaultPhaseNames", []string{"Discovery", "Prepare", "Explore", "Realize", "Deploy", "Run"})
	d := domain.DefaultLogisticsConfig
	v.SetDefault("estimation.logistics.perDiemDaily", d.PerDiemDaily)
	v.SetDefault("estimation.logistics.perDiemDays", d.PerDiemDays)
	v.SetDefault("estimation.logistics.accommodationDaily", d.AccommodationDaily)
	v.SetDefault("estimation.logistics.accommodationDays", d.AccommodationDays)
	v.SetDefault("estimation.logistics.localConveyanceDaily", d.LocalConveyanceDaily)
	v.SetDefault("estimation.logistics.localConveyanceDays", d.LocalConveyanceDays)
	v.SetDefault("estimation.logistics.flightCostPerTrip", d.FlightCostPerTrip)
	v.SetDefault("estimation.logistics.visaMedicalPerTrip", d.VisaMedicalPerTrip)
	v.SetDefault("estimation.logistics.numTrips", d.NumTrips)
	v.SetDefault("estimation.logistics.contingencyPercentage", d.ContingencyPercentage)
}
