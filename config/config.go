package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Catalog sources for the duplicate comparison set
const (
	CatalogSourceNone     = "none"
	CatalogSourceFile     = "file"
	CatalogSourceDatabase = "database"
	CatalogSourceAPI      = "api"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Registry  RegistryConfig  `mapstructure:"registry"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Search    SearchConfig    `mapstructure:"search"`
	Reports   ReportsConfig   `mapstructure:"reports"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port" validate:"required,numeric"`
	Environment    string   `mapstructure:"environment" validate:"oneof=development production test"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RegistryConfig points at registry files; empty paths use the embedded defaults
type RegistryConfig struct {
	BrandsPath     string `mapstructure:"brands_path"`
	CategoriesPath string `mapstructure:"categories_path"`
	PatternsPath   string `mapstructure:"patterns_path"`
}

// MatchingConfig tunes brand, duplicate and category matching
type MatchingConfig struct {
	BrandFuzzyThreshold       float64 `mapstructure:"brand_fuzzy_threshold" validate:"gt=0,lte=1"`
	DuplicateFuzzyThreshold   float64 `mapstructure:"duplicate_fuzzy_threshold" validate:"gt=0,lte=1"`
	HardDuplicateThreshold    float64 `mapstructure:"hard_duplicate_threshold" validate:"gt=0,lte=1"`
	MaxDuplicateCandidates    int     `mapstructure:"max_duplicate_candidates" validate:"gte=1"`
	CategoryConfidenceDivisor float64 `mapstructure:"category_confidence_divisor" validate:"gt=0"`
	ReviewConfidenceFloor     float64 `mapstructure:"review_confidence_floor" validate:"gte=0,lte=1"`
	Workers                   int     `mapstructure:"workers" validate:"gte=0"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type     string        `mapstructure:"type" validate:"oneof=memory redis"`
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gt=0"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP   int `mapstructure:"per_ip" validate:"gte=0"`  // requests per minute
	Catalog int `mapstructure:"catalog" validate:"gte=0"` // requests per hour
}

// CatalogConfig selects where the comparison set comes from
type CatalogConfig struct {
	Source  string `mapstructure:"source" validate:"oneof=none file database api"`
	Path    string `mapstructure:"path"`
	Format  string `mapstructure:"format"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// DatabaseConfig holds the part store connection
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=sqlite3 postgres"`
	DSN    string `mapstructure:"dsn"`
}

// SearchConfig holds the Meilisearch connection; an empty URL disables indexing
type SearchConfig struct {
	URL    string `mapstructure:"url" validate:"omitempty,url"`
	APIKey string `mapstructure:"api_key"`
	Index  string `mapstructure:"index"`
}

// ReportsConfig controls report output and optional S3 archiving
type ReportsConfig struct {
	OutputDir string `mapstructure:"output_dir"`
	S3Bucket  string `mapstructure:"s3_bucket"`
	S3Prefix  string `mapstructure:"s3_prefix"`
	Region    string `mapstructure:"region"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

// Load loads configuration from a .env file, environment variables and config files
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches the
// standard locations; a named file must exist.
func LoadFile(path string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	v := viper.New()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/partingest/")
	}

	// PARTINGEST_CACHE_REDIS_URL maps to cache.redis_url
	v.SetEnvPrefix("PARTINGEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory. Variables already set
// in the environment are left alone.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}

// setDefaults sets default configuration values. Every key needs a default
// so that AutomaticEnv can see it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Registry defaults
	v.SetDefault("registry.brands_path", "")
	v.SetDefault("registry.categories_path", "")
	v.SetDefault("registry.patterns_path", "")

	// Matching defaults
	v.SetDefault("matching.brand_fuzzy_threshold", 0.85)
	v.SetDefault("matching.duplicate_fuzzy_threshold", 0.85)
	v.SetDefault("matching.hard_duplicate_threshold", 0.95)
	v.SetDefault("matching.max_duplicate_candidates", 5)
	v.SetDefault("matching.category_confidence_divisor", 20)
	v.SetDefault("matching.review_confidence_floor", 0.7)
	v.SetDefault("matching.workers", 0)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", "24h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.catalog", 1000)

	// Catalog defaults
	v.SetDefault("catalog.source", CatalogSourceNone)
	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.format", "")
	v.SetDefault("catalog.base_url", "")
	v.SetDefault("catalog.api_key", "")

	// Database defaults
	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "")

	// Search defaults
	v.SetDefault("search.url", "")
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.index", "parts")

	// Report defaults
	v.SetDefault("reports.output_dir", "output")
	v.SetDefault("reports.s3_bucket", "")
	v.SetDefault("reports.s3_prefix", "ingestion")
	v.SetDefault("reports.region", "")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// validate checks field constraints, then the settings that depend on each other
func validate(config *Config) error {
	if err := validator.New().Struct(config); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed '%s' check (got: %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return err
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Matching.HardDuplicateThreshold < config.Matching.DuplicateFuzzyThreshold {
		return fmt.Errorf("hard duplicate threshold (%.2f) must not be below the duplicate fuzzy threshold (%.2f)",
			config.Matching.HardDuplicateThreshold, config.Matching.DuplicateFuzzyThreshold)
	}

	switch config.Catalog.Source {
	case CatalogSourceFile:
		if config.Catalog.Path == "" {
			return fmt.Errorf("catalog path is required when catalog source is 'file'")
		}
	case CatalogSourceAPI:
		if config.Catalog.BaseURL == "" {
			return fmt.Errorf("catalog base URL is required when catalog source is 'api'")
		}
	case CatalogSourceDatabase:
		if config.Database.DSN == "" {
			return fmt.Errorf("database DSN is required when catalog source is 'database'")
		}
	}

	return nil
}
