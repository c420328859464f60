// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like DATABASE_POSTGRES_PASSWORD
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overrides, ignored when absent.
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the first location that has one, so binaries
// under cmd/ and tests in package directories all pick it up.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "dining-concierge"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.App.MetricsAddr == "" {
		cfg.App.MetricsAddr = ":9090"
	}
	if cfg.App.HookAddr == "" {
		cfg.App.HookAddr = ":8080"
	}

	if cfg.Database.Postgres.Host == "" {
		cfg.Database.Postgres.Host = "localhost"
	}
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.Database == "" {
		cfg.Database.Postgres.Database = "concierge"
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}

	if len(cfg.Database.Elasticsearch.Addresses) == 0 {
		cfg.Database.Elasticsearch.Addresses = []string{"http://localhost:9200"}
	}

	if cfg.Database.Redis.Address == "" {
		cfg.Database.Redis.Address = "localhost:6379"
	}

	if cfg.Queue.Name == "" {
		cfg.Queue.Name = "dining-requests"
	}
	if cfg.Queue.WaitTime == 0 {
		cfg.Queue.WaitTime = 5000
	}
	if cfg.Queue.VisibilityTimeout == 0 {
		cfg.Queue.VisibilityTimeout = 30000
	}

	if cfg.Search.Index == "" {
		cfg.Search.Index = "restaurants"
	}
	if cfg.Search.MaxCandidates == 0 {
		cfg.Search.MaxCandidates = 50
	}

	if cfg.Fulfillment.SampleSize == 0 {
		cfg.Fulfillment.SampleSize = 3
	}
	if cfg.Fulfillment.PollInterval == 0 {
		cfg.Fulfillment.PollInterval = 2000
	}

	if cfg.Integrations.AWS.Region == "" {
		cfg.Integrations.AWS.Region = "us-east-1"
	}
	if cfg.Integrations.Yelp.BaseURL == "" {
		cfg.Integrations.Yelp.BaseURL = "https://api.yelp.com/v3"
	}
	if cfg.Integrations.Yelp.Location == "" {
		cfg.Integrations.Yelp.Location = "New York"
	}
	if cfg.Integrations.Yelp.TargetPerCuisine == 0 {
		cfg.Integrations.Yelp.TargetPerCuisine = 50
	}
	if cfg.Integrations.Yelp.Timeout == 0 {
		cfg.Integrations.Yelp.Timeout = 10000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Queue.Name == "" {
		return fmt.Errorf("queue.name must not be empty")
	}
	if cfg.Search.MaxCandidates <= 0 {
		return fmt.Errorf("search.max_candidates must be positive")
	}
	if cfg.Fulfillment.SampleSize <= 0 {
		return fmt.Errorf("fulfillment.sample_size must be positive")
	}
	if cfg.Queue.VisibilityTimeout < 0 {
		return fmt.Errorf("queue.visibility_timeout must not be negative")
	}
	return nil
}
