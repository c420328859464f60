// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Queue        QueueConfig        `mapstructure:"queue"`
	Search       SearchConfig       `mapstructure:"search"`
	Fulfillment  FulfillmentConfig  `mapstructure:"fulfillment"`
	Integrations IntegrationConfig  `mapstructure:"integrations"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	MetricsAddr string `mapstructure:"metrics_addr"`
	HookAddr    string `mapstructure:"hook_addr"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// QueueConfig holds settings for the recommendation work queue.
type QueueConfig struct {
	Name              string `mapstructure:"name"`
	WaitTime          int    `mapstructure:"wait_time"`          // milliseconds, bounded receive wait
	VisibilityTimeout int    `mapstructure:"visibility_timeout"` // milliseconds before redelivery
}

// SearchConfig holds settings for the restaurant search index.
type SearchConfig struct {
	Index         string `mapstructure:"index"`
	MaxCandidates int    `mapstructure:"max_candidates"`
}

// FulfillmentConfig holds settings for the fulfillment worker loop.
type FulfillmentConfig struct {
	SampleSize   int `mapstructure:"sample_size"`
	PollInterval int `mapstructure:"poll_interval"` // milliseconds, idle sleep on NoWork
}

// IntegrationConfig holds settings for AWS and the Yelp catalog source.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			FromEmail string `mapstructure:"from_email"`
		} `mapstructure:"ses"`
	} `mapstructure:"aws"`

	Yelp struct {
		APIKey           string `mapstructure:"api_key"`
		BaseURL          string `mapstructure:"base_url"`
		Location         string `mapstructure:"location"`
		TargetPerCuisine int    `mapstructure:"target_per_cuisine"`
		Timeout          int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"yelp"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
