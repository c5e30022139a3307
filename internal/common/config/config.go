// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Loan          LoanConfig          `mapstructure:"loan"`
	Notifications NotificationConfig  `mapstructure:"notifications"`
	Search        SearchConfig        `mapstructure:"search"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	Tracing       TracingConfig       `mapstructure:"tracing"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// StorageConfig selects the persistence backend and the namespace key the
// state blob lives under.
type StorageConfig struct {
	Driver    string `mapstructure:"driver"` // redis | postgres | memory
	Namespace string `mapstructure:"namespace"`
}

type DatabaseConfig struct {
	Redis         RedisConfig         `mapstructure:"redis"`
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
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

// GetDSN returns the PostgreSQL connection string.
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

// LoanConfig bounds the estimate slider.
type LoanConfig struct {
	MinAmount     int `mapstructure:"min_amount"`
	MaxAmount     int `mapstructure:"max_amount"`
	DefaultAmount int `mapstructure:"default_amount"`
}

// Clamp forces amount into [MinAmount, MaxAmount]; zero falls back to the
// default.
func (l LoanConfig) Clamp(amount int) int {
	if amount == 0 {
		return l.DefaultAmount
	}
	if amount < l.MinAmount {
		return l.MinAmount
	}
	if amount > l.MaxAmount {
		return l.MaxAmount
	}
	return amount
}

// NotificationConfig drives the best-effort SMS/email side channel. Both
// senders are disabled unless explicitly turned on.
type NotificationConfig struct {
	AWSRegion    string `mapstructure:"aws_region"`
	SMSEnabled   bool   `mapstructure:"sms_enabled"`
	EmailEnabled bool   `mapstructure:"email_enabled"`
	FromAddress  string `mapstructure:"from_address"`
}

// SearchConfig drives the optional completed-application indexer.
type SearchConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Index   string `mapstructure:"index"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
