// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Logging       LoggingConfig      `mapstructure:"logging"`
	Form          FormConfig         `mapstructure:"form"`
	Persistence   PersistenceConfig  `mapstructure:"persistence"`
	AI            AIConfig           `mapstructure:"ai"`
	Submission    SubmissionConfig   `mapstructure:"submission"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Camunda       CamundaConfig      `mapstructure:"camunda"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Archive       ArchiveConfig      `mapstructure:"archive"`
	Metrics       MetricsConfig      `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// FormConfig controls wizard start-up behaviour.
type FormConfig struct {
	// ResumeDraft offers the persisted draft on start instead of discarding it.
	ResumeDraft bool   `mapstructure:"resume_draft"`
	DraftKey    string `mapstructure:"draft_key"`
	Language    string `mapstructure:"language"`
}

type PersistenceConfig struct {
	Backend string `mapstructure:"backend"` // memory | file | redis
	FileDir string `mapstructure:"file_dir"`
	TTL     int    `mapstructure:"ttl"` // milliseconds, 0 = no expiry
}

// ProviderConfig describes one chat-completion backend.
type ProviderConfig struct {
	DisplayName string `mapstructure:"display_name"`
	BaseURL     string `mapstructure:"base_url"`
	APIKey      string `mapstructure:"api_key"`
	Model       string `mapstructure:"model"`
}

type AIConfig struct {
	AutoFallback bool                      `mapstructure:"auto_fallback"`
	Primary      string                    `mapstructure:"primary"`
	Secondary    string                    `mapstructure:"secondary"`
	Timeout      int                       `mapstructure:"timeout"` // milliseconds
	MaxTokens    int                       `mapstructure:"max_tokens"`
	Temperature  float64                   `mapstructure:"temperature"`
	Providers    map[string]ProviderConfig `mapstructure:"providers"`
}

type SubmissionConfig struct {
	Backend string `mapstructure:"backend"` // mock | http | postgres | camunda
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
	Mock    struct {
		MinDelay    int     `mapstructure:"min_delay"` // milliseconds
		MaxDelay    int     `mapstructure:"max_delay"` // milliseconds
		FailureRate float64 `mapstructure:"failure_rate"`
	} `mapstructure:"mock"`
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
	URL       string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	ProcessID      string `mapstructure:"process_id"`
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// NotificationConfig holds settings for submission confirmations.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// ArchiveConfig controls indexing of submitted applications.
type ArchiveConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Index   string `mapstructure:"index"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}
