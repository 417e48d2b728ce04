// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderMistral = "mistral"
	ProviderOpenAI  = "openai"

	DefaultDraftKey = "socialSupportFormData"
)

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // overlay is optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

// Default returns a configuration built only from defaults and the environment.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	overrideEmptyConfig(cfg)
	return cfg
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working directory.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
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

// Find project root by looking for go.mod
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

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			v.Set(key, os.ExpandEnv(strVal))
		}
	}
}

// overrideEmptyConfig fills credentials from well-known variables when the file left them blank.
func overrideEmptyConfig(cfg *Config) {
	for name, envKey := range map[string]string{
		ProviderMistral: "MISTRAL_API_KEY",
		ProviderOpenAI:  "OPENAI_API_KEY",
	} {
		p, ok := cfg.AI.Providers[name]
		if !ok || p.APIKey != "" {
			continue
		}
		if val := os.Getenv(envKey); val != "" {
			p.APIKey = val
			cfg.AI.Providers[name] = p
		}
	}

	if cfg.Submission.BaseURL == "" {
		if val := os.Getenv("SUBMISSION_API_BASE_URL"); val != "" {
			cfg.Submission.BaseURL = val
		}
	}

	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "social-support-wizard"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "wizard.log"
	}

	if cfg.Form.DraftKey == "" {
		cfg.Form.DraftKey = DefaultDraftKey
	}
	if cfg.Form.Language == "" {
		cfg.Form.Language = "en"
	}

	if cfg.Persistence.Backend == "" {
		cfg.Persistence.Backend = "file"
	}
	if cfg.Persistence.FileDir == "" {
		cfg.Persistence.FileDir = ".social-support"
	}

	if cfg.AI.Primary == "" {
		cfg.AI.Primary = ProviderMistral
	}
	if cfg.AI.Secondary == "" {
		cfg.AI.Secondary = ProviderOpenAI
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = 30000
	}
	if cfg.AI.MaxTokens == 0 {
		cfg.AI.MaxTokens = 500
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = 0.7
	}
	if cfg.AI.Providers == nil {
		cfg.AI.Providers = map[string]ProviderConfig{}
	}
	fillProvider(cfg, ProviderMistral, ProviderConfig{
		DisplayName: "Mistral AI",
		BaseURL:     "https://api.mistral.ai/v1/chat/completions",
		Model:       "mistral-small",
	})
	fillProvider(cfg, ProviderOpenAI, ProviderConfig{
		DisplayName: "OpenAI",
		BaseURL:     "https://api.openai.com/v1/chat/completions",
		Model:       "gpt-3.5-turbo",
	})

	if cfg.Submission.Backend == "" {
		cfg.Submission.Backend = "mock"
	}
	if cfg.Submission.Timeout == 0 {
		cfg.Submission.Timeout = 30000
	}
	if cfg.Submission.Mock.MinDelay == 0 && cfg.Submission.Mock.MaxDelay == 0 {
		cfg.Submission.Mock.MinDelay = 1000
		cfg.Submission.Mock.MaxDelay = 2000
	}

	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if cfg.Camunda.ProcessID == "" {
		cfg.Camunda.ProcessID = "social-support-application"
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Notifications.AWS.Region == "" {
		cfg.Notifications.AWS.Region = "us-east-1"
	}

	if cfg.Archive.Index == "" {
		cfg.Archive.Index = "social-support-applications"
	}
}

func fillProvider(cfg *Config, name string, def ProviderConfig) {
	p := cfg.AI.Providers[name]
	if p.DisplayName == "" {
		p.DisplayName = def.DisplayName
	}
	if p.BaseURL == "" {
		p.BaseURL = def.BaseURL
	}
	if p.Model == "" {
		p.Model = def.Model
	}
	cfg.AI.Providers[name] = p
}

// validateConfig validates critical configuration fields. Missing AI credentials are allowed.
func validateConfig(cfg *Config) error {
	switch cfg.Persistence.Backend {
	case "memory", "file":
	case "redis":
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for redis persistence")
		}
	default:
		return fmt.Errorf("persistence.backend %q is not supported", cfg.Persistence.Backend)
	}

	if _, ok := cfg.AI.Providers[cfg.AI.Primary]; !ok {
		return fmt.Errorf("ai.primary %q has no provider entry", cfg.AI.Primary)
	}
	if _, ok := cfg.AI.Providers[cfg.AI.Secondary]; !ok {
		return fmt.Errorf("ai.secondary %q has no provider entry", cfg.AI.Secondary)
	}
	if cfg.AI.Primary == cfg.AI.Secondary {
		return fmt.Errorf("ai.primary and ai.secondary must differ")
	}

	switch cfg.Submission.Backend {
	case "mock":
		if cfg.Submission.Mock.FailureRate < 0 || cfg.Submission.Mock.FailureRate > 1 {
			return fmt.Errorf("submission.mock.failure_rate must be within [0,1]")
		}
	case "http":
		if cfg.Submission.BaseURL == "" {
			return fmt.Errorf("submission.base_url is required for http submission")
		}
	case "postgres":
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if cfg.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	case "camunda":
		if cfg.Camunda.BrokerAddress == "" {
			return fmt.Errorf("camunda.broker_address is required")
		}
	default:
		return fmt.Errorf("submission.backend %q is not supported", cfg.Submission.Backend)
	}

	if cfg.Archive.Enabled && cfg.Database.Elasticsearch.GetURL() == "" {
		return fmt.Errorf("database.elasticsearch.addresses or url is required when archive is enabled")
	}

	if cfg.Notifications.Email.Enabled && cfg.Notifications.Email.FromEmail == "" {
		return fmt.Errorf("notifications.email.from_email is required")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
