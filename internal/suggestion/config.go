// internal/suggestion/config.go
package suggestion

import (
	"time"

	"social-support-wizard/internal/common/config"
)

// Config describes one chat-completion provider.
type Config struct {
	Name        string
	DisplayName string
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// LoadConfig builds the provider config for name from application configuration.
func LoadConfig(cfg *config.Config, name string) Config {
	p := cfg.AI.Providers[name]
	display := p.DisplayName
	if display == "" {
		display = name
	}
	return Config{
		Name:        name,
		DisplayName: display,
		BaseURL:     p.BaseURL,
		APIKey:      p.APIKey,
		Model:       p.Model,
		Timeout:     config.GetDuration(cfg.AI.Timeout),
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
	}
}
