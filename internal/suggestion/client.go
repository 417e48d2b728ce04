// internal/suggestion/client.go
package suggestion

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	apperrors "social-support-wizard/internal/common/errors"
	httpclient "social-support-wizard/internal/common/http"
	"social-support-wizard/internal/common/logger"
	"social-support-wizard/internal/common/metrics"
	"social-support-wizard/internal/common/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const defaultTimeout = 30 * time.Second

// Suggester drafts text for one form field.
type Suggester interface {
	Name() string
	DisplayName() string
	Suggest(ctx context.Context, field, userContext string) (string, error)
}

// Client talks to an OpenAI-compatible chat-completion endpoint. Every failure it returns is an
// *apperrors.Error.
type Client struct {
	config *Config
	http   *httpclient.Client
	obs    *observability.Observability
	logger logger.Logger
}

func NewClient(config Config, hc *httpclient.Client, obs *observability.Observability, log logger.Logger) *Client {
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if hc == nil {
		// No client-level timeout; the request context carries the deadline.
		hc = httpclient.NewClient(0)
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{
		config: &config,
		http:   hc,
		obs:    obs,
		logger: log.With(map[string]interface{}{"provider": config.Name}),
	}
}

func (c *Client) Name() string { return c.config.Name }

func (c *Client) DisplayName() string { return c.config.DisplayName }

// Configured reports whether a credential is present.
func (c *Client) Configured() bool { return c.config.APIKey != "" }

func (c *Client) Suggest(ctx context.Context, field, userContext string) (string, error) {
	start := time.Now()

	ctx, span := c.obs.StartSpan(ctx, "suggestion."+c.config.Name,
		attribute.String("provider", c.config.Name),
		attribute.String("field", field),
	)
	defer span.End()

	text, err := c.execute(ctx, field, userContext)

	outcome := "ok"
	if err != nil {
		err = err.WithProvider(c.config.Name)
		outcome = string(err.Kind)
		span.SetStatus(codes.Error, err.Tag())
		c.logger.Warn("suggestion failed", map[string]interface{}{
			"field":    field,
			"kind":     string(err.Kind),
			"tag":      err.Tag(),
			"category": apperrors.Category(err.Kind),
		})
	} else {
		c.logger.Info("suggestion generated", map[string]interface{}{
			"field":  field,
			"length": len(text),
		})
	}

	metrics.SuggestionRequests.WithLabelValues(c.config.Name, outcome).Inc()
	metrics.SuggestionDuration.WithLabelValues(c.config.Name).Observe(time.Since(start).Seconds())
	c.obs.RecordOperation(ctx, "suggest."+c.config.Name, outcome, time.Since(start))

	if err != nil {
		return "", err
	}
	return text, nil
}

func (c *Client) execute(ctx context.Context, field, userContext string) (string, *apperrors.Error) {
	if c.config.APIKey == "" {
		return "", apperrors.New(apperrors.KindAPIKeyMissing)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req := chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: BuildPrompt(field, userContext)},
		},
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}

	resp, err := c.http.PostJSON(ctx, c.config.BaseURL, map[string]string{
		"Authorization": "Bearer " + c.config.APIKey,
	}, req)
	if err != nil {
		return "", apperrors.Normalize(err)
	}

	if !resp.OK() {
		return "", classifyStatus(resp.StatusCode, resp.Body)
	}

	var parsed chatResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return "", apperrors.Wrap(apperrors.KindInvalidResponse, err)
	}
	if len(parsed.Choices) == 0 {
		return "", apperrors.New(apperrors.KindInvalidResponse)
	}
	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", apperrors.New(apperrors.KindInvalidResponse)
	}
	return text, nil
}
