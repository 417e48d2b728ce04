// Package notify sends the applicant a confirmation once an application is accepted.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	awsclient "social-support-wizard/internal/common/aws"
	"social-support-wizard/internal/common/logger"
	"social-support-wizard/internal/i18n"
	"social-support-wizard/internal/models"

	"github.com/google/uuid"
)

// Emailer sends a plain-text email.
type Emailer interface {
	SendText(ctx context.Context, to, subject, body string) (string, error)
}

// Texter sends an SMS.
type Texter interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}

var (
	_ Emailer = (*awsclient.SESClient)(nil)
	_ Texter  = (*awsclient.SNSClient)(nil)
)

// Confirmation is an after-submit hook. A nil Emailer or Texter disables that channel.
type Confirmation struct {
	email   Emailer
	sms     Texter
	catalog *i18n.Catalog
	lang    func() models.Language
	logger  logger.Logger
	timeout time.Duration
}

// NewConfirmation builds the hook. lang reports the language the applicant used; nil means English.
func NewConfirmation(email Emailer, sms Texter, catalog *i18n.Catalog, lang func() models.Language, log logger.Logger) *Confirmation {
	if lang == nil {
		lang = func() models.Language { return models.English }
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Confirmation{
		email:   email,
		sms:     sms,
		catalog: catalog,
		lang:    lang,
		logger:  log.WithFields(map[string]interface{}{"component": "notify"}),
		timeout: 10 * time.Second,
	}
}

func (c *Confirmation) Name() string { return "confirmation" }

func (c *Confirmation) AfterSubmit(ctx context.Context, payload *models.ApplicationPayload, result *models.SubmissionResult) error {
	var errs []error
	for _, n := range c.Send(ctx, payload, result) {
		if n.Status == models.NotificationFailed {
			errs = append(errs, fmt.Errorf("%s to %s failed", n.Channel, n.Recipient))
		}
	}
	return errors.Join(errs...)
}

// Send delivers the confirmation on every enabled channel and reports what happened on each.
func (c *Confirmation) Send(ctx context.Context, payload *models.ApplicationPayload, result *models.SubmissionResult) []models.Notification {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	lang := c.lang()
	vars := map[string]string{
		"name":          payload.PersonalInfo[models.FieldName],
		"applicationId": result.ApplicationID,
	}

	email := strings.TrimSpace(payload.PersonalInfo[models.FieldEmail])
	phone := strings.TrimSpace(payload.PersonalInfo[models.FieldPhone])

	out := []models.Notification{
		c.deliver(result.ApplicationID, models.ChannelEmail, email, c.email != nil, func() (string, error) {
			return c.email.SendText(ctx, email,
				c.catalog.Format(lang, "notify.subject", vars),
				c.catalog.Format(lang, "notify.body", vars))
		}),
		c.deliver(result.ApplicationID, models.ChannelSMS, phone, c.sms != nil, func() (string, error) {
			return c.sms.SendSMS(ctx, phone, c.catalog.Format(lang, "notify.sms", vars))
		}),
	}
	return out
}

func (c *Confirmation) deliver(appID, channel, recipient string, enabled bool, send func() (string, error)) models.Notification {
	n := models.Notification{
		ID:            uuid.New().String(),
		ApplicationID: appID,
		Channel:       channel,
		Recipient:     recipient,
		Status:        models.NotificationDisabled,
		SentAt:        time.Now().UTC().Format(time.RFC3339),
	}
	if !enabled || recipient == "" {
		return n
	}

	if _, err := send(); err != nil {
		c.logger.Error("confirmation send failed", map[string]interface{}{
			"channel":       channel,
			"applicationId": appID,
			"error":         err.Error(),
		})
		n.Status = models.NotificationFailed
		return n
	}

	c.logger.Info("confirmation sent", map[string]interface{}{
		"channel":       channel,
		"applicationId": appID,
	})
	n.Status = models.NotificationSent
	return n
}
