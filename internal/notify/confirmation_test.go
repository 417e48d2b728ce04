package notify

import (
	"context"
	"errors"
	"testing"

	"social-support-wizard/internal/common/logger"
	"social-support-wizard/internal/i18n"
	"social-support-wizard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmailer struct {
	to, subject, body string
	err               error
}

func (f *fakeEmailer) SendText(_ context.Context, to, subject, body string) (string, error) {
	f.to, f.subject, f.body = to, subject, body
	return "msg-1", f.err
}

type fakeTexter struct {
	phone, message string
	err            error
}

func (f *fakeTexter) SendSMS(_ context.Context, phone, message string) (string, error) {
	f.phone, f.message = phone, message
	return "sms-1", f.err
}

func payload() (*models.ApplicationPayload, *models.SubmissionResult) {
	return &models.ApplicationPayload{
			PersonalInfo: models.StepData{
				models.FieldName:  "Ann",
				models.FieldEmail: "ann@example.com",
				models.FieldPhone: "+971501234567",
			},
		}, &models.SubmissionResult{
			ApplicationID: "APP-1",
			Status:        models.StatusSubmitted,
		}
}

func TestConfirmation_SendsBothChannels(t *testing.T) {
	email, sms := &fakeEmailer{}, &fakeTexter{}
	c := NewConfirmation(email, sms, i18n.MustLoad(), nil, logger.NewTestLogger(t))

	p, r := payload()
	require.NoError(t, c.AfterSubmit(context.Background(), p, r))

	assert.Equal(t, "ann@example.com", email.to)
	assert.Equal(t, "Application APP-1 received", email.subject)
	assert.Contains(t, email.body, "Dear Ann")
	assert.Equal(t, "+971501234567", sms.phone)
	assert.Contains(t, sms.message, "APP-1")
}

func TestConfirmation_UsesApplicantLanguage(t *testing.T) {
	email := &fakeEmailer{}
	catalog := i18n.MustLoad()
	c := NewConfirmation(email, nil, catalog, func() models.Language { return models.Arabic }, nil)

	p, r := payload()
	require.NoError(t, c.AfterSubmit(context.Background(), p, r))
	assert.Equal(t, catalog.Format(models.Arabic, "notify.subject", map[string]string{"applicationId": "APP-1"}), email.subject)
}

func TestConfirmation_ReportsPerChannel(t *testing.T) {
	email := &fakeEmailer{err: errors.New("ses throttled")}
	c := NewConfirmation(email, nil, i18n.MustLoad(), nil, logger.NewTestLogger(t))

	p, r := payload()
	got := c.Send(context.Background(), p, r)

	require.Len(t, got, 2)
	assert.Equal(t, models.ChannelEmail, got[0].Channel)
	assert.Equal(t, models.NotificationFailed, got[0].Status)
	assert.Equal(t, models.ChannelSMS, got[1].Channel)
	assert.Equal(t, models.NotificationDisabled, got[1].Status)

	assert.Error(t, c.AfterSubmit(context.Background(), p, r))
}

func TestConfirmation_SkipsMissingRecipient(t *testing.T) {
	email := &fakeEmailer{}
	c := NewConfirmation(email, nil, i18n.MustLoad(), nil, nil)

	p, r := payload()
	p.PersonalInfo[models.FieldEmail] = " "
	got := c.Send(context.Background(), p, r)

	assert.Equal(t, models.NotificationDisabled, got[0].Status)
	assert.Empty(t, email.to)
}
