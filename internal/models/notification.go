// internal/models/notification.go
package models

// Notification records one confirmation sent to the applicant.
type Notification struct {
	ID            string `json:"id"`
	ApplicationID string `json:"applicationId"`
	Channel       string `json:"channel"` // "email", "sms"
	Recipient     string `json:"recipient"`
	Status        string `json:"status"` // "sent", "failed", "disabled"
	SentAt        string `json:"sentAt"`
}

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"

	NotificationSent     = "sent"
	NotificationFailed   = "failed"
	NotificationDisabled = "disabled"
)
