// Package email contiene los DTOs de /admin/emails y /me/email-preferences.
package email

import (
	"time"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
)

type StatsResponse struct {
	Success bool                        `json:"success"`
	Stats   []repository.EmailTypeStats `json:"stats"`
}

// LogItem es una fila de email_logs sin el HTML ni las variables.
type LogItem struct {
	ID             string     `json:"id"`
	RecipientEmail string     `json:"recipient_email"`
	EmailType      string     `json:"email_type"`
	Subject        string     `json:"subject"`
	Status         string     `json:"status"`
	ErrorMessage   *string    `json:"error_message,omitempty"`
	Provider       string     `json:"provider"`
	SentAt         *time.Time `json:"sent_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type HistoryResponse struct {
	Success bool      `json:"success"`
	Emails  []LogItem `json:"emails"`
}

type PreferencesResponse struct {
	Success     bool                        `json:"success"`
	Message     string                      `json:"message,omitempty"`
	Preferences *repository.EmailPreference `json:"preferences"`
}

// PreferencesRequest es el body de PUT /me/email-preferences.
type PreferencesRequest struct {
	EmailNotifications       *bool   `json:"email_notifications"`
	MarketingEmails          *bool   `json:"marketing_emails"`
	ReservationConfirmations *bool   `json:"reservation_confirmations"`
	ReservationReminders     *bool   `json:"reservation_reminders"`
	ProjectUpdates           *bool   `json:"project_updates"`
	ProjectStatusChanges     *bool   `json:"project_status_changes"`
	PaymentNotifications     *bool   `json:"payment_notifications"`
	Newsletter               *bool   `json:"newsletter"`
	DigestFrequency          *string `json:"digest_frequency"`
}
