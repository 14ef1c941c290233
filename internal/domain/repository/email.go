package repository

import (
	"context"
	"time"
)

// Estados de una fila de email_logs.
const (
	EmailStatusPending   = "pending"
	EmailStatusSent      = "sent"
	EmailStatusFailed    = "failed"
	EmailStatusBounced   = "bounced"
	EmailStatusDelivered = "delivered"
	EmailStatusOpened    = "opened"
	EmailStatusClicked   = "clicked"
)

// EmailLog es una fila de email_logs.
type EmailLog struct {
	ID                string
	RecipientEmail    string
	RecipientName     string
	UserID            *string
	EmailType         string
	Subject           string
	Context           map[string]any
	Variables         map[string]any
	Status            string
	ErrorMessage      *string
	Provider          string
	ProviderMessageID *string
	SentAt            *time.Time
	CreatedAt         time.Time
}

// CreateEmailLogInput son los datos capturados antes de llamar al transporte.
type CreateEmailLogInput struct {
	RecipientEmail string
	RecipientName  string
	UserID         string
	EmailType      string
	Subject        string
	Context        map[string]any
	Variables      map[string]any
	Provider       string
}

// EmailStatsFilter filtra las estadísticas por rango y tipo.
type EmailStatsFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	EmailType string
}

// EmailTypeStats agrupa conteos por email_type.
type EmailTypeStats struct {
	EmailType string `json:"email_type"`
	Total     int64  `json:"total"`
	Sent      int64  `json:"sent"`
	Failed    int64  `json:"failed"`
	Delivered int64  `json:"delivered"`
	Opened    int64  `json:"opened"`
	Bounced   int64  `json:"bounced"`
}

// EmailLogRepository persiste el ciclo de vida de cada envío.
type EmailLogRepository interface {
	Insert(ctx context.Context, in CreateEmailLogInput) (string, error)
	MarkSent(ctx context.Context, id, providerMessageID string) error
	MarkFailed(ctx context.Context, id, errorMessage string) error
	CountSince(ctx context.Context, since time.Time) (int, error)
	Stats(ctx context.Context, f EmailStatsFilter) ([]EmailTypeStats, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]EmailLog, error)
	ListByRecipient(ctx context.Context, email string, limit int) ([]EmailLog, error)
}

// EmailPreference es la fila de email_preferences de un usuario.
type EmailPreference struct {
	UserID                   string    `json:"user_id"`
	EmailNotifications       bool      `json:"email_notifications"`
	MarketingEmails          bool      `json:"marketing_emails"`
	ReservationConfirmations bool      `json:"reservation_confirmations"`
	ReservationReminders     bool      `json:"reservation_reminders"`
	ProjectUpdates           bool      `json:"project_updates"`
	ProjectStatusChanges     bool      `json:"project_status_changes"`
	PaymentNotifications     bool      `json:"payment_notifications"`
	Newsletter               bool      `json:"newsletter"`
	DigestFrequency          string    `json:"digest_frequency"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// DefaultEmailPreference devuelve las preferencias "todo activado".
func DefaultEmailPreference(userID string) EmailPreference {
	return EmailPreference{
		UserID:                   userID,
		EmailNotifications:       true,
		MarketingEmails:          true,
		ReservationConfirmations: true,
		ReservationReminders:     true,
		ProjectUpdates:           true,
		ProjectStatusChanges:     true,
		PaymentNotifications:     true,
		Newsletter:               true,
		DigestFrequency:          "immediate",
	}
}

// EmailPreferenceRepository lee y escribe preferencias.
type EmailPreferenceRepository interface {
	// Get devuelve ErrNotFound si el usuario no tiene fila.
	Get(ctx context.Context, userID string) (*EmailPreference, error)
	// Ensure crea la fila con defaults si no existe y la devuelve.
	Ensure(ctx context.Context, userID string) (*EmailPreference, error)
	Upsert(ctx context.Context, p EmailPreference) (*EmailPreference, error)
}
