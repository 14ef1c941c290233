package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
)

type preferenceRepo struct {
	pool *pgxpool.Pool
}

const preferenceColumns = `user_id, email_notifications, marketing_emails, reservation_confirmations,
	reservation_reminders, project_updates, project_status_changes, payment_notifications,
	newsletter, digest_frequency, updated_at`

func scanPreference(row rowScanner) (*repository.EmailPreference, error) {
	var p repository.EmailPreference
	err := row.Scan(
		&p.UserID, &p.EmailNotifications, &p.MarketingEmails, &p.ReservationConfirmations,
		&p.ReservationReminders, &p.ProjectUpdates, &p.ProjectStatusChanges, &p.PaymentNotifications,
		&p.Newsletter, &p.DigestFrequency, &p.UpdatedAt,
	)
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *preferenceRepo) Get(ctx context.Context, userID string) (*repository.EmailPreference, error) {
	return scanPreference(r.pool.QueryRow(ctx,
		`SELECT `+preferenceColumns+` FROM email_preferences WHERE user_id = $1`, userID))
}

func (r *preferenceRepo) Ensure(ctx context.Context, userID string) (*repository.EmailPreference, error) {
	if _, err := r.pool.Exec(ctx,
		`INSERT INTO email_preferences (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID); err != nil {
		return nil, mapErr(err)
	}
	return r.Get(ctx, userID)
}

func (r *preferenceRepo) Upsert(ctx context.Context, p repository.EmailPreference) (*repository.EmailPreference, error) {
	if p.DigestFrequency == "" {
		p.DigestFrequency = "immediate"
	}
	const q = `
		INSERT INTO email_preferences (user_id, email_notifications, marketing_emails, reservation_confirmations,
			reservation_reminders, project_updates, project_status_changes, payment_notifications,
			newsletter, digest_frequency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			email_notifications       = EXCLUDED.email_notifications,
			marketing_emails          = EXCLUDED.marketing_emails,
			reservation_confirmations = EXCLUDED.reservation_confirmations,
			reservation_reminders     = EXCLUDED.reservation_reminders,
			project_updates           = EXCLUDED.project_updates,
			project_status_changes    = EXCLUDED.project_status_changes,
			payment_notifications     = EXCLUDED.payment_notifications,
			newsletter                = EXCLUDED.newsletter,
			digest_frequency          = EXCLUDED.digest_frequency,
			updated_at                = now()
		RETURNING ` + preferenceColumns
	return scanPreference(r.pool.QueryRow(ctx, q,
		p.UserID, p.EmailNotifications, p.MarketingEmails, p.ReservationConfirmations,
		p.ReservationReminders, p.ProjectUpdates, p.ProjectStatusChanges, p.PaymentNotifications,
		p.Newsletter, p.DigestFrequency))
}
