package pg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
)

type emailLogRepo struct {
	pool *pgxpool.Pool
}

func (r *emailLogRepo) Insert(ctx context.Context, in repository.CreateEmailLogInput) (string, error) {
	const q = `
		INSERT INTO email_logs (recipient_email, recipient_name, user_id, email_type, subject,
		                        context, variables, status, provider)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', $8)
		RETURNING id`
	ctxJSON := in.Context
	if ctxJSON == nil {
		ctxJSON = map[string]any{}
	}
	vars := in.Variables
	if vars == nil {
		vars = map[string]any{}
	}
	var id string
	err := r.pool.QueryRow(ctx, q,
		in.RecipientEmail, nullIfEmpty(in.RecipientName), nullIfEmpty(in.UserID), in.EmailType, in.Subject,
		ctxJSON, vars, in.Provider,
	).Scan(&id)
	if err != nil {
		return "", mapErr(err)
	}
	return id, nil
}

func (r *emailLogRepo) MarkSent(ctx context.Context, id, providerMessageID string) error {
	const q = `
		UPDATE email_logs
		SET status = 'sent', provider_message_id = $2, sent_at = now(), updated_at = now()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id, nullIfEmpty(providerMessageID))
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *emailLogRepo) MarkFailed(ctx context.Context, id, errorMessage string) error {
	const q = `
		UPDATE email_logs
		SET status = 'failed', error_message = $2, updated_at = now()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id, errorMessage)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *emailLogRepo) CountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM email_logs WHERE created_at >= $1`, since).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *emailLogRepo) Stats(ctx context.Context, f repository.EmailStatsFilter) ([]repository.EmailTypeStats, error) {
	var (
		where []string
		args  []any
	)
	if f.StartDate != nil {
		args = append(args, *f.StartDate)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if f.EndDate != nil {
		args = append(args, *f.EndDate)
		where = append(where, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if f.EmailType != "" {
		args = append(args, f.EmailType)
		where = append(where, fmt.Sprintf("email_type = $%d", len(args)))
	}

	q := `
		SELECT email_type,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'sent'),
		       COUNT(*) FILTER (WHERE status = 'failed'),
		       COUNT(*) FILTER (WHERE status = 'delivered'),
		       COUNT(*) FILTER (WHERE status = 'opened'),
		       COUNT(*) FILTER (WHERE status = 'bounced')
		FROM email_logs`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " GROUP BY email_type ORDER BY COUNT(*) DESC"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []repository.EmailTypeStats{}
	for rows.Next() {
		var s repository.EmailTypeStats
		if err := rows.Scan(&s.EmailType, &s.Total, &s.Sent, &s.Failed, &s.Delivered, &s.Opened, &s.Bounced); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

const emailLogColumns = `id, recipient_email, COALESCE(recipient_name, ''), user_id, email_type, subject,
	context, variables, status, error_message, COALESCE(provider, ''), provider_message_id, sent_at, created_at`

func (r *emailLogRepo) list(ctx context.Context, where string, arg any, limit int) ([]repository.EmailLog, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT ` + emailLogColumns + ` FROM email_logs WHERE ` + where + ` ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, q, arg, limit)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	out := []repository.EmailLog{}
	for rows.Next() {
		var l repository.EmailLog
		if err := rows.Scan(
			&l.ID, &l.RecipientEmail, &l.RecipientName, &l.UserID, &l.EmailType, &l.Subject,
			&l.Context, &l.Variables, &l.Status, &l.ErrorMessage, &l.Provider, &l.ProviderMessageID,
			&l.SentAt, &l.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *emailLogRepo) ListByUser(ctx context.Context, userID string, limit int) ([]repository.EmailLog, error) {
	return r.list(ctx, "user_id = $1", userID, limit)
}

func (r *emailLogRepo) ListByRecipient(ctx context.Context, email string, limit int) ([]repository.EmailLog, error) {
	return r.list(ctx, "LOWER(recipient_email) = LOWER($1)", email, limit)
}
