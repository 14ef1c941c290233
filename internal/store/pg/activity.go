package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
)

type activityRepo struct {
	pool *pgxpool.Pool
}

func (r *activityRepo) LogAdminActivity(ctx context.Context, e repository.ActivityEntry) error {
	const q = `
		INSERT INTO admin_activity_logs (admin_id, action, entity_type, entity_id, description)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.pool.Exec(ctx, q, nullIfEmpty(e.AdminID), e.Action, e.EntityType, nullIfEmpty(e.EntityID), e.Description)
	return mapErr(err)
}

func (r *activityRepo) Notify(ctx context.Context, n repository.UserNotification) error {
	const q = `
		INSERT INTO user_notifications (user_id, title, message, type, related_type, related_id)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, q, n.UserID, n.Title, n.Message, n.Type, nullIfEmpty(n.RelatedType), nullIfEmpty(n.RelatedID))
	return mapErr(err)
}
