package repository

import "context"

// ActivityEntry es una fila de admin_activity_logs.
type ActivityEntry struct {
	AdminID     string
	Action      string // update | reply | delete | confirm | cancel
	EntityType  string
	EntityID    string
	Description string
}

// UserNotification es una notificación in-app para un usuario con cuenta.
type UserNotification struct {
	UserID      string
	Title       string
	Message     string
	Type        string
	RelatedType string
	RelatedID   string
}

// ActivityRepository registra auditoría y notificaciones. Ambos son best-effort.
type ActivityRepository interface {
	LogAdminActivity(ctx context.Context, e ActivityEntry) error
	Notify(ctx context.Context, n UserNotification) error
}
