package memory

import (
	"context"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
)

type activityRepo Store

func (r *activityRepo) LogAdminActivity(_ context.Context, e repository.ActivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Activities = append(r.Activities, e)
	return nil
}

func (r *activityRepo) Notify(_ context.Context, n repository.UserNotification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Notifications = append(r.Notifications, n)
	return nil
}

// ActivityLog devuelve una copia de la auditoría registrada.
func (s *Store) ActivityLog() []repository.ActivityEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]repository.ActivityEntry(nil), s.Activities...)
}

// UserNotifications devuelve una copia de las notificaciones registradas.
func (s *Store) UserNotifications() []repository.UserNotification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]repository.UserNotification(nil), s.Notifications...)
}
