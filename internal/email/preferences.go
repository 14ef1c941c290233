package email

import (
	"context"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
	"github.com/dropDatabas3/consultdesk/internal/observability/logger"
)

// Gate decide si un usuario acepta un tipo de email.
type Gate struct {
	prefs repository.EmailPreferenceRepository
}

func NewGate(prefs repository.EmailPreferenceRepository) *Gate {
	return &Gate{prefs: prefs}
}

// categoryFlag devuelve el flag de preferencia que gobierna emailType.
// ok=false para tipos sin categoría (se envían siempre).
func categoryFlag(p *repository.EmailPreference, emailType string) (flag bool, ok bool) {
	switch emailType {
	case TypeReservationCreated, TypeReservationConfirmed, TypeReservationCancelled:
		return p.ReservationConfirmations, true
	case TypeReservationReminder:
		return p.ReservationReminders, true
	case TypeProjectCreated, TypeProjectUpdated, TypeProjectDelivered:
		return p.ProjectUpdates, true
	case TypeProjectStatusChanged:
		return p.ProjectStatusChanges, true
	case TypePaymentSuccess, TypePaymentFailed:
		return p.PaymentNotifications, true
	case TypeNewsletter:
		return p.Newsletter, true
	}
	return false, false
}

// ShouldSend aplica: sin fila → true; master switch apagado → false; flag de la
// categoría; tipo sin categoría → true. Ante error de lectura se envía igual.
func (g *Gate) ShouldSend(ctx context.Context, userID, emailType string) bool {
	if g == nil || g.prefs == nil || userID == "" {
		return true
	}
	p, err := g.prefs.Get(ctx, userID)
	if err != nil {
		if !repository.IsNotFound(err) {
			logger.From(ctx).Warn("email preferences read failed, sending anyway",
				logger.Component("email.gate"), logger.UserID(userID), logger.Err(err))
		}
		return true
	}
	if !p.EmailNotifications {
		return false
	}
	if flag, ok := categoryFlag(p, emailType); ok {
		return flag
	}
	return true
}
