package email

import (
	"context"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
	"github.com/dropDatabas3/consultdesk/internal/observability/logger"
)

// Enqueuer es lo que el Notifier necesita de la Queue.
type Enqueuer interface {
	Submit(msg Message) (string, error)
}

// Notifier arma los emails de negocio y los encola sin bloquear al caller.
//
// Preferencias: si el Client ya aplica el Gate (EnforcePreferences) el Notifier
// no lo consulta; si no, lo consulta él antes de encolar.
type Notifier struct {
	q             Enqueuer
	gate          *Gate
	clientEnforce bool
}

// NewNotifier crea el Notifier. clientEnforces debe reflejar Client.EnforcesPreferences().
func NewNotifier(q Enqueuer, gate *Gate, clientEnforces bool) *Notifier {
	return &Notifier{q: q, gate: gate, clientEnforce: clientEnforces}
}

func (n *Notifier) ReservationCreated(ctx context.Context, res repository.Reservation, user repository.User) string {
	return n.reservation(ctx, TypeReservationCreated, res, user)
}

func (n *Notifier) ReservationConfirmed(ctx context.Context, res repository.Reservation, user repository.User) string {
	return n.reservation(ctx, TypeReservationConfirmed, res, user)
}

func (n *Notifier) ReservationCancelled(ctx context.Context, res repository.Reservation, user repository.User) string {
	return n.reservation(ctx, TypeReservationCancelled, res, user)
}

func (n *Notifier) reservation(ctx context.Context, emailType string, res repository.Reservation, user repository.User) string {
	data := ReservationData{
		Firstname:   user.Firstname,
		Date:        res.Date,
		Time:        res.Time,
		MeetingType: res.MeetingType,
		ProjectType: deref(res.ProjectType),
		Budget:      deref(res.EstimatedBudget),
		Message:     deref(res.Message),
	}
	return n.submit(ctx, emailType, data, Message{
		To:        user.Email,
		ToName:    user.FullName(),
		EmailType: emailType,
		UserID:    user.ID,
		Context:   map[string]any{"reservation_id": res.ID},
		Variables: map[string]any{
			"firstname":        user.Firstname,
			"reservation_date": res.Date,
			"reservation_time": res.Time,
			"meeting_type":     res.MeetingType,
		},
	})
}

// ContactReply notifica al autor de un mensaje de contacto. admin puede ser nil.
func (n *Notifier) ContactReply(ctx context.Context, msg repository.ContactMessage, reply repository.ContactReply, admin *repository.User) string {
	data := ContactReplyData{
		Name:            msg.Name,
		Subject:         msg.Subject,
		OriginalMessage: msg.Message,
		ReplyText:       reply.ReplyText,
	}
	if admin != nil {
		data.AdminName = admin.FullName()
	}
	return n.submit(ctx, TypeContactReply, data, Message{
		To:        msg.Email,
		ToName:    msg.Name,
		EmailType: TypeContactReply,
		Context:   map[string]any{"message_id": msg.ID, "reply_id": reply.ID},
		Variables: map[string]any{"name": msg.Name, "subject": msg.Subject},
	})
}

func (n *Notifier) submit(ctx context.Context, emailType string, data any, msg Message) string {
	log := logger.From(ctx).With(logger.Component("email.notifier"), logger.EmailType(emailType))
	if n == nil || n.q == nil {
		return ""
	}
	if msg.To == "" {
		log.Warn("notification without recipient, skipped")
		return ""
	}
	if !n.clientEnforce && msg.UserID != "" && !n.gate.ShouldSend(ctx, msg.UserID, emailType) {
		log.Info("notification skipped by preferences", logger.UserID(msg.UserID))
		return ""
	}

	subject, html, text, err := Render(emailType, data)
	if err != nil {
		log.Error("notification render failed", logger.Err(err))
		return ""
	}
	msg.Subject, msg.HTML, msg.Text = subject, html, text

	id, err := n.q.Submit(msg)
	if err != nil {
		log.Warn("notification not queued", logger.Err(err))
		return ""
	}
	log.Debug("notification queued", logger.TaskID(id))
	return id
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
