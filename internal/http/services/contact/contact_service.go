// Package contact implementa el formulario público y la bandeja de mensajes del admin.
package contact

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
	"github.com/dropDatabas3/consultdesk/internal/observability/logger"
)

var (
	ErrNotFound       = errors.New("contact message not found")
	ErrMissingFields  = errors.New("name, email, subject and message are required")
	ErrInvalidEmail   = errors.New("invalid email address")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrInvalidPrio    = errors.New("invalid priority")
	ErrNoUpdates      = errors.New("no update provided")
	ErrEmptyReply     = errors.New("reply text cannot be empty")
	ErrMessageTooLong = errors.New("message too long")
)

const maxMessageLen = 10_000

// ReplyNotifier encola el email de respuesta. admin puede ser nil.
type ReplyNotifier interface {
	ContactReply(ctx context.Context, msg repository.ContactMessage, reply repository.ContactReply, admin *repository.User) string
}

// SubmitInput son los datos del formulario público.
type SubmitInput struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

// Detail es un mensaje con sus respuestas.
type Detail struct {
	Message repository.ContactMessage
	Replies []repository.ContactReply
}

// Service define las operaciones de contacto.
type Service interface {
	Submit(ctx context.Context, in SubmitInput) (*repository.ContactMessage, error)
	Stats(ctx context.Context) (*repository.ContactStats, error)
	List(ctx context.Context, f repository.ContactFilter) ([]repository.ContactMessage, int, error)
	Get(ctx context.Context, id string) (*Detail, error)
	Update(ctx context.Context, id, adminID string, in repository.UpdateContactInput) (*repository.ContactMessage, error)
	Reply(ctx context.Context, id, adminID, text string) (*repository.ContactReply, error)
	Delete(ctx context.Context, id, adminID string, permanent bool) error
}

// Deps contiene las dependencias inyectables.
type Deps struct {
	Contacts repository.ContactRepository
	Users    repository.UserRepository
	Activity repository.ActivityRepository // opcional
	Notifier ReplyNotifier                 // opcional
}

type service struct {
	deps Deps
}

func NewService(d Deps) Service {
	return &service{deps: d}
}

func (s *service) log(ctx context.Context, op string) *zap.Logger {
	return logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("contact"),
		logger.Op(op),
	)
}

func validStatus(v string) bool {
	switch v {
	case repository.ContactStatusNew, repository.ContactStatusRead,
		repository.ContactStatusReplied, repository.ContactStatusArchived:
		return true
	}
	return false
}

func validPriority(v string) bool {
	switch v {
	case repository.PriorityUrgent, repository.PriorityHigh, repository.PriorityNormal, repository.PriorityLow:
		return true
	}
	return false
}

func (s *service) Submit(ctx context.Context, in SubmitInput) (*repository.ContactMessage, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)
	if in.Name == "" || in.Email == "" || in.Subject == "" || in.Message == "" {
		return nil, ErrMissingFields
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return nil, ErrInvalidEmail
	}
	if len(in.Message) > maxMessageLen {
		return nil, ErrMessageTooLong
	}

	var phone *string
	if p := strings.TrimSpace(in.Phone); p != "" {
		phone = &p
	}
	m, err := s.deps.Contacts.Create(ctx, repository.CreateContactInput{
		Name:     in.Name,
		Email:    in.Email,
		Phone:    phone,
		Subject:  in.Subject,
		Message:  in.Message,
		Priority: repository.PriorityNormal,
	})
	if err != nil {
		s.log(ctx, "Submit").Error("insert failed", logger.Err(err))
		return nil, err
	}
	s.log(ctx, "Submit").Info("contact message received", logger.MessageID(m.ID), logger.Email(m.Email))
	return m, nil
}

func (s *service) Stats(ctx context.Context) (*repository.ContactStats, error) {
	st, err := s.deps.Contacts.Stats(ctx)
	if err != nil {
		s.log(ctx, "Stats").Error("stats failed", logger.Err(err))
		return nil, err
	}
	return st, nil
}

func (s *service) List(ctx context.Context, f repository.ContactFilter) ([]repository.ContactMessage, int, error) {
	if f.Status != "" && !validStatus(f.Status) {
		return nil, 0, ErrInvalidStatus
	}
	if f.Priority != "" && !validPriority(f.Priority) {
		return nil, 0, ErrInvalidPrio
	}
	out, total, err := s.deps.Contacts.List(ctx, f)
	if err != nil {
		s.log(ctx, "List").Error("list failed", logger.Err(err))
		return nil, 0, err
	}
	return out, total, nil
}

func (s *service) Get(ctx context.Context, id string) (*Detail, error) {
	m, err := s.deps.Contacts.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoErr(ctx, "Get", err)
	}
	replies, err := s.deps.Contacts.ListReplies(ctx, id)
	if err != nil {
		return nil, s.mapRepoErr(ctx, "Get", err)
	}
	return &Detail{Message: *m, Replies: replies}, nil
}

func (s *service) Update(ctx context.Context, id, adminID string, in repository.UpdateContactInput) (*repository.ContactMessage, error) {
	if in.Status != nil && *in.Status == "" {
		in.Status = nil
	}
	if in.Priority != nil && *in.Priority == "" {
		in.Priority = nil
	}
	if in.Status == nil && in.Priority == nil && in.AssignedTo == nil {
		return nil, ErrNoUpdates
	}
	if in.Status != nil && !validStatus(*in.Status) {
		return nil, ErrInvalidStatus
	}
	if in.Priority != nil && !validPriority(*in.Priority) {
		return nil, ErrInvalidPrio
	}

	m, err := s.deps.Contacts.Update(ctx, id, in)
	if err != nil {
		return nil, s.mapRepoErr(ctx, "Update", err)
	}

	status := "N/A"
	if in.Status != nil {
		status = *in.Status
	}
	s.audit(ctx, adminID, "update", id, "Mise à jour du statut: "+status)
	return m, nil
}

// Reply es el único manejador de respuestas: guarda la respuesta, marca el
// mensaje como replied, notifica al usuario con cuenta, audita y encola el email.
func (s *service) Reply(ctx context.Context, id, adminID, text string) (*repository.ContactReply, error) {
	log := s.log(ctx, "Reply").With(logger.MessageID(id))

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyReply
	}
	msg, err := s.deps.Contacts.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapRepoErr(ctx, "Reply", err)
	}
	reply, err := s.deps.Contacts.AddReply(ctx, id, adminID, text)
	if err != nil {
		return nil, s.mapRepoErr(ctx, "Reply", err)
	}
	log.Info("reply stored", logger.ID(reply.ID))

	if s.deps.Users != nil && s.deps.Activity != nil {
		if u, err := s.deps.Users.GetByEmail(ctx, msg.Email); err == nil {
			n := repository.UserNotification{
				UserID:      u.ID,
				Title:       "Réponse à votre message",
				Message:     fmt.Sprintf("Nous avons répondu à votre message %q. Consultez votre espace client.", msg.Subject),
				Type:        "info",
				RelatedType: "contact_message",
				RelatedID:   id,
			}
			if err := s.deps.Activity.Notify(ctx, n); err != nil {
				log.Warn("user notification failed", logger.Err(err))
			}
		} else if !repository.IsNotFound(err) {
			log.Warn("account lookup failed", logger.Err(err))
		}
	}

	s.audit(ctx, adminID, "reply", id, "Réponse envoyée")

	if s.deps.Notifier != nil {
		var admin *repository.User
		if s.deps.Users != nil {
			if u, err := s.deps.Users.GetByID(ctx, adminID); err == nil {
				admin = u
			}
		}
		s.deps.Notifier.ContactReply(ctx, *msg, *reply, admin)
	}
	return reply, nil
}

func (s *service) Delete(ctx context.Context, id, adminID string, permanent bool) error {
	var err error
	if permanent {
		err = s.deps.Contacts.Delete(ctx, id)
	} else {
		err = s.deps.Contacts.Archive(ctx, id)
	}
	if err != nil {
		return s.mapRepoErr(ctx, "Delete", err)
	}
	desc := "Message archivé"
	if permanent {
		desc = "Message supprimé définitivement"
	}
	s.audit(ctx, adminID, "delete", id, desc)
	return nil
}

func (s *service) mapRepoErr(ctx context.Context, op string, err error) error {
	switch {
	case repository.IsNotFound(err):
		return ErrNotFound
	case errors.Is(err, repository.ErrInvalidInput):
		return ErrNoUpdates
	}
	s.log(ctx, op).Error("repository error", logger.Err(err))
	return err
}

func (s *service) audit(ctx context.Context, adminID, action, id, desc string) {
	if s.deps.Activity == nil || adminID == "" {
		return
	}
	err := s.deps.Activity.LogAdminActivity(ctx, repository.ActivityEntry{
		AdminID:     adminID,
		Action:      action,
		EntityType:  "contact_message",
		EntityID:    id,
		Description: desc,
	})
	if err != nil {
		s.log(ctx, "audit").Warn("activity log failed", logger.Err(err))
	}
}
