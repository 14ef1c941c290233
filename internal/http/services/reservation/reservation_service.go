// Package reservation implementa las reglas de reserva de citas.
package reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
	"github.com/dropDatabas3/consultdesk/internal/observability/logger"
)

var (
	ErrMissingDateTime  = errors.New("reservation date and time are required")
	ErrInvalidDateTime  = errors.New("reservation date or time is malformed")
	ErrPastDate         = errors.New("reservation must be in the future")
	ErrOutsideHours     = errors.New("reservation outside opening hours")
	ErrSlotUnavailable  = errors.New("slot unavailable")
	ErrNotFound         = errors.New("reservation not found")
	ErrForbidden        = errors.New("access denied")
	ErrAlreadyCancelled = errors.New("reservation already cancelled")
	ErrCancelTooLate    = errors.New("cancellation lead time not met")
	ErrInvalidStatus    = errors.New("invalid reservation status")
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Notifier encola los emails de reserva. Fire-and-forget: devuelve el id de
// tarea o "" si no se encoló.
type Notifier interface {
	ReservationCreated(ctx context.Context, res repository.Reservation, user repository.User) string
	ReservationConfirmed(ctx context.Context, res repository.Reservation, user repository.User) string
	ReservationCancelled(ctx context.Context, res repository.Reservation, user repository.User) string
}

// Actor es quien ejecuta la operación.
type Actor struct {
	ID    string
	Admin bool
}

// CreateInput son los datos recibidos del cliente.
type CreateInput struct {
	Date            string
	Time            string
	MeetingType     string
	ProjectType     *string
	EstimatedBudget *string
	Message         *string
}

// Service define las operaciones de reserva.
type Service interface {
	CheckAvailability(ctx context.Context, date, tm string) (bool, error)
	Create(ctx context.Context, userID string, in CreateInput) (*repository.Reservation, error)
	ListMine(ctx context.Context, userID string) ([]repository.Reservation, error)
	Get(ctx context.Context, id string, actor Actor) (*repository.Reservation, error)
	ListAll(ctx context.Context, f repository.ReservationFilter) ([]repository.Reservation, error)
	Cancel(ctx context.Context, id string, actor Actor) (*repository.Reservation, error)
	Confirm(ctx context.Context, id string, actor Actor) (*repository.Reservation, error)
}

// Deps contiene las dependencias inyectables.
type Deps struct {
	Reservations repository.ReservationRepository
	Users        repository.UserRepository
	Activity     repository.ActivityRepository // opcional
	Notifier     Notifier                      // opcional

	Location           *time.Location
	OpenHour           int
	CloseHour          int
	CancelLead         time.Duration
	DefaultMeetingType string
	Now                func() time.Time
}

type service struct {
	deps Deps
}

// NewService crea el servicio aplicando defaults (9h-18h, 2h de preaviso, "visio").
func NewService(d Deps) Service {
	if d.Location == nil {
		d.Location = time.Local
	}
	if d.OpenHour == 0 && d.CloseHour == 0 {
		d.OpenHour, d.CloseHour = 9, 18
	}
	if d.CancelLead == 0 {
		d.CancelLead = 2 * time.Hour
	}
	if d.DefaultMeetingType == "" {
		d.DefaultMeetingType = "visio"
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &service{deps: d}
}

const component = "reservations"

func (s *service) log(ctx context.Context, op string) *zap.Logger {
	return logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component(component),
		logger.Op(op),
	)
}

// ─── parsing ───

// normalizeTime acepta "HH:MM" y "HH:MM:SS" y devuelve "HH:MM".
func normalizeTime(tm string) (string, error) {
	tm = strings.TrimSpace(tm)
	for _, layout := range []string{timeLayout, "15:04:05"} {
		if t, err := time.Parse(layout, tm); err == nil {
			return t.Format(timeLayout), nil
		}
	}
	return "", ErrInvalidDateTime
}

// slotStart interpreta (date, time) en la zona horaria del negocio.
func (s *service) slotStart(date, tm string) (time.Time, string, error) {
	date = strings.TrimSpace(date)
	if date == "" || strings.TrimSpace(tm) == "" {
		return time.Time{}, "", ErrMissingDateTime
	}
	ntm, err := normalizeTime(tm)
	if err != nil {
		return time.Time{}, "", err
	}
	start, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+ntm, s.deps.Location)
	if err != nil {
		return time.Time{}, "", ErrInvalidDateTime
	}
	return start, ntm, nil
}

// ─── operaciones ───

func (s *service) CheckAvailability(ctx context.Context, date, tm string) (bool, error) {
	start, ntm, err := s.slotStart(date, tm)
	if err != nil {
		return false, err
	}
	taken, err := s.deps.Reservations.SlotTaken(ctx, start.Format(dateLayout), ntm)
	if err != nil {
		s.log(ctx, "CheckAvailability").Error("slot lookup failed", logger.Err(err))
		return false, err
	}
	return !taken, nil
}

func (s *service) Create(ctx context.Context, userID string, in CreateInput) (*repository.Reservation, error) {
	log := s.log(ctx, "Create").With(logger.UserID(userID))

	start, ntm, err := s.slotStart(in.Date, in.Time)
	if err != nil {
		return nil, err
	}
	if !start.After(s.deps.Now()) {
		return nil, ErrPastDate
	}
	if h := start.Hour(); h < s.deps.OpenHour || h >= s.deps.CloseHour {
		return nil, ErrOutsideHours
	}

	date := start.Format(dateLayout)
	taken, err := s.deps.Reservations.SlotTaken(ctx, date, ntm)
	if err != nil {
		log.Error("slot lookup failed", logger.Err(err))
		return nil, err
	}
	if taken {
		return nil, ErrSlotUnavailable
	}

	meetingType := strings.TrimSpace(in.MeetingType)
	if meetingType == "" {
		meetingType = s.deps.DefaultMeetingType
	}

	res, err := s.deps.Reservations.Create(ctx, repository.CreateReservationInput{
		UserID:          userID,
		Date:            date,
		Time:            ntm,
		MeetingType:     meetingType,
		ProjectType:     in.ProjectType,
		EstimatedBudget: in.EstimatedBudget,
		Message:         in.Message,
	})
	if err != nil {
		// carrera entre el check y el insert: lo resuelve el índice único
		if repository.IsConflict(err) {
			return nil, ErrSlotUnavailable
		}
		log.Error("insert failed", logger.Err(err))
		return nil, err
	}

	log.Info("reservation created", logger.ReservationID(res.ID))
	s.notify(ctx, *res, repository.ReservationPending)
	return res, nil
}

func (s *service) ListMine(ctx context.Context, userID string) ([]repository.Reservation, error) {
	out, err := s.deps.Reservations.ListByUser(ctx, userID)
	if err != nil {
		s.log(ctx, "ListMine").Error("list failed", logger.Err(err))
		return nil, err
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id string, actor Actor) (*repository.Reservation, error) {
	res, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.UserID != actor.ID && !actor.Admin {
		return nil, ErrForbidden
	}
	return res, nil
}

func (s *service) ListAll(ctx context.Context, f repository.ReservationFilter) ([]repository.Reservation, error) {
	switch f.Status {
	case "", repository.ReservationPending, repository.ReservationConfirmed, repository.ReservationCancelled:
	default:
		return nil, ErrInvalidStatus
	}
	if f.Date != "" {
		if _, err := time.Parse(dateLayout, f.Date); err != nil {
			return nil, ErrInvalidDateTime
		}
	}
	out, err := s.deps.Reservations.List(ctx, f)
	if err != nil {
		s.log(ctx, "ListAll").Error("list failed", logger.Err(err))
		return nil, err
	}
	return out, nil
}

func (s *service) Cancel(ctx context.Context, id string, actor Actor) (*repository.Reservation, error) {
	log := s.log(ctx, "Cancel").With(logger.ReservationID(id))

	res, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.UserID != actor.ID && !actor.Admin {
		return nil, ErrForbidden
	}
	if res.Status == repository.ReservationCancelled {
		return nil, ErrAlreadyCancelled
	}

	start, _, err := s.slotStart(res.Date, res.Time)
	if err != nil {
		log.Error("stored slot unparsable", logger.Err(err))
		return nil, err
	}
	now := s.deps.Now()
	if start.Before(now.Add(s.deps.CancelLead)) {
		return nil, ErrCancelTooLate
	}

	updated, err := s.deps.Reservations.Cancel(ctx, id, now)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		log.Error("cancel failed", logger.Err(err))
		return nil, err
	}

	log.Info("reservation cancelled", logger.Bool("by_admin", actor.Admin && actor.ID != res.UserID))
	if actor.Admin && actor.ID != res.UserID {
		s.audit(ctx, actor.ID, "cancel", id, fmt.Sprintf("Annulation du rendez-vous du %s à %s", res.Date, res.Time))
	}
	s.notify(ctx, merge(updated, res), repository.ReservationCancelled)
	return updated, nil
}

func (s *service) Confirm(ctx context.Context, id string, actor Actor) (*repository.Reservation, error) {
	log := s.log(ctx, "Confirm").With(logger.ReservationID(id))

	res, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Status == repository.ReservationCancelled {
		return nil, ErrAlreadyCancelled
	}

	updated, err := s.deps.Reservations.UpdateStatus(ctx, id, repository.ReservationConfirmed)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		log.Error("confirm failed", logger.Err(err))
		return nil, err
	}

	log.Info("reservation confirmed")
	s.audit(ctx, actor.ID, "confirm", id, fmt.Sprintf("Confirmation du rendez-vous du %s à %s", res.Date, res.Time))
	if s.deps.Activity != nil {
		n := repository.UserNotification{
			UserID:      res.UserID,
			Title:       "Rendez-vous confirmé",
			Message:     fmt.Sprintf("Votre rendez-vous du %s à %s est confirmé.", res.Date, res.Time),
			Type:        "success",
			RelatedType: "reservation",
			RelatedID:   id,
		}
		if err := s.deps.Activity.Notify(ctx, n); err != nil {
			log.Warn("user notification failed", logger.Err(err))
		}
	}
	s.notify(ctx, merge(updated, res), repository.ReservationConfirmed)
	return updated, nil
}

// ─── helpers ───

func (s *service) load(ctx context.Context, id string) (*repository.Reservation, error) {
	res, err := s.deps.Reservations.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		s.log(ctx, "load").Error("get failed", logger.Err(err), logger.ReservationID(id))
		return nil, err
	}
	return res, nil
}

// merge completa los datos del usuario que UpdateStatus/Cancel no devuelven.
func merge(updated, orig *repository.Reservation) repository.Reservation {
	out := *updated
	if out.UserEmail == "" {
		out.UserEmail = orig.UserEmail
		out.UserFirstname = orig.UserFirstname
		out.UserLastname = orig.UserLastname
	}
	return out
}

// notify resuelve el titular y encola el email que corresponde al nuevo
// estado. Nunca falla la operación.
func (s *service) notify(ctx context.Context, res repository.Reservation, status string) {
	if s.deps.Notifier == nil {
		return
	}
	user := repository.User{
		ID:        res.UserID,
		Email:     res.UserEmail,
		Firstname: res.UserFirstname,
		Lastname:  res.UserLastname,
	}
	if user.Email == "" && s.deps.Users != nil {
		u, err := s.deps.Users.GetByID(ctx, res.UserID)
		if err != nil {
			s.log(ctx, "notify").Warn("owner lookup failed, email skipped", logger.Err(err), logger.ReservationID(res.ID))
			return
		}
		user = *u
	}

	switch status {
	case repository.ReservationPending:
		s.deps.Notifier.ReservationCreated(ctx, res, user)
	case repository.ReservationConfirmed:
		s.deps.Notifier.ReservationConfirmed(ctx, res, user)
	case repository.ReservationCancelled:
		s.deps.Notifier.ReservationCancelled(ctx, res, user)
	}
}

func (s *service) audit(ctx context.Context, adminID, action, id, desc string) {
	if s.deps.Activity == nil || adminID == "" {
		return
	}
	err := s.deps.Activity.LogAdminActivity(ctx, repository.ActivityEntry{
		AdminID:     adminID,
		Action:      action,
		EntityType:  "reservation",
		EntityID:    id,
		Description: desc,
	})
	if err != nil {
		s.log(ctx, "audit").Warn("activity log failed", logger.Err(err))
	}
}
