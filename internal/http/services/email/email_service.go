// Package email expone las estadísticas de envío al admin y las preferencias
// de email al usuario autenticado. El envío en sí vive en internal/email.
package email

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
	"github.com/dropDatabas3/consultdesk/internal/observability/logger"
)

var (
	ErrInvalidDate   = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidRange  = errors.New("start_date is after end_date")
	ErrInvalidDigest = errors.New("invalid digest_frequency")
	ErrMissingUser   = errors.New("user id required")
)

const (
	dateLayout     = "2006-01-02"
	defaultHistory = 50
	maxHistory     = 200
)

var digestValues = map[string]bool{"immediate": true, "daily": true, "weekly": true, "never": true}

// StatsQuery son los filtros crudos de la query string.
type StatsQuery struct {
	StartDate string
	EndDate   string
	EmailType string
}

// PreferencesPatch aplica sólo los campos no nil.
type PreferencesPatch struct {
	EmailNotifications       *bool
	MarketingEmails          *bool
	ReservationConfirmations *bool
	ReservationReminders     *bool
	ProjectUpdates           *bool
	ProjectStatusChanges     *bool
	PaymentNotifications     *bool
	Newsletter               *bool
	DigestFrequency          *string
}

type Service interface {
	Stats(ctx context.Context, q StatsQuery) ([]repository.EmailTypeStats, error)
	History(ctx context.Context, userID string, limit int) ([]repository.EmailLog, error)
	Preferences(ctx context.Context, userID string) (*repository.EmailPreference, error)
	UpdatePreferences(ctx context.Context, userID string, p PreferencesPatch) (*repository.EmailPreference, error)
}

type service struct {
	logs  repository.EmailLogRepository
	prefs repository.EmailPreferenceRepository
	loc   *time.Location
}

// NewService crea el servicio. loc interpreta las fechas de los filtros (nil = UTC).
func NewService(logs repository.EmailLogRepository, prefs repository.EmailPreferenceRepository, loc *time.Location) Service {
	if loc == nil {
		loc = time.UTC
	}
	return &service{logs: logs, prefs: prefs, loc: loc}
}

func (s *service) log(ctx context.Context, op string) *zap.Logger {
	return logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("email.admin"),
		logger.Op(op),
	)
}

func (s *service) parseDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, v, s.loc)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &t, nil
}

func (s *service) Stats(ctx context.Context, q StatsQuery) ([]repository.EmailTypeStats, error) {
	start, err := s.parseDate(q.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := s.parseDate(q.EndDate)
	if err != nil {
		return nil, err
	}
	if end != nil {
		// end_date es inclusivo: hasta el último instante del día
		e := end.AddDate(0, 0, 1).Add(-time.Nanosecond)
		end = &e
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, ErrInvalidRange
	}

	out, err := s.logs.Stats(ctx, repository.EmailStatsFilter{StartDate: start, EndDate: end, EmailType: q.EmailType})
	if err != nil {
		s.log(ctx, "Stats").Error("stats failed", logger.Err(err))
		return nil, err
	}
	return out, nil
}

func (s *service) History(ctx context.Context, userID string, limit int) ([]repository.EmailLog, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	if limit <= 0 {
		limit = defaultHistory
	}
	if limit > maxHistory {
		limit = maxHistory
	}
	out, err := s.logs.ListByUser(ctx, userID, limit)
	if err != nil {
		s.log(ctx, "History").Error("history failed", logger.Err(err), logger.UserID(userID))
		return nil, err
	}
	return out, nil
}

func (s *service) Preferences(ctx context.Context, userID string) (*repository.EmailPreference, error) {
	if userID == "" {
		return nil, ErrMissingUser
	}
	p, err := s.prefs.Ensure(ctx, userID)
	if err != nil {
		s.log(ctx, "Preferences").Error("ensure failed", logger.Err(err), logger.UserID(userID))
		return nil, err
	}
	return p, nil
}

func (s *service) UpdatePreferences(ctx context.Context, userID string, patch PreferencesPatch) (*repository.EmailPreference, error) {
	if patch.DigestFrequency != nil && !digestValues[*patch.DigestFrequency] {
		return nil, ErrInvalidDigest
	}
	cur, err := s.Preferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := *cur
	setBool(&p.EmailNotifications, patch.EmailNotifications)
	setBool(&p.MarketingEmails, patch.MarketingEmails)
	setBool(&p.ReservationConfirmations, patch.ReservationConfirmations)
	setBool(&p.ReservationReminders, patch.ReservationReminders)
	setBool(&p.ProjectUpdates, patch.ProjectUpdates)
	setBool(&p.ProjectStatusChanges, patch.ProjectStatusChanges)
	setBool(&p.PaymentNotifications, patch.PaymentNotifications)
	setBool(&p.Newsletter, patch.Newsletter)
	if patch.DigestFrequency != nil {
		p.DigestFrequency = *patch.DigestFrequency
	}

	out, err := s.prefs.Upsert(ctx, p)
	if err != nil {
		s.log(ctx, "UpdatePreferences").Error("upsert failed", logger.Err(err), logger.UserID(userID))
		return nil, err
	}
	s.log(ctx, "UpdatePreferences").Info("email preferences updated", logger.UserID(userID))
	return out, nil
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
