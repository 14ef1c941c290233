// Package email contiene el controller de estadísticas de envío y preferencias.
package email

import (
	"errors"
	"net/http"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
	dto "github.com/dropDatabas3/consultdesk/internal/http/dto/email"
	httperrors "github.com/dropDatabas3/consultdesk/internal/http/errors"
	"github.com/dropDatabas3/consultdesk/internal/http/helpers"
	mw "github.com/dropDatabas3/consultdesk/internal/http/middlewares"
	svc "github.com/dropDatabas3/consultdesk/internal/http/services/email"
	"github.com/dropDatabas3/consultdesk/internal/observability/logger"
)

type Controller struct {
	service svc.Service
}

func NewController(service svc.Service) *Controller {
	return &Controller{service: service}
}

// Stats maneja GET /admin/emails/stats?start_date=&end_date=&email_type=
func (c *Controller) Stats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stats, err := c.service.Stats(r.Context(), svc.StatsQuery{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		EmailType: q.Get("email_type"),
	})
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.StatsResponse{Success: true, Stats: stats})
}

// History maneja GET /admin/emails/users/{id}?limit=
func (c *Controller) History(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "id")
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	logs, err := c.service.History(r.Context(), id, helpers.QueryInt(r, "limit", 50, 200))
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	items := make([]dto.LogItem, 0, len(logs))
	for _, l := range logs {
		items = append(items, toLogItem(l))
	}
	helpers.WriteJSON(w, http.StatusOK, dto.HistoryResponse{Success: true, Emails: items})
}

// GetPreferences maneja GET /me/email-preferences
func (c *Controller) GetPreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := c.service.Preferences(ctx, mw.GetUserID(ctx))
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.PreferencesResponse{Success: true, Preferences: p})
}

// UpdatePreferences maneja PUT /me/email-preferences
func (c *Controller) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("EmailController.UpdatePreferences"))

	var req dto.PreferencesRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	p, err := c.service.UpdatePreferences(ctx, mw.GetUserID(ctx), svc.PreferencesPatch{
		EmailNotifications:       req.EmailNotifications,
		MarketingEmails:          req.MarketingEmails,
		ReservationConfirmations: req.ReservationConfirmations,
		ReservationReminders:     req.ReservationReminders,
		ProjectUpdates:           req.ProjectUpdates,
		ProjectStatusChanges:     req.ProjectStatusChanges,
		PaymentNotifications:     req.PaymentNotifications,
		Newsletter:               req.Newsletter,
		DigestFrequency:          req.DigestFrequency,
	})
	if err != nil {
		log.Debug("update rejected", logger.Err(err))
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.PreferencesResponse{
		Success:     true,
		Message:     "Préférences mises à jour",
		Preferences: p,
	})
}

func toLogItem(l repository.EmailLog) dto.LogItem {
	return dto.LogItem{
		ID:             l.ID,
		RecipientEmail: l.RecipientEmail,
		EmailType:      l.EmailType,
		Subject:        l.Subject,
		Status:         l.Status,
		ErrorMessage:   l.ErrorMessage,
		Provider:       l.Provider,
		SentAt:         l.SentAt,
		CreatedAt:      l.CreatedAt,
	}
}

func mapError(err error) error {
	switch {
	case errors.Is(err, svc.ErrInvalidDate),
		errors.Is(err, svc.ErrInvalidRange),
		errors.Is(err, svc.ErrInvalidDigest):
		return httperrors.ErrInvalidParameter.WithDetail(err.Error())
	case errors.Is(err, svc.ErrMissingUser):
		return httperrors.ErrUnauthorized
	}
	return err
}
