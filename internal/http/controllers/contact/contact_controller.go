// Package contact contiene el controller del formulario público y la bandeja admin.
package contact

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
	dto "github.com/dropDatabas3/consultdesk/internal/http/dto/contact"
	httperrors "github.com/dropDatabas3/consultdesk/internal/http/errors"
	"github.com/dropDatabas3/consultdesk/internal/http/helpers"
	mw "github.com/dropDatabas3/consultdesk/internal/http/middlewares"
	svc "github.com/dropDatabas3/consultdesk/internal/http/services/contact"
	"github.com/dropDatabas3/consultdesk/internal/observability/logger"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// Controller maneja /contact y /admin/contact.
type Controller struct {
	service svc.Service
}

func NewController(service svc.Service) *Controller {
	return &Controller{service: service}
}

// Submit maneja POST /contact
func (c *Controller) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	m, err := c.service.Submit(r.Context(), svc.SubmitInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, dto.SubmitResponse{
		Success: true,
		Message: "Message envoyé avec succès",
		ID:      m.ID,
	})
}

// Stats maneja GET /admin/contact/stats/overview
func (c *Controller) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := c.service.Stats(r.Context())
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, st)
}

// List maneja GET /admin/contact?status=&priority=&search=&limit=&offset=
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repository.ContactFilter{
		Status:   strings.TrimSpace(q.Get("status")),
		Priority: strings.TrimSpace(q.Get("priority")),
		Search:   strings.TrimSpace(q.Get("search")),
		Limit:    helpers.QueryInt(r, "limit", defaultLimit, maxLimit),
		Offset:   helpers.QueryInt(r, "offset", 0, 0),
	}
	if f.Limit == 0 {
		f.Limit = defaultLimit
	}
	msgs, total, err := c.service.List(r.Context(), f)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ListResponse{Messages: msgs, Total: total, Limit: f.Limit, Offset: f.Offset})
}

// Get maneja GET /admin/contact/{id}
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "id")
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	d, err := c.service.Get(r.Context(), id)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.DetailResponse{Message: d.Message, Replies: d.Replies})
}

// Update maneja PUT /admin/contact/{id}
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := helpers.PathID(r, "id")
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	var req dto.UpdateRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	m, err := c.service.Update(ctx, id, mw.GetUserID(ctx), repository.UpdateContactInput{
		Status:     req.Status,
		Priority:   req.Priority,
		AssignedTo: req.AssignedTo,
	})
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.UpdateResponse{Success: true, Message: m})
}

// Reply maneja POST /admin/contact/{id}/reply
func (c *Controller) Reply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ContactController.Reply"))

	id, err := helpers.PathID(r, "id")
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	var req dto.ReplyRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	reply, err := c.service.Reply(ctx, id, mw.GetUserID(ctx), req.ReplyText)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	log.Info("contact reply sent", logger.MessageID(id))
	helpers.WriteJSON(w, http.StatusOK, dto.ReplyResponse{
		Success: true,
		Reply:   reply,
		Message: "Réponse enregistrée avec succès",
	})
}

// Delete maneja DELETE /admin/contact/{id}?permanent=true
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := helpers.PathID(r, "id")
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	if err := c.service.Delete(ctx, id, mw.GetUserID(ctx), helpers.QueryBool(r, "permanent")); err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.SuccessResponse{Success: true})
}

func mapError(err error) error {
	switch {
	case errors.Is(err, svc.ErrMissingFields):
		return httperrors.ErrMissingFields.WithDetail(err.Error())
	case errors.Is(err, svc.ErrInvalidEmail),
		errors.Is(err, svc.ErrInvalidStatus),
		errors.Is(err, svc.ErrInvalidPrio),
		errors.Is(err, svc.ErrNoUpdates),
		errors.Is(err, svc.ErrEmptyReply),
		errors.Is(err, svc.ErrMessageTooLong):
		return httperrors.ErrBadRequest.WithDetail(err.Error())
	case errors.Is(err, svc.ErrNotFound):
		return httperrors.ErrNotFound.WithDetail(err.Error())
	}
	return err
}
