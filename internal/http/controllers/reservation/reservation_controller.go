// Package reservation contiene el controller de /reservations.
package reservation

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
	dto "github.com/dropDatabas3/consultdesk/internal/http/dto/reservation"
	httperrors "github.com/dropDatabas3/consultdesk/internal/http/errors"
	"github.com/dropDatabas3/consultdesk/internal/http/helpers"
	mw "github.com/dropDatabas3/consultdesk/internal/http/middlewares"
	svc "github.com/dropDatabas3/consultdesk/internal/http/services/reservation"
	"github.com/dropDatabas3/consultdesk/internal/observability/logger"
)

// Controller maneja las rutas /reservations.
type Controller struct {
	service svc.Service
}

// NewController crea el controller de reservas.
func NewController(service svc.Service) *Controller {
	return &Controller{service: service}
}

func actor(r *http.Request) svc.Actor {
	p, _ := mw.GetPrincipal(r.Context())
	return svc.Actor{ID: p.UserID, Admin: p.IsAdmin()}
}

// CheckAvailability maneja POST /reservations/check-availability
func (c *Controller) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req dto.AvailabilityRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	ok, err := c.service.CheckAvailability(r.Context(), req.Date, req.Time)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.AvailabilityResponse{Available: ok, Date: req.Date, Time: req.Time})
}

// Create maneja POST /reservations
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ReservationController.Create"))

	var req dto.CreateRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	res, err := c.service.Create(ctx, mw.GetUserID(ctx), svc.CreateInput{
		Date:            req.Date,
		Time:            req.Time,
		MeetingType:     req.MeetingType,
		ProjectType:     req.ProjectType,
		EstimatedBudget: req.EstimatedBudget,
		Message:         req.Message,
	})
	if err != nil {
		log.Debug("create rejected", logger.Err(err))
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, dto.ReservationResponse{
		Success:     true,
		Message:     "Réservation créée avec succès",
		Reservation: res,
	})
}

// ListMine maneja GET /reservations/my
func (c *Controller) ListMine(w http.ResponseWriter, r *http.Request) {
	out, err := c.service.ListMine(r.Context(), mw.GetUserID(r.Context()))
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ListResponse{Success: true, Reservations: out})
}

// ListAll maneja GET /reservations/admin/all?date=&status=
func (c *Controller) ListAll(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := c.service.ListAll(r.Context(), repository.ReservationFilter{
		Date:   strings.TrimSpace(q.Get("date")),
		Status: strings.TrimSpace(q.Get("status")),
	})
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ListResponse{Success: true, Reservations: out})
}

// Get maneja GET /reservations/{id}
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "id")
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	res, err := c.service.Get(r.Context(), id, actor(r))
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ReservationResponse{Success: true, Reservation: res})
}

// Cancel maneja PUT /reservations/{id}/cancel
func (c *Controller) Cancel(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, "ReservationController.Cancel", c.service.Cancel, "Réservation annulée avec succès")
}

// Confirm maneja PUT /reservations/{id}/confirm
func (c *Controller) Confirm(w http.ResponseWriter, r *http.Request) {
	c.transition(w, r, "ReservationController.Confirm", c.service.Confirm, "Réservation confirmée avec succès")
}

type transitionFn func(ctx context.Context, id string, a svc.Actor) (*repository.Reservation, error)

func (c *Controller) transition(w http.ResponseWriter, r *http.Request, op string, fn transitionFn, msg string) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op(op))

	id, err := helpers.PathID(r, "id")
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	res, err := fn(ctx, id, actor(r))
	if err != nil {
		log.Debug("transition rejected", logger.ReservationID(id), logger.Err(err))
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ReservationResponse{Success: true, Message: msg, Reservation: res})
}

// mapError traduce errores del service a AppError.
func mapError(err error) error {
	switch {
	case errors.Is(err, svc.ErrMissingDateTime):
		return httperrors.ErrMissingFields.WithDetail(err.Error())
	case errors.Is(err, svc.ErrInvalidDateTime),
		errors.Is(err, svc.ErrPastDate),
		errors.Is(err, svc.ErrOutsideHours),
		errors.Is(err, svc.ErrAlreadyCancelled),
		errors.Is(err, svc.ErrCancelTooLate),
		errors.Is(err, svc.ErrInvalidStatus):
		return httperrors.ErrBadRequest.WithDetail(err.Error())
	case errors.Is(err, svc.ErrSlotUnavailable):
		return httperrors.ErrConflict.WithDetail("slot unavailable")
	case errors.Is(err, svc.ErrNotFound):
		return httperrors.ErrNotFound.WithDetail(err.Error())
	case errors.Is(err, svc.ErrForbidden):
		return httperrors.ErrForbidden
	}
	return err
}
