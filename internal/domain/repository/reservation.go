package repository

import (
	"context"
	"time"
)

// Estados de una reserva.
const (
	ReservationPending   = "pending"
	ReservationConfirmed = "confirmed"
	ReservationCancelled = "cancelled"
)

// Reservation es una cita de consultoría. Date es "2006-01-02" y Time "15:04".
type Reservation struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Date            string     `json:"reservation_date"`
	Time            string     `json:"reservation_time"`
	MeetingType     string     `json:"meeting_type"`
	ProjectType     *string    `json:"project_type,omitempty"`
	EstimatedBudget *string    `json:"estimated_budget,omitempty"`
	Message         *string    `json:"message,omitempty"`
	Status          string     `json:"status"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`

	// Datos del usuario (sólo en lecturas con join)
	UserEmail     string `json:"email,omitempty"`
	UserFirstname string `json:"firstname,omitempty"`
	UserLastname  string `json:"lastname,omitempty"`
}

// IsActive indica si la reserva ocupa su franja.
func (r Reservation) IsActive() bool {
	return r.Status == ReservationPending || r.Status == ReservationConfirmed
}

// CreateReservationInput son los datos validados para insertar.
type CreateReservationInput struct {
	UserID          string
	Date            string
	Time            string
	MeetingType     string
	ProjectType     *string
	EstimatedBudget *string
	Message         *string
}

// ReservationFilter filtra el listado administrativo.
type ReservationFilter struct {
	Date   string
	Status string
}

// ReservationRepository define el acceso a reservas.
type ReservationRepository interface {
	// SlotTaken indica si existe una reserva activa en (date, time).
	SlotTaken(ctx context.Context, date, tm string) (bool, error)
	// Create devuelve ErrConflict si el índice único de franjas activas lo rechaza.
	Create(ctx context.Context, in CreateReservationInput) (*Reservation, error)
	GetByID(ctx context.Context, id string) (*Reservation, error)
	ListByUser(ctx context.Context, userID string) ([]Reservation, error)
	List(ctx context.Context, f ReservationFilter) ([]Reservation, error)
	UpdateStatus(ctx context.Context, id, status string) (*Reservation, error)
	Cancel(ctx context.Context, id string, at time.Time) (*Reservation, error)
}
