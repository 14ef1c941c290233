// Package reservation contiene los DTOs de las rutas /reservations.
package reservation

import "github.com/dropDatabas3/consultdesk/internal/domain/repository"

// AvailabilityRequest es el body de POST /reservations/check-availability.
type AvailabilityRequest struct {
	Date string `json:"reservation_date"`
	Time string `json:"reservation_time"`
}

type AvailabilityResponse struct {
	Available bool   `json:"available"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

// CreateRequest es el body de POST /reservations.
type CreateRequest struct {
	Date            string  `json:"reservation_date"`
	Time            string  `json:"reservation_time"`
	MeetingType     string  `json:"meeting_type"`
	ProjectType     *string `json:"project_type"`
	EstimatedBudget *string `json:"estimated_budget"`
	Message         *string `json:"message"`
}

type ReservationResponse struct {
	Success     bool                    `json:"success"`
	Message     string                  `json:"message,omitempty"`
	Reservation *repository.Reservation `json:"reservation"`
}

type ListResponse struct {
	Success      bool                     `json:"success"`
	Reservations []repository.Reservation `json:"reservations"`
}
