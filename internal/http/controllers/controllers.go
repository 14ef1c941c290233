// Package controllers agrupa todos los controllers HTTP. Es el composition root
// de la capa HTTP: recibe los services ya armados y los router registran las rutas.
package controllers

import (
	"github.com/dropDatabas3/consultdesk/internal/http/controllers/category"
	"github.com/dropDatabas3/consultdesk/internal/http/controllers/contact"
	"github.com/dropDatabas3/consultdesk/internal/http/controllers/email"
	"github.com/dropDatabas3/consultdesk/internal/http/controllers/health"
	"github.com/dropDatabas3/consultdesk/internal/http/controllers/reservation"
	"github.com/dropDatabas3/consultdesk/internal/http/services"
)

// Controllers agrupa un controller por dominio.
type Controllers struct {
	Reservations *reservation.Controller
	Contacts     *contact.Controller
	Categories   *category.Controller
	Emails       *email.Controller
	Health       *health.HealthController
}

// New crea el agregador de controllers.
func New(s *services.Services) *Controllers {
	return &Controllers{
		Reservations: reservation.NewController(s.Reservations),
		Contacts:     contact.NewController(s.Contacts),
		Categories:   category.NewController(s.Categories),
		Emails:       email.NewController(s.Emails),
		Health:       health.NewHealthController(s.Health),
	}
}
