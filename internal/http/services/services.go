// Package services agrupa los services HTTP por dominio. Es el composition
// root de la capa de negocio: main crea Deps, services.New arma todo y los
// controllers reciben el resultado.
package services

import (
	"time"

	"github.com/dropDatabas3/consultdesk/internal/cache"
	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
	"github.com/dropDatabas3/consultdesk/internal/http/services/category"
	"github.com/dropDatabas3/consultdesk/internal/http/services/contact"
	emailsvc "github.com/dropDatabas3/consultdesk/internal/http/services/email"
	"github.com/dropDatabas3/consultdesk/internal/http/services/health"
	"github.com/dropDatabas3/consultdesk/internal/http/services/reservation"
)

// Repositories es lo que exponen pg.Store y memory.Store.
type Repositories interface {
	Users() repository.UserRepository
	EmailLogs() repository.EmailLogRepository
	Preferences() repository.EmailPreferenceRepository
	Reservations() repository.ReservationRepository
	Contacts() repository.ContactRepository
	Categories() repository.CategoryRepository
	Activity() repository.ActivityRepository
}

// Notifier encola los emails de negocio. *email.Notifier lo implementa.
type Notifier interface {
	reservation.Notifier
	contact.ReplyNotifier
}

// BookingConfig son las reglas de agenda.
type BookingConfig struct {
	Location    *time.Location
	OpenHour    int
	CloseHour   int
	CancelLead  time.Duration
	DefaultType string
}

type Deps struct {
	// ─── Infraestructura ───
	Repos    Repositories
	Cache    cache.Client // opcional: listado de categorías
	Notifier Notifier     // opcional

	// ─── Configuración ───
	Booking BookingConfig

	// ─── Health Check ───
	HealthDeps health.Deps
}

type Services struct {
	Reservations reservation.Service
	Contacts     contact.Service
	Categories   category.Service
	Emails       emailsvc.Service
	Health       health.HealthService
}

func New(d Deps) *Services {
	r := d.Repos
	rd := reservation.Deps{
		Reservations:       r.Reservations(),
		Users:              r.Users(),
		Activity:           r.Activity(),
		Location:           d.Booking.Location,
		OpenHour:           d.Booking.OpenHour,
		CloseHour:          d.Booking.CloseHour,
		CancelLead:         d.Booking.CancelLead,
		DefaultMeetingType: d.Booking.DefaultType,
	}
	cd := contact.Deps{
		Contacts: r.Contacts(),
		Users:    r.Users(),
		Activity: r.Activity(),
	}
	if d.Notifier != nil {
		rd.Notifier = d.Notifier
		cd.Notifier = d.Notifier
	}

	return &Services{
		Reservations: reservation.NewService(rd),
		Contacts:     contact.NewService(cd),
		Categories:   category.NewService(r.Categories(), d.Cache),
		Emails:       emailsvc.NewService(r.EmailLogs(), r.Preferences(), d.Booking.Location),
		Health:       health.NewHealthService(d.HealthDeps),
	}
}
