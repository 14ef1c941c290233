// Package memory implementa los repositorios de internal/domain/repository en
// memoria. Lo usan los tests de servicios y el modo desarrollo sin DSN.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
)

// Store guarda todo en mapas protegidos por un único mutex.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	users        map[string]repository.User
	emailLogs    []repository.EmailLog
	prefs        map[string]repository.EmailPreference
	reservations map[string]repository.Reservation
	contacts     map[string]repository.ContactMessage
	replies      []repository.ContactReply
	categories   map[string]repository.Category
	dishes       map[string]repository.Dish

	Activities    []repository.ActivityEntry
	Notifications []repository.UserNotification
}

func New() *Store {
	return &Store{
		now:          time.Now,
		users:        map[string]repository.User{},
		prefs:        map[string]repository.EmailPreference{},
		reservations: map[string]repository.Reservation{},
		contacts:     map[string]repository.ContactMessage{},
		categories:   map[string]repository.Category{},
		dishes:       map[string]repository.Dish{},
	}
}

// WithClock fija el reloj usado para created_at y similares.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Users() repository.UserRepository                  { return (*userRepo)(s) }
func (s *Store) EmailLogs() repository.EmailLogRepository          { return (*emailLogRepo)(s) }
func (s *Store) Preferences() repository.EmailPreferenceRepository { return (*preferenceRepo)(s) }
func (s *Store) Reservations() repository.ReservationRepository    { return (*reservationRepo)(s) }
func (s *Store) Contacts() repository.ContactRepository            { return (*contactRepo)(s) }
func (s *Store) Categories() repository.CategoryRepository         { return (*categoryRepo)(s) }
func (s *Store) Activity() repository.ActivityRepository           { return (*activityRepo)(s) }

func newID() string { return uuid.NewString() }

func ptr[T any](v T) *T { return &v }
