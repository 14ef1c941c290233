package repository

import (
	"context"
	"time"
)

// Estados y prioridades de contact_messages.
const (
	ContactStatusNew      = "new"
	ContactStatusRead     = "read"
	ContactStatusReplied  = "replied"
	ContactStatusArchived = "archived"

	PriorityUrgent = "urgent"
	PriorityHigh   = "high"
	PriorityNormal = "normal"
	PriorityLow    = "low"
)

// ContactMessage es un mensaje recibido desde el formulario público.
type ContactMessage struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      *string    `json:"phone,omitempty"`
	Subject    string     `json:"subject"`
	Message    string     `json:"message"`
	Status     string     `json:"status"`
	Priority   string     `json:"priority"`
	AssignedTo *string    `json:"assigned_to,omitempty"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	RepliedAt  *time.Time `json:"replied_at,omitempty"`
	RepliedBy  *string    `json:"replied_by,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`

	ReplyCount        int     `json:"reply_count"`
	AssignedFirstname *string `json:"assigned_firstname,omitempty"`
	AssignedLastname  *string `json:"assigned_lastname,omitempty"`
	AssignedEmail     *string `json:"assigned_email,omitempty"`
}

// ContactReply es una respuesta inmutable de un admin.
type ContactReply struct {
	ID             string    `json:"id"`
	MessageID      string    `json:"message_id"`
	AdminID        string    `json:"admin_id"`
	ReplyText      string    `json:"reply_text"`
	CreatedAt      time.Time `json:"created_at"`
	AdminFirstname string    `json:"firstname,omitempty"`
	AdminLastname  string    `json:"lastname,omitempty"`
	AdminEmail     string    `json:"email,omitempty"`
}

// CreateContactInput son los datos del formulario público.
type CreateContactInput struct {
	Name     string
	Email    string
	Phone    *string
	Subject  string
	Message  string
	Priority string
}

// ContactFilter filtra el listado administrativo.
type ContactFilter struct {
	Status   string
	Priority string
	Search   string
	Limit    int
	Offset   int
}

// UpdateContactInput aplica sólo los campos no nil.
// AssignedTo con valor "" desasigna.
type UpdateContactInput struct {
	Status     *string
	Priority   *string
	AssignedTo *string
}

// ContactStats es el resumen del panel admin (excluye archivados).
type ContactStats struct {
	Total       int64 `json:"total"`
	NewMessages int64 `json:"new_messages"`
	Read        int64 `json:"read"`
	Replied     int64 `json:"replied"`
	Urgent      int64 `json:"urgent"`
	ThisWeek    int64 `json:"this_week"`
	ThisMonth   int64 `json:"this_month"`
}

// ContactRepository define el acceso a mensajes y respuestas.
type ContactRepository interface {
	Create(ctx context.Context, in CreateContactInput) (*ContactMessage, error)
	GetByID(ctx context.Context, id string) (*ContactMessage, error)
	List(ctx context.Context, f ContactFilter) ([]ContactMessage, int, error)
	Update(ctx context.Context, id string, in UpdateContactInput) (*ContactMessage, error)
	Archive(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*ContactStats, error)

	ListReplies(ctx context.Context, messageID string) ([]ContactReply, error)
	// AddReply inserta la respuesta y marca el mensaje como replied.
	AddReply(ctx context.Context, messageID, adminID, text string) (*ContactReply, error)
}
