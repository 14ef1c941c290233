package email

import (
	"errors"
	"fmt"
	"time"
)

// ─── Tipos de email ───

const (
	TypeReservationCreated   = "reservation_created"
	TypeReservationConfirmed = "reservation_confirmed"
	TypeReservationCancelled = "reservation_cancelled"
	TypeReservationReminder  = "reservation_reminder"
	TypeProjectCreated       = "project_created"
	TypeProjectUpdated       = "project_updated"
	TypeProjectDelivered     = "project_delivered"
	TypeProjectStatusChanged = "project_status_changed"
	TypePaymentSuccess       = "payment_success"
	TypePaymentFailed        = "payment_failed"
	TypeNewsletter           = "newsletter"
	TypeContactReply         = "contact_reply"
	TypeTest                 = "test"
)

// ─── Errors ───

var (
	// ErrNotConfigured indica que no hay transporte utilizable (faltan credenciales).
	ErrNotConfigured = errors.New("email: not configured")
	// ErrSuppressed indica que las preferencias del usuario bloquean el envío.
	ErrSuppressed = errors.New("email: suppressed by user preferences")
	// ErrQueueFull se devuelve cuando la cola está llena; la tarea no se acepta.
	ErrQueueFull = errors.New("email: queue full")
	// ErrQueueClosed se devuelve tras Shutdown.
	ErrQueueClosed = errors.New("email: queue closed")
	// ErrInvalidMessage indica un mensaje sin destinatario o sin asunto.
	ErrInvalidMessage = errors.New("email: invalid message")
)

// TransportError envuelve el fallo de un proveedor conservando su texto.
type TransportError struct {
	Provider   string
	StatusCode int // sólo para proveedores HTTP
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return e.Provider + ": unknown error"
	}
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

func newTransportError(provider string, status int, format string, args ...any) *TransportError {
	return &TransportError{Provider: provider, StatusCode: status, Err: fmt.Errorf(format, args...)}
}

// ─── Mensajes ───

// Attachment es un adjunto en memoria.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message es lo que los callers le piden enviar al Client.
type Message struct {
	To        string
	ToName    string
	Subject   string
	HTML      string
	Text      string // vacío → HTML sin tags
	EmailType string
	UserID    string // opcional, habilita el Gate
	ReplyTo   string
	Context   map[string]any
	Variables map[string]any

	Attachments []Attachment
}

func (m Message) validate() error {
	if m.To == "" || m.Subject == "" {
		return ErrInvalidMessage
	}
	return nil
}

// Result es el resultado uniforme de Client.Send.
type Result struct {
	Success   bool
	MessageID string
	LogID     string
	Error     string
	SentAt    time.Time
}

// Address es un remitente o destinatario con nombre opcional.
type Address struct {
	Name    string
	Address string
}

// String devuelve "Name <address>" o sólo la dirección.
func (a Address) String() string {
	if a.Name == "" {
		return a.Address
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Address)
}

// Envelope es lo que recibe el Transport: ya resuelto el destinatario final.
type Envelope struct {
	From        Address
	To          []string
	Subject     string
	HTML        string
	Text        string
	ReplyTo     string
	Attachments []Attachment
}
