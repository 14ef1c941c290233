package email

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
	"github.com/dropDatabas3/consultdesk/internal/metrics"
	"github.com/dropDatabas3/consultdesk/internal/observability/logger"
)

// Config es la configuración del Client (remitente y modos de entrega).
type Config struct {
	FromName      string
	FromAddress   string
	ReplyTo       string
	PreviewMode   bool
	TestRecipient string
	Production    bool

	// EnforcePreferences hace del Gate un chequeo obligatorio para mensajes con UserID.
	EnforcePreferences bool
}

// Client es el punto único de envío. Cada Send hace como máximo una llamada
// al transporte y un ciclo de vida de fila en email_logs.
type Client struct {
	cfg       Config
	transport Transport
	logs      repository.EmailLogRepository
	gate      *Gate
	now       func() time.Time
}

// Option ajusta el Client.
type Option func(*Client)

// WithClock inyecta el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithGate conecta el Gate de preferencias.
func WithGate(g *Gate) Option {
	return func(c *Client) { c.gate = g }
}

// NewClient construye el Client. transport puede ser nil (equivale a no configurado).
func NewClient(cfg Config, transport Transport, logs repository.EmailLogRepository, opts ...Option) *Client {
	if cfg.FromName == "" {
		cfg.FromName = "LE SAGE DEV"
	}
	if cfg.FromAddress == "" {
		cfg.FromAddress = "onboarding@resend.dev"
	}
	c := &Client{cfg: cfg, transport: transport, logs: logs, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Configured indica si hay un transporte utilizable.
func (c *Client) Configured() bool {
	return c.transport != nil && c.transport.Configured()
}

// Provider devuelve el nombre del transporte ("none" si no hay).
func (c *Client) Provider() string {
	if c.transport == nil {
		return "none"
	}
	return c.transport.Name()
}

// EnforcesPreferences indica si el Gate se aplica dentro de Send.
func (c *Client) EnforcesPreferences() bool { return c.cfg.EnforcePreferences && c.gate != nil }

// Send entrega msg. En fallo de transporte devuelve Result{Success:false} junto
// con el error (*TransportError), y la fila de log queda en failed.
func (c *Client) Send(ctx context.Context, msg Message) (Result, error) {
	// component y email_type los pone quien llama (cola, CLI); acá sólo op y provider.
	log := logger.From(ctx).With(logger.Op("Client.Send"), logger.Provider(c.Provider()))

	if err := msg.validate(); err != nil {
		return Result{Error: err.Error()}, err
	}

	if !c.Configured() {
		log.Error("email not configured, message dropped")
		metrics.RecordEmailSend(c.Provider(), "not_configured", 0)
		return Result{Error: ErrNotConfigured.Error()}, ErrNotConfigured
	}

	if c.EnforcesPreferences() && msg.UserID != "" && !c.gate.ShouldSend(ctx, msg.UserID, msg.EmailType) {
		log.Info("email suppressed by preferences", logger.UserID(msg.UserID))
		metrics.RecordEmailSend(c.Provider(), "suppressed", 0)
		return Result{Error: ErrSuppressed.Error()}, ErrSuppressed
	}

	if c.cfg.PreviewMode {
		log.Info("email preview, not sent", logger.String("subject", msg.Subject))
		metrics.RecordEmailSend(c.Provider(), "preview", 0)
		return Result{Success: true, MessageID: "preview"}, nil
	}

	finalTo := msg.To
	if !c.cfg.Production && c.cfg.TestRecipient != "" {
		finalTo = c.cfg.TestRecipient
	}

	text := msg.Text
	if text == "" {
		text = StripTags(msg.HTML)
	}
	replyTo := msg.ReplyTo
	if replyTo == "" {
		replyTo = c.cfg.ReplyTo
	}
	if replyTo == "" {
		replyTo = c.cfg.FromAddress
	}

	// El log registra siempre el destinatario original.
	var logID string
	if c.logs != nil {
		id, err := c.logs.Insert(ctx, repository.CreateEmailLogInput{
			RecipientEmail: msg.To,
			RecipientName:  msg.ToName,
			UserID:         msg.UserID,
			EmailType:      msg.EmailType,
			Subject:        msg.Subject,
			Context:        msg.Context,
			Variables:      msg.Variables,
			Provider:       c.Provider(),
		})
		if err != nil {
			log.Warn("email log insert failed", logger.Err(err))
		} else {
			logID = id
			log = log.With(logger.LogID(logID))
		}
	}

	env := Envelope{
		From:        Address{Name: c.cfg.FromName, Address: c.cfg.FromAddress},
		To:          []string{finalTo},
		Subject:     msg.Subject,
		HTML:        msg.HTML,
		Text:        text,
		ReplyTo:     replyTo,
		Attachments: msg.Attachments,
	}

	start := c.now()
	messageID, err := c.transport.Send(ctx, env)
	elapsed := c.now().Sub(start)

	if err != nil {
		var te *TransportError
		if !errors.As(err, &te) {
			err = &TransportError{Provider: c.Provider(), Err: err}
		}
		log.Error("email send failed", logger.Err(err))
		metrics.RecordEmailSend(c.Provider(), "failed", elapsed)
		if logID != "" {
			uctx, cancel := outcomeCtx(ctx)
			if uerr := c.logs.MarkFailed(uctx, logID, err.Error()); uerr != nil {
				log.Warn("email log update failed", logger.Err(uerr))
			}
			cancel()
		}
		return Result{Error: err.Error(), LogID: logID}, err
	}

	sentAt := c.now()
	log.Info("email sent", logger.String("message_id", messageID))
	metrics.RecordEmailSend(c.Provider(), "sent", elapsed)
	if logID != "" {
		uctx, cancel := outcomeCtx(ctx)
		if uerr := c.logs.MarkSent(uctx, logID, messageID); uerr != nil {
			log.Warn("email log update failed", logger.Err(uerr))
		}
		cancel()
	}
	return Result{Success: true, MessageID: messageID, LogID: logID, SentAt: sentAt}, nil
}

// outcomeTimeout acota la escritura del resultado en email_logs.
const outcomeTimeout = 5 * time.Second

// outcomeCtx conserva los valores de ctx pero no su cancelación: una fila
// insertada como pending siempre se cierra como sent o failed.
func outcomeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), outcomeTimeout)
}

var tagRE = regexp.MustCompile(`<[^>]*>`)

// StripTags quita las etiquetas HTML para armar la versión de texto.
func StripTags(html string) string {
	return tagRE.ReplaceAllString(html, "")
}
