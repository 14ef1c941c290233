package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"strings"
	"time"

	mail "github.com/go-mail/mail"
	"github.com/google/uuid"

	"github.com/dropDatabas3/consultdesk/internal/observability/logger"
)

// SMTPConfig contiene la configuración para conectarse a un servidor SMTP.
type SMTPConfig struct {
	Host               string
	Port               int
	User               string
	Pass               string
	TLSMode            string // "" (auto/starttls) | "ssl" | "none"
	InsecureSkipVerify bool   // solo dev
	Timeout            time.Duration
}

// SMTPTransport implementa Transport sobre go-mail.
type SMTPTransport struct {
	name string
	cfg  SMTPConfig

	// dial permite sustituir el envío real en tests.
	dial func(d *mail.Dialer, m *mail.Message) error
}

// NewSMTPTransport crea el transporte. name es el provider lógico (smtp, sendgrid, mailgun).
func NewSMTPTransport(name string, cfg SMTPConfig) *SMTPTransport {
	if name == "" || name == "default" {
		name = "smtp"
	}
	if cfg.Port == 465 {
		cfg.TLSMode = "ssl"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SMTPTransport{
		name: name,
		cfg:  cfg,
		dial: func(d *mail.Dialer, m *mail.Message) error { return d.DialAndSend(m) },
	}
}

func (s *SMTPTransport) Name() string { return s.name }

func (s *SMTPTransport) Configured() bool {
	return s.cfg.Host != "" && s.cfg.User != "" && s.cfg.Pass != ""
}

// Send arma un multipart/alternative (txt + html) y lo entrega.
// go-mail no expone el Message-ID, así que lo generamos nosotros.
func (s *SMTPTransport) Send(ctx context.Context, env Envelope) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	log := logger.From(ctx).With(
		logger.Component("email.smtp"),
		logger.Provider(s.name),
		logger.String("host", s.cfg.Host),
		logger.Int("port", s.cfg.Port),
	)

	msgID := fmt.Sprintf("<%s@%s>", uuid.NewString(), messageIDDomain(env.From.Address))

	m := mail.NewMessage()
	m.SetAddressHeader("From", env.From.Address, env.From.Name)
	m.SetHeader("To", env.To...)
	m.SetHeader("Subject", env.Subject)
	m.SetHeader("Message-ID", msgID)
	if env.ReplyTo != "" {
		m.SetHeader("Reply-To", env.ReplyTo)
	}

	if env.Text != "" {
		m.SetBody("text/plain", env.Text)
	}
	if env.HTML != "" {
		if env.Text == "" {
			m.SetBody("text/html", env.HTML)
		} else {
			m.AddAlternative("text/html", env.HTML)
		}
	}
	for _, a := range env.Attachments {
		content := a.Content
		settings := []mail.FileSetting{
			mail.SetCopyFunc(func(w io.Writer) error {
				_, err := io.Copy(w, bytes.NewReader(content))
				return err
			}),
		}
		if a.ContentType != "" {
			settings = append(settings, mail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}))
		}
		m.Attach(a.Filename, settings...)
	}

	d := mail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.User, s.cfg.Pass)
	d.Timeout = s.cfg.Timeout
	d.TLSConfig = &tls.Config{
		ServerName:         s.cfg.Host,
		InsecureSkipVerify: s.cfg.InsecureSkipVerify,
	}
	switch s.cfg.TLSMode {
	case "ssl":
		d.SSL = true
	case "none":
		d.TLSConfig = &tls.Config{InsecureSkipVerify: s.cfg.InsecureSkipVerify}
	default:
		// go-mail negocia STARTTLS si el server lo anuncia
	}

	if err := s.dial(d, m); err != nil {
		log.Error("smtp send failed", logger.Err(err))
		return "", &TransportError{Provider: s.name, Err: fmt.Errorf("smtp send: %w", err)}
	}
	log.Debug("smtp send ok")
	return msgID, nil
}

func messageIDDomain(from string) string {
	if i := strings.LastIndex(from, "@"); i >= 0 && i < len(from)-1 {
		return from[i+1:]
	}
	return "localhost"
}
