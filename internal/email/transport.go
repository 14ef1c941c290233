package email

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Transport entrega un Envelope y devuelve el message id del proveedor.
type Transport interface {
	// Name identifica el proveedor en logs y en email_logs.provider.
	Name() string
	// Configured indica si hay credenciales suficientes para enviar.
	Configured() bool
	Send(ctx context.Context, env Envelope) (messageID string, err error)
}

// TransportConfig es la parte de configuración que decide el transporte.
type TransportConfig struct {
	Provider string // smtp | resend | sendgrid | mailgun | default

	SMTPHost           string
	SMTPPort           int
	SMTPSecure         bool
	SMTPUser           string
	SMTPPass           string
	InsecureSkipVerify bool

	SendgridAPIKey      string
	MailgunSMTPLogin    string
	MailgunSMTPPassword string

	ResendAPIKey  string
	ResendBaseURL string
	HTTPClient    *http.Client

	Timeout time.Duration
}

// NewTransport elige el transporte según el provider. Nunca falla: si faltan
// credenciales el transporte resultante reporta Configured() == false y el
// Client lo detecta al enviar.
func NewTransport(cfg TransportConfig) Transport {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "resend" {
		return NewResendTransport(ResendConfig{
			APIKey:     cfg.ResendAPIKey,
			BaseURL:    cfg.ResendBaseURL,
			HTTPClient: cfg.HTTPClient,
			Timeout:    cfg.Timeout,
		})
	}

	host := cfg.SMTPHost
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}
	s := SMTPConfig{
		Host:               host,
		Port:               port,
		User:               cfg.SMTPUser,
		Pass:               cfg.SMTPPass,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		Timeout:            cfg.Timeout,
	}
	if cfg.SMTPSecure {
		s.TLSMode = "ssl"
	}

	switch provider {
	case "sendgrid":
		s.Host, s.Port, s.TLSMode = "smtp.sendgrid.net", 587, ""
		s.User, s.Pass = "apikey", cfg.SendgridAPIKey
	case "mailgun":
		s.Host, s.Port, s.TLSMode = "smtp.mailgun.org", 587, ""
		s.User, s.Pass = cfg.MailgunSMTPLogin, cfg.MailgunSMTPPassword
	}
	return NewSMTPTransport(provider, s)
}
