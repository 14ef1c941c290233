package email

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// ResendConfig configura el transporte HTTP de Resend.
type ResendConfig struct {
	APIKey     string
	BaseURL    string // vacío = endpoint público del SDK
	HTTPClient *http.Client
	Timeout    time.Duration
}

// ResendTransport envía por la API de Resend con el SDK oficial.
// Se usa donde los puertos SMTP están bloqueados.
type ResendTransport struct {
	apiKey string
	client *resend.Client
	cfgErr error
}

func NewResendTransport(cfg ResendConfig) *ResendTransport {
	hc := &http.Client{}
	if cfg.HTTPClient != nil {
		cp := *cfg.HTTPClient
		hc = &cp
	}
	if hc.Timeout == 0 {
		hc.Timeout = cfg.Timeout
		if hc.Timeout == 0 {
			hc.Timeout = 15 * time.Second
		}
	}
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	hc.Transport = statusCapture{next: base}

	t := &ResendTransport{apiKey: cfg.APIKey, client: resend.NewCustomClient(hc, cfg.APIKey)}
	if b := strings.TrimSpace(cfg.BaseURL); b != "" {
		u, err := url.Parse(strings.TrimRight(b, "/") + "/")
		if err != nil {
			t.cfgErr = fmt.Errorf("resend base url: %w", err)
		} else {
			t.client.BaseURL = u
		}
	}
	return t
}

func (t *ResendTransport) Name() string     { return "resend" }
func (t *ResendTransport) Configured() bool { return t.apiKey != "" && t.cfgErr == nil }

func (t *ResendTransport) Send(ctx context.Context, env Envelope) (string, error) {
	if !t.Configured() {
		return "", ErrNotConfigured
	}

	req := &resend.SendEmailRequest{
		From:    env.From.String(),
		To:      env.To,
		Subject: env.Subject,
		Html:    env.HTML,
		Text:    env.Text,
		ReplyTo: env.ReplyTo,
	}
	for _, a := range env.Attachments {
		req.Attachments = append(req.Attachments, &resend.Attachment{
			Filename:    a.Filename,
			Content:     a.Content,
			ContentType: a.ContentType,
		})
	}

	var status int
	sent, err := t.client.Emails.SendWithContext(withStatusSink(ctx, &status), req)
	if err != nil {
		msg := strings.TrimSpace(strings.TrimPrefix(err.Error(), "[ERROR]:"))
		return "", &TransportError{Provider: "resend", StatusCode: status, Err: fmt.Errorf("resend: %s", msg)}
	}
	if sent == nil || sent.Id == "" {
		return "resend-sent", nil
	}
	return sent.Id, nil
}

// ─── status code ───

// El SDK devuelve errores de texto; el status HTTP se recupera en el
// RoundTripper para que DiagnoseSMTP distinga 429/5xx de los rechazos.

type statusSinkKey struct{}

func withStatusSink(ctx context.Context, dst *int) context.Context {
	return context.WithValue(ctx, statusSinkKey{}, dst)
}

type statusCapture struct {
	next http.RoundTripper
}

func (s statusCapture) RoundTrip(r *http.Request) (*http.Response, error) {
	resp, err := s.next.RoundTrip(r)
	if resp != nil {
		if dst, ok := r.Context().Value(statusSinkKey{}).(*int); ok {
			*dst = resp.StatusCode
		}
	}
	return resp, err
}
