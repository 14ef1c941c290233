package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	mail "github.com/go-mail/mail"
	"github.com/stretchr/testify/require"
)

func TestNewTransport_Selection(t *testing.T) {
	t.Run("resend", func(t *testing.T) {
		tr := NewTransport(TransportConfig{Provider: "resend", ResendAPIKey: "re_123"})
		require.IsType(t, &ResendTransport{}, tr)
		require.Equal(t, "resend", tr.Name())
		require.True(t, tr.Configured())
	})

	t.Run("resend without key", func(t *testing.T) {
		tr := NewTransport(TransportConfig{Provider: "RESEND"})
		require.False(t, tr.Configured())
	})

	t.Run("smtp defaults", func(t *testing.T) {
		tr := NewTransport(TransportConfig{Provider: "smtp", SMTPUser: "u", SMTPPass: "p"})
		s := tr.(*SMTPTransport)
		require.Equal(t, "smtp.gmail.com", s.cfg.Host)
		require.Equal(t, 587, s.cfg.Port)
		require.Equal(t, "", s.cfg.TLSMode)
		require.True(t, s.Configured())
	})

	t.Run("smtp without credentials", func(t *testing.T) {
		require.False(t, NewTransport(TransportConfig{Provider: "smtp"}).Configured())
	})

	t.Run("implicit tls", func(t *testing.T) {
		s := NewTransport(TransportConfig{Provider: "smtp", SMTPPort: 465}).(*SMTPTransport)
		require.Equal(t, "ssl", s.cfg.TLSMode)
		s = NewTransport(TransportConfig{Provider: "smtp", SMTPSecure: true}).(*SMTPTransport)
		require.Equal(t, "ssl", s.cfg.TLSMode)
	})

	t.Run("sendgrid", func(t *testing.T) {
		s := NewTransport(TransportConfig{Provider: "sendgrid", SendgridAPIKey: "SG.x"}).(*SMTPTransport)
		require.Equal(t, "sendgrid", s.Name())
		require.Equal(t, "smtp.sendgrid.net", s.cfg.Host)
		require.Equal(t, "apikey", s.cfg.User)
		require.Equal(t, "SG.x", s.cfg.Pass)
	})

	t.Run("mailgun", func(t *testing.T) {
		s := NewTransport(TransportConfig{Provider: "mailgun", MailgunSMTPLogin: "l", MailgunSMTPPassword: "p"}).(*SMTPTransport)
		require.Equal(t, "smtp.mailgun.org", s.cfg.Host)
		require.Equal(t, "l", s.cfg.User)
	})

	t.Run("default is smtp", func(t *testing.T) {
		s := NewTransport(TransportConfig{Provider: "default", SMTPHost: "mail.local", SMTPPort: 2525}).(*SMTPTransport)
		require.Equal(t, "smtp", s.Name())
		require.Equal(t, "mail.local", s.cfg.Host)
		require.Equal(t, 2525, s.cfg.Port)
	})
}

func TestResendTransport_Send(t *testing.T) {
	var got struct {
		From        string   `json:"from"`
		To          []string `json:"to"`
		ReplyTo     string   `json:"reply_to"`
		Attachments []struct {
			Filename string `json:"filename"`
			Content  string `json:"content"`
		} `json:"attachments"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/emails", r.URL.Path)
		require.Equal(t, "Bearer re_123", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"4ef9a417-02e9-4d39-ad75-9611e0fcc33c"}`))
	}))
	defer srv.Close()

	tr := NewResendTransport(ResendConfig{APIKey: "re_123", BaseURL: srv.URL})
	id, err := tr.Send(context.Background(), Envelope{
		From:        Address{Name: "LE SAGE DEV", Address: "onboarding@resend.dev"},
		To:          []string{"ana@example.com"},
		Subject:     "Hola",
		HTML:        "<p>Hola</p>",
		Text:        "Hola",
		ReplyTo:     "contact@lesage.dev",
		Attachments: []Attachment{{Filename: "a.txt", Content: []byte("hi")}},
	})
	require.NoError(t, err)
	require.Equal(t, "4ef9a417-02e9-4d39-ad75-9611e0fcc33c", id)

	require.Equal(t, "LE SAGE DEV <onboarding@resend.dev>", got.From)
	require.Equal(t, []string{"ana@example.com"}, got.To)
	require.Equal(t, "contact@lesage.dev", got.ReplyTo)
	require.Len(t, got.Attachments, 1)
	require.Equal(t, "aGk=", got.Attachments[0].Content)
}

func TestResendTransport_ErrorCarriesProviderText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"name":"validation_error","message":"The from address is invalid"}`))
	}))
	defer srv.Close()

	tr := NewResendTransport(ResendConfig{APIKey: "k", BaseURL: srv.URL})
	_, err := tr.Send(context.Background(), Envelope{To: []string{"x@y.z"}, Subject: "s"})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, http.StatusUnprocessableEntity, te.StatusCode)
	require.Contains(t, te.Error(), "The from address is invalid")
	require.False(t, DiagnoseSMTP(err).Temporary)
}

func TestResendTransport_RetryableStatusesStayTemporary(t *testing.T) {
	cases := []struct {
		status int
		body   string
		code   string
	}{
		{http.StatusTooManyRequests, `{"name":"rate_limit_exceeded","message":"Too many requests"}`, "rate_limited"},
		{http.StatusServiceUnavailable, `upstream down`, "http"},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			tr := NewResendTransport(ResendConfig{APIKey: "k", BaseURL: srv.URL})
			_, err := tr.Send(context.Background(), Envelope{To: []string{"x@y.z"}, Subject: "s"})
			var te *TransportError
			require.ErrorAs(t, err, &te)
			require.Equal(t, "resend", te.Provider)
			require.Equal(t, tc.status, te.StatusCode)

			d := DiagnoseSMTP(err)
			require.True(t, d.Temporary)
			require.Equal(t, tc.code, d.Code)
		})
	}
}

func TestResendTransport_InvalidBaseURLIsNotConfigured(t *testing.T) {
	tr := NewResendTransport(ResendConfig{APIKey: "k", BaseURL: "://bad"})
	require.False(t, tr.Configured())
	_, err := tr.Send(context.Background(), Envelope{})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestResendTransport_NotConfigured(t *testing.T) {
	_, err := NewResendTransport(ResendConfig{}).Send(context.Background(), Envelope{})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestSMTPTransport_BuildsMessage(t *testing.T) {
	s := NewSMTPTransport("smtp", SMTPConfig{Host: "mail.local", Port: 587, User: "u", Pass: "p"})

	var (
		sent   *mail.Message
		dialer *mail.Dialer
	)
	s.dial = func(d *mail.Dialer, m *mail.Message) error {
		sent, dialer = m, d
		return nil
	}

	id, err := s.Send(context.Background(), Envelope{
		From:    Address{Name: "LE SAGE DEV", Address: "hola@lesage.dev"},
		To:      []string{"ana@example.com"},
		Subject: "Hola",
		HTML:    "<p>Hola</p>",
		Text:    "Hola",
		ReplyTo: "contact@lesage.dev",
	})
	require.NoError(t, err)
	require.Regexp(t, `^<[0-9a-f-]{36}@lesage\.dev>$`, id)

	require.Equal(t, []string{"ana@example.com"}, sent.GetHeader("To"))
	require.Equal(t, []string{"Hola"}, sent.GetHeader("Subject"))
	require.Equal(t, []string{"contact@lesage.dev"}, sent.GetHeader("Reply-To"))
	require.Equal(t, []string{id}, sent.GetHeader("Message-ID"))
	require.False(t, dialer.SSL)
	require.Equal(t, "mail.local", dialer.TLSConfig.ServerName)
}

func TestSMTPTransport_WrapsDialError(t *testing.T) {
	s := NewSMTPTransport("mailgun", SMTPConfig{Host: "mail.local", Port: 465, User: "u", Pass: "p"})
	var ssl bool
	s.dial = func(d *mail.Dialer, m *mail.Message) error {
		ssl = d.SSL
		return errors.New("dial tcp: connection refused")
	}

	_, err := s.Send(context.Background(), Envelope{From: Address{Address: "a@b.c"}, To: []string{"x@y.z"}, Subject: "s", Text: "t"})
	var te *TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, "mailgun", te.Provider)
	require.True(t, ssl)
	require.True(t, DiagnoseSMTP(err).Temporary)
}

func TestDiagnoseSMTP(t *testing.T) {
	cases := []struct {
		err       error
		code      string
		temporary bool
	}{
		{errors.New("dial tcp 1.2.3.4:587: i/o timeout"), "timeout", true},
		{errors.New("dial tcp: lookup smtp.x: no such host"), "dial", true},
		{errors.New("535 5.7.8 Username and Password not accepted"), "auth", false},
		{errors.New("421 4.7.0 Try again later"), "rate_limited", true},
		{errors.New("550 5.1.1 user unknown"), "invalid_recipient", false},
		{errors.New("550 5.7.1 message rejected by policy"), "rejected", false},
		{errors.New("x509: certificate signed by unknown authority"), "tls", false},
		{errors.New("something odd"), "unknown", false},
		{&TransportError{Provider: "resend", StatusCode: 429, Err: errors.New("slow down")}, "rate_limited", true},
		{&TransportError{Provider: "resend", StatusCode: 503, Err: errors.New("unavailable")}, "http", true},
		{&TransportError{Provider: "resend", StatusCode: 401, Err: errors.New("bad key")}, "auth", false},
	}
	for _, tc := range cases {
		d := DiagnoseSMTP(tc.err)
		require.Equal(t, tc.code, d.Code, tc.err.Error())
		require.Equal(t, tc.temporary, d.Temporary, tc.err.Error())
	}
	require.Equal(t, "unknown", DiagnoseSMTP(nil).Code)
}
