package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
	"github.com/dropDatabas3/consultdesk/internal/observability/logger"
)

func testMessage() Message {
	return Message{
		To:        "ana@example.com",
		ToName:    "Ana",
		Subject:   "Hola",
		HTML:      "<p>Hola <b>Ana</b></p>",
		EmailType: TypeReservationCreated,
		UserID:    "u-1",
	}
}

func TestSend_NotConfigured(t *testing.T) {
	tr := newFakeTransport()
	tr.configured = false
	logs := newMemLogs()
	c := NewClient(Config{}, tr, logs)

	res, err := c.Send(context.Background(), testMessage())
	require.ErrorIs(t, err, ErrNotConfigured)
	require.False(t, res.Success)
	require.Zero(t, tr.callCount())
	require.Zero(t, logs.len())

	// transporte nil equivale a no configurado
	_, err = NewClient(Config{}, nil, logs).Send(context.Background(), testMessage())
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestSend_PreviewMode(t *testing.T) {
	tr := newFakeTransport()
	logs := newMemLogs()
	c := NewClient(Config{PreviewMode: true}, tr, logs)

	res, err := c.Send(context.Background(), testMessage())
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "preview", res.MessageID)
	require.Zero(t, tr.callCount())
	require.Zero(t, logs.len())
}

func TestSend_SuccessLifecycle(t *testing.T) {
	tr := newFakeTransport()
	logs := newMemLogs()
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c := NewClient(Config{FromName: "LE SAGE DEV", FromAddress: "hola@lesage.dev", Production: true}, tr, logs,
		WithClock(func() time.Time { return fixed }))

	res, err := c.Send(context.Background(), testMessage())
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, "msg-1", res.MessageID)
	require.Equal(t, fixed, res.SentAt)
	require.NotEmpty(t, res.LogID)

	require.Equal(t, 1, tr.callCount())
	env := tr.calls[0]
	require.Equal(t, []string{"ana@example.com"}, env.To)
	require.Equal(t, "Hola Ana", env.Text)
	require.Equal(t, "hola@lesage.dev", env.ReplyTo)
	require.Equal(t, "LE SAGE DEV <hola@lesage.dev>", env.From.String())

	row := logs.get(res.LogID)
	require.Equal(t, repository.EmailStatusSent, row.Status)
	require.Equal(t, "msg-1", *row.ProviderMessageID)
	require.NotNil(t, row.SentAt)
	require.Equal(t, "smtp", row.Provider)
	require.Equal(t, 1, logs.len())
}

func TestSend_FailureLifecycle(t *testing.T) {
	tr := newFakeTransport()
	tr.errs = []error{errors.New("535 5.7.8 authentication failed")}
	logs := newMemLogs()
	c := NewClient(Config{Production: true}, tr, logs)

	res, err := c.Send(context.Background(), testMessage())
	require.Error(t, err)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	require.Equal(t, "smtp", te.Provider)

	require.False(t, res.Success)
	require.NotEmpty(t, res.Error)
	require.NotEmpty(t, res.LogID)
	require.Equal(t, 1, tr.callCount())

	row := logs.get(res.LogID)
	require.Equal(t, repository.EmailStatusFailed, row.Status)
	require.NotNil(t, row.ErrorMessage)
	require.NotEmpty(t, *row.ErrorMessage)
	require.Nil(t, row.SentAt)
}

func TestSend_TestRecipientOutsideProduction(t *testing.T) {
	tr := newFakeTransport()
	logs := newMemLogs()
	c := NewClient(Config{TestRecipient: "qa@lesage.dev"}, tr, logs)

	res, err := c.Send(context.Background(), testMessage())
	require.NoError(t, err)
	require.Equal(t, []string{"qa@lesage.dev"}, tr.calls[0].To)
	// el log conserva el destinatario original
	require.Equal(t, "ana@example.com", logs.get(res.LogID).RecipientEmail)

	prod := NewClient(Config{TestRecipient: "qa@lesage.dev", Production: true}, tr, logs)
	_, err = prod.Send(context.Background(), testMessage())
	require.NoError(t, err)
	require.Equal(t, []string{"ana@example.com"}, tr.calls[1].To)
}

func TestSend_LogInsertFailureIsTolerated(t *testing.T) {
	tr := newFakeTransport()
	logs := newMemLogs()
	logs.insertErr = errors.New("db down")
	c := NewClient(Config{}, tr, logs)

	res, err := c.Send(context.Background(), testMessage())
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Empty(t, res.LogID)
	require.Equal(t, 1, tr.callCount())
}

func TestSend_ExplicitTextAndReplyTo(t *testing.T) {
	tr := newFakeTransport()
	c := NewClient(Config{ReplyTo: "contact@lesage.dev"}, tr, newMemLogs())

	msg := testMessage()
	msg.Text = "plain"
	_, err := c.Send(context.Background(), msg)
	require.NoError(t, err)
	require.Equal(t, "plain", tr.calls[0].Text)
	require.Equal(t, "contact@lesage.dev", tr.calls[0].ReplyTo)
}

func TestSend_InvalidMessage(t *testing.T) {
	c := NewClient(Config{}, newFakeTransport(), newMemLogs())
	_, err := c.Send(context.Background(), Message{Subject: "sin destinatario"})
	require.ErrorIs(t, err, ErrInvalidMessage)
}

func TestSend_EnforcedPreferencesSuppress(t *testing.T) {
	tr := newFakeTransport()
	logs := newMemLogs()
	prefs := &memPrefs{rows: map[string]repository.EmailPreference{}}
	p := repository.DefaultEmailPreference("u-1")
	p.ReservationConfirmations = false
	prefs.rows["u-1"] = p

	c := NewClient(Config{EnforcePreferences: true}, tr, logs, WithGate(NewGate(prefs)))
	require.True(t, c.EnforcesPreferences())

	_, err := c.Send(context.Background(), testMessage())
	require.ErrorIs(t, err, ErrSuppressed)
	require.Zero(t, tr.callCount())
	require.Zero(t, logs.len())

	// sin UserID el gate no aplica
	msg := testMessage()
	msg.UserID = ""
	_, err = c.Send(context.Background(), msg)
	require.NoError(t, err)
}

func TestStripTags(t *testing.T) {
	require.Equal(t, "Hola mundo", StripTags(`<div class="x">Hola <i>mundo</i></div>`))
	require.Equal(t, "", StripTags(""))
}

func TestSend_LogFieldsNotDuplicated(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	base := zap.New(core).With(logger.Component("email.queue"), logger.EmailType(TypeReservationCreated))
	ctx := logger.ToContext(context.Background(), base)

	tr := newFakeTransport()
	tr.errs = []error{errors.New("550 5.1.1 user unknown"), nil}
	c := NewClient(Config{}, tr, newMemLogs())

	_, err := c.Send(ctx, testMessage())
	require.Error(t, err)
	_, err = c.Send(ctx, testMessage())
	require.NoError(t, err)

	entries := recorded.All()
	require.NotEmpty(t, entries)
	for _, e := range entries {
		seen := map[string]bool{}
		for _, f := range e.Context {
			require.False(t, seen[f.Key], "duplicated key %q in %q", f.Key, e.Message)
			seen[f.Key] = true
		}
		require.True(t, seen["op"], e.Message)
	}
}
