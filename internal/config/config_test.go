package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	require.Equal(t, ":8080", c.Server.Addr)
	require.Equal(t, "smtp", c.Email.Provider)
	require.Equal(t, "LE SAGE DEV", c.Email.FromName)
	require.Equal(t, "onboarding@resend.dev", c.Email.FromAddress)
	require.Equal(t, 100, c.Email.RateLimit)
	require.Equal(t, 9, c.Booking.OpenHour)
	require.Equal(t, 18, c.Booking.CloseHour)
	require.Equal(t, 2*time.Hour, c.Booking.CancelLead)
	require.Equal(t, "visio", c.Booking.DefaultType)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	yml := `
app:
  app_env: development
email:
  provider: resend
  rate_limit: 20
  queue:
    workers: 4
`
	require.NoError(t, os.WriteFile(p, []byte(yml), 0o600))

	t.Setenv("EMAIL_RATE_LIMIT", "7")
	t.Setenv("EMAIL_PREVIEW_MODE", "true")
	t.Setenv("SMTP_PORT", "465")

	c, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "resend", c.Email.Provider)
	require.Equal(t, 7, c.Email.RateLimit)
	require.True(t, c.Email.PreviewMode)
	require.Equal(t, 4, c.Email.Queue.Workers)
	require.Equal(t, 465, c.Email.SMTP.Port)
}

func TestLoad_NonPositiveEmailRateLimitKeepsCap(t *testing.T) {
	for _, v := range []string{"0", "-3"} {
		t.Setenv("EMAIL_RATE_LIMIT", v)
		c, err := Load("")
		require.NoError(t, err)
		require.Equal(t, 100, c.Email.RateLimit, "EMAIL_RATE_LIMIT=%s", v)
	}

	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte("email:\n  rate_limit: 25\n"), 0o600))
	t.Setenv("EMAIL_RATE_LIMIT", "0")
	c, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, 25, c.Email.RateLimit)
}

func TestLoad_TrustedProxiesFromEnv(t *testing.T) {
	t.Setenv("SERVER_TRUSTED_PROXIES", "10.0.0.0/8, 127.0.0.1")
	c, err := Load("")
	require.NoError(t, err)
	require.Equal(t, []string{"10.0.0.0/8", "127.0.0.1"}, c.Server.TrustedProxies)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.NotNil(t, c)
}

func TestValidate_RejectsUnknownProvider(t *testing.T) {
	t.Setenv("EMAIL_PROVIDER", "pigeon")
	_, err := Load("")
	require.Error(t, err)
}

func TestValidate_ProductionNeedsJWTSecret(t *testing.T) {
	t.Setenv("NODE_ENV", "production")
	_, err := Load("")
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	c, err := Load("")
	require.NoError(t, err)
	require.True(t, c.IsProduction())
}
