package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Env     string `yaml:"app_env"` // development | production
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Server struct {
		Addr               string        `yaml:"addr"`
		CORSAllowedOrigins []string      `yaml:"cors_allowed_origins"`
		TrustedProxies     []string      `yaml:"trusted_proxies"` // IPs o CIDRs cuyo X-Forwarded-For se acepta
		ReadTimeout        time.Duration `yaml:"read_timeout"`
		WriteTimeout       time.Duration `yaml:"write_timeout"`
		ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxConns        int    `yaml:"max_conns"`
			MinConns        int    `yaml:"min_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL time.Duration `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	Rate struct {
		Enabled     bool          `yaml:"enabled"`
		Window      time.Duration `yaml:"window"`
		MaxRequests int           `yaml:"max_requests"`
	} `yaml:"rate"`

	Auth struct {
		JWTSecret string        `yaml:"jwt_secret"`
		Issuer    string        `yaml:"issuer"`
		AccessTTL time.Duration `yaml:"access_ttl"`
	} `yaml:"auth"`

	Email struct {
		Provider      string `yaml:"provider"` // smtp | resend | sendgrid | mailgun
		FromName      string `yaml:"from_name"`
		FromAddress   string `yaml:"from_address"`
		ReplyTo       string `yaml:"reply_to"`
		PreviewMode   bool   `yaml:"preview_mode"`
		TestRecipient string `yaml:"test_recipient"`
		RateLimit     int    `yaml:"rate_limit"` // envíos por hora

		EnforcePreferences bool `yaml:"enforce_preferences"`

		SMTP struct {
			Host               string `yaml:"host"`
			Port               int    `yaml:"port"`
			Secure             bool   `yaml:"secure"`
			User               string `yaml:"user"`
			Pass               string `yaml:"pass"`
			InsecureSkipVerify bool   `yaml:"insecure_skip_verify"` // sólo dev
		} `yaml:"smtp"`

		SendgridAPIKey      string `yaml:"sendgrid_api_key"`
		MailgunSMTPLogin    string `yaml:"mailgun_smtp_login"`
		MailgunSMTPPassword string `yaml:"mailgun_smtp_password"`
		ResendAPIKey        string `yaml:"resend_api_key"`
		ResendBaseURL       string `yaml:"resend_base_url"`

		Queue struct {
			Size         int           `yaml:"size"`
			Workers      int           `yaml:"workers"`
			RetryMax     int           `yaml:"retry_max"`
			RetryBackoff time.Duration `yaml:"retry_backoff"`
		} `yaml:"queue"`
	} `yaml:"email"`

	Booking struct {
		Timezone    string        `yaml:"timezone"`
		OpenHour    int           `yaml:"open_hour"`
		CloseHour   int           `yaml:"close_hour"`
		CancelLead  time.Duration `yaml:"cancel_lead"`
		DefaultType string        `yaml:"default_meeting_type"`
	} `yaml:"booking"`
}

// Load lee el YAML (si path no está vacío), aplica defaults y overrides de entorno.
// Un path inexistente no es error: el servicio puede configurarse sólo con env.
func Load(path string) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, err
		}
	}

	c.applyDefaults()
	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "development"
	}
	if c.App.Name == "" {
		c.App.Name = "consultdesk"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == 0 {
		c.Cache.Memory.DefaultTTL = 2 * time.Minute
	}
	if c.Cache.Redis.Prefix == "" {
		c.Cache.Redis.Prefix = "consultdesk"
	}
	if c.Rate.Window == 0 {
		c.Rate.Window = time.Minute
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 30
	}
	if c.Auth.AccessTTL == 0 {
		c.Auth.AccessTTL = 24 * time.Hour
	}
	if c.Email.Provider == "" {
		c.Email.Provider = "smtp"
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "LE SAGE DEV"
	}
	if c.Email.FromAddress == "" {
		c.Email.FromAddress = "onboarding@resend.dev"
	}
	if c.Email.RateLimit <= 0 {
		c.Email.RateLimit = 100
	}
	if c.Email.Queue.Size == 0 {
		c.Email.Queue.Size = 256
	}
	if c.Email.Queue.Workers == 0 {
		c.Email.Queue.Workers = 2
	}
	if c.Email.Queue.RetryMax == 0 {
		c.Email.Queue.RetryMax = 3
	}
	if c.Email.Queue.RetryBackoff == 0 {
		c.Email.Queue.RetryBackoff = 2 * time.Second
	}
	if c.Booking.OpenHour == 0 {
		c.Booking.OpenHour = 9
	}
	if c.Booking.CloseHour == 0 {
		c.Booking.CloseHour = 18
	}
	if c.Booking.CancelLead == 0 {
		c.Booking.CancelLead = 2 * time.Hour
	}
	if c.Booking.DefaultType == "" {
		c.Booking.DefaultType = "visio"
	}
}

// IsProduction indica si el entorno es productivo.
func (c *Config) IsProduction() bool {
	switch strings.ToLower(c.App.Env) {
	case "prod", "production":
		return true
	}
	return false
}

// Location resuelve la zona horaria de las reservas (hora local del servidor si vacía).
func (c *Config) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Booking.Timezone) == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Booking.Timezone)
}

// Validate chequea combinaciones inválidas.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Email.Provider) {
	case "smtp", "resend", "sendgrid", "mailgun", "default":
	default:
		return fmt.Errorf("config: unknown email provider %q", c.Email.Provider)
	}
	switch c.Cache.Kind {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: unknown cache kind %q", c.Cache.Kind)
	}
	if c.Booking.OpenHour < 0 || c.Booking.CloseHour > 24 || c.Booking.OpenHour >= c.Booking.CloseHour {
		return fmt.Errorf("config: invalid booking hours [%d,%d)", c.Booking.OpenHour, c.Booking.CloseHour)
	}
	if c.Email.Queue.Workers < 1 || c.Email.Queue.Size < 1 {
		return fmt.Errorf("config: email queue needs at least one worker and one slot")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("config: booking timezone: %w", err)
	}
	if c.Storage.Postgres.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.Storage.Postgres.ConnMaxLifetime); err != nil {
			return fmt.Errorf("config: conn_max_lifetime: %w", err)
		}
	}
	if c.IsProduction() && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("config: JWT_SECRET must be at least 32 bytes in production")
	}
	return nil
}

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvDur(key string) (time.Duration, bool) {
	if s, ok := getEnvStr(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(s)); err == nil {
			return d, true
		}
	}
	return 0, false
}

func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

func (c *Config) applyEnvOverrides() {
	// NODE_ENV se acepta por compatibilidad con los .env existentes
	if v, ok := getEnvStr("NODE_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SERVICE_VERSION"); ok {
		c.App.Version = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	} else if v, ok := getEnvStr("PORT"); ok {
		c.Server.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvCSV("SERVER_TRUSTED_PROXIES"); ok {
		c.Server.TrustedProxies = v
	}

	if v, ok := getEnvStr("DATABASE_URL"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvInt("POSTGRES_MAX_CONNS"); ok {
		c.Storage.Postgres.MaxConns = v
	}

	if v, ok := getEnvStr("CACHE_KIND"); ok {
		c.Cache.Kind = strings.ToLower(v)
	}
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Cache.Redis.Addr = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Cache.Redis.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Cache.Redis.DB = v
	}

	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvDur("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}
	if v, ok := getEnvInt("RATE_MAX_REQUESTS"); ok {
		c.Rate.MaxRequests = v
	}

	if v, ok := getEnvStr("JWT_SECRET"); ok {
		c.Auth.JWTSecret = v
	}
	if v, ok := getEnvStr("JWT_ISSUER"); ok {
		c.Auth.Issuer = v
	}
	if v, ok := getEnvDur("JWT_ACCESS_TTL"); ok {
		c.Auth.AccessTTL = v
	}

	if v, ok := getEnvStr("EMAIL_PROVIDER"); ok {
		c.Email.Provider = strings.ToLower(v)
	}
	if v, ok := getEnvStr("EMAIL_FROM_NAME"); ok {
		c.Email.FromName = v
	}
	if v, ok := getEnvStr("EMAIL_FROM_ADDRESS"); ok {
		c.Email.FromAddress = v
	}
	if v, ok := getEnvStr("EMAIL_REPLY_TO"); ok {
		c.Email.ReplyTo = v
	}
	if v, ok := getEnvBool("EMAIL_PREVIEW_MODE"); ok {
		c.Email.PreviewMode = v
	}
	if v, ok := getEnvStr("EMAIL_TEST_RECIPIENT"); ok {
		c.Email.TestRecipient = v
	}
	// 0 o negativo no desactiva el tope: se conserva el valor vigente
	if v, ok := getEnvInt("EMAIL_RATE_LIMIT"); ok && v > 0 {
		c.Email.RateLimit = v
	}
	if v, ok := getEnvBool("EMAIL_ENFORCE_PREFERENCES"); ok {
		c.Email.EnforcePreferences = v
	}
	if v, ok := getEnvStr("SMTP_HOST"); ok {
		c.Email.SMTP.Host = v
	}
	if v, ok := getEnvInt("SMTP_PORT"); ok {
		c.Email.SMTP.Port = v
	}
	if v, ok := getEnvBool("SMTP_SECURE"); ok {
		c.Email.SMTP.Secure = v
	}
	if v, ok := getEnvStr("SMTP_USER"); ok {
		c.Email.SMTP.User = v
	}
	if v, ok := getEnvStr("SMTP_PASS"); ok {
		c.Email.SMTP.Pass = v
	}
	if v, ok := getEnvBool("SMTP_INSECURE_SKIP_VERIFY"); ok {
		c.Email.SMTP.InsecureSkipVerify = v
	}
	if v, ok := getEnvStr("SENDGRID_API_KEY"); ok {
		c.Email.SendgridAPIKey = v
	}
	if v, ok := getEnvStr("MAILGUN_SMTP_LOGIN"); ok {
		c.Email.MailgunSMTPLogin = v
	}
	if v, ok := getEnvStr("MAILGUN_SMTP_PASSWORD"); ok {
		c.Email.MailgunSMTPPassword = v
	}
	if v, ok := getEnvStr("RESEND_API_KEY"); ok {
		c.Email.ResendAPIKey = v
	}
	if v, ok := getEnvInt("EMAIL_QUEUE_SIZE"); ok {
		c.Email.Queue.Size = v
	}
	if v, ok := getEnvInt("EMAIL_QUEUE_WORKERS"); ok {
		c.Email.Queue.Workers = v
	}
	if v, ok := getEnvInt("EMAIL_RETRY_MAX"); ok {
		c.Email.Queue.RetryMax = v
	}
	if v, ok := getEnvDur("EMAIL_RETRY_BACKOFF"); ok {
		c.Email.Queue.RetryBackoff = v
	}

	if v, ok := getEnvStr("BOOKING_TIMEZONE"); ok {
		c.Booking.Timezone = v
	}
	if v, ok := getEnvDur("BOOKING_CANCEL_LEAD"); ok {
		c.Booking.CancelLead = v
	}
}
