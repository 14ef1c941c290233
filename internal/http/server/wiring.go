// Package server arma el servicio HTTP: construye las dependencias desde la
// configuración (store, cache, rate limiter, email, JWT) y las inyecta en
// services, controllers y router.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/consultdesk/internal/cache"
	"github.com/dropDatabas3/consultdesk/internal/config"
	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
	"github.com/dropDatabas3/consultdesk/internal/email"
	"github.com/dropDatabas3/consultdesk/internal/http/controllers"
	mw "github.com/dropDatabas3/consultdesk/internal/http/middlewares"
	"github.com/dropDatabas3/consultdesk/internal/http/router"
	"github.com/dropDatabas3/consultdesk/internal/http/services"
	"github.com/dropDatabas3/consultdesk/internal/http/services/health"
	jwtx "github.com/dropDatabas3/consultdesk/internal/jwt"
	"github.com/dropDatabas3/consultdesk/internal/metrics"
	"github.com/dropDatabas3/consultdesk/internal/observability/logger"
	"github.com/dropDatabas3/consultdesk/internal/rate"
	"github.com/dropDatabas3/consultdesk/internal/store/memory"
	"github.com/dropDatabas3/consultdesk/internal/store/pg"
)

// devSecret se usa sólo fuera de producción cuando JWT_SECRET está vacío.
const devSecret = "consultdesk-dev-secret-change-me-please"

// App es el servicio armado. Close libera los recursos en orden inverso.
type App struct {
	Handler http.Handler
	Queue   *email.Queue

	closers []func()
}

// Close libera store, cache y redis. La cola se drena aparte con Shutdown.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// Build construye todas las dependencias. Con DSN vacío usa el store en memoria.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.With(logger.Component("server.wiring"))
	app := &App{}
	fail := func(err error) (*App, error) {
		app.Close()
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	// ─── 1. Store ───
	var (
		repos   services.Repositories
		pgStore *pg.Store
		dbCheck func(context.Context) error
	)
	if cfg.Storage.DSN != "" {
		pgStore, err = pg.New(ctx, cfg.Storage.DSN, pg.PoolConfig{
			MaxConns:        cfg.Storage.Postgres.MaxConns,
			MinConns:        cfg.Storage.Postgres.MinConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			return fail(fmt.Errorf("store: %w", err))
		}
		app.closers = append(app.closers, pgStore.Close)
		repos, dbCheck = pgStore, pgStore.Ping
	} else {
		log.Warn("no storage DSN configured, using in-memory store (data is lost on restart)")
		repos = memory.New()
	}

	// ─── 2. Cache + rate limiter (comparten el cliente redis) ───
	var (
		cacheClient cache.Client
		limiter     rate.Limiter
		rdb         *redis.Client
	)
	if cfg.Cache.Kind == "redis" {
		rdb, err = cache.DialRedis(ctx, cache.Config{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		if err != nil {
			return fail(err)
		}
		app.closers = append(app.closers, func() { _ = rdb.Close() })
		cacheClient = cache.NewRedis(rdb, cfg.Cache.Redis.Prefix)
	} else {
		cacheClient = cache.NewMemory(cfg.App.Name, cfg.Cache.Memory.DefaultTTL)
	}
	if cfg.Rate.Enabled {
		if rdb != nil {
			limiter = rate.NewRedisLimiter(rdb, cfg.Cache.Redis.Prefix+":rl", cfg.Rate.MaxRequests, cfg.Rate.Window)
		} else {
			limiter = rate.NewMemoryLimiter(cfg.Rate.MaxRequests, cfg.Rate.Window)
		}
	}

	// ─── 3. JWT ───
	secret := cfg.Auth.JWTSecret
	if secret == "" {
		log.Warn("JWT_SECRET not set, using development secret")
		secret = devSecret
	}
	issuer, err := jwtx.NewIssuer(secret, cfg.Auth.Issuer, cfg.Auth.AccessTTL)
	if err != nil {
		return fail(err)
	}

	// ─── 4. Email ───
	emailClient, queue := BuildEmail(cfg, repos)
	app.Queue = queue
	notifier := email.NewNotifier(queue, email.NewGate(repos.Preferences()), emailClient.EnforcesPreferences())

	// ─── 5. Metrics ───
	metricsHandler, err := metrics.Register(metrics.Config{
		Pool: func() *pgxpool.Pool { return pgStore.Pool() },
	})
	if err != nil {
		log.Warn("metrics disabled", logger.Err(err))
	}

	// ─── 6. Services → Controllers → Router ───
	svcs := services.New(services.Deps{
		Repos:    repos,
		Cache:    cacheClient,
		Notifier: notifier,
		Booking: services.BookingConfig{
			Location:    loc,
			OpenHour:    cfg.Booking.OpenHour,
			CloseHour:   cfg.Booking.CloseHour,
			CancelLead:  cfg.Booking.CancelLead,
			DefaultType: cfg.Booking.DefaultType,
		},
		HealthDeps: health.Deps{
			Version:    cfg.App.Version,
			DBCheck:    dbCheck,
			CacheCheck: cacheClient.Ping,
			CacheKind:  cfg.Cache.Kind,
			Email:      emailClient,
			QueueDepth: queue.Depth,
			QueueSize:  cfg.Email.Queue.Size,
		},
	})

	trusted, err := mw.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return fail(fmt.Errorf("server.trusted_proxies: %w", err))
	}
	app.Handler = router.New(router.Deps{
		Controllers:    controllers.New(svcs),
		Auth:           issuer,
		RateLimiter:    limiter,
		Metrics:        metricsHandler,
		CORSOrigins:    cfg.Server.CORSAllowedOrigins,
		TrustedProxies: trusted,
	})

	log.Info("service wired",
		logger.Bool("postgres", pgStore != nil),
		logger.String("cache", cfg.Cache.Kind),
		logger.Bool("rate_limit", limiter != nil),
		logger.Provider(emailClient.Provider()),
		logger.Bool("email_configured", emailClient.Configured()),
	)
	return app, nil
}

// EmailRepos es lo que el subsistema de email necesita del store.
type EmailRepos interface {
	EmailLogs() repository.EmailLogRepository
	Preferences() repository.EmailPreferenceRepository
}

// BuildEmail arma transporte, Client, limiter y cola. Lo comparte el CLI.
// La cola se devuelve sin arrancar.
func BuildEmail(cfg *config.Config, repos EmailRepos) (*email.Client, *email.Queue) {
	e := cfg.Email
	transport := email.NewTransport(email.TransportConfig{
		Provider:            e.Provider,
		SMTPHost:            e.SMTP.Host,
		SMTPPort:            e.SMTP.Port,
		SMTPSecure:          e.SMTP.Secure,
		SMTPUser:            e.SMTP.User,
		SMTPPass:            e.SMTP.Pass,
		InsecureSkipVerify:  e.SMTP.InsecureSkipVerify,
		SendgridAPIKey:      e.SendgridAPIKey,
		MailgunSMTPLogin:    e.MailgunSMTPLogin,
		MailgunSMTPPassword: e.MailgunSMTPPassword,
		ResendAPIKey:        e.ResendAPIKey,
		ResendBaseURL:       e.ResendBaseURL,
		Timeout:             15 * time.Second,
	})

	client := email.NewClient(email.Config{
		FromName:           e.FromName,
		FromAddress:        e.FromAddress,
		ReplyTo:            e.ReplyTo,
		PreviewMode:        e.PreviewMode,
		TestRecipient:      e.TestRecipient,
		Production:         cfg.IsProduction(),
		EnforcePreferences: e.EnforcePreferences,
	}, transport, repos.EmailLogs(), email.WithGate(email.NewGate(repos.Preferences())))

	queue := email.NewQueue(email.QueueConfig{
		Size:         e.Queue.Size,
		Workers:      e.Queue.Workers,
		RetryMax:     e.Queue.RetryMax,
		RetryBackoff: e.Queue.RetryBackoff,
	}, client, email.NewLimiter(repos.EmailLogs(), e.RateLimit))
	return client, queue
}
