package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/consultdesk/internal/config"
	"github.com/dropDatabas3/consultdesk/internal/http/server"
	"github.com/dropDatabas3/consultdesk/internal/observability/logger"
)

func main() {
	var (
		flagConfigPath = flag.String("config", "", "ruta a config.yaml (fallback: $CONFIG_PATH o configs/config.yaml)")
		flagEnvFile    = flag.String("env-file", ".env", "ruta a .env (si existe, se carga)")
		flagPrint      = flag.Bool("print-config", false, "imprime config efectiva y termina")
	)
	flag.Parse()

	if *flagEnvFile != "" && fileExists(*flagEnvFile) {
		if err := godotenv.Load(*flagEnvFile); err != nil {
			log.Printf("dotenv: %v", err)
		}
	}

	cfgPath := *flagConfigPath
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
	if cfgPath == "" && fileExists("configs/config.yaml") {
		cfgPath = "configs/config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *flagPrint {
		printConfigSummary(cfg)
		return
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	})
	defer func() { _ = logger.Sync() }()
	lg := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := server.Build(ctx, cfg)
	if err != nil {
		lg.Fatal("wiring failed", logger.Err(err))
	}
	defer app.Close()

	err = server.Run(ctx, app, server.Options{
		Addr:            cfg.Server.Addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		lg.Error("server stopped with error", logger.Err(err))
		app.Close()
		os.Exit(1)
	}
	lg.Info("bye")
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

// printConfigSummary imprime la config efectiva sin secretos.
func printConfigSummary(c *config.Config) {
	mask := func(s string) string {
		if s == "" {
			return "(vacío)"
		}
		return "****"
	}
	dsn := c.Storage.DSN
	if i := strings.Index(dsn, "@"); i > 0 {
		dsn = "****" + dsn[i:]
	}
	fmt.Printf("app:      %s %s (%s)\n", c.App.Name, c.App.Version, c.App.Env)
	fmt.Printf("server:   %s cors=%v trusted_proxies=%v\n", c.Server.Addr, c.Server.CORSAllowedOrigins, c.Server.TrustedProxies)
	fmt.Printf("storage:  %s\n", dsn)
	fmt.Printf("cache:    %s rate=%v (%d/%s)\n", c.Cache.Kind, c.Rate.Enabled, c.Rate.MaxRequests, c.Rate.Window)
	fmt.Printf("auth:     issuer=%q ttl=%s secret=%s\n", c.Auth.Issuer, c.Auth.AccessTTL, mask(c.Auth.JWTSecret))
	fmt.Printf("email:    provider=%s from=%q <%s> preview=%v limit=%d/h enforce_prefs=%v\n",
		c.Email.Provider, c.Email.FromName, c.Email.FromAddress, c.Email.PreviewMode, c.Email.RateLimit, c.Email.EnforcePreferences)
	fmt.Printf("queue:    size=%d workers=%d retries=%d backoff=%s\n",
		c.Email.Queue.Size, c.Email.Queue.Workers, c.Email.Queue.RetryMax, c.Email.Queue.RetryBackoff)
	fmt.Printf("booking:  [%02d:00,%02d:00) tz=%q lead=%s default=%s\n",
		c.Booking.OpenHour, c.Booking.CloseHour, c.Booking.Timezone, c.Booking.CancelLead, c.Booking.DefaultType)
}
