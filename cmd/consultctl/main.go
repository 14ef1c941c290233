// consultctl es el CLI operativo: migraciones, alta de usuarios, tokens de
// prueba y diagnóstico del subsistema de email.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/consultdesk/internal/config"
	"github.com/dropDatabas3/consultdesk/internal/observability/logger"
	"github.com/dropDatabas3/consultdesk/internal/store/pg"
)

// app concentra el estado compartido por los subcomandos.
type app struct {
	cfgPath string
	envFile string
	dsn     string
	jsonOut bool
	verbose bool

	cfg *config.Config
}

func main() {
	a := &app{}

	root := &cobra.Command{
		Use:           "consultctl",
		Short:         "CLI de administración de consultdesk",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.envFile != "" {
				if _, err := os.Stat(a.envFile); err == nil {
					if err := godotenv.Load(a.envFile); err != nil {
						return fmt.Errorf("dotenv: %w", err)
					}
				}
			}
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return err
			}
			if a.dsn != "" {
				cfg.Storage.DSN = a.dsn
			}
			a.cfg = cfg
			level := envOr("CONSULTCTL_LOG_LEVEL", "warn")
			if a.verbose {
				level = "debug"
			}
			logger.Init(logger.Config{
				Env:         cfg.App.Env,
				Level:       level,
				ServiceName: "consultctl",
				Version:     cfg.App.Version,
			})
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", envOr("CONFIG_PATH", "configs/config.yaml"), "ruta a config.yaml")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "ruta a .env (si existe, se carga)")
	root.PersistentFlags().StringVar(&a.dsn, "dsn", "", "DSN de Postgres (override de storage.dsn)")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "salida JSON")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "logs en nivel debug")

	root.AddCommand(
		a.migrateCmd(),
		a.usersCmd(),
		a.tokenCmd(),
		a.emailCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openStore abre Postgres. Los comandos que lo usan no tienen fallback en memoria.
func (a *app) openStore(ctx context.Context) (*pg.Store, error) {
	if a.cfg.Storage.DSN == "" {
		return nil, fmt.Errorf("storage.dsn vacío: usá --dsn o DATABASE_URL")
	}
	return pg.New(ctx, a.cfg.Storage.DSN, pg.PoolConfig{MaxConns: 2})
}

// print escribe v como JSON indentado o, sin --json, con el formateador de texto.
func (a *app) print(v any, text func()) {
	if a.jsonOut || text == nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(v)
		return
	}
	text()
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
