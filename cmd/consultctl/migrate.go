package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/consultdesk/internal/store/pg"
	migrations "github.com/dropDatabas3/consultdesk/migrations/postgres"
)

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Aplicar o revertir migraciones SQL embebidas",
	}
	cmd.AddCommand(a.migrateStep("up", "Aplica las migraciones pendientes (todas por default)"))
	cmd.AddCommand(a.migrateStep("down", "Revierte migraciones (todas por default)"))
	return cmd
}

func (a *app) migrateStep(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " [steps]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 0
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 0 {
					return fmt.Errorf("steps inválido: %q", args[0])
				}
				steps = n
			}

			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := pg.Migrate(ctx, st.Pool(), migrations.FS, migrations.Dir, action, steps)
			if err != nil {
				return err
			}
			a.print(map[string]any{"action": action, "applied": n}, func() {
				fmt.Printf("migrate %s: %d archivo(s)\n", action, n)
			})
			return nil
		},
	}
}
