package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
	"github.com/dropDatabas3/consultdesk/internal/email"
	"github.com/dropDatabas3/consultdesk/internal/http/server"
	emailsvc "github.com/dropDatabas3/consultdesk/internal/http/services/email"
	"github.com/dropDatabas3/consultdesk/internal/store/memory"
)

func (a *app) emailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "email",
		Short: "Diagnóstico del envío de emails",
	}
	cmd.AddCommand(a.emailTestCmd(), a.emailCheckUserCmd(), a.emailStatsCmd())
	return cmd
}

// emailTestCmd envía el email de prueba de forma síncrona, sin pasar por la cola.
// Sin DSN el log del envío queda en memoria y se descarta al salir.
func (a *app) emailTestCmd() *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Enviar un email de prueba con el transporte configurado",
		RunE: func(cmd *cobra.Command, args []string) error {
			to = strings.TrimSpace(to)
			if to == "" {
				return fmt.Errorf("--to es requerido")
			}
			ctx := cmd.Context()

			var repos server.EmailRepos = memory.New()
			if a.cfg.Storage.DSN != "" {
				st, err := a.openStore(ctx)
				if err != nil {
					return err
				}
				defer st.Close()
				repos = st
			}

			client, _ := server.BuildEmail(a.cfg, repos)
			msg, err := email.TestMessage(to, client.Provider(), time.Now())
			if err != nil {
				return err
			}
			res, err := client.Send(ctx, msg)
			out := map[string]any{
				"provider":   client.Provider(),
				"configured": client.Configured(),
				"success":    res.Success,
				"message_id": res.MessageID,
				"log_id":     res.LogID,
				"error":      res.Error,
			}
			a.print(out, func() {
				fmt.Printf("provider:   %s (configured=%t)\n", client.Provider(), client.Configured())
				if res.Success {
					fmt.Printf("enviado:    %s\n", res.MessageID)
				} else {
					fmt.Printf("falló:      %s\n", res.Error)
				}
				if res.LogID != "" {
					fmt.Printf("log:        %s\n", res.LogID)
				}
			})
			if err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("envío de prueba fallido")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", envOr("EMAIL_TEST_TO", ""), "destinatario")
	return cmd
}

// emailCheckUserCmd muestra preferencias, decisión del gate por tipo y últimos envíos.
func (a *app) emailCheckUserCmd() *cobra.Command {
	var addr string
	var limit int
	cmd := &cobra.Command{
		Use:   "check-user",
		Short: "Ver preferencias y últimos emails de un usuario",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr = strings.ToLower(strings.TrimSpace(addr))
			if addr == "" {
				return fmt.Errorf("--email es requerido")
			}
			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			u, err := st.Users().GetByEmail(ctx, addr)
			if err != nil {
				if repository.IsNotFound(err) {
					return fmt.Errorf("usuario %s no encontrado", addr)
				}
				return err
			}
			prefs, err := st.Preferences().Ensure(ctx, u.ID)
			if err != nil {
				return err
			}
			logs, err := st.EmailLogs().ListByRecipient(ctx, u.Email, limit)
			if err != nil {
				return err
			}

			gate := email.NewGate(st.Preferences())
			types := []string{
				email.TypeReservationCreated, email.TypeReservationConfirmed,
				email.TypeReservationCancelled, email.TypeReservationReminder,
				email.TypeNewsletter, email.TypeContactReply,
			}
			decisions := make(map[string]bool, len(types))
			for _, t := range types {
				decisions[t] = gate.ShouldSend(ctx, u.ID, t)
			}

			a.print(map[string]any{
				"user":        map[string]any{"id": u.ID, "email": u.Email, "role": u.Role},
				"preferences": prefs,
				"would_send":  decisions,
				"last_emails": logs,
			}, func() {
				fmt.Printf("usuario:   %s <%s> role=%s\n", u.FullName(), u.Email, u.Role)
				fmt.Printf("master:    %t  reservas=%t  recordatorios=%t  marketing=%t  digest=%s\n",
					prefs.EmailNotifications, prefs.ReservationConfirmations,
					prefs.ReservationReminders, prefs.MarketingEmails, prefs.DigestFrequency)
				for _, t := range types {
					fmt.Printf("  %-24s %t\n", t, decisions[t])
				}
				fmt.Printf("últimos %d envíos:\n", len(logs))
				for _, l := range logs {
					fmt.Printf("  %s  %-22s %-8s %s\n", l.CreatedAt.Format(time.RFC3339), l.EmailType, l.Status, l.Subject)
				}
			})
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "email", "", "email del usuario")
	cmd.Flags().IntVar(&limit, "limit", 10, "cantidad de envíos a mostrar")
	return cmd
}

func (a *app) emailStatsCmd() *cobra.Command {
	var q emailsvc.StatsQuery
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Estadísticas de envío agrupadas por tipo",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			loc, err := a.cfg.Location()
			if err != nil {
				return err
			}
			stats, err := emailsvc.NewService(st.EmailLogs(), st.Preferences(), loc).Stats(ctx, q)
			if err != nil {
				return err
			}
			a.print(stats, func() {
				fmt.Printf("%-24s %6s %6s %6s\n", "tipo", "total", "sent", "failed")
				for _, s := range stats {
					fmt.Printf("%-24s %6d %6d %6d\n", s.EmailType, s.Total, s.Sent, s.Failed)
				}
			})
			return nil
		},
	}
	cmd.Flags().StringVar(&q.StartDate, "start", "", "fecha inicial YYYY-MM-DD")
	cmd.Flags().StringVar(&q.EndDate, "end", "", "fecha final YYYY-MM-DD (inclusive)")
	cmd.Flags().StringVar(&q.EmailType, "type", "", "filtrar por email_type")
	return cmd
}
