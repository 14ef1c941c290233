package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
	jwtx "github.com/dropDatabas3/consultdesk/internal/jwt"
	"github.com/dropDatabas3/consultdesk/internal/security/password"
)

func (a *app) usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Gestión de usuarios",
	}

	var email, pass, first, last, role string
	create := &cobra.Command{
		Use:   "create",
		Short: "Crear un usuario (client o admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.ToLower(strings.TrimSpace(email))
			if email == "" || pass == "" {
				return fmt.Errorf("--email y --password son requeridos")
			}
			if role != repository.RoleClient && role != repository.RoleAdmin {
				return fmt.Errorf("--role debe ser %q o %q", repository.RoleClient, repository.RoleAdmin)
			}
			if ok, reasons := password.DefaultPolicy.Validate(pass); !ok {
				return fmt.Errorf("password rechazada: %s", strings.Join(reasons, ", "))
			}
			hash, err := password.Hash(password.Default, pass)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			u, err := st.Users().Create(ctx, repository.CreateUserInput{
				Email:        email,
				Firstname:    first,
				Lastname:     last,
				Role:         role,
				PasswordHash: hash,
			})
			if err != nil {
				if repository.IsConflict(err) {
					return fmt.Errorf("ya existe un usuario con email %s", email)
				}
				return err
			}
			a.print(map[string]any{"id": u.ID, "email": u.Email, "role": u.Role}, func() {
				fmt.Printf("usuario creado: %s <%s> role=%s\n", u.ID, u.Email, u.Role)
			})
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "email del usuario")
	create.Flags().StringVar(&pass, "password", envOr("CONSULTCTL_PASSWORD", ""), "password en claro")
	create.Flags().StringVar(&first, "firstname", "", "nombre")
	create.Flags().StringVar(&last, "lastname", "", "apellido")
	create.Flags().StringVar(&role, "role", repository.RoleClient, "client | admin")

	cmd.AddCommand(create)
	return cmd
}

func (a *app) tokenCmd() *cobra.Command {
	var email string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Emitir un access token para un usuario existente",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email es requerido")
			}
			if a.cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwt_secret vacío: definí JWT_SECRET")
			}
			if ttl <= 0 {
				ttl = a.cfg.Auth.AccessTTL
			}

			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			u, err := st.Users().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
			if err != nil {
				if repository.IsNotFound(err) {
					return fmt.Errorf("usuario %s no encontrado", email)
				}
				return err
			}
			iss, err := jwtx.NewIssuer(a.cfg.Auth.JWTSecret, a.cfg.Auth.Issuer, ttl)
			if err != nil {
				return err
			}
			tok, exp, err := iss.Issue(u.ID, u.Email, u.Role)
			if err != nil {
				return err
			}
			a.print(map[string]any{"token": tok, "expires_at": exp, "user_id": u.ID, "role": u.Role}, func() {
				fmt.Println(tok)
			})
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email del usuario")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "vigencia (default auth.access_ttl)")
	return cmd
}
