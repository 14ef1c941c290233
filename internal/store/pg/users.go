package pg

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
)

type userRepo struct {
	pool *pgxpool.Pool
}

const userColumns = `id, email, firstname, lastname, role, password_hash, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*repository.User, error) {
	var u repository.User
	var hash *string
	if err := row.Scan(&u.ID, &u.Email, &u.Firstname, &u.Lastname, &u.Role, &hash, &u.CreatedAt); err != nil {
		return nil, mapErr(err)
	}
	u.PasswordHash = deref(hash)
	return &u, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*repository.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1) LIMIT 1`,
		strings.TrimSpace(email)))
}

func (r *userRepo) Create(ctx context.Context, in repository.CreateUserInput) (*repository.User, error) {
	role := in.Role
	if role == "" {
		role = repository.RoleClient
	}
	const q = `
		INSERT INTO users (email, firstname, lastname, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q,
		strings.ToLower(strings.TrimSpace(in.Email)), in.Firstname, in.Lastname, role, nullIfEmpty(in.PasswordHash)))
}
