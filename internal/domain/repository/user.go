package repository

import (
	"context"
	"time"
)

// Roles conocidos.
const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

// User representa una cuenta del sitio.
type User struct {
	ID           string
	Email        string
	Firstname    string
	Lastname     string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
}

// FullName devuelve "Nombre Apellido" sin espacios sobrantes.
func (u User) FullName() string {
	switch {
	case u.Firstname == "":
		return u.Lastname
	case u.Lastname == "":
		return u.Firstname
	}
	return u.Firstname + " " + u.Lastname
}

// CreateUserInput contiene los datos para crear un usuario.
type CreateUserInput struct {
	Email        string
	Firstname    string
	Lastname     string
	Role         string
	PasswordHash string
}

// UserRepository define el acceso a usuarios.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, in CreateUserInput) (*User, error)
}
