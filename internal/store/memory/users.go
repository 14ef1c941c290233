package memory

import (
	"context"
	"strings"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
)

type userRepo Store

func (r *userRepo) GetByID(_ context.Context, id string) (*repository.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*repository.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) Create(_ context.Context, in repository.CreateUserInput) (*repository.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, in.Email) {
			return nil, repository.ErrConflict
		}
	}
	role := in.Role
	if role == "" {
		role = repository.RoleClient
	}
	u := repository.User{
		ID:           newID(),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Firstname:    in.Firstname,
		Lastname:     in.Lastname,
		Role:         role,
		PasswordHash: in.PasswordHash,
		CreatedAt:    r.now(),
	}
	r.users[u.ID] = u
	return &u, nil
}
