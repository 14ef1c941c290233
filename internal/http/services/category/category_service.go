// Package category expone las categorías del menú y sus platos.
//
// El listado público se cachea completo bajo una sola key; cualquier
// escritura la invalida.
package category

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/consultdesk/internal/cache"
	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
	"github.com/dropDatabas3/consultdesk/internal/observability/logger"
)

var (
	ErrNotFound     = errors.New("category not found")
	ErrNameRequired = errors.New("category name is required")
	ErrInUse        = errors.New("category has dishes")
)

const (
	listKey   = "categories:list"
	listCap   = 500
	listTTL   = 5 * time.Minute
	listLimit = 50
)

type cachedList struct {
	Categories []repository.Category `json:"categories"`
	Total      int                   `json:"total"`
}

type Service interface {
	List(ctx context.Context, limit int) ([]repository.Category, int, error)
	Get(ctx context.Context, id string) (*repository.Category, error)
	Dishes(ctx context.Context, id string) ([]repository.Dish, error)
	Create(ctx context.Context, in repository.CreateCategoryInput) (*repository.Category, error)
	Update(ctx context.Context, id string, in repository.UpdateCategoryInput) (*repository.Category, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo  repository.CategoryRepository
	cache cache.Client // nil = sin cache
	sf    singleflight.Group
}

func NewService(repo repository.CategoryRepository, c cache.Client) Service {
	return &service{repo: repo, cache: c}
}

func (s *service) log(ctx context.Context, op string) *zap.Logger {
	return logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("category"),
		logger.Op(op),
	)
}

func (s *service) List(ctx context.Context, limit int) ([]repository.Category, int, error) {
	if limit <= 0 {
		limit = listLimit
	}
	if limit > listCap {
		limit = listCap
	}
	if s.cache == nil {
		return s.repo.List(ctx, limit)
	}

	all, err := s.cachedAll(ctx)
	if err != nil {
		return nil, 0, err
	}
	out := all.Categories
	if len(out) > limit {
		out = out[:limit]
	}
	return out, all.Total, nil
}

func (s *service) cachedAll(ctx context.Context) (*cachedList, error) {
	log := s.log(ctx, "List")
	if raw, err := s.cache.Get(ctx, listKey); err == nil {
		var cl cachedList
		if err := json.Unmarshal([]byte(raw), &cl); err == nil {
			return &cl, nil
		}
		log.Warn("corrupt cache entry, reloading")
	} else if !cache.IsNotFound(err) {
		log.Warn("cache get failed", logger.Err(err))
	}

	v, err, _ := s.sf.Do(listKey, func() (any, error) {
		cats, total, err := s.repo.List(ctx, listCap)
		if err != nil {
			return nil, err
		}
		cl := &cachedList{Categories: cats, Total: total}
		if b, err := json.Marshal(cl); err == nil {
			if err := s.cache.Set(ctx, listKey, string(b), listTTL); err != nil {
				log.Warn("cache set failed", logger.Err(err))
			}
		}
		return cl, nil
	})
	if err != nil {
		log.Error("list failed", logger.Err(err))
		return nil, err
	}
	return v.(*cachedList), nil
}

func (s *service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, listKey); err != nil {
		s.log(ctx, "invalidate").Warn("cache delete failed", logger.Err(err))
	}
}

func (s *service) Get(ctx context.Context, id string) (*repository.Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapErr(ctx, "Get", err)
	}
	return c, nil
}

func (s *service) Dishes(ctx context.Context, id string) ([]repository.Dish, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, s.mapErr(ctx, "Dishes", err)
	}
	out, err := s.repo.ListDishes(ctx, id)
	if err != nil {
		return nil, s.mapErr(ctx, "Dishes", err)
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, in repository.CreateCategoryInput) (*repository.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	c, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, s.mapErr(ctx, "Create", err)
	}
	s.invalidate(ctx)
	s.log(ctx, "Create").Info("category created", logger.ID(c.ID))
	return c, nil
}

func (s *service) Update(ctx context.Context, id string, in repository.UpdateCategoryInput) (*repository.Category, error) {
	if in.Name != nil {
		n := strings.TrimSpace(*in.Name)
		if n == "" {
			return nil, ErrNameRequired
		}
		in.Name = &n
	}
	c, err := s.repo.Update(ctx, id, in)
	if err != nil {
		return nil, s.mapErr(ctx, "Update", err)
	}
	s.invalidate(ctx)
	return c, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapErr(ctx, "Delete", err)
	}
	s.invalidate(ctx)
	s.log(ctx, "Delete").Info("category deleted", logger.ID(id))
	return nil
}

func (s *service) mapErr(ctx context.Context, op string, err error) error {
	switch {
	case repository.IsNotFound(err):
		return ErrNotFound
	case errors.Is(err, repository.ErrInUse):
		return ErrInUse
	}
	s.log(ctx, op).Error("repository error", logger.Err(err))
	return err
}
