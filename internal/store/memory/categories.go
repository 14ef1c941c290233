package memory

import (
	"context"
	"sort"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
)

type categoryRepo Store

// AddDish inserta un plato (seed de desarrollo y tests).
func (s *Store) AddDish(d repository.Dish) repository.Dish {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == "" {
		d.ID = newID()
	}
	s.dishes[d.ID] = d
	return d
}

func (r *categoryRepo) dishCountLocked(id string) int {
	n := 0
	for _, d := range r.dishes {
		if d.CategoryID == id {
			n++
		}
	}
	return n
}

func (r *categoryRepo) List(_ context.Context, limit int) ([]repository.Category, int, error) {
	if limit <= 0 {
		limit = 50
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]repository.Category, 0, len(r.categories))
	for _, c := range r.categories {
		c.DishCount = r.dishCountLocked(c.ID)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].Name < out[j].Name
	})
	total := len(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (r *categoryRepo) GetByID(_ context.Context, id string) (*repository.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.DishCount = r.dishCountLocked(id)
	return &c, nil
}

func (r *categoryRepo) ListDishes(_ context.Context, categoryID string) ([]repository.Dish, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []repository.Dish{}
	for _, d := range r.dishes {
		if d.CategoryID == categoryID && d.IsAvailable {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *categoryRepo) Create(_ context.Context, in repository.CreateCategoryInput) (*repository.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := repository.Category{
		ID:           newID(),
		Name:         in.Name,
		Description:  in.Description,
		Icon:         in.Icon,
		DisplayOrder: in.DisplayOrder,
		IsActive:     true,
		CreatedAt:    r.now(),
	}
	r.categories[c.ID] = c
	return &c, nil
}

func (r *categoryRepo) Update(_ context.Context, id string, in repository.UpdateCategoryInput) (*repository.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Description != nil {
		c.Description = in.Description
	}
	if in.Icon != nil {
		c.Icon = in.Icon
	}
	if in.DisplayOrder != nil {
		c.DisplayOrder = *in.DisplayOrder
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	r.categories[id] = c
	return &c, nil
}

func (r *categoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dishCountLocked(id) > 0 {
		return repository.ErrInUse
	}
	if _, ok := r.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.categories, id)
	return nil
}
