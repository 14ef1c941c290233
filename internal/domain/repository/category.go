package repository

import (
	"context"
	"time"
)

// Category agrupa platos del menú.
type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  *string   `json:"description,omitempty"`
	Icon         *string   `json:"icon,omitempty"`
	DisplayOrder int       `json:"display_order"`
	IsActive     bool      `json:"is_active"`
	DishCount    int       `json:"dish_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Dish es un plato de una categoría.
type Dish struct {
	ID          string  `json:"id"`
	CategoryID  string  `json:"category_id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Price       float64 `json:"price"`
	IsAvailable bool    `json:"is_available"`
}

// CreateCategoryInput son los datos para crear una categoría.
type CreateCategoryInput struct {
	Name         string
	Description  *string
	Icon         *string
	DisplayOrder int
}

// UpdateCategoryInput aplica sólo los campos no nil (COALESCE).
type UpdateCategoryInput struct {
	Name         *string
	Description  *string
	Icon         *string
	DisplayOrder *int
	IsActive     *bool
}

// CategoryRepository define el acceso a categorías y platos.
type CategoryRepository interface {
	List(ctx context.Context, limit int) ([]Category, int, error)
	GetByID(ctx context.Context, id string) (*Category, error)
	ListDishes(ctx context.Context, categoryID string) ([]Dish, error)
	Create(ctx context.Context, in CreateCategoryInput) (*Category, error)
	Update(ctx context.Context, id string, in UpdateCategoryInput) (*Category, error)
	// Delete devuelve ErrInUse si hay platos que referencian la categoría.
	Delete(ctx context.Context, id string) error
}
