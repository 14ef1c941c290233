// Package category contiene los DTOs de /categories.
package category

import "github.com/dropDatabas3/consultdesk/internal/domain/repository"

type ListResponse struct {
	Success    bool                  `json:"success"`
	Categories []repository.Category `json:"categories"`
	Total      int                   `json:"total"`
}

type CategoryResponse struct {
	Success  bool                 `json:"success"`
	Message  string               `json:"message,omitempty"`
	Category *repository.Category `json:"category"`
}

type DishesResponse struct {
	Success bool              `json:"success"`
	Dishes  []repository.Dish `json:"dishes"`
}

type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CreateRequest es el body de POST /categories.
type CreateRequest struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Icon         *string `json:"icon"`
	DisplayOrder int     `json:"display_order"`
}

// UpdateRequest es el body de PUT /categories/{id}; los campos ausentes no se tocan.
type UpdateRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Icon         *string `json:"icon"`
	DisplayOrder *int    `json:"display_order"`
	IsActive     *bool   `json:"is_active"`
}
