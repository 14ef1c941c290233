// Package category contiene el controller de /categories.
package category

import (
	"errors"
	"net/http"

	"github.com/dropDatabas3/consultdesk/internal/domain/repository"
	dto "github.com/dropDatabas3/consultdesk/internal/http/dto/category"
	httperrors "github.com/dropDatabas3/consultdesk/internal/http/errors"
	"github.com/dropDatabas3/consultdesk/internal/http/helpers"
	svc "github.com/dropDatabas3/consultdesk/internal/http/services/category"
)

type Controller struct {
	service svc.Service
}

func NewController(service svc.Service) *Controller {
	return &Controller{service: service}
}

// List maneja GET /categories?limit=
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	cats, total, err := c.service.List(r.Context(), helpers.QueryInt(r, "limit", 50, 500))
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.ListResponse{Success: true, Categories: cats, Total: total})
}

// Get maneja GET /categories/{id}
func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "id")
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	cat, err := c.service.Get(r.Context(), id)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.CategoryResponse{Success: true, Category: cat})
}

// Dishes maneja GET /categories/{id}/dishes
func (c *Controller) Dishes(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "id")
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	dishes, err := c.service.Dishes(r.Context(), id)
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.DishesResponse{Success: true, Dishes: dishes})
}

// Create maneja POST /categories
func (c *Controller) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	cat, err := c.service.Create(r.Context(), repository.CreateCategoryInput{
		Name:         req.Name,
		Description:  req.Description,
		Icon:         req.Icon,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, dto.CategoryResponse{
		Success:  true,
		Message:  "Catégorie créée avec succès",
		Category: cat,
	})
}

// Update maneja PUT /categories/{id}
func (c *Controller) Update(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "id")
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	var req dto.UpdateRequest
	if err := helpers.ReadJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}
	cat, err := c.service.Update(r.Context(), id, repository.UpdateCategoryInput{
		Name:         req.Name,
		Description:  req.Description,
		Icon:         req.Icon,
		DisplayOrder: req.DisplayOrder,
		IsActive:     req.IsActive,
	})
	if err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.CategoryResponse{
		Success:  true,
		Message:  "Catégorie mise à jour avec succès",
		Category: cat,
	})
}

// Delete maneja DELETE /categories/{id}
func (c *Controller) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := helpers.PathID(r, "id")
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	if err := c.service.Delete(r.Context(), id); err != nil {
		httperrors.WriteError(w, mapError(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, dto.DeleteResponse{Success: true, Message: "Catégorie supprimée avec succès"})
}

func mapError(err error) error {
	switch {
	case errors.Is(err, svc.ErrNameRequired):
		return httperrors.ErrMissingFields.WithDetail(err.Error())
	case errors.Is(err, svc.ErrInUse):
		return httperrors.ErrBadRequest.WithDetail("impossible de supprimer une catégorie contenant des plats")
	case errors.Is(err, svc.ErrNotFound):
		return httperrors.ErrNotFound.WithDetail(err.Error())
	}
	return err
}
