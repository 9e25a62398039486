package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mvaleed/catalog/internal/domain"
	"github.com/mvaleed/catalog/internal/service"
	"github.com/mvaleed/catalog/internal/storage"
)

const defaultPageSize = 20

type categoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
}

func toCategoryResponse(c *domain.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID().String(),
		Name:        c.Name(),
		Description: c.Description(),
		IsActive:    c.IsActive(),
		CreatedAt:   c.CreatedAt().Format(time.RFC3339),
	}
}

// Pointers keep JSON null and a missing key apart from "".
type createCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type updateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description,omitempty"`
}

type listCategoriesQuery struct {
	Active string `validate:"omitempty,boolean"`
	Search string `validate:"max=255"`
	Offset int    `validate:"gte=0"`
	Limit  int    `validate:"gte=1,lte=100"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	category, err := s.categoryService.CreateCategory(r.Context(), service.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toCategoryResponse(category))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	filter, err := s.parseListQuery(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	categories, total, err := s.categoryService.ListCategories(r.Context(), filter)
	if err != nil {
		s.writeError(w, err)
		return
	}

	items := make([]categoryResponse, len(categories))
	for i := range categories {
		items[i] = toCategoryResponse(&categories[i])
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"categories": items,
		"total":      total,
		"offset":     filter.Offset,
		"limit":      filter.Limit,
	})
}

func (s *Server) parseListQuery(r *http.Request) (storage.CategoryFilter, error) {
	query := r.URL.Query()

	q := listCategoriesQuery{
		Active: query.Get("active"),
		Search: query.Get("search"),
		Limit:  defaultPageSize,
	}

	if raw := query.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return storage.CategoryFilter{}, domain.NewValidationError("offset", "offset must be an integer")
		}
		q.Offset = n
	}
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return storage.CategoryFilter{}, domain.NewValidationError("limit", "limit must be an integer")
		}
		q.Limit = n
	}

	if err := s.validate.Struct(q); err != nil {
		return storage.CategoryFilter{}, queryValidationError(err)
	}

	filter := storage.CategoryFilter{
		Search: q.Search,
		Offset: q.Offset,
		Limit:  q.Limit,
	}
	if q.Active != "" {
		// already checked by the boolean rule
		active, _ := strconv.ParseBool(q.Active)
		filter.Active = &active
	}

	return filter, nil
}

// queryValidationError reports the first failed rule.
func queryValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewValidationError("query", err.Error())
	}

	fe := verrs[0]
	field := fieldName(fe.Field())

	var msg string
	switch fe.Tag() {
	case "boolean":
		msg = fmt.Sprintf("%s must be true or false", field)
	case "gte":
		msg = fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte", "max":
		msg = fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		msg = fmt.Sprintf("%s is invalid", field)
	}

	return domain.NewValidationError(field, msg)
}

func fieldName(structField string) string {
	switch structField {
	case "Active":
		return "active"
	case "Search":
		return "search"
	case "Offset":
		return "offset"
	case "Limit":
		return "limit"
	}
	return structField
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	category, err := s.categoryService.GetCategory(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var req updateCategoryRequest
	if err := s.readJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	category, err := s.categoryService.UpdateCategory(r.Context(), id, service.UpdateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (s *Server) handleActivateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	category, err := s.categoryService.ActivateCategory(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (s *Server) handleDeactivateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	category, err := s.categoryService.DeactivateCategory(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.categoryService.DeleteCategory(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, domain.NewValidationError("id", "invalid UUID")
	}
	return id, nil
}
