// Package service contains the business logic layer.
// Services orchestrate operations across repositories and publish events.
// They do not know about HTTP, gRPC, or transport details.
package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mvaleed/catalog/internal/domain"
	"github.com/mvaleed/catalog/internal/event"
	"github.com/mvaleed/catalog/internal/storage"
)

// CategoryService handles category business operations.
type CategoryService struct {
	categories storage.CategoryRepository
	tx         storage.Transactor
	publisher  event.Publisher
	logger     *slog.Logger

	// applied to every NewCategory call; tests use it to pin IDs and time
	categoryOpts []domain.Option
}

func NewCategoryService(
	categories storage.CategoryRepository,
	tx storage.Transactor,
	publisher event.Publisher,
	logger *slog.Logger,
	categoryOpts ...domain.Option,
) *CategoryService {
	return &CategoryService{
		categories:   categories,
		tx:           tx,
		publisher:    publisher,
		logger:       logger,
		categoryOpts: categoryOpts,
	}
}

type CreateCategoryInput struct {
	Name        *string
	Description *string
	IsActive    *bool
}

// CreateCategory validates and stores a new category.
func (s *CategoryService) CreateCategory(ctx context.Context, input CreateCategoryInput) (*domain.Category, error) {
	opts := s.categoryOpts
	if input.IsActive != nil {
		opts = append(append([]domain.Option{}, opts...), domain.WithActive(*input.IsActive))
	}

	category, err := domain.NewCategory(input.Name, input.Description, opts...)
	if err != nil {
		if domain.IsValidationError(err) {
			s.logger.Debug("category rejected", slog.String("error", err.Error()))
		}
		return nil, err
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.CategoryCreatedEvent(category))

	return category, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *CategoryService) ListCategories(ctx context.Context, filter storage.CategoryFilter) ([]domain.Category, int64, error) {
	return s.categories.List(ctx, filter)
}

type UpdateCategoryInput struct {
	Name        *string
	Description *string // nil keeps the current description
}

// UpdateCategory renames a category and optionally replaces its description.
func (s *CategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, input UpdateCategoryInput) (*domain.Category, error) {
	category, err := s.modify(ctx, id, func(c *domain.Category) error {
		return c.Update(input.Name, input.Description)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.CategoryUpdatedEvent(category))

	return category, nil
}

// ActivateCategory marks a category active.
func (s *CategoryService) ActivateCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, err := s.modify(ctx, id, func(c *domain.Category) error {
		c.Activate()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.CategoryActivatedEvent(category))

	return category, nil
}

// DeactivateCategory marks a category inactive.
func (s *CategoryService) DeactivateCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	category, err := s.modify(ctx, id, func(c *domain.Category) error {
		c.Deactivate()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.CategoryDeactivatedEvent(category))

	return category, nil
}

// modify loads, changes and saves a category in one transaction.
func (s *CategoryService) modify(ctx context.Context, id uuid.UUID, change func(*domain.Category) error) (*domain.Category, error) {
	var category *domain.Category
	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		c, err := s.categories.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := change(c); err != nil {
			return err
		}
		if err := s.categories.Update(ctx, c); err != nil {
			return err
		}
		category = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, domain.CategoryDeletedEvent(id))

	return nil
}

// publish never fails the caller; the write already happened.
func (s *CategoryService) publish(ctx context.Context, e domain.Event) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Error("failed to publish event",
			slog.String("event_type", e.Type),
			slog.String("aggregate_id", e.AggregateID.String()),
			slog.String("error", err.Error()),
		)
	}
}
