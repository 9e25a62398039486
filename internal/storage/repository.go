// Package storage defines the repository interfaces for data persistence.
//
// These interfaces allow the business logic to remain independent of the
// storage implementation. PostgreSQL is the system of record; the Redis
// package decorates it with a read cache behind the same interface.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/mvaleed/catalog/internal/domain"
)

// CategoryRepository defines the operations for category persistence.
type CategoryRepository interface {
	// Create stores a new category. Returns ErrAlreadyExists if the ID is taken.
	Create(ctx context.Context, category *domain.Category) error

	// GetByID retrieves a category by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)

	// Update saves name, description and status of an existing category.
	// Returns ErrNotFound if the category doesn't exist.
	Update(ctx context.Context, category *domain.Category) error

	// Delete removes a category. Returns ErrNotFound if it doesn't exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// List retrieves categories with pagination and optional filtering,
	// along with the total number of matches.
	List(ctx context.Context, filter CategoryFilter) ([]domain.Category, int64, error)
}

// CategoryFilter contains options for filtering and paginating category lists.
type CategoryFilter struct {
	Active *bool
	Search string // Matches name, case-insensitive
	Offset int
	Limit  int
}

// Transactor provides transaction support for operations that need atomicity.
type Transactor interface {
	// WithTransaction executes fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn succeeds, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
