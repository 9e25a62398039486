package postgres

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mvaleed/catalog/internal/domain"
	"github.com/mvaleed/catalog/internal/storage"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// CategoryRepository implements storage.CategoryRepository using PostgreSQL.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

var _ storage.CategoryRepository = (*CategoryRepository)(nil)

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create stores a new category.
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	db := getDB(ctx, r.pool)

	_, err := db.Exec(ctx, `
		INSERT INTO categories (id, name, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)`,
		c.ID(),
		c.Name(),
		c.Description(),
		c.IsActive(),
		c.CreatedAt(),
	)

	return mapError(err)
}

// GetByID retrieves a category by ID.
func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	db := getDB(ctx, r.pool)

	query := `
		SELECT id, name, description, is_active, created_at
		FROM categories WHERE id = $1`
	if inTransaction(ctx) {
		// load-modify-save callers hold the row until commit
		query += " FOR UPDATE"
	}

	row := db.QueryRow(ctx, query, id)

	return scanCategory(row)
}

// Update saves the mutable fields. id and created_at are never written.
func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	db := getDB(ctx, r.pool)

	result, err := db.Exec(ctx, `
		UPDATE categories SET name = $2, description = $3, is_active = $4, updated_at = $5
		WHERE id = $1`,
		c.ID(),
		c.Name(),
		c.Description(),
		c.IsActive(),
		time.Now().UTC(),
	)
	if err != nil {
		return mapError(err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Delete removes a category.
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := getDB(ctx, r.pool)

	result, err := db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// List retrieves a page of categories, newest first.
func (r *CategoryRepository) List(ctx context.Context, filter storage.CategoryFilter) ([]domain.Category, int64, error) {
	db := getDB(ctx, r.pool)

	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	where, args := buildCategoryWhere(filter)

	var total int64
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM categories WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	n := len(args)
	listArgs := append(args, filter.Limit, filter.Offset)
	rows, err := db.Query(ctx, `
		SELECT id, name, description, is_active, created_at
		FROM categories WHERE `+where+`
		ORDER BY created_at DESC
		LIMIT $`+strconv.Itoa(n+1)+` OFFSET $`+strconv.Itoa(n+2), listArgs...)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, 0, err
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err)
	}

	return categories, total, nil
}

// likeEscaper makes search terms match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildCategoryWhere renders the filter as a parameterized WHERE clause.
func buildCategoryWhere(filter storage.CategoryFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if filter.Active != nil {
		args = append(args, *filter.Active)
		conds = append(conds, "is_active = $"+strconv.Itoa(len(args)))
	}

	if filter.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(filter.Search)+"%")
		conds = append(conds, "LOWER(name) LIKE LOWER($"+strconv.Itoa(len(args))+`) ESCAPE '\'`)
	}

	if len(conds) == 0 {
		return "1=1", args
	}
	return strings.Join(conds, " AND "), args
}

type scannable interface {
	Scan(dest ...any) error
}

func scanCategory(row scannable) (*domain.Category, error) {
	var (
		id          uuid.UUID
		name        string
		description string
		isActive    bool
		createdAt   time.Time
	)

	if err := row.Scan(&id, &name, &description, &isActive, &createdAt); err != nil {
		return nil, mapError(err)
	}

	return domain.RestoreCategory(id, name, description, isActive, createdAt.UTC()), nil
}
