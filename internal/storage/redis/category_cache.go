// Package redis provides a read-through cache in front of the category store.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/mvaleed/catalog/internal/domain"
	"github.com/mvaleed/catalog/internal/storage"
)

// Options configures the Redis client.
type Options struct {
	Addr        string
	Password    string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
}

// NewClient creates a Redis client from opts.
func NewClient(opts Options) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		MaxRetries:   opts.MaxRetries,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
	})
}

// CachedCategoryRepository caches GetByID results of the wrapped repository.
// Cache errors are logged and treated as misses.
type CachedCategoryRepository struct {
	next   storage.CategoryRepository
	client *goredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ storage.CategoryRepository = (*CachedCategoryRepository)(nil)

func NewCachedCategoryRepository(
	next storage.CategoryRepository,
	client *goredis.Client,
	ttl time.Duration,
	logger *slog.Logger,
) *CachedCategoryRepository {
	return &CachedCategoryRepository{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

type cachedCategory struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r *CachedCategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	return r.next.Create(ctx, c)
}

func (r *CachedCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	// Transactional reads must reach the store so the row gets locked.
	if storage.InTransaction(ctx) {
		return r.next.GetByID(ctx, id)
	}

	key := categoryKey(id)

	data, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		c, decErr := decodeCategory(data)
		if decErr == nil && c.ID() == id {
			return c, nil
		}
		r.logger.Warn("discarding bad cache entry", slog.String("key", key))
		r.invalidate(ctx, id)
	case !errors.Is(err, goredis.Nil):
		r.logger.Warn("redis GET failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	c, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.store(ctx, c)
	return c, nil
}

func (r *CachedCategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	if err := r.next.Update(ctx, c); err != nil {
		return err
	}
	r.invalidateAfterCommit(ctx, c.ID())
	return nil
}

func (r *CachedCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidateAfterCommit(ctx, id)
	return nil
}

// List is not cached; pages change with every write.
func (r *CachedCategoryRepository) List(ctx context.Context, filter storage.CategoryFilter) ([]domain.Category, int64, error) {
	return r.next.List(ctx, filter)
}

func (r *CachedCategoryRepository) store(ctx context.Context, c *domain.Category) {
	data, err := encodeCategory(c)
	if err != nil {
		r.logger.Warn("failed to encode category for cache", slog.String("error", err.Error()))
		return
	}
	if err := r.client.Set(ctx, categoryKey(c.ID()), data, r.ttl).Err(); err != nil {
		r.logger.Warn("redis SET failed", slog.String("error", err.Error()))
	}
}

func (r *CachedCategoryRepository) invalidate(ctx context.Context, id uuid.UUID) {
	if err := r.client.Del(ctx, categoryKey(id)).Err(); err != nil {
		r.logger.Warn("redis DEL failed", slog.String("error", err.Error()))
	}
}

// invalidateAfterCommit drops the key now and again once the transaction
// commits, since a concurrent read may refill it with the old row meanwhile.
func (r *CachedCategoryRepository) invalidateAfterCommit(ctx context.Context, id uuid.UUID) {
	r.invalidate(ctx, id)
	if storage.InTransaction(ctx) {
		storage.AfterCommit(ctx, func() {
			r.invalidate(context.WithoutCancel(ctx), id)
		})
	}
}

func categoryKey(id uuid.UUID) string {
	return fmt.Sprintf("category:%s", id)
}

func encodeCategory(c *domain.Category) ([]byte, error) {
	return json.Marshal(cachedCategory{
		ID:          c.ID(),
		Name:        c.Name(),
		Description: c.Description(),
		IsActive:    c.IsActive(),
		CreatedAt:   c.CreatedAt(),
	})
}

func decodeCategory(data []byte) (*domain.Category, error) {
	var m cachedCategory
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return domain.RestoreCategory(m.ID, m.Name, m.Description, m.IsActive, m.CreatedAt), nil
}
