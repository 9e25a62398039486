package domain

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mvaleed/catalog/internal/validation"
)

const (
	categoryNameMinLength        = 3
	categoryNameMaxLength        = 255
	categoryDescriptionMaxLength = 10_000
)

// Validation messages are part of the public contract; consumers match on them.
const (
	MsgCategoryNameEmpty          = "Name should not be empty or null"
	MsgCategoryNameTooShort       = "Name should be at leats 3 characters long"
	MsgCategoryNameTooLong        = "Name should be less or equal 255 characters"
	MsgCategoryDescriptionNull    = "Description should not be empty or null"
	MsgCategoryDescriptionTooLong = "Description should be less or equal 10.000 characters"
)

// Category classifies catalog content. It is the aggregate root; all
// mutations go through its methods so the invariants always hold.
type Category struct {
	id          uuid.UUID
	name        string
	description string
	isActive    bool
	createdAt   time.Time
}

type categoryOptions struct {
	isActive bool
	newID    func() uuid.UUID
	now      func() time.Time
}

// Option configures NewCategory.
type Option func(*categoryOptions)

// WithActive sets the initial status. Categories are active by default.
func WithActive(active bool) Option {
	return func(o *categoryOptions) { o.isActive = active }
}

// WithIDSource overrides the identifier generator (uuid.New by default).
func WithIDSource(fn func() uuid.UUID) Option {
	return func(o *categoryOptions) { o.newID = fn }
}

// WithClock overrides the creation time source (time.Now by default).
func WithClock(fn func() time.Time) Option {
	return func(o *categoryOptions) { o.now = fn }
}

// NewCategory validates name and description and creates an active category.
// A nil pointer means the value was not supplied.
func NewCategory(name, description *string, opts ...Option) (*Category, error) {
	o := categoryOptions{
		isActive: true,
		newID:    uuid.New,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if err := validateCategory(name, description); err != nil {
		return nil, err
	}

	return &Category{
		id:          o.newID(),
		name:        *name,
		description: *description,
		isActive:    o.isActive,
		createdAt:   o.now().UTC(),
	}, nil
}

// RestoreCategory rebuilds a persisted category. It does not validate or
// assign a new identity.
func RestoreCategory(id uuid.UUID, name, description string, isActive bool, createdAt time.Time) *Category {
	return &Category{
		id:          id,
		name:        name,
		description: description,
		isActive:    isActive,
		createdAt:   createdAt,
	}
}

func (c *Category) ID() uuid.UUID        { return c.id }
func (c *Category) Name() string         { return c.name }
func (c *Category) Description() string  { return c.description }
func (c *Category) IsActive() bool       { return c.isActive }
func (c *Category) CreatedAt() time.Time { return c.createdAt }

// Update replaces name and description. A nil description keeps the current
// one. On error the category is left unchanged.
func (c *Category) Update(name, description *string) error {
	if description == nil {
		current := c.description
		description = &current
	}

	if err := validateCategory(name, description); err != nil {
		return err
	}

	c.name = *name
	c.description = *description
	return nil
}

// Activate marks the category active. Idempotent.
func (c *Category) Activate() {
	c.isActive = true
}

// Deactivate marks the category inactive. Idempotent.
func (c *Category) Deactivate() {
	c.isActive = false
}

// validateCategory reports the first violated rule. Name checks run before
// description checks.
func validateCategory(name, description *string) error {
	if err := validation.NotNullOrEmpty(name, "Name"); err != nil {
		return validation.New("name", MsgCategoryNameEmpty)
	}
	switch n := utf8.RuneCountInString(*name); {
	case n < categoryNameMinLength:
		return validation.New("name", MsgCategoryNameTooShort)
	case n > categoryNameMaxLength:
		return validation.New("name", MsgCategoryNameTooLong)
	}

	if err := validation.NotNull(description, "Description"); err != nil {
		return validation.New("description", MsgCategoryDescriptionNull)
	}
	if utf8.RuneCountInString(*description) > categoryDescriptionMaxLength {
		return validation.New("description", MsgCategoryDescriptionTooLong)
	}

	return nil
}
