package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event that occurred.
// Events are immutable facts about something that happened.
type Event struct {
	ID          uuid.UUID
	Type        string
	Timestamp   time.Time
	AggregateID uuid.UUID
	Data        map[string]any
}

// Event type constants
const (
	EventCategoryCreated     = "category.created"
	EventCategoryUpdated     = "category.updated"
	EventCategoryActivated   = "category.activated"
	EventCategoryDeactivated = "category.deactivated"
	EventCategoryDeleted     = "category.deleted"
)

// NewEvent creates a new domain event.
func NewEvent(eventType string, aggregateID uuid.UUID, data map[string]any) Event {
	if data == nil {
		data = make(map[string]any)
	}
	return Event{
		ID:          uuid.New(),
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateID: aggregateID,
		Data:        data,
	}
}

func CategoryCreatedEvent(c *Category) Event {
	return NewEvent(EventCategoryCreated, c.ID(), map[string]any{
		"name":      c.Name(),
		"is_active": c.IsActive(),
	})
}

func CategoryUpdatedEvent(c *Category) Event {
	return NewEvent(EventCategoryUpdated, c.ID(), map[string]any{
		"name": c.Name(),
	})
}

func CategoryActivatedEvent(c *Category) Event {
	return NewEvent(EventCategoryActivated, c.ID(), nil)
}

func CategoryDeactivatedEvent(c *Category) Event {
	return NewEvent(EventCategoryDeactivated, c.ID(), nil)
}

func CategoryDeletedEvent(id uuid.UUID) Event {
	return NewEvent(EventCategoryDeleted, id, nil)
}
