package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent represents an event that has occurred in the domain
type DomainEvent interface {
	EventName() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
}

// EventHandler handles domain events
type EventHandler func(event DomainEvent) error

// BaseEvent carries the fields every domain event shares
type BaseEvent struct {
	ID         uuid.UUID
	OccurredOn time.Time
}

// NewBaseEvent stamps an event for the given aggregate
func NewBaseEvent(aggregateID uuid.UUID) BaseEvent {
	return BaseEvent{ID: aggregateID, OccurredOn: time.Now().UTC()}
}

// OccurredAt returns when the event occurred
func (e BaseEvent) OccurredAt() time.Time { return e.OccurredOn }

// AggregateID returns the ID of the aggregate that raised the event
func (e BaseEvent) AggregateID() uuid.UUID { return e.ID }

// AggregateRoot is the base type for aggregate roots
type AggregateRoot struct {
	events []DomainEvent
}

// AddEvent adds a domain event to be dispatched
func (a *AggregateRoot) AddEvent(event DomainEvent) {
	a.events = append(a.events, event)
}

// Events returns and clears pending domain events
func (a *AggregateRoot) Events() []DomainEvent {
	events := a.events
	a.events = nil
	return events
}

// PendingEvents returns pending events without clearing them
func (a *AggregateRoot) PendingEvents() []DomainEvent {
	return a.events
}
