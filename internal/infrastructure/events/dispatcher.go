// Package events dispatches domain events to in-process handlers
package events

import (
	"context"
	"sync"

	"github.com/recipemanager/server/internal/domain/shared"
	"github.com/recipemanager/server/internal/ports/outbound"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Dispatcher implements outbound.EventPublisher. Handlers run
// synchronously in registration order; a failing handler is logged and
// does not stop the others.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]shared.EventHandler
	counter  metric.Int64Counter
	log      *zap.Logger
}

// NewDispatcher creates a new event dispatcher. Published events are
// counted on meter.
func NewDispatcher(meter metric.Meter, log *zap.Logger) (*Dispatcher, error) {
	counter, err := meter.Int64Counter("recipemanager.domain_events",
		metric.WithDescription("Number of published domain events"),
	)
	if err != nil {
		return nil, err
	}

	return &Dispatcher{
		handlers: make(map[string][]shared.EventHandler),
		counter:  counter,
		log:      log.Named("events"),
	}, nil
}

var _ outbound.EventPublisher = (*Dispatcher)(nil)

// Register registers an event handler
func (d *Dispatcher) Register(event string, handler shared.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers[event] = append(d.handlers[event], handler)
	d.log.Debug("Registered event handler", zap.String("event", event))
}

// Publish dispatches events to registered handlers
func (d *Dispatcher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		name := event.EventName()
		d.counter.Add(ctx, 1, metric.WithAttributes(attribute.String("event", name)))

		d.mu.RLock()
		handlers := d.handlers[name]
		d.mu.RUnlock()

		d.log.Debug("Dispatching event",
			zap.String("event", name),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.Int("handlers", len(handlers)))

		for _, handler := range handlers {
			if err := handler(event); err != nil {
				d.log.Error("Failed to handle event",
					zap.String("event", name),
					zap.String("aggregate_id", event.AggregateID().String()),
					zap.Error(err))
			}
		}
	}
	return nil
}
