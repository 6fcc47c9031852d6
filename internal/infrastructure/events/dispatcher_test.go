package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/recipemanager/server/internal/domain/recipe"
	"github.com/recipemanager/server/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

func TestDispatcher(t *testing.T) {
	d, err := NewDispatcher(noop.NewMeterProvider().Meter("test"), zap.NewNop())
	require.NoError(t, err)

	var seen []string
	d.Register("recipe.created", func(event shared.DomainEvent) error {
		seen = append(seen, "first:"+event.EventName())
		return errors.New("handler failed")
	})
	d.Register("recipe.created", func(event shared.DomainEvent) error {
		seen = append(seen, "second:"+event.EventName())
		return nil
	})

	id := uuid.New()
	created := recipe.RecipeCreatedEvent{BaseEvent: shared.NewBaseEvent(id), Name: "Soup"}
	deleted := recipe.RecipeDeletedEvent{BaseEvent: shared.NewBaseEvent(id)}

	require.NoError(t, d.Publish(context.Background(), created, deleted))
	assert.Equal(t, []string{"first:recipe.created", "second:recipe.created"}, seen)
}

func TestDispatcherWithoutEvents(t *testing.T) {
	d, err := NewDispatcher(noop.NewMeterProvider().Meter("test"), zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, d.Publish(context.Background()))
}
