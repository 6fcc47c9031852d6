package container

import (
	domainrecipe "github.com/recipemanager/server/internal/domain/recipe"
	"github.com/recipemanager/server/internal/domain/shared"
	"github.com/recipemanager/server/internal/infrastructure/events"
	"github.com/recipemanager/server/internal/infrastructure/monitoring"
	"go.uber.org/zap"
)

// RegisterEventHandlers subscribes the in-process domain event handlers
func RegisterEventHandlers(d *events.Dispatcher, metrics *monitoring.Metrics, log *zap.Logger) {
	log = log.Named("event-handlers")

	d.Register(domainrecipe.RecipeCreatedEvent{}.EventName(), func(event shared.DomainEvent) error {
		metrics.RecordRecipeCreated()
		if e, ok := event.(domainrecipe.RecipeCreatedEvent); ok {
			log.Info("Recipe created",
				zap.String("recipe_id", e.AggregateID().String()),
				zap.String("author_id", e.AuthorID.String()),
				zap.String("name", e.Name),
			)
		}
		return nil
	})

	d.Register(domainrecipe.RecipeDeletedEvent{}.EventName(), func(event shared.DomainEvent) error {
		log.Info("Recipe deleted", zap.String("recipe_id", event.AggregateID().String()))
		return nil
	})
}
