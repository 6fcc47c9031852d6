package recipe

import (
	"github.com/google/uuid"
	"github.com/recipemanager/server/internal/domain/shared"
)

// RecipeCreatedEvent is raised when a new recipe is created
type RecipeCreatedEvent struct {
	shared.BaseEvent
	AuthorID uuid.UUID
	Name     string
}

func (e RecipeCreatedEvent) EventName() string {
	return "recipe.created"
}

// RecipeUpdatedEvent is raised when a recipe's details or ingredients change
type RecipeUpdatedEvent struct {
	shared.BaseEvent
	Fields []string
}

func (e RecipeUpdatedEvent) EventName() string {
	return "recipe.updated"
}

// RecipeDeletedEvent is raised when a recipe is deleted
type RecipeDeletedEvent struct {
	shared.BaseEvent
	DeletedBy uuid.UUID
}

func (e RecipeDeletedEvent) EventName() string {
	return "recipe.deleted"
}

// RecipeImageAddedEvent is raised when an image is attached
type RecipeImageAddedEvent struct {
	shared.BaseEvent
	ImageID uuid.UUID
	Key     string
}

func (e RecipeImageAddedEvent) EventName() string {
	return "recipe.image.added"
}

// RecipeImageRemovedEvent is raised when an image is detached
type RecipeImageRemovedEvent struct {
	shared.BaseEvent
	ImageID uuid.UUID
	Key     string
}

func (e RecipeImageRemovedEvent) EventName() string {
	return "recipe.image.removed"
}
