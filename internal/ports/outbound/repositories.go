// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/recipemanager/server/internal/domain/contact"
	"github.com/recipemanager/server/internal/domain/ingredient"
	"github.com/recipemanager/server/internal/domain/recipe"
	"github.com/recipemanager/server/internal/domain/shared"
	"github.com/recipemanager/server/internal/domain/user"
)

// ErrCacheMiss is returned by CacheRepository.Get when the key is absent
var ErrCacheMiss = errors.New("cache miss")

// RecipeRepository defines the interface for recipe persistence
// This follows the Repository pattern for data access abstraction
type RecipeRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, recipe *recipe.Recipe) error
	Update(ctx context.Context, recipe *recipe.Recipe) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error)

	// Query operations
	FindByAuthor(ctx context.Context, authorID uuid.UUID, offset, limit int) ([]*recipe.Recipe, int, error)
	Search(ctx context.Context, criteria RecipeCriteria) ([]*recipe.Recipe, int, error)
	ExistsByName(ctx context.Context, name string) (bool, error)

	// Import bookkeeping
	CountBySource(ctx context.Context, source recipe.Source) (int64, error)
	// DeleteBySource returns the ids of the removed recipes
	DeleteBySource(ctx context.Context, source recipe.Source) ([]uuid.UUID, error)
}

// RecipeCriteria defines search parameters for recipes
type RecipeCriteria struct {
	Query    string
	Type     recipe.Type
	AuthorID *uuid.UUID
	Offset   int
	Limit    int
}

// IngredientRepository defines the interface for the ingredient catalogue
type IngredientRepository interface {
	Create(ctx context.Context, ing *ingredient.Ingredient) error
	Update(ctx context.Context, ing *ingredient.Ingredient) error
	FindByID(ctx context.Context, id uuid.UUID) (*ingredient.Ingredient, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*ingredient.Ingredient, error)
	FindByName(ctx context.Context, name string) (*ingredient.Ingredient, error)
	Search(ctx context.Context, query string, offset, limit int) ([]*ingredient.Ingredient, int, error)

	// FindOrCreate returns the stored ingredient with the same name key, or
	// stores ing. The bool reports whether a row was created.
	FindOrCreate(ctx context.Context, ing *ingredient.Ingredient) (*ingredient.Ingredient, bool, error)

	// DeleteUnusedBySource removes ingredients of the given source that no
	// recipe references.
	DeleteUnusedBySource(ctx context.Context, source ingredient.Source) (int64, error)
}

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *user.User) error
	Update(ctx context.Context, user *user.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// ContactRepository stores contact form submissions
type ContactRepository interface {
	Save(ctx context.Context, msg *contact.Message) error
	List(ctx context.Context, offset, limit int) ([]*contact.Message, int, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// RecipeCacheKey is the cache key of a recipe DTO
func RecipeCacheKey(recipeID uuid.UUID) string {
	return "recipe:" + recipeID.String()
}

// StorageService defines the interface for image storage
type StorageService interface {
	// Upload stores the object and returns the URL clients use to fetch it
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// RecipeSource is the external recipe catalogue used by the importer
type RecipeSource interface {
	ListIngredients(ctx context.Context) ([]SourceIngredient, error)
	MealsByCategory(ctx context.Context, category string) ([]SourceMealRef, error)
	LookupMeal(ctx context.Context, id string) (*SourceMeal, error)
}

// SourceIngredient is an ingredient listed by the external catalogue
type SourceIngredient struct {
	ID          string
	Name        string
	Description string
}

// SourceMealRef is a meal summary returned by a category listing
type SourceMealRef struct {
	ID        string
	Name      string
	Thumbnail string
}

// SourceMeal is a full meal record
type SourceMeal struct {
	ID           string
	Name         string
	Category     string
	Area         string
	Instructions string
	Thumbnail    string
	Ingredients  []SourceMealIngredient
}

// SourceMealIngredient pairs an ingredient name with its free-text measure
type SourceMealIngredient struct {
	Name    string
	Measure string
}

// TokenService issues and verifies access tokens
type TokenService interface {
	Issue(ctx context.Context, u *user.User) (*IssuedToken, error)
	Verify(ctx context.Context, token string) (*TokenClaims, error)
	Revoke(ctx context.Context, token string) error
}

// IssuedToken is a signed access token
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// TokenClaims are the verified contents of an access token
type TokenClaims struct {
	TokenID   string
	UserID    uuid.UUID
	Email     string
	Role      user.Role
	ExpiresAt time.Time
}

// Notifier delivers contact form submissions to the site operators
type Notifier interface {
	NotifyContact(ctx context.Context, msg *contact.Message) error
}

// EventPublisher dispatches domain events raised by aggregates
type EventPublisher interface {
	Publish(ctx context.Context, events ...shared.DomainEvent) error
}
