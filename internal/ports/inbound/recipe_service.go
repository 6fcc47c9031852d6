// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/recipemanager/server/internal/domain/nutrition"
)

// RecipeService defines the use cases for recipe management
// This is the primary port that HTTP handlers and other driving adapters will use
type RecipeService interface {
	// Commands - operations that modify state
	CreateRecipe(ctx context.Context, cmd CreateRecipeCommand) (*RecipeDTO, error)
	UpdateRecipe(ctx context.Context, cmd UpdateRecipeCommand) (*RecipeDTO, error)
	DeleteRecipe(ctx context.Context, recipeID, userID uuid.UUID, isAdmin bool) error

	// Images
	UploadImages(ctx context.Context, cmd UploadImagesCommand) ([]ImageDTO, error)
	DeleteImage(ctx context.Context, recipeID, imageID, userID uuid.UUID) error

	// Queries - operations that read state
	GetRecipe(ctx context.Context, recipeID uuid.UUID) (*RecipeDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID, params PaginationParams) (*RecipeList, error)
	ListPublic(ctx context.Context, query RecipeQuery) (*RecipeList, error)
	GetNutrition(ctx context.Context, recipeID uuid.UUID) (*NutritionDTO, error)
}

// Command objects for operations

// CreateRecipeCommand contains data for creating a new recipe
type CreateRecipeCommand struct {
	AuthorID     uuid.UUID
	Name         string                  `json:"name" validate:"required,not_blank,max=128"`
	Type         string                  `json:"type" validate:"required,recipe_type"`
	Description  string                  `json:"description" validate:"required,not_blank,max=2000"`
	Servings     int                     `json:"servings" validate:"required,min=1,max=100"`
	Image        string                  `json:"image" validate:"omitempty,max=512"`
	Instructions []string                `json:"instructions" validate:"max=100,dive,max=2000"`
	Ingredients  []RecipeIngredientInput `json:"ingredients" validate:"max=100,dive"`
}

// UpdateRecipeCommand replaces the editable fields of a recipe.
// Nil Ingredients or KeepImages leave the stored values untouched.
type UpdateRecipeCommand struct {
	RecipeID     uuid.UUID
	UserID       uuid.UUID
	Name         string                   `json:"name" validate:"required,not_blank,max=128"`
	Type         string                   `json:"type" validate:"required,recipe_type"`
	Description  string                   `json:"description" validate:"required,not_blank,max=2000"`
	Servings     int                      `json:"servings" validate:"required,min=1,max=100"`
	Image        *string                  `json:"image" validate:"omitempty,max=512"`
	Instructions []string                 `json:"instructions" validate:"max=100,dive,max=2000"`
	Ingredients  *[]RecipeIngredientInput `json:"ingredients" validate:"omitempty,max=100,dive"`
	KeepImages   *[]string                `json:"existing_images" validate:"omitempty,max=5"`
}

// RecipeIngredientInput references a catalogue ingredient
type RecipeIngredientInput struct {
	IngredientID       string  `json:"ingredient_id" validate:"required,uuid"`
	QuantityPerServing float64 `json:"quantity_per_serving" validate:"gt=0,lte=10000"`
}

// UploadImagesCommand carries the files of a multipart upload
type UploadImagesCommand struct {
	RecipeID uuid.UUID
	UserID   uuid.UUID
	Files    []ImageUpload
}

// ImageUpload is a single uploaded file
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Query objects

// RecipeQuery filters the public recipe listing
type RecipeQuery struct {
	Text       string
	Type       string
	Pagination PaginationParams
}

// PaginationParams for paginated queries
type PaginationParams struct {
	Page  int
	Limit int
}

// Response DTOs

// RecipeDTO is the data transfer object for recipes
type RecipeDTO struct {
	ID           uuid.UUID             `json:"id"`
	Name         string                `json:"name"`
	Type         string                `json:"type"`
	Description  string                `json:"description"`
	Image        string                `json:"image,omitempty"`
	AuthorID     uuid.UUID             `json:"author"`
	Source       string                `json:"source"`
	Instructions []string              `json:"instructions"`
	Servings     int                   `json:"servings"`
	Ingredients  []RecipeIngredientDTO `json:"ingredients"`
	Images       []ImageDTO            `json:"images"`
	Nutrition    *NutritionDTO         `json:"nutrition,omitempty"`
	CreatedAt    string                `json:"created_at"`
	UpdatedAt    string                `json:"updated_at"`
}

// RecipeIngredientDTO is an ingredient line of a recipe
type RecipeIngredientDTO struct {
	IngredientID       uuid.UUID       `json:"ingredient_id"`
	Name               string          `json:"name"`
	Unit               string          `json:"unit"`
	QuantityPerServing float64         `json:"quantity_per_serving"`
	PerUnit            nutrition.Facts `json:"per_unit"`
}

// NutritionDTO carries raw and display-rounded nutrition values
type NutritionDTO struct {
	Servings   int              `json:"servings"`
	Total      nutrition.Facts  `json:"total"`
	PerServing nutrition.Facts  `json:"per_serving"`
	Display    NutritionDisplay `json:"display"`
}

// NutritionDisplay holds the rounded figures shown to users
type NutritionDisplay struct {
	Total      nutrition.Facts `json:"total"`
	PerServing nutrition.Facts `json:"per_serving"`
}

// ImageDTO for image data
type ImageDTO struct {
	ID          uuid.UUID `json:"id"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size,omitempty"`
	Position    int       `json:"position"`
	IsCover     bool      `json:"is_cover"`
}

// RecipeList for paginated results
type RecipeList struct {
	Recipes    []RecipeDTO `json:"recipes"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}
