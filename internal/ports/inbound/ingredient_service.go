package inbound

import (
	"context"

	"github.com/google/uuid"
)

// IngredientService exposes the ingredient catalogue
type IngredientService interface {
	Search(ctx context.Context, query IngredientQuery) (*IngredientList, error)
	Create(ctx context.Context, cmd CreateIngredientCommand) (*IngredientDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*IngredientDTO, error)
}

// IngredientQuery is a name search; an empty Text lists everything
type IngredientQuery struct {
	Text  string
	Page  int
	Limit int
}

// CreateIngredientCommand adds an ingredient to the catalogue.
// Nutrient values are per unit.
type CreateIngredientCommand struct {
	Name        string  `json:"name" validate:"required,not_blank,max=64"`
	Unit        string  `json:"unit" validate:"omitempty,ingredient_unit"`
	Description string  `json:"description" validate:"max=500"`
	Calories    float64 `json:"calories_per_unit" validate:"gte=0,lte=10000"`
	Protein     float64 `json:"protein_per_unit" validate:"gte=0,lte=10000"`
	Fat         float64 `json:"fat_per_unit" validate:"gte=0,lte=10000"`
	Carbs       float64 `json:"carbs_per_unit" validate:"gte=0,lte=10000"`
	Sugar       float64 `json:"sugar_per_unit" validate:"gte=0,lte=10000"`
	Fiber       float64 `json:"fiber_per_unit" validate:"gte=0,lte=10000"`
	Sodium      float64 `json:"sodium_per_unit" validate:"gte=0,lte=10000"`
}

// IngredientDTO is the catalogue view of an ingredient
type IngredientDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Unit        string    `json:"unit"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Source      string    `json:"source"`
	Calories    float64   `json:"calories_per_unit"`
	Protein     float64   `json:"protein_per_unit"`
	Fat         float64   `json:"fat_per_unit"`
	Carbs       float64   `json:"carbs_per_unit"`
	Sugar       float64   `json:"sugar_per_unit"`
	Fiber       float64   `json:"fiber_per_unit"`
	Sodium      float64   `json:"sodium_per_unit"`
}

// IngredientList for paginated results
type IngredientList struct {
	Ingredients []IngredientDTO `json:"ingredients"`
	Total       int             `json:"total"`
	Page        int             `json:"page"`
	Limit       int             `json:"limit"`
}
