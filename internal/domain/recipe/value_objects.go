package recipe

import (
	"time"

	"github.com/google/uuid"
	"github.com/recipemanager/server/internal/domain/ingredient"
	"github.com/recipemanager/server/internal/domain/nutrition"
)

// Type is the meal category of a recipe
type Type string

const (
	TypeBreakfast Type = "Breakfast"
	TypeLunch     Type = "Lunch"
	TypeDinner    Type = "Dinner"
	TypeSnack     Type = "Snack"
	TypeDessert   Type = "Dessert"
	TypeDrink     Type = "Drink"
)

// Types lists every recipe type in display order
var Types = []Type{TypeBreakfast, TypeLunch, TypeDinner, TypeSnack, TypeDessert, TypeDrink}

// IsValid reports whether t is a known recipe type
func (t Type) IsValid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Source records where a recipe came from
type Source string

const (
	SourceUser      Source = "user"
	SourceTheMealDB Source = "themealdb"
)

// IngredientLine is one ingredient used by a recipe together with the
// quantity used per serving. PerUnit is a snapshot of the catalogue values
// taken when the recipe is loaded.
type IngredientLine struct {
	IngredientID       uuid.UUID
	Name               string
	Unit               ingredient.Unit
	QuantityPerServing float64
	PerUnit            nutrition.Facts
}

// Validate checks the line's invariants
func (l IngredientLine) Validate() error {
	if l.IngredientID == uuid.Nil {
		return ErrIngredientRequired
	}
	if l.QuantityPerServing <= 0 || l.QuantityPerServing > MaxQuantityPerServing {
		return ErrInvalidQuantity
	}
	return nil
}

// NutritionLine converts the line into an aggregation input
func (l IngredientLine) NutritionLine() nutrition.Line {
	return nutrition.Line{PerUnit: l.PerUnit, Quantity: l.QuantityPerServing}
}

// Image is an additional picture attached to a recipe
type Image struct {
	ID          uuid.UUID
	Key         string
	URL         string
	ContentType string
	Size        int64
	Position    int
	CreatedAt   time.Time
}
