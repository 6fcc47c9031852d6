// Package validation validates application commands with go-playground
// validator and converts failures into API errors.
package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/recipemanager/server/internal/domain/ingredient"
	"github.com/recipemanager/server/internal/domain/recipe"
	"github.com/recipemanager/server/pkg/errors"
)

// Validator wraps a configured validator instance
type Validator struct {
	validate *validator.Validate
}

// New creates a validator that reports fields by their JSON names
func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Register custom validation rules
	_ = v.RegisterValidation("recipe_type", validateRecipeType)
	_ = v.RegisterValidation("ingredient_unit", validateIngredientUnit)
	_ = v.RegisterValidation("not_blank", validateNotBlank)

	return &Validator{validate: v}
}

// Struct validates s and returns a validation AppError on failure
func (v *Validator) Struct(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return errors.FromValidator(err)
	}
	return nil
}

func validateRecipeType(fl validator.FieldLevel) bool {
	return recipe.Type(fl.Field().String()).IsValid()
}

func validateIngredientUnit(fl validator.FieldLevel) bool {
	return ingredient.Unit(fl.Field().String()).IsValid()
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
