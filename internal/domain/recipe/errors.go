package recipe

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrNameRequired        = errors.New("recipe name is required")
	ErrNameTooLong         = fmt.Errorf("recipe name cannot exceed %d characters", MaxNameLength)
	ErrDescriptionRequired = errors.New("recipe description is required")
	ErrDescriptionTooLong  = fmt.Errorf("recipe description cannot exceed %d characters", MaxDescriptionLength)
	ErrInvalidType         = errors.New("invalid recipe type")
	ErrInvalidServings     = fmt.Errorf("servings must be between 1 and %d", MaxServings)
	ErrInvalidAuthor       = errors.New("recipe author is required")
	ErrIngredientRequired  = errors.New("ingredient reference is required")
	ErrInvalidQuantity     = fmt.Errorf("quantity per serving must be greater than 0 and at most %d", MaxQuantityPerServing)
	ErrDuplicateIngredient = errors.New("ingredient already added to recipe")
	ErrTooManyImages       = fmt.Errorf("a recipe can have at most %d images", MaxImages)
	ErrImageNotFound       = errors.New("image not found")
	ErrRecipeNotFound      = errors.New("recipe not found")
	ErrNotRecipeOwner      = errors.New("user is not the recipe owner")
)
