// Package gorm provides mapping between domain entities and GORM models
package gorm

import (
	"strings"

	"github.com/recipemanager/server/internal/domain/contact"
	"github.com/recipemanager/server/internal/domain/ingredient"
	"github.com/recipemanager/server/internal/domain/nutrition"
	"github.com/recipemanager/server/internal/domain/recipe"
	"github.com/recipemanager/server/internal/domain/user"
	"gorm.io/datatypes"
)

// UserToModel converts a domain user to a GORM model
func UserToModel(u *user.User) *UserModel {
	return &UserModel{
		ID:           u.ID(),
		Email:        u.Email(),
		FirstName:    u.FirstName(),
		LastName:     u.LastName(),
		PasswordHash: u.PasswordHash(),
		Role:         string(u.Role()),
		CreatedAt:    u.CreatedAt(),
		UpdatedAt:    u.UpdatedAt(),
		LastLoginAt:  u.LastLoginAt(),
	}
}

// ModelToUser converts a GORM model to a domain user
func ModelToUser(model *UserModel) *user.User {
	return user.Rehydrate(
		model.ID,
		model.Email,
		model.FirstName,
		model.LastName,
		model.PasswordHash,
		user.Role(model.Role),
		model.CreatedAt,
		model.UpdatedAt,
		model.LastLoginAt,
	)
}

// IngredientToModel converts a catalogue ingredient to a GORM model
func IngredientToModel(i *ingredient.Ingredient) *IngredientModel {
	facts := i.PerUnit()
	return &IngredientModel{
		ID:              i.ID(),
		Name:            i.Name(),
		NameKey:         i.NameKey(),
		Unit:            string(i.Unit()),
		Description:     i.Description(),
		Image:           i.Image(),
		Source:          string(i.Source()),
		CaloriesPerUnit: facts.Calories,
		ProteinPerUnit:  facts.Protein,
		FatPerUnit:      facts.Fat,
		CarbsPerUnit:    facts.Carbs,
		SugarPerUnit:    facts.Sugar,
		FiberPerUnit:    facts.Fiber,
		SodiumPerUnit:   facts.Sodium,
		CreatedAt:       i.CreatedAt(),
		UpdatedAt:       i.UpdatedAt(),
	}
}

// ModelToIngredient converts a GORM model to a catalogue ingredient
func ModelToIngredient(model *IngredientModel) *ingredient.Ingredient {
	return ingredient.Rehydrate(
		model.ID,
		model.Name,
		ingredient.Unit(model.Unit),
		model.Description,
		model.facts(),
		model.Image,
		ingredient.Source(model.Source),
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func (m *IngredientModel) facts() nutrition.Facts {
	return nutrition.Facts{
		Calories: m.CaloriesPerUnit,
		Protein:  m.ProteinPerUnit,
		Fat:      m.FatPerUnit,
		Carbs:    m.CarbsPerUnit,
		Sugar:    m.SugarPerUnit,
		Fiber:    m.FiberPerUnit,
		Sodium:   m.SodiumPerUnit,
	}
}

// RecipeToModel converts a domain recipe to a GORM model. Ingredient rows
// carry only the join columns; the catalogue values are loaded on read.
func RecipeToModel(r *recipe.Recipe) *RecipeModel {
	s := r.Snapshot()
	steps := s.Instructions
	if steps == nil {
		steps = []string{}
	}

	model := &RecipeModel{
		ID:           s.ID,
		Name:         s.Name,
		Type:         string(s.Type),
		Description:  s.Description,
		Image:        s.Image,
		AuthorID:     s.AuthorID,
		Source:       string(s.Source),
		Instructions: datatypes.NewJSONSlice(steps),
		Servings:     s.Servings,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}

	model.Ingredients = make([]RecipeIngredientModel, len(s.Ingredients))
	for i, line := range s.Ingredients {
		model.Ingredients[i] = RecipeIngredientModel{
			RecipeID:           s.ID,
			IngredientID:       line.IngredientID,
			QuantityPerServing: line.QuantityPerServing,
			Position:           i,
		}
	}

	model.Images = make([]RecipeImageModel, len(s.Images))
	for i, img := range s.Images {
		model.Images[i] = RecipeImageModel{
			ID:          img.ID,
			RecipeID:    s.ID,
			Key:         img.Key,
			URL:         img.URL,
			ContentType: img.ContentType,
			Size:        img.Size,
			Position:    img.Position,
			CreatedAt:   img.CreatedAt,
		}
	}

	return model
}

// ModelToRecipe converts a GORM model to a domain recipe. The model must be
// loaded with its Ingredients.Ingredient and Images associations.
func ModelToRecipe(model *RecipeModel) *recipe.Recipe {
	lines := make([]recipe.IngredientLine, len(model.Ingredients))
	for i := range model.Ingredients {
		row := &model.Ingredients[i]
		lines[i] = recipe.IngredientLine{
			IngredientID:       row.IngredientID,
			Name:               row.Ingredient.Name,
			Unit:               ingredient.Unit(row.Ingredient.Unit),
			QuantityPerServing: row.QuantityPerServing,
			PerUnit:            row.Ingredient.facts(),
		}
	}

	images := make([]recipe.Image, len(model.Images))
	for i, img := range model.Images {
		images[i] = recipe.Image{
			ID:          img.ID,
			Key:         img.Key,
			URL:         img.URL,
			ContentType: img.ContentType,
			Size:        img.Size,
			Position:    img.Position,
			CreatedAt:   img.CreatedAt,
		}
	}

	return recipe.FromSnapshot(recipe.Snapshot{
		ID:           model.ID,
		Name:         model.Name,
		Type:         recipe.Type(model.Type),
		Description:  model.Description,
		Image:        model.Image,
		AuthorID:     model.AuthorID,
		Source:       recipe.Source(model.Source),
		Instructions: []string(model.Instructions),
		Servings:     model.Servings,
		Ingredients:  lines,
		Images:       images,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	})
}

// ContactToModel converts a contact submission to a GORM model
func ContactToModel(m *contact.Message) *ContactMessageModel {
	return &ContactMessageModel{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Message:   m.Body,
		CreatedAt: m.CreatedAt,
	}
}

// ModelToContact converts a GORM model to a contact submission
func ModelToContact(model *ContactMessageModel) *contact.Message {
	return &contact.Message{
		ID:        model.ID,
		Name:      model.Name,
		Email:     model.Email,
		Subject:   model.Subject,
		Body:      model.Message,
		CreatedAt: model.CreatedAt,
	}
}

// isUniqueViolation reports whether err is a unique constraint failure from
// either supported driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern builds a LIKE pattern matching q literally anywhere.
// Queries using it must declare ESCAPE '\'.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}
