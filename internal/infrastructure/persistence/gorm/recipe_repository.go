// Package gorm provides GORM-based repository implementations
package gorm

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/recipemanager/server/internal/domain/recipe"
	"github.com/recipemanager/server/internal/ports/outbound"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipeRepository implements the recipe repository interface using GORM
type RecipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository creates a new recipe repository
func NewRecipeRepository(db *gorm.DB) outbound.RecipeRepository {
	return &RecipeRepository{db: db}
}

// Create creates a new recipe together with its ingredient and image rows
func (r *RecipeRepository) Create(ctx context.Context, rec *recipe.Recipe) error {
	model := RecipeToModel(rec)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		return r.writeChildren(tx, model)
	})
}

// Update saves the recipe and replaces its ingredient and image rows
func (r *RecipeRepository) Update(ctx context.Context, rec *recipe.Recipe) error {
	model := RecipeToModel(rec)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&RecipeModel{ID: model.ID}).
			Select("name", "type", "description", "image", "source", "instructions", "servings", "updated_at").
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return recipe.ErrRecipeNotFound
		}

		if err := tx.Where("recipe_id = ?", model.ID).Delete(&RecipeIngredientModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", model.ID).Delete(&RecipeImageModel{}).Error; err != nil {
			return err
		}
		return r.writeChildren(tx, model)
	})
}

func (r *RecipeRepository) writeChildren(tx *gorm.DB, model *RecipeModel) error {
	if len(model.Ingredients) > 0 {
		if err := tx.Omit("Ingredient").Create(&model.Ingredients).Error; err != nil {
			return err
		}
	}
	if len(model.Images) > 0 {
		if err := tx.Create(&model.Images).Error; err != nil {
			return err
		}
	}
	return nil
}

// Delete deletes a recipe by ID
func (r *RecipeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&RecipeIngredientModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&RecipeImageModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&RecipeModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return recipe.ErrRecipeNotFound
		}
		return nil
	})
}

// FindByID finds a recipe by ID
func (r *RecipeRepository) FindByID(ctx context.Context, id uuid.UUID) (*recipe.Recipe, error) {
	var model RecipeModel

	result := r.withAssociations(r.db.WithContext(ctx)).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, recipe.ErrRecipeNotFound
		}
		return nil, result.Error
	}

	return ModelToRecipe(&model), nil
}

// FindByAuthor finds recipes by author ID
func (r *RecipeRepository) FindByAuthor(ctx context.Context, authorID uuid.UUID, offset, limit int) ([]*recipe.Recipe, int, error) {
	return r.Search(ctx, outbound.RecipeCriteria{
		AuthorID: &authorID,
		Offset:   offset,
		Limit:    limit,
	})
}

// Search searches for recipes based on criteria
func (r *RecipeRepository) Search(ctx context.Context, criteria outbound.RecipeCriteria) ([]*recipe.Recipe, int, error) {
	query := r.db.WithContext(ctx).Model(&RecipeModel{})

	// Apply filters
	if q := strings.TrimSpace(criteria.Query); q != "" {
		searchTerm := containsPattern(strings.ToLower(q))
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\'", searchTerm, searchTerm)
	}

	if criteria.Type != "" {
		query = query.Where("type = ?", string(criteria.Type))
	}

	if criteria.AuthorID != nil {
		query = query.Where("author_id = ?", *criteria.AuthorID)
	}

	// Count total
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []RecipeModel
	result := r.withAssociations(query).
		Order("created_at DESC").
		Order("id").
		Offset(criteria.Offset).
		Limit(criteria.Limit).
		Find(&models)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	recipes := make([]*recipe.Recipe, len(models))
	for i := range models {
		recipes[i] = ModelToRecipe(&models[i])
	}

	return recipes, int(total), nil
}

// ExistsByName reports whether a recipe with the given name exists,
// ignoring case
func (r *RecipeRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var count int64

	result := r.db.WithContext(ctx).Model(&RecipeModel{}).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}

	return count > 0, nil
}

// CountBySource counts recipes that came from the given source
func (r *RecipeRepository) CountBySource(ctx context.Context, source recipe.Source) (int64, error) {
	var count int64

	result := r.db.WithContext(ctx).Model(&RecipeModel{}).Where("source = ?", string(source)).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}

// DeleteBySource removes every recipe from the given source along with its
// ingredient and image rows
func (r *RecipeRepository) DeleteBySource(ctx context.Context, source recipe.Source) ([]uuid.UUID, error) {
	var ids []uuid.UUID

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&RecipeModel{}).Where("source = ?", string(source)).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		if err := tx.Where("recipe_id IN ?", ids).Delete(&RecipeIngredientModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id IN ?", ids).Delete(&RecipeImageModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&RecipeModel{}).Error
	})
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *RecipeRepository) withAssociations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		}).
		Preload("Ingredients.Ingredient").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position")
		})
}
