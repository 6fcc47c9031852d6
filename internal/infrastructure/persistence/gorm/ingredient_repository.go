package gorm

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/recipemanager/server/internal/domain/ingredient"
	"github.com/recipemanager/server/internal/ports/outbound"
	"gorm.io/gorm"
)

// IngredientRepository implements the ingredient catalogue using GORM
type IngredientRepository struct {
	db *gorm.DB
}

// NewIngredientRepository creates a new ingredient repository
func NewIngredientRepository(db *gorm.DB) outbound.IngredientRepository {
	return &IngredientRepository{db: db}
}

// Create stores a new ingredient
func (r *IngredientRepository) Create(ctx context.Context, ing *ingredient.Ingredient) error {
	result := r.db.WithContext(ctx).Create(IngredientToModel(ing))
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ingredient.ErrDuplicateName
		}
		return result.Error
	}
	return nil
}

// Update saves an existing ingredient
func (r *IngredientRepository) Update(ctx context.Context, ing *ingredient.Ingredient) error {
	model := IngredientToModel(ing)

	result := r.db.WithContext(ctx).Model(&IngredientModel{ID: model.ID}).
		Select("*").
		Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return ingredient.ErrDuplicateName
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ingredient.ErrIngredientNotFound
	}
	return nil
}

// FindByID finds an ingredient by ID
func (r *IngredientRepository) FindByID(ctx context.Context, id uuid.UUID) (*ingredient.Ingredient, error) {
	var model IngredientModel

	result := r.db.WithContext(ctx).First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ingredient.ErrIngredientNotFound
		}
		return nil, result.Error
	}

	return ModelToIngredient(&model), nil
}

// FindByIDs loads the ingredients with the given IDs. Unknown IDs are
// skipped, so callers compare lengths to detect them.
func (r *IngredientRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*ingredient.Ingredient, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var models []IngredientModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}

	items := make([]*ingredient.Ingredient, len(models))
	for i := range models {
		items[i] = ModelToIngredient(&models[i])
	}
	return items, nil
}

// FindByName finds an ingredient by name, ignoring case
func (r *IngredientRepository) FindByName(ctx context.Context, name string) (*ingredient.Ingredient, error) {
	var model IngredientModel

	result := r.db.WithContext(ctx).First(&model, "name_key = ?", ingredient.NameKey(name))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ingredient.ErrIngredientNotFound
		}
		return nil, result.Error
	}

	return ModelToIngredient(&model), nil
}

// Search lists ingredients whose name contains query, ordered by name
func (r *IngredientRepository) Search(ctx context.Context, query string, offset, limit int) ([]*ingredient.Ingredient, int, error) {
	db := r.db.WithContext(ctx).Model(&IngredientModel{})

	if q := ingredient.NameKey(query); q != "" {
		db = db.Where("name_key LIKE ? ESCAPE '\\'", containsPattern(q))
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []IngredientModel
	result := db.Order("name_key").Offset(offset).Limit(limit).Find(&models)
	if result.Error != nil {
		return nil, 0, result.Error
	}

	items := make([]*ingredient.Ingredient, len(models))
	for i := range models {
		items[i] = ModelToIngredient(&models[i])
	}
	return items, int(total), nil
}

// FindOrCreate returns the ingredient stored under ing's name key, creating
// it when missing
func (r *IngredientRepository) FindOrCreate(ctx context.Context, ing *ingredient.Ingredient) (*ingredient.Ingredient, bool, error) {
	existing, err := r.FindByName(ctx, ing.Name())
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ingredient.ErrIngredientNotFound) {
		return nil, false, err
	}

	if err := r.Create(ctx, ing); err != nil {
		if errors.Is(err, ingredient.ErrDuplicateName) {
			// Lost a race with another writer
			existing, findErr := r.FindByName(ctx, ing.Name())
			if findErr != nil {
				return nil, false, findErr
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	return ing, true, nil
}

// DeleteUnusedBySource removes ingredients of the given source that no
// recipe references
func (r *IngredientRepository) DeleteUnusedBySource(ctx context.Context, source ingredient.Source) (int64, error) {
	db := r.db.WithContext(ctx)
	used := db.Model(&RecipeIngredientModel{}).Distinct("ingredient_id")

	result := db.
		Where("source = ?", string(source)).
		Where("id NOT IN (?)", used).
		Delete(&IngredientModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

