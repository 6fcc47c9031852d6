// Package ingredient provides the application layer for the ingredient catalogue
package ingredient

import (
	"context"
	stderrors "errors"

	"github.com/google/uuid"
	"github.com/recipemanager/server/internal/application/validation"
	"github.com/recipemanager/server/internal/domain/ingredient"
	"github.com/recipemanager/server/internal/domain/nutrition"
	"github.com/recipemanager/server/internal/ports/inbound"
	"github.com/recipemanager/server/internal/ports/outbound"
	"github.com/recipemanager/server/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// IngredientService implements the ingredient use cases
type IngredientService struct {
	repo      outbound.IngredientRepository
	validator *validation.Validator
	logger    *zap.Logger
}

// NewIngredientService creates a new ingredient service
func NewIngredientService(repo outbound.IngredientRepository, validator *validation.Validator, logger *zap.Logger) *IngredientService {
	return &IngredientService{
		repo:      repo,
		validator: validator,
		logger:    logger.Named("ingredient-service"),
	}
}

var _ inbound.IngredientService = (*IngredientService)(nil)

// Search finds ingredients whose name contains the query, ignoring case
func (s *IngredientService) Search(ctx context.Context, query inbound.IngredientQuery) (*inbound.IngredientList, error) {
	page, limit := normalizePage(query.Page, query.Limit)

	items, total, err := s.repo.Search(ctx, query.Text, (page-1)*limit, limit)
	if err != nil {
		return nil, errors.NewDatabaseError("search ingredients", err)
	}

	dtos := make([]inbound.IngredientDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, ToDTO(item))
	}

	return &inbound.IngredientList{
		Ingredients: dtos,
		Total:       total,
		Page:        page,
		Limit:       limit,
	}, nil
}

// Create adds a user-defined ingredient to the catalogue
func (s *IngredientService) Create(ctx context.Context, cmd inbound.CreateIngredientCommand) (*inbound.IngredientDTO, error) {
	if err := s.validator.Struct(cmd); err != nil {
		return nil, err
	}

	s.logger.Info("Creating ingredient", zap.String("name", cmd.Name))

	entity, err := ingredient.NewIngredient(cmd.Name, ingredient.Unit(cmd.Unit), cmd.Description, nutrition.Facts{
		Calories: cmd.Calories,
		Protein:  cmd.Protein,
		Fat:      cmd.Fat,
		Carbs:    cmd.Carbs,
		Sugar:    cmd.Sugar,
		Fiber:    cmd.Fiber,
		Sodium:   cmd.Sodium,
	})
	if err != nil {
		return nil, errors.NewValidationError(err.Error()).WithCause(err)
	}

	existing, err := s.repo.FindByName(ctx, entity.Name())
	switch {
	case err == nil && existing != nil:
		return nil, errors.NewIngredientExistsError(existing.Name())
	case err != nil && !stderrors.Is(err, ingredient.ErrIngredientNotFound):
		return nil, errors.NewDatabaseError("find ingredient", err)
	}

	if err := s.repo.Create(ctx, entity); err != nil {
		if stderrors.Is(err, ingredient.ErrDuplicateName) {
			return nil, errors.NewIngredientExistsError(entity.Name())
		}
		return nil, errors.NewDatabaseError("create ingredient", err)
	}

	s.logger.Info("Ingredient created",
		zap.String("ingredient_id", entity.ID().String()),
		zap.String("name", entity.Name()),
	)

	dto := ToDTO(entity)
	return &dto, nil
}

// Get returns a single ingredient
func (s *IngredientService) Get(ctx context.Context, id uuid.UUID) (*inbound.IngredientDTO, error) {
	entity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stderrors.Is(err, ingredient.ErrIngredientNotFound) {
			return nil, errors.NewIngredientNotFoundError(id.String())
		}
		return nil, errors.NewDatabaseError("find ingredient", err)
	}

	dto := ToDTO(entity)
	return &dto, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}
	return page, limit
}

// ToDTO converts an ingredient entity into its catalogue view
func ToDTO(i *ingredient.Ingredient) inbound.IngredientDTO {
	facts := i.PerUnit()
	return inbound.IngredientDTO{
		ID:          i.ID(),
		Name:        i.Name(),
		Unit:        string(i.Unit()),
		Description: i.Description(),
		Image:       i.Image(),
		Source:      string(i.Source()),
		Calories:    facts.Calories,
		Protein:     facts.Protein,
		Fat:         facts.Fat,
		Carbs:       facts.Carbs,
		Sugar:       facts.Sugar,
		Fiber:       facts.Fiber,
		Sodium:      facts.Sodium,
	}
}
