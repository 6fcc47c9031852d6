// Package importer loads recipes and ingredients from TheMealDB into the
// local catalogue. It is an admin operation meant to run once; a forced run
// removes the previously imported data first.
package importer

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/recipemanager/server/internal/domain/ingredient"
	"github.com/recipemanager/server/internal/domain/recipe"
	"github.com/recipemanager/server/internal/domain/user"
	"github.com/recipemanager/server/internal/ports/inbound"
	"github.com/recipemanager/server/internal/ports/outbound"
	"github.com/recipemanager/server/pkg/errors"
	"go.uber.org/zap"
)

const (
	AuthorEmail      = "admin@themealdb.com"
	ImportedServings = 4
)

// DefaultCategories are the catalogue categories imported, in order
var DefaultCategories = []string{"Beef", "Chicken", "Dessert", "Lamb", "Pasta", "Pork", "Seafood", "Vegetarian", "Breakfast"}

var categoryTypes = map[string]recipe.Type{
	"Beef":       recipe.TypeDinner,
	"Chicken":    recipe.TypeDinner,
	"Dessert":    recipe.TypeDessert,
	"Lamb":       recipe.TypeDinner,
	"Pasta":      recipe.TypeDinner,
	"Pork":       recipe.TypeDinner,
	"Seafood":    recipe.TypeDinner,
	"Vegetarian": recipe.TypeLunch,
	"Breakfast":  recipe.TypeBreakfast,
	"Side":       recipe.TypeSnack,
}

// MapCategory converts a catalogue category into a recipe type
func MapCategory(category string) recipe.Type {
	if t, ok := categoryTypes[category]; ok {
		return t
	}
	return recipe.TypeDinner
}

// Options bounds the size of an import run
type Options struct {
	IngredientLimit  int
	MealsPerCategory int
	Categories       []string
}

// DefaultOptions returns the standard import limits
func DefaultOptions() Options {
	return Options{
		IngredientLimit:  100,
		MealsPerCategory: 6,
		Categories:       DefaultCategories,
	}
}

// Service implements the import use case
type Service struct {
	source      outbound.RecipeSource
	recipes     outbound.RecipeRepository
	ingredients outbound.IngredientRepository
	users       outbound.UserRepository
	events      outbound.EventPublisher
	cache       outbound.CacheRepository
	opts        Options
	running     atomic.Bool
	logger      *zap.Logger
}

// NewService creates an importer
func NewService(
	source outbound.RecipeSource,
	recipes outbound.RecipeRepository,
	ingredients outbound.IngredientRepository,
	users outbound.UserRepository,
	events outbound.EventPublisher,
	cache outbound.CacheRepository,
	opts Options,
	logger *zap.Logger,
) *Service {
	defaults := DefaultOptions()
	if opts.IngredientLimit <= 0 {
		opts.IngredientLimit = defaults.IngredientLimit
	}
	if opts.MealsPerCategory <= 0 {
		opts.MealsPerCategory = defaults.MealsPerCategory
	}
	if len(opts.Categories) == 0 {
		opts.Categories = defaults.Categories
	}

	return &Service{
		source:      source,
		recipes:     recipes,
		ingredients: ingredients,
		users:       users,
		events:      events,
		cache:       cache,
		opts:        opts,
		logger:      logger.Named("importer"),
	}
}

var _ inbound.ImportService = (*Service)(nil)

// run carries the counters of a single import
type run struct {
	result *inbound.ImportResult
}

func (r *run) fail(format string, args ...interface{}) {
	r.result.Errors = append(r.result.Errors, fmt.Sprintf(format, args...))
}

// Run performs an import. Individual rows that fail are recorded in the
// result and skipped.
func (s *Service) Run(ctx context.Context, cmd inbound.ImportCommand) (*inbound.ImportResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, errors.NewAppError(errors.CodeImportInProgress, "Import already running", "Wait for the current import to finish")
	}
	defer s.running.Store(false)

	s.logger.Info("Starting import", zap.Bool("force", cmd.Force))
	r := &run{result: &inbound.ImportResult{Errors: []string{}}}

	existing, err := s.recipes.CountBySource(ctx, recipe.SourceTheMealDB)
	if err != nil {
		return nil, errors.NewDatabaseError("count imported recipes", err)
	}
	if existing > 0 {
		if !cmd.Force {
			s.logger.Info("Import skipped, data already present", zap.Int64("recipes", existing))
			r.result.Message = "Import already completed. Use force=true to re-import with updated data."
			return r.result, nil
		}
		if err := s.cleanup(ctx, r.result); err != nil {
			s.logger.Error("Cleanup failed", zap.Error(err))
			r.result.Message = "Failed to cleanup existing data"
			r.fail("cleanup: %v", err)
			return r.result, nil
		}
	}

	author, err := s.ensureAuthor(ctx)
	if err != nil {
		return nil, err
	}

	s.importIngredients(ctx, r)
	s.importRecipes(ctx, r, author)

	if err := ctx.Err(); err != nil {
		r.result.Message = fmt.Sprintf("Import cancelled after %d recipes and %d ingredients", r.result.RecipesImported, r.result.IngredientsImported)
		s.logger.Warn("Import cancelled", zap.Error(err))
		return r.result, nil
	}

	r.result.Success = true
	r.result.Message = fmt.Sprintf("Successfully imported %d recipes and %d ingredients", r.result.RecipesImported, r.result.IngredientsImported)
	s.logger.Info("Import finished",
		zap.Int("recipes", r.result.RecipesImported),
		zap.Int("ingredients", r.result.IngredientsImported),
		zap.Int("errors", len(r.result.Errors)),
	)
	return r.result, nil
}

// cleanup removes imported recipes, the imported ingredients no user recipe
// references and the import author.
func (s *Service) cleanup(ctx context.Context, result *inbound.ImportResult) error {
	s.logger.Info("Cleaning up previously imported data")

	removed, err := s.recipes.DeleteBySource(ctx, recipe.SourceTheMealDB)
	if err != nil {
		return fmt.Errorf("delete imported recipes: %w", err)
	}
	result.RecipesRemoved = int64(len(removed))

	for _, id := range removed {
		if err := s.cache.Delete(ctx, outbound.RecipeCacheKey(id)); err != nil {
			s.logger.Warn("Recipe cache invalidation failed", zap.String("recipe_id", id.String()), zap.Error(err))
		}
	}

	removedIngredients, err := s.ingredients.DeleteUnusedBySource(ctx, ingredient.SourceTheMealDB)
	if err != nil {
		return fmt.Errorf("delete imported ingredients: %w", err)
	}
	result.IngredientsRemoved = removedIngredients

	author, err := s.users.FindByEmail(ctx, AuthorEmail)
	switch {
	case err == nil:
		if err := s.users.Delete(ctx, author.ID()); err != nil {
			return fmt.Errorf("delete import author: %w", err)
		}
	case !stderrors.Is(err, user.ErrUserNotFound):
		return fmt.Errorf("find import author: %w", err)
	}

	s.logger.Info("Cleanup finished",
		zap.Int("recipes", len(removed)),
		zap.Int64("ingredients", removedIngredients),
	)
	return nil
}

func (s *Service) ensureAuthor(ctx context.Context) (*user.User, error) {
	author, err := s.users.FindByEmail(ctx, AuthorEmail)
	if err == nil {
		return author, nil
	}
	if !stderrors.Is(err, user.ErrUserNotFound) {
		return nil, errors.NewDatabaseError("find import author", err)
	}

	// The account only owns imported recipes; nobody signs in with it.
	author, err = user.NewUser(AuthorEmail, "TheMealDB", "Admin", uuid.NewString())
	if err != nil {
		return nil, errors.Wrap(err, "failed to build import author")
	}
	if err := s.users.Create(ctx, author); err != nil {
		return nil, errors.NewDatabaseError("create import author", err)
	}
	s.logger.Info("Created import author", zap.String("user_id", author.ID().String()))
	return author, nil
}

func (s *Service) importIngredients(ctx context.Context, r *run) {
	items, err := s.source.ListIngredients(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch ingredients", zap.Error(err))
		r.fail("Ingredient import failed: %v", err)
		return
	}
	if len(items) > s.opts.IngredientLimit {
		items = items[:s.opts.IngredientLimit]
	}

	s.logger.Info("Importing ingredients", zap.Int("count", len(items)))
	for _, item := range items {
		if ctx.Err() != nil {
			return
		}
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		if _, err := s.findOrCreateIngredient(ctx, r, name, "Ingredient imported from TheMealDB"); err != nil {
			r.fail("Error importing ingredient %s: %v", name, err)
		}
	}
}

func (s *Service) findOrCreateIngredient(ctx context.Context, r *run, name, description string) (*ingredient.Ingredient, error) {
	candidate, err := ingredient.NewIngredient(name, ingredient.UnitGram, description, ingredient.DefaultFacts(name))
	if err != nil {
		return nil, err
	}
	candidate.MarkImported(ingredient.SourceTheMealDB)

	stored, created, err := s.ingredients.FindOrCreate(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if created {
		r.result.IngredientsImported++
	}
	return stored, nil
}

func (s *Service) importRecipes(ctx context.Context, r *run, author *user.User) {
	for _, category := range s.opts.Categories {
		if ctx.Err() != nil {
			return
		}

		refs, err := s.source.MealsByCategory(ctx, category)
		if err != nil {
			s.logger.Error("Failed to fetch category", zap.String("category", category), zap.Error(err))
			r.fail("Category %s import failed: %v", category, err)
			continue
		}
		if len(refs) > s.opts.MealsPerCategory {
			refs = refs[:s.opts.MealsPerCategory]
		}

		s.logger.Info("Importing category", zap.String("category", category), zap.Int("meals", len(refs)))
		for _, ref := range refs {
			if ctx.Err() != nil {
				return
			}
			if ref.ID == "" {
				continue
			}
			if err := s.importMeal(ctx, r, author, category, ref.ID); err != nil {
				r.fail("Error importing recipe %s: %v", ref.ID, err)
			}
		}
	}
}

func (s *Service) importMeal(ctx context.Context, r *run, author *user.User, category, mealID string) error {
	meal, err := s.source.LookupMeal(ctx, mealID)
	if err != nil {
		return err
	}
	if meal == nil {
		return nil
	}

	name := strings.TrimSpace(meal.Name)
	instructions := strings.TrimSpace(meal.Instructions)
	if name == "" || instructions == "" {
		return nil
	}

	exists, err := s.recipes.ExistsByName(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	mealCategory := meal.Category
	if mealCategory == "" {
		mealCategory = category
	}

	entity, err := recipe.NewRecipe(author.ID(), name, MapCategory(mealCategory), Describe(name, meal.Area, mealCategory), ImportedServings)
	if err != nil {
		return err
	}
	entity.MarkImported(recipe.SourceTheMealDB)
	entity.SetCoverImage(meal.Thumbnail)
	entity.SetInstructions(SplitInstructions(instructions))

	if err := entity.ReplaceIngredients(s.mealLines(ctx, r, name, meal.Ingredients)); err != nil {
		return err
	}

	if err := s.recipes.Create(ctx, entity); err != nil {
		return err
	}
	if err := s.events.Publish(ctx, entity.Events()...); err != nil {
		s.logger.Warn("Failed to publish import events", zap.Error(err))
	}

	r.result.RecipesImported++
	s.logger.Info("Imported recipe", zap.String("name", name))
	return nil
}

// mealLines resolves the ingredient/measure pairs of a meal. Pairs missing
// either part are skipped and repeated ingredients are merged.
func (s *Service) mealLines(ctx context.Context, r *run, recipeName string, pairs []outbound.SourceMealIngredient) []recipe.IngredientLine {
	var lines []recipe.IngredientLine
	index := make(map[uuid.UUID]int)

	for _, pair := range pairs {
		name := strings.TrimSpace(pair.Name)
		measure := strings.TrimSpace(pair.Measure)
		if name == "" || measure == "" {
			continue
		}

		ing, err := s.findOrCreateIngredient(ctx, r, name, "Ingredient from TheMealDB recipe: "+recipeName)
		if err != nil {
			r.fail("Error adding ingredient %s to recipe %s: %v", name, recipeName, err)
			continue
		}

		qty := ingredient.EstimateGrams(measure)
		if i, ok := index[ing.ID()]; ok {
			lines[i].QuantityPerServing += qty
			continue
		}
		index[ing.ID()] = len(lines)
		lines = append(lines, recipe.IngredientLine{
			IngredientID:       ing.ID(),
			Name:               ing.Name(),
			Unit:               ing.Unit(),
			QuantityPerServing: qty,
			PerUnit:            ing.PerUnit(),
		})
	}
	return lines
}

// Describe builds the description of an imported recipe
func Describe(name, area, category string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Delicious %s recipe imported from TheMealDB.", name)
	if area = strings.TrimSpace(area); area != "" {
		fmt.Fprintf(&b, " Traditional %s cuisine.", area)
	}
	fmt.Fprintf(&b, " Category: %s.", category)
	return b.String()
}

// SplitInstructions turns a block of text into non-empty steps
func SplitInstructions(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var steps []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			steps = append(steps, line)
		}
	}
	return steps
}
