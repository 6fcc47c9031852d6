// Package recipe provides the application layer for recipe management
// This implements the use cases defined in the inbound ports
package recipe

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/recipemanager/server/internal/application/validation"
	"github.com/recipemanager/server/internal/domain/ingredient"
	"github.com/recipemanager/server/internal/domain/nutrition"
	"github.com/recipemanager/server/internal/domain/recipe"
	"github.com/recipemanager/server/internal/ports/inbound"
	"github.com/recipemanager/server/internal/ports/outbound"
	"github.com/recipemanager/server/pkg/errors"
	"go.uber.org/zap"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ImagePolicy limits what may be uploaded as a recipe image
type ImagePolicy struct {
	MaxBytes     int64
	AllowedTypes []string
}

// Options configures the recipe service
type Options struct {
	Images   ImagePolicy
	CacheTTL time.Duration
}

// DefaultOptions returns the limits used when none are configured
func DefaultOptions() Options {
	return Options{
		Images: ImagePolicy{
			MaxBytes:     5 << 20,
			AllowedTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
		},
		CacheTTL: 5 * time.Minute,
	}
}

// RecipeService implements the recipe use cases
type RecipeService struct {
	recipeRepo     outbound.RecipeRepository
	ingredientRepo outbound.IngredientRepository
	storage        outbound.StorageService
	cache          outbound.CacheRepository
	events         outbound.EventPublisher
	validator      *validation.Validator
	opts           Options
	logger         *zap.Logger
}

// NewRecipeService creates a new recipe service
func NewRecipeService(
	recipeRepo outbound.RecipeRepository,
	ingredientRepo outbound.IngredientRepository,
	storage outbound.StorageService,
	cache outbound.CacheRepository,
	events outbound.EventPublisher,
	validator *validation.Validator,
	opts Options,
	logger *zap.Logger,
) *RecipeService {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultOptions().CacheTTL
	}
	if opts.Images.MaxBytes <= 0 {
		opts.Images.MaxBytes = DefaultOptions().Images.MaxBytes
	}
	if len(opts.Images.AllowedTypes) == 0 {
		opts.Images.AllowedTypes = DefaultOptions().Images.AllowedTypes
	}

	return &RecipeService{
		recipeRepo:     recipeRepo,
		ingredientRepo: ingredientRepo,
		storage:        storage,
		cache:          cache,
		events:         events,
		validator:      validator,
		opts:           opts,
		logger:         logger.Named("recipe-service"),
	}
}

var _ inbound.RecipeService = (*RecipeService)(nil)

// CreateRecipe creates a new recipe
func (s *RecipeService) CreateRecipe(ctx context.Context, cmd inbound.CreateRecipeCommand) (*inbound.RecipeDTO, error) {
	if err := s.validator.Struct(cmd); err != nil {
		return nil, err
	}

	s.logger.Info("Creating new recipe",
		zap.String("name", cmd.Name),
		zap.String("author_id", cmd.AuthorID.String()),
	)

	lines, err := s.resolveIngredients(ctx, cmd.Ingredients)
	if err != nil {
		return nil, err
	}

	// Create domain entity
	recipeEntity, err := recipe.NewRecipe(cmd.AuthorID, cmd.Name, recipe.Type(cmd.Type), cmd.Description, cmd.Servings)
	if err != nil {
		return nil, mapDomainError(err)
	}
	recipeEntity.SetInstructions(cmd.Instructions)
	if cmd.Image != "" {
		recipeEntity.SetCoverImage(cmd.Image)
	}
	if err := recipeEntity.ReplaceIngredients(lines); err != nil {
		return nil, mapDomainError(err)
	}

	// Save to repository
	if err := s.recipeRepo.Create(ctx, recipeEntity); err != nil {
		return nil, errors.NewDatabaseError("create recipe", err)
	}

	s.publishEvents(ctx, recipeEntity)

	dto := s.entityToDTO(recipeEntity)

	s.logger.Info("Recipe created successfully",
		zap.String("recipe_id", dto.ID.String()),
		zap.String("name", dto.Name),
	)

	return dto, nil
}

// UpdateRecipe updates an existing recipe
func (s *RecipeService) UpdateRecipe(ctx context.Context, cmd inbound.UpdateRecipeCommand) (*inbound.RecipeDTO, error) {
	if err := s.validator.Struct(cmd); err != nil {
		return nil, err
	}

	s.logger.Info("Updating recipe",
		zap.String("recipe_id", cmd.RecipeID.String()),
		zap.String("user_id", cmd.UserID.String()),
	)

	recipeEntity, err := s.loadOwned(ctx, cmd.RecipeID, cmd.UserID, false, "update this recipe")
	if err != nil {
		return nil, err
	}

	if err := recipeEntity.UpdateDetails(cmd.Name, recipe.Type(cmd.Type), cmd.Description, cmd.Servings); err != nil {
		return nil, mapDomainError(err)
	}
	if cmd.Instructions != nil {
		recipeEntity.SetInstructions(cmd.Instructions)
	}
	if cmd.Ingredients != nil {
		lines, err := s.resolveIngredients(ctx, *cmd.Ingredients)
		if err != nil {
			return nil, err
		}
		if err := recipeEntity.ReplaceIngredients(lines); err != nil {
			return nil, mapDomainError(err)
		}
	}

	var dropped []recipe.Image
	if cmd.KeepImages != nil {
		dropped = recipeEntity.RetainImages(*cmd.KeepImages)
	}
	if cmd.Image != nil {
		recipeEntity.SetCoverImage(*cmd.Image)
	}

	// Save changes
	if err := s.recipeRepo.Update(ctx, recipeEntity); err != nil {
		return nil, errors.NewDatabaseError("update recipe", err)
	}

	s.deleteStoredImages(ctx, dropped)
	s.publishEvents(ctx, recipeEntity)
	s.invalidateRecipeCache(ctx, cmd.RecipeID)

	dto := s.entityToDTO(recipeEntity)

	s.logger.Info("Recipe updated successfully",
		zap.String("recipe_id", dto.ID.String()),
	)

	return dto, nil
}

// DeleteRecipe deletes a recipe. Admins may delete any recipe.
func (s *RecipeService) DeleteRecipe(ctx context.Context, recipeID, userID uuid.UUID, isAdmin bool) error {
	s.logger.Info("Deleting recipe",
		zap.String("recipe_id", recipeID.String()),
		zap.String("user_id", userID.String()),
	)

	recipeEntity, err := s.loadOwned(ctx, recipeID, userID, isAdmin, "delete this recipe")
	if err != nil {
		return err
	}

	if err := s.recipeRepo.Delete(ctx, recipeID); err != nil {
		return errors.NewDatabaseError("delete recipe", err)
	}

	recipeEntity.MarkDeleted(userID)
	s.deleteStoredImages(ctx, recipeEntity.Images())
	s.publishEvents(ctx, recipeEntity)
	s.invalidateRecipeCache(ctx, recipeID)

	s.logger.Info("Recipe deleted successfully",
		zap.String("recipe_id", recipeID.String()),
	)

	return nil
}

// UploadImages stores new images for a recipe. The whole batch is rejected
// before anything is stored when it would exceed the per-recipe cap.
func (s *RecipeService) UploadImages(ctx context.Context, cmd inbound.UploadImagesCommand) ([]inbound.ImageDTO, error) {
	if len(cmd.Files) == 0 {
		return nil, errors.NewBadRequestError("No images provided")
	}

	recipeEntity, err := s.loadOwned(ctx, cmd.RecipeID, cmd.UserID, false, "upload images to this recipe")
	if err != nil {
		return nil, err
	}

	current := len(recipeEntity.Images())
	if err := recipeEntity.CanAddImages(len(cmd.Files)); err != nil {
		return nil, errors.NewImageLimitError(recipe.MaxImages, current, len(cmd.Files))
	}

	for _, f := range cmd.Files {
		if err := s.checkUpload(f); err != nil {
			return nil, err
		}
	}

	var (
		uploaded []recipe.Image
		added    []recipe.Image
	)
	for _, f := range cmd.Files {
		key := imageKey(recipeEntity.ID(), f)
		url, err := s.storage.Upload(ctx, key, f.Body, f.Size, f.ContentType)
		if err != nil {
			s.deleteStoredImages(ctx, uploaded)
			return nil, errors.NewExternalServiceError("image storage", err)
		}

		img := recipe.Image{Key: key, URL: url, ContentType: f.ContentType, Size: f.Size}
		uploaded = append(uploaded, img)

		img, err = recipeEntity.AddImage(img)
		if err != nil {
			s.deleteStoredImages(ctx, uploaded)
			return nil, mapDomainError(err)
		}
		added = append(added, img)
	}

	if err := s.recipeRepo.Update(ctx, recipeEntity); err != nil {
		s.deleteStoredImages(ctx, uploaded)
		return nil, errors.NewDatabaseError("save recipe images", err)
	}

	s.publishEvents(ctx, recipeEntity)
	s.invalidateRecipeCache(ctx, recipeEntity.ID())

	s.logger.Info("Recipe images uploaded",
		zap.String("recipe_id", recipeEntity.ID().String()),
		zap.Int("count", len(added)),
	)

	dtos := make([]inbound.ImageDTO, 0, len(added))
	for _, img := range added {
		dtos = append(dtos, imageToDTO(img, recipeEntity.Image()))
	}
	return dtos, nil
}

// DeleteImage removes one image from a recipe
func (s *RecipeService) DeleteImage(ctx context.Context, recipeID, imageID, userID uuid.UUID) error {
	recipeEntity, err := s.loadOwned(ctx, recipeID, userID, false, "delete images of this recipe")
	if err != nil {
		return err
	}

	removed, err := recipeEntity.RemoveImage(imageID)
	if err != nil {
		if stderrors.Is(err, recipe.ErrImageNotFound) {
			return errors.NewImageNotFoundError(imageID.String())
		}
		return mapDomainError(err)
	}

	if err := s.recipeRepo.Update(ctx, recipeEntity); err != nil {
		return errors.NewDatabaseError("remove recipe image", err)
	}

	s.deleteStoredImages(ctx, []recipe.Image{removed})
	s.publishEvents(ctx, recipeEntity)
	s.invalidateRecipeCache(ctx, recipeID)
	return nil
}

// GetRecipe retrieves a recipe with its nutrition summary
func (s *RecipeService) GetRecipe(ctx context.Context, recipeID uuid.UUID) (*inbound.RecipeDTO, error) {
	if dto, ok := s.getCachedRecipe(ctx, recipeID); ok {
		return dto, nil
	}

	recipeEntity, err := s.findRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	dto := s.entityToDTO(recipeEntity)
	s.cacheRecipe(ctx, dto)
	return dto, nil
}

// GetNutrition returns only the nutrition summary of a recipe
func (s *RecipeService) GetNutrition(ctx context.Context, recipeID uuid.UUID) (*inbound.NutritionDTO, error) {
	dto, err := s.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if dto.Nutrition == nil {
		return nil, errors.NewInternalError("nutrition unavailable")
	}
	return dto.Nutrition, nil
}

// ListMine lists the recipes authored by a user
func (s *RecipeService) ListMine(ctx context.Context, userID uuid.UUID, params inbound.PaginationParams) (*inbound.RecipeList, error) {
	page, limit := normalizePage(params)

	recipes, total, err := s.recipeRepo.FindByAuthor(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, errors.NewDatabaseError("find user recipes", err)
	}

	return s.toList(recipes, total, page, limit), nil
}

// ListPublic lists every recipe, optionally filtered by type and name
func (s *RecipeService) ListPublic(ctx context.Context, query inbound.RecipeQuery) (*inbound.RecipeList, error) {
	page, limit := normalizePage(query.Pagination)

	criteria := outbound.RecipeCriteria{
		Query:  strings.TrimSpace(query.Text),
		Offset: (page - 1) * limit,
		Limit:  limit,
	}
	if query.Type != "" {
		t := recipe.Type(query.Type)
		if !t.IsValid() {
			return nil, errors.NewValidationError(recipe.ErrInvalidType.Error())
		}
		criteria.Type = t
	}

	recipes, total, err := s.recipeRepo.Search(ctx, criteria)
	if err != nil {
		return nil, errors.NewDatabaseError("search recipes", err)
	}

	return s.toList(recipes, total, page, limit), nil
}

// Helper methods

func (s *RecipeService) findRecipe(ctx context.Context, recipeID uuid.UUID) (*recipe.Recipe, error) {
	recipeEntity, err := s.recipeRepo.FindByID(ctx, recipeID)
	if err != nil {
		if stderrors.Is(err, recipe.ErrRecipeNotFound) {
			return nil, errors.NewRecipeNotFoundError(recipeID.String())
		}
		return nil, errors.NewDatabaseError("find recipe", err)
	}
	return recipeEntity, nil
}

func (s *RecipeService) loadOwned(ctx context.Context, recipeID, userID uuid.UUID, isAdmin bool, action string) (*recipe.Recipe, error) {
	recipeEntity, err := s.findRecipe(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if !recipeEntity.IsOwnedBy(userID) && !isAdmin {
		s.logger.Warn("Recipe access denied",
			zap.String("recipe_id", recipeID.String()),
			zap.String("user_id", userID.String()),
			zap.String("action", action),
		)
		return nil, errors.NewInsufficientPermissionsError(action)
	}
	return recipeEntity, nil
}

// resolveIngredients loads the referenced catalogue entries and snapshots
// their per-unit values into recipe lines.
func (s *RecipeService) resolveIngredients(ctx context.Context, inputs []inbound.RecipeIngredientInput) ([]recipe.IngredientLine, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(inputs))
	for _, in := range inputs {
		id, err := uuid.Parse(in.IngredientID)
		if err != nil {
			return nil, errors.NewValidationError(fmt.Sprintf("invalid ingredient id %q", in.IngredientID))
		}
		ids = append(ids, id)
	}

	found, err := s.ingredientRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, errors.NewDatabaseError("find ingredients", err)
	}
	byID := make(map[uuid.UUID]*ingredient.Ingredient, len(found))
	for _, ing := range found {
		byID[ing.ID()] = ing
	}

	lines := make([]recipe.IngredientLine, 0, len(inputs))
	for i, in := range inputs {
		ing, ok := byID[ids[i]]
		if !ok {
			return nil, errors.NewBadRequestError("Unknown ingredient").WithMetadata("ingredient_id", ids[i].String())
		}
		lines = append(lines, recipe.IngredientLine{
			IngredientID:       ing.ID(),
			Name:               ing.Name(),
			Unit:               ing.Unit(),
			QuantityPerServing: in.QuantityPerServing,
			PerUnit:            ing.PerUnit(),
		})
	}
	return lines, nil
}

func (s *RecipeService) checkUpload(f inbound.ImageUpload) error {
	contentType := strings.ToLower(strings.TrimSpace(strings.SplitN(f.ContentType, ";", 2)[0]))
	allowed := false
	for _, t := range s.opts.Images.AllowedTypes {
		if t == contentType {
			allowed = true
			break
		}
	}
	if !allowed {
		return errors.NewUnsupportedMediaTypeError(f.ContentType)
	}
	if f.Size > s.opts.Images.MaxBytes {
		return errors.NewPayloadTooLargeError(s.opts.Images.MaxBytes)
	}
	return nil
}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func imageKey(recipeID uuid.UUID, f inbound.ImageUpload) string {
	ext := strings.ToLower(filepath.Ext(f.Filename))
	if known, ok := extensions[strings.ToLower(f.ContentType)]; ok {
		ext = known
	}
	return fmt.Sprintf("recipes/%s/%s%s", recipeID, uuid.NewString(), ext)
}

func (s *RecipeService) deleteStoredImages(ctx context.Context, images []recipe.Image) {
	for _, img := range images {
		if img.Key == "" {
			continue
		}
		if err := s.storage.Delete(ctx, img.Key); err != nil {
			s.logger.Warn("Failed to delete stored image",
				zap.String("key", img.Key),
				zap.Error(err),
			)
		}
	}
}

func (s *RecipeService) publishEvents(ctx context.Context, r *recipe.Recipe) {
	events := r.Events()
	if len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish events",
			zap.String("recipe_id", r.ID().String()),
			zap.Int("count", len(events)),
			zap.Error(err),
		)
	}
}

func (s *RecipeService) toList(recipes []*recipe.Recipe, total, page, limit int) *inbound.RecipeList {
	dtos := make([]inbound.RecipeDTO, 0, len(recipes))
	for _, r := range recipes {
		dtos = append(dtos, *s.entityToDTO(r))
	}

	return &inbound.RecipeList{
		Recipes:    dtos,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}
}

// entityToDTO converts domain entity to DTO
func (s *RecipeService) entityToDTO(entity *recipe.Recipe) *inbound.RecipeDTO {
	dto := &inbound.RecipeDTO{
		ID:           entity.ID(),
		Name:         entity.Name(),
		Type:         string(entity.Type()),
		Description:  entity.Description(),
		Image:        entity.Image(),
		AuthorID:     entity.AuthorID(),
		Source:       string(entity.Source()),
		Instructions: entity.Instructions(),
		Servings:     entity.Servings(),
		Ingredients:  make([]inbound.RecipeIngredientDTO, 0, len(entity.Ingredients())),
		Images:       make([]inbound.ImageDTO, 0, len(entity.Images())),
		CreatedAt:    entity.CreatedAt().Format(time.RFC3339),
		UpdatedAt:    entity.UpdatedAt().Format(time.RFC3339),
	}
	if dto.Instructions == nil {
		dto.Instructions = []string{}
	}

	for _, line := range entity.Ingredients() {
		dto.Ingredients = append(dto.Ingredients, inbound.RecipeIngredientDTO{
			IngredientID:       line.IngredientID,
			Name:               line.Name,
			Unit:               string(line.Unit),
			QuantityPerServing: line.QuantityPerServing,
			PerUnit:            line.PerUnit,
		})
	}
	for _, img := range entity.Images() {
		dto.Images = append(dto.Images, imageToDTO(img, entity.Image()))
	}

	summary, err := entity.Nutrition()
	if err != nil {
		s.logger.Error("Failed to compute nutrition",
			zap.String("recipe_id", entity.ID().String()),
			zap.Error(err),
		)
		return dto
	}
	dto.Nutrition = NutritionToDTO(summary)
	return dto
}

// NutritionToDTO exposes raw and rounded nutrition figures
func NutritionToDTO(summary nutrition.Summary) *inbound.NutritionDTO {
	return &inbound.NutritionDTO{
		Servings:   summary.Servings,
		Total:      summary.Total,
		PerServing: summary.PerServing,
		Display: inbound.NutritionDisplay{
			Total:      summary.Total.Rounded(),
			PerServing: summary.PerServing.Rounded(),
		},
	}
}

func imageToDTO(img recipe.Image, cover string) inbound.ImageDTO {
	return inbound.ImageDTO{
		ID:          img.ID,
		URL:         img.URL,
		ContentType: img.ContentType,
		Size:        img.Size,
		Position:    img.Position,
		IsCover:     img.URL != "" && img.URL == cover,
	}
}

func normalizePage(p inbound.PaginationParams) (int, int) {
	page, limit := p.Page, p.Limit
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// mapDomainError translates recipe invariant violations into client errors
func mapDomainError(err error) error {
	switch {
	case stderrors.Is(err, recipe.ErrRecipeNotFound):
		return errors.NewNotFoundError("recipe")
	case stderrors.Is(err, recipe.ErrTooManyImages):
		return errors.NewAppError(errors.CodeImageLimitReached, "Image limit reached", err.Error())
	case stderrors.Is(err, recipe.ErrNotRecipeOwner):
		return errors.NewForbiddenError(err.Error())
	default:
		return errors.NewValidationError(err.Error()).WithCause(err)
	}
}

// Cache operations

// getCachedRecipe retrieves a recipe from cache
func (s *RecipeService) getCachedRecipe(ctx context.Context, recipeID uuid.UUID) (*inbound.RecipeDTO, bool) {
	data, err := s.cache.Get(ctx, outbound.RecipeCacheKey(recipeID))
	if err != nil {
		if !stderrors.Is(err, outbound.ErrCacheMiss) {
			s.logger.Warn("Recipe cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var dto inbound.RecipeDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		s.logger.Warn("Discarding undecodable cache entry", zap.Error(err))
		return nil, false
	}
	return &dto, true
}

// cacheRecipe caches a recipe
func (s *RecipeService) cacheRecipe(ctx context.Context, dto *inbound.RecipeDTO) {
	data, err := json.Marshal(dto)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, outbound.RecipeCacheKey(dto.ID), data, s.opts.CacheTTL); err != nil {
		s.logger.Warn("Recipe cache write failed", zap.Error(err))
	}
}

// invalidateRecipeCache invalidates recipe cache
func (s *RecipeService) invalidateRecipeCache(ctx context.Context, recipeID uuid.UUID) {
	if err := s.cache.Delete(ctx, outbound.RecipeCacheKey(recipeID)); err != nil {
		s.logger.Warn("Recipe cache invalidation failed", zap.Error(err))
	}
}
