package recipe_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	recipesvc "github.com/recipemanager/server/internal/application/recipe"
	"github.com/recipemanager/server/internal/application/validation"
	"github.com/recipemanager/server/internal/domain/ingredient"
	"github.com/recipemanager/server/internal/domain/nutrition"
	"github.com/recipemanager/server/internal/domain/user"
	gormrepo "github.com/recipemanager/server/internal/infrastructure/persistence/gorm"
	"github.com/recipemanager/server/internal/infrastructure/persistence/memory"
	"github.com/recipemanager/server/internal/ports/inbound"
	"github.com/recipemanager/server/internal/ports/outbound"
	"github.com/recipemanager/server/pkg/errors"
	"github.com/recipemanager/server/test/testutils"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type RecipeServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	recipes     outbound.RecipeRepository
	ingredients outbound.IngredientRepository
	storage     *testutils.MockStorage
	cache       *memory.CacheRepository
	events      *testutils.RecordingPublisher
	service     *recipesvc.RecipeService
	factory     *testutils.Factory

	author *user.User
	rice   *ingredient.Ingredient
	butter *ingredient.Ingredient
}

func (s *RecipeServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	db := testutils.NewSQLiteDB(s.T())
	s.recipes = gormrepo.NewRecipeRepository(db)
	s.ingredients = gormrepo.NewIngredientRepository(db)
	users := gormrepo.NewUserRepository(db)

	s.storage = testutils.NewMockStorage()
	s.cache = memory.NewCacheRepository(time.Minute)
	s.events = &testutils.RecordingPublisher{}
	s.factory = testutils.NewFactory(s.T(), 3)

	s.service = recipesvc.NewRecipeService(
		s.recipes, s.ingredients, s.storage, s.cache, s.events, validation.New(),
		recipesvc.Options{
			Images:   recipesvc.ImagePolicy{MaxBytes: 1024, AllowedTypes: []string{"image/jpeg", "image/png"}},
			CacheTTL: time.Minute,
		},
		zap.NewNop(),
	)

	s.author = s.factory.User()
	s.Require().NoError(users.Create(s.ctx, s.author))

	s.rice = s.factory.NamedIngredient("Rice", nutrition.Facts{Calories: 3.6, Carbs: 0.8, Protein: 0.07})
	s.butter = s.factory.NamedIngredient("Butter", nutrition.Facts{Calories: 7.17, Fat: 0.81, Sodium: 6.43})
	s.Require().NoError(s.ingredients.Create(s.ctx, s.rice))
	s.Require().NoError(s.ingredients.Create(s.ctx, s.butter))
}

func (s *RecipeServiceTestSuite) TearDownTest() {
	s.cache.Close()
}

func (s *RecipeServiceTestSuite) createCommand() inbound.CreateRecipeCommand {
	return inbound.CreateRecipeCommand{
		AuthorID:     s.author.ID(),
		Name:         "Butter Rice",
		Type:         "Dinner",
		Description:  "Rice cooked with butter",
		Servings:     2,
		Instructions: []string{"Rinse rice", "Cook with butter"},
		Ingredients: []inbound.RecipeIngredientInput{
			{IngredientID: s.rice.ID().String(), QuantityPerServing: 100},
			{IngredientID: s.butter.ID().String(), QuantityPerServing: 10},
		},
	}
}

func (s *RecipeServiceTestSuite) create() *inbound.RecipeDTO {
	dto, err := s.service.CreateRecipe(s.ctx, s.createCommand())
	s.Require().NoError(err)
	return dto
}

func (s *RecipeServiceTestSuite) upload(recipeID uuid.UUID, n int) ([]inbound.ImageDTO, error) {
	files := make([]inbound.ImageUpload, n)
	for i := range files {
		files[i] = inbound.ImageUpload{
			Filename:    "photo.jpg",
			ContentType: "image/jpeg",
			Size:        4,
			Body:        bytes.NewReader([]byte("jpeg")),
		}
	}
	return s.service.UploadImages(s.ctx, inbound.UploadImagesCommand{RecipeID: recipeID, UserID: s.author.ID(), Files: files})
}

func (s *RecipeServiceTestSuite) TestCreateRecipe() {
	dto := s.create()

	s.Equal("Butter Rice", dto.Name)
	s.Equal("Dinner", dto.Type)
	s.Equal(s.author.ID(), dto.AuthorID)
	s.Require().Len(dto.Ingredients, 2)
	s.Equal("Rice", dto.Ingredients[0].Name)
	s.Require().NotEmpty(s.events.Names())
	s.Equal("recipe.created", s.events.Names()[0])

	s.Require().NotNil(dto.Nutrition)
	n := dto.Nutrition
	s.Equal(2, n.Servings)
	s.InDelta(3.6*100+7.17*10, n.Total.Calories, 1e-9)
	s.InDelta((3.6*100+7.17*10)/2, n.PerServing.Calories, 1e-9)
	s.InDelta(0.81*10, n.Total.Fat, 1e-9)
	s.InDelta(64.3, n.Total.Sodium, 1e-9)
	s.Equal(float64(432), n.Display.Total.Calories)
	s.Equal(float64(64), n.Display.Total.Sodium)
	s.Equal(8.1, n.Display.Total.Fat)
}

func (s *RecipeServiceTestSuite) TestCreateRecipeRejectsBadInput() {
	s.Run("unknown ingredient", func() {
		cmd := s.createCommand()
		cmd.Ingredients = append(cmd.Ingredients, inbound.RecipeIngredientInput{IngredientID: uuid.NewString(), QuantityPerServing: 1})
		_, err := s.service.CreateRecipe(s.ctx, cmd)
		s.True(errors.Is(err, errors.CodeBadRequest))
	})

	s.Run("duplicate ingredient", func() {
		cmd := s.createCommand()
		cmd.Ingredients = append(cmd.Ingredients, cmd.Ingredients[0])
		_, err := s.service.CreateRecipe(s.ctx, cmd)
		s.True(errors.Is(err, errors.CodeValidationFailed))
	})

	s.Run("invalid type", func() {
		cmd := s.createCommand()
		cmd.Type = "Brunch"
		_, err := s.service.CreateRecipe(s.ctx, cmd)
		s.True(errors.Is(err, errors.CodeValidationFailed))
	})

	s.Run("zero servings", func() {
		cmd := s.createCommand()
		cmd.Servings = 0
		_, err := s.service.CreateRecipe(s.ctx, cmd)
		s.True(errors.Is(err, errors.CodeValidationFailed))
	})

	s.Run("zero quantity", func() {
		cmd := s.createCommand()
		cmd.Ingredients[0].QuantityPerServing = 0
		_, err := s.service.CreateRecipe(s.ctx, cmd)
		s.True(errors.Is(err, errors.CodeValidationFailed))
	})
}

func (s *RecipeServiceTestSuite) TestGetRecipeUsesCache() {
	created := s.create()

	first, err := s.service.GetRecipe(s.ctx, created.ID)
	s.Require().NoError(err)

	cached, err := s.cache.Get(s.ctx, "recipe:"+created.ID.String())
	s.Require().NoError(err)
	s.Contains(string(cached), "Butter Rice")

	second, err := s.service.GetRecipe(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(first.Name, second.Name)
	s.Equal(first.Nutrition.Total, second.Nutrition.Total)

	nutritionDTO, err := s.service.GetNutrition(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(first.Nutrition.PerServing, nutritionDTO.PerServing)

	_, err = s.service.GetRecipe(s.ctx, uuid.New())
	s.True(errors.Is(err, errors.CodeRecipeNotFound))
}

func (s *RecipeServiceTestSuite) TestUpdateRecipe() {
	created := s.create()
	_, err := s.service.GetRecipe(s.ctx, created.ID)
	s.Require().NoError(err)

	only := []inbound.RecipeIngredientInput{{IngredientID: s.rice.ID().String(), QuantityPerServing: 50}}
	updated, err := s.service.UpdateRecipe(s.ctx, inbound.UpdateRecipeCommand{
		RecipeID:    created.ID,
		UserID:      s.author.ID(),
		Name:        "Plain Rice",
		Type:        "Lunch",
		Description: "Just rice",
		Servings:    1,
		Ingredients: &only,
	})
	s.Require().NoError(err)
	s.Equal("Plain Rice", updated.Name)
	s.Require().Len(updated.Ingredients, 1)
	s.InDelta(180, updated.Nutrition.Total.Calories, 1e-9)
	s.Contains(s.events.Names(), "recipe.updated")

	fetched, err := s.service.GetRecipe(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("Plain Rice", fetched.Name, "update must invalidate the cached copy")
}

func (s *RecipeServiceTestSuite) TestUpdateKeepsIngredientsWhenOmitted() {
	created := s.create()

	updated, err := s.service.UpdateRecipe(s.ctx, inbound.UpdateRecipeCommand{
		RecipeID:    created.ID,
		UserID:      s.author.ID(),
		Name:        created.Name,
		Type:        "Snack",
		Description: created.Description,
		Servings:    4,
	})
	s.Require().NoError(err)
	s.Len(updated.Ingredients, 2)
	s.Equal(created.Instructions, updated.Instructions)
	s.InDelta(created.Nutrition.Total.Calories, updated.Nutrition.Total.Calories, 1e-9)
	s.InDelta(created.Nutrition.Total.Calories/4, updated.Nutrition.PerServing.Calories, 1e-9)
}

func (s *RecipeServiceTestSuite) TestOnlyOwnerMayModify() {
	created := s.create()
	stranger := uuid.New()

	_, err := s.service.UpdateRecipe(s.ctx, inbound.UpdateRecipeCommand{
		RecipeID: created.ID, UserID: stranger, Name: "x", Type: "Lunch", Description: "x", Servings: 1,
	})
	s.True(errors.Is(err, errors.CodeInsufficientPermissions))

	s.True(errors.Is(s.service.DeleteRecipe(s.ctx, created.ID, stranger, false), errors.CodeInsufficientPermissions))
	s.NoError(s.service.DeleteRecipe(s.ctx, created.ID, stranger, true), "admins may delete any recipe")
}

func (s *RecipeServiceTestSuite) TestDeleteRecipeRemovesImages() {
	created := s.create()
	_, err := s.upload(created.ID, 2)
	s.Require().NoError(err)
	s.Len(s.storage.Keys(), 2)

	s.Require().NoError(s.service.DeleteRecipe(s.ctx, created.ID, s.author.ID(), false))

	s.Empty(s.storage.Keys())
	s.Len(s.storage.Deleted(), 2)
	s.Contains(s.events.Names(), "recipe.deleted")

	_, err = s.service.GetRecipe(s.ctx, created.ID)
	s.True(errors.Is(err, errors.CodeRecipeNotFound))
}

func (s *RecipeServiceTestSuite) TestUploadImages() {
	created := s.create()

	images, err := s.upload(created.ID, 3)
	s.Require().NoError(err)
	s.Require().Len(images, 3)
	s.True(images[0].IsCover)
	s.False(images[1].IsCover)
	for i, img := range images {
		s.Equal(i, img.Position)
		s.True(strings.HasPrefix(img.URL, "/uploads/recipes/"+created.ID.String()+"/"))
		s.True(strings.HasSuffix(img.URL, ".jpg"))
	}

	fetched, err := s.service.GetRecipe(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Len(fetched.Images, 3)
	s.Equal(images[0].URL, fetched.Image)
}

func (s *RecipeServiceTestSuite) TestUploadImagesEnforcesLimit() {
	created := s.create()
	_, err := s.upload(created.ID, 4)
	s.Require().NoError(err)

	_, err = s.upload(created.ID, 2)
	appErr, ok := errors.As(err)
	s.Require().True(ok)
	s.Equal(errors.CodeImageLimitReached, appErr.Code)
	s.Len(s.storage.Keys(), 4, "a rejected batch must not store anything")

	_, err = s.upload(created.ID, 1)
	s.Require().NoError(err)

	_, err = s.upload(created.ID, 1)
	s.True(errors.Is(err, errors.CodeImageLimitReached))
}

func (s *RecipeServiceTestSuite) TestUploadImagesChecksFiles() {
	created := s.create()

	_, err := s.service.UploadImages(s.ctx, inbound.UploadImagesCommand{RecipeID: created.ID, UserID: s.author.ID()})
	s.True(errors.Is(err, errors.CodeBadRequest))

	_, err = s.service.UploadImages(s.ctx, inbound.UploadImagesCommand{
		RecipeID: created.ID,
		UserID:   s.author.ID(),
		Files:    []inbound.ImageUpload{{Filename: "doc.pdf", ContentType: "application/pdf", Size: 3, Body: strings.NewReader("pdf")}},
	})
	s.True(errors.Is(err, errors.CodeUnsupportedMediaType))

	_, err = s.service.UploadImages(s.ctx, inbound.UploadImagesCommand{
		RecipeID: created.ID,
		UserID:   s.author.ID(),
		Files:    []inbound.ImageUpload{{Filename: "big.png", ContentType: "image/png", Size: 2048, Body: strings.NewReader("png")}},
	})
	s.True(errors.Is(err, errors.CodePayloadTooLarge))

	_, err = s.service.UploadImages(s.ctx, inbound.UploadImagesCommand{
		RecipeID: created.ID,
		UserID:   uuid.New(),
		Files:    []inbound.ImageUpload{{Filename: "a.png", ContentType: "image/png", Size: 3, Body: strings.NewReader("png")}},
	})
	s.True(errors.Is(err, errors.CodeInsufficientPermissions))
	s.Empty(s.storage.Keys())
}

func (s *RecipeServiceTestSuite) TestUploadFailureRollsBack() {
	created := s.create()
	s.storage.FailUpload = context.DeadlineExceeded

	_, err := s.upload(created.ID, 2)
	s.True(errors.Is(err, errors.CodeExternalServiceError))

	fetched, err := s.service.GetRecipe(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Empty(fetched.Images)
}

func (s *RecipeServiceTestSuite) TestDeleteImage() {
	created := s.create()
	images, err := s.upload(created.ID, 2)
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteImage(s.ctx, created.ID, images[0].ID, s.author.ID()))

	fetched, err := s.service.GetRecipe(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Require().Len(fetched.Images, 1)
	s.Equal(images[1].ID, fetched.Images[0].ID)
	s.Equal(0, fetched.Images[0].Position)
	s.Equal(images[1].URL, fetched.Image, "cover moves to the next image")
	s.Len(s.storage.Deleted(), 1)

	err = s.service.DeleteImage(s.ctx, created.ID, images[0].ID, s.author.ID())
	s.True(errors.Is(err, errors.CodeImageNotFound))
}

func (s *RecipeServiceTestSuite) TestUpdateDropsImagesNotKept() {
	created := s.create()
	images, err := s.upload(created.ID, 3)
	s.Require().NoError(err)

	keep := []string{images[2].URL}
	updated, err := s.service.UpdateRecipe(s.ctx, inbound.UpdateRecipeCommand{
		RecipeID:    created.ID,
		UserID:      s.author.ID(),
		Name:        created.Name,
		Type:        created.Type,
		Description: created.Description,
		Servings:    created.Servings,
		KeepImages:  &keep,
	})
	s.Require().NoError(err)
	s.Require().Len(updated.Images, 1)
	s.Equal(images[2].URL, updated.Images[0].URL)
	s.Len(s.storage.Deleted(), 2)
}

func (s *RecipeServiceTestSuite) TestListMine() {
	s.create()
	s.create()

	list, err := s.service.ListMine(s.ctx, s.author.ID(), inbound.PaginationParams{Page: 1, Limit: 1})
	s.Require().NoError(err)
	s.Equal(2, list.Total)
	s.Equal(2, list.TotalPages)
	s.Len(list.Recipes, 1)

	list, err = s.service.ListMine(s.ctx, uuid.New(), inbound.PaginationParams{})
	s.Require().NoError(err)
	s.Zero(list.Total)
	s.Equal(recipesvc.DefaultPageSize, list.Limit)
}

func (s *RecipeServiceTestSuite) TestListPublicFilters() {
	s.create()
	cmd := s.createCommand()
	cmd.Name = "Rice Pudding"
	cmd.Type = "Dessert"
	cmd.Description = "Sweet and creamy"
	_, err := s.service.CreateRecipe(s.ctx, cmd)
	s.Require().NoError(err)

	list, err := s.service.ListPublic(s.ctx, inbound.RecipeQuery{Type: "Dessert"})
	s.Require().NoError(err)
	s.Require().Equal(1, list.Total)
	s.Equal("Rice Pudding", list.Recipes[0].Name)

	list, err = s.service.ListPublic(s.ctx, inbound.RecipeQuery{Text: "butter"})
	s.Require().NoError(err)
	s.Require().Equal(1, list.Total)
	s.Equal("Butter Rice", list.Recipes[0].Name)

	list, err = s.service.ListPublic(s.ctx, inbound.RecipeQuery{})
	s.Require().NoError(err)
	s.Equal(2, list.Total)

	_, err = s.service.ListPublic(s.ctx, inbound.RecipeQuery{Type: "Brunch"})
	s.True(errors.Is(err, errors.CodeValidationFailed))
}

func TestRecipeServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RecipeServiceTestSuite))
}
