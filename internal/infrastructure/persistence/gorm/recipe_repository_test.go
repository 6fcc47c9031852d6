package gorm_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/recipemanager/server/internal/domain/ingredient"
	"github.com/recipemanager/server/internal/domain/nutrition"
	"github.com/recipemanager/server/internal/domain/recipe"
	"github.com/recipemanager/server/internal/domain/user"
	gormrepo "github.com/recipemanager/server/internal/infrastructure/persistence/gorm"
	"github.com/recipemanager/server/internal/ports/outbound"
	"github.com/recipemanager/server/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type RecipeRepositoryTestSuite struct {
	suite.Suite
	ctx         context.Context
	db          *gorm.DB
	recipes     outbound.RecipeRepository
	ingredients outbound.IngredientRepository
	users       outbound.UserRepository
	factory     *testutils.Factory
	author      *user.User
}

func (s *RecipeRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testutils.NewSQLiteDB(s.T())
	s.recipes = gormrepo.NewRecipeRepository(s.db)
	s.ingredients = gormrepo.NewIngredientRepository(s.db)
	s.users = gormrepo.NewUserRepository(s.db)
	s.factory = testutils.NewFactory(s.T(), 42)

	s.author = s.factory.User()
	s.Require().NoError(s.users.Create(s.ctx, s.author))
}

func (s *RecipeRepositoryTestSuite) storeIngredient(name string, facts nutrition.Facts) *ingredient.Ingredient {
	ing := s.factory.NamedIngredient(name, facts)
	s.Require().NoError(s.ingredients.Create(s.ctx, ing))
	return ing
}

func (s *RecipeRepositoryTestSuite) TestCreateAndFindByID() {
	flour := s.storeIngredient("Flour", nutrition.Facts{Calories: 3.64, Carbs: 0.76})
	sugar := s.storeIngredient("Sugar", nutrition.Facts{Calories: 3.87, Sugar: 1})

	r := s.factory.Recipe(s.author.ID(), flour, sugar)
	_, err := r.AddImage(recipe.Image{Key: "recipes/a.jpg", URL: "/uploads/recipes/a.jpg", ContentType: "image/jpeg", Size: 10})
	s.Require().NoError(err)

	s.Require().NoError(s.recipes.Create(s.ctx, r))

	found, err := s.recipes.FindByID(s.ctx, r.ID())
	s.Require().NoError(err)

	s.Equal(r.Name(), found.Name())
	s.Equal(r.Servings(), found.Servings())
	s.Equal(r.Instructions(), found.Instructions())
	s.Equal(recipe.SourceUser, found.Source())
	s.Equal("/uploads/recipes/a.jpg", found.Image())

	s.Require().Len(found.Ingredients(), 2)
	s.Equal("Flour", found.Ingredients()[0].Name)
	s.Equal("Sugar", found.Ingredients()[1].Name)
	s.InDelta(3.64, found.Ingredients()[0].PerUnit.Calories, 1e-9)

	s.Require().Len(found.Images(), 1)
	s.Equal("recipes/a.jpg", found.Images()[0].Key)

	want, err := r.Nutrition()
	s.Require().NoError(err)
	got, err := found.Nutrition()
	s.Require().NoError(err)
	s.InDelta(want.Total.Calories, got.Total.Calories, 1e-6)
	s.InDelta(want.PerServing.Sugar, got.PerServing.Sugar, 1e-6)
}

func (s *RecipeRepositoryTestSuite) TestFindByIDNotFound() {
	_, err := s.recipes.FindByID(s.ctx, uuid.New())
	s.ErrorIs(err, recipe.ErrRecipeNotFound)
}

func (s *RecipeRepositoryTestSuite) TestUpdateReplacesChildren() {
	flour := s.storeIngredient("Flour", nutrition.Facts{Calories: 3.64})
	milk := s.storeIngredient("Milk", nutrition.Facts{Calories: 0.42})

	r := s.factory.Recipe(s.author.ID(), flour)
	s.Require().NoError(s.recipes.Create(s.ctx, r))

	s.Require().NoError(r.UpdateDetails("Pancakes", recipe.TypeBreakfast, "Fluffy pancakes", 2))
	s.Require().NoError(r.ReplaceIngredients([]recipe.IngredientLine{testutils.LineFor(milk, 100)}))
	r.SetInstructions([]string{"Whisk", "Fry"})

	s.Require().NoError(s.recipes.Update(s.ctx, r))

	found, err := s.recipes.FindByID(s.ctx, r.ID())
	s.Require().NoError(err)
	s.Equal("Pancakes", found.Name())
	s.Equal(recipe.TypeBreakfast, found.Type())
	s.Equal(2, found.Servings())
	s.Equal([]string{"Whisk", "Fry"}, found.Instructions())
	s.Require().Len(found.Ingredients(), 1)
	s.Equal(milk.ID(), found.Ingredients()[0].IngredientID)
	s.InDelta(100, found.Ingredients()[0].QuantityPerServing, 1e-9)
	s.Equal(int64(1), testutils.CountRecords(s.T(), s.db, "recipe_ingredients"))
}

func (s *RecipeRepositoryTestSuite) TestUpdateMissingRecipe() {
	r := s.factory.Recipe(s.author.ID())
	s.ErrorIs(s.recipes.Update(s.ctx, r), recipe.ErrRecipeNotFound)
	s.Equal(int64(0), testutils.CountRecords(s.T(), s.db, "recipes"))
}

func (s *RecipeRepositoryTestSuite) TestDelete() {
	flour := s.storeIngredient("Flour", nutrition.Facts{Calories: 3.64})
	r := s.factory.Recipe(s.author.ID(), flour)
	s.Require().NoError(s.recipes.Create(s.ctx, r))

	s.Require().NoError(s.recipes.Delete(s.ctx, r.ID()))

	_, err := s.recipes.FindByID(s.ctx, r.ID())
	s.ErrorIs(err, recipe.ErrRecipeNotFound)
	s.Equal(int64(0), testutils.CountRecords(s.T(), s.db, "recipe_ingredients"))
	s.ErrorIs(s.recipes.Delete(s.ctx, r.ID()), recipe.ErrRecipeNotFound)
}

func (s *RecipeRepositoryTestSuite) TestSearch() {
	other := s.factory.User()
	s.Require().NoError(s.users.Create(s.ctx, other))

	pasta, err := recipe.NewRecipe(s.author.ID(), "Tomato Pasta", recipe.TypeDinner, "Quick weeknight dish", 2)
	s.Require().NoError(err)
	soup, err := recipe.NewRecipe(s.author.ID(), "Tomato Soup", recipe.TypeLunch, "Warming soup", 4)
	s.Require().NoError(err)
	cake, err := recipe.NewRecipe(other.ID(), "Chocolate Cake", recipe.TypeDessert, "Rich and tomato free", 8)
	s.Require().NoError(err)
	for _, r := range []*recipe.Recipe{pasta, soup, cake} {
		s.Require().NoError(s.recipes.Create(s.ctx, r))
	}

	s.Run("text matches name or description ignoring case", func() {
		found, total, err := s.recipes.Search(s.ctx, outbound.RecipeCriteria{Query: "TOMATO", Limit: 10})
		s.Require().NoError(err)
		s.Equal(3, total)
		s.Len(found, 3)
	})

	s.Run("wildcards in the text match literally", func() {
		_, total, err := s.recipes.Search(s.ctx, outbound.RecipeCriteria{Query: "%", Limit: 10})
		s.Require().NoError(err)
		s.Zero(total)

		_, total, err = s.recipes.Search(s.ctx, outbound.RecipeCriteria{Query: "tomato_soup", Limit: 10})
		s.Require().NoError(err)
		s.Zero(total)
	})

	s.Run("type filter", func() {
		found, total, err := s.recipes.Search(s.ctx, outbound.RecipeCriteria{Type: recipe.TypeLunch, Limit: 10})
		s.Require().NoError(err)
		s.Equal(1, total)
		s.Require().Len(found, 1)
		s.Equal("Tomato Soup", found[0].Name())
	})

	s.Run("by author with pagination", func() {
		found, total, err := s.recipes.FindByAuthor(s.ctx, s.author.ID(), 0, 1)
		s.Require().NoError(err)
		s.Equal(2, total)
		s.Len(found, 1)
	})
}

func (s *RecipeRepositoryTestSuite) TestExistsByNameIgnoresCase() {
	r, err := recipe.NewRecipe(s.author.ID(), "Beef Wellington", recipe.TypeDinner, "Classic", 4)
	s.Require().NoError(err)
	s.Require().NoError(s.recipes.Create(s.ctx, r))

	exists, err := s.recipes.ExistsByName(s.ctx, "  beef wellington ")
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.recipes.ExistsByName(s.ctx, "Beef Stew")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *RecipeRepositoryTestSuite) TestDeleteBySource() {
	garlic := s.storeIngredient("Garlic", nutrition.Facts{Calories: 1.49})

	imported := s.factory.Recipe(s.author.ID(), garlic)
	imported.MarkImported(recipe.SourceTheMealDB)
	s.Require().NoError(s.recipes.Create(s.ctx, imported))

	own := s.factory.Recipe(s.author.ID(), garlic)
	s.Require().NoError(s.recipes.Create(s.ctx, own))

	count, err := s.recipes.CountBySource(s.ctx, recipe.SourceTheMealDB)
	s.Require().NoError(err)
	s.Equal(int64(1), count)

	removed, err := s.recipes.DeleteBySource(s.ctx, recipe.SourceTheMealDB)
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{imported.ID()}, removed)

	removed, err = s.recipes.DeleteBySource(s.ctx, recipe.SourceTheMealDB)
	s.Require().NoError(err)
	s.Empty(removed)

	_, err = s.recipes.FindByID(s.ctx, own.ID())
	s.NoError(err)
	s.Equal(int64(1), testutils.CountRecords(s.T(), s.db, "recipe_ingredients"))
}

func TestRecipeRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RecipeRepositoryTestSuite))
}

func TestIngredientRepository(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (outbound.IngredientRepository, *gorm.DB, *testutils.Factory) {
		db := testutils.NewSQLiteDB(t)
		return gormrepo.NewIngredientRepository(db), db, testutils.NewFactory(t, 7)
	}

	t.Run("FindOrCreate deduplicates by case-insensitive name", func(t *testing.T) {
		repo, db, f := setup(t)

		first, created, err := repo.FindOrCreate(ctx, f.NamedIngredient("Chicken Breast", ingredient.DefaultFacts("Chicken Breast")))
		require.NoError(t, err)
		assert.True(t, created)

		second, created, err := repo.FindOrCreate(ctx, f.NamedIngredient("chicken breast", nutrition.Facts{}))
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID(), second.ID())
		assert.Equal(t, "Chicken Breast", second.Name())

		assert.Equal(t, int64(1), testutils.CountRecords(t, db, "ingredients"))
	})

	t.Run("Create rejects a duplicate name", func(t *testing.T) {
		repo, _, f := setup(t)

		require.NoError(t, repo.Create(ctx, f.NamedIngredient("Salt", nutrition.Facts{})))
		err := repo.Create(ctx, f.NamedIngredient("SALT", nutrition.Facts{}))
		assert.ErrorIs(t, err, ingredient.ErrDuplicateName)
	})

	t.Run("Search matches substrings ordered by name", func(t *testing.T) {
		repo, _, f := setup(t)

		for _, name := range []string{"Red Onion", "Garlic", "Spring onion", "Onion"} {
			require.NoError(t, repo.Create(ctx, f.NamedIngredient(name, nutrition.Facts{})))
		}

		found, total, err := repo.Search(ctx, "ONION", 0, 10)
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, found, 3)
		assert.Equal(t, "Onion", found[0].Name())
		assert.Equal(t, "Red Onion", found[1].Name())
		assert.Equal(t, "Spring onion", found[2].Name())

		_, total, err = repo.Search(ctx, "", 0, 2)
		require.NoError(t, err)
		assert.Equal(t, 4, total)
	})

	t.Run("Search treats wildcards literally", func(t *testing.T) {
		repo, _, f := setup(t)

		for _, name := range []string{"Garlic", "50% Cream", "Sea_Salt", "Sea Salt"} {
			require.NoError(t, repo.Create(ctx, f.NamedIngredient(name, nutrition.Facts{})))
		}

		tests := []struct {
			query string
			want  []string
		}{
			{"%", []string{"50% Cream"}},
			{"_", []string{"Sea_Salt"}},
			{"a_s", []string{"Sea_Salt"}},
			{"0%", []string{"50% Cream"}},
			{`\`, nil},
		}
		for _, tt := range tests {
			found, total, err := repo.Search(ctx, tt.query, 0, 10)
			require.NoError(t, err, tt.query)
			assert.Equal(t, len(tt.want), total, tt.query)

			var names []string
			for _, ing := range found {
				names = append(names, ing.Name())
			}
			assert.Equal(t, tt.want, names, tt.query)
		}
	})

	t.Run("FindByIDs skips unknown ids", func(t *testing.T) {
		repo, _, f := setup(t)

		ing := f.Ingredient()
		require.NoError(t, repo.Create(ctx, ing))

		found, err := repo.FindByIDs(ctx, []uuid.UUID{ing.ID(), uuid.New()})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, ing.ID(), found[0].ID())
		assert.Equal(t, ing.PerUnit(), found[0].PerUnit())
	})

	t.Run("Update persists nutrients", func(t *testing.T) {
		repo, _, f := setup(t)

		ing := f.NamedIngredient("Butter", nutrition.Facts{Calories: 7})
		require.NoError(t, repo.Create(ctx, ing))
		require.NoError(t, ing.UpdateNutrition(nutrition.Facts{Calories: 7.17, Fat: 0.81}))
		require.NoError(t, repo.Update(ctx, ing))

		found, err := repo.FindByID(ctx, ing.ID())
		require.NoError(t, err)
		assert.InDelta(t, 7.17, found.PerUnit().Calories, 1e-9)
		assert.InDelta(t, 0.81, found.PerUnit().Fat, 1e-9)

		assert.ErrorIs(t, repo.Update(ctx, f.Ingredient()), ingredient.ErrIngredientNotFound)
	})

	t.Run("DeleteUnusedBySource keeps referenced ingredients", func(t *testing.T) {
		repo, db, f := setup(t)
		users := gormrepo.NewUserRepository(db)
		recipes := gormrepo.NewRecipeRepository(db)

		author := f.User()
		require.NoError(t, users.Create(ctx, author))

		used := f.NamedIngredient("Paprika", nutrition.Facts{})
		used.MarkImported(ingredient.SourceTheMealDB)
		unused := f.NamedIngredient("Saffron", nutrition.Facts{})
		unused.MarkImported(ingredient.SourceTheMealDB)
		local := f.NamedIngredient("Basil", nutrition.Facts{})
		for _, ing := range []*ingredient.Ingredient{used, unused, local} {
			require.NoError(t, repo.Create(ctx, ing))
		}
		require.NoError(t, recipes.Create(ctx, f.Recipe(author.ID(), used)))

		removed, err := repo.DeleteUnusedBySource(ctx, ingredient.SourceTheMealDB)
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)

		_, err = repo.FindByID(ctx, unused.ID())
		assert.ErrorIs(t, err, ingredient.ErrIngredientNotFound)
		_, err = repo.FindByID(ctx, used.ID())
		assert.NoError(t, err)
		_, err = repo.FindByID(ctx, local.ID())
		assert.NoError(t, err)
	})
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := testutils.NewSQLiteDB(t)
	repo := gormrepo.NewUserRepository(db)
	f := testutils.NewFactory(t, 11)

	u := f.User()
	require.NoError(t, repo.Create(ctx, u))

	t.Run("email is unique", func(t *testing.T) {
		dup, err := user.NewUser(u.Email(), "Other", "", testutils.DefaultPassword)
		require.NoError(t, err)
		assert.ErrorIs(t, repo.Create(ctx, dup), user.ErrEmailTaken)
	})

	t.Run("find by email normalises case", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "  "+u.Email())
		require.NoError(t, err)
		assert.Equal(t, u.ID(), found.ID())
		assert.NoError(t, found.CheckPassword(testutils.DefaultPassword))
	})

	t.Run("update records login", func(t *testing.T) {
		u.RecordLogin()
		require.NoError(t, repo.Update(ctx, u))

		found, err := repo.FindByID(ctx, u.ID())
		require.NoError(t, err)
		assert.NotNil(t, found.LastLoginAt())
	})

	t.Run("exists and delete", func(t *testing.T) {
		exists, err := repo.ExistsByEmail(ctx, u.Email())
		require.NoError(t, err)
		assert.True(t, exists)

		require.NoError(t, repo.Delete(ctx, u.ID()))
		_, err = repo.FindByID(ctx, u.ID())
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}

func TestContactRepository(t *testing.T) {
	ctx := context.Background()
	repo := gormrepo.NewContactRepository(testutils.NewSQLiteDB(t))
	f := testutils.NewFactory(t, 3)

	first := f.ContactMessage()
	second := f.ContactMessage()
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	msgs, total, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, msgs, 2)
	assert.Equal(t, second.ID, msgs[0].ID)
	assert.Equal(t, first.Body, msgs[1].Body)
}
