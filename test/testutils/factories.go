// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/recipemanager/server/internal/domain/contact"
	"github.com/recipemanager/server/internal/domain/ingredient"
	"github.com/recipemanager/server/internal/domain/nutrition"
	"github.com/recipemanager/server/internal/domain/recipe"
	"github.com/recipemanager/server/internal/domain/user"
	"github.com/stretchr/testify/require"
)

// DefaultPassword is the password every factory-built user is created with
const DefaultPassword = "correct-horse-battery"

// Factory builds valid domain objects from a seeded faker
type Factory struct {
	t     *testing.T
	faker *gofakeit.Faker
	seq   int
}

// NewFactory creates a factory whose output is reproducible for the seed
func NewFactory(t *testing.T, seed int64) *Factory {
	return &Factory{t: t, faker: gofakeit.New(seed)}
}

// Faker exposes the underlying generator for ad hoc values
func (f *Factory) Faker() *gofakeit.Faker {
	return f.faker
}

func (f *Factory) next() int {
	f.seq++
	return f.seq
}

// User builds a regular user with a unique email
func (f *Factory) User() *user.User {
	f.t.Helper()
	email := fmt.Sprintf("%d.%s", f.next(), f.faker.Email())
	u, err := user.NewUser(email, f.faker.FirstName(), f.faker.LastName(), DefaultPassword)
	require.NoError(f.t, err)
	return u
}

// Admin builds a user with the admin role
func (f *Factory) Admin() *user.User {
	f.t.Helper()
	u := f.User()
	require.NoError(f.t, u.AssignRole(user.RoleAdmin))
	return u
}

// Facts builds a plausible set of per-unit nutrients
func (f *Factory) Facts() nutrition.Facts {
	return nutrition.Facts{
		Calories: f.faker.Float64Range(0, 9),
		Protein:  f.faker.Float64Range(0, 1),
		Fat:      f.faker.Float64Range(0, 1),
		Carbs:    f.faker.Float64Range(0, 1),
		Sugar:    f.faker.Float64Range(0, 0.5),
		Fiber:    f.faker.Float64Range(0, 0.3),
		Sodium:   f.faker.Float64Range(0, 5),
	}
}

// Ingredient builds a catalogue ingredient measured in grams
func (f *Factory) Ingredient() *ingredient.Ingredient {
	f.t.Helper()
	name := fmt.Sprintf("%s %d", f.faker.Noun(), f.next())
	ing, err := ingredient.NewIngredient(name, ingredient.UnitGram, f.faker.Sentence(6), f.Facts())
	require.NoError(f.t, err)
	return ing
}

// NamedIngredient builds an ingredient with a fixed name and nutrients
func (f *Factory) NamedIngredient(name string, facts nutrition.Facts) *ingredient.Ingredient {
	f.t.Helper()
	ing, err := ingredient.NewIngredient(name, ingredient.UnitGram, "", facts)
	require.NoError(f.t, err)
	return ing
}

// Recipe builds a recipe owned by authorID using the given ingredients,
// each at a random quantity per serving
func (f *Factory) Recipe(authorID uuid.UUID, ingredients ...*ingredient.Ingredient) *recipe.Recipe {
	f.t.Helper()
	name := fmt.Sprintf("%s %d", f.faker.Dessert(), f.next())
	r, err := recipe.NewRecipe(authorID, name, recipe.TypeDinner, f.faker.Sentence(10), f.faker.Number(1, 6))
	require.NoError(f.t, err)

	r.SetInstructions([]string{f.faker.Sentence(8), f.faker.Sentence(8)})
	for _, ing := range ingredients {
		require.NoError(f.t, r.AddIngredient(LineFor(ing, float64(f.faker.Number(10, 200)))))
	}
	r.Events()
	return r
}

// LineFor builds a recipe ingredient line from a catalogue ingredient
func LineFor(ing *ingredient.Ingredient, qty float64) recipe.IngredientLine {
	return recipe.IngredientLine{
		IngredientID:       ing.ID(),
		Name:               ing.Name(),
		Unit:               ing.Unit(),
		QuantityPerServing: qty,
		PerUnit:            ing.PerUnit(),
	}
}

// ContactMessage builds a valid contact form submission
func (f *Factory) ContactMessage() *contact.Message {
	f.t.Helper()
	msg, err := contact.NewMessage(f.faker.Name(), f.faker.Email(), f.faker.Sentence(4), f.faker.Paragraph(1, 3, 8, " "))
	require.NoError(f.t, err)
	return msg
}
