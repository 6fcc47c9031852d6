package ingredient

import (
	"strings"

	"github.com/recipemanager/server/internal/domain/nutrition"
)

// keywordRule assigns value to any name containing one of the keywords
type keywordRule struct {
	keywords []string
	value    float64
}

// keywordTable is an ordered list of rules with a fallback value
type keywordTable struct {
	rules    []keywordRule
	fallback float64
}

func (t keywordTable) lookup(lowerName string) float64 {
	for _, rule := range t.rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowerName, kw) {
				return rule.value
			}
		}
	}
	return t.fallback
}

var (
	fats    = []string{"oil", "butter", "fat"}
	sugars  = []string{"sugar", "honey", "syrup"}
	meats   = []string{"meat", "beef", "pork", "chicken", "fish"}
	grains  = []string{"rice", "pasta", "bread", "flour"}
	fruits  = []string{"fruit", "apple", "banana"}
	dairy   = []string{"cheese", "milk", "yogurt"}
	cured   = []string{"bacon", "sausage", "kielbasa"}
	stocks  = []string{"stock", "broth"}
	eggs    = []string{"egg"}
	veggies = []string{"vegetable"}
)

// Per-gram defaults for imported ingredients, keyed by name substrings.
var (
	caloriesTable = keywordTable{
		rules: []keywordRule{
			{fats, 9},
			{sugars, 4},
			{meats, 2},
			{[]string{"vegetable", "lettuce", "spinach", "celery"}, 0.2},
			{grains, 3.5},
			{eggs, 1.5},
		},
		fallback: 0.5,
	}
	proteinTable = keywordTable{
		rules: []keywordRule{
			{meats, 0.20},
			{eggs, 0.13},
			{dairy, 0.10},
		},
		fallback: 0.02,
	}
	fatTable = keywordTable{
		rules: []keywordRule{
			{fats, 1.0},
			{[]string{"nuts", "seeds"}, 0.50},
			{[]string{"meat", "cheese"}, 0.15},
			{eggs, 0.10},
		},
		fallback: 0.01,
	}
	carbsTable = keywordTable{
		rules: []keywordRule{
			{sugars, 1.0},
			{grains, 0.70},
			{fruits, 0.15},
			{veggies, 0.05},
		},
		fallback: 0.05,
	}
	sugarTable = keywordTable{
		rules: []keywordRule{
			{sugars, 0.95},
			{fruits, 0.10},
			{[]string{"tomato"}, 0.03},
		},
		fallback: 0.01,
	}
	fiberTable = keywordTable{
		rules: []keywordRule{
			{fruits, 0.03},
			{[]string{"vegetable", "cabbage", "carrot"}, 0.03},
			{grains, 0.02},
		},
		fallback: 0.01,
	}
	sodiumTable = keywordTable{
		rules: []keywordRule{
			{cured, 0.8},
			{[]string{"cheese"}, 0.6},
			{stocks, 0.4},
			{meats, 0.07},
			{veggies, 0.01},
		},
		fallback: 0.02,
	}
)

// DefaultFacts estimates per-gram nutrients for an ingredient from its name.
// Each nutrient is looked up independently; the first matching rule wins.
func DefaultFacts(name string) nutrition.Facts {
	lower := strings.ToLower(name)
	return nutrition.Facts{
		Calories: caloriesTable.lookup(lower),
		Protein:  proteinTable.lookup(lower),
		Fat:      fatTable.lookup(lower),
		Carbs:    carbsTable.lookup(lower),
		Sugar:    sugarTable.lookup(lower),
		Fiber:    fiberTable.lookup(lower),
		Sodium:   sodiumTable.lookup(lower),
	}
}
