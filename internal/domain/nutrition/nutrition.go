// Package nutrition aggregates per-unit nutrient values into recipe totals
// and per-serving figures.
package nutrition

import (
	"errors"
	"fmt"
	"math"
)

// MaxPerUnit is the upper bound accepted for any per-unit nutrient value
const MaxPerUnit = 10000

var (
	ErrInvalidServings = errors.New("servings must be at least 1")
	ErrNegativeValue   = errors.New("nutrient values cannot be negative")
	ErrValueTooLarge   = fmt.Errorf("nutrient values cannot exceed %d", MaxPerUnit)
	ErrInvalidQuantity = errors.New("quantity must be a finite, non-negative number")
)

// Facts holds the seven tracked nutrients. Calories are kcal, sodium is mg
// and everything else is grams.
type Facts struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
	Sugar    float64 `json:"sugar"`
	Fiber    float64 `json:"fiber"`
	Sodium   float64 `json:"sodium"`
}

// Add returns the field-wise sum of f and o
func (f Facts) Add(o Facts) Facts {
	return Facts{
		Calories: f.Calories + o.Calories,
		Protein:  f.Protein + o.Protein,
		Fat:      f.Fat + o.Fat,
		Carbs:    f.Carbs + o.Carbs,
		Sugar:    f.Sugar + o.Sugar,
		Fiber:    f.Fiber + o.Fiber,
		Sodium:   f.Sodium + o.Sodium,
	}
}

// Scale multiplies every field by k
func (f Facts) Scale(k float64) Facts {
	return Facts{
		Calories: f.Calories * k,
		Protein:  f.Protein * k,
		Fat:      f.Fat * k,
		Carbs:    f.Carbs * k,
		Sugar:    f.Sugar * k,
		Fiber:    f.Fiber * k,
		Sodium:   f.Sodium * k,
	}
}

// Divide divides every field by n. n must be positive.
func (f Facts) Divide(n int) Facts {
	d := float64(n)
	return Facts{
		Calories: f.Calories / d,
		Protein:  f.Protein / d,
		Fat:      f.Fat / d,
		Carbs:    f.Carbs / d,
		Sugar:    f.Sugar / d,
		Fiber:    f.Fiber / d,
		Sodium:   f.Sodium / d,
	}
}

// Rounded returns the display form: calories and sodium as whole numbers,
// the remaining nutrients to one decimal place.
func (f Facts) Rounded() Facts {
	return Facts{
		Calories: math.Round(f.Calories),
		Protein:  round1(f.Protein),
		Fat:      round1(f.Fat),
		Carbs:    round1(f.Carbs),
		Sugar:    round1(f.Sugar),
		Fiber:    round1(f.Fiber),
		Sodium:   math.Round(f.Sodium),
	}
}

// Values returns the nutrients keyed by name
func (f Facts) Values() map[string]float64 {
	return map[string]float64{
		"calories": f.Calories,
		"protein":  f.Protein,
		"fat":      f.Fat,
		"carbs":    f.Carbs,
		"sugar":    f.Sugar,
		"fiber":    f.Fiber,
		"sodium":   f.Sodium,
	}
}

// Validate checks every value lies in [0, MaxPerUnit]
func (f Facts) Validate() error {
	for name, v := range f.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%s: %w", name, ErrNegativeValue)
		}
		if v > MaxPerUnit {
			return fmt.Errorf("%s: %w", name, ErrValueTooLarge)
		}
	}
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Line is one ingredient row of a recipe: its per-unit nutrients and the
// quantity used per serving.
type Line struct {
	PerUnit  Facts
	Quantity float64
}

// Contribution is PerUnit scaled by Quantity
func (l Line) Contribution() Facts {
	return l.PerUnit.Scale(l.Quantity)
}

// Summary is the result of aggregating a recipe
type Summary struct {
	Servings   int   `json:"servings"`
	Total      Facts `json:"total"`
	PerServing Facts `json:"per_serving"`
}

// Aggregate sums every line's contribution and divides by servings.
// No rounding is applied; use Facts.Rounded for display.
func Aggregate(lines []Line, servings int) (Summary, error) {
	if servings < 1 {
		return Summary{}, ErrInvalidServings
	}

	var total Facts
	for _, line := range lines {
		if math.IsNaN(line.Quantity) || math.IsInf(line.Quantity, 0) || line.Quantity < 0 {
			return Summary{}, ErrInvalidQuantity
		}
		total = total.Add(line.Contribution())
	}

	return Summary{
		Servings:   servings,
		Total:      total,
		PerServing: total.Divide(servings),
	}, nil
}
