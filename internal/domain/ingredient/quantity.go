package ingredient

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Gram estimates used when a measure cannot be converted precisely
const (
	FallbackGrams   = 50.0
	SeasoningGrams  = 5.0
	MinGrams        = 1.0
	MaxGrams        = 300.0
	AssumedServings = 4.0

	// a plain gram amount above this is assumed to cover the whole recipe
	wholeRecipeGrams = 500.0
)

var (
	numberPattern   = regexp.MustCompile(`\d+\.?\d*`)
	fractionPattern = regexp.MustCompile(`(\d+)/(\d+)`)
	wordPattern     = regexp.MustCompile(`[a-z]+`)

	errZeroDenominator = errors.New("zero denominator")
)

var seasoningPhrases = []string{"to taste", "for frying", "for cooking", "as needed"}

var sizeEstimates = []struct {
	word  string
	grams float64
}{
	{"large", 200},
	{"medium", 150},
	{"small", 100},
}

type measureUnit int

const (
	measureNone measureUnit = iota
	measureCup
	measureTablespoon
	measureTeaspoon
	measureOunce
	measurePound
	measureMilliliter
	measureLiter
	measureGram
	measureKilogram
)

// Checked in this order; the first unit present in the measure wins.
var unitPrecedence = []measureUnit{
	measureCup,
	measureTablespoon,
	measureTeaspoon,
	measureOunce,
	measurePound,
	measureMilliliter,
	measureLiter,
	measureGram,
	measureKilogram,
}

var unitWords = map[string]measureUnit{
	"cup": measureCup, "cups": measureCup,
	"tbsp": measureTablespoon, "tbs": measureTablespoon, "tbls": measureTablespoon,
	"tablespoon": measureTablespoon, "tablespoons": measureTablespoon,
	"tsp": measureTeaspoon, "teaspoon": measureTeaspoon, "teaspoons": measureTeaspoon,
	"oz": measureOunce, "ounce": measureOunce, "ounces": measureOunce,
	"lb": measurePound, "lbs": measurePound, "pound": measurePound, "pounds": measurePound,
	"ml": measureMilliliter,
	"l": measureLiter, "litre": measureLiter, "litres": measureLiter, "liter": measureLiter, "liters": measureLiter,
	"g": measureGram, "gr": measureGram, "gram": measureGram, "grams": measureGram,
	"kg": measureKilogram, "kilo": measureKilogram, "kilogram": measureKilogram, "kilograms": measureKilogram,
}

var unitFactor = map[measureUnit]float64{
	measureCup:        120,
	measureTablespoon: 15,
	measureTeaspoon:   5,
	measureOunce:      28,
	measurePound:      454,
	measureMilliliter: 1,
	measureLiter:      1000,
	// 1kg spread over the assumed four servings
	measureKilogram: 250,
}

// EstimateGrams converts a free-text measure such as "1 cup", "2 tbsp" or
// "to taste" into an estimated grams-per-serving figure. It never fails:
// anything that cannot be interpreted yields FallbackGrams.
func EstimateGrams(measure string) float64 {
	grams, err := estimateGrams(measure)
	if err != nil || math.IsNaN(grams) || math.IsInf(grams, 0) {
		return FallbackGrams
	}
	return grams
}

func estimateGrams(measure string) (float64, error) {
	lower := strings.ToLower(strings.TrimSpace(measure))

	for _, phrase := range seasoningPhrases {
		if strings.Contains(lower, phrase) {
			return SeasoningGrams, nil
		}
	}

	for _, size := range sizeEstimates {
		if strings.Contains(lower, size.word) {
			return size.grams, nil
		}
	}

	number := numberPattern.FindString(lower)
	if number == "" {
		return estimateWithoutNumber(lower), nil
	}

	quantity, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, err
	}

	if m := fractionPattern.FindStringSubmatch(lower); m != nil {
		num, _ := strconv.ParseFloat(m[1], 64)
		den, _ := strconv.ParseFloat(m[2], 64)
		if den == 0 {
			return 0, errZeroDenominator
		}
		quantity = num / den
	}

	switch unit := detectUnit(lower); unit {
	case measureNone:
	case measureGram:
		if quantity > wholeRecipeGrams {
			quantity /= AssumedServings
		}
	default:
		quantity *= unitFactor[unit]
	}

	return clampGrams(quantity), nil
}

func detectUnit(lower string) measureUnit {
	present := make(map[measureUnit]bool)
	for _, word := range wordPattern.FindAllString(lower, -1) {
		if unit, ok := unitWords[word]; ok {
			present[unit] = true
		}
	}
	for _, unit := range unitPrecedence {
		if present[unit] {
			return unit
		}
	}
	return measureNone
}

func estimateWithoutNumber(lower string) float64 {
	switch {
	case strings.Contains(lower, "pinch"), strings.Contains(lower, "dash"):
		return 2
	case strings.Contains(lower, "clove"), strings.Contains(lower, "piece"):
		return 10
	default:
		return FallbackGrams
	}
}

func clampGrams(v float64) float64 {
	return math.Min(math.Max(v, MinGrams), MaxGrams)
}
