// Package ingredient contains the ingredient catalogue entity and the
// heuristics used to fill in data for imported ingredients.
package ingredient

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/recipemanager/server/internal/domain/nutrition"
)

const (
	MaxNameLength        = 64
	MaxDescriptionLength = 500
)

var (
	ErrNameRequired       = errors.New("ingredient name is required")
	ErrNameTooLong        = fmt.Errorf("ingredient name cannot exceed %d characters", MaxNameLength)
	ErrDescriptionTooLong = fmt.Errorf("ingredient description cannot exceed %d characters", MaxDescriptionLength)
	ErrInvalidUnit        = errors.New("invalid measurement unit")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrDuplicateName      = errors.New("an ingredient with this name already exists")
)

// Unit is the unit an ingredient's per-unit nutrients refer to
type Unit string

const (
	UnitGram       Unit = "g"
	UnitKilogram   Unit = "kg"
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
	UnitTeaspoon   Unit = "tsp"
	UnitTablespoon Unit = "tbsp"
	UnitCup        Unit = "cup"
	UnitOunce      Unit = "oz"
	UnitPiece      Unit = "piece"
	UnitBunch      Unit = "bunch"
	UnitStick      Unit = "stick"
	UnitSlice      Unit = "slice"
	UnitPinch      Unit = "pinch"
	UnitClove      Unit = "clove"
	UnitCan        Unit = "can"
	UnitJar        Unit = "jar"
	UnitPack       Unit = "pack"
	UnitSheet      Unit = "sheet"
	UnitHead       Unit = "head"
	UnitLeaf       Unit = "leaf"
	UnitFilet      Unit = "filet"
	UnitSprig      Unit = "sprig"
)

var validUnits = map[Unit]struct{}{
	UnitGram: {}, UnitKilogram: {}, UnitMilliliter: {}, UnitLiter: {},
	UnitTeaspoon: {}, UnitTablespoon: {}, UnitCup: {}, UnitOunce: {},
	UnitPiece: {}, UnitBunch: {}, UnitStick: {}, UnitSlice: {},
	UnitPinch: {}, UnitClove: {}, UnitCan: {}, UnitJar: {},
	UnitPack: {}, UnitSheet: {}, UnitHead: {}, UnitLeaf: {},
	UnitFilet: {}, UnitSprig: {},
}

// IsValid reports whether u is a supported unit
func (u Unit) IsValid() bool {
	_, ok := validUnits[u]
	return ok
}

// Source records where an ingredient came from
type Source string

const (
	SourceUser      Source = "user"
	SourceTheMealDB Source = "themealdb"
)

// NameKey is the case-insensitive identity of an ingredient name
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Ingredient is a catalogue entry with nutrients expressed per unit
type Ingredient struct {
	id          uuid.UUID
	name        string
	unit        Unit
	description string
	perUnit     nutrition.Facts
	image       string
	source      Source
	createdAt   time.Time
	updatedAt   time.Time
}

// NewIngredient creates a validated ingredient
func NewIngredient(name string, unit Unit, description string, perUnit nutrition.Facts) (*Ingredient, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if unit == "" {
		unit = UnitGram
	}
	if !unit.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUnit, unit)
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}
	if err := perUnit.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Ingredient{
		id:          uuid.New(),
		name:        name,
		unit:        unit,
		description: strings.TrimSpace(description),
		perUnit:     perUnit,
		source:      SourceUser,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Rehydrate rebuilds an ingredient from storage without validation
func Rehydrate(id uuid.UUID, name string, unit Unit, description string, perUnit nutrition.Facts, image string, source Source, createdAt, updatedAt time.Time) *Ingredient {
	return &Ingredient{
		id:          id,
		name:        name,
		unit:        unit,
		description: description,
		perUnit:     perUnit,
		image:       image,
		source:      source,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func validateName(name string) error {
	if name == "" {
		return ErrNameRequired
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	return nil
}

// UpdateNutrition replaces the per-unit nutrients
func (i *Ingredient) UpdateNutrition(perUnit nutrition.Facts) error {
	if err := perUnit.Validate(); err != nil {
		return err
	}
	i.perUnit = perUnit
	i.touch()
	return nil
}

// UpdateDescription replaces the description
func (i *Ingredient) UpdateDescription(description string) error {
	if err := validateDescription(description); err != nil {
		return err
	}
	i.description = strings.TrimSpace(description)
	i.touch()
	return nil
}

// SetImage sets the image reference
func (i *Ingredient) SetImage(image string) {
	i.image = image
	i.touch()
}

// MarkImported tags the ingredient with its import source
func (i *Ingredient) MarkImported(source Source) {
	i.source = source
}

func (i *Ingredient) touch() {
	i.updatedAt = time.Now().UTC()
}

// Getters
func (i *Ingredient) ID() uuid.UUID { return i.id }
func (i *Ingredient) Name() string { return i.name }
func (i *Ingredient) NameKey() string { return NameKey(i.name) }
func (i *Ingredient) Unit() Unit { return i.unit }
func (i *Ingredient) Description() string { return i.description }
func (i *Ingredient) PerUnit() nutrition.Facts { return i.perUnit }
func (i *Ingredient) Image() string { return i.image }
func (i *Ingredient) Source() Source { return i.source }
func (i *Ingredient) CreatedAt() time.Time { return i.createdAt }
func (i *Ingredient) UpdatedAt() time.Time { return i.updatedAt }
