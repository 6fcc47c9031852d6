// Package recipe contains the recipe aggregate: its details, the ingredient
// lines used to compute nutrition and the attached images.
package recipe

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/recipemanager/server/internal/domain/nutrition"
	"github.com/recipemanager/server/internal/domain/shared"
)

const (
	MaxNameLength         = 128
	MaxDescriptionLength  = 2000
	MaxServings           = 100
	MaxQuantityPerServing = 10000
	MaxImages             = 5
)

// Recipe is the aggregate root of the recipe domain
type Recipe struct {
	shared.AggregateRoot

	id          uuid.UUID
	name        string
	recipeType  Type
	description string
	image       string
	authorID    uuid.UUID
	source      Source

	instructions []string
	servings     int
	ingredients  []IngredientLine
	images       []Image

	createdAt time.Time
	updatedAt time.Time
}

// NewRecipe creates a new recipe with validation
func NewRecipe(authorID uuid.UUID, name string, recipeType Type, description string, servings int) (*Recipe, error) {
	if authorID == uuid.Nil {
		return nil, ErrInvalidAuthor
	}

	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if err := validateDetails(name, recipeType, description, servings); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	r := &Recipe{
		id:          uuid.New(),
		name:        name,
		recipeType:  recipeType,
		description: description,
		authorID:    authorID,
		source:      SourceUser,
		servings:    servings,
		createdAt:   now,
		updatedAt:   now,
	}

	r.AddEvent(RecipeCreatedEvent{
		BaseEvent: shared.NewBaseEvent(r.id),
		AuthorID:  authorID,
		Name:      name,
	})

	return r, nil
}

func validateDetails(name string, recipeType Type, description string, servings int) error {
	if name == "" {
		return ErrNameRequired
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ErrNameTooLong
	}
	if !recipeType.IsValid() {
		return ErrInvalidType
	}
	if description == "" {
		return ErrDescriptionRequired
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if servings < 1 || servings > MaxServings {
		return ErrInvalidServings
	}
	return nil
}

// UpdateDetails replaces the descriptive fields of the recipe
func (r *Recipe) UpdateDetails(name string, recipeType Type, description string, servings int) error {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if err := validateDetails(name, recipeType, description, servings); err != nil {
		return err
	}

	var changed []string
	if name != r.name {
		changed = append(changed, "name")
	}
	if recipeType != r.recipeType {
		changed = append(changed, "type")
	}
	if description != r.description {
		changed = append(changed, "description")
	}
	if servings != r.servings {
		changed = append(changed, "servings")
	}

	r.name = name
	r.recipeType = recipeType
	r.description = description
	r.servings = servings
	r.markUpdated(changed...)
	return nil
}

// SetInstructions replaces the instruction steps. Blank steps are dropped.
func (r *Recipe) SetInstructions(steps []string) {
	cleaned := make([]string, 0, len(steps))
	for _, step := range steps {
		if step = strings.TrimSpace(step); step != "" {
			cleaned = append(cleaned, step)
		}
	}
	r.instructions = cleaned
	r.markUpdated("instructions")
}

// AddIngredient appends an ingredient line
func (r *Recipe) AddIngredient(line IngredientLine) error {
	if err := line.Validate(); err != nil {
		return err
	}
	for _, existing := range r.ingredients {
		if existing.IngredientID == line.IngredientID {
			return ErrDuplicateIngredient
		}
	}
	r.ingredients = append(r.ingredients, line)
	r.markUpdated("ingredients")
	return nil
}

// ReplaceIngredients swaps the whole ingredient list atomically
func (r *Recipe) ReplaceIngredients(lines []IngredientLine) error {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return err
		}
		if _, dup := seen[line.IngredientID]; dup {
			return ErrDuplicateIngredient
		}
		seen[line.IngredientID] = struct{}{}
	}

	r.ingredients = append([]IngredientLine(nil), lines...)
	r.markUpdated("ingredients")
	return nil
}

// CanAddImages reports whether n more images fit under MaxImages
func (r *Recipe) CanAddImages(n int) error {
	if len(r.images)+n > MaxImages {
		return ErrTooManyImages
	}
	return nil
}

// AddImage attaches an image. The first image also becomes the cover when
// the recipe has none.
func (r *Recipe) AddImage(img Image) (Image, error) {
	if err := r.CanAddImages(1); err != nil {
		return Image{}, err
	}
	if img.ID == uuid.Nil {
		img.ID = uuid.New()
	}
	if img.CreatedAt.IsZero() {
		img.CreatedAt = time.Now().UTC()
	}
	img.Position = len(r.images)
	r.images = append(r.images, img)

	if r.image == "" {
		r.image = img.URL
	}

	r.AddEvent(RecipeImageAddedEvent{
		BaseEvent: shared.NewBaseEvent(r.id),
		ImageID:   img.ID,
		Key:       img.Key,
	})
	r.markUpdated()
	return img, nil
}

// RemoveImage detaches an image and returns it
func (r *Recipe) RemoveImage(imageID uuid.UUID) (Image, error) {
	for i, img := range r.images {
		if img.ID != imageID {
			continue
		}

		r.images = append(r.images[:i:i], r.images[i+1:]...)
		r.renumberImages()
		if r.image == img.URL {
			r.image = ""
			if len(r.images) > 0 {
				r.image = r.images[0].URL
			}
		}

		r.AddEvent(RecipeImageRemovedEvent{
			BaseEvent: shared.NewBaseEvent(r.id),
			ImageID:   img.ID,
			Key:       img.Key,
		})
		r.markUpdated()
		return img, nil
	}
	return Image{}, ErrImageNotFound
}

// RetainImages keeps only the images whose URL or key is listed and returns
// the removed ones.
func (r *Recipe) RetainImages(keep []string) []Image {
	wanted := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		wanted[k] = struct{}{}
	}

	var removed []Image
	for _, img := range append([]Image(nil), r.images...) {
		_, byURL := wanted[img.URL]
		_, byKey := wanted[img.Key]
		if byURL || byKey {
			continue
		}
		if _, err := r.RemoveImage(img.ID); err == nil {
			removed = append(removed, img)
		}
	}
	return removed
}

func (r *Recipe) renumberImages() {
	for i := range r.images {
		r.images[i].Position = i
	}
}

// SetCoverImage sets the main image reference, e.g. an external URL
func (r *Recipe) SetCoverImage(ref string) {
	r.image = strings.TrimSpace(ref)
	r.markUpdated("image")
}

// MarkImported tags the recipe with its import source
func (r *Recipe) MarkImported(source Source) {
	r.source = source
}

// MarkDeleted records the deletion event
func (r *Recipe) MarkDeleted(by uuid.UUID) {
	r.AddEvent(RecipeDeletedEvent{
		BaseEvent: shared.NewBaseEvent(r.id),
		DeletedBy: by,
	})
}

// IsOwnedBy reports whether userID authored the recipe
func (r *Recipe) IsOwnedBy(userID uuid.UUID) bool {
	return r.authorID == userID
}

// Nutrition aggregates the ingredient lines over the recipe's servings
func (r *Recipe) Nutrition() (nutrition.Summary, error) {
	lines := make([]nutrition.Line, 0, len(r.ingredients))
	for _, ing := range r.ingredients {
		lines = append(lines, ing.NutritionLine())
	}
	return nutrition.Aggregate(lines, r.servings)
}

func (r *Recipe) markUpdated(fields ...string) {
	r.updatedAt = time.Now().UTC()
	if len(fields) == 0 {
		return
	}
	r.AddEvent(RecipeUpdatedEvent{
		BaseEvent: shared.NewBaseEvent(r.id),
		Fields:    fields,
	})
}

// Getters
func (r *Recipe) ID() uuid.UUID { return r.id }
func (r *Recipe) Name() string { return r.name }
func (r *Recipe) Type() Type { return r.recipeType }
func (r *Recipe) Description() string { return r.description }
func (r *Recipe) Image() string { return r.image }
func (r *Recipe) AuthorID() uuid.UUID { return r.authorID }
func (r *Recipe) Source() Source { return r.source }
func (r *Recipe) Servings() int { return r.servings }
func (r *Recipe) CreatedAt() time.Time { return r.createdAt }
func (r *Recipe) UpdatedAt() time.Time { return r.updatedAt }

func (r *Recipe) Instructions() []string {
	return append([]string(nil), r.instructions...)
}

func (r *Recipe) Ingredients() []IngredientLine {
	return append([]IngredientLine(nil), r.ingredients...)
}

func (r *Recipe) Images() []Image {
	return append([]Image(nil), r.images...)
}

// Snapshot is the flat, exported form of a recipe used by persistence
type Snapshot struct {
	ID           uuid.UUID
	Name         string
	Type         Type
	Description  string
	Image        string
	AuthorID     uuid.UUID
	Source       Source
	Instructions []string
	Servings     int
	Ingredients  []IngredientLine
	Images       []Image
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Snapshot exports the recipe state
func (r *Recipe) Snapshot() Snapshot {
	return Snapshot{
		ID:           r.id,
		Name:         r.name,
		Type:         r.recipeType,
		Description:  r.description,
		Image:        r.image,
		AuthorID:     r.authorID,
		Source:       r.source,
		Instructions: r.Instructions(),
		Servings:     r.servings,
		Ingredients:  r.Ingredients(),
		Images:       r.Images(),
		CreatedAt:    r.createdAt,
		UpdatedAt:    r.updatedAt,
	}
}

// FromSnapshot rebuilds a recipe from storage without raising events
func FromSnapshot(s Snapshot) *Recipe {
	return &Recipe{
		id:           s.ID,
		name:         s.Name,
		recipeType:   s.Type,
		description:  s.Description,
		image:        s.Image,
		authorID:     s.AuthorID,
		source:       s.Source,
		instructions: append([]string(nil), s.Instructions...),
		servings:     s.Servings,
		ingredients:  append([]IngredientLine(nil), s.Ingredients...),
		images:       append([]Image(nil), s.Images...),
		createdAt:    s.CreatedAt,
		updatedAt:    s.UpdatedAt,
	}
}
