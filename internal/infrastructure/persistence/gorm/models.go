// Package gorm provides GORM model definitions for the application
package gorm

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserModel represents the GORM model for users
type UserModel struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	FirstName    string    `gorm:"type:varchar(100);not null"`
	LastName     string    `gorm:"type:varchar(100)"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Role         string    `gorm:"type:varchar(20);default:'user';not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time

	// Relationships
	Recipes []RecipeModel `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

// IngredientModel represents a catalogue ingredient. NameKey holds the
// lowercased name and carries the case-insensitive uniqueness constraint.
type IngredientModel struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	Name        string    `gorm:"type:varchar(64);not null"`
	NameKey     string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Unit        string    `gorm:"type:varchar(20);not null;default:'g'"`
	Description string    `gorm:"type:text"`
	Image       string    `gorm:"type:varchar(512)"`
	Source      string    `gorm:"type:varchar(20);not null;default:'user';index"`

	// Nutrients per unit
	CaloriesPerUnit float64 `gorm:"not null;default:0"`
	ProteinPerUnit  float64 `gorm:"not null;default:0"`
	FatPerUnit      float64 `gorm:"not null;default:0"`
	CarbsPerUnit    float64 `gorm:"not null;default:0"`
	SugarPerUnit    float64 `gorm:"not null;default:0"`
	FiberPerUnit    float64 `gorm:"not null;default:0"`
	SodiumPerUnit   float64 `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RecipeModel represents the GORM model for recipes
type RecipeModel struct {
	ID           uuid.UUID                   `gorm:"type:char(36);primaryKey"`
	Name         string                      `gorm:"type:varchar(128);not null;index"`
	Type         string                      `gorm:"type:varchar(20);not null;index"`
	Description  string                      `gorm:"type:text;not null"`
	Image        string                      `gorm:"type:varchar(512)"`
	AuthorID     uuid.UUID                   `gorm:"type:char(36);not null;index"`
	Source       string                      `gorm:"type:varchar(20);not null;default:'user';index"`
	Instructions datatypes.JSONSlice[string] `gorm:"not null"`
	Servings     int                         `gorm:"not null;default:1"`
	CreatedAt    time.Time                   `gorm:"index"`
	UpdatedAt    time.Time

	// Relationships
	Ingredients []RecipeIngredientModel `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
	Images      []RecipeImageModel      `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

// RecipeIngredientModel joins a recipe to the ingredients it uses
type RecipeIngredientModel struct {
	RecipeID           uuid.UUID `gorm:"type:char(36);primaryKey"`
	IngredientID       uuid.UUID `gorm:"type:char(36);primaryKey;index"`
	QuantityPerServing float64   `gorm:"not null"`
	Position           int       `gorm:"not null;default:0"`

	Ingredient IngredientModel `gorm:"foreignKey:IngredientID;constraint:OnDelete:RESTRICT"`
}

// RecipeImageModel represents an uploaded recipe image
type RecipeImageModel struct {
	ID          uuid.UUID `gorm:"type:char(36);primaryKey"`
	RecipeID    uuid.UUID `gorm:"type:char(36);not null;index"`
	Key         string    `gorm:"type:varchar(512);not null"`
	URL         string    `gorm:"type:varchar(1024);not null"`
	ContentType string    `gorm:"type:varchar(100)"`
	Size        int64
	Position    int `gorm:"not null;default:0"`
	CreatedAt   time.Time
}

// ContactMessageModel represents a stored contact form submission
type ContactMessageModel struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey"`
	Name      string    `gorm:"type:varchar(100);not null"`
	Email     string    `gorm:"type:varchar(255);not null"`
	Subject   string    `gorm:"type:varchar(200)"`
	Message   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`
}

// AllModels lists every model in dependency order for auto-migration
func AllModels() []interface{} {
	return []interface{}{
		&UserModel{},
		&IngredientModel{},
		&RecipeModel{},
		&RecipeIngredientModel{},
		&RecipeImageModel{},
		&ContactMessageModel{},
	}
}

// BeforeCreate hook for UserModel
func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for IngredientModel
func (i *IngredientModel) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for RecipeModel
func (r *RecipeModel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for RecipeImageModel
func (i *RecipeImageModel) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// BeforeCreate hook for ContactMessageModel
func (c *ContactMessageModel) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName methods for custom table names
func (UserModel) TableName() string {
	return "users"
}

func (IngredientModel) TableName() string {
	return "ingredients"
}

func (RecipeModel) TableName() string {
	return "recipes"
}

func (RecipeIngredientModel) TableName() string {
	return "recipe_ingredients"
}

func (RecipeImageModel) TableName() string {
	return "recipe_images"
}

func (ContactMessageModel) TableName() string {
	return "contact_messages"
}
