// Package sqlite provides SQLite database setup and configuration
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/recipemanager/server/internal/domain/ingredient"
	"github.com/recipemanager/server/internal/domain/user"
	gormModels "github.com/recipemanager/server/internal/infrastructure/persistence/gorm"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupDatabase creates and configures the SQLite database
func SetupDatabase(dbPath string, gormLogger logger.Interface) (*gorm.DB, error) {
	// Use in-memory database if no path provided
	if dbPath == "" {
		dbPath = "file::memory:?cache=shared"
	}
	if !strings.Contains(dbPath, "_foreign_keys") {
		sep := "?"
		if strings.Contains(dbPath, "?") {
			sep = "&"
		}
		dbPath += sep + "_foreign_keys=on"
	}

	if gormLogger == nil {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite allows a single writer
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	// Run auto-migration
	if err := db.AutoMigrate(gormModels.AllModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// SeedOptions controls the data written by SeedDatabase
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
}

// starterIngredients is the catalogue written into an empty database
var starterIngredients = []struct {
	name string
	unit ingredient.Unit
}{
	{"Flour", ingredient.UnitGram},
	{"Sugar", ingredient.UnitGram},
	{"Butter", ingredient.UnitGram},
	{"Eggs", ingredient.UnitPiece},
	{"Milk", ingredient.UnitMilliliter},
	{"Olive Oil", ingredient.UnitMilliliter},
	{"Salt", ingredient.UnitGram},
	{"Chicken Breast", ingredient.UnitGram},
	{"Rice", ingredient.UnitGram},
	{"Onion", ingredient.UnitGram},
	{"Garlic", ingredient.UnitClove},
	{"Tomato", ingredient.UnitGram},
}

// SeedDatabase populates the database with initial data. It is a no-op for
// tables that already hold rows.
func SeedDatabase(ctx context.Context, db *gorm.DB, opts SeedOptions) error {
	ingredients := gormModels.NewIngredientRepository(db)
	users := gormModels.NewUserRepository(db)

	var ingredientCount int64
	if err := db.WithContext(ctx).Model(&gormModels.IngredientModel{}).Count(&ingredientCount).Error; err != nil {
		return fmt.Errorf("failed to count ingredients: %w", err)
	}

	if ingredientCount == 0 {
		for _, s := range starterIngredients {
			ing, err := ingredient.NewIngredient(s.name, s.unit, "", ingredient.DefaultFacts(s.name))
			if err != nil {
				return fmt.Errorf("failed to build starter ingredient %q: %w", s.name, err)
			}
			if _, _, err := ingredients.FindOrCreate(ctx, ing); err != nil {
				return fmt.Errorf("failed to create starter ingredient %q: %w", s.name, err)
			}
		}
	}

	if opts.AdminEmail == "" || opts.AdminPassword == "" {
		return nil
	}

	exists, err := users.ExistsByEmail(ctx, opts.AdminEmail)
	if err != nil {
		return fmt.Errorf("failed to check admin user: %w", err)
	}
	if exists {
		return nil
	}

	admin, err := user.NewUser(opts.AdminEmail, "Admin", "", opts.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to build admin user: %w", err)
	}
	if err := admin.AssignRole(user.RoleAdmin); err != nil {
		return err
	}
	if err := users.Create(ctx, admin); err != nil && !errors.Is(err, user.ErrEmailTaken) {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	return nil
}
