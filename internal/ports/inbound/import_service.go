package inbound

import "context"

// ImportService loads recipes and ingredients from the external catalogue
type ImportService interface {
	Run(ctx context.Context, cmd ImportCommand) (*ImportResult, error)
}

// ImportCommand controls an import run. Force removes previously imported
// data before importing again.
type ImportCommand struct {
	Force bool
}

// ImportResult summarises an import run
type ImportResult struct {
	Success             bool     `json:"success"`
	Message             string   `json:"message"`
	RecipesImported     int      `json:"recipes_imported"`
	IngredientsImported int      `json:"ingredients_imported"`
	RecipesRemoved      int64    `json:"recipes_removed,omitempty"`
	IngredientsRemoved  int64    `json:"ingredients_removed,omitempty"`
	Errors              []string `json:"errors"`
}
