package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recipemanager/server/internal/ports/inbound"
)

// IngredientHandler serves the ingredient catalogue
type IngredientHandler struct {
	ingredients inbound.IngredientService
}

// NewIngredientHandler creates a new ingredient handler
func NewIngredientHandler(ingredients inbound.IngredientService) *IngredientHandler {
	return &IngredientHandler{ingredients: ingredients}
}

// Search handles GET /api/ingredients/search
func (h *IngredientHandler) Search(c *gin.Context) {
	page, ok := pagination(c)
	if !ok {
		return
	}

	list, err := h.ingredients.Search(c.Request.Context(), inbound.IngredientQuery{
		Text:  c.Query("query"),
		Page:  page.Page,
		Limit: page.Limit,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, gin.H{
		"ingredients": list.Ingredients,
		"total":       list.Total,
		"page":        list.Page,
		"limit":       list.Limit,
	})
}

// Create handles POST /api/ingredients
func (h *IngredientHandler) Create(c *gin.Context) {
	var cmd inbound.CreateIngredientCommand
	if !bindJSON(c, &cmd) {
		return
	}

	dto, err := h.ingredients.Create(c.Request.Context(), cmd)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusCreated, gin.H{"ingredient": dto})
}

// Get handles GET /api/ingredients/:id
func (h *IngredientHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	dto, err := h.ingredients.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, gin.H{"ingredient": dto})
}
