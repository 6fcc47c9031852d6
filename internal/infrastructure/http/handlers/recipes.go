package handlers

import (
	stderrors "errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recipemanager/server/internal/ports/inbound"
	"github.com/recipemanager/server/pkg/errors"
	"go.uber.org/zap"
)

// ImagesField is the multipart field carrying recipe images
const ImagesField = "images"

// RecipeHandler handles recipe requests
type RecipeHandler struct {
	recipes inbound.RecipeService
	logger  *zap.Logger
}

// NewRecipeHandler creates a new recipe handler
func NewRecipeHandler(recipes inbound.RecipeService, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipes: recipes,
		logger:  logger.Named("recipe-handler"),
	}
}

// ListMine handles GET /api/recipes
func (h *RecipeHandler) ListMine(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	page, ok := pagination(c)
	if !ok {
		return
	}

	list, err := h.recipes.ListMine(c.Request.Context(), p.UserID, page)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respondList(c, list)
}

// ListPublic handles GET /api/recipes/public
func (h *RecipeHandler) ListPublic(c *gin.Context) {
	page, ok := pagination(c)
	if !ok {
		return
	}

	list, err := h.recipes.ListPublic(c.Request.Context(), inbound.RecipeQuery{
		Text:       c.Query("query"),
		Type:       c.Query("type"),
		Pagination: page,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	respondList(c, list)
}

// Create handles POST /api/recipes
func (h *RecipeHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var cmd inbound.CreateRecipeCommand
	if !bindJSON(c, &cmd) {
		return
	}
	cmd.AuthorID = p.UserID

	dto, err := h.recipes.CreateRecipe(c.Request.Context(), cmd)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusCreated, gin.H{"recipe": dto})
}

// Get handles GET /api/recipes/:id
func (h *RecipeHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	dto, err := h.recipes.GetRecipe(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, gin.H{"recipe": dto})
}

// Update handles PUT /api/recipes/:id
func (h *RecipeHandler) Update(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var cmd inbound.UpdateRecipeCommand
	if !bindJSON(c, &cmd) {
		return
	}
	cmd.RecipeID = id
	cmd.UserID = p.UserID

	dto, err := h.recipes.UpdateRecipe(c.Request.Context(), cmd)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, gin.H{"recipe": dto})
}

// Delete handles DELETE /api/recipes/:id
func (h *RecipeHandler) Delete(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.recipes.DeleteRecipe(c.Request.Context(), id, p.UserID, p.IsAdmin()); err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, gin.H{"message": "Recipe deleted successfully"})
}

// Nutrition handles GET /api/recipes/:id/nutrition
func (h *RecipeHandler) Nutrition(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	facts, err := h.recipes.GetNutrition(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, gin.H{"nutrition": facts})
}

// UploadImages handles POST /api/recipes/:id/images
func (h *RecipeHandler) UploadImages(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			_ = c.Error(errors.NewPayloadTooLargeError(tooLarge.Limit))
			return
		}
		_ = c.Error(errors.NewBadRequestError("Invalid multipart form").WithCause(err))
		return
	}

	headers := form.File[ImagesField]
	files := make([]inbound.ImageUpload, 0, len(headers))
	var closers []io.Closer
	defer func() {
		for _, cl := range closers {
			cl.Close()
		}
	}()

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			_ = c.Error(errors.NewBadRequestError("Unreadable upload").WithCause(err))
			return
		}
		closers = append(closers, f)
		files = append(files, toUpload(fh, f))
	}

	images, err := h.recipes.UploadImages(c.Request.Context(), inbound.UploadImagesCommand{
		RecipeID: id,
		UserID:   p.UserID,
		Files:    files,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusCreated, gin.H{"images": images})
}

// DeleteImage handles DELETE /api/recipes/:id/images/:imageId
func (h *RecipeHandler) DeleteImage(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	imageID, ok := pathID(c, "imageId")
	if !ok {
		return
	}

	if err := h.recipes.DeleteImage(c.Request.Context(), id, imageID, p.UserID); err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, gin.H{"message": "Image deleted successfully"})
}

func toUpload(fh *multipart.FileHeader, body io.Reader) inbound.ImageUpload {
	return inbound.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        body,
	}
}

func respondList(c *gin.Context, list *inbound.RecipeList) {
	respond(c, http.StatusOK, gin.H{
		"recipes":     list.Recipes,
		"total":       list.Total,
		"page":        list.Page,
		"limit":       list.Limit,
		"total_pages": list.TotalPages,
	})
}
