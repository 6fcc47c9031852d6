package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/recipemanager/server/internal/infrastructure/http/middleware"
	"github.com/recipemanager/server/internal/infrastructure/monitoring"
	"github.com/recipemanager/server/internal/ports/inbound"
	"github.com/recipemanager/server/pkg/errors"
	"go.uber.org/zap"
)

// Import outcomes reported to metrics
const (
	ImportCompleted = "completed"
	ImportSkipped   = "skipped"
	ImportFailed    = "failed"
)

// AdminHandler serves admin-only operations
type AdminHandler struct {
	importer inbound.ImportService
	metrics  *monitoring.Metrics
	timeout  time.Duration
	logger   *zap.Logger
}

// NewAdminHandler creates a new admin handler. timeout bounds an import
// run independently of the request deadline.
func NewAdminHandler(importer inbound.ImportService, metrics *monitoring.Metrics, timeout time.Duration, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		importer: importer,
		metrics:  metrics,
		timeout:  timeout,
		logger:   logger.Named("admin-handler"),
	}
}

// Import handles POST /api/admin/import
func (h *AdminHandler) Import(c *gin.Context) {
	force := false
	if raw := c.Query("force"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			_ = c.Error(errors.NewBadRequestError("Invalid force parameter"))
			return
		}
		force = v
	}

	// The run survives a dropped client connection.
	ctx := context.WithoutCancel(c.Request.Context())
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	if p := middleware.PrincipalFrom(c); p != nil {
		h.logger.Info("Import requested",
			zap.String("user_id", p.UserID.String()),
			zap.Bool("force", force),
		)
	}

	start := time.Now()
	result, err := h.importer.Run(ctx, inbound.ImportCommand{Force: force})
	if err != nil {
		h.metrics.RecordImport(ImportFailed, 0, 0, 0, time.Since(start))
		_ = c.Error(err)
		return
	}

	outcome := ImportCompleted
	if !result.Success {
		outcome = ImportSkipped
	}
	h.metrics.RecordImport(outcome, result.RecipesImported, result.IngredientsImported, len(result.Errors), time.Since(start))

	c.JSON(http.StatusOK, result)
}
