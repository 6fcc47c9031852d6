// Package server provides the HTTP server: the gin engine, its middleware
// chain and the API routes
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recipemanager/server/internal/domain/recipe"
	"github.com/recipemanager/server/internal/domain/user"
	"github.com/recipemanager/server/internal/infrastructure/config"
	"github.com/recipemanager/server/internal/infrastructure/http/handlers"
	"github.com/recipemanager/server/internal/infrastructure/http/middleware"
	"github.com/recipemanager/server/internal/infrastructure/monitoring"
	"github.com/recipemanager/server/internal/ports/inbound"
	apperrors "github.com/recipemanager/server/pkg/errors"
	"github.com/recipemanager/server/pkg/healthcheck"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// Handlers groups the API handlers mounted by the server
type Handlers struct {
	Auth        *handlers.AuthHandler
	Ingredients *handlers.IngredientHandler
	Recipes     *handlers.RecipeHandler
	Contact     *handlers.ContactHandler
	Admin       *handlers.AdminHandler
}

// Server represents the HTTP server
type Server struct {
	config *config.Config
	logger *zap.Logger
	engine *gin.Engine
	server *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	mw *middleware.Middleware,
	h Handlers,
	users inbound.UserService,
	health *healthcheck.HealthCheck,
	metrics *monitoring.Metrics,
) *Server {
	s := &Server{
		config: cfg,
		logger: logger.Named("http-server"),
	}

	s.engine = s.setupRouter(mw, h, users, health, metrics)

	s.server = &http.Server{
		Addr:              cfg.GetServerAddr(),
		Handler:           s.engine,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}

	return s
}

// Handler exposes the routed engine
func (s *Server) Handler() http.Handler {
	return s.engine
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter(
	mw *middleware.Middleware,
	h Handlers,
	users inbound.UserService,
	health *healthcheck.HealthCheck,
	metrics *monitoring.Metrics,
) *gin.Engine {
	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	if err := r.SetTrustedProxies(s.config.Server.TrustedProxies); err != nil {
		s.logger.Warn("Invalid trusted proxies", zap.Error(err))
	}

	uploadLimit := s.config.Storage.MaxFileSize*int64(recipe.MaxImages) + 1<<20

	// Global middleware
	r.Use(mw.RequestID())
	r.Use(mw.Tracing())
	r.Use(mw.Metrics())
	r.Use(mw.Logger())
	r.Use(mw.Recovery())
	r.Use(mw.Security())
	r.Use(mw.CORS())
	r.Use(mw.RateLimit())
	r.Use(mw.BodyLimit(uploadLimit))
	r.Use(mw.ErrorHandler())

	r.NoRoute(func(c *gin.Context) {
		_ = c.Error(apperrors.NewNotFoundError("route"))
	})

	// Probes and metrics
	r.GET("/health", health.Handler())
	r.GET("/health/live", health.LivenessHandler())
	r.GET("/health/ready", health.ReadinessHandler())
	if s.config.Monitoring.EnableMetrics {
		r.GET(s.config.Monitoring.MetricsPath, gin.WrapH(metrics.Handler()))
	}

	// Locally stored images
	if s.config.Storage.Provider == "local" {
		r.Static(s.config.Storage.PublicPath, s.config.Storage.LocalPath)
	}

	api := r.Group("/api")
	api.Use(mw.Compression(middleware.DefaultCompressionConfig()))

	authenticated := mw.Authenticate(users)
	timed := api.Group("", mw.Timeout(s.config.Server.RequestTimeout))

	auth := timed.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", authenticated, h.Auth.Logout)
		auth.GET("/user", authenticated, h.Auth.CurrentUser)
	}

	ingredients := timed.Group("/ingredients")
	{
		ingredients.GET("/search", h.Ingredients.Search)
		ingredients.POST("", authenticated, h.Ingredients.Create)
		ingredients.GET("/:id", h.Ingredients.Get)
	}

	recipes := timed.Group("/recipes")
	{
		recipes.GET("", authenticated, h.Recipes.ListMine)
		recipes.GET("/public", h.Recipes.ListPublic)
		recipes.POST("", authenticated, h.Recipes.Create)
		recipes.GET("/:id", h.Recipes.Get)
		recipes.PUT("/:id", authenticated, h.Recipes.Update)
		recipes.DELETE("/:id", authenticated, h.Recipes.Delete)
		recipes.GET("/:id/nutrition", h.Recipes.Nutrition)
		recipes.POST("/:id/images", authenticated, h.Recipes.UploadImages)
		recipes.DELETE("/:id/images/:imageId", authenticated, h.Recipes.DeleteImage)
	}

	timed.POST("/contact", h.Contact.Submit)

	// Imports outlive the request timeout
	admin := api.Group("/admin", authenticated, mw.RequireRole(string(user.RoleAdmin)))
	{
		admin.POST("/import", h.Admin.Import)
	}

	return r
}

// Start begins serving and blocks until the server stops
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		zap.String("address", s.server.Addr),
		zap.String("environment", s.config.App.Environment),
	)

	if err := http2.ConfigureServer(s.server, nil); err != nil {
		s.logger.Error("Failed to configure HTTP/2", zap.Error(err))
	}

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
