package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/recipemanager/server/internal/infrastructure/config"
	"github.com/recipemanager/server/internal/infrastructure/http/middleware"
	"github.com/recipemanager/server/internal/infrastructure/monitoring"
	"github.com/recipemanager/server/internal/ports/inbound"
	"go.uber.org/zap"
)

// AuthHandler handles registration and token sessions
type AuthHandler struct {
	users   inbound.UserService
	cookie  config.AuthConfig
	metrics *monitoring.Metrics
	logger  *zap.Logger
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(users inbound.UserService, cfg config.AuthConfig, metrics *monitoring.Metrics, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		users:   users,
		cookie:  cfg,
		metrics: metrics,
		logger:  logger.Named("auth-handler"),
	}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var cmd inbound.RegisterCommand
	if !bindJSON(c, &cmd) {
		return
	}

	result, err := h.users.Register(c.Request.Context(), cmd)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.metrics.RecordUserRegistered()
	h.setAuthCookie(c, result.Token, result.ExpiresAt)
	respond(c, http.StatusCreated, gin.H{
		"message":    "Registration successful",
		"user":       result.User,
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var cmd inbound.LoginCommand
	if !bindJSON(c, &cmd) {
		return
	}

	result, err := h.users.Login(c.Request.Context(), cmd)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.setAuthCookie(c, result.Token, result.ExpiresAt)
	respond(c, http.StatusOK, gin.H{
		"message":    "Login successful",
		"user":       result.User,
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
	})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.users.Logout(c.Request.Context(), middleware.TokenFrom(c)); err != nil {
		_ = c.Error(err)
		return
	}

	if p := middleware.PrincipalFrom(c); p != nil {
		h.logger.Info("User logged out", zap.String("user_id", p.UserID.String()))
	}
	h.clearAuthCookie(c)
	respond(c, http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// CurrentUser handles GET /api/auth/user
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	user, err := h.users.CurrentUser(c.Request.Context(), p.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	respond(c, http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) setAuthCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.CookieName, token, maxAge, "/", "", h.cookie.CookieSecure, true)
}

func (h *AuthHandler) clearAuthCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.CookieName, "", -1, "/", "", h.cookie.CookieSecure, true)
}
