package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/recipemanager/server/internal/ports/inbound"
	"github.com/recipemanager/server/pkg/errors"
	"go.uber.org/zap"
)

const (
	principalKey = "principal"
	tokenKey     = "auth_token"
)

// Authenticate resolves the bearer token (or the auth cookie) into a
// principal. Requests without a valid token are rejected with 401.
func (m *Middleware) Authenticate(users inbound.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			m.abort(c, errors.NewUnauthorizedError("Authentication required"))
			return
		}

		principal, err := users.Authenticate(c.Request.Context(), token)
		if err != nil {
			m.logger.Info("Token validation failed",
				zap.String("request_id", c.GetString(RequestIDKey)),
				zap.String("ip", c.ClientIP()),
				zap.Error(err))
			m.abort(c, err)
			return
		}

		c.Set(principalKey, principal)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// RequireRole rejects principals without the role with 403
func (m *Middleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := PrincipalFrom(c)
		if principal == nil {
			m.abort(c, errors.NewUnauthorizedError("Authentication required"))
			return
		}
		if principal.Role != role {
			m.abort(c, errors.NewInsufficientPermissionsError("access this resource"))
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the authenticated principal, or nil
func PrincipalFrom(c *gin.Context) *inbound.Principal {
	value, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	principal, _ := value.(*inbound.Principal)
	return principal
}

// TokenFrom returns the raw token the request was authenticated with
func TokenFrom(c *gin.Context) string {
	return c.GetString(tokenKey)
}

func (m *Middleware) extractToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	if cookie, err := c.Cookie(m.config.Auth.CookieName); err == nil {
		return cookie
	}
	return ""
}

func (m *Middleware) abort(c *gin.Context, err error) {
	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.NewUnauthorizedError("")
	}
	c.AbortWithStatusJSON(appErr.StatusCode(), errors.ToErrorResponse(appErr, c.GetString(RequestIDKey)))
}
