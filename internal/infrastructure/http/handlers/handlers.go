// Package handlers provides HTTP handlers for the REST API
package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/recipemanager/server/internal/infrastructure/http/middleware"
	"github.com/recipemanager/server/internal/ports/inbound"
	"github.com/recipemanager/server/pkg/errors"
)

// respond writes the success envelope merged with payload
func respond(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// bindJSON decodes the request body into obj. On failure the error is
// attached to the context and false is returned.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			_ = c.Error(errors.NewPayloadTooLargeError(tooLarge.Limit))
			return false
		}
		_ = c.Error(errors.NewBadRequestError("Invalid request body").WithCause(err))
		return false
	}
	return true
}

// pathID parses a uuid path parameter
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		_ = c.Error(errors.NewBadRequestError("Invalid " + name))
		return uuid.Nil, false
	}
	return id, true
}

// pagination reads page and limit query parameters. Missing values are
// left at zero so services apply their defaults.
func pagination(c *gin.Context) (inbound.PaginationParams, bool) {
	var params inbound.PaginationParams
	for _, q := range []struct {
		name   string
		target *int
	}{
		{"page", &params.Page},
		{"limit", &params.Limit},
	} {
		raw := c.Query(q.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			_ = c.Error(errors.NewBadRequestError("Invalid " + q.name + " parameter"))
			return params, false
		}
		*q.target = v
	}
	return params, true
}

// principal returns the authenticated caller. Routes using it sit behind
// the Authenticate middleware.
func principal(c *gin.Context) (*inbound.Principal, bool) {
	p := middleware.PrincipalFrom(c)
	if p == nil {
		_ = c.Error(errors.NewUnauthorizedError(""))
		return nil, false
	}
	return p, true
}
