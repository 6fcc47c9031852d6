package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_StatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"validation", NewValidationError("name is required"), http.StatusBadRequest},
		{"image limit", NewImageLimitError(5, 5, 1), http.StatusBadRequest},
		{"unauthorized", NewUnauthorizedError(""), http.StatusUnauthorized},
		{"invalid credentials", NewInvalidCredentialsError(), http.StatusUnauthorized},
		{"permissions", NewInsufficientPermissionsError("update this recipe"), http.StatusForbidden},
		{"recipe not found", NewRecipeNotFoundError("abc"), http.StatusNotFound},
		{"ingredient not found", NewIngredientNotFoundError("abc"), http.StatusNotFound},
		{"email exists", NewEmailAlreadyExistsError("a@b.c"), http.StatusConflict},
		{"ingredient exists", NewIngredientExistsError("Salt"), http.StatusConflict},
		{"too large", NewPayloadTooLargeError(10), http.StatusRequestEntityTooLarge},
		{"media type", NewUnsupportedMediaTypeError("text/plain"), http.StatusUnsupportedMediaType},
		{"database", NewDatabaseError("find recipe", stderrors.New("boom")), http.StatusInternalServerError},
		{"external", NewExternalServiceError("themealdb", stderrors.New("boom")), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestWrap_PreservesAppError(t *testing.T) {
	original := NewRecipeNotFoundError("123")
	wrapped := fmt.Errorf("load: %w", original)

	got := Wrap(wrapped, "ignored")

	assert.Same(t, original, got)
	assert.True(t, Is(wrapped, CodeRecipeNotFound))
	assert.Equal(t, CodeRecipeNotFound, GetCode(wrapped))
}

func TestWrap_PlainErrorBecomesInternal(t *testing.T) {
	cause := stderrors.New("disk on fire")

	got := Wrap(cause, "save image")

	require.NotNil(t, got)
	assert.Equal(t, CodeInternal, got.Code)
	assert.ErrorIs(t, got, cause)
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestFromValidator(t *testing.T) {
	type payload struct {
		Name     string `validate:"required"`
		Servings int    `validate:"min=1"`
	}

	err := validator.New().Struct(payload{})
	appErr := FromValidator(err)

	assert.Equal(t, CodeValidationFailed, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.StatusCode())
	fields, ok := appErr.Metadata["validation_errors"].(ValidationErrors)
	require.True(t, ok)
	assert.Len(t, fields, 2)
	assert.Equal(t, "name is required", fields[0].Message)
	assert.Equal(t, "servings must be at least 1", fields[1].Message)
}

func TestFromValidator_NonValidationError(t *testing.T) {
	appErr := FromValidator(stderrors.New("unexpected EOF"))

	assert.Equal(t, CodeBadRequest, appErr.Code)
}

func TestToErrorResponse_HidesServerDetails(t *testing.T) {
	resp := ToErrorResponse(NewDatabaseError("create recipe", stderrors.New("pq: connection refused")), "req-1")

	assert.False(t, resp.Success)
	assert.Equal(t, CodeInternal, resp.Error.Code)
	assert.Equal(t, "An unexpected error occurred", resp.Error.Message)
	assert.Empty(t, resp.Error.Details)
	assert.Equal(t, "req-1", resp.Error.RequestID)
}

func TestToErrorResponse_KeepsClientDetails(t *testing.T) {
	resp := ToErrorResponse(NewImageLimitError(5, 4, 2), "")

	assert.Equal(t, CodeImageLimitReached, resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "at most 5 images")
	assert.Equal(t, 5, resp.Error.Metadata["limit"])
}
