package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Techtees/civicpro/internal/analytics"
	"github.com/Techtees/civicpro/internal/storage"
)

func TestToAppError(t *testing.T) {
	tests := []struct {
		name             string
		err              error
		expectedCategory ErrorCategory
		expectedStatus   int
	}{
		{
			name:             "storage not found maps to 404",
			err:              storage.ErrNotFound,
			expectedCategory: CategoryNotFound,
			expectedStatus:   http.StatusNotFound,
		},
		{
			name:             "wrapped not found still maps to 404",
			err:              fmt.Errorf("loading politician: %w", storage.ErrNotFound),
			expectedCategory: CategoryNotFound,
			expectedStatus:   http.StatusNotFound,
		},
		{
			name:             "duplicate rating maps to 400",
			err:              storage.ErrDuplicateRating,
			expectedCategory: CategoryDuplicate,
			expectedStatus:   http.StatusBadRequest,
		},
		{
			name:             "insufficient comparison targets maps to 400",
			err:              analytics.ErrInsufficientComparisonTargets,
			expectedCategory: CategoryComparison,
			expectedStatus:   http.StatusBadRequest,
		},
		{
			name:             "already moderated maps to 400",
			err:              analytics.ErrAlreadyModerated,
			expectedCategory: CategoryValidation,
			expectedStatus:   http.StatusBadRequest,
		},
		{
			name:             "invalid input carries its fields",
			err:              &analytics.InvalidInputError{Fields: map[string]string{"rating": "out of range"}},
			expectedCategory: CategoryValidation,
			expectedStatus:   http.StatusBadRequest,
		},
		{
			name:             "existing app error passes through",
			err:              NewForbiddenError("nope"),
			expectedCategory: CategoryAuth,
			expectedStatus:   http.StatusForbidden,
		},
		{
			name:             "unknown error falls back to a 500 store error",
			err:              errors.New("boom"),
			expectedCategory: CategoryStore,
			expectedStatus:   http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := ToAppError(tt.err)

			require.NotNil(t, appErr)
			assert.Equal(t, tt.expectedCategory, appErr.Category)
			assert.Equal(t, tt.expectedStatus, appErr.HTTPStatus)
		})
	}
}

func TestToAppError_Nil(t *testing.T) {
	assert.Nil(t, ToAppError(nil))
}

func TestAppError_MarshalJSON(t *testing.T) {
	appErr := NewValidationErrorWithMap(map[string]string{"name": "name is required"})

	data, err := json.Marshal(appErr)
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, "Invalid request data", payload["message"])
	assert.Equal(t, string(CategoryValidation), payload["category"])
	fields := payload["errors"].(map[string]any)
	assert.Equal(t, "name is required", fields["name"])
}

func TestErrorHandlerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/missing", func(c *gin.Context) {
		c.Error(storage.ErrNotFound)
	})
	r.GET("/fine", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not found")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fine", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecoveryHandlerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RecoveryHandler())
	r.GET("/panic", func(c *gin.Context) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}
