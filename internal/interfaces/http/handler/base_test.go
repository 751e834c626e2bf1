package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/treasury/internal/domain/shared"
	"github.com/erp/treasury/internal/infrastructure/logger"
	"github.com/erp/treasury/internal/interfaces/http/dto"
	"github.com/erp/treasury/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetTenantID(t *testing.T) {
	c, _ := newTestContext()

	_, err := getTenantID(c)
	assert.Error(t, err)

	tenantID := uuid.New()
	c.Set(middleware.TenantIDKey, tenantID)
	got, err := getTenantID(c)
	require.NoError(t, err)
	assert.Equal(t, tenantID, got)
}

func TestGetUserID(t *testing.T) {
	c, _ := newTestContext()
	assert.Nil(t, getUserID(c))

	userID := uuid.New()
	c.Set(middleware.UserIDKey, userID)
	got := getUserID(c)
	require.NotNil(t, got)
	assert.Equal(t, userID, *got)
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.Success(c, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeBody(t, w).Success)
}

func TestBaseHandlerCreated(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.Created(c, map[string]string{"id": "123"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, decodeBody(t, w).Success)
}

func TestBaseHandlerNoContent(t *testing.T) {
	h := &BaseHandler{}

	router := gin.New()
	router.DELETE("/test", func(c *gin.Context) {
		h.NoContent(c)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/test", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestBaseHandlerErrorWithRequestID(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()
	c.Set(logger.RequestIDKey, "test-request-123")

	h.BadRequest(c, "Invalid request")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeBody(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
	assert.Equal(t, "test-request-123", resp.Error.RequestID)
}

func TestBaseHandlerUnauthorized(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	_, ok := h.tenantOrAbort(c)

	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeUnauthorized, decodeBody(t, w).Error.Code)
}

func TestBaseHandlerIDOrAbort(t *testing.T) {
	h := &BaseHandler{}

	c, _ := newTestContext()
	id := uuid.New()
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	got, ok := h.idOrAbort(c, "id")
	assert.True(t, ok)
	assert.Equal(t, id, got)

	c, w := newTestContext()
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	_, ok = h.idOrAbort(c, "id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBaseHandlerHandleDomainError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedErr  string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"invalid input", shared.ErrInvalidInput, http.StatusBadRequest, dto.ErrCodeInvalidInput},
		{"invalid state", shared.ErrInvalidState, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"concurrency conflict", shared.ErrConcurrencyConflict, http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{"already confirmed", shared.ErrAlreadyConfirmed, http.StatusUnprocessableEntity, dto.ErrCodeAlreadyConfirmed},
		{"no open session", shared.ErrNoOpenSession, http.StatusUnprocessableEntity, dto.ErrCodeNoOpenSession},
		{"session already open", shared.ErrSessionAlreadyOpen, http.StatusConflict, dto.ErrCodeSessionAlreadyOpen},
		{"movement reconciled", shared.ErrMovementReconciled, http.StatusConflict, dto.ErrCodeMovementReconciled},
		{"amount exceeds available", shared.ErrAmountExceedsAvailable, http.StatusUnprocessableEntity, dto.ErrCodeAmountExceedsAvailable},
		{"amount exceeds remaining", shared.ErrAmountExceedsRemaining, http.StatusUnprocessableEntity, dto.ErrCodeAmountExceedsRemaining},
		{"external dependency", shared.ErrExternalDependency, http.StatusBadGateway, dto.ErrCodeExternalDependency},
		{"wrapped domain error", fmt.Errorf("confirm: %w", shared.ErrAccountInactive), http.StatusUnprocessableEntity, dto.ErrCodeAccountInactive},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := newTestContext()

			h.HandleDomainError(c, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			resp := decodeBody(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.expectedErr, resp.Error.Code)
		})
	}
}

func TestBaseHandlerHandleDomainError_HidesInternalMessage(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.HandleDomainError(c, errors.New("pq: connection refused"))

	resp := decodeBody(t, w)
	require.NotNil(t, resp.Error)
	assert.NotContains(t, resp.Error.Message, "pq:")
}

func TestBaseHandlerHandleDomainError_Nil(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()

	h.HandleDomainError(c, nil)

	assert.Empty(t, w.Body.String())
}
