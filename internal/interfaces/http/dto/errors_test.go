package dto

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/erp/treasury/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeInvalidAmount, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeSessionAlreadyOpen, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeAmountExceedsAvailable, http.StatusUnprocessableEntity},
		{ErrCodeAmountExceedsRemaining, http.StatusUnprocessableEntity},
		{ErrCodeNoOpenSession, http.StatusUnprocessableEntity},
		{ErrCodeExternalDependency, http.StatusBadGateway},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestDomainErrorStatus(t *testing.T) {
	tests := []struct {
		err          *shared.DomainError
		expectedCode string
		expected     int
	}{
		{shared.ErrNotFound, ErrCodeNotFound, http.StatusNotFound},
		{shared.ErrInvalidState, ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{shared.ErrAmountExceedsAvailable, ErrCodeAmountExceedsAvailable, http.StatusUnprocessableEntity},
		{shared.ErrResourceConflict, ErrCodeConflict, http.StatusConflict},
		{shared.ErrConcurrencyConflict, ErrCodeConcurrencyConflict, http.StatusConflict},
		{shared.ErrExternalDependency, ErrCodeExternalDependency, http.StatusBadGateway},
		{shared.NewDomainError("INVALID_AMOUNT", "amount must be positive"), ErrCodeInvalidAmount, http.StatusBadRequest},
		// unmapped codes fall back to their kind
		{shared.NewDomainError("SOMETHING_NEW", "x"), "SOMETHING_NEW", http.StatusBadRequest},
		{&shared.DomainError{Code: "GONE", Kind: shared.KindNotFound}, "GONE", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			code, status := DomainErrorStatus(tt.err)
			assert.Equal(t, tt.expectedCode, code)
			assert.Equal(t, tt.expected, status)
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"INVALID_INPUT", ErrCodeInvalidInput},
		{"INVALID_VOUCHER_STATE", ErrCodeInvalidVoucherState},
		{"EXTERNAL_DEPENDENCY_FAILURE", ErrCodeExternalDependency},
		// API codes pass through unchanged
		{ErrCodeNotFound, ErrCodeNotFound},
		// Unknown codes pass through unchanged
		{"CUSTOM_ERROR", "CUSTOM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestEveryDomainCodeHasAStatus(t *testing.T) {
	for domainCode, apiCode := range DomainErrorCodeMapping {
		assert.True(t, strings.HasPrefix(apiCode, "ERR_"), "%s should map to an ERR_ code", domainCode)
		_, ok := ErrorCodeHTTPStatus[apiCode]
		assert.True(t, ok, "%s has no HTTP status", apiCode)
	}
}

func TestNewErrorResponse(t *testing.T) {
	before := time.Now()
	resp := NewErrorResponse("NOT_FOUND", "Resource not found")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Resource not found", resp.Error.Message)
	assert.False(t, resp.Error.Timestamp.Before(before))
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "amount", Message: "Must be greater than zero"},
		{Field: "bank_account_id", Message: "Invalid UUID format"},
	}
	resp := NewValidationErrorResponse("Validation failed", "req-789", details)

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "amount", resp.Error.Details[0].Field)
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Bank account not found", "req-test-123")

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded Response
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.False(t, decoded.Success)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, ErrCodeNotFound, decoded.Error.Code)
	assert.Equal(t, "req-test-123", decoded.Error.RequestID)
}
