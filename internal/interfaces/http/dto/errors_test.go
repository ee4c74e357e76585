package dto

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

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
		{ErrCodeValidationRequired, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeBusinessRule, http.StatusUnprocessableEntity},
		{ErrCodeInsufficientBalance, http.StatusUnprocessableEntity},
		{ErrCodeNoReferralSlots, http.StatusUnprocessableEntity},
		{ErrCodeDepositLimit, http.StatusUnprocessableEntity},
		{ErrCodeInvalidSignature, http.StatusUnauthorized},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	legacy := map[string]string{
		"NOT_FOUND":              ErrCodeNotFound,
		"ALREADY_EXISTS":         ErrCodeAlreadyExists,
		"INVALID_INPUT":          ErrCodeInvalidInput,
		"INVALID_STATE":          ErrCodeInvalidState,
		"UNAUTHORIZED":           ErrCodeUnauthorized,
		"FORBIDDEN":              ErrCodeForbidden,
		"CONCURRENCY_CONFLICT":   ErrCodeConcurrencyConflict,
		"INSUFFICIENT_BALANCE":   ErrCodeInsufficientBalance,
		"NO_REFERRAL_SLOTS":      ErrCodeNoReferralSlots,
		"DEPOSIT_LIMIT_EXCEEDED": ErrCodeDepositLimit,
		"INVALID_SIGNATURE":      ErrCodeInvalidSignature,
		"ACCOUNT_BLOCKED":        ErrCodeAccountBlocked,
		"VALIDATION_ERROR":       ErrCodeValidation,
		"BAD_REQUEST":            ErrCodeBadRequest,
		"INTERNAL_ERROR":         ErrCodeInternal,
	}
	for input, expected := range legacy {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, expected, NormalizeErrorCode(input))
		})
	}

	// Current and unknown codes pass through unchanged.
	for _, code := range []string{ErrCodeNotFound, ErrCodeValidation, "CUSTOM_ERROR"} {
		assert.Equal(t, code, NormalizeErrorCode(code))
	}
}

var allErrorCodes = []string{
	ErrCodeUnknown,
	ErrCodeInternal,
	ErrCodeValidation,
	ErrCodeValidationRequired,
	ErrCodeValidationFormat,
	ErrCodeValidationRange,
	ErrCodeUnauthorized,
	ErrCodeForbidden,
	ErrCodeTokenExpired,
	ErrCodeTokenInvalid,
	ErrCodeInvalidCredentials,
	ErrCodeInvalidSignature,
	ErrCodeAccountBlocked,
	ErrCodeNotFound,
	ErrCodeAlreadyExists,
	ErrCodeConflict,
	ErrCodeConcurrencyConflict,
	ErrCodeInvalidState,
	ErrCodeBusinessRule,
	ErrCodeInsufficientBalance,
	ErrCodeDepositLimit,
	ErrCodeNoReferralSlots,
	ErrCodeBadRequest,
	ErrCodeInvalidInput,
	ErrCodeInvalidJSON,
	ErrCodeProcessorUnavailable,
	ErrCodeProcessorRequest,
	ErrCodeRateLimited,
	ErrCodeTooManyRequests,
}

func TestErrorCodesHaveHTTPStatusAndPrefix(t *testing.T) {
	for _, code := range allErrorCodes {
		t.Run(code, func(t *testing.T) {
			status, ok := ErrorCodeHTTPStatus[code]
			assert.True(t, ok, "error code %s should be in ErrorCodeHTTPStatus map", code)
			assert.Greater(t, status, 0)
			assert.Contains(t, code, "ERR_")
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("NOT_FOUND", "Transaction not found")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code, "legacy code should be normalized")
	assert.Equal(t, "Transaction not found", resp.Error.Message)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Transaction not found", "req-dep-123")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Transaction not found", resp.Error.Message)
	assert.Equal(t, "req-dep-123", resp.Error.RequestID)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "pix_key", Message: "Invalid PIX key format"},
		{Field: "amount", Message: "Must be greater than zero"},
	}

	resp := NewValidationErrorResponse("Validation failed", "req-789", details)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "Validation failed", resp.Error.Message)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "pix_key", resp.Error.Details[0].Field)
	assert.Equal(t, "Invalid PIX key format", resp.Error.Details[0].Message)
}

func TestNewErrorResponseWithHelp(t *testing.T) {
	help := "https://docs.example.com/errors/auth"
	resp := NewErrorResponseWithHelp(ErrCodeUnauthorized, "Not authenticated", "req-001", help)

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeUnauthorized, resp.Error.Code)
	assert.Equal(t, "Not authenticated", resp.Error.Message)
	assert.Equal(t, help, resp.Error.Help)
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Account not found", "req-test-123")

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded Response
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.False(t, decoded.Success)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, ErrCodeNotFound, decoded.Error.Code)
	assert.Equal(t, "Account not found", decoded.Error.Message)
	assert.Equal(t, "req-test-123", decoded.Error.RequestID)
}

func TestErrorResponseTimestamp(t *testing.T) {
	before := time.Now()
	resp := NewErrorResponse(ErrCodeInternal, "Server error")
	after := time.Now()

	assert.False(t, resp.Error.Timestamp.Before(before))
	assert.False(t, resp.Error.Timestamp.After(after))
}

func TestNewSuccessResponse(t *testing.T) {
	resp := NewSuccessResponse(map[string]string{"status": "paid"})

	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
	assert.Nil(t, resp.Meta)
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]string{"dep_1", "dep_2"}, 100, 1, 10)

	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(100), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 10, resp.Meta.PageSize)
	assert.Equal(t, 10, resp.Meta.TotalPages)
}

func TestNewSuccessResponseWithMetaPagination(t *testing.T) {
	tests := []struct {
		total         int64
		page          int
		pageSize      int
		expectedPages int
		expectedSize  int
	}{
		{100, 1, 10, 10, 10},
		{101, 1, 10, 11, 10},
		{0, 1, 10, 0, 10},
		{9, 1, 10, 1, 10},
		{10, 1, 10, 1, 10},
		{11, 1, 10, 2, 10},
		// Non-positive page size falls back to the default of 20.
		{100, 1, 0, 5, 20},
		{100, 1, -1, 5, 20},
	}

	for _, tt := range tests {
		resp := NewSuccessResponseWithMeta(nil, tt.total, tt.page, tt.pageSize)
		assert.Equal(t, tt.expectedPages, resp.Meta.TotalPages)
		assert.Equal(t, tt.expectedSize, resp.Meta.PageSize)
	}
}
