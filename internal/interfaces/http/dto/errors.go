package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	// ErrCodeTokenInvalid is used when the auth token is invalid
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	// ErrCodeInvalidCredentials is used when login credentials do not match
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	// ErrCodeInvalidSignature is used when webhook signature verification fails
	ErrCodeInvalidSignature = "ERR_INVALID_SIGNATURE"
	// ErrCodeAccountBlocked is used when the acting account is blocked
	ErrCodeAccountBlocked = "ERR_ACCOUNT_BLOCKED"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeInsufficientBalance is used when balance is insufficient
	ErrCodeInsufficientBalance = "ERR_INSUFFICIENT_BALANCE"
	// ErrCodeDepositLimit is used when a deposit exceeds its limit
	ErrCodeDepositLimit = "ERR_DEPOSIT_LIMIT_EXCEEDED"
	// ErrCodeNoReferralSlots is used when a referral code is exhausted
	ErrCodeNoReferralSlots = "ERR_NO_REFERRAL_SLOTS"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Upstream error codes
const (
	// ErrCodeProcessorUnavailable is used when the PIX processor is down
	ErrCodeProcessorUnavailable = "ERR_PROCESSOR_UNAVAILABLE"
	// ErrCodeProcessorRequest is used when the PIX processor rejects a request
	ErrCodeProcessorRequest = "ERR_PROCESSOR_REQUEST"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
	// ErrCodeTooManyRequests is an alias for rate limiting
	ErrCodeTooManyRequests = "ERR_TOO_MANY_REQUESTS"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,
	ErrCodeInvalidSignature:   http.StatusUnauthorized,
	ErrCodeAccountBlocked:     http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:        http.StatusUnprocessableEntity,
	ErrCodeInsufficientBalance: http.StatusUnprocessableEntity,
	ErrCodeDepositLimit:        http.StatusUnprocessableEntity,
	ErrCodeNoReferralSlots:     http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	// Upstream errors -> 502 Bad Gateway
	ErrCodeProcessorUnavailable: http.StatusBadGateway,
	ErrCodeProcessorRequest:     http.StatusBadGateway,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeTooManyRequests: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the standardized
// API codes. Unlisted domain codes pass through NormalizeErrorCode
// unchanged.
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":              ErrCodeNotFound,
	"ALREADY_EXISTS":         ErrCodeAlreadyExists,
	"INVALID_INPUT":          ErrCodeInvalidInput,
	"INVALID_STATE":          ErrCodeInvalidState,
	"UNAUTHORIZED":           ErrCodeUnauthorized,
	"FORBIDDEN":              ErrCodeForbidden,
	"CONCURRENCY_CONFLICT":   ErrCodeConcurrencyConflict,
	"INSUFFICIENT_BALANCE":   ErrCodeInsufficientBalance,
	"INVALID_CREDENTIALS":    ErrCodeInvalidCredentials,
	"INVALID_SIGNATURE":      ErrCodeInvalidSignature,
	"ACCOUNT_BLOCKED":        ErrCodeAccountBlocked,
	"DEPOSIT_LIMIT_EXCEEDED": ErrCodeDepositLimit,
	"NO_REFERRAL_SLOTS":      ErrCodeNoReferralSlots,
	"RECIPIENT_NOT_FOUND":    ErrCodeNotFound,
	"RECIPIENT_BLOCKED":      ErrCodeBusinessRule,
	"RECEIPT_UNAVAILABLE":    ErrCodeInvalidState,
	"SELF_TRANSFER":          ErrCodeInvalidInput,
	"AMOUNT_BELOW_MINIMUM":   ErrCodeInvalidInput,
	"REFERRAL_REQUIRED":      ErrCodeInvalidInput,
	"INVALID_REFERRAL":       ErrCodeInvalidInput,
	"WEAK_PASSWORD":          ErrCodeInvalidInput,
	"INVALID_AMOUNT":         ErrCodeInvalidInput,
	"INVALID_PIX_KEY":        ErrCodeInvalidInput,
	"INVALID_PIX_KEY_TYPE":   ErrCodeInvalidInput,
	"INVALID_DOCUMENT":       ErrCodeInvalidInput,
	"INVALID_TICKET":         ErrCodeInvalidInput,
	"INVALID_SETTING":        ErrCodeInvalidInput,
	"INVALID_FEES":           ErrCodeInvalidInput,
	"INVALID_ACCOUNT":        ErrCodeInvalidInput,
	"INVALID_CODE":           ErrCodeInvalidInput,
	"INVALID_NAME":           ErrCodeInvalidInput,
	"INVALID_PASSWORD":       ErrCodeInvalidInput,
	"INVALID_COMMISSION":     ErrCodeInvalidInput,
	"INVALID_PROCESSOR_ID":   ErrCodeInvalidInput,
	"VALIDATION_ERROR":       ErrCodeValidation,
	"BAD_REQUEST":            ErrCodeBadRequest,
	"INTERNAL_ERROR":         ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the standardized
// format. If the code is already in the new format or unknown, returns
// it as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
