package shared

// DomainError is a business rule violation with a stable machine-readable
// code. The HTTP layer maps codes to status codes.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a domain error with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Sentinel errors shared across aggregates
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInsufficientBalance = NewDomainError("INSUFFICIENT_BALANCE", "Insufficient balance available")
	ErrAccountBlocked      = NewDomainError("ACCOUNT_BLOCKED", "Account is blocked")
	ErrDepositLimit        = NewDomainError("DEPOSIT_LIMIT_EXCEEDED", "Deposit limit exceeded")
	ErrNoReferralSlots     = NewDomainError("NO_REFERRAL_SLOTS", "Referral code has no available slots")
	ErrInvalidSignature    = NewDomainError("INVALID_SIGNATURE", "Webhook signature verification failed")
)
