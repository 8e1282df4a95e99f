package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrValidation          = NewDomainError("VALIDATION_ERROR", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrIllegalTransition   = NewDomainError("ILLEGAL_TRANSITION", "Status transition not allowed in current state")
	ErrUnbalancedJournal   = NewDomainError("UNBALANCED_JOURNAL", "Journal entries do not balance")
	ErrUnknownCurrency     = NewDomainError("UNKNOWN_CURRENCY", "No exchange rate for currency pair")
	ErrDuplicateConversion = NewDomainError("DUPLICATE_CONVERSION", "Document has already been converted")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
)
