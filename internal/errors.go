package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeUnauthenticated ErrorType = "UNAUTHENTICATED"
	ErrorTypeForbidden       ErrorType = "FORBIDDEN"
	ErrorTypeConflict        ErrorType = "CONFLICT"
	ErrorTypeInternal        ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	// Session validation
	ErrCodeMissingToken   ErrorCode = "MISSING_TOKEN"
	ErrCodeInvalidToken   ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired   ErrorCode = "TOKEN_EXPIRED"
	ErrCodeSessionExpired ErrorCode = "SESSION_EXPIRED"
	ErrCodeUserNotFound   ErrorCode = "USER_NOT_FOUND"
	ErrCodeUserInactive   ErrorCode = "USER_INACTIVE"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrCodeUnknownPermission  ErrorCode = "UNKNOWN_PERMISSION"

	// Leave lifecycle
	ErrCodeInvalidRange        ErrorCode = "INVALID_RANGE"
	ErrCodeNotEditable         ErrorCode = "NOT_EDITABLE"
	ErrCodeNotCancellable      ErrorCode = "NOT_CANCELLABLE"
	ErrCodeNotPending          ErrorCode = "NOT_PENDING"
	ErrCodeLedgerRowMissing    ErrorCode = "LEDGER_ROW_MISSING"
	ErrCodeInsufficientBalance ErrorCode = "INSUFFICIENT_BALANCE"
	ErrCodeBalanceCapacity     ErrorCode = "BALANCE_CAPACITY"

	ErrCodeApplicationNotFound  ErrorCode = "APPLICATION_NOT_FOUND"
	ErrCodeMonetizationNotFound ErrorCode = "MONETIZATION_NOT_FOUND"
	ErrCodePersonnelNotFound    ErrorCode = "PERSONNEL_NOT_FOUND"
	ErrCodeLeaveTypeNotFound    ErrorCode = "LEAVE_TYPE_NOT_FOUND"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Messages() string {
	msgs := make([]string, len(v.Errors))
	for i, e := range v.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthenticatedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthenticated,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// Session validation errors. These answer "who are you"; ErrForbidden answers
// "you may not do this". Callers must not conflate the two.
var (
	ErrMissingToken   = NewUnauthenticatedError("Access token required", ErrCodeMissingToken)
	ErrInvalidToken   = NewUnauthenticatedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired   = NewUnauthenticatedError("Token has expired", ErrCodeTokenExpired)
	ErrSessionExpired = NewUnauthenticatedError("Session expired due to inactivity", ErrCodeSessionExpired)
	ErrUserNotFound   = NewUnauthenticatedError("User not found", ErrCodeUserNotFound)
	ErrUserInactive   = NewUnauthenticatedError("User account is inactive", ErrCodeUserInactive)

	ErrInvalidCredentials = NewUnauthenticatedError("Invalid username or password", ErrCodeInvalidCredentials)

	// Kept generic so a denial never reveals which permission was missing.
	ErrForbidden = NewForbiddenError("Insufficient permissions", ErrCodeForbidden)
)

// Leave lifecycle errors.
var (
	ErrInvalidRange        = NewValidationError("end date must not be before start date", ErrCodeInvalidRange)
	ErrNotEditable         = NewValidationError("only pending applications can be edited", ErrCodeNotEditable)
	ErrNotCancellable      = NewValidationError("only pending applications can be cancelled", ErrCodeNotCancellable)
	ErrNotPending          = NewValidationError("application is not pending", ErrCodeNotPending)
	ErrLedgerRowMissing    = NewConflictError("no leave balance for this leave type and year", ErrCodeLedgerRowMissing)
	ErrInsufficientBalance = NewConflictError("insufficient leave balance", ErrCodeInsufficientBalance)
	ErrBalanceCapacity     = NewConflictError("total credits cannot be less than used credits", ErrCodeBalanceCapacity)

	ErrApplicationNotFound  = NewNotFoundError("Leave application not found", ErrCodeApplicationNotFound)
	ErrMonetizationNotFound = NewNotFoundError("Monetization request not found", ErrCodeMonetizationNotFound)
	ErrPersonnelNotFound    = NewNotFoundError("Personnel record not found", ErrCodePersonnelNotFound)
	ErrLeaveTypeNotFound    = NewNotFoundError("Leave type not found", ErrCodeLeaveTypeNotFound)
)

func IsAppError(err error) (*AppError, bool) {
	if appErr, ok := err.(*AppError); ok {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
