package domain

import (
	"fmt"
	"net/http"
)

type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindConflict
	KindRateLimit
	KindInternal
)

func (k ErrorKind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindInternal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindAuthentication:
		return "AuthenticationError"
	case KindAuthorization:
		return "AuthorizationError"
	case KindNotFound:
		return "NotFoundError"
	case KindConflict:
		return "ConflictError"
	case KindRateLimit:
		return "RateLimitError"
	case KindInternal:
		return "InternalError"
	}
	return "InternalError"
}

// Error is the typed failure every layer returns to the HTTP boundary.
// Status overrides the kind's default HTTP status when non-zero.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	Field   string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind and message so copies carrying details still compare
// equal to the sentinel they were derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	return e.Kind.Status()
}

func (e *Error) WithDetails(details any) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

func (e *Error) WithField(field string) *Error {
	cp := *e
	cp.Field = field
	return &cp
}

func NewValidationError(message, field string) *Error {
	return &Error{Kind: KindValidation, Message: message, Field: field}
}

func NewNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func NewConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func NewForbiddenError(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func NewUnauthorizedError(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

func NewInternalError(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: err}
}

var (
	ErrCredentialRequired      = NewUnauthorizedError("Access token required")
	ErrTokenExpired            = NewUnauthorizedError("Token expired")
	ErrInvalidToken            = NewForbiddenError("Invalid token")
	ErrInvalidRole             = NewForbiddenError("Invalid user role")
	ErrPrincipalNotFound       = NewUnauthorizedError("User not found or unauthorized")
	ErrAccountDeactivated      = NewForbiddenError("Account is deactivated")
	ErrInsufficientPermissions = NewForbiddenError("Insufficient permissions")
	ErrInvalidCredentials      = NewUnauthorizedError("Invalid credentials")
	ErrInvalidOTP              = NewValidationError("Invalid or expired OTP", "otp")
	ErrInvalidPhone            = NewValidationError("Invalid phone number. Use +91XXXXXXXXXX", "phone")

	ErrRateLimited = &Error{Kind: KindRateLimit, Message: "Rate limit exceeded. Please try again later."}
)
