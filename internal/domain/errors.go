package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")

	// One-time code verification outcomes. All are user-correctable by
	// resubmitting or requesting a new code.
	ErrCodeNotFound    = errors.New("no active code for this email")
	ErrCodeExpired     = errors.New("code expired")
	ErrCodeMismatch    = errors.New("incorrect code")
	ErrTooManyAttempts = errors.New("too many incorrect attempts")

	// ErrPersistence marks storage failures. The wrapped detail is for logs only.
	ErrPersistence = errors.New("storage unavailable")
	// ErrDelivery marks a failure to hand a code to the delivery channel.
	ErrDelivery = errors.New("code delivery failed")
)

// ValidationError is a user-correctable input error whose message is shown verbatim.
type ValidationError struct {
	Reason string
}

func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

func (e *ValidationError) Error() string { return e.Reason }

// Is lets callers match a ValidationError with errors.Is(err, ErrBadRequest).
func (e *ValidationError) Is(target error) bool { return target == ErrBadRequest }
