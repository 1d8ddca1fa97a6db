package apperrors

import "fmt"

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeValidation    ErrorType = "VALIDATION"
	TypeAttachment    ErrorType = "ATTACHMENT"
	TypeDecode        ErrorType = "DECODE"
	TypeSubmission    ErrorType = "SUBMISSION"
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error.
// Message is diagnostic text for logs; user-facing text comes from the i18n table.
type AppError struct {
	Type    ErrorType
	Message string
	Context map[string]interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError with the same type and message, so copies made by
// WithError and WithContext still satisfy errors.Is against the sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:    e.Type,
		Message: e.Message,
		Context: e.Context,
		Err:     err,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{}, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:    e.Type,
		Message: e.Message,
		Context: ctx,
		Err:     e.Err,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// TypeOf returns the ErrorType of err, or TypeInternal when err is not an AppError.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr.Type
	}
	return TypeInternal
}

// Validation errors
var (
	ErrRequiredField   = NewAppError(TypeValidation, "required field is empty", nil)
	ErrInvalidPhone    = NewAppError(TypeValidation, "invalid phone number", nil)
	ErrInvalidEmail    = NewAppError(TypeValidation, "invalid email address", nil)
	ErrConsentRequired = NewAppError(TypeValidation, "consent checkbox not checked", nil)
)

// Attachment errors
var (
	ErrCapacityExceeded = NewAppError(TypeAttachment, "attachment capacity exceeded", nil)
	ErrUnsupportedType  = NewAppError(TypeAttachment, "unsupported attachment type", nil)
	ErrTooLarge         = NewAppError(TypeAttachment, "attachment too large", nil)
)

// Decode errors
var (
	ErrNotAnImage       = NewAppError(TypeDecode, "attachment is not an image", nil)
	ErrUnsupportedImage = NewAppError(TypeDecode, "image format cannot be decoded", nil)
	ErrThumbnailEncode  = NewAppError(TypeDecode, "thumbnail encoding failed", nil)
	ErrImageTooLarge    = NewAppError(TypeDecode, "image dimensions exceed the decode budget", nil)
)

// Submission errors
var (
	ErrTransport          = NewAppError(TypeSubmission, "intake request failed", nil)
	ErrUnexpectedStatus   = NewAppError(TypeSubmission, "intake returned a non-success status", nil)
	ErrInvalidResponse    = NewAppError(TypeSubmission, "intake response could not be decoded", nil)
	ErrSubmissionRejected = NewAppError(TypeSubmission, "intake rejected the submission", nil)
	ErrPayloadEncoding    = NewAppError(TypeSubmission, "payload could not be encoded", nil)
)

// Configuration errors
var (
	ErrIntakeUnavailable = NewAppError(TypeConfiguration, "intake mechanism is not available", nil)
	ErrInvalidConfig     = NewAppError(TypeConfiguration, "invalid configuration", nil)
	ErrMountPointMissing = NewAppError(TypeConfiguration, "page is missing a required element", nil)
)
