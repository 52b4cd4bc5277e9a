package services

import "errors"

// Base error kinds. Specific errors wrap one of these so handlers can map
// them to a status with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

var (
	ErrEmailTaken         = kindError(ErrConflict, "email already registered")
	ErrInvalidCredentials = kindError(ErrUnauthenticated, "invalid email or password")
	ErrInvalidToken       = kindError(ErrUnauthenticated, "invalid or expired refresh token")
	ErrUserNotFound       = kindError(ErrNotFound, "user not found")

	ErrReportNotFound  = kindError(ErrNotFound, "report not found")
	ErrMessageNotFound = kindError(ErrNotFound, "message not found")
	ErrNotReportOwner  = kindError(ErrForbidden, "only the report owner can modify this report")
	ErrNotMessageParty = kindError(ErrForbidden, "not authorized to delete this message")
	ErrInvalidItemType = kindError(ErrValidation, "type must be lost or found")
	ErrEmptyMessage    = kindError(ErrValidation, "message is required")
	ErrInvalidImage    = kindError(ErrValidation, "image must be an image file")
	ErrImageTooLarge   = kindError(ErrValidation, "image is too large")
)

type serviceError struct {
	msg  string
	kind error
}

func kindError(kind error, msg string) error {
	return &serviceError{msg: msg, kind: kind}
}

func (e *serviceError) Error() string { return e.msg }

func (e *serviceError) Unwrap() error { return e.kind }

// ValidationError names the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func requiredField(field string) error {
	return &ValidationError{Field: field, Message: "is required"}
}

// DependencyError is a failed call to the document or blob store.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *DependencyError) Unwrap() error { return e.Err }

func dependency(op string, err error) error {
	return &DependencyError{Op: op, Err: err}
}
