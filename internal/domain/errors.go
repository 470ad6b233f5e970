package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrRequestLocked   = errors.New("request locked")
	ErrInvalidStatus   = errors.New("invalid status transition")
	ErrNoFields        = errors.New("request has no fields")
	ErrInvalidField    = errors.New("invalid field geometry")
	ErrInvalidImage    = errors.New("invalid field image")
	ErrInvalidDocument = errors.New("invalid source document")
	ErrFieldsMissing   = errors.New("fields missing signatures")
)

// MissingFieldsError rejects a submission while fields lack an image. It
// carries the identity of every missing field so the caller can tell the
// signer exactly what is left.
type MissingFieldsError struct {
	FieldIDs []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("%d fields missing signatures", len(e.FieldIDs))
}

func (e *MissingFieldsError) Unwrap() error {
	return ErrFieldsMissing
}
