package core

import "github.com/pkg/errors"

// FieldError pins a validation failure to a single request field.
type FieldError struct {
	Field string
	Error string
}

// ValidationError is a user-facing validation failure, either a single
// message or a set of per-field errors. The HTTP layer renders it as a 400.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

type shutdown struct {
	message string
}

// NewShutdownError reports a state the service cannot safely keep running
// in; the server stops accepting work when it sees one.
func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
