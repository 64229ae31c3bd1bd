// internal/app/registry/errors.go
package registry

import "errors"

// Hard-failure taxonomy for registry operations. Gateway outages are not
// here on purpose: reconciliation is best-effort and never fails a registry
// mutation.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// ValidationError is a user-correctable input problem. Handlers map it to a
// 400 with the field and message in the body.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return e.Field + ": " + e.Msg
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Msg: msg}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
