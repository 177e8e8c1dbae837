package invoice

import "fmt"

// ValidationError reports a violated field or cross-field invariant during
// construction of a LineItem or Invoice. Entity is empty when the error comes
// from a bare normalization call.
type ValidationError struct {
	Entity  string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Entity != "" && e.Field != "":
		return fmt.Sprintf("%s: invalid %s: %s", e.Entity, e.Field, e.Message)
	case e.Field != "":
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
	default:
		return e.Message
	}
}

// fieldError rebinds a normalization error to the entity and field being
// constructed, so the caller sees which record and attribute failed.
func fieldError(entity, field string, err error) error {
	if ve, ok := err.(*ValidationError); ok {
		return &ValidationError{Entity: entity, Field: field, Message: ve.Message}
	}
	return &ValidationError{Entity: entity, Field: field, Message: err.Error()}
}
