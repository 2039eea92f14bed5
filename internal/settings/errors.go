package settings

import "strings"

// FieldError is one validation failure, reported together with all others
// from the same validation pass rather than fail-fast on the first.
type FieldError struct {
	Location string // dot-path, e.g. "clocks.main_clock.period"
	Message  string
	Context  string
	Type     string // "type", "range", "relational", "required"
}

// Error implements the error interface for FieldError used standalone.
func (e FieldError) Error() string {
	return e.Location + ": " + e.Message
}

// ValidationError collects every FieldError from one settings construction.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Error())
	}
	return "invalid flow settings:\n  " + strings.Join(parts, "\n  ")
}

// HasErrors reports whether any field errors were collected.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Errors) > 0
}

// Add appends a field error.
func (e *ValidationError) Add(location, message, context, typ string) {
	e.Errors = append(e.Errors, FieldError{Location: location, Message: message, Context: context, Type: typ})
}
