package schema

import (
	"NYCU-SDC/questionnaire-backend/internal"
	"fmt"
)

// ParseError reports persisted schema text that could not be decoded. Callers are expected to
// fall back to editing Text directly.
type ParseError struct {
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse schema: %v", e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{internal.ErrSchemaUnreadable, e.Err}
}
