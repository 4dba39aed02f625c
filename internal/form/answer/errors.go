package answer

import (
	"NYCU-SDC/questionnaire-backend/internal"
	"fmt"
)

// ParseError reports persisted answer text that could not be decoded.
type ParseError struct {
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse answers: %v", e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{internal.ErrAnswersUnreadable, e.Err}
}
