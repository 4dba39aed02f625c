package internal

import (
	"NYCU-SDC/questionnaire-backend/internal/form/field"
	"errors"
	"fmt"
	"strings"

	"github.com/NYCU-SDC/summer/pkg/problem"
)

// ErrFieldErrors carries the per-field validation messages of a rejected submission.
type ErrFieldErrors struct {
	Errors map[string]string
}

func (e ErrFieldErrors) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for id, message := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", id, message))
	}

	return "answers are invalid: " + strings.Join(parts, "; ")
}

func (e ErrFieldErrors) Unwrap() error {
	return ErrValidationFailed
}

var (
	ErrInternalServerError = errors.New("internal server error")
	ErrNotFound            = errors.New("not found")
	ErrInvalidRequestBody  = errors.New("invalid request body")
	ErrValidationFailed    = errors.New("validation failed")

	// Schema Errors
	ErrSchemaNotFound       = errors.New("schema not found")
	ErrSchemaUnreadable     = errors.New("schema text is malformed")
	ErrSchemaInvalid        = field.ErrSchemaInvalid
	ErrSchemaTextAmbiguous  = errors.New("cannot specify both fields and raw text")
	ErrUnsupportedFieldType = field.ErrUnsupportedType

	// Builder Errors
	ErrFieldIndexOutOfRange = errors.New("field index out of range")
	ErrUnknownOperation     = errors.New("unknown builder operation")
	ErrNothingToUndo        = errors.New("nothing to undo")
	ErrNothingToRedo        = errors.New("nothing to redo")
	ErrBuilderRawMode       = errors.New("schema is in raw text mode")

	// Form Errors
	ErrFormReadOnly = errors.New("form is read only")

	// Response Errors
	ErrResponseNotFound    = errors.New("response not found")
	ErrAnswersUnreadable   = errors.New("answer text is malformed")
	ErrRespondentRequired  = errors.New("respondent reference is required")
	ErrInvalidSchemaFilter = errors.New("invalid schema id filter")
)

func NewProblemWriter() *problem.HttpWriter {
	return problem.NewWithMapping(ErrorHandler)
}

func ErrorHandler(err error) problem.Problem {
	switch {
	case errors.Is(err, ErrInternalServerError):
		return problem.NewInternalServerProblem("internal server error")
	case errors.Is(err, ErrNotFound):
		return problem.NewNotFoundProblem("not found")
	case errors.Is(err, ErrInvalidRequestBody):
		return problem.NewBadRequestProblem("invalid request body")

	// Schema Errors
	case errors.Is(err, ErrSchemaNotFound):
		return problem.NewNotFoundProblem("schema not found")
	case errors.Is(err, ErrSchemaUnreadable):
		return problem.NewValidateProblem(err.Error())
	case errors.Is(err, ErrSchemaInvalid):
		return problem.NewValidateProblem(err.Error())
	case errors.Is(err, ErrSchemaTextAmbiguous):
		return problem.NewBadRequestProblem("cannot specify both fields and raw text")
	case errors.Is(err, ErrUnsupportedFieldType):
		return problem.NewBadRequestProblem(err.Error())

	// Builder Errors
	case errors.Is(err, ErrFieldIndexOutOfRange):
		return problem.NewBadRequestProblem(err.Error())
	case errors.Is(err, ErrUnknownOperation):
		return problem.NewBadRequestProblem(err.Error())
	case errors.Is(err, ErrNothingToUndo):
		return problem.NewValidateProblem("nothing to undo")
	case errors.Is(err, ErrNothingToRedo):
		return problem.NewValidateProblem("nothing to redo")
	case errors.Is(err, ErrBuilderRawMode):
		return problem.NewValidateProblem("schema is in raw text mode, fix the text before editing fields")

	// Form Errors
	case errors.Is(err, ErrFormReadOnly):
		return problem.NewForbiddenProblem("form is read only")

	// Response Errors
	case errors.Is(err, ErrResponseNotFound):
		return problem.NewNotFoundProblem("response not found")
	case errors.Is(err, ErrAnswersUnreadable):
		return problem.NewInternalServerProblem("stored answers are unreadable")
	case errors.Is(err, ErrRespondentRequired):
		return problem.NewBadRequestProblem("respondent reference is required")
	case errors.Is(err, ErrInvalidSchemaFilter):
		return problem.NewBadRequestProblem("invalid schema id filter")

	// Validation Errors
	case errors.Is(err, ErrValidationFailed):
		return problem.NewValidateProblem("validation failed")
	}
	return problem.Problem{}
}
