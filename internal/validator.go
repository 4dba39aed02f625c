package internal

import (
	"NYCU-SDC/questionnaire-backend/internal/form/field"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var fieldIDPattern = regexp.MustCompile(`^[\w-]+$`)

func NewValidator() *validator.Validate {
	v := validator.New()

	_ = v.RegisterValidation("field_type", func(fl validator.FieldLevel) bool {
		return field.Type(fl.Field().String()).Known()
	})

	_ = v.RegisterValidation("field_id", func(fl validator.FieldLevel) bool {
		return fieldIDPattern.MatchString(fl.Field().String())
	})

	return v
}
