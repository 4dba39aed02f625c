package field

import (
	"errors"
	"fmt"
)

var (
	ErrSchemaInvalid   = errors.New("schema violates field invariants")
	ErrUnsupportedType = errors.New("unsupported field type")
)

type ErrInvalidField struct {
	FieldID string
	Message string
}

func (e ErrInvalidField) Error() string {
	return fmt.Sprintf("invalid field %q: %s", e.FieldID, e.Message)
}

func (e ErrInvalidField) Unwrap() error {
	return ErrSchemaInvalid
}

type ErrDuplicateFieldID struct {
	FieldID string
}

func (e ErrDuplicateFieldID) Error() string {
	return fmt.Sprintf("field id %q is used more than once", e.FieldID)
}

func (e ErrDuplicateFieldID) Unwrap() error {
	return ErrSchemaInvalid
}

type ErrUnsupportedFieldType struct {
	Type Type
}

func (e ErrUnsupportedFieldType) Error() string {
	return fmt.Sprintf("unsupported field type: %s", e.Type)
}

func (e ErrUnsupportedFieldType) Unwrap() error {
	return ErrUnsupportedType
}
