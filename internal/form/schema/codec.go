package schema

import (
	"NYCU-SDC/questionnaire-backend/internal/form/field"
	"bytes"
	"errors"

	"github.com/goccy/go-json"
)

// Encode serializes an ordered field list to the persisted text format, a JSON array of fields.
func Encode(fields []field.Field) string {
	if fields == nil {
		fields = []field.Field{}
	}

	data, err := json.Marshal(fields)
	if err != nil {
		// field.Field only holds strings, booleans, ints and string slices
		return "[]"
	}
	return string(data)
}

// Decode parses persisted schema text. Unknown keys are ignored and option lists are not
// checked here. Blank text and JSON null decode to an empty schema.
func Decode(text string) ([]field.Field, error) {
	trimmed := bytes.TrimSpace([]byte(text))
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []field.Field{}, nil
	}

	if trimmed[0] != '[' {
		return nil, &ParseError{Text: text, Err: errors.New("schema must be a JSON array")}
	}

	var fields []field.Field
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, &ParseError{Text: text, Err: err}
	}

	if fields == nil {
		fields = []field.Field{}
	}
	return fields, nil
}
