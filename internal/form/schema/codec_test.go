package schema

import (
	"NYCU-SDC/questionnaire-backend/internal"
	"NYCU-SDC/questionnaire-backend/internal/form/field"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func TestCodec_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		fields []field.Field
	}{
		{
			name:   "Should round trip empty schema",
			fields: []field.Field{},
		},
		{
			name: "Should round trip every field type",
			fields: []field.Field{
				{ID: "nome", Type: field.TypeShortText, Label: "Nome", Required: true, Placeholder: "Digite seu nome"},
				{ID: "bio", Type: field.TypeLongText, Label: "Sobre você", Validation: &field.Validation{MinLength: intPtr(10), MaxLength: intPtr(500)}},
				{ID: "ra", Type: field.TypeShortText, Label: "RA", Validation: &field.Validation{Pattern: `^[0-9]+$`}},
				{ID: "curso", Type: field.TypeSingleSelect, Label: "Curso", Options: []string{"ADS", "GTI"}},
				{ID: "interesses", Type: field.TypeMultiSelect, Label: "Interesses", Options: []string{"A", "B", "C"}},
				{ID: "turno", Type: field.TypeSingleChoice, Label: "Turno", Required: true, Options: []string{"Manhã", "Noite"}},
			},
		},
		{
			name: "Should round trip zero validation object",
			fields: []field.Field{
				{ID: "x", Type: field.TypeShortText, Validation: &field.Validation{}},
			},
		},
		{
			name: "Should round trip unknown type",
			fields: []field.Field{
				{ID: "x", Type: field.Type("signature"), Label: "Assinatura"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := Decode(Encode(tt.fields))
			require.NoError(t, err)
			assert.Equal(t, tt.fields, decoded)
		})
	}
}

func TestEncode_NilIsEmptyArray(t *testing.T) {
	assert.Equal(t, "[]", Encode(nil))
}

func TestEncode_Format(t *testing.T) {
	text := Encode([]field.Field{
		{ID: "curso", Type: field.TypeSingleSelect, Label: "Curso", Required: true, Options: []string{"ADS"}},
	})

	assert.JSONEq(t, `[{"id":"curso","type":"single_select","label":"Curso","required":true,"options":["ADS"]}]`, text)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		expected    []field.Field
		shouldError bool
	}{
		{
			name:     "Should decode blank text as empty schema",
			text:     "",
			expected: []field.Field{},
		},
		{
			name:     "Should decode null as empty schema",
			text:     "null",
			expected: []field.Field{},
		},
		{
			name: "Should ignore unknown keys",
			text: `[{"id":"a","type":"short_text","label":"A","color":"red","order":3}]`,
			expected: []field.Field{
				{ID: "a", Type: field.TypeShortText, Label: "A"},
			},
		},
		{
			name: "Should not validate missing options",
			text: `[{"id":"a","type":"multi_select","label":"A"}]`,
			expected: []field.Field{
				{ID: "a", Type: field.TypeMultiSelect, Label: "A"},
			},
		},
		{
			name:        "Should fail on truncated json",
			text:        `{not valid json`,
			shouldError: true,
		},
		{
			name:        "Should fail on object instead of array",
			text:        `{"id":"a"}`,
			shouldError: true,
		},
		{
			name:        "Should fail on mistyped key",
			text:        `[{"id":"a","type":"short_text","required":"yes"}]`,
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := Decode(tt.text)

			if tt.shouldError {
				require.Error(t, err)
				var parseErr *ParseError
				require.True(t, errors.As(err, &parseErr), "expected *ParseError, got %T", err)
				assert.Equal(t, tt.text, parseErr.Text)
				assert.True(t, errors.Is(err, internal.ErrSchemaUnreadable))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, decoded)
		})
	}
}
