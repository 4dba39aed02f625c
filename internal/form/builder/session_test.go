package builder

import (
	"NYCU-SDC/questionnaire-backend/internal"
	"NYCU-SDC/questionnaire-backend/internal/form/field"
	"NYCU-SDC/questionnaire-backend/internal/form/schema"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MalformedTextFallsBackToRawMode(t *testing.T) {
	session := Open("{not valid json")

	assert.Equal(t, ModeRaw, session.Mode())
	assert.Equal(t, "{not valid json", session.Text())

	var parseErr *schema.ParseError
	require.True(t, errors.As(session.ParseError(), &parseErr))

	err := session.Apply(Operation{Kind: OpAddField, Type: field.TypeShortText})
	assert.True(t, errors.Is(err, internal.ErrBuilderRawMode))
	assert.Equal(t, "{not valid json", session.Text())
}

func TestSession_SetRawText(t *testing.T) {
	session := Open("[{")
	require.Equal(t, ModeRaw, session.Mode())

	err := session.SetRawText(`[{"id":"a","type":"short_text"`)
	require.Error(t, err)
	assert.Equal(t, ModeRaw, session.Mode())
	assert.Equal(t, `[{"id":"a","type":"short_text"`, session.Text())

	err = session.SetRawText(`[{"id":"a","type":"short_text","label":"A"}]`)
	require.NoError(t, err)
	assert.Equal(t, ModeStructured, session.Mode())
	assert.Nil(t, session.ParseError())
	assert.Equal(t, []field.Field{{ID: "a", Type: field.TypeShortText, Label: "A"}}, session.Snapshot().Fields())

	require.NoError(t, session.Apply(Operation{Kind: OpAddField, Type: field.TypeLongText}))
	assert.Equal(t, 2, session.Snapshot().Len())
}

func TestSession_TextRoundTrip(t *testing.T) {
	fields := []field.Field{
		{ID: "nome", Type: field.TypeShortText, Label: "Nome", Required: true},
		{ID: "curso", Type: field.TypeSingleSelect, Label: "Curso", Options: []string{"ADS"}},
	}

	session := Open(schema.Encode(fields))

	require.Equal(t, ModeStructured, session.Mode())
	decoded, err := schema.Decode(session.Text())
	require.NoError(t, err)
	assert.Equal(t, fields, decoded)
}

func TestSession_UndoRedo(t *testing.T) {
	session := OpenFields(threeFields().Fields())

	require.NoError(t, session.Apply(Operation{Kind: OpMoveField, Index: 0, Direction: Down}))
	require.NoError(t, session.Apply(Operation{Kind: OpDeleteField, Index: 2}))
	assert.Equal(t, []string{"b", "a"}, ids(session.Snapshot()))

	require.NoError(t, session.Apply(Operation{Kind: OpUndo}))
	assert.Equal(t, []string{"b", "a", "c"}, ids(session.Snapshot()))

	require.NoError(t, session.Undo())
	assert.Equal(t, []string{"a", "b", "c"}, ids(session.Snapshot()))
	assert.True(t, errors.Is(session.Undo(), internal.ErrNothingToUndo))

	require.NoError(t, session.Apply(Operation{Kind: OpRedo}))
	assert.Equal(t, []string{"b", "a", "c"}, ids(session.Snapshot()))

	require.NoError(t, session.Apply(Operation{Kind: OpAddOption, Index: 0}))
	assert.False(t, session.CanRedo(), "a new edit discards the redo stack")
	assert.True(t, errors.Is(session.Redo(), internal.ErrNothingToRedo))
}

func TestSession_NoOpDoesNotEnterHistory(t *testing.T) {
	session := OpenFields(threeFields().Fields())

	require.NoError(t, session.Apply(Operation{Kind: OpMoveField, Index: 0, Direction: Up}))
	require.NoError(t, session.Apply(Operation{Kind: OpRemoveOption, Index: 0, OptionIndex: 0}))

	assert.False(t, session.CanUndo())
}

func TestSession_Apply(t *testing.T) {
	tests := []struct {
		name        string
		op          Operation
		expectedErr error
	}{
		{name: "Should add field", op: Operation{Kind: OpAddField, Type: field.TypeMultiSelect}},
		{name: "Should update field", op: Operation{Kind: OpUpdateField, Index: 0, Patch: &Patch{Label: strPtr("Nome")}}},
		{name: "Should update option", op: Operation{Kind: OpUpdateOption, Index: 1, OptionIndex: 1, Value: "z"}},
		{name: "Should reject update past the end", op: Operation{Kind: OpUpdateField, Index: 9}, expectedErr: internal.ErrFieldIndexOutOfRange},
		{name: "Should reject delete past the end", op: Operation{Kind: OpDeleteField, Index: -1}, expectedErr: internal.ErrFieldIndexOutOfRange},
		{name: "Should reject unknown field type", op: Operation{Kind: OpAddField, Type: field.Type("x")}, expectedErr: internal.ErrUnsupportedFieldType},
		{name: "Should reject unknown operation", op: Operation{Kind: OperationKind("explode")}, expectedErr: internal.ErrUnknownOperation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := OpenFields(threeFields().Fields())

			err := session.Apply(tt.op)

			if tt.expectedErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.expectedErr), "expected %v, got %v", tt.expectedErr, err)
				assert.Equal(t, threeFields().Fields(), session.Snapshot().Fields())
				assert.False(t, session.CanUndo())
				return
			}

			require.NoError(t, err)
			assert.True(t, session.CanUndo())
		})
	}
}
