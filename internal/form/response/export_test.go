package response

import (
	"NYCU-SDC/questionnaire-backend/internal/form/field"
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExport(t *testing.T) {
	fields := []field.Field{
		{ID: "nome", Type: field.TypeShortText, Label: "Nome"},
		{ID: "interesses", Type: field.TypeMultiSelect, Label: "Interesses", Options: []string{"A", "B"}},
	}
	submitted := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	good := Response{
		ID:            uuid.New(),
		RespondentRef: "aluno-1",
		Answers:       `{"nome":"Ana","interesses":["B","A"],"removido":"x"}`,
		SubmittedAt:   pgtype.Timestamptz{Time: submitted, Valid: true},
	}
	broken := Response{
		ID:            uuid.New(),
		RespondentRef: "aluno-2",
		Answers:       `not json`,
		SubmittedAt:   pgtype.Timestamptz{Time: submitted, Valid: true},
	}

	var buf bytes.Buffer
	err := Export(&buf, fields, []Response{good, broken}, "")
	require.NoError(t, err)

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = book.Close() }()

	assert.Equal(t, []string{DefaultSheetName}, book.GetSheetList())

	rows, err := book.GetRows(DefaultSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Resposta", "Respondente", "Enviado em", "Nome", "Interesses"}, rows[0])
	assert.Equal(t, []string{good.ID.String(), "aluno-1", "2025-03-14T12:00:00Z", "Ana", "B, A"}, rows[1])
	assert.Equal(t, []string{broken.ID.String(), "aluno-2", "2025-03-14T12:00:00Z", Unreadable}, rows[2])
}

func TestExport_CustomSheetName(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, nil, nil, "Inscrições"))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = book.Close() }()

	rows, err := book.GetRows("Inscrições")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Resposta", "Respondente", "Enviado em"}}, rows)
}
