package response

import (
	"NYCU-SDC/questionnaire-backend/internal"
	"NYCU-SDC/questionnaire-backend/internal/form/field"
	"NYCU-SDC/questionnaire-backend/internal/form/schema"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

type mockQuerier struct {
	mock.Mock
}

func (m *mockQuerier) Create(ctx context.Context, arg CreateParams) (Response, error) {
	args := m.Called(ctx, arg)
	row, _ := args.Get(0).(Response)
	return row, args.Error(1)
}

func (m *mockQuerier) Get(ctx context.Context, id uuid.UUID) (Response, error) {
	args := m.Called(ctx, id)
	row, _ := args.Get(0).(Response)
	return row, args.Error(1)
}

func (m *mockQuerier) List(ctx context.Context, arg ListParams) ([]Response, error) {
	args := m.Called(ctx, arg)
	rows, _ := args.Get(0).([]Response)
	return rows, args.Error(1)
}

type mockSchemaStore struct {
	mock.Mock
}

func (m *mockSchemaStore) GetFields(ctx context.Context, id uuid.UUID) (schema.Schema, []field.Field, error) {
	args := m.Called(ctx, id)
	row, _ := args.Get(0).(schema.Schema)
	fields, _ := args.Get(1).([]field.Field)
	return row, fields, args.Error(2)
}

func newTestService(t *testing.T) (*Service, *mockQuerier, *mockSchemaStore) {
	t.Helper()

	q := &mockQuerier{}
	ss := &mockSchemaStore{}
	return &Service{
		logger:      zap.NewNop(),
		queries:     q,
		tracer:      noop.NewTracerProvider().Tracer("test"),
		schemaStore: ss,
	}, q, ss
}

func TestService_Create(t *testing.T) {
	svc, q, _ := newTestService(t)
	schemaID := uuid.New()
	params := CreateParams{SchemaID: schemaID, RespondentRef: "aluno-1", Answers: `{"a":"x"}`, SchemaSnapshot: "[]"}
	q.On("Create", mock.Anything, params).Return(Response{ID: uuid.New(), SchemaID: schemaID}, nil).Once()

	created, err := svc.Create(context.Background(), schemaID, "aluno-1", `{"a":"x"}`, "[]")

	require.NoError(t, err)
	assert.Equal(t, schemaID, created.SchemaID)
	q.AssertExpectations(t)

	_, err = svc.Create(context.Background(), schemaID, "", "{}", "[]")
	assert.True(t, errors.Is(err, internal.ErrRespondentRequired))
}

func TestService_Get_NotFound(t *testing.T) {
	svc, q, _ := newTestService(t)
	id := uuid.New()
	q.On("Get", mock.Anything, id).Return(Response{}, pgx.ErrNoRows).Once()

	_, err := svc.Get(context.Background(), id)

	assert.True(t, errors.Is(err, internal.ErrResponseNotFound))
}

func TestService_List_Filter(t *testing.T) {
	schemaID := uuid.New()

	tests := []struct {
		name     string
		filter   Filter
		expected ListParams
	}{
		{
			name:     "Should match everything with empty filter",
			filter:   Filter{},
			expected: ListParams{},
		},
		{
			name:   "Should filter by schema",
			filter: Filter{SchemaID: schemaID},
			expected: ListParams{
				SchemaID: pgtype.UUID{Bytes: schemaID, Valid: true},
			},
		},
		{
			name:   "Should filter by respondent",
			filter: Filter{RespondentRef: "aluno-1"},
			expected: ListParams{
				RespondentRef: pgtype.Text{String: "aluno-1", Valid: true},
			},
		},
		{
			name:   "Should filter by both",
			filter: Filter{SchemaID: schemaID, RespondentRef: "aluno-1"},
			expected: ListParams{
				SchemaID:      pgtype.UUID{Bytes: schemaID, Valid: true},
				RespondentRef: pgtype.Text{String: "aluno-1", Valid: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, q, _ := newTestService(t)
			q.On("List", mock.Anything, tt.expected).Return([]Response{{ID: uuid.New()}}, nil).Once()

			responses, err := svc.List(context.Background(), tt.filter)

			require.NoError(t, err)
			assert.Len(t, responses, 1)
			q.AssertExpectations(t)
		})
	}
}

func TestService_Report(t *testing.T) {
	current := []field.Field{
		{ID: "nome", Type: field.TypeShortText, Label: "Nome"},
		{ID: "curso", Type: field.TypeSingleSelect, Label: "Curso", Options: []string{"ADS"}},
	}
	snapshot := []field.Field{
		{ID: "nome", Type: field.TypeShortText, Label: "Nome completo"},
	}

	tests := []struct {
		name           string
		useSnapshot    bool
		schemaErr      error
		expectedSource SchemaSource
		expectedLabels []string
		expectedErr    error
	}{
		{
			name:           "Should use current schema",
			expectedSource: SchemaSourceCurrent,
			expectedLabels: []string{"Nome", "Curso"},
		},
		{
			name:           "Should use snapshot on request",
			useSnapshot:    true,
			expectedSource: SchemaSourceSnapshot,
			expectedLabels: []string{"Nome completo"},
		},
		{
			name:           "Should fall back to snapshot when schema is gone",
			schemaErr:      internal.ErrSchemaNotFound,
			expectedSource: SchemaSourceSnapshot,
			expectedLabels: []string{"Nome completo"},
		},
		{
			name:           "Should fall back to snapshot when schema is unreadable",
			schemaErr:      &schema.ParseError{Text: "{", Err: errors.New("bad")},
			expectedSource: SchemaSourceSnapshot,
			expectedLabels: []string{"Nome completo"},
		},
		{
			name:        "Should propagate other schema store failures",
			schemaErr:   internal.ErrInternalServerError,
			expectedErr: internal.ErrInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, q, ss := newTestService(t)
			id := uuid.New()
			stored := Response{
				ID:             id,
				SchemaID:       uuid.New(),
				Answers:        `{"nome":"Ana","curso":"ADS"}`,
				SchemaSnapshot: schema.Encode(snapshot),
			}
			q.On("Get", mock.Anything, id).Return(stored, nil).Once()
			if tt.schemaErr != nil {
				ss.On("GetFields", mock.Anything, stored.SchemaID).Return(schema.Schema{}, nil, tt.schemaErr).Once()
			} else {
				ss.On("GetFields", mock.Anything, stored.SchemaID).Return(schema.Schema{}, current, nil).Maybe()
			}

			report, err := svc.Report(context.Background(), id, tt.useSnapshot)

			if tt.expectedErr != nil {
				assert.True(t, errors.Is(err, tt.expectedErr))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectedSource, report.SchemaSource)
			labels := make([]string, len(report.Rows))
			for i, row := range report.Rows {
				labels[i] = row.Label
			}
			assert.Equal(t, tt.expectedLabels, labels)
			if tt.useSnapshot {
				ss.AssertNotCalled(t, "GetFields", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestService_Export(t *testing.T) {
	svc, q, ss := newTestService(t)
	schemaID := uuid.New()
	fields := []field.Field{{ID: "nome", Type: field.TypeShortText, Label: "Nome"}}
	ss.On("GetFields", mock.Anything, schemaID).Return(schema.Schema{ID: schemaID}, fields, nil).Once()
	q.On("List", mock.Anything, ListParams{SchemaID: pgtype.UUID{Bytes: schemaID, Valid: true}}).
		Return([]Response{{ID: uuid.New(), RespondentRef: "aluno-1", Answers: `{"nome":"Ana"}`}}, nil).Once()

	workbook, err := svc.Export(context.Background(), schemaID)
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(workbook))
	require.NoError(t, err)
	defer func() { _ = book.Close() }()

	rows, err := book.GetRows(DefaultSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ana", rows[1][3])
}
