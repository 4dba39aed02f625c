package responsebuilder

import (
	"NYCU-SDC/questionnaire-backend/internal/form/answer"
	"NYCU-SDC/questionnaire-backend/internal/form/response"
	"NYCU-SDC/questionnaire-backend/internal/form/shared"
	"NYCU-SDC/questionnaire-backend/test/testdata"
	"NYCU-SDC/questionnaire-backend/test/testdata/dbbuilder"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type Builder struct {
	t  *testing.T
	db dbbuilder.DBTX
}

func New(t *testing.T, db dbbuilder.DBTX) *Builder {
	return &Builder{t: t, db: db}
}

func (b Builder) Queries() *response.Queries {
	return response.New(b.db)
}

func (b Builder) Create(opts ...Option) response.Response {
	queries := b.Queries()

	p := &FactoryParams{
		SchemaID:       uuid.New(),
		RespondentRef:  testdata.RandomRespondentRef(),
		Answers:        shared.AnswerMap{},
		SchemaSnapshot: "[]",
	}
	for _, opt := range opts {
		opt(p)
	}

	row, err := queries.Create(context.Background(), response.CreateParams{
		SchemaID:       p.SchemaID,
		RespondentRef:  p.RespondentRef,
		Answers:        answer.Encode(p.Answers),
		SchemaSnapshot: p.SchemaSnapshot,
	})
	require.NoError(b.t, err)

	return row
}
