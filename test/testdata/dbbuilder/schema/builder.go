package schemabuilder

import (
	"NYCU-SDC/questionnaire-backend/internal/form/schema"
	"NYCU-SDC/questionnaire-backend/test/testdata"
	"NYCU-SDC/questionnaire-backend/test/testdata/dbbuilder"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type Builder struct {
	t  *testing.T
	db dbbuilder.DBTX
}

func New(t *testing.T, db dbbuilder.DBTX) *Builder {
	return &Builder{t: t, db: db}
}

func (b Builder) Queries() *schema.Queries {
	return schema.New(b.db)
}

func (b Builder) Create(opts ...Option) schema.Schema {
	queries := b.Queries()

	p := &FactoryParams{
		Name:   testdata.RandomName(),
		Fields: testdata.RandomFields(3),
	}
	for _, opt := range opts {
		opt(p)
	}

	text := schema.Encode(p.Fields)
	if p.RawText != nil {
		text = *p.RawText
	}

	row, err := queries.Create(context.Background(), schema.CreateParams{
		Name:   p.Name,
		Fields: text,
	})
	require.NoError(b.t, err)

	return row
}
