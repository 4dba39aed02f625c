package responsebuilder

import (
	"NYCU-SDC/questionnaire-backend/internal/form/shared"

	"github.com/google/uuid"
)

type Option func(*FactoryParams)

type FactoryParams struct {
	SchemaID       uuid.UUID
	RespondentRef  string
	Answers        shared.AnswerMap
	SchemaSnapshot string
}

func WithSchemaID(id uuid.UUID) Option {
	return func(p *FactoryParams) { p.SchemaID = id }
}

func WithRespondentRef(ref string) Option {
	return func(p *FactoryParams) { p.RespondentRef = ref }
}

func WithAnswers(answers shared.AnswerMap) Option {
	return func(p *FactoryParams) { p.Answers = answers }
}

func WithSchemaSnapshot(text string) Option {
	return func(p *FactoryParams) { p.SchemaSnapshot = text }
}
