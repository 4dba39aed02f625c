package schemabuilder

import "NYCU-SDC/questionnaire-backend/internal/form/field"

type Option func(*FactoryParams)

type FactoryParams struct {
	Name    string
	Fields  []field.Field
	RawText *string
}

func WithName(name string) Option {
	return func(p *FactoryParams) { p.Name = name }
}

func WithFields(fields []field.Field) Option {
	return func(p *FactoryParams) { p.Fields = fields }
}

// WithRawText stores text verbatim, bypassing the schema codec.
func WithRawText(text string) Option {
	return func(p *FactoryParams) { p.RawText = &text }
}
