package submit

import (
	"NYCU-SDC/questionnaire-backend/internal"
	"NYCU-SDC/questionnaire-backend/internal/form/answer"
	"NYCU-SDC/questionnaire-backend/internal/form/field"
	"NYCU-SDC/questionnaire-backend/internal/form/render"
	"NYCU-SDC/questionnaire-backend/internal/form/response"
	"NYCU-SDC/questionnaire-backend/internal/form/schema"
	"NYCU-SDC/questionnaire-backend/internal/form/shared"
	"context"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type SchemaStore interface {
	GetFields(ctx context.Context, id uuid.UUID) (schema.Schema, []field.Field, error)
}

type ResponseStore interface {
	Create(ctx context.Context, schemaID uuid.UUID, respondentRef, answers, snapshot string) (response.Response, error)
}

type Service struct {
	logger *zap.Logger
	tracer trace.Tracer

	schemaStore   SchemaStore
	responseStore ResponseStore
	patterns      *render.PatternCache
}

func NewService(logger *zap.Logger, schemaStore SchemaStore, responseStore ResponseStore, patterns *render.PatternCache) *Service {
	return &Service{
		logger:        logger,
		tracer:        otel.Tracer("submit/service"),
		schemaStore:   schemaStore,
		responseStore: responseStore,
		patterns:      patterns,
	}
}

// Submit handles a respondent's submission for a schema.
// It performs the following steps:
// 1. Loads and decodes the current schema.
// 2. Fills a form session with the submitted answers, dropping ids the schema does not define,
// and validates every field.
// 3. If any field is rejected, returns internal.ErrFieldErrors carrying one message per field
// and stores nothing.
// 4. Otherwise stores the encoded answers together with the schema they were checked against.
func (s *Service) Submit(ctx context.Context, schemaID uuid.UUID, respondentRef string, answers shared.AnswerMap) (response.Response, error) {
	traceCtx, span := s.tracer.Start(ctx, "Submit")
	defer span.End()
	logger := logutil.WithContext(traceCtx, s.logger)

	entryParams := map[string]interface{}{
		"schema_id":      schemaID.String(),
		"respondent_ref": respondentRef,
		"answer_count":   len(answers),
	}
	tracker := logutil.StartMethod(traceCtx, logger, "Submit", entryParams)

	if respondentRef == "" {
		span.RecordError(internal.ErrRespondentRequired)
		return response.Response{}, internal.ErrRespondentRequired
	}

	_, fields, err := s.schemaStore.GetFields(traceCtx, schemaID)
	if err != nil {
		span.RecordError(err)
		return response.Response{}, err
	}

	known := field.IDs(fields)
	session := render.NewSession(fields, nil, false, s.patterns)
	if err := session.SetAll(onlyKnown(answers, known)); err != nil {
		span.RecordError(err)
		return response.Response{}, err
	}

	var created response.Response
	fieldErrors, err := session.Submit(func(valid shared.AnswerMap) error {
		var createErr error
		created, createErr = s.responseStore.Create(traceCtx, schemaID, respondentRef, answer.Encode(valid), schema.Encode(fields))
		return createErr
	})
	if err != nil {
		span.RecordError(err)
		return response.Response{}, err
	}

	if len(fieldErrors) > 0 {
		err = internal.ErrFieldErrors{Errors: fieldErrors}
		logger.Debug("Rejected submission", zap.String("schema_id", schemaID.String()), zap.Int("invalid_fields", len(fieldErrors)))
		span.RecordError(err)
		return response.Response{}, err
	}

	tracker.Complete(map[string]interface{}{
		"response_id": created.ID.String(),
	})

	return created, nil
}

func onlyKnown(answers shared.AnswerMap, known map[string]struct{}) shared.AnswerMap {
	filtered := make(shared.AnswerMap, len(answers))
	for id, v := range answers {
		if _, ok := known[id]; ok {
			filtered[id] = v
		}
	}
	return filtered
}
