package response

import (
	"NYCU-SDC/questionnaire-backend/internal"
	"NYCU-SDC/questionnaire-backend/internal/form/field"
	"NYCU-SDC/questionnaire-backend/internal/form/schema"
	"bytes"
	"context"
	"errors"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Querier interface {
	Create(ctx context.Context, arg CreateParams) (Response, error)
	Get(ctx context.Context, id uuid.UUID) (Response, error)
	List(ctx context.Context, arg ListParams) ([]Response, error)
}

type SchemaStore interface {
	GetFields(ctx context.Context, id uuid.UUID) (schema.Schema, []field.Field, error)
}

// Filter narrows List. Zero members match everything.
type Filter struct {
	SchemaID      uuid.UUID
	RespondentRef string
}

func (f Filter) params() ListParams {
	return ListParams{
		SchemaID:      pgtype.UUID{Bytes: f.SchemaID, Valid: f.SchemaID != uuid.Nil},
		RespondentRef: pgtype.Text{String: f.RespondentRef, Valid: f.RespondentRef != ""},
	}
}

type Service struct {
	logger      *zap.Logger
	queries     Querier
	tracer      trace.Tracer
	schemaStore SchemaStore
	sheetName   string
}

func NewService(logger *zap.Logger, db DBTX, schemaStore SchemaStore, sheetName string) *Service {
	return &Service{
		logger:      logger,
		queries:     New(db),
		tracer:      otel.Tracer("response/service"),
		schemaStore: schemaStore,
		sheetName:   sheetName,
	}
}

// Create stores a submission. answers and snapshot are the encoded answer map and the encoded
// schema the answers were validated against.
func (s *Service) Create(ctx context.Context, schemaID uuid.UUID, respondentRef, answers, snapshot string) (Response, error) {
	ctx, span := s.tracer.Start(ctx, "Create")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	if respondentRef == "" {
		span.RecordError(internal.ErrRespondentRequired)
		return Response{}, internal.ErrRespondentRequired
	}

	dbParams := map[string]interface{}{
		"schema_id":      schemaID.String(),
		"respondent_ref": respondentRef,
	}
	tracker := logutil.StartDBOperation(ctx, logger, "Create", dbParams)

	created, err := s.queries.Create(ctx, CreateParams{
		SchemaID:       schemaID,
		RespondentRef:  respondentRef,
		Answers:        answers,
		SchemaSnapshot: snapshot,
	})
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "create response")
		span.RecordError(err)
		return Response{}, err
	}

	tracker.SuccessWrite(created.ID.String())

	return created, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Response, error) {
	ctx, span := s.tracer.Start(ctx, "Get")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	dbParams := map[string]interface{}{
		"id": id.String(),
	}
	tracker := logutil.StartDBOperation(ctx, logger, "Get", dbParams)

	current, err := s.queries.Get(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.RecordError(err)
			return Response{}, internal.ErrResponseNotFound
		}
		err = databaseutil.WrapDBErrorWithKeyValue(err, "responses", "id", id.String(), logger, "get response by id")
		span.RecordError(err)
		return Response{}, err
	}

	tracker.SuccessRead(1, id.String())

	return current, nil
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Response, error) {
	ctx, span := s.tracer.Start(ctx, "List")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	dbParams := map[string]interface{}{
		"schema_id":      filter.SchemaID.String(),
		"respondent_ref": filter.RespondentRef,
	}
	tracker := logutil.StartDBOperation(ctx, logger, "List", dbParams)

	responses, err := s.queries.List(ctx, filter.params())
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "list responses")
		span.RecordError(err)
		return []Response{}, err
	}

	tracker.SuccessRead(len(responses), filter.SchemaID.String())

	return responses, nil
}

// Report joins a response with the fields it should be read against. That is the current
// schema unless useSnapshot is set, or the schema has been deleted or can no longer be
// decoded; then the snapshot stored with the response is used.
func (s *Service) Report(ctx context.Context, id uuid.UUID, useSnapshot bool) (Report, error) {
	ctx, span := s.tracer.Start(ctx, "Report")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	current, err := s.Get(ctx, id)
	if err != nil {
		return Report{}, err
	}

	fields, source, err := s.reportFields(ctx, logger, current, useSnapshot)
	if err != nil {
		span.RecordError(err)
		return Report{}, err
	}

	report := View(current, fields)
	report.SchemaSource = source
	if report.Unreadable {
		logger.Warn("Response answers are unreadable", zap.String("id", id.String()), zap.String("error", report.Error))
	}

	return report, nil
}

func (s *Service) reportFields(ctx context.Context, logger *zap.Logger, r Response, useSnapshot bool) ([]field.Field, SchemaSource, error) {
	if !useSnapshot {
		_, fields, err := s.schemaStore.GetFields(ctx, r.SchemaID)
		switch {
		case err == nil:
			return fields, SchemaSourceCurrent, nil
		case errors.Is(err, internal.ErrSchemaNotFound), errors.Is(err, internal.ErrSchemaUnreadable):
			logger.Info("Falling back to schema snapshot", zap.String("response_id", r.ID.String()), zap.Error(err))
		default:
			return nil, "", err
		}
	}

	fields, err := schema.Decode(r.SchemaSnapshot)
	if err != nil {
		return nil, "", err
	}
	return fields, SchemaSourceSnapshot, nil
}

// Export writes every response of a schema to an .xlsx workbook, one row per response and one
// column per field of the current schema.
func (s *Service) Export(ctx context.Context, schemaID uuid.UUID) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "Export")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	_, fields, err := s.schemaStore.GetFields(ctx, schemaID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	responses, err := s.List(ctx, Filter{SchemaID: schemaID})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := Export(&buf, fields, responses, s.sheetName); err != nil {
		logger.Error("Failed to build responses workbook", zap.String("schema_id", schemaID.String()), zap.Error(err))
		span.RecordError(err)
		return nil, err
	}

	logger.Debug("Exported responses", zap.String("schema_id", schemaID.String()), zap.Int("count", len(responses)))

	return buf.Bytes(), nil
}
