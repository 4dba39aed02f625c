package schema

import (
	"NYCU-SDC/questionnaire-backend/internal"
	"NYCU-SDC/questionnaire-backend/internal/form/field"
	"context"
	"errors"

	databaseutil "github.com/NYCU-SDC/summer/pkg/database"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Querier interface {
	Create(ctx context.Context, arg CreateParams) (Schema, error)
	Get(ctx context.Context, id uuid.UUID) (Schema, error)
	List(ctx context.Context) ([]Schema, error)
	Update(ctx context.Context, arg UpdateParams) (Schema, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// Input is the content of a schema as submitted by an operator: either a structured field list
// or hand-edited text, never both.
type Input struct {
	Name    string
	Fields  []field.Field
	RawText *string
}

// Text returns the text to persist. Structured fields must satisfy the field invariants; raw
// text is stored as typed so that a broken schema can be saved and repaired later.
func (in Input) Text() (string, error) {
	if in.RawText != nil && in.Fields != nil {
		return "", internal.ErrSchemaTextAmbiguous
	}

	if in.RawText != nil {
		return *in.RawText, nil
	}

	if err := field.CheckSchema(in.Fields); err != nil {
		return "", err
	}
	return Encode(in.Fields), nil
}

type Service struct {
	logger  *zap.Logger
	queries Querier
	tracer  trace.Tracer
}

func NewService(logger *zap.Logger, db DBTX) *Service {
	return &Service{
		logger:  logger,
		queries: New(db),
		tracer:  otel.Tracer("schema/service"),
	}
}

func (s *Service) Create(ctx context.Context, in Input) (Schema, error) {
	ctx, span := s.tracer.Start(ctx, "Create")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	text, err := in.Text()
	if err != nil {
		span.RecordError(err)
		return Schema{}, err
	}

	dbParams := map[string]interface{}{
		"name":        in.Name,
		"field_count": len(in.Fields),
		"raw":         in.RawText != nil,
	}
	tracker := logutil.StartDBOperation(ctx, logger, "Create", dbParams)

	created, err := s.queries.Create(ctx, CreateParams{
		Name:   in.Name,
		Fields: text,
	})
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "create schema")
		span.RecordError(err)
		return Schema{}, err
	}

	tracker.SuccessWrite(created.ID.String())

	return created, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Schema, error) {
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
			logger.Debug("Schema not found", zap.String("id", id.String()))
			span.RecordError(err)
			return Schema{}, internal.ErrSchemaNotFound
		}
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "get schema by id")
		span.RecordError(err)
		return Schema{}, err
	}

	tracker.SuccessRead(1, id.String())

	return current, nil
}

func (s *Service) List(ctx context.Context) ([]Schema, error) {
	ctx, span := s.tracer.Start(ctx, "List")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	tracker := logutil.StartDBOperation(ctx, logger, "List", nil)

	schemas, err := s.queries.List(ctx)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "list schemas")
		span.RecordError(err)
		return []Schema{}, err
	}

	tracker.SuccessRead(len(schemas), "")

	return schemas, nil
}

// Update overwrites the name and content of a schema. Concurrent editors are not detected, the
// last write wins.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (Schema, error) {
	ctx, span := s.tracer.Start(ctx, "Update")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	text, err := in.Text()
	if err != nil {
		span.RecordError(err)
		return Schema{}, err
	}

	dbParams := map[string]interface{}{
		"id":          id.String(),
		"name":        in.Name,
		"field_count": len(in.Fields),
		"raw":         in.RawText != nil,
	}
	tracker := logutil.StartDBOperation(ctx, logger, "Update", dbParams)

	updated, err := s.queries.Update(ctx, UpdateParams{
		ID:     id,
		Name:   in.Name,
		Fields: text,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.RecordError(err)
			return Schema{}, internal.ErrSchemaNotFound
		}
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "update schema")
		span.RecordError(err)
		return Schema{}, err
	}

	tracker.SuccessWrite(id.String())

	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "Delete")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	dbParams := map[string]interface{}{
		"id": id.String(),
	}
	tracker := logutil.StartDBOperation(ctx, logger, "Delete", dbParams)

	affected, err := s.queries.Delete(ctx, id)
	if err != nil {
		err = databaseutil.WrapDBErrorWithTracker(err, tracker, "delete schema")
		span.RecordError(err)
		return err
	}
	if affected == 0 {
		return internal.ErrSchemaNotFound
	}

	tracker.SuccessWrite(id.String())

	return nil
}

// GetFields loads a schema and decodes its field list. A stored text that cannot be decoded
// is reported as a *ParseError alongside the record.
func (s *Service) GetFields(ctx context.Context, id uuid.UUID) (Schema, []field.Field, error) {
	ctx, span := s.tracer.Start(ctx, "GetFields")
	defer span.End()
	logger := logutil.WithContext(ctx, s.logger)

	current, err := s.Get(ctx, id)
	if err != nil {
		return Schema{}, nil, err
	}

	fields, err := Decode(current.Fields)
	if err != nil {
		logger.Warn("Stored schema is unreadable", zap.String("id", id.String()), zap.Error(err))
		span.RecordError(err)
		return current, nil, err
	}

	return current, fields, nil
}
