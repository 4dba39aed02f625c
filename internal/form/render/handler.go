package render

import (
	"NYCU-SDC/questionnaire-backend/internal"
	"NYCU-SDC/questionnaire-backend/internal/form/answer"
	"NYCU-SDC/questionnaire-backend/internal/form/field"
	"NYCU-SDC/questionnaire-backend/internal/form/response"
	"NYCU-SDC/questionnaire-backend/internal/form/schema"
	"NYCU-SDC/questionnaire-backend/internal/form/shared"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	handlerutil "github.com/NYCU-SDC/summer/pkg/handler"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type SchemaStore interface {
	Get(ctx context.Context, id uuid.UUID) (schema.Schema, error)
	GetFields(ctx context.Context, id uuid.UUID) (schema.Schema, []field.Field, error)
}

type ResponseStore interface {
	Get(ctx context.Context, id uuid.UUID) (response.Response, error)
}

type Submitter interface {
	Submit(ctx context.Context, schemaID uuid.UUID, respondentRef string, answers shared.AnswerMap) (response.Response, error)
}

type Handler struct {
	logger        *zap.Logger
	tracer        trace.Tracer
	problemWriter *problem.HttpWriter

	schemaStore   SchemaStore
	responseStore ResponseStore
	submitter     Submitter
	patterns      *PatternCache
}

func NewHandler(logger *zap.Logger, problemWriter *problem.HttpWriter, schemaStore SchemaStore, responseStore ResponseStore, submitter Submitter, patterns *PatternCache) *Handler {
	return &Handler{
		logger:        logger,
		tracer:        otel.Tracer("render/handler"),
		problemWriter: problemWriter,
		schemaStore:   schemaStore,
		responseStore: responseStore,
		submitter:     submitter,
		patterns:      patterns,
	}
}

// FormHandler renders the fillable form of a schema. With ?preview=true the form is read only.
func (h *Handler) FormHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "FormHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	schemaID, err := handlerutil.ParseUUID(r.PathValue("schemaId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	s, fields, err := h.schemaStore.GetFields(traceCtx, schemaID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	preview := r.URL.Query().Get("preview") == "true"
	view := NewSession(fields, nil, preview, h.patterns).View()
	view.Title = s.Name
	view.Action = formAction(schemaID)
	view.RespondentRef = r.URL.Query().Get("respondentRef")

	h.writeHTML(traceCtx, w, http.StatusOK, view, logger)
}

// SubmitFormHandler accepts a browser form post. Rejected answers are rendered back with their
// messages; accepted ones are shown read only.
func (h *Handler) SubmitFormHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "SubmitFormHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	schemaID, err := handlerutil.ParseUUID(r.PathValue("schemaId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.problemWriter.WriteError(traceCtx, w, fmt.Errorf("%w: %w", internal.ErrInvalidRequestBody, err), logger)
		return
	}
	respondentRef := r.PostForm.Get("respondentRef")

	s, fields, err := h.schemaStore.GetFields(traceCtx, schemaID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	answers := FormAnswers(fields, r.PostForm)
	session := NewSession(fields, answers, false, h.patterns)
	fieldErrors, err := session.Submit(func(valid shared.AnswerMap) error {
		_, err := h.submitter.Submit(traceCtx, schemaID, respondentRef, valid)
		return err
	})
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	if len(fieldErrors) > 0 {
		view := session.View()
		view.Title = s.Name
		view.Action = formAction(schemaID)
		view.RespondentRef = respondentRef
		h.writeHTML(traceCtx, w, http.StatusUnprocessableEntity, view, logger)
		return
	}

	view := NewSession(fields, answers, true, h.patterns).View()
	view.Title = s.Name
	h.writeHTML(traceCtx, w, http.StatusCreated, view, logger)
}

// ResponseFormHandler renders a stored response as a read-only form. The form is built from the
// schema stored with the response and falls back to the current schema when that copy is
// unreadable. The title is the current schema name; it is left out once the schema is deleted.
func (h *Handler) ResponseFormHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "ResponseFormHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	responseID, err := handlerutil.ParseUUID(r.PathValue("responseId"))
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	stored, err := h.responseStore.Get(traceCtx, responseID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	answers, err := answer.Decode(stored.Answers)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	var title string
	fields, err := schema.Decode(stored.SchemaSnapshot)
	if err != nil {
		logger.Warn("Stored schema snapshot is unreadable, using current schema", zap.String("response_id", responseID.String()), zap.Error(err))
		var s schema.Schema
		s, fields, err = h.schemaStore.GetFields(traceCtx, stored.SchemaID)
		if err != nil {
			h.problemWriter.WriteError(traceCtx, w, err, logger)
			return
		}
		title = s.Name
	} else {
		s, err := h.schemaStore.Get(traceCtx, stored.SchemaID)
		if err != nil {
			logger.Debug("Rendering stored response without title", zap.String("schema_id", stored.SchemaID.String()), zap.Error(err))
		}
		title = s.Name
	}

	view := NewSession(fields, answers, true, h.patterns).View()
	view.Title = title
	h.writeHTML(traceCtx, w, http.StatusOK, view, logger)
}

// FormAnswers reads the answers of fields out of posted form values. Multi-select fields take
// every posted value in order; other fields take the first. Fields that were not posted are
// left out.
func FormAnswers(fields []field.Field, values url.Values) shared.AnswerMap {
	answers := shared.AnswerMap{}
	for _, f := range fields {
		posted, ok := values[f.ID]
		if !ok || !f.Type.Known() {
			continue
		}

		if f.Type == field.TypeMultiSelect {
			answers[f.ID] = shared.List(posted...)
			continue
		}
		if len(posted) > 0 {
			answers[f.ID] = shared.String(posted[0])
		}
	}
	return answers
}

func formAction(schemaID uuid.UUID) string {
	return "/api/schemas/" + schemaID.String() + "/form"
}

func (h *Handler) writeHTML(ctx context.Context, w http.ResponseWriter, status int, view FormView, logger *zap.Logger) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, view); err != nil {
		h.problemWriter.WriteError(ctx, w, errors.Join(internal.ErrInternalServerError, err), logger)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Error("Failed to write form", zap.Error(err))
	}
}
