package response

import (
	"NYCU-SDC/questionnaire-backend/internal"
	"NYCU-SDC/questionnaire-backend/internal/form/answer"
	"NYCU-SDC/questionnaire-backend/internal/form/shared"
	"context"
	"fmt"
	"net/http"
	"time"

	handlerutil "github.com/NYCU-SDC/summer/pkg/handler"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Payload is a stored response as returned by the API. Answers is nil and RawAnswers holds the
// stored text when it cannot be decoded.
type Payload struct {
	ID            string           `json:"id"`
	SchemaID      string           `json:"schemaId"`
	RespondentRef string           `json:"respondentRef"`
	Answers       shared.AnswerMap `json:"answers"`
	Unreadable    bool             `json:"unreadable"`
	RawAnswers    string           `json:"rawAnswers,omitempty"`
	SubmittedAt   time.Time        `json:"submittedAt"`
}

func ToPayload(r Response) Payload {
	payload := Payload{
		ID:            r.ID.String(),
		SchemaID:      r.SchemaID.String(),
		RespondentRef: r.RespondentRef,
		SubmittedAt:   r.SubmittedAt.Time,
	}

	answers, err := answer.Decode(r.Answers)
	if err != nil {
		payload.Unreadable = true
		payload.RawAnswers = r.Answers
		return payload
	}

	payload.Answers = answers
	return payload
}

type Store interface {
	Get(ctx context.Context, id uuid.UUID) (Response, error)
	List(ctx context.Context, filter Filter) ([]Response, error)
	Report(ctx context.Context, id uuid.UUID, useSnapshot bool) (Report, error)
	Export(ctx context.Context, schemaID uuid.UUID) ([]byte, error)
}

type Handler struct {
	logger        *zap.Logger
	tracer        trace.Tracer
	validator     *validator.Validate
	problemWriter *problem.HttpWriter
	store         Store
}

func NewHandler(logger *zap.Logger, validator *validator.Validate, problemWriter *problem.HttpWriter, store Store) *Handler {
	return &Handler{
		logger:        logger,
		tracer:        otel.Tracer("response/handler"),
		validator:     validator,
		problemWriter: problemWriter,
		store:         store,
	}
}

// ListHandler lists responses, optionally filtered by the schemaId and respondentRef query parameters
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "ListHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	var filter Filter
	if schemaIDStr := r.URL.Query().Get("schemaId"); schemaIDStr != "" {
		schemaID, err := uuid.Parse(schemaIDStr)
		if err != nil {
			h.problemWriter.WriteError(traceCtx, w, fmt.Errorf("%w: %s", internal.ErrInvalidSchemaFilter, schemaIDStr), logger)
			return
		}
		filter.SchemaID = schemaID
	}
	filter.RespondentRef = r.URL.Query().Get("respondentRef")

	responses, err := h.store.List(traceCtx, filter)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	payloads := make([]Payload, len(responses))
	for i, current := range responses {
		payloads[i] = ToPayload(current)
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, payloads)
}

// GetHandler retrieves a response by id
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "GetHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	idStr := r.PathValue("responseId")
	id, err := handlerutil.ParseUUID(idStr)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	current, err := h.store.Get(traceCtx, id)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, ToPayload(current))
}

// ReportHandler renders a response against its schema. ?schema=snapshot reads it against the
// schema it was submitted with instead of the current one.
func (h *Handler) ReportHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "ReportHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	idStr := r.PathValue("responseId")
	id, err := handlerutil.ParseUUID(idStr)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	useSnapshot := r.URL.Query().Get("schema") == string(SchemaSourceSnapshot)

	report, err := h.store.Report(traceCtx, id, useSnapshot)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, report)
}

// ExportHandler downloads every response of a schema as a spreadsheet
func (h *Handler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "ExportHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	schemaIDStr := r.PathValue("schemaId")
	schemaID, err := handlerutil.ParseUUID(schemaIDStr)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	workbook, err := h.store.Export(traceCtx, schemaID)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"responses-%s.xlsx\"", schemaID.String()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(workbook); err != nil {
		logger.Warn("Failed to write workbook", zap.Error(err))
	}
}
