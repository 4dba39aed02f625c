package submit

import (
	"NYCU-SDC/questionnaire-backend/internal"
	"NYCU-SDC/questionnaire-backend/internal/form/response"
	"NYCU-SDC/questionnaire-backend/internal/form/shared"
	"context"
	"errors"
	"net/http"

	handlerutil "github.com/NYCU-SDC/summer/pkg/handler"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Request struct {
	RespondentRef string           `json:"respondentRef" validate:"required"`
	Answers       shared.AnswerMap `json:"answers"`
}

// FieldErrorsResponse is the body of a rejected submission.
type FieldErrorsResponse struct {
	Errors map[string]string `json:"errors"`
}

type Operator interface {
	Submit(ctx context.Context, schemaID uuid.UUID, respondentRef string, answers shared.AnswerMap) (response.Response, error)
}

type Handler struct {
	logger        *zap.Logger
	validator     *validator.Validate
	problemWriter *problem.HttpWriter
	operator      Operator
	tracer        trace.Tracer
}

func NewHandler(logger *zap.Logger, validator *validator.Validate, problemWriter *problem.HttpWriter, operator Operator) *Handler {
	return &Handler{
		logger:        logger,
		validator:     validator,
		problemWriter: problemWriter,
		operator:      operator,
		tracer:        otel.Tracer("submit/handler"),
	}
}

// SubmitHandler submits a response to a schema
func (h *Handler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "SubmitHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	schemaIDStr := r.PathValue("schemaId")
	schemaID, err := handlerutil.ParseUUID(schemaIDStr)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	var request Request
	err = handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &request)
	if err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	created, err := h.operator.Submit(traceCtx, schemaID, request.RespondentRef, request.Answers)
	if err != nil {
		var fieldErrors internal.ErrFieldErrors
		if errors.As(err, &fieldErrors) {
			handlerutil.WriteJSONResponse(w, http.StatusUnprocessableEntity, FieldErrorsResponse{Errors: fieldErrors.Errors})
			return
		}
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	handlerutil.WriteJSONResponse(w, http.StatusCreated, response.ToPayload(created))
}
