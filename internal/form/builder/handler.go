package builder

import (
	"NYCU-SDC/questionnaire-backend/internal"
	"NYCU-SDC/questionnaire-backend/internal/form/field"
	"net/http"

	handlerutil "github.com/NYCU-SDC/summer/pkg/handler"
	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/NYCU-SDC/summer/pkg/problem"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// OperationsRequest carries the schema being edited, either as fields or as raw text, and the
// operations to apply to it in order.
type OperationsRequest struct {
	Fields     []field.Field `json:"fields"`
	RawText    *string       `json:"rawText"`
	Operations []Operation   `json:"operations" validate:"dive"`
}

type SessionResponse struct {
	Mode       Mode          `json:"mode"`
	Fields     []field.Field `json:"fields"`
	RawText    string        `json:"rawText,omitempty"`
	ParseError string        `json:"parseError,omitempty"`
	Text       string        `json:"text"`
	CanUndo    bool          `json:"canUndo"`
	CanRedo    bool          `json:"canRedo"`
}

type Handler struct {
	logger        *zap.Logger
	tracer        trace.Tracer
	validator     *validator.Validate
	problemWriter *problem.HttpWriter
}

func NewHandler(logger *zap.Logger, validator *validator.Validate, problemWriter *problem.HttpWriter) *Handler {
	return &Handler{
		logger:        logger,
		tracer:        otel.Tracer("builder/handler"),
		validator:     validator,
		problemWriter: problemWriter,
	}
}

func (h *Handler) ApplyOperationsHandler(w http.ResponseWriter, r *http.Request) {
	traceCtx, span := h.tracer.Start(r.Context(), "ApplyOperationsHandler")
	defer span.End()
	logger := logutil.WithContext(traceCtx, h.logger)

	var req OperationsRequest
	if err := handlerutil.ParseAndValidateRequestBody(traceCtx, h.validator, r, &req); err != nil {
		h.problemWriter.WriteError(traceCtx, w, err, logger)
		return
	}

	if req.RawText != nil && req.Fields != nil {
		h.problemWriter.WriteError(traceCtx, w, internal.ErrSchemaTextAmbiguous, logger)
		return
	}

	var session *Session
	if req.RawText != nil {
		session = Open(*req.RawText)
	} else {
		session = OpenFields(req.Fields)
	}

	for i, op := range req.Operations {
		if err := session.Apply(op); err != nil {
			logger.Debug("Rejected builder operation", zap.Int("position", i), zap.String("op", string(op.Kind)), zap.Error(err))
			span.RecordError(err)
			h.problemWriter.WriteError(traceCtx, w, err, logger)
			return
		}
	}

	handlerutil.WriteJSONResponse(w, http.StatusOK, NewSessionResponse(session))
}

func NewSessionResponse(s *Session) SessionResponse {
	response := SessionResponse{
		Mode:    s.Mode(),
		Fields:  s.Snapshot().Fields(),
		Text:    s.Text(),
		CanUndo: s.CanUndo(),
		CanRedo: s.CanRedo(),
	}
	if s.Mode() == ModeRaw {
		response.RawText = s.Text()
		response.ParseError = s.ParseError().Error()
	}
	return response
}
