package trace

import (
	"errors"
	"net/http"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"github.com/felixge/httpsnoop"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Middleware struct {
	tracer trace.Tracer
	logger *zap.Logger
	debug  bool
}

func NewMiddleware(logger *zap.Logger, debug bool) *Middleware {
	return &Middleware{
		tracer: otel.Tracer("trace/middleware"),
		logger: logger,
		debug:  debug,
	}
}

// RecoverMiddleware turns a panicking handler into a 500 response.
func (m *Middleware) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			if err, ok := recovered.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(recovered)
			}

			logger := logutil.WithContext(r.Context(), m.logger)
			logger.Error("Recovered from panic",
				zap.Any("panic", recovered),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Stack("stack"),
			)
			span := trace.SpanFromContext(r.Context())
			span.SetStatus(codes.Error, "panic")

			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}()

		next(w, r)
	}
}

// TraceMiddleware opens a span per request and logs its outcome. Every request is logged in
// debug mode; otherwise only server errors are.
func (m *Middleware) TraceMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		route := r.Pattern
		if route == "" {
			route = r.Method + " " + r.URL.Path
		}

		traceCtx, span := m.tracer.Start(r.Context(), route)
		defer span.End()
		logger := logutil.WithContext(traceCtx, m.logger)

		metrics := httpsnoop.CaptureMetrics(next, w, r.WithContext(traceCtx))

		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", metrics.Code),
		)
		if metrics.Code >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(metrics.Code))
		}

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", metrics.Code),
			zap.Duration("duration", metrics.Duration),
			zap.Int64("written", metrics.Written),
		}
		switch {
		case metrics.Code >= http.StatusInternalServerError:
			logger.Warn("Request failed", fields...)
		case m.debug:
			logger.Debug("Handled request", fields...)
		}
	}
}
