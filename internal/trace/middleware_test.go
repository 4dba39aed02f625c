package trace

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NYCU-SDC/summer/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		debug          bool
		handler        http.HandlerFunc
		expectedStatus int
		expectedLogs   []string
	}{
		{
			name: "Should pass through successful request quietly",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:  "Should log every request in debug mode",
			debug: true,
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("OK"))
			},
			expectedStatus: http.StatusOK,
			expectedLogs:   []string{"Handled request"},
		},
		{
			name: "Should recover from panic",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic("boom")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedLogs:   []string{"Recovered from panic"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			m := NewMiddleware(zap.New(core), tt.debug)

			set := middleware.NewSet(m.RecoverMiddleware)
			set = set.Append(m.TraceMiddleware)
			handler := set.HandlerFunc(tt.handler)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))

			require.Equal(t, tt.expectedStatus, rec.Code)
			messages := make([]string, 0, recorded.Len())
			for _, entry := range recorded.All() {
				messages = append(messages, entry.Message)
			}
			if len(tt.expectedLogs) == 0 {
				assert.Empty(t, messages)
			}
			for _, expected := range tt.expectedLogs {
				assert.Contains(t, messages, expected)
			}
		})
	}
}
