package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecovery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		path       string
		handler    echo.HandlerFunc
		wantStatus int
		wantLog    []string
	}{
		{
			name:   "no panic passes through",
			method: http.MethodGet,
			path:   "/api/v1/status",
			handler: func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "string panic",
			method: http.MethodGet,
			path:   "/panic",
			handler: func(_ echo.Context) error {
				panic("status snapshot missing")
			},
			wantStatus: http.StatusInternalServerError,
			wantLog:    []string{"handler panic recovered", "status snapshot missing", "path=/panic"},
		},
		{
			name:   "non-string panic",
			method: http.MethodPost,
			path:   "/api/v1/crash",
			handler: func(_ echo.Context) error {
				panic(42)
			},
			wantStatus: http.StatusInternalServerError,
			wantLog:    []string{"panic=42", "method=POST"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			e := echo.New()
			req := httptest.NewRequest(tt.method, tt.path, http.NoBody)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := Recovery(logger)(tt.handler)(c)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, rec.Code)

			if len(tt.wantLog) == 0 {
				assert.Empty(t, buf.String())
				return
			}
			assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
			for _, want := range tt.wantLog {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestRecovery_IncludesRequestID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	e := echo.New()
	e.Use(RequestLog(logger), Recovery(logger))
	e.GET("/boom", func(_ echo.Context) error {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", http.NoBody)
	req.Header.Set(requestIDHeader, "req-abc")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "request_id=req-abc")
	assert.Contains(t, buf.String(), "level=ERROR")
}
