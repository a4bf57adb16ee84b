package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	t.Run("attaches a request logger to the context", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		base := slog.New(slog.NewTextHandler(&buf, nil))

		called := false
		handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			if LoggerFromContext(r.Context()) == nil {
				t.Error("expected a logger in the request context")
			}
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/appointments/apt-1", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if !called {
			t.Fatal("next handler was not called")
		}
		output := buf.String()
		if !strings.Contains(output, "request started") || !strings.Contains(output, "request completed") {
			t.Fatalf("log output = %q", output)
		}
		if !strings.Contains(output, "/appointments/apt-1") {
			t.Fatalf("log output misses the path: %q", output)
		}
	})

	t.Run("assigns increasing request identifiers", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		base := slog.New(slog.NewTextHandler(&buf, nil))

		handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/professionals", nil))
		}

		output := buf.String()
		if !strings.Contains(output, "request_id=1") || !strings.Contains(output, "request_id=2") {
			t.Fatalf("log output = %q", output)
		}
	})
}
