package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	logpkg "github.com/kailas-cloud/bookrec/internal/logger"
)

func TestJSONRecoverer(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	})
	h := JSONRecoverer(zap.New(core))(panicking)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/recommend", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want 500", rr.Code)
	}
	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if errResp.Code != ErrorCodeInternalError {
		t.Errorf("code: got %s", errResp.Code)
	}
	if logs.FilterMessage("Panic recovered").Len() != 1 {
		t.Error("expected one panic log entry")
	}
}

func TestWideEventMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	var sawLogger bool
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLogger = logpkg.FromContext(r.Context(), nil).Core().Enabled(zap.InfoLevel)
		w.WriteHeader(http.StatusTeapot)
	})
	h := chiMiddleware.RequestID(WideEventMiddleware(zap.New(core))(inner))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/recommend?title=Dune", http.NoBody))

	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
	if !sawLogger {
		t.Error("expected request-scoped logger in context")
	}

	entries := logs.FilterMessage("http_request").All()
	if len(entries) != 1 {
		t.Fatalf("got %d canonical lines, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["status"] != int64(http.StatusTeapot) {
		t.Errorf("status field: got %v", fields["status"])
	}
	if fields["path"] != "/recommend" {
		t.Errorf("path field: got %v", fields["path"])
	}
	if fields["request_id"] == "" {
		t.Error("expected request_id field")
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"http://localhost:3000"}, time.Hour)(okHandler())

	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{name: "allowed origin", origin: "http://localhost:3000", want: "http://localhost:3000"},
		{name: "foreign origin", origin: "http://evil.example", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, "/recommend", http.NoBody)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("allow origin: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRateLimitByIP(t *testing.T) {
	h := RateLimitByIP(1)(okHandler())

	do := func() int {
		req := httptest.NewRequest(http.MethodGet, "/recommend", http.NoBody)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	if got := do(); got != http.StatusOK {
		t.Fatalf("first request: got %d, want 200", got)
	}
	if got := do(); got != http.StatusTooManyRequests {
		t.Fatalf("second request: got %d, want 429", got)
	}
}

func TestRateLimitByIP_Disabled(t *testing.T) {
	h := RateLimitByIP(0)(okHandler())
	for range 5 {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/recommend", http.NoBody))
		if rr.Code != http.StatusOK {
			t.Fatalf("got %d, want 200", rr.Code)
		}
	}
}
