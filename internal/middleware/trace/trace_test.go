package trace

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	m := NewMiddleware(func(*http.Request) string { return "10.0.0.1" })

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.HasPrefix(seen, "req_") {
		t.Fatalf("expected generated request id, got %q", seen)
	}
	if got := rec.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("response header %q does not match context id %q", got, seen)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestMiddlewareReusesIncomingID(t *testing.T) {
	tests := []struct {
		name   string
		header string
		reuse  bool
	}{
		{"valid", "abc-123_X", true},
		{"with spaces", "abc 123", false},
		{"too long", strings.Repeat("a", 65), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMiddleware(nil)
			var seen string
			h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, tt.header)
			h.ServeHTTP(httptest.NewRecorder(), req)

			if (seen == tt.header) != tt.reuse {
				t.Errorf("reuse = %v, got id %q", tt.reuse, seen)
			}
		})
	}
}

func TestMetricsCountFailures(t *testing.T) {
	m := NewMiddleware(nil)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/boom" {
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	got := m.GetMetrics()
	if got.TotalRequests != 2 || got.FailedRequests != 1 {
		t.Errorf("unexpected metrics %+v", got)
	}
}
