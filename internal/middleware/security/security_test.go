package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("missing X-Frame-Options")
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing CSP")
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("unexpected HSTS %q", got)
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		agent  string
		want   bool
	}{
		{"normal page", http.MethodGet, "/?year=2025&month=3", "Mozilla/5.0", false},
		{"curl export", http.MethodGet, "/export.csv", "curl/8.0", false},
		{"path traversal", http.MethodGet, "/static/../.env", "", true},
		{"scanner", http.MethodGet, "/", "sqlmap/1.7", true},
		{"trace method", "TRACE", "/", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector()
			req := httptest.NewRequest(tt.method, tt.target, nil)
			req.Header.Set("User-Agent", tt.agent)
			if got := d.DetectSuspiciousRequest(req); got != tt.want {
				t.Errorf("DetectSuspiciousRequest = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectorMiddlewareRejectsUnusualMethods(t *testing.T) {
	d := NewDetector()
	called := false
	h := d.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("TRACE", "/", nil))
	if called || rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("TRACE must be rejected, code=%d called=%v", rec.Code, called)
	}
	if d.GetMetrics().SuspiciousRequests != 1 {
		t.Errorf("expected one suspicious request")
	}
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.5")
	if got := d.ExtractClientIP(req); got != "203.0.113.9" {
		t.Errorf("trusted proxy: got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:1234"
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	if got := d.ExtractClientIP(req); got != "198.51.100.7" {
		t.Errorf("untrusted remote must win, got %q", got)
	}

	if err := d.AddTrustedProxy("not-a-cidr"); err == nil {
		t.Error("expected invalid CIDR error")
	}
}
