package observability_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nivelo/crm-dashboard-bfa-go/internal/infra/observability"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func serveThrough(mw func(http.Handler) http.Handler, path string, status int) {
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
}

func TestZapLoggerMiddleware_StatusTiers(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{"success logs info", http.StatusOK, zapcore.InfoLevel},
		{"client error logs warn", http.StatusNotFound, zapcore.WarnLevel},
		{"server error logs error", http.StatusBadGateway, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			mw := observability.ZapLoggerMiddleware(zap.New(core))

			serveThrough(mw, "/v1/customers/cust-1/dashboard/analytics", tt.status)

			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 log entry, got %d", len(entries))
			}
			if entries[0].Level != tt.level {
				t.Errorf("expected level %s, got %s", tt.level, entries[0].Level)
			}

			fields := entries[0].ContextMap()
			if fields["path"] != "/v1/customers/cust-1/dashboard/analytics" {
				t.Errorf("unexpected path field: %v", fields["path"])
			}
			if fields["status"] != int64(tt.status) {
				t.Errorf("unexpected status field: %v", fields["status"])
			}
		})
	}
}

func TestZapLoggerMiddleware_SkipsProbePaths(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mw := observability.ZapLoggerMiddleware(zap.New(core))

	for _, path := range []string{"/healthz", "/readyz", "/ping", "/metrics"} {
		serveThrough(mw, path, http.StatusOK)
	}

	if n := logs.Len(); n != 0 {
		t.Errorf("expected probe paths to be unlogged, got %d entries", n)
	}
}
