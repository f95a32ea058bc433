package instrumentation

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type pushRecorder struct {
	mu     sync.Mutex
	method string
	path   string
	body   string
}

func (r *pushRecorder) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		data, _ := io.ReadAll(req.Body)
		r.mu.Lock()
		r.method = req.Method
		r.path = req.URL.Path
		r.body = string(data)
		r.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
}

func TestProvider_Push(t *testing.T) {
	rec := &pushRecorder{}
	gateway := httptest.NewServer(rec.handler())
	defer gateway.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "freerooms",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
		PushgatewayURL:  gateway.URL,
		PushJob:         "freerooms-test",
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	if !provider.PushEnabled() {
		t.Fatal("expected push to be enabled")
	}

	provider.Metrics().SetFreeRooms(ctx, 4)

	if err := provider.Push(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.method != http.MethodPut {
		t.Errorf("expected PUT, got %s", rec.method)
	}
	if !strings.Contains(rec.path, "/metrics/job/freerooms-test") {
		t.Errorf("expected job path, got %s", rec.path)
	}
	if rec.body == "" {
		t.Error("expected a non-empty push body")
	}
}

func TestProvider_Push_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		ServiceName:    "freerooms",
		Enabled:        false,
		PushgatewayURL: "http://127.0.0.1:1",
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	if provider.PushEnabled() {
		t.Error("expected push to be disabled when instrumentation is disabled")
	}
	if err := provider.Push(context.Background()); err != nil {
		t.Errorf("expected no-op push, got %v", err)
	}
}

func TestProvider_Push_GatewayError(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer gateway.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "freerooms",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
		PushgatewayURL:  gateway.URL,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	if err := provider.Push(ctx); err == nil {
		t.Error("expected error when the gateway rejects the push")
	}
}
