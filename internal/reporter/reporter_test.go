package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestSlogReporter_Report(t *testing.T) {
	var buf bytes.Buffer
	r := NewSlogReporter(slog.New(slog.NewJSONHandler(&buf, nil)))

	r.Report(context.Background(), errors.New("db down"), map[string]string{
		"method": "POST",
		"path":   "/auth/login",
	})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse JSON: %v\nraw: %s", err, buf.String())
	}
	if entry["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR", entry["level"])
	}
	if entry["error"] != "db down" {
		t.Errorf("error = %v, want %q", entry["error"], "db down")
	}
	if entry["path"] != "/auth/login" {
		t.Errorf("path = %v, want %q", entry["path"], "/auth/login")
	}
}

func TestSlogReporter_NilErrorIgnored(t *testing.T) {
	var buf bytes.Buffer
	r := NewSlogReporter(slog.New(slog.NewJSONHandler(&buf, nil)))

	r.Report(context.Background(), nil, nil)
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %s", buf.String())
	}
}

type countingReporter struct{ n int }

func (c *countingReporter) Report(context.Context, error, map[string]string) { c.n++ }

func TestMulti_ReportsToAll(t *testing.T) {
	a, b := &countingReporter{}, &countingReporter{}
	Multi{a, b}.Report(context.Background(), errors.New("x"), nil)
	if a.n != 1 || b.n != 1 {
		t.Errorf("counts = %d, %d; want 1, 1", a.n, b.n)
	}
}

func TestNewSentryReporter_InvalidDSN(t *testing.T) {
	if _, err := NewSentryReporter("not a dsn", "test"); err == nil {
		t.Fatal("expected error for invalid DSN, got nil")
	}
}

func TestSentryReporter_SendsEvent(t *testing.T) {
	var received atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/api/1/") {
			received.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	dsn := strings.Replace(ts.URL, "http://", "http://public@", 1) + "/1"
	r, err := NewSentryReporter(dsn, "test")
	if err != nil {
		t.Fatalf("NewSentryReporter error: %v", err)
	}

	r.Report(context.Background(), errors.New("db down"), map[string]string{"path": "/tasks"})
	if !r.Flush(2 * time.Second) {
		t.Fatal("Flush timed out")
	}
	if received.Load() == 0 {
		t.Error("expected sentry event to be delivered")
	}
}
