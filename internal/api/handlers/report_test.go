package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/wonny/flowrank/backend/pkg/config"
	"github.com/wonny/flowrank/backend/pkg/logger"
)

type fakeRunner struct {
	mu    sync.Mutex
	dates []time.Time
	done  chan struct{}
}

func (f *fakeRunner) RunForDate(ctx context.Context, date time.Time) error {
	f.mu.Lock()
	f.dates = append(f.dates, date)
	f.mu.Unlock()
	if f.done != nil {
		close(f.done)
	}
	return nil
}

func testHandler(runner ReportRunner) *ReportHandler {
	log := logger.New(&config.Config{LogLevel: "error", LogFormat: "json"})
	return NewReportHandler(nil, runner, nil, log)
}

func TestTriggerRunWithDate(t *testing.T) {
	runner := &fakeRunner{done: make(chan struct{})}
	h := testHandler(runner)

	req := httptest.NewRequest(http.MethodPost, "/api/reports/run?date=2025-07-14", nil)
	rec := httptest.NewRecorder()
	h.TriggerRun(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["date"] != "2025-07-14" {
		t.Errorf("date = %q", body["date"])
	}

	select {
	case <-runner.done:
	case <-time.After(2 * time.Second):
		t.Fatal("runner was not invoked")
	}

	runner.mu.Lock()
	defer runner.mu.Unlock()
	if len(runner.dates) != 1 || runner.dates[0].Format("2006-01-02") != "2025-07-14" {
		t.Errorf("runner dates = %v", runner.dates)
	}
}

func TestTriggerRunInvalidDate(t *testing.T) {
	h := testHandler(&fakeRunner{})

	req := httptest.NewRequest(http.MethodPost, "/api/reports/run?date=14-07-2025", nil)
	rec := httptest.NewRecorder()
	h.TriggerRun(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestTriggerRunWithoutRunner(t *testing.T) {
	h := testHandler(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/reports/run", nil)
	rec := httptest.NewRecorder()
	h.TriggerRun(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestGetJobStatsWithoutScheduler(t *testing.T) {
	h := testHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	rec := httptest.NewRecorder()
	h.GetJobStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
