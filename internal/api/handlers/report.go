package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/flowrank/backend/internal/scheduler"
	"github.com/wonny/flowrank/backend/internal/store"
	"github.com/wonny/flowrank/backend/pkg/logger"
)

// ReportRunner triggers a report update for a date. Satisfied by the daily
// report job.
type ReportRunner interface {
	RunForDate(ctx context.Context, date time.Time) error
}

// ReportHandler handles report API endpoints
// ⭐ SSOT: 리포트 API 핸들러는 이 구조체에서만
type ReportHandler struct {
	store     *store.ReportStore
	runner    ReportRunner
	scheduler *scheduler.Scheduler
	logger    *logger.Logger
}

// NewReportHandler creates a new report handler. runner and sched may be
// nil when the API runs without the scheduler.
func NewReportHandler(st *store.ReportStore, runner ReportRunner, sched *scheduler.Scheduler, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		store:     st,
		runner:    runner,
		scheduler: sched,
		logger:    log,
	}
}

// ListSnapshots returns stored snapshot dates, most recent first
// GET /api/reports?limit=30
func (h *ReportHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	limit := 30
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	dates, err := h.store.ListDates(r.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list snapshot dates")
		respondError(w, http.StatusInternalServerError, "Failed to list snapshots")
		return
	}

	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format("2006-01-02"))
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"dates": out,
		"count": len(out),
	})
}

// GetReport returns the rendered report document for a date
// GET /api/reports/{date}
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	dateStr := mux.Vars(r)["date"]
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	rendered, err := h.store.GetRendered(r.Context(), date)
	if err != nil {
		respondError(w, http.StatusNotFound, "no report for date")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(rendered)
}

// TriggerRun starts a report update for a date (default: today)
// POST /api/reports/run?date=YYYY-MM-DD
func (h *ReportHandler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		respondError(w, http.StatusServiceUnavailable, "report runner not available")
		return
	}

	date := time.Now().Truncate(24 * time.Hour)
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	// 수집과 갱신은 수 초 걸릴 수 있으므로 비동기 실행
	go func() {
		if err := h.runner.RunForDate(context.Background(), date); err != nil {
			h.logger.WithError(err).WithField("date", date.Format("2006-01-02")).
				Error("Triggered report run failed")
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]string{
		"status": "started",
		"date":   date.Format("2006-01-02"),
	})
}

// GetJobStats returns scheduler job statistics
// GET /api/jobs
func (h *ReportHandler) GetJobStats(w http.ResponseWriter, r *http.Request) {
	if h.scheduler == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"jobs": map[string]interface{}{}})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"jobs": h.scheduler.Stats(),
	})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
