package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/flipwatch/internal/archive"
	"github.com/wonny/flipwatch/internal/contracts"
	"github.com/wonny/flipwatch/internal/report"
	"github.com/wonny/flipwatch/pkg/logger"
)

// RunLister lists archived runs (optional)
type RunLister interface {
	ListRuns(ctx context.Context, from, to contracts.SessionDate) ([]archive.RunSummary, error)
}

// ReportHandler serves finished screening reports
// ⭐ SSOT: 리포트 API 핸들러는 여기서만
type ReportHandler struct {
	source report.Source
	runs   RunLister // nil = 이력 조회 비활성
	html   report.Renderer
	logger *logger.Logger
}

// NewReportHandler creates a new report handler. runs may be nil.
func NewReportHandler(source report.Source, runs RunLister, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		source: source,
		runs:   runs,
		html:   report.HTMLRenderer{},
		logger: log,
	}
}

// lookup resolves the report named by the {date} path variable or ?date=, latest otherwise
func (h *ReportHandler) lookup(r *http.Request) (*contracts.RunReport, int, string) {
	raw := mux.Vars(r)["date"]
	if raw == "" {
		raw = r.URL.Query().Get("date")
	}

	var (
		rep *contracts.RunReport
		err error
	)
	if raw == "" {
		rep, err = h.source.GetLatestReport(r.Context())
	} else {
		date, perr := contracts.ParseSessionDate(raw)
		if perr != nil {
			return nil, http.StatusBadRequest, "Invalid date (expected YYYY-MM-DD)"
		}
		rep, err = h.source.GetReport(r.Context(), date)
	}

	if errors.Is(err, contracts.ErrReportNotFound) {
		return nil, http.StatusNotFound, "Report not found"
	}
	if err != nil {
		h.logger.WithError(err).Error("Failed to get report")
		return nil, http.StatusInternalServerError, "Failed to retrieve report"
	}
	return rep, http.StatusOK, ""
}

// GetReportPage renders a report as the HTML page
// GET /report, GET /report/{date}
func (h *ReportHandler) GetReportPage(w http.ResponseWriter, r *http.Request) {
	rep, status, msg := h.lookup(r)
	if rep == nil {
		http.Error(w, msg, status)
		return
	}

	// 렌더 실패 시 부분 출력 방지
	var buf bytes.Buffer
	if err := h.html.Render(&buf, rep); err != nil {
		h.logger.WithError(err).Error("Failed to render report")
		http.Error(w, "Failed to render report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", h.html.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// GetReport returns a report as JSON
// GET /api/report?date=YYYY-MM-DD
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, status, msg := h.lookup(r)
	if rep == nil {
		respondError(w, status, msg)
		return
	}

	respondJSON(w, http.StatusOK, rep)
}

// ListRuns returns archived run summaries, newest first
// GET /api/runs?from=YYYY-MM-DD&to=YYYY-MM-DD (default: last 30 days)
func (h *ReportHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		respondError(w, http.StatusNotImplemented, "Report archive is not configured")
		return
	}

	to := contracts.SessionDateOf(time.Now())
	from := to.AddDays(-30)

	if v := r.URL.Query().Get("to"); v != "" {
		d, err := contracts.ParseSessionDate(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'to' date")
			return
		}
		to = d
	}
	if v := r.URL.Query().Get("from"); v != "" {
		d, err := contracts.ParseSessionDate(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'from' date")
			return
		}
		from = d
	}
	if to.Time().Before(from.Time()) {
		respondError(w, http.StatusBadRequest, "'from' must not be after 'to'")
		return
	}

	runs, err := h.runs.ListRuns(r.Context(), from, to)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list runs")
		respondError(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}
	if runs == nil {
		runs = []archive.RunSummary{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"from": from,
		"to":   to,
		"runs": runs,
	})
}
