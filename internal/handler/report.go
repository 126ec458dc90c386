package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ksanogo/cabas/internal/report"
)

// ReportHandler exposes the reporting screens' figures. The report service
// already degrades failed aggregations to zero values, so these endpoints
// always answer 200 with safe numbers.
type ReportHandler struct {
	reports *report.Service
}

func NewReportHandler(reports *report.Service) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func (h *ReportHandler) Overview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.reports.Overview())
}

func (h *ReportHandler) Breakdown(w http.ResponseWriter, r *http.Request) {
	start, err := parseDateParam(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date")
		return
	}
	end, err := parseDateParam(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date")
		return
	}
	if (start == nil) != (end == nil) {
		writeError(w, http.StatusBadRequest, "start and end must be given together")
		return
	}
	writeJSON(w, http.StatusOK, h.reports.Breakdown(start, end))
}

func (h *ReportHandler) PieChart(w http.ResponseWriter, r *http.Request) {
	start, err := parseDateParam(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date")
		return
	}
	end, err := parseDateParam(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date")
		return
	}
	if (start == nil) != (end == nil) {
		writeError(w, http.StatusBadRequest, "start and end must be given together")
		return
	}
	writeJSON(w, http.StatusOK, h.reports.PieChart(start, end))
}

func (h *ReportHandler) Periods(w http.ResponseWriter, r *http.Request) {
	granularity := r.URL.Query().Get("granularity")
	if granularity == "" {
		granularity = report.GranularityMonth
	}

	count := 6
	if v := r.URL.Query().Get("count"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 36 {
			writeError(w, http.StatusBadRequest, "count must be between 1 and 36")
			return
		}
		count = parsed
	}

	writeJSON(w, http.StatusOK, h.reports.ComparativePeriods(granularity, count, time.Now()))
}

func (h *ReportHandler) History(w http.ResponseWriter, r *http.Request) {
	label := strings.TrimSpace(r.URL.Query().Get("label"))
	if label == "" {
		writeError(w, http.StatusBadRequest, "label is required")
		return
	}

	start, err := parseDateParam(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date")
		return
	}
	end, err := parseDateParam(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date")
		return
	}

	// Default to the trailing year.
	now := time.Now()
	if end == nil {
		end = &now
	}
	if start == nil {
		from := now.AddDate(-1, 0, 0)
		start = &from
	}

	writeJSON(w, http.StatusOK, h.reports.History(label, *start, *end))
}

func (h *ReportHandler) Labels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.reports.Labels())
}
